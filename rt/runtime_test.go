package rt

import (
	"sync"
	"sync/atomic"
	"testing"
)

// ---------------------------------------------------------------------------
// Runtime and context tests
// ---------------------------------------------------------------------------

// countingEngine records lifecycle calls.
type countingEngine struct {
	closed atomic.Int32
}

func (e *countingEngine) Name() string { return "counting" }

func (e *countingEngine) Close() error {
	e.closed.Add(1)
	return nil
}

func TestRuntimeLifecycle(t *testing.T) {
	runtime, err := NewRuntime()
	if err != nil {
		t.Fatalf("NewRuntime failed: %v", err)
	}

	ctx := runtime.RootContext()
	if ctx == nil {
		t.Fatal("runtime should publish a root context")
	}
	if ctx.Runtime() != runtime {
		t.Error("root context should reference its runtime")
	}
	if got := ctx.Namespace().Name().GoString(); got != RootNamespaceName {
		t.Errorf("root namespace = %q, want %q", got, RootNamespaceName)
	}
	if ns, ok := runtime.LookupNamespace(ctx, RootNamespaceName); !ok || ns != ctx.Namespace() {
		t.Error("root namespace should be registered under its name")
	}
	if runtime.ID() == "" || ctx.ID() == "" {
		t.Error("runtime and context ids should be minted")
	}

	if err := runtime.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	// Close is idempotent and keeps its result.
	if err := runtime.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	if runtime.Heap().LiveCount() != 0 {
		t.Errorf("LiveCount = %d after Close, want 0", runtime.Heap().LiveCount())
	}
}

func TestConcurrentRuntimeConstructionBootstrapsOnce(t *testing.T) {
	var bootstraps atomic.Int32
	guard := NewBootstrapGuard(func() error {
		bootstraps.Add(1)
		return nil
	})

	const n = 8
	runtimes := make([]*Runtime, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			runtimes[i], errs[i] = NewRuntimeWith(RuntimeConfig{Bootstrap: guard})
		}(i)
	}
	wg.Wait()

	if got := bootstraps.Load(); got != 1 {
		t.Errorf("bootstrap ran %d times across %d runtimes, want 1", got, n)
	}
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("runtime %d construction failed: %v", i, errs[i])
		}
		if err := runtimes[i].Close(); err != nil {
			t.Errorf("runtime %d Close failed: %v", i, err)
		}
	}
}

func TestRuntimeTeardownOrderClosesEngineLast(t *testing.T) {
	engine := &countingEngine{}
	runtime, err := NewRuntimeWith(RuntimeConfig{
		Engine: func() (Engine, error) { return engine, nil },
	})
	if err != nil {
		t.Fatalf("NewRuntimeWith failed: %v", err)
	}
	if runtime.Engine() != engine {
		t.Error("runtime should own the engine its factory produced")
	}

	ctx := runtime.RootContext()
	var dtors atomic.Int32
	if err := ctx.Namespace().BindOwned(ctx, "x", allocCounted(t, runtime.Heap(), &dtors, "x")); err != nil {
		t.Fatalf("BindOwned failed: %v", err)
	}

	if err := runtime.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if engine.closed.Load() != 1 {
		t.Errorf("engine closed %d times, want 1", engine.closed.Load())
	}
	if dtors.Load() != 1 {
		t.Errorf("binding dtor ran %d times during teardown, want 1", dtors.Load())
	}
	if runtime.RootContext() != nil {
		t.Error("contexts should be torn down before the engine")
	}
}

func TestDefineNamespaceReplacesExisting(t *testing.T) {
	runtime, err := NewRuntime()
	if err != nil {
		t.Fatalf("NewRuntime failed: %v", err)
	}
	defer runtime.Close()
	ctx := runtime.RootContext()

	first, err := runtime.DefineNamespace(ctx, "scratch")
	if err != nil {
		t.Fatalf("DefineNamespace failed: %v", err)
	}
	var dtors atomic.Int32
	if err := first.BindOwned(ctx, "v", allocCounted(t, runtime.Heap(), &dtors, "v")); err != nil {
		t.Fatalf("BindOwned failed: %v", err)
	}

	second, err := runtime.DefineNamespace(ctx, "scratch")
	if err != nil {
		t.Fatalf("redefine failed: %v", err)
	}
	if second == first {
		t.Error("redefining a namespace should produce a fresh one")
	}
	if dtors.Load() != 1 {
		t.Errorf("replaced namespace's binding dtor ran %d times, want 1", dtors.Load())
	}
	if ns, ok := runtime.LookupNamespace(ctx, "scratch"); !ok || ns != second {
		t.Error("lookup should return the replacement namespace")
	}
}

func TestContextNamespaceSwitching(t *testing.T) {
	runtime, err := NewRuntime()
	if err != nil {
		t.Fatalf("NewRuntime failed: %v", err)
	}
	defer runtime.Close()
	ctx := runtime.RootContext()

	other, err := runtime.DefineNamespace(ctx, "other")
	if err != nil {
		t.Fatalf("DefineNamespace failed: %v", err)
	}

	workCtx := runtime.NewContext(other)
	if workCtx.Namespace() != other {
		t.Error("new context should start in the given namespace")
	}
	workCtx.SetNamespace(ctx.Namespace())
	if workCtx.Namespace() != ctx.Namespace() {
		t.Error("SetNamespace should switch the current namespace")
	}
}

// TestEndToEndGreetingScenario walks the full chain: runtime up, a String
// bound in the root namespace, looked up with correct content and codepoint
// count, and a clean teardown with nothing leaked or double-freed.
func TestEndToEndGreetingScenario(t *testing.T) {
	runtime, err := NewRuntime()
	if err != nil {
		t.Fatalf("NewRuntime failed: %v", err)
	}
	ctx := runtime.RootContext()

	s, err := NewString(ctx, ctx.Heap(), "octarine")
	if err != nil {
		t.Fatalf("NewString failed: %v", err)
	}
	if err := ctx.Namespace().BindOwned(ctx, "greeting", Own[String](&s)); err != nil {
		t.Fatalf("BindOwned failed: %v", err)
	}

	got, err := ctx.Namespace().Lookup(ctx, "greeting")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if !got.HasValue() {
		t.Fatal("greeting should be bound")
	}
	str, ok := got.MustValue().Object().(*String)
	if !ok {
		t.Fatalf("bound value is %T, want *String", got.MustValue().Object())
	}
	if str.GoString() != "octarine" {
		t.Errorf("content = %q, want %q", str.GoString(), "octarine")
	}
	if str.NumCodepoints() != 8 {
		t.Errorf("NumCodepoints = %d, want 8", str.NumCodepoints())
	}

	if err := runtime.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if runtime.Heap().LiveCount() != 0 {
		t.Errorf("LiveCount = %d after Close, want 0", runtime.Heap().LiveCount())
	}
}
