package rt

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// RootNamespaceName is the name of the namespace every Runtime starts with.
const RootNamespaceName = "octarine"

// RuntimeConfig supplies the collaborators a Runtime is built against. Zero
// fields mean the process defaults.
type RuntimeConfig struct {
	Allocator Allocator       // platform allocator; nil means the system one
	Engine    EngineFactory   // native engine; nil means the in-process one
	Bootstrap *BootstrapGuard // bootstrap barrier; nil means the process-wide one
}

// Runtime owns an exchange heap, one native engine instance, the table of
// all namespaces keyed by name, and the contexts created against it. It is
// constructed once per embedding and must be closed exactly once; Close
// tears down contexts, then namespaces, then the engine, in that order.
type Runtime struct {
	id         string
	heap       *ExchangeHeap
	engine     Engine
	namespaces *Hashtable[*String, Owned[Namespace]]
	contexts   []*Context
	rootCtx    *Context

	closeOnce sync.Once
	closeErr  error
}

// NewRuntime constructs a Runtime with the process defaults.
func NewRuntime() (*Runtime, error) {
	return NewRuntimeWith(RuntimeConfig{})
}

// NewRuntimeWith constructs a Runtime against explicit collaborators. The
// bootstrap barrier runs (or is waited on) first, so every constructor
// observes the native target as initialized before creating its engine.
func NewRuntimeWith(cfg RuntimeConfig) (*Runtime, error) {
	guard := cfg.Bootstrap
	if guard == nil {
		guard = nativeBoot
	}
	guard.Wait()

	factory := cfg.Engine
	if factory == nil {
		factory = newNativeEngine
	}
	engine, err := factory()
	if err != nil {
		return nil, fmt.Errorf("rt: create native engine: %w", err)
	}

	heap := NewExchangeHeap()
	if cfg.Allocator != nil {
		heap = NewExchangeHeapWith(cfg.Allocator)
	}

	rt := &Runtime{
		id:     "rt-" + uuid.New().String(),
		heap:   heap,
		engine: engine,
	}

	nsTable, err := NewHashtable[*String, Owned[Namespace]](nil, heap)
	if err != nil {
		engine.Close()
		return nil, err
	}
	// A namespace replaced under the same name is torn down first.
	nsTable.SetOnReplace(func(ctx *Context, old Owned[Namespace]) {
		old.Get().Dtor(ctx)
		old.Free()
	})
	rt.namespaces = nsTable

	rootNs, err := rt.DefineNamespace(nil, RootNamespaceName)
	if err != nil {
		nsTable.Destroy(nil, nil)
		engine.Close()
		return nil, err
	}
	rt.rootCtx = rt.NewContext(rootNs)
	return rt, nil
}

// ID returns the runtime's unique id.
func (rt *Runtime) ID() string {
	return rt.id
}

// Heap returns the runtime's exchange heap.
func (rt *Runtime) Heap() *ExchangeHeap {
	return rt.heap
}

// Engine returns the runtime's native engine instance.
func (rt *Runtime) Engine() Engine {
	return rt.engine
}

// RootContext returns the context created at construction, bound to the
// root namespace.
func (rt *Runtime) RootContext() *Context {
	return rt.rootCtx
}

// NewContext creates a context bound to the given namespace. The runtime
// retains it for teardown.
func (rt *Runtime) NewContext(ns *Namespace) *Context {
	ctx := &Context{
		id: "ctx-" + uuid.New().String(),
		rt: rt,
		ns: ns,
	}
	rt.contexts = append(rt.contexts, ctx)
	return ctx
}

// DefineNamespace creates a namespace and registers it under its name. An
// existing namespace under the same name is destroyed and replaced.
func (rt *Runtime) DefineNamespace(ctx *Context, name string) (*Namespace, error) {
	owned, err := NewNamespace(ctx, rt.heap, name)
	if err != nil {
		return nil, err
	}
	ns := owned.Get()

	key, err := NewString(ctx, rt.heap, name)
	if err != nil {
		ns.Dtor(ctx)
		owned.Free()
		return nil, err
	}
	k := key.Get()

	ov := owned.Move()
	replaced, err := rt.namespaces.Put(ctx, k, ov)
	if err != nil {
		k.Dtor(ctx)
		key.Free()
		ns.Dtor(ctx)
		ov.Free()
		return nil, err
	}
	if replaced {
		k.Dtor(ctx)
		key.Free()
	} else {
		key.Move()
	}
	return ns, nil
}

// LookupNamespace returns the namespace registered under name, if any.
func (rt *Runtime) LookupNamespace(ctx *Context, name string) (*Namespace, bool) {
	key, err := NewString(ctx, rt.heap, name)
	if err != nil {
		return nil, false
	}
	k := key.Get()
	res := rt.namespaces.Get(ctx, k)
	k.Dtor(ctx)
	key.Free()
	if !res.HasValue() {
		return nil, false
	}
	return res.MustValue().Get(), true
}

// Close tears the runtime down exactly once: contexts first, then every
// namespace (which destroys its bindings), then the native engine.
func (rt *Runtime) Close() error {
	rt.closeOnce.Do(func() {
		ctx := rt.rootCtx

		rt.contexts = nil
		rt.rootCtx = nil

		rt.namespaces.Destroy(ctx, func(ctx *Context, k *String, v Owned[Namespace]) {
			v.Get().Dtor(ctx)
			v.Free()
			k.Dtor(ctx)
			rt.heap.Free(k)
		})

		rt.closeErr = rt.engine.Close()
	})
	return rt.closeErr
}
