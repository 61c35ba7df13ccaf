package rt

import (
	"fmt"
	"sync"
)

// ---------------------------------------------------------------------------
// Native execution engine
// ---------------------------------------------------------------------------

// Engine is the native-code execution collaborator. The Runtime owns exactly
// one instance, created after the one-time native-target bootstrap and
// destroyed last during teardown. Compilation and execution entry points are
// the engine's own business.
type Engine interface {
	Name() string
	Close() error
}

// EngineFactory creates an Engine for a Runtime. Tests substitute factories
// to observe lifecycle behavior.
type EngineFactory func() (Engine, error)

// nativeEngine is the in-process native execution engine.
type nativeEngine struct {
	module string
	closed bool
}

func newNativeEngine() (Engine, error) {
	return &nativeEngine{module: "JITModule"}, nil
}

func (e *nativeEngine) Name() string {
	return e.module
}

func (e *nativeEngine) Close() error {
	if e.closed {
		return fmt.Errorf("rt: engine %q already closed", e.module)
	}
	e.closed = true
	return nil
}

// ---------------------------------------------------------------------------
// Bootstrap barrier
// ---------------------------------------------------------------------------

// BootstrapGuard runs a native-target bootstrap exactly once per process,
// no matter how many Runtimes race to construct. Later callers block until
// the first run completes. A bootstrap failure is process-fatal: there is no
// recovery path, so it panics rather than returning.
type BootstrapGuard struct {
	once sync.Once
	fn   func() error
}

// NewBootstrapGuard creates a guard around the given bootstrap function.
func NewBootstrapGuard(fn func() error) *BootstrapGuard {
	return &BootstrapGuard{fn: fn}
}

// Wait performs the bootstrap if it has not run yet, otherwise blocks until
// the in-progress run completes. On return the bootstrap is guaranteed done.
func (g *BootstrapGuard) Wait() {
	g.once.Do(func() {
		if err := g.fn(); err != nil {
			panic(fmt.Sprintf("rt: native target bootstrap failed: %v", err))
		}
	})
}

// nativeBoot guards the process-wide native-target initialization shared by
// every Runtime constructed with the default configuration.
var nativeBoot = NewBootstrapGuard(initNativeTarget)

// initNativeTarget prepares the process for native-code execution. The
// in-process engine needs no global machine setup, so this is the entire
// bootstrap; it still runs exactly once to keep the lifecycle contract.
func initNativeTarget() error {
	return nil
}
