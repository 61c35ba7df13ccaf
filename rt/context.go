package rt

// Context is a thread of execution's view of a Runtime: a back-reference to
// the runtime plus the currently active namespace. Contexts are created by
// the Runtime and passed explicitly to every operation that needs one; a
// Context is intended for use by one goroutine at a time.
type Context struct {
	id string
	rt *Runtime
	ns *Namespace
}

// ID returns the context's unique id.
func (c *Context) ID() string {
	return c.id
}

// Runtime returns the owning runtime.
func (c *Context) Runtime() *Runtime {
	return c.rt
}

// Namespace returns the current namespace.
func (c *Context) Namespace() *Namespace {
	return c.ns
}

// SetNamespace switches the current namespace.
func (c *Context) SetNamespace(ns *Namespace) {
	c.ns = ns
}

// Heap returns the owning runtime's exchange heap.
func (c *Context) Heap() *ExchangeHeap {
	return c.rt.Heap()
}
