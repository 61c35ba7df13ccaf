package rt

import "sync"

// ---------------------------------------------------------------------------
// Capability protocols
// ---------------------------------------------------------------------------
//
// A protocol gives a value polymorphic operations without inheritance. Each
// protocol is a Go interface; the interface table is the immutable,
// process-lifetime vtable, one instance per concrete-type/protocol pair.

// Object is the capability every value usable as a runtime object must
// satisfy: a type identity, a destructor, and a collector mark hook.
type Object interface {
	// Type returns the registered type descriptor for the value.
	Type() *Type

	// Dtor releases resources held by the value. It must run at most once
	// per value and must not be called through a borrowed or constant view.
	Dtor(ctx *Context)

	// GCMark marks managed boxes reachable from the value. It is the only
	// collector operation that exists; no sweep is defined.
	GCMark(ctx *Context)
}

// EqComparable is the equality capability.
type EqComparable interface {
	Equals(ctx *Context, other Object) bool
}

// Hashable is the hashing capability.
type Hashable interface {
	Hash(ctx *Context) uint64
}

// HashtableKey composes the capabilities a hashtable key needs. A type
// qualifies only by supplying equality and hashing bound to itself, and the
// implementer guarantees that Equals(a, b) implies Hash(a) == Hash(b). That
// contract is enforced by tests, not at runtime.
type HashtableKey interface {
	Object
	EqComparable
	Hashable
}

// ---------------------------------------------------------------------------
// Type registry
// ---------------------------------------------------------------------------

// Type is the identity a concrete runtime type registers once, process-wide.
type Type struct {
	id   uint32
	name string
}

// ID returns the interned type id.
func (t *Type) ID() uint32 { return t.id }

// Name returns the registered type name.
func (t *Type) Name() string { return t.name }

// TypeTable interns type names to unique descriptors.
type TypeTable struct {
	mu     sync.RWMutex
	byName map[string]*Type
	byID   []*Type
}

// NewTypeTable creates an empty type table.
func NewTypeTable() *TypeTable {
	return &TypeTable{byName: make(map[string]*Type)}
}

// Register returns the descriptor for a type name, creating it if needed.
// Registering the same name twice returns the same descriptor.
func (tt *TypeTable) Register(name string) *Type {
	// Fast path: read-only lookup
	tt.mu.RLock()
	if t, ok := tt.byName[name]; ok {
		tt.mu.RUnlock()
		return t
	}
	tt.mu.RUnlock()

	tt.mu.Lock()
	defer tt.mu.Unlock()

	// Double-check after acquiring write lock
	if t, ok := tt.byName[name]; ok {
		return t
	}

	t := &Type{id: uint32(len(tt.byID)), name: name}
	tt.byName[name] = t
	tt.byID = append(tt.byID, t)
	return t
}

// Lookup returns the descriptor for a type name, or nil and false.
func (tt *TypeTable) Lookup(name string) (*Type, bool) {
	tt.mu.RLock()
	defer tt.mu.RUnlock()
	t, ok := tt.byName[name]
	return t, ok
}

// ByID returns the descriptor for an interned id, or nil if invalid.
func (tt *TypeTable) ByID(id uint32) *Type {
	tt.mu.RLock()
	defer tt.mu.RUnlock()
	if int(id) >= len(tt.byID) {
		return nil
	}
	return tt.byID[id]
}

// Len returns the number of registered types.
func (tt *TypeTable) Len() int {
	tt.mu.RLock()
	defer tt.mu.RUnlock()
	return len(tt.byID)
}

// Types is the process-wide type registry.
var Types = NewTypeTable()

// ---------------------------------------------------------------------------
// Owned objects
// ---------------------------------------------------------------------------

// OwnedObject pairs an Object capability with the exchange-heap box backing
// it, erasing the concrete type so containers can own arbitrary values. The
// holder destroys the value exactly once: Dtor first, then the box.
type OwnedObject struct {
	obj  Object
	free func()
}

// Own converts an Owned handle into an OwnedObject. Ownership moves into the
// result; the source handle is poisoned.
func Own[T any, PT interface {
	Object
	*T
}](o *Owned[T]) OwnedObject {
	m := o.Move()
	return OwnedObject{
		obj:  PT(m.Get()),
		free: func() { m.Free() },
	}
}

// Object returns the held capability value.
func (o OwnedObject) Object() Object {
	return o.obj
}
