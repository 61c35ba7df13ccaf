package rt

// ---------------------------------------------------------------------------
// Ownership-kinded pointers
// ---------------------------------------------------------------------------
//
// A pointer's ownership kind is fixed by its type, never by a runtime tag:
//
//   - Owned[T]    unique owner; moved, never copied; freed exactly once
//   - Borrowed[T] non-owning view, freely copyable, never freed
//   - Managed[T]  collector-governed; carries a mark bit in its box header
//   - Constant[T] shared, immutable, never destructed
//
// Each kind dereferences through its own box type, so recovering a box from
// a payload is a typed field access and mixing kinds is a compile error.
// There is no free operation for Managed or Constant pointers at all.

// OwnedBoxHeader is the bookkeeping attached to every owned box. The heap
// back-reference lets an Owned handle release itself without ambient state.
type OwnedBoxHeader struct {
	heap *ExchangeHeap
	size uint64
	ctx  *Context // allocating context, nil during runtime bootstrap
}

type ownedBox[T any] struct {
	header OwnedBoxHeader
	object T
}

// ManagedBoxHeader is the bookkeeping attached to every managed box. The
// mark flag is the only collector state that exists; no collection pass is
// implemented.
type ManagedBoxHeader struct {
	marked bool
	heap   *ExchangeHeap
	size   uint64
}

type managedBox[T any] struct {
	header ManagedBoxHeader
	object T
}

// ---------------------------------------------------------------------------
// Owned
// ---------------------------------------------------------------------------

// Owned is a unique-owner handle to an exchange-heap payload. The holder is
// responsible for calling Free exactly once. Pass Owned values between
// variables with Move; the moved-from handle is poisoned and any later
// dereference panics.
type Owned[T any] struct {
	box *ownedBox[T]
}

// Get returns the payload pointer. Panics on a moved-from or zero handle.
func (o Owned[T]) Get() *T {
	if o.box == nil {
		panic("Owned.Get: use of moved-from or zero Owned pointer")
	}
	return &o.box.object
}

// IsNil reports whether the handle is zero or has been moved from.
func (o Owned[T]) IsNil() bool {
	return o.box == nil
}

// Move transfers ownership out of o. The receiver is poisoned; only the
// returned handle may be used afterwards.
func (o *Owned[T]) Move() Owned[T] {
	m := Owned[T]{box: o.box}
	o.box = nil
	return m
}

// Borrow returns a non-owning view of the payload. The view must not outlive
// the owned value; that is a caller contract.
func (o Owned[T]) Borrow() Borrowed[T] {
	return Borrowed[T]{obj: o.Get()}
}

// Context returns the context the box was allocated against, nil for
// bootstrap-time allocations.
func (o Owned[T]) Context() *Context {
	if o.box == nil {
		panic("Owned.Context: use of moved-from or zero Owned pointer")
	}
	return o.box.header.ctx
}

// Free releases the underlying box back to the exchange heap that produced
// it and poisons the handle. Freeing twice, or freeing a handle not produced
// by an exchange heap, panics.
func (o *Owned[T]) Free() {
	if o.box == nil {
		panic("Owned.Free: use of moved-from or zero Owned pointer")
	}
	o.box.header.heap.Free(&o.box.object)
	o.box = nil
}

// ---------------------------------------------------------------------------
// Borrowed
// ---------------------------------------------------------------------------

// Borrowed is a non-owning view of a value. It is freely copyable and valid
// only for the lifetime of the value it was borrowed from. It cannot free.
type Borrowed[T any] struct {
	obj *T
}

// Get returns the viewed payload pointer.
func (b Borrowed[T]) Get() *T {
	if b.obj == nil {
		panic("Borrowed.Get: zero Borrowed pointer")
	}
	return b.obj
}

// ---------------------------------------------------------------------------
// Managed
// ---------------------------------------------------------------------------

// Managed is a handle to a box whose lifetime is governed by a mark-and-sweep
// collector. Only the mark bit exists today; no collection pass is defined,
// so managed boxes live until the heap itself is discarded.
type Managed[T any] struct {
	box *managedBox[T]
}

// Get returns the payload pointer.
func (m Managed[T]) Get() *T {
	if m.box == nil {
		panic("Managed.Get: zero Managed pointer")
	}
	return &m.box.object
}

// Borrow returns a non-owning view of the payload.
func (m Managed[T]) Borrow() Borrowed[T] {
	return Borrowed[T]{obj: m.Get()}
}

// Marked reports the mark bit in the box header.
func (m Managed[T]) Marked() bool {
	if m.box == nil {
		panic("Managed.Marked: zero Managed pointer")
	}
	return m.box.header.marked
}

// SetMark sets the mark bit in the box header.
func (m Managed[T]) SetMark() {
	if m.box == nil {
		panic("Managed.SetMark: zero Managed pointer")
	}
	m.box.header.marked = true
}

// ClearMark clears the mark bit in the box header.
func (m Managed[T]) ClearMark() {
	if m.box == nil {
		panic("Managed.ClearMark: zero Managed pointer")
	}
	m.box.header.marked = false
}

// ---------------------------------------------------------------------------
// Constant
// ---------------------------------------------------------------------------

// Constant wraps a globally shared, immutable value. Destructor and borrow
// bookkeeping are no-ops; a Constant is never freed during normal execution.
type Constant[T any] struct {
	obj *T
}

// NewConstant wraps a process-lifetime value as a Constant pointer.
func NewConstant[T any](v *T) Constant[T] {
	return Constant[T]{obj: v}
}

// Get returns the constant payload pointer.
func (c Constant[T]) Get() *T {
	if c.obj == nil {
		panic("Constant.Get: zero Constant pointer")
	}
	return c.obj
}

// Borrow returns a view of the constant. Valid forever.
func (c Constant[T]) Borrow() Borrowed[T] {
	return Borrowed[T]{obj: c.Get()}
}
