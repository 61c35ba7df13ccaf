package rt

import (
	"sync"
	"unsafe"
)

// ---------------------------------------------------------------------------
// Platform allocator
// ---------------------------------------------------------------------------

// Allocator is the narrow platform interface the exchange heap consumes.
// Alloc reserves size bytes or reports an allocation failure; Free returns
// them. The default allocator never fails; tests substitute bounded ones.
type Allocator interface {
	Alloc(size uint64) error
	Free(size uint64)
}

// sysAllocator is the default platform allocator. The Go runtime provides
// the actual memory; this layer only answers admission.
type sysAllocator struct{}

func (sysAllocator) Alloc(size uint64) error { return nil }
func (sysAllocator) Free(size uint64)        {}

// ---------------------------------------------------------------------------
// ExchangeHeap
// ---------------------------------------------------------------------------

// ExchangeHeap produces Owned values and reclaims them. It is a pass-through
// allocator keyed purely by size: no free list, no resizing, no compaction.
// Every live box is tracked in a registry so that double frees and foreign
// pointers are caught instead of corrupting memory.
//
// Allocation and free are safe to call from the goroutine that owns the
// enclosing Runtime; the registry lock exists for accounting integrity, not
// to make payloads shareable.
type ExchangeHeap struct {
	sys Allocator

	mu      sync.Mutex
	live    map[any]uint64 // owned payload pointer -> box size
	managed map[any]uint64 // managed payload pointer -> box size
	bytes   uint64
}

// NewExchangeHeap creates an exchange heap backed by the system allocator.
func NewExchangeHeap() *ExchangeHeap {
	return NewExchangeHeapWith(sysAllocator{})
}

// NewExchangeHeapWith creates an exchange heap backed by the given platform
// allocator.
func NewExchangeHeapWith(sys Allocator) *ExchangeHeap {
	return &ExchangeHeap{
		sys:     sys,
		live:    make(map[any]uint64),
		managed: make(map[any]uint64),
	}
}

func sizeOf[T any]() uint64 {
	var zero T
	return uint64(unsafe.Sizeof(zero))
}

// Alloc allocates one owned box sized header+T and returns an Owned handle
// to the payload. On allocation failure the returned handle must not be used.
func Alloc[T any](h *ExchangeHeap, ctx *Context) (Owned[T], error) {
	size := sizeOf[OwnedBoxHeader]() + sizeOf[T]()
	if err := h.sys.Alloc(size); err != nil {
		return Owned[T]{}, &AllocError{Size: size, Err: err}
	}
	box := &ownedBox[T]{header: OwnedBoxHeader{heap: h, size: size, ctx: ctx}}
	h.track(&box.object, size)
	return Owned[T]{box: box}, nil
}

// AllocArray allocates one owned box holding an Array of length elements.
// The array's Size field is set to length; the elements are zero values.
func AllocArray[T any](h *ExchangeHeap, ctx *Context, length uint64) (Owned[Array[T]], error) {
	size := sizeOf[OwnedBoxHeader]() + sizeOf[Array[T]]() + sizeOf[T]()*length
	if err := h.sys.Alloc(size); err != nil {
		return Owned[Array[T]]{}, &AllocError{Size: size, Err: err}
	}
	box := &ownedBox[Array[T]]{header: OwnedBoxHeader{heap: h, size: size, ctx: ctx}}
	box.object.Size = length
	box.object.Data = make([]T, length)
	h.track(&box.object, size)
	return Owned[Array[T]]{box: box}, nil
}

// AllocFixedArray allocates one owned box holding a FixedSizeArray of length
// elements.
func AllocFixedArray[T any](h *ExchangeHeap, ctx *Context, length uint64) (Owned[FixedSizeArray[T]], error) {
	size := sizeOf[OwnedBoxHeader]() + sizeOf[FixedSizeArray[T]]() + sizeOf[T]()*length
	if err := h.sys.Alloc(size); err != nil {
		return Owned[FixedSizeArray[T]]{}, &AllocError{Size: size, Err: err}
	}
	box := &ownedBox[FixedSizeArray[T]]{header: OwnedBoxHeader{heap: h, size: size, ctx: ctx}}
	box.object.Data = make([]T, length)
	h.track(&box.object, size)
	return Owned[FixedSizeArray[T]]{box: box}, nil
}

// AllocManaged allocates one managed box sized header+T. Managed boxes carry
// a mark bit and are never freed through a handle; they are reclaimed only
// by a collection pass, which does not exist yet.
func AllocManaged[T any](h *ExchangeHeap, ctx *Context) (Managed[T], error) {
	size := sizeOf[ManagedBoxHeader]() + sizeOf[T]()
	if err := h.sys.Alloc(size); err != nil {
		return Managed[T]{}, &AllocError{Size: size, Err: err}
	}
	box := &managedBox[T]{header: ManagedBoxHeader{heap: h, size: size}}
	h.mu.Lock()
	h.managed[&box.object] = size
	h.bytes += size
	h.mu.Unlock()
	return Managed[T]{box: box}, nil
}

// Free releases the box backing a payload pointer previously returned by
// Alloc or AllocArray on this heap. Freeing twice, or freeing a pointer this
// heap did not produce, panics.
func (h *ExchangeHeap) Free(payload any) {
	h.mu.Lock()
	size, ok := h.live[payload]
	if !ok {
		h.mu.Unlock()
		panic("ExchangeHeap.Free: double free or pointer not produced by this heap")
	}
	delete(h.live, payload)
	h.bytes -= size
	h.mu.Unlock()
	h.sys.Free(size)
}

func (h *ExchangeHeap) track(payload any, size uint64) {
	h.mu.Lock()
	h.live[payload] = size
	h.bytes += size
	h.mu.Unlock()
}

// LiveCount returns the number of live owned boxes.
func (h *ExchangeHeap) LiveCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.live)
}

// ManagedCount returns the number of managed boxes allocated so far.
func (h *ExchangeHeap) ManagedCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.managed)
}

// LiveBytes returns the total bytes held by live boxes, managed included.
func (h *ExchangeHeap) LiveBytes() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.bytes
}
