package rt

// Array is a length-prefixed, variable-length sequence of a fixed element
// type. Arrays are exchange-heap payloads, never stack values; they are
// produced by AllocArray and freed through their Owned handle.
type Array[T any] struct {
	Size uint64
	Data []T
}

// At returns a pointer to the element at index i. Panics if out of range.
func (a *Array[T]) At(i uint64) *T {
	if i >= a.Size {
		panic("Array.At: index out of range")
	}
	return &a.Data[i]
}

// FixedSizeArray is the statically sized counterpart of Array: its length is
// fixed at allocation and carries no separate size field.
type FixedSizeArray[T any] struct {
	Data []T
}

// Len returns the fixed element count.
func (a *FixedSizeArray[T]) Len() uint64 {
	return uint64(len(a.Data))
}

// At returns a pointer to the element at index i. Panics if out of range.
func (a *FixedSizeArray[T]) At(i uint64) *T {
	if i >= a.Len() {
		panic("FixedSizeArray.At: index out of range")
	}
	return &a.Data[i]
}
