package rt

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// Error taxonomy
// ---------------------------------------------------------------------------

var (
	// ErrEmptyValue is returned when reading the value out of an empty Option.
	ErrEmptyValue = errors.New("rt: empty value access")

	// ErrTableFull is returned when a fixed-capacity hashtable has no free
	// slot left for an insert.
	ErrTableFull = errors.New("rt: hashtable full")
)

// AllocError reports that the platform allocator could not satisfy an
// allocation request. The partially constructed value must not be used.
type AllocError struct {
	Size uint64 // requested size in bytes
	Err  error  // underlying platform failure
}

func (e *AllocError) Error() string {
	return fmt.Sprintf("rt: allocation of %d bytes failed: %v", e.Size, e.Err)
}

func (e *AllocError) Unwrap() error {
	return e.Err
}
