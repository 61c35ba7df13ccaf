package rt

// Option is a tagged value that either holds exactly one value of type T or
// nothing. It is the hashtable's slot sentinel and the general "maybe absent"
// return shape throughout the runtime.
type Option[T any] struct {
	present bool
	value   T
}

// Some returns an Option holding v.
func Some[T any](v T) Option[T] {
	return Option[T]{present: true, value: v}
}

// None returns an empty Option.
func None[T any]() Option[T] {
	return Option[T]{}
}

// HasValue reports whether the Option holds a value.
func (o Option[T]) HasValue() bool {
	return o.present
}

// Value returns the held value, or ErrEmptyValue if the Option is empty.
// An empty access is a programmer error; callers propagate it rather than
// guessing a default.
func (o Option[T]) Value() (T, error) {
	if !o.present {
		var zero T
		return zero, ErrEmptyValue
	}
	return o.value, nil
}

// MustValue returns the held value. Panics if the Option is empty.
func (o Option[T]) MustValue() T {
	if !o.present {
		panic("Option.MustValue: empty option")
	}
	return o.value
}
