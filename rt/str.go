package rt

import "unicode/utf8"

// StringType is the registered type descriptor for String.
var StringType = Types.Register("String")

// String is an immutable-by-convention UTF-8 byte sequence with a separately
// tracked codepoint count. The bytes live in an owned exchange-heap array;
// the count is derived by decoding, not by byte length, so multibyte
// sequences are counted correctly.
//
// *String satisfies Object, EqComparable and Hashable, and therefore
// HashtableKey.
type String struct {
	numCodepoints uint64
	data          Owned[Array[byte]]
}

// NewString allocates a String on the given exchange heap with the byte
// content of s. The caller owns the result and must free it through its
// Owned handle after running Dtor.
func NewString(ctx *Context, h *ExchangeHeap, s string) (Owned[String], error) {
	data, err := AllocArray[byte](h, ctx, uint64(len(s)))
	if err != nil {
		return Owned[String]{}, err
	}
	copy(data.Get().Data, s)

	box, err := Alloc[String](h, ctx)
	if err != nil {
		data.Free()
		return Owned[String]{}, err
	}
	str := box.Get()
	str.numCodepoints = uint64(utf8.RuneCountInString(s))
	str.data = data.Move()
	return box, nil
}

// NumCodepoints returns the number of Unicode codepoints in the string.
func (s *String) NumCodepoints() uint64 {
	return s.numCodepoints
}

// Bytes returns the UTF-8 byte content. The slice aliases the string's
// storage and must not be mutated or retained past the string's lifetime.
func (s *String) Bytes() []byte {
	if s.data.IsNil() {
		return nil
	}
	return s.data.Get().Data
}

// GoString returns the content as a Go string.
func (s *String) GoString() string {
	return string(s.Bytes())
}

// Type returns the String type descriptor.
func (s *String) Type() *Type {
	return StringType
}

// Dtor frees the backing byte array. Runs at most once.
func (s *String) Dtor(ctx *Context) {
	if !s.data.IsNil() {
		s.data.Free()
	}
}

// GCMark is a no-op; strings hold no managed references.
func (s *String) GCMark(ctx *Context) {}

// Equals reports byte equality with another String. Non-String objects are
// never equal.
func (s *String) Equals(ctx *Context, other Object) bool {
	o, ok := other.(*String)
	if !ok {
		return false
	}
	a, b := s.Bytes(), o.Bytes()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// FNV-1a over the byte content. Equal strings hash equally because the hash
// depends on the bytes alone.
const (
	fnvOffset uint64 = 14695981039346656037
	fnvPrime  uint64 = 1099511628211
)

// Hash returns the FNV-1a hash of the byte content.
func (s *String) Hash(ctx *Context) uint64 {
	h := fnvOffset
	for _, b := range s.Bytes() {
		h ^= uint64(b)
		h *= fnvPrime
	}
	return h
}
