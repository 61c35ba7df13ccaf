package rt

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// ---------------------------------------------------------------------------
// Namespace images
// ---------------------------------------------------------------------------
//
// An image is the serialized, observable state of a namespace: binding
// names, kinds, and value content where the value type has a portable
// representation. Images use canonical CBOR so identical namespaces encode
// to identical bytes.

// cborEncMode is the canonical CBOR encoding mode used for images.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("rt: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// BindingImage is one serialized namespace entry.
type BindingImage struct {
	Name  string `cbor:"name"`
	Kind  string `cbor:"kind"`
	Type  string `cbor:"type"`
	Bytes []byte `cbor:"bytes,omitempty"` // String content; empty for other types
}

// NamespaceImage is the serialized state of one namespace.
type NamespaceImage struct {
	Name     string         `cbor:"name"`
	Bindings []BindingImage `cbor:"bindings"`
}

// SnapshotNamespace captures a namespace's bindings into an image. The
// namespace is only read; nothing is destroyed or moved.
func SnapshotNamespace(ctx *Context, ns *Namespace) *NamespaceImage {
	img := &NamespaceImage{Name: ns.Name().GoString()}
	ns.ForEach(func(name string, b Binding) {
		bi := BindingImage{
			Name: name,
			Kind: b.Kind().String(),
			Type: b.Object().Type().Name(),
		}
		if s, ok := b.Object().(*String); ok {
			bi.Bytes = append([]byte(nil), s.Bytes()...)
		}
		img.Bindings = append(img.Bindings, bi)
	})
	return img
}

// MarshalImage serializes an image to canonical CBOR bytes.
func MarshalImage(img *NamespaceImage) ([]byte, error) {
	return cborEncMode.Marshal(img)
}

// UnmarshalImage deserializes an image from CBOR bytes and validates the
// binding kind tags.
func UnmarshalImage(data []byte) (*NamespaceImage, error) {
	var img NamespaceImage
	if err := cbor.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("rt: unmarshal namespace image: %w", err)
	}
	for _, b := range img.Bindings {
		switch b.Kind {
		case BindingOwnedObject.String(), BindingConstantObject.String():
		default:
			return nil, fmt.Errorf("rt: namespace image: binding %q has invalid kind %q", b.Name, b.Kind)
		}
	}
	return &img, nil
}

// RestoreNamespace rebuilds a namespace's String-valued bindings from an
// image into a freshly defined namespace on the context's runtime. Bindings
// of other types are skipped; their content is not portable.
func RestoreNamespace(ctx *Context, img *NamespaceImage) (*Namespace, error) {
	ns, err := ctx.Runtime().DefineNamespace(ctx, img.Name)
	if err != nil {
		return nil, err
	}
	for _, bi := range img.Bindings {
		if bi.Type != StringType.Name() || bi.Kind != BindingOwnedObject.String() {
			continue
		}
		s, err := NewString(ctx, ctx.Heap(), string(bi.Bytes))
		if err != nil {
			return nil, err
		}
		if err := ns.BindOwned(ctx, bi.Name, Own[String](&s)); err != nil {
			return nil, err
		}
	}
	return ns, nil
}
