package rt

// NamespaceType is the registered type descriptor for Namespace.
var NamespaceType = Types.Register("Namespace")

// ---------------------------------------------------------------------------
// Binding
// ---------------------------------------------------------------------------

// BindingKind tags the variant a Binding holds.
type BindingKind uint8

const (
	// BindingEmpty holds nothing.
	BindingEmpty BindingKind = iota

	// BindingOwnedObject owns its value: the binding runs the value's
	// destructor and frees its box exactly once when removed or torn down.
	BindingOwnedObject

	// BindingConstantObject references a constant value that is never
	// destructed.
	BindingConstantObject
)

// String returns a human-readable name for the binding kind.
func (k BindingKind) String() string {
	switch k {
	case BindingEmpty:
		return "empty"
	case BindingOwnedObject:
		return "owned"
	case BindingConstantObject:
		return "constant"
	default:
		return "invalid"
	}
}

// Binding is a namespace entry: a tagged union over {empty, owned object,
// constant object}.
type Binding struct {
	kind BindingKind
	obj  Object
	free func()
}

// OwnedBinding creates a binding that owns v's lifetime.
func OwnedBinding(v OwnedObject) Binding {
	return Binding{kind: BindingOwnedObject, obj: v.obj, free: v.free}
}

// ConstantBinding creates a binding referencing a never-destructed value.
func ConstantBinding(obj Object) Binding {
	return Binding{kind: BindingConstantObject, obj: obj}
}

// Kind returns the binding's variant tag.
func (b Binding) Kind() BindingKind { return b.kind }

// IsEmpty reports whether the binding holds nothing.
func (b Binding) IsEmpty() bool { return b.kind == BindingEmpty }

// IsOwned reports whether the binding owns its value.
func (b Binding) IsOwned() bool { return b.kind == BindingOwnedObject }

// IsConstant reports whether the binding references a constant value.
func (b Binding) IsConstant() bool { return b.kind == BindingConstantObject }

// Object returns the bound value. Panics on an empty binding.
func (b Binding) Object() Object {
	if b.kind == BindingEmpty {
		panic("Binding.Object: empty binding")
	}
	return b.obj
}

// destroy releases the owned variant: destructor first, then the heap box.
// Constant and empty bindings are untouched.
func (b *Binding) destroy(ctx *Context) {
	if b.kind != BindingOwnedObject {
		return
	}
	b.obj.Dtor(ctx)
	if b.free != nil {
		b.free()
	}
	b.kind = BindingEmpty
	b.obj = nil
	b.free = nil
}

// ---------------------------------------------------------------------------
// Namespace
// ---------------------------------------------------------------------------

// Namespace binds symbolic names to values. The name table is a
// protocol-keyed hashtable from String to Binding; the namespace owns every
// key string and every owned binding in it.
type Namespace struct {
	heap     *ExchangeHeap
	name     Owned[String]
	bindings *Hashtable[*String, Binding]
}

// NewNamespace allocates a namespace with the given name from the exchange
// heap. ctx may be nil during runtime bootstrap.
func NewNamespace(ctx *Context, h *ExchangeHeap, name string) (Owned[Namespace], error) {
	nameStr, err := NewString(ctx, h, name)
	if err != nil {
		return Owned[Namespace]{}, err
	}

	tbl, err := NewHashtable[*String, Binding](ctx, h)
	if err != nil {
		nameStr.Get().Dtor(ctx)
		nameStr.Free()
		return Owned[Namespace]{}, err
	}
	// An overwritten binding is destroyed before it is replaced.
	tbl.SetOnReplace(func(ctx *Context, old Binding) {
		old.destroy(ctx)
	})

	box, err := Alloc[Namespace](h, ctx)
	if err != nil {
		tbl.Destroy(ctx, nil)
		nameStr.Get().Dtor(ctx)
		nameStr.Free()
		return Owned[Namespace]{}, err
	}
	ns := box.Get()
	ns.heap = h
	ns.name = nameStr.Move()
	ns.bindings = tbl
	return box, nil
}

// Name returns the namespace name.
func (ns *Namespace) Name() *String {
	return ns.name.Get()
}

// Len returns the number of bindings.
func (ns *Namespace) Len() uint64 {
	return ns.bindings.Len()
}

// BindOwned binds name to an owned value. A previous binding under the same
// name is destroyed before being replaced. On error the value is destroyed;
// it is never leaked and never installed.
func (ns *Namespace) BindOwned(ctx *Context, name string, v OwnedObject) error {
	b := OwnedBinding(v)
	if err := ns.bind(ctx, name, b); err != nil {
		b.destroy(ctx)
		return err
	}
	return nil
}

// BindConstant binds name to a constant value. A previous owned binding
// under the same name is destroyed before being replaced.
func (ns *Namespace) BindConstant(ctx *Context, name string, obj Object) error {
	return ns.bind(ctx, name, ConstantBinding(obj))
}

func (ns *Namespace) bind(ctx *Context, name string, b Binding) error {
	key, err := NewString(ctx, ns.heap, name)
	if err != nil {
		return err
	}
	k := key.Get()
	replaced, err := ns.bindings.Put(ctx, k, b)
	if err != nil || replaced {
		// The slot kept its original key, or the insert failed; either way
		// this key string goes back to the heap.
		k.Dtor(ctx)
		key.Free()
		return err
	}
	// The table owns the key box now; drop the handle without freeing.
	key.Move()
	return nil
}

// Lookup returns the binding under name, or an empty Option.
func (ns *Namespace) Lookup(ctx *Context, name string) (Option[Binding], error) {
	key, err := NewString(ctx, ns.heap, name)
	if err != nil {
		return None[Binding](), err
	}
	k := key.Get()
	res := ns.bindings.Get(ctx, k)
	k.Dtor(ctx)
	key.Free()
	return res, nil
}

// ForEach calls fn for every binding.
func (ns *Namespace) ForEach(fn func(name string, b Binding)) {
	ns.bindings.ForEach(func(k *String, b Binding) {
		fn(k.GoString(), b)
	})
}

// Type returns the Namespace type descriptor.
func (ns *Namespace) Type() *Type {
	return NamespaceType
}

// Dtor tears the namespace down: every owned binding's value is destroyed
// exactly once, every key string is released, then the table's backing
// storage and the namespace name are freed.
func (ns *Namespace) Dtor(ctx *Context) {
	if ns.bindings != nil {
		ns.bindings.Destroy(ctx, func(ctx *Context, k *String, b Binding) {
			b.destroy(ctx)
			k.Dtor(ctx)
			ns.heap.Free(k)
		})
		ns.bindings = nil
	}
	if !ns.name.IsNil() {
		ns.name.Get().Dtor(ctx)
		ns.name.Free()
	}
}

// GCMark is a no-op; namespaces hold no managed references.
func (ns *Namespace) GCMark(ctx *Context) {}
