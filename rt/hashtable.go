package rt

// ---------------------------------------------------------------------------
// Protocol-keyed hashtable
// ---------------------------------------------------------------------------

// DefaultHashtableCapacity is the backing-array capacity a growable table
// starts with.
const DefaultHashtableCapacity = 100

// Growth threshold: a growable table doubles its backing array when the next
// insert would push the load factor past 3/4, rehashing every occupied slot.
const (
	growthNum = 3
	growthDen = 4
)

type htEntry[K HashtableKey, V any] struct {
	key Option[K]
	val V
}

// Hashtable maps a HashtableKey-capable type to an arbitrary value type. The
// backing storage is an exchange-heap Array of (Option key, value) entries;
// an empty key marks a free slot. Collisions resolve by linear probing with
// wraparound. Deletion is not supported, so an empty slot always terminates
// a probe chain and proves absence.
//
// A Hashtable belongs to one Runtime/Context chain; concurrent mutation
// without external synchronization is a data race by contract.
type Hashtable[K HashtableKey, V any] struct {
	heap     *ExchangeHeap
	entries  Owned[Array[htEntry[K, V]]]
	count    uint64
	growable bool

	// onReplace runs on the value about to be overwritten by Put, before it
	// is replaced. Owners that hold destructible values install it so an
	// overwrite cannot leak.
	onReplace func(ctx *Context, old V)
}

// NewHashtable creates a growable table with the default capacity.
func NewHashtable[K HashtableKey, V any](ctx *Context, h *ExchangeHeap) (*Hashtable[K, V], error) {
	return newHashtable[K, V](ctx, h, DefaultHashtableCapacity, true)
}

// NewFixedHashtable creates a table whose capacity never changes. Put
// returns ErrTableFull once probing wraps without finding a free slot.
func NewFixedHashtable[K HashtableKey, V any](ctx *Context, h *ExchangeHeap, capacity uint64) (*Hashtable[K, V], error) {
	return newHashtable[K, V](ctx, h, capacity, false)
}

func newHashtable[K HashtableKey, V any](ctx *Context, h *ExchangeHeap, capacity uint64, growable bool) (*Hashtable[K, V], error) {
	if capacity == 0 {
		panic("NewHashtable: zero capacity")
	}
	entries, err := AllocArray[htEntry[K, V]](h, ctx, capacity)
	if err != nil {
		return nil, err
	}
	return &Hashtable[K, V]{heap: h, entries: entries, growable: growable}, nil
}

// SetOnReplace installs the overwrite hook.
func (t *Hashtable[K, V]) SetOnReplace(fn func(ctx *Context, old V)) {
	t.onReplace = fn
}

// Len returns the number of occupied slots.
func (t *Hashtable[K, V]) Len() uint64 {
	return t.count
}

// Cap returns the backing-array capacity.
func (t *Hashtable[K, V]) Cap() uint64 {
	return t.entries.Get().Size
}

// Put maps key to val. An existing equal key has its value overwritten (the
// onReplace hook runs on the old value first); otherwise the pair is placed
// in the first free slot on the probe chain. The stored key is retained on
// overwrite, so the caller still owns the key it passed in that case.
func (t *Hashtable[K, V]) Put(ctx *Context, key K, val V) (replaced bool, err error) {
	if t.growable && (t.count+1)*growthDen > t.Cap()*growthNum {
		if err := t.grow(ctx); err != nil {
			return false, err
		}
	}

	arr := t.entries.Get()
	capacity := arr.Size
	start := key.Hash(ctx) % capacity
	for i := uint64(0); i < capacity; i++ {
		e := arr.At((start + i) % capacity)
		if !e.key.HasValue() {
			e.key = Some(key)
			e.val = val
			t.count++
			return false, nil
		}
		if e.key.MustValue().Equals(ctx, key) {
			if t.onReplace != nil {
				t.onReplace(ctx, e.val)
			}
			e.val = val
			return true, nil
		}
	}
	return false, ErrTableFull
}

// Get returns the value stored under key, or an empty Option. The probe
// stops at the first empty slot.
func (t *Hashtable[K, V]) Get(ctx *Context, key K) Option[V] {
	arr := t.entries.Get()
	capacity := arr.Size
	start := key.Hash(ctx) % capacity
	for i := uint64(0); i < capacity; i++ {
		e := arr.At((start + i) % capacity)
		if !e.key.HasValue() {
			return None[V]()
		}
		if e.key.MustValue().Equals(ctx, key) {
			return Some(e.val)
		}
	}
	return None[V]()
}

// ForEach calls fn for every occupied slot, in backing-array order.
func (t *Hashtable[K, V]) ForEach(fn func(key K, val V)) {
	arr := t.entries.Get()
	for i := uint64(0); i < arr.Size; i++ {
		e := arr.At(i)
		if e.key.HasValue() {
			fn(e.key.MustValue(), e.val)
		}
	}
}

// grow doubles the backing array and rehashes every occupied slot. The old
// array is freed afterwards; keys and values move, they are not copied or
// destroyed.
func (t *Hashtable[K, V]) grow(ctx *Context) error {
	old := t.entries.Move()
	oldArr := old.Get()

	bigger, err := AllocArray[htEntry[K, V]](t.heap, ctx, oldArr.Size*2)
	if err != nil {
		// Keep the old storage; the insert that triggered growth fails.
		t.entries = old.Move()
		return err
	}

	newArr := bigger.Get()
	capacity := newArr.Size
	for i := uint64(0); i < oldArr.Size; i++ {
		e := oldArr.At(i)
		if !e.key.HasValue() {
			continue
		}
		start := e.key.MustValue().Hash(ctx) % capacity
		for j := uint64(0); j < capacity; j++ {
			slot := newArr.At((start + j) % capacity)
			if !slot.key.HasValue() {
				*slot = *e
				break
			}
		}
	}

	t.entries = bigger.Move()
	old.Free()
	return nil
}

// Destroy runs destroyEntry on every occupied slot, then frees the backing
// storage. Empty slots are skipped; the table must not be used afterwards.
func (t *Hashtable[K, V]) Destroy(ctx *Context, destroyEntry func(ctx *Context, key K, val V)) {
	if t.entries.IsNil() {
		return
	}
	if destroyEntry != nil {
		arr := t.entries.Get()
		for i := uint64(0); i < arr.Size; i++ {
			e := arr.At(i)
			if e.key.HasValue() {
				destroyEntry(ctx, e.key.MustValue(), e.val)
			}
		}
	}
	t.entries.Free()
	t.count = 0
}
