package rt

import "testing"

// ---------------------------------------------------------------------------
// Ownership pointer tests
// ---------------------------------------------------------------------------

func TestOwnedMoveTransfersOwnership(t *testing.T) {
	h := NewExchangeHeap()

	a, err := Alloc[int](h, nil)
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	*a.Get() = 42

	b := a.Move()
	if !a.IsNil() {
		t.Error("moved-from handle should be poisoned")
	}
	if b.IsNil() {
		t.Fatal("moved-to handle should be live")
	}
	if *b.Get() != 42 {
		t.Errorf("payload = %d, want 42", *b.Get())
	}

	b.Free()
	if h.LiveCount() != 0 {
		t.Errorf("LiveCount = %d after free, want 0", h.LiveCount())
	}
}

func TestOwnedUseAfterMovePanics(t *testing.T) {
	h := NewExchangeHeap()

	a, err := Alloc[int](h, nil)
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	b := a.Move()
	defer b.Free()

	defer func() {
		if recover() == nil {
			t.Error("Get on a moved-from Owned should panic")
		}
	}()
	a.Get()
}

func TestBorrowedViewsOwnedPayload(t *testing.T) {
	h := NewExchangeHeap()

	a, err := Alloc[string](h, nil)
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	*a.Get() = "view"

	// Borrowed views are freely copyable and see the same payload.
	v1 := a.Borrow()
	v2 := v1
	if v1.Get() != v2.Get() {
		t.Error("copies of a Borrowed view should alias the same payload")
	}
	if *v1.Get() != "view" {
		t.Errorf("borrowed payload = %q, want %q", *v1.Get(), "view")
	}

	*v1.Get() = "changed"
	if *a.Get() != "changed" {
		t.Error("mutation through a borrow should be visible to the owner")
	}
	a.Free()
}

func TestManagedMarkBit(t *testing.T) {
	h := NewExchangeHeap()

	m, err := AllocManaged[int](h, nil)
	if err != nil {
		t.Fatalf("AllocManaged failed: %v", err)
	}
	if m.Marked() {
		t.Error("fresh managed box should be unmarked")
	}
	m.SetMark()
	if !m.Marked() {
		t.Error("SetMark should set the mark bit")
	}
	m.ClearMark()
	if m.Marked() {
		t.Error("ClearMark should clear the mark bit")
	}
	if h.ManagedCount() != 1 {
		t.Errorf("ManagedCount = %d, want 1", h.ManagedCount())
	}
}

func TestConstantIsBorrowableForever(t *testing.T) {
	v := 7
	c := NewConstant(&v)

	if *c.Get() != 7 {
		t.Errorf("constant payload = %d, want 7", *c.Get())
	}
	if *c.Borrow().Get() != 7 {
		t.Errorf("borrowed constant payload = %d, want 7", *c.Borrow().Get())
	}
}
