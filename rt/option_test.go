package rt

import (
	"errors"
	"testing"
)

func TestOptionSomeAndNone(t *testing.T) {
	s := Some(3)
	if !s.HasValue() {
		t.Error("Some should report a value")
	}
	v, err := s.Value()
	if err != nil || v != 3 {
		t.Errorf("Value() = (%d, %v), want (3, nil)", v, err)
	}

	n := None[int]()
	if n.HasValue() {
		t.Error("None should report no value")
	}
	if _, err := n.Value(); !errors.Is(err, ErrEmptyValue) {
		t.Errorf("empty Value() error = %v, want ErrEmptyValue", err)
	}
}

func TestOptionMustValuePanicsWhenEmpty(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustValue on None should panic")
		}
	}()
	None[string]().MustValue()
}
