package util

import (
	"testing"
)

func TestOrderedMapKeepsInsertionOrder(t *testing.T) {
	om, err := NewOrderedMap(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	om.Add("zeta", 1)
	om.Add("alpha", 2)
	om.Add("mid", 3)

	keys := om.Keys()
	want := []string{"zeta", "alpha", "mid"}
	if len(keys) != len(want) {
		t.Fatal("wrong key count", keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Error("wrong order:", keys)
		}
	}
	if om.Len() != 3 {
		t.Error("wrong length", om.Len())
	}

	v, has := om.Get("alpha")
	if !has || v.(int) != 2 {
		t.Error("lookup failed")
	}
	if _, has := om.Get("missing"); has {
		t.Error("phantom key")
	}
}

func TestOrderedMapReAddKeepsPosition(t *testing.T) {
	om, _ := NewOrderedMap(nil, nil)
	om.Add("a", 1)
	om.Add("b", 2)
	om.Add("a", 3)

	if om.Len() != 2 {
		t.Fatal("duplicate key grew the map")
	}
	v, _ := om.Get("a")
	if v.(int) != 3 {
		t.Error("value not replaced")
	}
}

func TestOrderedMapMismatchedKeys(t *testing.T) {
	_, err := NewOrderedMap([]string{"a"}, map[string]any{"b": 1})
	if err != ErrKeysDontMatchValues {
		t.Error("expected mismatch error, got", err)
	}
}
