package storage

import (
	"bytes"
	"errors"
	"testing"
)

func TestPrefixDB_Isolation(t *testing.T) {
	inner := NewMemory()
	a := NewPrefixDB(inner, []byte("a:"))
	b := NewPrefixDB(inner, []byte("b:"))

	if err := a.Put([]byte("k"), []byte("va")); err != nil {
		t.Fatalf("a.Put: %v", err)
	}
	if err := b.Put([]byte("k"), []byte("vb")); err != nil {
		t.Fatalf("b.Put: %v", err)
	}

	got, err := a.Get([]byte("k"))
	if err != nil {
		t.Fatalf("a.Get: %v", err)
	}
	if !bytes.Equal(got, []byte("va")) {
		t.Errorf("a.Get = %q, want %q", got, "va")
	}

	got, err = b.Get([]byte("k"))
	if err != nil {
		t.Fatalf("b.Get: %v", err)
	}
	if !bytes.Equal(got, []byte("vb")) {
		t.Errorf("b.Get = %q, want %q", got, "vb")
	}
}

func TestPrefixDB_ForEach_StripsPrefix(t *testing.T) {
	inner := NewMemory()
	p := NewPrefixDB(inner, []byte("ns/"))

	if err := p.Put([]byte("x1"), []byte("1")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := p.Put([]byte("x2"), []byte("2")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	var keys []string
	err := p.ForEach([]byte("x"), func(key, value []byte) error {
		keys = append(keys, string(key))
		return nil
	})
	if err != nil {
		t.Fatalf("ForEach: %v", err)
	}
	if len(keys) != 2 || keys[0] != "x1" || keys[1] != "x2" {
		t.Errorf("keys = %v, want [x1 x2]", keys)
	}
}

func TestPrefixDB_DeleteAll(t *testing.T) {
	inner := NewMemory()
	p := NewPrefixDB(inner, []byte("gone/"))
	keep := NewPrefixDB(inner, []byte("keep/"))

	if err := p.Put([]byte("a"), []byte("1")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := keep.Put([]byte("a"), []byte("1")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	if err := p.DeleteAll(); err != nil {
		t.Fatalf("DeleteAll: %v", err)
	}

	if _, err := p.Get([]byte("a")); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound in cleared namespace, got %v", err)
	}
	if _, err := keep.Get([]byte("a")); err != nil {
		t.Errorf("sibling namespace affected: %v", err)
	}
}

func TestPrefixDB_Batch(t *testing.T) {
	inner := NewMemory()
	p := NewPrefixDB(inner, []byte("pb/"))

	b := p.NewBatch()
	if err := b.Put([]byte("k1"), []byte("v1")); err != nil {
		t.Fatalf("batch Put: %v", err)
	}
	if err := b.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	got, err := p.Get([]byte("k1"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, []byte("v1")) {
		t.Errorf("Get = %q, want v1", got)
	}

	// Raw key carries the namespace prefix.
	if _, err := inner.Get([]byte("pb/k1")); err != nil {
		t.Errorf("raw prefixed key missing: %v", err)
	}
}
