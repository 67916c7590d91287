package kvstore

import (
	"bytes"
	"errors"
	"testing"
)

func TestMemoryStoreBasic(t *testing.T) {
	store := NewMemoryStore()

	if err := store.Put([]byte("key1"), []byte("val1")); err != nil {
		t.Fatal(err)
	}
	val, err := store.Get([]byte("key1"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(val, []byte("val1")) {
		t.Errorf("Get = %s, want val1", val)
	}

	ok, err := store.Has([]byte("key1"))
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("Has(key1) = false, want true")
	}
	ok, err = store.Has([]byte("missing"))
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("Has(missing) = true, want false")
	}
}

func TestMemoryStoreNotFound(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.Get([]byte("nope"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore()
	store.Put([]byte("k"), []byte("v"))
	store.Delete([]byte("k"))

	_, err := store.Get([]byte("k"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("Len = %d, want 0", store.Len())
	}
}

func TestMemoryStoreDataIsolation(t *testing.T) {
	store := NewMemoryStore()

	original := []byte("original")
	store.Put([]byte("key"), original)
	original[0] = 0xff

	val, _ := store.Get([]byte("key"))
	if val[0] == 0xff {
		t.Error("store should copy data, not reference original")
	}

	val[0] = 0xee
	val2, _ := store.Get([]byte("key"))
	if val2[0] == 0xee {
		t.Error("store should return copies, not references")
	}
}

func TestMemoryStoreBatch(t *testing.T) {
	store := NewMemoryStore()
	batch := store.NewBatch()

	batch.Put([]byte("a"), []byte("1"))
	batch.Put([]byte("b"), []byte("2"))
	batch.Delete([]byte("a"))
	batch.Put([]byte("c"), []byte("3"))

	if batch.Len() != 4 {
		t.Errorf("batch Len = %d, want 4", batch.Len())
	}
	if store.Len() != 0 {
		t.Error("store should be empty before batch Write")
	}
	if err := batch.Write(); err != nil {
		t.Fatal(err)
	}

	if ok, _ := store.Has([]byte("a")); ok {
		t.Error("key 'a' should not exist (deleted in batch)")
	}
	if val, err := store.Get([]byte("b")); err != nil || !bytes.Equal(val, []byte("2")) {
		t.Errorf("key 'b': err=%v val=%s", err, val)
	}
}

func TestMemoryStoreBatchDoubleWrite(t *testing.T) {
	store := NewMemoryStore()
	batch := store.NewBatch()
	batch.Put([]byte("x"), []byte("y"))
	if err := batch.Write(); err != nil {
		t.Fatal(err)
	}
	if err := batch.Write(); !errors.Is(err, ErrBatchApplied) {
		t.Errorf("expected ErrBatchApplied, got %v", err)
	}
}

func TestMemoryStoreBatchReset(t *testing.T) {
	store := NewMemoryStore()
	batch := store.NewBatch()
	batch.Put([]byte("a"), []byte("1"))
	batch.Reset()

	if batch.Len() != 0 {
		t.Errorf("batch Len after Reset = %d, want 0", batch.Len())
	}
	batch.Put([]byte("b"), []byte("2"))
	if err := batch.Write(); err != nil {
		t.Fatal(err)
	}
	if val, err := store.Get([]byte("b")); err != nil || !bytes.Equal(val, []byte("2")) {
		t.Errorf("key 'b' after reset+write: err=%v val=%s", err, val)
	}
}

func TestMemoryStoreIteratorWithPrefix(t *testing.T) {
	store := NewMemoryStore()
	store.Put([]byte("aa"), []byte("1"))
	store.Put([]byte("ab"), []byte("2"))
	store.Put([]byte("ba"), []byte("3"))

	it := store.NewIterator([]byte("a"))
	defer it.Release()

	var keys []string
	for it.Next() {
		keys = append(keys, string(it.Key()))
	}
	if len(keys) != 2 || keys[0] != "aa" || keys[1] != "ab" {
		t.Errorf("keys = %v, want [aa ab]", keys)
	}
}

func TestMemoryStoreClose(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
