package kvstore

import "testing"

func TestRegistrySharesHandle(t *testing.T) {
	r := NewRegistry()
	opens := 0
	open := func() (Store, error) {
		opens++
		return NewMemoryStore(), nil
	}

	s1, release1, err := r.Open("net1/dev0", open)
	if err != nil {
		t.Fatal(err)
	}
	s2, release2, err := r.Open("net1/dev0", open)
	if err != nil {
		t.Fatal(err)
	}
	if s1 != s2 {
		t.Error("expected Open to return the same shared handle")
	}
	if opens != 1 {
		t.Errorf("open called %d times, want 1", opens)
	}

	if err := release1(); err != nil {
		t.Fatal(err)
	}
	// Still one outstanding reference; the store must not be closed yet —
	// a further Get must still succeed rather than fail on a closed store.
	if _, err := s1.Get([]byte("anything")); !isNotFoundOrNil(err) {
		t.Errorf("store appears closed after first release: %v", err)
	}
	if err := release2(); err != nil {
		t.Fatal(err)
	}

	s3, release3, err := r.Open("net1/dev0", open)
	if err != nil {
		t.Fatal(err)
	}
	defer release3()
	if opens != 2 {
		t.Errorf("open called %d times after full release, want 2", opens)
	}
	if s3 == s1 {
		t.Error("expected a fresh handle after the prior one was fully released")
	}
}

func isNotFoundOrNil(err error) bool {
	return err == nil || err == ErrNotFound
}
