package atomic

import (
	"errors"
	"testing"

	"github.com/aleo-chain/mapstore/codec"
	"github.com/aleo-chain/mapstore/datamap"
	"github.com/aleo-chain/mapstore/kvstore"
)

func newTestMap(t *testing.T) *datamap.Map[uint64, uint64] {
	t.Helper()
	enc := func(v uint64) ([]byte, error) { return []byte{byte(v)}, nil }
	dec := func(b []byte) (uint64, error) { return uint64(b[0]), nil }
	return datamap.Open(kvstore.NewMemoryStore(), []byte("p"), datamap.Codec[uint64, uint64]{
		EncodeKey: enc, DecodeKey: dec, EncodeValue: enc, DecodeValue: dec,
	})
}

func TestScopeCommitsOnSuccess(t *testing.T) {
	m := newTestMap(t)
	err := Scope(m, func() error {
		return m.Insert(1, 1)
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := m.GetConfirmed(1); !ok {
		t.Error("expected committed insert to be visible")
	}
}

func TestScopeAbortsOnError(t *testing.T) {
	m := newTestMap(t)
	sentinel := errors.New("boom")
	err := Scope(m, func() error {
		m.Insert(1, 1)
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}
	if _, ok, _ := m.GetConfirmed(1); ok {
		t.Error("expected aborted insert to not be visible")
	}
	if m.IsAtomicInProgress() {
		t.Error("expected batch to be cleared after abort")
	}
}

func TestNestedScopeRewindsOnlyInnerWrites(t *testing.T) {
	m := newTestMap(t)
	sentinel := errors.New("inner failure")

	err := Scope(m, func() error {
		if err := m.Insert(1, 1); err != nil {
			return err
		}
		innerErr := Scope(m, func() error {
			m.Insert(2, 2)
			return sentinel
		})
		if innerErr == nil {
			t.Fatal("expected inner scope to report its error")
		}
		// Outer continues despite inner failure — this mirrors nested
		// scopes where only the failing nested layer's writes roll back.
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := m.GetConfirmed(1); !ok {
		t.Error("expected outer insert to survive")
	}
	if _, ok, _ := m.GetConfirmed(2); ok {
		t.Error("expected inner insert to have been rewound")
	}
}

func TestNestedScopeSuccessCarriesIntoOuterCommit(t *testing.T) {
	m := newTestMap(t)
	err := Scope(m, func() error {
		return Scope(m, func() error {
			return m.Insert(5, 5)
		})
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := m.GetConfirmed(5); !ok {
		t.Error("expected nested-then-committed insert to be visible")
	}
}

func TestFinalizeRealRunCommits(t *testing.T) {
	m := newTestMap(t)
	err := Finalize(m, RealRun, func() error {
		return m.Insert(7, 7)
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := m.GetConfirmed(7); !ok {
		t.Error("expected RealRun to commit")
	}
}

func TestFinalizeDryRunAlwaysAborts(t *testing.T) {
	m := newTestMap(t)
	err := Finalize(m, DryRun, func() error {
		return m.Insert(7, 7)
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := m.GetConfirmed(7); ok {
		t.Error("expected DryRun to never persist, even on fn success")
	}
	if m.IsAtomicInProgress() {
		t.Error("expected DryRun to leave controller idle")
	}
}

func TestFinalizeRejectsWhenAlreadyInProgress(t *testing.T) {
	m := newTestMap(t)
	m.StartAtomic()
	defer m.AbortAtomic()

	err := Finalize(m, RealRun, func() error { return nil })
	if err == nil {
		t.Fatal("expected Finalize to reject a controller with a batch already in progress")
	}
	var cerr *codec.Error
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *codec.Error, got %T", err)
	}
	if cerr.Kind != codec.InvalidState {
		t.Errorf("Kind = %v, want InvalidState", cerr.Kind)
	}
}

func TestScopePanicUnwindsViaAbort(t *testing.T) {
	m := newTestMap(t)
	func() {
		defer func() { recover() }()
		Scope(m, func() error {
			m.Insert(1, 1)
			panic("boom")
		})
	}()
	if m.IsAtomicInProgress() {
		t.Error("expected panic to still clear the in-progress batch")
	}
	if _, ok, _ := m.GetConfirmed(1); ok {
		t.Error("expected panic to abort pending writes")
	}
}
