package finalize

import (
	"bytes"
	"context"
	"testing"

	"github.com/aleo-chain/mapstore/atomic"
	"github.com/aleo-chain/mapstore/codec"
	"github.com/aleo-chain/mapstore/kvstore"
	"github.com/aleo-chain/mapstore/plaintext"
)

func TestOpenRegisteredSharesRawHandleForSameNetworkDev(t *testing.T) {
	reg := kvstore.NewRegistry()
	opens := 0
	openRaw := func() (kvstore.Store, error) {
		opens++
		return kvstore.NewMemoryStore(), nil
	}

	fs1, release1, err := OpenRegistered(reg, 1, nil, openRaw, byteValueCodec())
	if err != nil {
		t.Fatal(err)
	}
	fs2, release2, err := OpenRegistered(reg, 1, nil, openRaw, byteValueCodec())
	if err != nil {
		t.Fatal(err)
	}
	if opens != 1 {
		t.Errorf("openRaw called %d times, want 1", opens)
	}
	if fs1.rawHandle() != fs2.rawHandle() {
		t.Error("expected both Stores to share one raw handle")
	}

	pid := testID(0x42)
	if err := fs1.ProgramIDs.Insert(pid, 5); err != nil {
		t.Fatal(err)
	}
	if edition, ok, err := fs2.ProgramIDs.GetConfirmed(pid); err != nil || !ok || edition != 5 {
		t.Fatalf("fs2 should see fs1's write via the shared handle: %d, %v, %v", edition, ok, err)
	}

	if err := release1(); err != nil {
		t.Fatal(err)
	}
	if err := release2(); err != nil {
		t.Fatal(err)
	}

	dev := uint16(9)
	fs3, release3, err := OpenRegistered(reg, 1, &dev, openRaw, byteValueCodec())
	if err != nil {
		t.Fatal(err)
	}
	defer release3()
	if opens != 2 {
		t.Errorf("openRaw called %d times after a distinct dev tag, want 2", opens)
	}
	if fs3.rawHandle() == fs1.rawHandle() {
		t.Error("expected a distinct dev tag to get its own raw handle")
	}
}

func plaintextValueCodec() ValueCodec[plaintext.Value] {
	return ValueCodec[plaintext.Value]{
		Encode: func(v plaintext.Value) ([]byte, error) { return codec.WriteLE(v) },
		Decode: func(b []byte) (plaintext.Value, error) {
			return codec.ReadLE[plaintext.Value, *plaintext.Value](b)
		},
	}
}

func TestStoreWithPlaintextValues(t *testing.T) {
	store := kvstore.NewMemoryStore()
	fs := Open(store, 1, nil, plaintextValueCodec())
	kv := KeyValueID{MappingID: testID(0x09), Index: 1}

	amount := plaintext.NewLiteral(plaintext.Literal{Kind: plaintext.KindU64, U64: 100})
	if err := fs.Values.Insert(kv, amount); err != nil {
		t.Fatal(err)
	}
	got, ok, err := fs.Values.GetConfirmed(kv)
	if err != nil || !ok {
		t.Fatalf("GetConfirmed err=%v ok=%v", err, ok)
	}
	if got.Literal.Kind != plaintext.KindU64 || got.Literal.U64 != 100 {
		t.Errorf("got = %+v, want U64(100)", got)
	}
}

func byteValueCodec() ValueCodec[[]byte] {
	return ValueCodec[[]byte]{
		Encode: func(v []byte) ([]byte, error) { return v, nil },
		Decode: func(b []byte) ([]byte, error) { return append([]byte{}, b...), nil },
	}
}

func testID(b byte) ID {
	var id ID
	id[0] = b
	return id
}

func TestOpenAndProgramIDRoundTrip(t *testing.T) {
	store := kvstore.NewMemoryStore()
	fs := Open(store, 1, nil, byteValueCodec())

	pid := testID(0x01)
	if err := fs.ProgramIDs.Insert(pid, 3); err != nil {
		t.Fatal(err)
	}
	edition, ok, err := fs.ProgramIDs.GetConfirmed(pid)
	if err != nil || !ok || edition != 3 {
		t.Fatalf("GetConfirmed = %d, %v, %v", edition, ok, err)
	}
}

func TestStoreFinalizeCommitsAcrossAllMaps(t *testing.T) {
	store := kvstore.NewMemoryStore()
	fs := Open(store, 1, nil, byteValueCodec())

	pid := testID(0xAA)
	kv := KeyValueID{MappingID: testID(0xBB), Index: 7}

	err := atomic.Finalize(fs, atomic.RealRun, func() error {
		if err := fs.ProgramIDs.Insert(pid, 1); err != nil {
			return err
		}
		if err := fs.MappingIDs.Insert(mappingKey{ProgramID: pid, Mapping: "account"}, kv.MappingID); err != nil {
			return err
		}
		if err := fs.KeyValueIDs.Insert(keyLookup{MappingID: kv.MappingID, KeyBytes: "addr1"}, kv.Index); err != nil {
			return err
		}
		if err := fs.Keys.Insert(kv, []byte("addr1")); err != nil {
			return err
		}
		return fs.Values.Insert(kv, []byte("100u64"))
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, ok, _ := fs.ProgramIDs.GetConfirmed(pid); !ok {
		t.Error("expected ProgramIDs entry to be committed")
	}
	key, ok, err := fs.Keys.GetConfirmed(kv)
	if err != nil || !ok || !bytes.Equal(key, []byte("addr1")) {
		t.Fatalf("Keys.GetConfirmed = %q, %v, %v", key, ok, err)
	}
	val, ok, err := fs.Values.GetConfirmed(kv)
	if err != nil || !ok || !bytes.Equal(val, []byte("100u64")) {
		t.Fatalf("Values.GetConfirmed = %q, %v, %v", val, ok, err)
	}
}

func TestStoreFinalizeDryRunLeavesNoTrace(t *testing.T) {
	store := kvstore.NewMemoryStore()
	fs := Open(store, 1, nil, byteValueCodec())
	pid := testID(0x01)

	err := atomic.Finalize(fs, atomic.DryRun, func() error {
		return fs.ProgramIDs.Insert(pid, 9)
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := fs.ProgramIDs.GetConfirmed(pid); ok {
		t.Error("expected DryRun to leave no committed trace")
	}
	if fs.IsAtomicInProgress() {
		t.Error("expected Store to be idle after DryRun")
	}
}

func TestStoreScopeAbortRollsBackEveryMember(t *testing.T) {
	store := kvstore.NewMemoryStore()
	fs := Open(store, 1, nil, byteValueCodec())
	pid := testID(0x02)
	kv := KeyValueID{MappingID: testID(0x03), Index: 1}

	err := atomic.Scope(fs, func() error {
		fs.ProgramIDs.Insert(pid, 1)
		fs.Keys.Insert(kv, []byte("k"))
		return errBoom
	})
	if err == nil {
		t.Fatal("expected error to propagate")
	}
	if _, ok, _ := fs.ProgramIDs.GetConfirmed(pid); ok {
		t.Error("expected ProgramIDs write to be rolled back")
	}
	if _, ok, _ := fs.Keys.GetConfirmed(kv); ok {
		t.Error("expected Keys write to be rolled back")
	}
}

func TestDevTaggedStoreIsolatedFromProduction(t *testing.T) {
	store := kvstore.NewMemoryStore()
	prod := Open(store, 1, nil, byteValueCodec())
	dev := uint16(7)
	devStore := Open(store, 1, &dev, byteValueCodec())

	pid := testID(0x05)
	if err := prod.ProgramIDs.Insert(pid, 1); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := devStore.ProgramIDs.GetConfirmed(pid); ok {
		t.Error("expected dev-tagged store to not see production writes")
	}
}

func TestStatsCountsEachMemberMap(t *testing.T) {
	store := kvstore.NewMemoryStore()
	fs := Open(store, 1, nil, byteValueCodec())
	kv := KeyValueID{MappingID: testID(0x01), Index: 1}

	if err := fs.ProgramIDs.Insert(testID(0x01), 1); err != nil {
		t.Fatal(err)
	}
	if err := fs.Keys.Insert(kv, []byte("k")); err != nil {
		t.Fatal(err)
	}

	stats, err := fs.Stats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.ProgramIDs != 1 {
		t.Errorf("ProgramIDs = %d, want 1", stats.ProgramIDs)
	}
	if stats.Keys != 1 {
		t.Errorf("Keys = %d, want 1", stats.Keys)
	}
	if stats.Values != 0 {
		t.Errorf("Values = %d, want 0", stats.Values)
	}
}

var errBoom = &boomErr{}

type boomErr struct{}

func (*boomErr) Error() string { return "boom" }
