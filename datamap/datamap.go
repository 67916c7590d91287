// Package datamap implements the typed, prefix-isolated map over a raw
// kvstore.Store, with its atomic batch controller (start/checkpoint/rewind/
// abort/finish). Composite scopes (atomic_batch_scope, atomic_finalize) live
// in the sibling atomic package, which operates over this map's Controller
// interface.
//
// Concurrent drivers of the atomic protocol on the same Map are not
// prevented by the internal lock alone — the lock only protects incidental
// reader access during a drive. The design assumes the application itself
// serializes StartAtomic/.../FinishAtomic calls on a given Map.
package datamap

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/aleo-chain/mapstore/codec"
	"github.com/aleo-chain/mapstore/internal/xlog"
	"github.com/aleo-chain/mapstore/kvstore"
)

// Error is this package's error type; it is the same shape as codec.Error
// (Kind/Op/Err), reused directly since the RawStore and InvalidState kinds
// this package needs are already part of codec's closed taxonomy.
type Error = codec.Error

// Codec bundles the byte-codec functions for K and V. Go's generics cannot
// express "T has a method available only through a pointer receiver"
// without an awkward second type parameter on every call site, so encode/
// decode are supplied as plain function values instead — the common Go
// idiom for parameterizing a generic container by codec.
type Codec[K comparable, V any] struct {
	EncodeKey   func(K) ([]byte, error)
	DecodeKey   func([]byte) (K, error)
	EncodeValue func(V) ([]byte, error)
	DecodeValue func([]byte) (V, error)
}

// Entry is one confirmed (key, value) pair.
type Entry[K comparable, V any] struct {
	Key   K
	Value V
}

// PendingEntry is one overlay (key, value, deleted) triple, in insertion
// order.
type PendingEntry[K comparable, V any] struct {
	Key     K
	Value   V
	Deleted bool
}

// Map is a typed, prefix-isolated view over a shared raw store.
type Map[K comparable, V any] struct {
	store  kvstore.Store
	prefix []byte
	codec  Codec[K, V]

	mu          sync.Mutex
	overlay     *overlay[K, V]
	checkpoints []int
	inProgress  atomic.Bool

	log *xlog.Logger
}

// Open constructs a Map over store, scoped to the given raw key prefix.
// Opening is cheap and side-effect-free on the store itself; prefix
// de-duplication across multiple Open calls for the same logical map is the
// caller's responsibility (see kvstore.Registry and finalize.Store).
func Open[K comparable, V any](store kvstore.Store, prefix []byte, c Codec[K, V]) *Map[K, V] {
	return &Map[K, V]{
		store:   store,
		prefix:  append([]byte{}, prefix...),
		codec:   c,
		overlay: newOverlay[K, V](),
		log:     xlog.Default().Module("datamap"),
	}
}

// OpenRegistered behaves like Open, but resolves store through reg keyed by
// key instead of taking a store directly: a second OpenRegistered call
// using the same key shares the first caller's raw handle rather than
// invoking openRaw again (see kvstore.Registry). The returned release func
// must be called exactly once when the caller is done with the Map.
func OpenRegistered[K comparable, V any](reg *kvstore.Registry, key string, openRaw func() (kvstore.Store, error), prefix []byte, c Codec[K, V]) (*Map[K, V], func() error, error) {
	store, release, err := reg.Open(key, openRaw)
	if err != nil {
		return nil, nil, err
	}
	return Open(store, prefix, c), release, nil
}

// SetLogger replaces this map's logger. Composite callers such as
// finalize.Store use this to attach the (network_id, dev_tag, map_id)
// context identifying which member table a given Map backs, once that
// context is known to the caller (Map itself has no notion of network or
// dev tag — it only sees a raw prefix).
func (m *Map[K, V]) SetLogger(l *xlog.Logger) {
	m.log = l
}

func (m *Map[K, V]) rawKey(k K) ([]byte, error) {
	kb, err := m.codec.EncodeKey(k)
	if err != nil {
		return nil, codec.Wrap(codec.Serialize, "datamap.rawKey", err)
	}
	out := make([]byte, len(m.prefix)+len(kb))
	copy(out, m.prefix)
	copy(out[len(m.prefix):], kb)
	return out, nil
}

func (m *Map[K, V]) wrapStoreErr(err error) error {
	if err == nil {
		return nil
	}
	return codec.Wrap(codec.RawStore, "datamap", err)
}

// --- Mutations ---

// Insert sets k to v. If a batch is in progress, the write is recorded in
// the pending overlay; otherwise it is written to the raw store directly.
func (m *Map[K, V]) Insert(k K, v V) error {
	if m.inProgress.Load() {
		m.mu.Lock()
		m.overlay.Insert(k, v)
		m.mu.Unlock()
		return nil
	}
	rk, err := m.rawKey(k)
	if err != nil {
		return err
	}
	rv, err := m.codec.EncodeValue(v)
	if err != nil {
		return codec.Wrap(codec.Serialize, "datamap.Insert", err)
	}
	return m.wrapStoreErr(m.store.Put(rk, rv))
}

// Remove deletes k. If a batch is in progress, the delete is recorded in
// the pending overlay (even if k does not currently exist — this is a
// deliberate design decision: a pending delete is recorded, not elided, so
// that a raw store which charges per delete sees a consistent op count);
// otherwise it is applied to the raw store directly.
func (m *Map[K, V]) Remove(k K) error {
	if m.inProgress.Load() {
		m.mu.Lock()
		m.overlay.Remove(k)
		m.mu.Unlock()
		return nil
	}
	rk, err := m.rawKey(k)
	if err != nil {
		return err
	}
	return m.wrapStoreErr(m.store.Delete(rk))
}

// --- Confirmed reads ---

func (m *Map[K, V]) ContainsKeyConfirmed(k K) (bool, error) {
	rk, err := m.rawKey(k)
	if err != nil {
		return false, err
	}
	ok, err := m.store.Has(rk)
	if err != nil {
		return false, m.wrapStoreErr(err)
	}
	return ok, nil
}

func (m *Map[K, V]) GetConfirmed(k K) (V, bool, error) {
	var zero V
	rk, err := m.rawKey(k)
	if err != nil {
		return zero, false, err
	}
	raw, err := m.store.Get(rk)
	if errors.Is(err, kvstore.ErrNotFound) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, m.wrapStoreErr(err)
	}
	v, err := m.codec.DecodeValue(raw)
	if err != nil {
		return zero, false, codec.Wrap(codec.Deserialize, "datamap.GetConfirmed", err)
	}
	return v, true, nil
}

// IterConfirmed returns every confirmed (key, value) pair under this map's
// prefix, in the raw store's key-byte order.
func (m *Map[K, V]) IterConfirmed() ([]Entry[K, V], error) {
	it := m.store.NewIterator(m.prefix)
	defer it.Release()

	var out []Entry[K, V]
	for it.Next() {
		key := it.Key()
		if len(key) < len(m.prefix) {
			continue
		}
		k, err := m.codec.DecodeKey(key[len(m.prefix):])
		if err != nil {
			return nil, codec.Wrap(codec.Deserialize, "datamap.IterConfirmed", err)
		}
		v, err := m.codec.DecodeValue(it.Value())
		if err != nil {
			return nil, codec.Wrap(codec.Deserialize, "datamap.IterConfirmed", err)
		}
		out = append(out, Entry[K, V]{Key: k, Value: v})
	}
	return out, nil
}

// KeysConfirmed returns every confirmed key under this map's prefix.
func (m *Map[K, V]) KeysConfirmed() ([]K, error) {
	entries, err := m.IterConfirmed()
	if err != nil {
		return nil, err
	}
	keys := make([]K, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	return keys, nil
}

// ValuesConfirmed returns every confirmed value under this map's prefix.
func (m *Map[K, V]) ValuesConfirmed() ([]V, error) {
	entries, err := m.IterConfirmed()
	if err != nil {
		return nil, err
	}
	vals := make([]V, len(entries))
	for i, e := range entries {
		vals[i] = e.Value
	}
	return vals, nil
}

// --- Pending reads ---

// GetPending looks up k in the overlay only. found reports whether k has
// any pending entry; if found, deleted reports whether that entry is a
// scheduled delete (in which case v is the zero value).
func (m *Map[K, V]) GetPending(k K) (v V, found bool, deleted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.overlay.Get(k)
	if !ok {
		return v, false, false
	}
	if e.deleted {
		return v, true, true
	}
	return e.value, true, false
}

// IterPending returns every overlay entry in insertion order.
func (m *Map[K, V]) IterPending() []PendingEntry[K, V] {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PendingEntry[K, V], 0, m.overlay.Len())
	m.overlay.Range(func(k K, e overlayEntry[V]) {
		out = append(out, PendingEntry[K, V]{Key: k, Value: e.value, Deleted: e.deleted})
	})
	return out
}

// --- Speculative reads ---

func (m *Map[K, V]) ContainsKeySpeculative(k K) (bool, error) {
	m.mu.Lock()
	e, ok := m.overlay.Get(k)
	m.mu.Unlock()
	if ok {
		return !e.deleted, nil
	}
	return m.ContainsKeyConfirmed(k)
}

func (m *Map[K, V]) GetSpeculative(k K) (V, bool, error) {
	m.mu.Lock()
	e, ok := m.overlay.Get(k)
	m.mu.Unlock()
	if ok {
		var zero V
		if e.deleted {
			return zero, false, nil
		}
		return e.value, true, nil
	}
	return m.GetConfirmed(k)
}

// --- Atomic batch controller ---

// StartAtomic begins a new atomic batch on this map. It panics if a batch
// is already in progress, per the state machine's assertion that
// StartAtomic is only valid from Idle — this is a programming error, not a
// recoverable condition.
func (m *Map[K, V]) StartAtomic() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inProgress.Load() {
		panic("datamap: StartAtomic called while a batch is already in progress")
	}
	m.inProgress.Store(true)
}

// IsAtomicInProgress reports whether a batch is currently active.
func (m *Map[K, V]) IsAtomicInProgress() bool { return m.inProgress.Load() }

// AtomicCheckpoint pushes the current overlay length onto the checkpoint
// stack.
func (m *Map[K, V]) AtomicCheckpoint() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkpoints = append(m.checkpoints, m.overlay.Len())
}

// AtomicRewind pops the top checkpoint (or 0 if none) and truncates the
// overlay to that length. If the overlay is now empty, the batch ends: the
// remaining checkpoints are cleared and IsAtomicInProgress becomes false.
func (m *Map[K, V]) AtomicRewind() {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	if len(m.checkpoints) > 0 {
		n = m.checkpoints[len(m.checkpoints)-1]
		m.checkpoints = m.checkpoints[:len(m.checkpoints)-1]
	}
	m.overlay.Truncate(n)
	if m.overlay.Len() == 0 {
		m.checkpoints = nil
		m.inProgress.Store(false)
	}
}

// AbortAtomic discards the entire overlay and ends the batch.
func (m *Map[K, V]) AbortAtomic() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overlay.Reset()
	m.checkpoints = nil
	m.inProgress.Store(false)
	m.log.Debug("aborted atomic batch")
}

// FinishAtomic serializes every overlay entry, in insertion order, before
// issuing a single atomic raw-store write batch. If any serialization
// fails, no raw-store call is made and the batch remains in progress for
// the caller to retry or abort.
func (m *Map[K, V]) FinishAtomic() error {
	m.mu.Lock()
	pending := make([]PendingEntry[K, V], 0, m.overlay.Len())
	m.overlay.Range(func(k K, e overlayEntry[V]) {
		pending = append(pending, PendingEntry[K, V]{Key: k, Value: e.value, Deleted: e.deleted})
	})
	m.mu.Unlock()

	type rawOp struct {
		key, value []byte
		del        bool
	}
	ops := make([]rawOp, 0, len(pending))
	for _, e := range pending {
		rk, err := m.rawKey(e.Key)
		if err != nil {
			return err
		}
		if e.Deleted {
			ops = append(ops, rawOp{key: rk, del: true})
			continue
		}
		rv, err := m.codec.EncodeValue(e.Value)
		if err != nil {
			return codec.Wrap(codec.Serialize, "datamap.FinishAtomic", err)
		}
		ops = append(ops, rawOp{key: rk, value: rv})
	}

	batch := m.store.NewBatch()
	for _, op := range ops {
		var err error
		if op.del {
			err = batch.Delete(op.key)
		} else {
			err = batch.Put(op.key, op.value)
		}
		if err != nil {
			return m.wrapStoreErr(err)
		}
	}
	if err := batch.Write(); err != nil {
		return m.wrapStoreErr(err)
	}

	m.mu.Lock()
	m.overlay.Reset()
	m.checkpoints = nil
	m.mu.Unlock()
	m.inProgress.Store(false)
	m.log.Debug("committed atomic batch", "ops", len(ops))
	return nil
}
