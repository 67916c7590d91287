// Package finalize composes the five Program-group maps (program id,
// mapping id, key/value id, key, value) into a single Store that speaks the
// same Controller protocol as one datamap.Map — atomic.Scope and
// atomic.Finalize work over either without modification.
package finalize

import (
	"context"
	"encoding/binary"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/aleo-chain/mapstore/atomic"
	"github.com/aleo-chain/mapstore/codec"
	"github.com/aleo-chain/mapstore/datamap"
	"github.com/aleo-chain/mapstore/internal/xlog"
	"github.com/aleo-chain/mapstore/kvstore"
	"github.com/aleo-chain/mapstore/mapid"
)

// ID is an opaque 32-byte identifier, used for both program IDs and mapping
// IDs (matching the console-layer ID types this store's keys are built
// from). A concrete finalize-value codec is out of this module's scope;
// callers supply one via ValueCodec.
type ID [32]byte

func (id ID) EncodeTo(w *codec.Writer) error {
	w.WriteRaw(id[:])
	return nil
}

func (id *ID) DecodeFrom(r *codec.Reader) error {
	b, err := r.ReadRaw(32)
	if err != nil {
		return err
	}
	copy(id[:], b)
	return nil
}

func encodeID(id ID) ([]byte, error) { return codec.WriteLE(id) }
func decodeID(b []byte) (ID, error)  { return codec.ReadLE[ID, *ID](b) }

// KeyValueID pairs a mapping ID with a key's index within that mapping, the
// composite key used by the key_map/value_map tables.
type KeyValueID struct {
	MappingID ID
	Index     uint64
}

func (k KeyValueID) EncodeTo(w *codec.Writer) error {
	if err := k.MappingID.EncodeTo(w); err != nil {
		return err
	}
	w.WriteUint64(k.Index)
	return nil
}

func (k *KeyValueID) DecodeFrom(r *codec.Reader) error {
	if err := k.MappingID.DecodeFrom(r); err != nil {
		return err
	}
	idx, err := r.ReadUint64()
	if err != nil {
		return err
	}
	k.Index = idx
	return nil
}

func encodeKeyValueID(k KeyValueID) ([]byte, error) { return codec.WriteLE(k) }
func decodeKeyValueID(b []byte) (KeyValueID, error) {
	return codec.ReadLE[KeyValueID, *KeyValueID](b)
}

// ValueCodec lets callers plug in their own finalize-value representation
// (the plaintext package's Value type is a reasonable default) without this
// package committing to one concretely.
type ValueCodec[V any] struct {
	Encode func(V) ([]byte, error)
	Decode func([]byte) (V, error)
}

// Store groups the five Program-group maps that together back a
// program's finalize (on-chain persistent storage) state:
//
//   - ProgramIDMap: program ID -> edition
//   - MappingIDMap: (program ID, mapping name) -> mapping ID
//   - KeyValueIDMap: (mapping ID, key) -> key/value index
//   - KeyMap: key/value index -> key
//   - ValueMap: key/value index -> value
//
// This mirrors a console-program store grouping the same five tables under
// one handle. Every Controller call on Store fans out across all five maps
// so that atomic.Scope/atomic.Finalize see Store as a single participant.
type Store[V any] struct {
	ProgramIDs  *datamap.Map[ID, uint16]
	MappingIDs  *datamap.Map[mappingKey, ID]
	KeyValueIDs *datamap.Map[keyLookup, uint64]
	Keys        *datamap.Map[KeyValueID, []byte]
	Values      *datamap.Map[KeyValueID, V]

	dev      *uint16
	rawStore kvstore.Store
}

// mappingKey is (program ID, mapping name).
type mappingKey struct {
	ProgramID ID
	Mapping   string
}

func (k mappingKey) EncodeTo(w *codec.Writer) error {
	if err := k.ProgramID.EncodeTo(w); err != nil {
		return err
	}
	return w.WriteString(k.Mapping)
}

func (k *mappingKey) DecodeFrom(r *codec.Reader) error {
	if err := k.ProgramID.DecodeFrom(r); err != nil {
		return err
	}
	s, err := r.ReadString()
	if err != nil {
		return err
	}
	k.Mapping = s
	return nil
}

// keyLookup is (mapping ID, plaintext key bytes) — the raw key bytes rather
// than a parsed plaintext.Value, since KeyValueIDMap only needs to compare
// encoded keys for equality, not interpret them.
type keyLookup struct {
	MappingID ID
	KeyBytes  string
}

func (k keyLookup) EncodeTo(w *codec.Writer) error {
	if err := k.MappingID.EncodeTo(w); err != nil {
		return err
	}
	return w.WriteBytesLP([]byte(k.KeyBytes))
}

func (k *keyLookup) DecodeFrom(r *codec.Reader) error {
	if err := k.MappingID.DecodeFrom(r); err != nil {
		return err
	}
	b, err := r.ReadBytesLP()
	if err != nil {
		return err
	}
	k.KeyBytes = string(b)
	return nil
}

func prefix(networkID uint16, dev *uint16, id mapid.MapID) []byte {
	out := make([]byte, 0, 6)
	var nb [2]byte
	binary.LittleEndian.PutUint16(nb[:], networkID)
	out = append(out, nb[:]...)
	if dev != nil {
		var db [2]byte
		binary.LittleEndian.PutUint16(db[:], *dev)
		out = append(out, db[:]...)
	}
	var mb [2]byte
	binary.LittleEndian.PutUint16(mb[:], id.Uint16())
	out = append(out, mb[:]...)
	return out
}

// Open builds a Store over the five Program-group maps, all sharing store,
// keyed by networkID and the optional devTag (nil means no development
// network tag, matching MainnetV0-style deployments).
func Open[V any](store kvstore.Store, networkID uint16, devTag *uint16, vc ValueCodec[V]) *Store[V] {
	base := xlog.Default().Module("finalize")
	memberLog := func(table string, id mapid.MapID) *xlog.Logger {
		return base.WithMap(networkID, devTag, id.Uint16()).With("table", table)
	}

	programIDsMapID := mapid.NewProgram(mapid.ProgramID)
	mappingIDsMapID := mapid.NewProgram(mapid.ProgramMappingID)
	keyValueIDsMapID := mapid.NewProgram(mapid.ProgramKeyValueID)
	keysMapID := mapid.NewProgram(mapid.ProgramKey)
	valuesMapID := mapid.NewProgram(mapid.ProgramValue)

	programIDs := datamap.Open(store, prefix(networkID, devTag, programIDsMapID),
		datamap.Codec[ID, uint16]{
			EncodeKey: encodeID,
			DecodeKey: decodeID,
			EncodeValue: func(v uint16) ([]byte, error) {
				b := make([]byte, 2)
				binary.LittleEndian.PutUint16(b, v)
				return b, nil
			},
			DecodeValue: func(b []byte) (uint16, error) {
				if len(b) != 2 {
					return 0, codec.Newf(codec.Deserialize, "finalize.ProgramIDs", "bad edition length %d", len(b))
				}
				return binary.LittleEndian.Uint16(b), nil
			},
		})

	mappingIDs := datamap.Open(store, prefix(networkID, devTag, mappingIDsMapID),
		datamap.Codec[mappingKey, ID]{
			EncodeKey:   func(k mappingKey) ([]byte, error) { return codec.WriteLE(k) },
			DecodeKey:   func(b []byte) (mappingKey, error) { return codec.ReadLE[mappingKey, *mappingKey](b) },
			EncodeValue: encodeID,
			DecodeValue: decodeID,
		})

	keyValueIDs := datamap.Open(store, prefix(networkID, devTag, keyValueIDsMapID),
		datamap.Codec[keyLookup, uint64]{
			EncodeKey: func(k keyLookup) ([]byte, error) { return codec.WriteLE(k) },
			DecodeKey: func(b []byte) (keyLookup, error) { return codec.ReadLE[keyLookup, *keyLookup](b) },
			EncodeValue: func(v uint64) ([]byte, error) {
				b := make([]byte, 8)
				binary.LittleEndian.PutUint64(b, v)
				return b, nil
			},
			DecodeValue: func(b []byte) (uint64, error) {
				if len(b) != 8 {
					return 0, codec.Newf(codec.Deserialize, "finalize.KeyValueIDs", "bad index length %d", len(b))
				}
				return binary.LittleEndian.Uint64(b), nil
			},
		})

	keys := datamap.Open(store, prefix(networkID, devTag, keysMapID),
		datamap.Codec[KeyValueID, []byte]{
			EncodeKey:   encodeKeyValueID,
			DecodeKey:   decodeKeyValueID,
			EncodeValue: func(v []byte) ([]byte, error) { return v, nil },
			DecodeValue: func(b []byte) ([]byte, error) { return append([]byte{}, b...), nil },
		})

	values := datamap.Open(store, prefix(networkID, devTag, valuesMapID),
		datamap.Codec[KeyValueID, V]{
			EncodeKey:   encodeKeyValueID,
			DecodeKey:   decodeKeyValueID,
			EncodeValue: vc.Encode,
			DecodeValue: vc.Decode,
		})

	programIDs.SetLogger(memberLog("program_ids", programIDsMapID))
	mappingIDs.SetLogger(memberLog("mapping_ids", mappingIDsMapID))
	keyValueIDs.SetLogger(memberLog("key_value_ids", keyValueIDsMapID))
	keys.SetLogger(memberLog("keys", keysMapID))
	values.SetLogger(memberLog("values", valuesMapID))

	return &Store[V]{
		ProgramIDs:  programIDs,
		MappingIDs:  mappingIDs,
		KeyValueIDs: keyValueIDs,
		Keys:        keys,
		Values:      values,
		dev:         devTag,
		rawStore:    store,
	}
}

// OpenRegistered behaves like Open, but resolves the raw store through reg
// keyed by (networkID, devTag) instead of taking one directly: a second
// OpenRegistered call for the same network/dev pair shares the first
// caller's raw handle rather than invoking openRaw again — the "opening the
// same (network_id, dev_tag, map_id) twice must return maps sharing one raw
// handle" invariant is otherwise just a naming convention the caller has to
// honor by hand. The returned release func must be called exactly once when
// the caller is done with the Store; the underlying raw store is closed
// once every caller holding it has released.
func OpenRegistered[V any](reg *kvstore.Registry, networkID uint16, devTag *uint16, openRaw func() (kvstore.Store, error), vc ValueCodec[V]) (*Store[V], func() error, error) {
	store, release, err := reg.Open(registryKey(networkID, devTag), openRaw)
	if err != nil {
		return nil, nil, err
	}
	return Open(store, networkID, devTag, vc), release, nil
}

// registryKey derives the kvstore.Registry key for a given (networkID,
// devTag) pair. A nil devTag (the canonical, non-dev network) is rendered
// as "none" so it cannot collide with any actual numeric dev tag.
func registryKey(networkID uint16, devTag *uint16) string {
	if devTag == nil {
		return fmt.Sprintf("%d/none", networkID)
	}
	return fmt.Sprintf("%d/%d", networkID, *devTag)
}

// Dev returns the development network tag this store was opened with, or
// nil if it is a production (untagged) store.
func (s *Store[V]) Dev() *uint16 { return s.dev }

// rawHandle returns the underlying kvstore.Store this Store was opened
// over, for tests asserting that OpenRegistered shares one raw handle
// across calls (pointer equality).
func (s *Store[V]) rawHandle() kvstore.Store { return s.rawStore }

// Stats reports the confirmed entry count of each member map, read
// concurrently since the five counts have no dependency on one another.
// Unlike FinishAtomic, which must preserve write order across the maps,
// these are independent read-only scans and safely parallelize with
// errgroup. The scans do not consult ctx and are not interrupted: every
// scan runs to completion, and the first error any of them reports is
// returned.
type Stats struct {
	ProgramIDs, MappingIDs, KeyValueIDs, Keys, Values int
}

func (s *Store[V]) Stats(ctx context.Context) (Stats, error) {
	g, _ := errgroup.WithContext(ctx)
	var stats Stats

	g.Go(func() error {
		entries, err := s.ProgramIDs.IterConfirmed()
		stats.ProgramIDs = len(entries)
		return err
	})
	g.Go(func() error {
		entries, err := s.MappingIDs.IterConfirmed()
		stats.MappingIDs = len(entries)
		return err
	})
	g.Go(func() error {
		entries, err := s.KeyValueIDs.IterConfirmed()
		stats.KeyValueIDs = len(entries)
		return err
	})
	g.Go(func() error {
		entries, err := s.Keys.IterConfirmed()
		stats.Keys = len(entries)
		return err
	})
	g.Go(func() error {
		entries, err := s.Values.IterConfirmed()
		stats.Values = len(entries)
		return err
	})

	if err := g.Wait(); err != nil {
		return Stats{}, err
	}
	return stats, nil
}

func (s *Store[V]) members() []atomic.Controller {
	return []atomic.Controller{s.ProgramIDs, s.MappingIDs, s.KeyValueIDs, s.Keys, s.Values}
}

// StartAtomic begins a batch across every member map. It panics (via the
// underlying maps) if any member is already mid-batch.
func (s *Store[V]) StartAtomic() {
	for _, m := range s.members() {
		m.StartAtomic()
	}
}

// IsAtomicInProgress reports whether every member map agrees a batch is in
// progress. A Store is only ever driven through Store's own methods, so the
// members cannot disagree in practice; a mismatch would indicate a caller
// reached around Store to drive an individual map directly.
func (s *Store[V]) IsAtomicInProgress() bool {
	for _, m := range s.members() {
		if !m.IsAtomicInProgress() {
			return false
		}
	}
	return true
}

func (s *Store[V]) AtomicCheckpoint() {
	for _, m := range s.members() {
		m.AtomicCheckpoint()
	}
}

// AtomicRewind rewinds every member map. A member whose overlay empties
// ends its own batch; while any other member still has pending writes, that
// member is restarted so that all five stay in the same batch and later
// writes to it are still recorded in its overlay.
func (s *Store[V]) AtomicRewind() {
	members := s.members()
	anyInProgress := false
	for _, m := range members {
		m.AtomicRewind()
		if m.IsAtomicInProgress() {
			anyInProgress = true
		}
	}
	if !anyInProgress {
		return
	}
	for _, m := range members {
		if !m.IsAtomicInProgress() {
			m.StartAtomic()
		}
	}
}

func (s *Store[V]) AbortAtomic() {
	for _, m := range s.members() {
		m.AbortAtomic()
	}
}

// FinishAtomic commits every member map in turn, always calling
// FinishAtomic on every member even if an earlier one fails — leaving a
// later member's batch stuck in progress would panic the next StartAtomic
// on the whole Store. The first error encountered is returned; this is not
// itself cross-map atomic at the raw-store level — each member issues its
// own batch.Write — but every member's overlay was built up under the same
// outer Scope/Finalize call, so either all five succeed or the caller
// observes a partial commit and can react (a limitation inherited from
// fanning an all-or-nothing protocol out across independently-committing
// raw-store batches; a single shared raw-store transaction spanning all
// five prefixes would remove it, at the cost of requiring every member map
// to share one physical store).
func (s *Store[V]) FinishAtomic() error {
	var first error
	for _, m := range s.members() {
		if err := m.FinishAtomic(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

var _ atomic.Controller = (*Store[int])(nil)
