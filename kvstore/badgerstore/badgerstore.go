// Package badgerstore backs kvstore.Store with a Badger LSM-tree database
// (github.com/dgraph-io/badger/v4), the production raw-store engine for
// this module.
package badgerstore

import (
	"bytes"
	"errors"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/klauspost/compress/zstd"

	"github.com/aleo-chain/mapstore/internal/xlog"
	"github.com/aleo-chain/mapstore/kvstore"
)

var baseLog = xlog.Default().Module("badgerstore")

// compressThreshold is the minimum value size, in bytes, at which values
// are zstd-compressed before being written to Badger. Smaller values are
// stored raw since compression overhead would dominate.
const compressThreshold = 256

const (
	flagRaw  byte = 0
	flagZstd byte = 1
)

// Options configures a Store. It is the sole configuration surface for the
// Badger engine; no environment variables are read.
type Options struct {
	// Dir is the on-disk directory Badger stores data under. Ignored if
	// InMemory is true.
	Dir string
	// InMemory runs Badger entirely in memory (useful for tests that still
	// want Badger's own semantics rather than kvstore.MemoryStore's).
	InMemory bool
	// SyncWrites forces an fsync on every commit. Off by default, matching
	// Badger's own default, since this layer has no durability requirement
	// beyond what the embedding process configures.
	SyncWrites bool
}

// Store wraps *badger.DB to satisfy kvstore.Store.
type Store struct {
	db  *badger.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// Open opens (or creates) a Badger database per opts.
func Open(opts Options) (*Store, error) {
	bo := badger.DefaultOptions(opts.Dir)
	bo = bo.WithInMemory(opts.InMemory).WithSyncWrites(opts.SyncWrites).WithLogger(nil)

	db, err := badger.Open(bo)
	if err != nil {
		return nil, err
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		db.Close()
		return nil, err
	}

	baseLog.With("dir", opts.Dir).Info("opened badger store", "in_memory", opts.InMemory)
	return &Store{db: db, enc: enc, dec: dec}, nil
}

func (s *Store) compress(value []byte) []byte {
	if len(value) < compressThreshold {
		return append([]byte{flagRaw}, value...)
	}
	compressed := s.enc.EncodeAll(value, make([]byte, 0, len(value)))
	return append([]byte{flagZstd}, compressed...)
}

func (s *Store) decompress(stored []byte) ([]byte, error) {
	if len(stored) == 0 {
		return nil, errors.New("badgerstore: empty stored value")
	}
	flag, body := stored[0], stored[1:]
	switch flag {
	case flagRaw:
		return body, nil
	case flagZstd:
		return s.dec.DecodeAll(body, nil)
	default:
		return nil, errors.New("badgerstore: unknown value flag")
	}
}

func (s *Store) Get(key []byte) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			decoded, err := s.decompress(val)
			if err != nil {
				return err
			}
			out = append([]byte{}, decoded...)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, kvstore.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Put(key, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, s.compress(value))
	})
}

func (s *Store) Delete(key []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

func (s *Store) Has(key []byte) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) Close() error {
	s.dec.Close()
	return s.db.Close()
}

func (s *Store) NewBatch() kvstore.Batch {
	return &batch{store: s, wb: s.db.NewWriteBatch()}
}

// NewIterator returns an iterator over every key with the given prefix, in
// key-byte order, snapshotted at call time via Badger's own iterator.
func (s *Store) NewIterator(prefix []byte) kvstore.Iterator {
	txn := s.db.NewTransaction(false)
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = true
	it := txn.NewIterator(opts)
	it.Seek(prefix)
	return &iterator{store: s, txn: txn, it: it, prefix: prefix, started: false}
}

type iterator struct {
	store   *Store
	txn     *badger.Txn
	it      *badger.Iterator
	prefix  []byte
	started bool
	key     []byte
	value   []byte
}

func (it *iterator) Next() bool {
	if !it.started {
		it.started = true
	} else {
		it.it.Next()
	}
	if !it.it.ValidForPrefix(it.prefix) {
		return false
	}
	item := it.it.Item()
	it.key = append([]byte{}, item.Key()...)
	var val []byte
	_ = item.Value(func(v []byte) error {
		decoded, err := it.store.decompress(v)
		if err != nil {
			return err
		}
		val = append([]byte{}, decoded...)
		return nil
	})
	it.value = val
	return true
}

func (it *iterator) Key() []byte   { return it.key }
func (it *iterator) Value() []byte { return it.value }
func (it *iterator) Release() {
	it.it.Close()
	it.txn.Discard()
}

type batch struct {
	store   *Store
	wb      *badger.WriteBatch
	n       int
	written bool
}

func (b *batch) Put(key, value []byte) error {
	b.n++
	return b.wb.Set(bytes.Clone(key), b.store.compress(value))
}

func (b *batch) Delete(key []byte) error {
	b.n++
	return b.wb.Delete(bytes.Clone(key))
}

func (b *batch) Len() int { return b.n }

func (b *batch) Write() error {
	if b.written {
		return kvstore.ErrBatchApplied
	}
	b.written = true
	return b.wb.Flush()
}

func (b *batch) Reset() {
	b.wb.Cancel()
	b.wb = b.store.db.NewWriteBatch()
	b.n = 0
	b.written = false
}

var _ kvstore.Store = (*Store)(nil)
var _ kvstore.Batch = (*batch)(nil)
var _ kvstore.Iterator = (*iterator)(nil)
