package kvstore

import "github.com/VictoriaMetrics/fastcache"

// CachedStore wraps a Store with a fixed-size read-through cache for
// GetConfirmed-style hot paths. Put stores the new value in the cache and
// Delete drops the cached entry; Has and iteration always bypass the cache, since overlay-aware callers
// (datamap) only ever need Get to be fast, not the full scan path.
type CachedStore struct {
	Store
	cache *fastcache.Cache
}

// NewCachedStore wraps store with an in-memory cache of roughly
// maxBytes capacity.
func NewCachedStore(store Store, maxBytes int) *CachedStore {
	return &CachedStore{Store: store, cache: fastcache.New(maxBytes)}
}

func (c *CachedStore) Get(key []byte) ([]byte, error) {
	if v, ok := c.cache.HasGet(nil, key); ok {
		return v, nil
	}
	v, err := c.Store.Get(key)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, v)
	return v, nil
}

func (c *CachedStore) Put(key, value []byte) error {
	if err := c.Store.Put(key, value); err != nil {
		return err
	}
	c.cache.Set(key, value)
	return nil
}

func (c *CachedStore) Delete(key []byte) error {
	if err := c.Store.Delete(key); err != nil {
		return err
	}
	c.cache.Del(key)
	return nil
}

// NewBatch returns a batch whose Write, on success, invalidates every
// touched key from the cache (rather than trying to keep the cache
// consistent op-by-op, which would require buffering the same ops twice).
func (c *CachedStore) NewBatch() Batch {
	return &cachedBatch{inner: c.Store.NewBatch(), cache: c.cache}
}

type cachedBatch struct {
	inner Batch
	cache *fastcache.Cache
	keys  [][]byte
}

func (b *cachedBatch) Put(key, value []byte) error {
	b.keys = append(b.keys, key)
	return b.inner.Put(key, value)
}

func (b *cachedBatch) Delete(key []byte) error {
	b.keys = append(b.keys, key)
	return b.inner.Delete(key)
}

func (b *cachedBatch) Len() int { return b.inner.Len() }

func (b *cachedBatch) Write() error {
	if err := b.inner.Write(); err != nil {
		return err
	}
	for _, k := range b.keys {
		b.cache.Del(k)
	}
	return nil
}

func (b *cachedBatch) Reset() {
	b.keys = b.keys[:0]
	b.inner.Reset()
}
