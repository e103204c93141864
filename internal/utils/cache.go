package utils

import (
	"encoding/binary"
	"os"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Stamp identifies the version of the input a cached value was derived from.
type Stamp uint64

// TextStamp fingerprints s, e.g. the doc comment of a declaration.
func TextStamp(s string) Stamp { return Stamp(xxhash.Sum64String(s)) }

// ContentStamp fingerprints the bytes of a file.
func ContentStamp(data []byte) Stamp { return Stamp(xxhash.Sum64(data)) }

// StatStamp fingerprints the size and modification time of path without
// reading it.
func StatStamp(path string) (Stamp, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], uint64(info.ModTime().UnixNano()))
	binary.LittleEndian.PutUint64(buf[8:], uint64(info.Size()))
	return Stamp(xxhash.Sum64(buf[:])), nil
}

type stamped[V any] struct {
	value V
	stamp Stamp
}

// CacheStats counts lookups answered by a Cache.
type CacheStats struct {
	Entries int
	Hits    uint64
	Misses  uint64
}

// Cache memoizes values derived from some input. An entry only answers a
// Lookup that carries the stamp it was stored with; a lookup with any other
// stamp drops it.
type Cache[K comparable, V any] struct {
	mu     sync.Mutex
	items  map[K]stamped[V]
	hits   uint64
	misses uint64
}

func NewCache[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{items: make(map[K]stamped[V])}
}

func (c *Cache[K, V]) Lookup(key K, stamp Stamp) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.items[key]
	if ok && item.stamp == stamp {
		c.hits++
		return item.value, true
	}
	if ok {
		delete(c.items, key)
	}
	c.misses++
	var zero V
	return zero, false
}

func (c *Cache[K, V]) Store(key K, value V, stamp Stamp) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = stamped[V]{value: value, stamp: stamp}
}

func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

func (c *Cache[K, V]) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{Entries: len(c.items), Hits: c.hits, Misses: c.misses}
}
