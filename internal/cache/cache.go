// Package cache keeps parsed annotation collections between runs.
//
// Collections are stored per target in encoded form and decoded on first
// access. Every entry is stamped with a fingerprint of the doc comment it
// was parsed from; Fresh tells whether an entry still matches its source.
// Persistence is pluggable through a read and a write callback: the read
// callback runs once on Start, the write callback runs on Close if anything
// changed since.
package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/toyz/docblock/pkg/annotation"
)

// ReadFunc returns previously persisted data. Empty data starts an empty cache.
type ReadFunc func() ([]byte, error)

// WriteFunc persists the encoded cache.
type WriteFunc func(data []byte) error

// Stats describes cache usage.
type Stats struct {
	Targets int
	Decoded int
	Hits    uint64
	Misses  uint64
	Changed bool
}

type Cache struct {
	mu      sync.RWMutex
	entries map[string][]byte
	stamps  map[string]uint64
	decoded map[string]*annotation.Collection
	changed bool
	write   WriteFunc
	hits    uint64
	misses  uint64
}

func New() *Cache {
	return &Cache{
		entries: make(map[string][]byte),
		stamps:  make(map[string]uint64),
		decoded: make(map[string]*annotation.Collection),
	}
}

// Start loads the cache through read and remembers write for Close. Invalid
// data flushes the cache and yields ErrInvalidCachedData; write is not
// registered in that case.
func (c *Cache) Start(read ReadFunc, write WriteFunc) error {
	data, err := read()
	if err != nil {
		return fmt.Errorf("read annotation cache: %w", err)
	}
	entries, stamps, err := decodeEnvelope(data)
	if err != nil {
		c.Flush()
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = entries
	c.stamps = stamps
	c.decoded = make(map[string]*annotation.Collection)
	c.changed = false
	c.write = write
	return nil
}

// StartFromFile uses path for persistence. A missing file is an empty cache.
func (c *Cache) StartFromFile(path string) error {
	return c.Start(
		func() ([]byte, error) {
			data, err := os.ReadFile(path)
			if errors.Is(err, os.ErrNotExist) {
				return nil, nil
			}
			return data, err
		},
		func(data []byte) error {
			return writeFileAtomic(path, data)
		},
	)
}

// Recover starts over with an empty cache persisted to path, replacing
// whatever StartFromFile could not read there.
func (c *Cache) Recover(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]byte)
	c.stamps = make(map[string]uint64)
	c.decoded = make(map[string]*annotation.Collection)
	c.changed = true
	c.write = func(data []byte) error {
		return writeFileAtomic(path, data)
	}
}

// Stop detaches the write callback. Close will not persist afterwards.
func (c *Cache) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.write = nil
}

// Close persists the cache if it changed and a write callback is attached.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.changed || c.write == nil {
		return nil
	}
	data, err := encodeEnvelope(c.entries, c.stamps)
	if err != nil {
		return fmt.Errorf("encode annotation cache: %w", err)
	}
	if err := c.write(data); err != nil {
		return fmt.Errorf("write annotation cache: %w", err)
	}
	c.changed = false
	return nil
}

// Flush drops every entry.
func (c *Cache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]byte)
	c.stamps = make(map[string]uint64)
	c.decoded = make(map[string]*annotation.Collection)
	c.changed = true
}

// Put stores col stamped with the fingerprint of the doc comment it was
// parsed from. The cache keeps the encoded form only; later changes to col
// are not seen by Get.
func (c *Cache) Put(col *annotation.Collection, stamp uint64) error {
	data, err := encodeCollection(col)
	if err != nil {
		return fmt.Errorf("encode annotations of %s: %w", col.Target(), err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[col.Target()] = data
	c.stamps[col.Target()] = stamp
	delete(c.decoded, col.Target())
	c.changed = true
	return nil
}

func (c *Cache) Has(target string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[target]
	return ok
}

// Fresh reports whether target is cached with the given stamp.
func (c *Cache) Fresh(target string, stamp uint64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.entries[target]; !ok {
		return false
	}
	got, ok := c.stamps[target]
	return ok && got == stamp
}

// Get returns the collection of target, or an empty collection when the
// target is not cached. Decoded collections are shared between callers and
// must not be modified.
func (c *Cache) Get(target string) (*annotation.Collection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, cached := c.entries[target]
	if !cached {
		c.misses++
		return annotation.NewCollection(target), nil
	}
	c.hits++
	if col, ok := c.decoded[target]; ok {
		return col, nil
	}

	col, err := decodeCollection(data)
	if err != nil {
		return nil, fmt.Errorf("annotations of %s: %w", target, err)
	}
	c.decoded[target] = col
	return col, nil
}

// Invalidate removes the given targets and every parameter target below them.
func (c *Cache) Invalidate(targets ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range targets {
		for key := range c.entries {
			if key == t || (len(key) > len(t) && key[:len(t)] == t && key[len(t)] == '#') {
				delete(c.entries, key)
				delete(c.stamps, key)
				delete(c.decoded, key)
				c.changed = true
			}
		}
	}
}

// Targets lists cached targets in sorted order.
func (c *Cache) Targets() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.entries))
	for t := range c.entries {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{
		Targets: len(c.entries),
		Decoded: len(c.decoded),
		Hits:    c.hits,
		Misses:  c.misses,
		Changed: c.changed,
	}
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".annotations-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
