// Package cache provides the versioned LRU cache shared by the analyses.
//
// Entries are keyed by (buffer id, language, generation) and stamped with
// the buffer version they were computed from. A lookup only hits when the
// caller's version equals the stamped one, so a stale result is never
// returned.
package cache

import (
	"container/list"
	"sync"
)

// DefaultMaxEntries is used when a non-positive size is given.
const DefaultMaxEntries = 256

// Key identifies a cached analysis. Generation separates buffers that
// were created under the same id.
type Key struct {
	BufferID   string
	Language   string
	Generation uint64
}

// Stats reports cache counters.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Entries   int
}

// Versioned is an LRU cache of values stamped with a buffer version.
// It is safe for concurrent use.
type Versioned[V any] struct {
	mu      sync.Mutex
	maxSize int
	items   map[Key]*list.Element
	lru     *list.List

	hits, misses, evictions uint64
}

type entry[V any] struct {
	key     Key
	version uint64
	value   V
}

// New creates a cache holding at most maxSize entries.
func New[V any](maxSize int) *Versioned[V] {
	if maxSize <= 0 {
		maxSize = DefaultMaxEntries
	}
	return &Versioned[V]{
		maxSize: maxSize,
		items:   make(map[Key]*list.Element),
		lru:     list.New(),
	}
}

// Get returns the value for key if it was computed at version.
func (c *Versioned[V]) Get(key Key, version uint64) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	elem, ok := c.items[key]
	if !ok {
		c.misses++
		return zero, false
	}
	e := elem.Value.(*entry[V]) //nolint:errcheck // list only contains *entry[V]
	if e.version != version {
		c.misses++
		return zero, false
	}
	c.lru.MoveToFront(elem)
	c.hits++
	return e.value, true
}

// Put stores value for key at version. A value older than the one already
// stored is dropped.
func (c *Versioned[V]) Put(key Key, version uint64, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		e := elem.Value.(*entry[V]) //nolint:errcheck // list only contains *entry[V]
		if version < e.version {
			return
		}
		e.version = version
		e.value = value
		c.lru.MoveToFront(elem)
		return
	}

	// Evict oldest if at capacity
	if c.lru.Len() >= c.maxSize {
		c.evictOldest()
	}
	c.items[key] = c.lru.PushFront(&entry[V]{key: key, version: version, value: value})
}

// InvalidateBuffer drops every entry for bufferID.
func (c *Versioned[V]) InvalidateBuffer(bufferID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, elem := range c.items {
		if key.BufferID == bufferID {
			c.lru.Remove(elem)
			delete(c.items, key)
		}
	}
}

// Clear removes all entries.
func (c *Versioned[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[Key]*list.Element)
	c.lru.Init()
}

// Len returns the number of cached entries.
func (c *Versioned[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Stats returns a snapshot of the counters.
func (c *Versioned[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Hits: c.hits, Misses: c.misses, Evictions: c.evictions, Entries: c.lru.Len()}
}

// evictOldest removes the least recently used entry.
// Must be called with lock held.
func (c *Versioned[V]) evictOldest() {
	elem := c.lru.Back()
	if elem == nil {
		return
	}
	c.lru.Remove(elem)
	e := elem.Value.(*entry[V]) //nolint:errcheck // list only contains *entry[V]
	delete(c.items, e.key)
	c.evictions++
}
