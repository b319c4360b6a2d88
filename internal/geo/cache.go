package geo

import (
	"fmt"
	"sync"
)

// CachedBoundaryIndex wraps a BoundaryIndex with an in-memory LRU cache.
// Coordinates are quantized to ~1 km before lookup, so repeated events from
// the same area hit the cache instead of the polygon index.
type CachedBoundaryIndex struct {
	inner BoundaryIndex
	cache *lruCache
}

// NewCachedBoundaryIndex creates a cache decorator around a boundary index.
func NewCachedBoundaryIndex(inner BoundaryIndex, maxEntries int) *CachedBoundaryIndex {
	return &CachedBoundaryIndex{
		inner: inner,
		cache: newLRUCache(maxEntries),
	}
}

func (c *CachedBoundaryIndex) CountryAt(lat, lon float64) string {
	key := fmt.Sprintf("%.2f,%.2f", lat, lon)
	if code, ok := c.cache.get(key); ok {
		return code
	}
	code := c.inner.CountryAt(lat, lon)
	// Only cache hits so boundary-set updates can fill previous gaps.
	if code != "" {
		c.cache.put(key, code)
	}
	return code
}

// lruCache is a simple thread-safe LRU cache for country lookups.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value string
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
