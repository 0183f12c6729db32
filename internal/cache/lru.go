// Package cache provides a bounded least-recently-used cache.
package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// LRU is a fixed-capacity cache that evicts the least recently used entry.
// It is safe for concurrent use.
type LRU[K comparable, V any] struct {
	capacity int
	inner    *lru.Cache[K, V]
}

// NewLRU returns a cache holding at most capacity entries. A capacity below
// one disables caching: Add is a no-op and Get always misses.
func NewLRU[K comparable, V any](capacity int) *LRU[K, V] {
	c := &LRU[K, V]{capacity: capacity}
	if capacity < 1 {
		return c
	}
	inner, err := lru.New[K, V](capacity)
	if err != nil {
		// Only a non-positive size is rejected.
		return c
	}
	c.inner = inner
	return c
}

// Get returns the cached value and marks it as recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	if c.inner == nil {
		var zero V
		return zero, false
	}
	return c.inner.Get(key)
}

// Add inserts or replaces a value. It reports whether an entry was evicted.
func (c *LRU[K, V]) Add(key K, value V) (evicted bool) {
	if c.inner == nil {
		return false
	}
	return c.inner.Add(key, value)
}

// Len returns the number of cached entries.
func (c *LRU[K, V]) Len() int {
	if c.inner == nil {
		return 0
	}
	return c.inner.Len()
}

// Capacity returns the configured maximum size.
func (c *LRU[K, V]) Capacity() int { return c.capacity }

// Purge drops every entry.
func (c *LRU[K, V]) Purge() {
	if c.inner != nil {
		c.inner.Purge()
	}
}
