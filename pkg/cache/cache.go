// Package cache memoizes derived artifacts keyed by identity, typically reflect.Type.
package cache

import "sync"

// Cache is a write-once-per-key memo without eviction.
//
// Builds run outside the lock. Two callers racing on the same missing key may
// both build; the last write wins, which is fine as long as builds are pure.
type Cache[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]V
}

// New creates an empty cache.
func New[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{entries: make(map[K]V)}
}

// Get returns the cached value for key, if any.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

// GetOrBuild returns the cached value for key or builds and stores it.
// Build errors are returned and not cached.
func (c *Cache[K, V]) GetOrBuild(key K, build func(K) (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err := build(key)
	if err != nil {
		var zero V
		return zero, err
	}

	c.mu.Lock()
	c.entries[key] = v
	c.mu.Unlock()
	return v, nil
}

// Len reports the number of cached entries.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
