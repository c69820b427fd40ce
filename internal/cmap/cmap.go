// Package cmap provides a concurrent map with type checking at compile time.
package cmap

import (
	"maps"
	"slices"
	"sync"
)

// ConcurrentMap is a map guarded by a single RWMutex.
type ConcurrentMap[K comparable, V any] struct {
	m  map[K]V
	mu sync.RWMutex
}

// New returns an empty map.
func New[K comparable, V any]() *ConcurrentMap[K, V] {
	return &ConcurrentMap[K, V]{m: make(map[K]V)}
}

// Get returns the value stored under key.
func (c *ConcurrentMap[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.m[key]
	return value, ok
}

// Upsert runs f with the current value (ok=false when absent) under the
// write lock and stores what it returns. When f returns an error or
// store=false the map is left untouched. No other writer can interleave
// between the read and the write.
func (c *ConcurrentMap[K, V]) Upsert(key K, f func(current V, ok bool) (next V, store bool, err error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	current, ok := c.m[key]
	next, store, err := f(current, ok)
	if err != nil {
		return err
	}
	if store {
		c.m[key] = next
	}
	return nil
}

// Keys returns a snapshot of the keys in unspecified order.
func (c *ConcurrentMap[K, V]) Keys() []K {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Collect(maps.Keys(c.m))
}
