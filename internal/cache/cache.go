// Package cache provides the two cache kinds the routing core depends on: a
// static cache whose entries live for the process lifetime (venue membership
// never changes without a restart) and a TTL cache for chain-derived state
// that does. Both are injectable so callers can swap policies without
// touching resolvers.
package cache

import (
	"sync"
	"time"
)

type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V)
	Len() int
}

// Static is an append-mostly cache with no expiry. Concurrent writers racing
// to populate the same key are safe: values for a key are always equal, so
// last writer wins.
type Static[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]V
}

func NewStatic[K comparable, V any]() *Static[K, V] {
	return &Static[K, V]{entries: make(map[K]V)}
}

func (c *Static[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *Static[K, V]) Set(key K, value V) {
	c.mu.Lock()
	c.entries[key] = value
	c.mu.Unlock()
}

func (c *Static[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

type ttlEntry[V any] struct {
	value  V
	expiry int64 // unix nano
}

// TTL is a wall-clock expiring cache. Expired entries are dropped lazily on
// read and swept whenever a write observes the map has grown past sweepSize.
type TTL[K comparable, V any] struct {
	mu        sync.RWMutex
	entries   map[K]ttlEntry[V]
	ttl       time.Duration
	sweepSize int
	now       func() time.Time
}

func NewTTL[K comparable, V any](ttl time.Duration) *TTL[K, V] {
	return &TTL[K, V]{
		entries:   make(map[K]ttlEntry[V]),
		ttl:       ttl,
		sweepSize: 1024,
		now:       time.Now,
	}
}

func (c *TTL[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	var zero V
	if !ok {
		return zero, false
	}
	if c.now().UnixNano() >= e.expiry {
		c.mu.Lock()
		// re-check under the write lock: a fresh Set may have raced us
		if cur, still := c.entries[key]; still && c.now().UnixNano() >= cur.expiry {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return zero, false
	}
	return e.value, true
}

func (c *TTL[K, V]) Set(key K, value V) {
	nowNs := c.now().UnixNano()
	c.mu.Lock()
	if len(c.entries) >= c.sweepSize {
		for k, e := range c.entries {
			if nowNs >= e.expiry {
				delete(c.entries, k)
			}
		}
	}
	c.entries[key] = ttlEntry[V]{value: value, expiry: nowNs + c.ttl.Nanoseconds()}
	c.mu.Unlock()
}

func (c *TTL[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
