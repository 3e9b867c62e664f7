// Package cache provides a small in-memory key→value store with a fixed TTL.
//
// WHY NOT A CACHE LIBRARY?
// The contract here is tiny: Get, Set, and lazy expiry. Both GitHub summaries
// and generated bullets are cached for one hour to shield the upstream APIs
// from redundant calls. Caching is a performance optimisation only — a cache
// failure must never fail a request, so neither method returns an error.
//
// CONCURRENCY:
// A sync.Mutex guards the map. Each key is only ever written by the single
// in-flight request that computed it, but concurrent requests for different
// keys share the map, so all access goes through the lock.
package cache

import (
	"sync"
	"time"
)

// entry pairs a cached payload with its insertion time. Expiry is measured
// from insertion, never refreshed on read.
type entry struct {
	value    any
	storedAt time.Time
}

// Cache is a TTL-bounded in-memory store. The zero value is not usable;
// create one with New.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry

	// now is swappable so tests can control the clock instead of sleeping.
	now func() time.Time
}

// New creates a Cache whose entries expire ttl after insertion.
func New(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the value stored under key, or (nil, false) if the key is
// absent or its entry has expired. An expired entry is evicted on the spot —
// expiry is lazy, there is no background sweeper.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.storedAt) > c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under key, unconditionally overwriting any previous entry
// and restarting its TTL.
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{value: value, storedAt: c.now()}
}
