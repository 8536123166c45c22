// Package cache provides an in-memory TTL cache for folio-server reads.
// The portal keeps no durable state; this only spares repeated round-trips
// for reference data within a short window.
package cache

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

// entry wraps a cached payload with expiry and insertion order tracking.
type entry struct {
	payload   []byte
	expiry    time.Time
	insertIdx int64
}

// Cache stores serialized backend read responses keyed by
// "userID:resource:query". Only GET results should be cached; writes to a
// resource invalidate it. Thread-safe with sync.RWMutex.
type Cache struct {
	mu         sync.RWMutex
	items      map[string]entry
	ttl        time.Duration
	maxEntries int
	nextIdx    int64
}

// New creates a Cache with the given TTL and max entry count.
func New(ttl time.Duration, maxEntries int) *Cache {
	return &Cache{
		items:      make(map[string]entry),
		ttl:        ttl,
		maxEntries: maxEntries,
	}
}

// Key builds a cache key from the calling user, resource name, and query.
func Key(userID int, resource, query string) string {
	return strconv.Itoa(userID) + ":" + resource + ":" + query
}

// Get returns a cached payload if found and not expired.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if time.Now().After(e.expiry) {
		// Expired: remove lazily
		c.mu.Lock()
		if e2, ok2 := c.items[key]; ok2 && time.Now().After(e2.expiry) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return nil, false
	}

	return e.payload, true
}

// Set stores a payload. Evicts the oldest entry if at capacity.
func (c *Cache) Set(key string, payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := entry{
		payload:   payload,
		expiry:    time.Now().Add(c.ttl),
		insertIdx: c.nextIdx,
	}
	c.nextIdx++

	// If key already exists, update in place (no capacity change)
	if _, exists := c.items[key]; exists {
		c.items[key] = e
		return
	}

	if len(c.items) >= c.maxEntries {
		c.evictOldest()
	}

	c.items[key] = e
}

// Invalidate removes all entries for the given resource, across users and
// queries. Called after any write that can change the resource's reads.
func (c *Cache) Invalidate(resource string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	marker := ":" + resource + ":"
	for key := range c.items {
		if strings.Contains(key, marker) {
			delete(c.items, key)
		}
	}
}

// Len returns the number of live entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// evictOldest removes the entry with the lowest insertIdx. Must be called
// with mu held.
func (c *Cache) evictOldest() {
	var oldestKey string
	var oldestIdx int64 = -1

	for key, e := range c.items {
		if oldestIdx == -1 || e.insertIdx < oldestIdx {
			oldestIdx = e.insertIdx
			oldestKey = key
		}
	}

	if oldestKey != "" {
		delete(c.items, oldestKey)
	}
}
