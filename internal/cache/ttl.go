// Package cache holds the in-process caches of the client agent: keyed TTL
// entries, per-entity version counters that reject stale responses, and
// request sequences that drop superseded interactions.
package cache

import (
	"sync"
	"time"

	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/port"
)

// Entry is a cached value and the moment it was stored.
type Entry[K comparable, V any] struct {
	Key       K
	Value     V
	FetchedAt time.Time
}

// TTL is a keyed cache whose entries are fresh for maxAge after being stored.
// Stale entries stay in the map until overwritten or invalidated but are never
// returned by Get.
type TTL[K comparable, V any] struct {
	name    string
	maxAge  time.Duration
	now     func() time.Time
	metrics port.CacheMetrics

	mu      sync.RWMutex
	entries map[K]Entry[K, V]
}

// NewTTL constructs an empty cache. name labels metrics.
func NewTTL[K comparable, V any](name string, maxAge time.Duration) *TTL[K, V] {
	return &TTL[K, V]{
		name:    name,
		maxAge:  maxAge,
		now:     time.Now,
		entries: make(map[K]Entry[K, V]),
	}
}

// WithClock overrides the clock, primarily for deterministic testing.
func (c *TTL[K, V]) WithClock(now func() time.Time) *TTL[K, V] {
	if now != nil {
		c.now = now
	}
	return c
}

// WithMetrics wires hit/miss counters.
func (c *TTL[K, V]) WithMetrics(metrics port.CacheMetrics) *TTL[K, V] {
	if metrics != nil {
		c.metrics = metrics
	}
	return c
}

// Name returns the metrics label of the cache.
func (c *TTL[K, V]) Name() string { return c.name }

// MaxAge returns the configured freshness window.
func (c *TTL[K, V]) MaxAge() time.Duration { return c.maxAge }

// Get returns the value for key if present and fresh.
func (c *TTL[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || !c.fresh(entry) {
		c.count(func(m port.CacheMetrics) { m.IncMiss(c.name) })
		var zero V
		return zero, false
	}
	c.count(func(m port.CacheMetrics) { m.IncHit(c.name) })
	return entry.Value, true
}

// Peek returns the raw entry regardless of freshness.
func (c *TTL[K, V]) Peek(key K) (Entry[K, V], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	return entry, ok
}

// Set stores value under key stamped with the current time.
func (c *TTL[K, V]) Set(key K, value V) {
	c.mu.Lock()
	c.entries[key] = Entry[K, V]{Key: key, Value: value, FetchedAt: c.now()}
	c.mu.Unlock()
}

// Invalidate removes key unconditionally. Missing keys are a no-op.
func (c *TTL[K, V]) Invalidate(key K) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Clear empties the cache.
func (c *TTL[K, V]) Clear() {
	c.mu.Lock()
	c.entries = make(map[K]Entry[K, V])
	c.mu.Unlock()
}

// Len reports stored entries, fresh or not.
func (c *TTL[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *TTL[K, V]) fresh(entry Entry[K, V]) bool {
	return c.now().Sub(entry.FetchedAt) < c.maxAge
}

func (c *TTL[K, V]) count(fn func(port.CacheMetrics)) {
	if c.metrics != nil {
		fn(c.metrics)
	}
}
