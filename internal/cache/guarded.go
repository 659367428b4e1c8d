package cache

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/port"
)

// LoadFunc fetches a fresh value for a cache miss.
type LoadFunc[V any] func(ctx context.Context) (V, error)

// Guarded is a TTL cache whose writes are gated by per-key versions. A load
// captures the key's version before the request and stores its result only if
// no invalidation happened meanwhile. Clear supersedes every load in flight.
type Guarded[K comparable, V any] struct {
	ttl      *TTL[K, V]
	versions *Versions[K]
	logger   *zap.Logger
	metrics  port.CacheMetrics

	mu    sync.Mutex
	epoch uint64
}

// NewGuarded wraps ttl with a fresh version table.
func NewGuarded[K comparable, V any](ttl *TTL[K, V]) *Guarded[K, V] {
	return &Guarded[K, V]{
		ttl:      ttl,
		versions: NewVersions[K](),
		logger:   zap.NewNop(),
	}
}

// WithLogger sets the logger used for stale-discard diagnostics.
func (g *Guarded[K, V]) WithLogger(logger *zap.Logger) *Guarded[K, V] {
	if logger != nil {
		g.logger = logger
	}
	return g
}

// WithMetrics wires discard and invalidation counters. The underlying TTL
// cache receives the same sink for hits and misses.
func (g *Guarded[K, V]) WithMetrics(metrics port.CacheMetrics) *Guarded[K, V] {
	if metrics != nil {
		g.metrics = metrics
		g.ttl.WithMetrics(metrics)
	}
	return g
}

// Get returns a fresh cached value.
func (g *Guarded[K, V]) Get(key K) (V, bool) {
	return g.ttl.Get(key)
}

// Fetch returns the cached value for key or loads it through fn.
func (g *Guarded[K, V]) Fetch(ctx context.Context, key K, fn LoadFunc[V]) (V, error) {
	if v, ok := g.ttl.Get(key); ok {
		return v, nil
	}
	return g.Reload(ctx, key, fn)
}

// Reload bypasses the cache and loads key through fn. The result is always
// returned to the caller; it is cached only if key was not invalidated while
// the load was in flight.
func (g *Guarded[K, V]) Reload(ctx context.Context, key K, fn LoadFunc[V]) (V, error) {
	version, epoch := g.snapshot(key)

	v, err := fn(ctx)
	if err != nil {
		var zero V
		return zero, err
	}

	if !g.storeIf(key, v, version, epoch) {
		g.logger.Debug("discarded stale response",
			zap.String("cache", g.ttl.Name()),
			zap.Any("key", key),
			zap.Int64("captured_version", version),
		)
		if g.metrics != nil {
			g.metrics.IncStaleDiscard(g.ttl.Name())
		}
	}
	return v, nil
}

// Put stores an authoritative value and supersedes loads started earlier.
func (g *Guarded[K, V]) Put(key K, v V) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.versions.Next(key)
	g.ttl.Set(key, v)
}

// Invalidate drops key and bumps its version. Repeating it is harmless.
func (g *Guarded[K, V]) Invalidate(key K) {
	g.mu.Lock()
	g.ttl.Invalidate(key)
	g.versions.Next(key)
	g.mu.Unlock()

	if g.metrics != nil {
		g.metrics.IncInvalidation(g.ttl.Name())
	}
}

// Clear drops every entry and supersedes every load in flight.
func (g *Guarded[K, V]) Clear() {
	g.mu.Lock()
	g.ttl.Clear()
	g.epoch++
	g.mu.Unlock()

	if g.metrics != nil {
		g.metrics.IncInvalidation(g.ttl.Name())
	}
}

// Version exposes the current version of key.
func (g *Guarded[K, V]) Version(key K) int64 {
	return g.versions.Current(key)
}

// Len reports stored entries.
func (g *Guarded[K, V]) Len() int {
	return g.ttl.Len()
}

func (g *Guarded[K, V]) snapshot(key K) (int64, uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.versions.Current(key), g.epoch
}

func (g *Guarded[K, V]) storeIf(key K, v V, version int64, epoch uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.epoch != epoch || g.versions.Current(key) != version {
		return false
	}
	g.ttl.Set(key, v)
	return true
}
