package cache

import (
	"context"

	"go.uber.org/zap"

	"github.com/IvanBrykalov/evictcache/policy"
)

// EvictReason explains why an entry was removed.
type EvictReason int

const (
	// EvictCapacity: chosen by the active policy to make room for a new key.
	EvictCapacity EvictReason = iota
	// EvictPurge: released in bulk by Purge.
	EvictPurge
)

// String returns the label used in logs and metrics.
func (r EvictReason) String() string {
	switch r {
	case EvictCapacity:
		return "capacity"
	case EvictPurge:
		return "purge"
	default:
		return "unknown"
	}
}

// Metrics exposes cache-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
type Metrics interface {
	Hit()
	Miss()
	Evict(reason EvictReason)
	Size(entries int)
}

// Options configures the cache behavior. Zero values are safe except
// Capacity; defaults are applied in New():
//   - "" Policy    => LRU
//   - nil Metrics  => NoopMetrics
//   - nil Logger   => zap.NewNop()
type Options[K comparable, V any] struct {
	// Capacity is the entry count limit. Must be > 0.
	Capacity int

	// Policy selects the eviction strategy. It cannot be changed later.
	Policy policy.Kind

	// Loader fetches a value on cache miss. Used by GetOrLoad.
	Loader func(ctx context.Context, k K) (V, error)

	// OnEvict is called on eviction under the cache lock; keep callbacks
	// lightweight and do not call back into the cache.
	// Explicit Remove does not trigger it.
	OnEvict func(k K, v V, reason EvictReason)
	Metrics Metrics

	// Logger receives lifecycle and eviction events (eviction at Debug).
	Logger *zap.Logger
}
