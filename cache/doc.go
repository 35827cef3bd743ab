// Package cache provides a generic, capacity-bounded in-memory cache with
// interchangeable eviction policies (LRU by default, LFU on request),
// lightweight metrics hooks, and structured logging.
//
// Design
//
//   - Concurrency: one mutex guards the whole cache. Every operation,
//     Get included, holds it for its full duration: a hit reorders the
//     eviction structure, so there is no read-only fast path.
//
//   - Storage: nodes live in an arena (a slice) and are addressed by
//     integer handles. The index is a map[K]handle; the active policy
//     threads its lists through the same nodes. Get, Put and Remove are
//     amortized O(1).
//
//   - Policies: chosen at construction via Options.Policy and fixed for the
//     life of the cache. LRU keeps one recency list. LFU keeps one list per
//     access frequency plus the current minimum frequency, evicting the
//     oldest entry among the least frequently used.
//
//   - Capacity: a Put of a new key into a full cache evicts exactly one
//     victim before inserting, so Len() never exceeds Capacity().
//
//   - Metrics: Options.Metrics receives Hit/Miss/Evict/Size signals.
//     By default NoopMetrics is used; plug metrics/prom to export them.
//
//   - Callbacks: Options.OnEvict(k, v, reason) is called for every eviction
//     (reason is EvictCapacity or EvictPurge). Explicit Remove is silent.
//
// Basic usage
//
//	c, err := cache.New(cache.Options[string, []byte]{Capacity: 10_000})
//	if err != nil {
//	    return err
//	}
//	c.Put("a", []byte("1"))
//	if v, ok := c.Get("a"); ok {
//	    _ = v // use value
//	}
//	c.Remove("a")
//
// LFU
//
//	c := cache.MustNew(cache.Options[string, string]{
//	    Capacity: 50_000,
//	    Policy:   policy.LFU,
//	})
//
// Exporting metrics (Prometheus adapter)
//
//	m := prom.New(nil, "evictcache", "demo", policy.LFU, nil) // implements Metrics
//	c := cache.MustNew(cache.Options[string, []byte]{
//	    Capacity: 10_000,
//	    Policy:   policy.LFU,
//	    Metrics:  m,
//	})
//
// Invariant checks
//
// Building with -tags cachecheck verifies the index against the policy
// structure after every mutation and panics on the first inconsistency.
package cache
