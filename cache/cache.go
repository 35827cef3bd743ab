package cache

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/IvanBrykalov/evictcache/internal/arena"
	"github.com/IvanBrykalov/evictcache/internal/singleflight"
	"github.com/IvanBrykalov/evictcache/policy"
	"github.com/IvanBrykalov/evictcache/policy/lfu"
	"github.com/IvanBrykalov/evictcache/policy/lru"
)

// MaxCapacity is the largest accepted Options.Capacity. Entries and policy
// sentinels share one uint32 handle space.
const MaxCapacity = math.MaxUint32 / 2

// prealloc bounds the storage reserved up front; larger caches grow on demand.
const prealloc = 1 << 16

// cache is a bounded in-memory KV store with a fixed eviction policy.
// All methods are safe for concurrent use by multiple goroutines.
type cache[K comparable, V any] struct {
	// ---- guarded by mu ----
	mu    sync.Mutex
	index map[K]arena.Handle
	nodes *arena.Arena[K, V]
	ev    policy.Evictor[K, V]
	stats Stats

	capacity int
	kind     policy.Kind
	opt      Options[K, V]
	log      *zap.Logger
	closed   atomic.Bool

	// singleflight group for coalescing concurrent loads in GetOrLoad.
	sf singleflight.Group[K, V]
}

// New constructs a cache with the provided Options.
// Defaults:
//   - "" Policy    -> LRU
//   - nil Metrics  -> NoopMetrics
//   - nil Logger   -> zap.NewNop()
//
// A Capacity outside (0, MaxCapacity] yields ErrInvalidCapacity, an unknown Policy
// yields ErrUnknownPolicy.
func New[K comparable, V any](opt Options[K, V]) (Cache[K, V], error) {
	if opt.Capacity <= 0 || opt.Capacity > MaxCapacity {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, opt.Capacity)
	}
	kind := policy.LRU
	if opt.Policy != "" {
		k, err := policy.ParseKind(string(opt.Policy))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnknownPolicy, err)
		}
		kind = k
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	if opt.Logger == nil {
		opt.Logger = zap.NewNop()
	}

	hint := min(opt.Capacity, prealloc)
	c := &cache[K, V]{
		index:    make(map[K]arena.Handle, hint),
		nodes:    arena.New[K, V](hint + 1),
		capacity: opt.Capacity,
		kind:     kind,
		opt:      opt,
		log:      opt.Logger,
	}
	c.ev = newEvictor(kind, c.nodes)
	c.stats = Stats{Policy: kind, Capacity: opt.Capacity}

	c.log.Debug("cache initialized",
		zap.Int("capacity", opt.Capacity),
		zap.Stringer("policy", kind),
	)
	return c, nil
}

// MustNew is like New but panics on invalid Options.
func MustNew[K comparable, V any](opt Options[K, V]) Cache[K, V] {
	c, err := New(opt)
	if err != nil {
		panic(err)
	}
	return c
}

func newEvictor[K comparable, V any](kind policy.Kind, a *arena.Arena[K, V]) policy.Evictor[K, V] {
	if kind == policy.LFU {
		return lfu.New[K, V](a)
	}
	return lru.New[K, V](a)
}

// ---- Cache[K,V] implementation ----

// Get returns the value for k and a presence flag.
// On hit, the entry is promoted according to the active policy.
func (c *cache[K, V]) Get(k K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	if c.closed.Load() {
		return zero, false
	}
	h, ok := c.index[k]
	if !ok {
		c.stats.Misses++
		c.opt.Metrics.Miss()
		return zero, false
	}
	c.ev.OnAccess(h)
	c.stats.Hits++
	c.opt.Metrics.Hit()
	c.assertLocked()
	return c.nodes.At(h).Val, true
}

// Put inserts or updates k→v and promotes the entry according to the policy.
func (c *cache[K, V]) Put(k K, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return
	}
	if h, ok := c.index[k]; ok {
		c.nodes.At(h).Val = v
		c.ev.OnAccess(h)
		c.stats.Updates++
		c.assertLocked()
		return
	}
	c.insertLocked(k, v)
}

// Add inserts k→v only if absent.
// Returns false if the key already exists (no update is performed).
func (c *cache[K, V]) Add(k K, v V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return false
	}
	if _, ok := c.index[k]; ok {
		return false
	}
	c.insertLocked(k, v)
	return true
}

// Remove deletes k if present and returns the value it held.
// Explicit removal is not an eviction: OnEvict is not called.
func (c *cache[K, V]) Remove(k K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	if c.closed.Load() {
		return zero, false
	}
	h, ok := c.index[k]
	if !ok {
		return zero, false
	}
	v := c.nodes.At(h).Val
	c.ev.OnRemove(h)
	delete(c.index, k)
	c.nodes.Free(h)
	c.stats.Removes++
	c.opt.Metrics.Size(len(c.index))
	c.assertLocked()
	return v, true
}

// Peek returns the value for k without touching the eviction order or
// the hit/miss counters.
func (c *cache[K, V]) Peek(k K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	if c.closed.Load() {
		return zero, false
	}
	h, ok := c.index[k]
	if !ok {
		return zero, false
	}
	return c.nodes.At(h).Val, true
}

// Contains reports whether k is resident without promoting it.
func (c *cache[K, V]) Contains(k K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.index[k]
	return ok
}

// Keys returns the resident keys, next victim first.
func (c *cache[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]K, 0, len(c.index))
	c.ev.Walk(func(h arena.Handle) bool {
		keys = append(keys, c.nodes.At(h).Key)
		return true
	})
	return keys
}

// Purge evicts every entry in eviction order with reason EvictPurge.
func (c *cache[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return
	}
	n := len(c.index)
	cb := c.opt.OnEvict
	c.ev.Walk(func(h arena.Handle) bool {
		c.opt.Metrics.Evict(EvictPurge)
		if cb != nil {
			node := c.nodes.At(h)
			cb(node.Key, node.Val, EvictPurge)
		}
		return true
	})
	c.stats.Evictions += uint64(n)
	c.resetLocked()
	c.opt.Metrics.Size(0)
	c.log.Info("cache purged", zap.Int("entries", n), zap.Stringer("policy", c.kind))
}

// Len returns the number of resident entries.
func (c *cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.index)
}

// Capacity returns the configured entry limit.
func (c *cache[K, V]) Capacity() int { return c.capacity }

// Stats returns a snapshot of the counters.
func (c *cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats
	s.Len = len(c.index)
	return s
}

// GetOrLoad returns the value for k; on miss it loads via Options.Loader,
// coalescing concurrent loads for the same key, and stores the result.
func (c *cache[K, V]) GetOrLoad(ctx context.Context, k K) (V, error) {
	// fast path
	if v, ok := c.Get(k); ok {
		return v, nil
	}
	var zero V
	if c.closed.Load() {
		return zero, ErrClosed
	}
	if c.opt.Loader == nil {
		return zero, ErrNoLoader
	}

	// singleflight: exactly one real load for the key
	v, _, err := c.sf.Do(ctx, k, func() (V, error) {
		// double-check after flight join; Peek keeps hit/miss counts honest
		if v, ok := c.Peek(k); ok {
			return v, nil
		}
		v, err := c.opt.Loader(ctx, k)
		if err != nil {
			if ce := c.log.Check(zap.DebugLevel, "load failed"); ce != nil {
				ce.Write(zap.Any("key", k), zap.Error(err))
			}
			return v, err
		}
		c.Put(k, v)
		return v, nil
	})
	if err != nil {
		return zero, err
	}
	return v, nil
}

// Close marks the cache as closed and drops its entries without calling
// OnEvict. Future operations are ignored.
func (c *cache[K, V]) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.index)
	c.resetLocked()
	c.opt.Metrics.Size(0)
	c.log.Debug("cache closed", zap.Int("dropped", n))
	return nil
}

// -------------------- internals (mu held) --------------------

// insertLocked adds a new key, evicting the policy's victim first when full.
// Evicting before Alloc lets the new node reuse the victim's slot.
func (c *cache[K, V]) insertLocked(k K, v V) {
	if len(c.index) >= c.capacity {
		c.evictLocked(c.ev.Victim(), EvictCapacity)
	}

	h := c.nodes.Alloc()
	n := c.nodes.At(h)
	n.Key, n.Val = k, v
	c.index[k] = h
	c.ev.OnInsert(h)

	c.stats.Inserts++
	c.opt.Metrics.Size(len(c.index))
	c.assertLocked()
}

// evictLocked removes the node, updates metrics/counters, and calls OnEvict.
func (c *cache[K, V]) evictLocked(h arena.Handle, reason EvictReason) {
	n := c.nodes.At(h)
	k, v := n.Key, n.Val

	c.ev.OnRemove(h)
	delete(c.index, k)
	c.nodes.Free(h)

	c.stats.Evictions++
	c.opt.Metrics.Evict(reason)
	if ce := c.log.Check(zap.DebugLevel, "evicted"); ce != nil {
		ce.Write(zap.Any("key", k), zap.Stringer("reason", reason))
	}
	if cb := c.opt.OnEvict; cb != nil {
		// Under the lock: the callback must not re-enter the cache.
		cb(k, v, reason)
	}
}

// resetLocked releases every node at once. Policy sentinels live in the
// arena too, so the evictor is rebuilt on the emptied arena.
func (c *cache[K, V]) resetLocked() {
	clear(c.index)
	c.nodes.Reset()
	c.ev = newEvictor(c.kind, c.nodes)
}
