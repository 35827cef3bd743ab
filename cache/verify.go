package cache

import (
	"fmt"

	"github.com/IvanBrykalov/evictcache/internal/arena"
)

// verifyLocked checks that the index and the policy agree on every entry
// and that the policy's own bookkeeping is consistent.
func (c *cache[K, V]) verifyLocked() error {
	if n := c.ev.Len(); n != len(c.index) {
		return fmt.Errorf("index holds %d keys, policy tracks %d", len(c.index), n)
	}
	if len(c.index) > c.capacity {
		return fmt.Errorf("%d entries exceed capacity %d", len(c.index), c.capacity)
	}

	seen := 0
	var bad error
	c.ev.Walk(func(h arena.Handle) bool {
		k := c.nodes.At(h).Key
		if got, ok := c.index[k]; !ok || got != h {
			bad = fmt.Errorf("policy node %d holds key %v not indexed at that handle", h, k)
			return false
		}
		seen++
		return true
	})
	if bad != nil {
		return bad
	}
	if seen != len(c.index) {
		return fmt.Errorf("policy walk visited %d nodes, index holds %d", seen, len(c.index))
	}
	return c.ev.Verify()
}

// verify is verifyLocked for callers that do not hold the lock.
func (c *cache[K, V]) verify() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.verifyLocked()
}
