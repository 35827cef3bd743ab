// Package singleflight coalesces concurrent loads of the same cache key.
package singleflight

import (
	"context"
	"fmt"
	"sync"
)

// Group coalesces concurrent function calls for the same key K so that
// the supplied fn is executed at most once. Other concurrent callers
// wait for the shared result.
//
// Concurrency notes:
//   - The first caller for a given key becomes the leader and runs fn.
//   - Followers wait on c.done. Publishing (val, err) happens-before
//     close(c.done), so reads after <-done observe the final values.
//   - Cancelling ctx in a follower unblocks only that follower; it does
//     NOT cancel the leader's fn.
//   - A panic in fn is recovered, reported to every waiter as an error,
//     and re-raised in the leader.
type Group[K comparable, V any] struct {
	mu sync.Mutex
	m  map[K]*call[V]
}

type call[V any] struct {
	done    chan struct{} // closed when val/err are published
	val     V
	err     error
	waiters int
}

// PanicError carries a value recovered from a panicking fn.
type PanicError struct{ Value any }

func (p *PanicError) Error() string { return fmt.Sprintf("singleflight: load panicked: %v", p.Value) }

// Do runs fn once for the given key. Concurrent calls with the same key
// wait for the shared result; shared reports whether the result was handed
// to more than one caller. If ctx is cancelled in a follower, that follower
// returns ctx.Err() while the leader continues to run fn.
func (g *Group[K, V]) Do(ctx context.Context, key K, fn func() (V, error)) (v V, shared bool, err error) {
	g.mu.Lock()
	if g.m == nil {
		g.m = make(map[K]*call[V])
	}
	if c, ok := g.m[key]; ok {
		c.waiters++
		g.mu.Unlock()

		select {
		case <-c.done:
			return c.val, true, c.err
		case <-ctx.Done():
			var zero V
			return zero, false, ctx.Err()
		}
	}

	// We are the leader for this key.
	c := &call[V]{done: make(chan struct{})}
	g.m[key] = c
	g.mu.Unlock()

	g.run(key, c, fn)

	g.mu.Lock()
	shared = c.waiters > 0
	g.mu.Unlock()
	if p, ok := c.err.(*PanicError); ok {
		panic(p.Value)
	}
	return c.val, shared, c.err
}

// run executes fn outside the lock and always publishes a result.
func (g *Group[K, V]) run(key K, c *call[V], fn func() (V, error)) {
	defer func() {
		if r := recover(); r != nil {
			c.err = &PanicError{Value: r}
		}
		// Remove the in-flight marker before waking followers so a
		// caller arriving after done starts a fresh load.
		g.mu.Lock()
		delete(g.m, key)
		g.mu.Unlock()
		close(c.done)
	}()
	c.val, c.err = fn()
}

// InFlight returns the number of keys currently being loaded.
func (g *Group[K, V]) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.m)
}
