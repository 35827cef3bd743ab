// Package lru implements the LRU eviction policy.
package lru

import (
	"fmt"

	"github.com/IvanBrykalov/evictcache/internal/arena"
	"github.com/IvanBrykalov/evictcache/policy"
)

// lru is a classic "move-to-front" Least-Recently-Used policy.
// One sentinel-headed list: front is MRU, back is LRU.
type lru[K comparable, V any] struct {
	a    *arena.Arena[K, V]
	list arena.List
	n    int
}

// New returns an LRU evictor whose list lives in a.
func New[K comparable, V any](a *arena.Arena[K, V]) policy.Evictor[K, V] {
	return &lru[K, V]{a: a, list: a.NewList()}
}

// OnInsert places the new entry at MRU.
func (p *lru[K, V]) OnInsert(h arena.Handle) {
	p.a.PushFront(p.list, h)
	p.n++
}

// OnAccess promotes the entry to MRU. Promoting the current MRU is a no-op.
func (p *lru[K, V]) OnAccess(h arena.Handle) { p.a.MoveToFront(p.list, h) }

// OnRemove unlinks the entry.
func (p *lru[K, V]) OnRemove(h arena.Handle) {
	if !p.a.Linked(h) {
		return
	}
	p.a.Unlink(h)
	p.n--
}

// Victim returns the LRU entry. Recency is a total order, so there are no ties.
func (p *lru[K, V]) Victim() arena.Handle {
	h := p.a.Back(p.list)
	if h == arena.Nil {
		panic("lru: Victim called on empty policy")
	}
	return h
}

func (p *lru[K, V]) Len() int { return p.n }

// Walk visits entries from LRU to MRU.
func (p *lru[K, V]) Walk(fn func(arena.Handle) bool) { p.a.Walk(p.list, fn) }

func (p *lru[K, V]) Verify() error {
	n, err := p.a.Check(p.list)
	if err != nil {
		return fmt.Errorf("lru: %w", err)
	}
	if n != p.n {
		return fmt.Errorf("lru: list holds %d nodes, counter says %d", n, p.n)
	}
	return nil
}
