// Package lfu implements the LFU eviction policy with O(1) operations.
//
// Entries with the same access count share a frequency bucket. Each bucket is
// an arena list ordered most-recent first, so the oldest entry of the
// lowest-frequency bucket is the victim: frequency is the primary key,
// recency the tie-break. Buckets form a ring sorted by frequency, which makes
// both "bucket freq+1" and "next minimum after a removal" O(1) lookups.
package lfu

import (
	"fmt"
	"math"

	"github.com/IvanBrykalov/evictcache/internal/arena"
	"github.com/IvanBrykalov/evictcache/policy"
)

// bucket groups the entries sharing one frequency.
type bucket struct {
	freq uint32
	list arena.List
	n    int

	// ring links, ascending by freq; lfu.root closes the ring
	prev, next *bucket
}

type lfu[K comparable, V any] struct {
	a *arena.Arena[K, V]

	root    bucket // ring sentinel, freq 0, never holds entries
	byFreq  map[uint32]*bucket
	spare   []*bucket // emptied buckets kept for reuse (sentinel still allocated)
	minFreq uint32    // 0 iff empty
	n       int
}

// New returns an LFU evictor whose buckets live in a.
func New[K comparable, V any](a *arena.Arena[K, V]) policy.Evictor[K, V] {
	p := &lfu[K, V]{a: a, byFreq: make(map[uint32]*bucket)}
	p.root.prev, p.root.next = &p.root, &p.root
	return p
}

// OnInsert starts the entry at frequency 1 at the recent end of bucket 1.
// A fresh entry is always the least frequent, so minFreq becomes 1.
func (p *lfu[K, V]) OnInsert(h arena.Handle) {
	b := p.byFreq[1]
	if b == nil {
		b = p.newBucket(1, &p.root)
	}
	p.a.At(h).Freq = 1
	p.a.PushFront(b.list, h)
	b.n++
	p.n++
	p.minFreq = 1
}

// OnAccess moves the entry from bucket f to the recent end of bucket f+1.
func (p *lfu[K, V]) OnAccess(h arena.Handle) {
	f := p.a.At(h).Freq
	b := p.byFreq[f]
	if f == math.MaxUint32 {
		// saturated: only recency changes
		p.a.MoveToFront(b.list, h)
		return
	}

	target := b.next
	if target == &p.root || target.freq != f+1 {
		// newBucket may grow the arena; no node pointers are held here
		target = p.newBucket(f+1, b)
	}

	p.a.Unlink(h)
	b.n--
	p.a.At(h).Freq = f + 1
	p.a.PushFront(target.list, h)
	target.n++

	if b.n == 0 {
		p.dropBucket(b)
		if p.minFreq == f {
			p.minFreq = f + 1
		}
	}
}

// OnRemove detaches the entry. When its bucket was the minimum and empties,
// minFreq moves to the next bucket in the ring (or 0 if none is left).
func (p *lfu[K, V]) OnRemove(h arena.Handle) {
	if !p.a.Linked(h) {
		return
	}
	f := p.a.At(h).Freq
	b := p.byFreq[f]

	p.a.Unlink(h)
	b.n--
	p.n--

	if b.n == 0 {
		next := b.next
		p.dropBucket(b)
		if p.minFreq == f {
			if next == &p.root {
				p.minFreq = 0
			} else {
				p.minFreq = next.freq
			}
		}
	}
}

// Victim returns the oldest entry of the minimum-frequency bucket.
func (p *lfu[K, V]) Victim() arena.Handle {
	if p.n == 0 {
		panic("lfu: Victim called on empty policy")
	}
	return p.a.Back(p.byFreq[p.minFreq].list)
}

func (p *lfu[K, V]) Len() int { return p.n }

// Walk visits buckets by ascending frequency, each from oldest to newest.
func (p *lfu[K, V]) Walk(fn func(arena.Handle) bool) {
	more := true
	for b := p.root.next; b != &p.root && more; b = b.next {
		p.a.Walk(b.list, func(h arena.Handle) bool {
			more = fn(h)
			return more
		})
	}
}

func (p *lfu[K, V]) Verify() error {
	total, buckets := 0, 0
	var last uint32
	for b := p.root.next; b != &p.root; b = b.next {
		buckets++
		if b.next.prev != b {
			return fmt.Errorf("lfu: bucket ring broken after freq %d", b.freq)
		}
		if b.freq <= last {
			return fmt.Errorf("lfu: bucket freq %d not above previous %d", b.freq, last)
		}
		last = b.freq
		if p.byFreq[b.freq] != b {
			return fmt.Errorf("lfu: bucket %d missing from frequency table", b.freq)
		}
		n, err := p.a.Check(b.list)
		if err != nil {
			return fmt.Errorf("lfu: bucket %d: %w", b.freq, err)
		}
		if n == 0 {
			return fmt.Errorf("lfu: empty bucket %d left in table", b.freq)
		}
		if n != b.n {
			return fmt.Errorf("lfu: bucket %d holds %d nodes, counter says %d", b.freq, n, b.n)
		}
		var bad error
		p.a.Walk(b.list, func(h arena.Handle) bool {
			if f := p.a.At(h).Freq; f != b.freq {
				bad = fmt.Errorf("lfu: node %d with freq %d sits in bucket %d", h, f, b.freq)
				return false
			}
			return true
		})
		if bad != nil {
			return bad
		}
		total += n
	}
	if buckets != len(p.byFreq) {
		return fmt.Errorf("lfu: ring has %d buckets, frequency table %d", buckets, len(p.byFreq))
	}
	if total != p.n {
		return fmt.Errorf("lfu: buckets hold %d nodes, counter says %d", total, p.n)
	}
	want := uint32(0)
	if first := p.root.next; first != &p.root {
		want = first.freq
	}
	if p.minFreq != want {
		return fmt.Errorf("lfu: minFreq %d, lowest non-empty bucket %d", p.minFreq, want)
	}
	return nil
}

// newBucket links an empty bucket for freq right after prev.
func (p *lfu[K, V]) newBucket(freq uint32, prev *bucket) *bucket {
	var b *bucket
	if n := len(p.spare); n > 0 {
		b = p.spare[n-1]
		p.spare = p.spare[:n-1]
	} else {
		b = &bucket{list: p.a.NewList()}
	}
	b.freq, b.n = freq, 0
	b.prev, b.next = prev, prev.next
	prev.next.prev = b
	prev.next = b
	p.byFreq[freq] = b
	return b
}

func (p *lfu[K, V]) dropBucket(b *bucket) {
	b.prev.next = b.next
	b.next.prev = b.prev
	b.prev, b.next = nil, nil
	delete(p.byFreq, b.freq)
	p.spare = append(p.spare, b)
}

// Buckets returns the number of live frequency buckets.
func (p *lfu[K, V]) Buckets() int { return len(p.byFreq) }
