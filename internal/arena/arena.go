// Package arena stores cache entries in a growable slice addressed by stable
// integer handles. Links between entries are handles, not pointers, so the
// slice exclusively owns every node.
package arena

import "math"

// Handle identifies a node inside an Arena.
// A handle stays valid until the node is released with Free.
type Handle uint32

// Nil is the "no node" handle.
const Nil Handle = math.MaxUint32

// Node is one slot of the arena: the cached key/value plus intrusive list
// links and the access frequency used by LFU.
type Node[K comparable, V any] struct {
	Key K
	Val V

	// Freq is the access count (LFU only). Zero for LRU nodes and sentinels.
	Freq uint32

	prev Handle
	next Handle
}

// Arena owns all nodes of one cache. It is not safe for concurrent use;
// the owning cache serializes access.
type Arena[K comparable, V any] struct {
	nodes []Node[K, V]
	free  []Handle
}

// New returns an arena with room for capacity nodes before it has to grow.
func New[K comparable, V any](capacity int) *Arena[K, V] {
	if capacity < 0 {
		capacity = 0
	}
	return &Arena[K, V]{nodes: make([]Node[K, V], 0, capacity)}
}

// Alloc returns a fresh, unlinked node. Released slots are reused first.
//
// Alloc may grow the backing slice, so pointers obtained from At before the
// call must not be used after it.
func (a *Arena[K, V]) Alloc() Handle {
	if n := len(a.free); n > 0 {
		h := a.free[n-1]
		a.free = a.free[:n-1]
		a.nodes[h].prev, a.nodes[h].next = Nil, Nil
		return h
	}
	if exhausted(len(a.nodes)) {
		panic("arena: handle space exhausted")
	}
	a.nodes = append(a.nodes, Node[K, V]{prev: Nil, next: Nil})
	return Handle(len(a.nodes) - 1)
}

// exhausted reports whether n slots already use every handle below Nil.
// The comparison is done in uint64 so it also builds where int is 32 bits.
func exhausted(n int) bool { return uint64(n) >= uint64(Nil) }

// Free releases h for reuse. The node must already be unlinked.
// Key and value are zeroed so the arena does not retain them.
func (a *Arena[K, V]) Free(h Handle) {
	a.nodes[h] = Node[K, V]{prev: Nil, next: Nil}
	a.free = append(a.free, h)
}

// At returns the node for h.
func (a *Arena[K, V]) At(h Handle) *Node[K, V] { return &a.nodes[h] }

// Live returns the number of allocated (not freed) slots, sentinels included.
func (a *Arena[K, V]) Live() int { return len(a.nodes) - len(a.free) }

// Reset drops every node and keeps the backing storage.
func (a *Arena[K, V]) Reset() {
	clear(a.nodes)
	a.nodes = a.nodes[:0]
	a.free = a.free[:0]
}
