package arena

import "fmt"

// List is a circular doubly linked list threaded through arena nodes.
// It is identified by its sentinel node: sentinel.next is the front
// (most recent) and sentinel.prev is the back (oldest).
type List struct{ s Handle }

// NewList allocates a sentinel and returns an empty list.
func (a *Arena[K, V]) NewList() List {
	s := a.Alloc()
	n := &a.nodes[s]
	n.prev, n.next = s, s
	return List{s: s}
}

// Sentinel returns the handle of the list's sentinel node.
func (l List) Sentinel() Handle { return l.s }

// Empty reports whether l has no elements.
func (a *Arena[K, V]) Empty(l List) bool { return a.nodes[l.s].next == l.s }

// Front returns the most recently pushed element or Nil.
func (a *Arena[K, V]) Front(l List) Handle {
	if h := a.nodes[l.s].next; h != l.s {
		return h
	}
	return Nil
}

// Back returns the oldest element or Nil.
func (a *Arena[K, V]) Back(l List) Handle {
	if h := a.nodes[l.s].prev; h != l.s {
		return h
	}
	return Nil
}

// PushFront links the unlinked node h right after the sentinel.
func (a *Arena[K, V]) PushFront(l List, h Handle) {
	s := &a.nodes[l.s]
	first := s.next
	n := &a.nodes[h]
	n.prev, n.next = l.s, first
	a.nodes[first].prev = h
	s.next = h
}

// Unlink detaches h from whatever list it is on. Unlinking an unlinked
// node is a no-op.
func (a *Arena[K, V]) Unlink(h Handle) {
	n := &a.nodes[h]
	if n.prev == Nil {
		return
	}
	a.nodes[n.prev].next = n.next
	a.nodes[n.next].prev = n.prev
	n.prev, n.next = Nil, Nil
}

// MoveToFront relinks h right after the sentinel of l.
func (a *Arena[K, V]) MoveToFront(l List, h Handle) {
	if a.nodes[l.s].next == h {
		return
	}
	a.Unlink(h)
	a.PushFront(l, h)
}

// Linked reports whether h is currently on a list.
func (a *Arena[K, V]) Linked(h Handle) bool { return a.nodes[h].prev != Nil }

// Walk visits the elements of l from back (oldest) to front until fn
// returns false.
func (a *Arena[K, V]) Walk(l List, fn func(Handle) bool) {
	for h := a.nodes[l.s].prev; h != l.s; {
		prev := a.nodes[h].prev
		if !fn(h) {
			return
		}
		h = prev
	}
}

// Check walks l and verifies that every prev/next pair is symmetric.
// It returns the number of elements.
func (a *Arena[K, V]) Check(l List) (int, error) {
	count := 0
	for h := l.s; ; {
		next := a.nodes[h].next
		if next == Nil || int(next) >= len(a.nodes) {
			return count, fmt.Errorf("arena: node %d has dangling next %d", h, next)
		}
		if a.nodes[next].prev != h {
			return count, fmt.Errorf("arena: node %d next=%d but %d.prev=%d", h, next, next, a.nodes[next].prev)
		}
		if next == l.s {
			return count, nil
		}
		count++
		if count > len(a.nodes) {
			return count, fmt.Errorf("arena: list %d does not close", l.s)
		}
		h = next
	}
}
