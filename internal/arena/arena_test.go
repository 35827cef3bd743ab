package arena

import (
	"strconv"
	"testing"
)

func keysOf(a *Arena[string, int], l List) []string {
	var out []string
	a.Walk(l, func(h Handle) bool {
		out = append(out, a.At(h).Key)
		return true
	})
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func push(a *Arena[string, int], l List, k string) Handle {
	h := a.Alloc()
	a.At(h).Key = k
	a.PushFront(l, h)
	return h
}

func TestArena_AllocReusesFreedSlots(t *testing.T) {
	t.Parallel()

	a := New[string, int](2)
	h1 := a.Alloc()
	h2 := a.Alloc()
	if h1 == h2 {
		t.Fatal("distinct allocations must return distinct handles")
	}
	a.At(h1).Key, a.At(h1).Val = "a", 1

	a.Free(h1)
	if n := a.At(h1); n.Key != "" || n.Val != 0 {
		t.Fatalf("Free must zero the node, got %+v", *n)
	}
	if got := a.Alloc(); got != h1 {
		t.Fatalf("Alloc must reuse freed handle %d, got %d", h1, got)
	}
	if a.Live() != 2 {
		t.Fatalf("Live want 2, got %d", a.Live())
	}
}

func TestList_PushWalkBack(t *testing.T) {
	t.Parallel()

	a := New[string, int](4)
	l := a.NewList()
	if !a.Empty(l) || a.Front(l) != Nil || a.Back(l) != Nil {
		t.Fatal("new list must be empty")
	}

	push(a, l, "a")
	push(a, l, "b")
	hc := push(a, l, "c")

	if got := keysOf(a, l); !equal(got, []string{"a", "b", "c"}) {
		t.Fatalf("walk back->front want [a b c], got %v", got)
	}
	if a.At(a.Back(l)).Key != "a" || a.Front(l) != hc {
		t.Fatal("back must be oldest, front newest")
	}
	if n, err := a.Check(l); err != nil || n != 3 {
		t.Fatalf("Check: n=%d err=%v", n, err)
	}
}

func TestList_MoveToFrontAndUnlink(t *testing.T) {
	t.Parallel()

	a := New[string, int](4)
	l := a.NewList()
	ha := push(a, l, "a")
	hb := push(a, l, "b")
	push(a, l, "c")

	a.MoveToFront(l, ha) // b c a
	if got := keysOf(a, l); !equal(got, []string{"b", "c", "a"}) {
		t.Fatalf("after MoveToFront(a) want [b c a], got %v", got)
	}
	a.MoveToFront(l, ha) // already front: no-op
	if got := keysOf(a, l); !equal(got, []string{"b", "c", "a"}) {
		t.Fatalf("MoveToFront of the front must be a no-op, got %v", got)
	}

	a.Unlink(hb)
	if a.Linked(hb) {
		t.Fatal("unlinked node must report !Linked")
	}
	a.Unlink(hb) // idempotent
	if got := keysOf(a, l); !equal(got, []string{"c", "a"}) {
		t.Fatalf("after Unlink(b) want [c a], got %v", got)
	}

	a.Unlink(ha) // the front: sentinel.next must be patched
	if a.At(a.Front(l)).Key != "c" || a.At(a.Back(l)).Key != "c" {
		t.Fatal("single remaining element must be both front and back")
	}
	if n, err := a.Check(l); err != nil || n != 1 {
		t.Fatalf("Check: n=%d err=%v", n, err)
	}
}

func TestList_WalkStopsEarly(t *testing.T) {
	t.Parallel()

	a := New[string, int](4)
	l := a.NewList()
	for _, k := range []string{"a", "b", "c"} {
		push(a, l, k)
	}
	visited := 0
	a.Walk(l, func(Handle) bool {
		visited++
		return visited < 2
	})
	if visited != 2 {
		t.Fatalf("Walk must stop when fn returns false, visited %d", visited)
	}
}

func TestList_CheckDetectsCorruption(t *testing.T) {
	t.Parallel()

	a := New[string, int](4)
	l := a.NewList()
	push(a, l, "a")
	hb := push(a, l, "b")

	a.nodes[hb].prev = hb // break symmetry
	if _, err := a.Check(l); err == nil {
		t.Fatal("Check must report asymmetric links")
	}
}

func TestArena_Reset(t *testing.T) {
	t.Parallel()

	a := New[string, int](4)
	l := a.NewList()
	push(a, l, "a")
	a.Reset()
	if a.Live() != 0 {
		t.Fatalf("Live after Reset want 0, got %d", a.Live())
	}
}

func TestArena_Exhausted(t *testing.T) {
	t.Parallel()

	if exhausted(0) || exhausted(1<<20) {
		t.Fatal("small arenas must not be exhausted")
	}
	if strconv.IntSize == 64 {
		limit := int64(Nil)
		if !exhausted(int(limit)) || exhausted(int(limit-1)) {
			t.Fatalf("exhaustion must start at %d slots", limit)
		}
	}
}
