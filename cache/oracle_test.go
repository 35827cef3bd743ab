package cache

import (
	"math/rand"
	"slices"
	"testing"

	golru "github.com/hashicorp/golang-lru/v2"
)

// The LRU policy must make exactly the same decisions as hashicorp's LRU on
// the same operation stream: same hits, same evicted keys, same order.
func TestCache_LRUMatchesGolangLRU(t *testing.T) {
	t.Parallel()

	const capacity = 32

	var gotEvicted, wantEvicted []int
	removing := false // the reference also reports explicit removals
	c := newTestCache(t, Options[int, int]{
		Capacity: capacity,
		OnEvict:  func(k, _ int, _ EvictReason) { gotEvicted = append(gotEvicted, k) },
	})
	ref, err := golru.NewWithEvict[int, int](capacity, func(k, _ int) {
		if !removing {
			wantEvicted = append(wantEvicted, k)
		}
	})
	if err != nil {
		t.Fatal(err)
	}

	r := rand.New(rand.NewSource(42))
	for step := 0; step < 50_000; step++ {
		k := r.Intn(capacity * 3)
		switch op := r.Intn(10); {
		case op < 5:
			v, ok := c.Get(k)
			rv, rok := ref.Get(k)
			if ok != rok || v != rv {
				t.Fatalf("step %d: Get(%d) = %d,%v, reference %d,%v", step, k, v, ok, rv, rok)
			}
		case op < 9:
			c.Put(k, step)
			ref.Add(k, step)
		default:
			_, ok := c.Remove(k)
			removing = true
			rok := ref.Remove(k)
			removing = false
			if ok != rok {
				t.Fatalf("step %d: Remove(%d) = %v, reference %v", step, k, ok, rok)
			}
		}

		if !slices.Equal(gotEvicted, wantEvicted) {
			t.Fatalf("step %d: evicted %v, reference %v", step, gotEvicted, wantEvicted)
		}
		if c.Len() != ref.Len() {
			t.Fatalf("step %d: Len %d, reference %d", step, c.Len(), ref.Len())
		}
	}

	// Both list the oldest key first.
	if got, want := c.Keys(), ref.Keys(); !slices.Equal(got, want) {
		t.Fatalf("Keys %v, reference %v", got, want)
	}
}
