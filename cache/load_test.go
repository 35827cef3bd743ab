package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/evictcache/policy"
)

// Singleflight test: concurrent GetOrLoad calls for the same key
// should trigger the Loader at most once; subsequent calls are cache hits.
func TestCache_GetOrLoad_Singleflight(t *testing.T) {
	var calls int64

	c := MustNew(Options[string, string]{
		Capacity: 64,
		Policy:   policy.LFU,
		Loader: func(_ context.Context, k string) (string, error) {
			atomic.AddInt64(&calls, 1)
			time.Sleep(5 * time.Millisecond) // simulate I/O
			return "v:" + k, nil
		},
	})
	t.Cleanup(func() { _ = c.Close() })

	const N = 64
	var g errgroup.Group
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for i := 0; i < N; i++ {
		g.Go(func() error {
			v, err := c.GetOrLoad(ctx, "k")
			if err != nil {
				return err
			}
			if v != "v:k" {
				return fmt.Errorf("got %q", v)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	if got := atomic.LoadInt64(&calls); got != 1 {
		t.Fatalf("loader must run exactly once, got %d", got)
	}

	if v, err := c.GetOrLoad(context.Background(), "k"); err != nil || v != "v:k" {
		t.Fatalf("second GetOrLoad failed: v=%q err=%v", v, err)
	}
	if got := atomic.LoadInt64(&calls); got != 1 {
		t.Fatalf("second GetOrLoad must hit, loader calls %d", got)
	}
}

func TestCache_GetOrLoad_Errors(t *testing.T) {
	t.Parallel()

	noLoader := MustNew(Options[string, int]{Capacity: 1})
	t.Cleanup(func() { _ = noLoader.Close() })
	if _, err := noLoader.GetOrLoad(context.Background(), "a"); !errors.Is(err, ErrNoLoader) {
		t.Fatalf("want ErrNoLoader, got %v", err)
	}

	_ = noLoader.Close()
	if _, err := noLoader.GetOrLoad(context.Background(), "a"); !errors.Is(err, ErrClosed) {
		t.Fatalf("closed cache without loader: want ErrClosed, got %v", err)
	}

	boom := errors.New("backend down")
	c := MustNew(Options[string, int]{
		Capacity: 1,
		Loader:   func(context.Context, string) (int, error) { return 0, boom },
	})
	if _, err := c.GetOrLoad(context.Background(), "a"); !errors.Is(err, boom) {
		t.Fatalf("want loader error, got %v", err)
	}
	if c.Contains("a") {
		t.Fatal("failed load must not be stored")
	}

	_ = c.Close()
	if _, err := c.GetOrLoad(context.Background(), "a"); !errors.Is(err, ErrClosed) {
		t.Fatalf("want ErrClosed, got %v", err)
	}
}

// A loaded value is a regular entry: it counts toward capacity and evicts.
func TestCache_GetOrLoad_Evicts(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, Options[int, int]{
		Capacity: 2,
		Loader:   func(_ context.Context, k int) (int, error) { return k * 10, nil },
	})
	for k := 1; k <= 3; k++ {
		if v, err := c.GetOrLoad(context.Background(), k); err != nil || v != k*10 {
			t.Fatalf("GetOrLoad(%d) = %d, %v", k, v, err)
		}
	}
	if c.Contains(1) || c.Len() != 2 {
		t.Fatalf("loading 3 keys into capacity 2 must evict 1, keys %v", c.Keys())
	}
	mustVerify(t, c)
}
