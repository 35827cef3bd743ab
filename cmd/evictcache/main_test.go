package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/IvanBrykalov/evictcache/cache"
	"github.com/IvanBrykalov/evictcache/policy"
)

func TestReplayCommand(t *testing.T) {
	script := filepath.Join(t.TempDir(), "trace.txt")
	body := "put 1 1\nput 2 2\nget 1\nget 1\nput 3 3\nget 2\nkeys\n"
	if err := os.WriteFile(script, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	var out strings.Builder
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"replay", "--policy", "LFU", "--capacity", "2", script})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		capacity, policyKind = 100_000, policy.LRU
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "get 2 -> <miss>\nkeys -> [3 1]\n") {
		t.Fatalf("unexpected replay output:\n%s", out.String())
	}
}

func TestWorkloadValidate(t *testing.T) {
	t.Parallel()

	ok := workload{Workers: 1, Duration: time.Second, ReadPct: 50, Keys: 10, ZipfS: 1.1, ZipfV: 1}
	if err := ok.validate(); err != nil {
		t.Fatal(err)
	}
	bad := []workload{
		{Workers: 0, ReadPct: 50, Keys: 10, ZipfS: 1.1, ZipfV: 1},
		{Workers: 1, ReadPct: 101, Keys: 10, ZipfS: 1.1, ZipfV: 1},
		{Workers: 1, ReadPct: 50, Keys: 0, ZipfS: 1.1, ZipfV: 1},
		{Workers: 1, ReadPct: 50, Keys: 10, ZipfS: 1.0, ZipfV: 1},
	}
	for i, w := range bad {
		if err := w.validate(); err == nil {
			t.Fatalf("case %d: want validation error for %+v", i, w)
		}
	}
}

func TestRunWorkload(t *testing.T) {
	t.Parallel()

	c := cache.MustNew(cache.Options[string, string]{Capacity: 64, Policy: policy.LFU})
	t.Cleanup(func() { _ = c.Close() })

	w := workload{Workers: 3, Duration: 50 * time.Millisecond, ReadPct: 70, Keys: 256, ZipfS: 1.2, ZipfV: 1, Seed: 1}
	res, err := runWorkload(context.Background(), c, w)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Workers) != 3 {
		t.Fatalf("want 3 worker results, got %d", len(res.Workers))
	}
	tot := res.totals()
	if tot.ops() == 0 || tot.Hits > tot.Reads {
		t.Fatalf("implausible totals %+v", tot)
	}
	if mean, sd := res.throughput(); mean <= 0 || sd < 0 {
		t.Fatalf("throughput mean=%v stddev=%v", mean, sd)
	}
	if c.Len() > c.Capacity() {
		t.Fatalf("Len %d exceeds capacity", c.Len())
	}

	var out strings.Builder
	report(&out, c, res)
	if !strings.Contains(out.String(), "policy=lfu cap=64 workers=3") {
		t.Fatalf("report header missing:\n%s", out.String())
	}
}
