package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/IvanBrykalov/evictcache/cache"
	pmet "github.com/IvanBrykalov/evictcache/metrics/prom"
)

// workload describes the synthetic load generated by bench.
type workload struct {
	Workers  int
	Duration time.Duration
	ReadPct  int
	Keys     uint64
	ZipfS    float64
	ZipfV    float64
	Seed     int64
}

// workerResult holds one worker's counters.
type workerResult struct {
	Reads, Writes, Hits uint64
}

func (r workerResult) ops() uint64 { return r.Reads + r.Writes }

// benchResult aggregates a finished run.
type benchResult struct {
	Elapsed time.Duration
	Workers []workerResult
}

func (b benchResult) totals() workerResult {
	var t workerResult
	for _, w := range b.Workers {
		t.Reads += w.Reads
		t.Writes += w.Writes
		t.Hits += w.Hits
	}
	return t
}

// throughput returns mean and standard deviation of per-worker ops/s.
func (b benchResult) throughput() (mean, stddev float64) {
	secs := b.Elapsed.Seconds()
	if secs <= 0 || len(b.Workers) == 0 {
		return 0, 0
	}
	rates := make([]float64, len(b.Workers))
	for i, w := range b.Workers {
		rates[i] = float64(w.ops()) / secs
	}
	if len(rates) == 1 {
		return rates[0], 0
	}
	return stat.Mean(rates, nil), stat.StdDev(rates, nil)
}

var (
	benchLoad   workload
	preload     int
	metricsAddr string
	pprofAddr   string
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run a synthetic Zipf workload against the cache",
	Long: `Bench drives a read/write mix with Zipf-distributed keys from several
workers for a fixed duration, then reports throughput and hit rate.
Prometheus metrics are served on --http while the run lasts.`,
	Args: cobra.NoArgs,
	RunE: runBench,
}

func init() {
	f := benchCmd.Flags()
	f.IntVar(&benchLoad.Workers, "workers", 2*runtime.GOMAXPROCS(0), "number of worker goroutines")
	f.DurationVar(&benchLoad.Duration, "duration", 10*time.Second, "benchmark duration")
	f.IntVar(&benchLoad.ReadPct, "reads", 80, "read percentage [0..100]")
	f.Uint64Var(&benchLoad.Keys, "keys", 1_000_000, "keyspace size")
	f.Float64Var(&benchLoad.ZipfS, "zipf-s", 1.1, "Zipf s > 1 (skew)")
	f.Float64Var(&benchLoad.ZipfV, "zipf-v", 1.0, "Zipf v >= 1")
	f.Int64Var(&benchLoad.Seed, "seed", time.Now().UnixNano(), "random seed")
	f.IntVar(&preload, "preload", 0, "preload entries (0 = capacity/2)")
	f.StringVar(&metricsAddr, "http", ":8080", "serve Prometheus metrics at addr; empty = disabled")
	f.StringVar(&pprofAddr, "pprof", "", "serve pprof at addr (e.g. :6060); empty = disabled")
	rootCmd.AddCommand(benchCmd)
}

func runBench(cmd *cobra.Command, args []string) error {
	if err := benchLoad.validate(); err != nil {
		return err
	}
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	// ---- pprof server (on DefaultServeMux) ----
	if pprofAddr != "" {
		go serve(log.Named("pprof"), pprofAddr, nil)
	}

	// ---- Prometheus metrics ----
	var metrics cache.Metrics
	if metricsAddr != "" {
		m := pmet.New(nil, "evictcache", "bench", policyKind, nil)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go serve(log.Named("metrics"), metricsAddr, mux)
		metrics = m
	}

	c, err := newCache[string](log, metrics)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	// ---- Preload half capacity to get a realistic hit-rate ----
	pl := preload
	if pl == 0 {
		pl = capacity / 2
	}
	for i := 0; i < pl; i++ {
		c.Put("k:"+strconv.Itoa(i), "v"+strconv.Itoa(i))
	}

	log.Info("bench started",
		zap.Stringer("policy", policyKind),
		zap.Int("capacity", capacity),
		zap.Int("workers", benchLoad.Workers),
		zap.Duration("duration", benchLoad.Duration),
	)
	res, err := runWorkload(cmd.Context(), c, benchLoad)
	if err != nil {
		return err
	}
	report(cmd.OutOrStdout(), c, res)
	return nil
}

func (w workload) validate() error {
	switch {
	case w.Workers <= 0:
		return errors.New("--workers must be > 0")
	case w.ReadPct < 0 || w.ReadPct > 100:
		return fmt.Errorf("--reads must be in [0,100], got %d", w.ReadPct)
	case w.Keys == 0:
		return errors.New("--keys must be > 0")
	case w.ZipfS <= 1:
		return fmt.Errorf("--zipf-s must be > 1, got %v", w.ZipfS)
	case w.ZipfV < 1:
		return fmt.Errorf("--zipf-v must be >= 1, got %v", w.ZipfV)
	}
	return nil
}

// runWorkload drives c from w.Workers goroutines until w.Duration elapses
// or ctx is cancelled.
func runWorkload(ctx context.Context, c cache.Cache[string, string], w workload) (benchResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, w.Duration)
	defer cancel()

	results := make([]workerResult, w.Workers)
	start := time.Now()
	g, ctx := errgroup.WithContext(ctx)
	for id := 0; id < w.Workers; id++ {
		g.Go(func() error {
			// Each worker gets its own RNG + Zipf (rand.Rand is NOT goroutine-safe).
			r := rand.New(rand.NewSource(w.Seed + int64(id)*9973))
			zipf := rand.NewZipf(r, w.ZipfS, w.ZipfV, w.Keys-1)
			res := &results[id]

			for ctx.Err() == nil {
				k := "k:" + strconv.FormatUint(zipf.Uint64(), 10)
				if int(r.Int31n(100)) < w.ReadPct {
					res.Reads++
					if _, ok := c.Get(k); ok {
						res.Hits++
					}
				} else {
					res.Writes++
					c.Put(k, "v"+strconv.Itoa(r.Int()))
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return benchResult{}, err
	}
	return benchResult{Elapsed: time.Since(start), Workers: results}, nil
}

func report(out io.Writer, c cache.Cache[string, string], res benchResult) {
	t := res.totals()
	ops := t.ops()
	hitRate := 0.0
	if t.Reads > 0 {
		hitRate = float64(t.Hits) / float64(t.Reads) * 100
	}
	mean, sd := res.throughput()
	s := c.Stats()

	fmt.Fprintf(out, "policy=%s cap=%d workers=%d dur=%v\n",
		s.Policy, s.Capacity, len(res.Workers), res.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(out, "ops=%d (%.0f ops/s)  reads=%d  writes=%d\n",
		ops, float64(ops)/res.Elapsed.Seconds(), t.Reads, t.Writes)
	fmt.Fprintf(out, "per-worker ops/s: mean=%.0f stddev=%.0f\n", mean, sd)
	fmt.Fprintf(out, "hits=%d  misses=%d  hit-rate=%.2f%%\n", t.Hits, t.Reads-t.Hits, hitRate)
	fmt.Fprintf(out, "evictions=%d  Len()=%d\n", s.Evictions, s.Len)
}

func serve(log *zap.Logger, addr string, h http.Handler) {
	log.Info("serving", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, h); err != nil {
		log.Warn("server stopped", zap.Error(err))
	}
}
