package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/IvanBrykalov/evictcache/cache"
	"github.com/IvanBrykalov/evictcache/policy"
)

var (
	// Global flags.
	capacity   int
	policyKind = policy.LRU
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "evictcache",
	Short: "Bounded in-memory cache with LRU and LFU eviction",
	Long: `evictcache exercises a capacity-bounded in-memory cache whose eviction
policy (LRU or LFU) is chosen at startup.

Examples:
  # Zipf workload for 10s against an LFU cache, metrics on :8080
  evictcache bench --policy lfu --capacity 100000 --duration 10s

  # Replay a scripted trace and print one result per operation
  evictcache replay --policy lru --capacity 2 trace.txt`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().IntVarP(&capacity, "capacity", "c", 100_000, "cache capacity (entries)")
	rootCmd.PersistentFlags().Var(&policyKind, "policy", "eviction policy: lru | lfu")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// newLogger returns a development logger with --verbose, a production one otherwise.
func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// newCache builds a cache from the global flags.
func newCache[V any](log *zap.Logger, metrics cache.Metrics) (cache.Cache[string, V], error) {
	c, err := cache.New(cache.Options[string, V]{
		Capacity: capacity,
		Policy:   policyKind,
		Metrics:  metrics,
		Logger:   log.Named("cache"),
	})
	if err != nil {
		return nil, fmt.Errorf("building cache: %w", err)
	}
	return c, nil
}
