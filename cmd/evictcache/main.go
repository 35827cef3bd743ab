// Command evictcache drives the cache from the command line: synthetic
// benchmarks with Prometheus/pprof endpoints, and replay of scripted
// operation traces.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
