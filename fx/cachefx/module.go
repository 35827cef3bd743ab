// Package cachefx provides an fx module for a byte-slice cache keyed by string.
package cachefx

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/IvanBrykalov/evictcache/cache"
	"github.com/IvanBrykalov/evictcache/metrics/prom"
	"github.com/IvanBrykalov/evictcache/policy"
)

// Config configures the provided cache. Supply it with fx.Supply or a
// constructor of your own.
type Config struct {
	Capacity int
	Policy   policy.Kind

	// Namespace and Subsystem name the Prometheus metrics. Metrics are only
	// registered when a prometheus.Registerer is available in the graph.
	Namespace string
	Subsystem string
}

// Module provides a cache.Cache[string, []byte] closed on application stop.
// Requires a *zap.Logger and a Config to be provided.
var Module = fx.Module("evictcache",
	fx.Provide(
		newMetrics,
		newCache,
	),
)

// MetricsParams holds the optional registry.
type MetricsParams struct {
	fx.In

	Config     Config
	Registerer prometheus.Registerer `optional:"true"`
}

func newMetrics(p MetricsParams) cache.Metrics {
	if p.Registerer == nil {
		return cache.NoopMetrics{}
	}
	return prom.New(p.Registerer, p.Config.Namespace, p.Config.Subsystem, p.Config.Policy, nil)
}

// Params holds dependencies for creating the cache.
type Params struct {
	fx.In

	Config    Config
	Logger    *zap.Logger
	Metrics   cache.Metrics
	Lifecycle fx.Lifecycle
}

func newCache(p Params) (cache.Cache[string, []byte], error) {
	c, err := cache.New(cache.Options[string, []byte]{
		Capacity: p.Config.Capacity,
		Policy:   p.Config.Policy,
		Metrics:  p.Metrics,
		Logger:   p.Logger.Named("evictcache"),
	})
	if err != nil {
		return nil, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return c.Close()
		},
	})
	return c, nil
}
