// Package observability holds the prometheus collectors shared by the fetch path.
package observability

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Layer outcomes.
const (
	OutcomeHit     = "hit"
	OutcomeFetched = "fetched"
	OutcomeEmpty   = "empty"
	OutcomeFailed  = "failed"
	OutcomeCorrupt = "corrupt"
)

var (
	layerResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poster_layer_results_total",
			Help: "Layer resolutions by feature kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	cacheOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poster_cache_op_total",
			Help: "Layer cache operations by result.",
		},
		[]string{"op", "result"},
	)

	cacheOpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "poster_cache_op_duration_seconds",
			Help:    "Duration of layer cache operations in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
		},
		[]string{"op"},
	)

	upstreamLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "poster_upstream_latency_seconds",
			Help:    "Latency of upstream calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms to ~100s
		},
		[]string{"upstream"},
	)
)

// Register adds the collectors to reg. Registering twice on the same registry is a no-op.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{layerResults, cacheOps, cacheOpDuration, upstreamLatency} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}

func ObserveLayer(kind, outcome string) {
	layerResults.WithLabelValues(kind, outcome).Inc()
}

func ObserveCacheOp(op string, err error, durationSeconds float64) {
	res := "ok"
	if err != nil {
		res = "error"
	}
	cacheOps.WithLabelValues(op, res).Inc()
	cacheOpDuration.WithLabelValues(op).Observe(durationSeconds)
}

// ObserveCacheResult records an op whose result is not a plain ok/error, such as a miss.
func ObserveCacheResult(op, result string, durationSeconds float64) {
	cacheOps.WithLabelValues(op, result).Inc()
	cacheOpDuration.WithLabelValues(op).Observe(durationSeconds)
}

func ObserveUpstreamLatency(upstream string, durationSeconds float64) {
	upstreamLatency.WithLabelValues(upstream).Observe(durationSeconds)
}

func LayerResults() *prometheus.CounterVec { return layerResults }

func CacheOps() *prometheus.CounterVec { return cacheOps }
