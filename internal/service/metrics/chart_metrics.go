package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Render cache outcomes.
const (
	CacheHit    = "hit"
	CacheMiss   = "miss"
	CacheShared = "shared" // another request rendered it while we waited
	CacheBypass = "bypass"
)

var (
	once sync.Once

	ChartBuildLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cephu",
			Subsystem: "charts",
			Name:      "build_seconds",
			Help:      "Time to fetch, compute and render an on-demand chart",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"kind"},
	)

	ChartCacheResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cephu",
			Subsystem: "charts",
			Name:      "cache_results_total",
			Help:      "Render cache lookups by outcome",
		},
		[]string{"kind", "result"},
	)
)

// Register adds the chart collectors to the default registry once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(ChartBuildLatency, ChartCacheResults)
	})
}

// ObserveBuild records one chart build.
func ObserveBuild(kind string, seconds float64) {
	ChartBuildLatency.WithLabelValues(kind).Observe(seconds)
}

// ObserveCache records one render cache outcome.
func ObserveCache(kind, result string) {
	ChartCacheResults.WithLabelValues(kind, result).Inc()
}
