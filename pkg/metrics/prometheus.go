package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fetchDuration  *prometheus.HistogramVec
	barsFetched    *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	snapshotsSent  *prometheus.CounterVec
	lastValue      *prometheus.GaugeVec
}

// New registers the recorder on the default registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the recorder on reg.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		fetchDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cephu_fetch_duration_seconds",
				Help:    "Duration of market data downloads",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"symbol"},
		),
		barsFetched: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cephu_bars_fetched_total",
				Help: "Total number of bars downloaded",
			},
			[]string{"symbol"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cephu_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		renderDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cephu_render_duration_seconds",
				Help:    "Duration of chart rendering",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind", "format"},
		),
		snapshotsSent: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cephu_snapshots_sent_total",
				Help: "Total number of run snapshots written to a backend",
			},
			[]string{"backend"},
		),
		lastValue: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cephu_last_value",
				Help: "Last headline value of a report (basis or close)",
			},
			[]string{"kind", "symbol"},
		),
	}
}

// RecordFetch records one download.
func (r *Recorder) RecordFetch(symbol string, seconds float64, bars int) {
	r.fetchDuration.WithLabelValues(symbol).Observe(seconds)
	r.barsFetched.WithLabelValues(symbol).Add(float64(bars))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordRender records chart rendering latency.
func (r *Recorder) RecordRender(kind, format string, seconds float64) {
	r.renderDuration.WithLabelValues(kind, format).Observe(seconds)
}

// RecordSnapshot records a snapshot written to a backend.
func (r *Recorder) RecordSnapshot(backend string) {
	r.snapshotsSent.WithLabelValues(backend).Inc()
}

// RecordLastValue records the headline value of the latest report.
func (r *Recorder) RecordLastValue(kind, symbol string, v float64) {
	r.lastValue.WithLabelValues(kind, symbol).Set(v)
}
