package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	datasetsLoaded  *prometheus.CounterVec
	datasetsSkipped *prometheus.CounterVec
	seriesRows      *prometheus.GaugeVec
	errorsTotal     *prometheus.CounterVec
	latency         *prometheus.HistogramVec
}

// New creates a Prometheus metrics recorder on the default registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a recorder registering its collectors on reg.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		datasetsLoaded: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinscope_datasets_loaded_total",
				Help: "Total number of datasets loaded into the series store",
			},
			[]string{"source"},
		),
		datasetsSkipped: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinscope_datasets_skipped_total",
				Help: "Total number of ingestion inputs skipped as malformed",
			},
			[]string{"source"},
		),
		seriesRows: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "coinscope_series_rows",
				Help: "Number of daily rows held for a symbol",
			},
			[]string{"symbol"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinscope_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coinscope_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordDatasetLoaded records a series accepted by the store.
func (r *Recorder) RecordDatasetLoaded(source, symbol string, rows int) {
	r.datasetsLoaded.WithLabelValues(source).Inc()
	r.seriesRows.WithLabelValues(symbol).Set(float64(rows))
}

// RecordDatasetSkipped records an ingestion input that produced no series.
func (r *Recorder) RecordDatasetSkipped(source string) {
	r.datasetsSkipped.WithLabelValues(source).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
