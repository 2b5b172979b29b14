package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// API holds per-endpoint latency and error metrics of the HTTP surface.
type API struct {
	Latency    *prometheus.HistogramVec
	Errors     *prometheus.CounterVec
	CacheHits  *prometheus.CounterVec
	RateLimits prometheus.Counter
}

// NewAPI registers the API metrics on reg.
func NewAPI(reg prometheus.Registerer) *API {
	f := promauto.With(reg)
	return &API{
		Latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "coinscope",
				Subsystem: "api",
				Name:      "latency_seconds",
				Help:      "Latency of API endpoints",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		Errors: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "coinscope",
				Subsystem: "api",
				Name:      "errors_total",
				Help:      "Errors by API endpoint and kind",
			},
			[]string{"endpoint", "kind"},
		),
		CacheHits: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "coinscope",
				Subsystem: "api",
				Name:      "cache_hits_total",
				Help:      "Responses served from cache",
			},
			[]string{"endpoint"},
		),
		RateLimits: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: "coinscope",
				Subsystem: "api",
				Name:      "rate_limited_total",
				Help:      "Requests rejected by the rate limiter",
			},
		),
	}
}

func (m *API) ObserveLatency(endpoint string, seconds float64) {
	if m == nil {
		return
	}
	m.Latency.WithLabelValues(endpoint).Observe(seconds)
}

func (m *API) IncError(endpoint, kind string) {
	if m == nil {
		return
	}
	m.Errors.WithLabelValues(endpoint, kind).Inc()
}

func (m *API) IncCacheHit(endpoint string) {
	if m == nil {
		return
	}
	m.CacheHits.WithLabelValues(endpoint).Inc()
}

func (m *API) IncRateLimited() {
	if m == nil {
		return
	}
	m.RateLimits.Inc()
}
