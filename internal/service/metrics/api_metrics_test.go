package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestAPI_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAPI(reg)

	m.IncError("correlation", "insufficient_data")
	m.IncError("correlation", "insufficient_data")
	m.IncCacheHit("returns")
	m.IncRateLimited()
	m.ObserveLatency("returns", 0.01)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Errors.WithLabelValues("correlation", "insufficient_data")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHits.WithLabelValues("returns")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimits))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Latency))
}

func TestAPI_NilSafe(t *testing.T) {
	var m *API
	assert.NotPanics(t, func() {
		m.IncError("x", "y")
		m.IncCacheHit("x")
		m.IncRateLimited()
		m.ObserveLatency("x", 1)
	})
}
