package providers

import (
	"testing"
	"time"

	"nena/internal/structures"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withIsolatedRegistry(t *testing.T) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	prevReg, prevGather := prometheus.DefaultRegisterer, prometheus.DefaultGatherer
	prometheus.DefaultRegisterer = reg
	prometheus.DefaultGatherer = reg
	t.Cleanup(func() {
		prometheus.DefaultRegisterer = prevReg
		prometheus.DefaultGatherer = prevGather
	})
	return reg
}

func TestNoopMetrics_WhenDisabled(t *testing.T) {
	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: false},
	}
	m := NewMetricsProvider(conf)
	_, ok := m.(*noopMetrics)
	assert.True(t, ok, "should return noopMetrics when disabled")

	m.IncRequestsTotal("/test", 200)
	m.ObserveRequestDuration("/test", time.Millisecond)
	m.IncCacheHits()
	m.IncCacheMisses()
	m.ObservePersistenceDuration(time.Millisecond)
	m.SetUsersTotal(10)
	m.IncRecordings("analyzed")
	m.ObserveTranscriptionDuration("inline", time.Second)
	m.IncBadgeUnlocks("First Steps")
	m.IncCoachingInsights("fallback")
	m.SetCoachingQueueDepth(3)
}

func TestMetricsProvider_WhenEnabled(t *testing.T) {
	withIsolatedRegistry(t)

	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: true},
	}
	m := NewMetricsProvider(conf)
	_, ok := m.(*MetricsProvider)
	assert.True(t, ok, "should return MetricsProvider when enabled")
}

func TestMetricsProvider_DomainCounters(t *testing.T) {
	withIsolatedRegistry(t)

	m := NewMetricsProvider(&structures.Config{Metrics: structures.MetricsConfig{Enabled: true}}).(*MetricsProvider)

	m.IncRequestsTotal("/dashboard", 200)
	m.IncRequestsTotal("/dashboard", 404)
	m.IncRecordings("analyzed")
	m.IncRecordings("analyzed")
	m.IncRecordings("no_speech")
	m.IncBadgeUnlocks("First Steps")
	m.IncCoachingInsights("generated")
	m.SetUsersTotal(7)
	m.SetCoachingQueueDepth(2)
	m.ObserveTranscriptionDuration("inline", 2*time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("/dashboard", "4xx")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.recordings.WithLabelValues("analyzed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.recordings.WithLabelValues("no_speech")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.badgeUnlocks.WithLabelValues("First Steps")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.coachingInsights.WithLabelValues("generated")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.usersTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.coachingQueueDepth))
	require.Equal(t, 1, testutil.CollectAndCount(m.transcriptionDuration))
}

func TestHttpStatusBucket(t *testing.T) {
	tests := []struct {
		code     int
		expected string
	}{
		{100, "1xx"},
		{200, "2xx"},
		{201, "2xx"},
		{301, "3xx"},
		{400, "4xx"},
		{404, "4xx"},
		{422, "4xx"},
		{500, "5xx"},
		{503, "5xx"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, httpStatusBucket(tt.code))
	}
}
