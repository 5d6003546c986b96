package providers

import (
	"time"

	"nena/internal/structures"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObservePersistenceDuration(duration time.Duration)
	SetUsersTotal(count int)
	IncRecordings(outcome string)
	ObserveTranscriptionDuration(route string, duration time.Duration)
	IncBadgeUnlocks(badge string)
	IncCoachingInsights(source string)
	SetCoachingQueueDepth(depth int)
}

type MetricsProvider struct {
	requestsTotal         *prometheus.CounterVec
	requestDuration       *prometheus.HistogramVec
	cacheHits             prometheus.Counter
	cacheMisses           prometheus.Counter
	persistenceDuration   prometheus.Histogram
	usersTotal            prometheus.Gauge
	recordings            *prometheus.CounterVec
	transcriptionDuration *prometheus.HistogramVec
	badgeUnlocks          *prometheus.CounterVec
	coachingInsights      *prometheus.CounterVec
	coachingQueueDepth    prometheus.Gauge
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) SetUsersTotal(count int) {
	m.usersTotal.Set(float64(count))
}

func (m *MetricsProvider) IncRecordings(outcome string) {
	m.recordings.WithLabelValues(outcome).Inc()
}

func (m *MetricsProvider) ObserveTranscriptionDuration(route string, duration time.Duration) {
	m.transcriptionDuration.WithLabelValues(route).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncBadgeUnlocks(badge string) {
	m.badgeUnlocks.WithLabelValues(badge).Inc()
}

func (m *MetricsProvider) IncCoachingInsights(source string) {
	m.coachingInsights.WithLabelValues(source).Inc()
}

func (m *MetricsProvider) SetCoachingQueueDepth(depth int) {
	m.coachingQueueDepth.Set(float64(depth))
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nena_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nena_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nena_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nena_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "nena_persistence_duration_seconds",
			Help:    "Duration of snapshot writes in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		usersTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "nena_users_total",
			Help: "Number of users with at least one recording",
		}),

		recordings: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nena_recordings_total",
			Help: "Processed recordings by outcome",
		}, []string{"outcome"}),

		transcriptionDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nena_transcription_duration_seconds",
			Help:    "Speech recognition latency by route",
			Buckets: []float64{.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"route"}),

		badgeUnlocks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nena_badge_unlocks_total",
			Help: "Badges awarded by badge name",
		}, []string{"badge"}),

		coachingInsights: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nena_coaching_insights_total",
			Help: "Coaching insights composed by source",
		}, []string{"source"}),

		coachingQueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "nena_coaching_queue_depth",
			Help: "Pending coaching refresh jobs",
		}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                       {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration)       {}
func (n *noopMetrics) IncCacheHits()                                          {}
func (n *noopMetrics) IncCacheMisses()                                        {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)             {}
func (n *noopMetrics) SetUsersTotal(_ int)                                    {}
func (n *noopMetrics) IncRecordings(_ string)                                 {}
func (n *noopMetrics) ObserveTranscriptionDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncBadgeUnlocks(_ string)                               {}
func (n *noopMetrics) IncCoachingInsights(_ string)                           {}
func (n *noopMetrics) SetCoachingQueueDepth(_ int)                            {}
