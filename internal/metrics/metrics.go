package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for shiftdesk.
// A nil *MetricsRegistry is valid; the helper methods become no-ops.
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec
	RateLimitedTotal     *prometheus.CounterVec

	// Cache Metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Business Metrics
	ShiftTransitionsTotal   *prometheus.CounterVec
	CommitmentOutcomesTotal *prometheus.CounterVec
	OverlapChecksTotal      *prometheus.CounterVec
	NotificationsTotal      *prometheus.CounterVec

	// Notification queue
	NotificationQueueLength  prometheus.Gauge
	NotificationQueuePending prometheus.Gauge
}

// NewMetricsRegistry registers every metric on reg. Pass
// prometheus.DefaultRegisterer in the server and a fresh
// prometheus.NewRegistry() in tests.
func NewMetricsRegistry(reg prometheus.Registerer) *MetricsRegistry {
	factory := promauto.With(reg)

	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shiftdesk_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shiftdesk_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "shiftdesk_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),
		RateLimitedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shiftdesk_rate_limited_requests_total",
				Help: "Requests rejected by the rate limiter",
			},
			[]string{"endpoint"},
		),

		// Cache Metrics
		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shiftdesk_cache_hits_total",
				Help: "Total cache hits by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),
		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shiftdesk_cache_misses_total",
				Help: "Total cache misses by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),

		// Business Metrics
		ShiftTransitionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shiftdesk_shift_transitions_total",
				Help: "Shift lifecycle transitions by target state",
			},
			[]string{"transition"},
		),
		CommitmentOutcomesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shiftdesk_commitment_outcomes_total",
				Help: "Commitment operations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		OverlapChecksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shiftdesk_overlap_checks_total",
				Help: "Overlap detector results (overlap, clear, degraded)",
			},
			[]string{"result"},
		),
		NotificationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shiftdesk_notifications_total",
				Help: "New-shift notifications by result (queued, logged, failed, skipped)",
			},
			[]string{"result"},
		),

		NotificationQueueLength: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "shiftdesk_notification_queue_length",
				Help: "Entries in the published-shift notification stream",
			},
		),
		NotificationQueuePending: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "shiftdesk_notification_queue_pending",
				Help: "Stream entries delivered to the mailer group but not acknowledged",
			},
		),
	}
}

func (m *MetricsRegistry) ShiftTransition(transition string) {
	if m == nil {
		return
	}
	m.ShiftTransitionsTotal.WithLabelValues(transition).Inc()
}

func (m *MetricsRegistry) CommitmentOutcome(operation, outcome string) {
	if m == nil {
		return
	}
	m.CommitmentOutcomesTotal.WithLabelValues(operation, outcome).Inc()
}

func (m *MetricsRegistry) OverlapCheck(result string) {
	if m == nil {
		return
	}
	m.OverlapChecksTotal.WithLabelValues(result).Inc()
}

func (m *MetricsRegistry) Notification(result string) {
	if m == nil {
		return
	}
	m.NotificationsTotal.WithLabelValues(result).Inc()
}

func (m *MetricsRegistry) RateLimited(endpoint string) {
	if m == nil {
		return
	}
	m.RateLimitedTotal.WithLabelValues(endpoint).Inc()
}

func (m *MetricsRegistry) CacheHit(pattern string) {
	if m == nil {
		return
	}
	m.CacheHitsTotal.WithLabelValues(pattern).Inc()
}

func (m *MetricsRegistry) CacheMiss(pattern string) {
	if m == nil {
		return
	}
	m.CacheMissesTotal.WithLabelValues(pattern).Inc()
}

func (m *MetricsRegistry) SetNotificationQueue(length, pending int64) {
	if m == nil {
		return
	}
	m.NotificationQueueLength.Set(float64(length))
	m.NotificationQueuePending.Set(float64(pending))
}
