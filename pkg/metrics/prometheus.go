// Package metrics provides Prometheus metrics for the Level Up client.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Manager manages all Prometheus metrics for the client.
type Manager struct {
	namespace string
	subsystem string
	buckets   []float64
	registry  *prometheus.Registry

	// Gateway metrics - every remote call by endpoint and outcome.
	gatewayRequests        *prometheus.CounterVec
	gatewayRequestDuration *prometheus.HistogramVec
	gatewayErrors          *prometheus.CounterVec

	// Allocation form metrics.
	staleRostersDiscarded prometheus.Counter
	allocations           *prometheus.CounterVec

	// Auth metrics.
	logins *prometheus.CounterVec
}

var globalManager *Manager

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager()
}

// NewManager creates a metrics manager and registers all collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "levelup",
		subsystem: "client",
		buckets:   prometheus.DefBuckets,
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	m.gatewayRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "gateway_requests_total",
		Help:      "Total remote scoring-service requests by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})

	m.gatewayRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "gateway_request_duration_seconds",
		Help:      "Remote request latency by endpoint.",
		Buckets:   m.buckets,
	}, []string{"endpoint"})

	m.gatewayErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "gateway_errors_total",
		Help:      "Remote request failures by endpoint and error kind.",
	}, []string{"endpoint", "kind"})

	m.staleRostersDiscarded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stale_rosters_discarded_total",
		Help:      "Roster responses dropped because the team changed while in flight.",
	})

	m.allocations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "allocations_total",
		Help:      "Point allocation submissions by outcome.",
	}, []string{"outcome"})

	m.logins = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "logins_total",
		Help:      "Login attempts by outcome.",
	}, []string{"outcome"})

	m.registry.MustRegister(
		m.gatewayRequests,
		m.gatewayRequestDuration,
		m.gatewayErrors,
		m.staleRostersDiscarded,
		m.allocations,
		m.logins,
	)
}

// Package-level helpers delegating to the global manager.

// RecordGatewayRequest counts one remote call with its outcome ("ok" or an error kind).
func RecordGatewayRequest(endpoint, outcome string) {
	globalManager.gatewayRequests.WithLabelValues(endpoint, outcome).Inc()
}

// RecordGatewayDuration observes the latency of one remote call in seconds.
func RecordGatewayDuration(endpoint string, seconds float64) {
	globalManager.gatewayRequestDuration.WithLabelValues(endpoint).Observe(seconds)
}

// RecordGatewayError counts a failed remote call by error kind.
func RecordGatewayError(endpoint, kind string) {
	globalManager.gatewayErrors.WithLabelValues(endpoint, kind).Inc()
}

// RecordStaleRosterDiscarded counts a late roster response dropped by the form.
func RecordStaleRosterDiscarded() {
	globalManager.staleRostersDiscarded.Inc()
}

// RecordAllocation counts a submission outcome: "submitted", "failed" or "rejected_local".
func RecordAllocation(outcome string) {
	globalManager.allocations.WithLabelValues(outcome).Inc()
}

// RecordLogin counts a login attempt outcome: "success" or "failure".
func RecordLogin(outcome string) {
	globalManager.logins.WithLabelValues(outcome).Inc()
}

// GetRegistry returns the global registry, for exposition via promhttp.
func GetRegistry() *prometheus.Registry {
	return globalManager.registry
}
