package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for registry operations.
type Metrics struct {
	Registrations    prometheus.Counter
	Verifications    prometheus.Counter
	VerifierChanges  *prometheus.CounterVec
	OperationErrors  *prometheus.CounterVec
	OperationLatency *prometheus.HistogramVec
	CacheLookups     *prometheus.CounterVec
	TxLockWait       prometheus.Histogram
}

// New registers registry collectors on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Registrations: f.NewCounter(prometheus.CounterOpts{
			Name: "idregistry_registrations_total",
			Help: "Total number of identity records registered",
		}),
		Verifications: f.NewCounter(prometheus.CounterOpts{
			Name: "idregistry_verifications_total",
			Help: "Total number of identity records verified",
		}),
		VerifierChanges: f.NewCounterVec(prometheus.CounterOpts{
			Name: "idregistry_verifier_changes_total",
			Help: "Verifier role grants and revocations, labeled by action",
		}, []string{"action"}),
		OperationErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "idregistry_operation_errors_total",
			Help: "Rejected or failed operations, labeled by operation and error code",
		}, []string{"operation", "code"}),
		OperationLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "idregistry_operation_latency_seconds",
			Help:    "Latency of registry operations in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"operation"}),
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "idregistry_summary_cache_lookups_total",
			Help: "Verified-summary cache lookups, labeled by result (hit, miss, bypass, error)",
		}, []string{"result"}),
		TxLockWait: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "idregistry_memory_tx_lock_wait_seconds",
			Help:    "Time spent waiting for the in-memory registry lock",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
	}
}

func (m *Metrics) IncRegistrations() {
	m.Registrations.Inc()
}

func (m *Metrics) IncVerifications() {
	m.Verifications.Inc()
}

// IncVerifierChange records a grant ("authorized") or removal ("revoked").
func (m *Metrics) IncVerifierChange(action string) {
	m.VerifierChanges.WithLabelValues(action).Inc()
}

func (m *Metrics) IncOperationError(operation, code string) {
	m.OperationErrors.WithLabelValues(operation, code).Inc()
}

func (m *Metrics) ObserveOperationLatency(operation string, seconds float64) {
	m.OperationLatency.WithLabelValues(operation).Observe(seconds)
}

func (m *Metrics) IncCacheLookup(result string) {
	m.CacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveTxLockWait(seconds float64) {
	m.TxLockWait.Observe(seconds)
}
