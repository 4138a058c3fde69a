package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for the outbox worker.
type Metrics struct {
	PendingDepth    prometheus.Gauge
	PublishedTotal  prometheus.Counter
	PublishFailures prometheus.Counter
	PublishDuration prometheus.Histogram
	BatchSize       prometheus.Histogram
	PollDuration    prometheus.Histogram
	PrunedTotal     prometheus.Counter
}

// New registers outbox collectors on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		PendingDepth: f.NewGauge(prometheus.GaugeOpts{
			Name: "idregistry_outbox_pending_total",
			Help: "Current number of unpublished notifications",
		}),
		PublishedTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "idregistry_outbox_published_total",
			Help: "Total number of notifications published",
		}),
		PublishFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "idregistry_outbox_publish_failures_total",
			Help: "Total number of failed publish or fetch attempts",
		}),
		PublishDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "idregistry_outbox_publish_duration_seconds",
			Help:    "Time taken to publish one notification",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		BatchSize: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "idregistry_outbox_batch_size",
			Help:    "Number of entries fetched per poll",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}),
		PollDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "idregistry_outbox_poll_duration_seconds",
			Help:    "Time taken for each poll cycle",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		PrunedTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "idregistry_outbox_pruned_total",
			Help: "Total number of published notifications removed by retention",
		}),
	}
}

func (m *Metrics) SetPendingDepth(count int64)            { m.PendingDepth.Set(float64(count)) }
func (m *Metrics) IncPublished()                          { m.PublishedTotal.Inc() }
func (m *Metrics) IncPublishFailures()                    { m.PublishFailures.Inc() }
func (m *Metrics) ObservePublishDuration(seconds float64) { m.PublishDuration.Observe(seconds) }
func (m *Metrics) ObserveBatchSize(size int)              { m.BatchSize.Observe(float64(size)) }
func (m *Metrics) ObservePollDuration(seconds float64)    { m.PollDuration.Observe(seconds) }
func (m *Metrics) AddPruned(count int64)                  { m.PrunedTotal.Add(float64(count)) }
