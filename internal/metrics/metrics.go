package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics covers the matching engine and its side effects. All methods are
// nil-safe so components can run without a registry in tests.
type Metrics struct {
	PassDuration    prometheus.Histogram
	PassOutcome     *prometheus.CounterVec
	CandidateWrites *prometheus.CounterVec
	SkippedPairs    prometheus.Counter
	Notifications   *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		PassDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "jeevan_matching_pass_duration_seconds",
			Help:    "Duration of a full matching pass including persistence",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),

		PassOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "jeevan_matching_passes_total",
			Help: "Matching pass executions by result",
		}, []string{"result"}), // result: "completed", "failed"

		CandidateWrites: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "jeevan_matching_candidate_writes_total",
			Help: "Candidate upsert outcomes",
		}, []string{"outcome"}), // outcome: "inserted", "updated", "unchanged"

		SkippedPairs: promauto.NewCounter(prometheus.CounterOpts{
			Name: "jeevan_matching_skipped_pairs_total",
			Help: "Pairs skipped during scoring because of invalid profile data",
		}),

		Notifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "jeevan_notifications_total",
			Help: "Notification delivery attempts by result",
		}, []string{"result"}), // result: "sent", "failed", "retried", "dropped"
	}
}

func (m *Metrics) ObservePassDuration(d time.Duration) {
	if m != nil {
		m.PassDuration.Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementPassOutcome(result string) {
	if m != nil {
		m.PassOutcome.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) IncrementCandidateWrite(outcome string) {
	if m != nil {
		m.CandidateWrites.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) AddSkippedPairs(n int) {
	if m != nil && n > 0 {
		m.SkippedPairs.Add(float64(n))
	}
}

func (m *Metrics) IncrementNotification(result string) {
	if m != nil {
		m.Notifications.WithLabelValues(result).Inc()
	}
}
