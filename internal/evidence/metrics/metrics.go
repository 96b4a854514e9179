package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for evidence sealing and verification.
type Metrics struct {
	Seals           *prometheus.CounterVec
	Verifications   *prometheus.CounterVec
	LedgerConflicts prometheus.Counter
	HashDuration    *prometheus.HistogramVec
	HashedBytes     prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		Seals: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nyaya_evidence_seals_total",
			Help: "Evidence seal attempts by outcome",
		}, []string{"outcome"}),

		Verifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nyaya_evidence_verifications_total",
			Help: "Evidence verifications by admissibility result",
		}, []string{"admissibility"}),

		LedgerConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nyaya_evidence_ledger_conflicts_total",
			Help: "Anchors rejected because they did not extend the chain head",
		}),

		HashDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nyaya_evidence_hash_duration_seconds",
			Help:    "Time spent hashing evidence content, including pool wait",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"algorithm"}),

		HashedBytes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nyaya_evidence_hashed_bytes_total",
			Help: "Bytes of evidence content hashed",
		}),
	}
}

func (m *Metrics) IncrementSeal(outcome string) {
	if m != nil {
		m.Seals.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncrementVerification(admissibility string) {
	if m != nil {
		m.Verifications.WithLabelValues(admissibility).Inc()
	}
}

func (m *Metrics) IncrementLedgerConflict() {
	if m != nil {
		m.LedgerConflicts.Inc()
	}
}

func (m *Metrics) ObserveHash(algorithm string, seconds float64, bytes int64) {
	if m != nil {
		m.HashDuration.WithLabelValues(algorithm).Observe(seconds)
		m.HashedBytes.Add(float64(bytes))
	}
}
