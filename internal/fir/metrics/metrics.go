package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the e-FIR lifecycle.
type Metrics struct {
	Transitions     *prometheus.CounterVec
	Rejections      *prometheus.CounterVec
	AlertsQueued    *prometheus.CounterVec
	SignatureMargin prometheus.Histogram
}

// New creates a new Metrics instance with all lifecycle metrics registered.
func New() *Metrics {
	return &Metrics{
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nyaya_fir_transitions_total",
			Help: "Committed e-FIR status transitions by target status",
		}, []string{"status"}),

		Rejections: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nyaya_fir_rejections_total",
			Help: "Lifecycle operations refused, by operation and error code",
		}, []string{"operation", "code"}),

		AlertsQueued: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nyaya_fir_alerts_queued_total",
			Help: "Deadline alerts written to the notification outbox by tier",
		}, []string{"tier"}),

		SignatureMargin: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "nyaya_fir_signature_margin_hours",
			Help:    "Hours left on the 72h window when the informant signed",
			Buckets: []float64{1, 6, 12, 24, 36, 48, 60, 72},
		}),
	}
}

func (m *Metrics) IncrementTransition(status string) {
	if m != nil {
		m.Transitions.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) IncrementRejection(operation, code string) {
	if m != nil {
		m.Rejections.WithLabelValues(operation, code).Inc()
	}
}

func (m *Metrics) IncrementAlertQueued(tier string) {
	if m != nil {
		m.AlertsQueued.WithLabelValues(tier).Inc()
	}
}

func (m *Metrics) ObserveSignatureMargin(hours float64) {
	if m != nil {
		m.SignatureMargin.Observe(hours)
	}
}
