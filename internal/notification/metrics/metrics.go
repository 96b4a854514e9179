package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for informant notification delivery.
type Metrics struct {
	Deliveries      *prometheus.CounterVec
	DeliveryLatency prometheus.Histogram
	ClaimedBatch    prometheus.Histogram
}

// New creates a new Metrics instance with all notification metrics registered.
func New() *Metrics {
	return &Metrics{
		Deliveries: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nyaya_notification_deliveries_total",
			Help: "Notification delivery attempts by tier and outcome",
		}, []string{"tier", "outcome"}), // outcome: "delivered", "retry", "failed"

		DeliveryLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "nyaya_notification_delivery_duration_seconds",
			Help:    "Duration of a single dispatcher send including in-process retries",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),

		ClaimedBatch: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "nyaya_notification_outbox_claimed",
			Help:    "Outbox entries claimed per poll",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		}),
	}
}

func (m *Metrics) IncrementDelivery(tier, outcome string) {
	if m != nil {
		m.Deliveries.WithLabelValues(tier, outcome).Inc()
	}
}

func (m *Metrics) ObserveDeliveryLatency(d time.Duration) {
	if m != nil {
		m.DeliveryLatency.Observe(d.Seconds())
	}
}

func (m *Metrics) ObserveClaimed(n int) {
	if m != nil {
		m.ClaimedBatch.Observe(float64(n))
	}
}
