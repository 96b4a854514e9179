package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the deadline scheduler.
type Metrics struct {
	TickDuration   prometheus.Histogram
	PendingRecords prometheus.Gauge
	Actions        *prometheus.CounterVec
}

// New creates a new Metrics instance with all scheduler metrics registered.
func New() *Metrics {
	return &Metrics{
		TickDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "nyaya_deadline_tick_duration_seconds",
			Help:    "Duration of one scheduler pass over pending e-FIRs",
			Buckets: prometheus.DefBuckets,
		}),

		PendingRecords: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "nyaya_deadline_pending_records",
			Help: "e-FIRs awaiting signature at the last scheduler pass",
		}),

		Actions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nyaya_deadline_actions_total",
			Help: "Scheduler actions by kind and outcome",
		}, []string{"action", "outcome"}), // action: "expire", "notify"; outcome: "done", "skipped", "error"
	}
}

func (m *Metrics) ObserveTick(d time.Duration, pending int) {
	if m != nil {
		m.TickDuration.Observe(d.Seconds())
		m.PendingRecords.Set(float64(pending))
	}
}

func (m *Metrics) IncrementAction(action, outcome string) {
	if m != nil {
		m.Actions.WithLabelValues(action, outcome).Inc()
	}
}
