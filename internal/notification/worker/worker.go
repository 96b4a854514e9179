// Package worker drains the notification outbox into a Dispatcher.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"nyaya/internal/notification/dispatch"
	"nyaya/internal/notification/metrics"
	"nyaya/internal/notification/models"
	audit "nyaya/pkg/platform/audit"
	"nyaya/pkg/platform/circuit"
	"nyaya/pkg/platform/clock"
)

// Outbox is the persistence side of delivery.
type Outbox interface {
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]*models.Notification, error)
	MarkDelivered(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkRetry(ctx context.Context, id uuid.UUID, nextAttempt time.Time, lastErr string) error
	MarkFailed(ctx context.Context, id uuid.UUID, lastErr string) error
}

// OpsTracker records delivery outcomes on a best-effort basis.
type OpsTracker interface {
	Track(ctx context.Context, event audit.Event)
}

const (
	defaultPollInterval = time.Second
	defaultBatchSize    = 50
	defaultMaxAttempts  = 10
	defaultSendRetries  = 3
)

// Worker polls the outbox and delivers due entries. Transient failures are
// retried in-process with exponential backoff, then handed back to the outbox
// with a later next-attempt time. After MaxAttempts the entry is marked FAILED.
type Worker struct {
	outbox     Outbox
	dispatcher dispatch.Dispatcher
	clock      clock.Clock
	logger     *slog.Logger
	metrics    *metrics.Metrics
	breaker    *circuit.Breaker
	ops        OpsTracker

	pollInterval time.Duration
	batchSize    int
	maxAttempts  int
	sendRetries  uint64
	newBackOff   func() backoff.BackOff
}

type Option func(*Worker)

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) { w.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Worker) { w.metrics = m }
}

func WithClock(c clock.Clock) Option {
	return func(w *Worker) { w.clock = c }
}

func WithPollInterval(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.pollInterval = d
		}
	}
}

func WithBatchSize(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

func WithMaxAttempts(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.maxAttempts = n
		}
	}
}

func WithOpsTracker(t OpsTracker) Option {
	return func(w *Worker) { w.ops = t }
}

// WithBackOff overrides the in-process retry policy. Tests use a zero backoff.
func WithBackOff(fn func() backoff.BackOff) Option {
	return func(w *Worker) { w.newBackOff = fn }
}

func New(outbox Outbox, dispatcher dispatch.Dispatcher, opts ...Option) *Worker {
	w := &Worker{
		outbox:       outbox,
		dispatcher:   dispatcher,
		clock:        clock.Real,
		logger:       slog.Default(),
		pollInterval: defaultPollInterval,
		batchSize:    defaultBatchSize,
		maxAttempts:  defaultMaxAttempts,
		sendRetries:  defaultSendRetries,
		breaker:      circuit.New("notification-dispatch"),
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 200 * time.Millisecond
			b.MaxElapsedTime = 5 * time.Second
			return b
		},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	for {
		if _, err := w.DrainOnce(ctx); err != nil && ctx.Err() == nil {
			w.logger.WarnContext(ctx, "outbox drain failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// WithBreaker overrides the dispatcher circuit breaker.
func WithBreaker(b *circuit.Breaker) Option {
	return func(w *Worker) {
		if b != nil {
			w.breaker = b
		}
	}
}

// DrainOnce claims one batch and attempts each entry. Returns how many were
// delivered. While the dispatcher circuit is open only a single entry is
// claimed as a probe.
func (w *Worker) DrainOnce(ctx context.Context) (int, error) {
	limit := w.batchSize
	if w.breaker.IsOpen() {
		limit = 1
	}
	batch, err := w.outbox.ClaimDue(ctx, w.clock(), limit)
	if err != nil {
		return 0, err
	}
	w.metrics.ObserveClaimed(len(batch))

	delivered := 0
	for _, n := range batch {
		if ctx.Err() != nil {
			return delivered, ctx.Err()
		}
		if w.deliver(ctx, n) {
			delivered++
		}
	}
	return delivered, nil
}

func (w *Worker) deliver(ctx context.Context, n *models.Notification) bool {
	start := time.Now()
	op := func() error {
		err := w.dispatcher.Send(ctx, n.Channel, n.Recipient, n.Payload, n.DedupeKey)
		if err != nil && dispatch.IsFatal(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(w.newBackOff(), w.sendRetries), ctx)
	err := backoff.Retry(op, policy)
	w.metrics.ObserveDeliveryLatency(time.Since(start))

	now := w.clock()
	log := w.logger.With("notification_id", n.ID, "record_id", n.RecordID, "tier", n.Tier)

	w.recordOutcome(ctx, err)

	if err == nil {
		if merr := w.outbox.MarkDelivered(ctx, n.ID, now); merr != nil {
			log.ErrorContext(ctx, "failed to mark notification delivered", "error", merr)
		}
		w.metrics.IncrementDelivery(n.Tier, "delivered")
		w.track(ctx, n, audit.EventNotificationDelivered, "")
		log.InfoContext(ctx, "notification delivered")
		return true
	}

	if dispatch.IsFatal(err) || n.Attempts+1 >= w.maxAttempts {
		if merr := w.outbox.MarkFailed(ctx, n.ID, err.Error()); merr != nil {
			log.ErrorContext(ctx, "failed to mark notification failed", "error", merr)
		}
		w.metrics.IncrementDelivery(n.Tier, "failed")
		w.track(ctx, n, audit.EventNotificationFailed, err.Error())
		log.ErrorContext(ctx, "notification delivery abandoned", "error", err, "attempts", n.Attempts+1)
		return false
	}

	next := now.Add(retryDelay(n.Attempts + 1))
	if merr := w.outbox.MarkRetry(ctx, n.ID, next, err.Error()); merr != nil {
		log.ErrorContext(ctx, "failed to reschedule notification", "error", merr)
	}
	w.metrics.IncrementDelivery(n.Tier, "retry")
	w.track(ctx, n, audit.EventNotificationDeferred, err.Error())
	log.WarnContext(ctx, "notification delivery deferred", "error", err, "next_attempt_at", next)
	return false
}

func (w *Worker) recordOutcome(ctx context.Context, err error) {
	if err == nil {
		if _, change := w.breaker.RecordSuccess(); change.Closed {
			w.logger.InfoContext(ctx, "notification dispatcher recovered", "breaker", w.breaker.Name())
		}
		return
	}
	if dispatch.IsFatal(err) {
		return
	}
	if _, change := w.breaker.RecordFailure(); change.Opened {
		w.logger.WarnContext(ctx, "notification dispatcher circuit opened", "breaker", w.breaker.Name(), "error", err)
	}
}

func (w *Worker) track(ctx context.Context, n *models.Notification, action audit.AuditEvent, reason string) {
	if w.ops == nil {
		return
	}
	w.ops.Track(ctx, audit.Event{
		Subject:  n.RecordID,
		Action:   string(action),
		Decision: string(n.Tier),
		Reason:   reason,
		ActorID:  "notification-worker",
	})
}

// retryDelay grows with the attempt count and caps at ten minutes.
func retryDelay(attempt int) time.Duration {
	d := 5 * time.Second
	for i := 1; i < attempt && d < 10*time.Minute; i++ {
		d *= 2
	}
	if d > 10*time.Minute {
		d = 10 * time.Minute
	}
	return d
}
