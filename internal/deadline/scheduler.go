// Package deadline drives the 72-hour signature clock. Each pass recomputes
// remaining time from stored timestamps, so a restarted process resumes
// exactly where persisted state says it should.
package deadline

import (
	"context"
	"hash/fnv"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	"nyaya/internal/deadline/metrics"
	"nyaya/internal/fir/models"
	"nyaya/pkg/platform/clock"
	dErrors "nyaya/pkg/domain-errors"
)

// Lifecycle is the subset of the e-FIR service the scheduler drives.
type Lifecycle interface {
	ListDue(ctx context.Context, limit int) ([]*models.ProvisionalFIR, error)
	Expire(ctx context.Context, tempID string) error
	NotifyDeadline(ctx context.Context, tempID string) (models.AlertLevel, error)
}

const (
	defaultPollInterval = time.Minute
	defaultWorkers      = 8
	defaultBatchSize    = 1000
	defaultMaxRetries   = 3
)

// Report summarises one pass.
type Report struct {
	Scanned int
	Expired int
	Alerted int
	Failed  int
}

// Scheduler polls pending records and asks the lifecycle service to expire
// them or queue deadline alerts. Records are partitioned across workers by
// FNV-1a of the record ID so one record is never handled twice in a pass.
type Scheduler struct {
	lifecycle Lifecycle
	clock     clock.Clock
	logger    *slog.Logger
	metrics   *metrics.Metrics

	pollInterval time.Duration
	workers      int
	batchSize    int
	maxRetries   uint64
	newBackOff   func() backoff.BackOff

	trigger chan struct{}
}

type Option func(*Scheduler)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scheduler) { s.metrics = m }
}

func WithClock(c clock.Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

func WithPollInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

func WithWorkers(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.workers = n
		}
	}
}

func WithBatchSize(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

func WithMaxRetries(n uint64) Option {
	return func(s *Scheduler) { s.maxRetries = n }
}

// WithBackOff overrides the retry policy for transient failures.
func WithBackOff(fn func() backoff.BackOff) Option {
	return func(s *Scheduler) { s.newBackOff = fn }
}

func New(lifecycle Lifecycle, opts ...Option) *Scheduler {
	s := &Scheduler{
		lifecycle:    lifecycle,
		clock:        clock.Real,
		logger:       slog.Default(),
		pollInterval: defaultPollInterval,
		workers:      defaultWorkers,
		batchSize:    defaultBatchSize,
		maxRetries:   defaultMaxRetries,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 100 * time.Millisecond
			b.MaxInterval = 2 * time.Second
			return b
		},
		trigger: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run ticks until ctx is cancelled. Trigger forces an early pass.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()
	for {
		if _, err := s.Tick(ctx); err != nil && ctx.Err() == nil {
			s.logger.WarnContext(ctx, "deadline pass failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case <-s.trigger:
		}
	}
}

// Trigger requests a pass without waiting for the next tick.
func (s *Scheduler) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Tick runs one pass over pending records. Per-record failures are logged
// and counted; the next pass retries them.
func (s *Scheduler) Tick(ctx context.Context) (Report, error) {
	start := time.Now()
	pending, err := s.lifecycle.ListDue(ctx, s.batchSize)
	if err != nil {
		return Report{}, err
	}

	partitions := make([][]*models.ProvisionalFIR, s.workers)
	for _, f := range pending {
		p := Partition(f.TempID, s.workers)
		partitions[p] = append(partitions[p], f)
	}

	reports := make([]Report, s.workers)
	g, gctx := errgroup.WithContext(ctx)
	for i := range partitions {
		if len(partitions[i]) == 0 {
			continue
		}
		g.Go(func() error {
			for _, f := range partitions[i] {
				if err := gctx.Err(); err != nil {
					return err
				}
				s.process(gctx, f, &reports[i])
			}
			return nil
		})
	}
	err = g.Wait()

	total := Report{}
	for _, r := range reports {
		total.Scanned += r.Scanned
		total.Expired += r.Expired
		total.Alerted += r.Alerted
		total.Failed += r.Failed
	}
	s.metrics.ObserveTick(time.Since(start), len(pending))
	if total.Expired > 0 || total.Alerted > 0 || total.Failed > 0 {
		s.logger.InfoContext(ctx, "deadline pass complete",
			"scanned", total.Scanned,
			"expired", total.Expired,
			"alerted", total.Alerted,
			"failed", total.Failed,
		)
	}
	return total, err
}

func (s *Scheduler) process(ctx context.Context, f *models.ProvisionalFIR, r *Report) {
	r.Scanned++
	log := s.logger.With("record_id", f.TempID)

	now := s.clock()
	if f.ExemptFromExpiry(now) {
		s.metrics.IncrementAction("expire", "exempt")
		return
	}
	if f.AlertLevel(now) == models.AlertExpired {
		err := s.retry(ctx, func() error { return s.lifecycle.Expire(ctx, f.TempID) })
		switch {
		case err == nil:
			r.Expired++
			s.metrics.IncrementAction("expire", "done")
		case dErrors.HasCode(err, dErrors.CodeNotYetDue),
			dErrors.HasCode(err, dErrors.CodeInvalidTransition),
			dErrors.HasCode(err, dErrors.CodeExpiryExempt):
			s.metrics.IncrementAction("expire", "skipped")
		default:
			r.Failed++
			s.metrics.IncrementAction("expire", "error")
			log.ErrorContext(ctx, "failed to expire e-FIR", "error", err)
		}
		return
	}

	var tier models.AlertLevel
	err := s.retry(ctx, func() error {
		var err error
		tier, err = s.lifecycle.NotifyDeadline(ctx, f.TempID)
		return err
	})
	switch {
	case err != nil:
		r.Failed++
		s.metrics.IncrementAction("notify", "error")
		log.ErrorContext(ctx, "failed to queue deadline alert", "error", err)
	case tier != "":
		r.Alerted++
		s.metrics.IncrementAction("notify", "done")
	}
}

// retry repeats op with backoff while it fails with a retryable code.
func (s *Scheduler) retry(ctx context.Context, op func() error) error {
	wrapped := func() error {
		err := op()
		if err != nil && !dErrors.IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(s.newBackOff(), s.maxRetries), ctx)
	return backoff.Retry(wrapped, policy)
}

// Partition maps a record ID onto one of n workers using FNV-1a.
func Partition(tempID string, n int) int {
	if n <= 1 {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(tempID))
	return int(h.Sum32() % uint32(n))
}
