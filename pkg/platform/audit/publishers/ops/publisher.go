// Package ops records operational audit events such as notification delivery
// outcomes. Writes are best effort: sampled, bounded by a short timeout, and
// skipped entirely while the audit store keeps failing.
package ops

import (
	"context"
	"log/slog"
	"time"

	audit "nyaya/pkg/platform/audit"
	"nyaya/pkg/platform/clock"
)

const defaultWriteTimeout = 2 * time.Second

type Publisher struct {
	store   audit.Store
	sampler *Sampler
	breaker *CircuitBreaker
	metrics *Metrics
	logger  *slog.Logger
	clock   clock.Clock
	timeout time.Duration
}

type Option func(*Publisher)

func WithSampler(s *Sampler) Option {
	return func(p *Publisher) {
		if s != nil {
			p.sampler = s
		}
	}
}

func WithCircuitBreaker(cb *CircuitBreaker) Option {
	return func(p *Publisher) {
		if cb != nil {
			p.breaker = cb
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) { p.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) { p.logger = logger }
}

func WithClock(c clock.Clock) Option {
	return func(p *Publisher) { p.clock = c }
}

func New(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:   store,
		sampler: NewSampler(1),
		logger:  slog.Default(),
		clock:   clock.Real,
		timeout: defaultWriteTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.breaker == nil {
		p.breaker = NewCircuitBreaker(5, time.Minute, p.clock)
	}
	return p
}

// Track persists event unless it is sampled out or the circuit is open.
// It never fails the caller.
func (p *Publisher) Track(ctx context.Context, event audit.Event) {
	if p == nil || p.store == nil {
		return
	}
	if !p.sampler.ShouldSample(event.Action) {
		p.metrics.IncSampled()
		return
	}
	if !p.breaker.Allow() {
		p.metrics.IncBreakerDropped()
		return
	}

	event.Category = audit.CategoryOperations
	if event.Timestamp.IsZero() {
		event.Timestamp = p.clock()
	}
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()
	if err := p.store.Append(writeCtx, event); err != nil {
		p.breaker.RecordFailure()
		p.metrics.IncPersistFailures()
		p.metrics.SetCircuitBreakerState(p.breaker.IsOpen())
		p.logger.DebugContext(ctx, "ops audit write failed", "action", event.Action, "error", err)
		return
	}
	p.breaker.RecordSuccess()
	p.metrics.IncTracked()
	p.metrics.SetCircuitBreakerState(false)
}
