// Package store keeps sliding-window request counters, in process or in
// Redis when several replicas share one limit.
package store

import (
	"context"
	"math"
	"sync"
	"time"

	"nyaya/internal/ratelimit/models"
	"nyaya/pkg/platform/clock"
)

// sweepEvery bounds how often idle windows are dropped from memory.
const sweepEvery = 1024

// InMemory implements a sliding window per key. It is not shared between
// processes.
type InMemory struct {
	mu      sync.Mutex
	now     clock.Clock
	windows map[string][]time.Time
	calls   int
}

func NewInMemory(now clock.Clock) *InMemory {
	if now == nil {
		now = clock.Real
	}
	return &InMemory{now: now, windows: make(map[string][]time.Time)}
}

// Allow records one request against key if it fits in the window.
func (s *InMemory) Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error) {
	return s.AllowN(ctx, key, 1, limit, window)
}

// AllowN records cost requests against key, or none when they do not all fit.
func (s *InMemory) AllowN(_ context.Context, key string, cost, limit int, window time.Duration) (*models.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.calls++
	if s.calls%sweepEvery == 0 {
		s.sweep(now, window)
	}

	stamps := prune(s.windows[key], now.Add(-window))
	if len(stamps)+cost > limit {
		s.windows[key] = stamps
		resetAt := now.Add(window)
		if len(stamps) > 0 {
			resetAt = stamps[0].Add(window)
		}
		return &models.Result{
			Allowed:    false,
			Limit:      limit,
			Remaining:  max(limit-len(stamps), 0),
			ResetAt:    resetAt,
			RetryAfter: retryAfter(resetAt.Sub(now)),
		}, nil
	}

	for range cost {
		stamps = append(stamps, now)
	}
	s.windows[key] = stamps
	return &models.Result{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - len(stamps),
		ResetAt:   stamps[0].Add(window),
	}, nil
}

// Reset clears the counter for key.
func (s *InMemory) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.windows, key)
	return nil
}

// sweep drops keys with no requests left in the window. Must hold s.mu.
func (s *InMemory) sweep(now time.Time, window time.Duration) {
	cutoff := now.Add(-window)
	for key, stamps := range s.windows {
		if len(prune(stamps, cutoff)) == 0 {
			delete(s.windows, key)
		}
	}
}

// prune removes timestamps at or before cutoff. stamps is sorted.
func prune(stamps []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for ; i < len(stamps); i++ {
		if stamps[i].After(cutoff) {
			break
		}
	}
	return stamps[i:]
}

func retryAfter(d time.Duration) int {
	return max(int(math.Ceil(d.Seconds())), 1)
}
