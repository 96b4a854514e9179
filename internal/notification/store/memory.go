package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"nyaya/internal/notification/models"
	"nyaya/pkg/platform/sentinel"
)

// InMemory is a process-local outbox used in development and tests.
type InMemory struct {
	mu       sync.Mutex
	byID     map[uuid.UUID]*models.Notification
	byDedupe map[string]uuid.UUID
	lease    time.Duration
}

// NewInMemory creates an empty outbox. Claimed entries stay invisible to other
// claimers for lease.
func NewInMemory(lease time.Duration) *InMemory {
	if lease <= 0 {
		lease = DefaultLease
	}
	return &InMemory{
		byID:     make(map[uuid.UUID]*models.Notification),
		byDedupe: make(map[string]uuid.UUID),
		lease:    lease,
	}
}

// Enqueue stores n. Returns sentinel.ErrAlreadyUsed when the dedupe key exists.
func (s *InMemory) Enqueue(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byDedupe[n.DedupeKey]; ok {
		return sentinel.ErrAlreadyUsed
	}
	c := *n
	s.byID[n.ID] = &c
	s.byDedupe[n.DedupeKey] = n.ID
	return nil
}

// ClaimDue returns pending entries whose next attempt is due, oldest first,
// and pushes their next attempt out by the lease.
func (s *InMemory) ClaimDue(_ context.Context, now time.Time, limit int) ([]*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []*models.Notification
	for _, n := range s.byID {
		if n.Status == models.OutboxPending && !n.NextAttemptAt.After(now) {
			due = append(due, n)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].CreatedAt.Before(due[j].CreatedAt) })
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	out := make([]*models.Notification, 0, len(due))
	for _, n := range due {
		n.NextAttemptAt = now.Add(s.lease)
		c := *n
		out = append(out, &c)
	}
	return out, nil
}

func (s *InMemory) MarkDelivered(_ context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.byID[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	n.Status = models.OutboxDelivered
	n.Attempts++
	n.DeliveredAt = &at
	n.LastError = ""
	return nil
}

func (s *InMemory) MarkRetry(_ context.Context, id uuid.UUID, nextAttempt time.Time, lastErr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.byID[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	n.Attempts++
	n.NextAttemptAt = nextAttempt
	n.LastError = lastErr
	return nil
}

func (s *InMemory) MarkFailed(_ context.Context, id uuid.UUID, lastErr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.byID[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	n.Attempts++
	n.Status = models.OutboxFailed
	n.LastError = lastErr
	return nil
}

// ListByRecord returns every outbox entry for recordID ordered by creation.
func (s *InMemory) ListByRecord(_ context.Context, recordID string) ([]*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Notification
	for _, n := range s.byID {
		if n.RecordID == recordID {
			c := *n
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
