package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"nyaya/internal/fir/models"
	notificationmodels "nyaya/internal/notification/models"
	"nyaya/pkg/platform/sentinel"
)

// Enqueuer accepts notification outbox entries. The in-memory notification
// outbox satisfies it.
type Enqueuer interface {
	Enqueue(ctx context.Context, n *notificationmodels.Notification) error
}

// InMemory keeps e-FIRs in process memory. Records are cloned on the way in
// and out so callers never share mutable state with the store.
type InMemory struct {
	mu         sync.RWMutex
	records    map[string]*models.ProvisionalFIR
	registered map[string]*models.RegisteredFIR
	sequences  map[string]int64
	outbox     Enqueuer
}

func NewInMemory(outbox Enqueuer) *InMemory {
	return &InMemory{
		records:    make(map[string]*models.ProvisionalFIR),
		registered: make(map[string]*models.RegisteredFIR),
		sequences:  make(map[string]int64),
		outbox:     outbox,
	}
}

func (s *InMemory) Create(_ context.Context, f *models.ProvisionalFIR) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[f.TempID]; ok {
		return sentinel.ErrConflict
	}
	c := f.Clone()
	c.Version = 1
	f.Version = 1
	s.records[f.TempID] = c
	return nil
}

func (s *InMemory) FindByID(_ context.Context, tempID string) (*models.ProvisionalFIR, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.records[tempID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return f.Clone(), nil
}

// Update replaces the stored record only if it still has the expected status
// and the caller's version. On success f.Version is advanced.
func (s *InMemory) Update(_ context.Context, f *models.ProvisionalFIR, expected models.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.records[f.TempID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if cur.Status != expected || cur.Version != f.Version {
		return sentinel.ErrConflict
	}
	f.Version++
	s.records[f.TempID] = f.Clone()
	return nil
}

// ListByStatus returns records in status ordered by expiry, earliest first.
func (s *InMemory) ListByStatus(_ context.Context, status models.Status, limit int) ([]*models.ProvisionalFIR, error) {
	return s.list(func(f *models.ProvisionalFIR) bool { return f.Status == status }, limit), nil
}

// ListAwaitingDeadline returns pending records the deadline scheduler still
// acts on. Physical-visit records whose window has lapsed are left out.
func (s *InMemory) ListAwaitingDeadline(_ context.Context, now time.Time, limit int) ([]*models.ProvisionalFIR, error) {
	return s.list(func(f *models.ProvisionalFIR) bool {
		return f.Status == models.StatusPendingSignature && !f.ExemptFromExpiry(now)
	}, limit), nil
}

func (s *InMemory) list(match func(*models.ProvisionalFIR) bool, limit int) []*models.ProvisionalFIR {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.ProvisionalFIR
	for _, f := range s.records {
		if match(f) {
			out = append(out, f.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ExpiryTime.Equal(out[j].ExpiryTime) {
			return out[i].TempID < out[j].TempID
		}
		return out[i].ExpiryTime.Before(out[j].ExpiryTime)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *InMemory) NextSequence(_ context.Context, series string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sequences[series]++
	return s.sequences[series], nil
}

func (s *InMemory) CreateRegistered(_ context.Context, r *models.RegisteredFIR) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.registered[r.TempID]; ok {
		return sentinel.ErrConflict
	}
	c := *r
	c.Sections = append([]models.Section(nil), r.Sections...)
	s.registered[r.TempID] = &c
	return nil
}

func (s *InMemory) FindRegistered(_ context.Context, tempID string) (*models.RegisteredFIR, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.registered[tempID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	c := *r
	c.Sections = append([]models.Section(nil), r.Sections...)
	return &c, nil
}

func (s *InMemory) EnqueueNotification(ctx context.Context, n *notificationmodels.Notification) error {
	if s.outbox == nil {
		return errors.New("no notification outbox configured")
	}
	return s.outbox.Enqueue(ctx, n)
}
