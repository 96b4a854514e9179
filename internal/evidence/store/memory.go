package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"nyaya/internal/evidence/models"
	"nyaya/pkg/platform/sentinel"
)

type recordKey struct {
	caseID   string
	fileName string
}

type halt struct {
	reason string
	at     time.Time
}

// InMemory keeps evidence records and ledger anchors in process memory.
// Neither is ever updated or removed once written.
type InMemory struct {
	mu      sync.RWMutex
	records map[recordKey]models.EvidenceRecord
	byCase  map[string][]recordKey
	anchors map[string][]models.LedgerAnchor
	halts   map[string]halt
}

func NewInMemory() *InMemory {
	return &InMemory{
		records: make(map[recordKey]models.EvidenceRecord),
		byCase:  make(map[string][]recordKey),
		anchors: make(map[string][]models.LedgerAnchor),
		halts:   make(map[string]halt),
	}
}

func (s *InMemory) CreateRecord(_ context.Context, r *models.EvidenceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := recordKey{r.CaseID, r.FileName}
	if _, ok := s.records[key]; ok {
		return sentinel.ErrAlreadyUsed
	}
	s.records[key] = *r
	s.byCase[r.CaseID] = append(s.byCase[r.CaseID], key)
	return nil
}

func (s *InMemory) FindRecord(_ context.Context, caseID, fileName string) (*models.EvidenceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[recordKey{caseID, fileName}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &r, nil
}

// ListRecords returns a case's records in seal order.
func (s *InMemory) ListRecords(_ context.Context, caseID string) ([]*models.EvidenceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := s.byCase[caseID]
	out := make([]*models.EvidenceRecord, 0, len(keys))
	for _, k := range keys {
		r := s.records[k]
		out = append(out, &r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SealedAt.Before(out[j].SealedAt) })
	return out, nil
}

func (s *InMemory) LastAnchor(_ context.Context, caseID string) (*models.LedgerAnchor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chain := s.anchors[caseID]
	if len(chain) == 0 {
		return nil, sentinel.ErrNotFound
	}
	a := chain[len(chain)-1]
	return &a, nil
}

// AppendAnchor adds a to the end of its case chain. It fails with
// sentinel.ErrChainMismatch unless a directly extends the current head.
func (s *InMemory) AppendAnchor(_ context.Context, a *models.LedgerAnchor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	chain := s.anchors[a.CaseID]
	head, seq := models.GenesisDigest, int64(0)
	if n := len(chain); n > 0 {
		head, seq = chain[n-1].AnchorDigest, chain[n-1].Sequence
	}
	if a.PreviousAnchorDigest != head || a.Sequence != seq+1 {
		return sentinel.ErrChainMismatch
	}
	s.anchors[a.CaseID] = append(chain, *a)
	return nil
}

func (s *InMemory) ListAnchors(_ context.Context, caseID string) ([]*models.LedgerAnchor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chain := s.anchors[caseID]
	out := make([]*models.LedgerAnchor, 0, len(chain))
	for i := range chain {
		a := chain[i]
		out = append(out, &a)
	}
	return out, nil
}

// Halt marks a case as refusing new seals. An existing halt keeps its
// original reason.
func (s *InMemory) Halt(_ context.Context, caseID, reason string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.halts[caseID]; !ok {
		s.halts[caseID] = halt{reason: reason, at: at}
	}
	return nil
}

func (s *InMemory) HaltReason(_ context.Context, caseID string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.halts[caseID]
	return h.reason, ok, nil
}

func (s *InMemory) Resume(_ context.Context, caseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.halts[caseID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.halts, caseID)
	return nil
}
