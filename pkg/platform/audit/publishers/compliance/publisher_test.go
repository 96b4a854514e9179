package compliance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "nyaya/pkg/platform/audit"
	"nyaya/pkg/platform/audit/store/memory"
	"nyaya/pkg/requestcontext"
)

type failingStore struct{}

func (failingStore) Append(context.Context, audit.Event) error { return errors.New("disk full") }
func (failingStore) ListBySubject(context.Context, string) ([]audit.Event, error) {
	return nil, nil
}

func TestEmit(t *testing.T) {
	fixed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("fills request context and timestamp", func(t *testing.T) {
		store := memory.NewInMemoryStore()
		p := New(store, WithClock(func() time.Time { return fixed }))
		ctx := requestcontext.WithActorID(requestcontext.WithRequestID(context.Background(), "req-1"), "SHO-1")

		require.NoError(t, p.Emit(ctx, audit.ComplianceEvent{
			Subject:  "EFIR-1",
			Action:   audit.EventFIRSigned,
			Decision: "SIGNED",
		}))

		events, err := store.ListBySubject(ctx, "EFIR-1")
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, audit.CategoryCompliance, events[0].Category)
		assert.Equal(t, "req-1", events[0].RequestID)
		assert.Equal(t, "SHO-1", events[0].ActorID)
		assert.Equal(t, fixed, events[0].Timestamp)
	})

	t.Run("store failure fails closed", func(t *testing.T) {
		p := New(failingStore{})
		err := p.Emit(context.Background(), audit.ComplianceEvent{Subject: "EFIR-1", Action: audit.EventFIRQuashed})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
	})

	t.Run("requires subject and action", func(t *testing.T) {
		p := New(memory.NewInMemoryStore())
		assert.Error(t, p.Emit(context.Background(), audit.ComplianceEvent{Action: audit.EventFIRQuashed}))
		assert.Error(t, p.Emit(context.Background(), audit.ComplianceEvent{Subject: "EFIR-1"}))
	})
}
