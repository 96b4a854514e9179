package publisher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "nyaya/pkg/platform/audit"
	"nyaya/pkg/platform/audit/store/memory"
)

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	event := audit.Event{
		Subject: "CASE-1",
		Action:  string(audit.EventEvidenceVerified),
	}

	err := pub.Emit(context.Background(), event)
	require.NoError(t, err)

	events, err := pub.List(context.Background(), "CASE-1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventEvidenceVerified), events[0].Action)
	assert.Equal(t, audit.CategoryIntegrity, events[0].Category)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	for range 10 {
		err := pub.Emit(context.Background(), audit.Event{
			Subject: "CASE-2",
			Action:  string(audit.EventEvidenceVerified),
		})
		require.NoError(t, err)
	}

	// Close should drain all events
	require.NoError(t, pub.Close())

	events, err := store.ListBySubject(context.Background(), "CASE-2")
	require.NoError(t, err)
	assert.Len(t, events, 10, "all events should be drained on close")

	t.Run("emit after close falls back to sync write", func(t *testing.T) {
		require.NoError(t, pub.Emit(context.Background(), audit.Event{Subject: "CASE-2", Action: "late"}))
		events, err := store.ListBySubject(context.Background(), "CASE-2")
		require.NoError(t, err)
		assert.Len(t, events, 11)
	})
}

func TestPublisher_BufferFull_DoesNotBlock(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(1))
	defer pub.Close()

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := pub.Emit(context.Background(), audit.Event{Subject: "CASE-3", Action: "x"})
			if err != nil {
				assert.ErrorIs(t, err, ErrBufferFull)
			}
		}()
	}
	wg.Wait()
}

func TestPublisher_Timestamps(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)

	before := time.Now()
	require.NoError(t, pub.Emit(context.Background(), audit.Event{Subject: "EFIR-1", Action: "a"}))
	after := time.Now()

	custom := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, pub.Emit(context.Background(), audit.Event{Subject: "EFIR-1", Action: "b", Timestamp: custom}))

	events, err := pub.List(context.Background(), "EFIR-1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.False(t, events[0].Timestamp.Before(before))
	assert.False(t, events[0].Timestamp.After(after))
	assert.Equal(t, custom, events[1].Timestamp)
}
