package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"nyaya/internal/notification/dispatch"
	"nyaya/internal/notification/dispatch/mocks"
	"nyaya/internal/notification/models"
	"nyaya/internal/notification/store"
	audit "nyaya/pkg/platform/audit"
	"nyaya/pkg/platform/audit/publishers/ops"
	auditmemory "nyaya/pkg/platform/audit/store/memory"
	"nyaya/pkg/platform/circuit"
	"nyaya/pkg/platform/clock"
)

// =============================================================================
// Outbox Worker Test Suite
// =============================================================================
// Justification for unit tests: delivery classification (delivered, retry,
// failed) decides whether a legally significant alert is ever sent again.

type WorkerSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	dispatcher *mocks.MockDispatcher
	outbox     *store.InMemory
	clock      *clock.Fake
	worker     *Worker
	ctx        context.Context
}

func TestWorkerSuite(t *testing.T) {
	suite.Run(t, new(WorkerSuite))
}

func (s *WorkerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.dispatcher = mocks.NewMockDispatcher(s.ctrl)
	s.outbox = store.NewInMemory(time.Minute)
	s.clock = clock.NewFake(time.Date(2025, 1, 3, 12, 0, 0, 0, time.UTC))
	s.ctx = context.Background()
	s.worker = New(s.outbox, s.dispatcher,
		WithClock(s.clock.Clock()),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithMaxAttempts(3),
		WithBackOff(func() backoff.BackOff { return &backoff.ZeroBackOff{} }),
	)
}

func (s *WorkerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *WorkerSuite) enqueue(recordID, tier string) *models.Notification {
	n, err := models.NewAlert(recordID, tier, models.ChannelSMS, "+919800000001",
		models.AlertPayload{RecordID: recordID, Tier: tier}, s.clock.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.outbox.Enqueue(s.ctx, n))
	return n
}

func (s *WorkerSuite) status(recordID string) *models.Notification {
	list, err := s.outbox.ListByRecord(s.ctx, recordID)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	return list[0]
}

func (s *WorkerSuite) TestDelivers() {
	s.enqueue("EFIR-1", "CRITICAL")
	s.dispatcher.EXPECT().
		Send(gomock.Any(), models.ChannelSMS, "+919800000001", gomock.Any(), "EFIR-1:CRITICAL").
		Return(nil)

	delivered, err := s.worker.DrainOnce(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, delivered)
	s.Equal(models.OutboxDelivered, s.status("EFIR-1").Status)

	s.Run("delivered entry is not sent again", func() {
		s.clock.Advance(time.Hour)
		delivered, err := s.worker.DrainOnce(s.ctx)
		s.Require().NoError(err)
		s.Zero(delivered)
	})
}

func (s *WorkerSuite) TestRetryableFailureIsRescheduled() {
	s.enqueue("EFIR-2", "WARNING")
	s.dispatcher.EXPECT().
		Send(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), "EFIR-2:WARNING").
		Return(dispatch.Retryable(errors.New("gateway timeout"))).
		Times(int(defaultSendRetries) + 1)

	delivered, err := s.worker.DrainOnce(s.ctx)
	s.Require().NoError(err)
	s.Zero(delivered)

	n := s.status("EFIR-2")
	s.Equal(models.OutboxPending, n.Status)
	s.Equal(1, n.Attempts)
	s.Contains(n.LastError, "gateway timeout")
	s.True(n.NextAttemptAt.After(s.clock.Now()))
}

func (s *WorkerSuite) TestFatalFailureStopsImmediately() {
	s.enqueue("EFIR-3", "EXPIRED")
	s.dispatcher.EXPECT().
		Send(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), "EFIR-3:EXPIRED").
		Return(dispatch.Fatal(errors.New("number unreachable"))).
		Times(1)

	_, err := s.worker.DrainOnce(s.ctx)
	s.Require().NoError(err)
	s.Equal(models.OutboxFailed, s.status("EFIR-3").Status)
}

func (s *WorkerSuite) TestGivesUpAfterMaxAttempts() {
	s.enqueue("EFIR-4", "CRITICAL")
	s.dispatcher.EXPECT().
		Send(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(dispatch.Retryable(errors.New("broker down"))).
		AnyTimes()

	for i := 0; i < 3; i++ {
		_, err := s.worker.DrainOnce(s.ctx)
		s.Require().NoError(err)
		s.clock.Advance(time.Hour)
	}
	n := s.status("EFIR-4")
	s.Equal(models.OutboxFailed, n.Status)
	s.Equal(3, n.Attempts)
}

func TestRetryDelayCaps(t *testing.T) {
	if got := retryDelay(1); got != 5*time.Second {
		t.Fatalf("first delay = %s", got)
	}
	if got := retryDelay(2); got != 10*time.Second {
		t.Fatalf("second delay = %s", got)
	}
	if got := retryDelay(50); got != 10*time.Minute {
		t.Fatalf("capped delay = %s", got)
	}
}

func (s *WorkerSuite) TestOpenCircuitProbesSingleEntry() {
	s.worker = New(s.outbox, s.dispatcher,
		WithClock(s.clock.Clock()),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithBreaker(circuit.New("test", circuit.WithFailureThreshold(1))),
		WithBackOff(func() backoff.BackOff { return &backoff.StopBackOff{} }),
	)
	s.enqueue("EFIR-5", "WARNING")
	s.enqueue("EFIR-6", "WARNING")
	s.enqueue("EFIR-7", "WARNING")

	s.dispatcher.EXPECT().
		Send(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), "EFIR-5:WARNING").
		Return(dispatch.Retryable(errors.New("broker down")))
	s.dispatcher.EXPECT().
		Send(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(dispatch.Retryable(errors.New("broker down"))).
		Times(2)

	// First drain opens the circuit on the first failure and keeps going.
	_, err := s.worker.DrainOnce(s.ctx)
	s.Require().NoError(err)

	s.clock.Advance(time.Hour)
	s.dispatcher.EXPECT().
		Send(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil).
		Times(1)
	delivered, err := s.worker.DrainOnce(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, delivered)
}

func (s *WorkerSuite) TestOutcomesAreTrackedAsOpsEvents() {
	opsStore := auditmemory.NewInMemoryStore()
	s.worker = New(s.outbox, s.dispatcher,
		WithClock(s.clock.Clock()),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithBackOff(func() backoff.BackOff { return &backoff.ZeroBackOff{} }),
		WithOpsTracker(ops.New(opsStore, ops.WithClock(s.clock.Clock()))),
	)
	s.enqueue("EFIR-7", "CRITICAL")
	s.enqueue("EFIR-8", "EXPIRED")
	s.dispatcher.EXPECT().
		Send(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), "EFIR-7:CRITICAL").
		Return(nil)
	s.dispatcher.EXPECT().
		Send(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), "EFIR-8:EXPIRED").
		Return(dispatch.Fatal(errors.New("number unreachable")))

	_, err := s.worker.DrainOnce(s.ctx)
	s.Require().NoError(err)

	delivered, err := opsStore.ListBySubject(s.ctx, "EFIR-7")
	s.Require().NoError(err)
	s.Require().Len(delivered, 1)
	s.Equal(string(audit.EventNotificationDelivered), delivered[0].Action)
	s.Equal("CRITICAL", delivered[0].Decision)
	s.Equal(audit.CategoryOperations, delivered[0].Category)

	failed, err := opsStore.ListBySubject(s.ctx, "EFIR-8")
	s.Require().NoError(err)
	s.Require().Len(failed, 1)
	s.Equal(string(audit.EventNotificationFailed), failed[0].Action)
	s.Contains(failed[0].Reason, "number unreachable")
}
