package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,PolicyGate,JurisdictionResolver,SignatureProvider,AuditPublisher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"nyaya/internal/fir/models"
	"nyaya/internal/fir/service/mocks"
	firstore "nyaya/internal/fir/store"
	"nyaya/internal/jurisdiction"
	notificationstore "nyaya/internal/notification/store"
	"nyaya/internal/policy"
	dErrors "nyaya/pkg/domain-errors"
	"nyaya/pkg/platform/audit"
	auditmemory "nyaya/pkg/platform/audit/store/memory"
	"nyaya/pkg/platform/clock"
	"nyaya/pkg/platform/sentinel"
)

var t0 = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// =============================================================================
// Lifecycle Service Test Suite
// =============================================================================
// Justification for unit tests: the 72-hour rule, exactly-once signing and
// at-most-once alerts are legal guarantees enforced only in this service.

type LifecycleSuite struct {
	suite.Suite
	ctx     context.Context
	clock   *clock.Fake
	store   *firstore.InMemory
	outbox  *notificationstore.InMemory
	audit   *auditmemory.InMemoryStore
	service *Service
	seq     atomic.Int64
}

func TestLifecycleSuite(t *testing.T) {
	suite.Run(t, new(LifecycleSuite))
}

func (s *LifecycleSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = clock.NewFake(t0)
	s.outbox = notificationstore.NewInMemory(time.Minute)
	s.store = firstore.NewInMemory(s.outbox)
	s.audit = auditmemory.NewInMemoryStore()
	s.service = s.newService()
}

func (s *LifecycleSuite) newService(opts ...Option) *Service {
	base := []Option{
		WithClock(s.clock.Clock()),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithAuditPublisher(auditRecorder{s.audit}),
		WithIDGenerator(func() string { return fmt.Sprintf("EFIR-%04d", s.seq.Add(1)) }),
		WithJurisdiction(jurisdiction.NewResolver(jurisdiction.NewDirectory([]jurisdiction.Station{
			{Code: "PS-DEL-001", Areas: []string{"connaught place"}},
			{Code: "PS-MUM-014", Areas: []string{"andheri"}},
		}), nil)),
	}
	svc, err := New(s.store, policy.NewGate(policy.DefaultKeywords), append(base, opts...)...)
	s.Require().NoError(err)
	return svc
}

type auditRecorder struct{ store *auditmemory.InMemoryStore }

func (r auditRecorder) Emit(ctx context.Context, e audit.ComplianceEvent) error {
	return r.store.Append(ctx, e.ToEvent())
}

func informant() models.Informant {
	return models.Informant{Name: "Asha Verma", Mobile: "+919800000001", ContactVerified: true}
}

func incident(location, description string) models.Incident {
	return models.Incident{
		Location:    location,
		Description: description,
		StationCode: "PS-DEL-001",
		OccurredAt:  t0.Add(-2 * time.Hour),
		ReportedAt:  t0,
	}
}

func (s *LifecycleSuite) submit() *models.ProvisionalFIR {
	f, err := s.service.Submit(s.ctx, informant(), incident("Connaught Place, New Delhi", "wallet stolen"),
		[]models.Section{{Code: "BNS", Section: "303", Cognizable: true, Bailable: true}})
	s.Require().NoError(err)
	return f
}

func (s *LifecycleSuite) notifications(id string) []string {
	list, err := s.outbox.ListByRecord(s.ctx, id)
	s.Require().NoError(err)
	tiers := make([]string, 0, len(list))
	for _, n := range list {
		tiers = append(tiers, n.Tier)
	}
	return tiers
}

func (s *LifecycleSuite) TestSubmit() {
	s.Run("starts the clock at submission", func() {
		f := s.submit()
		s.Equal(models.StatusPendingSignature, f.Status)
		s.Equal(t0, f.SubmissionTime)
		s.Equal(time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC), f.ExpiryTime)
		s.Equal(models.JurisdictionLocal, f.JurisdictionType)
		s.False(f.RequiresPhysicalVisit)

		view, err := s.service.GetStatus(s.ctx, f.TempID)
		s.Require().NoError(err)
		s.Equal(int64(72*3600), view.RemainingSeconds)
		s.Equal(models.AlertNormal, view.AlertLevel)
	})

	s.Run("unverified informant is rejected", func() {
		in := informant()
		in.ContactVerified = false
		_, err := s.service.Submit(s.ctx, in, incident("x", "y"), nil)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInformant))
	})

	s.Run("sensitive description freezes the physical visit flag", func() {
		f, err := s.service.Submit(s.ctx, informant(), incident("Connaught Place", "acid attack near metro gate"), nil)
		s.Require().NoError(err)
		s.True(f.RequiresPhysicalVisit)
	})

	s.Run("incident elsewhere becomes a Zero FIR", func() {
		f, err := s.service.Submit(s.ctx, informant(), incident("Andheri West, Mumbai", "chain snatching"), nil)
		s.Require().NoError(err)
		s.Equal(models.JurisdictionZero, f.JurisdictionType)
		s.Equal("PS-MUM-014", f.CorrectStationCode)
		s.Equal(f.SubmissionTime.Add(models.SignatureWindow), f.ExpiryTime)
	})

	s.Run("unknown location stays local", func() {
		f, err := s.service.Submit(s.ctx, informant(), incident("Shillong", "burglary"), nil)
		s.Require().NoError(err)
		s.Equal(models.JurisdictionLocal, f.JurisdictionType)
	})
}

// The worked example: submitted at T, CRITICAL once at T+60h, expired and
// converted at T+72h, signing refused afterwards.
func (s *LifecycleSuite) TestDeadlineScenario() {
	f := s.submit()

	s.clock.Set(t0.Add(60 * time.Hour))
	view, err := s.service.GetStatus(s.ctx, f.TempID)
	s.Require().NoError(err)
	s.Equal(int64(12*3600), view.RemainingSeconds)
	s.Equal(models.AlertCritical, view.AlertLevel)

	tier, err := s.service.NotifyDeadline(s.ctx, f.TempID)
	s.Require().NoError(err)
	s.Equal(models.AlertCritical, tier)

	tier, err = s.service.NotifyDeadline(s.ctx, f.TempID)
	s.Require().NoError(err)
	s.Empty(tier)
	s.Equal([]string{"CRITICAL"}, s.notifications(f.TempID))

	s.clock.Set(t0.Add(72 * time.Hour))
	s.Require().NoError(s.service.Expire(s.ctx, f.TempID))

	view, err = s.service.GetStatus(s.ctx, f.TempID)
	s.Require().NoError(err)
	s.Equal(models.StatusConvertedToGD, view.Status)
	s.Equal(models.AlertExpired, view.AlertLevel)
	s.Equal("GD/2025/PS-DEL-001/00001", view.GDEntryNumber)
	s.ElementsMatch([]string{"CRITICAL", "EXPIRED"}, s.notifications(f.TempID))

	_, err = s.service.Sign(s.ctx, f.TempID, models.SignatureAadhaarESign, "ESIGN-1")
	s.True(dErrors.HasCode(err, dErrors.CodeExpired))

	s.Run("expire is idempotent", func() {
		s.Require().NoError(s.service.Expire(s.ctx, f.TempID))
		view, err := s.service.GetStatus(s.ctx, f.TempID)
		s.Require().NoError(err)
		s.Equal("GD/2025/PS-DEL-001/00001", view.GDEntryNumber)
		s.Len(s.notifications(f.TempID), 2)
	})
}

func (s *LifecycleSuite) TestSign() {
	s.Run("registers the official FIR", func() {
		f := s.submit()
		s.clock.Set(t0.Add(10 * time.Hour))
		reg, err := s.service.Sign(s.ctx, f.TempID, models.SignaturePhysical, "REG-BOOK-42")
		s.Require().NoError(err)
		s.Equal("FIR/2025/PS-DEL-001/00001", reg.FIRNumber)
		s.Equal(t0.Add(10*time.Hour).Add(models.ChargeSheetWindow), reg.ChargeSheetDeadline)

		view, err := s.service.GetStatus(s.ctx, f.TempID)
		s.Require().NoError(err)
		s.Equal(models.StatusRegistered, view.Status)
		s.Equal(reg.FIRNumber, view.FIRNumber)

		got, err := s.service.GetRegistered(s.ctx, f.TempID)
		s.Require().NoError(err)
		s.Equal(reg.FIRNumber, got.FIRNumber)
	})

	s.Run("signing exactly at expiry is accepted", func() {
		f := s.submit()
		s.clock.Set(f.ExpiryTime)
		_, err := s.service.Sign(s.ctx, f.TempID, models.SignatureStylus, "STYLUS-1")
		s.Require().NoError(err)
	})

	s.Run("one nanosecond late is expired even before the scheduler runs", func() {
		f := s.submit()
		s.clock.Set(f.ExpiryTime.Add(time.Nanosecond))
		_, err := s.service.Sign(s.ctx, f.TempID, models.SignatureStylus, "STYLUS-2")
		s.True(dErrors.HasCode(err, dErrors.CodeExpired))

		view, err := s.service.GetStatus(s.ctx, f.TempID)
		s.Require().NoError(err)
		s.Equal(models.StatusPendingSignature, view.Status)
	})

	s.Run("second signature is already finalized", func() {
		f := s.submit()
		_, err := s.service.Sign(s.ctx, f.TempID, models.SignaturePhysical, "A")
		s.Require().NoError(err)
		_, err = s.service.Sign(s.ctx, f.TempID, models.SignaturePhysical, "B")
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyFinalized))
	})

	s.Run("unknown record", func() {
		_, err := s.service.Sign(s.ctx, "EFIR-NOPE", models.SignaturePhysical, "A")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *LifecycleSuite) TestConcurrentSignIsExactlyOnce() {
	f := s.submit()
	const attempts = 32

	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		finalized atomic.Int32
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.service.Sign(s.ctx, f.TempID, models.SignatureAadhaarESign, fmt.Sprintf("ESIGN-%d", i))
			switch {
			case err == nil:
				successes.Add(1)
			case dErrors.HasCode(err, dErrors.CodeAlreadyFinalized):
				finalized.Add(1)
			}
		}(i)
	}
	wg.Wait()

	s.Equal(int32(1), successes.Load())
	s.Equal(int32(attempts-1), finalized.Load())

	events, err := s.audit.ListBySubject(s.ctx, f.TempID)
	s.Require().NoError(err)
	signed := 0
	for _, e := range events {
		if e.Action == string(audit.EventFIRSigned) {
			signed++
		}
	}
	s.Equal(1, signed)
}

func (s *LifecycleSuite) TestSignAndExpireRace() {
	f := s.submit()
	s.clock.Set(f.ExpiryTime)

	var wg sync.WaitGroup
	var signErr, expireErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, signErr = s.service.Sign(s.ctx, f.TempID, models.SignaturePhysical, "LAST-MINUTE")
	}()
	go func() {
		defer wg.Done()
		expireErr = s.service.Expire(s.ctx, f.TempID)
	}()
	wg.Wait()

	view, err := s.service.GetStatus(s.ctx, f.TempID)
	s.Require().NoError(err)
	if signErr == nil {
		s.Equal(models.StatusRegistered, view.Status)
		s.NoError(expireErr, "expiring a registered record is a no-op")
	} else {
		s.NoError(expireErr)
		s.Equal(models.StatusConvertedToGD, view.Status)
		s.True(dErrors.HasCode(signErr, dErrors.CodeExpired))
	}
}

func (s *LifecycleSuite) TestExpireBeforeDeadline() {
	f := s.submit()
	s.clock.Set(f.ExpiryTime.Add(-time.Second))
	err := s.service.Expire(s.ctx, f.TempID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotYetDue))
}

func (s *LifecycleSuite) TestExpireIsNoOpOnDecidedRecords() {
	quashed := s.submit()
	s.Require().NoError(s.service.Quash(s.ctx, quashed.TempID, "withdrawn by informant"))

	transferred, err := s.service.Submit(s.ctx, informant(), incident("Andheri East", "robbery"), nil)
	s.Require().NoError(err)
	s.Require().NoError(s.service.TransferJurisdiction(s.ctx, transferred.TempID, ""))

	registered := s.submit()
	_, err = s.service.Sign(s.ctx, registered.TempID, models.SignaturePhysical, "P-1")
	s.Require().NoError(err)

	s.clock.Set(t0.Add(73 * time.Hour))
	for _, tc := range []struct {
		id   string
		want models.Status
	}{
		{quashed.TempID, models.StatusQuashed},
		{transferred.TempID, models.StatusTransferred},
		{registered.TempID, models.StatusRegistered},
	} {
		s.Run(string(tc.want), func() {
			s.Require().NoError(s.service.Expire(s.ctx, tc.id))
			view, err := s.service.GetStatus(s.ctx, tc.id)
			s.Require().NoError(err)
			s.Equal(tc.want, view.Status)
			s.Empty(view.GDEntryNumber)
			s.NotContains(s.notifications(tc.id), "EXPIRED")
		})
	}
}

func (s *LifecycleSuite) TestPhysicalVisitRecordDoesNotLapse() {
	in := informant()
	in.IsVulnerable = true
	in.VulnerableCategory = models.VulnerableWoman
	f, err := s.service.Submit(s.ctx, in, incident("Connaught Place", "domestic violence at home"), nil)
	s.Require().NoError(err)
	s.Require().True(f.RequiresPhysicalVisit)

	s.clock.Set(t0.Add(61 * time.Hour))
	tier, err := s.service.NotifyDeadline(s.ctx, f.TempID)
	s.Require().NoError(err)
	s.Equal(models.AlertCritical, tier, "alert tiers still flow")

	s.clock.Set(t0.Add(73 * time.Hour))
	err = s.service.Expire(s.ctx, f.TempID)
	s.True(dErrors.HasCode(err, dErrors.CodeExpiryExempt))

	view, err := s.service.GetStatus(s.ctx, f.TempID)
	s.Require().NoError(err)
	s.Equal(models.StatusPendingSignature, view.Status)
	s.Empty(view.GDEntryNumber)
	s.Equal([]string{"CRITICAL"}, s.notifications(f.TempID))

	due, err := s.service.ListDue(s.ctx, 0)
	s.Require().NoError(err)
	s.Empty(due)

	_, err = s.service.Sign(s.ctx, f.TempID, models.SignatureAadhaarESign, "ESIGN-LATE")
	s.True(dErrors.HasCode(err, dErrors.CodeExpired), "remote signing still closes with the window")

	registered, err := s.service.Sign(s.ctx, f.TempID, models.SignaturePhysical, "VISIT-1")
	s.Require().NoError(err)
	s.NotEmpty(registered.FIRNumber)
}

func (s *LifecycleSuite) TestNotifyDeadline() {
	s.Run("normal tier sends nothing", func() {
		f := s.submit()
		tier, err := s.service.NotifyDeadline(s.ctx, f.TempID)
		s.Require().NoError(err)
		s.Empty(tier)
		s.Empty(s.notifications(f.TempID))
	})

	s.Run("warning then critical", func() {
		s.clock.Set(t0)
		f := s.submit()
		s.clock.Set(t0.Add(48 * time.Hour))
		tier, err := s.service.NotifyDeadline(s.ctx, f.TempID)
		s.Require().NoError(err)
		s.Equal(models.AlertWarning, tier)

		s.clock.Set(t0.Add(61 * time.Hour))
		tier, err = s.service.NotifyDeadline(s.ctx, f.TempID)
		s.Require().NoError(err)
		s.Equal(models.AlertCritical, tier)
		s.ElementsMatch([]string{"WARNING", "CRITICAL"}, s.notifications(f.TempID))
	})

	s.Run("resuming late skips tiers already overtaken", func() {
		s.clock.Set(t0)
		f := s.submit()
		s.clock.Set(t0.Add(65 * time.Hour))
		tier, err := s.service.NotifyDeadline(s.ctx, f.TempID)
		s.Require().NoError(err)
		s.Equal(models.AlertCritical, tier)
		s.Equal([]string{"CRITICAL"}, s.notifications(f.TempID))
	})

	s.Run("signed record is not alerted", func() {
		s.clock.Set(t0)
		f := s.submit()
		_, err := s.service.Sign(s.ctx, f.TempID, models.SignaturePhysical, "P")
		s.Require().NoError(err)
		s.clock.Set(t0.Add(61 * time.Hour))
		tier, err := s.service.NotifyDeadline(s.ctx, f.TempID)
		s.Require().NoError(err)
		s.Empty(tier)
	})
}

func (s *LifecycleSuite) TestTransferJurisdiction() {
	s.Run("uses the station found at submission", func() {
		f, err := s.service.Submit(s.ctx, informant(), incident("Andheri East", "robbery"), nil)
		s.Require().NoError(err)
		s.clock.Set(t0.Add(5 * time.Hour))
		s.Require().NoError(s.service.TransferJurisdiction(s.ctx, f.TempID, ""))

		view, err := s.service.GetStatus(s.ctx, f.TempID)
		s.Require().NoError(err)
		s.Equal(models.StatusTransferred, view.Status)
		s.Equal(models.JurisdictionZero, view.JurisdictionType)
		s.Equal("PS-MUM-014", view.CorrectStationCode)
		s.Equal(f.ExpiryTime, view.ExpiryTime)
	})

	s.Run("filing station is not a transfer target", func() {
		s.clock.Set(t0)
		f := s.submit()
		err := s.service.TransferJurisdiction(s.ctx, f.TempID, "PS-DEL-001")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("after the deadline", func() {
		s.clock.Set(t0)
		f := s.submit()
		s.clock.Set(f.ExpiryTime.Add(time.Minute))
		err := s.service.TransferJurisdiction(s.ctx, f.TempID, "PS-MUM-014")
		s.True(dErrors.HasCode(err, dErrors.CodeExpired))
	})
}

func (s *LifecycleSuite) TestQuash() {
	f := s.submit()
	s.Require().NoError(s.service.Quash(s.ctx, f.TempID, "duplicate complaint"))

	err := s.service.Quash(s.ctx, f.TempID, "again")
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))

	_, err = s.service.Sign(s.ctx, f.TempID, models.SignaturePhysical, "P")
	s.True(dErrors.HasCode(err, dErrors.CodeAlreadyFinalized))
}

func (s *LifecycleSuite) TestListPending() {
	a := s.submit()
	s.clock.Advance(time.Hour)
	b := s.submit()
	s.Require().NoError(s.service.Quash(s.ctx, b.TempID, "withdrawn"))
	s.clock.Advance(time.Hour)
	c := s.submit()

	list, err := s.service.ListPending(s.ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(a.TempID, list[0].TempID)
	s.Equal(c.TempID, list[1].TempID)
}

// =============================================================================
// Collaborator failure tests
// =============================================================================
// Justification for unit tests: failures in audit, storage and signing
// collaborators must abort the transition rather than leave partial state.

type CollaboratorSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	store   *mocks.MockStore
	policy  *mocks.MockPolicyGate
	auditor *mocks.MockAuditPublisher
	signer  *mocks.MockSignatureProvider
	clock   *clock.Fake
	service *Service
	ctx     context.Context
}

func TestCollaboratorSuite(t *testing.T) {
	suite.Run(t, new(CollaboratorSuite))
}

func (s *CollaboratorSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockStore(s.ctrl)
	s.policy = mocks.NewMockPolicyGate(s.ctrl)
	s.auditor = mocks.NewMockAuditPublisher(s.ctrl)
	s.signer = mocks.NewMockSignatureProvider(s.ctrl)
	s.clock = clock.NewFake(t0)
	s.ctx = context.Background()

	svc, err := New(s.store, s.policy,
		WithClock(s.clock.Clock()),
		WithAuditPublisher(s.auditor),
		WithSignatureProvider(s.signer),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	s.Require().NoError(err)
	s.service = svc
}

func (s *CollaboratorSuite) TearDownTest() {
	s.ctrl.Finish()
}

func pending() *models.ProvisionalFIR {
	f, _ := models.NewProvisionalFIR("EFIR-1", informant(), incident("x", "y"), nil, t0)
	_ = f.ApplySubmission(t0)
	_ = f.StartSignatureClock(t0)
	f.Version = 2
	return f
}

func (s *CollaboratorSuite) TestNewRequiresDependencies() {
	_, err := New(nil, s.policy)
	s.Error(err)
	_, err = New(s.store, nil)
	s.Error(err)
}

func (s *CollaboratorSuite) TestAuditFailureAbortsSign() {
	s.store.EXPECT().FindByID(gomock.Any(), "EFIR-1").Return(pending(), nil)
	s.store.EXPECT().NextSequence(gomock.Any(), "FIR/2025/PS-DEL-001").Return(int64(1), nil)
	s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("audit store down"))

	_, err := s.service.Sign(s.ctx, "EFIR-1", models.SignaturePhysical, "P")
	s.True(dErrors.HasCode(err, dErrors.CodeStorageUnavailable))
}

func (s *CollaboratorSuite) TestStoreUnavailableIsRetryable() {
	s.store.EXPECT().FindByID(gomock.Any(), "EFIR-1").
		Return(nil, fmt.Errorf("find: %w", sentinel.ErrUnavailable))

	err := s.service.Expire(s.ctx, "EFIR-1")
	s.True(dErrors.IsRetryable(err))
}

func (s *CollaboratorSuite) TestLostUpdateExplainsOutcome() {
	s.clock.Set(t0.Add(80 * time.Hour))
	expired := pending()
	_ = expired.ApplyExpiry("GD/2025/PS-DEL-001/00009", t0.Add(80*time.Hour))

	s.clock.Set(t0.Add(10 * time.Hour))
	s.store.EXPECT().FindByID(gomock.Any(), "EFIR-1").Return(pending(), nil)
	s.store.EXPECT().NextSequence(gomock.Any(), gomock.Any()).Return(int64(1), nil)
	s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	s.store.EXPECT().CreateRegistered(gomock.Any(), gomock.Any()).Return(nil)
	s.store.EXPECT().Update(gomock.Any(), gomock.Any(), models.StatusPendingSignature).Return(sentinel.ErrConflict)
	s.store.EXPECT().FindByID(gomock.Any(), "EFIR-1").Return(expired, nil)

	_, err := s.service.Sign(s.ctx, "EFIR-1", models.SignaturePhysical, "P")
	s.True(dErrors.HasCode(err, dErrors.CodeExpired))
}

func (s *CollaboratorSuite) TestSignWithChallenge() {
	s.Run("rejected challenge never touches the store", func() {
		s.signer.EXPECT().ConfirmSignature(gomock.Any(), "EFIR-1", "bad").
			Return("", dErrors.New(dErrors.CodeSignatureRejected, "invalid signature challenge"))
		_, err := s.service.SignWithChallenge(s.ctx, "EFIR-1", models.SignatureAadhaarESign, "bad")
		s.True(dErrors.HasCode(err, dErrors.CodeSignatureRejected))
	})

	s.Run("challenge for a closed record is refused", func() {
		closed := pending()
		_ = closed.ApplyQuash("withdrawn", t0)
		s.store.EXPECT().FindByID(gomock.Any(), "EFIR-1").Return(closed, nil)
		_, err := s.service.RequestSignature(s.ctx, "EFIR-1")
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyFinalized))
	})
}
