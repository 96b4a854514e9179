package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"nyaya/internal/fir/metrics"
	"nyaya/internal/fir/models"
	"nyaya/internal/jurisdiction"
	notificationmodels "nyaya/internal/notification/models"
	dErrors "nyaya/pkg/domain-errors"
	"nyaya/pkg/platform/audit"
	"nyaya/pkg/platform/clock"
	"nyaya/pkg/platform/sentinel"
	"nyaya/pkg/requestcontext"
)

// Store persists provisional and registered e-FIRs. Update is a conditional
// write that fails with sentinel.ErrConflict when the stored status or
// version no longer matches. EnqueueNotification writes to the notification
// outbox and must share the caller's transaction when one is active.
type Store interface {
	Create(ctx context.Context, f *models.ProvisionalFIR) error
	FindByID(ctx context.Context, tempID string) (*models.ProvisionalFIR, error)
	Update(ctx context.Context, f *models.ProvisionalFIR, expected models.Status) error
	ListByStatus(ctx context.Context, status models.Status, limit int) ([]*models.ProvisionalFIR, error)
	ListAwaitingDeadline(ctx context.Context, now time.Time, limit int) ([]*models.ProvisionalFIR, error)
	NextSequence(ctx context.Context, series string) (int64, error)
	CreateRegistered(ctx context.Context, r *models.RegisteredFIR) error
	FindRegistered(ctx context.Context, tempID string) (*models.RegisteredFIR, error)
	EnqueueNotification(ctx context.Context, n *notificationmodels.Notification) error
}

// PolicyGate decides at submission whether the record needs a physical visit.
type PolicyGate interface {
	RequiresPhysicalVisit(informant models.Informant, description string) bool
}

// JurisdictionResolver annotates a submission as local or Zero FIR.
type JurisdictionResolver interface {
	ResolveFor(ctx context.Context, filingStationCode, location string) (jurisdiction.Decision, error)
}

// SignatureProvider issues and redeems e-signature challenges.
type SignatureProvider interface {
	RequestSignature(ctx context.Context, recordID string) (string, error)
	ConfirmSignature(ctx context.Context, recordID, challengeRef string) (string, error)
}

// AuditPublisher records lifecycle transitions. Emit is called inside the
// store transaction before the final write; a failure aborts the transition.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.ComplianceEvent) error
}

// Service is the authoritative e-FIR state machine. Every mutation runs as
// read, apply, conditional write inside StoreTx, so each record reaches
// exactly one signature outcome.
type Service struct {
	store        Store
	tx           StoreTx
	policy       PolicyGate
	jurisdiction JurisdictionResolver
	signer       SignatureProvider
	auditor      AuditPublisher
	logger       *slog.Logger
	metrics      *metrics.Metrics
	clock        clock.Clock
	newID        func() string
	tracer       trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithClock(c clock.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithTx replaces the default in-process sharded lock, e.g. with a
// Postgres transaction runner.
func WithTx(tx StoreTx) Option {
	return func(s *Service) { s.tx = tx }
}

func WithJurisdiction(r JurisdictionResolver) Option {
	return func(s *Service) { s.jurisdiction = r }
}

func WithSignatureProvider(p SignatureProvider) Option {
	return func(s *Service) { s.signer = p }
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) { s.auditor = p }
}

func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

func New(store Store, policy PolicyGate, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if policy == nil {
		return nil, errors.New("policy gate is required")
	}
	s := &Service{
		store:  store,
		policy: policy,
		logger: slog.Default(),
		clock:  clock.Real,
		newID:  newTempID,
		tracer: otel.Tracer("nyaya/fir"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = newRecordLocks(store)
	}
	return s, nil
}

// newTempID yields EFIR- followed by 12 upper-case hex characters.
func newTempID() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "EFIR-" + strings.ToUpper(id[:12])
}

// Submit creates the provisional record, freezes the policy and jurisdiction
// annotations, and starts the 72-hour signature clock.
func (s *Service) Submit(ctx context.Context, informant models.Informant, incident models.Incident, sections []models.Section) (*models.ProvisionalFIR, error) {
	ctx, span := s.tracer.Start(ctx, "fir.Submit")
	defer span.End()

	now := s.clock()
	f, err := models.NewProvisionalFIR(s.newID(), informant, incident, sections, now)
	if err != nil {
		return nil, s.fail(span, "submit", err)
	}
	span.SetAttributes(attribute.String("record_id", f.TempID))

	f.RequiresPhysicalVisit = s.policy.RequiresPhysicalVisit(informant, incident.Description)
	if s.jurisdiction != nil {
		d, err := s.jurisdiction.ResolveFor(ctx, incident.StationCode, incident.Location)
		if err != nil {
			s.logger.WarnContext(ctx, "jurisdiction lookup failed; treating as local",
				"record_id", f.TempID,
				"error", err,
			)
		} else {
			f.JurisdictionType = d.Type
			f.CorrectStationCode = d.CorrectStationCode
		}
	}
	if err := f.ApplySubmission(now); err != nil {
		return nil, s.fail(span, "submit", err)
	}

	err = s.run(ctx, f.TempID, func(st Store) error {
		if err := s.emit(ctx, f, audit.EventFIRSubmitted, "pending_signature", ""); err != nil {
			return err
		}
		if err := st.Create(ctx, f); err != nil {
			return err
		}
		if err := f.StartSignatureClock(now); err != nil {
			return err
		}
		return st.Update(ctx, f, models.StatusSubmittedElectronically)
	})
	if err != nil {
		return nil, s.fail(span, "submit", s.translate(err, "failed to persist e-FIR"))
	}

	s.metrics.IncrementTransition(string(models.StatusPendingSignature))
	s.logger.InfoContext(ctx, "e-FIR submitted",
		"record_id", f.TempID,
		"expiry_time", f.ExpiryTime,
		"jurisdiction", f.JurisdictionType,
		"requires_physical_visit", f.RequiresPhysicalVisit,
	)
	return f, nil
}

// Sign commits the informant's signature and registers the official FIR in
// the same transaction. The deadline is re-checked under the record lock.
func (s *Service) Sign(ctx context.Context, tempID string, method models.SignatureMethod, reference string) (*models.RegisteredFIR, error) {
	ctx, span := s.tracer.Start(ctx, "fir.Sign", trace.WithAttributes(attribute.String("record_id", tempID)))
	defer span.End()

	var (
		registered *models.RegisteredFIR
		margin     time.Duration
	)
	err := s.run(ctx, tempID, func(st Store) error {
		f, err := st.FindByID(ctx, tempID)
		if err != nil {
			return err
		}
		now := s.clock()
		if err := f.CanSignWith(method, now); err != nil {
			return err
		}
		margin = f.Remaining(now)
		if err := f.ApplySignature(method, reference, now); err != nil {
			return err
		}

		seq, err := st.NextSequence(ctx, seriesKey("FIR", now, f.FilingStationCode))
		if err != nil {
			return err
		}
		number := fmt.Sprintf("FIR/%d/%s/%05d", now.Year(), f.FilingStationCode, seq)
		r, err := models.NewRegisteredFIR(f, number, requestcontext.ActorID(ctx), now)
		if err != nil {
			return err
		}
		if err := f.ApplyRegistration(number, now); err != nil {
			return err
		}
		if err := s.emit(ctx, f, audit.EventFIRSigned, "signed", string(method)); err != nil {
			return err
		}
		if err := s.emit(ctx, f, audit.EventFIRRegistered, "registered", number); err != nil {
			return err
		}
		if err := st.CreateRegistered(ctx, r); err != nil {
			return err
		}
		if err := st.Update(ctx, f, models.StatusPendingSignature); err != nil {
			return err
		}
		registered = r
		return nil
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			err = s.explainConflict(ctx, tempID, err)
		}
		return nil, s.fail(span, "sign", s.translate(err, "failed to record signature"))
	}

	s.metrics.IncrementTransition(string(models.StatusSigned))
	s.metrics.IncrementTransition(string(models.StatusRegistered))
	s.metrics.ObserveSignatureMargin(margin.Hours())
	s.logger.InfoContext(ctx, "e-FIR signed and registered",
		"record_id", tempID,
		"fir_number", registered.FIRNumber,
		"method", method,
	)
	return registered, nil
}

// RequestSignature issues an e-sign challenge for a record that can still
// be signed.
func (s *Service) RequestSignature(ctx context.Context, tempID string) (string, error) {
	if s.signer == nil {
		return "", dErrors.New(dErrors.CodeInternal, "no signature provider configured")
	}
	f, err := s.store.FindByID(ctx, tempID)
	if err != nil {
		return "", s.translate(err, "failed to load e-FIR")
	}
	if err := f.CanSign(s.clock()); err != nil {
		return "", err
	}
	return s.signer.RequestSignature(ctx, tempID)
}

// SignWithChallenge redeems an e-sign challenge and signs with its reference.
func (s *Service) SignWithChallenge(ctx context.Context, tempID string, method models.SignatureMethod, challengeRef string) (*models.RegisteredFIR, error) {
	if s.signer == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "no signature provider configured")
	}
	reference, err := s.signer.ConfirmSignature(ctx, tempID, challengeRef)
	if err != nil {
		s.metrics.IncrementRejection("sign", string(dErrors.CodeOf(err)))
		return nil, err
	}
	return s.Sign(ctx, tempID, method, reference)
}

// Expire converts a lapsed record into a General Diary entry and queues the
// EXPIRED notice. It is a no-op on any record whose signature outcome is
// already decided. Records that need a physical visit fail with
// CodeExpiryExempt and stay pending.
func (s *Service) Expire(ctx context.Context, tempID string) error {
	ctx, span := s.tracer.Start(ctx, "fir.Expire", trace.WithAttributes(attribute.String("record_id", tempID)))
	defer span.End()

	var (
		gdNumber    string
		alreadyDone bool
	)
	err := s.run(ctx, tempID, func(st Store) error {
		f, err := st.FindByID(ctx, tempID)
		if err != nil {
			return err
		}
		if f.Status.IsFinalized() {
			alreadyDone = true
			return nil
		}
		now := s.clock()
		if err := f.CanExpire(now); err != nil {
			return err
		}

		seq, err := st.NextSequence(ctx, seriesKey("GD", now, f.FilingStationCode))
		if err != nil {
			return err
		}
		gdNumber = fmt.Sprintf("GD/%d/%s/%05d", now.Year(), f.FilingStationCode, seq)
		if err := f.ApplyExpiry(gdNumber, now); err != nil {
			return err
		}
		if err := s.queueAlert(ctx, st, f, models.AlertExpired, now); err != nil {
			return err
		}
		if err := s.emit(ctx, f, audit.EventFIRExpired, "converted_to_gd", gdNumber); err != nil {
			return err
		}
		return st.Update(ctx, f, models.StatusPendingSignature)
	})
	if err != nil {
		return s.fail(span, "expire", s.translate(err, "failed to expire e-FIR"))
	}
	if alreadyDone {
		return nil
	}

	s.metrics.IncrementTransition(string(models.StatusConvertedToGD))
	s.logger.InfoContext(ctx, "e-FIR expired and converted to GD entry",
		"record_id", tempID,
		"gd_entry_number", gdNumber,
	)
	return nil
}

// NotifyDeadline queues one alert when the record's current tier is stricter
// than every tier already notified. Returns the queued tier, or "" when
// nothing was due. The EXPIRED notice is queued by Expire.
func (s *Service) NotifyDeadline(ctx context.Context, tempID string) (models.AlertLevel, error) {
	var queued models.AlertLevel
	err := s.run(ctx, tempID, func(st Store) error {
		f, err := st.FindByID(ctx, tempID)
		if err != nil {
			return err
		}
		if f.Status != models.StatusPendingSignature {
			return nil
		}
		now := s.clock()
		level := f.AlertLevel(now)
		if !level.Notifiable() || level == models.AlertExpired || !level.StricterThan(f.HighestNotified()) {
			return nil
		}
		if err := s.queueAlert(ctx, st, f, level, now); err != nil {
			return err
		}
		if err := s.emit(ctx, f, audit.EventDeadlineAlertQueued, "queued", string(level)); err != nil {
			return err
		}
		if err := st.Update(ctx, f, models.StatusPendingSignature); err != nil {
			return err
		}
		queued = level
		return nil
	})
	if err != nil {
		return "", s.translate(err, "failed to queue deadline alert")
	}
	if queued != "" {
		s.logger.InfoContext(ctx, "deadline alert queued", "record_id", tempID, "tier", queued)
	}
	return queued, nil
}

// TransferJurisdiction forwards a pending record to the station holding
// jurisdiction. An empty correctStationCode uses the station found at
// submission. The expiry instant is unchanged.
func (s *Service) TransferJurisdiction(ctx context.Context, tempID, correctStationCode string) error {
	ctx, span := s.tracer.Start(ctx, "fir.TransferJurisdiction", trace.WithAttributes(attribute.String("record_id", tempID)))
	defer span.End()

	var target string
	err := s.run(ctx, tempID, func(st Store) error {
		f, err := st.FindByID(ctx, tempID)
		if err != nil {
			return err
		}
		target = strings.TrimSpace(correctStationCode)
		if target == "" {
			target = f.CorrectStationCode
		}
		if d := jurisdiction.Resolve(f.FilingStationCode, target); target != "" && d.Type == models.JurisdictionLocal {
			return dErrors.New(dErrors.CodeValidation, "correct station is the filing station")
		}
		if err := f.ApplyTransfer(target, s.clock()); err != nil {
			return err
		}
		if err := s.emit(ctx, f, audit.EventFIRTransferred, "transferred", target); err != nil {
			return err
		}
		return st.Update(ctx, f, models.StatusPendingSignature)
	})
	if err != nil {
		return s.fail(span, "transfer", s.translate(err, "failed to transfer e-FIR"))
	}

	s.metrics.IncrementTransition(string(models.StatusTransferred))
	s.logger.InfoContext(ctx, "e-FIR transferred", "record_id", tempID, "correct_station", target)
	return nil
}

// Quash closes a record that has not reached a signature outcome.
func (s *Service) Quash(ctx context.Context, tempID, reason string) error {
	ctx, span := s.tracer.Start(ctx, "fir.Quash", trace.WithAttributes(attribute.String("record_id", tempID)))
	defer span.End()

	err := s.run(ctx, tempID, func(st Store) error {
		f, err := st.FindByID(ctx, tempID)
		if err != nil {
			return err
		}
		prev := f.Status
		if err := f.ApplyQuash(reason, s.clock()); err != nil {
			return err
		}
		if err := s.emit(ctx, f, audit.EventFIRQuashed, "quashed", reason); err != nil {
			return err
		}
		return st.Update(ctx, f, prev)
	})
	if err != nil {
		return s.fail(span, "quash", s.translate(err, "failed to quash e-FIR"))
	}

	s.metrics.IncrementTransition(string(models.StatusQuashed))
	s.logger.InfoContext(ctx, "e-FIR quashed", "record_id", tempID)
	return nil
}

// GetStatus returns the stored status with remaining time and alert level
// recomputed at the current instant.
func (s *Service) GetStatus(ctx context.Context, tempID string) (*models.StatusView, error) {
	f, err := s.store.FindByID(ctx, tempID)
	if err != nil {
		return nil, s.translate(err, "failed to load e-FIR")
	}
	view := f.View(s.clock())
	return &view, nil
}

// ListPending returns records still awaiting signature, earliest expiry first.
func (s *Service) ListPending(ctx context.Context, limit int) ([]*models.ProvisionalFIR, error) {
	list, err := s.store.ListByStatus(ctx, models.StatusPendingSignature, limit)
	if err != nil {
		return nil, s.translate(err, "failed to list pending e-FIRs")
	}
	return list, nil
}

// ListDue returns the pending records the deadline scheduler acts on,
// earliest expiry first. Lapsed physical-visit records are excluded.
func (s *Service) ListDue(ctx context.Context, limit int) ([]*models.ProvisionalFIR, error) {
	list, err := s.store.ListAwaitingDeadline(ctx, s.clock(), limit)
	if err != nil {
		return nil, s.translate(err, "failed to list e-FIRs awaiting deadline")
	}
	return list, nil
}

// GetRegistered returns the official FIR created from tempID.
func (s *Service) GetRegistered(ctx context.Context, tempID string) (*models.RegisteredFIR, error) {
	r, err := s.store.FindRegistered(ctx, tempID)
	if err != nil {
		return nil, s.translate(err, "failed to load registered FIR")
	}
	return r, nil
}

func (s *Service) run(ctx context.Context, tempID string, fn func(Store) error) error {
	return s.tx.RunInTx(ctx, tempID, fn)
}

// queueAlert writes the tier's notification to the outbox and marks it sent
// on the record. An entry already queued for the same tier counts as sent.
func (s *Service) queueAlert(ctx context.Context, st Store, f *models.ProvisionalFIR, level models.AlertLevel, now time.Time) error {
	if f.WasNotified(level) {
		return nil
	}
	channel, recipient := contactFor(f.Informant)
	remaining := f.Remaining(now)
	if remaining < 0 {
		remaining = 0
	}
	n, err := notificationmodels.NewAlert(f.TempID, string(level), channel, recipient, notificationmodels.AlertPayload{
		RecordID:         f.TempID,
		Tier:             string(level),
		ExpiryTime:       f.ExpiryTime,
		RemainingSeconds: int64(remaining / time.Second),
		GDEntryNumber:    f.GDEntryNumber,
		Message:          alertMessage(f, level),
	}, now)
	if err != nil {
		return fmt.Errorf("build alert: %w", err)
	}
	if err := st.EnqueueNotification(ctx, n); err != nil && !errors.Is(err, sentinel.ErrAlreadyUsed) {
		return err
	}
	f.MarkNotified(level)
	s.metrics.IncrementAlertQueued(string(level))
	return nil
}

func contactFor(informant models.Informant) (notificationmodels.Channel, string) {
	if informant.Mobile != "" {
		return notificationmodels.ChannelSMS, informant.Mobile
	}
	return notificationmodels.ChannelEmail, informant.Email
}

func alertMessage(f *models.ProvisionalFIR, level models.AlertLevel) string {
	deadline := f.ExpiryTime.Format("02 Jan 2006 15:04 MST")
	switch level {
	case models.AlertWarning:
		return fmt.Sprintf("Your e-FIR %s must be signed at the police station within 24 hours (by %s).", f.TempID, deadline)
	case models.AlertCritical:
		return fmt.Sprintf("Urgent: your e-FIR %s must be signed within 12 hours (by %s) or it will lapse.", f.TempID, deadline)
	default:
		return fmt.Sprintf("Your e-FIR %s was not signed within 72 hours and has been recorded as General Diary entry %s.", f.TempID, f.GDEntryNumber)
	}
}

func seriesKey(prefix string, now time.Time, station string) string {
	return fmt.Sprintf("%s/%d/%s", prefix, now.Year(), station)
}

func (s *Service) emit(ctx context.Context, f *models.ProvisionalFIR, action audit.AuditEvent, decision, reason string) error {
	if s.auditor == nil {
		return nil
	}
	return s.auditor.Emit(ctx, audit.ComplianceEvent{
		Subject:     f.TempID,
		Action:      action,
		Decision:    decision,
		Reason:      reason,
		StationCode: f.FilingStationCode,
	})
}

// explainConflict reloads a record whose conditional write lost a race and
// reports why it can no longer be signed.
func (s *Service) explainConflict(ctx context.Context, tempID string, err error) error {
	f, ferr := s.store.FindByID(ctx, tempID)
	if ferr != nil {
		return err
	}
	if serr := f.CanSign(s.clock()); serr != nil {
		return serr
	}
	return err
}

// translate maps store failures onto domain codes. Domain errors pass through.
func (s *Service) translate(err error, msg string) error {
	switch {
	case err == nil:
		return nil
	case dErrors.CodeOf(err) != "":
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "e-FIR not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, "e-FIR was modified concurrently")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return dErrors.Wrap(err, dErrors.CodeTimeout, msg)
	default:
		return dErrors.Wrap(err, dErrors.CodeStorageUnavailable, msg)
	}
}

func (s *Service) fail(span trace.Span, operation string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.metrics.IncrementRejection(operation, string(dErrors.CodeOf(err)))
	return err
}
