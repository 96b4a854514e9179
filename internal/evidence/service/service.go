package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	digest "nyaya/internal/evidence/hash"
	"nyaya/internal/evidence/metrics"
	"nyaya/internal/evidence/models"
	dErrors "nyaya/pkg/domain-errors"
	"nyaya/pkg/platform/audit"
	"nyaya/pkg/platform/clock"
	"nyaya/pkg/platform/sentinel"
	"nyaya/pkg/requestcontext"
)

// Store persists sealed records and the per-case anchor chain. AppendAnchor
// fails with sentinel.ErrChainMismatch when the anchor does not extend the
// current head; CreateRecord fails with sentinel.ErrAlreadyUsed when the
// file was already sealed in the case.
type Store interface {
	CreateRecord(ctx context.Context, r *models.EvidenceRecord) error
	FindRecord(ctx context.Context, caseID, fileName string) (*models.EvidenceRecord, error)
	ListRecords(ctx context.Context, caseID string) ([]*models.EvidenceRecord, error)
	LastAnchor(ctx context.Context, caseID string) (*models.LedgerAnchor, error)
	AppendAnchor(ctx context.Context, a *models.LedgerAnchor) error
	ListAnchors(ctx context.Context, caseID string) ([]*models.LedgerAnchor, error)
	Halt(ctx context.Context, caseID, reason string, at time.Time) error
	HaltReason(ctx context.Context, caseID string) (string, bool, error)
	Resume(ctx context.Context, caseID string) error
}

// Hasher fingerprints content.
type Hasher interface {
	Algorithm() string
	DigestWith(ctx context.Context, algorithm string, r io.Reader) (digest.Result, error)
}

// AuditPublisher records seals and sealing halts. A failure aborts the seal.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.ComplianceEvent) error
}

// IntegrityPublisher records verification outcomes. Failures are logged only.
type IntegrityPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service seals evidence fingerprints into a per-case hash chain and verifies
// candidates against them. It never rewrites a sealed digest or an anchor.
type Service struct {
	store     Store
	tx        StoreTx
	hasher    Hasher
	auditor   AuditPublisher
	integrity IntegrityPublisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
	clock     clock.Clock
	newID     func() string
	tracer    trace.Tracer
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

// WithTx replaces the in-process case lock, e.g. with store.SQL.
func WithTx(tx StoreTx) Option {
	return func(s *Service) { s.tx = tx }
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) { s.auditor = p }
}

func WithIntegrityPublisher(p IntegrityPublisher) Option {
	return func(s *Service) { s.integrity = p }
}

func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

func New(store Store, hasher Hasher, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if hasher == nil {
		return nil, errors.New("hasher is required")
	}
	s := &Service{
		store:  store,
		hasher: hasher,
		logger: slog.Default(),
		clock:  clock.Real,
		newID:  uuid.NewString,
		tracer: otel.Tracer("nyaya/evidence"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = &caseLocks{}
	}
	return s, nil
}

// Seal fingerprints content, stores the record and appends an anchor chained
// to the case's previous anchor. A case whose chain refused an anchor stays
// halted until ResumeSealing.
func (s *Service) Seal(ctx context.Context, caseID, fileName, sealerID string, content io.Reader) (*models.EvidenceRecord, error) {
	ctx, span := s.tracer.Start(ctx, "evidence.Seal", trace.WithAttributes(
		attribute.String("case_id", caseID),
		attribute.String("file_name", fileName),
	))
	defer span.End()

	if err := validateRef(caseID, fileName); err != nil {
		return nil, s.fail(span, "seal", err)
	}
	if sealerID == "" {
		sealerID = requestcontext.ActorID(ctx)
	}
	if sealerID == "" {
		return nil, s.fail(span, "seal", dErrors.New(dErrors.CodeValidation, "sealer_id is required"))
	}
	if err := s.ensureSealing(ctx, caseID); err != nil {
		return nil, s.fail(span, "seal", err)
	}

	res, err := s.hash(ctx, s.hasher.Algorithm(), content)
	if err != nil {
		return nil, s.fail(span, "seal", err)
	}

	now := s.clock()
	rec := &models.EvidenceRecord{
		ID:           s.newID(),
		CaseID:       caseID,
		FileName:     fileName,
		Algorithm:    res.Algorithm,
		SealedDigest: res.Digest,
		SizeBytes:    res.Size,
		SealedAt:     now.UTC().Truncate(time.Microsecond),
		SealerID:     sealerID,
	}

	var anchor *models.LedgerAnchor
	err = s.tx.RunInTx(ctx, caseID, func(ctx context.Context) error {
		prev, err := s.store.LastAnchor(ctx, caseID)
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return err
		}
		anchor = models.NewLedgerAnchor(s.newID(), caseID, rec.ID, rec.SealedDigest, prev, now)
		if err := s.emit(ctx, caseID, audit.EventEvidenceSealed, "sealed",
			fmt.Sprintf("%s %s %s", fileName, rec.Algorithm, rec.SealedDigest)); err != nil {
			return err
		}
		if err := s.store.CreateRecord(ctx, rec); err != nil {
			return err
		}
		return s.store.AppendAnchor(ctx, anchor)
	})
	switch {
	case err == nil:
	case errors.Is(err, sentinel.ErrChainMismatch):
		return nil, s.fail(span, "seal", s.haltCase(ctx, caseID, "anchor did not extend the chain head"))
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		s.metrics.IncrementSeal("duplicate")
		return nil, s.fail(span, "seal", dErrors.Wrap(err, dErrors.CodeConflict, "file already sealed for this case"))
	default:
		s.metrics.IncrementSeal("error")
		return nil, s.fail(span, "seal", translate(err, "failed to seal evidence"))
	}

	s.metrics.IncrementSeal("sealed")
	s.logger.InfoContext(ctx, "evidence sealed",
		"case_id", caseID,
		"file_name", fileName,
		"algorithm", rec.Algorithm,
		"digest", rec.SealedDigest,
		"sequence", anchor.Sequence,
	)
	return rec, nil
}

// Verify recomputes the candidate's digest and compares it in constant time
// with expectedDigest, or with the sealed digest when expectedDigest is empty.
// The result always reports the sealed digest from the record, never the
// supplied one. A mismatch is reported in the result, not as an error.
func (s *Service) Verify(ctx context.Context, caseID, fileName string, candidate io.Reader, expectedDigest string) (*models.VerificationResult, error) {
	ctx, span := s.tracer.Start(ctx, "evidence.Verify", trace.WithAttributes(
		attribute.String("case_id", caseID),
		attribute.String("file_name", fileName),
	))
	defer span.End()

	if err := validateRef(caseID, fileName); err != nil {
		return nil, s.fail(span, "verify", err)
	}

	supplied := models.NormalizeDigest(expectedDigest)
	expected := supplied
	var sealed string
	algorithm := s.hasher.Algorithm()
	rec, err := s.store.FindRecord(ctx, caseID, fileName)
	switch {
	case err == nil:
		algorithm = rec.Algorithm
		sealed = rec.SealedDigest
		if expected == "" {
			expected = sealed
		}
	case errors.Is(err, sentinel.ErrNotFound) && expected != "":
	case errors.Is(err, sentinel.ErrNotFound):
		return nil, s.fail(span, "verify", dErrors.Wrap(err, dErrors.CodeNotFound, "no sealed record for this file"))
	default:
		return nil, s.fail(span, "verify", translate(err, "failed to load sealed record"))
	}

	res, err := s.hash(ctx, algorithm, candidate)
	if err != nil {
		return nil, s.fail(span, "verify", err)
	}

	result := &models.VerificationResult{
		CaseID:         caseID,
		FileName:       fileName,
		Algorithm:      res.Algorithm,
		IsMatch:        subtle.ConstantTimeCompare([]byte(res.Digest), []byte(expected)) == 1,
		ComputedDigest: res.Digest,
		SealedDigest:   sealed,
		ExpectedDigest: supplied,
		VerifiedAt:     s.clock(),
		Admissibility:  models.IntegrityFlaggedForReview,
	}
	if result.IsMatch {
		result.Admissibility = models.AdmissibleIntegrityConfirmed
	}
	span.SetAttributes(attribute.Bool("is_match", result.IsMatch))
	s.metrics.IncrementVerification(string(result.Admissibility))

	reason := "computed " + result.ComputedDigest + " sealed " + orNone(result.SealedDigest)
	if supplied != "" {
		reason += " expected " + supplied
	}
	s.publishIntegrity(ctx, caseID, audit.EventEvidenceVerified, string(result.Admissibility), reason)
	if !result.IsMatch {
		s.logger.WarnContext(ctx, "evidence integrity mismatch",
			"case_id", caseID,
			"file_name", fileName,
			"computed", result.ComputedDigest,
			"sealed", result.SealedDigest,
			"expected", result.ExpectedDigest,
		)
	}
	return result, nil
}

// VerifyChain recomputes every anchor of the case. A broken chain halts
// sealing for the case.
func (s *Service) VerifyChain(ctx context.Context, caseID string) (*models.ChainReport, error) {
	ctx, span := s.tracer.Start(ctx, "evidence.VerifyChain", trace.WithAttributes(attribute.String("case_id", caseID)))
	defer span.End()

	if caseID == "" {
		return nil, s.fail(span, "verify_chain", dErrors.New(dErrors.CodeValidation, "case_id is required"))
	}
	anchors, err := s.store.ListAnchors(ctx, caseID)
	if err != nil {
		return nil, s.fail(span, "verify_chain", translate(err, "failed to load ledger"))
	}
	report := models.VerifyChain(caseID, anchors)

	decision := "valid"
	if !report.Valid {
		decision = "broken"
		reason := fmt.Sprintf("chain broken at sequence %d: %s", report.BrokenAt, report.Reason)
		if herr := s.halt(ctx, caseID, reason); herr != nil {
			s.logger.ErrorContext(ctx, "failed to halt sealing", "case_id", caseID, "error", herr)
		}
	}
	s.publishIntegrity(ctx, caseID, audit.EventLedgerChainReport, decision, report.Reason)
	return &report, nil
}

// ListEvidence returns the sealed records of a case in seal order.
func (s *Service) ListEvidence(ctx context.Context, caseID string) ([]*models.EvidenceRecord, error) {
	records, err := s.store.ListRecords(ctx, caseID)
	if err != nil {
		return nil, translate(err, "failed to list evidence")
	}
	return records, nil
}

// ListAnchors returns the case chain in sequence order.
func (s *Service) ListAnchors(ctx context.Context, caseID string) ([]*models.LedgerAnchor, error) {
	anchors, err := s.store.ListAnchors(ctx, caseID)
	if err != nil {
		return nil, translate(err, "failed to list ledger anchors")
	}
	return anchors, nil
}

// HaltReason reports whether sealing is halted for the case and why.
func (s *Service) HaltReason(ctx context.Context, caseID string) (string, bool, error) {
	reason, halted, err := s.store.HaltReason(ctx, caseID)
	if err != nil {
		return "", false, translate(err, "failed to read sealing state")
	}
	return reason, halted, nil
}

// ResumeSealing lifts a halt once the case chain verifies again. The
// resumption is a compliance event attributed to the caller.
func (s *Service) ResumeSealing(ctx context.Context, caseID, reason string) error {
	ctx, span := s.tracer.Start(ctx, "evidence.ResumeSealing", trace.WithAttributes(attribute.String("case_id", caseID)))
	defer span.End()

	if strings.TrimSpace(reason) == "" {
		return s.fail(span, "resume", dErrors.New(dErrors.CodeValidation, "reason is required"))
	}
	_, halted, err := s.store.HaltReason(ctx, caseID)
	if err != nil {
		return s.fail(span, "resume", translate(err, "failed to read sealing state"))
	}
	if !halted {
		return s.fail(span, "resume", dErrors.New(dErrors.CodeConflict, "sealing is not halted for this case"))
	}
	anchors, err := s.store.ListAnchors(ctx, caseID)
	if err != nil {
		return s.fail(span, "resume", translate(err, "failed to load ledger"))
	}
	if report := models.VerifyChain(caseID, anchors); !report.Valid {
		return s.fail(span, "resume", dErrors.New(dErrors.CodeLedgerAnchorConflict,
			fmt.Sprintf("chain still broken at sequence %d", report.BrokenAt)))
	}

	err = s.tx.RunInTx(ctx, caseID, func(ctx context.Context) error {
		if err := s.emit(ctx, caseID, audit.EventSealingResumed, "resumed", reason); err != nil {
			return err
		}
		return s.store.Resume(ctx, caseID)
	})
	if err != nil {
		return s.fail(span, "resume", translate(err, "failed to resume sealing"))
	}
	s.logger.InfoContext(ctx, "sealing resumed", "case_id", caseID, "actor_id", requestcontext.ActorID(ctx))
	return nil
}

func (s *Service) ensureSealing(ctx context.Context, caseID string) error {
	reason, halted, err := s.store.HaltReason(ctx, caseID)
	if err != nil {
		return translate(err, "failed to read sealing state")
	}
	if halted {
		return dErrors.New(dErrors.CodeSealingHalted, "sealing halted for case: "+reason)
	}
	return nil
}

func (s *Service) hash(ctx context.Context, algorithm string, r io.Reader) (digest.Result, error) {
	if r == nil {
		return digest.Result{}, dErrors.New(dErrors.CodeValidation, "content is required")
	}
	start := time.Now()
	res, err := s.hasher.DigestWith(ctx, algorithm, r)
	switch {
	case err == nil:
		s.metrics.ObserveHash(res.Algorithm, time.Since(start).Seconds(), res.Size)
		return res, nil
	case errors.Is(err, digest.ErrTooLarge), errors.Is(err, digest.ErrUnsupportedAlgorithm):
		return digest.Result{}, dErrors.Wrap(err, dErrors.CodeValidation, "content cannot be hashed")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return digest.Result{}, dErrors.Wrap(err, dErrors.CodeTimeout, "hashing did not finish")
	default:
		return digest.Result{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash content")
	}
}

// haltCase records a refused anchor and returns the error the caller sees.
func (s *Service) haltCase(ctx context.Context, caseID, reason string) error {
	s.metrics.IncrementLedgerConflict()
	s.metrics.IncrementSeal("conflict")
	s.logger.ErrorContext(ctx, "ledger anchor conflict; sealing halted",
		"case_id", caseID,
		"reason", reason,
	)
	conflict := dErrors.Wrap(sentinel.ErrChainMismatch, dErrors.CodeLedgerAnchorConflict, reason)
	if err := s.halt(ctx, caseID, reason); err != nil {
		return errors.Join(conflict, translate(err, "failed to halt sealing"))
	}
	return conflict
}

func (s *Service) halt(ctx context.Context, caseID, reason string) error {
	if err := s.store.Halt(ctx, caseID, reason, s.clock()); err != nil {
		return err
	}
	return s.emit(ctx, caseID, audit.EventLedgerConflict, "halted", reason)
}

func (s *Service) emit(ctx context.Context, caseID string, action audit.AuditEvent, decision, reason string) error {
	if s.auditor == nil {
		return nil
	}
	return s.auditor.Emit(ctx, audit.ComplianceEvent{
		Subject:  caseID,
		Action:   action,
		Decision: decision,
		Reason:   reason,
	})
}

func (s *Service) publishIntegrity(ctx context.Context, caseID string, action audit.AuditEvent, decision, reason string) {
	if s.integrity == nil {
		return
	}
	err := s.integrity.Emit(ctx, audit.Event{
		Category:  audit.CategoryIntegrity,
		Timestamp: s.clock(),
		Subject:   caseID,
		Action:    string(action),
		Decision:  decision,
		Reason:    reason,
		RequestID: requestcontext.RequestID(ctx),
		ActorID:   requestcontext.ActorID(ctx),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "integrity audit event dropped", "case_id", caseID, "action", action, "error", err)
	}
}

func orNone(digest string) string {
	if digest == "" {
		return "none"
	}
	return digest
}

func validateRef(caseID, fileName string) error {
	if strings.TrimSpace(caseID) == "" {
		return dErrors.New(dErrors.CodeValidation, "case_id is required")
	}
	if strings.TrimSpace(fileName) == "" {
		return dErrors.New(dErrors.CodeValidation, "file_name is required")
	}
	return nil
}

// translate maps store failures onto domain codes. Domain errors pass through.
func translate(err error, msg string) error {
	switch {
	case err == nil:
		return nil
	case dErrors.CodeOf(err) != "":
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, msg)
	case errors.Is(err, sentinel.ErrChainMismatch):
		return dErrors.Wrap(err, dErrors.CodeLedgerAnchorConflict, msg)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return dErrors.Wrap(err, dErrors.CodeTimeout, msg)
	default:
		return dErrors.Wrap(err, dErrors.CodeStorageUnavailable, msg)
	}
}

func (s *Service) fail(span trace.Span, operation string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.logger.Debug("evidence operation refused", "operation", operation, "code", dErrors.CodeOf(err))
	return err
}
