// Package handler exposes evidence sealing, verification and the custody
// ledger over HTTP. Evidence bytes travel as the raw request body.
package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"nyaya/internal/evidence/models"
	dErrors "nyaya/pkg/domain-errors"
	"nyaya/pkg/platform/httputil"
	"nyaya/pkg/requestcontext"
)

// Service defines the evidence operations exposed over HTTP.
type Service interface {
	Seal(ctx context.Context, caseID, fileName, sealerID string, content io.Reader) (*models.EvidenceRecord, error)
	Verify(ctx context.Context, caseID, fileName string, candidate io.Reader, expectedDigest string) (*models.VerificationResult, error)
	VerifyChain(ctx context.Context, caseID string) (*models.ChainReport, error)
	ListEvidence(ctx context.Context, caseID string) ([]*models.EvidenceRecord, error)
	ListAnchors(ctx context.Context, caseID string) ([]*models.LedgerAnchor, error)
	HaltReason(ctx context.Context, caseID string) (string, bool, error)
	ResumeSealing(ctx context.Context, caseID, reason string) error
}

// Handler serves the evidence endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
	auth    func(http.Handler) http.Handler
	admin   func(http.Handler) http.Handler
}

// New creates a Handler. auth guards every route and admin additionally
// guards resume-sealing; either may be nil.
func New(service Service, logger *slog.Logger, auth, admin func(http.Handler) http.Handler) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, auth: auth, admin: admin}
}

// Register mounts the evidence routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Route("/v1/cases/{caseID}", func(r chi.Router) {
		if h.auth != nil {
			r.Use(h.auth)
		}
		r.Post("/evidence", h.handleSeal)
		r.Get("/evidence", h.handleList)
		r.Post("/evidence/verify", h.handleVerify)
		r.Get("/ledger", h.handleLedger)
		r.Group(func(r chi.Router) {
			if h.admin != nil {
				r.Use(h.admin)
			}
			r.Post("/resume-sealing", h.handleResume)
		})
	})
}

func (h *Handler) handleSeal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	rec, err := h.service.Seal(ctx, chi.URLParam(r, "caseID"), q.Get("file_name"), q.Get("sealer_id"), r.Body)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	h.logger.InfoContext(ctx, "evidence sealed",
		"request_id", requestcontext.RequestID(ctx),
		"case_id", rec.CaseID,
		"evidence_id", rec.ID,
		"size_bytes", rec.SizeBytes,
	)
	httputil.WriteJSON(w, http.StatusCreated, rec)
}

// handleVerify always answers 200 once hashing succeeded; a mismatch is
// carried in the result's admissibility.
func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	res, err := h.service.Verify(ctx, chi.URLParam(r, "caseID"), q.Get("file_name"), r.Body, q.Get("expected_digest"))
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.ListEvidence(r.Context(), chi.URLParam(r, "caseID"))
	if err != nil {
		h.writeError(r.Context(), w, err)
		return
	}
	if records == nil {
		records = []*models.EvidenceRecord{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"evidence": records})
}

type ledgerResponse struct {
	Anchors    []*models.LedgerAnchor `json:"anchors"`
	Chain      *models.ChainReport    `json:"chain"`
	Halted     bool                   `json:"halted"`
	HaltReason string                 `json:"halt_reason,omitempty"`
}

// handleLedger re-verifies the chain on every read, so a tampered ledger
// halts sealing as soon as anyone looks at it.
func (h *Handler) handleLedger(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caseID := chi.URLParam(r, "caseID")
	anchors, err := h.service.ListAnchors(ctx, caseID)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	report, err := h.service.VerifyChain(ctx, caseID)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	reason, halted, err := h.service.HaltReason(ctx, caseID)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	if anchors == nil {
		anchors = []*models.LedgerAnchor{}
	}
	httputil.WriteJSON(w, http.StatusOK, ledgerResponse{
		Anchors:    anchors,
		Chain:      report,
		Halted:     halted,
		HaltReason: reason,
	})
}

type resumeRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) handleResume(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req resumeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(ctx, w, err)
		return
	}
	caseID := chi.URLParam(r, "caseID")
	if err := h.service.ResumeSealing(ctx, caseID, req.Reason); err != nil {
		h.writeError(ctx, w, err)
		return
	}
	h.logger.WarnContext(ctx, "evidence sealing resumed",
		"request_id", requestcontext.RequestID(ctx),
		"case_id", caseID,
		"reason", req.Reason,
	)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := dErrors.ToHTTPStatus(code)
	attrs := []any{
		"request_id", requestcontext.RequestID(ctx),
		"code", code,
		"error", err.Error(),
	}
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, "evidence request failed", attrs...)
	} else {
		h.logger.WarnContext(ctx, "evidence request rejected", attrs...)
	}
	httputil.WriteError(w, err)
}
