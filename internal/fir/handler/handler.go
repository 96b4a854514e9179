package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"nyaya/internal/fir/models"
	dErrors "nyaya/pkg/domain-errors"
	"nyaya/pkg/platform/httputil"
	"nyaya/pkg/requestcontext"
)

// maxSubmitBytes bounds an intake request body.
const maxSubmitBytes = 256 << 10

// Service defines the lifecycle operations exposed over HTTP.
type Service interface {
	Submit(ctx context.Context, informant models.Informant, incident models.Incident, sections []models.Section) (*models.ProvisionalFIR, error)
	GetStatus(ctx context.Context, tempID string) (*models.StatusView, error)
	GetRegistered(ctx context.Context, tempID string) (*models.RegisteredFIR, error)
	ListPending(ctx context.Context, limit int) ([]*models.ProvisionalFIR, error)
	RequestSignature(ctx context.Context, tempID string) (string, error)
	Sign(ctx context.Context, tempID string, method models.SignatureMethod, reference string) (*models.RegisteredFIR, error)
	SignWithChallenge(ctx context.Context, tempID string, method models.SignatureMethod, challengeRef string) (*models.RegisteredFIR, error)
	TransferJurisdiction(ctx context.Context, tempID, correctStationCode string) error
	Quash(ctx context.Context, tempID, reason string) error
}

// Handler serves the e-FIR lifecycle endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
	auth    func(http.Handler) http.Handler
	schema  *jsonschema.Schema
	// submitGuards wrap only the submission route.
	submitGuards []func(http.Handler) http.Handler
}

type Option func(*Handler)

// WithSubmitGuard adds middleware, such as a per-IP rate limit, to the
// submission route only.
func WithSubmitGuard(mw func(http.Handler) http.Handler) Option {
	return func(h *Handler) {
		if mw != nil {
			h.submitGuards = append(h.submitGuards, mw)
		}
	}
}

// New creates a Handler. auth guards every route; pass nil to leave the
// routes open.
func New(service Service, logger *slog.Logger, auth func(http.Handler) http.Handler, opts ...Option) (*Handler, error) {
	schema, err := compileSubmitSchema()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{logger: logger, service: service, auth: auth, schema: schema}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Register mounts the lifecycle routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Route("/v1/firs", func(r chi.Router) {
		if h.auth != nil {
			r.Use(h.auth)
		}
		r.With(h.submitGuards...).Post("/", h.handleSubmit)
		r.Get("/pending", h.handleListPending)
		r.Get("/{id}", h.handleGetStatus)
		r.Get("/{id}/registration", h.handleGetRegistration)
		r.Post("/{id}/signature-challenge", h.handleRequestSignature)
		r.Post("/{id}/sign", h.handleSign)
		r.Post("/{id}/transfer", h.handleTransfer)
		r.Post("/{id}/quash", h.handleQuash)
	})
}

type submitRequest struct {
	Informant models.Informant `json:"informant"`
	Incident  models.Incident  `json:"incident"`
	Sections  []models.Section `json:"sections"`
}

type submitResponse struct {
	TempID                string                  `json:"temp_id"`
	Status                models.Status           `json:"status"`
	SubmissionTime        time.Time               `json:"submission_time"`
	ExpiryTime            time.Time               `json:"expiry_time"`
	JurisdictionType      models.JurisdictionType `json:"jurisdiction_type"`
	CorrectStationCode    string                  `json:"correct_station_code,omitempty"`
	RequiresPhysicalVisit bool                    `json:"requires_physical_visit"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxSubmitBytes+1))
	if err != nil {
		h.writeError(ctx, w, dErrors.Wrap(err, dErrors.CodeBadRequest, "failed to read request body"))
		return
	}
	if len(raw) > maxSubmitBytes {
		h.writeError(ctx, w, dErrors.New(dErrors.CodeBadRequest, "request body too large"))
		return
	}
	if err := validateSubmit(h.schema, raw); err != nil {
		h.writeError(ctx, w, err)
		return
	}
	var req submitRequest
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		h.writeError(ctx, w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	f, err := h.service.Submit(ctx, req.Informant, req.Incident, req.Sections)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	w.Header().Set("Location", "/v1/firs/"+f.TempID)
	httputil.WriteJSON(w, http.StatusCreated, submitResponse{
		TempID:                f.TempID,
		Status:                f.Status,
		SubmissionTime:        f.SubmissionTime,
		ExpiryTime:            f.ExpiryTime,
		JurisdictionType:      f.JurisdictionType,
		CorrectStationCode:    f.CorrectStationCode,
		RequiresPhysicalVisit: f.RequiresPhysicalVisit,
	})
}

func (h *Handler) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.GetStatus(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(r.Context(), w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) handleGetRegistration(w http.ResponseWriter, r *http.Request) {
	reg, err := h.service.GetRegistered(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(r.Context(), w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, reg)
}

type pendingItem struct {
	TempID                string    `json:"temp_id"`
	StationCode           string    `json:"station_code"`
	ExpiryTime            time.Time `json:"expiry_time"`
	RequiresPhysicalVisit bool      `json:"requires_physical_visit"`
}

// handleListPending omits informant details; the list is a work queue.
func (h *Handler) handleListPending(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 1000 {
			h.writeError(r.Context(), w, dErrors.New(dErrors.CodeBadRequest, "limit must be between 1 and 1000"))
			return
		}
		limit = n
	}
	list, err := h.service.ListPending(r.Context(), limit)
	if err != nil {
		h.writeError(r.Context(), w, err)
		return
	}
	items := make([]pendingItem, 0, len(list))
	for _, f := range list {
		items = append(items, pendingItem{
			TempID:                f.TempID,
			StationCode:           f.FilingStationCode,
			ExpiryTime:            f.ExpiryTime,
			RequiresPhysicalVisit: f.RequiresPhysicalVisit,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"pending": items})
}

func (h *Handler) handleRequestSignature(w http.ResponseWriter, r *http.Request) {
	challenge, err := h.service.RequestSignature(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(r.Context(), w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]string{"challenge_ref": challenge})
}

type signRequest struct {
	Method       string `json:"method"`
	Reference    string `json:"reference,omitempty"`
	ChallengeRef string `json:"challenge_ref,omitempty"`
}

func (h *Handler) handleSign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req signRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(ctx, w, err)
		return
	}
	method, err := models.ParseSignatureMethod(req.Method)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	id := chi.URLParam(r, "id")
	var reg *models.RegisteredFIR
	switch {
	case req.ChallengeRef != "" && req.Reference != "":
		h.writeError(ctx, w, dErrors.New(dErrors.CodeBadRequest, "reference and challenge_ref are mutually exclusive"))
		return
	case req.ChallengeRef != "":
		reg, err = h.service.SignWithChallenge(ctx, id, method, req.ChallengeRef)
	default:
		reg, err = h.service.Sign(ctx, id, method, strings.TrimSpace(req.Reference))
	}
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, reg)
}

type transferRequest struct {
	CorrectStationCode string `json:"correct_station_code"`
}

func (h *Handler) handleTransfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req transferRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(ctx, w, err)
		return
	}
	if err := h.service.TransferJurisdiction(ctx, chi.URLParam(r, "id"), req.CorrectStationCode); err != nil {
		h.writeError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type quashRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) handleQuash(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req quashRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(ctx, w, err)
		return
	}
	if err := h.service.Quash(ctx, chi.URLParam(r, "id"), req.Reason); err != nil {
		h.writeError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeError logs at warn for client errors and error for everything else.
func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := dErrors.ToHTTPStatus(code)
	attrs := []any{
		"request_id", requestcontext.RequestID(ctx),
		"code", code,
		"error", err.Error(),
	}
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, "e-FIR request failed", attrs...)
	} else {
		h.logger.WarnContext(ctx, "e-FIR request rejected", attrs...)
	}
	httputil.WriteError(w, err)
}
