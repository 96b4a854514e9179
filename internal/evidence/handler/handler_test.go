package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	digest "nyaya/internal/evidence/hash"
	"nyaya/internal/evidence/models"
	"nyaya/internal/evidence/service"
	"nyaya/internal/evidence/store"
	"nyaya/internal/platform/middleware"
	dErrors "nyaya/pkg/domain-errors"
	"nyaya/pkg/platform/audit/publishers/compliance"
	auditmemory "nyaya/pkg/platform/audit/store/memory"
	"nyaya/pkg/platform/clock"
)

const adminToken = "resume-secret"

// HandlerSuite drives the routes end to end over the in-memory store.
type HandlerSuite struct {
	suite.Suite
	clock  *clock.Fake
	router chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.clock = clock.NewFake(time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC))
	engine, err := digest.New(digest.SHA256, digest.WithMaxBytes(1<<20))
	s.Require().NoError(err)
	svc, err := service.New(store.NewInMemory(), engine,
		service.WithClock(s.clock.Clock()),
		service.WithLogger(logger),
		service.WithAuditPublisher(compliance.New(auditmemory.NewInMemoryStore())),
	)
	s.Require().NoError(err)

	s.router = chi.NewRouter()
	New(svc, logger, middleware.TrustOfficerHeader, middleware.RequireAdminToken(adminToken, logger)).Register(s.router)
}

func (s *HandlerSuite) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(middleware.OfficerHeader, "IO-4411")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlerSuite) sealPhoto() models.EvidenceRecord {
	w := s.do(http.MethodPost, "/v1/cases/CASE-1/evidence?file_name=scene.jpg", "jpeg bytes", nil)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var rec models.EvidenceRecord
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &rec))
	return rec
}

func (s *HandlerSuite) TestSealAndVerify() {
	rec := s.sealPhoto()
	s.Equal("IO-4411", rec.SealerID)
	s.Equal(digest.SHA256, rec.Algorithm)
	s.Len(rec.SealedDigest, 64)

	var res models.VerificationResult
	w := s.do(http.MethodPost, "/v1/cases/CASE-1/evidence/verify?file_name=scene.jpg", "jpeg bytes", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res))
	s.True(res.IsMatch)
	s.Equal(models.AdmissibleIntegrityConfirmed, res.Admissibility)

	w = s.do(http.MethodPost, "/v1/cases/CASE-1/evidence/verify?file_name=scene.jpg", "jpeg bytez", nil)
	s.Require().Equal(http.StatusOK, w.Code, "a mismatch is a result, not a failure")
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res))
	s.False(res.IsMatch)
	s.Equal(models.IntegrityFlaggedForReview, res.Admissibility)
	s.Equal(rec.SealedDigest, res.SealedDigest)
}

func (s *HandlerSuite) TestSealRejections() {
	s.sealPhoto()

	w := s.do(http.MethodPost, "/v1/cases/CASE-1/evidence?file_name=scene.jpg", "other", nil)
	s.Equal(http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/v1/cases/CASE-1/evidence", "no name", nil)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/v1/cases/CASE-1/evidence?file_name=huge.bin", strings.Repeat("x", 1<<20+1), nil)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/v1/cases/CASE-1/evidence/verify?file_name=unknown.jpg", "x", nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlerSuite) TestListAndLedger() {
	s.sealPhoto()
	s.clock.Advance(time.Minute)
	w := s.do(http.MethodPost, "/v1/cases/CASE-1/evidence?file_name=cctv.mp4", "video bytes", nil)
	s.Require().Equal(http.StatusCreated, w.Code)

	w = s.do(http.MethodGet, "/v1/cases/CASE-1/evidence", "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var list struct {
		Evidence []models.EvidenceRecord `json:"evidence"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &list))
	s.Len(list.Evidence, 2)

	w = s.do(http.MethodGet, "/v1/cases/CASE-1/ledger", "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var ledger ledgerResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &ledger))
	s.Len(ledger.Anchors, 2)
	s.True(ledger.Chain.Valid)
	s.Equal(2, ledger.Chain.Length)
	s.False(ledger.Halted)
	s.Equal(ledger.Anchors[0].AnchorDigest, ledger.Anchors[1].PreviousAnchorDigest)

	w = s.do(http.MethodGet, "/v1/cases/EMPTY/ledger", "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"anchors":[]`)
}

func (s *HandlerSuite) TestResumeSealingRequiresAdmin() {
	body := `{"reason":"ledger restored from backup"}`

	w := s.do(http.MethodPost, "/v1/cases/CASE-1/resume-sealing", body, nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/v1/cases/CASE-1/resume-sealing", body, map[string]string{"X-Admin-Token": "wrong"})
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/v1/cases/CASE-1/resume-sealing", body, map[string]string{"X-Admin-Token": adminToken})
	s.Equal(http.StatusConflict, w.Code, "case is not halted")
	var errResp map[string]string
	s.Require().NoError(json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(&errResp))
	s.Equal(string(dErrors.CodeConflict), errResp["error"])
}
