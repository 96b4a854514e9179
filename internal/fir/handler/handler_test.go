package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"nyaya/internal/fir/handler/mocks"
	"nyaya/internal/fir/models"
	dErrors "nyaya/pkg/domain-errors"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service
type HandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	h, err := New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	s.Require().NoError(err)
	s.router = chi.NewRouter()
	h.Register(s.router)
}

func (s *HandlerSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		s.Require().NoError(json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

const validSubmit = `{
  "informant": {"name": "Asha", "mobile": "+919800000001", "contact_verified": true, "is_vulnerable": true, "vulnerable_category": "WOMAN"},
  "incident": {"location": "MG Road", "description": "phone snatched", "station_code": "KA-BLR-042"},
  "sections": [{"code": "BNS", "section": "304", "bailable": false}]
}`

func (s *HandlerSuite) TestSubmit() {
	s.Run("created with location header", func() {
		submitted := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		s.service.EXPECT().Submit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, inf models.Informant, inc models.Incident, secs []models.Section) (*models.ProvisionalFIR, error) {
				assert.Equal(s.T(), models.VulnerableWoman, inf.VulnerableCategory)
				assert.Equal(s.T(), "KA-BLR-042", inc.StationCode)
				assert.Len(s.T(), secs, 1)
				return &models.ProvisionalFIR{
					TempID:                "EFIR-1",
					Status:                models.StatusPendingSignature,
					SubmissionTime:        submitted,
					ExpiryTime:            submitted.Add(models.SignatureWindow),
					JurisdictionType:      models.JurisdictionLocal,
					RequiresPhysicalVisit: true,
				}, nil
			})

		w := s.do(http.MethodPost, "/v1/firs", validSubmit)
		s.Equal(http.StatusCreated, w.Code)
		s.Equal("/v1/firs/EFIR-1", w.Header().Get("Location"))
		body := decode(s.T(), w)
		s.Equal("EFIR-1", body["temp_id"])
		s.Equal(true, body["requires_physical_visit"])
		s.Equal("2026-03-04T10:00:00Z", body["expiry_time"])
	})

	s.Run("schema violations never reach the service", func() {
		for name, body := range map[string]string{
			"missing incident":   `{"informant": {"name": "Asha"}}`,
			"unknown field":      `{"informant": {"name": "Asha"}, "incident": {"location": "x", "description": "y", "station_code": "ABC"}, "priority": 1}`,
			"bad station code":   `{"informant": {"name": "Asha"}, "incident": {"location": "x", "description": "y", "station_code": "a"}}`,
			"bad vulnerable tag": `{"informant": {"name": "Asha", "vulnerable_category": "MINOR"}, "incident": {"location": "x", "description": "y", "station_code": "ABC"}}`,
		} {
			w := s.do(http.MethodPost, "/v1/firs", body)
			s.Equal(http.StatusBadRequest, w.Code, name)
			s.Equal(string(dErrors.CodeValidation), decode(s.T(), w)["error"], name)
		}
	})

	s.Run("malformed json", func() {
		w := s.do(http.MethodPost, "/v1/firs", `{"informant":`)
		s.Equal(http.StatusBadRequest, w.Code)
		s.Equal(string(dErrors.CodeBadRequest), decode(s.T(), w)["error"])
	})

	s.Run("domain rejection is mapped", func() {
		s.service.EXPECT().Submit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeInvalidInformant, "informant contact must be verified before submission"))
		w := s.do(http.MethodPost, "/v1/firs", validSubmit)
		s.Equal(http.StatusBadRequest, w.Code)
		s.Equal(string(dErrors.CodeInvalidInformant), decode(s.T(), w)["error"])
	})
}

func (s *HandlerSuite) TestGetStatus() {
	s.service.EXPECT().GetStatus(gomock.Any(), "EFIR-1").Return(&models.StatusView{
		TempID:           "EFIR-1",
		Status:           models.StatusPendingSignature,
		RemainingSeconds: 3600,
		AlertLevel:       models.AlertCritical,
	}, nil)
	w := s.do(http.MethodGet, "/v1/firs/EFIR-1", nil)
	s.Equal(http.StatusOK, w.Code)
	body := decode(s.T(), w)
	s.Equal(float64(3600), body["remaining_seconds"])
	s.Equal(string(models.AlertCritical), body["alert_level"])

	s.service.EXPECT().GetStatus(gomock.Any(), "missing").Return(nil, dErrors.New(dErrors.CodeNotFound, "e-FIR not found"))
	w = s.do(http.MethodGet, "/v1/firs/missing", nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlerSuite) TestSign() {
	registered := &models.RegisteredFIR{FIRNumber: "FIR/KA-BLR-042/2026/000001", TempID: "EFIR-1"}

	s.Run("direct reference", func() {
		s.service.EXPECT().Sign(gomock.Any(), "EFIR-1", models.SignatureStylus, "pad-77").Return(registered, nil)
		w := s.do(http.MethodPost, "/v1/firs/EFIR-1/sign", map[string]string{"method": "STYLUS_SIGNATURE", "reference": " pad-77 "})
		s.Equal(http.StatusOK, w.Code)
		s.Equal(registered.FIRNumber, decode(s.T(), w)["fir_number"])
	})

	s.Run("challenge", func() {
		s.service.EXPECT().SignWithChallenge(gomock.Any(), "EFIR-1", models.SignatureAadhaarESign, "chal-1").Return(registered, nil)
		w := s.do(http.MethodPost, "/v1/firs/EFIR-1/sign", map[string]string{"method": "AADHAAR_ESIGN", "challenge_ref": "chal-1"})
		s.Equal(http.StatusOK, w.Code)
	})

	s.Run("reference and challenge together", func() {
		w := s.do(http.MethodPost, "/v1/firs/EFIR-1/sign", map[string]string{"method": "AADHAAR_ESIGN", "challenge_ref": "c", "reference": "r"})
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("unknown method", func() {
		w := s.do(http.MethodPost, "/v1/firs/EFIR-1/sign", map[string]string{"method": "THUMBPRINT", "reference": "r"})
		s.Equal(http.StatusBadRequest, w.Code)
		s.Equal(string(dErrors.CodeInvalidInput), decode(s.T(), w)["error"])
	})

	s.Run("past deadline", func() {
		s.service.EXPECT().Sign(gomock.Any(), "EFIR-1", models.SignaturePhysical, "ink").
			Return(nil, dErrors.New(dErrors.CodeExpired, "signature window has closed"))
		w := s.do(http.MethodPost, "/v1/firs/EFIR-1/sign", map[string]string{"method": "PHYSICAL_SIGNATURE", "reference": "ink"})
		s.Equal(http.StatusGone, w.Code)
	})
}

func (s *HandlerSuite) TestChallengeTransferQuash() {
	s.service.EXPECT().RequestSignature(gomock.Any(), "EFIR-1").Return("chal-9", nil)
	w := s.do(http.MethodPost, "/v1/firs/EFIR-1/signature-challenge", nil)
	s.Equal(http.StatusCreated, w.Code)
	s.Equal("chal-9", decode(s.T(), w)["challenge_ref"])

	s.service.EXPECT().TransferJurisdiction(gomock.Any(), "EFIR-1", "KA-MYS-007").Return(nil)
	w = s.do(http.MethodPost, "/v1/firs/EFIR-1/transfer", map[string]string{"correct_station_code": "KA-MYS-007"})
	s.Equal(http.StatusNoContent, w.Code)

	s.service.EXPECT().Quash(gomock.Any(), "EFIR-1", "duplicate complaint").
		Return(dErrors.NewInvalidTransition(string(models.StatusSigned), string(models.StatusQuashed)))
	w = s.do(http.MethodPost, "/v1/firs/EFIR-1/quash", map[string]string{"reason": "duplicate complaint"})
	s.Equal(http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/v1/firs/EFIR-1/quash", map[string]string{"why": "x"})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerSuite) TestListPending() {
	expiry := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	s.service.EXPECT().ListPending(gomock.Any(), 5).Return([]*models.ProvisionalFIR{{
		TempID:            "EFIR-1",
		FilingStationCode: "KA-BLR-042",
		ExpiryTime:        expiry,
		Informant:         models.Informant{Name: "Asha", Mobile: "+919800000001"},
	}}, nil)
	w := s.do(http.MethodGet, "/v1/firs/pending?limit=5", nil)
	s.Equal(http.StatusOK, w.Code)
	s.NotContains(w.Body.String(), "Asha")
	s.Contains(w.Body.String(), "KA-BLR-042")

	w = s.do(http.MethodGet, "/v1/firs/pending?limit=0", nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func TestAuthGuardsEveryRoute(t *testing.T) {
	ctrl := gomock.NewController(t)
	deny := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
	}
	h, err := New(mocks.NewMockService(ctrl), nil, deny)
	require.NoError(t, err)
	r := chi.NewRouter()
	h.Register(r)

	for _, path := range []string{"/v1/firs/EFIR-1", "/v1/firs/pending", "/v1/firs/EFIR-1/registration"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestSubmitGuardWrapsOnlySubmission(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)
	throttle := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})
	}
	h, err := New(svc, nil, nil, WithSubmitGuard(throttle), WithSubmitGuard(nil))
	require.NoError(t, err)
	r := chi.NewRouter()
	h.Register(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/firs", bytes.NewBufferString(`{}`)))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	svc.EXPECT().GetStatus(gomock.Any(), "EFIR-1").Return(&models.StatusView{TempID: "EFIR-1", Status: models.StatusPendingSignature}, nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/firs/EFIR-1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
