package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"nyaya/internal/fir/models"
	dErrors "nyaya/pkg/domain-errors"
)

type ProvisionalFIRSuite struct {
	suite.Suite
	t0        time.Time
	informant models.Informant
	incident  models.Incident
}

func TestProvisionalFIRSuite(t *testing.T) {
	suite.Run(t, new(ProvisionalFIRSuite))
}

func (s *ProvisionalFIRSuite) SetupTest() {
	s.t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s.informant = models.Informant{Name: "Asha Verma", Mobile: "+919800000001", ContactVerified: true}
	s.incident = models.Incident{
		Location:    "Lajpat Nagar market",
		Description: "mobile phone snatched",
		StationCode: "DL-SE-014",
	}
}

func (s *ProvisionalFIRSuite) pending() *models.ProvisionalFIR {
	f, err := models.NewProvisionalFIR("EFIR-1", s.informant, s.incident, nil, s.t0)
	s.Require().NoError(err)
	s.Require().NoError(f.ApplySubmission(s.t0))
	s.Require().NoError(f.StartSignatureClock(s.t0))
	return f
}

func (s *ProvisionalFIRSuite) TestConstruction() {
	s.Run("rejects unverified contact", func() {
		inf := s.informant
		inf.ContactVerified = false
		_, err := models.NewProvisionalFIR("EFIR-1", inf, s.incident, nil, s.t0)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInformant))
	})

	s.Run("starts as draft with local jurisdiction", func() {
		f, err := models.NewProvisionalFIR("EFIR-1", s.informant, s.incident, nil, s.t0)
		s.Require().NoError(err)
		s.Equal(models.StatusDraft, f.Status)
		s.Equal(models.JurisdictionLocal, f.JurisdictionType)
		s.Empty(f.NotificationsSent)
	})

	s.Run("submission fixes expiry at 72 hours", func() {
		f := s.pending()
		s.Equal(models.StatusPendingSignature, f.Status)
		s.Equal(s.t0.Add(72*time.Hour), f.ExpiryTime)
	})
}

func (s *ProvisionalFIRSuite) TestSignature() {
	s.Run("accepts signature at the expiry instant", func() {
		f := s.pending()
		s.Require().NoError(f.ApplySignature(models.SignatureAadhaarESign, "ESIGN-1", f.ExpiryTime))
		s.Equal(models.StatusSigned, f.Status)
		s.Require().NotNil(f.Signature)
		s.Equal("ESIGN-1", f.Signature.Reference)
	})

	s.Run("rejects signature one nanosecond late", func() {
		f := s.pending()
		err := f.ApplySignature(models.SignatureAadhaarESign, "ESIGN-1", f.ExpiryTime.Add(time.Nanosecond))
		s.True(dErrors.HasCode(err, dErrors.CodeExpired))
		s.Equal(models.StatusPendingSignature, f.Status)
	})

	s.Run("rejects second signature as finalized", func() {
		f := s.pending()
		s.Require().NoError(f.ApplySignature(models.SignaturePhysical, "PHY-1", s.t0.Add(time.Hour)))
		err := f.ApplySignature(models.SignaturePhysical, "PHY-2", s.t0.Add(2*time.Hour))
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyFinalized))
	})

	s.Run("signing a converted record reports expiry", func() {
		f := s.pending()
		s.Require().NoError(f.ApplyExpiry("GD/2026/DL-SE-014/1", f.ExpiryTime))
		err := f.ApplySignature(models.SignatureAadhaarESign, "ESIGN-1", f.ExpiryTime.Add(time.Hour))
		s.True(dErrors.HasCode(err, dErrors.CodeExpired))
	})

	s.Run("draft cannot be signed", func() {
		f, err := models.NewProvisionalFIR("EFIR-1", s.informant, s.incident, nil, s.t0)
		s.Require().NoError(err)
		err = f.ApplySignature(models.SignatureAadhaarESign, "ESIGN-1", s.t0)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})
}

func (s *ProvisionalFIRSuite) TestExpiry() {
	s.Run("not yet due before deadline", func() {
		f := s.pending()
		err := f.ApplyExpiry("GD-1", f.ExpiryTime.Add(-time.Second))
		s.True(dErrors.HasCode(err, dErrors.CodeNotYetDue))
	})

	s.Run("converts to GD entry at deadline", func() {
		f := s.pending()
		s.Require().NoError(f.ApplyExpiry("GD/2026/DL-SE-014/7", f.ExpiryTime))
		s.Equal(models.StatusConvertedToGD, f.Status)
		s.Equal("GD/2026/DL-SE-014/7", f.GDEntryNumber)
		s.NotEmpty(f.ExpirationReason)
	})

	s.Run("signed record cannot expire", func() {
		f := s.pending()
		s.Require().NoError(f.ApplySignature(models.SignatureStylus, "ST-1", s.t0))
		err := f.ApplyExpiry("GD-1", f.ExpiryTime.Add(time.Hour))
		var te *dErrors.TransitionError
		s.Require().ErrorAs(err, &te)
		s.Equal("SIGNED", te.From)
		s.Equal("EXPIRED", te.To)
	})
}

func (s *ProvisionalFIRSuite) TestPhysicalVisitExemption() {
	visit := func() *models.ProvisionalFIR {
		f := s.pending()
		f.RequiresPhysicalVisit = true
		return f
	}
	late := func(f *models.ProvisionalFIR) time.Time { return f.ExpiryTime.Add(time.Hour) }

	s.Run("never expires automatically", func() {
		f := visit()
		s.False(f.ExemptFromExpiry(f.ExpiryTime))
		s.True(f.ExemptFromExpiry(late(f)))
		err := f.ApplyExpiry("GD-1", late(f))
		s.True(dErrors.HasCode(err, dErrors.CodeExpiryExempt))
		s.Equal(models.StatusPendingSignature, f.Status)
	})

	s.Run("physical signature accepted after the window", func() {
		f := visit()
		s.Require().NoError(f.ApplySignature(models.SignaturePhysical, "VISIT-1", late(f)))
		s.Equal(models.StatusSigned, f.Status)
	})

	s.Run("remote signature still closes with the window", func() {
		f := visit()
		err := f.ApplySignature(models.SignatureAadhaarESign, "ESIGN-1", late(f))
		s.True(dErrors.HasCode(err, dErrors.CodeExpired))
		s.True(dErrors.HasCode(f.CanSign(late(f)), dErrors.CodeExpired))
	})

	s.Run("can still be quashed or transferred", func() {
		f := visit()
		s.Require().NoError(f.ApplyTransfer("DL-SE-020", late(f)))
		g := visit()
		s.Require().NoError(g.ApplyQuash("informant withdrew", late(g)))
	})

	s.Run("ordinary record is not exempt", func() {
		f := s.pending()
		s.False(f.ExemptFromExpiry(late(f)))
	})
}

func (s *ProvisionalFIRSuite) TestTransferAndQuash() {
	s.Run("transfer keeps expiry and marks zero FIR", func() {
		f := s.pending()
		expiry := f.ExpiryTime
		s.Require().NoError(f.ApplyTransfer("DL-NE-003", s.t0.Add(time.Hour)))
		s.Equal(models.StatusTransferred, f.Status)
		s.Equal(models.JurisdictionZero, f.JurisdictionType)
		s.Equal(expiry, f.ExpiryTime)
	})

	s.Run("transfer after deadline reports expiry", func() {
		f := s.pending()
		err := f.ApplyTransfer("DL-NE-003", f.ExpiryTime.Add(time.Minute))
		s.True(dErrors.HasCode(err, dErrors.CodeExpired))
	})

	s.Run("quash from draft", func() {
		f, err := models.NewProvisionalFIR("EFIR-1", s.informant, s.incident, nil, s.t0)
		s.Require().NoError(err)
		s.Require().NoError(f.ApplyQuash("duplicate complaint", s.t0))
		s.Equal(models.StatusQuashed, f.Status)
	})

	s.Run("quash after registration rejected", func() {
		f := s.pending()
		s.Require().NoError(f.ApplySignature(models.SignatureStylus, "ST-1", s.t0))
		s.Require().NoError(f.ApplyRegistration("FIR/2026/DL-SE-014/1", s.t0))
		err := f.ApplyQuash("withdrawn", s.t0)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})
}

func (s *ProvisionalFIRSuite) TestNotifications() {
	f := s.pending()
	s.True(f.MarkNotified(models.AlertCritical))
	s.True(f.MarkNotified(models.AlertWarning))
	s.False(f.MarkNotified(models.AlertCritical))
	s.Equal([]models.AlertLevel{models.AlertWarning, models.AlertCritical}, f.NotificationsSent)
	s.Equal(models.AlertCritical, f.HighestNotified())
}

func (s *ProvisionalFIRSuite) TestView() {
	f := s.pending()
	v := f.View(s.t0.Add(50 * time.Hour))
	s.Equal(models.AlertWarning, v.AlertLevel)
	s.Equal(int64(22*3600), v.RemainingSeconds)

	v = f.View(s.t0.Add(80 * time.Hour))
	s.Equal(models.AlertExpired, v.AlertLevel)
	s.Zero(v.RemainingSeconds)
}

func TestClassifyRemaining(t *testing.T) {
	cases := []struct {
		remaining time.Duration
		want      models.AlertLevel
	}{
		{72 * time.Hour, models.AlertNormal},
		{24*time.Hour + time.Second, models.AlertNormal},
		{24 * time.Hour, models.AlertWarning},
		{12*time.Hour + time.Second, models.AlertWarning},
		{12 * time.Hour, models.AlertCritical},
		{time.Second, models.AlertCritical},
		{0, models.AlertExpired},
		{-time.Hour, models.AlertExpired},
	}
	for _, tc := range cases {
		if got := models.ClassifyRemaining(tc.remaining); got != tc.want {
			t.Errorf("ClassifyRemaining(%s) = %s, want %s", tc.remaining, got, tc.want)
		}
	}
}

func TestChargeSheetPeriod(t *testing.T) {
	bailable := []models.Section{{Code: "BNS", Section: "303(2)", Bailable: true}}
	serious := append(bailable, models.Section{Code: "BNS", Section: "309(4)", Bailable: false})
	if got := models.ChargeSheetPeriod(bailable); got != models.ChargeSheetWindow {
		t.Errorf("bailable period = %s", got)
	}
	if got := models.ChargeSheetPeriod(serious); got != models.ChargeSheetWindowSerious {
		t.Errorf("non-bailable period = %s", got)
	}
}

func TestStatusTable(t *testing.T) {
	terminal := []models.Status{models.StatusRegistered, models.StatusTransferred, models.StatusConvertedToGD, models.StatusQuashed}
	for _, st := range terminal {
		if !st.IsTerminal() {
			t.Errorf("%s should be terminal", st)
		}
	}
	if models.StatusSigned.CanTransitionTo(models.StatusExpired) {
		t.Error("SIGNED must not reach EXPIRED")
	}
	if models.StatusExpired.CanTransitionTo(models.StatusSigned) {
		t.Error("EXPIRED must not reach SIGNED")
	}
}
