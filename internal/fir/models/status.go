package models

import (
	"encoding/json"

	dErrors "nyaya/pkg/domain-errors"
)

// Status is the closed set of lifecycle states for a provisional e-FIR.
type Status string

const (
	StatusDraft                   Status = "DRAFT"
	StatusSubmittedElectronically Status = "SUBMITTED_ELECTRONICALLY"
	StatusPendingSignature        Status = "PENDING_SIGNATURE"
	StatusSigned                  Status = "SIGNED"
	StatusRegistered              Status = "REGISTERED"
	StatusTransferred             Status = "TRANSFERRED"
	StatusExpired                 Status = "EXPIRED"
	StatusConvertedToGD           Status = "CONVERTED_TO_GD"
	StatusQuashed                 Status = "QUASHED"
)

// transitions is the single source of truth for legal status changes.
// A status with no entry has no outgoing edges.
var transitions = map[Status][]Status{
	StatusDraft:                   {StatusSubmittedElectronically, StatusQuashed},
	StatusSubmittedElectronically: {StatusPendingSignature, StatusQuashed},
	StatusPendingSignature:        {StatusSigned, StatusExpired, StatusTransferred, StatusQuashed},
	StatusSigned:                  {StatusRegistered},
	StatusExpired:                 {StatusConvertedToGD},
}

var allStatuses = map[Status]bool{
	StatusDraft:                   true,
	StatusSubmittedElectronically: true,
	StatusPendingSignature:        true,
	StatusSigned:                  true,
	StatusRegistered:              true,
	StatusTransferred:             true,
	StatusExpired:                 true,
	StatusConvertedToGD:           true,
	StatusQuashed:                 true,
}

// ParseStatus constructs a Status from stored or external input.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown status: "+s)
	}
	return st, nil
}

// IsValid reports whether s is one of the lifecycle states.
func (s Status) IsValid() bool {
	return allStatuses[s]
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsOpen reports whether the record is still before its signature outcome.
// Only open records accept quash; only PENDING_SIGNATURE runs the clock.
func (s Status) IsOpen() bool {
	switch s {
	case StatusDraft, StatusSubmittedElectronically, StatusPendingSignature:
		return true
	default:
		return false
	}
}

// IsFinalized reports whether a signature outcome has been decided.
// SIGNED and EXPIRED still have one automatic follow-up edge but accept no
// caller-initiated transition.
func (s Status) IsFinalized() bool {
	return s.IsValid() && !s.IsOpen()
}

// IsTerminal reports whether s has no outgoing edges at all.
func (s Status) IsTerminal() bool {
	return s.IsValid() && len(transitions[s]) == 0
}

func (s Status) String() string {
	return string(s)
}

// UnmarshalJSON rejects unknown states at decode time.
func (s *Status) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// JurisdictionType records whether the filing station holds jurisdiction.
type JurisdictionType string

const (
	JurisdictionLocal JurisdictionType = "JURISDICTIONAL"
	JurisdictionZero  JurisdictionType = "ZERO"
)

// SignatureMethod is how the informant authenticated the e-FIR.
type SignatureMethod string

const (
	SignatureAadhaarESign SignatureMethod = "AADHAAR_ESIGN"
	SignaturePhysical     SignatureMethod = "PHYSICAL_SIGNATURE"
	SignatureStylus       SignatureMethod = "STYLUS_SIGNATURE"
	SignatureVoiceConsent SignatureMethod = "VOICE_CONSENT"
)

var validSignatureMethods = map[SignatureMethod]bool{
	SignatureAadhaarESign: true,
	SignaturePhysical:     true,
	SignatureStylus:       true,
	SignatureVoiceConsent: true,
}

// ParseSignatureMethod constructs a SignatureMethod from external input.
func ParseSignatureMethod(s string) (SignatureMethod, error) {
	m := SignatureMethod(s)
	if !validSignatureMethods[m] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unsupported signature method: "+s)
	}
	return m, nil
}

// InvestigationStatus tracks a registered FIR after registration.
type InvestigationStatus string

const (
	InvestigationPending          InvestigationStatus = "PENDING"
	InvestigationInProgress       InvestigationStatus = "IN_PROGRESS"
	InvestigationChargeSheetFiled InvestigationStatus = "CHARGE_SHEET_FILED"
	InvestigationClosed           InvestigationStatus = "CLOSED"
)
