package models

import (
	"sort"
	"strings"
	"time"

	dErrors "nyaya/pkg/domain-errors"
)

// SignatureWindow is the statutory period an informant has to sign an e-FIR.
const SignatureWindow = 72 * time.Hour

const (
	// ChargeSheetWindow applies when every invoked section is bailable.
	ChargeSheetWindow = 60 * 24 * time.Hour
	// ChargeSheetWindowSerious applies when any invoked section is non-bailable.
	ChargeSheetWindowSerious = 90 * 24 * time.Hour
)

// VulnerableCategory narrows why an informant is treated as vulnerable.
type VulnerableCategory string

const (
	VulnerableWoman         VulnerableCategory = "WOMAN"
	VulnerableChild         VulnerableCategory = "CHILD"
	VulnerableDisabled      VulnerableCategory = "DISABLED"
	VulnerableSeniorCitizen VulnerableCategory = "SENIOR_CITIZEN"
)

// Informant is the person filing the e-FIR.
type Informant struct {
	Name               string             `json:"name"`
	Mobile             string             `json:"mobile"`
	Email              string             `json:"email,omitempty"`
	Address            string             `json:"address,omitempty"`
	IsVulnerable       bool               `json:"is_vulnerable"`
	VulnerableCategory VulnerableCategory `json:"vulnerable_category,omitempty"`
	ContactVerified    bool               `json:"contact_verified"`
}

// Incident describes what happened and where it was reported.
type Incident struct {
	Location    string    `json:"location"`
	District    string    `json:"district,omitempty"`
	State       string    `json:"state,omitempty"`
	Description string    `json:"description"`
	OccurredAt  time.Time `json:"occurred_at"`
	ReportedAt  time.Time `json:"reported_at"`
	StationCode string    `json:"station_code"`
}

// Section is a statute reference invoked by the complaint. Informational only.
type Section struct {
	Code        string `json:"code"`
	Section     string `json:"section"`
	Description string `json:"description,omitempty"`
	Cognizable  bool   `json:"cognizable"`
	Bailable    bool   `json:"bailable"`
}

// Signature is present only once the informant has signed.
type Signature struct {
	Method    SignatureMethod `json:"method"`
	Reference string          `json:"reference"`
	SignedAt  time.Time       `json:"signed_at"`
}

// ProvisionalFIR is the aggregate root for an e-FIR awaiting signature.
//
// Invariants:
//   - ExpiryTime == SubmissionTime + SignatureWindow, set once at submission
//   - Status changes only along the transition table in status.go
//   - Signature is set iff the record reached SIGNED
//   - NotificationsSent only grows
//   - RequiresPhysicalVisit is frozen at creation
//
// Once a RegisteredFIR exists the provisional record is read-only history.
type ProvisionalFIR struct {
	TempID                string           `json:"temp_id"`
	Status                Status           `json:"status"`
	SubmissionTime        time.Time        `json:"submission_time"`
	ExpiryTime            time.Time        `json:"expiry_time"`
	Informant             Informant        `json:"informant"`
	Incident              Incident         `json:"incident"`
	Sections              []Section        `json:"sections"`
	JurisdictionType      JurisdictionType `json:"jurisdiction_type"`
	FilingStationCode     string           `json:"filing_station_code"`
	CorrectStationCode    string           `json:"correct_station_code,omitempty"`
	RequiresPhysicalVisit bool             `json:"requires_physical_visit"`
	Signature             *Signature       `json:"signature,omitempty"`
	NotificationsSent     []AlertLevel     `json:"notifications_sent"`
	GDEntryNumber         string           `json:"gd_entry_number,omitempty"`
	ExpirationReason      string           `json:"expiration_reason,omitempty"`
	QuashReason           string           `json:"quash_reason,omitempty"`
	FIRNumber             string           `json:"fir_number,omitempty"`
	CreatedAt             time.Time        `json:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at"`
	Version               int64            `json:"version"`
}

// NewProvisionalFIR builds a DRAFT record. Submission times are set by
// ApplySubmission, not here.
func NewProvisionalFIR(tempID string, informant Informant, incident Incident, sections []Section, now time.Time) (*ProvisionalFIR, error) {
	if !informant.ContactVerified {
		return nil, dErrors.New(dErrors.CodeInvalidInformant, "informant contact must be verified before submission")
	}
	if strings.TrimSpace(informant.Name) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInformant, "informant name is required")
	}
	if strings.TrimSpace(incident.StationCode) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "filing station code is required")
	}
	secs := make([]Section, len(sections))
	copy(secs, sections)
	return &ProvisionalFIR{
		TempID:            tempID,
		Status:            StatusDraft,
		Informant:         informant,
		Incident:          incident,
		Sections:          secs,
		JurisdictionType:  JurisdictionLocal,
		FilingStationCode: incident.StationCode,
		NotificationsSent: []AlertLevel{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

func (f *ProvisionalFIR) transition(to Status, now time.Time) error {
	if !f.Status.CanTransitionTo(to) {
		return dErrors.NewInvalidTransition(f.Status.String(), to.String())
	}
	f.Status = to
	f.UpdatedAt = now
	return nil
}

// ApplySubmission records the electronic submission and fixes the deadline.
func (f *ProvisionalFIR) ApplySubmission(now time.Time) error {
	if err := f.transition(StatusSubmittedElectronically, now); err != nil {
		return err
	}
	f.SubmissionTime = now
	f.ExpiryTime = now.Add(SignatureWindow)
	return nil
}

// StartSignatureClock moves a persisted submission into PENDING_SIGNATURE.
func (f *ProvisionalFIR) StartSignatureClock(now time.Time) error {
	return f.transition(StatusPendingSignature, now)
}

// Remaining returns the time left before the signature deadline. Negative
// once the deadline has passed.
func (f *ProvisionalFIR) Remaining(now time.Time) time.Duration {
	return f.ExpiryTime.Sub(now)
}

// AlertLevel derives the deadline tier from stored timestamps.
func (f *ProvisionalFIR) AlertLevel(now time.Time) AlertLevel {
	return ClassifyRemaining(f.Remaining(now))
}

// DeadlinePassed reports whether now is strictly after the expiry instant.
func (f *ProvisionalFIR) DeadlinePassed(now time.Time) bool {
	return now.After(f.ExpiryTime)
}

// CanSign checks whether a signature may be committed at now.
func (f *ProvisionalFIR) CanSign(now time.Time) error {
	switch {
	case f.Status == StatusExpired || f.Status == StatusConvertedToGD:
		return dErrors.New(dErrors.CodeExpired, "signature window closed; record converted to GD entry")
	case f.Status.IsFinalized():
		return dErrors.New(dErrors.CodeAlreadyFinalized, "record already finalized as "+f.Status.String())
	case f.Status != StatusPendingSignature:
		return dErrors.NewInvalidTransition(f.Status.String(), StatusSigned.String())
	case f.DeadlinePassed(now):
		return dErrors.New(dErrors.CodeExpired, "signature window closed at "+f.ExpiryTime.Format(time.RFC3339))
	}
	return nil
}

// CanSignWith is CanSign for a given method. A physical-visit record keeps
// accepting a PHYSICAL_SIGNATURE after the window, since it never lapses on
// its own.
func (f *ProvisionalFIR) CanSignWith(method SignatureMethod, now time.Time) error {
	if method == SignaturePhysical && f.ExemptFromExpiry(now) && f.Status == StatusPendingSignature {
		return nil
	}
	return f.CanSign(now)
}

// ApplySignature commits the informant's signature.
func (f *ProvisionalFIR) ApplySignature(method SignatureMethod, reference string, now time.Time) error {
	if err := f.CanSignWith(method, now); err != nil {
		return err
	}
	if strings.TrimSpace(reference) == "" {
		return dErrors.New(dErrors.CodeValidation, "signature reference is required")
	}
	if err := f.transition(StatusSigned, now); err != nil {
		return err
	}
	f.Signature = &Signature{Method: method, Reference: reference, SignedAt: now}
	return nil
}

// ApplyRegistration closes the provisional record once the official FIR exists.
func (f *ProvisionalFIR) ApplyRegistration(firNumber string, now time.Time) error {
	if err := f.transition(StatusRegistered, now); err != nil {
		return err
	}
	f.FIRNumber = firNumber
	return nil
}

// ExemptFromExpiry reports whether the window has lapsed on a record that
// needs a physical visit. Such a record stays pending until an officer acts.
func (f *ProvisionalFIR) ExemptFromExpiry(now time.Time) bool {
	return f.RequiresPhysicalVisit && f.DeadlinePassed(now)
}

// CanExpire checks whether the deadline has lapsed on a pending record.
// Records that need a physical visit are never expired automatically.
func (f *ProvisionalFIR) CanExpire(now time.Time) error {
	if f.Status != StatusPendingSignature {
		return dErrors.NewInvalidTransition(f.Status.String(), StatusExpired.String())
	}
	if f.RequiresPhysicalVisit {
		return dErrors.New(dErrors.CodeExpiryExempt, "record requires a physical visit and does not lapse automatically")
	}
	if f.Remaining(now) > 0 {
		return dErrors.New(dErrors.CodeNotYetDue, "signature deadline has not passed")
	}
	return nil
}

// ApplyExpiry moves PENDING_SIGNATURE through EXPIRED into CONVERTED_TO_GD in
// one step, so no reader ever observes the intermediate state.
func (f *ProvisionalFIR) ApplyExpiry(gdEntryNumber string, now time.Time) error {
	if err := f.CanExpire(now); err != nil {
		return err
	}
	if err := f.transition(StatusExpired, now); err != nil {
		return err
	}
	if err := f.transition(StatusConvertedToGD, now); err != nil {
		return err
	}
	f.GDEntryNumber = gdEntryNumber
	f.ExpirationReason = "informant signature not received within 72 hours"
	return nil
}

// ApplyTransfer forwards a Zero FIR to the station holding jurisdiction.
// The expiry instant is not touched.
func (f *ProvisionalFIR) ApplyTransfer(correctStationCode string, now time.Time) error {
	if strings.TrimSpace(correctStationCode) == "" {
		return dErrors.New(dErrors.CodeValidation, "correct station code is required")
	}
	if f.Status == StatusPendingSignature && f.DeadlinePassed(now) && !f.RequiresPhysicalVisit {
		return dErrors.New(dErrors.CodeExpired, "signature deadline passed before transfer")
	}
	if err := f.transition(StatusTransferred, now); err != nil {
		return err
	}
	f.JurisdictionType = JurisdictionZero
	f.CorrectStationCode = correctStationCode
	return nil
}

// ApplyQuash is the administrative terminal transition.
func (f *ProvisionalFIR) ApplyQuash(reason string, now time.Time) error {
	if strings.TrimSpace(reason) == "" {
		return dErrors.New(dErrors.CodeValidation, "quash reason is required")
	}
	if err := f.transition(StatusQuashed, now); err != nil {
		return err
	}
	f.QuashReason = reason
	return nil
}

// HighestNotified returns the strictest tier already delivered, or NORMAL.
func (f *ProvisionalFIR) HighestNotified() AlertLevel {
	highest := AlertNormal
	for _, l := range f.NotificationsSent {
		if l.StricterThan(highest) {
			highest = l
		}
	}
	return highest
}

// WasNotified reports whether level is already in NotificationsSent.
func (f *ProvisionalFIR) WasNotified(level AlertLevel) bool {
	for _, l := range f.NotificationsSent {
		if l == level {
			return true
		}
	}
	return false
}

// MarkNotified adds level to NotificationsSent. Returns false when it was
// already present.
func (f *ProvisionalFIR) MarkNotified(level AlertLevel) bool {
	if f.WasNotified(level) {
		return false
	}
	f.NotificationsSent = append(f.NotificationsSent, level)
	sort.SliceStable(f.NotificationsSent, func(i, j int) bool {
		return f.NotificationsSent[j].StricterThan(f.NotificationsSent[i])
	})
	return true
}

// Clone returns a deep copy so stores never share mutable state with callers.
func (f *ProvisionalFIR) Clone() *ProvisionalFIR {
	c := *f
	c.Sections = append([]Section(nil), f.Sections...)
	c.NotificationsSent = append([]AlertLevel{}, f.NotificationsSent...)
	if f.Signature != nil {
		sig := *f.Signature
		c.Signature = &sig
	}
	return &c
}

// RegisteredFIR is the official record created from a signed e-FIR.
type RegisteredFIR struct {
	FIRNumber             string              `json:"fir_number"`
	TempID                string              `json:"temp_id"`
	StationCode           string              `json:"station_code"`
	RegisteredBy          string              `json:"registered_by"`
	RegisteredAt          time.Time           `json:"registered_at"`
	InvestigationStatus   InvestigationStatus `json:"investigation_status"`
	ChargeSheetDeadline   time.Time           `json:"charge_sheet_deadline"`
	Informant             Informant           `json:"informant"`
	Incident              Incident            `json:"incident"`
	Sections              []Section           `json:"sections"`
	JurisdictionType      JurisdictionType    `json:"jurisdiction_type"`
	Signature             Signature           `json:"signature"`
	RequiresPhysicalVisit bool                `json:"requires_physical_visit"`
}

// NewRegisteredFIR builds the official record from a SIGNED provisional FIR.
func NewRegisteredFIR(p *ProvisionalFIR, firNumber, registeredBy string, now time.Time) (*RegisteredFIR, error) {
	if p.Status != StatusSigned || p.Signature == nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "only a signed e-FIR can be registered")
	}
	if firNumber == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "official FIR number is required")
	}
	return &RegisteredFIR{
		FIRNumber:             firNumber,
		TempID:                p.TempID,
		StationCode:           p.FilingStationCode,
		RegisteredBy:          registeredBy,
		RegisteredAt:          now,
		InvestigationStatus:   InvestigationPending,
		ChargeSheetDeadline:   now.Add(ChargeSheetPeriod(p.Sections)),
		Informant:             p.Informant,
		Incident:              p.Incident,
		Sections:              append([]Section(nil), p.Sections...),
		JurisdictionType:      p.JurisdictionType,
		Signature:             *p.Signature,
		RequiresPhysicalVisit: p.RequiresPhysicalVisit,
	}, nil
}

// ChargeSheetPeriod is 90 days when any section is non-bailable, else 60.
func ChargeSheetPeriod(sections []Section) time.Duration {
	for _, s := range sections {
		if !s.Bailable {
			return ChargeSheetWindowSerious
		}
	}
	return ChargeSheetWindow
}

// StatusView is the authoritative status snapshot returned to callers.
// Remaining and AlertLevel are recomputed from stored timestamps on every read.
type StatusView struct {
	TempID                string           `json:"temp_id"`
	Status                Status           `json:"status"`
	SubmissionTime        time.Time        `json:"submission_time"`
	ExpiryTime            time.Time        `json:"expiry_time"`
	RemainingSeconds      int64            `json:"remaining_seconds"`
	AlertLevel            AlertLevel       `json:"alert_level"`
	JurisdictionType      JurisdictionType `json:"jurisdiction_type"`
	CorrectStationCode    string           `json:"correct_station_code,omitempty"`
	RequiresPhysicalVisit bool             `json:"requires_physical_visit"`
	NotificationsSent     []AlertLevel     `json:"notifications_sent"`
	GDEntryNumber         string           `json:"gd_entry_number,omitempty"`
	FIRNumber             string           `json:"fir_number,omitempty"`
	Signature             *Signature       `json:"signature,omitempty"`
}

// View builds the status snapshot at now. Finalized records report zero
// remaining time and the level frozen by their outcome.
func (f *ProvisionalFIR) View(now time.Time) StatusView {
	v := StatusView{
		TempID:                f.TempID,
		Status:                f.Status,
		SubmissionTime:        f.SubmissionTime,
		ExpiryTime:            f.ExpiryTime,
		JurisdictionType:      f.JurisdictionType,
		CorrectStationCode:    f.CorrectStationCode,
		RequiresPhysicalVisit: f.RequiresPhysicalVisit,
		NotificationsSent:     append([]AlertLevel{}, f.NotificationsSent...),
		GDEntryNumber:         f.GDEntryNumber,
		FIRNumber:             f.FIRNumber,
	}
	if f.Signature != nil {
		sig := *f.Signature
		v.Signature = &sig
	}
	switch f.Status {
	case StatusPendingSignature:
		remaining := f.Remaining(now)
		if remaining < 0 {
			remaining = 0
		}
		v.RemainingSeconds = int64(remaining / time.Second)
		v.AlertLevel = f.AlertLevel(now)
	case StatusExpired, StatusConvertedToGD:
		v.AlertLevel = AlertExpired
	default:
		v.AlertLevel = AlertNormal
	}
	return v
}
