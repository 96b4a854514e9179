package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal significance: every lifecycle
	// transition of an e-FIR and every evidence seal. These are written
	// synchronously and the business operation fails if the write fails.
	CategoryCompliance EventCategory = "compliance"

	// CategoryIntegrity covers evidence verification outcomes and ledger
	// checks. They are emitted asynchronously.
	CategoryIntegrity EventCategory = "integrity"

	// CategoryOperations covers scheduler and delivery activity useful for
	// debugging.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	// Subject is the e-FIR temp ID or the evidence case ID.
	Subject     string
	Action      string
	Decision    string
	Reason      string
	StationCode string
	RequestID   string
	// ActorID is the officer or system identity that caused the action.
	ActorID string
}

// Store persists audit events. Implementations are append-only.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
}

type AuditEvent string

const (
	// Lifecycle events
	EventFIRSubmitted   AuditEvent = "fir_submitted"
	EventFIRSigned      AuditEvent = "fir_signed"
	EventFIRRegistered  AuditEvent = "fir_registered"
	EventFIRExpired     AuditEvent = "fir_expired_converted_to_gd"
	EventFIRTransferred AuditEvent = "fir_transferred"
	EventFIRQuashed     AuditEvent = "fir_quashed"

	// Scheduler and delivery events
	EventDeadlineAlertQueued   AuditEvent = "deadline_alert_queued"
	EventNotificationDelivered AuditEvent = "notification_delivered"
	EventNotificationDeferred  AuditEvent = "notification_deferred"
	EventNotificationFailed    AuditEvent = "notification_failed"

	// Evidence events
	EventEvidenceSealed    AuditEvent = "evidence_sealed"
	EventEvidenceVerified  AuditEvent = "evidence_verified"
	EventLedgerConflict    AuditEvent = "ledger_anchor_conflict"
	EventLedgerChainReport AuditEvent = "ledger_chain_verified"
	EventSealingResumed    AuditEvent = "sealing_resumed"
)

// eventCategories maps each audit event to its category.
var eventCategories = map[AuditEvent]EventCategory{
	EventFIRSubmitted:   CategoryCompliance,
	EventFIRSigned:      CategoryCompliance,
	EventFIRRegistered:  CategoryCompliance,
	EventFIRExpired:     CategoryCompliance,
	EventFIRTransferred: CategoryCompliance,
	EventFIRQuashed:     CategoryCompliance,
	EventEvidenceSealed: CategoryCompliance,
	EventSealingResumed: CategoryCompliance,
	EventLedgerConflict: CategoryCompliance,

	EventEvidenceVerified:  CategoryIntegrity,
	EventLedgerChainReport: CategoryIntegrity,

	EventDeadlineAlertQueued:   CategoryOperations,
	EventNotificationDelivered: CategoryOperations,
	EventNotificationDeferred:  CategoryOperations,
	EventNotificationFailed:    CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// ComplianceEvent captures legally significant actions requiring guaranteed
// persistence. Use with the compliance publisher for fail-closed semantics.
type ComplianceEvent struct {
	Timestamp   time.Time
	Subject     string // e-FIR temp ID or case ID (required)
	Action      AuditEvent
	Decision    string // resulting status, e.g. "SIGNED"
	Reason      string
	StationCode string
	RequestID   string
	ActorID     string
}

// Category returns CategoryCompliance (always).
func (e ComplianceEvent) Category() EventCategory { return CategoryCompliance }

// ToEvent converts to the stored Event shape.
func (e ComplianceEvent) ToEvent() Event {
	return Event{
		Category:    CategoryCompliance,
		Timestamp:   e.Timestamp,
		Subject:     e.Subject,
		Action:      string(e.Action),
		Decision:    e.Decision,
		Reason:      e.Reason,
		StationCode: e.StationCode,
		RequestID:   e.RequestID,
		ActorID:     e.ActorID,
	}
}
