package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Channel is the delivery medium for an informant alert.
type Channel string

const (
	ChannelSMS   Channel = "SMS"
	ChannelEmail Channel = "EMAIL"
)

// OutboxStatus tracks a persisted notification through delivery.
type OutboxStatus string

const (
	OutboxPending   OutboxStatus = "PENDING"
	OutboxDelivered OutboxStatus = "DELIVERED"
	OutboxFailed    OutboxStatus = "FAILED"
)

// Notification is a durable intent to alert an informant. It is written in the
// same transaction that records the tier in the FIR's NotificationsSent set,
// so a crash between decision and delivery cannot lose it.
type Notification struct {
	ID            uuid.UUID       `json:"id"`
	DedupeKey     string          `json:"dedupe_key"`
	RecordID      string          `json:"record_id"`
	Tier          string          `json:"tier"`
	Channel       Channel         `json:"channel"`
	Recipient     string          `json:"recipient"`
	Payload       json.RawMessage `json:"payload"`
	Status        OutboxStatus    `json:"status"`
	Attempts      int             `json:"attempts"`
	NextAttemptAt time.Time       `json:"next_attempt_at"`
	LastError     string          `json:"last_error,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	DeliveredAt   *time.Time      `json:"delivered_at,omitempty"`
}

// DedupeKey identifies one (record, tier) delivery. Every layer that might
// repeat a send keys on this value.
func DedupeKey(recordID, tier string) string {
	return recordID + ":" + tier
}

// AlertPayload is the JSON body delivered to the informant's channel.
type AlertPayload struct {
	RecordID         string    `json:"record_id"`
	Tier             string    `json:"tier"`
	ExpiryTime       time.Time `json:"expiry_time"`
	RemainingSeconds int64     `json:"remaining_seconds"`
	GDEntryNumber    string    `json:"gd_entry_number,omitempty"`
	Message          string    `json:"message"`
}

// NewAlert builds a pending notification for recordID at tier.
func NewAlert(recordID, tier string, channel Channel, recipient string, payload AlertPayload, now time.Time) (*Notification, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Notification{
		ID:            uuid.New(),
		DedupeKey:     DedupeKey(recordID, tier),
		RecordID:      recordID,
		Tier:          tier,
		Channel:       channel,
		Recipient:     recipient,
		Payload:       body,
		Status:        OutboxPending,
		NextAttemptAt: now,
		CreatedAt:     now,
	}, nil
}
