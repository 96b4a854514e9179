// Package dispatch delivers informant alerts to external channels.
//
// Every Dispatcher must tolerate being called more than once with the same
// dedupe key: the outbox worker redelivers after crashes and lease expiry.
package dispatch

import (
	"context"
	"errors"

	"nyaya/internal/notification/models"
)

// Dispatcher sends one payload to a recipient on a channel.
type Dispatcher interface {
	Send(ctx context.Context, channel models.Channel, recipient string, payload []byte, dedupeKey string) error
}

// DeliveryError classifies a failed send.
type DeliveryError struct {
	Err       error
	retryable bool
}

func (e *DeliveryError) Error() string {
	if e.retryable {
		return "retryable delivery failure: " + e.Err.Error()
	}
	return "fatal delivery failure: " + e.Err.Error()
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// Retryable marks err as transient.
func Retryable(err error) error {
	return &DeliveryError{Err: err, retryable: true}
}

// Fatal marks err as permanent; the outbox stops retrying.
func Fatal(err error) error {
	return &DeliveryError{Err: err}
}

// IsFatal reports whether err was classified Fatal. Unclassified errors are
// treated as retryable.
func IsFatal(err error) bool {
	var de *DeliveryError
	if errors.As(err, &de) {
		return !de.retryable
	}
	return false
}
