// Package domainerrors defines the typed error taxonomy shared by services,
// stores, and transports. Services return *Error values carrying a Code so
// transports can map them to status codes without string matching.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a class of domain failure.
type Code string

const (
	CodeBadRequest         Code = "bad_request"
	CodeValidation         Code = "validation_error"
	CodeInvalidInput       Code = "invalid_input"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeTimeout            Code = "timeout"
	CodeInternal           Code = "internal_error"
	CodeInvariantViolation Code = "invariant_violation"

	// Lifecycle codes.
	CodeInvalidInformant  Code = "invalid_informant"
	CodeInvalidTransition Code = "invalid_transition"
	CodeAlreadyFinalized  Code = "already_finalized"
	CodeExpired           Code = "expired"
	CodeNotYetDue         Code = "not_yet_due"
	CodeExpiryExempt      Code = "expiry_exempt"

	// Evidence codes. CodeHashMismatch is informational: Verify reports a
	// mismatch as a result, never as a failure.
	CodeHashMismatch         Code = "hash_mismatch"
	CodeLedgerAnchorConflict Code = "ledger_anchor_conflict"
	CodeSealingHalted        Code = "sealing_halted"

	// Infrastructure codes.
	CodeNotificationDeliveryFailed Code = "notification_delivery_failed"
	CodeStorageUnavailable         Code = "storage_unavailable"
	CodeSignatureRejected          Code = "signature_rejected"
)

// retryable codes may succeed if the caller tries again later.
var retryable = map[Code]bool{
	CodeNotificationDeliveryFailed: true,
	CodeStorageUnavailable:         true,
	CodeTimeout:                    true,
}

// Error is a domain error carrying a stable code and an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether the failure class is transient.
func (e *Error) Retryable() bool { return retryable[e.Code] }

// New creates a domain error with the given code.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// TransitionError names the attempted transition and the state it was
// attempted from. It unwraps to a CodeInvalidTransition *Error.
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: cannot transition from %s to %s", CodeInvalidTransition, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return &Error{Code: CodeInvalidTransition, Message: "transition " + e.From + " -> " + e.To + " not allowed"}
}

// NewInvalidTransition reports an illegal state change.
func NewInvalidTransition(from, to string) error {
	return &TransitionError{From: from, To: to}
}

// CodeOf extracts the code from err, or "" when err carries none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// HasCode reports whether any error in err's chain carries code.
func HasCode(err error, code Code) bool {
	for err != nil {
		var de *Error
		if !errors.As(err, &de) {
			return false
		}
		if de.Code == code {
			return true
		}
		err = de.Err
	}
	return false
}

// Is is an alias of HasCode kept for call sites that read better as a predicate.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// IsRetryable reports whether err is a transient domain failure.
func IsRetryable(err error) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Retryable()
	}
	return false
}

// ToHTTPStatus maps a code to the HTTP status the transport should return.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeValidation, CodeInvalidInput, CodeInvalidInformant:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeInvalidTransition, CodeAlreadyFinalized, CodeNotYetDue, CodeExpiryExempt:
		return http.StatusConflict
	case CodeExpired:
		return http.StatusGone
	case CodeLedgerAnchorConflict, CodeSealingHalted, CodeInvariantViolation:
		return http.StatusUnprocessableEntity
	case CodeSignatureRejected:
		return http.StatusUnauthorized
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeStorageUnavailable, CodeNotificationDeliveryFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
