package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) and services translate them into domain errors.
//
//   - ErrNotFound: record, evidence item, or outbox entry does not exist
//   - ErrConflict: a conditional write lost its race (status changed underneath)
//   - ErrAlreadyUsed: a dedupe key or unique reference was already consumed
//   - ErrChainMismatch: a ledger anchor does not extend the current chain head
//   - ErrUnavailable: backing store temporarily unreachable
var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyUsed   = errors.New("already used")
	ErrChainMismatch = errors.New("chain mismatch")
	ErrUnavailable   = errors.New("unavailable")
)
