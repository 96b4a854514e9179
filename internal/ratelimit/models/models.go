// Package models holds the sliding-window rate limit result shared by the
// stores and the HTTP middleware.
package models

import "time"

// Result is the outcome of one limit check.
type Result struct {
	Allowed   bool      `json:"allowed"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
	// RetryAfter is in seconds and only set when the request was refused.
	RetryAfter int `json:"retry_after,omitempty"`
}

// ExceededResponse is written with a 429.
type ExceededResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description"`
	RetryAfter  int    `json:"retry_after"`
}
