package testutil

import (
	"net/http"

	"nyaya/pkg/requestcontext"
)

// AsOfficer sets the acting officer on the request context, as the officer
// authentication middleware would.
func AsOfficer(req *http.Request, officerID string) *http.Request {
	return req.WithContext(requestcontext.WithActorID(req.Context(), officerID))
}

// FromClient sets the client IP on the request context, as ClientMetadata would.
func FromClient(req *http.Request, ip string) *http.Request {
	return req.WithContext(requestcontext.WithClientIP(req.Context(), ip))
}
