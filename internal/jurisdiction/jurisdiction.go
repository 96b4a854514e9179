// Package jurisdiction decides whether an e-FIR was filed at the station that
// holds territorial jurisdiction. A mismatch makes it a Zero FIR; it never
// affects the signature deadline.
package jurisdiction

import (
	"context"
	"log/slog"
	"strings"

	"nyaya/internal/fir/models"
)

// Decision is the outcome of comparing the filing station to the station
// responsible for the incident location.
type Decision struct {
	Type               models.JurisdictionType
	CorrectStationCode string
}

// StationLookup maps an incident location to the responsible station code.
type StationLookup interface {
	ResolveCorrectStation(ctx context.Context, location string) (string, error)
}

// Resolve is JURISDICTIONAL when both codes match (or no correct code is
// known), otherwise ZERO carrying the correct code.
func Resolve(filingStationCode, correctStationCode string) Decision {
	filing := strings.TrimSpace(filingStationCode)
	correct := strings.TrimSpace(correctStationCode)
	if correct == "" || strings.EqualFold(filing, correct) {
		return Decision{Type: models.JurisdictionLocal}
	}
	return Decision{Type: models.JurisdictionZero, CorrectStationCode: correct}
}

// Resolver combines Resolve with a StationLookup.
type Resolver struct {
	lookup StationLookup
	logger *slog.Logger
}

func NewResolver(lookup StationLookup, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{lookup: lookup, logger: logger}
}

// ResolveFor looks up the station for location and compares it with the
// filing station. Lookup failures are returned; callers keep the record local.
func (r *Resolver) ResolveFor(ctx context.Context, filingStationCode, location string) (Decision, error) {
	if r.lookup == nil {
		return Decision{Type: models.JurisdictionLocal}, nil
	}
	correct, err := r.lookup.ResolveCorrectStation(ctx, location)
	if err != nil {
		return Decision{Type: models.JurisdictionLocal}, err
	}
	d := Resolve(filingStationCode, correct)
	if d.Type == models.JurisdictionZero {
		r.logger.InfoContext(ctx, "incident outside filing station jurisdiction",
			"filing_station", filingStationCode,
			"correct_station", d.CorrectStationCode,
		)
	}
	return d, nil
}
