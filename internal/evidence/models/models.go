package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// GenesisDigest is the previous-anchor value of the first anchor in a case.
var GenesisDigest = strings.Repeat("0", 64)

// Admissibility is the evidentiary status attached to a verification.
type Admissibility string

const (
	AdmissibleIntegrityConfirmed Admissibility = "admissible-integrity-confirmed"
	IntegrityFlaggedForReview    Admissibility = "integrity-flagged-for-review"
)

// EvidenceRecord is the sealed fingerprint of one evidence item. It is never
// updated after Seal writes it.
type EvidenceRecord struct {
	ID           string    `json:"id"`
	CaseID       string    `json:"case_id"`
	FileName     string    `json:"file_name"`
	Algorithm    string    `json:"algorithm"`
	SealedDigest string    `json:"sealed_digest"`
	SizeBytes    int64     `json:"size_bytes"`
	SealedAt     time.Time `json:"sealed_at"`
	SealerID     string    `json:"sealer_id"`
}

// LedgerAnchor is one link of a case's append-only hash chain.
type LedgerAnchor struct {
	ID                   string    `json:"id"`
	CaseID               string    `json:"case_id"`
	EvidenceID           string    `json:"evidence_id"`
	Sequence             int64     `json:"sequence"`
	Digest               string    `json:"digest"`
	PreviousAnchorDigest string    `json:"previous_anchor_digest"`
	AnchorDigest         string    `json:"anchor_digest"`
	Timestamp            time.Time `json:"timestamp"`
}

// NewLedgerAnchor links digest onto the chain whose head is prev. A nil prev
// starts the chain from GenesisDigest at sequence 1. The timestamp is kept at
// microsecond precision so it survives a round trip through Postgres.
func NewLedgerAnchor(id, caseID, evidenceID, digest string, prev *LedgerAnchor, at time.Time) *LedgerAnchor {
	a := &LedgerAnchor{
		ID:                   id,
		CaseID:               caseID,
		EvidenceID:           evidenceID,
		Sequence:             1,
		Digest:               digest,
		PreviousAnchorDigest: GenesisDigest,
		Timestamp:            at.UTC().Truncate(time.Microsecond),
	}
	if prev != nil {
		a.Sequence = prev.Sequence + 1
		a.PreviousAnchorDigest = prev.AnchorDigest
	}
	a.AnchorDigest = a.ComputeDigest()
	return a
}

// ComputeDigest derives the anchor digest from the anchor's content fields.
// The anchor chain always uses SHA-256 regardless of the evidence algorithm.
func (a *LedgerAnchor) ComputeDigest() string {
	payload := fmt.Sprintf("%s|%d|%s|%s|%s",
		a.CaseID,
		a.Sequence,
		a.Digest,
		a.PreviousAnchorDigest,
		a.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	sum := sha256.Sum256([]byte(payload))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// VerificationResult is the outcome of comparing a candidate against its
// sealed fingerprint. It is not persisted apart from the audit trail.
type VerificationResult struct {
	CaseID         string        `json:"case_id"`
	FileName       string        `json:"file_name"`
	Algorithm      string        `json:"algorithm"`
	IsMatch        bool          `json:"is_match"`
	ComputedDigest string        `json:"computed_digest"`
	// SealedDigest is the digest recorded at ingestion; empty when the file
	// was never sealed. ExpectedDigest is set only when the caller supplied
	// the reference digest, and is then what IsMatch compares against.
	SealedDigest   string        `json:"sealed_digest,omitempty"`
	ExpectedDigest string        `json:"expected_digest,omitempty"`
	VerifiedAt     time.Time     `json:"verified_at"`
	Admissibility  Admissibility `json:"admissibility"`
}

// ChainReport is the result of recomputing every anchor of a case.
type ChainReport struct {
	CaseID   string `json:"case_id"`
	Length   int    `json:"length"`
	Valid    bool   `json:"valid"`
	BrokenAt int64  `json:"broken_at,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// NormalizeDigest upper-cases d and strips all whitespace so digests pasted
// from reports compare equal to computed ones.
func NormalizeDigest(d string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, d)
}

// VerifyChain walks anchors in sequence order and reports the first link whose
// stored digest or back-reference does not hold.
func VerifyChain(caseID string, anchors []*LedgerAnchor) ChainReport {
	report := ChainReport{CaseID: caseID, Length: len(anchors), Valid: true}
	prev := GenesisDigest
	for i, a := range anchors {
		switch {
		case a.Sequence != int64(i+1):
			report.Reason = fmt.Sprintf("expected sequence %d, found %d", i+1, a.Sequence)
		case a.PreviousAnchorDigest != prev:
			report.Reason = "previous anchor reference does not match chain head"
		case a.ComputeDigest() != a.AnchorDigest:
			report.Reason = "anchor digest does not match its content"
		default:
			prev = a.AnchorDigest
			continue
		}
		report.Valid = false
		report.BrokenAt = int64(i + 1)
		return report
	}
	return report
}
