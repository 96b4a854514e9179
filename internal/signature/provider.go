// Package signature issues and redeems e-signature challenges. A challenge is
// a short-lived HS256 token bound to one record; redeeming it yields the
// signature reference stored on the e-FIR.
package signature

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "nyaya/pkg/domain-errors"
	"nyaya/pkg/platform/clock"
)

const defaultChallengeTTL = 10 * time.Minute

// ChallengeClaims are carried in the challenge token. Subject is the record ID.
type ChallengeClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

const purposeESign = "efir_esign"

// Provider issues challenge tokens and redeems each at most once.
type Provider struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
	clock      clock.Clock

	mu       sync.Mutex
	redeemed map[string]time.Time
}

type Option func(*Provider)

func WithTTL(ttl time.Duration) Option {
	return func(p *Provider) {
		if ttl > 0 {
			p.ttl = ttl
		}
	}
}

func WithClock(c clock.Clock) Option {
	return func(p *Provider) { p.clock = c }
}

func NewProvider(signingKey, issuer string, opts ...Option) (*Provider, error) {
	if signingKey == "" {
		return nil, errors.New("signing key is required")
	}
	p := &Provider{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		ttl:        defaultChallengeTTL,
		clock:      clock.Real,
		redeemed:   make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// RequestSignature issues a challenge for recordID.
func (p *Provider) RequestSignature(_ context.Context, recordID string) (string, error) {
	now := p.clock()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, ChallengeClaims{
		Purpose: purposeESign,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   recordID,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
			ID:        uuid.NewString(),
		},
	})
	signed, err := token.SignedString(p.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign challenge")
	}
	return signed, nil
}

// ConfirmSignature redeems challengeRef for recordID and returns the
// signature reference. A challenge can be redeemed once.
func (p *Provider) ConfirmSignature(_ context.Context, recordID, challengeRef string) (string, error) {
	parsed, err := jwt.ParseWithClaims(challengeRef, &ChallengeClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return p.signingKey, nil
	}, jwt.WithTimeFunc(p.clock), jwt.WithIssuer(p.issuer), jwt.WithSubject(recordID))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", dErrors.New(dErrors.CodeSignatureRejected, "signature challenge has expired")
		}
		return "", dErrors.New(dErrors.CodeSignatureRejected, "invalid signature challenge")
	}
	claims, ok := parsed.Claims.(*ChallengeClaims)
	if !ok || !parsed.Valid || claims.Purpose != purposeESign || claims.ID == "" {
		return "", dErrors.New(dErrors.CodeSignatureRejected, "invalid signature challenge")
	}

	if err := p.redeem(claims.ID, claims.ExpiresAt.Time); err != nil {
		return "", err
	}
	return "ESIGN-" + claims.ID, nil
}

func (p *Provider) redeem(jti string, expiresAt time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.clock()
	for id, exp := range p.redeemed {
		if now.After(exp) {
			delete(p.redeemed, id)
		}
	}
	if _, used := p.redeemed[jti]; used {
		return dErrors.New(dErrors.CodeSignatureRejected, "signature challenge already used")
	}
	p.redeemed[jti] = expiresAt
	return nil
}
