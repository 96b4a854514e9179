package signature

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"nyaya/internal/platform/middleware"
	"nyaya/pkg/platform/clock"
)

// OfficerClaims identify the officer acting on a request.
type OfficerClaims struct {
	StationCode string `json:"station_code,omitempty"`
	jwt.RegisteredClaims
}

// OfficerTokens validates officer bearer tokens issued by the station
// identity system. Subject carries the officer ID.
type OfficerTokens struct {
	key    []byte
	issuer string
	clock  clock.Clock
}

func NewOfficerTokens(key, issuer string, c clock.Clock) (*OfficerTokens, error) {
	if key == "" {
		return nil, errors.New("officer token key is required")
	}
	if c == nil {
		c = clock.Real
	}
	return &OfficerTokens{key: []byte(key), issuer: issuer, clock: c}, nil
}

// Issue mints a token for officerID. Used by tooling and tests.
func (o *OfficerTokens) Issue(officerID, stationCode string, ttl time.Duration) (string, error) {
	now := o.clock()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, OfficerClaims{
		StationCode: stationCode,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   officerID,
			Issuer:    o.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString(o.key)
}

// ValidateToken implements middleware.TokenValidator.
func (o *OfficerTokens) ValidateToken(tokenString string) (*middleware.OfficerClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &OfficerClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return o.key, nil
	}, jwt.WithTimeFunc(o.clock), jwt.WithIssuer(o.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("invalid officer token: %w", err)
	}
	claims, ok := parsed.Claims.(*OfficerClaims)
	if !ok || claims.Subject == "" {
		return nil, errors.New("officer token has no subject")
	}
	return &middleware.OfficerClaims{OfficerID: claims.Subject, StationCode: claims.StationCode}, nil
}
