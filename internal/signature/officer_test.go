package signature

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nyaya/pkg/platform/clock"
)

func TestOfficerTokens(t *testing.T) {
	fake := clock.NewFake(time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC))
	tokens, err := NewOfficerTokens("station-key", "nyaya-cctns", fake.Clock())
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		token, err := tokens.Issue("SHO-7", "KA-BLR-042", time.Hour)
		require.NoError(t, err)
		claims, err := tokens.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "SHO-7", claims.OfficerID)
		assert.Equal(t, "KA-BLR-042", claims.StationCode)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := tokens.Issue("SHO-7", "KA-BLR-042", time.Minute)
		require.NoError(t, err)
		fake.Advance(2 * time.Minute)
		_, err = tokens.ValidateToken(token)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("foreign issuer or key", func(t *testing.T) {
		other, err := NewOfficerTokens("station-key", "someone-else", fake.Clock())
		require.NoError(t, err)
		token, err := other.Issue("SHO-7", "", time.Hour)
		require.NoError(t, err)
		_, err = tokens.ValidateToken(token)
		assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)

		forged, err := NewOfficerTokens("guessed-key", "nyaya-cctns", fake.Clock())
		require.NoError(t, err)
		token, err = forged.Issue("SHO-7", "", time.Hour)
		require.NoError(t, err)
		_, err = tokens.ValidateToken(token)
		assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
	})

	t.Run("subject required", func(t *testing.T) {
		token, err := tokens.Issue("", "KA-BLR-042", time.Hour)
		require.NoError(t, err)
		_, err = tokens.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("key required", func(t *testing.T) {
		_, err := NewOfficerTokens("", "nyaya-cctns", nil)
		assert.Error(t, err)
	})
}
