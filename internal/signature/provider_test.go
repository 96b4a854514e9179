package signature

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "nyaya/pkg/domain-errors"
	"nyaya/pkg/platform/clock"
)

func newProvider(t *testing.T, fake *clock.Fake) *Provider {
	t.Helper()
	p, err := NewProvider("test-key", "nyaya-esign", WithClock(fake.Clock()), WithTTL(5*time.Minute))
	require.NoError(t, err)
	return p
}

func TestChallengeRoundTrip(t *testing.T) {
	fake := clock.NewFake(time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC))
	p := newProvider(t, fake)
	ctx := context.Background()

	challenge, err := p.RequestSignature(ctx, "EFIR-1")
	require.NoError(t, err)

	ref, err := p.ConfirmSignature(ctx, "EFIR-1", challenge)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "ESIGN-"))

	t.Run("second redemption is rejected", func(t *testing.T) {
		_, err := p.ConfirmSignature(ctx, "EFIR-1", challenge)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeSignatureRejected))
	})
}

func TestChallengeRejections(t *testing.T) {
	fake := clock.NewFake(time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC))
	p := newProvider(t, fake)
	ctx := context.Background()

	t.Run("bound to the issuing record", func(t *testing.T) {
		challenge, err := p.RequestSignature(ctx, "EFIR-1")
		require.NoError(t, err)
		_, err = p.ConfirmSignature(ctx, "EFIR-2", challenge)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeSignatureRejected))
	})

	t.Run("expired challenge", func(t *testing.T) {
		challenge, err := p.RequestSignature(ctx, "EFIR-3")
		require.NoError(t, err)
		fake.Advance(6 * time.Minute)
		_, err = p.ConfirmSignature(ctx, "EFIR-3", challenge)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeSignatureRejected))
	})

	t.Run("token signed with another key", func(t *testing.T) {
		other, err := NewProvider("other-key", "nyaya-esign", WithClock(fake.Clock()))
		require.NoError(t, err)
		challenge, err := other.RequestSignature(ctx, "EFIR-4")
		require.NoError(t, err)
		_, err = p.ConfirmSignature(ctx, "EFIR-4", challenge)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeSignatureRejected))
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := p.ConfirmSignature(ctx, "EFIR-5", "not-a-token")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeSignatureRejected))
	})
}

func TestNewProviderRequiresKey(t *testing.T) {
	_, err := NewProvider("", "issuer")
	assert.Error(t, err)
}
