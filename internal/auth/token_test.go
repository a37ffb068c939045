package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/civic-legal-service/internal/auth"
	"github.com/spec-kit/civic-legal-service/internal/config"
	"github.com/spec-kit/civic-legal-service/internal/domain"
)

func newTokenService(t *testing.T, cfg config.AuthConfig) (*auth.TokenService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return auth.NewTokenService(cfg, client, zap.NewNop()), mr
}

func defaultAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:           "test-secret",
		TokenTTLHours:       12,
		DenylistMarginHours: 24,
		BcryptCost:          4,
	}
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	svc, mr := newTokenService(t, defaultAuthConfig())
	ctx := context.Background()

	token, exp, err := svc.Issue(ctx, "user-1", "ada@example.org", domain.RoleCitizen, domain.ProviderLocal)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(12*time.Hour), exp, time.Minute)

	claims, err := svc.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "ada@example.org", claims.Email)
	assert.Equal(t, domain.RoleCitizen, claims.Role)
	assert.Equal(t, "local", claims.Provider)
	require.NotEmpty(t, claims.ID)

	assert.True(t, mr.Exists("jwt:"+claims.ID), "allow-list record must exist while the token is live")
	assert.InDelta(t, (12 * time.Hour).Seconds(), mr.TTL("jwt:"+claims.ID).Seconds(), 5,
		"allow-list TTL mirrors the token validity window")
}

func TestDestroyedTokenIsRejected(t *testing.T) {
	svc, mr := newTokenService(t, defaultAuthConfig())
	ctx := context.Background()

	token, _, err := svc.Issue(ctx, "user-1", "ada@example.org", domain.RoleCitizen, domain.ProviderLocal)
	require.NoError(t, err)

	_, err = svc.Verify(ctx, token)
	require.NoError(t, err)

	require.NoError(t, svc.Destroy(ctx, token))
	assert.True(t, mr.Exists("blacklist:"+token))

	_, err = svc.Verify(ctx, token)
	require.ErrorIs(t, err, auth.ErrTokenBlacklisted,
		"a destroyed token stays cryptographically valid but must be rejected")
}

func TestAllowListAbsenceRejects(t *testing.T) {
	svc, mr := newTokenService(t, defaultAuthConfig())
	ctx := context.Background()

	token, _, err := svc.Issue(ctx, "user-1", "ada@example.org", domain.RoleCitizen, domain.ProviderLocal)
	require.NoError(t, err)

	claims, err := svc.Verify(ctx, token)
	require.NoError(t, err)

	mr.Del("jwt:" + claims.ID)

	_, err = svc.Verify(ctx, token)
	require.ErrorIs(t, err, auth.ErrTokenRevoked)
}

func TestDenyListTTLUsesSafetyMargin(t *testing.T) {
	// Remaining lifetime (12h) is below the 24h margin; the margin wins.
	svc, mr := newTokenService(t, defaultAuthConfig())
	ctx := context.Background()

	token, _, err := svc.Issue(ctx, "user-1", "ada@example.org", domain.RoleCitizen, domain.ProviderLocal)
	require.NoError(t, err)
	require.NoError(t, svc.Destroy(ctx, token))

	assert.InDelta(t, (24 * time.Hour).Seconds(), mr.TTL("blacklist:"+token).Seconds(), 5)
}

func TestDenyListTTLUsesRemainingLifetimeWhenLonger(t *testing.T) {
	cfg := defaultAuthConfig()
	cfg.TokenTTLHours = 48
	svc, mr := newTokenService(t, cfg)
	ctx := context.Background()

	token, _, err := svc.Issue(ctx, "user-1", "ada@example.org", domain.RoleCitizen, domain.ProviderLocal)
	require.NoError(t, err)
	require.NoError(t, svc.Destroy(ctx, token))

	assert.InDelta(t, (48 * time.Hour).Seconds(), mr.TTL("blacklist:"+token).Seconds(), 10)
}

func TestDestroyEmptyTokenIsNoop(t *testing.T) {
	svc, _ := newTokenService(t, defaultAuthConfig())
	require.NoError(t, svc.Destroy(context.Background(), ""))
}

func TestVerifyMalformedToken(t *testing.T) {
	svc, _ := newTokenService(t, defaultAuthConfig())
	_, err := svc.Verify(context.Background(), "not-a-token")
	require.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer, _ := newTokenService(t, defaultAuthConfig())
	token, _, err := issuer.Issue(context.Background(), "user-1", "ada@example.org", domain.RoleCitizen, domain.ProviderLocal)
	require.NoError(t, err)

	other := defaultAuthConfig()
	other.JWTSecret = "different-secret"
	verifier, _ := newTokenService(t, other)

	_, err = verifier.Verify(context.Background(), token)
	require.ErrorIs(t, err, auth.ErrInvalidToken)
}
