package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/civic-legal-service/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 12*time.Hour, cfg.Auth.TokenTTL())
	assert.Equal(t, 24*time.Hour, cfg.Auth.DenylistMargin())
	assert.Equal(t, "legal_session", cfg.Session.CookieName)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL())
	assert.True(t, cfg.App.IsDevelopment())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AUTH_TOKEN_TTL_HOURS", "6")
	t.Setenv("AUTH_DENYLIST_MARGIN_HOURS", "48")
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_PORT", "9090")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 6*time.Hour, cfg.Auth.TokenTTL())
	assert.Equal(t, 48*time.Hour, cfg.Auth.DenylistMargin())
	assert.False(t, cfg.App.IsDevelopment())
	assert.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
}

func TestInvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	_, err := config.Load()
	require.Error(t, err)
}

func TestGuardedDurations(t *testing.T) {
	auth := config.AuthConfig{}
	assert.Equal(t, 12*time.Hour, auth.TokenTTL())
	assert.Equal(t, 24*time.Hour, auth.DenylistMargin())

	app := config.AppConfig{RequestTimeoutSeconds: 0}
	assert.Equal(t, time.Duration(0), app.RequestTimeout())
}
