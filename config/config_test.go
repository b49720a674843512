package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "readsync", cfg.MongoDBName)
	assert.Equal(t, "ur_", cfg.UserTokenPrefix)
	assert.Equal(t, 5*time.Minute, cfg.SessionTTL())
	assert.Equal(t, 2*time.Hour, cfg.UserTokenTTL())
	assert.Equal(t, time.Minute, cfg.JanitorInterval())
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SESSION_TIMEOUT", "120")
	t.Setenv("USER_TOKEN_PREFIX", "tok_")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2*time.Minute, cfg.SessionTTL())
	assert.Equal(t, "tok_", cfg.UserTokenPrefix)
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		GithubClientID:       "id",
		GithubClientSecret:   "secret",
		GithubRedirectURI:    "https://example.com/api/callback",
		SessionTimeoutSec:    300,
		UserTokenLifetimeSec: 7200,
	}
	require.NoError(t, cfg.Validate())

	missing := *cfg
	missing.GithubClientSecret = ""
	assert.Error(t, missing.Validate())

	noRedirect := *cfg
	noRedirect.GithubRedirectURI = ""
	assert.Error(t, noRedirect.Validate())

	badTTL := *cfg
	badTTL.SessionTimeoutSec = 0
	assert.Error(t, badTTL.Validate())
}
