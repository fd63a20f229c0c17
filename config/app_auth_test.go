package config

import (
	"testing"
	"time"

	"github.com/stackos/landing/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setAuthEnv(t *testing.T) {
	t.Helper()
	t.Setenv("AUTH_URL", "https://auth.example.com")
	t.Setenv("AUTH_ANON_KEY", "anon-key")
	t.Setenv("AUTH_JWT_SECRET", "jwt-secret")
	t.Setenv("AUTH_TIMEOUT", "")
	t.Setenv("ADMIN_EMAILS", "")
	t.Setenv("SESSION_COOKIE_SECURE", "")
}

func TestNewAuthConfig_Defaults(t *testing.T) {
	setAuthEnv(t)

	cfg := NewAuthConfig("development")

	assert.Equal(t, "https://auth.example.com", cfg.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Empty(t, cfg.AdminEmails)
	assert.False(t, cfg.CookieSecure)
	assert.NoError(t, cfg.Validate())
}

func TestNewAuthConfig_Overrides(t *testing.T) {
	setAuthEnv(t)
	t.Setenv("AUTH_TIMEOUT", "3s")
	t.Setenv("ADMIN_EMAILS", " owner@example.com, ,ops@example.com ")
	t.Setenv("AUTH_ANON_KEY", `"quoted-key"`)

	cfg := NewAuthConfig("development")

	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, []string{"owner@example.com", "ops@example.com"}, cfg.AdminEmails)
	assert.Equal(t, "quoted-key", cfg.AnonKey)
}

func TestNewAuthConfig_SecureCookie(t *testing.T) {
	setAuthEnv(t)

	assert.True(t, NewAuthConfig("production").CookieSecure)

	t.Setenv("SESSION_COOKIE_SECURE", "false")
	assert.False(t, NewAuthConfig("production").CookieSecure)

	t.Setenv("SESSION_COOKIE_SECURE", "true")
	assert.True(t, NewAuthConfig("development").CookieSecure)
}

func TestAuthConfig_ValidateListsMissingVars(t *testing.T) {
	err := (&AuthConfig{BaseURL: "https://auth.example.com"}).Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_ANON_KEY")
	assert.Contains(t, err.Error(), "AUTH_JWT_SECRET")
	assert.NotContains(t, err.Error(), "AUTH_URL")
}

func TestAuthConfig_NewAuth(t *testing.T) {
	setAuthEnv(t)

	auth, err := NewAuthConfig("production").NewAuth(log.NewLoggerWithJSONOutput())

	require.NoError(t, err)
	assert.NotNil(t, auth.Provider)
	assert.NotNil(t, auth.Verifier)
	assert.True(t, auth.CookieSecure)
}
