package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/stackos/landing/internal/log"
	"github.com/stackos/landing/pkg/authprovider"
	"github.com/stackos/landing/pkg/circuitbreaker"
	"github.com/stackos/landing/pkg/utils"
)

type AuthConfig struct {
	BaseURL   string
	AnonKey   string
	JWTSecret string
	Timeout   time.Duration
	// AdminEmails restricts the dashboard to these accounts. Empty admits every provider account.
	AdminEmails  []string
	CookieSecure bool
}

// Auth holds the ready-to-use session gate dependencies.
type Auth struct {
	Provider     authprovider.Provider
	Verifier     authprovider.TokenVerifier
	AdminEmails  []string
	CookieSecure bool
}

func NewAuthConfig(appEnv string) *AuthConfig {
	return &AuthConfig{
		BaseURL:      utils.GetEnvTrimmed("AUTH_URL"),
		AnonKey:      sanitizeEnv(utils.GetEnvTrimmed("AUTH_ANON_KEY")),
		JWTSecret:    sanitizeEnv(utils.GetEnvTrimmed("AUTH_JWT_SECRET")),
		Timeout:      envDuration("AUTH_TIMEOUT", 10*time.Second),
		AdminEmails:  splitList(utils.GetEnvTrimmed("ADMIN_EMAILS")),
		CookieSecure: utils.GetEnvBool("SESSION_COOKIE_SECURE", IsProductionEnv(appEnv)),
	}
}

func (ac *AuthConfig) Validate() error {
	var missing []string
	if ac.BaseURL == "" {
		missing = append(missing, "AUTH_URL")
	}
	if ac.AnonKey == "" {
		missing = append(missing, "AUTH_ANON_KEY")
	}
	if ac.JWTSecret == "" {
		missing = append(missing, "AUTH_JWT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required auth env vars: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (ac *AuthConfig) NewAuth(logger *log.Logger) (*Auth, error) {
	if err := ac.Validate(); err != nil {
		logger.Error("Auth provider configuration is incomplete", "error", err)
		return nil, err
	}

	provider, err := authprovider.NewClient(authprovider.Config{
		BaseURL: ac.BaseURL,
		AnonKey: ac.AnonKey,
		Timeout: ac.Timeout,
		Breaker: circuitbreaker.NewCircuitBreaker(&circuitbreaker.Config{
			FailureThreshold: 5,
			RecoveryTimeout:  30 * time.Second,
			IsFailure:        authprovider.IsUnavailable,
			OnStateChange: func(from, to circuitbreaker.CircuitState) {
				logger.Warn("Auth provider circuit changed state", "from", from, "to", to)
			},
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("auth provider: %w", err)
	}

	verifier, err := authprovider.NewVerifier(ac.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("auth verifier: %w", err)
	}

	if len(ac.AdminEmails) == 0 {
		logger.Warn("ADMIN_EMAILS not set; every provider account can open the dashboard")
	}
	if !ac.CookieSecure {
		logger.Warn("Session cookie is not marked Secure (SESSION_COOKIE_SECURE=false or non-production APP_ENV)")
	}

	logger.Info("Auth provider configured", "timeout", ac.Timeout, "admin_emails", len(ac.AdminEmails))

	return &Auth{
		Provider:     provider,
		Verifier:     verifier,
		AdminEmails:  ac.AdminEmails,
		CookieSecure: ac.CookieSecure,
	}, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
