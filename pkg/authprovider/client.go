package authprovider

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/stackos/landing/pkg/circuitbreaker"
	apperrors "github.com/stackos/landing/pkg/errors"
)

const (
	// UnavailableMessage is shown when the provider cannot be reached.
	UnavailableMessage = "Authentication service unavailable"
	// RejectedMessage is used when the provider rejects a sign-in without saying why.
	RejectedMessage = "Invalid login credentials"

	maxResponseBytes = 64 << 10
)

// User is the provider's view of the signed-in account.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is a successful password grant.
type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// Provider signs users in with email and password.
type Provider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
}

// ProviderError is a non-2xx answer from the provider.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("auth provider responded %d: %s", e.StatusCode, e.Message)
}

type Config struct {
	BaseURL    string
	AnonKey    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Breaker    circuitbreaker.CircuitBreaker
}

// Client talks to a GoTrue-compatible token endpoint.
type Client struct {
	tokenURL   string
	anonKey    string
	httpClient *http.Client
	breaker    circuitbreaker.CircuitBreaker
}

func NewClient(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("authprovider: invalid base URL %q", cfg.BaseURL)
	}
	if strings.TrimSpace(cfg.AnonKey) == "" {
		return nil, errors.New("authprovider: anon key is required")
	}

	tokenURL := base.JoinPath("auth", "v1", "token")
	tokenURL.RawQuery = url.Values{"grant_type": {"password"}}.Encode()

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	breaker := cfg.Breaker
	if breaker == nil {
		breaker = circuitbreaker.NewCircuitBreaker(&circuitbreaker.Config{
			FailureThreshold: 5,
			RecoveryTimeout:  30 * time.Second,
			SuccessThreshold: 1,
			IsFailure:        IsUnavailable,
		})
	}

	return &Client{
		tokenURL:   tokenURL.String(),
		anonKey:    cfg.AnonKey,
		httpClient: httpClient,
		breaker:    breaker,
	}, nil
}

// IsUnavailable reports whether err means the provider could not answer.
// Rejected credentials are a normal answer and do not count.
func IsUnavailable(err error) bool {
	return apperrors.IsType(err, apperrors.ErrorTypeUnavailable)
}

// SignInWithPassword exchanges credentials for a session. Exactly one HTTP call is made.
// Errors are *apperrors.AppError: UNAUTHORIZED carries the provider's message verbatim,
// UNAVAILABLE covers transport failures, 5xx answers and an open breaker.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	var session *Session

	err := c.breaker.Call(ctx, func(ctx context.Context) error {
		var callErr error
		session, callErr = c.signIn(ctx, email, password)
		return callErr
	})
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return nil, apperrors.NewUnavailableError(UnavailableMessage, err)
	}
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperrors.NewUnavailableError(UnavailableMessage, err)
	}

	return session, nil
}

func (c *Client) signIn(ctx context.Context, email, password string) (*Session, error) {
	payload, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, apperrors.NewInternalServerError("unable to encode sign-in request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, bytes.NewReader(payload))
	if err != nil {
		return nil, apperrors.NewInternalServerError("unable to build sign-in request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+c.anonKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewUnavailableError(UnavailableMessage, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, apperrors.NewUnavailableError(UnavailableMessage, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var session Session
		if err := json.Unmarshal(body, &session); err != nil || session.AccessToken == "" {
			if err == nil {
				err = errors.New("response has no access_token")
			}
			return nil, apperrors.NewUnavailableError(UnavailableMessage, fmt.Errorf("decode sign-in response: %w", err))
		}
		return &session, nil

	case resp.StatusCode == http.StatusTooManyRequests:
		msg := errorMessage(body, "Too many sign-in attempts. Please try again later.")
		return nil, apperrors.NewAppError(apperrors.ErrorTypeTooManyRequests, msg, &ProviderError{StatusCode: resp.StatusCode, Message: msg})

	case resp.StatusCode >= 500:
		msg := errorMessage(body, http.StatusText(resp.StatusCode))
		return nil, apperrors.NewUnavailableError(UnavailableMessage, &ProviderError{StatusCode: resp.StatusCode, Message: msg})

	default:
		msg := errorMessage(body, RejectedMessage)
		return nil, apperrors.NewUnauthorizedError(msg, &ProviderError{StatusCode: resp.StatusCode, Message: msg})
	}
}

type errorBody struct {
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	Error            string `json:"error"`
}

// errorMessage picks the first populated message field of a provider error body.
func errorMessage(body []byte, fallback string) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return fallback
	}

	for _, candidate := range []string{eb.ErrorDescription, eb.Msg, eb.Message, eb.Error} {
		if s := strings.TrimSpace(candidate); s != "" {
			return s
		}
	}
	return fallback
}
