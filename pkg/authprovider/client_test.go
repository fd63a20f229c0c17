package authprovider

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stackos/landing/pkg/circuitbreaker"
	apperrors "github.com/stackos/landing/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{BaseURL: srv.URL, AnonKey: "anon-key", Timeout: 2 * time.Second})
	require.NoError(t, err)
	return client
}

func TestSignInWithPassword_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer anon-key", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"email":"owner@stackos.io","password":"hunter2"}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"tok","token_type":"bearer","expires_in":3600,"refresh_token":"ref","user":{"id":"u-1","email":"owner@stackos.io"}}`)
	})

	session, err := client.SignInWithPassword(context.Background(), "owner@stackos.io", "hunter2")

	require.NoError(t, err)
	assert.Equal(t, "tok", session.AccessToken)
	assert.Equal(t, 3600, session.ExpiresIn)
	assert.Equal(t, "owner@stackos.io", session.User.Email)
}

func TestSignInWithPassword_ProviderMessageIsVerbatim(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"error_description", `{"error":"invalid_grant","error_description":"Invalid login credentials"}`, "Invalid login credentials"},
		{"msg", `{"code":400,"msg":"Email not confirmed"}`, "Email not confirmed"},
		{"message", `{"message":"User is banned"}`, "User is banned"},
		{"error only", `{"error":"invalid_grant"}`, "invalid_grant"},
		{"not json", `nope`, RejectedMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = io.WriteString(w, tt.body)
			})

			session, err := client.SignInWithPassword(context.Background(), "owner@stackos.io", "wrong")

			assert.Nil(t, session)
			assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))
			assert.Equal(t, tt.want, apperrors.GetHumanReadableMessage(err))

			var providerErr *ProviderError
			require.ErrorAs(t, err, &providerErr)
			assert.Equal(t, http.StatusBadRequest, providerErr.StatusCode)
		})
	}
}

func TestSignInWithPassword_ServerErrorIsUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.SignInWithPassword(context.Background(), "owner@stackos.io", "pw")

	assert.True(t, IsUnavailable(err))
	assert.Equal(t, UnavailableMessage, apperrors.GetHumanReadableMessage(err))
	assert.Equal(t, http.StatusServiceUnavailable, apperrors.HTTPStatusCode(err))
}

func TestSignInWithPassword_TransportFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL, AnonKey: "anon-key"})
	require.NoError(t, err)

	_, err = client.SignInWithPassword(context.Background(), "owner@stackos.io", "pw")

	assert.True(t, IsUnavailable(err))
}

func TestSignInWithPassword_OpenBreakerFailsFast(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{
		BaseURL: srv.URL,
		AnonKey: "anon-key",
		Breaker: circuitbreaker.NewCircuitBreaker(&circuitbreaker.Config{
			FailureThreshold: 1,
			RecoveryTimeout:  time.Hour,
			IsFailure:        IsUnavailable,
		}),
	})
	require.NoError(t, err)

	_, err = client.SignInWithPassword(context.Background(), "owner@stackos.io", "pw")
	require.True(t, IsUnavailable(err))

	_, err = client.SignInWithPassword(context.Background(), "owner@stackos.io", "pw")
	assert.True(t, IsUnavailable(err))
	assert.ErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSignInWithPassword_RejectionsDoNotOpenBreaker(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error_description":"Invalid login credentials"}`)
	})

	for i := 0; i < 10; i++ {
		_, err := client.SignInWithPassword(context.Background(), "owner@stackos.io", "wrong")
		require.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))
	}

	assert.Equal(t, int32(10), calls.Load())
}

func TestSignInWithPassword_AbortedLoginsDoNotOpenBreaker(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	client, err := NewClient(Config{
		BaseURL: srv.URL,
		AnonKey: "anon-key",
		Breaker: circuitbreaker.NewCircuitBreaker(&circuitbreaker.Config{
			FailureThreshold: 1,
			RecoveryTimeout:  time.Hour,
			IsFailure:        IsUnavailable,
		}),
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		_, err := client.SignInWithPassword(ctx, "owner@stackos.io", "pw")
		cancel()

		require.True(t, IsUnavailable(err))
		assert.NotErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
	}

	assert.Equal(t, circuitbreaker.Closed, client.breaker.State())
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "", AnonKey: "k"})
	assert.Error(t, err)

	_, err = NewClient(Config{BaseURL: "https://auth.stackos.io", AnonKey: ""})
	assert.Error(t, err)

	client, err := NewClient(Config{BaseURL: "https://auth.stackos.io/", AnonKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "https://auth.stackos.io/auth/v1/token?grant_type=password", client.tokenURL)
}
