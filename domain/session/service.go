package session

import (
	"context"
	"strings"
	"time"

	"github.com/stackos/landing/internal/log"
	"github.com/stackos/landing/pkg/authprovider"
	apperrors "github.com/stackos/landing/pkg/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	MessageCredentialsRequired = "Please enter your email and password."
	MessageSignInRequired      = "Please sign in to continue."
	MessageNotAllowed          = "This account is not allowed to open the dashboard."
	MessageSessionUnavailable  = "Unable to verify your session. Please try again."
)

type SessionService interface {
	// Login makes one provider call and returns the provider's session.
	Login(ctx context.Context, email, password string) (*authprovider.Session, error)
	// Logout revokes token until its expiry. Unverifiable tokens are ignored.
	Logout(ctx context.Context, token string) error
	// Authenticate verifies a session token and checks the admin allowlist.
	Authenticate(ctx context.Context, token string) (*authprovider.Claims, error)
}

type sessionService struct {
	logger      *log.Logger
	provider    authprovider.Provider
	verifier    authprovider.TokenVerifier
	denylist    Denylist
	adminEmails map[string]struct{}
	metrics     *Metrics
}

// NewSessionService builds the gate. An empty adminEmails admits every verified account.
func NewSessionService(
	logger *log.Logger,
	provider authprovider.Provider,
	verifier authprovider.TokenVerifier,
	denylist Denylist,
	adminEmails []string,
	metrics *Metrics,
) SessionService {
	if denylist == nil {
		denylist = nopDenylist{}
	}

	allowed := make(map[string]struct{}, len(adminEmails))
	for _, email := range adminEmails {
		if email = normalizeEmail(email); email != "" {
			allowed[email] = struct{}{}
		}
	}

	return &sessionService{
		logger:      logger,
		provider:    provider,
		verifier:    verifier,
		denylist:    denylist,
		adminEmails: allowed,
		metrics:     metrics,
	}
}

func normalizeEmail(raw string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(raw))
}

func (s *sessionService) Login(ctx context.Context, email, password string) (*authprovider.Session, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperrors.NewInvalidRequestError(MessageCredentialsRequired, nil)
	}

	session, err := s.provider.SignInWithPassword(ctx, email, password)
	s.metrics.observe(err)
	if err != nil {
		logger.Warn("Sign-in failed", "type", apperrors.GetErrorType(err), "error", err)
		return nil, err
	}

	logger.Info("Signed in", "user_id", session.User.ID)
	return session, nil
}

func (s *sessionService) Logout(ctx context.Context, token string) error {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	claims, err := s.verifier.Verify(token)
	if err != nil {
		return nil
	}

	var until time.Time
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	if err := s.denylist.Add(ctx, token, until); err != nil {
		logger.Error("Failed to revoke session", "error", err)
		return apperrors.NewUnavailableError(MessageSessionUnavailable, err)
	}

	logger.Info("Signed out", "subject", claims.Subject)
	return nil
}

func (s *sessionService) Authenticate(ctx context.Context, token string) (*authprovider.Claims, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if token == "" {
		return nil, apperrors.NewUnauthorizedError(MessageSignInRequired, nil)
	}

	claims, err := s.verifier.Verify(token)
	if err != nil {
		logger.Info("Rejected session token", "error", err)
		return nil, apperrors.NewUnauthorizedError(MessageSignInRequired, err)
	}

	revoked, err := s.denylist.Contains(ctx, token)
	if err != nil {
		logger.Error("Session denylist lookup failed", "error", err)
		return nil, apperrors.NewUnavailableError(MessageSessionUnavailable, err)
	}
	if revoked {
		return nil, apperrors.NewUnauthorizedError(MessageSignInRequired, nil)
	}

	if len(s.adminEmails) > 0 {
		if _, ok := s.adminEmails[normalizeEmail(claims.Email)]; !ok {
			logger.Warn("Session is not on the admin allowlist", "subject", claims.Subject)
			return nil, apperrors.NewForbiddenError(MessageNotAllowed, nil)
		}
	}

	return claims, nil
}
