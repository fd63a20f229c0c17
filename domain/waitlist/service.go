package waitlist

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stackos/landing/internal/log"
	"github.com/stackos/landing/internal/models"
	apperrors "github.com/stackos/landing/pkg/errors"
	"github.com/stackos/landing/pkg/events"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	MessageEmailRequired = "Please enter your email address."
	MessageEmailInvalid  = "Please enter a valid email address."

	emailRules = "required,email,max=320"
)

type WaitlistService interface {
	// Join normalizes rawEmail and inserts it once. A duplicate is reported as a
	// successful JoinResult with Duplicate set; other failures return a typed error.
	Join(ctx context.Context, rawEmail string) (*JoinResult, error)
}

type waitlistService struct {
	logger     *log.Logger
	repository WaitlistRepository
	publisher  events.Publisher
	metrics    *Metrics
	validate   *validator.Validate
	now        func() time.Time
}

func NewWaitlistService(logger *log.Logger, repository WaitlistRepository, publisher events.Publisher, metrics *Metrics) WaitlistService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}

	return &waitlistService{
		logger:     logger,
		repository: repository,
		publisher:  publisher,
		metrics:    metrics,
		validate:   validator.New(),
		now:        time.Now,
	}
}

// NormalizeEmail trims surrounding whitespace and lower-cases the address.
func NormalizeEmail(raw string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(raw))
}

func (s *waitlistService) Join(ctx context.Context, rawEmail string) (*JoinResult, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	email := NormalizeEmail(rawEmail)
	if err := s.validateEmail(email); err != nil {
		logger.Info("Rejected waitlist submission", "reason", err.Error())
		s.metrics.observe(Classify(err))
		return nil, err
	}

	_, err := s.repository.CreateEntry(ctx, &models.WaitlistEntry{Email: email})
	outcome := Classify(err)
	s.metrics.observe(outcome)

	if !outcome.IsSuccess() {
		logger.Error("Failed to create waitlist entry", "error", err, "type", apperrors.GetErrorType(err))
		return nil, err
	}

	if outcome.Duplicate {
		logger.Info("Waitlist submission for existing email")
		return &JoinResult{Outcome: outcome, Email: email}, nil
	}

	logger.Info("Waitlist entry created")
	s.announce(ctx, logger, email)

	return &JoinResult{Outcome: outcome, Email: email}, nil
}

func (s *waitlistService) validateEmail(email string) error {
	if email == "" {
		return apperrors.NewInvalidRequestError(MessageEmailRequired, nil)
	}
	if err := s.validate.Var(email, emailRules); err != nil {
		return apperrors.NewInvalidRequestError(MessageEmailInvalid, err)
	}
	return nil
}

// announce publishes the signup event. Delivery failures never fail the submission.
func (s *waitlistService) announce(ctx context.Context, logger *log.Logger, email string) {
	if err := s.publisher.PublishSignup(ctx, events.NewSignupEvent(email, s.now())); err != nil {
		logger.Warn("Failed to publish signup event", "error", err)
	}
}
