package waitlist

import (
	"errors"

	apperrors "github.com/stackos/landing/pkg/errors"
)

const (
	MessageJoined    = "You’re in ✅ We’ll email you when early access opens."
	MessageDuplicate = "You’re already on the waitlist ✅"
	MessageFallback  = "Something went wrong. Please try again."
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Outcome is what the visitor is told about a submission.
type Outcome struct {
	Status    string
	Message   string
	Duplicate bool
}

func (o Outcome) IsSuccess() bool {
	return o.Status == StatusSuccess
}

// Classify maps a submission error onto the visitor-facing outcome.
// A unique-key conflict is a success: the address is already on the list.
// Only typed errors surface their message; anything else gets the fallback.
func Classify(err error) Outcome {
	if err == nil {
		return Outcome{Status: StatusSuccess, Message: MessageJoined}
	}

	if apperrors.IsConflict(err) {
		return Outcome{Status: StatusSuccess, Message: MessageDuplicate, Duplicate: true}
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return Outcome{Status: StatusError, Message: appErr.Message}
	}

	return Outcome{Status: StatusError, Message: MessageFallback}
}
