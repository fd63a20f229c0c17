package events

import (
	"context"
	"time"
)

const (
	SignupEventName    = "waitlist_joined"
	SignupEventVersion = 1
)

// SignupEvent announces a new waitlist row. Duplicates are not announced.
type SignupEvent struct {
	Event   string    `json:"event"`
	Version int       `json:"version"`
	Email   string    `json:"email"`
	TS      time.Time `json:"ts"`
}

func NewSignupEvent(email string, at time.Time) SignupEvent {
	return SignupEvent{
		Event:   SignupEventName,
		Version: SignupEventVersion,
		Email:   email,
		TS:      at.UTC(),
	}
}

// Publisher delivers domain events to the message queue.
type Publisher interface {
	PublishSignup(ctx context.Context, event SignupEvent) error
	Ping(ctx context.Context) error
	Close() error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishSignup(context.Context, SignupEvent) error { return nil }

func (NopPublisher) Ping(context.Context) error { return nil }

func (NopPublisher) Close() error { return nil }
