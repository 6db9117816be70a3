package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Account event types.
const (
	AccountRegistered    = "account.registered"
	AccountUpdated       = "account.updated"
	AccountActivated     = "account.activated"
	AccountDeactivated   = "account.deactivated"
	AccountEmailVerified = "account.email_verified"
	AccountRoleChanged   = "account.role_changed"
	AccountSecretChanged = "account.secret_changed"
	AccountDeleted       = "account.deleted"
)

// AccountEvent describes a state change that happened to one account.
// Attributes never carry secrets, hashes or email addresses.
type AccountEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the Account* constants
	Type string `json:"type"`

	// AccountID identifies the account the event is about
	AccountID uuid.UUID `json:"account_id"`

	// OccurredAt is when the change was made
	OccurredAt time.Time `json:"occurred_at"`

	// Attributes holds optional event-specific details
	Attributes map[string]string `json:"attributes,omitempty"`
}

// NewAccountEvent creates an AccountEvent with a fresh ID.
func NewAccountEvent(eventType string, accountID uuid.UUID, occurredAt time.Time, attrs map[string]string) *AccountEvent {
	return &AccountEvent{
		ID:         uuid.New(),
		Type:       eventType,
		AccountID:  accountID,
		OccurredAt: occurredAt,
		Attributes: attrs,
	}
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *AccountEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *AccountEvent) error
}

// HandlerFunc adapts an ordinary function to the EventHandler interface.
type HandlerFunc func(ctx context.Context, event *AccountEvent) error

// HandleEvent calls f(ctx, event).
func (f HandlerFunc) HandleEvent(ctx context.Context, event *AccountEvent) error {
	return f(ctx, event)
}
