// Package domain defines webhook registrations, the event enumeration they
// subscribe to and the delivery body sent to receivers.
package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/nazarli-shabnam/subscription-tracker/internal/errors"
)

// DefaultMaxFailures is the consecutive failure threshold used when a
// registration does not set its own.
const DefaultMaxFailures = 5

// Webhook is a user-owned HTTP listener for domain events.
type Webhook struct {
	ID      uuid.UUID
	OwnerID uuid.UUID
	URL     string
	// SealedSecret is the signing secret as stored: encrypted by the secret keeper.
	SealedSecret    string
	Events          []Event
	IsActive        bool
	LastTriggeredAt *time.Time
	FailureCount    int
	MaxFailures     int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Subscribes reports whether the webhook listens to event.
func (w *Webhook) Subscribes(event Event) bool {
	return lo.Contains(w.Events, event)
}

// IsOwnedBy reports whether ownerID owns the webhook.
func (w *Webhook) IsOwnedBy(ownerID uuid.UUID) bool {
	return w.OwnerID == ownerID
}

// ApplyState copies persisted delivery bookkeeping onto the webhook.
func (w *Webhook) ApplyState(state DeliveryState) {
	w.IsActive = state.IsActive
	w.FailureCount = state.FailureCount
}

// DeliveryState is the bookkeeping returned after recording a delivery attempt.
type DeliveryState struct {
	FailureCount int
	IsActive     bool
}

// Delivery is the JSON body POSTed to a webhook receiver.
type Delivery struct {
	Event     string          `json:"event"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Domain-specific errors for webhook operations.
var (
	// ErrWebhookNotFound indicates the webhook does not exist.
	ErrWebhookNotFound = errors.Wrap(errors.ErrNotFound, "webhook not found")

	// ErrWebhookForbidden indicates the caller does not own the webhook.
	ErrWebhookForbidden = errors.Wrap(errors.ErrForbidden, "you are not authorized to access this webhook")

	// ErrInvalidURL indicates the URL is not an absolute http(s) URL.
	ErrInvalidURL = errors.Wrap(errors.ErrInvalidInput, "webhook url must be a valid http or https url")

	// ErrNoEvents indicates the registration subscribes to nothing.
	ErrNoEvents = errors.Wrap(errors.ErrInvalidInput, "at least one event is required")

	// ErrUnknownEvent indicates an event name outside the enumeration.
	ErrUnknownEvent = errors.Wrap(errors.ErrInvalidInput, "unknown webhook event")

	// ErrInvalidMaxFailures indicates a non-positive failure threshold.
	ErrInvalidMaxFailures = errors.Wrap(errors.ErrInvalidInput, "max failures must be positive")
)
