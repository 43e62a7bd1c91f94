// Package usecase implements the webhook registry and the event dispatcher that
// delivers signed domain events to registered listeners.
package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/nazarli-shabnam/subscription-tracker/internal/webhook/domain"
)

// CreateWebhookInput contains the input data for registering a webhook
type CreateWebhookInput struct {
	OwnerID     uuid.UUID
	URL         string
	Events      []string
	MaxFailures *int
}

// UpdateWebhookInput carries a partial update; nil fields are left unchanged.
type UpdateWebhookInput struct {
	URL         *string
	Events      *[]string
	IsActive    *bool
	MaxFailures *int
}

// CreateWebhookOutput is a freshly registered webhook with its plain secret.
// The secret is never retrievable again.
type CreateWebhookOutput struct {
	Webhook *domain.Webhook
	Secret  string
}

// WebhookRepository defines webhook persistence operations.
type WebhookRepository interface {
	Create(ctx context.Context, webhook *domain.Webhook) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Webhook, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Webhook, error)
	ListActiveForEvent(ctx context.Context, ownerID uuid.UUID, event domain.Event) ([]*domain.Webhook, error)
	// Update writes the registration fields only: url, events and max_failures.
	Update(ctx context.Context, webhook *domain.Webhook) error
	// SetActive switches activity atomically; activating also clears the
	// failure streak.
	SetActive(ctx context.Context, id uuid.UUID, active bool, at time.Time) (domain.DeliveryState, error)
	Delete(ctx context.Context, id uuid.UUID) error
	RecordSuccess(ctx context.Context, id uuid.UUID, at time.Time) error
	RecordFailure(ctx context.Context, id uuid.UUID, at time.Time) (domain.DeliveryState, error)
}

// UseCase defines the webhook registry operations.
type UseCase interface {
	Create(ctx context.Context, input CreateWebhookInput) (*CreateWebhookOutput, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (*domain.Webhook, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]*domain.Webhook, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, input UpdateWebhookInput) (*domain.Webhook, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	// Reactivate turns a webhook back on regardless of owner. Used by operators.
	Reactivate(ctx context.Context, id uuid.UUID) (*domain.Webhook, error)
}

// Dispatcher delivers an event to every matching active webhook of an owner.
// Delivery problems are recorded per webhook and never returned.
type Dispatcher interface {
	Dispatch(ctx context.Context, ownerID uuid.UUID, event string, data json.RawMessage)
}
