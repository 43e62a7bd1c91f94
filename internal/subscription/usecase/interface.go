// Package usecase implements subscription management: CRUD, cancellation,
// upcoming renewals and the lifecycle events emitted through the outbox.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	outboxDomain "github.com/nazarli-shabnam/subscription-tracker/internal/outbox/domain"
	"github.com/nazarli-shabnam/subscription-tracker/internal/subscription/domain"
)

// CreateSubscriptionInput contains the input data for creating a subscription
type CreateSubscriptionInput struct {
	OwnerID       uuid.UUID
	Name          string
	Description   string
	Price         decimal.Decimal
	Currency      string
	Frequency     string
	Category      string
	PaymentMethod string
	// Status is "active" or "trial"; empty means active.
	Status    string
	StartDate time.Time
}

// UpdateSubscriptionInput carries a partial update; nil fields are left unchanged.
type UpdateSubscriptionInput struct {
	Name          *string
	Description   *string
	Price         *decimal.Decimal
	Currency      *string
	Frequency     *string
	Category      *string
	PaymentMethod *string
	Status        *string
	StartDate     *time.Time
}

// UpcomingRenewal is a subscription renewing soon along with the days left.
type UpcomingRenewal struct {
	Subscription     *domain.Subscription
	DaysUntilRenewal int
}

// SubscriptionRepository defines subscription persistence operations.
type SubscriptionRepository interface {
	Create(ctx context.Context, s *domain.Subscription) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Subscription, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]*domain.Subscription, error)
	ListUpcomingRenewals(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]*domain.Subscription, error)
	Update(ctx context.Context, s *domain.Subscription) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// OutboxRepository stores lifecycle events in the caller's transaction.
type OutboxRepository interface {
	Create(ctx context.Context, event *outboxDomain.OutboxEvent) error
}

// ReminderStarter starts the renewal reminder workflow of a subscription.
type ReminderStarter interface {
	Start(ctx context.Context, subscriptionID uuid.UUID) (uuid.UUID, error)
}

// UseCase defines the subscription operations available to owners.
type UseCase interface {
	Create(ctx context.Context, input CreateSubscriptionInput) (*domain.Subscription, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (*domain.Subscription, error)
	List(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]*domain.Subscription, error)
	Upcoming(ctx context.Context, ownerID uuid.UUID, days int) ([]UpcomingRenewal, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, input UpdateSubscriptionInput) (*domain.Subscription, error)
	Cancel(ctx context.Context, ownerID, id uuid.UUID) (*domain.Subscription, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}
