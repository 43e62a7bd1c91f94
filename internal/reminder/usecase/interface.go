// Package usecase runs the renewal reminder workflow: it starts one task per
// subscription and wakes due tasks to dispatch reminders at each offset.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	outboxDomain "github.com/nazarli-shabnam/subscription-tracker/internal/outbox/domain"
	"github.com/nazarli-shabnam/subscription-tracker/internal/reminder/domain"
	subscriptionDomain "github.com/nazarli-shabnam/subscription-tracker/internal/subscription/domain"
	userDomain "github.com/nazarli-shabnam/subscription-tracker/internal/user/domain"
)

// Config holds reminder worker configuration
type Config struct {
	Interval           time.Duration
	BatchSize          int
	RetryInterval      time.Duration
	SnapshotMaxRetries int
	DefaultOffsets     []int
}

// TaskRepository defines reminder task persistence operations.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	GetPendingBySubscription(ctx context.Context, subscriptionID uuid.UUID) (*domain.Task, error)
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
}

// SnapshotReader reads the current state of a subscription.
type SnapshotReader interface {
	Snapshot(ctx context.Context, id uuid.UUID) (*subscriptionDomain.Subscription, error)
}

// PreferencesReader resolves the notification preferences of a user.
type PreferencesReader interface {
	GetNotificationPreferences(ctx context.Context, id uuid.UUID) (userDomain.NotificationPreferences, error)
}

// Dispatcher sends one reminder. Errors are logged by the caller and never
// stop the schedule.
type Dispatcher interface {
	Dispatch(ctx context.Context, label string, s *subscriptionDomain.Subscription) error
}

// OutboxRepository stores reminder events in the worker's transaction.
type OutboxRepository interface {
	Create(ctx context.Context, event *outboxDomain.OutboxEvent) error
}

// UseCase defines the reminder workflow operations.
type UseCase interface {
	// Start returns the run ID of the subscription's pending workflow, creating
	// one if none is pending.
	Start(ctx context.Context, subscriptionID uuid.UUID) (uuid.UUID, error)
	// ProcessDue wakes one batch of due tasks and returns how many were handled.
	ProcessDue(ctx context.Context) (int, error)
	// Run polls for due tasks every Interval until ctx is cancelled.
	Run(ctx context.Context) error
}
