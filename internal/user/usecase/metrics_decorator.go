package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nazarli-shabnam/subscription-tracker/internal/metrics"
	"github.com/nazarli-shabnam/subscription-tracker/internal/user/domain"
)

// userUseCaseWithMetrics decorates UseCase with metrics instrumentation.
type userUseCaseWithMetrics struct {
	next    UseCase
	metrics metrics.BusinessMetrics
}

// NewUserUseCaseWithMetrics wraps a UseCase with metrics recording.
func NewUserUseCaseWithMetrics(useCase UseCase, m metrics.BusinessMetrics) UseCase {
	return &userUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (u *userUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	u.metrics.RecordOperation(ctx, "user", operation, status)
	u.metrics.RecordDuration(ctx, "user", operation, time.Since(start), status)
}

func (u *userUseCaseWithMetrics) Register(ctx context.Context, input RegisterUserInput) (*domain.User, error) {
	start := time.Now()
	user, err := u.next.Register(ctx, input)
	u.record(ctx, "user_register", start, err)
	return user, err
}

func (u *userUseCaseWithMetrics) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	start := time.Now()
	user, err := u.next.GetByID(ctx, id)
	u.record(ctx, "user_get", start, err)
	return user, err
}

func (u *userUseCaseWithMetrics) GetNotificationPreferences(
	ctx context.Context,
	id uuid.UUID,
) (domain.NotificationPreferences, error) {
	start := time.Now()
	prefs, err := u.next.GetNotificationPreferences(ctx, id)
	u.record(ctx, "preferences_get", start, err)
	return prefs, err
}

func (u *userUseCaseWithMetrics) UpdateNotificationPreferences(
	ctx context.Context,
	id uuid.UUID,
	input UpdatePreferencesInput,
) (domain.NotificationPreferences, error) {
	start := time.Now()
	prefs, err := u.next.UpdateNotificationPreferences(ctx, id, input)
	u.record(ctx, "preferences_update", start, err)
	return prefs, err
}
