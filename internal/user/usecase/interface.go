// Package usecase implements the user directory: registration and notification preferences.
package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/nazarli-shabnam/subscription-tracker/internal/user/domain"
)

// RegisterUserInput contains the input data for user registration
type RegisterUserInput struct {
	Name  string
	Email string
}

// UpdatePreferencesInput carries a partial preferences update; nil fields are left unchanged.
type UpdatePreferencesInput struct {
	ReminderDays *[]int
	EmailEnabled *bool
}

// UserRepository defines user persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdatePreferences(ctx context.Context, id uuid.UUID, prefs domain.NotificationPreferences) error
}

// UseCase defines the user directory operations.
type UseCase interface {
	Register(ctx context.Context, input RegisterUserInput) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetNotificationPreferences(ctx context.Context, id uuid.UUID) (domain.NotificationPreferences, error)
	UpdateNotificationPreferences(
		ctx context.Context,
		id uuid.UUID,
		input UpdatePreferencesInput,
	) (domain.NotificationPreferences, error)
}
