package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	"github.com/nazarli-shabnam/subscription-tracker/internal/clock"
	"github.com/nazarli-shabnam/subscription-tracker/internal/user/domain"
	appValidation "github.com/nazarli-shabnam/subscription-tracker/internal/validation"
)

// maxReminderDay bounds a single offset to one year before renewal.
const maxReminderDay = 365

// UserUseCase handles user-related business logic
type UserUseCase struct {
	userRepo UserRepository
	clock    clock.Clock
}

// NewUserUseCase creates a new UserUseCase
func NewUserUseCase(userRepo UserRepository, clk clock.Clock) *UserUseCase {
	return &UserUseCase{
		userRepo: userRepo,
		clock:    clk,
	}
}

func validateRegisterUserInput(input RegisterUserInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Name,
			validation.Required.Error("name is required"),
			appValidation.NotBlank,
			validation.Length(2, 50).Error("name must be between 2 and 50 characters"),
		),
		validation.Field(&input.Email,
			validation.Required.Error("email is required"),
			appValidation.NotBlank,
			appValidation.Email,
			validation.Length(5, 255).Error("email must be between 5 and 255 characters"),
		),
	)
	return appValidation.WrapValidationError(err)
}

// Register creates a user with default notification preferences.
func (uc *UserUseCase) Register(ctx context.Context, input RegisterUserInput) (*domain.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	if err := validateRegisterUserInput(input); err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	user := &domain.User{
		ID:          uuid.Must(uuid.NewV7()),
		Name:        input.Name,
		Email:       input.Email,
		Preferences: domain.DefaultNotificationPreferences(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetByID retrieves a user by ID
func (uc *UserUseCase) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return uc.userRepo.GetByID(ctx, id)
}

// GetNotificationPreferences returns the stored preferences of a user.
func (uc *UserUseCase) GetNotificationPreferences(
	ctx context.Context,
	id uuid.UUID,
) (domain.NotificationPreferences, error) {
	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return domain.NotificationPreferences{}, err
	}
	return user.Preferences, nil
}

// UpdateNotificationPreferences merges input into the stored preferences.
// An empty reminder day list clears the override.
func (uc *UserUseCase) UpdateNotificationPreferences(
	ctx context.Context,
	id uuid.UUID,
	input UpdatePreferencesInput,
) (domain.NotificationPreferences, error) {
	if input.ReminderDays != nil {
		err := validation.Validate(*input.ReminderDays,
			validation.Length(0, 10).Error("at most 10 reminder days are allowed"),
			appValidation.PositiveDays,
			validation.Each(validation.Max(maxReminderDay)),
		)
		if err != nil {
			return domain.NotificationPreferences{}, appValidation.WrapValidationError(err)
		}
	}

	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return domain.NotificationPreferences{}, err
	}

	prefs := user.Preferences
	if input.ReminderDays != nil {
		prefs.ReminderDays = domain.NormalizeOffsets(*input.ReminderDays)
		if len(prefs.ReminderDays) == 0 {
			prefs.ReminderDays = nil
		}
	}
	if input.EmailEnabled != nil {
		prefs.EmailEnabled = *input.EmailEnabled
	}

	if err := uc.userRepo.UpdatePreferences(ctx, id, prefs); err != nil {
		return domain.NotificationPreferences{}, err
	}
	return prefs, nil
}
