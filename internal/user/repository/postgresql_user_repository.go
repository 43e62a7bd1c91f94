package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/nazarli-shabnam/subscription-tracker/internal/database"
	apperrors "github.com/nazarli-shabnam/subscription-tracker/internal/errors"
	"github.com/nazarli-shabnam/subscription-tracker/internal/user/domain"
)

// PostgreSQLUserRepository handles user persistence for PostgreSQL
type PostgreSQLUserRepository struct {
	db *sql.DB
}

// NewPostgreSQLUserRepository creates a new PostgreSQLUserRepository
func NewPostgreSQLUserRepository(db *sql.DB) *PostgreSQLUserRepository {
	return &PostgreSQLUserRepository{
		db: db,
	}
}

// Create inserts a new user
func (r *PostgreSQLUserRepository) Create(ctx context.Context, user *domain.User) error {
	querier := database.GetTx(ctx, r.db)

	reminderDays, err := encodeReminderDays(user.Preferences.ReminderDays)
	if err != nil {
		return err
	}

	query := `INSERT INTO users (id, name, email, reminder_days, email_enabled, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = querier.ExecContext(
		ctx,
		query,
		user.ID,
		user.Name,
		user.Email,
		reminderDays,
		user.Preferences.EmailEnabled,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.ErrUserAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create user")
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *PostgreSQLUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	var reminderDays sql.NullString
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, name, email, reminder_days, email_enabled, created_at, updated_at
			  FROM users WHERE id = $1`

	err := querier.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&reminderDays,
		&user.Preferences.EmailEnabled,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get user by id")
	}

	if user.Preferences.ReminderDays, err = decodeReminderDays(reminderDays); err != nil {
		return nil, err
	}

	return &user, nil
}

// UpdatePreferences overwrites the notification preferences of a user
func (r *PostgreSQLUserRepository) UpdatePreferences(
	ctx context.Context,
	id uuid.UUID,
	prefs domain.NotificationPreferences,
) error {
	querier := database.GetTx(ctx, r.db)

	reminderDays, err := encodeReminderDays(prefs.ReminderDays)
	if err != nil {
		return err
	}

	query := `UPDATE users SET reminder_days = $1, email_enabled = $2, updated_at = NOW() WHERE id = $3`

	result, err := querier.ExecContext(ctx, query, reminderDays, prefs.EmailEnabled, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to update notification preferences")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
