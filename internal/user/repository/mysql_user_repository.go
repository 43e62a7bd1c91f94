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

// MySQLUserRepository handles user persistence for MySQL
type MySQLUserRepository struct {
	db *sql.DB
}

// NewMySQLUserRepository creates a new MySQLUserRepository
func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{
		db: db,
	}
}

// Create inserts a new user
func (r *MySQLUserRepository) Create(ctx context.Context, user *domain.User) error {
	querier := database.GetTx(ctx, r.db)

	// UUIDs are stored as BINARY(16)
	uuidBytes, err := user.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	reminderDays, err := encodeReminderDays(user.Preferences.ReminderDays)
	if err != nil {
		return err
	}

	query := `INSERT INTO users (id, name, email, reminder_days, email_enabled, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		uuidBytes,
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
func (r *MySQLUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	var idBytes []byte
	var reminderDays sql.NullString
	querier := database.GetTx(ctx, r.db)

	uuidBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `SELECT id, name, email, reminder_days, email_enabled, created_at, updated_at
			  FROM users WHERE id = ?`

	err = querier.QueryRowContext(ctx, query, uuidBytes).Scan(
		&idBytes,
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

	if err := user.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
	}

	if user.Preferences.ReminderDays, err = decodeReminderDays(reminderDays); err != nil {
		return nil, err
	}

	return &user, nil
}

// UpdatePreferences overwrites the notification preferences of a user
func (r *MySQLUserRepository) UpdatePreferences(
	ctx context.Context,
	id uuid.UUID,
	prefs domain.NotificationPreferences,
) error {
	querier := database.GetTx(ctx, r.db)

	uuidBytes, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	reminderDays, err := encodeReminderDays(prefs.ReminderDays)
	if err != nil {
		return err
	}

	// MySQL reports zero affected rows when values are unchanged, so existence is
	// checked separately.
	var exists int
	err = querier.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, uuidBytes).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrUserNotFound
		}
		return apperrors.Wrap(err, "failed to check user")
	}

	query := `UPDATE users SET reminder_days = ?, email_enabled = ?, updated_at = NOW() WHERE id = ?`
	if _, err := querier.ExecContext(ctx, query, reminderDays, prefs.EmailEnabled, uuidBytes); err != nil {
		return apperrors.Wrap(err, "failed to update notification preferences")
	}
	return nil
}
