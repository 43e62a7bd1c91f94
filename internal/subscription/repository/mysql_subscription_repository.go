package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/nazarli-shabnam/subscription-tracker/internal/database"
	apperrors "github.com/nazarli-shabnam/subscription-tracker/internal/errors"
	"github.com/nazarli-shabnam/subscription-tracker/internal/subscription/domain"
)

// MySQLSubscriptionRepository handles subscription persistence for MySQL
type MySQLSubscriptionRepository struct {
	db *sql.DB
}

// NewMySQLSubscriptionRepository creates a new MySQLSubscriptionRepository
func NewMySQLSubscriptionRepository(db *sql.DB) *MySQLSubscriptionRepository {
	return &MySQLSubscriptionRepository{
		db: db,
	}
}

// Create inserts a new subscription
func (r *MySQLSubscriptionRepository) Create(ctx context.Context, s *domain.Subscription) error {
	querier := database.GetTx(ctx, r.db)

	// UUIDs are stored as BINARY(16)
	idBytes, err := s.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}
	ownerBytes, err := s.OwnerID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal owner UUID")
	}

	query := `INSERT INTO subscriptions (` + subscriptionColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		idBytes,
		ownerBytes,
		s.Name,
		s.Description,
		s.Price,
		s.Currency,
		s.Frequency,
		s.Category,
		s.PaymentMethod,
		s.Status,
		s.StartDate,
		s.RenewalDate,
		s.CancellationDate,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create subscription")
	}
	return nil
}

// GetByID retrieves a subscription by ID
func (r *MySQLSubscriptionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Subscription, error) {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = ?`

	s, err := r.scanSubscription(querier.QueryRowContext(ctx, query, idBytes))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSubscriptionNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get subscription by id")
	}
	return s, nil
}

// ListByOwner returns a page of ownerID's subscriptions ordered by renewal date
func (r *MySQLSubscriptionRepository) ListByOwner(
	ctx context.Context,
	ownerID uuid.UUID,
	offset, limit int,
) ([]*domain.Subscription, error) {
	ownerBytes, err := ownerID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal owner UUID")
	}
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions
			  WHERE owner_id = ? ORDER BY renewal_date, id LIMIT ? OFFSET ?`
	return r.list(ctx, query, ownerBytes, limit, offset)
}

// ListUpcomingRenewals returns ownerID's active and trial subscriptions renewing
// within [from, to], soonest first
func (r *MySQLSubscriptionRepository) ListUpcomingRenewals(
	ctx context.Context,
	ownerID uuid.UUID,
	from, to time.Time,
) ([]*domain.Subscription, error) {
	ownerBytes, err := ownerID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal owner UUID")
	}
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions
			  WHERE owner_id = ? AND status IN (?, ?) AND renewal_date >= ? AND renewal_date <= ?
			  ORDER BY renewal_date, id`
	return r.list(ctx, query, ownerBytes, domain.StatusActive, domain.StatusTrial, from, to)
}

// Update persists every mutable field of a subscription
func (r *MySQLSubscriptionRepository) Update(ctx context.Context, s *domain.Subscription) error {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := s.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	// MySQL reports zero affected rows when values are unchanged, so existence is
	// checked separately.
	var exists int
	err = querier.QueryRowContext(ctx, `SELECT 1 FROM subscriptions WHERE id = ?`, idBytes).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrSubscriptionNotFound
		}
		return apperrors.Wrap(err, "failed to check subscription")
	}

	query := `UPDATE subscriptions SET name = ?, description = ?, price = ?, currency = ?,
			  frequency = ?, category = ?, payment_method = ?, status = ?, start_date = ?,
			  renewal_date = ?, cancellation_date = ?, updated_at = ?
			  WHERE id = ?`

	_, err = querier.ExecContext(
		ctx,
		query,
		s.Name,
		s.Description,
		s.Price,
		s.Currency,
		s.Frequency,
		s.Category,
		s.PaymentMethod,
		s.Status,
		s.StartDate,
		s.RenewalDate,
		s.CancellationDate,
		s.UpdatedAt,
		idBytes,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update subscription")
	}
	return nil
}

// Delete removes a subscription
func (r *MySQLSubscriptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = ?`, idBytes)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete subscription")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return domain.ErrSubscriptionNotFound
	}
	return nil
}

func (r *MySQLSubscriptionRepository) list(
	ctx context.Context,
	query string,
	args ...any,
) ([]*domain.Subscription, error) {
	querier := database.GetTx(ctx, r.db)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list subscriptions")
	}
	defer func() {
		_ = rows.Close()
	}()

	subscriptions := make([]*domain.Subscription, 0)
	for rows.Next() {
		s, err := r.scanSubscription(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan subscription")
		}
		subscriptions = append(subscriptions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate subscriptions")
	}
	return subscriptions, nil
}

func (r *MySQLSubscriptionRepository) scanSubscription(row rowScanner) (*domain.Subscription, error) {
	var s domain.Subscription
	var idBytes, ownerBytes []byte
	var cancellationDate sql.NullTime

	err := row.Scan(
		&idBytes,
		&ownerBytes,
		&s.Name,
		&s.Description,
		&s.Price,
		&s.Currency,
		&s.Frequency,
		&s.Category,
		&s.PaymentMethod,
		&s.Status,
		&s.StartDate,
		&s.RenewalDate,
		&cancellationDate,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := s.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
	}
	if err := s.OwnerID.UnmarshalBinary(ownerBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal owner UUID")
	}
	if cancellationDate.Valid {
		s.CancellationDate = &cancellationDate.Time
	}
	return &s, nil
}
