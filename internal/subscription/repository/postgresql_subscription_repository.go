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

// PostgreSQLSubscriptionRepository handles subscription persistence for PostgreSQL
type PostgreSQLSubscriptionRepository struct {
	db *sql.DB
}

// NewPostgreSQLSubscriptionRepository creates a new PostgreSQLSubscriptionRepository
func NewPostgreSQLSubscriptionRepository(db *sql.DB) *PostgreSQLSubscriptionRepository {
	return &PostgreSQLSubscriptionRepository{
		db: db,
	}
}

// Create inserts a new subscription
func (r *PostgreSQLSubscriptionRepository) Create(ctx context.Context, s *domain.Subscription) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO subscriptions (` + subscriptionColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := querier.ExecContext(
		ctx,
		query,
		s.ID,
		s.OwnerID,
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
func (r *PostgreSQLSubscriptionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Subscription, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1`

	s, err := r.scanSubscription(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSubscriptionNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get subscription by id")
	}
	return s, nil
}

// ListByOwner returns a page of ownerID's subscriptions ordered by renewal date
func (r *PostgreSQLSubscriptionRepository) ListByOwner(
	ctx context.Context,
	ownerID uuid.UUID,
	offset, limit int,
) ([]*domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions
			  WHERE owner_id = $1 ORDER BY renewal_date, id LIMIT $2 OFFSET $3`
	return r.list(ctx, query, ownerID, limit, offset)
}

// ListUpcomingRenewals returns ownerID's active and trial subscriptions renewing
// within [from, to], soonest first
func (r *PostgreSQLSubscriptionRepository) ListUpcomingRenewals(
	ctx context.Context,
	ownerID uuid.UUID,
	from, to time.Time,
) ([]*domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions
			  WHERE owner_id = $1 AND status IN ($2, $3) AND renewal_date >= $4 AND renewal_date <= $5
			  ORDER BY renewal_date, id`
	return r.list(ctx, query, ownerID, domain.StatusActive, domain.StatusTrial, from, to)
}

// Update persists every mutable field of a subscription
func (r *PostgreSQLSubscriptionRepository) Update(ctx context.Context, s *domain.Subscription) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE subscriptions SET name = $1, description = $2, price = $3, currency = $4,
			  frequency = $5, category = $6, payment_method = $7, status = $8, start_date = $9,
			  renewal_date = $10, cancellation_date = $11, updated_at = $12
			  WHERE id = $13`

	result, err := querier.ExecContext(
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
		s.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update subscription")
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

// Delete removes a subscription
func (r *PostgreSQLSubscriptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = $1`, id)
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

func (r *PostgreSQLSubscriptionRepository) list(
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

func (r *PostgreSQLSubscriptionRepository) scanSubscription(row rowScanner) (*domain.Subscription, error) {
	var s domain.Subscription
	var cancellationDate sql.NullTime

	err := row.Scan(
		&s.ID,
		&s.OwnerID,
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

	if cancellationDate.Valid {
		s.CancellationDate = &cancellationDate.Time
	}
	return &s, nil
}
