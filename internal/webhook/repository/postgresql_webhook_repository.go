package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/nazarli-shabnam/subscription-tracker/internal/database"
	apperrors "github.com/nazarli-shabnam/subscription-tracker/internal/errors"
	"github.com/nazarli-shabnam/subscription-tracker/internal/webhook/domain"
)

const postgresWebhookColumns = `id, owner_id, url, secret, events, is_active, last_triggered_at,
			  failure_count, max_failures, created_at, updated_at`

// PostgreSQLWebhookRepository handles webhook persistence for PostgreSQL
type PostgreSQLWebhookRepository struct {
	db *sql.DB
}

// NewPostgreSQLWebhookRepository creates a new PostgreSQLWebhookRepository
func NewPostgreSQLWebhookRepository(db *sql.DB) *PostgreSQLWebhookRepository {
	return &PostgreSQLWebhookRepository{
		db: db,
	}
}

// Create inserts a new webhook registration
func (r *PostgreSQLWebhookRepository) Create(ctx context.Context, webhook *domain.Webhook) error {
	querier := database.GetTx(ctx, r.db)

	events, err := encodeEvents(webhook.Events)
	if err != nil {
		return err
	}

	query := `INSERT INTO webhooks (id, owner_id, url, secret, events, is_active, last_triggered_at,
			  failure_count, max_failures, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = querier.ExecContext(
		ctx,
		query,
		webhook.ID,
		webhook.OwnerID,
		webhook.URL,
		webhook.SealedSecret,
		events,
		webhook.IsActive,
		webhook.LastTriggeredAt,
		webhook.FailureCount,
		webhook.MaxFailures,
		webhook.CreatedAt,
		webhook.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create webhook")
	}
	return nil
}

// GetByID retrieves a webhook by ID
func (r *PostgreSQLWebhookRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Webhook, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + postgresWebhookColumns + ` FROM webhooks WHERE id = $1`

	webhook, err := r.scanWebhook(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrWebhookNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get webhook by id")
	}
	return webhook, nil
}

// ListByOwner returns every webhook of ownerID, newest first
func (r *PostgreSQLWebhookRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Webhook, error) {
	query := `SELECT ` + postgresWebhookColumns + ` FROM webhooks WHERE owner_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, ownerID)
}

// ListActiveForEvent returns the active webhooks of ownerID subscribed to event
func (r *PostgreSQLWebhookRepository) ListActiveForEvent(
	ctx context.Context,
	ownerID uuid.UUID,
	event domain.Event,
) ([]*domain.Webhook, error) {
	query := `SELECT ` + postgresWebhookColumns + ` FROM webhooks
			  WHERE owner_id = $1 AND is_active = TRUE ORDER BY created_at`
	webhooks, err := r.list(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	return lo.Filter(webhooks, func(w *domain.Webhook, _ int) bool { return w.Subscribes(event) }), nil
}

// Update persists the registration fields of a webhook. Activity and the
// failure streak are owned by SetActive and the delivery bookkeeping, so a
// stale in-memory copy can never overwrite them.
func (r *PostgreSQLWebhookRepository) Update(ctx context.Context, webhook *domain.Webhook) error {
	querier := database.GetTx(ctx, r.db)

	events, err := encodeEvents(webhook.Events)
	if err != nil {
		return err
	}

	query := `UPDATE webhooks SET url = $1, events = $2, max_failures = $3, updated_at = $4 WHERE id = $5`

	result, err := querier.ExecContext(
		ctx,
		query,
		webhook.URL,
		events,
		webhook.MaxFailures,
		webhook.UpdatedAt,
		webhook.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update webhook")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return domain.ErrWebhookNotFound
	}
	return nil
}

// SetActive switches a webhook on or off in a single statement. Activating
// also clears the failure streak; deactivating leaves it untouched.
func (r *PostgreSQLWebhookRepository) SetActive(
	ctx context.Context,
	id uuid.UUID,
	active bool,
	at time.Time,
) (domain.DeliveryState, error) {
	querier := database.GetTx(ctx, r.db)
	var state domain.DeliveryState

	query := `UPDATE webhooks
			  SET is_active = $1,
			      failure_count = CASE WHEN $1::boolean THEN 0 ELSE failure_count END,
			      updated_at = $2
			  WHERE id = $3
			  RETURNING failure_count, is_active`

	err := querier.QueryRowContext(ctx, query, active, at, id).Scan(&state.FailureCount, &state.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return state, domain.ErrWebhookNotFound
		}
		return state, apperrors.Wrap(err, "failed to set webhook activity")
	}
	return state, nil
}

// Delete removes a webhook
func (r *PostgreSQLWebhookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM webhooks WHERE id = $1`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete webhook")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return domain.ErrWebhookNotFound
	}
	return nil
}

// RecordSuccess resets the failure streak and stamps the delivery time.
// Delivery bookkeeping always runs on the pool so concurrent deliveries never
// share a caller's transaction.
func (r *PostgreSQLWebhookRepository) RecordSuccess(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE webhooks SET failure_count = 0, last_triggered_at = $1, updated_at = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to record webhook success")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return domain.ErrWebhookNotFound
	}
	return nil
}

// RecordFailure increments the failure streak and deactivates the webhook once
// it reaches max_failures, in a single statement.
func (r *PostgreSQLWebhookRepository) RecordFailure(
	ctx context.Context,
	id uuid.UUID,
	at time.Time,
) (domain.DeliveryState, error) {
	var state domain.DeliveryState

	query := `UPDATE webhooks
			  SET failure_count = failure_count + 1,
			      is_active = CASE WHEN failure_count + 1 >= max_failures THEN FALSE ELSE is_active END,
			      updated_at = $1
			  WHERE id = $2
			  RETURNING failure_count, is_active`

	err := r.db.QueryRowContext(ctx, query, at, id).Scan(&state.FailureCount, &state.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return state, domain.ErrWebhookNotFound
		}
		return state, apperrors.Wrap(err, "failed to record webhook failure")
	}
	return state, nil
}

func (r *PostgreSQLWebhookRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Webhook, error) {
	querier := database.GetTx(ctx, r.db)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list webhooks")
	}
	defer func() {
		_ = rows.Close()
	}()

	webhooks := make([]*domain.Webhook, 0)
	for rows.Next() {
		webhook, err := r.scanWebhook(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan webhook")
		}
		webhooks = append(webhooks, webhook)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate webhooks")
	}
	return webhooks, nil
}

func (r *PostgreSQLWebhookRepository) scanWebhook(row rowScanner) (*domain.Webhook, error) {
	var webhook domain.Webhook
	var events string
	var lastTriggeredAt sql.NullTime

	err := row.Scan(
		&webhook.ID,
		&webhook.OwnerID,
		&webhook.URL,
		&webhook.SealedSecret,
		&events,
		&webhook.IsActive,
		&lastTriggeredAt,
		&webhook.FailureCount,
		&webhook.MaxFailures,
		&webhook.CreatedAt,
		&webhook.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lastTriggeredAt.Valid {
		webhook.LastTriggeredAt = &lastTriggeredAt.Time
	}
	if webhook.Events, err = decodeEvents(events); err != nil {
		return nil, err
	}
	return &webhook, nil
}
