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

const mysqlWebhookColumns = `id, owner_id, url, secret, events, is_active, last_triggered_at,
			  failure_count, max_failures, created_at, updated_at`

// MySQLWebhookRepository handles webhook persistence for MySQL
type MySQLWebhookRepository struct {
	db *sql.DB
}

// NewMySQLWebhookRepository creates a new MySQLWebhookRepository
func NewMySQLWebhookRepository(db *sql.DB) *MySQLWebhookRepository {
	return &MySQLWebhookRepository{
		db: db,
	}
}

// Create inserts a new webhook registration
func (r *MySQLWebhookRepository) Create(ctx context.Context, webhook *domain.Webhook) error {
	querier := database.GetTx(ctx, r.db)

	// UUIDs are stored as BINARY(16)
	idBytes, err := webhook.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}
	ownerBytes, err := webhook.OwnerID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal owner UUID")
	}

	events, err := encodeEvents(webhook.Events)
	if err != nil {
		return err
	}

	query := `INSERT INTO webhooks (id, owner_id, url, secret, events, is_active, last_triggered_at,
			  failure_count, max_failures, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		idBytes,
		ownerBytes,
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
func (r *MySQLWebhookRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Webhook, error) {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `SELECT ` + mysqlWebhookColumns + ` FROM webhooks WHERE id = ?`

	webhook, err := r.scanWebhook(querier.QueryRowContext(ctx, query, idBytes))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrWebhookNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get webhook by id")
	}
	return webhook, nil
}

// ListByOwner returns every webhook of ownerID, newest first
func (r *MySQLWebhookRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Webhook, error) {
	ownerBytes, err := ownerID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal owner UUID")
	}
	query := `SELECT ` + mysqlWebhookColumns + ` FROM webhooks WHERE owner_id = ? ORDER BY created_at DESC`
	return r.list(ctx, query, ownerBytes)
}

// ListActiveForEvent returns the active webhooks of ownerID subscribed to event
func (r *MySQLWebhookRepository) ListActiveForEvent(
	ctx context.Context,
	ownerID uuid.UUID,
	event domain.Event,
) ([]*domain.Webhook, error) {
	ownerBytes, err := ownerID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal owner UUID")
	}
	query := `SELECT ` + mysqlWebhookColumns + ` FROM webhooks
			  WHERE owner_id = ? AND is_active = TRUE ORDER BY created_at`
	webhooks, err := r.list(ctx, query, ownerBytes)
	if err != nil {
		return nil, err
	}
	return lo.Filter(webhooks, func(w *domain.Webhook, _ int) bool { return w.Subscribes(event) }), nil
}

// Update persists the registration fields of a webhook. Activity and the
// failure streak are owned by SetActive and the delivery bookkeeping.
func (r *MySQLWebhookRepository) Update(ctx context.Context, webhook *domain.Webhook) error {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := webhook.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	events, err := encodeEvents(webhook.Events)
	if err != nil {
		return err
	}

	// MySQL reports zero affected rows when values are unchanged, so existence is
	// checked separately.
	if err := r.ensureExists(ctx, querier, idBytes); err != nil {
		return err
	}

	query := `UPDATE webhooks SET url = ?, events = ?, max_failures = ?, updated_at = ? WHERE id = ?`

	_, err = querier.ExecContext(
		ctx,
		query,
		webhook.URL,
		events,
		webhook.MaxFailures,
		webhook.UpdatedAt,
		idBytes,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update webhook")
	}
	return nil
}

// SetActive switches a webhook on or off. Activating also clears the failure
// streak. MySQL evaluates SET assignments left to right, so the counter is
// reset before is_active is overwritten.
func (r *MySQLWebhookRepository) SetActive(
	ctx context.Context,
	id uuid.UUID,
	active bool,
	at time.Time,
) (domain.DeliveryState, error) {
	querier := database.GetTx(ctx, r.db)
	var state domain.DeliveryState

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return state, apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `UPDATE webhooks
			  SET failure_count = IF(?, 0, failure_count),
			      is_active = ?,
			      updated_at = ?
			  WHERE id = ?`

	if _, err := querier.ExecContext(ctx, query, active, active, at, idBytes); err != nil {
		return state, apperrors.Wrap(err, "failed to set webhook activity")
	}

	err = querier.QueryRowContext(ctx, `SELECT failure_count, is_active FROM webhooks WHERE id = ?`, idBytes).
		Scan(&state.FailureCount, &state.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return state, domain.ErrWebhookNotFound
		}
		return state, apperrors.Wrap(err, "failed to read webhook activity")
	}
	return state, nil
}

func (r *MySQLWebhookRepository) ensureExists(ctx context.Context, querier database.Querier, idBytes []byte) error {
	var exists int
	err := querier.QueryRowContext(ctx, `SELECT 1 FROM webhooks WHERE id = ?`, idBytes).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrWebhookNotFound
		}
		return apperrors.Wrap(err, "failed to check webhook")
	}
	return nil
}

// Delete removes a webhook
func (r *MySQLWebhookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM webhooks WHERE id = ?`, idBytes)
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
func (r *MySQLWebhookRepository) RecordSuccess(ctx context.Context, id uuid.UUID, at time.Time) error {
	idBytes, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `UPDATE webhooks SET failure_count = 0, last_triggered_at = ?, updated_at = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, at, at, idBytes); err != nil {
		return apperrors.Wrap(err, "failed to record webhook success")
	}
	return nil
}

// RecordFailure increments the failure streak and deactivates the webhook once
// it reaches max_failures. MySQL evaluates SET assignments left to right, so
// is_active is computed from the counter before it is incremented.
func (r *MySQLWebhookRepository) RecordFailure(
	ctx context.Context,
	id uuid.UUID,
	at time.Time,
) (domain.DeliveryState, error) {
	var state domain.DeliveryState

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return state, apperrors.Wrap(err, "failed to marshal UUID")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return state, apperrors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `UPDATE webhooks
			  SET is_active = IF(failure_count + 1 >= max_failures, FALSE, is_active),
			      failure_count = failure_count + 1,
			      updated_at = ?
			  WHERE id = ?`

	result, err := tx.ExecContext(ctx, query, at, idBytes)
	if err != nil {
		return state, apperrors.Wrap(err, "failed to record webhook failure")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return state, apperrors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return state, domain.ErrWebhookNotFound
	}

	err = tx.QueryRowContext(ctx, `SELECT failure_count, is_active FROM webhooks WHERE id = ?`, idBytes).
		Scan(&state.FailureCount, &state.IsActive)
	if err != nil {
		return state, apperrors.Wrap(err, "failed to read webhook failure state")
	}

	if err := tx.Commit(); err != nil {
		return state, apperrors.Wrap(err, "failed to commit transaction")
	}
	return state, nil
}

func (r *MySQLWebhookRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Webhook, error) {
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

func (r *MySQLWebhookRepository) scanWebhook(row rowScanner) (*domain.Webhook, error) {
	var webhook domain.Webhook
	var idBytes, ownerBytes []byte
	var events string
	var lastTriggeredAt sql.NullTime

	err := row.Scan(
		&idBytes,
		&ownerBytes,
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

	if err := webhook.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
	}
	if err := webhook.OwnerID.UnmarshalBinary(ownerBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal owner UUID")
	}
	if lastTriggeredAt.Valid {
		webhook.LastTriggeredAt = &lastTriggeredAt.Time
	}
	if webhook.Events, err = decodeEvents(events); err != nil {
		return nil, err
	}
	return &webhook, nil
}
