package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/nazarli-shabnam/subscription-tracker/internal/database"
	apperrors "github.com/nazarli-shabnam/subscription-tracker/internal/errors"
	"github.com/nazarli-shabnam/subscription-tracker/internal/reminder/domain"
)

// PostgreSQLTaskRepository handles reminder task persistence for PostgreSQL
type PostgreSQLTaskRepository struct {
	db *sql.DB
}

// NewPostgreSQLTaskRepository creates a new PostgreSQLTaskRepository
func NewPostgreSQLTaskRepository(db *sql.DB) *PostgreSQLTaskRepository {
	return &PostgreSQLTaskRepository{
		db: db,
	}
}

// Create inserts a new task. At most one pending task may exist per subscription.
func (r *PostgreSQLTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	querier := database.GetTx(ctx, r.db)

	offsets, err := encodeOffsets(task.Offsets)
	if err != nil {
		return err
	}

	query := `INSERT INTO reminder_tasks (` + taskColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = querier.ExecContext(
		ctx,
		query,
		task.ID,
		task.SubscriptionID,
		offsets,
		task.NextOffsetIndex,
		task.WakeAt,
		task.Status,
		task.Started,
		task.Attempts,
		task.LastError,
		task.CompletedAt,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.ErrTaskAlreadyPending
		}
		return apperrors.Wrap(err, "failed to create reminder task")
	}
	return nil
}

// GetPendingBySubscription returns the live task of a subscription
func (r *PostgreSQLTaskRepository) GetPendingBySubscription(
	ctx context.Context,
	subscriptionID uuid.UUID,
) (*domain.Task, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + taskColumns + ` FROM reminder_tasks WHERE subscription_id = $1 AND status = $2`

	task, err := r.scanTask(querier.QueryRowContext(ctx, query, subscriptionID, domain.TaskStatusPending))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get pending reminder task")
	}
	return task, nil
}

// ClaimDue locks up to limit pending tasks whose wake-up time has come,
// earliest first. Rows locked by another worker are skipped.
func (r *PostgreSQLTaskRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*domain.Task, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + taskColumns + ` FROM reminder_tasks
			  WHERE status = $1 AND wake_at <= $2
			  ORDER BY wake_at ASC
			  LIMIT $3
			  FOR UPDATE SKIP LOCKED`

	rows, err := querier.QueryContext(ctx, query, domain.TaskStatusPending, now, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to claim due reminder tasks")
	}
	defer rows.Close() //nolint:errcheck

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := r.scanTask(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan reminder task")
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate reminder tasks")
	}
	return tasks, nil
}

// Update persists the progress of a task
func (r *PostgreSQLTaskRepository) Update(ctx context.Context, task *domain.Task) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE reminder_tasks
			  SET next_offset_index = $1, wake_at = $2, status = $3, started = $4, attempts = $5,
			      last_error = $6, completed_at = $7, updated_at = $8
			  WHERE id = $9`

	result, err := querier.ExecContext(
		ctx,
		query,
		task.NextOffsetIndex,
		task.WakeAt,
		task.Status,
		task.Started,
		task.Attempts,
		task.LastError,
		task.CompletedAt,
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update reminder task")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *PostgreSQLTaskRepository) scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var offsets string

	err := row.Scan(
		&task.ID,
		&task.SubscriptionID,
		&offsets,
		&task.NextOffsetIndex,
		&task.WakeAt,
		&task.Status,
		&task.Started,
		&task.Attempts,
		&task.LastError,
		&task.CompletedAt,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if task.Offsets, err = decodeOffsets(offsets); err != nil {
		return nil, err
	}
	return &task, nil
}
