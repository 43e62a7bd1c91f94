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

// MySQLTaskRepository handles reminder task persistence for MySQL
type MySQLTaskRepository struct {
	db *sql.DB
}

// NewMySQLTaskRepository creates a new MySQLTaskRepository
func NewMySQLTaskRepository(db *sql.DB) *MySQLTaskRepository {
	return &MySQLTaskRepository{
		db: db,
	}
}

// Create inserts a new task. The pending_subscription_id generated column keeps
// at most one pending task per subscription.
func (r *MySQLTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	querier := database.GetTx(ctx, r.db)

	// UUIDs are stored as BINARY(16)
	idBytes, err := task.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}
	subscriptionBytes, err := task.SubscriptionID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal subscription UUID")
	}

	offsets, err := encodeOffsets(task.Offsets)
	if err != nil {
		return err
	}

	query := `INSERT INTO reminder_tasks (` + taskColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		idBytes,
		subscriptionBytes,
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
func (r *MySQLTaskRepository) GetPendingBySubscription(
	ctx context.Context,
	subscriptionID uuid.UUID,
) (*domain.Task, error) {
	querier := database.GetTx(ctx, r.db)

	subscriptionBytes, err := subscriptionID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal subscription UUID")
	}

	query := `SELECT ` + taskColumns + ` FROM reminder_tasks WHERE subscription_id = ? AND status = ?`

	task, err := r.scanTask(querier.QueryRowContext(ctx, query, subscriptionBytes, domain.TaskStatusPending))
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
func (r *MySQLTaskRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*domain.Task, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + taskColumns + ` FROM reminder_tasks
			  WHERE status = ? AND wake_at <= ?
			  ORDER BY wake_at ASC
			  LIMIT ?
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
func (r *MySQLTaskRepository) Update(ctx context.Context, task *domain.Task) error {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := task.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `UPDATE reminder_tasks
			  SET next_offset_index = ?, wake_at = ?, status = ?, started = ?, attempts = ?,
			      last_error = ?, completed_at = ?, updated_at = ?
			  WHERE id = ?`

	// updated_at always changes, so zero affected rows means the task is gone.
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
		idBytes,
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

func (r *MySQLTaskRepository) scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var idBytes, subscriptionBytes []byte
	var offsets string

	err := row.Scan(
		&idBytes,
		&subscriptionBytes,
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

	if err := task.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
	}
	if err := task.SubscriptionID.UnmarshalBinary(subscriptionBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal subscription UUID")
	}
	if task.Offsets, err = decodeOffsets(offsets); err != nil {
		return nil, err
	}
	return &task, nil
}
