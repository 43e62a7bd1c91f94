package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nazarli-shabnam/subscription-tracker/internal/reminder/domain"
	"github.com/nazarli-shabnam/subscription-tracker/internal/testutil"
)

func TestMySQLTaskRepository_Create(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close() //nolint:errcheck

		repo := NewMySQLTaskRepository(db)
		task := domain.NewTask(uuid.Must(uuid.NewV7()), []int{3, 1}, time.Now().UTC())
		idBytes, _ := task.ID.MarshalBinary()
		subscriptionBytes, _ := task.SubscriptionID.MarshalBinary()

		mock.ExpectExec("INSERT INTO reminder_tasks").
			WithArgs(
				idBytes, subscriptionBytes, "[3,1]", 0, task.WakeAt, domain.TaskStatusPending, false,
				0, nil, nil, task.CreatedAt, task.UpdatedAt,
			).
			WillReturnResult(sqlmock.NewResult(1, 1))

		require.NoError(t, repo.Create(context.Background(), task))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("AlreadyPending", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close() //nolint:errcheck

		repo := NewMySQLTaskRepository(db)
		mock.ExpectExec("INSERT INTO reminder_tasks").
			WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

		err = repo.Create(context.Background(), domain.NewTask(uuid.Must(uuid.NewV7()), []int{1}, time.Now()))
		assert.ErrorIs(t, err, domain.ErrTaskAlreadyPending)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMySQLTaskRepository_ClaimDue(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	repo := NewMySQLTaskRepository(db)
	now := time.Now().UTC()
	id := uuid.Must(uuid.NewV7())
	subscriptionID := uuid.Must(uuid.NewV7())
	idBytes, _ := id.MarshalBinary()
	subscriptionBytes, _ := subscriptionID.MarshalBinary()

	mock.ExpectQuery("WHERE status = \\? AND wake_at <= \\?(.+)FOR UPDATE SKIP LOCKED").
		WithArgs(domain.TaskStatusPending, now, 5).
		WillReturnRows(sqlmock.NewRows(taskColumnNames).AddRow(
			idBytes, subscriptionBytes, "[7,5,2,1]", 1, now, "pending", true, 0, nil, nil, now, now,
		))

	tasks, err := repo.ClaimDue(context.Background(), now, 5)

	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, id, tasks[0].ID)
	assert.Equal(t, subscriptionID, tasks[0].SubscriptionID)
	offset, ok := tasks[0].CurrentOffset()
	assert.True(t, ok)
	assert.Equal(t, 5, offset)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLTaskRepository_GetPendingBySubscriptionNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	repo := NewMySQLTaskRepository(db)
	mock.ExpectQuery("SELECT (.+) FROM reminder_tasks WHERE subscription_id = \\?").
		WillReturnRows(sqlmock.NewRows(taskColumnNames))

	_, err = repo.GetPendingBySubscription(context.Background(), uuid.Must(uuid.NewV7()))
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLTaskRepository_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	repo := NewMySQLTaskRepository(db)
	now := time.Now().UTC()
	task := domain.NewTask(uuid.Must(uuid.NewV7()), []int{1}, now)
	task.Complete(now)
	idBytes, _ := task.ID.MarshalBinary()

	mock.ExpectExec("UPDATE reminder_tasks").
		WithArgs(0, task.WakeAt, domain.TaskStatusCompleted, false, 0, nil, now, now, idBytes).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(context.Background(), task))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLTaskRepository_Integration(t *testing.T) {
	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	ctx := context.Background()
	repo := NewMySQLTaskRepository(db)
	ownerID := testutil.CreateTestUser(t, db, "mysql", "reminders@example.com")
	now := time.Now().UTC().Truncate(time.Microsecond)
	subscriptionID := testutil.CreateTestSubscription(t, db, "mysql", ownerID, now.AddDate(0, 0, 10))

	task := domain.NewTask(subscriptionID, []int{7, 5, 2, 1}, now)
	require.NoError(t, repo.Create(ctx, task))
	assert.ErrorIs(t, repo.Create(ctx, domain.NewTask(subscriptionID, []int{1}, now)), domain.ErrTaskAlreadyPending)

	due, err := repo.ClaimDue(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, due, 1)

	task.Started = true
	task.Suspend(now.AddDate(0, 0, 3), now.Add(time.Second))
	require.NoError(t, repo.Update(ctx, task))

	found, err := repo.GetPendingBySubscription(ctx, subscriptionID)
	require.NoError(t, err)
	assert.Equal(t, []int{7, 5, 2, 1}, found.Offsets)
	assert.True(t, found.Started)

	task.Complete(now.Add(2 * time.Second))
	require.NoError(t, repo.Update(ctx, task))

	_, err = repo.GetPendingBySubscription(ctx, subscriptionID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	require.NoError(t, repo.Create(ctx, domain.NewTask(subscriptionID, []int{1}, now)))
}
