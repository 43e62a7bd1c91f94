package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/nazarli-shabnam/subscription-tracker/internal/clock"
	"github.com/nazarli-shabnam/subscription-tracker/internal/database"
	outboxDomain "github.com/nazarli-shabnam/subscription-tracker/internal/outbox/domain"
	"github.com/nazarli-shabnam/subscription-tracker/internal/reminder/domain"
	subscriptionDomain "github.com/nazarli-shabnam/subscription-tracker/internal/subscription/domain"
	userDomain "github.com/nazarli-shabnam/subscription-tracker/internal/user/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var testNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

var testConfig = Config{
	Interval:           10 * time.Millisecond,
	BatchSize:          50,
	RetryInterval:      5 * time.Minute,
	SnapshotMaxRetries: 2,
	DefaultOffsets:     []int{7, 5, 2, 1},
}

type fixture struct {
	txManager   *MockTxManager
	tasks       *MockTaskRepository
	snapshots   *MockSnapshotReader
	preferences *MockPreferencesReader
	dispatcher  *MockDispatcher
	outbox      *MockOutboxRepository
	uc          *ReminderUseCase
}

func newFixture(clk clock.Clock) *fixture {
	f := &fixture{
		txManager:   &MockTxManager{},
		tasks:       &MockTaskRepository{},
		snapshots:   &MockSnapshotReader{},
		preferences: &MockPreferencesReader{},
		dispatcher:  &MockDispatcher{},
		outbox:      &MockOutboxRepository{},
	}
	f.uc = NewReminderUseCase(
		testConfig, f.txManager, f.tasks, f.snapshots, f.preferences, f.dispatcher, f.outbox, clk, nil,
	)
	f.uc.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	f.txManager.On("WithTx", mock.Anything, mock.Anything).Return(nil)
	return f
}

// claims queues one claim per task, then reports nothing due.
func (f *fixture) claims(tasks ...*domain.Task) {
	for _, task := range tasks {
		f.tasks.On("ClaimDue", mock.Anything, testNow, 1).Return([]*domain.Task{task}, nil).Once()
	}
	f.tasks.On("ClaimDue", mock.Anything, testNow, 1).Return([]*domain.Task{}, nil).Maybe()
}

func newActiveSubscription(renewal time.Time) *subscriptionDomain.Subscription {
	return &subscriptionDomain.Subscription{
		ID:          uuid.Must(uuid.NewV7()),
		OwnerID:     uuid.Must(uuid.NewV7()),
		Name:        "Netflix",
		Price:       decimal.RequireFromString("15.99"),
		Currency:    "USD",
		Frequency:   subscriptionDomain.FrequencyMonthly,
		Status:      subscriptionDomain.StatusActive,
		StartDate:   renewal.AddDate(0, 0, -30),
		RenewalDate: renewal,
	}
}

func dispatchedLabels(d *MockDispatcher) []string {
	labels := make([]string, 0, len(d.Calls))
	for _, call := range d.Calls {
		labels = append(labels, call.Arguments.String(1))
	}
	return labels
}

func TestReminderUseCase_Start(t *testing.T) {
	ctx := context.Background()

	t.Run("ReturnsPendingRun", func(t *testing.T) {
		f := newFixture(clock.Fixed(testNow))
		subscriptionID := uuid.Must(uuid.NewV7())
		existing := domain.NewTask(subscriptionID, []int{7}, testNow)

		f.tasks.On("GetPendingBySubscription", ctx, subscriptionID).Return(existing, nil)

		runID, err := f.uc.Start(ctx, subscriptionID)

		require.NoError(t, err)
		assert.Equal(t, existing.ID, runID)
		f.tasks.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("UsesOwnerReminderDays", func(t *testing.T) {
		f := newFixture(clock.Fixed(testNow))
		s := newActiveSubscription(testNow.AddDate(0, 0, 10))

		f.tasks.On("GetPendingBySubscription", ctx, s.ID).Return(nil, domain.ErrTaskNotFound)
		f.snapshots.On("Snapshot", ctx, s.ID).Return(s, nil)
		f.preferences.On("GetNotificationPreferences", ctx, s.OwnerID).
			Return(userDomain.NotificationPreferences{ReminderDays: []int{1, 3, 3, 0}, EmailEnabled: true}, nil)
		f.tasks.On("Create", ctx, mock.MatchedBy(func(task *domain.Task) bool {
			return task.SubscriptionID == s.ID &&
				assert.ObjectsAreEqual([]int{3, 1}, task.Offsets) &&
				task.WakeAt.Equal(testNow) &&
				task.IsPending()
		})).Return(nil)

		runID, err := f.uc.Start(ctx, s.ID)

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, runID)
		f.tasks.AssertExpectations(t)
	})

	t.Run("FallsBackToDefaultOffsets", func(t *testing.T) {
		f := newFixture(clock.Fixed(testNow))
		s := newActiveSubscription(testNow.AddDate(0, 0, 10))

		f.tasks.On("GetPendingBySubscription", ctx, s.ID).Return(nil, domain.ErrTaskNotFound)
		f.snapshots.On("Snapshot", ctx, s.ID).Return(s, nil)
		f.preferences.On("GetNotificationPreferences", ctx, s.OwnerID).
			Return(userDomain.NotificationPreferences{}, errors.New("db down"))
		f.tasks.On("Create", ctx, mock.MatchedBy(func(task *domain.Task) bool {
			return assert.ObjectsAreEqual([]int{7, 5, 2, 1}, task.Offsets)
		})).Return(nil)

		_, err := f.uc.Start(ctx, s.ID)

		require.NoError(t, err)
		f.tasks.AssertExpectations(t)
	})

	t.Run("MissingSubscriptionStillStarts", func(t *testing.T) {
		f := newFixture(clock.Fixed(testNow))
		subscriptionID := uuid.Must(uuid.NewV7())

		f.tasks.On("GetPendingBySubscription", ctx, subscriptionID).Return(nil, domain.ErrTaskNotFound)
		f.snapshots.On("Snapshot", ctx, subscriptionID).Return(nil, subscriptionDomain.ErrSubscriptionNotFound)
		f.tasks.On("Create", ctx, mock.Anything).Return(nil)

		_, err := f.uc.Start(ctx, subscriptionID)

		require.NoError(t, err)
		f.preferences.AssertNotCalled(t, "GetNotificationPreferences", mock.Anything, mock.Anything)
	})

	t.Run("ConcurrentStartReturnsWinner", func(t *testing.T) {
		f := newFixture(clock.Fixed(testNow))
		s := newActiveSubscription(testNow.AddDate(0, 0, 10))
		winner := domain.NewTask(s.ID, []int{7}, testNow)

		f.tasks.On("GetPendingBySubscription", ctx, s.ID).Return(nil, domain.ErrTaskNotFound).Once()
		f.tasks.On("GetPendingBySubscription", ctx, s.ID).Return(winner, nil).Once()
		f.snapshots.On("Snapshot", ctx, s.ID).Return(s, nil)
		f.preferences.On("GetNotificationPreferences", ctx, s.OwnerID).
			Return(userDomain.DefaultNotificationPreferences(), nil)
		f.tasks.On("Create", ctx, mock.Anything).Return(domain.ErrTaskAlreadyPending)

		runID, err := f.uc.Start(ctx, s.ID)

		require.NoError(t, err)
		assert.Equal(t, winner.ID, runID)
	})

	t.Run("RepositoryError", func(t *testing.T) {
		f := newFixture(clock.Fixed(testNow))
		subscriptionID := uuid.Must(uuid.NewV7())
		repoErr := errors.New("connection refused")

		f.tasks.On("GetPendingBySubscription", ctx, subscriptionID).Return(nil, repoErr)

		_, err := f.uc.Start(ctx, subscriptionID)
		assert.ErrorIs(t, err, repoErr)
	})
}

func TestReminderUseCase_ProcessDue(t *testing.T) {
	ctx := context.Background()

	t.Run("SuspendsUntilFirstOffset", func(t *testing.T) {
		f := newFixture(clock.Fixed(testNow))
		s := newActiveSubscription(testNow.AddDate(0, 0, 10))
		task := domain.NewTask(s.ID, []int{7, 5, 2, 1}, testNow)

		f.claims(task)
		f.snapshots.On("Snapshot", mock.Anything, s.ID).Return(s, nil)
		f.tasks.On("Update", mock.Anything, task).Return(nil)

		processed, err := f.uc.ProcessDue(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, processed)
		assert.True(t, task.Started)
		assert.True(t, task.IsPending())
		assert.Equal(t, 0, task.NextOffsetIndex)
		assert.Equal(t, testNow.AddDate(0, 0, 3), task.WakeAt)
		f.dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("DispatchesDueOffsetAndSuspends", func(t *testing.T) {
		f := newFixture(clock.Fixed(testNow))
		s := newActiveSubscription(testNow.AddDate(0, 0, 7))
		task := domain.NewTask(s.ID, []int{7, 5, 2, 1}, testNow)
		task.Started = true

		f.claims(task)
		f.snapshots.On("Snapshot", mock.Anything, s.ID).Return(s, nil)
		f.dispatcher.On("Dispatch", mock.Anything, "7 days before", s).Return(nil)
		f.outbox.On("Create", mock.Anything, mock.MatchedBy(func(event *outboxDomain.OutboxEvent) bool {
			payload, err := event.DecodePayload()
			return err == nil &&
				event.EventType == "subscription.renewal_reminder" &&
				payload.OwnerID == s.OwnerID
		})).Return(nil)
		f.tasks.On("Update", mock.Anything, task).Return(nil)

		_, err := f.uc.ProcessDue(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, task.NextOffsetIndex)
		assert.Equal(t, testNow.AddDate(0, 0, 2), task.WakeAt)
		f.dispatcher.AssertExpectations(t)
		f.outbox.AssertExpectations(t)
	})

	t.Run("LateStartDispatchesPastOffsetsInOrder", func(t *testing.T) {
		f := newFixture(clock.Fixed(testNow))
		s := newActiveSubscription(testNow.Add(36 * time.Hour))
		task := domain.NewTask(s.ID, []int{7, 5, 2, 1}, testNow)

		f.claims(task)
		f.snapshots.On("Snapshot", mock.Anything, s.ID).Return(s, nil)
		f.dispatcher.On("Dispatch", mock.Anything, mock.Anything, s).Return(nil)
		f.outbox.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.tasks.On("Update", mock.Anything, task).Return(nil)

		_, err := f.uc.ProcessDue(ctx)

		require.NoError(t, err)
		assert.Equal(t, []string{"7 days before", "5 days before", "2 days before"}, dispatchedLabels(f.dispatcher))
		assert.Equal(t, 3, task.NextOffsetIndex)
		assert.Equal(t, testNow.Add(12*time.Hour), task.WakeAt)
		assert.True(t, task.IsPending())
	})

	t.Run("DispatchFailureDoesNotStopSchedule", func(t *testing.T) {
		f := newFixture(clock.Fixed(testNow))
		s := newActiveSubscription(testNow.AddDate(0, 0, 2))
		task := domain.NewTask(s.ID, []int{2, 1}, testNow)
		task.Started = true

		f.claims(task)
		f.snapshots.On("Snapshot", mock.Anything, s.ID).Return(s, nil)
		f.dispatcher.On("Dispatch", mock.Anything, "2 days before", s).Return(errors.New("smtp down"))
		f.outbox.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.tasks.On("Update", mock.Anything, task).Return(nil)

		_, err := f.uc.ProcessDue(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, task.NextOffsetIndex)
		assert.Equal(t, testNow.AddDate(0, 0, 1), task.WakeAt)
	})

	t.Run("NonActiveSubscriptionCompletes", func(t *testing.T) {
		f := newFixture(clock.Fixed(testNow))
		s := newActiveSubscription(testNow.AddDate(0, 0, 5))
		s.Cancel(testNow)
		task := domain.NewTask(s.ID, []int{5, 2, 1}, testNow)
		task.Started = true

		f.claims(task)
		f.snapshots.On("Snapshot", mock.Anything, s.ID).Return(s, nil)
		f.tasks.On("Update", mock.Anything, task).Return(nil)

		_, err := f.uc.ProcessDue(ctx)

		require.NoError(t, err)
		assert.False(t, task.IsPending())
		require.NotNil(t, task.CompletedAt)
		f.dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("MissingSubscriptionCompletes", func(t *testing.T) {
		f := newFixture(clock.Fixed(testNow))
		task := domain.NewTask(uuid.Must(uuid.NewV7()), []int{1}, testNow)

		f.claims(task)
		f.snapshots.On("Snapshot", mock.Anything, task.SubscriptionID).
			Return(nil, subscriptionDomain.ErrSubscriptionNotFound)
		f.tasks.On("Update", mock.Anything, task).Return(nil)

		_, err := f.uc.ProcessDue(ctx)

		require.NoError(t, err)
		assert.False(t, task.IsPending())
		f.snapshots.AssertNumberOfCalls(t, "Snapshot", 1)
	})

	t.Run("PastRenewalOnFirstRunCompletes", func(t *testing.T) {
		f := newFixture(clock.Fixed(testNow))
		s := newActiveSubscription(testNow.Add(-time.Hour))
		task := domain.NewTask(s.ID, []int{7, 5, 2, 1}, testNow)

		f.claims(task)
		f.snapshots.On("Snapshot", mock.Anything, s.ID).Return(s, nil)
		f.tasks.On("Update", mock.Anything, task).Return(nil)

		_, err := f.uc.ProcessDue(ctx)

		require.NoError(t, err)
		assert.False(t, task.IsPending())
		f.dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("TransientSnapshotErrorRetriesLater", func(t *testing.T) {
		f := newFixture(clock.Fixed(testNow))
		task := domain.NewTask(uuid.Must(uuid.NewV7()), []int{1}, testNow)

		f.claims(task)
		f.snapshots.On("Snapshot", mock.Anything, task.SubscriptionID).Return(nil, errors.New("timeout"))
		f.tasks.On("Update", mock.Anything, task).Return(nil)

		_, err := f.uc.ProcessDue(ctx)

		require.NoError(t, err)
		f.snapshots.AssertNumberOfCalls(t, "Snapshot", 3)
		assert.True(t, task.IsPending())
		assert.Equal(t, 1, task.Attempts)
		require.NotNil(t, task.LastError)
		assert.Equal(t, "timeout", *task.LastError)
		assert.Equal(t, testNow.Add(5*time.Minute), task.WakeAt)
	})

	t.Run("FailingTaskKeepsEarlierCommits", func(t *testing.T) {
		f := newFixture(clock.Fixed(testNow))
		first := newActiveSubscription(testNow.AddDate(0, 0, 10))
		second := newActiveSubscription(testNow.AddDate(0, 0, 1))
		firstTask := domain.NewTask(first.ID, []int{7, 5, 2, 1}, testNow)
		secondTask := domain.NewTask(second.ID, []int{1}, testNow)
		secondTask.Started = true
		outboxErr := errors.New("insert failed")

		f.claims(firstTask, secondTask)
		f.snapshots.On("Snapshot", mock.Anything, first.ID).Return(first, nil)
		f.snapshots.On("Snapshot", mock.Anything, second.ID).Return(second, nil)
		f.dispatcher.On("Dispatch", mock.Anything, "1 day before", second).Return(nil)
		f.outbox.On("Create", mock.Anything, mock.Anything).Return(outboxErr)
		f.tasks.On("Update", mock.Anything, firstTask).Return(nil)

		processed, err := f.uc.ProcessDue(ctx)

		assert.ErrorIs(t, err, outboxErr)
		assert.Equal(t, 1, processed)
		f.txManager.AssertNumberOfCalls(t, "WithTx", 2)
		f.tasks.AssertCalled(t, "Update", mock.Anything, firstTask)
		f.tasks.AssertNotCalled(t, "Update", mock.Anything, secondTask)
	})

	t.Run("StopsAtBatchSize", func(t *testing.T) {
		f := newFixture(clock.Fixed(testNow))
		f.uc.config.BatchSize = 2
		tasks := make([]*domain.Task, 0, 3)
		for range 3 {
			s := newActiveSubscription(testNow.AddDate(0, 0, 10))
			task := domain.NewTask(s.ID, []int{7}, testNow)
			f.snapshots.On("Snapshot", mock.Anything, s.ID).Return(s, nil)
			f.tasks.On("Update", mock.Anything, task).Return(nil)
			tasks = append(tasks, task)
		}
		f.claims(tasks...)

		processed, err := f.uc.ProcessDue(ctx)

		require.NoError(t, err)
		assert.Equal(t, 2, processed)
		f.tasks.AssertNumberOfCalls(t, "ClaimDue", 2)
	})

	t.Run("OutboxErrorAbortsBatch", func(t *testing.T) {
		f := newFixture(clock.Fixed(testNow))
		s := newActiveSubscription(testNow.AddDate(0, 0, 1))
		task := domain.NewTask(s.ID, []int{1}, testNow)
		task.Started = true
		outboxErr := errors.New("insert failed")

		f.claims(task)
		f.snapshots.On("Snapshot", mock.Anything, s.ID).Return(s, nil)
		f.dispatcher.On("Dispatch", mock.Anything, "1 day before", s).Return(nil)
		f.outbox.On("Create", mock.Anything, mock.Anything).Return(outboxErr)

		processed, err := f.uc.ProcessDue(ctx)

		assert.ErrorIs(t, err, outboxErr)
		assert.Equal(t, 0, processed)
		f.tasks.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("ClaimError", func(t *testing.T) {
		f := newFixture(clock.Fixed(testNow))
		claimErr := errors.New("deadlock")

		f.tasks.On("ClaimDue", mock.Anything, testNow, 1).Return(nil, claimErr)

		_, err := f.uc.ProcessDue(ctx)
		assert.ErrorIs(t, err, claimErr)
	})
}

func TestReminderUseCase_ProcessDue_RetryCommitsAfterFailedSnapshot(t *testing.T) {
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	tasks := &MockTaskRepository{}
	snapshots := &MockSnapshotReader{}
	uc := NewReminderUseCase(
		testConfig, database.NewTxManager(db), tasks, snapshots,
		&MockPreferencesReader{}, &MockDispatcher{}, &MockOutboxRepository{}, clock.Fixed(testNow), nil,
	)
	uc.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }

	task := domain.NewTask(uuid.Must(uuid.NewV7()), []int{1}, testNow)
	inTx := mock.MatchedBy(func(ctx context.Context) bool { return database.InTx(ctx) })
	onPool := mock.MatchedBy(func(ctx context.Context) bool { return !database.InTx(ctx) })

	sqlMock.ExpectBegin()
	sqlMock.ExpectCommit()
	sqlMock.ExpectBegin()
	sqlMock.ExpectCommit()
	tasks.On("ClaimDue", inTx, testNow, 1).Return([]*domain.Task{task}, nil).Once()
	tasks.On("ClaimDue", inTx, testNow, 1).Return([]*domain.Task{}, nil).Once()
	snapshots.On("Snapshot", onPool, task.SubscriptionID).Return(nil, errors.New("connection reset"))
	tasks.On("Update", inTx, task).Return(nil)

	processed, err := uc.ProcessDue(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, processed)
	assert.Equal(t, 1, task.Attempts)
	assert.Equal(t, testNow.Add(5*time.Minute), task.WakeAt)
	snapshots.AssertNumberOfCalls(t, "Snapshot", 3)
	tasks.AssertExpectations(t)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

// memoryTaskRepository keeps tasks in memory so a workflow can be driven
// through several wake-ups.
type memoryTaskRepository struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]domain.Task
}

func newMemoryTaskRepository() *memoryTaskRepository {
	return &memoryTaskRepository{tasks: make(map[uuid.UUID]domain.Task)}
}

func (r *memoryTaskRepository) Create(_ context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.tasks {
		if existing.SubscriptionID == task.SubscriptionID && existing.IsPending() {
			return domain.ErrTaskAlreadyPending
		}
	}
	r.tasks[task.ID] = *task
	return nil
}

func (r *memoryTaskRepository) GetPendingBySubscription(
	_ context.Context,
	subscriptionID uuid.UUID,
) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, task := range r.tasks {
		if task.SubscriptionID == subscriptionID && task.IsPending() {
			return &task, nil
		}
	}
	return nil, domain.ErrTaskNotFound
}

func (r *memoryTaskRepository) ClaimDue(_ context.Context, now time.Time, limit int) ([]*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	due := make([]*domain.Task, 0)
	for _, task := range r.tasks {
		if task.IsPending() && !task.WakeAt.After(now) && len(due) < limit {
			due = append(due, &task)
		}
	}
	return due, nil
}

func (r *memoryTaskRepository) Update(_ context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[task.ID] = *task
	return nil
}

func (r *memoryTaskRepository) get(id uuid.UUID) domain.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tasks[id]
}

type scenario struct {
	now        time.Time
	repo       *memoryTaskRepository
	snapshots  *MockSnapshotReader
	dispatcher *MockDispatcher
	uc         *ReminderUseCase
}

func newScenario(s *subscriptionDomain.Subscription) *scenario {
	sc := &scenario{
		now:        testNow,
		repo:       newMemoryTaskRepository(),
		snapshots:  &MockSnapshotReader{},
		dispatcher: &MockDispatcher{},
	}
	txManager := &MockTxManager{}
	txManager.On("WithTx", mock.Anything, mock.Anything).Return(nil)
	preferences := &MockPreferencesReader{}
	preferences.On("GetNotificationPreferences", mock.Anything, s.OwnerID).
		Return(userDomain.DefaultNotificationPreferences(), nil)
	outbox := &MockOutboxRepository{}
	outbox.On("Create", mock.Anything, mock.Anything).Return(nil)

	sc.snapshots.On("Snapshot", mock.Anything, s.ID).Return(s, nil)
	sc.dispatcher.On("Dispatch", mock.Anything, mock.Anything, s).Return(nil)

	sc.uc = NewReminderUseCase(
		testConfig, txManager, sc.repo, sc.snapshots, preferences, sc.dispatcher, outbox,
		clock.Func(func() time.Time { return sc.now }), nil,
	)
	return sc
}

func TestReminderWorkflow_Scenarios(t *testing.T) {
	ctx := context.Background()

	t.Run("RenewalInTenDays", func(t *testing.T) {
		s := newActiveSubscription(testNow.AddDate(0, 0, 10))
		sc := newScenario(s)

		runID, err := sc.uc.Start(ctx, s.ID)
		require.NoError(t, err)

		_, err = sc.uc.ProcessDue(ctx)
		require.NoError(t, err)
		assert.Empty(t, dispatchedLabels(sc.dispatcher))

		expected := []string{}
		for _, offset := range []int{7, 5, 2, 1} {
			task := sc.repo.get(runID)
			require.True(t, task.IsPending())
			assert.Equal(t, domain.ReminderInstant(s.RenewalDate, offset), task.WakeAt)

			// waking just before the instant does nothing
			sc.now = task.WakeAt.Add(-time.Second)
			processed, err := sc.uc.ProcessDue(ctx)
			require.NoError(t, err)
			assert.Equal(t, 0, processed)

			sc.now = task.WakeAt
			_, err = sc.uc.ProcessDue(ctx)
			require.NoError(t, err)

			expected = append(expected, domain.Label(offset))
			assert.Equal(t, expected, dispatchedLabels(sc.dispatcher))
		}

		task := sc.repo.get(runID)
		assert.False(t, task.IsPending())

		sc.now = s.RenewalDate.AddDate(0, 0, 30)
		processed, err := sc.uc.ProcessDue(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, processed)
		assert.Len(t, dispatchedLabels(sc.dispatcher), 4)
	})

	t.Run("CancelledBetweenWakeUps", func(t *testing.T) {
		s := newActiveSubscription(testNow.AddDate(0, 0, 10))
		sc := newScenario(s)

		runID, err := sc.uc.Start(ctx, s.ID)
		require.NoError(t, err)
		_, err = sc.uc.ProcessDue(ctx)
		require.NoError(t, err)

		sc.now = sc.repo.get(runID).WakeAt
		_, err = sc.uc.ProcessDue(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"7 days before"}, dispatchedLabels(sc.dispatcher))

		s.Cancel(sc.now)

		for i := 0; i < 3; i++ {
			sc.now = sc.now.AddDate(0, 0, 3)
			_, err = sc.uc.ProcessDue(ctx)
			require.NoError(t, err)
		}

		assert.Equal(t, []string{"7 days before"}, dispatchedLabels(sc.dispatcher))
		task := sc.repo.get(runID)
		assert.False(t, task.IsPending())
	})

	t.Run("RenewalAlreadyPast", func(t *testing.T) {
		s := newActiveSubscription(testNow.Add(-time.Minute))
		sc := newScenario(s)

		runID, err := sc.uc.Start(ctx, s.ID)
		require.NoError(t, err)
		_, err = sc.uc.ProcessDue(ctx)
		require.NoError(t, err)

		assert.Empty(t, dispatchedLabels(sc.dispatcher))
		task := sc.repo.get(runID)
		assert.False(t, task.IsPending())
	})
}

func TestReminderUseCase_Run(t *testing.T) {
	f := newFixture(clock.Fixed(testNow))
	f.tasks.On("ClaimDue", mock.Anything, testNow, 1).Return([]*domain.Task{}, nil).Maybe()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- f.uc.Run(ctx)
	}()

	time.Sleep(35 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestReminderUseCaseWithMetrics(t *testing.T) {
	ctx := context.Background()
	inner := newFixture(clock.Fixed(testNow))
	m := &MockBusinessMetrics{}
	subscriptionID := uuid.Must(uuid.NewV7())
	existing := domain.NewTask(subscriptionID, []int{1}, testNow)

	inner.tasks.On("GetPendingBySubscription", ctx, subscriptionID).Return(existing, nil)
	inner.tasks.On("ClaimDue", mock.Anything, testNow, 1).Return(nil, errors.New("boom"))
	m.On("RecordOperation", ctx, "reminder", "workflow_start", "success").Return()
	m.On("RecordDuration", ctx, "reminder", "workflow_start", mock.Anything, "success").Return()
	m.On("RecordOperation", ctx, "reminder", "reminder_process_due", "error").Return()
	m.On("RecordDuration", ctx, "reminder", "reminder_process_due", mock.Anything, "error").Return()

	uc := NewReminderUseCaseWithMetrics(inner.uc, m)

	runID, err := uc.Start(ctx, subscriptionID)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, runID)

	_, err = uc.ProcessDue(ctx)
	assert.Error(t, err)
	m.AssertExpectations(t)
}
