package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/nazarli-shabnam/subscription-tracker/internal/clock"
	"github.com/nazarli-shabnam/subscription-tracker/internal/database"
	outboxDomain "github.com/nazarli-shabnam/subscription-tracker/internal/outbox/domain"
	"github.com/nazarli-shabnam/subscription-tracker/internal/reminder/domain"
	subscriptionDomain "github.com/nazarli-shabnam/subscription-tracker/internal/subscription/domain"
	webhookDomain "github.com/nazarli-shabnam/subscription-tracker/internal/webhook/domain"
)

// ReminderUseCase implements the reminder workflow on top of persisted tasks.
type ReminderUseCase struct {
	config      Config
	txManager   database.TxManager
	taskRepo    TaskRepository
	snapshots   SnapshotReader
	preferences PreferencesReader
	dispatcher  Dispatcher
	outboxRepo  OutboxRepository
	clock       clock.Clock
	logger      *slog.Logger
	newBackOff  func() backoff.BackOff
}

// NewReminderUseCase creates a new ReminderUseCase
func NewReminderUseCase(
	config Config,
	txManager database.TxManager,
	taskRepo TaskRepository,
	snapshots SnapshotReader,
	preferences PreferencesReader,
	dispatcher Dispatcher,
	outboxRepo OutboxRepository,
	clk clock.Clock,
	logger *slog.Logger,
) *ReminderUseCase {
	if clk == nil {
		clk = clock.System()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ReminderUseCase{
		config:      config,
		txManager:   txManager,
		taskRepo:    taskRepo,
		snapshots:   snapshots,
		preferences: preferences,
		dispatcher:  dispatcher,
		outboxRepo:  outboxRepo,
		clock:       clk,
		logger:      logger,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 200 * time.Millisecond
			b.MaxElapsedTime = 10 * time.Second
			return b
		},
	}
}

// Start creates the subscription's workflow unless one is already pending.
// A missing subscription still gets a run; it terminates on its first wake-up.
func (uc *ReminderUseCase) Start(ctx context.Context, subscriptionID uuid.UUID) (uuid.UUID, error) {
	existing, err := uc.taskRepo.GetPendingBySubscription(ctx, subscriptionID)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, domain.ErrTaskNotFound) {
		return uuid.Nil, err
	}

	offsets, err := uc.resolveOffsets(ctx, subscriptionID)
	if err != nil {
		return uuid.Nil, err
	}

	task := domain.NewTask(subscriptionID, offsets, uc.clock.Now())
	if err := uc.taskRepo.Create(ctx, task); err != nil {
		if !errors.Is(err, domain.ErrTaskAlreadyPending) {
			return uuid.Nil, err
		}
		// Lost a race with a concurrent start.
		existing, err := uc.taskRepo.GetPendingBySubscription(ctx, subscriptionID)
		if err != nil {
			return uuid.Nil, err
		}
		return existing.ID, nil
	}

	uc.logger.Info("reminder workflow started",
		slog.String("workflow_run_id", task.ID.String()),
		slog.String("subscription_id", subscriptionID.String()),
		slog.Any("offsets", offsets),
	)
	return task.ID, nil
}

// resolveOffsets prefers the owner's reminder days over the configured default.
func (uc *ReminderUseCase) resolveOffsets(ctx context.Context, subscriptionID uuid.UUID) ([]int, error) {
	fallback := uc.config.DefaultOffsets
	if len(fallback) == 0 {
		fallback = []int{7, 5, 2, 1}
	}

	s, err := uc.snapshots.Snapshot(ctx, subscriptionID)
	if err != nil {
		if errors.Is(err, subscriptionDomain.ErrSubscriptionNotFound) {
			return fallback, nil
		}
		return nil, err
	}

	prefs, err := uc.preferences.GetNotificationPreferences(ctx, s.OwnerID)
	if err != nil {
		uc.logger.Warn("failed to read notification preferences, using default offsets",
			slog.String("owner_id", s.OwnerID.String()),
			slog.Any("error", err),
		)
		return fallback, nil
	}
	return prefs.Offsets(fallback), nil
}

// Run polls for due tasks every Interval until ctx is cancelled.
func (uc *ReminderUseCase) Run(ctx context.Context) error {
	uc.logger.Info("starting reminder worker",
		slog.Duration("interval", uc.config.Interval),
		slog.Int("batch_size", uc.config.BatchSize),
	)

	ticker := time.NewTicker(uc.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			uc.logger.Info("stopping reminder worker")
			return ctx.Err()
		case <-ticker.C:
			if _, err := uc.ProcessDue(ctx); err != nil {
				uc.logger.Error("failed to process reminder tasks", slog.Any("error", err))
			}
		}
	}
}

// ProcessDue advances up to BatchSize due tasks. Each task is claimed and
// advanced in its own transaction, so a failure rolls back only that task while
// every wake-up is still handled by exactly one worker. The first failing task
// stops the batch; tasks already committed stay committed.
func (uc *ReminderUseCase) ProcessDue(ctx context.Context) (int, error) {
	limit := max(uc.config.BatchSize, 1)

	processed := 0
	for processed < limit {
		claimed, err := uc.processNext(ctx)
		if err != nil {
			return processed, err
		}
		if !claimed {
			break
		}
		processed++
	}
	return processed, nil
}

// processNext claims the earliest due task and advances it. It reports false
// when nothing is due.
func (uc *ReminderUseCase) processNext(ctx context.Context) (bool, error) {
	claimed := false
	err := uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		claimed = false
		tasks, err := uc.taskRepo.ClaimDue(ctx, uc.clock.Now(), 1)
		if err != nil {
			return err
		}
		if len(tasks) == 0 {
			return nil
		}

		task := tasks[0]
		if err := uc.runTask(ctx, task); err != nil {
			return err
		}
		if err := uc.taskRepo.Update(ctx, task); err != nil {
			return err
		}
		claimed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return claimed, nil
}

// runTask re-derives the workflow position from the task and a fresh snapshot
// and moves it forward until it must suspend or complete.
func (uc *ReminderUseCase) runTask(ctx context.Context, task *domain.Task) error {
	now := uc.clock.Now()
	logger := uc.logger.With(
		slog.String("workflow_run_id", task.ID.String()),
		slog.String("subscription_id", task.SubscriptionID.String()),
	)

	s, err := uc.readSnapshot(ctx, task.SubscriptionID)
	if err != nil {
		if errors.Is(err, subscriptionDomain.ErrSubscriptionNotFound) {
			logger.Info("subscription not found, stopping reminder workflow")
			task.Complete(now)
			return nil
		}
		logger.Warn("failed to read subscription, retrying later",
			slog.Int("attempts", task.Attempts+1),
			slog.Any("error", err),
		)
		task.Retry(err, uc.config.RetryInterval, now)
		return nil
	}

	if !s.IsActive() {
		logger.Info("subscription is not active, stopping reminder workflow", slog.String("status", string(s.Status)))
		task.Complete(now)
		return nil
	}

	if !task.Started {
		task.Started = true
		if !s.RenewalDate.After(now) {
			logger.Info("renewal date has passed, stopping reminder workflow")
			task.Complete(now)
			return nil
		}
	}

	for {
		offset, ok := task.CurrentOffset()
		if !ok {
			logger.Info("reminder workflow finished")
			task.Complete(now)
			return nil
		}

		at := domain.ReminderInstant(s.RenewalDate, offset)
		if at.After(now) {
			logger.Debug("suspending reminder workflow", slog.Time("wake_at", at), slog.Int("offset", offset))
			task.Suspend(at, now)
			return nil
		}

		if err := uc.remind(ctx, task, s, offset); err != nil {
			return err
		}
		task.Advance()
		task.UpdatedAt = now
	}
}

// remind dispatches the reminder for offset and records the domain event.
// Dispatch failures never stop the schedule.
func (uc *ReminderUseCase) remind(
	ctx context.Context,
	task *domain.Task,
	s *subscriptionDomain.Subscription,
	offset int,
) error {
	label := domain.Label(offset)

	if err := uc.dispatcher.Dispatch(ctx, label, s); err != nil {
		uc.logger.Error("failed to dispatch renewal reminder",
			slog.String("workflow_run_id", task.ID.String()),
			slog.String("subscription_id", s.ID.String()),
			slog.String("label", label),
			slog.Any("error", err),
		)
	}

	event, err := outboxDomain.NewOutboxEvent(
		webhookDomain.EventSubscriptionRenewalReminder.String(),
		s.OwnerID,
		domain.ReminderEventData{
			SubscriptionID: s.ID,
			WorkflowRunID:  task.ID,
			Name:           s.Name,
			Price:          s.Price.StringFixed(2),
			Currency:       s.Currency,
			RenewalDate:    s.RenewalDate,
			DaysBefore:     offset,
			Label:          label,
		},
		uc.clock.Now(),
	)
	if err != nil {
		return err
	}
	return uc.outboxRepo.Create(ctx, event)
}

// readSnapshot retries transient read failures with exponential backoff. The
// read runs on the pool, outside the claim transaction: on PostgreSQL a failed
// statement would otherwise poison the transaction and lose the retry
// bookkeeping.
func (uc *ReminderUseCase) readSnapshot(
	ctx context.Context,
	subscriptionID uuid.UUID,
) (*subscriptionDomain.Subscription, error) {
	ctx = database.WithoutTx(ctx)
	var s *subscriptionDomain.Subscription
	operation := func() error {
		var err error
		s, err = uc.snapshots.Snapshot(ctx, subscriptionID)
		if errors.Is(err, subscriptionDomain.ErrSubscriptionNotFound) {
			return backoff.Permanent(err)
		}
		return err
	}

	maxRetries := uc.config.SnapshotMaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	b := backoff.WithContext(backoff.WithMaxRetries(uc.newBackOff(), uint64(maxRetries)), ctx)
	if err := backoff.Retry(operation, b); err != nil {
		return nil, err
	}
	return s, nil
}
