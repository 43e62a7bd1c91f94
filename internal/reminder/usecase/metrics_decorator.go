package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nazarli-shabnam/subscription-tracker/internal/metrics"
)

// reminderUseCaseWithMetrics decorates UseCase with metrics instrumentation.
type reminderUseCaseWithMetrics struct {
	next    UseCase
	metrics metrics.BusinessMetrics
}

// NewReminderUseCaseWithMetrics wraps a UseCase with metrics recording.
func NewReminderUseCaseWithMetrics(useCase UseCase, m metrics.BusinessMetrics) UseCase {
	return &reminderUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (r *reminderUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	r.metrics.RecordOperation(ctx, "reminder", operation, status)
	r.metrics.RecordDuration(ctx, "reminder", operation, time.Since(start), status)
}

func (r *reminderUseCaseWithMetrics) Start(ctx context.Context, subscriptionID uuid.UUID) (uuid.UUID, error) {
	start := time.Now()
	runID, err := r.next.Start(ctx, subscriptionID)
	r.record(ctx, "workflow_start", start, err)
	return runID, err
}

func (r *reminderUseCaseWithMetrics) ProcessDue(ctx context.Context) (int, error) {
	start := time.Now()
	processed, err := r.next.ProcessDue(ctx)
	r.record(ctx, "reminder_process_due", start, err)
	return processed, err
}

// Run is not instrumented; each poll goes through ProcessDue on the inner use case.
func (r *reminderUseCaseWithMetrics) Run(ctx context.Context) error {
	return r.next.Run(ctx)
}
