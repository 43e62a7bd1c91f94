package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nazarli-shabnam/subscription-tracker/internal/metrics"
	"github.com/nazarli-shabnam/subscription-tracker/internal/webhook/domain"
)

// webhookUseCaseWithMetrics decorates UseCase with metrics instrumentation.
type webhookUseCaseWithMetrics struct {
	next    UseCase
	metrics metrics.BusinessMetrics
}

// NewWebhookUseCaseWithMetrics wraps a UseCase with metrics recording.
func NewWebhookUseCaseWithMetrics(useCase UseCase, m metrics.BusinessMetrics) UseCase {
	return &webhookUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (w *webhookUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	w.metrics.RecordOperation(ctx, "webhook", operation, status)
	w.metrics.RecordDuration(ctx, "webhook", operation, time.Since(start), status)
}

func (w *webhookUseCaseWithMetrics) Create(ctx context.Context, input CreateWebhookInput) (*CreateWebhookOutput, error) {
	start := time.Now()
	output, err := w.next.Create(ctx, input)
	w.record(ctx, "webhook_create", start, err)
	return output, err
}

func (w *webhookUseCaseWithMetrics) Get(ctx context.Context, ownerID, id uuid.UUID) (*domain.Webhook, error) {
	start := time.Now()
	webhook, err := w.next.Get(ctx, ownerID, id)
	w.record(ctx, "webhook_get", start, err)
	return webhook, err
}

func (w *webhookUseCaseWithMetrics) List(ctx context.Context, ownerID uuid.UUID) ([]*domain.Webhook, error) {
	start := time.Now()
	webhooks, err := w.next.List(ctx, ownerID)
	w.record(ctx, "webhook_list", start, err)
	return webhooks, err
}

func (w *webhookUseCaseWithMetrics) Update(
	ctx context.Context,
	ownerID, id uuid.UUID,
	input UpdateWebhookInput,
) (*domain.Webhook, error) {
	start := time.Now()
	webhook, err := w.next.Update(ctx, ownerID, id, input)
	w.record(ctx, "webhook_update", start, err)
	return webhook, err
}

func (w *webhookUseCaseWithMetrics) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	start := time.Now()
	err := w.next.Delete(ctx, ownerID, id)
	w.record(ctx, "webhook_delete", start, err)
	return err
}

func (w *webhookUseCaseWithMetrics) Reactivate(ctx context.Context, id uuid.UUID) (*domain.Webhook, error) {
	start := time.Now()
	webhook, err := w.next.Reactivate(ctx, id)
	w.record(ctx, "webhook_reactivate", start, err)
	return webhook, err
}
