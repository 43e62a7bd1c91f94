package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nazarli-shabnam/subscription-tracker/internal/metrics"
	"github.com/nazarli-shabnam/subscription-tracker/internal/subscription/domain"
)

// subscriptionUseCaseWithMetrics decorates UseCase with metrics instrumentation.
type subscriptionUseCaseWithMetrics struct {
	next    UseCase
	metrics metrics.BusinessMetrics
}

// NewSubscriptionUseCaseWithMetrics wraps a UseCase with metrics recording.
func NewSubscriptionUseCaseWithMetrics(useCase UseCase, m metrics.BusinessMetrics) UseCase {
	return &subscriptionUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (s *subscriptionUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	s.metrics.RecordOperation(ctx, "subscription", operation, status)
	s.metrics.RecordDuration(ctx, "subscription", operation, time.Since(start), status)
}

func (s *subscriptionUseCaseWithMetrics) Create(
	ctx context.Context,
	input CreateSubscriptionInput,
) (*domain.Subscription, error) {
	start := time.Now()
	sub, err := s.next.Create(ctx, input)
	s.record(ctx, "subscription_create", start, err)
	return sub, err
}

func (s *subscriptionUseCaseWithMetrics) Get(ctx context.Context, ownerID, id uuid.UUID) (*domain.Subscription, error) {
	start := time.Now()
	sub, err := s.next.Get(ctx, ownerID, id)
	s.record(ctx, "subscription_get", start, err)
	return sub, err
}

func (s *subscriptionUseCaseWithMetrics) List(
	ctx context.Context,
	ownerID uuid.UUID,
	offset, limit int,
) ([]*domain.Subscription, error) {
	start := time.Now()
	subs, err := s.next.List(ctx, ownerID, offset, limit)
	s.record(ctx, "subscription_list", start, err)
	return subs, err
}

func (s *subscriptionUseCaseWithMetrics) Upcoming(
	ctx context.Context,
	ownerID uuid.UUID,
	days int,
) ([]UpcomingRenewal, error) {
	start := time.Now()
	renewals, err := s.next.Upcoming(ctx, ownerID, days)
	s.record(ctx, "subscription_upcoming", start, err)
	return renewals, err
}

func (s *subscriptionUseCaseWithMetrics) Update(
	ctx context.Context,
	ownerID, id uuid.UUID,
	input UpdateSubscriptionInput,
) (*domain.Subscription, error) {
	start := time.Now()
	sub, err := s.next.Update(ctx, ownerID, id, input)
	s.record(ctx, "subscription_update", start, err)
	return sub, err
}

func (s *subscriptionUseCaseWithMetrics) Cancel(
	ctx context.Context,
	ownerID, id uuid.UUID,
) (*domain.Subscription, error) {
	start := time.Now()
	sub, err := s.next.Cancel(ctx, ownerID, id)
	s.record(ctx, "subscription_cancel", start, err)
	return sub, err
}

func (s *subscriptionUseCaseWithMetrics) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	start := time.Now()
	err := s.next.Delete(ctx, ownerID, id)
	s.record(ctx, "subscription_delete", start, err)
	return err
}
