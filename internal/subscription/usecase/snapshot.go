package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/nazarli-shabnam/subscription-tracker/internal/clock"
	"github.com/nazarli-shabnam/subscription-tracker/internal/subscription/domain"
)

// SnapshotReader reads the current state of a subscription without an ownership
// check. The reminder workflow uses it on every wake-up.
type SnapshotReader struct {
	subscriptionRepo SubscriptionRepository
	clock            clock.Clock
}

// NewSnapshotReader creates a new SnapshotReader
func NewSnapshotReader(subscriptionRepo SubscriptionRepository, clk clock.Clock) *SnapshotReader {
	if clk == nil {
		clk = clock.System()
	}
	return &SnapshotReader{subscriptionRepo: subscriptionRepo, clock: clk}
}

// Snapshot returns the subscription with its status refreshed, or
// ErrSubscriptionNotFound when it no longer exists.
func (r *SnapshotReader) Snapshot(ctx context.Context, id uuid.UUID) (*domain.Subscription, error) {
	s, err := r.subscriptionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.RefreshStatus(r.clock.Now())
	return s, nil
}
