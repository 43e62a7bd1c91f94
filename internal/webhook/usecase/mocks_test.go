package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/nazarli-shabnam/subscription-tracker/internal/webhook/domain"
)

// MockWebhookRepository is a mock implementation of WebhookRepository
type MockWebhookRepository struct {
	mock.Mock
}

func (m *MockWebhookRepository) Create(ctx context.Context, webhook *domain.Webhook) error {
	args := m.Called(ctx, webhook)
	return args.Error(0)
}

func (m *MockWebhookRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Webhook, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Webhook), args.Error(1)
}

func (m *MockWebhookRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Webhook, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Webhook), args.Error(1)
}

func (m *MockWebhookRepository) ListActiveForEvent(
	ctx context.Context,
	ownerID uuid.UUID,
	event domain.Event,
) ([]*domain.Webhook, error) {
	args := m.Called(ctx, ownerID, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Webhook), args.Error(1)
}

func (m *MockWebhookRepository) Update(ctx context.Context, webhook *domain.Webhook) error {
	args := m.Called(ctx, webhook)
	return args.Error(0)
}

func (m *MockWebhookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockWebhookRepository) RecordSuccess(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockWebhookRepository) RecordFailure(
	ctx context.Context,
	id uuid.UUID,
	at time.Time,
) (domain.DeliveryState, error) {
	args := m.Called(ctx, id, at)
	return args.Get(0).(domain.DeliveryState), args.Error(1)
}

func (m *MockWebhookRepository) SetActive(
	ctx context.Context,
	id uuid.UUID,
	active bool,
	at time.Time,
) (domain.DeliveryState, error) {
	args := m.Called(ctx, id, active, at)
	return args.Get(0).(domain.DeliveryState), args.Error(1)
}

// MockBusinessMetrics is a mock implementation of metrics.BusinessMetrics
type MockBusinessMetrics struct {
	mock.Mock
}

func (m *MockBusinessMetrics) RecordOperation(ctx context.Context, metricDomain, operation, status string) {
	m.Called(ctx, metricDomain, operation, status)
}

func (m *MockBusinessMetrics) RecordDuration(
	ctx context.Context,
	metricDomain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, metricDomain, operation, duration, status)
}

func (m *MockBusinessMetrics) RecordDelivery(ctx context.Context, channel, event, outcome string) {
	m.Called(ctx, channel, event, outcome)
}

// memoryWebhookRepository keeps webhooks in memory and applies delivery
// bookkeeping under a lock, like the single-statement SQL updates.
type memoryWebhookRepository struct {
	mu       sync.Mutex
	webhooks map[uuid.UUID]*domain.Webhook

	// afterGet runs once GetByID has returned its copy, letting tests
	// interleave other writers between a read and the following write.
	afterGet func()
}

func newMemoryWebhookRepository(webhooks ...*domain.Webhook) *memoryWebhookRepository {
	repo := &memoryWebhookRepository{webhooks: make(map[uuid.UUID]*domain.Webhook)}
	for _, w := range webhooks {
		repo.webhooks[w.ID] = w
	}
	return repo
}

func (r *memoryWebhookRepository) snapshot(id uuid.UUID) domain.Webhook {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.webhooks[id]
}

func (r *memoryWebhookRepository) Create(_ context.Context, webhook *domain.Webhook) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.webhooks[webhook.ID] = webhook
	return nil
}

func (r *memoryWebhookRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Webhook, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.webhooks[id]
	if !ok {
		return nil, domain.ErrWebhookNotFound
	}
	clone := *w
	if r.afterGet != nil {
		hook := r.afterGet
		r.afterGet = nil
		r.mu.Unlock()
		hook()
		r.mu.Lock()
	}
	return &clone, nil
}

func (r *memoryWebhookRepository) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]*domain.Webhook, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Webhook
	for _, w := range r.webhooks {
		if w.OwnerID == ownerID {
			clone := *w
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *memoryWebhookRepository) ListActiveForEvent(
	_ context.Context,
	ownerID uuid.UUID,
	event domain.Event,
) ([]*domain.Webhook, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Webhook
	for _, w := range r.webhooks {
		if w.OwnerID == ownerID && w.IsActive && w.Subscribes(event) {
			clone := *w
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *memoryWebhookRepository) Update(_ context.Context, webhook *domain.Webhook) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.webhooks[webhook.ID]
	if !ok {
		return domain.ErrWebhookNotFound
	}
	w.URL = webhook.URL
	w.Events = append([]domain.Event(nil), webhook.Events...)
	w.MaxFailures = webhook.MaxFailures
	w.UpdatedAt = webhook.UpdatedAt
	return nil
}

func (r *memoryWebhookRepository) SetActive(
	_ context.Context,
	id uuid.UUID,
	active bool,
	at time.Time,
) (domain.DeliveryState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.webhooks[id]
	if !ok {
		return domain.DeliveryState{}, domain.ErrWebhookNotFound
	}
	if active {
		w.FailureCount = 0
	}
	w.IsActive = active
	w.UpdatedAt = at
	return domain.DeliveryState{FailureCount: w.FailureCount, IsActive: w.IsActive}, nil
}

func (r *memoryWebhookRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.webhooks, id)
	return nil
}

func (r *memoryWebhookRepository) RecordSuccess(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w := r.webhooks[id]
	w.FailureCount = 0
	w.LastTriggeredAt = &at
	return nil
}

func (r *memoryWebhookRepository) RecordFailure(
	_ context.Context,
	id uuid.UUID,
	_ time.Time,
) (domain.DeliveryState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w := r.webhooks[id]
	w.FailureCount++
	if w.FailureCount >= w.MaxFailures {
		w.IsActive = false
	}
	return domain.DeliveryState{FailureCount: w.FailureCount, IsActive: w.IsActive}, nil
}
