package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	outboxDomain "github.com/nazarli-shabnam/subscription-tracker/internal/outbox/domain"
	"github.com/nazarli-shabnam/subscription-tracker/internal/subscription/domain"
)

// MockTxManager is a mock implementation of database.TxManager
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Get(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

// MockSubscriptionRepository is a mock implementation of SubscriptionRepository
type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) Create(ctx context.Context, s *domain.Subscription) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) ListByOwner(
	ctx context.Context,
	ownerID uuid.UUID,
	offset, limit int,
) ([]*domain.Subscription, error) {
	args := m.Called(ctx, ownerID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) ListUpcomingRenewals(
	ctx context.Context,
	ownerID uuid.UUID,
	from, to time.Time,
) ([]*domain.Subscription, error) {
	args := m.Called(ctx, ownerID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) Update(ctx context.Context, s *domain.Subscription) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockOutboxRepository is a mock implementation of OutboxRepository
type MockOutboxRepository struct {
	mock.Mock
}

func (m *MockOutboxRepository) Create(ctx context.Context, event *outboxDomain.OutboxEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockReminderStarter is a mock implementation of ReminderStarter
type MockReminderStarter struct {
	mock.Mock
}

func (m *MockReminderStarter) Start(ctx context.Context, subscriptionID uuid.UUID) (uuid.UUID, error) {
	args := m.Called(ctx, subscriptionID)
	return args.Get(0).(uuid.UUID), args.Error(1)
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
