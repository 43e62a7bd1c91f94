package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	outboxDomain "github.com/nazarli-shabnam/subscription-tracker/internal/outbox/domain"
	"github.com/nazarli-shabnam/subscription-tracker/internal/reminder/domain"
	subscriptionDomain "github.com/nazarli-shabnam/subscription-tracker/internal/subscription/domain"
	userDomain "github.com/nazarli-shabnam/subscription-tracker/internal/user/domain"
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

// MockTaskRepository is a mock implementation of TaskRepository
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) GetPendingBySubscription(
	ctx context.Context,
	subscriptionID uuid.UUID,
) (*domain.Task, error) {
	args := m.Called(ctx, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*domain.Task, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Task), args.Error(1)
}

func (m *MockTaskRepository) Update(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

// MockSnapshotReader is a mock implementation of SnapshotReader
type MockSnapshotReader struct {
	mock.Mock
}

func (m *MockSnapshotReader) Snapshot(ctx context.Context, id uuid.UUID) (*subscriptionDomain.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscriptionDomain.Subscription), args.Error(1)
}

// MockPreferencesReader is a mock implementation of PreferencesReader
type MockPreferencesReader struct {
	mock.Mock
}

func (m *MockPreferencesReader) GetNotificationPreferences(
	ctx context.Context,
	id uuid.UUID,
) (userDomain.NotificationPreferences, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(userDomain.NotificationPreferences), args.Error(1)
}

// MockDispatcher is a mock implementation of Dispatcher
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, label string, s *subscriptionDomain.Subscription) error {
	args := m.Called(ctx, label, s)
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

// MockBusinessMetrics is a mock implementation of metrics.BusinessMetrics
type MockBusinessMetrics struct {
	mock.Mock
}

func (m *MockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *MockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

func (m *MockBusinessMetrics) RecordDelivery(ctx context.Context, channel, event, outcome string) {
	m.Called(ctx, channel, event, outcome)
}
