package commands

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	outboxUsecase "github.com/nazarli-shabnam/subscription-tracker/internal/outbox/usecase"
	reminderUsecase "github.com/nazarli-shabnam/subscription-tracker/internal/reminder/usecase"
	userDomain "github.com/nazarli-shabnam/subscription-tracker/internal/user/domain"
	userUsecase "github.com/nazarli-shabnam/subscription-tracker/internal/user/usecase"
	webhookDomain "github.com/nazarli-shabnam/subscription-tracker/internal/webhook/domain"
	webhookUsecase "github.com/nazarli-shabnam/subscription-tracker/internal/webhook/usecase"
)

// The embedded interfaces satisfy the methods a command never calls.

type mockOutboxUseCase struct {
	outboxUsecase.UseCase
	mock.Mock
}

func (m *mockOutboxUseCase) Cleanup(ctx context.Context, olderThan time.Duration) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

type mockWebhookUseCase struct {
	webhookUsecase.UseCase
	mock.Mock
}

func (m *mockWebhookUseCase) Reactivate(ctx context.Context, id uuid.UUID) (*webhookDomain.Webhook, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*webhookDomain.Webhook), args.Error(1)
}

type mockReminderUseCase struct {
	reminderUsecase.UseCase
	mock.Mock
}

func (m *mockReminderUseCase) Start(ctx context.Context, subscriptionID uuid.UUID) (uuid.UUID, error) {
	args := m.Called(ctx, subscriptionID)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

type mockUserUseCase struct {
	userUsecase.UseCase
	mock.Mock
}

func (m *mockUserUseCase) Register(ctx context.Context, input userUsecase.RegisterUserInput) (*userDomain.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userDomain.User), args.Error(1)
}
