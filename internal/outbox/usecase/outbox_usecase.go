// Package usecase drains the transactional outbox: it polls pending events and
// hands each one to an EventProcessor, typically the webhook dispatcher.
package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nazarli-shabnam/subscription-tracker/internal/clock"
	"github.com/nazarli-shabnam/subscription-tracker/internal/database"
	"github.com/nazarli-shabnam/subscription-tracker/internal/outbox/domain"
)

// Config holds outbox use case configuration
type Config struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
}

// OutboxEventRepository defines outbox event repository operations
type OutboxEventRepository interface {
	Create(ctx context.Context, event *domain.OutboxEvent) error
	GetPendingEvents(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	Update(ctx context.Context, event *domain.OutboxEvent) error
	DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
}

// EventProcessor handles a single claimed event. A returned error counts as a
// retry for the event.
type EventProcessor interface {
	Process(ctx context.Context, event *domain.OutboxEvent) error
}

// EventDispatcher fans an event out to the owner's listeners. It never fails.
type EventDispatcher interface {
	Dispatch(ctx context.Context, ownerID uuid.UUID, event string, data json.RawMessage)
}

// UseCase defines the interface for outbox use cases
type UseCase interface {
	Start(ctx context.Context) error
	ProcessEvents(ctx context.Context) error
	Cleanup(ctx context.Context, olderThan time.Duration) (int64, error)
}

// OutboxUseCase implements business logic for processing outbox events
type OutboxUseCase struct {
	config         Config
	txManager      database.TxManager
	outboxRepo     OutboxEventRepository
	eventProcessor EventProcessor
	clock          clock.Clock
	logger         *slog.Logger
}

// NewOutboxUseCase creates a new OutboxUseCase
func NewOutboxUseCase(
	config Config,
	txManager database.TxManager,
	outboxRepo OutboxEventRepository,
	eventProcessor EventProcessor,
	clk clock.Clock,
	logger *slog.Logger,
) *OutboxUseCase {
	if clk == nil {
		clk = clock.System()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &OutboxUseCase{
		config:         config,
		txManager:      txManager,
		outboxRepo:     outboxRepo,
		eventProcessor: eventProcessor,
		clock:          clk,
		logger:         logger,
	}
}

// Start polls the outbox every Interval until ctx is cancelled.
func (uc *OutboxUseCase) Start(ctx context.Context) error {
	uc.logger.Info("starting outbox worker",
		slog.Duration("interval", uc.config.Interval),
		slog.Int("batch_size", uc.config.BatchSize),
	)

	ticker := time.NewTicker(uc.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			uc.logger.Info("stopping outbox worker")
			return ctx.Err()
		case <-ticker.C:
			if err := uc.ProcessEvents(ctx); err != nil {
				uc.logger.Error("failed to process outbox events", slog.Any("error", err))
			}
		}
	}
}

// ProcessEvents claims a batch of pending events and processes them inside a
// single transaction.
func (uc *OutboxUseCase) ProcessEvents(ctx context.Context) error {
	return uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		events, err := uc.outboxRepo.GetPendingEvents(ctx, uc.config.BatchSize)
		if err != nil {
			return err
		}

		if len(events) == 0 {
			return nil
		}

		uc.logger.Debug("processing outbox events", slog.Int("count", len(events)))

		for _, event := range events {
			if err := uc.eventProcessor.Process(ctx, event); err != nil {
				uc.logger.Error("failed to process outbox event",
					slog.String("event_id", event.ID.String()),
					slog.String("event_type", event.EventType),
					slog.Int("retries", event.Retries+1),
					slog.Any("error", err),
				)

				event.Retries++
				errorMsg := err.Error()
				event.LastError = &errorMsg
				if event.Retries >= uc.config.MaxRetries {
					event.Status = domain.OutboxEventStatusFailed
				}

				if err := uc.outboxRepo.Update(ctx, event); err != nil {
					return err
				}
				continue
			}

			now := uc.clock.Now()
			event.Status = domain.OutboxEventStatusProcessed
			event.ProcessedAt = &now

			if err := uc.outboxRepo.Update(ctx, event); err != nil {
				return err
			}
		}

		return nil
	})
}

// Cleanup removes processed events older than olderThan and returns how many
// rows were deleted.
func (uc *OutboxUseCase) Cleanup(ctx context.Context, olderThan time.Duration) (int64, error) {
	before := uc.clock.Now().Add(-olderThan)
	deleted, err := uc.outboxRepo.DeleteProcessedBefore(ctx, before)
	if err != nil {
		return 0, err
	}
	uc.logger.Info("outbox cleanup finished",
		slog.Time("before", before),
		slog.Int64("deleted", deleted),
	)
	return deleted, nil
}

// WebhookEventProcessor forwards outbox events to the webhook dispatcher.
type WebhookEventProcessor struct {
	dispatcher EventDispatcher
	logger     *slog.Logger
}

// NewWebhookEventProcessor creates a WebhookEventProcessor.
func NewWebhookEventProcessor(dispatcher EventDispatcher, logger *slog.Logger) *WebhookEventProcessor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &WebhookEventProcessor{dispatcher: dispatcher, logger: logger}
}

// Process decodes the event payload and dispatches it. Only an undecodable
// payload is reported as an error; delivery outcomes are tracked per webhook.
func (p *WebhookEventProcessor) Process(ctx context.Context, event *domain.OutboxEvent) error {
	payload, err := event.DecodePayload()
	if err != nil {
		return err
	}

	p.logger.Debug("dispatching outbox event",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.EventType),
		slog.String("owner_id", payload.OwnerID.String()),
	)

	p.dispatcher.Dispatch(ctx, payload.OwnerID, event.EventType, payload.Data)
	return nil
}
