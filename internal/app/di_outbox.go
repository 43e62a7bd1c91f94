package app

import (
	"fmt"

	outboxRepository "github.com/nazarli-shabnam/subscription-tracker/internal/outbox/repository"
	outboxUsecase "github.com/nazarli-shabnam/subscription-tracker/internal/outbox/usecase"
)

// OutboxRepository returns the outbox event repository based on database driver.
func (c *Container) OutboxRepository() (outboxUsecase.OutboxEventRepository, error) {
	var err error
	c.outboxRepoInit.Do(func() {
		c.outboxRepo, err = c.initOutboxRepository()
		if err != nil {
			c.initErrors["outboxRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["outboxRepo"]; exists {
		return nil, storedErr
	}
	return c.outboxRepo, nil
}

// OutboxUseCase returns the outbox worker that feeds events to webhooks.
func (c *Container) OutboxUseCase() (outboxUsecase.UseCase, error) {
	var err error
	c.outboxUseCaseInit.Do(func() {
		c.outboxUseCase, err = c.initOutboxUseCase()
		if err != nil {
			c.initErrors["outboxUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["outboxUseCase"]; exists {
		return nil, storedErr
	}
	return c.outboxUseCase, nil
}

func (c *Container) initOutboxRepository() (outboxUsecase.OutboxEventRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for outbox repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return outboxRepository.NewMySQLOutboxEventRepository(db), nil
	case "postgres":
		return outboxRepository.NewPostgreSQLOutboxEventRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initOutboxUseCase() (outboxUsecase.UseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for outbox use case: %w", err)
	}
	outboxRepo, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for outbox use case: %w", err)
	}
	dispatcher, err := c.EventDispatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to get event dispatcher for outbox use case: %w", err)
	}

	logger := c.Logger()
	useCaseConfig := outboxUsecase.Config{
		Interval:   c.config.OutboxWorkerInterval,
		BatchSize:  c.config.OutboxBatchSize,
		MaxRetries: c.config.OutboxMaxRetries,
	}
	processor := outboxUsecase.NewWebhookEventProcessor(dispatcher, logger)

	return outboxUsecase.NewOutboxUseCase(useCaseConfig, txManager, outboxRepo, processor, c.Clock(), logger), nil
}
