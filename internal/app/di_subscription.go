package app

import (
	"fmt"

	subscriptionHTTP "github.com/nazarli-shabnam/subscription-tracker/internal/subscription/http"
	subscriptionRepository "github.com/nazarli-shabnam/subscription-tracker/internal/subscription/repository"
	subscriptionUsecase "github.com/nazarli-shabnam/subscription-tracker/internal/subscription/usecase"
)

// SubscriptionRepository returns the subscription repository based on database driver.
func (c *Container) SubscriptionRepository() (subscriptionUsecase.SubscriptionRepository, error) {
	var err error
	c.subscriptionRepoInit.Do(func() {
		c.subscriptionRepo, err = c.initSubscriptionRepository()
		if err != nil {
			c.initErrors["subscriptionRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["subscriptionRepo"]; exists {
		return nil, storedErr
	}
	return c.subscriptionRepo, nil
}

// SubscriptionUseCase returns the subscription use case wrapped with metrics.
func (c *Container) SubscriptionUseCase() (subscriptionUsecase.UseCase, error) {
	var err error
	c.subscriptionUseCaseInit.Do(func() {
		c.subscriptionUseCase, err = c.initSubscriptionUseCase()
		if err != nil {
			c.initErrors["subscriptionUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["subscriptionUseCase"]; exists {
		return nil, storedErr
	}
	return c.subscriptionUseCase, nil
}

// SubscriptionHandler returns the HTTP handler for subscription management.
func (c *Container) SubscriptionHandler() (*subscriptionHTTP.SubscriptionHandler, error) {
	var err error
	c.subscriptionHandlerInit.Do(func() {
		c.subscriptionHandler, err = c.initSubscriptionHandler()
		if err != nil {
			c.initErrors["subscriptionHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["subscriptionHandler"]; exists {
		return nil, storedErr
	}
	return c.subscriptionHandler, nil
}

// initSubscriptionRepository creates the subscription repository based on the database driver.
func (c *Container) initSubscriptionRepository() (subscriptionUsecase.SubscriptionRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for subscription repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return subscriptionRepository.NewMySQLSubscriptionRepository(db), nil
	case "postgres":
		return subscriptionRepository.NewPostgreSQLSubscriptionRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initSubscriptionUseCase() (subscriptionUsecase.UseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for subscription use case: %w", err)
	}
	subscriptionRepo, err := c.SubscriptionRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription repository for subscription use case: %w", err)
	}
	outboxRepo, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for subscription use case: %w", err)
	}
	reminders, err := c.ReminderUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get reminder use case for subscription use case: %w", err)
	}
	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for subscription use case: %w", err)
	}

	useCase := subscriptionUsecase.NewSubscriptionUseCase(
		txManager,
		subscriptionRepo,
		outboxRepo,
		reminders,
		c.Clock(),
		c.Logger(),
	)
	return subscriptionUsecase.NewSubscriptionUseCaseWithMetrics(useCase, businessMetrics), nil
}

func (c *Container) initSubscriptionHandler() (*subscriptionHTTP.SubscriptionHandler, error) {
	useCase, err := c.SubscriptionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription use case for subscription handler: %w", err)
	}
	return subscriptionHTTP.NewSubscriptionHandler(useCase, c.Logger()), nil
}
