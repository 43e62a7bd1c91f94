package app

import (
	"context"
	"fmt"

	webhookHTTP "github.com/nazarli-shabnam/subscription-tracker/internal/webhook/http"
	webhookRepository "github.com/nazarli-shabnam/subscription-tracker/internal/webhook/repository"
	webhookService "github.com/nazarli-shabnam/subscription-tracker/internal/webhook/service"
	webhookUsecase "github.com/nazarli-shabnam/subscription-tracker/internal/webhook/usecase"
)

// WebhookRepository returns the webhook repository based on database driver.
func (c *Container) WebhookRepository() (webhookUsecase.WebhookRepository, error) {
	var err error
	c.webhookRepoInit.Do(func() {
		c.webhookRepo, err = c.initWebhookRepository()
		if err != nil {
			c.initErrors["webhookRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["webhookRepo"]; exists {
		return nil, storedErr
	}
	return c.webhookRepo, nil
}

// SecretKeeper returns the keeper that seals webhook secrets at rest.
func (c *Container) SecretKeeper() (webhookService.SecretKeeper, error) {
	var err error
	c.secretKeeperInit.Do(func() {
		c.secretKeeper, err = webhookService.OpenSecretKeeper(context.Background(), c.config.WebhookSecretKeyURI)
		if err != nil {
			c.initErrors["secretKeeper"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["secretKeeper"]; exists {
		return nil, storedErr
	}
	return c.secretKeeper, nil
}

// Signer returns the HMAC-SHA256 payload signer.
func (c *Container) Signer() webhookService.Signer {
	c.signerInit.Do(func() {
		c.signer = webhookService.NewSigner()
	})
	return c.signer
}

// WebhookUseCase returns the webhook use case wrapped with metrics.
func (c *Container) WebhookUseCase() (webhookUsecase.UseCase, error) {
	var err error
	c.webhookUseCaseInit.Do(func() {
		c.webhookUseCase, err = c.initWebhookUseCase()
		if err != nil {
			c.initErrors["webhookUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["webhookUseCase"]; exists {
		return nil, storedErr
	}
	return c.webhookUseCase, nil
}

// EventDispatcher returns the dispatcher that delivers events to webhooks.
func (c *Container) EventDispatcher() (*webhookUsecase.EventDispatcher, error) {
	var err error
	c.eventDispatcherInit.Do(func() {
		c.eventDispatcher, err = c.initEventDispatcher()
		if err != nil {
			c.initErrors["eventDispatcher"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["eventDispatcher"]; exists {
		return nil, storedErr
	}
	return c.eventDispatcher, nil
}

// WebhookHandler returns the HTTP handler for webhook management.
func (c *Container) WebhookHandler() (*webhookHTTP.WebhookHandler, error) {
	var err error
	c.webhookHandlerInit.Do(func() {
		c.webhookHandler, err = c.initWebhookHandler()
		if err != nil {
			c.initErrors["webhookHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["webhookHandler"]; exists {
		return nil, storedErr
	}
	return c.webhookHandler, nil
}

func (c *Container) initWebhookRepository() (webhookUsecase.WebhookRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for webhook repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return webhookRepository.NewMySQLWebhookRepository(db), nil
	case "postgres":
		return webhookRepository.NewPostgreSQLWebhookRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initWebhookUseCase() (webhookUsecase.UseCase, error) {
	webhookRepo, err := c.WebhookRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get webhook repository for webhook use case: %w", err)
	}
	keeper, err := c.SecretKeeper()
	if err != nil {
		return nil, fmt.Errorf("failed to get secret keeper for webhook use case: %w", err)
	}
	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for webhook use case: %w", err)
	}

	useCase := webhookUsecase.NewWebhookUseCase(webhookRepo, keeper, c.Clock(), c.config.WebhookDefaultMaxFailures)
	return webhookUsecase.NewWebhookUseCaseWithMetrics(useCase, businessMetrics), nil
}

func (c *Container) initEventDispatcher() (*webhookUsecase.EventDispatcher, error) {
	webhookRepo, err := c.WebhookRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get webhook repository for event dispatcher: %w", err)
	}
	keeper, err := c.SecretKeeper()
	if err != nil {
		return nil, fmt.Errorf("failed to get secret keeper for event dispatcher: %w", err)
	}
	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for event dispatcher: %w", err)
	}

	logger := c.Logger()
	dispatcherConfig := webhookUsecase.DispatcherConfig{
		Timeout:        c.config.WebhookTimeout,
		MaxConcurrency: c.config.WebhookMaxConcurrency,
		MaxRetries:     c.config.WebhookMaxRetries,
	}
	httpClient := webhookUsecase.NewHTTPClient(dispatcherConfig.Timeout, dispatcherConfig.MaxRetries, logger)

	return webhookUsecase.NewEventDispatcher(
		webhookRepo,
		keeper,
		c.Signer(),
		httpClient,
		dispatcherConfig,
		c.Clock(),
		businessMetrics,
		logger,
	), nil
}

func (c *Container) initWebhookHandler() (*webhookHTTP.WebhookHandler, error) {
	useCase, err := c.WebhookUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get webhook use case for webhook handler: %w", err)
	}
	return webhookHTTP.NewWebhookHandler(useCase, c.Logger()), nil
}
