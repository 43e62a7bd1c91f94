package app

import (
	"fmt"

	"github.com/nazarli-shabnam/subscription-tracker/internal/mail"
	reminderHTTP "github.com/nazarli-shabnam/subscription-tracker/internal/reminder/http"
	reminderRepository "github.com/nazarli-shabnam/subscription-tracker/internal/reminder/repository"
	reminderService "github.com/nazarli-shabnam/subscription-tracker/internal/reminder/service"
	reminderUsecase "github.com/nazarli-shabnam/subscription-tracker/internal/reminder/usecase"
	subscriptionUsecase "github.com/nazarli-shabnam/subscription-tracker/internal/subscription/usecase"
)

// TaskRepository returns the reminder task repository based on database driver.
func (c *Container) TaskRepository() (reminderUsecase.TaskRepository, error) {
	var err error
	c.taskRepoInit.Do(func() {
		c.taskRepo, err = c.initTaskRepository()
		if err != nil {
			c.initErrors["taskRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["taskRepo"]; exists {
		return nil, storedErr
	}
	return c.taskRepo, nil
}

// Mailer returns the configured email provider.
func (c *Container) Mailer() (mail.Mailer, error) {
	var err error
	c.mailerInit.Do(func() {
		c.mailer, err = mail.New(mail.Config{
			Provider:             c.config.MailProvider,
			PostmarkServerToken:  c.config.PostmarkServerToken,
			PostmarkAccountToken: c.config.PostmarkAccountToken,
			SenderEmail:          c.config.MailSenderEmail,
			SupportEmail:         c.config.MailSupportEmail,
		}, c.Logger())
		if err != nil {
			err = fmt.Errorf("failed to create mailer: %w", err)
			c.initErrors["mailer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["mailer"]; exists {
		return nil, storedErr
	}
	return c.mailer, nil
}

// MailDispatcher returns the dispatcher that emails renewal reminders.
func (c *Container) MailDispatcher() (*reminderService.MailDispatcher, error) {
	var err error
	c.mailDispatcherInit.Do(func() {
		c.mailDispatcher, err = c.initMailDispatcher()
		if err != nil {
			c.initErrors["mailDispatcher"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["mailDispatcher"]; exists {
		return nil, storedErr
	}
	return c.mailDispatcher, nil
}

// ReminderUseCase returns the reminder workflow use case wrapped with metrics.
func (c *Container) ReminderUseCase() (reminderUsecase.UseCase, error) {
	var err error
	c.reminderUseCaseInit.Do(func() {
		c.reminderUseCase, err = c.initReminderUseCase()
		if err != nil {
			c.initErrors["reminderUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["reminderUseCase"]; exists {
		return nil, storedErr
	}
	return c.reminderUseCase, nil
}

// ReminderHandler returns the HTTP handler that starts reminder workflows.
func (c *Container) ReminderHandler() (*reminderHTTP.ReminderHandler, error) {
	var err error
	c.reminderHandlerInit.Do(func() {
		c.reminderHandler, err = c.initReminderHandler()
		if err != nil {
			c.initErrors["reminderHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["reminderHandler"]; exists {
		return nil, storedErr
	}
	return c.reminderHandler, nil
}

func (c *Container) initTaskRepository() (reminderUsecase.TaskRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for task repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return reminderRepository.NewMySQLTaskRepository(db), nil
	case "postgres":
		return reminderRepository.NewPostgreSQLTaskRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initMailDispatcher() (*reminderService.MailDispatcher, error) {
	userRepo, err := c.UserRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user repository for mail dispatcher: %w", err)
	}
	mailer, err := c.Mailer()
	if err != nil {
		return nil, err
	}
	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for mail dispatcher: %w", err)
	}
	return reminderService.NewMailDispatcher(userRepo, mailer, businessMetrics, c.Logger()), nil
}

func (c *Container) initReminderUseCase() (reminderUsecase.UseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for reminder use case: %w", err)
	}
	taskRepo, err := c.TaskRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get task repository for reminder use case: %w", err)
	}
	subscriptionRepo, err := c.SubscriptionRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription repository for reminder use case: %w", err)
	}
	userUseCase, err := c.UserUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get user use case for reminder use case: %w", err)
	}
	dispatcher, err := c.MailDispatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to get mail dispatcher for reminder use case: %w", err)
	}
	outboxRepo, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for reminder use case: %w", err)
	}
	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for reminder use case: %w", err)
	}

	useCaseConfig := reminderUsecase.Config{
		Interval:           c.config.ReminderWorkerInterval,
		BatchSize:          c.config.ReminderBatchSize,
		RetryInterval:      c.config.ReminderRetryInterval,
		SnapshotMaxRetries: c.config.ReminderSnapshotMaxRetries,
		DefaultOffsets:     c.config.ReminderDefaultOffsets,
	}

	useCase := reminderUsecase.NewReminderUseCase(
		useCaseConfig,
		txManager,
		taskRepo,
		subscriptionUsecase.NewSnapshotReader(subscriptionRepo, c.Clock()),
		userUseCase,
		dispatcher,
		outboxRepo,
		c.Clock(),
		c.Logger(),
	)
	return reminderUsecase.NewReminderUseCaseWithMetrics(useCase, businessMetrics), nil
}

func (c *Container) initReminderHandler() (*reminderHTTP.ReminderHandler, error) {
	useCase, err := c.ReminderUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get reminder use case for reminder handler: %w", err)
	}
	return reminderHTTP.NewReminderHandler(useCase, c.Logger()), nil
}
