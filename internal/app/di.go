// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/nazarli-shabnam/subscription-tracker/internal/clock"
	"github.com/nazarli-shabnam/subscription-tracker/internal/config"
	"github.com/nazarli-shabnam/subscription-tracker/internal/database"
	"github.com/nazarli-shabnam/subscription-tracker/internal/http"
	"github.com/nazarli-shabnam/subscription-tracker/internal/mail"
	"github.com/nazarli-shabnam/subscription-tracker/internal/metrics"
	outboxUsecase "github.com/nazarli-shabnam/subscription-tracker/internal/outbox/usecase"
	reminderHTTP "github.com/nazarli-shabnam/subscription-tracker/internal/reminder/http"
	reminderService "github.com/nazarli-shabnam/subscription-tracker/internal/reminder/service"
	reminderUsecase "github.com/nazarli-shabnam/subscription-tracker/internal/reminder/usecase"
	subscriptionHTTP "github.com/nazarli-shabnam/subscription-tracker/internal/subscription/http"
	subscriptionUsecase "github.com/nazarli-shabnam/subscription-tracker/internal/subscription/usecase"
	userHTTP "github.com/nazarli-shabnam/subscription-tracker/internal/user/http"
	userUsecase "github.com/nazarli-shabnam/subscription-tracker/internal/user/usecase"
	webhookHTTP "github.com/nazarli-shabnam/subscription-tracker/internal/webhook/http"
	webhookService "github.com/nazarli-shabnam/subscription-tracker/internal/webhook/service"
	webhookUsecase "github.com/nazarli-shabnam/subscription-tracker/internal/webhook/usecase"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	db              *sql.DB
	clock           clock.Clock
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Managers
	txManager database.TxManager

	// Repositories
	subscriptionRepo subscriptionUsecase.SubscriptionRepository
	userRepo         userUsecase.UserRepository
	webhookRepo      webhookUsecase.WebhookRepository
	taskRepo         reminderUsecase.TaskRepository
	outboxRepo       outboxUsecase.OutboxEventRepository

	// Services
	secretKeeper    webhookService.SecretKeeper
	signer          webhookService.Signer
	mailer          mail.Mailer
	mailDispatcher  *reminderService.MailDispatcher
	eventDispatcher *webhookUsecase.EventDispatcher

	// Use Cases
	subscriptionUseCase subscriptionUsecase.UseCase
	userUseCase         userUsecase.UseCase
	webhookUseCase      webhookUsecase.UseCase
	reminderUseCase     reminderUsecase.UseCase
	outboxUseCase       outboxUsecase.UseCase

	// HTTP Handlers
	subscriptionHandler *subscriptionHTTP.SubscriptionHandler
	userHandler         *userHTTP.UserHandler
	webhookHandler      *webhookHTTP.WebhookHandler
	reminderHandler     *reminderHTTP.ReminderHandler

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                      sync.Mutex
	loggerInit              sync.Once
	dbInit                  sync.Once
	clockInit               sync.Once
	metricsProviderInit     sync.Once
	businessMetricsInit     sync.Once
	txManagerInit           sync.Once
	subscriptionRepoInit    sync.Once
	userRepoInit            sync.Once
	webhookRepoInit         sync.Once
	taskRepoInit            sync.Once
	outboxRepoInit          sync.Once
	secretKeeperInit        sync.Once
	signerInit              sync.Once
	mailerInit              sync.Once
	mailDispatcherInit      sync.Once
	eventDispatcherInit     sync.Once
	subscriptionUseCaseInit sync.Once
	userUseCaseInit         sync.Once
	webhookUseCaseInit      sync.Once
	reminderUseCaseInit     sync.Once
	outboxUseCaseInit       sync.Once
	subscriptionHandlerInit sync.Once
	userHandlerInit         sync.Once
	webhookHandlerInit      sync.Once
	reminderHandlerInit     sync.Once
	httpServerInit          sync.Once
	metricsServerInit       sync.Once
	initErrors              map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// Clock returns the wall clock shared by use cases and workers.
func (c *Container) Clock() clock.Clock {
	c.clockInit.Do(func() {
		c.clock = clock.System()
	})
	return c.clock
}

// DB returns the database connection.
// It creates and configures the database connection on first access.
func (c *Container) DB() (*sql.DB, error) {
	var err error
	c.dbInit.Do(func() {
		c.db, err = c.initDB()
		if err != nil {
			c.initErrors["db"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
// It requires a database connection to be initialized first.
func (c *Container) TxManager() (database.TxManager, error) {
	var err error
	c.txManagerInit.Do(func() {
		c.txManager, err = c.initTxManager()
		if err != nil {
			c.initErrors["txManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// MetricsProvider returns the Prometheus-backed meter provider, or nil when
// metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		c.metricsProvider, err = c.initMetricsProvider()
		if err != nil {
			c.initErrors["metricsProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder. It is a no-op when
// metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	var err error
	c.businessMetricsInit.Do(func() {
		c.businessMetrics, err = c.initBusinessMetrics()
		if err != nil {
			c.initErrors["businessMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// HTTPServer returns the API server with every route mounted.
func (c *Container) HTTPServer(ctx context.Context) (*http.Server, error) {
	var err error
	c.httpServerInit.Do(func() {
		c.httpServer, err = c.initHTTPServer(ctx)
		if err != nil {
			c.initErrors["httpServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the server exposing /metrics.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	var err error
	c.metricsServerInit.Do(func() {
		c.metricsServer, err = c.initMetricsServer()
		if err != nil {
			c.initErrors["metricsServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.secretKeeper != nil {
		if err := c.secretKeeper.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("secret keeper close: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	return errors.Join(shutdownErrors...)
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initTxManager creates the transaction manager using the database connection.
func (c *Container) initTxManager() (database.TxManager, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
	}
	return database.NewTxManager(db), nil
}

func (c *Container) initMetricsProvider() (*metrics.Provider, error) {
	if !c.config.MetricsEnabled {
		return nil, nil
	}
	provider, err := metrics.NewProvider(c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics provider: %w", err)
	}
	return provider, nil
}

func (c *Container) initBusinessMetrics() (metrics.BusinessMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return metrics.NewNoOpBusinessMetrics(), nil
	}
	businessMetrics, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}
	return businessMetrics, nil
}

// initHTTPServer creates the HTTP server with all its dependencies.
func (c *Container) initHTTPServer(ctx context.Context) (*http.Server, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}
	subscriptionHandler, err := c.SubscriptionHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription handler for http server: %w", err)
	}
	webhookHandler, err := c.WebhookHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get webhook handler for http server: %w", err)
	}
	userHandler, err := c.UserHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get user handler for http server: %w", err)
	}
	reminderHandler, err := c.ReminderHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get reminder handler for http server: %w", err)
	}
	metricsProvider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}

	server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, c.Logger())
	server.SetupRouter(ctx, c.config, http.Handlers{
		Subscription: subscriptionHandler,
		Webhook:      webhookHandler,
		User:         userHandler,
		Reminder:     reminderHandler,
	}, metricsProvider)

	return server, nil
}

func (c *Container) initMetricsServer() (*http.MetricsServer, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
	}
	return http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider), nil
}
