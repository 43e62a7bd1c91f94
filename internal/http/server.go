// Package http provides HTTP server implementation and request handlers.
package http

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nazarli-shabnam/subscription-tracker/internal/config"
	"github.com/nazarli-shabnam/subscription-tracker/internal/metrics"
	reminderHTTP "github.com/nazarli-shabnam/subscription-tracker/internal/reminder/http"
	subscriptionHTTP "github.com/nazarli-shabnam/subscription-tracker/internal/subscription/http"
	userHTTP "github.com/nazarli-shabnam/subscription-tracker/internal/user/http"
	webhookHTTP "github.com/nazarli-shabnam/subscription-tracker/internal/webhook/http"
)

// Server represents the HTTP server
type Server struct {
	db     *sql.DB
	server *http.Server
	router *gin.Engine
	logger *slog.Logger
}

// Handlers groups the API handlers mounted by SetupRouter.
type Handlers struct {
	Subscription *subscriptionHTTP.SubscriptionHandler
	Webhook      *webhookHTTP.WebhookHandler
	User         *userHTTP.UserHandler
	Reminder     *reminderHTTP.ReminderHandler
}

// NewServer creates a new HTTP server
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: newHTTPServer(host, port, nil),
	}
}

// newHTTPServer applies the timeouts shared by the API and metrics listeners.
func newHTTPServer(host string, port int, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// listen serves until Shutdown; a clean close is not an error.
func listen(server *http.Server, name string, logger *slog.Logger) error {
	logger.Info("starting "+name, slog.String("addr", server.Addr))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}
	return nil
}

// SetupRouter builds the Gin engine with every API route. ctx bounds the
// background goroutines of the rate limiter.
func (s *Server) SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	handlers Handlers,
	metricsProvider *metrics.Provider,
) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")

	// Called by the subscription service itself, outside the user gateway.
	v1.POST("/workflows/subscriptions/reminder", handlers.Reminder.StartHandler)

	owned := v1.Group("")
	owned.Use(OwnerMiddleware(s.logger))
	if cfg.RateLimitEnabled {
		owned.Use(RateLimitMiddleware(ctx, cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
	}

	subscriptions := owned.Group("/subscriptions")
	{
		subscriptions.POST("", handlers.Subscription.CreateHandler)
		subscriptions.GET("", handlers.Subscription.ListHandler)
		subscriptions.GET("/upcoming-renewals", handlers.Subscription.UpcomingRenewalsHandler)
		subscriptions.GET("/:id", handlers.Subscription.GetHandler)
		subscriptions.PUT("/:id", handlers.Subscription.UpdateHandler)
		subscriptions.PUT("/:id/cancel", handlers.Subscription.CancelHandler)
		subscriptions.DELETE("/:id", handlers.Subscription.DeleteHandler)
	}

	webhooks := owned.Group("/webhooks")
	{
		webhooks.POST("", handlers.Webhook.CreateHandler)
		webhooks.GET("", handlers.Webhook.ListHandler)
		webhooks.GET("/:id", handlers.Webhook.GetHandler)
		webhooks.PUT("/:id", handlers.Webhook.UpdateHandler)
		webhooks.DELETE("/:id", handlers.Webhook.DeleteHandler)
	}

	users := owned.Group("/users/me")
	{
		users.GET("/notification-preferences", handlers.User.GetNotificationPreferencesHandler)
		users.PUT("/notification-preferences", handlers.User.UpdateNotificationPreferencesHandler)
	}

	s.router = router
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router not configured")
	}
	s.server.Handler = s.router
	return listen(s.server, "http server", s.logger)
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports ready only when the database answers a ping.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{"database": "ok"}

	if s.db == nil {
		components["database"] = "error"
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			s.logger.Warn("readiness check failed", slog.Any("error", err))
			components["database"] = "error"
		}
	}

	if components["database"] != "ok" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
}
