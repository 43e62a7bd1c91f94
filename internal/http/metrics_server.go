package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nazarli-shabnam/subscription-tracker/internal/metrics"
)

// metricsPath is where Prometheus scrapes reminder, webhook and HTTP metrics.
const metricsPath = "/metrics"

// MetricsServer exposes the Prometheus registry on its own port so the
// scrape endpoint never shares the owner-scoped API surface.
type MetricsServer struct {
	server *http.Server
	logger *slog.Logger
}

// NewMetricsServer creates a MetricsServer. A nil provider leaves only the
// liveness route mounted.
func NewMetricsServer(
	host string,
	port int,
	logger *slog.Logger,
	metricsProvider *metrics.Provider,
) *MetricsServer {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(CustomLoggerMiddleware(logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	if metricsProvider != nil {
		router.GET(metricsPath, gin.WrapH(metricsProvider.Handler()))
	}

	return &MetricsServer{
		server: newHTTPServer(host, port, router),
		logger: logger,
	}
}

// GetHandler returns the http.Handler for testing purposes.
func (s *MetricsServer) GetHandler() http.Handler {
	return s.server.Handler
}

// Start serves metrics until Shutdown is called.
func (s *MetricsServer) Start(ctx context.Context) error {
	return listen(s.server, "metrics server", s.logger)
}

// Shutdown gracefully shuts down the metrics HTTP server.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down metrics server")
	return s.server.Shutdown(ctx)
}
