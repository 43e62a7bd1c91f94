package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/nazarli-shabnam/subscription-tracker/internal/httputil"
)

// corsMaxAge is how long browsers may cache a preflight answer.
const corsMaxAge = 12 * time.Hour

// createCORSMiddleware lets browser dashboards on the listed origins call the
// subscription, webhook and preference routes directly. It returns nil when
// CORS is disabled or no usable origin is configured; the API normally sits
// behind an auth gateway that sets the owner header.
func createCORSMiddleware(enabled bool, allowOriginsStr string, logger *slog.Logger) gin.HandlerFunc {
	if !enabled {
		return nil
	}

	origins := parseOrigins(allowOriginsStr)
	if len(origins) == 0 {
		logger.Warn("CORS enabled but no origins configured, CORS will not be applied")
		return nil
	}

	logger.Info("CORS enabled",
		slog.Int("origin_count", len(origins)),
		slog.Any("origins", origins))

	return cors.New(newCORSConfig(origins))
}

func newCORSConfig(origins []string) cors.Config {
	return cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
		},
		AllowHeaders: []string{
			"Content-Type",
			httputil.OwnerHeader,
		},
		ExposeHeaders: []string{
			"X-Request-Id",
			"Retry-After",
		},
		AllowCredentials: true,
		MaxAge:           corsMaxAge,
	}
}

// parseOrigins splits a comma-separated origin list, dropping blanks and
// duplicates.
func parseOrigins(originsStr string) []string {
	if strings.TrimSpace(originsStr) == "" {
		return nil
	}
	trimmed := lo.Map(strings.Split(originsStr, ","), func(origin string, _ int) string {
		return strings.TrimSpace(origin)
	})
	return lo.Uniq(lo.Compact(trimmed))
}
