package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	provider, err := NewProvider("http_test")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	router := gin.New()
	router.Use(HTTPMetricsMiddleware(provider.MeterProvider(), "http_test"))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/v1/subscriptions/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id")})
	})
	router.POST("/v1/webhooks", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{})
	})

	for _, path := range []string{"/v1/subscriptions/1", "/v1/subscriptions/2", "/health"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/webhooks", nil))
	assert.Equal(t, http.StatusCreated, w.Code)

	output := scrape(t, provider)

	assertBizMetricLine(
		t,
		output,
		`http_test_http_requests_total`,
		`method="GET".*path="/v1/subscriptions/:id".*status_code="200"`,
		`2`,
	)
	assertBizMetricLine(
		t,
		output,
		`http_test_http_requests_total`,
		`method="POST".*path="/v1/webhooks".*status_code="201"`,
		`1`,
	)
	assert.NotContains(t, output, `path="/health"`)
}

func TestSanitizePath(t *testing.T) {
	assert.Equal(t, "/v1/subscriptions/:id", sanitizePath("/v1/subscriptions/:id"))
	assert.Equal(t, "unknown", sanitizePath(""))
	assert.Equal(t, "/", sanitizePath("/"))
}
