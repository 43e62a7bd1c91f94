package http

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dashboardOrigin = "https://dashboard.subtracker.example"

// newCORSRouter mounts a small slice of the subscription API behind the CORS
// middleware built from origins.
func newCORSRouter(t *testing.T, enabled bool, origins string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	if middleware := createCORSMiddleware(enabled, origins, slog.New(slog.DiscardHandler)); middleware != nil {
		router.Use(middleware)
	}
	router.GET("/v1/subscriptions", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": []any{}})
	})
	router.PUT("/v1/subscriptions/:id/cancel", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
	})
	return router
}

func TestCreateCORSMiddleware(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	tests := []struct {
		name    string
		enabled bool
		origins string
		wantNil bool
	}{
		{name: "disabled", enabled: false, origins: dashboardOrigin, wantNil: true},
		{name: "enabled without origins", enabled: true, origins: "", wantNil: true},
		{name: "enabled with only separators", enabled: true, origins: " , ,", wantNil: true},
		{name: "single dashboard", enabled: true, origins: dashboardOrigin},
		{name: "dashboard and admin", enabled: true, origins: dashboardOrigin + ", https://admin.subtracker.example"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			middleware := createCORSMiddleware(tt.enabled, tt.origins, logger)
			if tt.wantNil {
				assert.Nil(t, middleware)
			} else {
				assert.NotNil(t, middleware)
			}
		})
	}
}

func TestParseOrigins(t *testing.T) {
	assert.Nil(t, parseOrigins(""))
	assert.Nil(t, parseOrigins("   "))
	assert.Equal(t,
		[]string{dashboardOrigin, "https://admin.subtracker.example"},
		parseOrigins(" "+dashboardOrigin+" ,https://admin.subtracker.example,,"+dashboardOrigin),
	)
}

func TestCORS_ListSubscriptionsFromDashboard(t *testing.T) {
	router := newCORSRouter(t, true, dashboardOrigin)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/subscriptions", nil)
	req.Header.Set("Origin", dashboardOrigin)
	req.Header.Set("X-User-ID", "0190a1b2-0000-7000-8000-000000000001")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dashboardOrigin, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_PreflightForCancel(t *testing.T) {
	router := newCORSRouter(t, true, dashboardOrigin)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/v1/subscriptions/0190a1b2-0000-7000-8000-000000000002/cancel", nil)
	req.Header.Set("Origin", dashboardOrigin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	req.Header.Set("Access-Control-Request-Headers", "X-User-ID")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, dashboardOrigin, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPut)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "X-User-Id")
}

func TestCORS_UnknownOriginIsRejected(t *testing.T) {
	router := newCORSRouter(t, true, dashboardOrigin)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/subscriptions", nil)
	req.Header.Set("Origin", "https://evil.example")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_DisabledAddsNoHeaders(t *testing.T) {
	router := newCORSRouter(t, false, dashboardOrigin)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/subscriptions", nil)
	req.Header.Set("Origin", dashboardOrigin)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
