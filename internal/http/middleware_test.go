package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nazarli-shabnam/subscription-tracker/internal/httputil"
)

func newOwnedRouter(t *testing.T, rps float64, burst int) *gin.Engine {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	router := gin.New()
	router.Use(OwnerMiddleware(logger))
	router.Use(RateLimitMiddleware(ctx, rps, burst, logger))
	router.GET("/whoami", func(c *gin.Context) {
		ownerID, err := httputil.GetOwnerID(c)
		require.NoError(t, err)
		c.JSON(http.StatusOK, gin.H{"ownerId": ownerID.String()})
	})
	return router
}

func TestOwnerMiddleware(t *testing.T) {
	router := newOwnedRouter(t, 100, 100)

	t.Run("Success_SetsOwnerInContext", func(t *testing.T) {
		ownerID := uuid.Must(uuid.NewV7())

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set(httputil.OwnerHeader, ownerID.String())
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, ownerID.String(), response["ownerId"])
	})

	t.Run("Error_MissingHeader", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Error_MalformedHeader", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set(httputil.OwnerHeader, "not-a-uuid")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Error_NilUUID", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set(httputil.OwnerHeader, uuid.Nil.String())
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("Error_BurstExhausted", func(t *testing.T) {
		router := newOwnedRouter(t, 0.01, 2)
		ownerID := uuid.Must(uuid.NewV7()).String()

		codes := make([]int, 0, 3)
		var last *httptest.ResponseRecorder
		for i := 0; i < 3; i++ {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			req.Header.Set(httputil.OwnerHeader, ownerID)
			router.ServeHTTP(w, req)
			codes = append(codes, w.Code)
			last = w
		}

		assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
		assert.NotEmpty(t, last.Header().Get("Retry-After"))

		var response httputil.ErrorResponse
		require.NoError(t, json.Unmarshal(last.Body.Bytes(), &response))
		assert.Equal(t, "rate_limit_exceeded", response.Error)
	})

	t.Run("Success_OwnersHaveSeparateBuckets", func(t *testing.T) {
		router := newOwnedRouter(t, 0.01, 1)

		for i := 0; i < 2; i++ {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			req.Header.Set(httputil.OwnerHeader, uuid.Must(uuid.NewV7()).String())
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
		}
	})
}

func TestRateLimiterStore_EvictIdle(t *testing.T) {
	store := &rateLimiterStore{rps: 1, burst: 1}
	ownerID := uuid.Must(uuid.NewV7())
	store.getLimiter(ownerID)

	store.evictIdle(time.Now().Add(-time.Hour))
	_, ok := store.limiters.Load(ownerID)
	assert.True(t, ok)

	store.evictIdle(time.Now().Add(time.Minute))
	_, ok = store.limiters.Load(ownerID)
	assert.False(t, ok)
}
