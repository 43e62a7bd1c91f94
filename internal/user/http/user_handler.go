// Package http provides HTTP handlers for the caller's user profile.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nazarli-shabnam/subscription-tracker/internal/httputil"
	"github.com/nazarli-shabnam/subscription-tracker/internal/user/http/dto"
	"github.com/nazarli-shabnam/subscription-tracker/internal/user/usecase"
	customValidation "github.com/nazarli-shabnam/subscription-tracker/internal/validation"
)

// UserHandler serves the notification preferences of the calling user.
type UserHandler struct {
	userUseCase    usecase.UseCase
	defaultOffsets []int
	logger         *slog.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userUseCase usecase.UseCase, defaultOffsets []int, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userUseCase:    userUseCase,
		defaultOffsets: defaultOffsets,
		logger:         logger,
	}
}

// GetNotificationPreferencesHandler returns the caller's notification preferences.
// GET /v1/users/me/notification-preferences
func (h *UserHandler) GetNotificationPreferencesHandler(c *gin.Context) {
	ownerID, err := httputil.GetOwnerID(c)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	prefs, err := h.userUseCase.GetNotificationPreferences(c.Request.Context(), ownerID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPreferencesToResponse(prefs, h.defaultOffsets))
}

// UpdateNotificationPreferencesHandler partially updates the caller's preferences.
// PUT /v1/users/me/notification-preferences
func (h *UserHandler) UpdateNotificationPreferencesHandler(c *gin.Context) {
	ownerID, err := httputil.GetOwnerID(c)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	var req dto.UpdateNotificationPreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	prefs, err := h.userUseCase.UpdateNotificationPreferences(
		c.Request.Context(),
		ownerID,
		req.ToUpdatePreferencesInput(),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPreferencesToResponse(prefs, h.defaultOffsets))
}
