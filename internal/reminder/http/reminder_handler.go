// Package http exposes the reminder workflow start callback.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nazarli-shabnam/subscription-tracker/internal/httputil"
	"github.com/nazarli-shabnam/subscription-tracker/internal/reminder/http/dto"
	"github.com/nazarli-shabnam/subscription-tracker/internal/reminder/usecase"
	customValidation "github.com/nazarli-shabnam/subscription-tracker/internal/validation"
)

// ReminderHandler handles the workflow start callback.
type ReminderHandler struct {
	reminderUseCase usecase.UseCase
	logger          *slog.Logger
}

// NewReminderHandler creates a new ReminderHandler
func NewReminderHandler(reminderUseCase usecase.UseCase, logger *slog.Logger) *ReminderHandler {
	return &ReminderHandler{
		reminderUseCase: reminderUseCase,
		logger:          logger,
	}
}

// StartHandler starts, or returns the already pending, reminder workflow of a subscription.
// POST /v1/workflows/subscriptions/reminder
func (h *ReminderHandler) StartHandler(c *gin.Context) {
	var req dto.StartReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	runID, err := h.reminderUseCase.Start(c.Request.Context(), req.ParsedSubscriptionID())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.StartReminderResponse{WorkflowRunID: runID.String()})
}
