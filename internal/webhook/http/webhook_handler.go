// Package http provides HTTP handlers for webhook registration management.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nazarli-shabnam/subscription-tracker/internal/httputil"
	customValidation "github.com/nazarli-shabnam/subscription-tracker/internal/validation"
	"github.com/nazarli-shabnam/subscription-tracker/internal/webhook/http/dto"
	"github.com/nazarli-shabnam/subscription-tracker/internal/webhook/usecase"
)

// WebhookHandler handles HTTP requests for webhook registrations.
type WebhookHandler struct {
	webhookUseCase usecase.UseCase
	logger         *slog.Logger
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(webhookUseCase usecase.UseCase, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		webhookUseCase: webhookUseCase,
		logger:         logger,
	}
}

// CreateHandler registers a webhook and returns its secret once.
// POST /v1/webhooks
func (h *WebhookHandler) CreateHandler(c *gin.Context) {
	ownerID, err := httputil.GetOwnerID(c)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	var req dto.CreateWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	output, err := h.webhookUseCase.Create(c.Request.Context(), req.ToCreateWebhookInput(ownerID))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapCreateOutputToResponse(output))
}

// ListHandler returns the caller's webhooks without secrets.
// GET /v1/webhooks
func (h *WebhookHandler) ListHandler(c *gin.Context) {
	ownerID, err := httputil.GetOwnerID(c)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	webhooks, err := h.webhookUseCase.List(c.Request.Context(), ownerID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapWebhooksToListResponse(webhooks))
}

// GetHandler returns one of the caller's webhooks.
// GET /v1/webhooks/:id
func (h *WebhookHandler) GetHandler(c *gin.Context) {
	ownerID, err := httputil.GetOwnerID(c)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	id, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	webhook, err := h.webhookUseCase.Get(c.Request.Context(), ownerID, id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapWebhookToResponse(webhook))
}

// UpdateHandler partially updates a webhook. is_active=true reactivates it.
// PUT /v1/webhooks/:id
func (h *WebhookHandler) UpdateHandler(c *gin.Context) {
	ownerID, err := httputil.GetOwnerID(c)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	id, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	var req dto.UpdateWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	webhook, err := h.webhookUseCase.Update(c.Request.Context(), ownerID, id, req.ToUpdateWebhookInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapWebhookToResponse(webhook))
}

// DeleteHandler removes one of the caller's webhooks.
// DELETE /v1/webhooks/:id
func (h *WebhookHandler) DeleteHandler(c *gin.Context) {
	ownerID, err := httputil.GetOwnerID(c)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	id, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	if err := h.webhookUseCase.Delete(c.Request.Context(), ownerID, id); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}
