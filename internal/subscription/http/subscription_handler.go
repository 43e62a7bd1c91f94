// Package http provides HTTP handlers for subscription management.
package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/nazarli-shabnam/subscription-tracker/internal/errors"
	"github.com/nazarli-shabnam/subscription-tracker/internal/httputil"
	"github.com/nazarli-shabnam/subscription-tracker/internal/subscription/http/dto"
	"github.com/nazarli-shabnam/subscription-tracker/internal/subscription/usecase"
	customValidation "github.com/nazarli-shabnam/subscription-tracker/internal/validation"
)

// SubscriptionHandler handles HTTP requests for subscriptions.
type SubscriptionHandler struct {
	subscriptionUseCase usecase.UseCase
	logger              *slog.Logger
}

// NewSubscriptionHandler creates a new SubscriptionHandler
func NewSubscriptionHandler(subscriptionUseCase usecase.UseCase, logger *slog.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionUseCase: subscriptionUseCase,
		logger:              logger,
	}
}

// CreateHandler creates a subscription for the caller.
// POST /v1/subscriptions
func (h *SubscriptionHandler) CreateHandler(c *gin.Context) {
	ownerID, err := httputil.GetOwnerID(c)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	var req dto.CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	s, err := h.subscriptionUseCase.Create(c.Request.Context(), req.ToCreateSubscriptionInput(ownerID))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapSubscriptionToResponse(s))
}

// ListHandler returns a page of the caller's subscriptions.
// GET /v1/subscriptions?offset=0&limit=50
func (h *SubscriptionHandler) ListHandler(c *gin.Context) {
	ownerID, err := httputil.GetOwnerID(c)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	subscriptions, err := h.subscriptionUseCase.List(c.Request.Context(), ownerID, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSubscriptionsToListResponse(subscriptions))
}

// UpcomingRenewalsHandler returns the caller's subscriptions renewing soon.
// GET /v1/subscriptions/upcoming-renewals?days=30
func (h *SubscriptionHandler) UpcomingRenewalsHandler(c *gin.Context) {
	ownerID, err := httputil.GetOwnerID(c)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	days, err := strconv.Atoi(c.DefaultQuery("days", strconv.Itoa(usecase.DefaultUpcomingDays)))
	if err != nil || days < 1 {
		httputil.HandleBadRequestGin(c, apperrors.New("invalid days parameter: must be a positive integer"), h.logger)
		return
	}

	renewals, err := h.subscriptionUseCase.Upcoming(c.Request.Context(), ownerID, days)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapUpcomingRenewalsToResponse(renewals))
}

// GetHandler returns one of the caller's subscriptions.
// GET /v1/subscriptions/:id
func (h *SubscriptionHandler) GetHandler(c *gin.Context) {
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

	s, err := h.subscriptionUseCase.Get(c.Request.Context(), ownerID, id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSubscriptionToResponse(s))
}

// UpdateHandler partially updates one of the caller's subscriptions.
// PUT /v1/subscriptions/:id
func (h *SubscriptionHandler) UpdateHandler(c *gin.Context) {
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

	var req dto.UpdateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	s, err := h.subscriptionUseCase.Update(c.Request.Context(), ownerID, id, req.ToUpdateSubscriptionInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSubscriptionToResponse(s))
}

// CancelHandler cancels one of the caller's subscriptions.
// PUT /v1/subscriptions/:id/cancel
func (h *SubscriptionHandler) CancelHandler(c *gin.Context) {
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

	s, err := h.subscriptionUseCase.Cancel(c.Request.Context(), ownerID, id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSubscriptionToResponse(s))
}

// DeleteHandler deletes one of the caller's subscriptions.
// DELETE /v1/subscriptions/:id
func (h *SubscriptionHandler) DeleteHandler(c *gin.Context) {
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

	if err := h.subscriptionUseCase.Delete(c.Request.Context(), ownerID, id); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}
