package dto

import (
	"time"

	"github.com/samber/lo"

	"github.com/nazarli-shabnam/subscription-tracker/internal/webhook/domain"
	"github.com/nazarli-shabnam/subscription-tracker/internal/webhook/usecase"
)

// WebhookResponse represents a webhook in API responses. The secret is never included.
type WebhookResponse struct {
	ID              string     `json:"id"`
	URL             string     `json:"url"`
	Events          []string   `json:"events"`
	IsActive        bool       `json:"is_active"`
	LastTriggeredAt *time.Time `json:"last_triggered_at"`
	FailureCount    int        `json:"failure_count"`
	MaxFailures     int        `json:"max_failures"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// CreateWebhookResponse is returned once on registration and carries the secret.
type CreateWebhookResponse struct {
	WebhookResponse
	Secret string `json:"secret"`
}

// ListWebhooksResponse wraps the caller's webhooks.
type ListWebhooksResponse struct {
	Data []WebhookResponse `json:"data"`
}

// MapWebhookToResponse converts a domain webhook to an API response
func MapWebhookToResponse(webhook *domain.Webhook) WebhookResponse {
	return WebhookResponse{
		ID:              webhook.ID.String(),
		URL:             webhook.URL,
		Events:          lo.Map(webhook.Events, func(e domain.Event, _ int) string { return e.String() }),
		IsActive:        webhook.IsActive,
		LastTriggeredAt: webhook.LastTriggeredAt,
		FailureCount:    webhook.FailureCount,
		MaxFailures:     webhook.MaxFailures,
		CreatedAt:       webhook.CreatedAt,
		UpdatedAt:       webhook.UpdatedAt,
	}
}

// MapCreateOutputToResponse converts a registration result to an API response
func MapCreateOutputToResponse(output *usecase.CreateWebhookOutput) CreateWebhookResponse {
	return CreateWebhookResponse{
		WebhookResponse: MapWebhookToResponse(output.Webhook),
		Secret:          output.Secret,
	}
}

// MapWebhooksToListResponse converts a list of webhooks to an API response
func MapWebhooksToListResponse(webhooks []*domain.Webhook) ListWebhooksResponse {
	return ListWebhooksResponse{
		Data: lo.Map(webhooks, func(w *domain.Webhook, _ int) WebhookResponse { return MapWebhookToResponse(w) }),
	}
}
