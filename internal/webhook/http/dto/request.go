// Package dto provides data transfer objects for the webhook HTTP API.
package dto

import (
	"github.com/google/uuid"
	validation "github.com/jellydator/validation"
	"github.com/samber/lo"

	appValidation "github.com/nazarli-shabnam/subscription-tracker/internal/validation"
	"github.com/nazarli-shabnam/subscription-tracker/internal/webhook/domain"
	"github.com/nazarli-shabnam/subscription-tracker/internal/webhook/usecase"
)

var eventRule = validation.In(lo.ToAnySlice(domain.AllEventNames())...).
	Error("must be a supported webhook event")

// CreateWebhookRequest contains the parameters for registering a webhook
type CreateWebhookRequest struct {
	URL         string   `json:"url"`
	Events      []string `json:"events"`
	MaxFailures *int     `json:"max_failures,omitempty"`
}

// Validate checks the request shape.
func (r *CreateWebhookRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.URL,
			validation.Required.Error("url is required"),
			appValidation.HTTPURL,
			validation.Length(1, 2048),
		),
		validation.Field(&r.Events,
			validation.Required.Error("events array is required"),
			validation.Each(eventRule),
		),
		validation.Field(&r.MaxFailures, validation.Min(1)),
	)
}

// ToCreateWebhookInput converts the request to usecase input.
func (r *CreateWebhookRequest) ToCreateWebhookInput(ownerID uuid.UUID) usecase.CreateWebhookInput {
	return usecase.CreateWebhookInput{
		OwnerID:     ownerID,
		URL:         r.URL,
		Events:      r.Events,
		MaxFailures: r.MaxFailures,
	}
}

// UpdateWebhookRequest is a partial update; omitted fields are kept.
type UpdateWebhookRequest struct {
	URL         *string   `json:"url"`
	Events      *[]string `json:"events"`
	IsActive    *bool     `json:"is_active"`
	MaxFailures *int      `json:"max_failures"`
}

// Validate checks the request shape.
func (r *UpdateWebhookRequest) Validate() error {
	if r.URL == nil && r.Events == nil && r.IsActive == nil && r.MaxFailures == nil {
		return validation.NewError("validation_empty_update", "at least one field must be provided")
	}

	errs := validation.Errors{}
	if r.URL != nil {
		errs["url"] = validation.Validate(*r.URL,
			validation.Required.Error("url must not be empty"),
			appValidation.HTTPURL,
			validation.Length(1, 2048),
		)
	}
	if r.Events != nil {
		errs["events"] = validation.Validate(*r.Events,
			validation.Required.Error("events must not be empty"),
			validation.Each(eventRule),
		)
	}
	if r.MaxFailures != nil {
		errs["max_failures"] = validation.Validate(*r.MaxFailures, validation.Min(1))
	}
	return errs.Filter()
}

// ToUpdateWebhookInput converts the request to usecase input.
func (r *UpdateWebhookRequest) ToUpdateWebhookInput() usecase.UpdateWebhookInput {
	return usecase.UpdateWebhookInput{
		URL:         r.URL,
		Events:      r.Events,
		IsActive:    r.IsActive,
		MaxFailures: r.MaxFailures,
	}
}
