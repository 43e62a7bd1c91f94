// Package dto provides data transfer objects for the subscription HTTP API.
package dto

import (
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"
	"github.com/shopspring/decimal"

	"github.com/nazarli-shabnam/subscription-tracker/internal/subscription/usecase"
)

// CreateSubscriptionRequest contains the parameters for creating a subscription
type CreateSubscriptionRequest struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Currency      string          `json:"currency"`
	Frequency     string          `json:"frequency"`
	Category      string          `json:"category"`
	PaymentMethod string          `json:"payment_method"`
	Status        string          `json:"status,omitempty"`
	StartDate     time.Time       `json:"start_date"`
}

// Validate checks the request shape. Business rules are enforced by the use case.
func (r *CreateSubscriptionRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required.Error("name is required")),
		validation.Field(&r.Currency, validation.Required.Error("currency is required")),
		validation.Field(&r.Frequency, validation.Required.Error("frequency is required")),
		validation.Field(&r.Category, validation.Required.Error("category is required")),
		validation.Field(&r.PaymentMethod, validation.Required.Error("payment_method is required")),
		validation.Field(&r.StartDate, validation.Required.Error("start_date is required")),
	)
}

// ToCreateSubscriptionInput converts the request to usecase input.
func (r *CreateSubscriptionRequest) ToCreateSubscriptionInput(ownerID uuid.UUID) usecase.CreateSubscriptionInput {
	return usecase.CreateSubscriptionInput{
		OwnerID:       ownerID,
		Name:          r.Name,
		Description:   r.Description,
		Price:         r.Price,
		Currency:      r.Currency,
		Frequency:     r.Frequency,
		Category:      r.Category,
		PaymentMethod: r.PaymentMethod,
		Status:        r.Status,
		StartDate:     r.StartDate,
	}
}

// UpdateSubscriptionRequest is a partial update; omitted fields are kept.
type UpdateSubscriptionRequest struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	Price         *decimal.Decimal `json:"price"`
	Currency      *string          `json:"currency"`
	Frequency     *string          `json:"frequency"`
	Category      *string          `json:"category"`
	PaymentMethod *string          `json:"payment_method"`
	Status        *string          `json:"status"`
	StartDate     *time.Time       `json:"start_date"`
}

// Validate rejects an update that changes nothing.
func (r *UpdateSubscriptionRequest) Validate() error {
	if r.Name == nil && r.Description == nil && r.Price == nil && r.Currency == nil &&
		r.Frequency == nil && r.Category == nil && r.PaymentMethod == nil &&
		r.Status == nil && r.StartDate == nil {
		return validation.NewError("validation_empty_update", "at least one field must be provided")
	}
	return nil
}

// ToUpdateSubscriptionInput converts the request to usecase input.
func (r *UpdateSubscriptionRequest) ToUpdateSubscriptionInput() usecase.UpdateSubscriptionInput {
	return usecase.UpdateSubscriptionInput{
		Name:          r.Name,
		Description:   r.Description,
		Price:         r.Price,
		Currency:      r.Currency,
		Frequency:     r.Frequency,
		Category:      r.Category,
		PaymentMethod: r.PaymentMethod,
		Status:        r.Status,
		StartDate:     r.StartDate,
	}
}
