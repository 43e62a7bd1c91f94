// Package dto provides data transfer objects for the user HTTP API.
package dto

import (
	validation "github.com/jellydator/validation"

	"github.com/nazarli-shabnam/subscription-tracker/internal/user/usecase"
	appValidation "github.com/nazarli-shabnam/subscription-tracker/internal/validation"
)

// UpdateNotificationPreferencesRequest is a partial update; omitted fields are kept.
type UpdateNotificationPreferencesRequest struct {
	ReminderDays *[]int `json:"reminder_days"`
	EmailEnabled *bool  `json:"email_enabled"`
}

// Validate checks the request shape.
func (r *UpdateNotificationPreferencesRequest) Validate() error {
	if r.ReminderDays == nil && r.EmailEnabled == nil {
		return validation.NewError("validation_empty_update", "at least one field must be provided")
	}
	if r.ReminderDays != nil {
		return validation.Errors{
			"reminder_days": validation.Validate(*r.ReminderDays, appValidation.PositiveDays),
		}.Filter()
	}
	return nil
}

// ToUpdatePreferencesInput converts the request to usecase input.
func (r *UpdateNotificationPreferencesRequest) ToUpdatePreferencesInput() usecase.UpdatePreferencesInput {
	return usecase.UpdatePreferencesInput{
		ReminderDays: r.ReminderDays,
		EmailEnabled: r.EmailEnabled,
	}
}
