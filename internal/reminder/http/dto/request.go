// Package dto provides data transfer objects for the reminder workflow callback.
package dto

import (
	"github.com/google/uuid"
	validation "github.com/jellydator/validation"
	"github.com/jellydator/validation/is"
)

// StartReminderRequest starts the reminder workflow of a subscription.
type StartReminderRequest struct {
	SubscriptionID string `json:"subscriptionId"`
}

// Validate checks the request.
func (r *StartReminderRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.SubscriptionID,
			validation.Required.Error("subscriptionId is required"),
			is.UUID.Error("subscriptionId must be a valid UUID"),
		),
	)
}

// ParsedSubscriptionID returns the validated subscription ID.
func (r *StartReminderRequest) ParsedSubscriptionID() uuid.UUID {
	return uuid.MustParse(r.SubscriptionID)
}

// StartReminderResponse carries the run ID of the workflow.
type StartReminderResponse struct {
	WorkflowRunID string `json:"workflowRunId"`
}
