package dto

import (
	"github.com/nazarli-shabnam/subscription-tracker/internal/user/domain"
)

// NotificationPreferencesResponse represents notification preferences in API responses.
type NotificationPreferencesResponse struct {
	ReminderDays []int `json:"reminder_days"`
	EmailEnabled bool  `json:"email_enabled"`
	// UsingDefault is true when the user has no reminder day override.
	UsingDefault bool `json:"using_default"`
}

// MapPreferencesToResponse converts domain preferences to an API response, resolving
// unset reminder days to the effective default sequence.
func MapPreferencesToResponse(
	prefs domain.NotificationPreferences,
	defaultOffsets []int,
) NotificationPreferencesResponse {
	return NotificationPreferencesResponse{
		ReminderDays: prefs.Offsets(defaultOffsets),
		EmailEnabled: prefs.EmailEnabled,
		UsingDefault: len(prefs.ReminderDays) == 0,
	}
}
