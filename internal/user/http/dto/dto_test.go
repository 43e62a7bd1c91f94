package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nazarli-shabnam/subscription-tracker/internal/user/domain"
)

func TestUpdateNotificationPreferencesRequest_Validate(t *testing.T) {
	t.Run("Error_Empty", func(t *testing.T) {
		req := UpdateNotificationPreferencesRequest{}
		assert.Error(t, req.Validate())
	})

	t.Run("Error_NegativeDay", func(t *testing.T) {
		days := []int{3, -1}
		req := UpdateNotificationPreferencesRequest{ReminderDays: &days}
		err := req.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "reminder_days")
	})

	t.Run("Success_OnlyEmailEnabled", func(t *testing.T) {
		enabled := false
		req := UpdateNotificationPreferencesRequest{EmailEnabled: &enabled}
		assert.NoError(t, req.Validate())

		input := req.ToUpdatePreferencesInput()
		assert.Nil(t, input.ReminderDays)
		assert.False(t, *input.EmailEnabled)
	})
}

func TestMapPreferencesToResponse(t *testing.T) {
	defaults := []int{7, 5, 2, 1}

	resp := MapPreferencesToResponse(domain.DefaultNotificationPreferences(), defaults)
	assert.Equal(t, defaults, resp.ReminderDays)
	assert.True(t, resp.UsingDefault)
	assert.True(t, resp.EmailEnabled)

	resp = MapPreferencesToResponse(domain.NotificationPreferences{ReminderDays: []int{3}}, defaults)
	assert.Equal(t, []int{3}, resp.ReminderDays)
	assert.False(t, resp.UsingDefault)
	assert.False(t, resp.EmailEnabled)
}
