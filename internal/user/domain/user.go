// Package domain defines the user directory entities used by reminder delivery.
package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/nazarli-shabnam/subscription-tracker/internal/errors"
)

// NotificationPreferences controls how a user is reminded about renewals.
type NotificationPreferences struct {
	// ReminderDays overrides the default days-before-renewal offsets. Nil means unset.
	ReminderDays []int
	EmailEnabled bool
}

// DefaultNotificationPreferences returns preferences for a user that never changed them.
func DefaultNotificationPreferences() NotificationPreferences {
	return NotificationPreferences{EmailEnabled: true}
}

// Offsets returns the reminder offsets to schedule: the user's own list when set,
// otherwise fallback. The result is unique, positive and sorted descending.
func (p NotificationPreferences) Offsets(fallback []int) []int {
	source := p.ReminderDays
	if len(source) == 0 {
		source = fallback
	}
	return NormalizeOffsets(source)
}

// NormalizeOffsets removes duplicates and non-positive values and sorts descending.
func NormalizeOffsets(days []int) []int {
	out := lo.Uniq(lo.Filter(days, func(d int, _ int) bool { return d > 0 }))
	slices.Sort(out)
	slices.Reverse(out)
	return out
}

// User represents a person owning subscriptions and webhook registrations.
type User struct {
	ID          uuid.UUID
	Name        string
	Email       string
	Preferences NotificationPreferences
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Domain-specific errors for user operations.
var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.Wrap(errors.ErrNotFound, "user not found")

	// ErrUserAlreadyExists indicates a user with the same email already exists.
	ErrUserAlreadyExists = errors.Wrap(errors.ErrConflict, "user already exists")
)
