// Package domain defines the subscription entity and its renewal rules.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/nazarli-shabnam/subscription-tracker/internal/clock"
	"github.com/nazarli-shabnam/subscription-tracker/internal/errors"
)

// Frequency is the billing period of a subscription.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

var periodDays = map[Frequency]int{
	FrequencyDaily:   1,
	FrequencyWeekly:  7,
	FrequencyMonthly: 30,
	FrequencyYearly:  365,
}

// AllFrequencies lists the supported billing periods.
var AllFrequencies = []Frequency{FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly}

// PeriodDays returns the length of one billing period in days, or 0 for an
// unknown frequency.
func (f Frequency) PeriodDays() int {
	return periodDays[f]
}

// IsValid reports whether f is a supported frequency.
func (f Frequency) IsValid() bool {
	_, ok := periodDays[f]
	return ok
}

// Status is the lifecycle state of a subscription.
type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
	StatusTrial     Status = "trial"
)

// AllStatuses lists every subscription status.
var AllStatuses = []Status{StatusActive, StatusCancelled, StatusExpired, StatusTrial}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	return lo.Contains(AllStatuses, s)
}

// Subscription is a recurring payment tracked for its owner.
type Subscription struct {
	ID               uuid.UUID
	OwnerID          uuid.UUID
	Name             string
	Description      string
	Price            decimal.Decimal
	Currency         string
	Frequency        Frequency
	Category         string
	PaymentMethod    string
	Status           Status
	StartDate        time.Time
	RenewalDate      time.Time
	CancellationDate *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ComputeRenewalDate returns start moved forward by one billing period.
func ComputeRenewalDate(start time.Time, frequency Frequency) time.Time {
	return clock.AddDays(start, frequency.PeriodDays())
}

// Renew recomputes the renewal date from the start date and frequency.
func (s *Subscription) Renew() {
	s.RenewalDate = ComputeRenewalDate(s.StartDate, s.Frequency)
}

// RefreshStatus marks an active or trial subscription expired once its renewal
// date has passed. It reports whether the status changed.
func (s *Subscription) RefreshStatus(now time.Time) bool {
	if s.Status != StatusActive && s.Status != StatusTrial {
		return false
	}
	if !clock.IsPast(s.RenewalDate, now) {
		return false
	}
	s.Status = StatusExpired
	return true
}

// Cancel moves the subscription to cancelled and stamps the cancellation date.
// Cancelling an already cancelled subscription keeps the original date and
// reports false.
func (s *Subscription) Cancel(now time.Time) bool {
	if s.Status == StatusCancelled {
		return false
	}
	s.Status = StatusCancelled
	s.CancellationDate = &now
	return true
}

// IsActive reports whether reminders should be sent for the subscription.
func (s *Subscription) IsActive() bool {
	return s.Status == StatusActive
}

// IsOwnedBy reports whether ownerID owns the subscription.
func (s *Subscription) IsOwnedBy(ownerID uuid.UUID) bool {
	return s.OwnerID == ownerID
}

// DaysUntilRenewal returns the whole days left before renewal, negative once past.
func (s *Subscription) DaysUntilRenewal(now time.Time) int {
	return clock.DaysBetween(now, s.RenewalDate)
}

// EventData is the payload of subscription lifecycle events.
type EventData struct {
	SubscriptionID   uuid.UUID       `json:"subscription_id"`
	Name             string          `json:"name"`
	Price            decimal.Decimal `json:"price"`
	Currency         string          `json:"currency"`
	Frequency        Frequency       `json:"frequency"`
	Status           Status          `json:"status"`
	RenewalDate      time.Time       `json:"renewal_date"`
	CancellationDate *time.Time      `json:"cancellation_date,omitempty"`
}

// ToEventData builds the lifecycle event payload of the subscription.
func (s *Subscription) ToEventData() EventData {
	return EventData{
		SubscriptionID:   s.ID,
		Name:             s.Name,
		Price:            s.Price,
		Currency:         s.Currency,
		Frequency:        s.Frequency,
		Status:           s.Status,
		RenewalDate:      s.RenewalDate,
		CancellationDate: s.CancellationDate,
	}
}

// Domain-specific errors for subscription operations.
var (
	// ErrSubscriptionNotFound indicates the subscription does not exist.
	ErrSubscriptionNotFound = errors.Wrap(errors.ErrNotFound, "subscription not found")

	// ErrSubscriptionForbidden indicates the caller does not own the subscription.
	ErrSubscriptionForbidden = errors.Wrap(errors.ErrForbidden, "subscription belongs to another user")

	// ErrRenewalBeforeStart indicates a renewal date earlier than the start date.
	ErrRenewalBeforeStart = errors.Wrap(errors.ErrInvalidInput, "renewal date must not be before start date")
)
