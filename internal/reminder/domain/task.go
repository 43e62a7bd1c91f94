// Package domain defines the persisted reminder workflow: one task per
// subscription walking a descending list of days-before-renewal offsets.
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nazarli-shabnam/subscription-tracker/internal/clock"
	"github.com/nazarli-shabnam/subscription-tracker/internal/errors"
)

// TaskStatus represents the status of a reminder task
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
)

// Task is a reminder workflow run. The subscription ID, the offsets and the
// next offset index are the only state carried across suspensions; everything
// else is re-read from the subscription on every wake-up.
type Task struct {
	ID              uuid.UUID
	SubscriptionID  uuid.UUID
	Offsets         []int
	NextOffsetIndex int
	WakeAt          time.Time
	Status          TaskStatus
	// Started is false until the first run has checked the renewal date.
	Started     bool
	Attempts    int
	LastError   *string
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewTask creates a pending task due immediately.
func NewTask(subscriptionID uuid.UUID, offsets []int, now time.Time) *Task {
	return &Task{
		ID:             uuid.Must(uuid.NewV7()),
		SubscriptionID: subscriptionID,
		Offsets:        append([]int(nil), offsets...),
		WakeAt:         now,
		Status:         TaskStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// CurrentOffset returns the offset to process next, or false once all are done.
func (t *Task) CurrentOffset() (int, bool) {
	if t.NextOffsetIndex >= len(t.Offsets) {
		return 0, false
	}
	return t.Offsets[t.NextOffsetIndex], true
}

// Advance moves to the next offset.
func (t *Task) Advance() {
	t.NextOffsetIndex++
}

// Suspend parks the task until wakeAt.
func (t *Task) Suspend(wakeAt, now time.Time) {
	t.WakeAt = wakeAt
	t.Attempts = 0
	t.LastError = nil
	t.UpdatedAt = now
}

// Complete ends the workflow. A completed task is never woken again.
func (t *Task) Complete(now time.Time) {
	t.Status = TaskStatusCompleted
	t.CompletedAt = &now
	t.LastError = nil
	t.UpdatedAt = now
}

// Retry keeps the task pending and wakes it again after delay.
func (t *Task) Retry(err error, delay time.Duration, now time.Time) {
	msg := err.Error()
	t.Attempts++
	t.LastError = &msg
	t.WakeAt = now.Add(delay)
	t.UpdatedAt = now
}

// IsPending reports whether the task still has work to do.
func (t *Task) IsPending() bool {
	return t.Status == TaskStatusPending
}

// ReminderInstant returns the instant the reminder for offset fires.
func ReminderInstant(renewalDate time.Time, offset int) time.Time {
	return clock.SubDays(renewalDate, offset)
}

// Label formats the human readable name of a reminder, e.g. "7 days before".
func Label(offset int) string {
	if offset == 1 {
		return "1 day before"
	}
	return fmt.Sprintf("%d days before", offset)
}

// ReminderEventData is the payload of subscription.renewal_reminder events.
type ReminderEventData struct {
	SubscriptionID uuid.UUID `json:"subscription_id"`
	WorkflowRunID  uuid.UUID `json:"workflow_run_id"`
	Name           string    `json:"name"`
	Price          string    `json:"price"`
	Currency       string    `json:"currency"`
	RenewalDate    time.Time `json:"renewal_date"`
	DaysBefore     int       `json:"days_before"`
	Label          string    `json:"label"`
}

// Domain-specific errors for reminder operations.
var (
	// ErrTaskNotFound indicates no pending task exists for the subscription.
	ErrTaskNotFound = errors.Wrap(errors.ErrNotFound, "reminder task not found")

	// ErrTaskAlreadyPending indicates the subscription already has a live task.
	ErrTaskAlreadyPending = errors.Wrap(errors.ErrConflict, "reminder task already pending")
)
