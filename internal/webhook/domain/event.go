package domain

import (
	"github.com/samber/lo"
)

// Event names a domain event a webhook can subscribe to.
type Event string

const (
	EventSubscriptionCreated         Event = "subscription.created"
	EventSubscriptionUpdated         Event = "subscription.updated"
	EventSubscriptionCancelled       Event = "subscription.cancelled"
	EventSubscriptionDeleted         Event = "subscription.deleted"
	EventSubscriptionRenewalReminder Event = "subscription.renewal_reminder"
	EventSubscriptionTrialEnding     Event = "subscription.trial_ending"
	EventBudgetExceeded              Event = "budget.exceeded"
	EventBudgetWarning               Event = "budget.warning"
)

// AllEvents lists every event a webhook may subscribe to.
var AllEvents = []Event{
	EventSubscriptionCreated,
	EventSubscriptionUpdated,
	EventSubscriptionCancelled,
	EventSubscriptionDeleted,
	EventSubscriptionRenewalReminder,
	EventSubscriptionTrialEnding,
	EventBudgetExceeded,
	EventBudgetWarning,
}

// AllEventNames returns AllEvents as plain strings.
func AllEventNames() []string {
	return lo.Map(AllEvents, func(e Event, _ int) string { return string(e) })
}

// IsValid reports whether e belongs to the enumeration.
func (e Event) IsValid() bool {
	return lo.Contains(AllEvents, e)
}

// String returns the wire name of the event.
func (e Event) String() string {
	return string(e)
}

// ParseEvents converts raw names into a de-duplicated event set, preserving the
// first-seen order. An empty input or any unknown name is rejected.
func ParseEvents(names []string) ([]Event, error) {
	if len(names) == 0 {
		return nil, ErrNoEvents
	}
	events := make([]Event, 0, len(names))
	for _, name := range names {
		event := Event(name)
		if !event.IsValid() {
			return nil, ErrUnknownEvent
		}
		events = append(events, event)
	}
	return lo.Uniq(events), nil
}
