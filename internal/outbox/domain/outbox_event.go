// Package domain defines the transactional outbox entities used to hand domain
// events from a committed mutation to the webhook dispatcher.
package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/nazarli-shabnam/subscription-tracker/internal/errors"
)

// OutboxEventStatus represents the status of an outbox event
type OutboxEventStatus string

const (
	OutboxEventStatusPending   OutboxEventStatus = "pending"
	OutboxEventStatusProcessed OutboxEventStatus = "processed"
	OutboxEventStatusFailed    OutboxEventStatus = "failed"
)

// OutboxEvent represents an event in the transactional outbox pattern
type OutboxEvent struct {
	ID          uuid.UUID
	EventType   string
	Payload     string
	Status      OutboxEventStatus
	Retries     int
	LastError   *string
	ProcessedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EventPayload is the stored body of an outbox event: the owner whose webhooks
// receive it and the event-specific data forwarded verbatim.
type EventPayload struct {
	OwnerID uuid.UUID       `json:"owner_id"`
	Data    json.RawMessage `json:"data"`
}

// ErrInvalidPayload indicates a stored event cannot be decoded.
var ErrInvalidPayload = errors.Wrap(errors.ErrInvalidInput, "invalid outbox event payload")

// NewOutboxEvent builds a pending event for ownerID carrying data.
func NewOutboxEvent(eventType string, ownerID uuid.UUID, data any, now time.Time) (*OutboxEvent, error) {
	rawData, err := json.Marshal(data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal event data")
	}

	payload, err := json.Marshal(EventPayload{OwnerID: ownerID, Data: rawData})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal event payload")
	}

	return &OutboxEvent{
		ID:        uuid.Must(uuid.NewV7()),
		EventType: eventType,
		Payload:   string(payload),
		Status:    OutboxEventStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// DecodePayload parses the stored payload.
func (e *OutboxEvent) DecodePayload() (*EventPayload, error) {
	var payload EventPayload
	if err := json.Unmarshal([]byte(e.Payload), &payload); err != nil {
		return nil, errors.Wrap(ErrInvalidPayload, err.Error())
	}
	if payload.OwnerID == uuid.Nil {
		return nil, errors.Wrap(ErrInvalidPayload, "missing owner_id")
	}
	if len(payload.Data) == 0 {
		payload.Data = json.RawMessage("null")
	}
	return &payload, nil
}
