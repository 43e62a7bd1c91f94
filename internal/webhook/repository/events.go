// Package repository provides data persistence implementations for webhook registrations.
package repository

import (
	"encoding/json"

	apperrors "github.com/nazarli-shabnam/subscription-tracker/internal/errors"
	"github.com/nazarli-shabnam/subscription-tracker/internal/webhook/domain"
)

func encodeEvents(events []domain.Event) (string, error) {
	raw, err := json.Marshal(events)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to marshal webhook events")
	}
	return string(raw), nil
}

func decodeEvents(raw string) ([]domain.Event, error) {
	var events []domain.Event
	if err := json.Unmarshal([]byte(raw), &events); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal webhook events")
	}
	return events, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}
