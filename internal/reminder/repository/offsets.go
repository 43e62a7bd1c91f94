// Package repository provides data persistence implementations for reminder tasks.
package repository

import (
	"encoding/json"

	apperrors "github.com/nazarli-shabnam/subscription-tracker/internal/errors"
)

const taskColumns = `id, subscription_id, offsets, next_offset_index, wake_at, status, started,
			  attempts, last_error, completed_at, created_at, updated_at`

func encodeOffsets(offsets []int) (string, error) {
	if offsets == nil {
		offsets = []int{}
	}
	raw, err := json.Marshal(offsets)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to marshal reminder offsets")
	}
	return string(raw), nil
}

func decodeOffsets(raw string) ([]int, error) {
	var offsets []int
	if err := json.Unmarshal([]byte(raw), &offsets); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal reminder offsets")
	}
	return offsets, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}
