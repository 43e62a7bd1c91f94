// Package repository provides data persistence implementations for user entities.
package repository

import (
	"database/sql"
	"encoding/json"

	apperrors "github.com/nazarli-shabnam/subscription-tracker/internal/errors"
)

// encodeReminderDays stores an unset list as NULL so the default keeps applying.
func encodeReminderDays(days []int) (sql.NullString, error) {
	if days == nil {
		return sql.NullString{}, nil
	}
	raw, err := json.Marshal(days)
	if err != nil {
		return sql.NullString{}, apperrors.Wrap(err, "failed to marshal reminder days")
	}
	return sql.NullString{String: string(raw), Valid: true}, nil
}

func decodeReminderDays(raw sql.NullString) ([]int, error) {
	if !raw.Valid {
		return nil, nil
	}
	var days []int
	if err := json.Unmarshal([]byte(raw.String), &days); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal reminder days")
	}
	return days, nil
}
