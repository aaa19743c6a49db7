package mcp

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// parseDeadlineID accepts the ids returned by deadline.create and deadline.list.
func parseDeadlineID(value string) (uuid.UUID, error) {
	if value == "" {
		return uuid.Nil, errors.New("deadline_id is required")
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid deadline_id %q: %w", value, err)
	}
	return id, nil
}

// parseDueDate reads a YYYY-MM-DD date. field prefixes the error so the
// assistant can tell which entry was wrong.
func parseDueDate(field, value string) (time.Time, error) {
	due, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: invalid format %q, use YYYY-MM-DD", field, value)
	}
	return due, nil
}
