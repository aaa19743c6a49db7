package queries

import (
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/studyload/internal/workload/application/services"
)

// RawDeadline is a caller-supplied deadline as it arrives over the wire,
// before its date is parsed.
type RawDeadline struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	DueDate         string `json:"due_date"`
	EstimatedEffort int    `json:"estimated_effort"`
	Importance      string `json:"importance_level"`
}

// ParseDeadlineInputs parses every due date and numbers entries without an
// id from 1 by position. A nil list stays nil so the scoring queries fall
// back to the stored deadlines.
func ParseDeadlineInputs(raw []RawDeadline) ([]DeadlineInput, error) {
	if raw == nil {
		return nil, nil
	}
	inputs := make([]DeadlineInput, len(raw))
	for i, d := range raw {
		due, err := ParseDueDate("deadlines["+strconv.Itoa(i)+"].due_date", d.DueDate)
		if err != nil {
			return nil, err
		}
		id := d.ID
		if strings.TrimSpace(id) == "" {
			id = strconv.Itoa(i + 1)
		}
		inputs[i] = DeadlineInput{
			ID:              id,
			Title:           d.Title,
			DueDate:         due,
			EstimatedEffort: d.EstimatedEffort,
			Importance:      d.Importance,
		}
	}
	return inputs, nil
}

// ParseDueDate accepts a calendar date or an RFC 3339 timestamp and keeps the
// date part.
func ParseDueDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, services.NewValidationError(field, "is required")
	}
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return services.DateOf(t), nil
	}
	return time.Time{}, services.NewValidationError(field, "must be a date in YYYY-MM-DD format")
}
