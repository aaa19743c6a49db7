// Package queries holds the deadline and workload read side. Every query is
// owner-scoped: the caller resolves the user and passes the id explicitly.
package queries

import (
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/studyload/internal/workload/application/services"
	"github.com/felixgeelhaar/studyload/internal/workload/domain/deadline"
	"github.com/felixgeelhaar/studyload/internal/workload/domain/value_objects"
)

// DeadlineDTO is a stored deadline as returned to callers.
type DeadlineDTO struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	Title           string    `json:"title"`
	DueDate         string    `json:"due_date"`
	EstimatedEffort int       `json:"estimated_effort"`
	Importance      string    `json:"importance_level"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toDeadlineDTO(d *deadline.Deadline) DeadlineDTO {
	return DeadlineDTO{
		ID:              d.ID(),
		UserID:          d.UserID(),
		Title:           d.Title(),
		DueDate:         d.DueDate().Format(time.DateOnly),
		EstimatedEffort: d.EstimatedEffort(),
		Importance:      d.Importance().String(),
		CreatedAt:       d.CreatedAt(),
		UpdatedAt:       d.UpdatedAt(),
	}
}

func toDeadlineDTOs(deadlines []*deadline.Deadline) []DeadlineDTO {
	dtos := make([]DeadlineDTO, len(deadlines))
	for i, d := range deadlines {
		dtos[i] = toDeadlineDTO(d)
	}
	return dtos
}

// DeadlineInput is a caller-supplied deadline for the scoring queries. It is
// never stored, so ID may be any reference the caller understands.
type DeadlineInput struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	DueDate         time.Time `json:"due_date"`
	EstimatedEffort int       `json:"estimated_effort"`
	Importance      string    `json:"importance_level"`
}

func recordsFromInputs(inputs []DeadlineInput) ([]services.DeadlineRecord, error) {
	records := make([]services.DeadlineRecord, len(inputs))
	for i, in := range inputs {
		records[i] = services.DeadlineRecord{
			ID:              in.ID,
			Title:           in.Title,
			DueDate:         in.DueDate,
			EstimatedEffort: in.EstimatedEffort,
			Importance:      value_objects.NormalizeImportance(in.Importance),
		}
	}
	if err := services.ValidateRecords(records); err != nil {
		return nil, err
	}
	return records, nil
}

func recordsFromDeadlines(deadlines []*deadline.Deadline) []services.DeadlineRecord {
	records := make([]services.DeadlineRecord, len(deadlines))
	for i, d := range deadlines {
		records[i] = services.DeadlineRecord{
			ID:              d.ID().String(),
			Title:           d.Title(),
			DueDate:         d.DueDate(),
			EstimatedEffort: d.EstimatedEffort(),
			Importance:      d.Importance(),
		}
	}
	return records
}

// Clock returns the current time. Queries derive "today" from it.
type Clock func() time.Time

func (c Clock) today() time.Time {
	if c == nil {
		return services.DateOf(time.Now())
	}
	return services.DateOf(c())
}
