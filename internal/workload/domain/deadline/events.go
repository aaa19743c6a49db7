package deadline

import (
	"time"

	"github.com/felixgeelhaar/studyload/internal/shared/domain"
)

const (
	AggregateType = "Deadline"

	RoutingKeyCreated = "workload.deadline.created"
	RoutingKeyUpdated = "workload.deadline.updated"
	RoutingKeyDeleted = "workload.deadline.deleted"
)

// DeadlineCreated is emitted when a deadline is recorded.
type DeadlineCreated struct {
	domain.BaseEvent
	UserID          string `json:"user_id"`
	Title           string `json:"title"`
	DueDate         string `json:"due_date"`
	EstimatedEffort int    `json:"estimated_effort"`
	Importance      string `json:"importance_level"`
}

// NewDeadlineCreated creates a DeadlineCreated event.
func NewDeadlineCreated(d *Deadline) *DeadlineCreated {
	return &DeadlineCreated{
		BaseEvent:       domain.NewBaseEvent(d.ID(), AggregateType, RoutingKeyCreated),
		UserID:          d.userID.String(),
		Title:           d.title,
		DueDate:         d.dueDate.Format(time.DateOnly),
		EstimatedEffort: d.estimatedEffort,
		Importance:      d.importance.String(),
	}
}

// DeadlineUpdated is emitted when any field of a deadline changes.
type DeadlineUpdated struct {
	domain.BaseEvent
	UserID string   `json:"user_id"`
	Fields []string `json:"fields"`
}

// NewDeadlineUpdated creates a DeadlineUpdated event.
func NewDeadlineUpdated(d *Deadline, fields []string) *DeadlineUpdated {
	return &DeadlineUpdated{
		BaseEvent: domain.NewBaseEvent(d.ID(), AggregateType, RoutingKeyUpdated),
		UserID:    d.userID.String(),
		Fields:    fields,
	}
}

// DeadlineDeleted is emitted when a deadline is removed.
type DeadlineDeleted struct {
	domain.BaseEvent
	UserID string `json:"user_id"`
	Title  string `json:"title"`
}

// NewDeadlineDeleted creates a DeadlineDeleted event.
func NewDeadlineDeleted(d *Deadline) *DeadlineDeleted {
	return &DeadlineDeleted{
		BaseEvent: domain.NewBaseEvent(d.ID(), AggregateType, RoutingKeyDeleted),
		UserID:    d.userID.String(),
		Title:     d.title,
	}
}
