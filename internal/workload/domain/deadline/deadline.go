package deadline

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/felixgeelhaar/studyload/internal/shared/domain"
	"github.com/felixgeelhaar/studyload/internal/workload/domain/value_objects"
	"github.com/google/uuid"
)

// MaxTitleLength is the longest accepted title, in characters.
const MaxTitleLength = 255

// MaxEstimatedEffort is the largest accepted effort estimate, in hours.
const MaxEstimatedEffort = 1000

var (
	ErrEmptyTitle       = errors.New("deadline title cannot be empty")
	ErrTitleTooLong     = errors.New("deadline title cannot exceed 255 characters")
	ErrMissingDueDate   = errors.New("deadline due date is required")
	ErrNegativeEffort   = errors.New("estimated effort cannot be negative")
	ErrEffortTooLarge   = errors.New("estimated effort cannot exceed 1000 hours")
	ErrDeadlineNotFound = errors.New("deadline not found")
)

// Deadline is a piece of coursework due on a calendar date.
type Deadline struct {
	domain.BaseAggregateRoot
	userID          uuid.UUID
	title           string
	dueDate         time.Time
	estimatedEffort int
	importance      value_objects.Importance
}

// NewDeadline validates the fields and raises DeadlineCreated.
func NewDeadline(userID uuid.UUID, title string, dueDate time.Time, effort int, importance value_objects.Importance) (*Deadline, error) {
	title, err := validateTitle(title)
	if err != nil {
		return nil, err
	}
	if dueDate.IsZero() {
		return nil, ErrMissingDueDate
	}
	if err := validateEffort(effort); err != nil {
		return nil, err
	}
	if !importance.IsValid() {
		return nil, value_objects.ErrInvalidImportance
	}

	d := &Deadline{
		BaseAggregateRoot: domain.NewBaseAggregateRoot(),
		userID:            userID,
		title:             title,
		dueDate:           dateOnly(dueDate),
		estimatedEffort:   effort,
		importance:        importance,
	}

	d.AddDomainEvent(NewDeadlineCreated(d))

	return d, nil
}

// Rehydrate rebuilds a deadline loaded from storage without raising events.
func Rehydrate(
	id, userID uuid.UUID,
	title string,
	dueDate time.Time,
	effort int,
	importance value_objects.Importance,
	createdAt, updatedAt time.Time,
	version int,
) *Deadline {
	return &Deadline{
		BaseAggregateRoot: domain.RehydrateBaseAggregateRoot(
			domain.RehydrateBaseEntity(id, createdAt, updatedAt), version,
		),
		userID:          userID,
		title:           title,
		dueDate:         dateOnly(dueDate),
		estimatedEffort: effort,
		importance:      importance,
	}
}

// Getters

func (d *Deadline) UserID() uuid.UUID                    { return d.userID }
func (d *Deadline) Title() string                        { return d.title }
func (d *Deadline) DueDate() time.Time                   { return d.dueDate }
func (d *Deadline) EstimatedEffort() int                 { return d.estimatedEffort }
func (d *Deadline) Importance() value_objects.Importance { return d.importance }

// IsOwnedBy reports whether userID owns the deadline.
func (d *Deadline) IsOwnedBy(userID uuid.UUID) bool {
	return d.userID == userID
}

// Changes is a partial update; nil fields are left alone.
type Changes struct {
	Title           *string
	DueDate         *time.Time
	EstimatedEffort *int
	Importance      *value_objects.Importance
}

// Apply validates and applies every set field, raising one DeadlineUpdated
// listing what actually changed. Nothing is applied when any field is invalid.
func (d *Deadline) Apply(c Changes) error {
	next := *d
	var fields []string

	if c.Title != nil {
		title, err := validateTitle(*c.Title)
		if err != nil {
			return err
		}
		if title != next.title {
			next.title = title
			fields = append(fields, "title")
		}
	}
	if c.DueDate != nil {
		if c.DueDate.IsZero() {
			return ErrMissingDueDate
		}
		due := dateOnly(*c.DueDate)
		if !due.Equal(next.dueDate) {
			next.dueDate = due
			fields = append(fields, "due_date")
		}
	}
	if c.EstimatedEffort != nil {
		if err := validateEffort(*c.EstimatedEffort); err != nil {
			return err
		}
		if *c.EstimatedEffort != next.estimatedEffort {
			next.estimatedEffort = *c.EstimatedEffort
			fields = append(fields, "estimated_effort")
		}
	}
	if c.Importance != nil {
		if !c.Importance.IsValid() {
			return value_objects.ErrInvalidImportance
		}
		if *c.Importance != next.importance {
			next.importance = *c.Importance
			fields = append(fields, "importance_level")
		}
	}

	if len(fields) == 0 {
		return nil
	}

	d.title = next.title
	d.dueDate = next.dueDate
	d.estimatedEffort = next.estimatedEffort
	d.importance = next.importance
	d.Touch()
	d.AddDomainEvent(NewDeadlineUpdated(d, fields))
	return nil
}

// MarkDeleted raises DeadlineDeleted; the repository removes the row.
func (d *Deadline) MarkDeleted() {
	d.AddDomainEvent(NewDeadlineDeleted(d))
}

func validateEffort(effort int) error {
	switch {
	case effort < 0:
		return ErrNegativeEffort
	case effort > MaxEstimatedEffort:
		return ErrEffortTooLarge
	}
	return nil
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrEmptyTitle
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return "", ErrTitleTooLong
	}
	return title, nil
}

func dateOnly(t time.Time) time.Time {
	y, m, day := t.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}
