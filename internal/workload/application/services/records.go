package services

import (
	"strconv"
	"time"

	"github.com/felixgeelhaar/studyload/internal/workload/domain/deadline"
	"github.com/felixgeelhaar/studyload/internal/workload/domain/value_objects"
)

// MaxEstimatedEffort bounds caller-supplied efforts the same way stored
// deadlines are bounded.
const MaxEstimatedEffort = deadline.MaxEstimatedEffort

// DeadlineRecord is the scoring view of a deadline. ID is an opaque task
// reference: stored deadlines use their uuid, caller-supplied lists may use
// anything.
type DeadlineRecord struct {
	ID              string
	Title           string
	DueDate         time.Time
	EstimatedEffort int
	Importance      value_objects.Importance
}

// Validate rejects records that cannot be scored. index locates the record in
// a caller-supplied list for the error message.
func (r DeadlineRecord) Validate(index int) error {
	field := func(name string) string {
		return "deadlines[" + strconv.Itoa(index) + "]." + name
	}
	if r.DueDate.IsZero() {
		return NewValidationError(field("due_date"), "is required")
	}
	if r.EstimatedEffort < 0 {
		return NewValidationError(field("estimated_effort"), "must not be negative")
	}
	if r.EstimatedEffort > MaxEstimatedEffort {
		return NewValidationError(field("estimated_effort"), "must not exceed "+strconv.Itoa(MaxEstimatedEffort))
	}
	return nil
}

// ValidateRecords validates every record in order.
func ValidateRecords(records []DeadlineRecord) error {
	for i, r := range records {
		if err := r.Validate(i); err != nil {
			return err
		}
	}
	return nil
}

// DateOf truncates t to its calendar date at UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysUntil counts whole calendar days from today to due, negative when due
// is in the past.
func DaysUntil(today, due time.Time) int {
	return int(DateOf(due).Sub(DateOf(today)).Hours() / 24)
}

// DayLabel is the three-letter English weekday, independent of locale.
func DayLabel(t time.Time) string {
	return t.Weekday().String()[:3]
}

var weekOrder = map[string]int{
	"Mon": 0, "Tue": 1, "Wed": 2, "Thu": 3, "Fri": 4, "Sat": 5, "Sun": 6,
}

// WeekdayIndex returns the Monday-first position of a day label, or -1.
func WeekdayIndex(label string) int {
	if i, ok := weekOrder[label]; ok {
		return i
	}
	return -1
}

// ScoringConfig bundles the configuration of every scoring component.
type ScoringConfig struct {
	Aggregator   AggregatorConfig
	Stress       StressEngineConfig
	Priority     PriorityEngineConfig
	Contribution ContributionConfig
}

// DefaultScoringConfig returns the canonical thresholds.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		Aggregator:   DefaultAggregatorConfig(),
		Stress:       DefaultStressEngineConfig(),
		Priority:     DefaultPriorityEngineConfig(),
		Contribution: DefaultContributionConfig(),
	}
}

// cappedProduct returns min(value*multiplier, limit) for a non-negative
// multiplier without overflowing. Negative values count as 0.
func cappedProduct(value, multiplier, limit int) int {
	if value <= 0 || multiplier <= 0 {
		return 0
	}
	if value > limit/multiplier {
		return limit
	}
	return min(value*multiplier, limit)
}

func urgencyScore(horizonDays, daysUntilDue int) int {
	if daysUntilDue < 0 {
		daysUntilDue = 0
	}
	return max(0, horizonDays-daysUntilDue)
}

func importanceScore(weights map[value_objects.Importance]int, fallback int, importance value_objects.Importance) int {
	if w, ok := weights[value_objects.NormalizeImportance(string(importance))]; ok {
		return w
	}
	return fallback
}
