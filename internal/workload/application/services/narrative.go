package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/studyload/pkg/observability"
)

// FallbackStressExplanation replaces a stress explanation the generator
// could not produce.
const FallbackStressExplanation = "Your stress estimate is based on the hours and deadlines due each day this week. " +
	"A detailed explanation is not available right now."

// StressDayFact is one day of the week as the generator sees it.
type StressDayFact struct {
	Day       string `json:"day"`
	Hours     int    `json:"hours"`
	Deadlines int    `json:"deadlines"`
	Stress    int    `json:"stress"`
	Share     int    `json:"share"`
}

// StressFacts are the final results the generator explains. It must not
// derive or alter any of them.
type StressFacts struct {
	WeeklyScore int             `json:"weekly_stress_score"`
	RiskLevel   RiskLevel       `json:"risk_level"`
	PeakDay     string          `json:"peak_stress_day"`
	Days        []StressDayFact `json:"days"`
}

// PriorityFacts describes one ranked task.
type PriorityFacts struct {
	Rank            int    `json:"rank"`
	Title           string `json:"title"`
	DueDate         string `json:"due_date"`
	DaysUntilDue    int    `json:"days_until_due"`
	DaysOverdue     int    `json:"days_overdue,omitempty"`
	EstimatedEffort int    `json:"estimated_effort"`
	Importance      string `json:"importance_level"`
	Score           int    `json:"score"`
}

// NarrativeGenerator turns final facts into human-readable text. Its output
// is advisory only and is never read back as a number or tier.
type NarrativeGenerator interface {
	ExplainStress(ctx context.Context, facts StressFacts) (string, error)
	// ExplainPriorities returns one reason per fact, in rank order.
	ExplainPriorities(ctx context.Context, facts []PriorityFacts) ([]string, error)
}

// NewStressFacts copies a report into generator facts.
func NewStressFacts(report StressReport) StressFacts {
	facts := StressFacts{
		WeeklyScore: report.WeeklyScore,
		RiskLevel:   report.Risk,
		PeakDay:     report.PeakDay,
		Days:        make([]StressDayFact, len(report.Days)),
	}
	for i, d := range report.Days {
		facts.Days[i] = StressDayFact{
			Day:       d.DayLabel,
			Hours:     d.Bucket.Hours,
			Deadlines: d.Bucket.Deadlines,
			Stress:    d.Absolute,
			Share:     d.Share,
		}
	}
	return facts
}

// NewPriorityFacts copies ranked tasks into generator facts.
func NewPriorityFacts(ranked []ScoredTask) []PriorityFacts {
	facts := make([]PriorityFacts, len(ranked))
	for i, t := range ranked {
		facts[i] = PriorityFacts{
			Rank:            t.Rank,
			Title:           t.Record.Title,
			DueDate:         DateOf(t.Record.DueDate).Format(time.DateOnly),
			DaysUntilDue:    t.DaysUntilDue,
			DaysOverdue:     t.DaysOverdue,
			EstimatedEffort: t.Record.EstimatedEffort,
			Importance:      string(t.Record.Importance),
			Score:           t.Score,
		}
	}
	return facts
}

// Narrator applies the failure policy around a NarrativeGenerator: stress
// explanations degrade to FallbackStressExplanation, priority reasons fail
// the operation.
type Narrator struct {
	generator NarrativeGenerator
	logger    *slog.Logger
	metrics   observability.Metrics
}

// NewNarrator creates a narrator. A nil generator always falls back for
// stress and fails for priorities.
func NewNarrator(generator NarrativeGenerator, logger *slog.Logger) *Narrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Narrator{generator: generator, logger: logger, metrics: observability.NoopMetrics{}}
}

// WithMetrics counts stress fallbacks on m.
func (n *Narrator) WithMetrics(m observability.Metrics) *Narrator {
	if m != nil {
		n.metrics = m
	}
	return n
}

// ExplainStress never fails.
func (n *Narrator) ExplainStress(ctx context.Context, report StressReport) string {
	if n.generator == nil {
		n.metrics.Counter(observability.MetricNarrativeFallback, 1, observability.T("reason", "disabled"))
		return FallbackStressExplanation
	}
	text, err := n.generator.ExplainStress(ctx, NewStressFacts(report))
	if err != nil || text == "" {
		n.logger.WarnContext(ctx, "stress explanation unavailable, using fallback", observability.ErrorKey, err)
		n.metrics.Counter(observability.MetricNarrativeFallback, 1, observability.T("reason", "generator"))
		return FallbackStressExplanation
	}
	return text
}

// ExplainPriorities attaches a reason to every ranked task or returns an
// error wrapping ErrUpstreamGenerator.
func (n *Narrator) ExplainPriorities(ctx context.Context, ranked []ScoredTask) ([]PriorityResult, error) {
	if len(ranked) == 0 {
		return []PriorityResult{}, nil
	}
	if n.generator == nil {
		return nil, fmt.Errorf("%w: no generator configured", ErrUpstreamGenerator)
	}

	reasons, err := n.generator.ExplainPriorities(ctx, NewPriorityFacts(ranked))
	if err != nil {
		if errors.Is(err, ErrUpstreamGenerator) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrUpstreamGenerator, err)
	}

	results, err := AttachReasons(ranked, reasons)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamGenerator, err)
	}
	return results, nil
}
