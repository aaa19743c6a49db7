package services

import (
	"sort"
	"strings"
	"time"

	"github.com/felixgeelhaar/studyload/internal/workload/domain/value_objects"
)

// PriorityEngineConfig tunes how urgency, effort and importance combine.
type PriorityEngineConfig struct {
	UrgencyHorizonDays      int
	EffortMultiplier        int
	EffortCap               int
	ImportanceWeights       map[value_objects.Importance]int
	DefaultImportanceWeight int
}

// DefaultPriorityEngineConfig returns the canonical weights.
func DefaultPriorityEngineConfig() PriorityEngineConfig {
	return PriorityEngineConfig{
		UrgencyHorizonDays: 30,
		EffortMultiplier:   2,
		EffortCap:          20,
		ImportanceWeights: map[value_objects.Importance]int{
			value_objects.ImportanceLow:    5,
			value_objects.ImportanceMedium: 10,
			value_objects.ImportanceHigh:   20,
		},
		DefaultImportanceWeight: 10,
	}
}

// ScoredTask is a record with its score breakdown and rank.
type ScoredTask struct {
	Record       DeadlineRecord
	DaysUntilDue int
	DaysOverdue  int
	Urgency      int
	Effort       int
	Importance   int
	Score        int
	Rank         int
}

// PriorityResult is a ranked task with its reason attached.
type PriorityResult struct {
	ID              string
	Title           string
	Rank            int
	Score           int
	Reason          string
	EstimatedEffort int
	DueDate         time.Time
}

// PriorityEngine orders tasks by what to work on first.
type PriorityEngine struct {
	config PriorityEngineConfig
}

// NewPriorityEngine creates a new engine with the given configuration.
func NewPriorityEngine(cfg PriorityEngineConfig) *PriorityEngine {
	return &PriorityEngine{config: cfg}
}

// Score computes the breakdown for one record. Overdue tasks score as due
// today and keep how late they are in DaysOverdue.
func (e *PriorityEngine) Score(today time.Time, r DeadlineRecord) ScoredTask {
	days := DaysUntil(today, r.DueDate)
	t := ScoredTask{
		Record:       r,
		DaysUntilDue: max(days, 0),
		DaysOverdue:  max(-days, 0),
		Urgency:      urgencyScore(e.config.UrgencyHorizonDays, days),
		Effort:       cappedProduct(r.EstimatedEffort, e.config.EffortMultiplier, e.config.EffortCap),
		Importance:   importanceScore(e.config.ImportanceWeights, e.config.DefaultImportanceWeight, r.Importance),
	}
	t.Score = t.Urgency + t.Effort + t.Importance
	return t
}

// Rank scores every record and returns them highest first with dense ranks
// starting at 1. Equal scores keep their input order.
func (e *PriorityEngine) Rank(today time.Time, records []DeadlineRecord) []ScoredTask {
	ranked := make([]ScoredTask, len(records))
	for i, r := range records {
		ranked[i] = e.Score(today, r)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// AttachReasons pairs reason i with rank i+1. Every task needs a non-blank
// reason; otherwise the whole ranking is rejected with ErrMissingReasons.
// Extra reasons are ignored.
func AttachReasons(ranked []ScoredTask, reasons []string) ([]PriorityResult, error) {
	if len(reasons) < len(ranked) {
		return nil, ErrMissingReasons
	}

	results := make([]PriorityResult, len(ranked))
	for i, t := range ranked {
		reason := strings.TrimSpace(reasons[i])
		if reason == "" {
			return nil, ErrMissingReasons
		}
		results[i] = PriorityResult{
			ID:              t.Record.ID,
			Title:           t.Record.Title,
			Rank:            t.Rank,
			Score:           t.Score,
			Reason:          reason,
			EstimatedEffort: t.Record.EstimatedEffort,
			DueDate:         t.Record.DueDate,
		}
	}
	return results, nil
}
