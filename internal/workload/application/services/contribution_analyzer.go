package services

import (
	"math"
	"sort"
	"time"

	"github.com/felixgeelhaar/studyload/internal/workload/domain/value_objects"
)

// ContributionConfig weights a deadline's share of total stress.
type ContributionConfig struct {
	UrgencyHorizonDays      int
	EffortMultiplier        int
	EffortCap               int
	ImportanceWeights       map[value_objects.Importance]int
	DefaultImportanceWeight int
}

// DefaultContributionConfig returns the canonical weights.
func DefaultContributionConfig() ContributionConfig {
	return ContributionConfig{
		UrgencyHorizonDays: 30,
		EffortMultiplier:   3,
		EffortCap:          40,
		ImportanceWeights: map[value_objects.Importance]int{
			value_objects.ImportanceLow:    10,
			value_objects.ImportanceMedium: 20,
			value_objects.ImportanceHigh:   30,
		},
		DefaultImportanceWeight: 20,
	}
}

// Contribution is one deadline's rounded percentage of the total.
type Contribution struct {
	ID         string
	Title      string
	Percentage int
	DueDate    time.Time
}

// ContributionReport lists contributors highest first.
type ContributionReport struct {
	Contributors    []Contribution
	MaxContribution int
}

// ContributionAnalyzer splits total stress across deadlines.
type ContributionAnalyzer struct {
	config ContributionConfig
}

// NewContributionAnalyzer creates an analyzer with the given configuration.
func NewContributionAnalyzer(cfg ContributionConfig) *ContributionAnalyzer {
	return &ContributionAnalyzer{config: cfg}
}

// RawScore is the unnormalized stress of one deadline.
func (a *ContributionAnalyzer) RawScore(today time.Time, r DeadlineRecord) int {
	urgency := urgencyScore(a.config.UrgencyHorizonDays, DaysUntil(today, r.DueDate))
	effort := cappedProduct(r.EstimatedEffort, a.config.EffortMultiplier, a.config.EffortCap)
	importance := importanceScore(a.config.ImportanceWeights, a.config.DefaultImportanceWeight, r.Importance)
	return urgency + effort + importance
}

// Analyze returns each record's share of the summed raw scores. A zero total
// yields no contributors and a max of 0.
func (a *ContributionAnalyzer) Analyze(today time.Time, records []DeadlineRecord) ContributionReport {
	scores := make([]int, len(records))
	var total int
	for i, r := range records {
		scores[i] = a.RawScore(today, r)
		total += scores[i]
	}

	report := ContributionReport{Contributors: []Contribution{}}
	if total == 0 {
		return report
	}

	for i, r := range records {
		report.Contributors = append(report.Contributors, Contribution{
			ID:         r.ID,
			Title:      r.Title,
			Percentage: int(math.RoundToEven(float64(scores[i]) / float64(total) * 100)),
			DueDate:    r.DueDate,
		})
	}

	sort.SliceStable(report.Contributors, func(i, j int) bool {
		return report.Contributors[i].Percentage > report.Contributors[j].Percentage
	})

	for _, c := range report.Contributors {
		report.MaxContribution = max(report.MaxContribution, c.Percentage)
	}
	return report
}
