package services

import (
	"math"
	"sort"
)

// RiskLevel is the coarse classification of a weekly score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// PeakDayNone is reported when no day carries any stress.
const PeakDayNone = "none"

const maxStress = 100

// StressEngineConfig holds the stress thresholds. Weights are percentages.
type StressEngineConfig struct {
	MaxDailyHours     float64
	HoursComponentCap int
	DeadlineIncrement int
	DeadlineCap       int
	TopThreeWeights   [3]int
	TopTwoWeights     [2]int
	RiskLowMax        int
	RiskMediumMax     int
}

// DefaultStressEngineConfig returns the canonical thresholds.
func DefaultStressEngineConfig() StressEngineConfig {
	return StressEngineConfig{
		MaxDailyHours:     12,
		HoursComponentCap: 60,
		DeadlineIncrement: 10,
		DeadlineCap:       40,
		TopThreeWeights:   [3]int{50, 30, 20},
		TopTwoWeights:     [2]int{60, 40},
		RiskLowMax:        35,
		RiskMediumMax:     65,
	}
}

// DailyStress carries both representations of a day's stress. Absolute is
// the 0..100 score; Share is the day's rounded percentage of the week.
type DailyStress struct {
	DayLabel string
	Bucket   DayBucket
	Absolute int
	Share    int
}

// StressReport is the outcome of one evaluation. WeeklyScore, Risk and
// PeakDay are derived from absolute values only.
type StressReport struct {
	Days        []DailyStress
	WeeklyScore int
	Risk        RiskLevel
	PeakDay     string
}

// StressEngine scores daily and weekly stress.
type StressEngine struct {
	config StressEngineConfig
}

// NewStressEngine creates a new engine with the given configuration.
func NewStressEngine(cfg StressEngineConfig) *StressEngine {
	if cfg.MaxDailyHours <= 0 {
		cfg.MaxDailyHours = DefaultStressEngineConfig().MaxDailyHours
	}
	return &StressEngine{config: cfg}
}

// DayStress scores one day from its hours and deadline count. A day with no
// hours and no deadlines always scores 0.
func (e *StressEngine) DayStress(hours, deadlines int) int {
	if hours <= 0 && deadlines <= 0 {
		return 0
	}

	hoursComponent := math.Min(
		float64(max(hours, 0))*float64(e.config.HoursComponentCap)/e.config.MaxDailyHours,
		float64(e.config.HoursComponentCap),
	)
	deadlineComponent := cappedProduct(deadlines, e.config.DeadlineIncrement, e.config.DeadlineCap)

	return min(int(math.Floor(hoursComponent))+deadlineComponent, maxStress)
}

// WeeklyScore weights the worst days of the week. The weighting depends on
// how many days carry stress: one day scores its own value, two days use
// TopTwoWeights, three or more use TopThreeWeights on the three highest.
// The input order does not matter.
func (e *StressEngine) WeeklyScore(values []int) int {
	sorted := make([]int, 0, len(values))
	for _, v := range values {
		if v > 0 {
			sorted = append(sorted, v)
		}
	}
	if len(sorted) == 0 {
		return 0
	}
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	var weighted int
	switch len(sorted) {
	case 1:
		weighted = sorted[0] * 100
	case 2:
		weighted = sorted[0]*e.config.TopTwoWeights[0] + sorted[1]*e.config.TopTwoWeights[1]
	default:
		for i, w := range e.config.TopThreeWeights {
			weighted += sorted[i] * w
		}
	}

	return min(weighted/100, maxStress)
}

// Risk classifies a weekly score. Both breakpoints are inclusive upper bounds.
func (e *StressEngine) Risk(score int) RiskLevel {
	switch {
	case score <= e.config.RiskLowMax:
		return RiskLow
	case score <= e.config.RiskMediumMax:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// PeakDay returns the label of the most stressful day. Ties go to the day
// that comes first in a Monday-first week. PeakDayNone means every day is 0.
func (e *StressEngine) PeakDay(days []DailyStress) string {
	peak := PeakDayNone
	best, bestIndex := 0, 0
	for _, d := range days {
		idx := WeekdayIndex(d.DayLabel)
		if d.Absolute > best || (d.Absolute == best && best > 0 && idx < bestIndex) {
			peak, best, bestIndex = d.DayLabel, d.Absolute, idx
		}
	}
	return peak
}

// Normalize turns absolute values into rounded percentages of their sum.
// A zero sum yields all zeros.
func (e *StressEngine) Normalize(values []int) []int {
	out := make([]int, len(values))
	var sum int
	for _, v := range values {
		sum += v
	}
	if sum == 0 {
		return out
	}
	for i, v := range values {
		out[i] = int(math.RoundToEven(float64(v) / float64(sum) * 100))
	}
	return out
}

// Evaluate scores a window of buckets. Absolute values are computed first
// and feed the weekly score, risk and peak day; the distribution is derived
// last and never feeds back into them.
func (e *StressEngine) Evaluate(buckets []DayBucket) StressReport {
	days := make([]DailyStress, len(buckets))
	absolute := make([]int, len(buckets))
	for i, b := range buckets {
		absolute[i] = e.DayStress(b.Hours, b.Deadlines)
		days[i] = DailyStress{DayLabel: b.DayLabel, Bucket: b, Absolute: absolute[i]}
	}

	score := e.WeeklyScore(absolute)
	report := StressReport{
		Days:        days,
		WeeklyScore: score,
		Risk:        e.Risk(score),
		PeakDay:     e.PeakDay(days),
	}

	for i, share := range e.Normalize(absolute) {
		report.Days[i].Share = share
	}

	return report
}
