package services

import "time"

// AggregatorConfig sizes the forward window.
type AggregatorConfig struct {
	WindowDays int
}

// DefaultAggregatorConfig returns a one-week window.
func DefaultAggregatorConfig() AggregatorConfig {
	return AggregatorConfig{WindowDays: 7}
}

// DayBucket is the load due on one calendar date.
type DayBucket struct {
	DayLabel  string
	Date      time.Time
	Deadlines int
	Hours     int
}

// WorkloadAggregator buckets deadlines by due date over a fixed window.
type WorkloadAggregator struct {
	config AggregatorConfig
}

// NewWorkloadAggregator creates an aggregator, defaulting to a 7 day window.
func NewWorkloadAggregator(cfg AggregatorConfig) *WorkloadAggregator {
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = DefaultAggregatorConfig().WindowDays
	}
	return &WorkloadAggregator{config: cfg}
}

// Window returns the first and last date of the window starting today.
// Callers fetch deadlines due in [start, end] inclusive.
func (a *WorkloadAggregator) Window(today time.Time) (start, end time.Time) {
	start = DateOf(today)
	return start, start.AddDate(0, 0, a.config.WindowDays-1)
}

// Aggregate returns one zero-filled bucket per date in the window with the
// records added to the bucket of their due date. Records are expected to be
// pre-filtered to the window; a record without a bucket is skipped.
func (a *WorkloadAggregator) Aggregate(today time.Time, records []DeadlineRecord) []DayBucket {
	start, _ := a.Window(today)

	buckets := make([]DayBucket, a.config.WindowDays)
	index := make(map[time.Time]int, a.config.WindowDays)
	for i := range buckets {
		date := start.AddDate(0, 0, i)
		buckets[i] = DayBucket{DayLabel: DayLabel(date), Date: date}
		index[date] = i
	}

	for _, r := range records {
		i, ok := index[DateOf(r.DueDate)]
		if !ok {
			continue
		}
		buckets[i].Deadlines++
		buckets[i].Hours += r.EstimatedEffort
	}

	return buckets
}

// Totals sums deadlines and hours across buckets.
func Totals(buckets []DayBucket) (deadlines, hours int) {
	for _, b := range buckets {
		deadlines += b.Deadlines
		hours += b.Hours
	}
	return deadlines, hours
}
