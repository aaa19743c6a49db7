package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStressEngine() *StressEngine {
	return NewStressEngine(DefaultStressEngineConfig())
}

func TestStressEngine_DayStress(t *testing.T) {
	e := newStressEngine()

	tests := []struct {
		name      string
		hours     int
		deadlines int
		expected  int
	}{
		{"no load", 0, 0, 0},
		{"worked example", 8, 2, 60},
		{"hours only", 7, 0, 35},
		{"hours saturate", 24, 0, 60},
		{"deadlines only", 0, 2, 20},
		{"deadlines saturate", 0, 9, 40},
		{"one hour and one deadline", 1, 1, 15},
		{"both saturate", 12, 4, 100},
		{"capped", 30, 30, 100},
		{"huge deadline count", 0, math.MaxInt, 40},
		{"huge deadline count with hours", 6, 1 << 40, 70},
		{"huge hours", math.MaxInt, 0, 60},
		{"huge both", math.MaxInt, math.MaxInt, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, e.DayStress(tt.hours, tt.deadlines))
		})
	}
}

func TestStressEngine_DayStress_Monotonic(t *testing.T) {
	e := newStressEngine()

	for deadlines := 0; deadlines <= 6; deadlines++ {
		prev := 0
		for hours := 0; hours <= 20; hours++ {
			v := e.DayStress(hours, deadlines)
			assert.GreaterOrEqual(t, v, prev)
			assert.LessOrEqual(t, v, 100)
			if hours > 0 {
				assert.GreaterOrEqual(t, v, e.DayStress(hours, max(deadlines-1, 0)))
			}
			prev = v
		}
	}
}

func TestStressEngine_DayStress_LargeInputsStayMonotonic(t *testing.T) {
	e := newStressEngine()
	counts := []int{0, 1, 4, 5, 1000, 1 << 31, 1 << 62, math.MaxInt}

	prev := 0
	for _, deadlines := range counts {
		v := e.DayStress(0, deadlines)
		assert.GreaterOrEqual(t, v, prev)
		assert.LessOrEqual(t, v, 40)
		prev = v
	}
}

func TestStressEngine_DayStress_CustomMaxHours(t *testing.T) {
	cfg := DefaultStressEngineConfig()
	cfg.MaxDailyHours = 8
	e := NewStressEngine(cfg)

	assert.Equal(t, 60, e.DayStress(8, 0))
	assert.Equal(t, 30, e.DayStress(4, 0))
	assert.Equal(t, 22, e.DayStress(3, 0), "22.5 floors to 22")
}

func TestStressEngine_WeeklyScore(t *testing.T) {
	e := newStressEngine()

	tests := []struct {
		name     string
		values   []int
		expected int
	}{
		{"empty week", []int{0, 0, 0, 0, 0, 0, 0}, 0},
		{"single day scores its value", []int{60, 0, 0, 0, 0, 0, 0}, 60},
		{"two days weighted 60/40", []int{0, 40, 0, 60, 0, 0, 0}, 52},
		{"top three weighted 50/30/20", []int{10, 90, 30, 50, 0, 0, 0}, 66},
		{"equal days", []int{33, 33, 33, 0, 0, 0, 0}, 33},
		{"capped", []int{100, 100, 100, 100, 100, 100, 100}, 100},
		{"nil input", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, e.WeeklyScore(tt.values))
		})
	}
}

func TestStressEngine_WeeklyScore_PermutationInvariant(t *testing.T) {
	e := newStressEngine()
	base := []int{15, 0, 72, 40, 0, 55, 8}
	want := e.WeeklyScore(base)

	permutations := [][]int{
		{0, 0, 8, 15, 40, 55, 72},
		{72, 55, 40, 15, 8, 0, 0},
		{40, 8, 0, 72, 15, 0, 55},
	}
	for _, p := range permutations {
		assert.Equal(t, want, e.WeeklyScore(p))
	}
	assert.Equal(t, []int{15, 0, 72, 40, 0, 55, 8}, base, "input must not be reordered")
}

func TestStressEngine_Risk(t *testing.T) {
	e := newStressEngine()

	assert.Equal(t, RiskLow, e.Risk(0))
	assert.Equal(t, RiskLow, e.Risk(35))
	assert.Equal(t, RiskMedium, e.Risk(36))
	assert.Equal(t, RiskMedium, e.Risk(65))
	assert.Equal(t, RiskHigh, e.Risk(66))
	assert.Equal(t, RiskHigh, e.Risk(100))
}

func TestStressEngine_Risk_StepFunction(t *testing.T) {
	e := newStressEngine()
	order := map[RiskLevel]int{RiskLow: 0, RiskMedium: 1, RiskHigh: 2}

	changes := 0
	prev := e.Risk(0)
	for score := 1; score <= 100; score++ {
		current := e.Risk(score)
		require.GreaterOrEqual(t, order[current], order[prev])
		if current != prev {
			changes++
		}
		prev = current
	}
	assert.Equal(t, 2, changes)
}

func TestStressEngine_PeakDay(t *testing.T) {
	e := newStressEngine()

	t.Run("highest day wins", func(t *testing.T) {
		days := []DailyStress{
			{DayLabel: "Wed", Absolute: 20},
			{DayLabel: "Thu", Absolute: 70},
			{DayLabel: "Fri", Absolute: 10},
		}
		assert.Equal(t, "Thu", e.PeakDay(days))
	})

	t.Run("ties go to the earliest weekday", func(t *testing.T) {
		days := []DailyStress{
			{DayLabel: "Fri", Absolute: 50},
			{DayLabel: "Sat", Absolute: 10},
			{DayLabel: "Sun", Absolute: 0},
			{DayLabel: "Mon", Absolute: 50},
			{DayLabel: "Tue", Absolute: 50},
		}
		assert.Equal(t, "Mon", e.PeakDay(days))
	})

	t.Run("empty week has no peak", func(t *testing.T) {
		days := []DailyStress{{DayLabel: "Mon"}, {DayLabel: "Tue"}}
		assert.Equal(t, PeakDayNone, e.PeakDay(days))
		assert.Equal(t, PeakDayNone, e.PeakDay(nil))
	})
}

func TestStressEngine_Normalize(t *testing.T) {
	e := newStressEngine()

	assert.Equal(t, []int{0, 0, 0, 0, 0, 0, 0}, e.Normalize([]int{0, 0, 0, 0, 0, 0, 0}))
	assert.Equal(t, []int{100, 0, 0, 0, 0, 0, 0}, e.Normalize([]int{60, 0, 0, 0, 0, 0, 0}))
	assert.Equal(t, []int{33, 67}, e.Normalize([]int{1, 2}))
	assert.Equal(t, []int{12, 88}, e.Normalize([]int{1, 7}), "halves round to even")
}

func TestStressEngine_Normalize_SumsToHundred(t *testing.T) {
	e := newStressEngine()
	series := [][]int{
		{1, 1, 1, 0, 0, 0, 0},
		{15, 0, 72, 40, 0, 55, 8},
		{100, 100, 100, 100, 100, 100, 100},
		{3, 5, 7, 11, 13, 17, 19},
	}

	for _, values := range series {
		var sum int
		for _, v := range e.Normalize(values) {
			sum += v
		}
		assert.InDelta(t, 100, sum, float64(len(values)-1))
	}
}

func TestStressEngine_Evaluate(t *testing.T) {
	e := newStressEngine()
	labels := []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

	t.Run("huge deadline count keeps its share", func(t *testing.T) {
		buckets := make([]DayBucket, 7)
		for i := range buckets {
			buckets[i] = DayBucket{DayLabel: labels[i], Date: day(i)}
		}
		buckets[0].Deadlines = math.MaxInt
		buckets[1].Hours = 8
		buckets[1].Deadlines = 2

		report := e.Evaluate(buckets)

		assert.Equal(t, 40, report.Days[0].Absolute)
		assert.Equal(t, 60, report.Days[1].Absolute)
		assert.Equal(t, 40, report.Days[0].Share)
		assert.Equal(t, 60, report.Days[1].Share)
		assert.Equal(t, "Tue", report.PeakDay)
	})

	t.Run("single loaded day", func(t *testing.T) {
		buckets := make([]DayBucket, 7)
		for i := range buckets {
			buckets[i] = DayBucket{DayLabel: labels[i], Date: day(i)}
		}
		buckets[0].Hours = 8
		buckets[0].Deadlines = 2

		report := e.Evaluate(buckets)

		require.Len(t, report.Days, 7)
		assert.Equal(t, 60, report.Days[0].Absolute)
		assert.Equal(t, 100, report.Days[0].Share)
		for _, d := range report.Days[1:] {
			assert.Zero(t, d.Absolute)
			assert.Zero(t, d.Share)
		}
		assert.Equal(t, 60, report.WeeklyScore)
		assert.Equal(t, RiskMedium, report.Risk)
		assert.Equal(t, "Mon", report.PeakDay)
	})

	t.Run("score comes from absolute values not shares", func(t *testing.T) {
		buckets := make([]DayBucket, 7)
		for i := range buckets {
			buckets[i] = DayBucket{DayLabel: labels[i], Hours: 2, Deadlines: 1}
		}

		report := e.Evaluate(buckets)

		// every day scores 10+10=20 absolute but only a 14% share
		assert.Equal(t, 20, report.Days[3].Absolute)
		assert.Equal(t, 14, report.Days[3].Share)
		assert.Equal(t, 20, report.WeeklyScore)
		assert.Equal(t, RiskLow, report.Risk)
		assert.Equal(t, "Mon", report.PeakDay)
	})

	t.Run("empty week", func(t *testing.T) {
		buckets := make([]DayBucket, 7)
		for i := range buckets {
			buckets[i] = DayBucket{DayLabel: labels[i]}
		}

		report := e.Evaluate(buckets)

		assert.Equal(t, 0, report.WeeklyScore)
		assert.Equal(t, RiskLow, report.Risk)
		assert.Equal(t, PeakDayNone, report.PeakDay)
		for _, d := range report.Days {
			assert.Zero(t, d.Share)
		}
	})
}
