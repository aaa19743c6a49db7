package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/studyload/internal/workload/domain/value_objects"
)

func TestDefaultPriorityEngineConfig(t *testing.T) {
	cfg := DefaultPriorityEngineConfig()

	assert.Equal(t, 30, cfg.UrgencyHorizonDays)
	assert.Equal(t, 2, cfg.EffortMultiplier)
	assert.Equal(t, 20, cfg.EffortCap)
	assert.Equal(t, 5, cfg.ImportanceWeights[value_objects.ImportanceLow])
	assert.Equal(t, 10, cfg.ImportanceWeights[value_objects.ImportanceMedium])
	assert.Equal(t, 20, cfg.ImportanceWeights[value_objects.ImportanceHigh])
	assert.Equal(t, 10, cfg.DefaultImportanceWeight)
}

func TestPriorityEngine_Score(t *testing.T) {
	e := NewPriorityEngine(DefaultPriorityEngineConfig())

	tests := []struct {
		name     string
		record   DeadlineRecord
		urgency  int
		effort   int
		weight   int
		expected int
	}{
		{"due today", DeadlineRecord{DueDate: day(0), EstimatedEffort: 4, Importance: "high"}, 30, 8, 20, 58},
		{"due in ten days", DeadlineRecord{DueDate: day(10), EstimatedEffort: 15, Importance: "medium"}, 20, 20, 10, 50},
		{"overdue counts as today", DeadlineRecord{DueDate: day(-5), EstimatedEffort: 0, Importance: "low"}, 30, 0, 5, 35},
		{"beyond horizon", DeadlineRecord{DueDate: day(40), EstimatedEffort: 1, Importance: "URGENT"}, 0, 2, 10, 12},
		{"huge effort caps", DeadlineRecord{DueDate: day(10), EstimatedEffort: math.MaxInt, Importance: "medium"}, 20, 20, 10, 50},
		{"effort just past the cap boundary", DeadlineRecord{DueDate: day(10), EstimatedEffort: math.MaxInt/2 + 1, Importance: "medium"}, 20, 20, 10, 50},
		{"importance is case insensitive", DeadlineRecord{DueDate: day(30), EstimatedEffort: 0, Importance: "High"}, 0, 0, 20, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scored := e.Score(monday, tt.record)

			assert.Equal(t, tt.urgency, scored.Urgency)
			assert.Equal(t, tt.effort, scored.Effort)
			assert.Equal(t, tt.weight, scored.Importance)
			assert.Equal(t, tt.expected, scored.Score)
		})
	}
}

func TestPriorityEngine_Score_KeepsLateness(t *testing.T) {
	e := NewPriorityEngine(DefaultPriorityEngineConfig())

	late := e.Score(monday, DeadlineRecord{DueDate: day(-5)})
	assert.Zero(t, late.DaysUntilDue)
	assert.Equal(t, 5, late.DaysOverdue)

	soon := e.Score(monday, DeadlineRecord{DueDate: day(3)})
	assert.Equal(t, 3, soon.DaysUntilDue)
	assert.Zero(t, soon.DaysOverdue)
}

func TestPriorityEngine_Rank(t *testing.T) {
	e := NewPriorityEngine(DefaultPriorityEngineConfig())

	t.Run("orders by score with dense ranks", func(t *testing.T) {
		records := []DeadlineRecord{
			{ID: "d", Title: "Reading", DueDate: day(40), EstimatedEffort: 1, Importance: "low"},
			{ID: "b", Title: "Essay", DueDate: day(10), EstimatedEffort: 15, Importance: "medium"},
			{ID: "a", Title: "Exam", DueDate: day(0), EstimatedEffort: 4, Importance: "high"},
			{ID: "c", Title: "Lab", DueDate: day(-5), EstimatedEffort: 0, Importance: "low"},
		}

		ranked := e.Rank(monday, records)

		require.Len(t, ranked, 4)
		ids := make([]string, len(ranked))
		for i, r := range ranked {
			ids[i] = r.Record.ID
			assert.Equal(t, i+1, r.Rank)
		}
		assert.Equal(t, []string{"a", "b", "c", "d"}, ids)
	})

	t.Run("ties keep input order", func(t *testing.T) {
		records := []DeadlineRecord{
			{ID: "first", DueDate: day(3), EstimatedEffort: 2, Importance: "medium"},
			{ID: "second", DueDate: day(3), EstimatedEffort: 2, Importance: "medium"},
			{ID: "third", DueDate: day(3), EstimatedEffort: 2, Importance: "medium"},
		}

		ranked := e.Rank(monday, records)

		assert.Equal(t, "first", ranked[0].Record.ID)
		assert.Equal(t, "second", ranked[1].Record.ID)
		assert.Equal(t, "third", ranked[2].Record.ID)
		assert.Equal(t, []int{1, 2, 3}, []int{ranked[0].Rank, ranked[1].Rank, ranked[2].Rank})
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, e.Rank(monday, nil))
	})
}

func TestAttachReasons(t *testing.T) {
	e := NewPriorityEngine(DefaultPriorityEngineConfig())
	ranked := e.Rank(monday, []DeadlineRecord{
		{ID: "a", Title: "Exam", DueDate: day(0), EstimatedEffort: 4, Importance: "high"},
		{ID: "b", Title: "Essay", DueDate: day(10), EstimatedEffort: 15, Importance: "medium"},
	})

	t.Run("reason i goes to rank i+1", func(t *testing.T) {
		results, err := AttachReasons(ranked, []string{"Due today.", " Long essay. ", "ignored"})

		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "a", results[0].ID)
		assert.Equal(t, 1, results[0].Rank)
		assert.Equal(t, "Due today.", results[0].Reason)
		assert.Equal(t, "Long essay.", results[1].Reason)
		assert.Equal(t, 15, results[1].EstimatedEffort)
		assert.Equal(t, day(10), results[1].DueDate)
	})

	t.Run("too few reasons fails", func(t *testing.T) {
		_, err := AttachReasons(ranked, []string{"only one"})
		assert.ErrorIs(t, err, ErrMissingReasons)
	})

	t.Run("blank reason fails", func(t *testing.T) {
		_, err := AttachReasons(ranked, []string{"fine", "   "})
		assert.ErrorIs(t, err, ErrMissingReasons)
	})
}
