package queries

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/studyload/internal/shared/infrastructure/cache"
	"github.com/felixgeelhaar/studyload/internal/workload/application/services"
	"github.com/felixgeelhaar/studyload/internal/workload/domain/deadline"
	"github.com/felixgeelhaar/studyload/internal/workload/domain/value_objects"
	"github.com/felixgeelhaar/studyload/pkg/observability"
)

// monday is 2025-03-10.
var monday = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

type memoryDeadlines struct {
	items        []*deadline.Deadline
	dueBetween   int
	findByUserID int
	err          error
}

func (m *memoryDeadlines) Save(context.Context, *deadline.Deadline) error { return nil }

func (m *memoryDeadlines) FindByID(_ context.Context, id uuid.UUID) (*deadline.Deadline, error) {
	for _, d := range m.items {
		if d.ID() == id {
			return d, nil
		}
	}
	return nil, deadline.ErrDeadlineNotFound
}

func (m *memoryDeadlines) FindByUserID(_ context.Context, userID uuid.UUID) ([]*deadline.Deadline, error) {
	m.findByUserID++
	if m.err != nil {
		return nil, m.err
	}
	var out []*deadline.Deadline
	for _, d := range m.items {
		if d.IsOwnedBy(userID) {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].DueDate().Equal(out[j].DueDate()) {
			return out[i].DueDate().Before(out[j].DueDate())
		}
		return out[i].Title() < out[j].Title()
	})
	return out, nil
}

func (m *memoryDeadlines) FindDueBetween(_ context.Context, userID uuid.UUID, start, end time.Time) ([]*deadline.Deadline, error) {
	m.dueBetween++
	if m.err != nil {
		return nil, m.err
	}
	var out []*deadline.Deadline
	for _, d := range m.items {
		if d.IsOwnedBy(userID) && !d.DueDate().Before(start) && !d.DueDate().After(end) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memoryDeadlines) Delete(context.Context, uuid.UUID) error { return nil }

func (m *memoryDeadlines) add(owner uuid.UUID, title string, due time.Time, effort int, importance value_objects.Importance) *deadline.Deadline {
	d := deadline.Rehydrate(uuid.New(), owner, title, due, effort, importance, monday, monday, 1)
	m.items = append(m.items, d)
	return d
}

func date(day int) time.Time {
	return time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC)
}

type stubGenerator struct {
	stress    string
	stressErr error
	reasons   []string
	reasonErr error
}

func (s stubGenerator) ExplainStress(context.Context, services.StressFacts) (string, error) {
	return s.stress, s.stressErr
}

func (s stubGenerator) ExplainPriorities(context.Context, []services.PriorityFacts) ([]string, error) {
	return s.reasons, s.reasonErr
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func TestListDeadlinesHandler(t *testing.T) {
	owner := uuid.New()
	repo := &memoryDeadlines{}
	repo.add(owner, "Exam prep", date(14), 6, value_objects.ImportanceHigh)
	repo.add(owner, "Essay", date(12), 3, value_objects.ImportanceMedium)
	repo.add(uuid.New(), "Someone else", date(11), 1, value_objects.ImportanceLow)

	c := cache.NewMemoryCache()
	handler := NewListDeadlinesHandler(repo, c, time.Minute, nil)

	first, err := handler.Handle(context.Background(), ListDeadlinesQuery{UserID: owner})
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "Essay", first[0].Title)
	assert.Equal(t, "2025-03-12", first[0].DueDate)
	assert.Equal(t, "medium", first[0].Importance)

	second, err := handler.Handle(context.Background(), ListDeadlinesQuery{UserID: owner})
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.findByUserID, "second read is served from cache")

	require.NoError(t, cache.NewInvalidator(c, nil, nil).DeadlinesChanged(context.Background(), owner))
	_, err = handler.Handle(context.Background(), ListDeadlinesQuery{UserID: owner})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.findByUserID)
}

func TestListDeadlinesHandler_EmptyIsNotNil(t *testing.T) {
	handler := NewListDeadlinesHandler(&memoryDeadlines{}, nil, 0, nil)

	got, err := handler.Handle(context.Background(), ListDeadlinesQuery{UserID: uuid.New()})

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGetDeadlineHandler(t *testing.T) {
	owner := uuid.New()
	repo := &memoryDeadlines{}
	d := repo.add(owner, "Essay", date(12), 3, value_objects.ImportanceMedium)
	handler := NewGetDeadlineHandler(repo)

	got, err := handler.Handle(context.Background(), GetDeadlineQuery{UserID: owner, DeadlineID: d.ID()})
	require.NoError(t, err)
	assert.Equal(t, d.ID(), got.ID)

	_, err = handler.Handle(context.Background(), GetDeadlineQuery{UserID: uuid.New(), DeadlineID: d.ID()})
	assert.ErrorIs(t, err, deadline.ErrDeadlineNotFound)
}

func TestWorkloadLoader(t *testing.T) {
	owner := uuid.New()
	repo := &memoryDeadlines{}
	repo.add(owner, "Quiz", date(10), 4, value_objects.ImportanceLow)
	repo.add(owner, "Essay", date(12), 2, value_objects.ImportanceMedium)
	repo.add(owner, "Lab report", date(12), 3, value_objects.ImportanceHigh)
	repo.add(owner, "Next week", date(17), 8, value_objects.ImportanceHigh)

	now := monday
	metrics := observability.NewInMemoryMetrics()
	loader := NewWorkloadLoader(LoaderConfig{
		Deadlines: repo,
		Cache:     cache.NewMemoryCache(),
		Clock:     func() time.Time { return now },
		Metrics:   metrics,
	})

	t.Run("aggregates a zero-filled week", func(t *testing.T) {
		got, err := loader.Load(context.Background(), owner)
		require.NoError(t, err)

		assert.Equal(t, 3, got.UpcomingDeadlines)
		assert.Equal(t, 9, got.TotalHours)
		assert.Equal(t, "2025-03-10", got.WindowStart)
		require.Len(t, got.WeeklyLoad, 7)
		assert.Equal(t, WeeklyLoadDay{Day: "Mon", Date: "2025-03-10", Deadlines: 1, Hours: 4}, got.WeeklyLoad[0])
		assert.Equal(t, WeeklyLoadDay{Day: "Tue", Date: "2025-03-11"}, got.WeeklyLoad[1])
		assert.Equal(t, WeeklyLoadDay{Day: "Wed", Date: "2025-03-12", Deadlines: 2, Hours: 5}, got.WeeklyLoad[2])
		assert.Equal(t, "Sun", got.WeeklyLoad[6].Day)
	})

	t.Run("serves the same day from cache", func(t *testing.T) {
		_, err := loader.Load(context.Background(), owner)
		require.NoError(t, err)

		assert.Equal(t, 1, repo.dueBetween)
		assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricDashboardCache, observability.T("result", "hit")))
		assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricDashboardCache, observability.T("result", "miss")))
	})

	t.Run("recomputes after midnight", func(t *testing.T) {
		now = monday.AddDate(0, 0, 1)

		got, err := loader.Load(context.Background(), owner)
		require.NoError(t, err)

		assert.Equal(t, 2, repo.dueBetween)
		assert.Equal(t, "Tue", got.WeeklyLoad[0].Day)
		assert.Equal(t, 3, got.UpcomingDeadlines, "the 17th enters the window")
		assert.Equal(t, 13, got.TotalHours)
	})

	t.Run("store errors surface", func(t *testing.T) {
		failing := NewWorkloadLoader(LoaderConfig{Deadlines: &memoryDeadlines{err: errors.New("db down")}})

		_, err := failing.Load(context.Background(), owner)

		assert.EqualError(t, err, "db down")
	})
}

func TestDashboardDTO_Buckets(t *testing.T) {
	dto := newDashboardDTO(date(10), []services.DayBucket{{DayLabel: "Mon", Date: date(10), Deadlines: 2, Hours: 5}})

	buckets := dto.Buckets()

	require.Len(t, buckets, 1)
	assert.Equal(t, services.DayBucket{DayLabel: "Mon", Date: date(10), Deadlines: 2, Hours: 5}, buckets[0])
}

func weekInput() []WeeklyLoadInput {
	return []WeeklyLoadInput{
		{Day: "Mon", Hours: 6, Deadlines: 1},
		{Day: "Tue", Hours: 12, Deadlines: 2},
		{Day: "Wed"}, {Day: "Thu"}, {Day: "Fri"}, {Day: "Sat"}, {Day: "Sun"},
	}
}

func newStressHandler(repo deadline.Repository, gen services.NarrativeGenerator) *PredictStressHandler {
	loader := NewWorkloadLoader(LoaderConfig{Deadlines: repo, Clock: fixedClock(monday)})
	return NewPredictStressHandler(loader,
		services.NewStressEngine(services.DefaultStressEngineConfig()),
		services.NewNarrator(gen, nil),
	)
}

func TestPredictStressHandler(t *testing.T) {
	t.Run("scores a caller-supplied week", func(t *testing.T) {
		handler := newStressHandler(&memoryDeadlines{}, stubGenerator{stress: "Tuesday is the crunch."})

		got, err := handler.Handle(context.Background(), PredictStressQuery{WeeklyLoad: weekInput()})
		require.NoError(t, err)

		assert.Equal(t, 64, got.WeeklyStressScore)
		assert.Equal(t, "medium", got.RiskLevel)
		assert.Equal(t, "Tue", got.PeakStressDay)
		assert.Equal(t, "Tuesday is the crunch.", got.Explanation)
		require.Len(t, got.DailyStress, 7)
		assert.Equal(t, DailyStressDTO{Day: "Mon", StressLevel: 33, AbsoluteStress: 40, Hours: 6, Deadlines: 1}, got.DailyStress[0])
		assert.Equal(t, DailyStressDTO{Day: "Tue", StressLevel: 67, AbsoluteStress: 80, Hours: 12, Deadlines: 2}, got.DailyStress[1])
	})

	t.Run("falls back when the generator fails", func(t *testing.T) {
		handler := newStressHandler(&memoryDeadlines{}, stubGenerator{stressErr: errors.New("timeout")})

		got, err := handler.Handle(context.Background(), PredictStressQuery{WeeklyLoad: weekInput()})

		require.NoError(t, err)
		assert.Equal(t, services.FallbackStressExplanation, got.Explanation)
		assert.Equal(t, 64, got.WeeklyStressScore)
	})

	t.Run("uses the stored week", func(t *testing.T) {
		owner := uuid.New()
		repo := &memoryDeadlines{}
		repo.add(owner, "Quiz", date(10), 6, value_objects.ImportanceLow)
		handler := newStressHandler(repo, nil)

		got, err := handler.Handle(context.Background(), PredictStressQuery{UserID: owner})
		require.NoError(t, err)

		assert.Equal(t, 40, got.WeeklyStressScore)
		assert.Equal(t, "medium", got.RiskLevel)
		assert.Equal(t, "Mon", got.PeakStressDay)
		assert.Equal(t, 100, got.DailyStress[0].StressLevel)
	})

	t.Run("an empty week is calm", func(t *testing.T) {
		handler := newStressHandler(&memoryDeadlines{}, nil)

		got, err := handler.Handle(context.Background(), PredictStressQuery{UserID: uuid.New()})
		require.NoError(t, err)

		assert.Zero(t, got.WeeklyStressScore)
		assert.Equal(t, "low", got.RiskLevel)
		assert.Equal(t, services.PeakDayNone, got.PeakStressDay)
		for _, d := range got.DailyStress {
			assert.Zero(t, d.StressLevel)
		}
	})

	t.Run("rejects malformed weeks", func(t *testing.T) {
		handler := newStressHandler(&memoryDeadlines{}, nil)
		tests := map[string]func([]WeeklyLoadInput) []WeeklyLoadInput{
			"too short":      func(w []WeeklyLoadInput) []WeeklyLoadInput { return w[:6] },
			"unknown label":  func(w []WeeklyLoadInput) []WeeklyLoadInput { w[2].Day = "Wednesday"; return w },
			"repeated label": func(w []WeeklyLoadInput) []WeeklyLoadInput { w[2].Day = "Mon"; return w },
			"negative hours": func(w []WeeklyLoadInput) []WeeklyLoadInput { w[3].Hours = -1; return w },
			"negative count": func(w []WeeklyLoadInput) []WeeklyLoadInput { w[4].Deadlines = -2; return w },
			"hours above bound": func(w []WeeklyLoadInput) []WeeklyLoadInput {
				w[5].Hours = MaxDayHours + 1
				return w
			},
			"count above bound": func(w []WeeklyLoadInput) []WeeklyLoadInput {
				w[6].Deadlines = 1 << 62
				return w
			},
		}
		for name, mutate := range tests {
			t.Run(name, func(t *testing.T) {
				_, err := handler.Handle(context.Background(), PredictStressQuery{WeeklyLoad: mutate(weekInput())})

				var verr *services.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.ErrorIs(t, err, services.ErrInvalidInput)
			})
		}
	})
}

func priorityInputs() []DeadlineInput {
	return []DeadlineInput{
		{ID: "b", Title: "Reading", DueDate: date(20), EstimatedEffort: 10, Importance: "LOW"},
		{ID: "a", Title: "Essay", DueDate: date(12), EstimatedEffort: 3, Importance: "high"},
	}
}

func TestRankPrioritiesHandler(t *testing.T) {
	engine := services.NewPriorityEngine(services.DefaultPriorityEngineConfig())

	t.Run("ranks and attaches reasons", func(t *testing.T) {
		gen := stubGenerator{reasons: []string{"Due in two days.", "Long but not urgent."}}
		handler := NewRankPrioritiesHandler(&memoryDeadlines{}, engine, services.NewNarrator(gen, nil), fixedClock(monday))

		got, err := handler.Handle(context.Background(), RankPrioritiesQuery{Deadlines: priorityInputs()})
		require.NoError(t, err)

		require.Len(t, got, 2)
		assert.Equal(t, PriorityDTO{ID: "a", Title: "Essay", Rank: 1, Score: 54, Reason: "Due in two days.", EstimatedEffort: 3, DueDate: "2025-03-12"}, got[0])
		assert.Equal(t, 2, got[1].Rank)
		assert.Equal(t, 45, got[1].Score)
	})

	t.Run("generator failure fails the query", func(t *testing.T) {
		gen := stubGenerator{reasonErr: errors.New("connection refused")}
		handler := NewRankPrioritiesHandler(&memoryDeadlines{}, engine, services.NewNarrator(gen, nil), fixedClock(monday))

		_, err := handler.Handle(context.Background(), RankPrioritiesQuery{Deadlines: priorityInputs()})

		assert.ErrorIs(t, err, services.ErrUpstreamGenerator)
	})

	t.Run("too few reasons fail the query", func(t *testing.T) {
		gen := stubGenerator{reasons: []string{"only one"}}
		handler := NewRankPrioritiesHandler(&memoryDeadlines{}, engine, services.NewNarrator(gen, nil), fixedClock(monday))

		_, err := handler.Handle(context.Background(), RankPrioritiesQuery{Deadlines: priorityInputs()})

		assert.ErrorIs(t, err, services.ErrUpstreamGenerator)
		assert.ErrorIs(t, err, services.ErrMissingReasons)
	})

	t.Run("empty input needs no generator", func(t *testing.T) {
		handler := NewRankPrioritiesHandler(&memoryDeadlines{}, engine, services.NewNarrator(nil, nil), fixedClock(monday))

		got, err := handler.Handle(context.Background(), RankPrioritiesQuery{UserID: uuid.New()})

		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("rejects negative effort", func(t *testing.T) {
		handler := NewRankPrioritiesHandler(&memoryDeadlines{}, engine, services.NewNarrator(nil, nil), fixedClock(monday))
		inputs := priorityInputs()
		inputs[1].EstimatedEffort = -3

		_, err := handler.Handle(context.Background(), RankPrioritiesQuery{Deadlines: inputs})

		assert.ErrorIs(t, err, services.ErrInvalidInput)
		assert.ErrorContains(t, err, "deadlines[1].estimated_effort")
	})

	t.Run("rejects effort above the bound", func(t *testing.T) {
		handler := NewRankPrioritiesHandler(&memoryDeadlines{}, engine, services.NewNarrator(nil, nil), fixedClock(monday))
		inputs := priorityInputs()
		inputs[0].EstimatedEffort = services.MaxEstimatedEffort + 1

		_, err := handler.Handle(context.Background(), RankPrioritiesQuery{Deadlines: inputs})

		var verr *services.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "deadlines[0].estimated_effort", verr.Field)
	})
}

func TestStressContributorsHandler(t *testing.T) {
	analyzer := services.NewContributionAnalyzer(services.DefaultContributionConfig())

	t.Run("splits the total", func(t *testing.T) {
		handler := NewStressContributorsHandler(&memoryDeadlines{}, analyzer, fixedClock(monday))

		got, err := handler.Handle(context.Background(), StressContributorsQuery{Deadlines: priorityInputs()})
		require.NoError(t, err)

		require.Len(t, got.Contributors, 2)
		assert.Equal(t, ContributorDTO{ID: "a", Title: "Essay", Contribution: 53, DueDate: "2025-03-12"}, got.Contributors[0])
		assert.Equal(t, 47, got.Contributors[1].Contribution)
		assert.Equal(t, 53, got.MaxContribution)
	})

	t.Run("stored deadlines", func(t *testing.T) {
		owner := uuid.New()
		repo := &memoryDeadlines{}
		d := repo.add(owner, "Only one", date(11), 2, value_objects.ImportanceMedium)
		handler := NewStressContributorsHandler(repo, analyzer, fixedClock(monday))

		got, err := handler.Handle(context.Background(), StressContributorsQuery{UserID: owner})
		require.NoError(t, err)

		require.Len(t, got.Contributors, 1)
		assert.Equal(t, d.ID().String(), got.Contributors[0].ID)
		assert.Equal(t, 100, got.MaxContribution)
	})

	t.Run("rejects effort above the bound", func(t *testing.T) {
		handler := NewStressContributorsHandler(&memoryDeadlines{}, analyzer, fixedClock(monday))
		inputs := priorityInputs()
		inputs[1].EstimatedEffort = 1 << 62

		_, err := handler.Handle(context.Background(), StressContributorsQuery{Deadlines: inputs})

		assert.ErrorIs(t, err, services.ErrInvalidInput)
		assert.ErrorContains(t, err, "deadlines[1].estimated_effort")
	})

	t.Run("no deadlines", func(t *testing.T) {
		handler := NewStressContributorsHandler(&memoryDeadlines{}, analyzer, fixedClock(monday))

		got, err := handler.Handle(context.Background(), StressContributorsQuery{UserID: uuid.New()})
		require.NoError(t, err)

		assert.NotNil(t, got.Contributors)
		assert.Empty(t, got.Contributors)
		assert.Zero(t, got.MaxContribution)
	})
}

type lineEncoder struct{}

func (lineEncoder) Encode(w io.Writer, deadlines []*deadline.Deadline) error {
	for _, d := range deadlines {
		if _, err := io.WriteString(w, d.Title()+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func TestExportCalendarHandler(t *testing.T) {
	owner := uuid.New()
	repo := &memoryDeadlines{}
	repo.add(owner, "Essay", date(12), 3, value_objects.ImportanceMedium)
	repo.add(owner, "Quiz", date(10), 1, value_objects.ImportanceLow)

	got, err := NewExportCalendarHandler(repo, lineEncoder{}).Handle(context.Background(), ExportCalendarQuery{UserID: owner})

	require.NoError(t, err)
	assert.True(t, bytes.Equal([]byte("Quiz\nEssay\n"), got))
}
