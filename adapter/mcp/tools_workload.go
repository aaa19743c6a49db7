package mcp

import (
	"context"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/studyload/internal/workload/application/queries"
)

type scoringDeadlineInput struct {
	ID              string `json:"id,omitempty"`
	Title           string `json:"title" jsonschema:"required"`
	DueDate         string `json:"due_date" jsonschema:"required"`
	EstimatedEffort int    `json:"estimated_effort,omitempty"`
	Importance      string `json:"importance_level" jsonschema:"required"`
}

type scoringInput struct {
	// Deadlines replaces the stored deadlines when given.
	Deadlines []scoringDeadlineInput `json:"deadlines,omitempty"`
}

type stressInput struct {
	// WeeklyLoad replaces the stored deadlines when given. It needs one
	// entry per weekday.
	WeeklyLoad []queries.WeeklyLoadInput `json:"weekly_load,omitempty"`
}

func registerWorkloadTools(srv *mcp.Server, t *toolset) {
	srv.Tool("workload.dashboard").
		Description("Deadlines and hours per day for the seven days starting today").
		Handler(t.dashboard)

	srv.Tool("workload.stress").
		Description("Predict daily and weekly stress (0-100) with a risk level and an explanation. Pass weekly_load with Mon..Sun entries to score a hypothetical week.").
		Handler(t.stress)

	srv.Tool("workload.priorities").
		Description("Rank deadlines by what to work on first, with a reason for each. Pass deadlines to rank a list other than the stored one.").
		Handler(t.priorities)

	srv.Tool("workload.contributors").
		Description("Share of this week's stress each deadline is responsible for, in percent").
		Handler(t.contributors)
}

func (t *toolset) dashboard(ctx context.Context, _ struct{}) (*queries.DashboardDTO, error) {
	userID, err := t.userID(ctx)
	if err != nil {
		return nil, err
	}
	return t.c.GetDashboardHandler.Handle(ctx, queries.GetDashboardQuery{UserID: userID})
}

func (t *toolset) stress(ctx context.Context, input stressInput) (*queries.StressPredictionDTO, error) {
	userID, err := t.userID(ctx)
	if err != nil {
		return nil, err
	}
	return t.c.PredictStressHandler.Handle(ctx, queries.PredictStressQuery{UserID: userID, WeeklyLoad: input.WeeklyLoad})
}

func (t *toolset) priorities(ctx context.Context, input scoringInput) ([]queries.PriorityDTO, error) {
	userID, err := t.userID(ctx)
	if err != nil {
		return nil, err
	}
	deadlines, err := input.toQuery()
	if err != nil {
		return nil, err
	}
	return t.c.RankPrioritiesHandler.Handle(ctx, queries.RankPrioritiesQuery{UserID: userID, Deadlines: deadlines})
}

func (t *toolset) contributors(ctx context.Context, input scoringInput) (*queries.StressContributorsDTO, error) {
	userID, err := t.userID(ctx)
	if err != nil {
		return nil, err
	}
	deadlines, err := input.toQuery()
	if err != nil {
		return nil, err
	}
	return t.c.StressContributorsHandler.Handle(ctx, queries.StressContributorsQuery{UserID: userID, Deadlines: deadlines})
}

func (in scoringInput) toQuery() ([]queries.DeadlineInput, error) {
	if in.Deadlines == nil {
		return nil, nil
	}
	raw := make([]queries.RawDeadline, len(in.Deadlines))
	for i, d := range in.Deadlines {
		raw[i] = queries.RawDeadline(d)
	}
	return queries.ParseDeadlineInputs(raw)
}
