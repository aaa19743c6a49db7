package queries

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/studyload/internal/workload/application/services"
	"github.com/felixgeelhaar/studyload/internal/workload/domain/deadline"
)

// RankPrioritiesQuery ranks the stored deadlines of UserID, or Deadlines when
// it is non-nil.
type RankPrioritiesQuery struct {
	UserID    uuid.UUID
	Deadlines []DeadlineInput
}

// PriorityDTO is one ranked task with its reason.
type PriorityDTO struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Rank            int    `json:"rank"`
	Score           int    `json:"score"`
	Reason          string `json:"reason"`
	EstimatedEffort int    `json:"estimated_effort"`
	DueDate         string `json:"due_date"`
}

// RankPrioritiesHandler ranks tasks and attaches a generated reason to each.
// A generator failure fails the whole query.
type RankPrioritiesHandler struct {
	deadlines deadline.Repository
	engine    *services.PriorityEngine
	narrator  *services.Narrator
	clock     Clock
}

func NewRankPrioritiesHandler(deadlines deadline.Repository, engine *services.PriorityEngine, narrator *services.Narrator, clock Clock) *RankPrioritiesHandler {
	return &RankPrioritiesHandler{deadlines: deadlines, engine: engine, narrator: narrator, clock: clock}
}

func (h *RankPrioritiesHandler) Handle(ctx context.Context, query RankPrioritiesQuery) ([]PriorityDTO, error) {
	records, err := loadRecords(ctx, h.deadlines, query.UserID, query.Deadlines)
	if err != nil {
		return nil, err
	}

	ranked := h.engine.Rank(h.clock.today(), records)
	results, err := h.narrator.ExplainPriorities(ctx, ranked)
	if err != nil {
		return nil, err
	}

	dtos := make([]PriorityDTO, len(results))
	for i, r := range results {
		dtos[i] = PriorityDTO{
			ID:              r.ID,
			Title:           r.Title,
			Rank:            r.Rank,
			Score:           r.Score,
			Reason:          r.Reason,
			EstimatedEffort: r.EstimatedEffort,
			DueDate:         r.DueDate.Format(time.DateOnly),
		}
	}
	return dtos, nil
}

// loadRecords validates caller input, or reads every stored deadline of the
// user when no input was given.
func loadRecords(ctx context.Context, repo deadline.Repository, userID uuid.UUID, inputs []DeadlineInput) ([]services.DeadlineRecord, error) {
	if inputs != nil {
		return recordsFromInputs(inputs)
	}
	deadlines, err := repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return recordsFromDeadlines(deadlines), nil
}
