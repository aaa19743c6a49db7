package queries

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/studyload/internal/workload/application/services"
	"github.com/felixgeelhaar/studyload/internal/workload/domain/deadline"
)

// StressContributorsQuery analyzes the stored deadlines of UserID, or
// Deadlines when it is non-nil.
type StressContributorsQuery struct {
	UserID    uuid.UUID
	Deadlines []DeadlineInput
}

type ContributorDTO struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Contribution int    `json:"contribution"`
	DueDate      string `json:"due_date"`
}

type StressContributorsDTO struct {
	Contributors    []ContributorDTO `json:"contributors"`
	MaxContribution int              `json:"max_contribution"`
}

type StressContributorsHandler struct {
	deadlines deadline.Repository
	analyzer  *services.ContributionAnalyzer
	clock     Clock
}

func NewStressContributorsHandler(deadlines deadline.Repository, analyzer *services.ContributionAnalyzer, clock Clock) *StressContributorsHandler {
	return &StressContributorsHandler{deadlines: deadlines, analyzer: analyzer, clock: clock}
}

func (h *StressContributorsHandler) Handle(ctx context.Context, query StressContributorsQuery) (*StressContributorsDTO, error) {
	records, err := loadRecords(ctx, h.deadlines, query.UserID, query.Deadlines)
	if err != nil {
		return nil, err
	}

	report := h.analyzer.Analyze(h.clock.today(), records)
	dto := &StressContributorsDTO{
		Contributors:    make([]ContributorDTO, len(report.Contributors)),
		MaxContribution: report.MaxContribution,
	}
	for i, c := range report.Contributors {
		dto.Contributors[i] = ContributorDTO{
			ID:           c.ID,
			Title:        c.Title,
			Contribution: c.Percentage,
			DueDate:      c.DueDate.Format(time.DateOnly),
		}
	}
	return dto, nil
}
