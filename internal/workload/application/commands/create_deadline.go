package commands

import (
	"context"
	"time"

	"github.com/google/uuid"

	sharedApplication "github.com/felixgeelhaar/studyload/internal/shared/application"
	"github.com/felixgeelhaar/studyload/internal/workload/domain/deadline"
	"github.com/felixgeelhaar/studyload/internal/workload/domain/value_objects"
	"github.com/felixgeelhaar/studyload/pkg/observability"
)

// CreateDeadlineCommand records a new deadline for UserID.
type CreateDeadlineCommand struct {
	UserID          uuid.UUID
	Title           string
	DueDate         time.Time
	EstimatedEffort int
	Importance      string
}

type CreateDeadlineResult struct {
	DeadlineID uuid.UUID
}

type CreateDeadlineHandler struct {
	deps Deps
}

func NewCreateDeadlineHandler(deps Deps) *CreateDeadlineHandler {
	return &CreateDeadlineHandler{deps: deps.withDefaults()}
}

func (h *CreateDeadlineHandler) Handle(ctx context.Context, cmd CreateDeadlineCommand) (*CreateDeadlineResult, error) {
	importance, err := value_objects.ParseImportance(cmd.Importance)
	if err != nil {
		return nil, err
	}

	var result *CreateDeadlineResult
	err = sharedApplication.WithUnitOfWork(ctx, h.deps.UnitOfWork, func(txCtx context.Context) error {
		d, err := deadline.NewDeadline(cmd.UserID, cmd.Title, cmd.DueDate, cmd.EstimatedEffort, importance)
		if err != nil {
			return err
		}
		if err := h.deps.Deadlines.Save(txCtx, d); err != nil {
			return err
		}
		if err := stageEvents(txCtx, h.deps.Outbox, d); err != nil {
			return err
		}
		result = &CreateDeadlineResult{DeadlineID: d.ID()}
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.deps.afterWrite(ctx, "deadline.create", cmd.UserID, result.DeadlineID)
	h.deps.Logger.InfoContext(ctx, "deadline created",
		observability.UserIDKey, cmd.UserID,
		"deadline_id", result.DeadlineID,
	)
	return result, nil
}
