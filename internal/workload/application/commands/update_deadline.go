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

// UpdateDeadlineCommand changes only the fields that are set.
type UpdateDeadlineCommand struct {
	UserID          uuid.UUID
	DeadlineID      uuid.UUID
	Title           *string
	DueDate         *time.Time
	EstimatedEffort *int
	Importance      *string
}

type UpdateDeadlineHandler struct {
	deps Deps
}

func NewUpdateDeadlineHandler(deps Deps) *UpdateDeadlineHandler {
	return &UpdateDeadlineHandler{deps: deps.withDefaults()}
}

func (h *UpdateDeadlineHandler) Handle(ctx context.Context, cmd UpdateDeadlineCommand) error {
	changes := deadline.Changes{
		Title:           cmd.Title,
		DueDate:         cmd.DueDate,
		EstimatedEffort: cmd.EstimatedEffort,
	}
	if cmd.Importance != nil {
		importance, err := value_objects.ParseImportance(*cmd.Importance)
		if err != nil {
			return err
		}
		changes.Importance = &importance
	}

	changed := false
	err := sharedApplication.WithUnitOfWork(ctx, h.deps.UnitOfWork, func(txCtx context.Context) error {
		d, err := loadOwned(txCtx, h.deps.Deadlines, cmd.UserID, cmd.DeadlineID)
		if err != nil {
			return err
		}
		if err := d.Apply(changes); err != nil {
			return err
		}
		if len(d.DomainEvents()) == 0 {
			return nil
		}
		changed = true

		if err := h.deps.Deadlines.Save(txCtx, d); err != nil {
			return err
		}
		return stageEvents(txCtx, h.deps.Outbox, d)
	})
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	h.deps.afterWrite(ctx, "deadline.update", cmd.UserID, cmd.DeadlineID)
	h.deps.Logger.InfoContext(ctx, "deadline updated",
		observability.UserIDKey, cmd.UserID,
		"deadline_id", cmd.DeadlineID,
	)
	return nil
}
