package commands

import (
	"context"

	"github.com/google/uuid"

	sharedApplication "github.com/felixgeelhaar/studyload/internal/shared/application"
	"github.com/felixgeelhaar/studyload/pkg/observability"
)

type DeleteDeadlineCommand struct {
	UserID     uuid.UUID
	DeadlineID uuid.UUID
}

type DeleteDeadlineHandler struct {
	deps Deps
}

func NewDeleteDeadlineHandler(deps Deps) *DeleteDeadlineHandler {
	return &DeleteDeadlineHandler{deps: deps.withDefaults()}
}

func (h *DeleteDeadlineHandler) Handle(ctx context.Context, cmd DeleteDeadlineCommand) error {
	err := sharedApplication.WithUnitOfWork(ctx, h.deps.UnitOfWork, func(txCtx context.Context) error {
		d, err := loadOwned(txCtx, h.deps.Deadlines, cmd.UserID, cmd.DeadlineID)
		if err != nil {
			return err
		}
		d.MarkDeleted()
		if err := h.deps.Deadlines.Delete(txCtx, d.ID()); err != nil {
			return err
		}
		return stageEvents(txCtx, h.deps.Outbox, d)
	})
	if err != nil {
		return err
	}

	h.deps.afterWrite(ctx, "deadline.delete", cmd.UserID, cmd.DeadlineID)
	h.deps.Logger.InfoContext(ctx, "deadline deleted",
		observability.UserIDKey, cmd.UserID,
		"deadline_id", cmd.DeadlineID,
	)
	return nil
}
