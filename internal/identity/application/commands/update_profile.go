package commands

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/studyload/internal/identity/domain"
	sharedApplication "github.com/felixgeelhaar/studyload/internal/shared/application"
	"github.com/felixgeelhaar/studyload/pkg/observability"
)

// UpdateProfileCommand replaces the name and email of UserID.
type UpdateProfileCommand struct {
	UserID uuid.UUID
	Name   string
	Email  string
}

type UpdateProfileResult struct {
	UserID  uuid.UUID
	Name    string
	Email   string
	Changed bool
}

type UpdateProfileHandler struct {
	deps Deps
}

func NewUpdateProfileHandler(deps Deps) *UpdateProfileHandler {
	return &UpdateProfileHandler{deps: deps.withDefaults()}
}

// Handle updates the profile. Every cache of the user is dropped afterwards,
// including the entry for the old email address.
func (h *UpdateProfileHandler) Handle(ctx context.Context, cmd UpdateProfileCommand) (*UpdateProfileResult, error) {
	email, err := domain.NewEmail(cmd.Email)
	if err != nil {
		return nil, err
	}
	name, err := domain.NewName(cmd.Name)
	if err != nil {
		return nil, err
	}

	var (
		user     *domain.User
		previous domain.Email
		changed  bool
	)
	err = sharedApplication.WithUnitOfWork(ctx, h.deps.UnitOfWork, func(txCtx context.Context) error {
		user, err = h.deps.Users.FindByID(txCtx, cmd.UserID)
		if err != nil {
			return err
		}
		previous = user.Email()

		if !previous.Equals(email) {
			holder, err := h.deps.Users.FindByEmail(txCtx, email)
			switch {
			case err == nil && holder.ID() != user.ID():
				return domain.ErrEmailTaken
			case err != nil && !errors.Is(err, domain.ErrUserNotFound):
				return err
			}
		}

		if changed = user.UpdateProfile(email, name); !changed {
			return nil
		}
		if err := h.deps.Users.Save(txCtx, user); err != nil {
			return err
		}
		return stageEvents(txCtx, h.deps.Outbox, user)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		if h.deps.Invalidator != nil {
			if err := h.deps.Invalidator.UserChanged(ctx, user.ID(), previous.String(), email.String()); err != nil {
				h.deps.Logger.WarnContext(ctx, "cache invalidation failed",
					observability.UserIDKey, user.ID(),
					observability.ErrorKey, err,
				)
			}
		}
		h.deps.Logger.InfoContext(ctx, "profile updated", observability.UserIDKey, user.ID())
	}

	return &UpdateProfileResult{
		UserID:  user.ID(),
		Name:    user.Name().String(),
		Email:   user.Email().String(),
		Changed: changed,
	}, nil
}
