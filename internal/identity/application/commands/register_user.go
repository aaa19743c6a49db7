package commands

import (
	"context"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/studyload/internal/identity/application/auth"
	"github.com/felixgeelhaar/studyload/internal/identity/domain"
	sharedApplication "github.com/felixgeelhaar/studyload/internal/shared/application"
	"github.com/felixgeelhaar/studyload/pkg/observability"
)

type RegisterUserCommand struct {
	Name     string
	Email    string
	Password string
}

type RegisterUserResult struct {
	UserID uuid.UUID
	Name   string
	Email  string
}

type RegisterUserHandler struct {
	deps Deps
}

func NewRegisterUserHandler(deps Deps) *RegisterUserHandler {
	return &RegisterUserHandler{deps: deps.withDefaults()}
}

// Handle validates the input, hashes the password and stores the account.
// ErrEmailTaken is returned when the address is already registered.
func (h *RegisterUserHandler) Handle(ctx context.Context, cmd RegisterUserCommand) (*RegisterUserResult, error) {
	email, err := domain.NewEmail(cmd.Email)
	if err != nil {
		return nil, err
	}
	name, err := domain.NewName(cmd.Name)
	if err != nil {
		return nil, err
	}
	if err := auth.ValidatePassword(cmd.Password); err != nil {
		return nil, err
	}
	hash, err := h.deps.Hasher.Hash(cmd.Password)
	if err != nil {
		return nil, err
	}

	var user *domain.User
	err = sharedApplication.WithUnitOfWork(ctx, h.deps.UnitOfWork, func(txCtx context.Context) error {
		taken, err := h.deps.Users.ExistsByEmail(txCtx, email)
		if err != nil {
			return err
		}
		if taken {
			return domain.ErrEmailTaken
		}

		user, err = domain.NewUser(email, name, hash)
		if err != nil {
			return err
		}
		if err := h.deps.Users.Save(txCtx, user); err != nil {
			return err
		}
		return stageEvents(txCtx, h.deps.Outbox, user)
	})
	if err != nil {
		return nil, err
	}

	h.deps.Logger.InfoContext(ctx, "user registered", observability.UserIDKey, user.ID())
	return &RegisterUserResult{UserID: user.ID(), Name: user.Name().String(), Email: user.Email().String()}, nil
}
