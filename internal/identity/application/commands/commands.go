// Package commands holds the account write side.
package commands

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/studyload/internal/identity/application/auth"
	"github.com/felixgeelhaar/studyload/internal/identity/domain"
	sharedApplication "github.com/felixgeelhaar/studyload/internal/shared/application"
	"github.com/felixgeelhaar/studyload/internal/shared/infrastructure/outbox"
)

// CacheInvalidator is satisfied by cache.Invalidator.
type CacheInvalidator interface {
	UserChanged(ctx context.Context, userID uuid.UUID, emails ...string) error
}

// Deps bundles what every account command needs.
type Deps struct {
	Users       domain.UserRepository
	Hasher      auth.PasswordHasher
	Outbox      outbox.Repository
	UnitOfWork  sharedApplication.UnitOfWork
	Invalidator CacheInvalidator
	Logger      *slog.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return d
}

func stageEvents(ctx context.Context, repo outbox.Repository, u *domain.User) error {
	events := u.DomainEvents()
	sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(ctx, u.ID()))
	if err := outbox.SaveEvents(ctx, repo, events); err != nil {
		return err
	}
	u.ClearDomainEvents()
	return nil
}
