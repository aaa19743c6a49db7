// Package commands holds the deadline write side. Every handler runs in a
// unit of work, stores outbox messages next to the aggregate and drops the
// owner's cached reads once the transaction commits.
package commands

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	sharedApplication "github.com/felixgeelhaar/studyload/internal/shared/application"
	"github.com/felixgeelhaar/studyload/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/studyload/internal/workload/domain/deadline"
	"github.com/felixgeelhaar/studyload/pkg/observability"
)

// CacheInvalidator is satisfied by cache.Invalidator.
type CacheInvalidator interface {
	DeadlinesChanged(ctx context.Context, userID uuid.UUID) error
}

// Deps bundles what every deadline command needs.
type Deps struct {
	Deadlines   deadline.Repository
	Outbox      outbox.Repository
	UnitOfWork  sharedApplication.UnitOfWork
	Invalidator CacheInvalidator
	Logger      *slog.Logger
	Metrics     observability.Metrics
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Metrics == nil {
		d.Metrics = observability.NoopMetrics{}
	}
	return d
}

// loadOwned returns the deadline when userID owns it. A foreign deadline
// is reported as missing so ids cannot be probed.
func loadOwned(ctx context.Context, repo deadline.Repository, userID, id uuid.UUID) (*deadline.Deadline, error) {
	d, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !d.IsOwnedBy(userID) {
		return nil, deadline.ErrDeadlineNotFound
	}
	return d, nil
}

func stageEvents(ctx context.Context, repo outbox.Repository, d *deadline.Deadline) error {
	events := d.DomainEvents()
	sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(ctx, d.UserID()))
	if err := outbox.SaveEvents(ctx, repo, events); err != nil {
		return err
	}
	d.ClearDomainEvents()
	return nil
}

// afterWrite invalidates caches and records the write. Cache failures are
// logged only; the TTL bounds how stale a read can get.
func (d Deps) afterWrite(ctx context.Context, op string, userID, deadlineID uuid.UUID) {
	d.Metrics.Counter(observability.MetricDeadlinesWritten, 1, observability.T(observability.OperationKey, op))

	if d.Invalidator == nil {
		return
	}
	if err := d.Invalidator.DeadlinesChanged(ctx, userID); err != nil {
		d.Logger.WarnContext(ctx, "cache invalidation failed",
			observability.OperationKey, op,
			observability.UserIDKey, userID,
			"deadline_id", deadlineID,
			observability.ErrorKey, err,
		)
	}
}
