package cache

import (
	"context"
	"errors"
	"log/slog"

	"github.com/felixgeelhaar/studyload/pkg/observability"
	"github.com/google/uuid"
)

// Invalidator drops cached reads after writes. Callers log its errors
// instead of failing the write, since the TTL bounds staleness anyway.
type Invalidator struct {
	cache   Cache
	logger  *slog.Logger
	metrics observability.Metrics
}

func NewInvalidator(c Cache, logger *slog.Logger, metrics observability.Metrics) *Invalidator {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &Invalidator{cache: c, logger: logger, metrics: metrics}
}

// DeadlinesChanged runs after any create, update or delete of a deadline.
func (i *Invalidator) DeadlinesChanged(ctx context.Context, userID uuid.UUID) error {
	if err := i.cache.Delete(ctx, DashboardKey(userID)); err != nil {
		return err
	}
	n, err := i.cache.DeleteByPrefix(ctx, UserDeadlinesPrefix(userID))
	i.record("deadlines", 1+n)
	return err
}

// UserChanged drops every cache of the user, including the entry under
// the previous email when it changed.
func (i *Invalidator) UserChanged(ctx context.Context, userID uuid.UUID, emails ...string) error {
	var errs []error

	keys := []string{DashboardKey(userID)}
	for _, email := range emails {
		if email != "" {
			keys = append(keys, UserKey(email))
		}
	}
	if err := i.cache.Delete(ctx, keys...); err != nil {
		errs = append(errs, err)
	}

	total := int64(len(keys))
	for _, prefix := range []string{UserDataPrefix(userID), UserDeadlinesPrefix(userID)} {
		n, err := i.cache.DeleteByPrefix(ctx, prefix)
		if err != nil {
			errs = append(errs, err)
		}
		total += n
		if n > 0 {
			i.logger.DebugContext(ctx, "cache prefix invalidated", "prefix", prefix, "deleted", n)
		}
	}
	i.record("user", total)
	return errors.Join(errs...)
}

func (i *Invalidator) record(scope string, n int64) {
	i.metrics.Counter(observability.MetricCacheEvictions, n, observability.T("scope", scope))
}
