package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sharedDomain "github.com/felixgeelhaar/studyload/internal/shared/domain"
	"github.com/felixgeelhaar/studyload/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/studyload/internal/shared/infrastructure/database/dbtest"
	"github.com/felixgeelhaar/studyload/internal/workload/domain/deadline"
	"github.com/felixgeelhaar/studyload/internal/workload/domain/value_objects"
	"github.com/felixgeelhaar/studyload/internal/workload/infrastructure/persistence"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustDeadline(t *testing.T, owner uuid.UUID, title string, due time.Time, effort int, imp value_objects.Importance) *deadline.Deadline {
	t.Helper()
	d, err := deadline.NewDeadline(owner, title, due, effort, imp)
	require.NoError(t, err)
	return d
}

// runDeadlineRepositoryContract exercises behaviour both drivers must share.
func runDeadlineRepositoryContract(t *testing.T, conn database.Connection) {
	repo := persistence.NewDeadlineRepository(conn)
	ctx := context.Background()

	t.Run("save and find round trip", func(t *testing.T) {
		owner := dbtest.SeedUser(t, conn, uuid.NewString()+"@example.com")
		d := mustDeadline(t, owner, "Thesis chapter", date(2025, 3, 14), 6, value_objects.ImportanceHigh)

		require.NoError(t, repo.Save(ctx, d))

		found, err := repo.FindByID(ctx, d.ID())
		require.NoError(t, err)
		assert.Equal(t, d.ID(), found.ID())
		assert.Equal(t, owner, found.UserID())
		assert.Equal(t, "Thesis chapter", found.Title())
		assert.True(t, found.DueDate().Equal(date(2025, 3, 14)))
		assert.Equal(t, 6, found.EstimatedEffort())
		assert.Equal(t, value_objects.ImportanceHigh, found.Importance())
		assert.Empty(t, found.DomainEvents())
	})

	t.Run("missing id is not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, deadline.ErrDeadlineNotFound)
	})

	t.Run("updates bump the version", func(t *testing.T) {
		owner := dbtest.SeedUser(t, conn, uuid.NewString()+"@example.com")
		d := mustDeadline(t, owner, "Lab report", date(2025, 3, 12), 2, value_objects.ImportanceMedium)
		require.NoError(t, repo.Save(ctx, d))

		loaded, err := repo.FindByID(ctx, d.ID())
		require.NoError(t, err)
		effort := 5
		require.NoError(t, loaded.Apply(deadline.Changes{EstimatedEffort: &effort}))
		require.NoError(t, repo.Save(ctx, loaded))
		assert.Equal(t, d.Version()+1, loaded.Version())

		reloaded, err := repo.FindByID(ctx, d.ID())
		require.NoError(t, err)
		assert.Equal(t, 5, reloaded.EstimatedEffort())
		assert.Equal(t, loaded.Version(), reloaded.Version())
	})

	t.Run("stale writes are rejected", func(t *testing.T) {
		owner := dbtest.SeedUser(t, conn, uuid.NewString()+"@example.com")
		d := mustDeadline(t, owner, "Problem set", date(2025, 3, 11), 3, value_objects.ImportanceLow)
		require.NoError(t, repo.Save(ctx, d))

		first, err := repo.FindByID(ctx, d.ID())
		require.NoError(t, err)
		second, err := repo.FindByID(ctx, d.ID())
		require.NoError(t, err)

		title := "Problem set 2"
		require.NoError(t, first.Apply(deadline.Changes{Title: &title}))
		require.NoError(t, repo.Save(ctx, first))

		other := "Problem set B"
		require.NoError(t, second.Apply(deadline.Changes{Title: &other}))
		assert.ErrorIs(t, repo.Save(ctx, second), sharedDomain.ErrConcurrentModification)
	})

	t.Run("lists are owner scoped and ordered", func(t *testing.T) {
		owner := dbtest.SeedUser(t, conn, uuid.NewString()+"@example.com")
		stranger := dbtest.SeedUser(t, conn, uuid.NewString()+"@example.com")

		for _, d := range []*deadline.Deadline{
			mustDeadline(t, owner, "Essay", date(2025, 3, 16), 4, value_objects.ImportanceMedium),
			mustDeadline(t, owner, "Quiz", date(2025, 3, 10), 1, value_objects.ImportanceLow),
			mustDeadline(t, owner, "Exam prep", date(2025, 3, 16), 8, value_objects.ImportanceHigh),
			mustDeadline(t, owner, "Next month", date(2025, 4, 20), 2, value_objects.ImportanceLow),
			mustDeadline(t, stranger, "Not mine", date(2025, 3, 12), 9, value_objects.ImportanceHigh),
		} {
			require.NoError(t, repo.Save(ctx, d))
		}

		all, err := repo.FindByUserID(ctx, owner)
		require.NoError(t, err)
		assert.Equal(t, []string{"Quiz", "Essay", "Exam prep", "Next month"}, titles(all))

		week, err := repo.FindDueBetween(ctx, owner, date(2025, 3, 10), date(2025, 3, 16))
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"Quiz", "Essay", "Exam prep"}, titles(week))

		none, err := repo.FindByUserID(ctx, uuid.New())
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)
	})

	t.Run("delete", func(t *testing.T) {
		owner := dbtest.SeedUser(t, conn, uuid.NewString()+"@example.com")
		d := mustDeadline(t, owner, "Reading", date(2025, 3, 13), 1, value_objects.ImportanceLow)
		require.NoError(t, repo.Save(ctx, d))

		require.NoError(t, repo.Delete(ctx, d.ID()))
		_, err := repo.FindByID(ctx, d.ID())
		assert.ErrorIs(t, err, deadline.ErrDeadlineNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, d.ID()), deadline.ErrDeadlineNotFound)
	})

	t.Run("save joins the unit of work", func(t *testing.T) {
		owner := dbtest.SeedUser(t, conn, uuid.NewString()+"@example.com")
		d := mustDeadline(t, owner, "Rolled back", date(2025, 3, 13), 1, value_objects.ImportanceLow)
		uow := database.NewUnitOfWork(conn)

		txCtx, err := uow.Begin(ctx)
		require.NoError(t, err)
		require.NoError(t, repo.Save(txCtx, d))
		require.NoError(t, uow.Rollback(txCtx))

		_, err = repo.FindByID(ctx, d.ID())
		assert.ErrorIs(t, err, deadline.ErrDeadlineNotFound)
	})
}

func titles(ds []*deadline.Deadline) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Title()
	}
	return out
}

func TestSQLiteDeadlineRepository(t *testing.T) {
	conn := dbtest.SQLite(t)
	assert.IsType(t, &persistence.SQLiteDeadlineRepository{}, persistence.NewDeadlineRepository(conn))
	runDeadlineRepositoryContract(t, conn)
}
