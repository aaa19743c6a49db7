package outbox_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/studyload/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/studyload/internal/shared/infrastructure/database/dbtest"
	"github.com/felixgeelhaar/studyload/internal/shared/infrastructure/outbox"
)

func newSQLiteRepository(t *testing.T) (*outbox.SQLiteRepository, database.Connection) {
	t.Helper()
	conn := dbtest.SQLite(t)
	return outbox.NewSQLiteRepository(conn), conn
}

func TestSQLiteRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo, _ := newSQLiteRepository(t)

	first := pendingMessage("workload.deadline.created")
	first.Metadata = []byte(`{"user_id":"00000000-0000-0000-0000-000000000001"}`)
	second := pendingMessage("workload.deadline.updated")
	second.CreatedAt = first.CreatedAt.Add(time.Millisecond)
	require.NoError(t, repo.SaveBatch(ctx, []*outbox.Message{first, second}))
	assert.NotZero(t, first.ID)
	assert.Greater(t, second.ID, first.ID)

	pending, err := repo.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first.EventID, pending[0].EventID)
	assert.Equal(t, first.AggregateID, pending[0].AggregateID)
	assert.JSONEq(t, string(first.Payload), string(pending[0].Payload))
	assert.JSONEq(t, string(first.Metadata), string(pending[0].Metadata))
	assert.True(t, first.CreatedAt.Equal(pending[0].CreatedAt))
	assert.Nil(t, pending[1].Metadata)

	require.NoError(t, repo.MarkPublished(ctx, first.ID))
	require.NoError(t, repo.MarkFailed(ctx, second.ID, "broker unavailable", time.Now().Add(time.Hour)))

	pending, err = repo.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending, "failed message waits for its retry time")

	count, err := repo.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, repo.MarkDead(ctx, second.ID, "gave up"))
	count, err = repo.CountPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	assert.ErrorIs(t, repo.MarkPublished(ctx, 9999), outbox.ErrMessageNotFound)
}

func TestSQLiteRepository_RetryBecomesDue(t *testing.T) {
	ctx := context.Background()
	repo, _ := newSQLiteRepository(t)

	msg := pendingMessage("identity.user.registered")
	require.NoError(t, repo.Save(ctx, msg))
	require.NoError(t, repo.MarkFailed(ctx, msg.ID, "timeout", time.Now().Add(-time.Second)))

	pending, err := repo.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].RetryCount)
	require.NotNil(t, pending[0].LastError)
	assert.Equal(t, "timeout", *pending[0].LastError)
	assert.NotNil(t, pending[0].NextRetryAt)
}

func TestSQLiteRepository_DeleteOld(t *testing.T) {
	ctx := context.Background()
	repo, conn := newSQLiteRepository(t)

	old := pendingMessage("workload.deadline.created")
	recent := pendingMessage("workload.deadline.updated")
	require.NoError(t, repo.SaveBatch(ctx, []*outbox.Message{old, recent}))
	require.NoError(t, repo.MarkPublished(ctx, recent.ID))
	_, err := conn.Exec(ctx, `UPDATE outbox SET published_at = ? WHERE id = ?`,
		database.FormatTime(time.Now().AddDate(0, 0, -30)), old.ID)
	require.NoError(t, err)

	deleted, err := repo.DeleteOld(ctx, 14)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestSQLiteRepository_SaveJoinsTransaction(t *testing.T) {
	ctx := context.Background()
	repo, conn := newSQLiteRepository(t)
	uow := database.NewUnitOfWork(conn)

	txCtx, err := uow.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.Save(txCtx, pendingMessage("workload.deadline.created")))
	require.NoError(t, uow.Rollback(txCtx))

	count, err := repo.CountPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestNewRepository_PicksDriver(t *testing.T) {
	_, conn := newSQLiteRepository(t)
	assert.IsType(t, &outbox.SQLiteRepository{}, outbox.NewRepository(conn))
}
