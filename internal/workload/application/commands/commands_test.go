package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/studyload/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/studyload/internal/workload/domain/deadline"
	"github.com/felixgeelhaar/studyload/internal/workload/domain/value_objects"
	"github.com/felixgeelhaar/studyload/pkg/observability"
)

type mockDeadlineRepo struct {
	mock.Mock
}

func (m *mockDeadlineRepo) Save(ctx context.Context, d *deadline.Deadline) error {
	return m.Called(ctx, d).Error(0)
}

func (m *mockDeadlineRepo) FindByID(ctx context.Context, id uuid.UUID) (*deadline.Deadline, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*deadline.Deadline), args.Error(1)
}

func (m *mockDeadlineRepo) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*deadline.Deadline, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*deadline.Deadline), args.Error(1)
}

func (m *mockDeadlineRepo) FindDueBetween(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]*deadline.Deadline, error) {
	args := m.Called(ctx, userID, start, end)
	return args.Get(0).([]*deadline.Deadline), args.Error(1)
}

func (m *mockDeadlineRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockOutboxRepo struct {
	outbox.Repository
	mock.Mock
}

func (m *mockOutboxRepo) SaveBatch(ctx context.Context, msgs []*outbox.Message) error {
	return m.Called(ctx, msgs).Error(0)
}

type passthroughUoW struct {
	begun, committed, rolledBack int
}

func (u *passthroughUoW) Begin(ctx context.Context) (context.Context, error) {
	u.begun++
	return ctx, nil
}

func (u *passthroughUoW) Commit(context.Context) error {
	u.committed++
	return nil
}

func (u *passthroughUoW) Rollback(context.Context) error {
	u.rolledBack++
	return nil
}

type recordingInvalidator struct {
	users []uuid.UUID
	err   error
}

func (r *recordingInvalidator) DeadlinesChanged(_ context.Context, userID uuid.UUID) error {
	r.users = append(r.users, userID)
	return r.err
}

type fixture struct {
	deadlines   *mockDeadlineRepo
	outbox      *mockOutboxRepo
	uow         *passthroughUoW
	invalidator *recordingInvalidator
	metrics     *observability.InMemoryMetrics
}

func newFixture() (*fixture, Deps) {
	f := &fixture{
		deadlines:   new(mockDeadlineRepo),
		outbox:      new(mockOutboxRepo),
		uow:         &passthroughUoW{},
		invalidator: &recordingInvalidator{},
		metrics:     observability.NewInMemoryMetrics(),
	}
	return f, Deps{
		Deadlines:   f.deadlines,
		Outbox:      f.outbox,
		UnitOfWork:  f.uow,
		Invalidator: f.invalidator,
		Metrics:     f.metrics,
	}
}

func routingKeys(msgs []*outbox.Message) []string {
	keys := make([]string, len(msgs))
	for i, m := range msgs {
		keys[i] = m.RoutingKey
	}
	return keys
}

func existingDeadline(t *testing.T, owner uuid.UUID) *deadline.Deadline {
	t.Helper()
	d := deadline.Rehydrate(uuid.New(), owner, "Essay", time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		4, value_objects.ImportanceMedium, time.Now(), time.Now(), 1)
	return d
}

func TestCreateDeadlineHandler(t *testing.T) {
	t.Run("saves the deadline and its event", func(t *testing.T) {
		f, deps := newFixture()
		userID := uuid.New()

		f.deadlines.On("Save", mock.Anything, mock.AnythingOfType("*deadline.Deadline")).Return(nil)
		f.outbox.On("SaveBatch", mock.Anything, mock.MatchedBy(func(msgs []*outbox.Message) bool {
			return assert.ObjectsAreEqual([]string{deadline.RoutingKeyCreated}, routingKeys(msgs))
		})).Return(nil)

		result, err := NewCreateDeadlineHandler(deps).Handle(context.Background(), CreateDeadlineCommand{
			UserID:          userID,
			Title:           "  Thesis draft ",
			DueDate:         time.Date(2025, 3, 14, 18, 0, 0, 0, time.UTC),
			EstimatedEffort: 6,
			Importance:      "HIGH",
		})

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, result.DeadlineID)
		assert.Equal(t, 1, f.uow.committed)
		assert.Equal(t, []uuid.UUID{userID}, f.invalidator.users)
		assert.Equal(t, int64(1), f.metrics.GetCounter(observability.MetricDeadlinesWritten,
			observability.T(observability.OperationKey, "deadline.create")))

		saved := f.deadlines.Calls[0].Arguments.Get(1).(*deadline.Deadline)
		assert.Equal(t, "Thesis draft", saved.Title())
		assert.Equal(t, value_objects.ImportanceHigh, saved.Importance())
		assert.Empty(t, saved.DomainEvents(), "events are cleared once staged")
		f.outbox.AssertExpectations(t)
	})

	t.Run("rejects unknown importance before touching storage", func(t *testing.T) {
		f, deps := newFixture()

		_, err := NewCreateDeadlineHandler(deps).Handle(context.Background(), CreateDeadlineCommand{
			UserID: uuid.New(), Title: "Essay", DueDate: time.Now(), Importance: "urgent",
		})

		assert.ErrorIs(t, err, value_objects.ErrInvalidImportance)
		assert.Zero(t, f.uow.begun)
		assert.Empty(t, f.invalidator.users)
	})

	t.Run("rolls back on validation failure", func(t *testing.T) {
		f, deps := newFixture()

		_, err := NewCreateDeadlineHandler(deps).Handle(context.Background(), CreateDeadlineCommand{
			UserID: uuid.New(), Title: "Essay", DueDate: time.Now(), EstimatedEffort: -1, Importance: "low",
		})

		assert.ErrorIs(t, err, deadline.ErrNegativeEffort)
		assert.Equal(t, 1, f.uow.rolledBack)
		assert.Empty(t, f.invalidator.users)
	})

	t.Run("cache failures do not fail the write", func(t *testing.T) {
		f, deps := newFixture()
		f.invalidator.err = errors.New("redis down")
		f.deadlines.On("Save", mock.Anything, mock.Anything).Return(nil)
		f.outbox.On("SaveBatch", mock.Anything, mock.Anything).Return(nil)

		_, err := NewCreateDeadlineHandler(deps).Handle(context.Background(), CreateDeadlineCommand{
			UserID: uuid.New(), Title: "Essay", DueDate: time.Now(), Importance: "low",
		})

		assert.NoError(t, err)
	})
}

func TestUpdateDeadlineHandler(t *testing.T) {
	t.Run("applies the changed fields", func(t *testing.T) {
		f, deps := newFixture()
		owner := uuid.New()
		d := existingDeadline(t, owner)
		effort := 9
		importance := "high"

		f.deadlines.On("FindByID", mock.Anything, d.ID()).Return(d, nil)
		f.deadlines.On("Save", mock.Anything, d).Return(nil)
		f.outbox.On("SaveBatch", mock.Anything, mock.MatchedBy(func(msgs []*outbox.Message) bool {
			return assert.ObjectsAreEqual([]string{deadline.RoutingKeyUpdated}, routingKeys(msgs))
		})).Return(nil)

		err := NewUpdateDeadlineHandler(deps).Handle(context.Background(), UpdateDeadlineCommand{
			UserID: owner, DeadlineID: d.ID(), EstimatedEffort: &effort, Importance: &importance,
		})

		require.NoError(t, err)
		assert.Equal(t, 9, d.EstimatedEffort())
		assert.Equal(t, value_objects.ImportanceHigh, d.Importance())
		assert.Equal(t, []uuid.UUID{owner}, f.invalidator.users)
	})

	t.Run("no-op updates skip storage and invalidation", func(t *testing.T) {
		f, deps := newFixture()
		owner := uuid.New()
		d := existingDeadline(t, owner)
		same := d.Title()

		f.deadlines.On("FindByID", mock.Anything, d.ID()).Return(d, nil)

		err := NewUpdateDeadlineHandler(deps).Handle(context.Background(), UpdateDeadlineCommand{
			UserID: owner, DeadlineID: d.ID(), Title: &same,
		})

		require.NoError(t, err)
		f.deadlines.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		assert.Empty(t, f.invalidator.users)
	})

	t.Run("foreign deadlines are not found", func(t *testing.T) {
		f, deps := newFixture()
		d := existingDeadline(t, uuid.New())
		title := "Mine now"

		f.deadlines.On("FindByID", mock.Anything, d.ID()).Return(d, nil)

		err := NewUpdateDeadlineHandler(deps).Handle(context.Background(), UpdateDeadlineCommand{
			UserID: uuid.New(), DeadlineID: d.ID(), Title: &title,
		})

		assert.ErrorIs(t, err, deadline.ErrDeadlineNotFound)
		assert.Equal(t, "Essay", d.Title())
	})

	t.Run("invalid importance", func(t *testing.T) {
		_, deps := newFixture()
		bad := "critical"

		err := NewUpdateDeadlineHandler(deps).Handle(context.Background(), UpdateDeadlineCommand{
			UserID: uuid.New(), DeadlineID: uuid.New(), Importance: &bad,
		})

		assert.ErrorIs(t, err, value_objects.ErrInvalidImportance)
	})
}

func TestDeleteDeadlineHandler(t *testing.T) {
	t.Run("deletes and stages the event", func(t *testing.T) {
		f, deps := newFixture()
		owner := uuid.New()
		d := existingDeadline(t, owner)

		f.deadlines.On("FindByID", mock.Anything, d.ID()).Return(d, nil)
		f.deadlines.On("Delete", mock.Anything, d.ID()).Return(nil)
		f.outbox.On("SaveBatch", mock.Anything, mock.MatchedBy(func(msgs []*outbox.Message) bool {
			return assert.ObjectsAreEqual([]string{deadline.RoutingKeyDeleted}, routingKeys(msgs))
		})).Return(nil)

		err := NewDeleteDeadlineHandler(deps).Handle(context.Background(), DeleteDeadlineCommand{
			UserID: owner, DeadlineID: d.ID(),
		})

		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{owner}, f.invalidator.users)
		f.deadlines.AssertExpectations(t)
	})

	t.Run("missing deadline", func(t *testing.T) {
		f, deps := newFixture()
		id := uuid.New()
		f.deadlines.On("FindByID", mock.Anything, id).Return(nil, deadline.ErrDeadlineNotFound)

		err := NewDeleteDeadlineHandler(deps).Handle(context.Background(), DeleteDeadlineCommand{
			UserID: uuid.New(), DeadlineID: id,
		})

		assert.ErrorIs(t, err, deadline.ErrDeadlineNotFound)
		assert.Equal(t, 1, f.uow.rolledBack)
	})
}
