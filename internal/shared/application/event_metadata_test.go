package application

import (
	"context"
	"testing"

	"github.com/felixgeelhaar/studyload/internal/shared/domain"
	"github.com/felixgeelhaar/studyload/pkg/observability"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stampedEvent struct {
	domain.BaseEvent
}

func TestNewEventMetadata(t *testing.T) {
	t.Run("reuses the request correlation id", func(t *testing.T) {
		correlationID := uuid.New()
		ctx := observability.WithCorrelationID(context.Background(), correlationID.String())
		userID := uuid.New()

		meta := NewEventMetadata(ctx, userID)

		assert.Equal(t, correlationID, meta.CorrelationID)
		assert.Equal(t, userID, meta.UserID)
		assert.NotEqual(t, uuid.Nil, meta.CausationID)
	})

	t.Run("generates a correlation id when missing or malformed", func(t *testing.T) {
		ctx := observability.WithCorrelationID(context.Background(), "not-a-uuid")

		meta := NewEventMetadata(ctx, uuid.New())

		assert.NotEqual(t, uuid.Nil, meta.CorrelationID)
	})
}

func TestApplyEventMetadata(t *testing.T) {
	first := &stampedEvent{BaseEvent: domain.NewBaseEvent(uuid.New(), "Deadline", "workload.deadline.created")}
	second := &stampedEvent{BaseEvent: domain.NewBaseEvent(uuid.New(), "Deadline", "workload.deadline.updated")}
	meta := NewEventMetadata(context.Background(), uuid.New())

	ApplyEventMetadata([]domain.DomainEvent{first, second}, meta)

	assert.Equal(t, meta, first.Metadata())
	assert.Equal(t, meta, second.Metadata())

	require.NotPanics(t, func() { ApplyEventMetadata(nil, meta) })
}
