package domain_test

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/studyload/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type noteAggregate struct {
	domain.BaseAggregateRoot
	body string
}

type noteWritten struct {
	domain.BaseEvent
}

func newNote(body string) *noteAggregate {
	n := &noteAggregate{BaseAggregateRoot: domain.NewBaseAggregateRoot(), body: body}
	n.AddDomainEvent(&noteWritten{BaseEvent: domain.NewBaseEvent(n.ID(), "Note", "test.note.written")})
	return n
}

func TestNewBaseAggregateRoot(t *testing.T) {
	agg := domain.NewBaseAggregateRoot()

	assert.NotEqual(t, uuid.Nil, agg.ID())
	assert.Equal(t, 0, agg.Version())
	assert.Empty(t, agg.DomainEvents())
	assert.Equal(t, agg.CreatedAt(), agg.UpdatedAt())
}

func TestBaseAggregateRoot_Events(t *testing.T) {
	note := newNote("hello")

	events := note.DomainEvents()
	assert.Len(t, events, 1)
	assert.Equal(t, note.ID(), events[0].AggregateID())
	assert.Equal(t, "test.note.written", events[0].RoutingKey())

	note.ClearDomainEvents()
	assert.Empty(t, note.DomainEvents())
}

func TestBaseAggregateRoot_Version(t *testing.T) {
	note := newNote("hello")
	note.IncrementVersion()
	note.IncrementVersion()

	assert.Equal(t, 2, note.Version())
}

func TestRehydrateBaseAggregateRoot(t *testing.T) {
	id := uuid.New()
	created := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)

	agg := domain.RehydrateBaseAggregateRoot(domain.RehydrateBaseEntity(id, created, updated), 4)

	assert.Equal(t, id, agg.ID())
	assert.Equal(t, created, agg.CreatedAt())
	assert.Equal(t, updated, agg.UpdatedAt())
	assert.Equal(t, 4, agg.Version())
	assert.Empty(t, agg.DomainEvents())
}

func TestBaseEntity_Touch(t *testing.T) {
	entity := domain.RehydrateBaseEntity(uuid.New(), time.Unix(0, 0).UTC(), time.Unix(0, 0).UTC())
	entity.Touch()

	assert.True(t, entity.UpdatedAt().After(entity.CreatedAt()))
}
