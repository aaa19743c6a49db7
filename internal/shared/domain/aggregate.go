package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrConcurrentModification is returned by repositories when the stored
// version no longer matches the aggregate being saved.
var ErrConcurrentModification = errors.New("aggregate was modified concurrently")

// Entity is anything with a stable identity and audit timestamps.
type Entity interface {
	ID() uuid.UUID
	CreatedAt() time.Time
	UpdatedAt() time.Time
}

// AggregateRoot is the consistency boundary persisted by a repository.
type AggregateRoot interface {
	Entity
	Version() int
	DomainEvents() []DomainEvent
	ClearDomainEvents()
}

// BaseEntity carries identity and timestamps for embedding.
type BaseEntity struct {
	id        uuid.UUID
	createdAt time.Time
	updatedAt time.Time
}

// NewBaseEntity returns an entity with a fresh id.
func NewBaseEntity() BaseEntity {
	now := time.Now().UTC()
	return BaseEntity{id: uuid.New(), createdAt: now, updatedAt: now}
}

// RehydrateBaseEntity rebuilds an entity loaded from storage.
func RehydrateBaseEntity(id uuid.UUID, createdAt, updatedAt time.Time) BaseEntity {
	return BaseEntity{id: id, createdAt: createdAt, updatedAt: updatedAt}
}

func (e BaseEntity) ID() uuid.UUID        { return e.id }
func (e BaseEntity) CreatedAt() time.Time { return e.createdAt }
func (e BaseEntity) UpdatedAt() time.Time { return e.updatedAt }

// Touch bumps the modification timestamp.
func (e *BaseEntity) Touch() {
	e.updatedAt = time.Now().UTC()
}

// BaseAggregateRoot tracks version and uncommitted events.
type BaseAggregateRoot struct {
	BaseEntity
	version int
	events  []DomainEvent
}

// NewBaseAggregateRoot starts a brand new aggregate at version 0.
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity()}
}

// RehydrateBaseAggregateRoot rebuilds aggregate state loaded from storage.
func RehydrateBaseAggregateRoot(entity BaseEntity, version int) BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: entity, version: version}
}

func (a *BaseAggregateRoot) Version() int { return a.version }

// IncrementVersion is called by repositories after a successful write.
func (a *BaseAggregateRoot) IncrementVersion() {
	a.version++
}

// DomainEvents returns events raised since the last clear.
func (a *BaseAggregateRoot) DomainEvents() []DomainEvent {
	return a.events
}

// ClearDomainEvents drops pending events once they are in the outbox.
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.events = nil
}

// AddDomainEvent records an event for later publication.
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.events = append(a.events, event)
}
