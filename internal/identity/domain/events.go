package domain

import (
	sharedDomain "github.com/felixgeelhaar/studyload/internal/shared/domain"
)

const (
	AggregateType = "User"

	RoutingKeyUserRegistered = "identity.user.registered"
	RoutingKeyUserUpdated    = "identity.user.updated"
)

// UserRegistered is emitted when an account is created.
type UserRegistered struct {
	sharedDomain.BaseEvent
	Email string `json:"email"`
	Name  string `json:"name"`
}

func NewUserRegistered(u *User) *UserRegistered {
	return &UserRegistered{
		BaseEvent: sharedDomain.NewBaseEvent(u.ID(), AggregateType, RoutingKeyUserRegistered),
		Email:     u.email.String(),
		Name:      u.name.String(),
	}
}

// UserUpdated is emitted when a profile changes. PreviousEmail lets
// consumers drop anything keyed by the old address.
type UserUpdated struct {
	sharedDomain.BaseEvent
	Email         string   `json:"email"`
	PreviousEmail string   `json:"previous_email"`
	Name          string   `json:"name"`
	Fields        []string `json:"fields"`
}

func NewUserUpdated(u *User, previous Email, fields []string) *UserUpdated {
	return &UserUpdated{
		BaseEvent:     sharedDomain.NewBaseEvent(u.ID(), AggregateType, RoutingKeyUserUpdated),
		Email:         u.email.String(),
		PreviousEmail: previous.String(),
		Name:          u.name.String(),
		Fields:        fields,
	}
}
