package domain

import (
	"errors"
	"time"

	sharedDomain "github.com/felixgeelhaar/studyload/internal/shared/domain"
	"github.com/google/uuid"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailTaken        = errors.New("email is already registered")
	ErrEmptyPasswordHash = errors.New("password hash cannot be empty")
)

// User is a registered account. The password is only ever held as a hash.
type User struct {
	sharedDomain.BaseAggregateRoot
	email        Email
	name         Name
	passwordHash string
}

// NewUser registers a user and raises UserRegistered.
func NewUser(email Email, name Name, passwordHash string) (*User, error) {
	if passwordHash == "" {
		return nil, ErrEmptyPasswordHash
	}
	u := &User{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		email:             email,
		name:              name,
		passwordHash:      passwordHash,
	}

	u.AddDomainEvent(NewUserRegistered(u))

	return u, nil
}

// RehydrateUser rebuilds a user loaded from storage.
func RehydrateUser(id uuid.UUID, email Email, name Name, passwordHash string, createdAt, updatedAt time.Time, version int) *User {
	return &User{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(
			sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt), version,
		),
		email:        email,
		name:         name,
		passwordHash: passwordHash,
	}
}

// Getters
func (u *User) Email() Email         { return u.email }
func (u *User) Name() Name           { return u.name }
func (u *User) PasswordHash() string { return u.passwordHash }

// UpdateProfile replaces name and email. It reports whether anything
// changed; a change raises UserUpdated.
func (u *User) UpdateProfile(email Email, name Name) bool {
	var fields []string
	previous := u.email

	if !u.email.Equals(email) {
		u.email = email
		fields = append(fields, "email")
	}
	if !u.name.Equals(name) {
		u.name = name
		fields = append(fields, "name")
	}
	if len(fields) == 0 {
		return false
	}

	u.Touch()
	u.AddDomainEvent(NewUserUpdated(u, previous, fields))
	return true
}
