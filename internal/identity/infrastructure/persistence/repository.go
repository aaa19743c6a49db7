// Package persistence stores users in PostgreSQL or, in local mode, SQLite.
package persistence

import (
	"time"

	"github.com/felixgeelhaar/studyload/internal/identity/domain"
	sharedDomain "github.com/felixgeelhaar/studyload/internal/shared/domain"
	"github.com/felixgeelhaar/studyload/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// NewUserRepository picks the implementation for the connection's driver.
func NewUserRepository(conn database.Connection) domain.UserRepository {
	if conn.Driver() == database.DriverSQLite {
		return NewSQLiteUserRepository(conn)
	}
	return NewPostgresUserRepository(conn)
}

// saveError maps storage failures of an upsert to domain errors.
func saveError(err error) error {
	switch {
	case database.IsNoRows(err):
		return sharedDomain.ErrConcurrentModification
	case database.IsUniqueViolation(err):
		return domain.ErrEmailTaken
	default:
		return err
	}
}

func findError(err error) error {
	if database.IsNoRows(err) {
		return domain.ErrUserNotFound
	}
	return err
}

// toDomain rebuilds a user from stored columns. Stored values were validated
// on the way in, so a failure here means the row was edited by hand.
func toDomain(id uuid.UUID, emailStr, nameStr, hash string, createdAt, updatedAt time.Time, version int) (*domain.User, error) {
	email, err := domain.NewEmail(emailStr)
	if err != nil {
		return nil, err
	}
	name, err := domain.NewName(nameStr)
	if err != nil {
		return nil, err
	}
	return domain.RehydrateUser(id, email, name, hash, createdAt, updatedAt, version), nil
}
