//go:build database

package persistence_test

import (
	"testing"

	"github.com/felixgeelhaar/studyload/internal/shared/infrastructure/database/dbtest"
)

func TestPostgresDeadlineRepository(t *testing.T) {
	runDeadlineRepositoryContract(t, dbtest.Postgres(t))
}
