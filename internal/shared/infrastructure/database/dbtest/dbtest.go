// Package dbtest opens migrated databases for repository tests.
package dbtest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/studyload/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/studyload/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/studyload/internal/shared/infrastructure/migrations"
)

// SQLite returns an in-memory database with every migration applied.
func SQLite(t testing.TB) database.Connection {
	t.Helper()
	ctx := context.Background()

	conn, err := database.Open(ctx, database.Config{SQLitePath: database.MemoryPath})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, migrations.Up(ctx, conn, "", nil))
	return conn
}

// SeedUser inserts a bare user row so foreign keys hold and returns its id.
func SeedUser(t testing.TB, conn database.Connection, email string) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	id := uuid.New()
	now := time.Now().UTC()

	var err error
	if conn.Driver() == database.DriverSQLite {
		_, err = conn.Exec(ctx, `
			INSERT INTO users (id, email, name, password_hash, version, created_at, updated_at)
			VALUES (?, ?, ?, ?, 1, ?, ?)`,
			id.String(), email, "Test Student", "x", database.FormatTime(now), database.FormatTime(now))
	} else {
		_, err = conn.Exec(ctx, `
			INSERT INTO users (id, email, name, password_hash, version, created_at, updated_at)
			VALUES ($1, $2, $3, $4, 1, $5, $5)`,
			id, email, "Test Student", "x", now)
	}
	require.NoError(t, err)
	return id
}
