// Package migrations applies the embedded schema with golang-migrate.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/felixgeelhaar/studyload/internal/shared/infrastructure/database"
)

//go:embed postgres/*.sql sqlite/*.sql
var migrationsFS embed.FS

// sqlDB is implemented by connections backed by database/sql.
type sqlDB interface {
	DB() *sql.DB
}

// Up migrates the database behind conn to the latest version. url is only
// used for Postgres, where golang-migrate needs its own database/sql handle.
func Up(ctx context.Context, conn database.Connection, url string, logger *slog.Logger) error {
	switch conn.Driver() {
	case database.DriverPostgres:
		return RunPostgres(ctx, url, logger)
	case database.DriverSQLite:
		withDB, ok := conn.(sqlDB)
		if !ok {
			return fmt.Errorf("migrations: sqlite connection does not expose *sql.DB")
		}
		return RunSQLite(ctx, withDB.DB(), logger)
	default:
		return fmt.Errorf("migrations: unsupported driver %s", conn.Driver())
	}
}

// RunPostgres applies the Postgres migrations through lib/pq.
func RunPostgres(ctx context.Context, url string, logger *slog.Logger) error {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return fmt.Errorf("migrations: open postgres: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("migrations: ping postgres: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("migrations: postgres driver: %w", err)
	}
	return run("postgres", driver, logger)
}

// RunSQLite applies the SQLite migrations on an open database. The handle
// stays open; the caller owns it.
func RunSQLite(_ context.Context, db *sql.DB, logger *slog.Logger) error {
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("migrations: sqlite driver: %w", err)
	}
	return run("sqlite", driver, logger)
}

func run(dialect string, driver migratedb.Driver, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	sub, err := fs.Sub(migrationsFS, dialect)
	if err != nil {
		return fmt.Errorf("migrations: %s sources: %w", dialect, err)
	}
	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("migrations: %s source driver: %w", dialect, err)
	}
	defer func() { _ = source.Close() }()

	// The database driver is not closed here: for SQLite it wraps the
	// application's own handle.
	m, err := migrate.NewWithInstance("iofs", source, dialect, driver)
	if err != nil {
		return fmt.Errorf("migrations: init: %w", err)
	}

	from, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("migrations: read version: %w", err)
	}
	if dirty {
		return fmt.Errorf("migrations: database is dirty at version %d", from)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Debug("schema up to date", "dialect", dialect, "version", from)
			return nil
		}
		return fmt.Errorf("migrations: up: %w", err)
	}

	to, _, _ := m.Version()
	logger.Info("schema migrated", "dialect", dialect, "from", from, "to", to)
	return nil
}
