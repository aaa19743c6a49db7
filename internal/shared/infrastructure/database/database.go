// Package database hides the Postgres and SQLite drivers behind one
// Executor interface so repositories work inside or outside a transaction.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Driver names a database backend.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

func (d Driver) String() string {
	return string(d)
}

// DetectDriver picks the backend from a connection URL. An empty URL or a
// file path selects SQLite so the CLI works without any setup.
func DetectDriver(url string) Driver {
	switch {
	case url == "":
		return DriverSQLite
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DriverPostgres
	case strings.HasPrefix(url, "sqlite://"), strings.HasPrefix(url, "file:"),
		strings.HasSuffix(url, ".db"), strings.HasSuffix(url, ".sqlite"):
		return DriverSQLite
	default:
		return DriverPostgres
	}
}

// Config selects and tunes a connection.
type Config struct {
	// Driver is detected from URL when empty.
	Driver Driver
	URL    string
	// SQLitePath overrides the file used in local mode. ":memory:" opens a
	// private in-memory database.
	SQLitePath string
	// MaxConns caps the Postgres pool.
	MaxConns int
}

// MemoryPath opens an in-memory SQLite database.
const MemoryPath = ":memory:"

// ResolvedDriver returns the configured or detected driver.
func (c Config) ResolvedDriver() Driver {
	if c.Driver != "" {
		return c.Driver
	}
	return DetectDriver(c.URL)
}

// ResolvedSQLitePath returns the SQLite file to open.
func (c Config) ResolvedSQLitePath() string {
	if c.SQLitePath != "" {
		return c.SQLitePath
	}
	if c.URL != "" {
		return strings.TrimPrefix(strings.TrimPrefix(c.URL, "sqlite://"), "file:")
	}
	return DefaultSQLitePath()
}

// Open connects with the driver registered for the config.
func Open(ctx context.Context, cfg Config) (Connection, error) {
	driver := cfg.ResolvedDriver()
	factory, ok := factories[driver]
	if !ok {
		return nil, fmt.Errorf("database: driver %q is not registered", driver)
	}
	return factory(ctx, cfg)
}

// Factory opens a connection for one driver.
type Factory func(ctx context.Context, cfg Config) (Connection, error)

var factories = map[Driver]Factory{}

// Register makes a driver available to Open. Driver packages call it from
// init, so importing them for side effects is enough.
func Register(driver Driver, factory Factory) {
	factories[driver] = factory
}

// DefaultSQLitePath is ~/.studyload/studyload.db.
func DefaultSQLitePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".studyload", "studyload.db")
}

// EnsureDirectory creates the parent directory of path.
func EnsureDirectory(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

// SQLite stores timestamps as fixed-width UTC text so they sort and compare
// lexically.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// FormatTime encodes t for a SQLite TEXT column.
func FormatTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

// ParseTime decodes a timestamp written by FormatTime.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, s)
}

// FormatNullTime encodes an optional timestamp.
func FormatNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: FormatTime(*t), Valid: true}
}

// ParseNullTime decodes an optional timestamp.
func ParseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := ParseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
