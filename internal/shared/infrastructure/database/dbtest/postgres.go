//go:build database

package dbtest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/felixgeelhaar/studyload/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/studyload/internal/shared/infrastructure/database/postgres"
	"github.com/felixgeelhaar/studyload/internal/shared/infrastructure/migrations"
)

// Postgres starts a throwaway PostgreSQL container and returns a migrated
// connection to it.
func Postgres(t testing.TB) database.Connection {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:18-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_HOST_AUTH_METHOD": "trust",
				"POSTGRES_DB":               "studyload",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)
	url := fmt.Sprintf("postgres://postgres@%s:%s/studyload?sslmode=disable", host, port.Port())

	var conn database.Connection
	require.Eventually(t, func() bool {
		conn, err = database.Open(ctx, database.Config{Driver: database.DriverPostgres, URL: url, MaxConns: 4})
		if err != nil {
			return false
		}
		if conn.Ping(ctx) != nil {
			_ = conn.Close()
			return false
		}
		return true
	}, 30*time.Second, 500*time.Millisecond)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, migrations.Up(ctx, conn, url, nil))
	return conn
}
