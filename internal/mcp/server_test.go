package mcp

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/felixgeelhaar/mcp-go/middleware"
	"github.com/felixgeelhaar/mcp-go/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/studyload/internal/app"
	"github.com/felixgeelhaar/studyload/pkg/config"
)

func newContainer(t *testing.T, cfg *config.Config) *app.Container {
	t.Helper()
	cfg.AppEnv = "test"
	cfg.SQLitePath = filepath.Join(t.TempDir(), "mcp.db")
	cfg.TokenTTL = time.Hour
	cfg.NarrativeProvider = config.NarrativeProviderTemplate

	c, err := app.NewContainer(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestNewServer_RegistersTools(t *testing.T) {
	c := newContainer(t, &config.Config{UserEmail: "student@example.com"})

	srv, err := NewServer(c, nil)
	require.NoError(t, err)

	tc := testutil.NewTestClient(t, srv)
	defer tc.Close()

	tools, err := tc.ListTools()
	require.NoError(t, err)
	assert.NotEmpty(t, tools)
}

func TestNewServer_RequiresContainer(t *testing.T) {
	_, err := NewServer(nil, nil)
	assert.Error(t, err)
}

func TestUserEmail_PrefersMCPSetting(t *testing.T) {
	c := newContainer(t, &config.Config{UserEmail: "cli@example.com", MCPUserEmail: "mcp@example.com"})
	assert.Equal(t, "mcp@example.com", userEmail(c))

	c.Config.MCPUserEmail = ""
	assert.Equal(t, "cli@example.com", userEmail(c))
}

func TestFieldsToArgs(t *testing.T) {
	args := fieldsToArgs([]middleware.Field{{Key: "tool", Value: "deadline.list"}, {Key: "ms", Value: 3}})
	assert.Equal(t, []any{"tool", "deadline.list", "ms", 3}, args)
}
