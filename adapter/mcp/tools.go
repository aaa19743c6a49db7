package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/google/uuid"

	"github.com/felixgeelhaar/studyload/adapter/cli"
	"github.com/felixgeelhaar/studyload/internal/app"
)

// ToolDependencies provides handlers and context for MCP tools.
type ToolDependencies struct {
	Container *app.Container
	// UserEmail is the account every tool acts for.
	UserEmail string
}

// toolset carries the dependencies into the tool handlers.
type toolset struct {
	c     *app.Container
	email string
}

func (t *toolset) userID(ctx context.Context) (uuid.UUID, error) {
	if t.c == nil {
		return uuid.Nil, errors.New("studyload requires a database connection")
	}
	user, err := t.c.ResolveUser(ctx, t.email)
	if err != nil {
		return uuid.Nil, err
	}
	return user.ID, nil
}

// RegisterTools registers the deadline and workload tools.
func RegisterTools(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}
	if deps.Container == nil {
		return errors.New("container is required")
	}
	t := &toolset{c: deps.Container, email: deps.UserEmail}

	registerDeadlineTools(srv, t)
	registerWorkloadTools(srv, t)

	srv.Tool("system.health").
		Description("Check the database, cache and broker connections").
		Handler(t.health)

	srv.Tool("system.version").
		Description("Get studyload version information").
		Handler(func(ctx context.Context, input struct{}) (cli.BuildInfo, error) {
			return cli.CurrentBuild(), nil
		})

	return nil
}

func (t *toolset) health(ctx context.Context, _ struct{}) (map[string]any, error) {
	health := t.c.Health.GetOverallHealth(ctx)
	checks := make(map[string]string, len(health.Checks))
	for name, check := range health.Checks {
		checks[name] = string(check.Status)
	}
	return map[string]any{"status": string(health.Status), "checks": checks}, nil
}
