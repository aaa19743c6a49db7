package mcp

import (
	"context"
	"errors"
	"log/slog"

	mcpgo "github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/middleware"

	"github.com/felixgeelhaar/studyload/adapter/cli"
	mcplocal "github.com/felixgeelhaar/studyload/adapter/mcp"
	"github.com/felixgeelhaar/studyload/internal/app"
	"github.com/felixgeelhaar/studyload/pkg/observability"
)

// NewServer builds the MCP server with every tool, resource and prompt
// registered for the configured account.
func NewServer(container *app.Container, logger *slog.Logger) (*mcpgo.Server, error) {
	if container == nil {
		return nil, errors.New("container is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	srv := mcpgo.NewServer(mcpgo.ServerInfo{
		Name:    "studyload-mcp",
		Version: cli.Version,
		Capabilities: mcpgo.Capabilities{
			Tools:     true,
			Resources: true,
			Prompts:   true,
		},
	})

	deps := mcplocal.ToolDependencies{
		Container: container,
		UserEmail: userEmail(container),
	}

	if err := mcplocal.RegisterTools(srv, deps); err != nil {
		return nil, err
	}

	if err := mcplocal.RegisterResources(srv, deps); err != nil {
		logger.Warn("failed to register MCP resources", observability.ErrorKey, err)
	}
	if err := mcplocal.RegisterPrompts(srv, deps); err != nil {
		logger.Warn("failed to register MCP prompts", observability.ErrorKey, err)
	}
	return srv, nil
}

// userEmail prefers MCP_USER_EMAIL over STUDYLOAD_USER_EMAIL.
func userEmail(c *app.Container) string {
	if c.Config == nil {
		return ""
	}
	if c.Config.MCPUserEmail != "" {
		return c.Config.MCPUserEmail
	}
	return c.Config.UserEmail
}

// Serve starts the MCP server over HTTP and blocks until ctx is canceled.
func Serve(ctx context.Context, container *app.Container, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	srv, err := NewServer(container, logger)
	if err != nil {
		return err
	}
	cfg := container.Config
	if userEmail(container) == "" {
		logger.Warn("MCP_USER_EMAIL not set; tools will fail until an account is selected")
	}

	adapter := mcpLogger{logger: logger}
	stack := middleware.DefaultStack(adapter)

	if cfg.MCPAuthToken != "" {
		authenticator := middleware.BearerTokenAuthenticator(middleware.StaticTokens(map[string]*middleware.Identity{
			cfg.MCPAuthToken: {ID: "mcp", Name: "mcp"},
		}))
		stack = append([]middleware.Middleware{middleware.Auth(authenticator, middleware.WithAuthLogger(adapter))}, stack...)
	} else {
		logger.Warn("MCP auth token not set; requests will be unauthenticated")
	}

	logger.Info("mcp server listening", "addr", cfg.MCPAddr)
	return mcpgo.ServeHTTPWithMiddleware(ctx, srv, cfg.MCPAddr, nil, mcpgo.WithMiddleware(stack...))
}

type mcpLogger struct {
	logger *slog.Logger
}

func (l mcpLogger) Info(msg string, fields ...middleware.Field) {
	l.logger.Info(msg, fieldsToArgs(fields)...)
}

func (l mcpLogger) Error(msg string, fields ...middleware.Field) {
	l.logger.Error(msg, fieldsToArgs(fields)...)
}

func (l mcpLogger) Debug(msg string, fields ...middleware.Field) {
	l.logger.Debug(msg, fieldsToArgs(fields)...)
}

func (l mcpLogger) Warn(msg string, fields ...middleware.Field) {
	l.logger.Warn(msg, fieldsToArgs(fields)...)
}

func fieldsToArgs(fields []middleware.Field) []any {
	args := make([]any, 0, len(fields)*2)
	for _, field := range fields {
		args = append(args, field.Key, field.Value)
	}
	return args
}
