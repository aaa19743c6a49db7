package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/studyload/adapter/cli"
	"github.com/felixgeelhaar/studyload/adapter/cli/deadline"
	"github.com/felixgeelhaar/studyload/adapter/cli/mcp"
	"github.com/felixgeelhaar/studyload/adapter/cli/user"
	"github.com/felixgeelhaar/studyload/internal/app"
	"github.com/felixgeelhaar/studyload/pkg/config"
	"github.com/felixgeelhaar/studyload/pkg/observability"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", observability.ErrorKey, err)
		os.Exit(1)
	}
	if cfg.LogLevel == "" {
		// Keep the terminal quiet unless asked otherwise.
		cfg.LogLevel = string(observability.LogLevelWarn)
	}
	logger = observability.LoggerFor(cfg.AppEnv, cfg.LogLevel, cfg.LogFormat)
	cli.SetLogger(logger)

	var cliApp *cli.App
	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		if !cfg.IsDevelopment() {
			logger.Error("failed to initialize container", observability.ErrorKey, err)
			os.Exit(1)
		}
		// version and help still work without a database
		logger.Warn("failed to initialize container, running in limited mode", observability.ErrorKey, err)
	} else {
		defer container.Close()
		cliApp = cli.NewApp(container)
	}
	cli.SetApp(cliApp)

	cli.AddCommand(deadline.Cmd)
	cli.AddCommand(user.Cmd)
	cli.AddCommand(mcp.Cmd)

	cli.Execute(ctx)
}
