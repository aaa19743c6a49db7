package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/studyload/internal/app"
	mcpinternal "github.com/felixgeelhaar/studyload/internal/mcp"
	"github.com/felixgeelhaar/studyload/pkg/config"
	"github.com/felixgeelhaar/studyload/pkg/observability"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", observability.ErrorKey, err)
		os.Exit(1)
	}
	logger = observability.LoggerFor(cfg.AppEnv, cfg.LogLevel, cfg.LogFormat)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", observability.ErrorKey, err)
		os.Exit(1)
	}
	defer container.Close()

	if err := mcpinternal.Serve(ctx, container, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("mcp server error", observability.ErrorKey, err)
		os.Exit(1)
	}
}
