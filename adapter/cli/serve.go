package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/studyload/adapter/api"
	internalApp "github.com/felixgeelhaar/studyload/internal/app"
	"github.com/felixgeelhaar/studyload/pkg/observability"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve the studyload HTTP API until interrupted. The outbox processor
runs alongside when OUTBOX_PROCESSOR_ENABLED is set; otherwise run
studyload-worker separately.

Examples:
  studyload serve
  studyload serve --addr 127.0.0.1:9090`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := Require()
		if err != nil {
			return err
		}
		c := app.Container
		ctx := cmd.Context()

		cfg := api.DefaultServerConfig()
		if c.Config.APIAddr != "" {
			cfg.Addr = c.Config.APIAddr
		}
		if serveAddr != "" {
			cfg.Addr = serveAddr
		}

		if c.Config.OutboxProcessorEnabled {
			processor, err := c.OutboxProcessor()
			if err != nil {
				return err
			}
			go processor.Start(ctx)
		}

		server := api.NewServer(cfg, api.DependenciesFrom(c), c.Logger)
		errCh := make(chan error, 1)
		go func() {
			if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("API server failed: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), internalApp.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			c.Logger.Error("API server shutdown failed", observability.ErrorKey, err)
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (defaults to API_ADDR)")
	rootCmd.AddCommand(serveCmd)
}
