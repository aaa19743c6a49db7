package mcp

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/studyload/adapter/cli"
	mcpinternal "github.com/felixgeelhaar/studyload/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Serve the deadline and workload tools over MCP on MCP_ADDR. The tools
act for MCP_USER_EMAIL, or STUDYLOAD_USER_EMAIL when that is unset.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.Require()
		if err != nil {
			return err
		}
		err = mcpinternal.Serve(cmd.Context(), app.Container, app.Container.Logger)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}
