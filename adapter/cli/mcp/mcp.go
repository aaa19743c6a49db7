package mcp

import "github.com/spf13/cobra"

// Cmd groups the MCP subcommands.
var Cmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose deadlines and workload scoring to AI assistants",
	Long: `Run studyload as a Model Context Protocol server. Assistants get tools
to manage deadlines and to read the dashboard, stress prediction, priorities
and stress contributors of one configured account.`,
}

func init() {
	Cmd.AddCommand(serveCmd)
}
