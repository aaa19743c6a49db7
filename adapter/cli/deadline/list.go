package deadline

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/studyload/adapter/cli"
	"github.com/felixgeelhaar/studyload/internal/workload/application/queries"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List deadlines",
	Long:    `List every deadline, earliest due date first.`,
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.Require()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		userID, err := app.CurrentUserID(ctx)
		if err != nil {
			return err
		}

		deadlines, err := app.Container.ListDeadlinesHandler.Handle(ctx, queries.ListDeadlinesQuery{UserID: userID})
		if err != nil {
			return fmt.Errorf("failed to list deadlines: %w", err)
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, deadlines)
		}
		if len(deadlines) == 0 {
			fmt.Fprintln(out, "No deadlines found.")
			return nil
		}

		rows := make([][]string, 0, len(deadlines))
		for _, d := range deadlines {
			rows = append(rows, []string{
				d.ID.String()[:8],
				d.Title,
				d.DueDate,
				strconv.Itoa(d.EstimatedEffort) + "h",
				cli.Level(d.Importance),
			})
		}
		fmt.Fprintf(out, "Deadlines (%d):\n", len(deadlines))
		return cli.RenderTable(out, []string{"ID", "Title", "Due", "Effort", "Importance"}, rows)
	},
}
