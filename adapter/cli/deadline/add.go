package deadline

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/studyload/adapter/cli"
	"github.com/felixgeelhaar/studyload/internal/workload/application/commands"
)

var (
	dueDate    string
	effort     int
	importance string
)

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a deadline",
	Long: `Add a deadline with a due date, estimated effort in hours and an
importance level.

Examples:
  studyload deadline add "Thesis draft" --due 2026-11-02 --effort 12 -i high
  studyload deadline add "Reading notes" --due 2026-10-21`,
	Args: cobra.ExactArgs(1),
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

		due, err := cli.ParseDate("due", dueDate)
		if err != nil {
			return err
		}

		result, err := app.Container.CreateDeadlineHandler.Handle(ctx, commands.CreateDeadlineCommand{
			UserID:          userID,
			Title:           args[0],
			DueDate:         due,
			EstimatedEffort: effort,
			Importance:      importance,
		})
		if err != nil {
			return fmt.Errorf("failed to add deadline: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Deadline added: %s\n", result.DeadlineID)
		fmt.Fprintf(out, "  title: %s\n", args[0])
		fmt.Fprintf(out, "  due: %s\n", due.Format("2006-01-02"))
		fmt.Fprintf(out, "  effort: %dh, importance: %s\n", effort, cli.Level(importance))
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&dueDate, "due", "", "due date (YYYY-MM-DD)")
	addCmd.Flags().IntVarP(&effort, "effort", "e", 0, "estimated effort in hours")
	addCmd.Flags().StringVarP(&importance, "importance", "i", "medium", "importance (low, medium, high)")
	_ = addCmd.MarkFlagRequired("due")
}
