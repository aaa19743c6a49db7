package deadline

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/studyload/adapter/cli"
	"github.com/felixgeelhaar/studyload/internal/workload/application/commands"
)

var (
	updateTitle      string
	updateDue        string
	updateEffort     int
	updateImportance string
)

var updateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Change a deadline",
	Long: `Change one or more fields of a deadline. Fields without a flag keep
their current value. The id may be shortened to a unique prefix.

Examples:
  studyload deadline update 3f2a --due 2026-11-05
  studyload deadline update 3f2a --effort 8 -i high`,
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
		id, err := resolveID(ctx, app, userID, args[0])
		if err != nil {
			return err
		}

		update := commands.UpdateDeadlineCommand{UserID: userID, DeadlineID: id}
		flags := cmd.Flags()
		if flags.Changed("title") {
			update.Title = &updateTitle
		}
		if flags.Changed("due") {
			due, err := cli.ParseDate("due", updateDue)
			if err != nil {
				return err
			}
			update.DueDate = &due
		}
		if flags.Changed("effort") {
			update.EstimatedEffort = &updateEffort
		}
		if flags.Changed("importance") {
			update.Importance = &updateImportance
		}

		if err := app.Container.UpdateDeadlineHandler.Handle(ctx, update); err != nil {
			return fmt.Errorf("failed to update deadline: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deadline updated: %s\n", id)
		return nil
	},
}

func init() {
	updateCmd.Flags().StringVarP(&updateTitle, "title", "t", "", "new title")
	updateCmd.Flags().StringVar(&updateDue, "due", "", "new due date (YYYY-MM-DD)")
	updateCmd.Flags().IntVarP(&updateEffort, "effort", "e", 0, "new estimated effort in hours")
	updateCmd.Flags().StringVarP(&updateImportance, "importance", "i", "", "new importance (low, medium, high)")
}
