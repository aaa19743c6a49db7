package deadline

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/studyload/adapter/cli"
	"github.com/felixgeelhaar/studyload/internal/workload/application/commands"
)

var deleteCmd = &cobra.Command{
	Use:     "delete [id]",
	Aliases: []string{"rm"},
	Short:   "Delete a deadline",
	Args:    cobra.ExactArgs(1),
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

		if err := app.Container.DeleteDeadlineHandler.Handle(ctx, commands.DeleteDeadlineCommand{UserID: userID, DeadlineID: id}); err != nil {
			return fmt.Errorf("failed to delete deadline: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deadline deleted: %s\n", id)
		return nil
	},
}
