package user

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/studyload/adapter/cli"
	"github.com/felixgeelhaar/studyload/internal/identity/application/commands"
	"github.com/felixgeelhaar/studyload/internal/identity/application/queries"
)

var showCmd = &cobra.Command{
	Use:     "show",
	Aliases: []string{"whoami"},
	Short:   "Show the selected account",
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
		user, err := app.Container.GetUserHandler.Handle(ctx, queries.GetUserQuery{UserID: userID})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, user)
		}
		fmt.Fprintf(out, "%s <%s>\n", user.Name, user.Email)
		fmt.Fprintf(out, "  id: %s\n", user.ID)
		fmt.Fprintf(out, "  member since: %s\n", user.CreatedAt.Format("2006-01-02"))
		return nil
	},
}

var (
	newName  string
	newEmail string
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Change the selected account's name or email",
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
		current, err := app.Container.GetUserHandler.Handle(ctx, queries.GetUserQuery{UserID: userID})
		if err != nil {
			return err
		}

		update := commands.UpdateProfileCommand{UserID: userID, Name: current.Name, Email: current.Email}
		if cmd.Flags().Changed("name") {
			update.Name = newName
		}
		if cmd.Flags().Changed("email") {
			update.Email = newEmail
		}

		result, err := app.Container.UpdateProfileHandler.Handle(ctx, update)
		if err != nil {
			return fmt.Errorf("failed to update account: %w", err)
		}
		out := cmd.OutOrStdout()
		if !result.Changed {
			fmt.Fprintln(out, "Nothing to change.")
			return nil
		}
		fmt.Fprintf(out, "Account updated: %s <%s>\n", result.Name, result.Email)
		return nil
	},
}

func init() {
	updateCmd.Flags().StringVarP(&newName, "name", "n", "", "new display name")
	updateCmd.Flags().StringVarP(&newEmail, "email", "e", "", "new email address")
}
