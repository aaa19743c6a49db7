package user

import (
	"github.com/spf13/cobra"
)

// Cmd is the account command group
var Cmd = &cobra.Command{
	Use:   "user",
	Short: "Manage your account",
	Long:  `Register the account the CLI acts for and inspect or change it.`,
}

func init() {
	Cmd.AddCommand(registerCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(updateCmd)
}
