package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/studyload/internal/shared/infrastructure/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Long: `Bring the configured database (PostgreSQL via DATABASE_URL, or the
local SQLite file) up to the latest schema. Migrations are idempotent.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := Require()
		if err != nil {
			return err
		}
		c := app.Container
		if err := migrations.Up(cmd.Context(), c.DB, c.Config.DatabaseURL, c.Logger); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s schema is up to date\n", c.DB.Driver())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
