package deadline

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/studyload/adapter/cli"
	"github.com/felixgeelhaar/studyload/internal/shared/infrastructure/security"
	"github.com/felixgeelhaar/studyload/internal/workload/application/queries"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export deadlines as an iCalendar file",
	Long: `Export your deadlines as all-day events in iCalendar (.ics) format for
import into Google Calendar, Outlook, Apple Calendar and others.

Examples:
  studyload deadline export              # Export to stdout
  studyload deadline export -o due.ics   # Export to file`,
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

		doc, err := app.Container.ExportCalendarHandler.Handle(ctx, queries.ExportCalendarQuery{UserID: userID})
		if err != nil {
			return fmt.Errorf("failed to export deadlines: %w", err)
		}

		if exportOutput == "" {
			_, err := cmd.OutOrStdout().Write(doc)
			return err
		}
		path, err := security.SafeWriteFile(exportOutput, doc)
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", exportOutput, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported deadlines to %s\n", path)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
}
