package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	workloadQueries "github.com/felixgeelhaar/studyload/internal/workload/application/queries"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the coming week's workload",
	Long: `Display the seven-day workload window starting today: how many
deadlines fall on each day and how many hours of effort they carry.

Examples:
  studyload dashboard
  studyload dashboard --json`,
	Aliases: []string{"dash", "week"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := Require()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		userID, err := app.CurrentUserID(ctx)
		if err != nil {
			return err
		}

		dashboard, err := app.Container.GetDashboardHandler.Handle(ctx, workloadQueries.GetDashboardQuery{UserID: userID})
		if err != nil {
			return fmt.Errorf("failed to load dashboard: %w", err)
		}

		out := cmd.OutOrStdout()
		if JSONOutput() {
			return PrintJSON(out, dashboard)
		}

		fmt.Fprintf(out, "Week from %s: %d upcoming deadlines, %d hours\n",
			dashboard.WindowStart, dashboard.UpcomingDeadlines, dashboard.TotalHours)

		rows := make([][]string, 0, len(dashboard.WeeklyLoad))
		for _, day := range dashboard.WeeklyLoad {
			rows = append(rows, []string{
				day.Day,
				day.Date,
				strconv.Itoa(day.Deadlines),
				strconv.Itoa(day.Hours),
			})
		}
		return RenderTable(out, []string{"Day", "Date", "Deadlines", "Hours"}, rows)
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
