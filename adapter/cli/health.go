package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/studyload/pkg/observability"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the database, cache and broker connections",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := Require()
		if err != nil {
			return err
		}
		health := app.Container.Health.GetOverallHealth(cmd.Context())

		out := cmd.OutOrStdout()
		if JSONOutput() {
			return PrintJSON(out, health)
		}

		names := make([]string, 0, len(health.Checks))
		for name := range health.Checks {
			names = append(names, name)
		}
		sort.Strings(names)

		rows := make([][]string, 0, len(names))
		for _, name := range names {
			check := health.Checks[name]
			rows = append(rows, []string{name, statusLabel(check.Status), check.Message})
		}
		if err := RenderTable(out, []string{"Component", "Status", "Detail"}, rows); err != nil {
			return err
		}
		fmt.Fprintf(out, "overall: %s\n", statusLabel(health.Status))
		if health.Status == observability.HealthStatusUnhealthy {
			return errors.New("unhealthy")
		}
		return nil
	},
}

func statusLabel(s observability.HealthStatus) string {
	switch s {
	case observability.HealthStatusHealthy:
		return lowColor.Sprint(s)
	case observability.HealthStatusDegraded:
		return mediumColor.Sprint(s)
	default:
		return highColor.Sprint(s)
	}
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
