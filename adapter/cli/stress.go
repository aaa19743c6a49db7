package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	workloadQueries "github.com/felixgeelhaar/studyload/internal/workload/application/queries"
)

const contributorsBarSize = 20

var (
	stressLoadFile   string
	contributorsFile string
	prioritiesFile   string
)

var stressCmd = &cobra.Command{
	Use:   "stress",
	Short: "Predict this week's stress",
	Long: `Score each day of the coming week and the week as a whole, classify
the risk and explain the result.

By default the stored deadlines are used. --file scores a JSON array of
seven {"day","deadlines","hours"} entries instead, one per weekday Mon..Sun.

Examples:
  studyload stress
  studyload stress --file week.json`,
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

		query := workloadQueries.PredictStressQuery{UserID: userID}
		if stressLoadFile != "" {
			if query.WeeklyLoad, err = readWeeklyLoadFile(stressLoadFile); err != nil {
				return err
			}
		}

		prediction, err := app.Container.PredictStressHandler.Handle(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to predict stress: %w", err)
		}

		out := cmd.OutOrStdout()
		if JSONOutput() {
			return PrintJSON(out, prediction)
		}

		fmt.Fprintf(out, "Weekly stress: %d/100 (%s risk), peak day: %s\n",
			prediction.WeeklyStressScore, Level(prediction.RiskLevel), prediction.PeakStressDay)

		rows := make([][]string, 0, len(prediction.DailyStress))
		for _, d := range prediction.DailyStress {
			rows = append(rows, []string{
				d.Day,
				strconv.Itoa(d.AbsoluteStress),
				strconv.Itoa(d.StressLevel) + "%",
				strconv.Itoa(d.Deadlines),
				strconv.Itoa(d.Hours),
			})
		}
		if err := RenderTable(out, []string{"Day", "Stress", "Share", "Deadlines", "Hours"}, rows); err != nil {
			return err
		}
		fmt.Fprintln(out, prediction.Explanation)
		return nil
	},
}

var contributorsCmd = &cobra.Command{
	Use:   "contributors",
	Short: "Show which deadlines drive your stress",
	Long: `Attribute this week's stress to individual deadlines as percentages.

Examples:
  studyload contributors
  studyload contributors --file deadlines.json`,
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

		query := workloadQueries.StressContributorsQuery{UserID: userID}
		if contributorsFile != "" {
			if query.Deadlines, err = readDeadlineFile(contributorsFile); err != nil {
				return err
			}
		}

		report, err := app.Container.StressContributorsHandler.Handle(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to analyze contributors: %w", err)
		}

		out := cmd.OutOrStdout()
		if JSONOutput() {
			return PrintJSON(out, report)
		}
		if len(report.Contributors) == 0 {
			fmt.Fprintln(out, "Nothing is adding to your stress right now.")
			return nil
		}

		rows := make([][]string, 0, len(report.Contributors))
		for _, c := range report.Contributors {
			rows = append(rows, []string{
				c.Title,
				c.DueDate,
				strconv.Itoa(c.Contribution) + "%",
				Bar(c.Contribution, contributorsBarSize),
			})
		}
		return RenderTable(out, []string{"Deadline", "Due", "Share", ""}, rows)
	},
}

var prioritiesCmd = &cobra.Command{
	Use:   "priorities",
	Short: "Rank deadlines by what to work on first",
	Long: `Rank deadlines by urgency, importance and effort and explain each
position.

Examples:
  studyload priorities
  studyload priorities --file deadlines.json`,
	Aliases: []string{"prio", "next"},
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

		query := workloadQueries.RankPrioritiesQuery{UserID: userID}
		if prioritiesFile != "" {
			if query.Deadlines, err = readDeadlineFile(prioritiesFile); err != nil {
				return err
			}
		}

		ranked, err := app.Container.RankPrioritiesHandler.Handle(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to rank priorities: %w", err)
		}

		out := cmd.OutOrStdout()
		if JSONOutput() {
			return PrintJSON(out, ranked)
		}
		if len(ranked) == 0 {
			fmt.Fprintln(out, "No deadlines to rank.")
			return nil
		}

		rows := make([][]string, 0, len(ranked))
		for _, p := range ranked {
			rows = append(rows, []string{
				strconv.Itoa(p.Rank),
				p.Title,
				p.DueDate,
				strconv.Itoa(p.Score),
				p.Reason,
			})
		}
		return RenderTable(out, []string{"#", "Deadline", "Due", "Score", "Why"}, rows)
	},
}

func init() {
	stressCmd.Flags().StringVarP(&stressLoadFile, "file", "f", "", "JSON file with a seven-day weekly load")
	contributorsCmd.Flags().StringVarP(&contributorsFile, "file", "f", "", "JSON file with deadlines to analyze instead of the stored ones")
	prioritiesCmd.Flags().StringVarP(&prioritiesFile, "file", "f", "", "JSON file with deadlines to rank instead of the stored ones")

	rootCmd.AddCommand(stressCmd)
	rootCmd.AddCommand(contributorsCmd)
	rootCmd.AddCommand(prioritiesCmd)
}
