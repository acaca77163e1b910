// ABOUTME: CLI command for training and goal rollups.
// ABOUTME: Prints workout totals by activity, goal counts, and latest vitals.
package main

import (
	"fmt"
	"time"

	"github.com/harperreed/biosync/internal/models"
	"github.com/spf13/cobra"
)

var statsDays int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show workout totals, goal status, and latest vitals",
	Long: `Show a dashboard of training volume, goals, and vitals.

EXAMPLES:

  biosync stats            # All time
  biosync stats --days 30  # Last 30 days of workouts`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var since *time.Time
		if statsDays > 0 {
			t := time.Now().AddDate(0, 0, -statsDays)
			since = &t
		}

		dash, err := current.reports.Dashboard(cmd.Context(), current.user, since)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		w := dash.Workouts
		bold.Fprintln(out, "Workouts")
		fmt.Fprintf(out, "  %d workouts, %d sets, %s kg volume\n", w.TotalWorkouts, w.TotalSets, fixed(w.TotalVolumeKg))
		for _, a := range w.ByActivity {
			fmt.Fprintf(out, "  %s %3d workouts %4d sets %s kg\n",
				padRight(string(a.ActivityType), 14), a.TotalWorkouts, a.TotalSets, fixed(a.TotalVolumeKg))
		}

		bold.Fprintln(out, "\nGoals")
		fmt.Fprintf(out, "  %d total\n", dash.Goals.Total)
		for _, st := range models.AllGoalStatuses {
			fmt.Fprintf(out, "  %s %d\n", padRight(string(st), 12), dash.Goals.ByStatus[st])
		}

		bold.Fprintln(out, "\nLatest vitals")
		if dash.LatestVitals == nil {
			fmt.Fprintln(out, "  none recorded")
		} else {
			fmt.Fprintf(out, "  ")
			printReading(out, dash.LatestVitals)
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().IntVar(&statsDays, "days", 0, "only count workouts from the last N days")
	rootCmd.AddCommand(statsCmd)
}
