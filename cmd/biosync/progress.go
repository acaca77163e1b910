// ABOUTME: CLI commands for goal progress entries.
// ABOUTME: Logging and deleting entries moves the goal through the progress ledger.
package main

import (
	"fmt"

	"github.com/harperreed/biosync/internal/models"
	"github.com/spf13/cobra"
)

var (
	progressDate  string
	progressNotes string
)

var progressCmd = &cobra.Command{
	Use:     "progress",
	Aliases: []string{"p"},
	Short:   "Log progress toward goals",
	Long: `Progress entries are dated amounts that add up to a goal's current value.

Each goal takes at most one entry per day. Entries cannot be edited: delete
the entry and log it again.`,
}

var progressLogCmd = &cobra.Command{
	Use:   "log <goal-id> <value>",
	Short: "Log progress toward a goal",
	Long: `Log progress toward a goal.

EXAMPLES:

  biosync progress log abc123 5.2
  biosync progress log abc123 10 --date 2025-06-01 --notes "long run"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := models.ParseFixed(args[1])
		if err != nil {
			return fmt.Errorf("invalid value: %s", args[1])
		}
		d, err := optionalDate("date", progressDate)
		if err != nil {
			return err
		}
		date := models.Today()
		if d != nil {
			date = *d
		}
		var notes *string
		if progressNotes != "" {
			n := progressNotes
			notes = &n
		}

		res, err := current.goals.LogProgress(cmd.Context(), current.user, args[0], date, value, notes)
		if err != nil {
			return err
		}

		g := res.Goal
		out := cmd.OutOrStdout()
		success.Fprintf(out, "✓ Logged %s on %s\n", fixed(res.Entry.Value), res.Entry.Date)
		fmt.Fprintf(out, "  %s %s: %s/%s %s (%s%%) %s\n",
			faint.Sprint(short(res.Entry.ID)), g.Title,
			fixed(g.CurrentValue), fixed(g.TargetValue), g.TargetUnit,
			fixed(g.ProgressPercentage()), g.Status)
		return nil
	},
}

var progressListCmd = &cobra.Command{
	Use:     "list [goal-id]",
	Aliases: []string{"ls"},
	Short:   "List progress entries",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		goalID := ""
		if len(args) == 1 {
			goalID = args[0]
		}
		entries, err := current.goals.ListProgress(cmd.Context(), current.user, goalID)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintln(out, "No progress entries found.")
			return nil
		}
		for _, p := range entries {
			notes := ""
			if p.Notes != nil {
				notes = faint.Sprintf(" (%s)", truncate(*p.Notes, 40))
			}
			fmt.Fprintf(out, "%s %s goal %s %s%s\n",
				faint.Sprint(short(p.ID)), p.Date, faint.Sprint(short(p.GoalID)), fixed(p.Value), notes)
		}
		return nil
	},
}

var progressDeleteCmd = &cobra.Command{
	Use:     "delete <entry-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a progress entry and roll its goal back",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := current.goals.DeleteProgress(cmd.Context(), current.user, args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		success.Fprintf(out, "✓ Deleted progress entry %s\n", args[0])
		fmt.Fprintf(out, "  %s: %s/%s %s %s\n", g.Title, fixed(g.CurrentValue), fixed(g.TargetValue), g.TargetUnit, g.Status)
		return nil
	},
}

var progressUpdateCmd = &cobra.Command{
	Use:    "update <entry-id> <value>",
	Short:  "Not supported: delete the entry and log it again",
	Hidden: true,
	Args:   cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := models.ParseFixed(args[1])
		if err != nil {
			return fmt.Errorf("invalid value: %s", args[1])
		}
		_, err = current.goals.UpdateProgress(cmd.Context(), current.user, args[0], value, nil)
		return err
	},
}

func init() {
	progressLogCmd.Flags().StringVar(&progressDate, "date", "", "date YYYY-MM-DD (default today)")
	progressLogCmd.Flags().StringVar(&progressNotes, "notes", "", "notes for the entry")

	progressCmd.AddCommand(progressLogCmd, progressListCmd, progressDeleteCmd, progressUpdateCmd)
	rootCmd.AddCommand(progressCmd)
}
