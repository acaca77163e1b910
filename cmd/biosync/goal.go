// ABOUTME: CLI commands for goals.
// ABOUTME: Create, list, show, complete, flag, audit, and delete goals.
package main

import (
	"fmt"
	"io"

	"github.com/harperreed/biosync/internal/goals"
	"github.com/harperreed/biosync/internal/models"
	"github.com/spf13/cobra"
)

var (
	goalTarget string
	goalUnit   string
	goalType   string
	goalDesc   string
	goalStart  string
	goalDue    string
	goalWger   int
	goalStatus string
)

var goalCmd = &cobra.Command{
	Use:     "goal",
	Aliases: []string{"g"},
	Short:   "Manage goals",
	Long: `Goals have a numeric target and advance as progress is logged.

STATUS:

  NOT_STARTED   no progress yet
  IN_PROGRESS   some progress, target not reached
  COMPLETED     target reached, or completed by hand
  STUCK         flagged by hand; the next logged progress moves it on

Use 'biosync progress log' to record progress.`,
}

var goalAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a goal",
	Long: `Create a goal.

EXAMPLES:

  biosync goal add "Run 100km" --target 100 --unit km --type Fitness
  biosync goal add "Read 12 books" --target 12 --unit books --due 2025-12-31`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := goals.GoalInput{
			Title:      args[0],
			GoalType:   models.GoalType(goalType),
			TargetUnit: goalUnit,
		}
		var err error
		if in.TargetValue, err = optionalDecimal("target", goalTarget); err != nil {
			return err
		}
		if in.StartDate, err = optionalDate("start", goalStart); err != nil {
			return err
		}
		if in.TargetDate, err = optionalDate("due", goalDue); err != nil {
			return err
		}
		if goalDesc != "" {
			desc := goalDesc
			in.Description = &desc
		}
		in.WgerExerciseID = optionalInt(cmd.Flags().Changed("wger"), goalWger)

		g, err := current.goals.CreateGoal(cmd.Context(), current.user, in)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		success.Fprintf(out, "✓ Created goal %q\n", g.Title)
		fmt.Fprintf(out, "  %s target %s %s\n", faint.Sprint(short(g.ID)), fixed(g.TargetValue), g.TargetUnit)
		return nil
	},
}

var goalListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List goals",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var status *models.GoalStatus
		if goalStatus != "" {
			st := models.GoalStatus(goalStatus)
			if !st.Valid() {
				return fmt.Errorf("unknown status: %s", goalStatus)
			}
			status = &st
		}

		list, err := current.goals.ListGoals(cmd.Context(), current.user, status)
		if err != nil {
			return fmt.Errorf("failed to list goals: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(list) == 0 {
			fmt.Fprintln(out, "No goals found.")
			return nil
		}
		for _, g := range list {
			due := ""
			if g.TargetDate != nil {
				due = "due " + g.TargetDate.String()
			}
			fmt.Fprintf(out, "%s %s %s %s/%s %s (%s%%) %s\n",
				faint.Sprint(short(g.ID)),
				padRight(string(g.Status), 11),
				padRight(truncate(g.Title, 30), 30),
				fixed(g.CurrentValue), fixed(g.TargetValue), g.TargetUnit,
				fixed(g.ProgressPercentage()),
				faint.Sprint(due))
		}
		return nil
	},
}

var goalShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a goal with its progress entries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := current.goals.GetGoal(cmd.Context(), current.user, args[0])
		if err != nil {
			return err
		}
		entries, err := current.goals.ListProgress(cmd.Context(), current.user, g.ID.String())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		printGoal(out, g)
		if len(entries) == 0 {
			fmt.Fprintln(out, "\n  No progress logged.")
			return nil
		}
		fmt.Fprintln(out)
		for _, p := range entries {
			notes := ""
			if p.Notes != nil {
				notes = faint.Sprintf(" (%s)", truncate(*p.Notes, 40))
			}
			fmt.Fprintf(out, "  %s %s %s%s\n", faint.Sprint(short(p.ID)), p.Date, fixed(p.Value), notes)
		}
		return nil
	},
}

func printGoal(out io.Writer, g *models.Goal) {
	bold.Fprintf(out, "%s\n", g.Title)
	fmt.Fprintf(out, "  %s  %s  %s\n", faint.Sprint(g.ID), g.GoalType, g.Status)
	fmt.Fprintf(out, "  %s / %s %s (%s%%)\n", fixed(g.CurrentValue), fixed(g.TargetValue), g.TargetUnit, fixed(g.ProgressPercentage()))
	if g.TargetDate != nil {
		fmt.Fprintf(out, "  %s → %s\n", g.StartDate, g.TargetDate)
	}
	if g.Description != nil {
		fmt.Fprintf(out, "  %s\n", faint.Sprint(*g.Description))
	}
}

var goalCompleteCmd = &cobra.Command{
	Use:   "complete <id>",
	Short: "Mark a goal completed regardless of progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := current.goals.CompleteGoal(cmd.Context(), current.user, args[0])
		if err != nil {
			return err
		}
		success.Fprintf(cmd.OutOrStdout(), "✓ %q completed\n", g.Title)
		return nil
	},
}

var goalStuckCmd = &cobra.Command{
	Use:   "stuck <id>",
	Short: "Flag a goal as stuck",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := current.goals.MarkStuck(cmd.Context(), current.user, args[0])
		if err != nil {
			return err
		}
		warning.Fprintf(cmd.OutOrStdout(), "! %q marked stuck\n", g.Title)
		return nil
	},
}

var goalAuditCmd = &cobra.Command{
	Use:   "audit <id>",
	Short: "Compare a goal's cached progress with its entries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := current.goals.Recompute(cmd.Context(), current.user, args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: %d entries, expected %s, cached %s\n",
			a.Goal.Title, a.Entries, fixed(a.Expected), fixed(a.Cached))
		switch {
		case a.Consistent():
			success.Fprintln(out, "✓ consistent")
		case a.Overridden:
			warning.Fprintf(out, "! drift %s (completed by hand)\n", fixed(a.Drift))
		default:
			warning.Fprintf(out, "! drift %s\n", fixed(a.Drift))
		}
		return nil
	},
}

var goalDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a goal and its progress entries",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := current.goals.DeleteGoal(cmd.Context(), current.user, args[0]); err != nil {
			return err
		}
		success.Fprintf(cmd.OutOrStdout(), "✓ Deleted goal %s\n", args[0])
		return nil
	},
}

func init() {
	goalAddCmd.Flags().StringVar(&goalTarget, "target", "", "target value (default 1)")
	goalAddCmd.Flags().StringVar(&goalUnit, "unit", "", "unit of the target, e.g. km")
	goalAddCmd.Flags().StringVar(&goalType, "type", "", "Fitness, Learning, Health, Work, Finance, or Other")
	goalAddCmd.Flags().StringVar(&goalDesc, "desc", "", "description")
	goalAddCmd.Flags().StringVar(&goalStart, "start", "", "start date YYYY-MM-DD (default today)")
	goalAddCmd.Flags().StringVar(&goalDue, "due", "", "target date YYYY-MM-DD")
	goalAddCmd.Flags().IntVar(&goalWger, "wger", 0, "wger exercise ID this goal tracks")

	goalListCmd.Flags().StringVarP(&goalStatus, "status", "s", "", "filter by status")

	goalCmd.AddCommand(goalAddCmd, goalListCmd, goalShowCmd, goalCompleteCmd, goalStuckCmd, goalAuditCmd, goalDeleteCmd)
	rootCmd.AddCommand(goalCmd)
}
