// ABOUTME: CLI commands for workouts.
// ABOUTME: Records whole sessions from JSON and lists, shows, and deletes them.
package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/harperreed/biosync/internal/models"
	"github.com/harperreed/biosync/internal/report"
	"github.com/harperreed/biosync/internal/storage"
	"github.com/harperreed/biosync/internal/workouts"
	"github.com/spf13/cobra"
)

var (
	workoutFile  string
	workoutType  string
	workoutSince string
	workoutLimit int
)

var workoutCmd = &cobra.Command{
	Use:     "workout",
	Aliases: []string{"w"},
	Short:   "Record and review workouts",
}

var workoutAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a workout from JSON",
	Long: `Record a complete workout, with its exercises and sets, in one step.
Either everything is saved or nothing is.

INPUT FORMAT:

  {
    "title": "Leg day",
    "start_time": "2025-06-01T07:00:00Z",
    "end_time": "2025-06-01T08:15:00Z",
    "activity_type": "weightlifting",
    "exercises": [
      {
        "custom_name": "Back Squat",
        "sets": [
          {"set_number": 1, "weight_kg": "100", "repetitions": 5},
          {"set_number": 2, "weight_kg": "102.5", "repetitions": 5, "rpe": 8}
        ]
      }
    ]
  }

EXAMPLES:

  biosync workout add --file session.json
  cat session.json | biosync workout add --file -`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readInput(workoutFile, cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read workout: %w", err)
		}
		var in workouts.WorkoutInput
		if err := json.Unmarshal(raw, &in); err != nil {
			return fmt.Errorf("invalid workout JSON: %w", err)
		}

		w, err := current.workouts.Build(cmd.Context(), current.user, in)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		success.Fprintf(out, "✓ Recorded %s workout\n", w.ActivityType)
		fmt.Fprintf(out, "  %s %d exercises, %s kg volume\n",
			faint.Sprint(short(w.ID)), len(w.Exercises), fixed(report.WorkoutVolume(w)))
		return nil
	},
}

var workoutListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List recent workouts",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := storage.WorkoutFilter{Limit: workoutLimit}
		if workoutType != "" {
			if !models.IsValidActivityType(workoutType) {
				return fmt.Errorf("unknown activity type: %s", workoutType)
			}
			at := models.ActivityType(workoutType)
			filter.ActivityType = &at
		}
		since, err := optionalTime("since", workoutSince)
		if err != nil {
			return err
		}
		filter.Since = since

		list, err := current.workouts.List(cmd.Context(), current.user, filter)
		if err != nil {
			return fmt.Errorf("failed to list workouts: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(list) == 0 {
			fmt.Fprintln(out, "No workouts found.")
			return nil
		}
		for _, w := range list {
			title := ""
			if w.Title != nil {
				title = truncate(*w.Title, 30)
			}
			duration := ""
			if w.DurationMinutes != nil {
				duration = fmt.Sprintf("%dm", *w.DurationMinutes)
			}
			fmt.Fprintf(out, "%s %s %s %s %s\n",
				faint.Sprint(short(w.ID)),
				faint.Sprint(w.StartTime.Local().Format("2006-01-02 15:04")),
				padRight(string(w.ActivityType), 14),
				padRight(duration, 5),
				title)
		}
		return nil
	},
}

var workoutShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a workout with its exercises and sets",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := current.workouts.Get(cmd.Context(), current.user, args[0])
		if err != nil {
			return err
		}
		printWorkout(cmd.OutOrStdout(), w)
		return nil
	},
}

func printWorkout(out io.Writer, w *models.Workout) {
	title := string(w.ActivityType)
	if w.Title != nil {
		title = *w.Title
	}
	bold.Fprintf(out, "%s\n", title)
	fmt.Fprintf(out, "  %s  %s  %s\n", faint.Sprint(w.ID), w.ActivityType, w.StartTime.Local().Format("2006-01-02 15:04"))
	if w.DurationMinutes != nil {
		fmt.Fprintf(out, "  duration %d min\n", *w.DurationMinutes)
	}
	if w.Notes != "" {
		fmt.Fprintf(out, "  %s\n", faint.Sprint(w.Notes))
	}

	for _, e := range w.Exercises {
		fmt.Fprintf(out, "\n  %s\n", bold.Sprint(e.CustomName))
		for _, s := range e.Sets {
			extra := ""
			if s.RPE != nil {
				extra += fmt.Sprintf(" @%d", *s.RPE)
			}
			if s.ToFailure {
				extra += " (failure)"
			}
			fmt.Fprintf(out, "    %d. %s kg x %d%s\n", s.SetNumber, fixed(s.WeightKg), s.Repetitions, extra)
		}
	}
	fmt.Fprintf(out, "\n  volume %s kg\n", fixed(report.WorkoutVolume(w)))
}

var workoutDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a workout and everything under it",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := current.workouts.Delete(cmd.Context(), current.user, args[0]); err != nil {
			return err
		}
		success.Fprintf(cmd.OutOrStdout(), "✓ Deleted workout %s\n", args[0])
		return nil
	},
}

func init() {
	workoutAddCmd.Flags().StringVarP(&workoutFile, "file", "f", "-", "JSON file to read (- for stdin)")
	workoutListCmd.Flags().StringVarP(&workoutType, "type", "t", "", "filter by activity type")
	workoutListCmd.Flags().StringVar(&workoutSince, "since", "", "only workouts starting at or after this time")
	workoutListCmd.Flags().IntVarP(&workoutLimit, "limit", "n", 20, "max number of results")

	workoutCmd.AddCommand(workoutAddCmd, workoutListCmd, workoutShowCmd, workoutDeleteCmd)
	rootCmd.AddCommand(workoutCmd)
}
