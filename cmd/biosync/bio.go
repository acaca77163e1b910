// ABOUTME: CLI commands for biometric readings.
// ABOUTME: Add, list, show the latest, and delete vitals.
package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/harperreed/biosync/internal/biometrics"
	"github.com/harperreed/biosync/internal/models"
	"github.com/spf13/cobra"
)

var (
	bioAt         string
	bioWeight     string
	bioSleep      string
	bioSleepScore int
	bioRHR        int
	bioHRV        int
	bioReadiness  int
	bioLimit      int
)

var bioCmd = &cobra.Command{
	Use:     "bio",
	Aliases: []string{"b"},
	Short:   "Record and review biometrics",
}

var bioAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a biometric reading",
	Long: `Record one reading. Give at least one measurement.

EXAMPLES:

  biosync bio add --weight 81.4
  biosync bio add --sleep 7.5 --sleep-score 84 --rhr 52 --hrv 61
  biosync bio add --readiness 77 --at "2025-06-01 06:30"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		in := biometrics.Input{
			SleepScore:           optionalInt(flags.Changed("sleep-score"), bioSleepScore),
			RestingHeartRate:     optionalInt(flags.Changed("rhr"), bioRHR),
			HeartRateVariability: optionalInt(flags.Changed("hrv"), bioHRV),
			ReadinessScore:       optionalInt(flags.Changed("readiness"), bioReadiness),
		}
		var err error
		if in.Timestamp, err = optionalTime("at", bioAt); err != nil {
			return err
		}
		if in.RecordedWeightKg, err = optionalDecimal("weight", bioWeight); err != nil {
			return err
		}
		if in.SleepDurationHours, err = optionalDecimal("sleep", bioSleep); err != nil {
			return err
		}

		b, err := current.bio.Record(cmd.Context(), current.user, in)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		success.Fprintln(out, "✓ Recorded biometrics")
		fmt.Fprintf(out, "  %s %s\n", faint.Sprint(short(b.ID)), describeReading(b))
		return nil
	},
}

// describeReading renders the measurements present on b.
func describeReading(b *models.BiometricData) string {
	var parts []string
	if b.RecordedWeightKg != nil {
		parts = append(parts, fmt.Sprintf("weight %s kg", fixed(*b.RecordedWeightKg)))
	}
	if b.SleepDurationHours != nil {
		parts = append(parts, fmt.Sprintf("sleep %s h", fixed(*b.SleepDurationHours)))
	}
	if b.SleepScore != nil {
		parts = append(parts, fmt.Sprintf("sleep score %d", *b.SleepScore))
	}
	if b.RestingHeartRate != nil {
		parts = append(parts, fmt.Sprintf("rhr %d bpm", *b.RestingHeartRate))
	}
	if b.HeartRateVariability != nil {
		parts = append(parts, fmt.Sprintf("hrv %d ms", *b.HeartRateVariability))
	}
	if b.ReadinessScore != nil {
		parts = append(parts, fmt.Sprintf("readiness %d", *b.ReadinessScore))
	}
	return strings.Join(parts, ", ")
}

func printReading(out io.Writer, b *models.BiometricData) {
	fmt.Fprintf(out, "%s %s %s\n",
		faint.Sprint(short(b.ID)),
		faint.Sprint(b.Timestamp.Local().Format("2006-01-02 15:04")),
		describeReading(b))
}

var bioListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List recent readings",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := current.bio.List(cmd.Context(), current.user, bioLimit)
		if err != nil {
			return fmt.Errorf("failed to list biometrics: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(list) == 0 {
			fmt.Fprintln(out, "No biometric readings found.")
			return nil
		}
		for _, b := range list {
			printReading(out, b)
		}
		return nil
	},
}

var bioLatestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Show the most recent reading",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := current.bio.Latest(cmd.Context(), current.user)
		if err != nil {
			return err
		}
		printReading(cmd.OutOrStdout(), b)
		return nil
	},
}

var bioDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a reading",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := current.bio.Delete(cmd.Context(), current.user, args[0]); err != nil {
			return err
		}
		success.Fprintf(cmd.OutOrStdout(), "✓ Deleted reading %s\n", args[0])
		return nil
	},
}

func init() {
	f := bioAddCmd.Flags()
	f.StringVar(&bioAt, "at", "", "timestamp (YYYY-MM-DD HH:MM, default now)")
	f.StringVar(&bioWeight, "weight", "", "body weight in kg")
	f.StringVar(&bioSleep, "sleep", "", "hours slept")
	f.IntVar(&bioSleepScore, "sleep-score", 0, "sleep score 0-100")
	f.IntVar(&bioRHR, "rhr", 0, "resting heart rate in bpm")
	f.IntVar(&bioHRV, "hrv", 0, "heart rate variability in ms")
	f.IntVar(&bioReadiness, "readiness", 0, "readiness score 0-100")

	bioListCmd.Flags().IntVarP(&bioLimit, "limit", "n", 20, "max number of results")

	bioCmd.AddCommand(bioAddCmd, bioListCmd, bioLatestCmd, bioDeleteCmd)
	rootCmd.AddCommand(bioCmd)
}
