// ABOUTME: CLI commands for viewing and changing biosync configuration.
// ABOUTME: Runs without opening the database.
package main

import (
	"fmt"

	"github.com/harperreed/biosync/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:         "config",
	Short:       "View or change configuration",
	Annotations: map[string]string{skipStorage: "true"},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "config     %s\n", config.GetConfigPath())
		fmt.Fprintf(out, "user       %s\n", cfg.GetUser())
		fmt.Fprintf(out, "data_dir   %s\n", cfg.GetDataDir())
		fmt.Fprintf(out, "database   %s\n", cfg.DBPath())
		fmt.Fprintf(out, "log_level  %s\n", cfg.GetLogLevel())
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value. Keys: user, data_dir, log_level.

EXAMPLES:

  biosync config set user alice
  biosync config set data_dir ~/Dropbox/biosync
  biosync config set log_level debug`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := cfg.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		success.Fprintf(cmd.OutOrStdout(), "✓ %s = %s\n", args[0], args[1])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}
