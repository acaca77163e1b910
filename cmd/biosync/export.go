// ABOUTME: CLI commands for exporting and importing biosync data.
// ABOUTME: JSON round-trips through import; YAML is for reading.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export your data",
	Long: `Export all of the current user's data.

FORMATS:

  json   Full export, restorable with 'biosync import'
  yaml   Human-readable summary with volumes and goal percentages

EXAMPLES:

  biosync export json -o backup.json
  biosync export yaml`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml"},
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			data []byte
			err  error
		)
		switch args[0] {
		case "json":
			data, err = current.db.ExportJSON(cmd.Context(), current.user)
		case "yaml":
			data, err = current.db.ExportYAML(cmd.Context(), current.user)
		default:
			return fmt.Errorf("unknown format: %s (use json or yaml)", args[0])
		}
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			success.Fprintf(cmd.OutOrStdout(), "✓ Exported to %s\n", exportOutput)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import data from a JSON export",
	Long: `Import a JSON export as the current user, whichever user the file
names. The import is all-or-nothing: if any row is invalid or conflicts with
existing data, nothing is imported. Goal totals are recomputed from their
progress entries.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(args[0], cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		if err := current.importer.ImportJSON(cmd.Context(), current.user, data); err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
		success.Fprintf(cmd.OutOrStdout(), "✓ Imported from %s\n", args[0])
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
