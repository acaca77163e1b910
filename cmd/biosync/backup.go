// ABOUTME: CLI commands for Charm Cloud backups.
// ABOUTME: Push, list, restore, and prune per-user snapshots; link devices and wipe.
package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/charmbracelet/charm/kv"
	"github.com/harperreed/biosync/internal/charm"
	"github.com/spf13/cobra"
)

var (
	backupClient *charm.Client
	pushKeep     int
	pruneKeep    int
)

// openBackups initializes the Charm client on first use.
func openBackups() (*charm.Client, error) {
	if backupClient != nil {
		return backupClient, nil
	}
	c, err := charm.InitClient()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize charm client: %w", err)
	}
	backupClient = c
	return c, nil
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Back up data to Charm Cloud",
	Long: `Store snapshots of your data in Charm Cloud.

Snapshots are E2E encrypted with your SSH key before upload. Each snapshot is
a full JSON export of the current user's data.

GETTING STARTED:

  1. Link your device (creates/uses SSH key automatically):
     biosync backup link

  2. Push a snapshot:
     biosync backup push

  3. On another device, link the same account and restore:
     biosync backup restore

COMMANDS:

  link        Link this device to your Charm account
  unlink      Disconnect this device from Charm
  status      Show account and snapshot info
  push        Store a snapshot of your data
  list        List snapshots, newest first
  restore     Import a snapshot into the local database
  prune       Delete all but the newest snapshots
  wipe        Delete cloud and local snapshots (destructive)`,
}

func runCharm(action string) error {
	c := exec.Command("charm", action)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	return c.Run()
}

var backupLinkCmd = &cobra.Command{
	Use:         "link",
	Short:       "Link this device to Charm",
	Annotations: map[string]string{skipStorage: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runCharm("link"); err != nil {
			return fmt.Errorf("failed to link: %w\n\nMake sure 'charm' CLI is installed: go install github.com/charmbracelet/charm@latest", err)
		}
		success.Fprintln(cmd.OutOrStdout(), "\n✓ Device linked to Charm")

		c, err := openBackups()
		if err != nil {
			return err
		}
		if err := c.Sync(); err != nil {
			warning.Fprintf(cmd.OutOrStdout(), "⚠ Initial sync failed: %v\n", err)
		}
		return nil
	},
}

var backupUnlinkCmd = &cobra.Command{
	Use:         "unlink",
	Short:       "Disconnect from Charm",
	Annotations: map[string]string{skipStorage: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runCharm("unlink"); err != nil {
			return fmt.Errorf("failed to unlink: %w", err)
		}
		success.Fprintln(cmd.OutOrStdout(), "✓ Device unlinked from Charm")
		fmt.Fprintln(cmd.OutOrStdout(), "Your local data is preserved.")
		return nil
	},
}

var backupStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show account and snapshot info",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		c, err := openBackups()
		if err != nil {
			return err
		}
		id, err := c.ID()
		if err != nil {
			warning.Fprintln(out, "Not linked to Charm")
			fmt.Fprintln(out, "\nRun 'biosync backup link' to connect to Charm.")
			return nil
		}

		snaps, err := c.List(current.user)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "Charm ID:", id)
		fmt.Fprintln(out, "User:", current.user)
		if c.IsReadOnly() {
			warning.Fprintln(out, "Read-only: another process holds the backup store")
		}
		fmt.Fprintf(out, "Snapshots: %d\n", len(snaps))
		if len(snaps) > 0 {
			fmt.Fprintf(out, "Latest: %s\n", snaps[0].Taken.Local().Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

var backupPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Store a snapshot of your data",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openBackups()
		if err != nil {
			return err
		}
		data, err := current.db.GetAllData(cmd.Context(), current.user)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		snap, err := c.Push(data)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		success.Fprintf(out, "✓ Pushed snapshot %s\n", snap.Stamp())
		fmt.Fprintf(out, "  %d workouts, %d goals, %d progress entries, %d readings (%d bytes)\n",
			len(data.Workouts), len(data.Goals), len(data.Progress), len(data.Biometrics), snap.Size)

		if pushKeep > 0 {
			removed, err := c.Prune(current.user, pushKeep)
			if err != nil {
				return err
			}
			if removed > 0 {
				fmt.Fprintf(out, "  pruned %d old snapshots\n", removed)
			}
		}
		return nil
	},
}

var backupListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List snapshots, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openBackups()
		if err != nil {
			return err
		}
		snaps, err := c.List(current.user)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(snaps) == 0 {
			fmt.Fprintln(out, "No snapshots found.")
			return nil
		}
		for _, s := range snaps {
			fmt.Fprintf(out, "%s %s %d bytes\n",
				faint.Sprint(s.Stamp()), s.Taken.Local().Format("2006-01-02 15:04:05"), s.Size)
		}
		return nil
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore [stamp-prefix]",
	Short: "Import a snapshot into the local database",
	Long: `Import a snapshot into the local database. Without an argument the
newest snapshot is used. Restore into an empty database: like 'biosync import',
the restore is all-or-nothing and fails if any row already exists. Goal
totals are recomputed from their progress entries.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openBackups()
		if err != nil {
			return err
		}
		prefix := ""
		if len(args) == 1 {
			prefix = args[0]
		}
		data, err := c.Fetch(current.user, prefix)
		if err != nil {
			return err
		}
		if err := current.importer.Import(cmd.Context(), current.user, data); err != nil {
			return fmt.Errorf("restore failed: %w", err)
		}
		success.Fprintf(cmd.OutOrStdout(), "✓ Restored snapshot from %s\n", data.ExportedAt.Local().Format("2006-01-02 15:04:05"))
		return nil
	},
}

var backupPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the newest snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openBackups()
		if err != nil {
			return err
		}
		removed, err := c.Prune(current.user, pruneKeep)
		if err != nil {
			return err
		}
		success.Fprintf(cmd.OutOrStdout(), "✓ Pruned %d snapshots\n", removed)
		return nil
	},
}

var backupWipeCmd = &cobra.Command{
	Use:         "wipe",
	Short:       "Delete all cloud and local snapshots",
	Annotations: map[string]string{skipStorage: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "This will PERMANENTLY DELETE all biosync snapshots in Charm Cloud.")
		fmt.Fprintln(out, "Your local database is not touched.")
		fmt.Fprint(out, "Type 'wipe' to confirm: ")
		var confirm string
		_, _ = fmt.Fscanln(cmd.InOrStdin(), &confirm)
		if confirm != "wipe" {
			fmt.Fprintln(out, "Canceled.")
			return nil
		}

		result, err := kv.Wipe(charm.DBName)
		if err != nil {
			return fmt.Errorf("wipe failed: %w", err)
		}
		success.Fprintln(out, "✓ Snapshots wiped")
		fmt.Fprintf(out, "  Cloud backups deleted: %d\n", result.CloudBackupsDeleted)
		fmt.Fprintf(out, "  Local files deleted: %d\n", result.LocalFilesDeleted)
		return nil
	},
}

func init() {
	backupPushCmd.Flags().IntVar(&pushKeep, "keep", 0, "after pushing, keep only the newest N snapshots (0 keeps all)")
	backupPruneCmd.Flags().IntVar(&pruneKeep, "keep", 10, "number of snapshots to keep")

	backupCmd.AddCommand(backupLinkCmd, backupUnlinkCmd, backupStatusCmd,
		backupPushCmd, backupListCmd, backupRestoreCmd, backupPruneCmd, backupWipeCmd)
	rootCmd.AddCommand(backupCmd)
}
