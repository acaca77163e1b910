// ABOUTME: Root Cobra command for the biosync CLI.
// ABOUTME: Loads config and wires storage and services via PersistentPre/PostRunE.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/harperreed/biosync/internal/biometrics"
	"github.com/harperreed/biosync/internal/config"
	"github.com/harperreed/biosync/internal/goals"
	"github.com/harperreed/biosync/internal/metrics"
	"github.com/harperreed/biosync/internal/models"
	"github.com/harperreed/biosync/internal/report"
	"github.com/harperreed/biosync/internal/restore"
	"github.com/harperreed/biosync/internal/storage"
	"github.com/harperreed/biosync/internal/workouts"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var version = "dev"

// app is everything a command needs once the database is open.
type app struct {
	cfg      *config.Config
	user     models.UserID
	logger   *log.Logger
	db       *storage.DB
	registry *prometheus.Registry
	workouts *workouts.Builder
	goals    *goals.Engine
	bio      *biometrics.Service
	reports  *report.Reporter
	importer *restore.Importer
}

var (
	current  *app
	userFlag string
)

// skipStorage marks a command, and everything under it, as runnable
// without opening the database.
const skipStorage = "biosync/skip-storage"

var noStorage = map[string]bool{
	"help":       true,
	"completion": true,
}

var rootCmd = &cobra.Command{
	Use:   "biosync",
	Short: "Personal training log and goal tracker",
	Long: `biosync records workouts, tracks goals, and logs biometrics.

WHAT IT TRACKS:

  Workouts     sessions made of exercises made of sets (weight x reps, RPE)
  Goals        numeric targets advanced by dated progress entries
  Biometrics   weight, sleep, resting heart rate, HRV, readiness

QUICK START:

  $ biosync workout add --file session.json     # Record a whole session at once
  $ biosync goal add "Run 100km" --target 100 --unit km
  $ biosync progress log abc123 12.5            # Log today's progress
  $ biosync bio add --weight 81.4 --sleep 7.5   # Log vitals
  $ biosync stats                               # Training totals and goal status

BACKUPS:

  $ biosync backup push     # Store a snapshot in Charm Cloud
  $ biosync backup list     # List snapshots

MCP INTEGRATION:

  Run 'biosync mcp' to start the Model Context Protocol server:

  {
    "mcpServers": {
      "biosync": { "command": "biosync", "args": ["mcp"] }
    }
  }

DATA STORAGE:

  Data is stored in SQLite at ~/.local/share/biosync/biosync.db.
  Every command acts as one user: --user, then $BIOSYNC_USER, then the
  config file, then $USER.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if noStorage[cmd.Name()] || skipsStorage(cmd) {
			return nil
		}
		a, err := newApp()
		if err != nil {
			return err
		}
		current = a
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeApp()
	},
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	user := cfg.GetUser()
	if userFlag != "" {
		user = models.UserID(userFlag)
	}
	if !user.Valid() {
		return nil, fmt.Errorf("no user: pass --user, set %s, or run 'biosync config set user <name>'", config.UserEnv)
	}

	logger := cfg.NewLogger(os.Stderr)
	db, err := cfg.OpenStorage()
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	return &app{
		cfg:      cfg,
		user:     user,
		logger:   logger,
		db:       db,
		registry: reg,
		workouts: workouts.NewBuilder(db, logger, m),
		goals:    goals.NewEngine(db, logger, m),
		bio:      biometrics.NewService(db, logger, m),
		reports:  report.New(db),
		importer: restore.NewImporter(db, logger, m),
	}, nil
}

func closeApp() error {
	var err error
	if backupClient != nil {
		err = backupClient.Close()
		backupClient = nil
	}
	if current != nil {
		err = errors.Join(err, current.db.Close())
		current = nil
	}
	return err
}

func skipsStorage(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[skipStorage] == "true" {
			return true
		}
	}
	return false
}

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print the biosync version",
	Annotations: map[string]string{skipStorage: "true"},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "biosync %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&userFlag, "user", "u", "", "act as this user")
	rootCmd.AddCommand(versionCmd)
}
