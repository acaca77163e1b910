// ABOUTME: CLI command for starting the MCP server.
// ABOUTME: Serves MCP over stdio and optionally exposes Prometheus metrics over HTTP.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/harperreed/biosync/internal/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var metricsAddr string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

The server communicates via stdin/stdout and acts as the configured user.

CLAUDE DESKTOP CONFIGURATION:

  {
    "mcpServers": {
      "biosync": {
        "command": "biosync",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  build_workout       Record a workout with exercises and sets atomically
  list_workouts       List recent workouts
  get_workout         Get a workout with exercises and sets
  delete_workout      Delete a workout
  create_goal         Create a goal
  list_goals          List goals
  get_goal            Get a goal with its progress entries
  delete_goal         Delete a goal
  complete_goal       Mark a goal completed
  mark_goal_stuck     Flag a goal as stuck
  audit_goal          Check a goal's cached progress against its entries
  log_progress        Log progress toward a goal
  list_progress       List progress entries
  delete_progress     Delete a progress entry
  record_biometrics   Record vitals
  list_biometrics     List recent vitals
  workout_summary     Training totals by activity

AVAILABLE RESOURCES:

  biosync://summary   Dashboard for the last 30 days
  biosync://goals     Goals with progress
  biosync://recent    Recent workouts and vitals

METRICS:

  With --metrics-addr the server also exposes Prometheus metrics at /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(current.user, mcp.Services{
			Workouts:   current.workouts,
			Goals:      current.goals,
			Biometrics: current.bio,
			Reports:    current.reports,
		}, current.logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			defer stop()
			return server.Serve(ctx)
		})

		if metricsAddr != "" {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(current.registry, promhttp.HandlerOpts{}))
			srv := &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

			g.Go(func() error {
				current.logger.Info("metrics listening", "addr", metricsAddr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
		}

		return g.Wait()
	},
}

func init() {
	mcpCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9464")
	rootCmd.AddCommand(mcpCmd)
}
