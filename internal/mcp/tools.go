// ABOUTME: MCP tool registration and shared input parsing helpers.
// ABOUTME: Tools accept strings for decimals and times and convert them here.
package mcp

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/biosync/internal/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/shopspring/decimal"
)

const defaultLimit = 20

func (s *Server) registerTools() {
	// Workouts
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "build_workout",
		Description: "Record a complete workout with its exercises and sets in one atomic step",
	}, s.handleBuildWorkout)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_workouts",
		Description: "List recent workouts, optionally filtered by activity type and start time",
	}, s.handleListWorkouts)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_workout",
		Description: "Get a workout with all its exercises and sets",
	}, s.handleGetWorkout)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_workout",
		Description: "Delete a workout and everything under it",
	}, s.handleDeleteWorkout)

	// Goals
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "create_goal",
		Description: "Create a goal with a numeric target",
	}, s.handleCreateGoal)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_goals",
		Description: "List goals, optionally filtered by status",
	}, s.handleListGoals)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_goal",
		Description: "Get a goal with its progress entries",
	}, s.handleGetGoal)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_goal",
		Description: "Delete a goal and its progress entries",
	}, s.handleDeleteGoal)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "complete_goal",
		Description: "Mark a goal completed regardless of progress",
	}, s.handleCompleteGoal)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "mark_goal_stuck",
		Description: "Flag a goal as stuck",
	}, s.handleMarkStuck)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "audit_goal",
		Description: "Compare a goal's cached progress with the sum of its entries",
	}, s.handleAuditGoal)

	// Progress
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "log_progress",
		Description: "Log one day's progress toward a goal; at most one entry per goal per day",
	}, s.handleLogProgress)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_progress",
		Description: "List progress entries, optionally for one goal",
	}, s.handleListProgress)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_progress",
		Description: "Delete a progress entry and roll the goal back",
	}, s.handleDeleteProgress)

	// Biometrics and reports
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "record_biometrics",
		Description: "Record vitals such as weight, sleep, heart rate, and readiness",
	}, s.handleRecordBiometrics)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_biometrics",
		Description: "List recent biometric readings",
	}, s.handleListBiometrics)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "workout_summary",
		Description: "Total workouts, sets, and training volume by activity type",
	}, s.handleWorkoutSummary)
}

type idInput struct {
	ID string `json:"id" jsonschema:"ID or unique ID prefix"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

// toolError prefixes err with the failed operation and keeps the domain
// error kind visible to the client.
func toolError(op string, err error) error {
	var verr *models.ValidationError
	var nferr *models.NotFoundError
	switch {
	case errors.As(err, &verr):
		return fmt.Errorf("%s: invalid input: %w", op, err)
	case errors.As(err, &nferr):
		return fmt.Errorf("%s: %w", op, err)
	default:
		return fmt.Errorf("failed to %s: %w", op, err)
	}
}

func shortID(id fmt.Stringer) string {
	return id.String()[:8]
}

func parseDecimal(field, s string) (*decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := models.ParseFixed(s)
	if err != nil {
		return nil, models.Invalid(field, "must be a number")
	}
	return &d, nil
}

var timestampLayouts = []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02T15:04", "2006-01-02"}

func parseTimestamp(field, s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return &t, nil
		}
	}
	return nil, models.Invalid(field, "must be an ISO 8601 timestamp")
}

func parseDate(field, s string) (*models.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := models.ParseDate(s)
	if err != nil {
		return nil, models.Invalid(field, "must be YYYY-MM-DD")
	}
	return &d, nil
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optInt(n int) *int {
	if n == 0 {
		return nil
	}
	return &n
}

func limitOrDefault(n int) int {
	if n <= 0 {
		return defaultLimit
	}
	return n
}
