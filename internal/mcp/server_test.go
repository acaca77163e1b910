// ABOUTME: Tests for MCP server, tools, and resources.
// ABOUTME: Drives tool handlers directly against a temp SQLite database.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/biosync/internal/biometrics"
	"github.com/harperreed/biosync/internal/goals"
	"github.com/harperreed/biosync/internal/models"
	"github.com/harperreed/biosync/internal/report"
	"github.com/harperreed/biosync/internal/storage"
	"github.com/harperreed/biosync/internal/workouts"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const testUser models.UserID = "alice"

// setupTestServer creates a server over a fresh database in a temp directory.
func setupTestServer(t *testing.T) *Server {
	t.Helper()

	db, err := storage.Open(filepath.Join(t.TempDir(), "biosync.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	server, err := NewServer(testUser, testServices(db), nil)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return server
}

func testServices(db *storage.DB) Services {
	return Services{
		Workouts:   workouts.NewBuilder(db, nil, nil),
		Goals:      goals.NewEngine(db, nil, nil),
		Biometrics: biometrics.NewService(db, nil, nil),
		Reports:    report.New(db),
	}
}

func legDay() buildWorkoutInput {
	return buildWorkoutInput{
		Title:     "Leg day",
		StartTime: "2025-06-01T07:00:00Z",
		EndTime:   "2025-06-01T08:15:00Z",
		Exercises: []exerciseInput{
			{
				CustomName: "Back Squat",
				Sets: []setInput{
					{SetNumber: 1, WeightKg: "100", Repetitions: 5},
					{SetNumber: 2, WeightKg: "102.5", Repetitions: 5, RPE: 8},
				},
			},
			{
				CustomName: "Lunge",
				Sets: []setInput{
					{SetNumber: 1, WeightKg: "20", Repetitions: 12, ToFailure: true},
				},
			},
		},
	}
}

func TestNewServer(t *testing.T) {
	server := setupTestServer(t)

	if server.mcpServer == nil {
		t.Error("Expected non-nil mcpServer")
	}
	if server.user != testUser {
		t.Errorf("user = %s, want %s", server.user, testUser)
	}
}

func TestNewServerRequiresUserAndServices(t *testing.T) {
	db, err := storage.Open(filepath.Join(t.TempDir(), "biosync.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := NewServer("", testServices(db), nil); !errors.Is(err, models.ErrValidation) {
		t.Errorf("expected validation error for empty user, got %v", err)
	}
	if _, err := NewServer(testUser, Services{}, nil); err == nil {
		t.Error("expected error for missing services")
	}
}

func TestHandleBuildWorkout(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	_, out, err := server.handleBuildWorkout(ctx, &mcp.CallToolRequest{}, legDay())
	if err != nil {
		t.Fatalf("build_workout failed: %v", err)
	}
	if out.Exercises != 2 || out.Sets != 3 {
		t.Errorf("got %d exercises / %d sets, want 2 / 3", out.Exercises, out.Sets)
	}
	// 100*5 + 102.5*5 + 20*12
	if out.VolumeKg != "1252.50" {
		t.Errorf("VolumeKg = %s, want 1252.50", out.VolumeKg)
	}

	_, got, err := server.handleGetWorkout(ctx, &mcp.CallToolRequest{}, idInput{ID: out.ID})
	if err != nil {
		t.Fatalf("get_workout failed: %v", err)
	}
	w := got.(map[string]any)["workout"].(*models.Workout)
	if w.DurationMinutes == nil || *w.DurationMinutes != 75 {
		t.Errorf("DurationMinutes = %v, want 75", w.DurationMinutes)
	}
	if w.Exercises[1].CustomName != "Lunge" {
		t.Errorf("second exercise = %s, want Lunge", w.Exercises[1].CustomName)
	}
	// Omitted positions default to 1 and ties keep the order they were sent in.
	for i, ex := range w.Exercises {
		if ex.OrderInWorkout != 1 {
			t.Errorf("exercise %d OrderInWorkout = %d, want 1", i, ex.OrderInWorkout)
		}
	}
}

func TestHandleBuildWorkoutRejectsBadInput(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		mutate    func(*buildWorkoutInput)
		errSubstr string
	}{
		{
			name:      "unparseable weight",
			mutate:    func(in *buildWorkoutInput) { in.Exercises[0].Sets[0].WeightKg = "heavy" },
			errSubstr: "exercises[0].sets[0].weight_kg",
		},
		{
			name:      "rpe out of range",
			mutate:    func(in *buildWorkoutInput) { in.Exercises[1].Sets[0].RPE = 11 },
			errSubstr: "exercises[1].sets[0].rpe",
		},
		{
			name:      "missing start time",
			mutate:    func(in *buildWorkoutInput) { in.StartTime = "" },
			errSubstr: "start_time",
		},
		{
			name:      "bad timestamp",
			mutate:    func(in *buildWorkoutInput) { in.EndTime = "yesterday" },
			errSubstr: "end_time",
		},
		{
			name:      "unknown activity",
			mutate:    func(in *buildWorkoutInput) { in.ActivityType = "yoga" },
			errSubstr: "activity_type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := legDay()
			tt.mutate(&in)

			_, _, err := server.handleBuildWorkout(ctx, &mcp.CallToolRequest{}, in)
			if !errors.Is(err, models.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.errSubstr) {
				t.Errorf("Error %q should contain %q", err.Error(), tt.errSubstr)
			}
		})
	}

	_, list, err := server.handleListWorkouts(ctx, &mcp.CallToolRequest{}, listWorkoutsInput{})
	if err != nil {
		t.Fatalf("list_workouts failed: %v", err)
	}
	if _, ok := list.(map[string]any)["message"]; !ok {
		t.Error("rejected workouts should not be stored")
	}
}

func TestHandleListWorkouts(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	cardio := legDay()
	cardio.ActivityType = "cardio"
	cardio.StartTime = "2025-06-03T07:00:00Z"
	cardio.EndTime = ""
	for _, in := range []buildWorkoutInput{legDay(), cardio} {
		if _, _, err := server.handleBuildWorkout(ctx, &mcp.CallToolRequest{}, in); err != nil {
			t.Fatalf("build_workout failed: %v", err)
		}
	}

	_, out, err := server.handleListWorkouts(ctx, &mcp.CallToolRequest{}, listWorkoutsInput{ActivityType: "cardio"})
	if err != nil {
		t.Fatalf("list_workouts failed: %v", err)
	}
	if n := out.(map[string]any)["count"]; n != 1 {
		t.Errorf("count = %v, want 1", n)
	}

	_, out, err = server.handleListWorkouts(ctx, &mcp.CallToolRequest{}, listWorkoutsInput{Since: "2025-06-02"})
	if err != nil {
		t.Fatalf("list_workouts failed: %v", err)
	}
	if n := out.(map[string]any)["count"]; n != 1 {
		t.Errorf("count since = %v, want 1", n)
	}

	if _, _, err := server.handleListWorkouts(ctx, &mcp.CallToolRequest{}, listWorkoutsInput{ActivityType: "yoga"}); !errors.Is(err, models.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestHandleDeleteWorkout(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	_, out, err := server.handleBuildWorkout(ctx, &mcp.CallToolRequest{}, legDay())
	if err != nil {
		t.Fatalf("build_workout failed: %v", err)
	}
	if _, _, err := server.handleDeleteWorkout(ctx, &mcp.CallToolRequest{}, idInput{ID: out.ID}); err != nil {
		t.Fatalf("delete_workout failed: %v", err)
	}
	_, _, err = server.handleGetWorkout(ctx, &mcp.CallToolRequest{}, idInput{ID: out.ID})
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected not found after delete, got %v", err)
	}
	_, _, err = server.handleDeleteWorkout(ctx, &mcp.CallToolRequest{}, idInput{ID: "deadbeef"})
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestGoalLedgerThroughTools(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()
	req := &mcp.CallToolRequest{}

	_, g, err := server.handleCreateGoal(ctx, req, createGoalInput{Title: "Run 100km", TargetValue: "100", TargetUnit: "km"})
	if err != nil {
		t.Fatalf("create_goal failed: %v", err)
	}
	if g.Status != string(models.GoalNotStarted) {
		t.Errorf("Status = %s, want NOT_STARTED", g.Status)
	}

	_, first, err := server.handleLogProgress(ctx, req, logProgressInput{GoalID: g.ID, Date: "2025-06-01", Value: "40"})
	if err != nil {
		t.Fatalf("log_progress failed: %v", err)
	}
	if first.Goal.Status != string(models.GoalInProgress) || first.Goal.CurrentValue != "40.00" {
		t.Errorf("after 40: %s %s", first.Goal.Status, first.Goal.CurrentValue)
	}

	_, _, err = server.handleLogProgress(ctx, req, logProgressInput{GoalID: g.ID, Date: "2025-06-01", Value: "5"})
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("expected duplicate date to be rejected, got %v", err)
	}

	_, second, err := server.handleLogProgress(ctx, req, logProgressInput{GoalID: g.ID, Date: "2025-06-02", Value: "70"})
	if err != nil {
		t.Fatalf("log_progress failed: %v", err)
	}
	if second.Goal.Status != string(models.GoalCompleted) || second.Goal.Percent != "100.00" {
		t.Errorf("after 110: %s %s%%", second.Goal.Status, second.Goal.Percent)
	}

	_, after, err := server.handleDeleteProgress(ctx, req, idInput{ID: first.EntryID})
	if err != nil {
		t.Fatalf("delete_progress failed: %v", err)
	}
	if after.Status != string(models.GoalInProgress) || after.CurrentValue != "70.00" {
		t.Errorf("after delete: %s %s", after.Status, after.CurrentValue)
	}

	_, audit, err := server.handleAuditGoal(ctx, req, idInput{ID: g.ID})
	if err != nil {
		t.Fatalf("audit_goal failed: %v", err)
	}
	if !audit.Consistent || audit.Entries != 1 {
		t.Errorf("audit = %+v, want consistent with 1 entry", audit)
	}

	_, list, err := server.handleListProgress(ctx, req, listProgressInput{})
	if err != nil {
		t.Fatalf("list_progress failed: %v", err)
	}
	if n := list.(map[string]any)["count"]; n != 1 {
		t.Errorf("progress count = %v, want 1", n)
	}
}

func TestHandleLogProgressValidation(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()
	req := &mcp.CallToolRequest{}

	_, g, err := server.handleCreateGoal(ctx, req, createGoalInput{Title: "Pushups", TargetValue: "500", TargetUnit: "reps"})
	if err != nil {
		t.Fatalf("create_goal failed: %v", err)
	}

	tests := []struct {
		name  string
		input logProgressInput
	}{
		{"missing value", logProgressInput{GoalID: g.ID}},
		{"non-numeric value", logProgressInput{GoalID: g.ID, Value: "ten"}},
		{"zero value", logProgressInput{GoalID: g.ID, Value: "0"}},
		{"three decimals", logProgressInput{GoalID: g.ID, Value: "1.005"}},
		{"bad date", logProgressInput{GoalID: g.ID, Value: "5", Date: "06/01/2025"}},
		{"unknown goal", logProgressInput{GoalID: "00000000", Value: "5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := server.handleLogProgress(ctx, req, tt.input)
			if !errors.Is(err, models.ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCompleteAndStuckTools(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()
	req := &mcp.CallToolRequest{}

	_, stuck, err := server.handleCreateGoal(ctx, req, createGoalInput{Title: "Learn Go", GoalType: "Learning", TargetUnit: "books"})
	if err != nil {
		t.Fatalf("create_goal failed: %v", err)
	}
	if stuck.TargetValue != "1.00" {
		t.Errorf("default target = %s, want 1.00", stuck.TargetValue)
	}
	_, out, err := server.handleMarkStuck(ctx, req, idInput{ID: stuck.ID})
	if err != nil {
		t.Fatalf("mark_goal_stuck failed: %v", err)
	}
	if out.Status != string(models.GoalStuck) {
		t.Errorf("Status = %s, want STUCK", out.Status)
	}

	_, out, err = server.handleCompleteGoal(ctx, req, idInput{ID: stuck.ID})
	if err != nil {
		t.Fatalf("complete_goal failed: %v", err)
	}
	if out.Status != string(models.GoalCompleted) {
		t.Errorf("Status = %s, want COMPLETED", out.Status)
	}

	if _, _, err := server.handleMarkStuck(ctx, req, idInput{ID: stuck.ID}); !errors.Is(err, models.ErrValidation) {
		t.Errorf("expected completed goal to refuse STUCK, got %v", err)
	}

	_, list, err := server.handleListGoals(ctx, req, listGoalsInput{Status: "COMPLETED"})
	if err != nil {
		t.Fatalf("list_goals failed: %v", err)
	}
	if n := list.(map[string]any)["count"]; n != 1 {
		t.Errorf("completed count = %v, want 1", n)
	}
	if _, _, err := server.handleListGoals(ctx, req, listGoalsInput{Status: "DONE"}); !errors.Is(err, models.ErrValidation) {
		t.Errorf("expected validation error for unknown status, got %v", err)
	}

	if _, _, err := server.handleDeleteGoal(ctx, req, idInput{ID: stuck.ID}); err != nil {
		t.Fatalf("delete_goal failed: %v", err)
	}
	if _, _, err := server.handleGetGoal(ctx, req, idInput{ID: stuck.ID}); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected not found after delete, got %v", err)
	}
}

func TestHandleCreateGoalRejectsBadDates(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	_, _, err := server.handleCreateGoal(ctx, &mcp.CallToolRequest{}, createGoalInput{
		Title:      "Backwards",
		TargetUnit: "km",
		StartDate:  "2025-06-10",
		TargetDate: "2025-06-01",
	})
	if !errors.Is(err, models.ErrValidation) || !strings.Contains(err.Error(), "target_date") {
		t.Errorf("expected target_date validation error, got %v", err)
	}
}

func TestHandleRecordBiometrics(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()
	req := &mcp.CallToolRequest{}

	hr := 52
	if _, _, err := server.handleRecordBiometrics(ctx, req, recordBiometricsInput{
		Timestamp:        "2025-06-01T06:30:00Z",
		WeightKg:         "81.4",
		SleepHours:       "7.5",
		RestingHeartRate: &hr,
	}); err != nil {
		t.Fatalf("record_biometrics failed: %v", err)
	}

	if _, _, err := server.handleRecordBiometrics(ctx, req, recordBiometricsInput{}); !errors.Is(err, models.ErrValidation) {
		t.Errorf("expected empty reading to be rejected, got %v", err)
	}
	if _, _, err := server.handleRecordBiometrics(ctx, req, recordBiometricsInput{SleepHours: "25"}); !errors.Is(err, models.ErrValidation) {
		t.Errorf("expected 25h sleep to be rejected, got %v", err)
	}

	_, list, err := server.handleListBiometrics(ctx, req, listBiometricsInput{})
	if err != nil {
		t.Fatalf("list_biometrics failed: %v", err)
	}
	if n := list.(map[string]any)["count"]; n != 1 {
		t.Errorf("count = %v, want 1", n)
	}
}

func TestHandleWorkoutSummary(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	if _, _, err := server.handleBuildWorkout(ctx, &mcp.CallToolRequest{}, legDay()); err != nil {
		t.Fatalf("build_workout failed: %v", err)
	}

	_, out, err := server.handleWorkoutSummary(ctx, &mcp.CallToolRequest{}, summaryInput{})
	if err != nil {
		t.Fatalf("workout_summary failed: %v", err)
	}
	sum := out.(*report.Summary)
	if sum.TotalWorkouts != 1 || sum.TotalSets != 3 {
		t.Errorf("summary = %d workouts / %d sets, want 1 / 3", sum.TotalWorkouts, sum.TotalSets)
	}
	if sum.TotalVolumeKg.StringFixed(2) != "1252.50" {
		t.Errorf("TotalVolumeKg = %s, want 1252.50", sum.TotalVolumeKg)
	}

	// The seeded workout is in 2025, outside a one-day window.
	_, out, err = server.handleWorkoutSummary(ctx, &mcp.CallToolRequest{}, summaryInput{Days: 1})
	if err != nil {
		t.Fatalf("workout_summary failed: %v", err)
	}
	if n := out.(*report.Summary).TotalWorkouts; n != 0 {
		t.Errorf("windowed TotalWorkouts = %d, want 0", n)
	}
}

func readResource(t *testing.T, handler func(context.Context, *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error), uri string) map[string]json.RawMessage {
	t.Helper()

	result, err := handler(context.Background(), &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("%s failed: %v", uri, err)
	}
	if len(result.Contents) != 1 {
		t.Fatalf("expected 1 content, got %d", len(result.Contents))
	}
	if result.Contents[0].URI != uri {
		t.Errorf("URI = %s, want %s", result.Contents[0].URI, uri)
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal([]byte(result.Contents[0].Text), &body); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}
	return body
}

func TestHandleSummaryResource(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	in := legDay()
	in.StartTime = time.Now().Add(-2 * time.Hour).Format(time.RFC3339)
	in.EndTime = ""
	if _, _, err := server.handleBuildWorkout(ctx, &mcp.CallToolRequest{}, in); err != nil {
		t.Fatalf("build_workout failed: %v", err)
	}

	body := readResource(t, server.handleSummaryResource, summaryURI)
	for _, key := range []string{"workouts", "goals", "generated_at"} {
		if _, ok := body[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}
	if _, ok := body["latest_vitals"]; ok {
		t.Error("latest_vitals should be omitted with no readings")
	}

	var workoutsSummary report.Summary
	if err := json.Unmarshal(body["workouts"], &workoutsSummary); err != nil {
		t.Fatalf("decode workouts: %v", err)
	}
	if workoutsSummary.TotalWorkouts != 1 {
		t.Errorf("TotalWorkouts = %d, want 1", workoutsSummary.TotalWorkouts)
	}
}

func TestHandleGoalsResource(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	if _, _, err := server.handleCreateGoal(ctx, &mcp.CallToolRequest{}, createGoalInput{Title: "Squat 140", TargetValue: "140", TargetUnit: "kg"}); err != nil {
		t.Fatalf("create_goal failed: %v", err)
	}

	body := readResource(t, server.handleGoalsResource, goalsURI)
	var overview report.GoalOverview
	if err := json.Unmarshal(body["overview"], &overview); err != nil {
		t.Fatalf("decode overview: %v", err)
	}
	if overview.Total != 1 || overview.ByStatus[models.GoalNotStarted] != 1 {
		t.Errorf("overview = %+v", overview)
	}
}

func TestHandleRecentResourceEmpty(t *testing.T) {
	server := setupTestServer(t)

	body := readResource(t, server.handleRecentResource, recentURI)
	if string(body["workouts"]) != "null" && string(body["workouts"]) != "[]" {
		t.Errorf("workouts = %s, want empty", body["workouts"])
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in      string
		wantNil bool
		wantErr bool
	}{
		{"", true, false},
		{"2025-01-31T08:00:00Z", false, false},
		{"2025-01-31 08:00", false, false},
		{"2025-01-31T08:00", false, false},
		{"2025-01-31", false, false},
		{"31/01/2025", true, true},
	}
	for _, tt := range tests {
		got, err := parseTimestamp("ts", tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseTimestamp(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if (got == nil) != tt.wantNil {
			t.Errorf("parseTimestamp(%q) = %v, wantNil %v", tt.in, got, tt.wantNil)
		}
	}
}

func TestToolErrorKeepsKind(t *testing.T) {
	err := toolError("get goal", &models.NotFoundError{Kind: "goal", ID: "abc"})
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	err = toolError("build workout", errors.New("disk full"))
	if !strings.HasPrefix(err.Error(), "failed to build workout") {
		t.Errorf("unexpected message %q", err.Error())
	}
}
