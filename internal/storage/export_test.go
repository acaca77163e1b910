// ABOUTME: Tests for export and import functionality.
// ABOUTME: Verifies JSON round trips into a fresh database and YAML readability.
package storage

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/harperreed/biosync/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func seedEverything(t *testing.T, db *DB) {
	t.Helper()
	ctx := context.Background()

	seedWorkout(t, db, alice, time.Now().Add(-time.Hour), 2, 1)
	g := seedGoal(t, db, alice, "Run", 10)
	require.NoError(t, db.WithTx(ctx, func(tx *Tx) error {
		p := models.NewProgressEntry(g.ID, alice, models.NewDate(2025, 1, 1), decimal.RequireFromString("2.50"))
		if err := tx.InsertProgressEntry(ctx, p); err != nil {
			return err
		}
		g.CurrentValue = p.Value
		g.Status = models.GoalInProgress
		return tx.SaveGoalProgress(ctx, g)
	}))
	require.NoError(t, db.CreateBiometric(ctx, models.NewBiometricData(alice, time.Now()).WithWeight(decimal.NewFromInt(80))))

	// Other users never leak into an export.
	seedWorkout(t, db, bob, time.Now(), 1)
}

func TestExportJSON(t *testing.T) {
	db := setupTestDB(t)
	seedEverything(t, db)

	raw, err := db.ExportJSON(context.Background(), alice)
	require.NoError(t, err)

	var export ExportData
	require.NoError(t, json.Unmarshal(raw, &export))
	assert.Equal(t, ExportVersion, export.Version)
	assert.Equal(t, "biosync", export.Tool)
	assert.Equal(t, alice, export.User)
	require.Len(t, export.Workouts, 1)
	assert.Len(t, export.Workouts[0].Exercises, 2)
	assert.Len(t, export.Goals, 1)
	assert.Len(t, export.Progress, 1)
	assert.Len(t, export.Biometrics, 1)
}

func TestImportJSONRoundTrip(t *testing.T) {
	src := setupTestDB(t)
	seedEverything(t, src)
	ctx := context.Background()

	raw, err := src.ExportJSON(ctx, alice)
	require.NoError(t, err)

	var data ExportData
	require.NoError(t, json.Unmarshal(raw, &data))
	dst := setupTestDB(t)
	require.NoError(t, dst.ImportData(ctx, &data))

	assert.Equal(t, 1, countRows(t, dst, "workouts"))
	assert.Equal(t, 2, countRows(t, dst, "exercise_logs"))
	assert.Equal(t, 3, countRows(t, dst, "set_logs"))
	assert.Equal(t, 1, countRows(t, dst, "progress_entries"))
	assert.Equal(t, 1, countRows(t, dst, "biometrics"))

	goals, err := dst.ListGoals(ctx, alice, nil)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, "2.50", goals[0].CurrentValue.StringFixed(2))
	assert.Equal(t, models.GoalInProgress, goals[0].Status)
}

func TestImportIsAllOrNothing(t *testing.T) {
	src := setupTestDB(t)
	seedEverything(t, src)
	ctx := context.Background()

	data, err := src.GetAllData(ctx, alice)
	require.NoError(t, err)

	dst := setupTestDB(t)
	seedGoal(t, dst, alice, "Run", 3)

	err = dst.ImportData(ctx, data)
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Equal(t, 0, countRows(t, dst, "workouts"))
	assert.Equal(t, 1, countRows(t, dst, "goals"))
}

func TestImportRejectsUnknownVersion(t *testing.T) {
	db := setupTestDB(t)
	err := db.ImportData(context.Background(), &ExportData{Version: "9", User: alice})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestImportRejectsEntryForGoalOutsideExport(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	bobGoal := seedGoal(t, db, bob, "Bob's goal", 100)

	data := &ExportData{
		Version:  ExportVersion,
		User:     "mallory",
		Progress: []*models.ProgressEntry{models.NewProgressEntry(bobGoal.ID, "mallory", models.NewDate(2025, 1, 1), decimal.NewFromInt(50))},
	}
	err := db.ImportData(ctx, data)
	require.ErrorIs(t, err, models.ErrValidation)
	assert.Contains(t, err.Error(), "progress_entries[0].goal_id")
	assert.Equal(t, 0, countRows(t, db, "progress_entries"))
}

func TestImportRejectsNonPositiveEntry(t *testing.T) {
	db := setupTestDB(t)
	g := models.NewGoal(alice, "Run", decimal.NewFromInt(100), "km")

	data := &ExportData{
		Version:  ExportVersion,
		User:     alice,
		Goals:    []*models.Goal{g},
		Progress: []*models.ProgressEntry{models.NewProgressEntry(g.ID, alice, models.NewDate(2025, 1, 1), decimal.NewFromInt(-50))},
	}
	err := db.ImportData(context.Background(), data)
	require.ErrorIs(t, err, models.ErrValidation)
	assert.Contains(t, err.Error(), "progress_entries[0].value")
	assert.Equal(t, 0, countRows(t, db, "goals"))
}

func TestImportRejectsGoalTotalThatDisagreesWithEntries(t *testing.T) {
	db := setupTestDB(t)
	g := models.NewGoal(alice, "Run", decimal.NewFromInt(100), "km")
	g.CurrentValue = decimal.NewFromInt(999)
	g.Status = models.GoalCompleted

	err := db.ImportData(context.Background(), &ExportData{Version: ExportVersion, User: alice, Goals: []*models.Goal{g}})
	require.ErrorIs(t, err, models.ErrValidation)
	assert.Contains(t, err.Error(), "goals[0].current_value")
	assert.Equal(t, 0, countRows(t, db, "goals"))
}

func TestImportKeepsHandCompletedGoal(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	g := models.NewGoal(alice, "Run", decimal.NewFromInt(100), "km")
	g.CurrentValue = g.TargetValue
	g.Status = models.GoalCompleted

	require.NoError(t, db.ImportData(ctx, &ExportData{Version: ExportVersion, User: alice, Goals: []*models.Goal{g}}))

	got, err := db.GetGoal(ctx, alice, g.ID.String())
	require.NoError(t, err)
	assert.Equal(t, models.GoalCompleted, got.Status)
	assert.Equal(t, "100.00", got.CurrentValue.StringFixed(2))
}

func TestExportYAML(t *testing.T) {
	db := setupTestDB(t)
	seedEverything(t, db)

	raw, err := db.ExportYAML(context.Background(), alice)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(raw, &doc))
	assert.Equal(t, "1.0", doc["version"])
	assert.Equal(t, "biosync", doc["tool"])

	goals, ok := doc["goals"].([]any)
	require.True(t, ok)
	require.Len(t, goals, 1)
	goal := goals[0].(map[string]any)
	assert.Equal(t, "2.50", goal["current"])
	assert.Equal(t, "25.00", goal["percent"])

	workouts := doc["workouts"].([]any)
	require.Len(t, workouts, 1)
	assert.Equal(t, "1500.00", workouts[0].(map[string]any)["volume_kg"])
}
