// ABOUTME: Tests for workout and goal rollups.
// ABOUTME: Runs against the SQLite store populated through the builder and ledger engine.
package report

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/harperreed/biosync/internal/goals"
	"github.com/harperreed/biosync/internal/models"
	"github.com/harperreed/biosync/internal/storage"
	"github.com/harperreed/biosync/internal/workouts"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const alice models.UserID = "alice"

func ptr[T any](v T) *T { return &v }

func setup(t *testing.T) (*Reporter, *workouts.Builder, *goals.Engine, *storage.DB) {
	t.Helper()

	db, err := storage.Open(filepath.Join(t.TempDir(), "biosync.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return New(db), workouts.NewBuilder(db, nil, nil), goals.NewEngine(db, nil, nil), db
}

func set(n int, weight string, reps int) workouts.SetInput {
	return workouts.SetInput{SetNumber: n, WeightKg: ptr(decimal.RequireFromString(weight)), Repetitions: ptr(reps)}
}

func TestWorkoutSummaryEmpty(t *testing.T) {
	r, _, _, _ := setup(t)

	sum, err := r.WorkoutSummary(context.Background(), alice, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, sum.TotalWorkouts)
	assert.Equal(t, 0, sum.TotalSets)
	assert.True(t, sum.TotalVolumeKg.IsZero())
	assert.Empty(t, sum.ByActivity)
}

func TestWorkoutSummaryIgnoresEmptyExercises(t *testing.T) {
	r, b, _, _ := setup(t)
	ctx := context.Background()

	_, err := b.Build(ctx, alice, workouts.WorkoutInput{
		StartTime: time.Now().Add(-time.Hour),
		Exercises: []workouts.ExerciseInput{
			{CustomName: "Deadlift", Sets: []workouts.SetInput{set(1, "140.25", 5), set(2, "140.25", 5), set(3, "150", 2)}},
			{CustomName: "Stretch"},
		},
	})
	require.NoError(t, err)

	sum, err := r.WorkoutSummary(ctx, alice, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.TotalWorkouts)
	assert.Equal(t, 3, sum.TotalSets)
	// 140.25*5*2 + 150*2
	assert.Equal(t, "1702.50", sum.TotalVolumeKg.StringFixed(2))
}

func TestWorkoutSummaryByActivityAndSince(t *testing.T) {
	r, b, _, _ := setup(t)
	ctx := context.Background()
	now := time.Now().UTC()

	build := func(activity models.ActivityType, start time.Time, sets ...workouts.SetInput) {
		in := workouts.WorkoutInput{StartTime: start, ActivityType: activity}
		if len(sets) > 0 {
			in.Exercises = []workouts.ExerciseInput{{CustomName: "Work", Sets: sets}}
		}
		_, err := b.Build(ctx, alice, in)
		require.NoError(t, err)
	}
	build(models.ActivityWeightlifting, now.Add(-10*24*time.Hour), set(1, "100", 10))
	build(models.ActivityWeightlifting, now.Add(-time.Hour), set(1, "50", 10), set(2, "50", 10))
	build(models.ActivityCardio, now.Add(-2*time.Hour))
	_, err := b.Build(ctx, "bob", workouts.WorkoutInput{StartTime: now, Exercises: []workouts.ExerciseInput{
		{CustomName: "x", Sets: []workouts.SetInput{set(1, "999", 99)}},
	}})
	require.NoError(t, err)

	all, err := r.WorkoutSummary(ctx, alice, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, all.TotalWorkouts)
	assert.Equal(t, 3, all.TotalSets)
	assert.Equal(t, "2000.00", all.TotalVolumeKg.StringFixed(2))
	require.Len(t, all.ByActivity, 2)
	assert.Equal(t, models.ActivityCardio, all.ByActivity[0].ActivityType)
	assert.Equal(t, 1, all.ByActivity[0].TotalWorkouts)
	assert.True(t, all.ByActivity[0].TotalVolumeKg.IsZero())
	assert.Equal(t, 2, all.ByActivity[1].TotalWorkouts)

	since := now.Add(-24 * time.Hour)
	week, err := r.WorkoutSummary(ctx, alice, &since)
	require.NoError(t, err)
	assert.Equal(t, 2, week.TotalWorkouts)
	assert.Equal(t, "1000.00", week.TotalVolumeKg.StringFixed(2))
}

func TestWorkoutVolume(t *testing.T) {
	w := models.NewWorkout(alice, models.ActivityWeightlifting, time.Now())
	e := models.NewExerciseLog(w.ID, "Curl")
	e.Sets = []models.SetLog{*models.NewSetLog(e.ID, 1, decimal.RequireFromString("12.33"), 3)}
	w.Exercises = []models.ExerciseLog{*e}

	assert.Equal(t, "36.99", WorkoutVolume(w).StringFixed(2))
}

func TestGoalOverview(t *testing.T) {
	r, _, g, _ := setup(t)
	ctx := context.Background()

	a, err := g.CreateGoal(ctx, alice, goals.GoalInput{Title: "A", TargetUnit: "x"})
	require.NoError(t, err)
	_, err = g.CreateGoal(ctx, alice, goals.GoalInput{Title: "B", TargetUnit: "x"})
	require.NoError(t, err)
	_, err = g.CompleteGoal(ctx, alice, a.ID.String())
	require.NoError(t, err)

	o, err := r.GoalOverview(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 2, o.Total)
	assert.Equal(t, 1, o.ByStatus[models.GoalCompleted])
	assert.Equal(t, 1, o.ByStatus[models.GoalNotStarted])
	assert.Equal(t, 0, o.ByStatus[models.GoalStuck])
}

func TestDashboardWithoutVitals(t *testing.T) {
	r, _, _, db := setup(t)
	ctx := context.Background()

	d, err := r.Dashboard(ctx, alice, nil)
	require.NoError(t, err)
	assert.Nil(t, d.LatestVitals)

	require.NoError(t, db.CreateBiometric(ctx, models.NewBiometricData(alice, time.Now()).WithReadiness(77)))
	d, err = r.Dashboard(ctx, alice, nil)
	require.NoError(t, err)
	require.NotNil(t, d.LatestVitals)

	raw, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"readiness_score":77`)
}

type failingReader struct{ storage.Reader }

func (failingReader) WorkoutTotals(context.Context, models.UserID, *time.Time) (*storage.WorkoutTotals, error) {
	return nil, errors.New("disk gone")
}

func TestWorkoutSummaryPropagatesErrors(t *testing.T) {
	r := New(failingReader{})
	_, err := r.WorkoutSummary(context.Background(), alice, nil)
	assert.ErrorContains(t, err, "disk gone")
}
