// ABOUTME: Read-side rollups over committed workouts, goals, and biometrics.
// ABOUTME: Volume is summed exactly in decimal and rounded to two places only at the end.
package report

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/harperreed/biosync/internal/models"
	"github.com/harperreed/biosync/internal/storage"
	"github.com/shopspring/decimal"
)

// ActivitySummary is the rollup for one activity type.
type ActivitySummary struct {
	ActivityType  models.ActivityType `json:"activity_type"`
	TotalWorkouts int                 `json:"total_workouts"`
	TotalSets     int                 `json:"total_sets"`
	TotalVolumeKg decimal.Decimal     `json:"total_volume_kg"`
}

// Summary is the rollup across all of a user's workouts.
type Summary struct {
	Since         *time.Time        `json:"since,omitempty"`
	TotalWorkouts int               `json:"total_workouts"`
	TotalSets     int               `json:"total_sets"`
	TotalVolumeKg decimal.Decimal   `json:"total_volume_kg"`
	ByActivity    []ActivitySummary `json:"by_activity"`
}

// GoalOverview counts goals per status.
type GoalOverview struct {
	Total    int                       `json:"total"`
	ByStatus map[models.GoalStatus]int `json:"by_status"`
}

// Dashboard combines the rollups shown by the summary surfaces.
type Dashboard struct {
	Workouts     *Summary              `json:"workouts"`
	Goals        *GoalOverview         `json:"goals"`
	LatestVitals *models.BiometricData `json:"latest_vitals,omitempty"`
	GeneratedAt  time.Time             `json:"generated_at"`
}

// Reporter computes rollups from a storage.Reader.
type Reporter struct {
	store storage.Reader
}

// New returns a Reporter reading from store.
func New(store storage.Reader) *Reporter {
	return &Reporter{store: store}
}

// WorkoutSummary totals the user's workouts, sets, and volume, optionally
// only for workouts starting at or after since.
func (r *Reporter) WorkoutSummary(ctx context.Context, user models.UserID, since *time.Time) (*Summary, error) {
	totals, err := r.store.WorkoutTotals(ctx, user, since)
	if err != nil {
		return nil, fmt.Errorf("workout summary: %w", err)
	}

	byActivity := make(map[models.ActivityType]*ActivitySummary)
	bucket := func(a models.ActivityType) *ActivitySummary {
		s, ok := byActivity[a]
		if !ok {
			s = &ActivitySummary{ActivityType: a, TotalVolumeKg: decimal.Zero}
			byActivity[a] = s
		}
		return s
	}

	sum := &Summary{Since: since, TotalVolumeKg: decimal.Zero}
	for _, c := range totals.Counts {
		bucket(c.ActivityType).TotalWorkouts += c.Workouts
		sum.TotalWorkouts += c.Workouts
	}
	for _, v := range totals.Sets {
		vol := v.WeightKg.Mul(decimal.NewFromInt(int64(v.Repetitions)))
		b := bucket(v.ActivityType)
		b.TotalSets++
		b.TotalVolumeKg = b.TotalVolumeKg.Add(vol)
		sum.TotalSets++
		sum.TotalVolumeKg = sum.TotalVolumeKg.Add(vol)
	}
	sum.TotalVolumeKg = sum.TotalVolumeKg.Round(models.FixedPlaces)

	sum.ByActivity = make([]ActivitySummary, 0, len(byActivity))
	for _, b := range byActivity {
		b.TotalVolumeKg = b.TotalVolumeKg.Round(models.FixedPlaces)
		sum.ByActivity = append(sum.ByActivity, *b)
	}
	sort.Slice(sum.ByActivity, func(i, j int) bool {
		return sum.ByActivity[i].ActivityType < sum.ByActivity[j].ActivityType
	})
	return sum, nil
}

// WorkoutVolume is Σ(weight × reps) over a hydrated workout, rounded to two places.
func WorkoutVolume(w *models.Workout) decimal.Decimal {
	return w.Volume().Round(models.FixedPlaces)
}

// GoalOverview counts the user's goals by status. Every status appears,
// zero or not.
func (r *Reporter) GoalOverview(ctx context.Context, user models.UserID) (*GoalOverview, error) {
	goals, err := r.store.ListGoals(ctx, user, nil)
	if err != nil {
		return nil, fmt.Errorf("goal overview: %w", err)
	}

	o := &GoalOverview{ByStatus: make(map[models.GoalStatus]int, len(models.AllGoalStatuses))}
	for _, s := range models.AllGoalStatuses {
		o.ByStatus[s] = 0
	}
	for _, g := range goals {
		o.ByStatus[g.Status]++
		o.Total++
	}
	return o, nil
}

// Dashboard gathers the workout summary, goal overview, and latest vitals.
func (r *Reporter) Dashboard(ctx context.Context, user models.UserID, since *time.Time) (*Dashboard, error) {
	workouts, err := r.WorkoutSummary(ctx, user, since)
	if err != nil {
		return nil, err
	}
	goals, err := r.GoalOverview(ctx, user)
	if err != nil {
		return nil, err
	}

	latest, err := r.store.GetLatestBiometric(ctx, user)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("dashboard: %w", err)
	}

	return &Dashboard{
		Workouts:     workouts,
		Goals:        goals,
		LatestVitals: latest,
		GeneratedAt:  time.Now().UTC(),
	}, nil
}
