// ABOUTME: Export and import functionality for biosync data.
// ABOUTME: Supports JSON (round-trippable) and YAML (human-readable) export formats.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/biosync/internal/models"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// ExportVersion is bumped whenever ExportData changes shape.
const ExportVersion = "1.0"

// ExportData represents the full export format for one user's data.
type ExportData struct {
	Version    string                  `json:"version" yaml:"version"`
	ExportedAt time.Time               `json:"exported_at" yaml:"exported_at"`
	Tool       string                  `json:"tool" yaml:"tool"`
	User       models.UserID           `json:"user" yaml:"user"`
	Workouts   []*models.Workout       `json:"workouts" yaml:"workouts"`
	Goals      []*models.Goal          `json:"goals" yaml:"goals"`
	Progress   []*models.ProgressEntry `json:"progress_entries" yaml:"progress_entries"`
	Biometrics []*models.BiometricData `json:"biometrics" yaml:"biometrics"`
}

// GetAllData retrieves everything owned by user for export.
func (d *DB) GetAllData(ctx context.Context, user models.UserID) (*ExportData, error) {
	summaries, err := d.ListWorkouts(ctx, user, WorkoutFilter{})
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}

	workouts := make([]*models.Workout, 0, len(summaries))
	for _, s := range summaries {
		w, err := d.GetWorkout(ctx, user, s.ID.String())
		if err != nil {
			return nil, fmt.Errorf("get workout: %w", err)
		}
		workouts = append(workouts, w)
	}

	goals, err := d.ListGoals(ctx, user, nil)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}

	progress, err := d.ListProgressEntries(ctx, user, nil)
	if err != nil {
		return nil, fmt.Errorf("list progress entries: %w", err)
	}

	biometrics, err := d.ListBiometrics(ctx, user, nil, 0)
	if err != nil {
		return nil, fmt.Errorf("list biometrics: %w", err)
	}

	return &ExportData{
		Version:    ExportVersion,
		ExportedAt: time.Now().UTC(),
		Tool:       "biosync",
		User:       user,
		Workouts:   workouts,
		Goals:      goals,
		Progress:   progress,
		Biometrics: biometrics,
	}, nil
}

// ImportData restores an export in a single transaction. Every progress
// entry must belong to a goal in the same export, and every goal's
// current_value must equal the sum of its entries unless the goal was
// completed by hand. Row-level validation and rebuilding goal totals are
// the caller's job; see package restore.
func (d *DB) ImportData(ctx context.Context, data *ExportData) error {
	if data.Version != ExportVersion {
		return models.Invalid("version", "unsupported export version %q", data.Version)
	}
	if !data.User.Valid() {
		return models.Invalid("user", "export has no user")
	}
	if err := checkLedgers(data); err != nil {
		return err
	}

	return d.WithTx(ctx, func(tx *Tx) error {
		for _, w := range data.Workouts {
			w.UserID = data.User
			if err := tx.InsertWorkout(ctx, w); err != nil {
				return fmt.Errorf("import workout: %w", err)
			}
			for i := range w.Exercises {
				e := &w.Exercises[i]
				e.WorkoutID = w.ID
				if err := tx.InsertExercise(ctx, e); err != nil {
					return fmt.Errorf("import exercise: %w", err)
				}
				for j := range e.Sets {
					e.Sets[j].ExerciseLogID = e.ID
				}
				if err := tx.InsertSets(ctx, e.Sets); err != nil {
					return fmt.Errorf("import sets: %w", err)
				}
			}
		}

		for _, g := range data.Goals {
			g.UserID = data.User
			if err := insertGoal(ctx, tx.tx, g); err != nil {
				return fmt.Errorf("import goal: %w", err)
			}
		}

		for _, p := range data.Progress {
			p.UserID = data.User
			if err := insertProgressEntry(ctx, tx.tx, p); err != nil {
				return fmt.Errorf("import progress entry: %w", err)
			}
		}

		for _, b := range data.Biometrics {
			b.UserID = data.User
			if err := insertBiometric(ctx, tx.tx, b); err != nil {
				return fmt.Errorf("import biometric: %w", err)
			}
		}
		return nil
	})
}

// ExportJSON exports all of user's data as JSON.
func (d *DB) ExportJSON(ctx context.Context, user models.UserID) ([]byte, error) {
	data, err := d.GetAllData(ctx, user)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// checkLedgers ties each entry to an exported goal and each goal's cached
// value to its entries.
func checkLedgers(data *ExportData) error {
	goals := make(map[uuid.UUID]*models.Goal, len(data.Goals))
	for _, g := range data.Goals {
		goals[g.ID] = g
	}

	sums := make(map[uuid.UUID]decimal.Decimal, len(data.Goals))
	for i, p := range data.Progress {
		if _, ok := goals[p.GoalID]; !ok {
			return models.Invalid(fmt.Sprintf("progress_entries[%d].goal_id", i), "does not reference a goal in this export")
		}
		if !p.Value.IsPositive() {
			return models.Invalid(fmt.Sprintf("progress_entries[%d].value", i), "must be greater than zero")
		}
		sums[p.GoalID] = sums[p.GoalID].Add(p.Value)
	}

	for i, g := range data.Goals {
		expected := sums[g.ID]
		overridden := g.Status == models.GoalCompleted && g.CurrentValue.Equal(g.TargetValue)
		if !g.CurrentValue.Equal(expected) && !overridden {
			return models.Invalid(fmt.Sprintf("goals[%d].current_value", i),
				"%s does not match its progress entries (%s)", fixed(g.CurrentValue), fixed(expected))
		}
	}
	return nil
}

// ExportYAML exports all of user's data as YAML. The YAML form is for
// reading, not for import: IDs are shortened and decimals are rendered as
// fixed strings.
func (d *DB) ExportYAML(ctx context.Context, user models.UserID) ([]byte, error) {
	data, err := d.GetAllData(ctx, user)
	if err != nil {
		return nil, err
	}

	out := yamlExport{
		Version:    data.Version,
		ExportedAt: data.ExportedAt.Format(time.RFC3339),
		Tool:       data.Tool,
		User:       string(data.User),
		Workouts:   make([]yamlWorkout, 0, len(data.Workouts)),
		Goals:      make([]yamlGoal, 0, len(data.Goals)),
		Biometrics: make([]yamlBiometric, 0, len(data.Biometrics)),
	}

	for _, w := range data.Workouts {
		yw := yamlWorkout{
			ID:        w.ID.String()[:8],
			Activity:  string(w.ActivityType),
			StartedAt: w.StartTime.Format(time.RFC3339),
			Notes:     w.Notes,
			Volume:    fixed(w.Volume()),
		}
		if w.Title != nil {
			yw.Title = *w.Title
		}
		if w.DurationMinutes != nil {
			yw.DurationMinutes = *w.DurationMinutes
		}
		for _, e := range w.Exercises {
			ye := yamlExercise{Name: e.CustomName, Order: e.OrderInWorkout}
			for _, s := range e.Sets {
				ys := yamlSet{Number: s.SetNumber, WeightKg: fixed(s.WeightKg), Reps: s.Repetitions, ToFailure: s.ToFailure}
				if s.RPE != nil {
					ys.RPE = *s.RPE
				}
				ye.Sets = append(ye.Sets, ys)
			}
			yw.Exercises = append(yw.Exercises, ye)
		}
		out.Workouts = append(out.Workouts, yw)
	}

	progressByGoal := make(map[string][]yamlProgress)
	for _, p := range data.Progress {
		yp := yamlProgress{Date: p.Date.String(), Value: fixed(p.Value)}
		if p.Notes != nil {
			yp.Notes = *p.Notes
		}
		key := p.GoalID.String()
		progressByGoal[key] = append(progressByGoal[key], yp)
	}

	for _, g := range data.Goals {
		yg := yamlGoal{
			ID:       g.ID.String()[:8],
			Title:    g.Title,
			Type:     string(g.GoalType),
			Status:   string(g.Status),
			Current:  fixed(g.CurrentValue),
			Target:   fixed(g.TargetValue),
			Unit:     g.TargetUnit,
			Percent:  fixed(g.ProgressPercentage()),
			Progress: progressByGoal[g.ID.String()],
		}
		if g.TargetDate != nil {
			yg.TargetDate = g.TargetDate.String()
		}
		out.Goals = append(out.Goals, yg)
	}

	for _, b := range data.Biometrics {
		yb := yamlBiometric{ID: b.ID.String()[:8], RecordedAt: b.Timestamp.Format(time.RFC3339)}
		if b.RecordedWeightKg != nil {
			yb.WeightKg = fixed(*b.RecordedWeightKg)
		}
		if b.SleepDurationHours != nil {
			yb.SleepHours = fixed(*b.SleepDurationHours)
		}
		yb.SleepScore = b.SleepScore
		yb.RestingHeartRate = b.RestingHeartRate
		yb.HRV = b.HeartRateVariability
		yb.Readiness = b.ReadinessScore
		out.Biometrics = append(out.Biometrics, yb)
	}

	return yaml.Marshal(out)
}

type yamlExport struct {
	Version    string          `yaml:"version"`
	ExportedAt string          `yaml:"exported_at"`
	Tool       string          `yaml:"tool"`
	User       string          `yaml:"user"`
	Workouts   []yamlWorkout   `yaml:"workouts"`
	Goals      []yamlGoal      `yaml:"goals"`
	Biometrics []yamlBiometric `yaml:"biometrics"`
}

type yamlWorkout struct {
	ID              string         `yaml:"id"`
	Title           string         `yaml:"title,omitempty"`
	Activity        string         `yaml:"activity"`
	StartedAt       string         `yaml:"started_at"`
	DurationMinutes int            `yaml:"duration_minutes,omitempty"`
	Notes           string         `yaml:"notes,omitempty"`
	Volume          string         `yaml:"volume_kg"`
	Exercises       []yamlExercise `yaml:"exercises,omitempty"`
}

type yamlExercise struct {
	Name  string    `yaml:"name"`
	Order int       `yaml:"order"`
	Sets  []yamlSet `yaml:"sets,omitempty"`
}

type yamlSet struct {
	Number    int    `yaml:"set"`
	WeightKg  string `yaml:"weight_kg"`
	Reps      int    `yaml:"reps"`
	RPE       int    `yaml:"rpe,omitempty"`
	ToFailure bool   `yaml:"to_failure,omitempty"`
}

type yamlGoal struct {
	ID         string         `yaml:"id"`
	Title      string         `yaml:"title"`
	Type       string         `yaml:"type"`
	Status     string         `yaml:"status"`
	Current    string         `yaml:"current"`
	Target     string         `yaml:"target"`
	Unit       string         `yaml:"unit"`
	Percent    string         `yaml:"percent"`
	TargetDate string         `yaml:"target_date,omitempty"`
	Progress   []yamlProgress `yaml:"progress,omitempty"`
}

type yamlProgress struct {
	Date  string `yaml:"date"`
	Value string `yaml:"value"`
	Notes string `yaml:"notes,omitempty"`
}

type yamlBiometric struct {
	ID               string `yaml:"id"`
	RecordedAt       string `yaml:"recorded_at"`
	WeightKg         string `yaml:"weight_kg,omitempty"`
	SleepHours       string `yaml:"sleep_hours,omitempty"`
	SleepScore       *int   `yaml:"sleep_score,omitempty"`
	RestingHeartRate *int   `yaml:"resting_heart_rate,omitempty"`
	HRV              *int   `yaml:"hrv,omitempty"`
	Readiness        *int   `yaml:"readiness,omitempty"`
}
