// ABOUTME: Workout hierarchy builder: validates a nested payload and persists it atomically.
// ABOUTME: Also exposes hydrated reads and cascading deletes for the CLI and MCP tools.
package workouts

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/biosync/internal/metrics"
	"github.com/harperreed/biosync/internal/models"
	"github.com/harperreed/biosync/internal/storage"
)

// Builder creates and reads workout hierarchies.
type Builder struct {
	db      *storage.DB
	logger  *log.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewBuilder returns a Builder over db. logger and m may be nil.
func NewBuilder(db *storage.DB, logger *log.Logger, m *metrics.Metrics) *Builder {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Builder{
		db:      db,
		logger:  logger.WithPrefix("workouts"),
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Build validates in and writes the workout, its exercises, and their sets in
// one transaction. Nothing is written unless everything is.
func (b *Builder) Build(ctx context.Context, user models.UserID, in WorkoutInput) (w *models.Workout, err error) {
	start := time.Now()
	defer func() { b.metrics.Observe("build_workout", start, err) }()

	if !user.Valid() {
		return nil, models.Invalid("user", "is required")
	}
	if err := in.Validate(); err != nil {
		b.logger.Debug("rejected workout", "user", user, "err", err)
		return nil, err
	}

	w = b.assemble(user, in)

	err = b.db.WithTx(ctx, func(tx *storage.Tx) error {
		if err := tx.InsertWorkout(ctx, w); err != nil {
			return err
		}
		for i := range w.Exercises {
			e := &w.Exercises[i]
			if err := tx.InsertExercise(ctx, e); err != nil {
				return err
			}
			if err := tx.InsertSets(ctx, e.Sets); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		var ce *models.ConsistencyError
		if !errors.As(err, &ce) {
			err = &models.ConsistencyError{Op: "build workout", Err: err}
		}
		b.logger.Error("workout rolled back", "user", user, "err", err)
		return nil, err
	}

	volume := w.Volume()
	b.metrics.AddVolume(volume.InexactFloat64())
	b.logger.Info("workout created",
		"user", user,
		"workout", w.ID,
		"exercises", len(w.Exercises),
		"sets", w.SetCount(),
		"volume_kg", volume.StringFixed(models.FixedPlaces))
	return w, nil
}

// assemble turns a validated payload into the entity graph, binding ids,
// owners, and timestamps. Sets come back sorted by set number.
func (b *Builder) assemble(user models.UserID, in WorkoutInput) *models.Workout {
	now := b.now()

	activity := in.ActivityType
	if activity == "" {
		activity = models.ActivityWeightlifting
	}

	w := models.NewWorkout(user, activity, in.StartTime)
	w.CreatedAt, w.UpdatedAt = now, now
	w.Title = in.Title
	w.Notes = in.Notes
	if in.EndTime != nil {
		w.WithEndTime(*in.EndTime)
	}
	switch {
	case in.DurationMinutes != nil:
		w.WithDuration(*in.DurationMinutes)
	case in.EndTime != nil:
		w.WithDuration(int(in.EndTime.Sub(in.StartTime) / time.Minute))
	}

	w.Exercises = make([]models.ExerciseLog, 0, len(in.Exercises))
	for _, exIn := range in.Exercises {
		e := models.NewExerciseLog(w.ID, exIn.CustomName)
		e.CreatedAt = now
		e.WgerExerciseID = exIn.WgerExerciseID
		if exIn.OrderInWorkout != nil {
			e.OrderInWorkout = *exIn.OrderInWorkout
		}

		e.Sets = make([]models.SetLog, 0, len(exIn.Sets))
		for _, sIn := range exIn.Sets {
			s := models.NewSetLog(e.ID, sIn.SetNumber, sIn.WeightKg.Round(models.FixedPlaces), *sIn.Repetitions)
			s.CreatedAt = now
			s.RPE = sIn.RPE
			s.ToFailure = sIn.ToFailure
			e.Sets = append(e.Sets, *s)
		}
		e.SortSets()
		w.Exercises = append(w.Exercises, *e)
	}
	return w
}

// Get returns a hydrated workout by ID or unique ID prefix.
func (b *Builder) Get(ctx context.Context, user models.UserID, idOrPrefix string) (*models.Workout, error) {
	return b.db.GetWorkout(ctx, user, idOrPrefix)
}

// List returns the user's workouts, most recent first, without exercises.
func (b *Builder) List(ctx context.Context, user models.UserID, filter storage.WorkoutFilter) ([]*models.Workout, error) {
	return b.db.ListWorkouts(ctx, user, filter)
}

// Delete removes a workout together with its exercises and sets.
func (b *Builder) Delete(ctx context.Context, user models.UserID, idOrPrefix string) (err error) {
	start := time.Now()
	defer func() { b.metrics.Observe("delete_workout", start, err) }()

	if err = b.db.DeleteWorkout(ctx, user, idOrPrefix); err != nil {
		return err
	}
	b.logger.Info("workout deleted", "user", user, "workout", idOrPrefix)
	return nil
}
