// ABOUTME: Workout, ExerciseLog, and SetLog persistence for SQLite storage.
// ABOUTME: Writes go through Tx; reads hydrate the full hierarchy; deletes cascade.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/biosync/internal/models"
)

const workoutColumns = `id, user_id, title, start_time, end_time, duration_minutes, activity_type, notes, created_at, updated_at`

// WorkoutFilter narrows ListWorkouts. Zero values mean no filtering.
type WorkoutFilter struct {
	ActivityType *models.ActivityType
	Since        *time.Time
	Limit        int
}

// InsertWorkout stores the workout row only; exercises are inserted separately.
func (t *Tx) InsertWorkout(ctx context.Context, w *models.Workout) error {
	query := `
		INSERT INTO workouts (` + workoutColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := t.tx.ExecContext(ctx, query,
		w.ID.String(),
		string(w.UserID),
		nullString(w.Title),
		formatTime(w.StartTime),
		nullTime(w.EndTime),
		nullInt(w.DurationMinutes),
		string(w.ActivityType),
		w.Notes,
		formatTime(w.CreatedAt),
		formatTime(w.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert workout: %w", err)
	}
	return nil
}

// InsertExercise stores one exercise row bound to its workout.
func (t *Tx) InsertExercise(ctx context.Context, e *models.ExerciseLog) error {
	query := `
		INSERT INTO exercise_logs (id, workout_id, wger_exercise_id, custom_name, order_in_workout, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := t.tx.ExecContext(ctx, query,
		e.ID.String(),
		e.WorkoutID.String(),
		nullInt(e.WgerExerciseID),
		e.CustomName,
		e.OrderInWorkout,
		formatTime(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert exercise %q: %w", e.CustomName, err)
	}
	return nil
}

// InsertSets stores all sets of one exercise with a single multi-row INSERT.
func (t *Tx) InsertSets(ctx context.Context, sets []models.SetLog) error {
	if len(sets) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString(`INSERT INTO set_logs (id, exercise_log_id, set_number, weight_kg, repetitions, rpe, to_failure, created_at) VALUES `)
	args := make([]any, 0, len(sets)*8)
	for i, s := range sets {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			s.ID.String(),
			s.ExerciseLogID.String(),
			s.SetNumber,
			fixed(s.WeightKg),
			s.Repetitions,
			nullInt(s.RPE),
			s.ToFailure,
			formatTime(s.CreatedAt),
		)
	}

	if _, err := t.tx.ExecContext(ctx, b.String(), args...); err != nil {
		return fmt.Errorf("insert %d sets: %w", len(sets), err)
	}
	return nil
}

// GetWorkout retrieves a workout with its exercises and sets by ID or ID prefix.
func (d *DB) GetWorkout(ctx context.Context, user models.UserID, idOrPrefix string) (*models.Workout, error) {
	id, err := resolveID(ctx, d.db, "workouts", "workout", user, idOrPrefix)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + workoutColumns + ` FROM workouts WHERE id = ? AND user_id = ?`
	w, err := scanWorkout(d.db.QueryRowContext(ctx, query, id, string(user)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &models.NotFoundError{Kind: "workout", ID: idOrPrefix}
		}
		return nil, err
	}

	exercises, err := d.listExercises(ctx, w.ID)
	if err != nil {
		return nil, err
	}
	w.Exercises = exercises
	return w, nil
}

// ListWorkouts retrieves the user's workouts without their exercises.
// Results are sorted by StartTime descending (most recent first).
func (d *DB) ListWorkouts(ctx context.Context, user models.UserID, filter WorkoutFilter) ([]*models.Workout, error) {
	query := `SELECT ` + workoutColumns + ` FROM workouts WHERE user_id = ?`
	args := []any{string(user)}

	if filter.ActivityType != nil {
		query += " AND activity_type = ?"
		args = append(args, string(*filter.ActivityType))
	}
	if filter.Since != nil {
		query += " AND start_time >= ?"
		args = append(args, formatTime(*filter.Since))
	}
	query += " ORDER BY start_time DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	defer rows.Close()

	var workouts []*models.Workout
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, err
		}
		workouts = append(workouts, w)
	}
	return workouts, rows.Err()
}

// DeleteWorkout removes a workout; its exercises and sets cascade.
func (d *DB) DeleteWorkout(ctx context.Context, user models.UserID, idOrPrefix string) error {
	id, err := resolveID(ctx, d.db, "workouts", "workout", user, idOrPrefix)
	if err != nil {
		return fmt.Errorf("delete workout: %w", err)
	}

	result, err := d.db.ExecContext(ctx, "DELETE FROM workouts WHERE id = ? AND user_id = ?", id, string(user))
	if err != nil {
		return fmt.Errorf("delete workout: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete workout: %w", err)
	}
	if affected == 0 {
		return &models.NotFoundError{Kind: "workout", ID: idOrPrefix}
	}
	return nil
}

// listExercises loads a workout's exercises in insertion order within
// order_in_workout, each with its sets by set number.
func (d *DB) listExercises(ctx context.Context, workoutID uuid.UUID) ([]models.ExerciseLog, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, workout_id, wger_exercise_id, custom_name, order_in_workout, created_at
		FROM exercise_logs
		WHERE workout_id = ?
		ORDER BY order_in_workout ASC, rowid ASC
	`, workoutID.String())
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}

	var exercises []models.ExerciseLog
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		e, err := scanExercise(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		index[e.ID] = len(exercises)
		exercises = append(exercises, *e)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	rows.Close()

	if len(exercises) == 0 {
		return []models.ExerciseLog{}, nil
	}

	setRows, err := d.db.QueryContext(ctx, `
		SELECT s.id, s.exercise_log_id, s.set_number, s.weight_kg, s.repetitions, s.rpe, s.to_failure, s.created_at
		FROM set_logs s
		JOIN exercise_logs e ON e.id = s.exercise_log_id
		WHERE e.workout_id = ?
		ORDER BY s.set_number ASC, s.rowid ASC
	`, workoutID.String())
	if err != nil {
		return nil, fmt.Errorf("list sets: %w", err)
	}
	defer setRows.Close()

	for setRows.Next() {
		s, err := scanSet(setRows)
		if err != nil {
			return nil, err
		}
		if i, ok := index[s.ExerciseLogID]; ok {
			exercises[i].Sets = append(exercises[i].Sets, *s)
		}
	}
	return exercises, setRows.Err()
}

// scanWorkout scans a single row into a Workout struct.
func scanWorkout(row scanner) (*models.Workout, error) {
	var w models.Workout
	var idStr, userID, activity, startTime, createdAt, updatedAt string
	var title, endTime sql.NullString
	var duration sql.NullInt64

	err := row.Scan(&idStr, &userID, &title, &startTime, &endTime, &duration, &activity, &w.Notes, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan workout: %w", err)
	}

	w.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid workout ID in database: %w", err)
	}
	w.UserID = models.UserID(userID)
	w.Title = stringPtr(title)
	w.ActivityType = models.ActivityType(activity)
	w.DurationMinutes = intPtr(duration)
	if w.StartTime, err = parseTime(startTime); err != nil {
		return nil, err
	}
	if w.EndTime, err = parseNullTime(endTime); err != nil {
		return nil, err
	}
	if w.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if w.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &w, nil
}

func scanSet(row scanner) (*models.SetLog, error) {
	var s models.SetLog
	var idStr, exerciseIDStr, weight, createdAt string
	var rpe sql.NullInt64

	err := row.Scan(&idStr, &exerciseIDStr, &s.SetNumber, &weight, &s.Repetitions, &rpe, &s.ToFailure, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("scan set: %w", err)
	}

	if s.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("invalid set ID in database: %w", err)
	}
	if s.ExerciseLogID, err = uuid.Parse(exerciseIDStr); err != nil {
		return nil, fmt.Errorf("invalid exercise ID in database: %w", err)
	}
	s.RPE = intPtr(rpe)
	if s.WeightKg, err = parseDecimal(weight); err != nil {
		return nil, err
	}
	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func scanExercise(row scanner) (*models.ExerciseLog, error) {
	var e models.ExerciseLog
	var idStr, workoutIDStr, createdAt string
	var wger sql.NullInt64

	err := row.Scan(&idStr, &workoutIDStr, &wger, &e.CustomName, &e.OrderInWorkout, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("scan exercise: %w", err)
	}

	if e.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("invalid exercise ID in database: %w", err)
	}
	if e.WorkoutID, err = uuid.Parse(workoutIDStr); err != nil {
		return nil, fmt.Errorf("invalid workout ID in database: %w", err)
	}
	e.WgerExerciseID = intPtr(wger)
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	e.Sets = []models.SetLog{}
	return &e, nil
}
