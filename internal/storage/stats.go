// ABOUTME: Read-only aggregation queries used by reporting.
// ABOUTME: Returns raw rows; arithmetic happens in Go with exact decimals.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/biosync/internal/models"
	"github.com/shopspring/decimal"
)

// SetVolume is one set's contribution to training volume.
type SetVolume struct {
	ActivityType models.ActivityType
	WeightKg     decimal.Decimal
	Repetitions  int
}

// ActivityCount is the number of workouts of one activity type.
type ActivityCount struct {
	ActivityType models.ActivityType
	Workouts     int
}

// WorkoutTotals is one consistent read of workout counts and set volumes.
type WorkoutTotals struct {
	Counts []ActivityCount
	Sets   []SetVolume
}

// WorkoutTotals reads the user's per-activity workout counts and every
// set's volume inside one transaction, so a workout committed concurrently
// shows up in both or neither. Both are optionally restricted to workouts
// starting at or after since.
func (d *DB) WorkoutTotals(ctx context.Context, user models.UserID, since *time.Time) (*WorkoutTotals, error) {
	var totals WorkoutTotals
	err := d.readTx(ctx, func(q querier) error {
		var err error
		if totals.Counts, err = countWorkouts(ctx, q, user, since); err != nil {
			return err
		}
		totals.Sets, err = listSetVolumes(ctx, q, user, since)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &totals, nil
}

func countWorkouts(ctx context.Context, q querier, user models.UserID, since *time.Time) ([]ActivityCount, error) {
	query := `SELECT activity_type, COUNT(*) FROM workouts WHERE user_id = ?`
	args := []any{string(user)}
	if since != nil {
		query += " AND start_time >= ?"
		args = append(args, formatTime(*since))
	}
	query += " GROUP BY activity_type ORDER BY activity_type"

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("count workouts: %w", err)
	}
	defer rows.Close()

	var counts []ActivityCount
	for rows.Next() {
		var c ActivityCount
		var activity string
		if err := rows.Scan(&activity, &c.Workouts); err != nil {
			return nil, fmt.Errorf("scan workout count: %w", err)
		}
		c.ActivityType = models.ActivityType(activity)
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func listSetVolumes(ctx context.Context, q querier, user models.UserID, since *time.Time) ([]SetVolume, error) {
	query := `
		SELECT w.activity_type, s.weight_kg, s.repetitions
		FROM set_logs s
		JOIN exercise_logs e ON e.id = s.exercise_log_id
		JOIN workouts w ON w.id = e.workout_id
		WHERE w.user_id = ?`
	args := []any{string(user)}
	if since != nil {
		query += " AND w.start_time >= ?"
		args = append(args, formatTime(*since))
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list set volumes: %w", err)
	}
	defer rows.Close()

	var volumes []SetVolume
	for rows.Next() {
		var v SetVolume
		var activity, weight string
		if err := rows.Scan(&activity, &weight, &v.Repetitions); err != nil {
			return nil, fmt.Errorf("scan set volume: %w", err)
		}
		v.ActivityType = models.ActivityType(activity)
		if v.WeightKg, err = parseDecimal(weight); err != nil {
			return nil, err
		}
		volumes = append(volumes, v)
	}
	return volumes, rows.Err()
}
