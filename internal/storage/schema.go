// ABOUTME: SQLite schema definition and initialization.
// ABOUTME: Defines the workout hierarchy, goal ledger, and biometric tables.
package storage

import "context"

// initSchema creates or updates the database schema.
func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS workouts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT,
		start_time DATETIME NOT NULL,
		end_time DATETIME,
		duration_minutes INTEGER CHECK (duration_minutes IS NULL OR duration_minutes >= 0),
		activity_type TEXT NOT NULL DEFAULT 'weightlifting'
			CHECK (activity_type IN ('weightlifting', 'cardio', 'hiit', 'other')),
		notes TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS exercise_logs (
		id TEXT PRIMARY KEY,
		workout_id TEXT NOT NULL,
		wger_exercise_id INTEGER,
		custom_name TEXT NOT NULL,
		order_in_workout INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (workout_id) REFERENCES workouts(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS set_logs (
		id TEXT PRIMARY KEY,
		exercise_log_id TEXT NOT NULL,
		set_number INTEGER NOT NULL,
		weight_kg TEXT NOT NULL,
		repetitions INTEGER NOT NULL CHECK (repetitions >= 0),
		rpe INTEGER CHECK (rpe IS NULL OR rpe BETWEEN 1 AND 10),
		to_failure INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (exercise_log_id) REFERENCES exercise_logs(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS biometrics (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		recorded_at DATETIME NOT NULL,
		recorded_weight_kg TEXT,
		sleep_duration_hours TEXT,
		sleep_score INTEGER,
		resting_heart_rate INTEGER,
		heart_rate_variability INTEGER,
		readiness_score INTEGER,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS goals (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		goal_type TEXT NOT NULL DEFAULT 'Other',
		title TEXT NOT NULL,
		description TEXT,
		start_date TEXT NOT NULL,
		target_date TEXT,
		target_value TEXT NOT NULL,
		target_unit TEXT NOT NULL,
		wger_exercise_id INTEGER,
		current_value TEXT NOT NULL DEFAULT '0',
		status TEXT NOT NULL DEFAULT 'NOT_STARTED'
			CHECK (status IN ('NOT_STARTED', 'IN_PROGRESS', 'COMPLETED', 'STUCK')),
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		UNIQUE (user_id, title)
	);

	CREATE TABLE IF NOT EXISTS progress_entries (
		id TEXT PRIMARY KEY,
		goal_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		entry_date TEXT NOT NULL,
		value TEXT NOT NULL,
		notes TEXT,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (goal_id) REFERENCES goals(id) ON DELETE CASCADE,
		UNIQUE (goal_id, entry_date)
	);

	CREATE INDEX IF NOT EXISTS idx_workouts_user_started ON workouts(user_id, start_time DESC);
	CREATE INDEX IF NOT EXISTS idx_exercise_logs_workout ON exercise_logs(workout_id);
	CREATE INDEX IF NOT EXISTS idx_set_logs_exercise ON set_logs(exercise_log_id);
	CREATE INDEX IF NOT EXISTS idx_biometrics_user_recorded ON biometrics(user_id, recorded_at DESC);
	CREATE INDEX IF NOT EXISTS idx_goals_user ON goals(user_id);
	CREATE INDEX IF NOT EXISTS idx_progress_entries_user ON progress_entries(user_id, entry_date DESC);
	`

	_, err := d.db.ExecContext(context.Background(), schema)
	return err
}
