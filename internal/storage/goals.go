// ABOUTME: Goal persistence for SQLite storage.
// ABOUTME: Cached current_value and status are only written by the ledger through Tx.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/harperreed/biosync/internal/models"
)

const goalColumns = `id, user_id, goal_type, title, description, start_date, target_date, target_value, target_unit, wger_exercise_id, current_value, status, created_at, updated_at`

// CreateGoal inserts a new goal. A duplicate title for the same user is
// reported as a ValidationError on "title".
func (d *DB) CreateGoal(ctx context.Context, g *models.Goal) error {
	return insertGoal(ctx, d.db, g)
}

func insertGoal(ctx context.Context, q querier, g *models.Goal) error {
	query := `INSERT INTO goals (` + goalColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := q.ExecContext(ctx, query,
		g.ID.String(),
		string(g.UserID),
		string(g.GoalType),
		g.Title,
		nullString(g.Description),
		g.StartDate.String(),
		nullDate(g.TargetDate),
		fixed(g.TargetValue),
		g.TargetUnit,
		nullInt(g.WgerExerciseID),
		fixed(g.CurrentValue),
		string(g.Status),
		formatTime(g.CreatedAt),
		formatTime(g.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Invalid("title", "a goal titled %q already exists", g.Title)
		}
		return fmt.Errorf("insert goal: %w", err)
	}
	return nil
}

// GetGoal retrieves a goal by ID or ID prefix.
func (d *DB) GetGoal(ctx context.Context, user models.UserID, idOrPrefix string) (*models.Goal, error) {
	return getGoal(ctx, d.db, user, idOrPrefix)
}

// GetGoal reads a goal inside the transaction so the caller's subsequent
// write sees the same row.
func (t *Tx) GetGoal(ctx context.Context, user models.UserID, idOrPrefix string) (*models.Goal, error) {
	return getGoal(ctx, t.tx, user, idOrPrefix)
}

func getGoal(ctx context.Context, q querier, user models.UserID, idOrPrefix string) (*models.Goal, error) {
	id, err := resolveID(ctx, q, "goals", "goal", user, idOrPrefix)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + goalColumns + ` FROM goals WHERE id = ? AND user_id = ?`
	g, err := scanGoal(q.QueryRowContext(ctx, query, id, string(user)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &models.NotFoundError{Kind: "goal", ID: idOrPrefix}
		}
		return nil, err
	}
	return g, nil
}

// ListGoals retrieves the user's goals ordered by target date (undated
// last), then status, then title. A nil status lists every status.
func (d *DB) ListGoals(ctx context.Context, user models.UserID, status *models.GoalStatus) ([]*models.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE user_id = ?`
	args := []any{string(user)}
	if status != nil {
		query += " AND status = ?"
		args = append(args, string(*status))
	}
	query += " ORDER BY target_date IS NULL, target_date ASC, status ASC, title ASC"

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []*models.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// DeleteGoal removes a goal and, by cascade, its progress entries.
func (d *DB) DeleteGoal(ctx context.Context, user models.UserID, idOrPrefix string) error {
	id, err := resolveID(ctx, d.db, "goals", "goal", user, idOrPrefix)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}

	result, err := d.db.ExecContext(ctx, "DELETE FROM goals WHERE id = ? AND user_id = ?", id, string(user))
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	if affected == 0 {
		return &models.NotFoundError{Kind: "goal", ID: idOrPrefix}
	}
	return nil
}

// SaveGoalProgress writes the cached progress fields of g.
func (t *Tx) SaveGoalProgress(ctx context.Context, g *models.Goal) error {
	result, err := t.tx.ExecContext(ctx, `
		UPDATE goals SET current_value = ?, status = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, fixed(g.CurrentValue), string(g.Status), formatTime(g.UpdatedAt), g.ID.String(), string(g.UserID))
	if err != nil {
		return fmt.Errorf("save goal progress: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("save goal progress: %w", err)
	}
	if affected == 0 {
		return &models.NotFoundError{Kind: "goal", ID: g.ID.String()}
	}
	return nil
}

func scanGoal(row scanner) (*models.Goal, error) {
	var g models.Goal
	var idStr, userID, goalType, startDate, targetValue, currentValue, status, createdAt, updatedAt string
	var description, targetDate sql.NullString
	var wger sql.NullInt64

	err := row.Scan(&idStr, &userID, &goalType, &g.Title, &description, &startDate, &targetDate,
		&targetValue, &g.TargetUnit, &wger, &currentValue, &status, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan goal: %w", err)
	}

	if g.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("invalid goal ID in database: %w", err)
	}
	g.UserID = models.UserID(userID)
	g.GoalType = models.GoalType(goalType)
	g.Description = stringPtr(description)
	g.WgerExerciseID = intPtr(wger)
	g.Status = models.GoalStatus(status)
	if g.StartDate, err = models.ParseDate(startDate); err != nil {
		return nil, err
	}
	if g.TargetDate, err = parseNullDate(targetDate); err != nil {
		return nil, err
	}
	if g.TargetValue, err = parseDecimal(targetValue); err != nil {
		return nil, err
	}
	if g.CurrentValue, err = parseDecimal(currentValue); err != nil {
		return nil, err
	}
	if g.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if g.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &g, nil
}
