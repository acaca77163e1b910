// ABOUTME: ProgressEntry persistence for SQLite storage.
// ABOUTME: Entries are insert/delete only; there is deliberately no update path.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/harperreed/biosync/internal/models"
	"github.com/shopspring/decimal"
)

const progressColumns = `id, goal_id, user_id, entry_date, value, notes, created_at`

// InsertProgressEntry stores a new entry. A second entry for the same goal
// and date is reported as a ValidationError on "date".
func (t *Tx) InsertProgressEntry(ctx context.Context, p *models.ProgressEntry) error {
	return insertProgressEntry(ctx, t.tx, p)
}

func insertProgressEntry(ctx context.Context, q querier, p *models.ProgressEntry) error {
	query := `INSERT INTO progress_entries (` + progressColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := q.ExecContext(ctx, query,
		p.ID.String(),
		p.GoalID.String(),
		string(p.UserID),
		p.Date.String(),
		fixed(p.Value),
		nullString(p.Notes),
		formatTime(p.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Invalid("date", "progress for %s has already been logged", p.Date)
		}
		return fmt.Errorf("insert progress entry: %w", err)
	}
	return nil
}

// ProgressEntryExists reports whether goalID already has an entry on date.
func (t *Tx) ProgressEntryExists(ctx context.Context, goalID uuid.UUID, date models.Date) (bool, error) {
	var n int
	err := t.tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM progress_entries WHERE goal_id = ? AND entry_date = ?",
		goalID.String(), date.String(),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check progress entry: %w", err)
	}
	return n > 0, nil
}

// GetProgressEntry reads an entry by ID or ID prefix inside the transaction.
func (t *Tx) GetProgressEntry(ctx context.Context, user models.UserID, idOrPrefix string) (*models.ProgressEntry, error) {
	id, err := resolveID(ctx, t.tx, "progress_entries", "progress entry", user, idOrPrefix)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + progressColumns + ` FROM progress_entries WHERE id = ? AND user_id = ?`
	p, err := scanProgressEntry(t.tx.QueryRowContext(ctx, query, id, string(user)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &models.NotFoundError{Kind: "progress entry", ID: idOrPrefix}
		}
		return nil, err
	}
	return p, nil
}

// DeleteProgressEntry removes one entry by full ID.
func (t *Tx) DeleteProgressEntry(ctx context.Context, p *models.ProgressEntry) error {
	result, err := t.tx.ExecContext(ctx,
		"DELETE FROM progress_entries WHERE id = ? AND user_id = ?", p.ID.String(), string(p.UserID))
	if err != nil {
		return fmt.Errorf("delete progress entry: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete progress entry: %w", err)
	}
	if affected == 0 {
		return &models.NotFoundError{Kind: "progress entry", ID: p.ID.String()}
	}
	return nil
}

// SumProgress totals every entry value for a goal inside the transaction.
// Values are summed in Go so the result stays exact.
func (t *Tx) SumProgress(ctx context.Context, goalID uuid.UUID) (decimal.Decimal, int, error) {
	rows, err := t.tx.QueryContext(ctx, "SELECT value FROM progress_entries WHERE goal_id = ?", goalID.String())
	if err != nil {
		return decimal.Zero, 0, fmt.Errorf("sum progress: %w", err)
	}
	defer rows.Close()

	sum := decimal.Zero
	n := 0
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return decimal.Zero, 0, fmt.Errorf("sum progress: %w", err)
		}
		v, err := parseDecimal(s)
		if err != nil {
			return decimal.Zero, 0, err
		}
		sum = sum.Add(v)
		n++
	}
	return sum, n, rows.Err()
}

// ListProgressEntries retrieves the user's entries, newest date first.
// A nil goalID lists entries across all of the user's goals.
func (d *DB) ListProgressEntries(ctx context.Context, user models.UserID, goalID *uuid.UUID) ([]*models.ProgressEntry, error) {
	query := `SELECT ` + progressColumns + ` FROM progress_entries WHERE user_id = ?`
	args := []any{string(user)}
	if goalID != nil {
		query += " AND goal_id = ?"
		args = append(args, goalID.String())
	}
	query += " ORDER BY entry_date DESC, created_at DESC"

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list progress entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.ProgressEntry
	for rows.Next() {
		p, err := scanProgressEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, p)
	}
	return entries, rows.Err()
}

func scanProgressEntry(row scanner) (*models.ProgressEntry, error) {
	var p models.ProgressEntry
	var idStr, goalIDStr, userID, date, value, createdAt string
	var notes sql.NullString

	err := row.Scan(&idStr, &goalIDStr, &userID, &date, &value, &notes, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan progress entry: %w", err)
	}

	if p.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("invalid progress entry ID in database: %w", err)
	}
	if p.GoalID, err = uuid.Parse(goalIDStr); err != nil {
		return nil, fmt.Errorf("invalid goal ID in database: %w", err)
	}
	p.UserID = models.UserID(userID)
	p.Notes = stringPtr(notes)
	if p.Date, err = models.ParseDate(date); err != nil {
		return nil, err
	}
	if p.Value, err = parseDecimal(value); err != nil {
		return nil, err
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &p, nil
}
