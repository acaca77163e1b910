// ABOUTME: BiometricData CRUD operations for SQLite storage.
// ABOUTME: Readings are keyed by timestamp and listed most recent first.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/biosync/internal/models"
)

const biometricColumns = `id, user_id, recorded_at, recorded_weight_kg, sleep_duration_hours, sleep_score, resting_heart_rate, heart_rate_variability, readiness_score, created_at`

// CreateBiometric stores a new reading.
func (d *DB) CreateBiometric(ctx context.Context, b *models.BiometricData) error {
	return insertBiometric(ctx, d.db, b)
}

func insertBiometric(ctx context.Context, q querier, b *models.BiometricData) error {
	query := `INSERT INTO biometrics (` + biometricColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := q.ExecContext(ctx, query,
		b.ID.String(),
		string(b.UserID),
		formatTime(b.Timestamp),
		nullDecimal(b.RecordedWeightKg),
		nullDecimal(b.SleepDurationHours),
		nullInt(b.SleepScore),
		nullInt(b.RestingHeartRate),
		nullInt(b.HeartRateVariability),
		nullInt(b.ReadinessScore),
		formatTime(b.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("create biometric: %w", err)
	}
	return nil
}

// GetBiometric retrieves a reading by ID or ID prefix.
func (d *DB) GetBiometric(ctx context.Context, user models.UserID, idOrPrefix string) (*models.BiometricData, error) {
	id, err := resolveID(ctx, d.db, "biometrics", "biometric", user, idOrPrefix)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + biometricColumns + ` FROM biometrics WHERE id = ? AND user_id = ?`
	b, err := scanBiometric(d.db.QueryRowContext(ctx, query, id, string(user)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &models.NotFoundError{Kind: "biometric", ID: idOrPrefix}
		}
		return nil, err
	}
	return b, nil
}

// ListBiometrics retrieves the user's readings, most recent first.
func (d *DB) ListBiometrics(ctx context.Context, user models.UserID, since *time.Time, limit int) ([]*models.BiometricData, error) {
	query := `SELECT ` + biometricColumns + ` FROM biometrics WHERE user_id = ?`
	args := []any{string(user)}
	if since != nil {
		query += " AND recorded_at >= ?"
		args = append(args, formatTime(*since))
	}
	query += " ORDER BY recorded_at DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list biometrics: %w", err)
	}
	defer rows.Close()

	var readings []*models.BiometricData
	for rows.Next() {
		b, err := scanBiometric(rows)
		if err != nil {
			return nil, err
		}
		readings = append(readings, b)
	}
	return readings, rows.Err()
}

// GetLatestBiometric returns the user's most recent reading.
func (d *DB) GetLatestBiometric(ctx context.Context, user models.UserID) (*models.BiometricData, error) {
	query := `SELECT ` + biometricColumns + ` FROM biometrics WHERE user_id = ? ORDER BY recorded_at DESC LIMIT 1`
	b, err := scanBiometric(d.db.QueryRowContext(ctx, query, string(user)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &models.NotFoundError{Kind: "biometric", ID: "latest"}
		}
		return nil, err
	}
	return b, nil
}

// DeleteBiometric removes a reading by ID or prefix.
func (d *DB) DeleteBiometric(ctx context.Context, user models.UserID, idOrPrefix string) error {
	id, err := resolveID(ctx, d.db, "biometrics", "biometric", user, idOrPrefix)
	if err != nil {
		return fmt.Errorf("delete biometric: %w", err)
	}

	result, err := d.db.ExecContext(ctx, "DELETE FROM biometrics WHERE id = ? AND user_id = ?", id, string(user))
	if err != nil {
		return fmt.Errorf("delete biometric: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete biometric: %w", err)
	}
	if affected == 0 {
		return &models.NotFoundError{Kind: "biometric", ID: idOrPrefix}
	}
	return nil
}

func scanBiometric(row scanner) (*models.BiometricData, error) {
	var b models.BiometricData
	var idStr, userID, recordedAt, createdAt string
	var weight, sleep sql.NullString
	var sleepScore, rhr, hrv, readiness sql.NullInt64

	err := row.Scan(&idStr, &userID, &recordedAt, &weight, &sleep, &sleepScore, &rhr, &hrv, &readiness, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan biometric: %w", err)
	}

	if b.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("invalid biometric ID in database: %w", err)
	}
	b.UserID = models.UserID(userID)
	b.SleepScore = intPtr(sleepScore)
	b.RestingHeartRate = intPtr(rhr)
	b.HeartRateVariability = intPtr(hrv)
	b.ReadinessScore = intPtr(readiness)
	if b.RecordedWeightKg, err = parseNullDecimal(weight); err != nil {
		return nil, err
	}
	if b.SleepDurationHours, err = parseNullDecimal(sleep); err != nil {
		return nil, err
	}
	if b.Timestamp, err = parseTime(recordedAt); err != nil {
		return nil, err
	}
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &b, nil
}
