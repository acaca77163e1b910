// ABOUTME: Imports exported data on behalf of the current user.
// ABOUTME: Validates every row with the builder, ledger, and biometric rules and rebuilds goal totals.
package restore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/harperreed/biosync/internal/biometrics"
	"github.com/harperreed/biosync/internal/goals"
	"github.com/harperreed/biosync/internal/metrics"
	"github.com/harperreed/biosync/internal/models"
	"github.com/harperreed/biosync/internal/storage"
	"github.com/harperreed/biosync/internal/workouts"
	"github.com/shopspring/decimal"
)

// Importer loads JSON exports and backup snapshots into the store.
type Importer struct {
	db      *storage.DB
	logger  *log.Logger
	metrics *metrics.Metrics
}

// NewImporter returns an Importer over db. logger and m may be nil.
func NewImporter(db *storage.DB, logger *log.Logger, m *metrics.Metrics) *Importer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Importer{db: db, logger: logger.WithPrefix("restore"), metrics: m}
}

// Import stores data as user's, whatever user the export names. Nothing is
// written unless every row passes.
func (im *Importer) Import(ctx context.Context, user models.UserID, data *storage.ExportData) (err error) {
	start := time.Now()
	defer func() { im.metrics.Observe("import", start, err) }()

	if err = Prepare(user, data); err != nil {
		return err
	}
	if err = im.db.ImportData(ctx, data); err != nil {
		return err
	}

	im.logger.Info("data imported",
		"user", user,
		"workouts", len(data.Workouts),
		"goals", len(data.Goals),
		"progress", len(data.Progress),
		"biometrics", len(data.Biometrics))
	return nil
}

// ImportJSON decodes a JSON export and imports it for user.
func (im *Importer) ImportJSON(ctx context.Context, user models.UserID, raw []byte) error {
	var data storage.ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("unmarshal JSON: %w", err)
	}
	return im.Import(ctx, user, &data)
}

// Prepare binds data to user, checks every row, and recomputes each goal's
// value and status from its entries.
func Prepare(user models.UserID, data *storage.ExportData) error {
	if !user.Valid() {
		return models.Invalid("user", "is required")
	}
	data.User = user

	for i, w := range data.Workouts {
		w.UserID = user
		if err := workouts.CheckWorkout(w); err != nil {
			return within(fmt.Sprintf("workouts[%d]", i), err)
		}
	}

	values := make(map[uuid.UUID][]decimal.Decimal, len(data.Goals))
	for i, g := range data.Goals {
		g.UserID = user
		if err := goals.CheckGoal(g); err != nil {
			return within(fmt.Sprintf("goals[%d]", i), err)
		}
		values[g.ID] = nil
	}

	for i, p := range data.Progress {
		p.UserID = user
		path := fmt.Sprintf("progress_entries[%d]", i)
		if _, ok := values[p.GoalID]; !ok {
			return models.Invalid(path+".goal_id", "does not reference a goal in this export")
		}
		if err := goals.CheckEntry(p); err != nil {
			return within(path, err)
		}
		values[p.GoalID] = append(values[p.GoalID], p.Value)
	}

	for _, g := range data.Goals {
		goals.Rebuild(g, values[g.ID])
	}

	for i, b := range data.Biometrics {
		b.UserID = user
		if err := biometrics.CheckReading(b); err != nil {
			return within(fmt.Sprintf("biometrics[%d]", i), err)
		}
	}
	return nil
}

// within prefixes a validation error's field with the row it came from.
func within(path string, err error) error {
	var ve *models.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	field := path
	if ve.Field != "" {
		field += "." + ve.Field
	}
	return &models.ValidationError{Field: field, Message: ve.Message}
}
