// ABOUTME: Goal ledger engine: the single writer of a goal's cumulative value and status.
// ABOUTME: Every read-modify-write runs in one immediate transaction so concurrent calls serialize.
package goals

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/biosync/internal/metrics"
	"github.com/harperreed/biosync/internal/models"
	"github.com/harperreed/biosync/internal/storage"
	"github.com/shopspring/decimal"
)

// Engine owns goals and their progress ledgers.
type Engine struct {
	db      *storage.DB
	logger  *log.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// ProgressResult is a committed entry together with the goal state it produced.
type ProgressResult struct {
	Entry *models.ProgressEntry `json:"entry"`
	Goal  *models.Goal          `json:"goal"`
}

// Audit compares a goal's cached value with the sum of its entries.
type Audit struct {
	Goal     *models.Goal    `json:"goal"`
	Entries  int             `json:"entries"`
	Expected decimal.Decimal `json:"expected_value"`
	Cached   decimal.Decimal `json:"cached_value"`
	Drift    decimal.Decimal `json:"drift"`
	// Overridden is set when the goal was force-completed, which
	// intentionally detaches the cached value from the ledger.
	Overridden bool `json:"overridden"`
}

// Consistent reports whether the cached value matches the ledger.
func (a *Audit) Consistent() bool {
	return a.Drift.IsZero()
}

// NewEngine returns an Engine over db. logger and m may be nil.
func NewEngine(db *storage.DB, logger *log.Logger, m *metrics.Metrics) *Engine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{
		db:      db,
		logger:  logger.WithPrefix("goals"),
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// CreateGoal validates in and stores a new goal with no progress.
func (e *Engine) CreateGoal(ctx context.Context, user models.UserID, in GoalInput) (g *models.Goal, err error) {
	start := time.Now()
	defer func() { e.metrics.Observe("create_goal", start, err) }()

	if !user.Valid() {
		return nil, models.Invalid("user", "is required")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	g, err = in.goal(user, models.DateOf(e.now()))
	if err != nil {
		return nil, err
	}
	g.CreatedAt = e.now()
	g.UpdatedAt = g.CreatedAt

	if err := e.db.CreateGoal(ctx, g); err != nil {
		return nil, err
	}
	e.logger.Info("goal created", "user", user, "goal", g.ID, "title", g.Title)
	return g, nil
}

// GetGoal returns a goal by ID or unique ID prefix.
func (e *Engine) GetGoal(ctx context.Context, user models.UserID, idOrPrefix string) (*models.Goal, error) {
	return e.db.GetGoal(ctx, user, idOrPrefix)
}

// ListGoals returns the user's goals, optionally only those in status.
func (e *Engine) ListGoals(ctx context.Context, user models.UserID, status *models.GoalStatus) ([]*models.Goal, error) {
	return e.db.ListGoals(ctx, user, status)
}

// DeleteGoal removes a goal along with its progress entries.
func (e *Engine) DeleteGoal(ctx context.Context, user models.UserID, idOrPrefix string) (err error) {
	start := time.Now()
	defer func() { e.metrics.Observe("delete_goal", start, err) }()

	if err = e.db.DeleteGoal(ctx, user, idOrPrefix); err != nil {
		return err
	}
	e.logger.Info("goal deleted", "user", user, "goal", idOrPrefix)
	return nil
}

// ListProgress returns a goal's entries, newest date first. An empty goalID
// lists entries across all of the user's goals.
func (e *Engine) ListProgress(ctx context.Context, user models.UserID, goalID string) ([]*models.ProgressEntry, error) {
	if goalID == "" {
		return e.db.ListProgressEntries(ctx, user, nil)
	}
	g, err := e.db.GetGoal(ctx, user, goalID)
	if err != nil {
		return nil, err
	}
	return e.db.ListProgressEntries(ctx, user, &g.ID)
}

// LogProgress records value against the goal on date and advances the goal.
// A missing goal and one owned by another user are rejected identically.
func (e *Engine) LogProgress(ctx context.Context, user models.UserID, goalID string, date models.Date, value decimal.Decimal, notes *string) (res *ProgressResult, err error) {
	start := time.Now()
	defer func() { e.metrics.Observe("log_progress", start, err) }()

	if !user.Valid() {
		return nil, models.Invalid("user", "is required")
	}
	if date.IsZero() {
		return nil, models.Invalid("date", "is required")
	}
	if err := validateValue(value); err != nil {
		return nil, err
	}

	var before models.GoalStatus
	err = e.db.WithTx(ctx, func(tx *storage.Tx) error {
		g, err := tx.GetGoal(ctx, user, goalID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return models.Invalid("goal", "goal not found")
			}
			return err
		}

		exists, err := tx.ProgressEntryExists(ctx, g.ID, date)
		if err != nil {
			return err
		}
		if exists {
			return models.Invalid("date", "progress for %s has already been logged", date)
		}

		entry := models.NewProgressEntry(g.ID, user, date, value)
		entry.Notes = notes
		entry.CreatedAt = e.now()
		if err := tx.InsertProgressEntry(ctx, entry); err != nil {
			return err
		}

		before = g.Status
		applyEntry(g, value)
		g.UpdatedAt = entry.CreatedAt
		if err := tx.SaveGoalProgress(ctx, g); err != nil {
			return err
		}

		res = &ProgressResult{Entry: entry, Goal: g}
		return nil
	})
	if err != nil {
		return nil, e.txError("log progress", err)
	}

	e.metrics.Transition(before, res.Goal.Status)
	e.logger.Info("progress logged",
		"user", user,
		"goal", res.Goal.ID,
		"date", date,
		"value", value.StringFixed(models.FixedPlaces),
		"current", res.Goal.CurrentValue.StringFixed(models.FixedPlaces),
		"status", res.Goal.Status)
	return res, nil
}

// DeleteProgress removes an entry and reverses its contribution.
func (e *Engine) DeleteProgress(ctx context.Context, user models.UserID, entryID string) (g *models.Goal, err error) {
	start := time.Now()
	defer func() { e.metrics.Observe("delete_progress", start, err) }()

	var before models.GoalStatus
	err = e.db.WithTx(ctx, func(tx *storage.Tx) error {
		entry, err := tx.GetProgressEntry(ctx, user, entryID)
		if err != nil {
			return err
		}

		g, err = tx.GetGoal(ctx, user, entry.GoalID.String())
		if err != nil {
			return err
		}

		before = g.Status
		reverseEntry(g, entry.Value)
		g.UpdatedAt = e.now()

		if err := tx.DeleteProgressEntry(ctx, entry); err != nil {
			return err
		}
		return tx.SaveGoalProgress(ctx, g)
	})
	if err != nil {
		return nil, e.txError("delete progress", err)
	}

	e.metrics.Transition(before, g.Status)
	e.logger.Info("progress deleted",
		"user", user,
		"goal", g.ID,
		"current", g.CurrentValue.StringFixed(models.FixedPlaces),
		"status", g.Status)
	return g, nil
}

// UpdateProgress always fails: entries are immutable once logged. Delete the
// entry and log a new one instead.
func (e *Engine) UpdateProgress(ctx context.Context, user models.UserID, entryID string, value decimal.Decimal, notes *string) (*models.ProgressEntry, error) {
	err := models.Invalid("", "updating progress entries is not allowed; delete and log again")
	e.metrics.Observe("update_progress", time.Now(), err)
	return nil, err
}

// CompleteGoal forces the goal to COMPLETED with its value at the target.
// This bypasses the ledger, so afterwards the value no longer equals the
// sum of entries.
func (e *Engine) CompleteGoal(ctx context.Context, user models.UserID, goalID string) (*models.Goal, error) {
	return e.setStatus(ctx, "complete_goal", user, goalID, func(g *models.Goal) error {
		g.CurrentValue = g.TargetValue
		g.Status = models.GoalCompleted
		return nil
	})
}

// MarkStuck flags an unfinished goal as STUCK. Later entries move it on
// through the usual transitions.
func (e *Engine) MarkStuck(ctx context.Context, user models.UserID, goalID string) (*models.Goal, error) {
	return e.setStatus(ctx, "mark_stuck", user, goalID, func(g *models.Goal) error {
		if g.Status == models.GoalCompleted {
			return models.Invalid("status", "goal is already completed")
		}
		g.Status = models.GoalStuck
		return nil
	})
}

func (e *Engine) setStatus(ctx context.Context, op string, user models.UserID, goalID string, mutate func(*models.Goal) error) (g *models.Goal, err error) {
	start := time.Now()
	defer func() { e.metrics.Observe(op, start, err) }()

	var before models.GoalStatus
	err = e.db.WithTx(ctx, func(tx *storage.Tx) error {
		cur, err := tx.GetGoal(ctx, user, goalID)
		if err != nil {
			return err
		}
		g = cur
		before = g.Status
		if err := mutate(g); err != nil {
			return err
		}
		g.UpdatedAt = e.now()
		return tx.SaveGoalProgress(ctx, g)
	})
	if err != nil {
		return nil, e.txError(op, err)
	}

	e.metrics.Transition(before, g.Status)
	e.logger.Info("goal status set", "user", user, "goal", g.ID, "from", before, "to", g.Status)
	return g, nil
}

// Recompute re-derives the goal's expected value from its surviving entries
// and reports any drift. It never writes.
func (e *Engine) Recompute(ctx context.Context, user models.UserID, goalID string) (*Audit, error) {
	var audit *Audit
	err := e.db.WithTx(ctx, func(tx *storage.Tx) error {
		g, err := tx.GetGoal(ctx, user, goalID)
		if err != nil {
			return err
		}
		sum, n, err := tx.SumProgress(ctx, g.ID)
		if err != nil {
			return err
		}

		expected := decimal.Max(decimal.Zero, sum)
		audit = &Audit{
			Goal:     g,
			Entries:  n,
			Expected: expected,
			Cached:   g.CurrentValue,
			Drift:    g.CurrentValue.Sub(expected),
		}
		audit.Overridden = !audit.Consistent() &&
			g.Status == models.GoalCompleted && g.CurrentValue.Equal(g.TargetValue)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !audit.Consistent() && !audit.Overridden {
		e.logger.Warn("goal ledger drift",
			"user", user,
			"goal", audit.Goal.ID,
			"cached", audit.Cached.StringFixed(models.FixedPlaces),
			"expected", audit.Expected.StringFixed(models.FixedPlaces))
	}
	return audit, nil
}

// txError passes domain errors through and wraps anything else as a
// rolled-back consistency failure.
func (e *Engine) txError(op string, err error) error {
	if errors.Is(err, models.ErrValidation) || errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrConsistency) {
		e.logger.Debug(op+" rejected", "err", err)
		return err
	}
	e.logger.Error(op+" rolled back", "err", err)
	return &models.ConsistencyError{Op: op, Err: err}
}
