// ABOUTME: Pure goal state transitions applied when progress entries are created or removed.
// ABOUTME: These are the only functions that compute Goal.CurrentValue and Goal.Status.
package goals

import (
	"github.com/harperreed/biosync/internal/models"
	"github.com/shopspring/decimal"
)

// applyEntry adds v to the goal. Reaching the target completes the goal;
// the first positive contribution moves a not-started goal into progress.
// Any other status is left alone.
func applyEntry(g *models.Goal, v decimal.Decimal) {
	next := g.CurrentValue.Add(v)
	switch {
	case next.GreaterThanOrEqual(g.TargetValue):
		g.Status = models.GoalCompleted
	case g.Status == models.GoalNotStarted && next.IsPositive():
		g.Status = models.GoalInProgress
	}
	g.CurrentValue = next
}

// reverseEntry removes v from the goal, never going below zero. Falling to
// zero resets the goal; falling below the target reopens it.
func reverseEntry(g *models.Goal, v decimal.Decimal) {
	next := decimal.Max(decimal.Zero, g.CurrentValue.Sub(v))
	switch {
	case next.IsZero():
		g.Status = models.GoalNotStarted
	case next.LessThan(g.TargetValue):
		g.Status = models.GoalInProgress
	}
	g.CurrentValue = next
}

// Rebuild recomputes g as if each value had been logged in turn on a fresh
// goal. A hand completion (COMPLETED with the value at the target) is kept,
// and so is a STUCK flag the values do not complete.
func Rebuild(g *models.Goal, values []decimal.Decimal) {
	overridden := g.Status == models.GoalCompleted && g.CurrentValue.Equal(g.TargetValue)
	stuck := g.Status == models.GoalStuck

	g.CurrentValue = decimal.Zero
	g.Status = models.GoalNotStarted
	for _, v := range values {
		applyEntry(g, v)
	}

	switch {
	case overridden:
		g.CurrentValue = g.TargetValue
		g.Status = models.GoalCompleted
	case stuck && g.Status != models.GoalCompleted:
		g.Status = models.GoalStuck
	}
}
