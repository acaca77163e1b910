// ABOUTME: Goal and ProgressEntry models for cumulative goal tracking.
// ABOUTME: Goal.CurrentValue and Status are derived from the goal's progress ledger.
package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GoalStatus is the completion state of a goal.
type GoalStatus string

const (
	GoalNotStarted GoalStatus = "NOT_STARTED"
	GoalInProgress GoalStatus = "IN_PROGRESS"
	GoalCompleted  GoalStatus = "COMPLETED"
	GoalStuck      GoalStatus = "STUCK"
)

// AllGoalStatuses lists the status vocabulary in display order.
var AllGoalStatuses = []GoalStatus{GoalNotStarted, GoalInProgress, GoalCompleted, GoalStuck}

// Valid reports whether s is one of AllGoalStatuses.
func (s GoalStatus) Valid() bool {
	for _, st := range AllGoalStatuses {
		if st == s {
			return true
		}
	}
	return false
}

// GoalType categorizes a goal.
type GoalType string

const (
	GoalFitness  GoalType = "Fitness"
	GoalLearning GoalType = "Learning"
	GoalHealth   GoalType = "Health"
	GoalWork     GoalType = "Work"
	GoalFinance  GoalType = "Finance"
	GoalOther    GoalType = "Other"
)

// AllGoalTypes returns all valid goal types.
var AllGoalTypes = []GoalType{GoalFitness, GoalLearning, GoalHealth, GoalWork, GoalFinance, GoalOther}

// IsValidGoalType checks if a string is a valid goal type.
func IsValidGoalType(s string) bool {
	for _, gt := range AllGoalTypes {
		if string(gt) == s {
			return true
		}
	}
	return false
}

// Goal is a user-defined target tracked through dated progress entries.
type Goal struct {
	ID             uuid.UUID       `json:"id"`
	UserID         UserID          `json:"user"`
	GoalType       GoalType        `json:"goal_type"`
	Title          string          `json:"title"`
	Description    *string         `json:"description,omitempty"`
	StartDate      Date            `json:"start_date"`
	TargetDate     *Date           `json:"target_date,omitempty"`
	TargetValue    decimal.Decimal `json:"target_value"`
	TargetUnit     string          `json:"target_unit"`
	WgerExerciseID *int            `json:"wger_exercise_id,omitempty"`
	CurrentValue   decimal.Decimal `json:"current_value"`
	Status         GoalStatus      `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// NewGoal creates a goal starting today with no progress.
func NewGoal(user UserID, title string, target decimal.Decimal, unit string) *Goal {
	now := time.Now().UTC()
	return &Goal{
		ID:           uuid.New(),
		UserID:       user,
		GoalType:     GoalOther,
		Title:        title,
		StartDate:    Today(),
		TargetValue:  target,
		TargetUnit:   unit,
		CurrentValue: decimal.Zero,
		Status:       GoalNotStarted,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// ProgressPercentage is current/target as a percentage capped at 100.
// A non-positive target yields 0.
func (g *Goal) ProgressPercentage() decimal.Decimal {
	if !g.TargetValue.IsPositive() {
		return decimal.Zero
	}
	pct := g.CurrentValue.Div(g.TargetValue).Mul(decimal.NewFromInt(100))
	return decimal.Min(pct, decimal.NewFromInt(100)).Round(FixedPlaces)
}

// MarshalJSON adds the derived progress_percentage field.
func (g Goal) MarshalJSON() ([]byte, error) {
	type goalAlias Goal
	return json.Marshal(struct {
		goalAlias
		ProgressPercentage decimal.Decimal `json:"progress_percentage"`
	}{goalAlias(g), g.ProgressPercentage()})
}

// ProgressEntry is one dated contribution toward a goal. Entries are
// append/delete only; the value never changes after creation.
type ProgressEntry struct {
	ID        uuid.UUID       `json:"id"`
	GoalID    uuid.UUID       `json:"goal_id"`
	UserID    UserID          `json:"user"`
	Date      Date            `json:"date"`
	Value     decimal.Decimal `json:"value"`
	Notes     *string         `json:"notes,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewProgressEntry creates an entry for goal on date.
func NewProgressEntry(goalID uuid.UUID, user UserID, date Date, value decimal.Decimal) *ProgressEntry {
	return &ProgressEntry{
		ID:        uuid.New(),
		GoalID:    goalID,
		UserID:    user,
		Date:      date,
		Value:     value,
		CreatedAt: time.Now().UTC(),
	}
}

// WithNotes sets notes on the entry.
func (p *ProgressEntry) WithNotes(notes string) *ProgressEntry {
	p.Notes = &notes
	return p
}
