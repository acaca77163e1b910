// ABOUTME: Goal creation payload and its validation rules.
// ABOUTME: Applies the defaults for type, target value, and start date.
package goals

import (
	"github.com/harperreed/biosync/internal/models"
	"github.com/harperreed/biosync/internal/validation"
	"github.com/shopspring/decimal"
)

const (
	// maxTargetDigits mirrors a DECIMAL(10,2) column.
	maxTargetDigits = 10
	// maxProgressDigits keeps entry values below 1e8.
	maxProgressDigits = 10
)

// GoalInput describes a new goal.
type GoalInput struct {
	Title          string           `json:"title" validate:"required,max=255"`
	GoalType       models.GoalType  `json:"goal_type,omitempty" validate:"omitempty,oneof=Fitness Learning Health Work Finance Other"`
	Description    *string          `json:"description,omitempty"`
	TargetValue    *decimal.Decimal `json:"target_value,omitempty"`
	TargetUnit     string           `json:"target_unit" validate:"required,max=50"`
	WgerExerciseID *int             `json:"wger_exercise_id,omitempty" validate:"omitempty,min=1"`
	StartDate      *models.Date     `json:"start_date,omitempty"`
	TargetDate     *models.Date     `json:"target_date,omitempty"`
}

// Validate checks the payload without touching storage.
func (in *GoalInput) Validate() error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	if in.TargetValue != nil {
		if in.TargetValue.IsNegative() {
			return models.Invalid("target_value", "must not be negative")
		}
		if !models.FitsFixed(*in.TargetValue, maxTargetDigits) {
			return models.Invalid("target_value", "must be below 1e8 with at most 2 decimal places")
		}
	}
	if in.TargetDate != nil && in.StartDate != nil && in.TargetDate.Before(*in.StartDate) {
		return models.Invalid("target_date", "must not be before start_date")
	}
	return nil
}

// goal builds the entity with defaults applied. today is used when no
// start date was given.
func (in *GoalInput) goal(user models.UserID, today models.Date) (*models.Goal, error) {
	target := decimal.NewFromInt(1)
	if in.TargetValue != nil {
		target = *in.TargetValue
	}

	g := models.NewGoal(user, in.Title, target, in.TargetUnit)
	if in.GoalType != "" {
		g.GoalType = in.GoalType
	}
	g.Description = in.Description
	g.WgerExerciseID = in.WgerExerciseID
	g.StartDate = today
	if in.StartDate != nil {
		g.StartDate = *in.StartDate
	}
	g.TargetDate = in.TargetDate
	if g.TargetDate != nil && g.TargetDate.Before(g.StartDate) {
		return nil, models.Invalid("target_date", "must not be before start_date")
	}
	return g, nil
}

// validateValue checks a progress entry value.
func validateValue(v decimal.Decimal) error {
	if !v.IsPositive() {
		return models.Invalid("value", "must be greater than zero")
	}
	if !models.FitsFixed(v, maxProgressDigits) {
		return models.Invalid("value", "must be below 1e8 with at most 2 decimal places")
	}
	return nil
}

// CheckGoal applies the creation rules to a goal that already exists, such
// as one read back from an export.
func CheckGoal(g *models.Goal) error {
	in := GoalInput{
		Title:          g.Title,
		GoalType:       g.GoalType,
		Description:    g.Description,
		TargetValue:    &g.TargetValue,
		TargetUnit:     g.TargetUnit,
		WgerExerciseID: g.WgerExerciseID,
		StartDate:      &g.StartDate,
		TargetDate:     g.TargetDate,
	}
	if err := in.Validate(); err != nil {
		return err
	}
	if !models.IsValidGoalType(string(g.GoalType)) {
		return models.Invalid("goal_type", "unknown goal type %q", g.GoalType)
	}
	if !g.Status.Valid() {
		return models.Invalid("status", "unknown status %q", g.Status)
	}
	return nil
}

// CheckEntry applies the LogProgress value rules to an existing entry.
func CheckEntry(p *models.ProgressEntry) error {
	return validateValue(p.Value)
}
