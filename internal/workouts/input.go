// ABOUTME: Payload types accepted by the workout builder and their validation.
// ABOUTME: Struct tags cover shape and ranges; decimal and time rules are checked by hand.
package workouts

import (
	"fmt"
	"time"

	"github.com/harperreed/biosync/internal/models"
	"github.com/harperreed/biosync/internal/validation"
	"github.com/shopspring/decimal"
)

// maxWeightDigits mirrors a DECIMAL(6,2) weight column: below 10000 kg.
const maxWeightDigits = 6

// WorkoutInput is a complete workout as submitted by a client. The owning
// user is never part of the payload.
type WorkoutInput struct {
	Title           *string             `json:"title,omitempty" validate:"omitempty,max=255"`
	StartTime       time.Time           `json:"start_time" validate:"required"`
	EndTime         *time.Time          `json:"end_time,omitempty"`
	DurationMinutes *int                `json:"duration_minutes,omitempty" validate:"omitempty,min=0"`
	ActivityType    models.ActivityType `json:"activity_type,omitempty" validate:"omitempty,oneof=weightlifting cardio hiit other"`
	Notes           string              `json:"notes,omitempty"`
	Exercises       []ExerciseInput     `json:"exercises" validate:"dive"`
}

// ExerciseInput is one exercise within a WorkoutInput.
type ExerciseInput struct {
	WgerExerciseID *int       `json:"wger_exercise_id,omitempty" validate:"omitempty,min=1"`
	CustomName     string     `json:"custom_name" validate:"required,max=255"`
	OrderInWorkout *int       `json:"order_in_workout,omitempty" validate:"omitempty,min=0"`
	Sets           []SetInput `json:"sets" validate:"dive"`
}

// SetInput is one set within an ExerciseInput. Weight and repetitions are
// pointers so that an omitted value is distinguishable from zero.
type SetInput struct {
	SetNumber   int              `json:"set_number" validate:"min=1"`
	WeightKg    *decimal.Decimal `json:"weight_kg" validate:"required"`
	Repetitions *int             `json:"repetitions" validate:"required,min=0"`
	RPE         *int             `json:"rpe,omitempty" validate:"omitempty,min=1,max=10"`
	ToFailure   bool             `json:"to_failure,omitempty"`
}

// Validate checks the whole payload and reports the first problem as a
// *models.ValidationError whose Field is a path such as
// "exercises[1].sets[0].rpe".
func (in *WorkoutInput) Validate() error {
	if err := validation.Struct(in); err != nil {
		return err
	}

	if in.EndTime != nil && in.EndTime.Before(in.StartTime) {
		return models.Invalid("end_time", "must not be before start_time")
	}

	for i, ex := range in.Exercises {
		for j, s := range ex.Sets {
			w := *s.WeightKg
			if w.IsNegative() {
				return models.Invalid(setPath(i, j, "weight_kg"), "must not be negative")
			}
			if !models.FitsFixed(w, maxWeightDigits) {
				return models.Invalid(setPath(i, j, "weight_kg"), "must be below 10000 with at most 2 decimal places")
			}
		}
	}
	return nil
}

func setPath(exercise, set int, field string) string {
	return fmt.Sprintf("exercises[%d].sets[%d].%s", exercise, set, field)
}

// CheckWorkout applies the builder's rules to a workout that already exists,
// such as one read back from an export.
func CheckWorkout(w *models.Workout) error {
	in := WorkoutInput{
		Title:           w.Title,
		StartTime:       w.StartTime,
		EndTime:         w.EndTime,
		DurationMinutes: w.DurationMinutes,
		ActivityType:    w.ActivityType,
		Notes:           w.Notes,
		Exercises:       make([]ExerciseInput, len(w.Exercises)),
	}
	for i, e := range w.Exercises {
		ex := ExerciseInput{
			WgerExerciseID: e.WgerExerciseID,
			CustomName:     e.CustomName,
			OrderInWorkout: &e.OrderInWorkout,
			Sets:           make([]SetInput, len(e.Sets)),
		}
		for j, s := range e.Sets {
			ex.Sets[j] = SetInput{
				SetNumber:   s.SetNumber,
				WeightKg:    &s.WeightKg,
				Repetitions: &s.Repetitions,
				RPE:         s.RPE,
				ToFailure:   s.ToFailure,
			}
		}
		in.Exercises[i] = ex
	}
	if !models.IsValidActivityType(string(w.ActivityType)) {
		return models.Invalid("activity_type", "unknown activity type %q", w.ActivityType)
	}
	return in.Validate()
}
