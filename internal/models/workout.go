// ABOUTME: Workout, ExerciseLog, and SetLog models for the three-tier training log.
// ABOUTME: A workout owns ordered exercises; each exercise owns ordered sets.
package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ActivityType tags the kind of training session.
type ActivityType string

const (
	ActivityWeightlifting ActivityType = "weightlifting"
	ActivityCardio        ActivityType = "cardio"
	ActivityHIIT          ActivityType = "hiit"
	ActivityOther         ActivityType = "other"
)

// AllActivityTypes returns all valid activity types.
var AllActivityTypes = []ActivityType{
	ActivityWeightlifting, ActivityCardio, ActivityHIIT, ActivityOther,
}

// IsValidActivityType checks if a string is a valid activity type.
func IsValidActivityType(s string) bool {
	for _, at := range AllActivityTypes {
		if string(at) == s {
			return true
		}
	}
	return false
}

// Workout represents a single training session.
type Workout struct {
	ID              uuid.UUID     `json:"id"`
	UserID          UserID        `json:"user"`
	Title           *string       `json:"title,omitempty"`
	StartTime       time.Time     `json:"start_time"`
	EndTime         *time.Time    `json:"end_time,omitempty"`
	DurationMinutes *int          `json:"duration_minutes,omitempty"`
	ActivityType    ActivityType  `json:"activity_type"`
	Notes           string        `json:"notes"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
	Exercises       []ExerciseLog `json:"exercises"` // Populated when fetching full workout
}

// NewWorkout creates a new Workout with generated UUID and current timestamps.
func NewWorkout(user UserID, activity ActivityType, start time.Time) *Workout {
	now := time.Now().UTC()
	return &Workout{
		ID:           uuid.New(),
		UserID:       user,
		StartTime:    start,
		ActivityType: activity,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// WithTitle sets the session title.
func (w *Workout) WithTitle(title string) *Workout {
	w.Title = &title
	return w
}

// WithEndTime sets the session end.
func (w *Workout) WithEndTime(t time.Time) *Workout {
	w.EndTime = &t
	return w
}

// WithDuration sets the duration in minutes.
func (w *Workout) WithDuration(minutes int) *Workout {
	w.DurationMinutes = &minutes
	return w
}

// WithNotes sets notes on the workout.
func (w *Workout) WithNotes(notes string) *Workout {
	w.Notes = notes
	return w
}

// Volume is the total weight moved: the sum of weight × reps over every set.
func (w *Workout) Volume() decimal.Decimal {
	total := decimal.Zero
	for i := range w.Exercises {
		total = total.Add(w.Exercises[i].Volume())
	}
	return total
}

// SetCount returns the number of sets across all exercises.
func (w *Workout) SetCount() int {
	n := 0
	for i := range w.Exercises {
		n += len(w.Exercises[i].Sets)
	}
	return n
}

// ExerciseLog is one exercise performed within a workout.
type ExerciseLog struct {
	ID             uuid.UUID `json:"id"`
	WorkoutID      uuid.UUID `json:"-"`
	WgerExerciseID *int      `json:"wger_exercise_id,omitempty"`
	CustomName     string    `json:"custom_name"`
	OrderInWorkout int       `json:"order_in_workout"`
	CreatedAt      time.Time `json:"created_at"`
	Sets           []SetLog  `json:"sets"`
}

// NewExerciseLog creates an ExerciseLog bound to a workout with the default order of 1.
func NewExerciseLog(workoutID uuid.UUID, name string) *ExerciseLog {
	return &ExerciseLog{
		ID:             uuid.New(),
		WorkoutID:      workoutID,
		CustomName:     name,
		OrderInWorkout: 1,
		CreatedAt:      time.Now().UTC(),
	}
}

// Volume sums weight × reps over the exercise's sets.
func (e *ExerciseLog) Volume() decimal.Decimal {
	total := decimal.Zero
	for _, s := range e.Sets {
		total = total.Add(s.Volume())
	}
	return total
}

// SortSets orders sets by ascending set number.
func (e *ExerciseLog) SortSets() {
	sort.SliceStable(e.Sets, func(i, j int) bool {
		return e.Sets[i].SetNumber < e.Sets[j].SetNumber
	})
}

// SetLog is the performance record of a single set.
type SetLog struct {
	ID            uuid.UUID       `json:"id"`
	ExerciseLogID uuid.UUID       `json:"-"`
	SetNumber     int             `json:"set_number"`
	WeightKg      decimal.Decimal `json:"weight_kg"`
	Repetitions   int             `json:"repetitions"`
	RPE           *int            `json:"rpe,omitempty"`
	ToFailure     bool            `json:"to_failure"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NewSetLog creates a SetLog bound to an exercise.
func NewSetLog(exerciseID uuid.UUID, setNumber int, weight decimal.Decimal, reps int) *SetLog {
	return &SetLog{
		ID:            uuid.New(),
		ExerciseLogID: exerciseID,
		SetNumber:     setNumber,
		WeightKg:      weight,
		Repetitions:   reps,
		CreatedAt:     time.Now().UTC(),
	}
}

// Volume is weight × repetitions for the set.
func (s SetLog) Volume() decimal.Decimal {
	return s.WeightKg.Mul(decimal.NewFromInt(int64(s.Repetitions)))
}
