// ABOUTME: MCP tool handlers for workouts.
// ABOUTME: Converts tool payloads into workout inputs and delegates to the builder.
package mcp

import (
	"context"
	"fmt"

	"github.com/harperreed/biosync/internal/models"
	"github.com/harperreed/biosync/internal/report"
	"github.com/harperreed/biosync/internal/storage"
	"github.com/harperreed/biosync/internal/workouts"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type buildWorkoutInput struct {
	Title           string          `json:"title,omitempty" jsonschema:"Optional session title"`
	StartTime       string          `json:"start_time" jsonschema:"Start time (ISO 8601)"`
	EndTime         string          `json:"end_time,omitempty" jsonschema:"End time (ISO 8601); duration is derived from it when omitted"`
	DurationMinutes int             `json:"duration_minutes,omitempty" jsonschema:"Duration in minutes"`
	ActivityType    string          `json:"activity_type,omitempty" jsonschema:"weightlifting, cardio, hiit, or other (default weightlifting)"`
	Notes           string          `json:"notes,omitempty" jsonschema:"Session notes"`
	Exercises       []exerciseInput `json:"exercises" jsonschema:"Exercises in the order performed"`
}

type exerciseInput struct {
	CustomName     string     `json:"custom_name" jsonschema:"Exercise name"`
	WgerExerciseID int        `json:"wger_exercise_id,omitempty" jsonschema:"Optional wger catalogue ID"`
	OrderInWorkout *int       `json:"order_in_workout,omitempty" jsonschema:"Position in the workout; defaults to 1, ties keep list order"`
	Sets           []setInput `json:"sets" jsonschema:"Sets performed"`
}

type setInput struct {
	SetNumber   int    `json:"set_number" jsonschema:"Set number starting at 1"`
	WeightKg    string `json:"weight_kg" jsonschema:"Weight in kg with up to two decimals, e.g. 82.5"`
	Repetitions int    `json:"repetitions" jsonschema:"Repetitions completed"`
	RPE         int    `json:"rpe,omitempty" jsonschema:"Rate of perceived exertion 1-10"`
	ToFailure   bool   `json:"to_failure,omitempty" jsonschema:"Set taken to failure"`
}

func (in buildWorkoutInput) toWorkoutInput() (workouts.WorkoutInput, error) {
	out := workouts.WorkoutInput{
		Title:           optString(in.Title),
		DurationMinutes: optInt(in.DurationMinutes),
		ActivityType:    models.ActivityType(in.ActivityType),
		Notes:           in.Notes,
	}

	start, err := parseTimestamp("start_time", in.StartTime)
	if err != nil {
		return out, err
	}
	if start != nil {
		out.StartTime = *start
	}
	if out.EndTime, err = parseTimestamp("end_time", in.EndTime); err != nil {
		return out, err
	}

	out.Exercises = make([]workouts.ExerciseInput, len(in.Exercises))
	for i, ex := range in.Exercises {
		sets := make([]workouts.SetInput, len(ex.Sets))
		for j, set := range ex.Sets {
			field := fmt.Sprintf("exercises[%d].sets[%d].weight_kg", i, j)
			weight, err := parseDecimal(field, set.WeightKg)
			if err != nil {
				return out, err
			}
			reps := set.Repetitions
			sets[j] = workouts.SetInput{
				SetNumber:   set.SetNumber,
				WeightKg:    weight,
				Repetitions: &reps,
				RPE:         optInt(set.RPE),
				ToFailure:   set.ToFailure,
			}
		}
		out.Exercises[i] = workouts.ExerciseInput{
			WgerExerciseID: optInt(ex.WgerExerciseID),
			CustomName:     ex.CustomName,
			OrderInWorkout: ex.OrderInWorkout,
			Sets:           sets,
		}
	}
	return out, nil
}

type workoutOutput struct {
	ID        string `json:"id"`
	Exercises int    `json:"exercises"`
	Sets      int    `json:"sets"`
	VolumeKg  string `json:"volume_kg"`
	Message   string `json:"message"`
}

func (s *Server) handleBuildWorkout(ctx context.Context, req *mcp.CallToolRequest, input buildWorkoutInput) (*mcp.CallToolResult, workoutOutput, error) {
	in, err := input.toWorkoutInput()
	if err != nil {
		return nil, workoutOutput{}, toolError("build workout", err)
	}

	w, err := s.svc.Workouts.Build(ctx, s.user, in)
	if err != nil {
		return nil, workoutOutput{}, toolError("build workout", err)
	}

	sets := 0
	for _, e := range w.Exercises {
		sets += len(e.Sets)
	}
	volume := report.WorkoutVolume(w).StringFixed(2)
	return nil, workoutOutput{
		ID:        shortID(w.ID),
		Exercises: len(w.Exercises),
		Sets:      sets,
		VolumeKg:  volume,
		Message:   fmt.Sprintf("Recorded %s workout with %d exercises, %d sets, %s kg volume (ID: %s)", w.ActivityType, len(w.Exercises), sets, volume, shortID(w.ID)),
	}, nil
}

type listWorkoutsInput struct {
	ActivityType string `json:"activity_type,omitempty" jsonschema:"Filter by activity type"`
	Since        string `json:"since,omitempty" jsonschema:"Only workouts starting at or after this time (ISO 8601)"`
	Limit        int    `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

func (s *Server) handleListWorkouts(ctx context.Context, req *mcp.CallToolRequest, input listWorkoutsInput) (*mcp.CallToolResult, any, error) {
	filter := storage.WorkoutFilter{Limit: limitOrDefault(input.Limit)}
	if input.ActivityType != "" {
		if !models.IsValidActivityType(input.ActivityType) {
			return nil, nil, toolError("list workouts", models.Invalid("activity_type", "unknown activity type %q", input.ActivityType))
		}
		at := models.ActivityType(input.ActivityType)
		filter.ActivityType = &at
	}
	since, err := parseTimestamp("since", input.Since)
	if err != nil {
		return nil, nil, toolError("list workouts", err)
	}
	filter.Since = since

	list, err := s.svc.Workouts.List(ctx, s.user, filter)
	if err != nil {
		return nil, nil, toolError("list workouts", err)
	}
	if len(list) == 0 {
		return nil, map[string]any{"message": "No workouts found."}, nil
	}
	return nil, map[string]any{"workouts": list, "count": len(list)}, nil
}

func (s *Server) handleGetWorkout(ctx context.Context, req *mcp.CallToolRequest, input idInput) (*mcp.CallToolResult, any, error) {
	w, err := s.svc.Workouts.Get(ctx, s.user, input.ID)
	if err != nil {
		return nil, nil, toolError("get workout", err)
	}
	return nil, map[string]any{
		"workout":   w,
		"volume_kg": report.WorkoutVolume(w).StringFixed(2),
	}, nil
}

func (s *Server) handleDeleteWorkout(ctx context.Context, req *mcp.CallToolRequest, input idInput) (*mcp.CallToolResult, simpleOutput, error) {
	if err := s.svc.Workouts.Delete(ctx, s.user, input.ID); err != nil {
		return nil, simpleOutput{}, toolError("delete workout", err)
	}
	return nil, simpleOutput{
		Message: fmt.Sprintf("Deleted workout: %s", input.ID),
	}, nil
}
