// ABOUTME: MCP tool handlers for biometric readings and workout summaries.
// ABOUTME: Thin adapters over the biometrics service and the reporter.
package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/biosync/internal/biometrics"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type recordBiometricsInput struct {
	Timestamp            string `json:"timestamp,omitempty" jsonschema:"When the reading was taken (ISO 8601, default now)"`
	WeightKg             string `json:"weight_kg,omitempty" jsonschema:"Body weight in kg"`
	SleepHours           string `json:"sleep_hours,omitempty" jsonschema:"Hours slept"`
	SleepScore           *int   `json:"sleep_score,omitempty" jsonschema:"Sleep score 0-100"`
	RestingHeartRate     *int   `json:"resting_heart_rate,omitempty" jsonschema:"Resting heart rate in bpm"`
	HeartRateVariability *int   `json:"heart_rate_variability,omitempty" jsonschema:"HRV in ms"`
	ReadinessScore       *int   `json:"readiness_score,omitempty" jsonschema:"Readiness score 0-100"`
}

func (in recordBiometricsInput) toInput() (biometrics.Input, error) {
	out := biometrics.Input{
		SleepScore:           in.SleepScore,
		RestingHeartRate:     in.RestingHeartRate,
		HeartRateVariability: in.HeartRateVariability,
		ReadinessScore:       in.ReadinessScore,
	}
	var err error
	if out.Timestamp, err = parseTimestamp("timestamp", in.Timestamp); err != nil {
		return out, err
	}
	if out.RecordedWeightKg, err = parseDecimal("recorded_weight_kg", in.WeightKg); err != nil {
		return out, err
	}
	if out.SleepDurationHours, err = parseDecimal("sleep_duration_hours", in.SleepHours); err != nil {
		return out, err
	}
	return out, nil
}

func (s *Server) handleRecordBiometrics(ctx context.Context, req *mcp.CallToolRequest, input recordBiometricsInput) (*mcp.CallToolResult, simpleOutput, error) {
	in, err := input.toInput()
	if err != nil {
		return nil, simpleOutput{}, toolError("record biometrics", err)
	}
	b, err := s.svc.Biometrics.Record(ctx, s.user, in)
	if err != nil {
		return nil, simpleOutput{}, toolError("record biometrics", err)
	}
	return nil, simpleOutput{
		Message: fmt.Sprintf("Recorded biometrics at %s (ID: %s)", b.Timestamp.Format(time.RFC3339), shortID(b.ID)),
	}, nil
}

type listBiometricsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

func (s *Server) handleListBiometrics(ctx context.Context, req *mcp.CallToolRequest, input listBiometricsInput) (*mcp.CallToolResult, any, error) {
	list, err := s.svc.Biometrics.List(ctx, s.user, limitOrDefault(input.Limit))
	if err != nil {
		return nil, nil, toolError("list biometrics", err)
	}
	if len(list) == 0 {
		return nil, map[string]any{"message": "No biometric readings found."}, nil
	}
	return nil, map[string]any{"biometrics": list, "count": len(list)}, nil
}

type summaryInput struct {
	Days int `json:"days,omitempty" jsonschema:"Only count workouts from the last N days; all time when omitted"`
}

func (s *Server) handleWorkoutSummary(ctx context.Context, req *mcp.CallToolRequest, input summaryInput) (*mcp.CallToolResult, any, error) {
	var since *time.Time
	if input.Days > 0 {
		t := time.Now().AddDate(0, 0, -input.Days)
		since = &t
	}
	sum, err := s.svc.Reports.WorkoutSummary(ctx, s.user, since)
	if err != nil {
		return nil, nil, toolError("summarize workouts", err)
	}
	return nil, sum, nil
}
