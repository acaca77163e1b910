// ABOUTME: MCP tool handlers for goals and the progress ledger.
// ABOUTME: Every progress write goes through the goals engine so cached totals stay in step.
package mcp

import (
	"context"
	"fmt"

	"github.com/harperreed/biosync/internal/goals"
	"github.com/harperreed/biosync/internal/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type createGoalInput struct {
	Title          string `json:"title" jsonschema:"Goal title, unique per user"`
	GoalType       string `json:"goal_type,omitempty" jsonschema:"Fitness, Learning, Health, Work, Finance, or Other"`
	Description    string `json:"description,omitempty" jsonschema:"Longer description"`
	TargetValue    string `json:"target_value,omitempty" jsonschema:"Numeric target, e.g. 100 or 42.5 (default 1)"`
	TargetUnit     string `json:"target_unit" jsonschema:"Unit of the target, e.g. km or sessions"`
	WgerExerciseID int    `json:"wger_exercise_id,omitempty" jsonschema:"Optional wger exercise this goal tracks"`
	StartDate      string `json:"start_date,omitempty" jsonschema:"YYYY-MM-DD (default today)"`
	TargetDate     string `json:"target_date,omitempty" jsonschema:"YYYY-MM-DD deadline"`
}

func (in createGoalInput) toGoalInput() (goals.GoalInput, error) {
	out := goals.GoalInput{
		Title:          in.Title,
		GoalType:       models.GoalType(in.GoalType),
		Description:    optString(in.Description),
		TargetUnit:     in.TargetUnit,
		WgerExerciseID: optInt(in.WgerExerciseID),
	}
	var err error
	if out.TargetValue, err = parseDecimal("target_value", in.TargetValue); err != nil {
		return out, err
	}
	if out.StartDate, err = parseDate("start_date", in.StartDate); err != nil {
		return out, err
	}
	if out.TargetDate, err = parseDate("target_date", in.TargetDate); err != nil {
		return out, err
	}
	return out, nil
}

type goalOutput struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Status       string `json:"status"`
	CurrentValue string `json:"current_value"`
	TargetValue  string `json:"target_value"`
	Percent      string `json:"progress_percentage"`
	Message      string `json:"message"`
}

func newGoalOutput(g *models.Goal, msg string) goalOutput {
	return goalOutput{
		ID:           shortID(g.ID),
		Title:        g.Title,
		Status:       string(g.Status),
		CurrentValue: g.CurrentValue.StringFixed(2),
		TargetValue:  g.TargetValue.StringFixed(2),
		Percent:      g.ProgressPercentage().StringFixed(2),
		Message:      msg,
	}
}

func (s *Server) handleCreateGoal(ctx context.Context, req *mcp.CallToolRequest, input createGoalInput) (*mcp.CallToolResult, goalOutput, error) {
	in, err := input.toGoalInput()
	if err != nil {
		return nil, goalOutput{}, toolError("create goal", err)
	}
	g, err := s.svc.Goals.CreateGoal(ctx, s.user, in)
	if err != nil {
		return nil, goalOutput{}, toolError("create goal", err)
	}
	return nil, newGoalOutput(g, fmt.Sprintf("Created goal %q: 0/%s %s (ID: %s)", g.Title, g.TargetValue.StringFixed(2), g.TargetUnit, shortID(g.ID))), nil
}

type listGoalsInput struct {
	Status string `json:"status,omitempty" jsonschema:"NOT_STARTED, IN_PROGRESS, COMPLETED, or STUCK"`
}

func (s *Server) handleListGoals(ctx context.Context, req *mcp.CallToolRequest, input listGoalsInput) (*mcp.CallToolResult, any, error) {
	var status *models.GoalStatus
	if input.Status != "" {
		st := models.GoalStatus(input.Status)
		if !st.Valid() {
			return nil, nil, toolError("list goals", models.Invalid("status", "unknown status %q", input.Status))
		}
		status = &st
	}

	list, err := s.svc.Goals.ListGoals(ctx, s.user, status)
	if err != nil {
		return nil, nil, toolError("list goals", err)
	}
	if len(list) == 0 {
		return nil, map[string]any{"message": "No goals found."}, nil
	}
	return nil, map[string]any{"goals": list, "count": len(list)}, nil
}

func (s *Server) handleGetGoal(ctx context.Context, req *mcp.CallToolRequest, input idInput) (*mcp.CallToolResult, any, error) {
	g, err := s.svc.Goals.GetGoal(ctx, s.user, input.ID)
	if err != nil {
		return nil, nil, toolError("get goal", err)
	}
	entries, err := s.svc.Goals.ListProgress(ctx, s.user, g.ID.String())
	if err != nil {
		return nil, nil, toolError("get goal", err)
	}
	return nil, map[string]any{"goal": g, "progress_entries": entries}, nil
}

func (s *Server) handleDeleteGoal(ctx context.Context, req *mcp.CallToolRequest, input idInput) (*mcp.CallToolResult, simpleOutput, error) {
	if err := s.svc.Goals.DeleteGoal(ctx, s.user, input.ID); err != nil {
		return nil, simpleOutput{}, toolError("delete goal", err)
	}
	return nil, simpleOutput{Message: fmt.Sprintf("Deleted goal: %s", input.ID)}, nil
}

func (s *Server) handleCompleteGoal(ctx context.Context, req *mcp.CallToolRequest, input idInput) (*mcp.CallToolResult, goalOutput, error) {
	g, err := s.svc.Goals.CompleteGoal(ctx, s.user, input.ID)
	if err != nil {
		return nil, goalOutput{}, toolError("complete goal", err)
	}
	return nil, newGoalOutput(g, fmt.Sprintf("Goal %q marked completed", g.Title)), nil
}

func (s *Server) handleMarkStuck(ctx context.Context, req *mcp.CallToolRequest, input idInput) (*mcp.CallToolResult, goalOutput, error) {
	g, err := s.svc.Goals.MarkStuck(ctx, s.user, input.ID)
	if err != nil {
		return nil, goalOutput{}, toolError("mark goal stuck", err)
	}
	return nil, newGoalOutput(g, fmt.Sprintf("Goal %q marked stuck", g.Title)), nil
}

type auditOutput struct {
	ID         string `json:"id"`
	Entries    int    `json:"entries"`
	Expected   string `json:"expected_value"`
	Cached     string `json:"cached_value"`
	Drift      string `json:"drift"`
	Consistent bool   `json:"consistent"`
	Overridden bool   `json:"overridden"`
}

func (s *Server) handleAuditGoal(ctx context.Context, req *mcp.CallToolRequest, input idInput) (*mcp.CallToolResult, auditOutput, error) {
	a, err := s.svc.Goals.Recompute(ctx, s.user, input.ID)
	if err != nil {
		return nil, auditOutput{}, toolError("audit goal", err)
	}
	return nil, auditOutput{
		ID:         shortID(a.Goal.ID),
		Entries:    a.Entries,
		Expected:   a.Expected.StringFixed(2),
		Cached:     a.Cached.StringFixed(2),
		Drift:      a.Drift.StringFixed(2),
		Consistent: a.Consistent(),
		Overridden: a.Overridden,
	}, nil
}

type logProgressInput struct {
	GoalID string `json:"goal_id" jsonschema:"Goal ID or prefix"`
	Date   string `json:"date,omitempty" jsonschema:"YYYY-MM-DD (default today)"`
	Value  string `json:"value" jsonschema:"Positive amount with up to two decimals"`
	Notes  string `json:"notes,omitempty" jsonschema:"Optional notes"`
}

type progressOutput struct {
	EntryID string     `json:"entry_id"`
	Goal    goalOutput `json:"goal"`
}

func (s *Server) handleLogProgress(ctx context.Context, req *mcp.CallToolRequest, input logProgressInput) (*mcp.CallToolResult, progressOutput, error) {
	value, err := parseDecimal("value", input.Value)
	if err != nil {
		return nil, progressOutput{}, toolError("log progress", err)
	}
	if value == nil {
		return nil, progressOutput{}, toolError("log progress", models.Invalid("value", "is required"))
	}
	d, err := parseDate("date", input.Date)
	if err != nil {
		return nil, progressOutput{}, toolError("log progress", err)
	}
	date := models.Today()
	if d != nil {
		date = *d
	}

	res, err := s.svc.Goals.LogProgress(ctx, s.user, input.GoalID, date, *value, optString(input.Notes))
	if err != nil {
		return nil, progressOutput{}, toolError("log progress", err)
	}
	msg := fmt.Sprintf("Logged %s on %s; %q is now %s/%s (%s)",
		res.Entry.Value.StringFixed(2), res.Entry.Date, res.Goal.Title,
		res.Goal.CurrentValue.StringFixed(2), res.Goal.TargetValue.StringFixed(2), res.Goal.Status)
	return nil, progressOutput{
		EntryID: shortID(res.Entry.ID),
		Goal:    newGoalOutput(res.Goal, msg),
	}, nil
}

type listProgressInput struct {
	GoalID string `json:"goal_id,omitempty" jsonschema:"Goal ID or prefix; all goals when omitted"`
}

func (s *Server) handleListProgress(ctx context.Context, req *mcp.CallToolRequest, input listProgressInput) (*mcp.CallToolResult, any, error) {
	entries, err := s.svc.Goals.ListProgress(ctx, s.user, input.GoalID)
	if err != nil {
		return nil, nil, toolError("list progress", err)
	}
	if len(entries) == 0 {
		return nil, map[string]any{"message": "No progress entries found."}, nil
	}
	return nil, map[string]any{"progress_entries": entries, "count": len(entries)}, nil
}

func (s *Server) handleDeleteProgress(ctx context.Context, req *mcp.CallToolRequest, input idInput) (*mcp.CallToolResult, goalOutput, error) {
	g, err := s.svc.Goals.DeleteProgress(ctx, s.user, input.ID)
	if err != nil {
		return nil, goalOutput{}, toolError("delete progress", err)
	}
	return nil, newGoalOutput(g, fmt.Sprintf("Deleted progress entry %s; %q is now %s/%s (%s)",
		input.ID, g.Title, g.CurrentValue.StringFixed(2), g.TargetValue.StringFixed(2), g.Status)), nil
}
