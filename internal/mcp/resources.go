// ABOUTME: MCP resource implementations for biosync.
// ABOUTME: Provides biosync://summary, biosync://goals, and biosync://recent resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harperreed/biosync/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	summaryURI = "biosync://summary"
	goalsURI   = "biosync://goals"
	recentURI  = "biosync://recent"
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         summaryURI,
		Name:        "Training Dashboard",
		Description: "Workout totals for the last 30 days, goal counts by status, and latest vitals",
		MIMEType:    "application/json",
	}, s.handleSummaryResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         goalsURI,
		Name:        "Goals",
		Description: "All goals with their current progress",
		MIMEType:    "application/json",
	}, s.handleGoalsResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         recentURI,
		Name:        "Recent Activity",
		Description: "Last 10 workouts and last 5 biometric readings",
		MIMEType:    "application/json",
	}, s.handleRecentResource)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func (s *Server) handleSummaryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	since := time.Now().AddDate(0, 0, -30)
	dash, err := s.svc.Reports.Dashboard(ctx, s.user, &since)
	if err != nil {
		return nil, fmt.Errorf("failed to build dashboard: %w", err)
	}
	return jsonResource(summaryURI, dash)
}

func (s *Server) handleGoalsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	list, err := s.svc.Goals.ListGoals(ctx, s.user, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	overview, err := s.svc.Reports.GoalOverview(ctx, s.user)
	if err != nil {
		return nil, err
	}
	return jsonResource(goalsURI, map[string]any{
		"goals":    list,
		"overview": overview,
	})
}

func (s *Server) handleRecentResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	recent, err := s.svc.Workouts.List(ctx, s.user, storage.WorkoutFilter{Limit: 10})
	if err != nil {
		return nil, fmt.Errorf("failed to list workouts: %w", err)
	}
	vitals, err := s.svc.Biometrics.List(ctx, s.user, 5)
	if err != nil {
		return nil, fmt.Errorf("failed to list biometrics: %w", err)
	}
	return jsonResource(recentURI, map[string]any{
		"workouts":   recent,
		"biometrics": vitals,
	})
}
