// ABOUTME: Tests for the pure creation and reversal transitions.
// ABOUTME: Table-driven over the status state machine.
package goals

import (
	"testing"

	"github.com/harperreed/biosync/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func goalAt(current, target string, status models.GoalStatus) *models.Goal {
	g := models.NewGoal("alice", "g", decimal.RequireFromString(target), "x")
	g.CurrentValue = decimal.RequireFromString(current)
	g.Status = status
	return g
}

func TestApplyEntry(t *testing.T) {
	tests := []struct {
		name       string
		current    string
		status     models.GoalStatus
		value      string
		wantValue  string
		wantStatus models.GoalStatus
	}{
		{"first progress", "0", models.GoalNotStarted, "40", "40.00", models.GoalInProgress},
		{"reaches target", "40", models.GoalInProgress, "60", "100.00", models.GoalCompleted},
		{"overshoots", "40", models.GoalInProgress, "70", "110.00", models.GoalCompleted},
		{"straight to done", "0", models.GoalNotStarted, "100", "100.00", models.GoalCompleted},
		{"stays in progress", "10", models.GoalInProgress, "5", "15.00", models.GoalInProgress},
		{"stuck stays stuck", "10", models.GoalStuck, "5", "15.00", models.GoalStuck},
		{"stuck can complete", "90", models.GoalStuck, "15", "105.00", models.GoalCompleted},
		{"completed stays completed", "120", models.GoalCompleted, "1", "121.00", models.GoalCompleted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := goalAt(tt.current, "100", tt.status)
			applyEntry(g, decimal.RequireFromString(tt.value))
			assert.Equal(t, tt.wantValue, g.CurrentValue.StringFixed(2))
			assert.Equal(t, tt.wantStatus, g.Status)
		})
	}
}

func TestReverseEntry(t *testing.T) {
	tests := []struct {
		name       string
		current    string
		status     models.GoalStatus
		value      string
		wantValue  string
		wantStatus models.GoalStatus
	}{
		{"back under target", "110", models.GoalCompleted, "70", "40.00", models.GoalInProgress},
		{"back to zero", "40", models.GoalInProgress, "40", "0.00", models.GoalNotStarted},
		{"clamped at zero", "30", models.GoalInProgress, "50", "0.00", models.GoalNotStarted},
		{"still above target", "150", models.GoalCompleted, "20", "130.00", models.GoalCompleted},
		{"exactly at target", "120", models.GoalCompleted, "20", "100.00", models.GoalCompleted},
		{"stuck reopens", "50", models.GoalStuck, "10", "40.00", models.GoalInProgress},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := goalAt(tt.current, "100", tt.status)
			reverseEntry(g, decimal.RequireFromString(tt.value))
			assert.Equal(t, tt.wantValue, g.CurrentValue.StringFixed(2))
			assert.Equal(t, tt.wantStatus, g.Status)
		})
	}
}

func TestZeroTargetCompletesOnFirstEntry(t *testing.T) {
	g := goalAt("0", "0", models.GoalNotStarted)
	applyEntry(g, decimal.RequireFromString("0.01"))
	assert.Equal(t, models.GoalCompleted, g.Status)
}

func TestRebuild(t *testing.T) {
	tests := []struct {
		name       string
		current    string
		status     models.GoalStatus
		values     []string
		wantValue  string
		wantStatus models.GoalStatus
	}{
		{"inflated total is recomputed", "999", models.GoalCompleted, nil, "0.00", models.GoalNotStarted},
		{"partial progress", "5", models.GoalNotStarted, []string{"10", "20"}, "30.00", models.GoalInProgress},
		{"entries complete the goal", "0", models.GoalInProgress, []string{"60", "50"}, "110.00", models.GoalCompleted},
		{"hand completion is kept", "100", models.GoalCompleted, []string{"30"}, "100.00", models.GoalCompleted},
		{"stuck flag is kept", "30", models.GoalStuck, []string{"30"}, "30.00", models.GoalStuck},
		{"stuck goal completed by entries", "0", models.GoalStuck, []string{"100"}, "100.00", models.GoalCompleted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := goalAt(tt.current, "100", tt.status)
			values := make([]decimal.Decimal, 0, len(tt.values))
			for _, v := range tt.values {
				values = append(values, decimal.RequireFromString(v))
			}
			Rebuild(g, values)
			assert.Equal(t, tt.wantValue, g.CurrentValue.StringFixed(2))
			assert.Equal(t, tt.wantStatus, g.Status)
		})
	}
}
