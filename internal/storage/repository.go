// ABOUTME: Narrow storage interfaces consumed by the service packages.
// ABOUTME: Lets reporting and tools run against fakes as well as SQLite.
package storage

import (
	"context"
	"time"

	"github.com/harperreed/biosync/internal/models"
)

// Reader is the read-only view reporting needs.
type Reader interface {
	WorkoutTotals(ctx context.Context, user models.UserID, since *time.Time) (*WorkoutTotals, error)
	ListGoals(ctx context.Context, user models.UserID, status *models.GoalStatus) ([]*models.Goal, error)
	GetLatestBiometric(ctx context.Context, user models.UserID) (*models.BiometricData, error)
}

var _ Reader = (*DB)(nil)
