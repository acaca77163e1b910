// ABOUTME: Tests for biometric reading persistence.
// ABOUTME: Verifies optional fields survive a round trip and latest/list ordering.
package storage

import (
	"context"
	"testing"
	"time"

	"github.com/harperreed/biosync/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBiometricRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	rhr := 52
	b := models.NewBiometricData(alice, time.Date(2025, 2, 1, 6, 0, 0, 0, time.UTC)).
		WithWeight(decimal.RequireFromString("81.40")).
		WithHeart(&rhr, nil)
	require.NoError(t, db.CreateBiometric(ctx, b))

	got, err := db.GetBiometric(ctx, alice, b.ID.String()[:8])
	require.NoError(t, err)
	require.NotNil(t, got.RecordedWeightKg)
	assert.Equal(t, "81.40", got.RecordedWeightKg.StringFixed(2))
	require.NotNil(t, got.RestingHeartRate)
	assert.Equal(t, 52, *got.RestingHeartRate)
	assert.Nil(t, got.HeartRateVariability)
	assert.Nil(t, got.SleepDurationHours)
	assert.True(t, b.Timestamp.Equal(got.Timestamp))
}

func TestListAndLatestBiometrics(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	var ids []string
	for i := 3; i >= 1; i-- {
		b := models.NewBiometricData(alice, now.Add(-time.Duration(i)*time.Hour)).WithReadiness(70 + i)
		require.NoError(t, db.CreateBiometric(ctx, b))
		ids = append(ids, b.ID.String())
	}
	require.NoError(t, db.CreateBiometric(ctx, models.NewBiometricData(bob, now).WithReadiness(10)))

	list, err := db.ListBiometrics(ctx, alice, nil, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, ids[2], list[0].ID.String())

	since := now.Add(-90 * time.Minute)
	recent, err := db.ListBiometrics(ctx, alice, &since, 0)
	require.NoError(t, err)
	assert.Len(t, recent, 1)

	latest, err := db.GetLatestBiometric(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, ids[2], latest.ID.String())

	_, err = db.GetLatestBiometric(ctx, "carol")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDeleteBiometric(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	b := models.NewBiometricData(alice, time.Now()).WithReadiness(80)
	require.NoError(t, db.CreateBiometric(ctx, b))

	assert.ErrorIs(t, db.DeleteBiometric(ctx, bob, b.ID.String()), models.ErrNotFound)
	require.NoError(t, db.DeleteBiometric(ctx, alice, b.ID.String()))
	assert.ErrorIs(t, db.DeleteBiometric(ctx, alice, b.ID.String()), models.ErrNotFound)
}
