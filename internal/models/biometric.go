// ABOUTME: BiometricData model for time-series vitals.
// ABOUTME: Weight, sleep, heart-rate, and readiness readings keyed by timestamp.
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BiometricData is one timestamped set of vitals. Every measurement is optional.
type BiometricData struct {
	ID                   uuid.UUID        `json:"id"`
	UserID               UserID           `json:"user"`
	Timestamp            time.Time        `json:"timestamp"`
	RecordedWeightKg     *decimal.Decimal `json:"recorded_weight_kg,omitempty"`
	SleepDurationHours   *decimal.Decimal `json:"sleep_duration_hours,omitempty"`
	SleepScore           *int             `json:"sleep_score,omitempty"`
	RestingHeartRate     *int             `json:"resting_heart_rate,omitempty"`
	HeartRateVariability *int             `json:"heart_rate_variability,omitempty"`
	ReadinessScore       *int             `json:"readiness_score,omitempty"`
	CreatedAt            time.Time        `json:"created_at"`
}

// NewBiometricData creates an empty reading at ts.
func NewBiometricData(user UserID, ts time.Time) *BiometricData {
	return &BiometricData{
		ID:        uuid.New(),
		UserID:    user,
		Timestamp: ts,
		CreatedAt: time.Now().UTC(),
	}
}

// WithWeight sets the recorded weight in kg.
func (b *BiometricData) WithWeight(kg decimal.Decimal) *BiometricData {
	b.RecordedWeightKg = &kg
	return b
}

// WithSleep sets sleep duration and score.
func (b *BiometricData) WithSleep(hours decimal.Decimal, score *int) *BiometricData {
	b.SleepDurationHours = &hours
	b.SleepScore = score
	return b
}

// WithHeart sets resting heart rate and HRV.
func (b *BiometricData) WithHeart(rhr, hrv *int) *BiometricData {
	b.RestingHeartRate = rhr
	b.HeartRateVariability = hrv
	return b
}

// WithReadiness sets the readiness score.
func (b *BiometricData) WithReadiness(score int) *BiometricData {
	b.ReadinessScore = &score
	return b
}

// HasMeasurement reports whether at least one vital is present.
func (b *BiometricData) HasMeasurement() bool {
	return b.RecordedWeightKg != nil || b.SleepDurationHours != nil || b.SleepScore != nil ||
		b.RestingHeartRate != nil || b.HeartRateVariability != nil || b.ReadinessScore != nil
}
