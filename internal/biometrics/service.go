// ABOUTME: Biometric reading service: validated single-row CRUD over the store.
// ABOUTME: Readings have no cross-entity effects.
package biometrics

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/biosync/internal/metrics"
	"github.com/harperreed/biosync/internal/models"
	"github.com/harperreed/biosync/internal/storage"
	"github.com/harperreed/biosync/internal/validation"
	"github.com/shopspring/decimal"
)

// Input is one reading. Timestamp defaults to now; at least one
// measurement must be present.
type Input struct {
	Timestamp            *time.Time       `json:"timestamp,omitempty"`
	RecordedWeightKg     *decimal.Decimal `json:"recorded_weight_kg,omitempty"`
	SleepDurationHours   *decimal.Decimal `json:"sleep_duration_hours,omitempty"`
	SleepScore           *int             `json:"sleep_score,omitempty" validate:"omitempty,min=0,max=100"`
	RestingHeartRate     *int             `json:"resting_heart_rate,omitempty" validate:"omitempty,min=1"`
	HeartRateVariability *int             `json:"heart_rate_variability,omitempty" validate:"omitempty,min=0"`
	ReadinessScore       *int             `json:"readiness_score,omitempty" validate:"omitempty,min=0,max=100"`
}

var (
	maxWeightKg   = decimal.NewFromInt(1000)
	maxSleepHours = decimal.NewFromInt(24)
)

// Validate checks ranges and precision.
func (in *Input) Validate() error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	if w := in.RecordedWeightKg; w != nil {
		if !w.IsPositive() || !w.LessThan(maxWeightKg) || !models.FitsFixed(*w, 5) {
			return models.Invalid("recorded_weight_kg", "must be above 0 and below 1000 with at most 2 decimal places")
		}
	}
	if h := in.SleepDurationHours; h != nil {
		if h.IsNegative() || h.GreaterThan(maxSleepHours) || !models.FitsFixed(*h, 4) {
			return models.Invalid("sleep_duration_hours", "must be between 0 and 24 with at most 2 decimal places")
		}
	}
	return nil
}

// CheckReading applies the Record rules to a reading that already exists,
// such as one read back from an export.
func CheckReading(b *models.BiometricData) error {
	in := Input{
		Timestamp:            &b.Timestamp,
		RecordedWeightKg:     b.RecordedWeightKg,
		SleepDurationHours:   b.SleepDurationHours,
		SleepScore:           b.SleepScore,
		RestingHeartRate:     b.RestingHeartRate,
		HeartRateVariability: b.HeartRateVariability,
		ReadinessScore:       b.ReadinessScore,
	}
	if err := in.Validate(); err != nil {
		return err
	}
	if !b.HasMeasurement() {
		return models.Invalid("", "at least one measurement is required")
	}
	return nil
}

// Service records and reads biometric data.
type Service struct {
	db      *storage.DB
	logger  *log.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewService returns a Service over db. logger and m may be nil.
func NewService(db *storage.DB, logger *log.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Service{
		db:      db,
		logger:  logger.WithPrefix("biometrics"),
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Record validates and stores a reading.
func (s *Service) Record(ctx context.Context, user models.UserID, in Input) (b *models.BiometricData, err error) {
	start := time.Now()
	defer func() { s.metrics.Observe("record_biometric", start, err) }()

	if !user.Valid() {
		return nil, models.Invalid("user", "is required")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	ts := s.now()
	if in.Timestamp != nil {
		ts = *in.Timestamp
	}
	b = models.NewBiometricData(user, ts)
	b.CreatedAt = s.now()
	b.RecordedWeightKg = in.RecordedWeightKg
	b.SleepDurationHours = in.SleepDurationHours
	b.SleepScore = in.SleepScore
	b.RestingHeartRate = in.RestingHeartRate
	b.HeartRateVariability = in.HeartRateVariability
	b.ReadinessScore = in.ReadinessScore
	if !b.HasMeasurement() {
		return nil, models.Invalid("", "at least one measurement is required")
	}

	if err := s.db.CreateBiometric(ctx, b); err != nil {
		return nil, err
	}
	s.logger.Info("biometric recorded", "user", user, "id", b.ID, "at", b.Timestamp)
	return b, nil
}

// List returns the user's most recent readings. limit <= 0 means all.
func (s *Service) List(ctx context.Context, user models.UserID, limit int) ([]*models.BiometricData, error) {
	return s.db.ListBiometrics(ctx, user, nil, limit)
}

// Latest returns the user's most recent reading.
func (s *Service) Latest(ctx context.Context, user models.UserID) (*models.BiometricData, error) {
	return s.db.GetLatestBiometric(ctx, user)
}

// Delete removes a reading by ID or unique prefix.
func (s *Service) Delete(ctx context.Context, user models.UserID, idOrPrefix string) (err error) {
	start := time.Now()
	defer func() { s.metrics.Observe("delete_biometric", start, err) }()

	if err = s.db.DeleteBiometric(ctx, user, idOrPrefix); err != nil {
		return err
	}
	s.logger.Info("biometric deleted", "user", user, "id", idOrPrefix)
	return nil
}
