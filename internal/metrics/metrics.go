// ABOUTME: Prometheus instrumentation for the builder, ledger engine, and services.
// ABOUTME: A nil *Metrics is valid and records nothing.
package metrics

import (
	"errors"
	"time"

	"github.com/harperreed/biosync/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "biosync"

// Outcome labels.
const (
	OutcomeOK          = "ok"
	OutcomeValidation  = "validation"
	OutcomeNotFound    = "not_found"
	OutcomeConsistency = "consistency"
	OutcomeError       = "error"
)

// Metrics holds the collectors for core operations.
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	volumeKg   prometheus.Counter
	progress   *prometheus.CounterVec
}

// New registers the collectors with reg. Pass prometheus.NewRegistry() in
// tests to keep them isolated from the default registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "core",
			Name:      "operations_total",
			Help:      "Core operations by name and outcome",
		}, []string{"op", "outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "core",
			Name:      "operation_duration_seconds",
			Help:      "Core operation latency in seconds",
			Buckets:   []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"op"}),
		volumeKg: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "workouts",
			Name:      "volume_kg_total",
			Help:      "Training volume (weight x reps) committed through the builder",
		}),
		progress: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "goals",
			Name:      "status_transitions_total",
			Help:      "Goal status changes applied by the ledger",
		}, []string{"from", "to"}),
	}
}

// Observe records one finished operation.
func (m *Metrics) Observe(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, Outcome(err)).Inc()
	m.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// AddVolume adds committed training volume.
func (m *Metrics) AddVolume(kg float64) {
	if m == nil || kg <= 0 {
		return
	}
	m.volumeKg.Add(kg)
}

// Transition records a goal status change. Unchanged statuses are ignored.
func (m *Metrics) Transition(from, to models.GoalStatus) {
	if m == nil || from == to {
		return
	}
	m.progress.WithLabelValues(string(from), string(to)).Inc()
}

// Outcome classifies err into a low-cardinality label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, models.ErrValidation):
		return OutcomeValidation
	case errors.Is(err, models.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, models.ErrConsistency):
		return OutcomeConsistency
	default:
		return OutcomeError
	}
}
