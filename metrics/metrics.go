// Package metrics publishes the outcome of finished operations as Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smartcontractkit/content-operations-framework/operation"
)

// DefaultNamespace prefixes every metric name unless another namespace is given.
const DefaultNamespace = "contentops"

// Outcome labels derived from the executive summary.
const (
	OutcomeSuccessful = "successful"
	OutcomeWarning    = "warning"
	OutcomeError      = "error"
)

// Recorder holds the operation metrics.
type Recorder struct {
	// OperationsTotal counts finished operations.
	// Labels: label (default label of the operation), outcome (successful, warning, error)
	OperationsTotal *prometheus.CounterVec

	// MessagesTotal counts recorded messages.
	// Labels: severity (debug, info, warn, error)
	MessagesTotal *prometheus.CounterVec

	// CountersTotal accumulates the named counters of finished operations.
	// Labels: counter
	CountersTotal *prometheus.CounterVec

	// DurationSeconds measures operation durations. Operations without a known duration are skipped.
	// Labels: label
	DurationSeconds *prometheus.HistogramVec

	// CompensationsTotal counts compensating actions performed by rollbacks.
	// Labels: kind (created, updated), outcome (compensated, failed)
	CompensationsTotal *prometheus.CounterVec
}

// NewRecorder creates the metrics and registers them with reg.
func NewRecorder(namespace string, reg prometheus.Registerer) *Recorder {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	factory := promauto.With(reg)

	return &Recorder{
		OperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Total number of finished operations by label and outcome",
			},
			[]string{"label", "outcome"},
		),
		MessagesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_total",
				Help:      "Total number of operation messages by severity",
			},
			[]string{"severity"},
		),
		CountersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "counters_total",
				Help:      "Sum of named operation counters",
			},
			[]string{"counter"},
		),
		DurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "duration_seconds",
				Help:      "Operation duration in seconds",
				Buckets:   []float64{0.5, 1, 5, 10, 30, 60, 300, 900},
			},
			[]string{"label"},
		),
		CompensationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "compensations_total",
				Help:      "Total compensating actions performed by rollbacks by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
	}
}

// ObserveSnapshot records a finished operation.
func (r *Recorder) ObserveSnapshot(snap operation.Snapshot) {
	r.OperationsTotal.WithLabelValues(snap.DefaultLabel, Outcome(snap)).Inc()

	for _, m := range snap.Messages {
		r.MessagesTotal.WithLabelValues(m.Severity.Name()).Inc()
	}
	for _, c := range snap.Counters {
		if c.Value > 0 {
			r.CountersTotal.WithLabelValues(c.Name).Add(float64(c.Value))
		}
	}
	if snap.DurationMillis >= 0 {
		r.DurationSeconds.WithLabelValues(snap.DefaultLabel).Observe(float64(snap.DurationMillis) / 1000)
	}
}

// ObserveRollback records the compensating actions of a rollback.
func (r *Recorder) ObserveRollback(summary operation.RollbackSummary) {
	r.observeOutcome(operation.AssetCreated, summary.Created)
	r.observeOutcome(operation.AssetUpdated, summary.Updated)
}

func (r *Recorder) observeOutcome(kind operation.AssetKind, o operation.RollbackOutcome) {
	if n := len(o.Compensated); n > 0 {
		r.CompensationsTotal.WithLabelValues(string(kind), "compensated").Add(float64(n))
	}
	if n := len(o.Failed); n > 0 {
		r.CompensationsTotal.WithLabelValues(string(kind), "failed").Add(float64(n))
	}
}

// Outcome classifies a snapshot the same way its executive summary does.
func Outcome(snap operation.Snapshot) string {
	switch {
	case snap.Failures() > 0:
		return OutcomeError
	case snap.Warnings() > 0:
		return OutcomeWarning
	default:
		return OutcomeSuccessful
	}
}

// Handler serves the metrics gathered by g in the Prometheus exposition format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
