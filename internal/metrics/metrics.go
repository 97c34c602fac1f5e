// Package metrics exposes prometheus collectors for filter evaluation and
// render reconciliation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// evaluations counts pipeline runs.
	// Labels: trigger (quantitative_filter, nominal_filter, color, reset, transform, load)
	evaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "incidentmap",
		Subsystem: "explorer",
		Name:      "evaluations_total",
		Help:      "Total filter/aggregate/reconcile passes by trigger",
	}, []string{"trigger"})

	// evaluationLatency measures one full pass.
	// Labels: trigger
	evaluationLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "incidentmap",
		Subsystem: "explorer",
		Name:      "evaluation_seconds",
		Help:      "Duration of one filter/aggregate/reconcile pass",
		Buckets:   []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05, 0.1},
	}, []string{"trigger"})

	// visibleRecords is the size of the current visible subset.
	visibleRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "incidentmap",
		Subsystem: "explorer",
		Name:      "visible_records",
		Help:      "Number of records in the current visible subset",
	})

	// reconcileOps counts marker instructions.
	// Labels: op (create, update, remove)
	reconcileOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "incidentmap",
		Subsystem: "render",
		Name:      "operations_total",
		Help:      "Total marker instructions emitted by reconciliation",
	}, []string{"op"})

	// rejectedEvents counts events refused at the adapter boundary.
	// Labels: reason (unknown_attribute, kind_mismatch, loop_closed)
	rejectedEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "incidentmap",
		Subsystem: "explorer",
		Name:      "rejected_events_total",
		Help:      "Total events rejected before evaluation",
	}, []string{"reason"})
)

// RecordEvaluation records one pass and the size of its visible subset
func RecordEvaluation(trigger string, d time.Duration, visible int) {
	evaluations.WithLabelValues(trigger).Inc()
	evaluationLatency.WithLabelValues(trigger).Observe(d.Seconds())
	visibleRecords.Set(float64(visible))
}

// RecordReconcile records the instruction counts of one diff
func RecordReconcile(create, update, remove int) {
	reconcileOps.WithLabelValues("create").Add(float64(create))
	reconcileOps.WithLabelValues("update").Add(float64(update))
	reconcileOps.WithLabelValues("remove").Add(float64(remove))
}

// RecordRejected records an event refused before evaluation
func RecordRejected(reason string) {
	rejectedEvents.WithLabelValues(reason).Inc()
}
