// Package metrics exposes Prometheus collectors describing allocation runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/eugenenazirov/knapsack-allocator/internal/allocator"
)

// Status label values.
const (
	Ok   = "ok"
	Fail = "fail"
)

// Recorder holds the collectors for allocation runs.
type Recorder struct {
	AllocationsTotal   *prometheus.CounterVec
	ItemsAssignedTotal *prometheus.CounterVec
	ItemsLeftoverTotal *prometheus.CounterVec
	AllocationDuration *prometheus.HistogramVec
	CapturedValue      *prometheus.GaugeVec
}

// New creates the collectors and registers them with reg. A nil reg leaves them unregistered.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		AllocationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "knapsack_allocations_total",
			Help: "Cumulative number of allocation runs by strategy and outcome.",
		}, []string{"strategy", "status"}),
		ItemsAssignedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "knapsack_items_assigned_total",
			Help: "Cumulative number of items committed to a container.",
		}, []string{"strategy"}),
		ItemsLeftoverTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "knapsack_items_leftover_total",
			Help: "Cumulative number of items no container could take.",
		}, []string{"strategy"}),
		AllocationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "knapsack_allocation_duration_seconds",
			Help:    "Time spent validating and allocating a request.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"strategy"}),
		CapturedValue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "knapsack_captured_value",
			Help: "Total adjusted value captured by the most recent successful run.",
		}, []string{"strategy"}),
	}

	if reg != nil {
		reg.MustRegister(
			r.AllocationsTotal,
			r.ItemsAssignedTotal,
			r.ItemsLeftoverTotal,
			r.AllocationDuration,
			r.CapturedValue,
		)
	}
	return r
}

// Observe records one allocation run. res is ignored when err is non-nil.
func (r *Recorder) Observe(strategy allocator.Strategy, res allocator.Result, elapsed time.Duration, err error) {
	if r == nil {
		return
	}
	label := string(strategy)

	if err != nil {
		r.AllocationsTotal.WithLabelValues(label, Fail).Inc()
		return
	}

	r.AllocationsTotal.WithLabelValues(label, Ok).Inc()
	r.ItemsAssignedTotal.WithLabelValues(label).Add(float64(res.AssignedCount()))
	r.ItemsLeftoverTotal.WithLabelValues(label).Add(float64(len(res.Leftover)))
	r.AllocationDuration.WithLabelValues(label).Observe(elapsed.Seconds())
	r.CapturedValue.WithLabelValues(label).Set(res.TotalValue())
}
