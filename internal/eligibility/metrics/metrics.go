// Package metrics provides observability for the eligibility module.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks means test calculation volume and outcomes.
type Metrics struct {
	Calculations        prometheus.Counter
	Passes              prometheus.Counter
	FeeWaivers          prometheus.Counter
	CalculationDuration prometheus.Histogram
}

// New creates a Metrics instance with all eligibility metrics registered.
func New() *Metrics {
	return &Metrics{
		Calculations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clearform_means_test_calculations_total",
			Help: "Total number of means test calculations performed",
		}),
		Passes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clearform_means_test_passes_total",
			Help: "Total number of calculations with income below the median",
		}),
		FeeWaivers: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clearform_fee_waiver_qualifications_total",
			Help: "Total number of calculations qualifying for a fee waiver",
		}),
		CalculationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "clearform_means_test_duration_seconds",
			Help:    "Duration of means test calculations including persistence",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// ObserveCalculation records one completed calculation and its outcome.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveCalculation(start time.Time, passes, feeWaiver bool) {
	m.Calculations.Inc()
	if passes {
		m.Passes.Inc()
	}
	if feeWaiver {
		m.FeeWaivers.Inc()
	}
	m.CalculationDuration.Observe(time.Since(start).Seconds())
}
