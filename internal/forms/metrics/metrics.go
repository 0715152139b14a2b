// Package metrics provides observability for the forms module.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks form generation volume.
type Metrics struct {
	FormsGenerated     prometheus.Counter
	Previews           prometheus.Counter
	GenerationDuration prometheus.Histogram
}

// New creates a Metrics instance with all forms metrics registered.
func New() *Metrics {
	return &Metrics{
		FormsGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clearform_forms_generated_total",
			Help: "Total number of forms generated or regenerated",
		}),
		Previews: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clearform_form_previews_total",
			Help: "Total number of form previews served",
		}),
		GenerationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "clearform_form_generation_duration_seconds",
			Help:    "Duration of form generation including persistence",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// ObserveGeneration records one completed form generation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveGeneration(start time.Time) {
	m.FormsGenerated.Inc()
	m.GenerationDuration.Observe(time.Since(start).Seconds())
}

// IncrementPreviews records one preview.
func (m *Metrics) IncrementPreviews() {
	m.Previews.Inc()
}
