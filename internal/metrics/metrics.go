package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics tracks document generation counts, durations and page counts per
// document kind.
type Metrics struct {
	Generated          *prometheus.CounterVec
	GenerationDuration *prometheus.HistogramVec
	Pages              *prometheus.HistogramVec
}

// New registers the document metrics with reg. A nil reg uses the default
// registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Generated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_documents_generated_total",
			Help: "Total number of document generations by kind and outcome",
		}, []string{"kind", "outcome"}),
		GenerationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "booking_document_generation_seconds",
			Help:    "Duration of document composition including storage",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"kind"}),
		Pages: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "booking_document_pages",
			Help:    "Pages per generated document",
			Buckets: []float64{1, 2, 3, 4, 6, 8, 12, 16, 24},
		}, []string{"kind"}),
	}
}

// ObserveGeneration records one generation attempt started at start.
// Pages are only recorded for successful generations.
func (m *Metrics) ObserveGeneration(kind string, start time.Time, pages int, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.Generated.WithLabelValues(kind, outcome).Inc()
	m.GenerationDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	if err == nil {
		m.Pages.WithLabelValues(kind).Observe(float64(pages))
	}
}
