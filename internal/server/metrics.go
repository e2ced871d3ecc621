package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus instruments for the calculator. Each Server
// carries its own registry so tests can spin up isolated instances.
type Metrics struct {
	registry *prometheus.Registry

	predictions         *prometheus.CounterVec
	predictionErrors    prometheus.Counter
	attributionFailures prometheus.Counter
	duration            prometheus.Histogram
}

// NewMetrics builds and registers the instrument set.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		predictions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stress_screen_predictions_total",
				Help: "Predictions served, by risk label",
			},
			[]string{"label"},
		),
		predictionErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "stress_screen_prediction_errors_total",
				Help: "Submissions rejected with a per-record error",
			},
		),
		attributionFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "stress_screen_attribution_failures_total",
				Help: "Requested attributions that could not be computed",
			},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "stress_screen_prediction_duration_seconds",
				Help:    "Single-case scoring latency",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
		),
	}
	m.registry.MustRegister(m.predictions, m.predictionErrors, m.attributionFailures, m.duration)
	return m
}

// Handler serves the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observePrediction(predicted int, start time.Time) {
	label := "low"
	if predicted == 1 {
		label = "high"
	}
	m.predictions.WithLabelValues(label).Inc()
	m.duration.Observe(time.Since(start).Seconds())
}
