package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// inference service.
type Metrics struct {
	PredictionsTotal   *prometheus.CounterVec // labels: outcome={cyclone,no_cyclone,error}
	PredictionDuration prometheus.Histogram

	// ProbabilitySource counts how the positive-class probability was obtained:
	// "model" (probability output), "derived" (pseudo-probability from the hard
	// class), or "unavailable".
	ProbabilitySource *prometheus.CounterVec // labels: source={model,derived,unavailable}

	ModelLoaded prometheus.Gauge

	RecordsStored    prometheus.Counter
	StoreErrors      prometheus.Counter
	RecordsPublished prometheus.Counter
	PublishErrors    prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		PredictionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cyclone",
			Name:      "predictions_total",
			Help:      "Predictions served, by outcome.",
		}, []string{"outcome"}),
		PredictionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cyclone",
			Name:      "prediction_duration_seconds",
			Help:      "End-to-end duration of one inference call.",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.5},
		}),
		ProbabilitySource: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cyclone",
			Name:      "probability_source_total",
			Help:      "How the positive-class probability was obtained.",
		}, []string{"source"}),
		ModelLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cyclone",
			Name:      "model_loaded",
			Help:      "1 once the model artifact is deserialized and cached.",
		}),
		RecordsStored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cyclone",
			Name:      "records_stored_total",
			Help:      "Prediction records written to the store.",
		}),
		StoreErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cyclone",
			Name:      "store_errors_total",
			Help:      "Failed prediction record writes.",
		}),
		RecordsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cyclone",
			Name:      "records_published_total",
			Help:      "Prediction records published to the sink topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cyclone",
			Name:      "publish_errors_total",
			Help:      "Failed prediction record publishes.",
		}),
	}

	prometheus.MustRegister(
		m.PredictionsTotal,
		m.PredictionDuration,
		m.ProbabilitySource,
		m.ModelLoaded,
		m.RecordsStored,
		m.StoreErrors,
		m.RecordsPublished,
		m.PublishErrors,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		PredictionsTotal:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "cyclone", Name: "predictions_total"}, []string{"outcome"}),
		PredictionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "cyclone", Name: "prediction_duration_seconds"}),
		ProbabilitySource:  prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "cyclone", Name: "probability_source_total"}, []string{"source"}),
		ModelLoaded:        prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "cyclone", Name: "model_loaded"}),
		RecordsStored:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "cyclone", Name: "records_stored_total"}),
		StoreErrors:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "cyclone", Name: "store_errors_total"}),
		RecordsPublished:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "cyclone", Name: "records_published_total"}),
		PublishErrors:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "cyclone", Name: "publish_errors_total"}),
	}
}
