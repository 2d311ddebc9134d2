// Package predictor turns feature vectors into predictions using the cached
// model, isolating callers from what capabilities the loaded artifact exposes.
package predictor

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/cyclone-inference-service/internal/domain"
	"github.com/couchcryptid/cyclone-inference-service/internal/model"
	"github.com/couchcryptid/cyclone-inference-service/internal/observability"
)

// ModelSource serves the process-wide classifier handle, loading it on first use.
type ModelSource interface {
	Load() (model.Classifier, error)
}

// Service runs inference. Each Predict call is synchronous and runs to
// completion on the caller's goroutine; the shared handle is read-only, so
// Service is safe for concurrent use.
type Service struct {
	source  ModelSource
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a prediction service over the given model source.
func New(source ModelSource, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		source:  source,
		logger:  logger,
		metrics: metrics,
	}
}

// CheckReadiness reports whether the model can be served, triggering the
// first load if none has happened yet.
func (s *Service) CheckReadiness(_ context.Context) error {
	_, err := s.source.Load()
	return err
}

// Predict classifies one feature vector. Load and classification errors
// propagate to the caller; probability extraction never fails, at worst the
// returned Prediction carries a nil Probability.
//
// The vector is passed to the model as-is: range and disturbance validation
// is the inbound adapter's responsibility.
func (s *Service) Predict(_ context.Context, features domain.FeatureVector) (domain.Prediction, error) {
	start := time.Now()

	clf, err := s.source.Load()
	if err != nil {
		s.metrics.PredictionsTotal.WithLabelValues("error").Inc()
		return domain.Prediction{}, err
	}
	s.metrics.ModelLoaded.Set(1)

	row := features.Values()

	class, err := clf.PredictClass(row)
	if err != nil {
		s.metrics.PredictionsTotal.WithLabelValues("error").Inc()
		return domain.Prediction{}, &model.InferenceError{Err: err}
	}

	probability, source := positiveProbability(clf, row)
	s.metrics.ProbabilitySource.WithLabelValues(source).Inc()
	if probability == nil {
		s.logger.Warn("positive-class probability unavailable", "class", class)
	}

	prediction := domain.Prediction{Class: class, Probability: probability}
	s.metrics.PredictionsTotal.WithLabelValues(outcomeLabel(class)).Inc()
	s.metrics.PredictionDuration.Observe(time.Since(start).Seconds())

	return prediction, nil
}

// positiveProbability extracts the probability of the positive class through
// a tiered fallback. Tier 1 asks a probabilistic handle for calibrated
// probabilities: the second column of a two-column output, or a single-column
// output directly. Tier 2 derives a pseudo-probability from a fresh hard
// prediction (class 1 maps to 1.0, class 0 to 0.0). When both tiers fail the
// probability is absent; the error is never propagated.
func positiveProbability(clf model.Classifier, row []float64) (*float64, string) {
	if pc, ok := clf.(model.ProbabilisticClassifier); ok {
		if probs, err := pc.PredictProba(row); err == nil {
			switch {
			case len(probs) >= 2:
				// Binary classifier convention: index 1 is the positive class.
				return &probs[1], "model"
			case len(probs) == 1:
				return &probs[0], "model"
			}
		}
	}

	class, err := clf.PredictClass(row)
	if err != nil {
		return nil, "unavailable"
	}
	p := 0.0
	if class == domain.ClassCyclone {
		p = 1.0
	}
	return &p, "derived"
}

func outcomeLabel(class int) string {
	if class == domain.ClassCyclone {
		return "cyclone"
	}
	return "no_cyclone"
}
