package domain

import "time"

// Binary class labels produced by the classifier.
const (
	ClassNoCyclone = 0
	ClassCyclone   = 1 // positive class
)

// Prediction is the outcome of one inference call: a hard class and, when the
// loaded model can estimate it, the probability of the positive class.
// A nil Probability means "unavailable", not zero.
type Prediction struct {
	Class       int      `json:"class"`
	Probability *float64 `json:"probability"`
}

// Label returns the human-readable class name.
func (p Prediction) Label() string {
	if p.Class == ClassCyclone {
		return "Cyclone"
	}
	return "No Cyclone"
}

// PredictionRecord is the persisted and published form of a prediction,
// pairing the inputs with the outcome.
type PredictionRecord struct {
	ID          string        `json:"id"`
	Features    FeatureVector `json:"features"`
	Class       int           `json:"class"`
	Label       string        `json:"label"`
	Probability *float64      `json:"probability"`
	CreatedAt   time.Time     `json:"created_at"`
}

// NewPredictionRecord stamps a prediction with the package clock. The caller
// assigns the ID.
func NewPredictionRecord(id string, features FeatureVector, p Prediction) PredictionRecord {
	return PredictionRecord{
		ID:          id,
		Features:    features,
		Class:       p.Class,
		Label:       p.Label(),
		Probability: p.Probability,
		CreatedAt:   clock.Now().UTC(),
	}
}

// ModelInfo describes the loaded classifier for the metadata endpoint.
type ModelInfo struct {
	Path          string   `json:"path"`
	Kind          string   `json:"kind"` // "onnx" or "decision_tree"
	Probabilistic bool     `json:"probabilistic"`
	FeatureOrder  []string `json:"feature_order"`
}
