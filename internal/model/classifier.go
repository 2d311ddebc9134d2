// Package model loads the trained cyclone classifier artifact and serves it
// to the rest of the process.
//
// Two artifact formats are supported, selected by file extension:
//
//   - .onnx, a portable model-exchange artifact run through ONNX Runtime.
//     Depending on the graph's outputs the loaded handle is probabilistic
//     (label + per-class probabilities) or hard-class only.
//   - .json, a serialized decision tree (see [TreeClassifier]); hard-class only.
//
// The artifact is deserialized at most once per process by [Cache] and the
// resulting handle is treated as read-only: inference calls do not mutate it
// and it is safe for concurrent use. There is no eviction or reload; a new
// artifact is only picked up after a process restart.
package model

// Classifier is the capability every loaded model exposes: a hard class
// prediction over one feature row in the documented order.
// The returned class is 0 or 1.
type Classifier interface {
	PredictClass(features []float64) (int, error)
}

// ProbabilisticClassifier is the capability some models additionally expose:
// calibrated per-class probabilities for one feature row. For a binary
// classifier the slice has two entries and index 1 is the positive class;
// some models emit a single-column output holding the positive-class
// probability directly.
//
// Whether a loaded handle satisfies this interface is decided once at load
// time from the artifact itself, not probed per call.
type ProbabilisticClassifier interface {
	Classifier
	PredictProba(features []float64) ([]float64, error)
}

// Artifact format kinds reported by Describe.
const (
	KindONNX = "onnx"
	KindTree = "decision_tree"
)
