package model

import (
	"fmt"
	"path/filepath"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/couchcryptid/cyclone-inference-service/internal/domain"
)

// ortEnv manages global ONNX Runtime initialization (process-wide singleton).
var ortEnv struct {
	once sync.Once
	err  error
}

// initRuntime initializes the ONNX Runtime environment. Safe to call multiple
// times; only the first call has any effect.
func initRuntime(libPath string) error {
	ortEnv.once.Do(func() {
		ort.SetSharedLibraryPath(libPath)
		ortEnv.err = ort.InitializeEnvironment()
	})
	return ortEnv.err
}

// onnxClassifier runs a binary-classifier ONNX graph with a single float
// input of width FeatureCount. The first graph output is the int64 class
// label; a second output, when the graph has one, holds per-class
// probabilities and upgrades the handle to a ProbabilisticClassifier.
type onnxClassifier struct {
	session *ort.DynamicAdvancedSession
	classes int64
	proba   bool
}

// onnxProbabilistic adds the probability capability for graphs that emit a
// probabilities output.
type onnxProbabilistic struct {
	*onnxClassifier
}

// openONNX loads the ONNX artifact and creates an inference session. The
// ONNX Runtime shared library is expected alongside the artifact file.
func openONNX(path string) (Classifier, error) {
	libPath := filepath.Join(filepath.Dir(path), "libonnxruntime.so")
	if err := initRuntime(libPath); err != nil {
		return nil, fmt.Errorf("initialize onnx runtime: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(path)
	if err != nil {
		return nil, fmt.Errorf("read model info: %w", err)
	}
	if len(inputs) != 1 {
		return nil, fmt.Errorf("expected a single input tensor, got %d", len(inputs))
	}
	inDims := inputs[0].Dimensions
	if len(inDims) == 0 {
		return nil, fmt.Errorf("input %q has no dimensions", inputs[0].Name)
	}
	// The batch dimension may be dynamic (-1); the feature width must match.
	if width := inDims[len(inDims)-1]; width != domain.FeatureCount {
		return nil, fmt.Errorf("input %q expects %d features, this service provides %d",
			inputs[0].Name, width, domain.FeatureCount)
	}
	if len(outputs) == 0 {
		return nil, fmt.Errorf("model has no outputs")
	}

	outputNames := []string{outputs[0].Name}
	proba := len(outputs) >= 2
	classes := int64(2)
	if proba {
		outputNames = append(outputNames, outputs[1].Name)
		probaDims := outputs[1].Dimensions
		if n := probaDims[len(probaDims)-1]; n > 0 {
			classes = n
		}
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("create session options: %w", err)
	}
	defer opts.Destroy()
	opts.SetIntraOpNumThreads(1)
	opts.SetInterOpNumThreads(1)

	session, err := ort.NewDynamicAdvancedSession(path, []string{inputs[0].Name}, outputNames, opts)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	clf := &onnxClassifier{session: session, classes: classes, proba: proba}
	if proba {
		return &onnxProbabilistic{clf}, nil
	}
	return clf, nil
}

// run executes one single-row inference call and returns the label plus the
// probability row (nil for label-only graphs).
func (m *onnxClassifier) run(features []float64) (int64, []float64, error) {
	if len(features) != domain.FeatureCount {
		return 0, nil, fmt.Errorf("expected %d features, got %d", domain.FeatureCount, len(features))
	}

	row := make([]float32, len(features))
	for i, v := range features {
		row[i] = float32(v)
	}

	in, err := ort.NewTensor(ort.NewShape(1, domain.FeatureCount), row)
	if err != nil {
		return 0, nil, fmt.Errorf("create input tensor: %w", err)
	}
	defer in.Destroy()

	outLabel, err := ort.NewEmptyTensor[int64](ort.NewShape(1))
	if err != nil {
		return 0, nil, fmt.Errorf("create label tensor: %w", err)
	}
	defer outLabel.Destroy()

	outputs := []ort.Value{outLabel}

	var outProba *ort.Tensor[float32]
	if m.proba {
		outProba, err = ort.NewEmptyTensor[float32](ort.NewShape(1, m.classes))
		if err != nil {
			return 0, nil, fmt.Errorf("create probabilities tensor: %w", err)
		}
		defer outProba.Destroy()
		outputs = append(outputs, outProba)
	}

	if err := m.session.Run([]ort.Value{in}, outputs); err != nil {
		return 0, nil, fmt.Errorf("run session: %w", err)
	}

	label := outLabel.GetData()[0]

	var probs []float64
	if m.proba {
		src := outProba.GetData()
		probs = make([]float64, len(src))
		for i, v := range src {
			probs[i] = float64(v)
		}
	}
	return label, probs, nil
}

func (m *onnxClassifier) PredictClass(features []float64) (int, error) {
	label, _, err := m.run(features)
	if err != nil {
		return 0, err
	}
	if label != 0 {
		return domain.ClassCyclone, nil
	}
	return domain.ClassNoCyclone, nil
}

func (m *onnxProbabilistic) PredictProba(features []float64) ([]float64, error) {
	_, probs, err := m.run(features)
	if err != nil {
		return nil, err
	}
	return probs, nil
}
