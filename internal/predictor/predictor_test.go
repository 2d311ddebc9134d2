package predictor_test

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/couchcryptid/cyclone-inference-service/internal/domain"
	"github.com/couchcryptid/cyclone-inference-service/internal/model"
	"github.com/couchcryptid/cyclone-inference-service/internal/observability"
	"github.com/couchcryptid/cyclone-inference-service/internal/predictor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- stubs ---

// staticSource serves a fixed handle or error, like a warmed (or failed) cache.
type staticSource struct {
	clf model.Classifier
	err error
}

func (s *staticSource) Load() (model.Classifier, error) { return s.clf, s.err }

// hardClassifier exposes only the hard-class capability.
type hardClassifier struct {
	class int
	err   error
	calls atomic.Int64
}

func (c *hardClassifier) PredictClass(_ []float64) (int, error) {
	c.calls.Add(1)
	if c.err != nil {
		return 0, c.err
	}
	return c.class, nil
}

// flakyClassifier succeeds on the first hard prediction and fails afterwards,
// so the classification succeeds while the pseudo-probability tier fails.
type flakyClassifier struct {
	class int
	calls atomic.Int64
}

func (c *flakyClassifier) PredictClass(_ []float64) (int, error) {
	if c.calls.Add(1) > 1 {
		return 0, errors.New("transient backend failure")
	}
	return c.class, nil
}

// probaClassifier exposes both capabilities.
type probaClassifier struct {
	hardClassifier
	probs    []float64
	probaErr error
}

func (c *probaClassifier) PredictProba(_ []float64) ([]float64, error) {
	if c.probaErr != nil {
		return nil, c.probaErr
	}
	return c.probs, nil
}

func newService(clf model.Classifier) *predictor.Service {
	return predictor.New(&staticSource{clf: clf}, slog.Default(), observability.NewMetricsForTesting())
}

func testVector() domain.FeatureVector {
	return domain.FeatureVector{
		SeaSurfaceTemp: 28.5,
		Pressure:       992.3,
		Humidity:       85,
		WindShear:      6.2,
		Vorticity:      0.00045,
		Latitude:       14.2,
		OceanDepth:     3200,
		Proximity:      120.5,
		Disturbance:    1,
	}
}

// --- tests ---

func TestPredict_TwoColumnProbability(t *testing.T) {
	clf := &probaClassifier{hardClassifier: hardClassifier{class: 1}, probs: []float64{0.3, 0.7}}

	p, err := newService(clf).Predict(context.Background(), testVector())
	require.NoError(t, err)

	assert.Equal(t, domain.ClassCyclone, p.Class)
	require.NotNil(t, p.Probability)
	assert.Equal(t, 0.7, *p.Probability, "second column is the positive class")
}

func TestPredict_SingleColumnProbability(t *testing.T) {
	clf := &probaClassifier{hardClassifier: hardClassifier{class: 1}, probs: []float64{0.82}}

	p, err := newService(clf).Predict(context.Background(), testVector())
	require.NoError(t, err)
	require.NotNil(t, p.Probability)
	assert.Equal(t, 0.82, *p.Probability)
}

func TestPredict_HardOnlyDerivesPseudoProbability(t *testing.T) {
	for _, tt := range []struct {
		class int
		want  float64
	}{
		{domain.ClassCyclone, 1.0},
		{domain.ClassNoCyclone, 0.0},
	} {
		p, err := newService(&hardClassifier{class: tt.class}).Predict(context.Background(), testVector())
		require.NoError(t, err)
		assert.Equal(t, tt.class, p.Class)
		require.NotNil(t, p.Probability)
		assert.Equal(t, tt.want, *p.Probability)
	}
}

func TestPredict_FailedProbaFallsBackToHardClass(t *testing.T) {
	clf := &probaClassifier{
		hardClassifier: hardClassifier{class: 1},
		probaErr:       errors.New("probability head exploded"),
	}

	p, err := newService(clf).Predict(context.Background(), testVector())
	require.NoError(t, err)
	assert.Equal(t, domain.ClassCyclone, p.Class)
	require.NotNil(t, p.Probability)
	assert.Equal(t, 1.0, *p.Probability)
}

func TestPredict_EmptyProbaOutputFallsBack(t *testing.T) {
	clf := &probaClassifier{hardClassifier: hardClassifier{class: 0}, probs: []float64{}}

	p, err := newService(clf).Predict(context.Background(), testVector())
	require.NoError(t, err)
	require.NotNil(t, p.Probability)
	assert.Equal(t, 0.0, *p.Probability)
}

func TestPredict_BothTiersFailReturnsClassWithoutProbability(t *testing.T) {
	// First hard prediction (tier 0) succeeds; the pseudo-probability call fails.
	clf := &flakyClassifier{class: 1}

	p, err := newService(clf).Predict(context.Background(), testVector())
	require.NoError(t, err, "probability failures must never surface as errors")
	assert.Equal(t, domain.ClassCyclone, p.Class)
	assert.Nil(t, p.Probability)
}

func TestPredict_InferenceErrorPropagates(t *testing.T) {
	clf := &hardClassifier{err: errors.New("shape mismatch")}

	_, err := newService(clf).Predict(context.Background(), testVector())
	require.Error(t, err)

	var infErr *model.InferenceError
	assert.ErrorAs(t, err, &infErr)
}

func TestPredict_LoadErrorPropagates(t *testing.T) {
	src := &staticSource{err: &model.NotFoundError{Path: "/data/missing.onnx"}}
	svc := predictor.New(src, slog.Default(), observability.NewMetricsForTesting())

	_, err := svc.Predict(context.Background(), testVector())
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrModelNotFound)
	assert.Contains(t, err.Error(), "/data/missing.onnx")
}

func TestPredict_DeterministicForSameVector(t *testing.T) {
	clf, err := model.NewTreeClassifier([]model.TreeNode{
		{Feature: 1, Threshold: 1000, Left: 1, Right: 2},
		{Leaf: true, Class: domain.ClassCyclone},
		{Leaf: true, Class: domain.ClassNoCyclone},
	})
	require.NoError(t, err)

	svc := newService(clf)
	first, err := svc.Predict(context.Background(), testVector())
	require.NoError(t, err)
	second, err := svc.Predict(context.Background(), testVector())
	require.NoError(t, err)

	assert.Equal(t, first.Class, second.Class)
}

func TestPredict_ClassAlwaysBinary(t *testing.T) {
	for _, class := range []int{0, 1} {
		p, err := newService(&hardClassifier{class: class}).Predict(context.Background(), testVector())
		require.NoError(t, err)
		assert.Contains(t, []int{domain.ClassNoCyclone, domain.ClassCyclone}, p.Class)
	}
}

func TestCheckReadiness(t *testing.T) {
	ready := predictor.New(&staticSource{clf: &hardClassifier{}}, slog.Default(), observability.NewMetricsForTesting())
	assert.NoError(t, ready.CheckReadiness(context.Background()))

	notReady := predictor.New(&staticSource{err: &model.NotFoundError{Path: "x"}}, slog.Default(), observability.NewMetricsForTesting())
	assert.Error(t, notReady.CheckReadiness(context.Background()))
}
