package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/cyclone-inference-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTreeClassifier_Validation(t *testing.T) {
	tests := []struct {
		name    string
		nodes   []TreeNode
		wantMsg string
	}{
		{"empty", nil, "no nodes"},
		{
			"feature out of range",
			[]TreeNode{{Feature: domain.FeatureCount, Threshold: 1, Left: 1, Right: 1}, {Leaf: true}},
			"feature index",
		},
		{
			"child out of range",
			[]TreeNode{{Feature: 0, Threshold: 1, Left: 1, Right: 5}, {Leaf: true}},
			"child index",
		},
		{
			"non-binary leaf",
			[]TreeNode{{Leaf: true, Class: 3}},
			"not binary",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTreeClassifier(tt.nodes)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestTreePredictClass_WalksBothBranches(t *testing.T) {
	// class 1 when pressure <= 990 and disturbance > 0.5, else class 0.
	clf, err := NewTreeClassifier([]TreeNode{
		{Feature: 1, Threshold: 990, Left: 1, Right: 4},
		{Feature: 8, Threshold: 0.5, Left: 3, Right: 2},
		{Leaf: true, Class: domain.ClassCyclone},
		{Leaf: true, Class: domain.ClassNoCyclone},
		{Leaf: true, Class: domain.ClassNoCyclone},
	})
	require.NoError(t, err)

	cyclone := []float64{29, 975, 88, 5, 0.0006, 12, 4000, 300, 1}
	calm := []float64{24, 1015, 60, 18, 0.0001, 30, 200, 10, 0}
	noDisturbance := []float64{29, 975, 88, 5, 0.0006, 12, 4000, 300, 0}

	class, err := clf.PredictClass(cyclone)
	require.NoError(t, err)
	assert.Equal(t, domain.ClassCyclone, class)

	class, err = clf.PredictClass(calm)
	require.NoError(t, err)
	assert.Equal(t, domain.ClassNoCyclone, class)

	class, err = clf.PredictClass(noDisturbance)
	require.NoError(t, err)
	assert.Equal(t, domain.ClassNoCyclone, class)
}

func TestTreePredictClass_WrongFeatureCount(t *testing.T) {
	clf, err := NewTreeClassifier([]TreeNode{{Leaf: true, Class: 0}})
	require.NoError(t, err)

	_, err = clf.PredictClass([]float64{1, 2, 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 9 features")
}

func TestTreePredictClass_DetectsCycle(t *testing.T) {
	// Two internal nodes pointing at each other pass index validation but
	// never reach a leaf.
	clf, err := NewTreeClassifier([]TreeNode{
		{Feature: 0, Threshold: 0, Left: 1, Right: 1},
		{Feature: 0, Threshold: 0, Left: 0, Right: 0},
	})
	require.NoError(t, err)

	_, err = clf.PredictClass(make([]float64, domain.FeatureCount))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestLoadTree_ReadsArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.json")
	writeTreeArtifact(t, path)

	clf, err := loadTree(path)
	require.NoError(t, err)

	class, err := clf.PredictClass(lowPressureRow())
	require.NoError(t, err)
	assert.Equal(t, domain.ClassCyclone, class)
}

func TestLoadTree_RejectsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"not":"an array"}`), 0o600))

	_, err := loadTree(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode decision tree")
}
