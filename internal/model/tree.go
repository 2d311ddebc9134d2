package model

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/couchcryptid/cyclone-inference-service/internal/domain"
)

// TreeNode is one node of a serialized decision-tree artifact. Internal nodes
// route features[Feature] <= Threshold to Left, otherwise Right; leaf nodes
// carry the class. Nodes are stored as a flat array with child indices.
type TreeNode struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Class     int     `json:"class"`
	Leaf      bool    `json:"leaf"`
}

// TreeClassifier is the decision-tree artifact backend. The format carries no
// class distributions, so the handle is hard-class only and probabilities are
// derived downstream from the predicted class.
type TreeClassifier struct {
	nodes []TreeNode
}

// NewTreeClassifier validates the node array: non-empty, a leaf reachable from
// node 0, feature and child indices in range.
func NewTreeClassifier(nodes []TreeNode) (*TreeClassifier, error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("decision tree has no nodes")
	}
	for i, n := range nodes {
		if n.Leaf {
			if n.Class != domain.ClassNoCyclone && n.Class != domain.ClassCyclone {
				return nil, fmt.Errorf("node %d: leaf class %d is not binary", i, n.Class)
			}
			continue
		}
		if n.Feature < 0 || n.Feature >= domain.FeatureCount {
			return nil, fmt.Errorf("node %d: feature index %d out of range", i, n.Feature)
		}
		if n.Left < 0 || n.Left >= len(nodes) || n.Right < 0 || n.Right >= len(nodes) {
			return nil, fmt.Errorf("node %d: child index out of range", i)
		}
	}
	return &TreeClassifier{nodes: nodes}, nil
}

// loadTree reads and validates a JSON decision-tree artifact.
func loadTree(path string) (*TreeClassifier, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var nodes []TreeNode
	if err := json.Unmarshal(payload, &nodes); err != nil {
		return nil, fmt.Errorf("decode decision tree: %w", err)
	}
	return NewTreeClassifier(nodes)
}

// PredictClass walks the tree from the root. The step budget of len(nodes)
// guards against cycles in a malformed artifact that passed index validation.
func (t *TreeClassifier) PredictClass(features []float64) (int, error) {
	if len(features) != domain.FeatureCount {
		return 0, fmt.Errorf("expected %d features, got %d", domain.FeatureCount, len(features))
	}
	idx := 0
	for steps := 0; steps <= len(t.nodes); steps++ {
		node := t.nodes[idx]
		if node.Leaf {
			return node.Class, nil
		}
		if features[node.Feature] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
	return 0, fmt.Errorf("decision tree walk exceeded %d steps, tree has a cycle", len(t.nodes))
}
