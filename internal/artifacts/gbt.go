package artifacts

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// TreeNode is one node of a regression tree. Leaf nodes carry Value;
// split nodes carry the feature index, threshold, child indices, and
// the direction a missing (NaN) feature takes.
type TreeNode struct {
	Leaf        bool    `json:"leaf"`
	Value       float64 `json:"value"`
	Feature     int     `json:"feature"`
	Threshold   float64 `json:"threshold"`
	Left        int     `json:"left"`
	Right       int     `json:"right"`
	DefaultLeft bool    `json:"default_left"`
}

// RegressionTree is a flat node array; index 0 is the root.
type RegressionTree struct {
	Nodes []TreeNode `json:"nodes"`
}

// GBTEnsemble is a gradient-boosted ensemble exported from training.
// The prediction is BaseScore plus the sum of all tree leaves. It
// implements service.TreePredictor.
type GBTEnsemble struct {
	BaseScore  float64          `json:"base_score"`
	NumFeature int              `json:"num_feature"`
	Trees      []RegressionTree `json:"trees"`
}

// LoadGBT reads a boosted tree artifact from path.
func LoadGBT(path string) (*GBTEnsemble, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read gbt artifact: %w", err)
	}
	var m GBTEnsemble
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse gbt artifact: %w", err)
	}
	if len(m.Trees) == 0 {
		return nil, fmt.Errorf("gbt artifact has no trees")
	}
	if m.NumFeature <= 0 {
		return nil, fmt.Errorf("gbt artifact declares num_feature %d", m.NumFeature)
	}
	for ti, t := range m.Trees {
		for ni, n := range t.Nodes {
			if n.Leaf {
				continue
			}
			if n.Left < 0 || n.Left >= len(t.Nodes) || n.Right < 0 || n.Right >= len(t.Nodes) {
				return nil, fmt.Errorf("tree %d node %d has out-of-range children", ti, ni)
			}
			if n.Feature < 0 || n.Feature >= m.NumFeature {
				return nil, fmt.Errorf("tree %d node %d references feature %d", ti, ni, n.Feature)
			}
		}
	}
	return &m, nil
}

// Predict scores one feature vector. NaN features follow each split's
// default direction, matching missing-value handling at training time.
func (m *GBTEnsemble) Predict(_ context.Context, features []float64) (float64, error) {
	if len(features) < m.NumFeature {
		return 0, fmt.Errorf("got %d features, model needs %d", len(features), m.NumFeature)
	}

	sum := m.BaseScore
	for ti := range m.Trees {
		leaf, err := m.Trees[ti].walk(features)
		if err != nil {
			return 0, fmt.Errorf("tree %d: %w", ti, err)
		}
		sum += leaf
	}
	return sum, nil
}

func (t *RegressionTree) walk(features []float64) (float64, error) {
	idx := 0
	for depth := 0; depth <= len(t.Nodes); depth++ {
		n := t.Nodes[idx]
		if n.Leaf {
			return n.Value, nil
		}
		if n.Feature < 0 || n.Feature >= len(features) {
			return 0, fmt.Errorf("split on feature %d with %d features", n.Feature, len(features))
		}
		v := features[n.Feature]
		switch {
		case math.IsNaN(v):
			if n.DefaultLeft {
				idx = n.Left
			} else {
				idx = n.Right
			}
		case v < n.Threshold:
			idx = n.Left
		default:
			idx = n.Right
		}
	}
	return 0, fmt.Errorf("cycle detected in tree traversal")
}
