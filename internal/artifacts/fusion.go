package artifacts

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// LinearFusion is the meta-learner combining the two component
// predictions: out = TreeWeight*tree + SeqWeight*seq + Bias. It
// implements service.Fuser.
type LinearFusion struct {
	TreeWeight float64 `json:"tree_weight"`
	SeqWeight  float64 `json:"seq_weight"`
	Bias       float64 `json:"bias"`
}

// LoadFusion reads the fusion artifact from path.
func LoadFusion(path string) (*LinearFusion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fusion artifact: %w", err)
	}
	var f LinearFusion
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fusion artifact: %w", err)
	}
	if f.TreeWeight == 0 && f.SeqWeight == 0 {
		return nil, fmt.Errorf("fusion artifact has zero weights")
	}
	return &f, nil
}

// Fuse combines the component predictions into the final load value.
func (f *LinearFusion) Fuse(_ context.Context, treePred, seqPred float64) (float64, error) {
	return f.TreeWeight*treePred + f.SeqWeight*seqPred + f.Bias, nil
}
