package artifacts

import (
	"fmt"
	"path/filepath"
)

// Artifact file names within a model directory.
const (
	GBTFile    = "gbt.json"
	LSTMFile   = "lstm.json"
	FusionFile = "fusion.json"
	ScalerFile = "scaler.json"
)

// Bundle holds one immutable set of trained model artifacts. A bundle
// is loaded once at startup and shared read-only across forecast runs.
type Bundle struct {
	Tree   *GBTEnsemble
	Seq    *LSTMModel
	Fusion *LinearFusion
	Scaler *MinMaxScaler
}

// LoadBundle reads all four artifacts from dir.
func LoadBundle(dir string) (*Bundle, error) {
	tree, err := LoadGBT(filepath.Join(dir, GBTFile))
	if err != nil {
		return nil, fmt.Errorf("load bundle: %w", err)
	}
	seq, err := LoadLSTM(filepath.Join(dir, LSTMFile))
	if err != nil {
		return nil, fmt.Errorf("load bundle: %w", err)
	}
	fusion, err := LoadFusion(filepath.Join(dir, FusionFile))
	if err != nil {
		return nil, fmt.Errorf("load bundle: %w", err)
	}
	scaler, err := LoadScaler(filepath.Join(dir, ScalerFile))
	if err != nil {
		return nil, fmt.Errorf("load bundle: %w", err)
	}
	return &Bundle{Tree: tree, Seq: seq, Fusion: fusion, Scaler: scaler}, nil
}
