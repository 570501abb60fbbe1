package artifacts

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestGBTPredictSumsTreesAndBase(t *testing.T) {
	m := &GBTEnsemble{
		BaseScore:  100,
		NumFeature: 2,
		Trees: []RegressionTree{
			{Nodes: []TreeNode{
				{Feature: 0, Threshold: 5, Left: 1, Right: 2, DefaultLeft: true},
				{Leaf: true, Value: 10},
				{Leaf: true, Value: 20},
			}},
			{Nodes: []TreeNode{
				{Leaf: true, Value: -3},
			}},
		},
	}

	got, err := m.Predict(context.Background(), []float64{3, 0})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if got != 107 {
		t.Fatalf("expected 100+10-3=107, got %v", got)
	}

	got, err = m.Predict(context.Background(), []float64{8, 0})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if got != 117 {
		t.Fatalf("expected 100+20-3=117, got %v", got)
	}
}

func TestGBTRoutesNaNThroughDefaultDirection(t *testing.T) {
	m := &GBTEnsemble{
		NumFeature: 1,
		Trees: []RegressionTree{
			{Nodes: []TreeNode{
				{Feature: 0, Threshold: 0, Left: 1, Right: 2, DefaultLeft: true},
				{Leaf: true, Value: 1},
				{Leaf: true, Value: 2},
			}},
			{Nodes: []TreeNode{
				{Feature: 0, Threshold: 0, Left: 1, Right: 2, DefaultLeft: false},
				{Leaf: true, Value: 10},
				{Leaf: true, Value: 20},
			}},
		},
	}

	got, err := m.Predict(context.Background(), []float64{math.NaN()})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	// First tree defaults left (1), second defaults right (20).
	if got != 21 {
		t.Fatalf("expected 21, got %v", got)
	}
}

func TestGBTRejectsShortFeatureVector(t *testing.T) {
	m := &GBTEnsemble{
		NumFeature: 3,
		Trees:      []RegressionTree{{Nodes: []TreeNode{{Leaf: true, Value: 1}}}},
	}
	if _, err := m.Predict(context.Background(), []float64{1}); err == nil {
		t.Fatal("expected error for short feature vector")
	}
}

func TestGBTWalkErrsOnOutOfRangeFeature(t *testing.T) {
	// An ensemble built without num_feature must still error, never
	// panic, when a split addresses a feature the vector lacks.
	m := &GBTEnsemble{
		Trees: []RegressionTree{
			{Nodes: []TreeNode{
				{Feature: 5, Threshold: 0, Left: 1, Right: 2},
				{Leaf: true, Value: 1},
				{Leaf: true, Value: 2},
			}},
		},
	}
	if _, err := m.Predict(context.Background(), []float64{1}); err == nil {
		t.Fatal("expected error for out-of-range split feature")
	}
}

func TestLoadGBTRejectsMissingNumFeature(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gbt.json")
	artifact := `{"base_score":0,"trees":[{"nodes":[{"leaf":true,"value":1}]}]}`
	if err := os.WriteFile(path, []byte(artifact), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	if _, err := LoadGBT(path); err == nil {
		t.Fatal("expected error for artifact without num_feature")
	}
}

func TestLSTMZeroWeightsReturnDenseBias(t *testing.T) {
	hidden := 3
	m := &LSTMModel{
		InputSize:   2,
		HiddenSize:  hidden,
		WInput:      zeroMatrix(4*hidden, 2),
		WHidden:     zeroMatrix(4*hidden, hidden),
		Bias:        make([]float64, 4*hidden),
		DenseWeight: make([]float64, hidden),
		DenseBias:   42.5,
	}
	if err := m.validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	window := [][]float64{{0.1, 0.2}, {0.3, 0.4}, {0.5, 0.6}}
	got, err := m.Predict(context.Background(), window)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	// tanh(0)=0 keeps cell state at zero; only the dense bias remains.
	if got != 42.5 {
		t.Fatalf("expected 42.5, got %v", got)
	}
}

func TestLSTMIsDeterministic(t *testing.T) {
	hidden := 2
	m := &LSTMModel{
		InputSize:  1,
		HiddenSize: hidden,
		WInput:     fillMatrix(4*hidden, 1, 0.3),
		WHidden:    fillMatrix(4*hidden, hidden, -0.1),
		Bias:       fillSlice(4*hidden, 0.05),
		DenseWeight: []float64{
			0.7, -0.2,
		},
		DenseBias: 0.1,
	}

	window := [][]float64{{0.5}, {0.6}, {0.7}}
	a, err := m.Predict(context.Background(), window)
	if err != nil {
		t.Fatalf("first Predict: %v", err)
	}
	b, err := m.Predict(context.Background(), window)
	if err != nil {
		t.Fatalf("second Predict: %v", err)
	}
	if a != b {
		t.Fatalf("outputs differ: %v vs %v", a, b)
	}
	if math.IsNaN(a) || math.IsInf(a, 0) {
		t.Fatalf("non-finite output: %v", a)
	}
}

func TestLSTMRejectsWrongChannelCount(t *testing.T) {
	hidden := 1
	m := &LSTMModel{
		InputSize:   2,
		HiddenSize:  hidden,
		WInput:      zeroMatrix(4*hidden, 2),
		WHidden:     zeroMatrix(4*hidden, hidden),
		Bias:        make([]float64, 4*hidden),
		DenseWeight: make([]float64, hidden),
	}
	if _, err := m.Predict(context.Background(), [][]float64{{1, 2, 3}}); err == nil {
		t.Fatal("expected error for wrong channel count")
	}
}

func TestLinearFusion(t *testing.T) {
	f := &LinearFusion{TreeWeight: 0.6, SeqWeight: 0.4, Bias: 5}
	got, err := f.Fuse(context.Background(), 500, 525)
	if err != nil {
		t.Fatalf("Fuse: %v", err)
	}
	if want := 0.6*500 + 0.4*525 + 5; got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestMinMaxScalerRoundTrip(t *testing.T) {
	s := &MinMaxScaler{Channels: map[string]ChannelRange{
		"Phase3_power": {Min: 0, Max: 1000},
		"Phase2_voltage": {
			Min: 200, Max: 250,
		},
	}}

	scaled, err := s.Transform("Phase3_power", 512.5)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if scaled != 0.5125 {
		t.Fatalf("expected 0.5125, got %v", scaled)
	}

	raw, err := s.Inverse("Phase3_power", scaled)
	if err != nil {
		t.Fatalf("Inverse: %v", err)
	}
	if math.Abs(raw-512.5) > 1e-9 {
		t.Fatalf("round trip: expected 512.5, got %v", raw)
	}

	if _, err := s.Transform("bogus", 1); err == nil {
		t.Fatal("expected error for unknown channel")
	}
}

func zeroMatrix(rows, cols int) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
	}
	return m
}

func fillMatrix(rows, cols int, v float64) [][]float64 {
	m := zeroMatrix(rows, cols)
	for i := range m {
		for j := range m[i] {
			m[i][j] = v
		}
	}
	return m
}

func fillSlice(n int, v float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = v
	}
	return s
}
