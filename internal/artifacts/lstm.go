package artifacts

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// LSTMModel is a single-layer LSTM with a dense head, exported from
// training as plain weight matrices. Gate weights follow the i, f, g, o
// convention. It implements service.SequencePredictor: the caller feeds
// a scaled [steps][InputSize] window and gets back one scaled value.
type LSTMModel struct {
	InputSize  int `json:"input_size"`
	HiddenSize int `json:"hidden_size"`

	// Input-to-hidden weights, shape [4*hidden][input], gate-major.
	WInput [][]float64 `json:"w_input"`
	// Hidden-to-hidden weights, shape [4*hidden][hidden], gate-major.
	WHidden [][]float64 `json:"w_hidden"`
	// Gate biases, length 4*hidden.
	Bias []float64 `json:"bias"`

	// Dense head mapping the final hidden state to one output.
	DenseWeight []float64 `json:"dense_weight"`
	DenseBias   float64   `json:"dense_bias"`
}

// LoadLSTM reads a sequence model artifact from path.
func LoadLSTM(path string) (*LSTMModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lstm artifact: %w", err)
	}
	var m LSTMModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse lstm artifact: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("lstm artifact: %w", err)
	}
	return &m, nil
}

func (m *LSTMModel) validate() error {
	if m.InputSize <= 0 || m.HiddenSize <= 0 {
		return fmt.Errorf("input_size and hidden_size must be positive")
	}
	rows := 4 * m.HiddenSize
	if len(m.WInput) != rows || len(m.WHidden) != rows || len(m.Bias) != rows {
		return fmt.Errorf("gate weights must have %d rows", rows)
	}
	for i := range m.WInput {
		if len(m.WInput[i]) != m.InputSize {
			return fmt.Errorf("w_input row %d has %d cols, want %d", i, len(m.WInput[i]), m.InputSize)
		}
		if len(m.WHidden[i]) != m.HiddenSize {
			return fmt.Errorf("w_hidden row %d has %d cols, want %d", i, len(m.WHidden[i]), m.HiddenSize)
		}
	}
	if len(m.DenseWeight) != m.HiddenSize {
		return fmt.Errorf("dense_weight has %d entries, want %d", len(m.DenseWeight), m.HiddenSize)
	}
	return nil
}

// Predict runs the forward pass over window and returns the dense head
// output in scaled target space.
func (m *LSTMModel) Predict(_ context.Context, window [][]float64) (float64, error) {
	if len(window) == 0 {
		return 0, fmt.Errorf("empty input window")
	}

	h := make([]float64, m.HiddenSize)
	c := make([]float64, m.HiddenSize)
	gates := make([]float64, 4*m.HiddenSize)

	for step, x := range window {
		if len(x) != m.InputSize {
			return 0, fmt.Errorf("step %d has %d channels, want %d", step, len(x), m.InputSize)
		}

		for r := 0; r < 4*m.HiddenSize; r++ {
			sum := m.Bias[r]
			wi := m.WInput[r]
			for j, xv := range x {
				sum += wi[j] * xv
			}
			wh := m.WHidden[r]
			for j, hv := range h {
				sum += wh[j] * hv
			}
			gates[r] = sum
		}

		for j := 0; j < m.HiddenSize; j++ {
			i := sigmoid(gates[j])
			f := sigmoid(gates[m.HiddenSize+j])
			g := math.Tanh(gates[2*m.HiddenSize+j])
			o := sigmoid(gates[3*m.HiddenSize+j])

			c[j] = f*c[j] + i*g
			h[j] = o * math.Tanh(c[j])
		}
	}

	out := m.DenseBias
	for j, w := range m.DenseWeight {
		out += w * h[j]
	}
	return out, nil
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
