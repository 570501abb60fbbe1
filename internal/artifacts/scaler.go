package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
)

// ChannelRange holds the training-time min/max of one telemetry channel.
type ChannelRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// MinMaxScaler maps raw channel values into [0,1] using ranges exported
// from training. It implements service.Scaler.
type MinMaxScaler struct {
	Channels map[string]ChannelRange `json:"channels"`
}

// LoadScaler reads a scaler artifact from path.
func LoadScaler(path string) (*MinMaxScaler, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scaler artifact: %w", err)
	}
	var s MinMaxScaler
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scaler artifact: %w", err)
	}
	if len(s.Channels) == 0 {
		return nil, fmt.Errorf("scaler artifact has no channels")
	}
	for name, r := range s.Channels {
		if r.Max <= r.Min {
			return nil, fmt.Errorf("channel %s has degenerate range [%v, %v]", name, r.Min, r.Max)
		}
	}
	return &s, nil
}

// Transform maps a raw value into model space.
func (s *MinMaxScaler) Transform(channel string, v float64) (float64, error) {
	r, ok := s.Channels[channel]
	if !ok {
		return 0, fmt.Errorf("unknown channel %q", channel)
	}
	return (v - r.Min) / (r.Max - r.Min), nil
}

// Inverse maps a model-space value back to raw units.
func (s *MinMaxScaler) Inverse(channel string, v float64) (float64, error) {
	r, ok := s.Channels[channel]
	if !ok {
		return 0, fmt.Errorf("unknown channel %q", channel)
	}
	return v*(r.Max-r.Min) + r.Min, nil
}
