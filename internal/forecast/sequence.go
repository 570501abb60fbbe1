package forecast

import (
	"fmt"

	"GridCast/internal/domain/models"
	"GridCast/internal/domain/service"
)

// BuildSequence produces the scaled [Lookback][channels] input for the
// sequence model from the trailing rows of the window. Every value is
// transformed with the training-time scaler for its channel.
func BuildSequence(w *Window, scaler service.Scaler) ([][]float64, error) {
	if w.Len() < Lookback {
		return nil, fmt.Errorf("window has %d rows, need %d for sequence input", w.Len(), Lookback)
	}

	tail := w.Tail(Lookback)
	seq := make([][]float64, Lookback)
	for i, o := range tail {
		row := make([]float64, len(SequenceChannels))
		for j, ch := range SequenceChannels {
			v, err := scaler.Transform(ch, channelValue(o, ch))
			if err != nil {
				return nil, fmt.Errorf("scale channel %s at step %d: %w", ch, i, err)
			}
			row[j] = v
		}
		seq[i] = row
	}
	return seq, nil
}

func channelValue(o *models.Observation, ch string) float64 {
	switch ch {
	case ChPhase2Current:
		return o.Phase2Current
	case ChPhase2Voltage:
		return o.Phase2Voltage
	case ChPhase3Frequency:
		return o.Phase3Frequency
	case ChPhase3PF:
		return o.Phase3PF
	case ChPhase3Power:
		return o.Phase3Power
	case ChPhase3Voltage:
		return o.Phase3Voltage
	default:
		return 0
	}
}
