package forecast

import (
	"fmt"
	"math"
	"time"
)

// DeriveFeatures builds the 17-feature tree model input keyed at the
// window's last timestamp. Exogenous and calendar fields come from the
// last row itself; lag_k is the target k rows earlier; rolling means
// cover the w rows ending one before the last, so the target at the
// keyed hour never feeds its own feature row.
//
// Lags and rolling windows that reach past the start of the window are
// emitted as NaN, never imputed. The tree model resolves NaN through
// each node's default direction, which is how the model was trained on
// rows with missing history.
func DeriveFeatures(w *Window) ([]float64, error) {
	if w.Len() == 0 {
		return nil, fmt.Errorf("empty window")
	}
	last := w.Last()
	ts := last.Timestamp

	feats := make([]float64, len(TreeFeatures))

	feats[0] = last.Phase2Current
	feats[1] = last.Phase2Voltage
	feats[2] = last.Phase3Frequency
	feats[3] = last.Phase3PF
	feats[4] = last.Phase3Voltage

	feats[5] = float64(ts.Hour())
	feats[6] = float64(mondayIndexed(ts.Weekday()))
	feats[7] = float64(ts.Month())
	feats[8] = float64((int(ts.Month())-1)/3 + 1)
	feats[9] = float64(ts.Year())
	feats[10] = float64(ts.YearDay())

	feats[11] = lagOrNaN(w, 1)
	feats[12] = lagOrNaN(w, 3)
	feats[13] = lagOrNaN(w, 24)

	feats[14] = rollOrNaN(w, 3)
	feats[15] = rollOrNaN(w, 6)
	feats[16] = rollOrNaN(w, 24)

	return feats, nil
}

// mondayIndexed maps Go's Sunday=0 weekday to the Monday=0 convention
// the model was trained with.
func mondayIndexed(d time.Weekday) int {
	return (int(d) + 6) % 7
}

func lagOrNaN(w *Window, k int) float64 {
	if v, ok := w.TargetAgo(k); ok {
		return v
	}
	return math.NaN()
}

func rollOrNaN(w *Window, n int) float64 {
	if v, ok := w.TrailingMean(n); ok {
		return v
	}
	return math.NaN()
}
