package forecast

import (
	"fmt"
	"time"

	"GridCast/internal/domain/models"
)

// Window is the run-local, append-only slice of hourly observations a
// forecast run works over. It is seeded from storage once at run start;
// each recursion step appends exactly one synthesized row. The backing
// slice is owned by the window and never shared back to callers.
type Window struct {
	rows []*models.Observation
}

// NewWindow copies obs into a fresh window and validates hourly
// contiguity in ascending order.
func NewWindow(obs []*models.Observation) (*Window, error) {
	if len(obs) < MinWindow {
		return nil, fmt.Errorf("need at least %d hourly rows, got %d", MinWindow, len(obs))
	}

	rows := make([]*models.Observation, len(obs))
	copy(rows, obs)

	for i := 1; i < len(rows); i++ {
		gap := rows[i].Timestamp.Sub(rows[i-1].Timestamp)
		if gap != time.Hour {
			return nil, fmt.Errorf("rows %d and %d are %s apart, want 1h", i-1, i, gap)
		}
	}
	return &Window{rows: rows}, nil
}

// Len returns the current row count.
func (w *Window) Len() int { return len(w.rows) }

// Last returns the most recent observation.
func (w *Window) Last() *models.Observation { return w.rows[len(w.rows)-1] }

// Append adds one synthesized row to the end of the window.
func (w *Window) Append(o *models.Observation) { w.rows = append(w.rows, o) }

// TargetAgo returns the target channel k hours before the last row's
// timestamp, i.e. k=1 is the row just before the last one. ok is false
// when the window does not reach back that far.
func (w *Window) TargetAgo(k int) (float64, bool) {
	idx := len(w.rows) - 1 - k
	if idx < 0 || k < 1 {
		return 0, false
	}
	return w.rows[idx].Phase3Power, true
}

// TrailingMean returns the mean of the n target values ending one row
// before the last, so the last row's own target never feeds a rolling
// statistic keyed at its timestamp. ok is false when fewer than n rows
// precede the last one.
func (w *Window) TrailingMean(n int) (float64, bool) {
	if n < 1 || len(w.rows)-1 < n {
		return 0, false
	}
	var sum float64
	for _, o := range w.rows[len(w.rows)-1-n : len(w.rows)-1] {
		sum += o.Phase3Power
	}
	return sum / float64(n), true
}

// Tail returns the trailing n rows without copying. Callers must not
// mutate the returned slice.
func (w *Window) Tail(n int) []*models.Observation {
	return w.rows[len(w.rows)-n:]
}
