package forecast

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubTree struct {
	fn    func(feats []float64) (float64, error)
	calls int
}

func (s *stubTree) Predict(_ context.Context, feats []float64) (float64, error) {
	s.calls++
	return s.fn(feats)
}

type stubSeq struct {
	fn    func(window [][]float64) (float64, error)
	calls int
}

func (s *stubSeq) Predict(_ context.Context, window [][]float64) (float64, error) {
	s.calls++
	return s.fn(window)
}

type meanFuser struct{}

func (meanFuser) Fuse(_ context.Context, treePred, seqPred float64) (float64, error) {
	return (treePred + seqPred) / 2, nil
}

type identityScaler struct{}

func (identityScaler) Transform(_ string, v float64) (float64, error) { return v, nil }
func (identityScaler) Inverse(_ string, v float64) (float64, error)   { return v, nil }

func newTestEngine(t *testing.T, tree *stubTree, seq *stubSeq, opts ...EngineOption) *Engine {
	t.Helper()
	e, err := NewEngine(tree, seq, meanFuser{}, identityScaler{}, opts...)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestRunProducesFullHorizon(t *testing.T) {
	start := time.Date(2021, 8, 1, 0, 0, 0, 0, time.UTC)
	rows := hourlyRows(start, MinWindow, func(i int) float64 { return 400 })

	tree := &stubTree{fn: func([]float64) (float64, error) { return 420, nil }}
	seq := &stubSeq{fn: func([][]float64) (float64, error) { return 380, nil }}
	e := newTestEngine(t, tree, seq)

	points, err := e.Run(context.Background(), rows)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(points) != DefaultHorizon {
		t.Fatalf("expected %d points, got %d", DefaultHorizon, len(points))
	}

	last := rows[len(rows)-1].Timestamp
	for i, p := range points {
		want := last.Add(time.Duration(i+1) * time.Hour)
		if !p.Timestamp.Equal(want) {
			t.Fatalf("point %d: expected ts %s, got %s", i, want, p.Timestamp)
		}
		if p.LoadKW != 400 {
			t.Fatalf("point %d: expected fused 400, got %v", i, p.LoadKW)
		}
	}
	if tree.calls != DefaultHorizon || seq.calls != DefaultHorizon {
		t.Fatalf("expected %d calls per model, got tree=%d seq=%d", DefaultHorizon, tree.calls, seq.calls)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	start := time.Date(2021, 8, 1, 0, 0, 0, 0, time.UTC)
	rows := hourlyRows(start, MinWindow, func(i int) float64 { return float64(300 + i%24) })

	// Prediction depends on the lag features so recursion feeds back.
	fn := func(feats []float64) (float64, error) { return feats[11]*0.9 + feats[14]*0.1, nil }

	e1 := newTestEngine(t, &stubTree{fn: fn}, &stubSeq{fn: func(w [][]float64) (float64, error) { return w[len(w)-1][4], nil }})
	e2 := newTestEngine(t, &stubTree{fn: fn}, &stubSeq{fn: func(w [][]float64) (float64, error) { return w[len(w)-1][4], nil }})

	p1, err := e1.Run(context.Background(), rows)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	p2, err := e2.Run(context.Background(), rows)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	for i := range p1 {
		if p1[i] != p2[i] {
			t.Fatalf("point %d differs across runs: %+v vs %+v", i, p1[i], p2[i])
		}
	}
}

func TestRunDoesNotMutateCallerSlice(t *testing.T) {
	start := time.Date(2021, 8, 1, 0, 0, 0, 0, time.UTC)
	rows := hourlyRows(start, MinWindow, func(i int) float64 { return 100 })
	before := len(rows)

	e := newTestEngine(t,
		&stubTree{fn: func([]float64) (float64, error) { return 100, nil }},
		&stubSeq{fn: func([][]float64) (float64, error) { return 100, nil }},
	)
	if _, err := e.Run(context.Background(), rows); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rows) != before {
		t.Fatalf("caller slice grew from %d to %d", before, len(rows))
	}
	if rows[len(rows)-1].Phase3Power != 100 {
		t.Fatalf("caller rows mutated")
	}
}

func TestRunCarriesExogenousChannelsForward(t *testing.T) {
	start := time.Date(2021, 8, 1, 0, 0, 0, 0, time.UTC)
	rows := hourlyRows(start, MinWindow, func(i int) float64 { return 250 })

	// Every derived vector must carry the last real row's exogenous
	// values, iteration after iteration.
	tree := &stubTree{fn: func(feats []float64) (float64, error) {
		if feats[0] != 10 || feats[1] != 231 || feats[2] != 50 || feats[3] != 0.95 || feats[4] != 229 {
			t.Fatalf("exogenous channels changed mid-run: %v", feats[:5])
		}
		return 300, nil
	}}
	seq := &stubSeq{fn: func([][]float64) (float64, error) { return 300, nil }}

	e := newTestEngine(t, tree, seq)
	if _, err := e.Run(context.Background(), rows); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRunFeedsFusedPredictionIntoNextLag(t *testing.T) {
	start := time.Date(2021, 8, 1, 0, 0, 0, 0, time.UTC)
	rows := hourlyRows(start, MinWindow, func(i int) float64 { return 200 })

	var lag1Seen []float64
	tree := &stubTree{fn: func(feats []float64) (float64, error) {
		lag1Seen = append(lag1Seen, feats[11])
		return 500, nil
	}}
	seq := &stubSeq{fn: func([][]float64) (float64, error) { return 525, nil }}

	e := newTestEngine(t, tree, seq)
	if _, err := e.Run(context.Background(), rows); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// lag_1h looks one row behind the window's last hour, so the first
	// two iterations still lag against real 200s; the fused 512.5
	// appended at iteration 1 first surfaces as lag_1h at iteration 3.
	if lag1Seen[0] != 200 || lag1Seen[1] != 200 {
		t.Fatalf("iterations 1-2 lag_1h: expected 200, got %v and %v", lag1Seen[0], lag1Seen[1])
	}
	for i := 2; i < len(lag1Seen); i++ {
		if lag1Seen[i] != 512.5 {
			t.Fatalf("iteration %d lag_1h: expected 512.5, got %v", i+1, lag1Seen[i])
		}
	}
}

func TestRunShortWindowFailsBeforeAdapters(t *testing.T) {
	start := time.Date(2021, 8, 1, 0, 0, 0, 0, time.UTC)
	rows := hourlyRows(start, 50, func(i int) float64 { return 100 })

	tree := &stubTree{fn: func([]float64) (float64, error) { return 0, nil }}
	seq := &stubSeq{fn: func([][]float64) (float64, error) { return 0, nil }}

	e := newTestEngine(t, tree, seq)
	_, err := e.Run(context.Background(), rows)
	if err == nil {
		t.Fatal("expected error for 50-row window")
	}
	if !IsKind(err, ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if tree.calls != 0 || seq.calls != 0 {
		t.Fatalf("model adapters were called: tree=%d seq=%d", tree.calls, seq.calls)
	}
}

func TestRunModelFailureAbortsWithoutPartialResults(t *testing.T) {
	start := time.Date(2021, 8, 1, 0, 0, 0, 0, time.UTC)
	rows := hourlyRows(start, MinWindow, func(i int) float64 { return 100 })

	boom := errors.New("model server gone")
	failAt := 7
	tree := &stubTree{}
	tree.fn = func([]float64) (float64, error) {
		if tree.calls == failAt {
			return 0, boom
		}
		return 100, nil
	}
	seq := &stubSeq{fn: func([][]float64) (float64, error) { return 100, nil }}

	e := newTestEngine(t, tree, seq)
	points, err := e.Run(context.Background(), rows)
	if err == nil {
		t.Fatal("expected error")
	}
	if points != nil {
		t.Fatalf("expected no partial results, got %d points", len(points))
	}

	var se *StepError
	if !errors.As(err, &se) {
		t.Fatalf("expected StepError, got %T", err)
	}
	if se.Kind != ErrPrediction || se.Iteration != failAt {
		t.Fatalf("expected prediction error at iteration %d, got kind=%s iteration=%d", failAt, se.Kind, se.Iteration)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestRunSequenceInputShape(t *testing.T) {
	start := time.Date(2021, 8, 1, 0, 0, 0, 0, time.UTC)
	rows := hourlyRows(start, MinWindow, func(i int) float64 { return 100 })

	tree := &stubTree{fn: func([]float64) (float64, error) { return 100, nil }}
	seq := &stubSeq{fn: func(w [][]float64) (float64, error) {
		if len(w) != Lookback {
			t.Fatalf("sequence length: expected %d, got %d", Lookback, len(w))
		}
		for _, row := range w {
			if len(row) != len(SequenceChannels) {
				t.Fatalf("channel count: expected %d, got %d", len(SequenceChannels), len(row))
			}
		}
		return 100, nil
	}}

	e := newTestEngine(t, tree, seq, WithHorizon(2))
	if _, err := e.Run(context.Background(), rows); err != nil {
		t.Fatalf("Run: %v", err)
	}
}
