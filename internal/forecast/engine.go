package forecast

import (
	"context"
	"fmt"
	"time"

	"GridCast/internal/domain/models"
	"GridCast/internal/domain/service"
	"GridCast/pkg/logger"
)

// Engine runs the recursive multi-hour forecast. Each iteration derives
// a tree feature vector and a scaled sequence window from the current
// state, scores both component models, fuses the two predictions, and
// appends the fused value as a synthesized observation so the next
// iteration can lag against it. A run is all-or-nothing: the first
// failing step aborts it with a StepError and no partial horizon is
// ever returned.
type Engine struct {
	tree    service.TreePredictor
	seq     service.SequencePredictor
	fuser   service.Fuser
	scaler  service.Scaler
	horizon int
	log     *logger.Logger
}

// EngineOption configures Engine.
type EngineOption func(*Engine)

// WithHorizon overrides the number of hours predicted per run.
func WithHorizon(h int) EngineOption {
	return func(e *Engine) {
		if h > 0 {
			e.horizon = h
		}
	}
}

// WithEngineLogger sets the run logger.
func WithEngineLogger(l *logger.Logger) EngineOption {
	return func(e *Engine) {
		e.log = l
	}
}

// NewEngine wires the component models into a forecast engine.
func NewEngine(tree service.TreePredictor, seq service.SequencePredictor, fuser service.Fuser, scaler service.Scaler, opts ...EngineOption) (*Engine, error) {
	if tree == nil || seq == nil || fuser == nil || scaler == nil {
		return nil, fmt.Errorf("all component models are required")
	}

	e := &Engine{
		tree:    tree,
		seq:     seq,
		fuser:   fuser,
		scaler:  scaler,
		horizon: DefaultHorizon,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Horizon returns the configured steps per run.
func (e *Engine) Horizon() int { return e.horizon }

// Run forecasts the next horizon hours from obs, which must be at least
// MinWindow hourly-contiguous rows in ascending order. Window adequacy
// is checked before any model adapter is touched.
func (e *Engine) Run(ctx context.Context, obs []*models.Observation) ([]models.ForecastPoint, error) {
	start := time.Now()

	if len(obs) < MinWindow {
		return nil, upstreamErr("load_window", fmt.Errorf("need %d rows, got %d", MinWindow, len(obs)))
	}

	w, err := NewWindow(obs)
	if err != nil {
		return nil, upstreamErr("validate_window", err)
	}

	points := make([]models.ForecastPoint, 0, e.horizon)
	for i := 1; i <= e.horizon; i++ {
		if err := ctx.Err(); err != nil {
			return nil, predictionErr("cancelled", i, err)
		}

		next := w.Last().Timestamp.Add(time.Hour)

		// The feature row is keyed at the window's current last hour;
		// the models score it to predict the hour after.
		feats, err := DeriveFeatures(w)
		if err != nil {
			return nil, featureErr("derive_features", i, err)
		}

		seqInput, err := BuildSequence(w, e.scaler)
		if err != nil {
			return nil, scalingErr("scale_sequence", i, err)
		}

		treePred, err := e.tree.Predict(ctx, feats)
		if err != nil {
			return nil, predictionErr("tree_predict", i, err)
		}

		seqScaled, err := e.seq.Predict(ctx, seqInput)
		if err != nil {
			return nil, predictionErr("sequence_predict", i, err)
		}

		seqPred, err := e.scaler.Inverse(ChPhase3Power, seqScaled)
		if err != nil {
			return nil, scalingErr("invert_prediction", i, err)
		}

		fused, err := e.fuser.Fuse(ctx, treePred, seqPred)
		if err != nil {
			return nil, predictionErr("fuse", i, err)
		}

		// Carry exogenous channels forward verbatim; only the target
		// is synthesized.
		last := w.Last()
		w.Append(&models.Observation{
			Timestamp:       next,
			Phase2Current:   last.Phase2Current,
			Phase2Voltage:   last.Phase2Voltage,
			Phase3Frequency: last.Phase3Frequency,
			Phase3PF:        last.Phase3PF,
			Phase3Power:     fused,
			Phase3Voltage:   last.Phase3Voltage,
		})

		points = append(points, models.ForecastPoint{Timestamp: next, LoadKW: fused})
	}

	if e.log != nil {
		e.log.Debug("forecast run complete",
			logger.Int("horizon", e.horizon),
			logger.Int("window_rows", len(obs)),
			logger.Duration("took", time.Since(start)),
		)
	}
	return points, nil
}
