package service

import "context"

// TreePredictor scores one feature vector with the gradient-boosted tree
// model. Missing features are passed as NaN and routed through the trees'
// default directions.
type TreePredictor interface {
	Predict(ctx context.Context, features []float64) (float64, error)
}

// SequencePredictor scores a scaled lookback window, shaped
// [lookback][channels], with the recurrent model. The output is in the
// scaled target space and must be inverted by the caller.
type SequencePredictor interface {
	Predict(ctx context.Context, window [][]float64) (float64, error)
}

// Fuser combines the two component predictions into the final load value.
type Fuser interface {
	Fuse(ctx context.Context, treePred, seqPred float64) (float64, error)
}

// Scaler maps raw channel values into model space and back. Transform and
// Inverse operate per channel by name.
type Scaler interface {
	Transform(channel string, v float64) (float64, error)
	Inverse(channel string, v float64) (float64, error)
}
