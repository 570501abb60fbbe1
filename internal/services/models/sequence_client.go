package models

import (
	"context"
	"fmt"

	domsvc "GridCast/internal/domain/service"
	"GridCast/pkg/config"
)

// HTTPSequencePredictor scores a scaled lookback window against a
// remote model server.
type HTTPSequencePredictor struct{ base *HTTPServiceBase }

func NewHTTPSequencePredictor(cfg *config.Config) *HTTPSequencePredictor {
	return &HTTPSequencePredictor{base: NewHTTPServiceBase(cfg)}
}

type seqReq struct {
	Window [][]float64 `json:"window"`
}

type seqResp struct {
	Prediction float64 `json:"prediction"`
}

func (p *HTTPSequencePredictor) Predict(ctx context.Context, window [][]float64) (float64, error) {
	var sr seqResp
	if err := p.base.PostJSON(ctx, "/models/sequence/predict", seqReq{Window: window}, &sr); err != nil {
		return 0, fmt.Errorf("post sequence: %w", err)
	}
	return sr.Prediction, nil
}

var _ domsvc.SequencePredictor = (*HTTPSequencePredictor)(nil)
