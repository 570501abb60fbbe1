package models

import (
	"context"
	"fmt"

	domsvc "GridCast/internal/domain/service"
	"GridCast/pkg/config"
)

// HTTPTreePredictor scores tree features against a remote model server.
type HTTPTreePredictor struct{ base *HTTPServiceBase }

func NewHTTPTreePredictor(cfg *config.Config) *HTTPTreePredictor {
	return &HTTPTreePredictor{base: NewHTTPServiceBase(cfg)}
}

type treeReq struct {
	Features []float64 `json:"features"`
}

type treeResp struct {
	Prediction float64 `json:"prediction"`
}

func (p *HTTPTreePredictor) Predict(ctx context.Context, features []float64) (float64, error) {
	var tr treeResp
	if err := p.base.PostJSON(ctx, "/models/tree/predict", treeReq{Features: features}, &tr); err != nil {
		return 0, fmt.Errorf("post tree: %w", err)
	}
	return tr.Prediction, nil
}

var _ domsvc.TreePredictor = (*HTTPTreePredictor)(nil)
