package models

import (
	"context"
	"fmt"

	domsvc "GridCast/internal/domain/service"
	"GridCast/pkg/config"
)

// HTTPFuser combines component predictions via a remote meta-learner.
type HTTPFuser struct{ base *HTTPServiceBase }

func NewHTTPFuser(cfg *config.Config) *HTTPFuser {
	return &HTTPFuser{base: NewHTTPServiceBase(cfg)}
}

type fuseReq struct {
	TreePrediction     float64 `json:"tree_prediction"`
	SequencePrediction float64 `json:"sequence_prediction"`
}

type fuseResp struct {
	Prediction float64 `json:"prediction"`
}

func (f *HTTPFuser) Fuse(ctx context.Context, treePred, seqPred float64) (float64, error) {
	var fr fuseResp
	req := fuseReq{TreePrediction: treePred, SequencePrediction: seqPred}
	if err := f.base.PostJSON(ctx, "/models/fusion/predict", req, &fr); err != nil {
		return 0, fmt.Errorf("post fusion: %w", err)
	}
	return fr.Prediction, nil
}

var _ domsvc.Fuser = (*HTTPFuser)(nil)
