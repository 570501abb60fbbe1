package usecase

import (
	"context"
	"fmt"
	"time"

	"GridCast/internal/domain/models"
	domrepo "GridCast/internal/domain/repository"
	xutil "GridCast/pkg/util"
)

// HistoricalUseCase serves stored load history for charting. Ranges
// larger than the downsample cutoff come back as daily means so the
// payload stays plottable.
type HistoricalUseCase struct {
	store domrepo.ObservationStore
}

func NewHistoricalUseCase(store domrepo.ObservationStore) *HistoricalUseCase {
	return &HistoricalUseCase{store: store}
}

// Ranges beyond this many hourly rows are downsampled to daily means.
const downsampleCutoff = 1000

type HistoricalPoint struct {
	Timestamp time.Time `json:"timestamp"`
	LoadKW    float64   `json:"load_kw"`
}

type GetHistoricalParams struct {
	Meter string
	From  time.Time
	To    time.Time
	Limit int
}

type GetHistoricalResult struct {
	Meter       string            `json:"meter"`
	From        time.Time         `json:"from"`
	To          time.Time         `json:"to"`
	Count       int               `json:"count"`
	Downsampled bool              `json:"downsampled"`
	Points      []HistoricalPoint `json:"points"`
}

func (uc *HistoricalUseCase) GetHistorical(ctx context.Context, p GetHistoricalParams) (*GetHistoricalResult, error) {
	if p.Meter == "" {
		return nil, fmt.Errorf("meter required")
	}
	if p.From.After(p.To) {
		return nil, fmt.Errorf("from must be <= to")
	}
	if p.Limit <= 0 {
		p.Limit = 10000
	}
	if p.Limit > 100000 {
		p.Limit = 100000
	}

	// Rows are stored on hour boundaries.
	p.From, p.To = xutil.AlignRange(p.From, p.To)

	obs, err := uc.store.Range(ctx, p.Meter, p.From, p.To, p.Limit)
	if err != nil {
		return nil, fmt.Errorf("get historical: %w", err)
	}

	res := &GetHistoricalResult{Meter: p.Meter, From: p.From, To: p.To}
	if len(obs) > downsampleCutoff {
		res.Points = dailyMeans(obs)
		res.Downsampled = true
	} else {
		res.Points = make([]HistoricalPoint, len(obs))
		for i, o := range obs {
			res.Points[i] = HistoricalPoint{Timestamp: o.Timestamp, LoadKW: o.Phase3Power}
		}
	}
	res.Count = len(res.Points)
	return res, nil
}

// dailyMeans averages the target per calendar day, preserving input
// order. Rows arrive time-ascending from storage.
func dailyMeans(obs []*models.Observation) []HistoricalPoint {
	var out []HistoricalPoint
	var day time.Time
	var sum float64
	var n int

	flush := func() {
		if n > 0 {
			out = append(out, HistoricalPoint{Timestamp: day, LoadKW: sum / float64(n)})
		}
		sum, n = 0, 0
	}

	for _, o := range obs {
		d := o.Timestamp.Truncate(24 * time.Hour)
		if n > 0 && !d.Equal(day) {
			flush()
		}
		day = d
		sum += o.Phase3Power
		n++
	}
	flush()
	return out
}
