package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"GridCast/internal/domain/models"
	domrepo "GridCast/internal/domain/repository"
	"GridCast/internal/forecast"
	"GridCast/pkg/cache"
	applogger "GridCast/pkg/logger"
)

// ForecastUseCase runs the recursive load forecast over the freshest
// stored window and caches the horizon for its validity period. A
// short-lived lock keeps concurrent cold-cache requests from running
// the engine more than once.
type ForecastUseCase struct {
	store   domrepo.ObservationStore
	engine  *forecast.Engine
	cache   cache.Service
	metrics domrepo.Metrics
	log     *applogger.Logger
	ttl     time.Duration
}

// NewForecastUseCase creates the forecast usecase. cache may be nil to
// disable result caching.
func NewForecastUseCase(store domrepo.ObservationStore, engine *forecast.Engine, c cache.Service, metrics domrepo.Metrics, log *applogger.Logger, ttl time.Duration) *ForecastUseCase {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ForecastUseCase{store: store, engine: engine, cache: c, metrics: metrics, log: log, ttl: ttl}
}

// HourlyForecast returns up to horizon predicted hours for meter. The
// engine always runs its full horizon; shorter requests are served by
// truncation so the cache holds one entry per meter.
func (uc *ForecastUseCase) HourlyForecast(ctx context.Context, meter string, horizon int) (*models.ForecastResult, error) {
	if horizon <= 0 || horizon > uc.engine.Horizon() {
		horizon = uc.engine.Horizon()
	}

	key := cache.GenerateKey("forecast:hourly", meter)
	if res, ok := uc.cached(ctx, key); ok {
		return truncate(res, horizon), nil
	}

	if uc.cache != nil {
		lockKey := "lock:" + key
		acquired, err := uc.cache.TryLock(ctx, lockKey, 30*time.Second)
		if err == nil && !acquired {
			// Someone else is computing; give them a moment.
			for i := 0; i < 5; i++ {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(200 * time.Millisecond):
				}
				if res, ok := uc.cached(ctx, key); ok {
					return truncate(res, horizon), nil
				}
			}
		} else if err == nil {
			defer func() { _ = uc.cache.Unlock(context.WithoutCancel(ctx), lockKey) }()
		}
	}

	res, err := uc.run(ctx, meter)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, key, res, uc.ttl); err != nil && uc.log != nil {
			uc.log.Warn("forecast cache set failed", applogger.Error(err))
		}
	}
	return truncate(res, horizon), nil
}

func (uc *ForecastUseCase) cached(ctx context.Context, key string) (*models.ForecastResult, bool) {
	if uc.cache == nil {
		return nil, false
	}
	var res models.ForecastResult
	if err := uc.cache.Get(ctx, key, &res); err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) && uc.log != nil {
			uc.log.Warn("forecast cache get failed", applogger.Error(err))
		}
		return nil, false
	}
	if len(res.Points) == 0 {
		return nil, false
	}
	return &res, true
}

func (uc *ForecastUseCase) run(ctx context.Context, meter string) (*models.ForecastResult, error) {
	start := time.Now()

	obs, err := uc.store.LatestN(ctx, meter, forecast.MinWindow)
	if err != nil {
		uc.metrics.RecordForecastRun("error")
		uc.metrics.RecordError("forecast_load_window")
		return nil, fmt.Errorf("load window for %s: %w", meter, err)
	}

	points, err := uc.engine.Run(ctx, obs)
	if err != nil {
		uc.metrics.RecordForecastRun("error")
		var se *forecast.StepError
		if errors.As(err, &se) {
			uc.metrics.RecordError("forecast_" + string(se.Kind))
			if uc.log != nil {
				uc.log.Error("forecast run failed",
					applogger.String("meter", meter),
					applogger.String("step", se.Step),
					applogger.Int("iteration", se.Iteration),
					applogger.Error(err),
				)
			}
		}
		return nil, err
	}

	res := &models.ForecastResult{
		Meter:       meter,
		GeneratedAt: time.Now().UTC(),
		Points:      points,
	}
	for _, p := range points {
		if p.LoadKW > res.PeakKW {
			res.PeakKW = p.LoadKW
			res.PeakAt = p.Timestamp
		}
	}

	uc.metrics.RecordForecastRun("ok")
	uc.metrics.RecordPredictedPeak(meter, res.PeakKW)
	uc.metrics.RecordLatency("forecast_run", time.Since(start).Seconds())
	return res, nil
}

func truncate(res *models.ForecastResult, horizon int) *models.ForecastResult {
	if horizon >= len(res.Points) {
		return res
	}
	out := *res
	out.Points = res.Points[:horizon]
	out.PeakKW = 0
	for _, p := range out.Points {
		if p.LoadKW > out.PeakKW {
			out.PeakKW = p.LoadKW
			out.PeakAt = p.Timestamp
		}
	}
	return &out
}
