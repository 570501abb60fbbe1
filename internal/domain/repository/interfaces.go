package repository

import (
	"context"
	"time"

	"GridCast/internal/domain/models"
)

type MeterStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Reading, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

type Publisher interface {
	Publish(ctx context.Context, r *models.Reading) error
	PublishBatch(ctx context.Context, readings []*models.Reading) error
	Close() error
}

type ObservationStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Store(ctx context.Context, o *models.Observation) error
	StoreBatch(ctx context.Context, obs []*models.Observation) error
	LatestN(ctx context.Context, meter string, n int) ([]*models.Observation, error)
	Range(ctx context.Context, meter string, from, to time.Time, limit int) ([]*models.Observation, error)
	Health(ctx context.Context) error // ping
	Close() error
}

type Metrics interface {
	RecordReadingIngested(backend, meter string)
	RecordForecastRun(status string)
	RecordError(kind string)
	RecordLastLoad(meter string, kw float64)
	RecordPredictedPeak(meter string, kw float64)
	RecordLatency(op string, seconds float64)
}
