package usecase

import (
	"context"
	"fmt"

	"GridCast/internal/domain/models"
	domrepo "GridCast/internal/domain/repository"
	pkgkafka "GridCast/pkg/kafka"
	applogger "GridCast/pkg/logger"
)

// AlertPublisher is the subset of the Kafka producer the alerts
// usecase needs.
type AlertPublisher interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
}

// AlertsUseCase compares the forecast horizon against a critical load
// threshold and emits alerts for every breaching hour.
type AlertsUseCase struct {
	forecasts *ForecastUseCase
	pub       AlertPublisher
	topic     string
	metrics   domrepo.Metrics
	log       *applogger.Logger
	threshold float64
}

// NewAlertsUseCase creates the alerts usecase. pub may be nil to skip
// publishing and only return alerts to the caller.
func NewAlertsUseCase(forecasts *ForecastUseCase, pub AlertPublisher, topic string, metrics domrepo.Metrics, log *applogger.Logger, threshold float64) *AlertsUseCase {
	if threshold <= 0 {
		threshold = 500
	}
	return &AlertsUseCase{forecasts: forecasts, pub: pub, topic: topic, metrics: metrics, log: log, threshold: threshold}
}

// DefaultThreshold returns the configured critical load threshold.
func (uc *AlertsUseCase) DefaultThreshold() float64 { return uc.threshold }

// Check forecasts the next hours for meter and returns one alert per
// hour whose predicted load crosses threshold. A zero threshold uses
// the configured default.
func (uc *AlertsUseCase) Check(ctx context.Context, meter string, threshold float64) ([]models.Alert, error) {
	if threshold <= 0 {
		threshold = uc.threshold
	}

	res, err := uc.forecasts.HourlyForecast(ctx, meter, 0)
	if err != nil {
		return nil, fmt.Errorf("alert check forecast: %w", err)
	}

	var alerts []models.Alert
	for _, p := range res.Points {
		if p.LoadKW <= threshold {
			continue
		}
		severity := "warning"
		if p.LoadKW > threshold*1.2 {
			severity = "critical"
		}
		alerts = append(alerts, models.Alert{
			Meter:       meter,
			Timestamp:   p.Timestamp,
			PredictedKW: p.LoadKW,
			ThresholdKW: threshold,
			Severity:    severity,
		})
	}

	if len(alerts) > 0 && uc.pub != nil {
		for i := range alerts {
			if err := uc.pub.Publish(ctx, uc.topic, []byte(meter), alerts[i]); err != nil {
				uc.metrics.RecordError("alert_publish")
				if uc.log != nil {
					uc.log.Warn("alert publish failed", applogger.Error(err))
				}
				// Alerts are still returned to the caller.
				break
			}
		}
	}
	return alerts, nil
}

var _ AlertPublisher = (*pkgkafka.Producer)(nil)
