package models

import "time"

// ForecastPoint is one predicted hour of load.
type ForecastPoint struct {
	Timestamp time.Time `json:"timestamp"`
	LoadKW    float64   `json:"load_kw"`
}

// ForecastResult is a full horizon of predictions with the peak hour
// pulled out for dashboards.
type ForecastResult struct {
	Meter       string          `json:"meter"`
	GeneratedAt time.Time       `json:"generated_at"`
	Points      []ForecastPoint `json:"points"`
	PeakKW      float64         `json:"peak_kw"`
	PeakAt      time.Time       `json:"peak_at"`
}

// Alert reports hours where the predicted load crosses the critical
// threshold.
type Alert struct {
	Meter       string    `json:"meter"`
	Timestamp   time.Time `json:"timestamp"`
	PredictedKW float64   `json:"predicted_kw"`
	ThresholdKW float64   `json:"threshold_kw"`
	Severity    string    `json:"severity"` // "warning", "critical"
}

// ModelPerformance holds offline evaluation scores per component model.
type ModelPerformance struct {
	Model string  `json:"model"`
	MAPE  float64 `json:"mape"`
	RMSE  float64 `json:"rmse,omitempty"`
}
