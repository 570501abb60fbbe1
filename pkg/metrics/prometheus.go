package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	readingsIngested *prometheus.CounterVec
	forecastRuns     *prometheus.CounterVec
	errorsTotal      *prometheus.CounterVec
	lastLoad         *prometheus.GaugeVec
	predictedPeak    *prometheus.GaugeVec
	latency          *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		readingsIngested: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gridcast_readings_ingested_total",
				Help: "Total number of meter readings stored to backend",
			},
			[]string{"backend", "meter"},
		),
		forecastRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gridcast_forecast_runs_total",
				Help: "Total number of forecast runs by result",
			},
			[]string{"status"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gridcast_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastLoad: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gridcast_last_load_kw",
				Help: "Last observed load for a meter",
			},
			[]string{"meter"},
		),
		predictedPeak: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gridcast_predicted_peak_kw",
				Help: "Peak load over the latest forecast horizon",
			},
			[]string{"meter"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gridcast_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordReadingIngested records a reading stored to a backend.
func (r *Recorder) RecordReadingIngested(backend, meter string) {
	r.readingsIngested.WithLabelValues(backend, meter).Inc()
}

// RecordForecastRun records a forecast run outcome ("ok" or "error").
func (r *Recorder) RecordForecastRun(status string) {
	r.forecastRuns.WithLabelValues(status).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastLoad records the last observed load for a meter.
func (r *Recorder) RecordLastLoad(meter string, kw float64) {
	r.lastLoad.WithLabelValues(meter).Set(kw)
}

// RecordPredictedPeak records the peak predicted load for a meter.
func (r *Recorder) RecordPredictedPeak(meter string, kw float64) {
	r.predictedPeak.WithLabelValues(meter).Set(kw)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
