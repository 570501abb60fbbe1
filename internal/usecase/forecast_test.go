package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"GridCast/internal/domain/models"
	"GridCast/internal/forecast"
)

type fakeStore struct {
	rows    []*models.Observation
	err     error
	latestN int
}

func (f *fakeStore) Init(context.Context) error                      { return nil }
func (f *fakeStore) Store(context.Context, *models.Observation) error { return nil }
func (f *fakeStore) StoreBatch(context.Context, []*models.Observation) error {
	return nil
}
func (f *fakeStore) LatestN(_ context.Context, _ string, n int) ([]*models.Observation, error) {
	f.latestN = n
	if f.err != nil {
		return nil, f.err
	}
	if n > len(f.rows) {
		n = len(f.rows)
	}
	return f.rows[len(f.rows)-n:], nil
}
func (f *fakeStore) Range(_ context.Context, _ string, from, to time.Time, limit int) ([]*models.Observation, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.Observation
	for _, o := range f.rows {
		if !o.Timestamp.Before(from) && !o.Timestamp.After(to) {
			out = append(out, o)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}
func (f *fakeStore) Health(context.Context) error { return nil }
func (f *fakeStore) Close() error                 { return nil }

type fakeMetrics struct {
	runs   map[string]int
	errs   map[string]int
	peakKW float64
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{runs: make(map[string]int), errs: make(map[string]int)}
}
func (m *fakeMetrics) RecordReadingIngested(string, string) {}
func (m *fakeMetrics) RecordForecastRun(status string)      { m.runs[status]++ }
func (m *fakeMetrics) RecordError(kind string)              { m.errs[kind]++ }
func (m *fakeMetrics) RecordLastLoad(string, float64)       {}
func (m *fakeMetrics) RecordPredictedPeak(_ string, kw float64) {
	m.peakKW = kw
}
func (m *fakeMetrics) RecordLatency(string, float64) {}

type constTree struct{ v float64 }

func (c constTree) Predict(context.Context, []float64) (float64, error) { return c.v, nil }

type constSeq struct{ v float64 }

func (c constSeq) Predict(context.Context, [][]float64) (float64, error) { return c.v, nil }

type meanFuser struct{}

func (meanFuser) Fuse(_ context.Context, a, b float64) (float64, error) { return (a + b) / 2, nil }

type identityScaler struct{}

func (identityScaler) Transform(_ string, v float64) (float64, error) { return v, nil }
func (identityScaler) Inverse(_ string, v float64) (float64, error)   { return v, nil }

func seedRows(n int, power float64) []*models.Observation {
	start := time.Date(2021, 8, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]*models.Observation, n)
	for i := range rows {
		rows[i] = &models.Observation{
			Timestamp:     start.Add(time.Duration(i) * time.Hour),
			Phase2Current: 12,
			Phase2Voltage: 230,
			Phase3Power:   power,
			Phase3PF:      0.92,
		}
	}
	return rows
}

func testEngine(t *testing.T, treeV, seqV float64) *forecast.Engine {
	t.Helper()
	e, err := forecast.NewEngine(constTree{v: treeV}, constSeq{v: seqV}, meanFuser{}, identityScaler{})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestHourlyForecastHappyPath(t *testing.T) {
	store := &fakeStore{rows: seedRows(forecast.MinWindow, 400)}
	metrics := newFakeMetrics()
	uc := NewForecastUseCase(store, testEngine(t, 410, 430), nil, metrics, nil, time.Minute)

	res, err := uc.HourlyForecast(context.Background(), "main", 24)
	if err != nil {
		t.Fatalf("HourlyForecast: %v", err)
	}
	if len(res.Points) != 24 {
		t.Fatalf("expected 24 points, got %d", len(res.Points))
	}
	if store.latestN != forecast.MinWindow {
		t.Fatalf("expected LatestN(%d), got %d", forecast.MinWindow, store.latestN)
	}
	if res.PeakKW != 420 {
		t.Fatalf("expected peak 420, got %v", res.PeakKW)
	}
	if metrics.runs["ok"] != 1 {
		t.Fatalf("expected 1 ok run, got %d", metrics.runs["ok"])
	}
	if metrics.peakKW != 420 {
		t.Fatalf("expected recorded peak 420, got %v", metrics.peakKW)
	}
}

func TestHourlyForecastTruncatesHorizon(t *testing.T) {
	store := &fakeStore{rows: seedRows(forecast.MinWindow, 300)}
	uc := NewForecastUseCase(store, testEngine(t, 300, 300), nil, newFakeMetrics(), nil, time.Minute)

	res, err := uc.HourlyForecast(context.Background(), "main", 6)
	if err != nil {
		t.Fatalf("HourlyForecast: %v", err)
	}
	if len(res.Points) != 6 {
		t.Fatalf("expected 6 points, got %d", len(res.Points))
	}
}

func TestHourlyForecastShortWindowReturnsUpstreamError(t *testing.T) {
	store := &fakeStore{rows: seedRows(50, 300)}
	metrics := newFakeMetrics()
	uc := NewForecastUseCase(store, testEngine(t, 300, 300), nil, metrics, nil, time.Minute)

	_, err := uc.HourlyForecast(context.Background(), "main", 24)
	if err == nil {
		t.Fatal("expected error")
	}
	if !forecast.IsKind(err, forecast.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if metrics.runs["error"] != 1 {
		t.Fatalf("expected 1 error run, got %d", metrics.runs["error"])
	}
}

func TestHourlyForecastStoreFailure(t *testing.T) {
	store := &fakeStore{err: errors.New("clickhouse down")}
	metrics := newFakeMetrics()
	uc := NewForecastUseCase(store, testEngine(t, 300, 300), nil, metrics, nil, time.Minute)

	_, err := uc.HourlyForecast(context.Background(), "main", 24)
	if err == nil {
		t.Fatal("expected error")
	}
	if metrics.errs["forecast_load_window"] != 1 {
		t.Fatalf("expected load window error recorded, got %v", metrics.errs)
	}
}

type capturePub struct {
	topic  string
	values []interface{}
}

func (p *capturePub) Publish(_ context.Context, topic string, _ []byte, value interface{}) error {
	p.topic = topic
	p.values = append(p.values, value)
	return nil
}

func TestAlertCheckFiresAboveThreshold(t *testing.T) {
	store := &fakeStore{rows: seedRows(forecast.MinWindow, 480)}
	metrics := newFakeMetrics()
	// Fused prediction is (500+525)/2 = 512.5, above the 500 default.
	fc := NewForecastUseCase(store, testEngine(t, 500, 525), nil, metrics, nil, time.Minute)
	pub := &capturePub{}
	uc := NewAlertsUseCase(fc, pub, "load.alerts", metrics, nil, 500)

	alerts, err := uc.Check(context.Background(), "main", 0)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(alerts) != 24 {
		t.Fatalf("expected 24 alerts, got %d", len(alerts))
	}
	for _, a := range alerts {
		if a.PredictedKW != 512.5 {
			t.Fatalf("expected predicted 512.5, got %v", a.PredictedKW)
		}
		if a.Severity != "warning" {
			t.Fatalf("512.5 vs 500 should be warning, got %s", a.Severity)
		}
	}
	if pub.topic != "load.alerts" || len(pub.values) == 0 {
		t.Fatalf("expected alerts published to load.alerts, got %q (%d)", pub.topic, len(pub.values))
	}
}

func TestAlertCheckQuietBelowThreshold(t *testing.T) {
	store := &fakeStore{rows: seedRows(forecast.MinWindow, 300)}
	metrics := newFakeMetrics()
	fc := NewForecastUseCase(store, testEngine(t, 300, 320), nil, metrics, nil, time.Minute)
	uc := NewAlertsUseCase(fc, nil, "load.alerts", metrics, nil, 500)

	alerts, err := uc.Check(context.Background(), "main", 0)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(alerts) != 0 {
		t.Fatalf("expected no alerts, got %d", len(alerts))
	}
}

func TestGetHistoricalDownsamplesLargeRanges(t *testing.T) {
	// 60 days of hourly data, power equal to the hour of day.
	start := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]*models.Observation, 60*24)
	for i := range rows {
		ts := start.Add(time.Duration(i) * time.Hour)
		rows[i] = &models.Observation{Timestamp: ts, Phase3Power: float64(ts.Hour())}
	}

	uc := NewHistoricalUseCase(&fakeStore{rows: rows})
	res, err := uc.GetHistorical(context.Background(), GetHistoricalParams{
		Meter: "main",
		From:  start,
		To:    start.Add(60 * 24 * time.Hour),
		Limit: 100000,
	})
	if err != nil {
		t.Fatalf("GetHistorical: %v", err)
	}
	if !res.Downsampled {
		t.Fatal("expected downsampling for 1440 rows")
	}
	if res.Count != 60 {
		t.Fatalf("expected 60 daily points, got %d", res.Count)
	}
	// Mean of hours 0..23 is 11.5 for every full day.
	for i, p := range res.Points {
		if p.LoadKW != 11.5 {
			t.Fatalf("day %d: expected daily mean 11.5, got %v", i, p.LoadKW)
		}
	}
}

func TestGetHistoricalSmallRangeKeepsHourlyRows(t *testing.T) {
	rows := seedRows(48, 250)
	uc := NewHistoricalUseCase(&fakeStore{rows: rows})
	res, err := uc.GetHistorical(context.Background(), GetHistoricalParams{
		Meter: "main",
		From:  rows[0].Timestamp,
		To:    rows[len(rows)-1].Timestamp,
		Limit: 1000,
	})
	if err != nil {
		t.Fatalf("GetHistorical: %v", err)
	}
	if res.Downsampled {
		t.Fatal("expected no downsampling for 48 rows")
	}
	if res.Count != 48 {
		t.Fatalf("expected 48 points, got %d", res.Count)
	}
}

func TestPerformanceScoresFusionBeatsComponents(t *testing.T) {
	uc := NewPerformanceUseCase()
	scores := uc.Scores()
	if len(scores) != 3 {
		t.Fatalf("expected 3 models, got %d", len(scores))
	}
	byModel := map[string]float64{}
	for _, s := range scores {
		byModel[s.Model] = s.MAPE
	}
	if byModel["fusion"] >= byModel["gbt"] || byModel["fusion"] >= byModel["lstm"] {
		t.Fatalf("fusion MAPE should beat both components: %v", byModel)
	}
}
