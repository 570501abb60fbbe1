package forecast

import (
	"math"
	"testing"
	"time"

	"GridCast/internal/domain/models"
)

func hourlyRows(start time.Time, n int, power func(i int) float64) []*models.Observation {
	rows := make([]*models.Observation, n)
	for i := 0; i < n; i++ {
		rows[i] = &models.Observation{
			Timestamp:       start.Add(time.Duration(i) * time.Hour),
			Phase2Current:   10,
			Phase2Voltage:   231,
			Phase3Frequency: 50,
			Phase3PF:        0.95,
			Phase3Power:     power(i),
			Phase3Voltage:   229,
		}
	}
	return rows
}

func TestDeriveFeaturesCalendarFields(t *testing.T) {
	// 96 rows from 2021-08-12 00:00 end at 2021-08-15 23:00, a Sunday.
	start := time.Date(2021, 8, 12, 0, 0, 0, 0, time.UTC)
	rows := hourlyRows(start, MinWindow, func(i int) float64 { return float64(i) })

	w, err := NewWindow(rows)
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}

	feats, err := DeriveFeatures(w)
	if err != nil {
		t.Fatalf("DeriveFeatures: %v", err)
	}
	if len(feats) != len(TreeFeatures) {
		t.Fatalf("expected %d features, got %d", len(TreeFeatures), len(feats))
	}

	if feats[5] != 23 {
		t.Fatalf("hour: expected 23, got %v", feats[5])
	}
	if feats[6] != 6 {
		t.Fatalf("dayofweek: expected 6 (Sunday), got %v", feats[6])
	}
	if feats[7] != 8 {
		t.Fatalf("month: expected 8, got %v", feats[7])
	}
	if feats[8] != 3 {
		t.Fatalf("quarter: expected 3, got %v", feats[8])
	}
	if feats[9] != 2021 {
		t.Fatalf("year: expected 2021, got %v", feats[9])
	}
}

func TestMondayIndexedWeekday(t *testing.T) {
	monday := time.Date(2021, 8, 16, 0, 0, 0, 0, time.UTC)
	if d := mondayIndexed(monday.Weekday()); d != 0 {
		t.Fatalf("monday: expected 0, got %d", d)
	}
	sunday := time.Date(2021, 8, 15, 0, 0, 0, 0, time.UTC)
	if d := mondayIndexed(sunday.Weekday()); d != 6 {
		t.Fatalf("sunday: expected 6, got %d", d)
	}
}

func TestDeriveFeaturesLagsAndRollingShiftByOne(t *testing.T) {
	start := time.Date(2021, 8, 1, 0, 0, 0, 0, time.UTC)
	rows := hourlyRows(start, MinWindow, func(i int) float64 { return float64(i + 1) })

	w, err := NewWindow(rows)
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}

	feats, err := DeriveFeatures(w)
	if err != nil {
		t.Fatalf("DeriveFeatures: %v", err)
	}

	// Target at the keyed hour is 96; lags look k rows behind it.
	if feats[11] != 95 {
		t.Fatalf("lag_1h: expected 95, got %v", feats[11])
	}
	if feats[12] != 93 {
		t.Fatalf("lag_3h: expected 93, got %v", feats[12])
	}
	if feats[13] != 72 {
		t.Fatalf("lag_24h: expected 72, got %v", feats[13])
	}

	// Rolling means end one row before the keyed hour.
	if want := (93.0 + 94.0 + 95.0) / 3; feats[14] != want {
		t.Fatalf("roll_avg_3h: expected %v, got %v", want, feats[14])
	}
	if want := (90.0 + 91.0 + 92.0 + 93.0 + 94.0 + 95.0) / 6; feats[15] != want {
		t.Fatalf("roll_avg_6h: expected %v, got %v", want, feats[15])
	}
	var sum24 float64
	for v := 72.0; v <= 95.0; v++ {
		sum24 += v
	}
	if want := sum24 / 24; feats[16] != want {
		t.Fatalf("roll_avg_24h: expected %v, got %v", want, feats[16])
	}
}

func TestDeriveFeaturesIgnoreTargetAtKeyedHour(t *testing.T) {
	start := time.Date(2021, 8, 1, 0, 0, 0, 0, time.UTC)
	rows := hourlyRows(start, MinWindow, func(i int) float64 { return float64(i + 1) })

	w, err := NewWindow(rows)
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}
	before, err := DeriveFeatures(w)
	if err != nil {
		t.Fatalf("DeriveFeatures: %v", err)
	}

	// Rewriting the target at the keyed hour must leave every lag and
	// rolling feature untouched.
	w.Last().Phase3Power = 1096
	after, err := DeriveFeatures(w)
	if err != nil {
		t.Fatalf("DeriveFeatures after mutation: %v", err)
	}

	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("%s leaked the keyed hour's target: %v -> %v", TreeFeatures[i], before[i], after[i])
		}
	}
}

func TestShortHistoryYieldsNaNNotImputation(t *testing.T) {
	start := time.Date(2021, 8, 1, 0, 0, 0, 0, time.UTC)
	// Build a window below the lag depth directly; NewWindow would
	// reject it, but lag lookups must still degrade to NaN.
	w := &Window{rows: hourlyRows(start, 10, func(i int) float64 { return float64(i) })}

	if v := lagOrNaN(w, 24); !math.IsNaN(v) {
		t.Fatalf("lag_24h on 10 rows: expected NaN, got %v", v)
	}
	if v := rollOrNaN(w, 24); !math.IsNaN(v) {
		t.Fatalf("roll_avg_24h on 10 rows: expected NaN, got %v", v)
	}
	if v := lagOrNaN(w, 3); math.IsNaN(v) {
		t.Fatalf("lag_3h on 10 rows: expected value, got NaN")
	}
}

func TestDeriveFeaturesRejectsEmptyWindow(t *testing.T) {
	if _, err := DeriveFeatures(&Window{}); err == nil {
		t.Fatal("expected error for empty window")
	}
}

func TestNewWindowRejectsGaps(t *testing.T) {
	start := time.Date(2021, 8, 1, 0, 0, 0, 0, time.UTC)
	rows := hourlyRows(start, MinWindow, func(i int) float64 { return 1 })
	rows[50].Timestamp = rows[50].Timestamp.Add(30 * time.Minute)

	if _, err := NewWindow(rows); err == nil {
		t.Fatal("expected error for non-hourly gap")
	}
}
