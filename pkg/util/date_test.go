package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2021-08-10T14:00:00Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimePlainDate(t *testing.T) {
	got, ok := ParseTime("2021-08-17")
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Year() != 2021 || got.Month() != time.August || got.Day() != 17 {
		t.Fatalf("unexpected date %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2021, 8, 10, 14, 0, 0, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseTimeRejectsGarbage(t *testing.T) {
	if _, ok := ParseTime("not-a-time"); ok {
		t.Fatalf("expected parse failure")
	}
	if _, ok := ParseTime(""); ok {
		t.Fatalf("expected parse failure for empty string")
	}
}

func TestAlignRange(t *testing.T) {
	from := time.Date(2021, 8, 10, 14, 37, 12, 0, time.UTC)
	to := time.Date(2021, 8, 11, 9, 1, 0, 0, time.UTC)
	gotFrom, gotTo := AlignRange(from, to)
	if !gotFrom.Equal(time.Date(2021, 8, 10, 14, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected from %v", gotFrom)
	}
	if !gotTo.Equal(time.Date(2021, 8, 11, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected to %v", gotTo)
	}
}
