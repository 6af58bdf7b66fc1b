package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestFormatStampFixedCET(t *testing.T) {
	loc := DisplayLocation("CET", time.Hour)
	got := FormatStamp(time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC), loc)
	if want := "March 11, 2025 | 00:30 CET"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDisplayLocationFallsBackToFixed(t *testing.T) {
	loc := DisplayLocation("Nowhere/Land", 2*time.Hour)
	_, off := time.Date(2025, 1, 1, 0, 0, 0, 0, loc).Zone()
	if off != 7200 {
		t.Fatalf("unexpected offset %d", off)
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC)
	b := time.Date(2025, 3, 11, 0, 10, 0, 0, time.UTC)
	if SameDay(a, b, time.UTC) {
		t.Fatalf("expected different days in UTC")
	}
	if !SameDay(a, b, time.FixedZone("X", -3600)) {
		t.Fatalf("expected same day at UTC-1")
	}
}
