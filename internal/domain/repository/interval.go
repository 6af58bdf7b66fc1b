package repository

import "strings"

// Interval is a bar resolution understood by the chart API.
type Interval string

const (
	Interval1m  Interval = "1m"
	Interval2m  Interval = "2m"
	Interval5m  Interval = "5m"
	Interval15m Interval = "15m"
	Interval30m Interval = "30m"
	Interval60m Interval = "60m"
	Interval90m Interval = "90m"
	Interval1h  Interval = "1h"
	Interval1d  Interval = "1d"
	Interval5d  Interval = "5d"
	Interval1wk Interval = "1wk"
	Interval1mo Interval = "1mo"
	Interval3mo Interval = "3mo"
)

// IsValidInterval returns true if iv is a supported interval.
func IsValidInterval(iv Interval) bool {
	switch iv {
	case Interval1m, Interval2m, Interval5m, Interval15m, Interval30m, Interval60m, Interval90m,
		Interval1h, Interval1d, Interval5d, Interval1wk, Interval1mo, Interval3mo:
		return true
	default:
		return false
	}
}

// IsIntraday reports whether bars of this interval are shorter than a trading day.
func (iv Interval) IsIntraday() bool {
	switch iv {
	case Interval1m, Interval2m, Interval5m, Interval15m, Interval30m, Interval60m, Interval90m, Interval1h:
		return true
	default:
		return false
	}
}

// NormalizeInterval converts raw string to a valid interval (or def).
func NormalizeInterval(s string, def Interval) Interval {
	iv := Interval(strings.ToLower(strings.TrimSpace(s)))
	if iv == "" || !IsValidInterval(iv) {
		return def
	}
	return iv
}
