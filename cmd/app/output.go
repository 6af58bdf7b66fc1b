package main

import (
	"math"
	"strconv"
)

func or(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

// fmtValue prints a chart value, or "n/a" while the indicator is still warming up.
func fmtValue(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
