package features

import (
	"math"
	"time"

	"Cephu/internal/domain/models"
)

// AlignedClose is one timestamp present in both series with finite closes.
type AlignedClose struct {
	Time  time.Time
	Left  float64
	Right float64
}

// AlignCloses inner-joins two series on the bar timestamp (Unix seconds) and
// drops rows where either close is missing. Output keeps the order of left.
func AlignCloses(left, right models.Series) []AlignedClose {
	idx := make(map[int64]float64, len(right.Bars))
	for _, b := range right.Bars {
		idx[b.Time.Unix()] = b.Close
	}
	out := make([]AlignedClose, 0, min(len(left.Bars), len(right.Bars)))
	for _, b := range left.Bars {
		rc, ok := idx[b.Time.Unix()]
		if !ok || math.IsNaN(b.Close) || math.IsNaN(rc) {
			continue
		}
		out = append(out, AlignedClose{Time: b.Time, Left: b.Close, Right: rc})
	}
	return out
}

// CompleteBars returns the bars with all OHLC values present.
func CompleteBars(bars []models.Bar) []models.Bar {
	out := make([]models.Bar, 0, len(bars))
	for _, b := range bars {
		if b.Complete() {
			out = append(out, b)
		}
	}
	return out
}
