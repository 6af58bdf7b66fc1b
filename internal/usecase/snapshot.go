package usecase

import (
	"math"
	"strconv"

	"github.com/google/uuid"

	"Cephu/internal/domain/models"
)

// BasisSnapshot summarizes the last row of a basis report.
func BasisSnapshot(rep *models.BasisReport) *models.Snapshot {
	last := rep.Last()
	return &models.Snapshot{
		RunID:     uuid.NewString(),
		Kind:      models.KindBasis,
		Symbol:    rep.Future,
		Reference: rep.Index,
		Interval:  rep.Interval,
		Timestamp: last.Time,
		Rows:      len(rep.Rows),
		Signal:    string(rep.Takeaway.Signal),
		Values: finite(map[string]float64{
			"future":   last.Future,
			"index":    last.Index,
			"basis":    last.Basis,
			"basis_ma": last.BasisMA,
			"diff":     rep.Takeaway.Diff,
		}),
	}
}

// AnalysisSnapshot summarizes the last row of an analysis report.
func AnalysisSnapshot(rep *models.AnalysisReport) *models.Snapshot {
	last := rep.Last()
	values := map[string]float64{
		"close":     last.Bar.Close,
		"vwap":      last.VWAP,
		"rsi":       last.RSI,
		"rsi_ma":    last.RSIMA,
		"rsi_upper": last.RSIUpper,
		"rsi_lower": last.RSILower,
		"swing":     float64(last.Swing),
		"dbs":       float64(last.DBS),
	}
	for w, v := range last.SMA {
		values[smaKey(w)] = v
	}
	return &models.Snapshot{
		RunID:     uuid.NewString(),
		Kind:      models.KindAnalysis,
		Symbol:    rep.Ticker,
		Interval:  rep.Interval,
		Timestamp: last.Bar.Time,
		Rows:      len(rep.Rows),
		Signal:    dbsSignal(last.DBS),
		Values:    finite(values),
	}
}

func dbsSignal(v int) string {
	switch {
	case v > 0:
		return string(models.SignalBullish)
	case v < 0:
		return string(models.SignalBearish)
	default:
		return string(models.SignalNoSignal)
	}
}

func smaKey(w int) string {
	return "sma_" + strconv.Itoa(w)
}

// finite drops NaN and infinite values, which no sink can encode.
func finite(m map[string]float64) map[string]float64 {
	for k, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			delete(m, k)
		}
	}
	return m
}
