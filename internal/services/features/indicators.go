package features

import (
	"math"

	"github.com/markcheno/go-talib"

	"Cephu/internal/domain/models"
	"Cephu/pkg/util"
)

// SMA returns the simple moving average of xs, NaN during warm-up.
func SMA(xs []float64, window int) []float64 {
	if window < 1 || len(xs) < window {
		return NaNs(len(xs))
	}
	out := talib.Sma(xs, window)
	for i := 0; i < window-1 && i < len(out); i++ {
		out[i] = math.NaN()
	}
	return out
}

// RSI returns the Wilder relative strength index, NaN for the first window values.
func RSI(xs []float64, window int) []float64 {
	if window < 2 || len(xs) <= window {
		return NaNs(len(xs))
	}
	out := talib.Rsi(xs, window)
	for i := 0; i < window; i++ {
		out[i] = math.NaN()
	}
	return out
}

// VWAP returns the volume-weighted typical price anchored to the exchange day:
// accumulation restarts on every calendar day of the bar time. Bars of a day or
// longer therefore carry their own typical price.
func VWAP(bars []models.Bar) []float64 {
	out := NaNs(len(bars))
	var pv, vol float64
	for i, b := range bars {
		if i > 0 && !util.SameDay(b.Time, bars[i-1].Time, b.Time.Location()) {
			pv, vol = 0, 0
		}
		if !math.IsNaN(b.Volume) {
			pv += (b.High + b.Low + b.Close) / 3 * b.Volume
			vol += b.Volume
		}
		if vol > 0 {
			out[i] = pv / vol
		}
	}
	return out
}

// Swing counts consecutive up closes as a positive streak and any other
// close as a negative streak. The first value is 0.
func Swing(closes []float64) []int {
	out := make([]int, len(closes))
	for i := 1; i < len(closes); i++ {
		prev := out[i-1]
		if closes[i] > closes[i-1] {
			if prev >= 0 {
				out[i] = prev + 1
			} else {
				out[i] = 1
			}
			continue
		}
		if prev <= 0 {
			out[i] = prev - 1
		} else {
			out[i] = -1
		}
	}
	return out
}

// DBS combines trend and momentum: +1 above the trend SMA with RSI over 50,
// -1 below it with RSI under 50, 0 otherwise or when either input is undefined.
func DBS(closes, trend, rsi []float64) []int {
	out := make([]int, len(closes))
	for i, c := range closes {
		switch {
		case c > trend[i] && rsi[i] > 50:
			out[i] = 1
		case c < trend[i] && rsi[i] < 50:
			out[i] = -1
		}
	}
	return out
}

// ComputeTechnicalIndicators derives the analysis table. Bars with a missing
// OHLC value are dropped first so every indicator sees the same rows.
func ComputeTechnicalIndicators(bars []models.Bar, p models.IndicatorParams) []models.IndicatorRow {
	bars = CompleteBars(bars)
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}

	smas := make(map[int][]float64, len(p.SMAWindows)+1)
	for _, w := range p.SMAWindows {
		smas[w] = SMA(closes, w)
	}
	trend, ok := smas[p.TrendWindow]
	if !ok {
		trend = SMA(closes, p.TrendWindow)
	}

	rsi := RSI(closes, p.RSIWindow)
	rsiMA := RollingMean(rsi, p.RSIMAWindow)
	rsiStd := RollingStd(rsi, p.RSIMAWindow)
	vwap := VWAP(bars)
	swing := Swing(closes)
	dbs := DBS(closes, trend, rsi)

	rows := make([]models.IndicatorRow, len(bars))
	for i, b := range bars {
		sma := make(map[int]float64, len(smas))
		for _, w := range p.SMAWindows {
			sma[w] = smas[w][i]
		}
		rows[i] = models.IndicatorRow{
			Bar:      b,
			SMA:      sma,
			VWAP:     vwap[i],
			RSI:      rsi[i],
			RSIMA:    rsiMA[i],
			RSIStd:   rsiStd[i],
			RSIUpper: rsiMA[i] + p.BandK*rsiStd[i],
			RSILower: rsiMA[i] - p.BandK*rsiStd[i],
			Swing:    swing[i],
			DBS:      dbs[i],
		}
	}
	return rows
}
