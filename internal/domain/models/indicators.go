package models

import "time"

// IndicatorParams configures the technical-analysis table.
type IndicatorParams struct {
	SMAWindows  []int   `yaml:"sma_windows" json:"sma_windows"`
	TrendWindow int     `yaml:"trend_window" json:"trend_window"`
	RSIWindow   int     `yaml:"rsi_window" json:"rsi_window"`
	RSIMAWindow int     `yaml:"rsi_ma_window" json:"rsi_ma_window"`
	BandK       float64 `yaml:"band_k" json:"band_k"`
}

// DefaultIndicatorParams mirrors the daily on-demand analysis.
func DefaultIndicatorParams() IndicatorParams {
	return IndicatorParams{
		SMAWindows:  []int{55, 200},
		TrendWindow: 55,
		RSIWindow:   14,
		RSIMAWindow: 9,
		BandK:       1.5,
	}
}

// IndicatorRow is one bar of the analysis table. Undefined values are NaN.
type IndicatorRow struct {
	Bar      Bar
	SMA      map[int]float64
	VWAP     float64
	RSI      float64
	RSIMA    float64
	RSIStd   float64
	RSIUpper float64
	RSILower float64
	Swing    int
	DBS      int
}

// AnalysisReport is the output of one analysis run.
type AnalysisReport struct {
	Ticker      string          `json:"ticker"`
	Period      string          `json:"period"`
	Interval    string          `json:"interval"`
	Params      IndicatorParams `json:"params"`
	Rows        []IndicatorRow  `json:"-"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// Last returns the most recent row. The caller guarantees Rows is non-empty.
func (r *AnalysisReport) Last() IndicatorRow { return r.Rows[len(r.Rows)-1] }
