package models

import (
	"encoding/json"
	"math"
	"time"
)

// Bar is one OHLCV observation. Missing quote values are NaN.
type Bar struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Complete reports whether every price field of the bar is defined.
func (b Bar) Complete() bool {
	return !math.IsNaN(b.Open) && !math.IsNaN(b.High) && !math.IsNaN(b.Low) && !math.IsNaN(b.Close)
}

// Series is an ascending sequence of bars for one symbol.
type Series struct {
	Symbol   string `json:"symbol"`
	Interval string `json:"interval"`
	Bars     []Bar  `json:"bars"`
}

// Empty reports whether the series carries no bars.
func (s Series) Empty() bool { return len(s.Bars) == 0 }

// Closes returns the close column.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

type barJSON struct {
	Time   time.Time `json:"time"`
	Open   *float64  `json:"open"`
	High   *float64  `json:"high"`
	Low    *float64  `json:"low"`
	Close  *float64  `json:"close"`
	Volume *float64  `json:"volume"`
}

// MarshalJSON encodes NaN fields as null.
func (b Bar) MarshalJSON() ([]byte, error) {
	return json.Marshal(barJSON{
		Time:   b.Time,
		Open:   Nullable(b.Open),
		High:   Nullable(b.High),
		Low:    Nullable(b.Low),
		Close:  Nullable(b.Close),
		Volume: Nullable(b.Volume),
	})
}

// UnmarshalJSON decodes null fields as NaN.
func (b *Bar) UnmarshalJSON(data []byte) error {
	var v barJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	b.Time = v.Time
	b.Open = FromNullable(v.Open)
	b.High = FromNullable(v.High)
	b.Low = FromNullable(v.Low)
	b.Close = FromNullable(v.Close)
	b.Volume = FromNullable(v.Volume)
	return nil
}

// Nullable maps NaN and infinities to nil so the value survives JSON encoding.
func Nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// FromNullable maps nil back to NaN.
func FromNullable(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
