package yahoo

import (
	"time"
	_ "time/tzdata" // exchange zones in slim containers

	"Cephu/internal/domain/models"
)

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResult struct {
	Meta       chartMeta       `json:"meta"`
	Timestamp  []int64         `json:"timestamp"`
	Indicators chartIndicators `json:"indicators"`
}

type chartMeta struct {
	Currency             string `json:"currency"`
	Symbol               string `json:"symbol"`
	ExchangeTimezoneName string `json:"exchangeTimezoneName"`
	GMTOffset            int    `json:"gmtoffset"`
}

// Quote values are pointers because the endpoint sends null for bars
// without trades.
type chartIndicators struct {
	Quote []struct {
		Open   []*float64 `json:"open"`
		High   []*float64 `json:"high"`
		Low    []*float64 `json:"low"`
		Close  []*float64 `json:"close"`
		Volume []*float64 `json:"volume"`
	} `json:"quote"`
}

func (r chartResult) location() *time.Location {
	if r.Meta.ExchangeTimezoneName != "" {
		if loc, err := time.LoadLocation(r.Meta.ExchangeTimezoneName); err == nil {
			return loc
		}
	}
	return time.FixedZone("exchange", r.Meta.GMTOffset)
}

func (r chartResult) toSeries(symbol, interval string) models.Series {
	s := models.Series{Symbol: symbol, Interval: interval}
	if len(r.Indicators.Quote) == 0 || len(r.Timestamp) == 0 {
		return s
	}
	q := r.Indicators.Quote[0]
	loc := r.location()

	s.Bars = make([]models.Bar, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		s.Bars = append(s.Bars, models.Bar{
			Time:   time.Unix(ts, 0).In(loc),
			Open:   at(q.Open, i),
			High:   at(q.High, i),
			Low:    at(q.Low, i),
			Close:  at(q.Close, i),
			Volume: at(q.Volume, i),
		})
	}
	return s
}

// at returns xs[i], or NaN when the value is null or missing.
func at(xs []*float64, i int) float64 {
	if i >= len(xs) {
		return models.FromNullable(nil)
	}
	return models.FromNullable(xs[i])
}
