package models

// Signal classifies the latest basis against its moving average.
type Signal string

const (
	SignalBullish  Signal = "bullish"
	SignalBearish  Signal = "bearish"
	SignalNoSignal Signal = "none"
)

// Takeaway is the headline rendered under the basis chart.
type Takeaway struct {
	Signal Signal  `json:"signal"`
	Title  string  `json:"title"`
	Text   string  `json:"text"`
	Color  string  `json:"color"`
	Diff   float64 `json:"diff"`
}
