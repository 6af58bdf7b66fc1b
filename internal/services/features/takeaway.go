package features

import (
	"fmt"
	"math"

	"Cephu/internal/domain/models"
)

const (
	ColorBullish  = "green"
	ColorBearish  = "red"
	ColorNoSignal = "grey"
)

// BasisTakeaway classifies the latest basis against its moving average.
func BasisTakeaway(rows []models.BasisRow, window int) models.Takeaway {
	if len(rows) == 0 {
		return noSignal(window)
	}
	last := rows[len(rows)-1]
	if math.IsNaN(last.BasisMA) || math.IsNaN(last.Basis) {
		return noSignal(window)
	}
	diff := last.Basis - last.BasisMA
	if diff > 0 {
		return models.Takeaway{
			Signal: models.SignalBullish,
			Title:  "BULLISH MOMENTUM",
			Text:   fmt.Sprintf("The future is trading %.2f points above average.", diff),
			Color:  ColorBullish,
			Diff:   diff,
		}
	}
	return models.Takeaway{
		Signal: models.SignalBearish,
		Title:  "BEARISH BIAS",
		Text:   fmt.Sprintf("The future is trading %.2f points below average.", math.Abs(diff)),
		Color:  ColorBearish,
		Diff:   diff,
	}
}

func noSignal(window int) models.Takeaway {
	return models.Takeaway{
		Signal: models.SignalNoSignal,
		Title:  "NO SIGNAL",
		Text:   fmt.Sprintf("Not enough data for a %d-bar average yet.", window),
		Color:  ColorNoSignal,
	}
}
