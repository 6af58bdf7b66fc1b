package chart

// Palette shared by the HTML and PNG renderers.
const (
	ColorBackground = "hsl(0, 0%, 96%)"
	ColorGrid       = "rgba(0, 0, 0, 0.05)"
	ColorFuture     = "hsl(2, 39%, 47%)"
	ColorIndex      = "hsl(106, 5%, 52%)"
	ColorBasis      = "orange"
	ColorBasisFill  = "rgba(255, 165, 0, 0.2)"
	ColorBasisMA    = "black"
	ColorPanelTitle = "grey"
	ColorUp         = "#26A69A"
	ColorDown       = "#EF5350"
	ColorSMAFast    = "orange"
	ColorSMASlow    = "black"
	ColorVWAP       = "blue"
	ColorRSI        = "purple"
	ColorRSIMA      = "grey"
	ColorBand       = "rgba(128, 128, 128, 0.1)"
	ColorNeutral    = "grey"

	FontFamily = "Helvetica Neue, Helvetica, Arial, sans-serif"

	TitlePriceComparison = "PRICE COMPARISON: FUTURE VS INDEX"
	TitleBasisAnalysis   = "BASIS ANALYSIS: POINTS DEVIATION"
)

// smaColors cycles through overlay colors for the configured SMA windows.
var smaColors = []string{ColorSMAFast, ColorSMASlow, "teal", "brown"}

func smaColor(i int) string {
	return smaColors[i%len(smaColors)]
}

// dbsColor maps a DBS value to its bar color.
func dbsColor(v int) string {
	switch {
	case v > 0:
		return "green"
	case v < 0:
		return "red"
	default:
		return ColorNeutral
	}
}

// panelHeights splits total by ratios, giving rounding leftovers to the first panel.
func panelHeights(total int, ratios ...float64) []int {
	out := make([]int, len(ratios))
	used := 0
	for i := len(ratios) - 1; i > 0; i-- {
		out[i] = int(float64(total) * ratios[i])
		used += out[i]
	}
	out[0] = total - used
	return out
}
