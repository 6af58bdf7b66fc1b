package chart

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"Cephu/internal/domain/models"
)

var (
	pngBackground = drawing.ColorFromHex("F5F5F5")
	pngGrid       = drawing.Color{R: 0, G: 0, B: 0, A: 13}
	pngTitle      = drawing.ColorFromHex("808080")
	pngFuture     = drawing.ColorFromHex("A64B47")
	pngIndex      = drawing.ColorFromHex("808A7E")
	pngOrange     = drawing.ColorFromHex("FFA500")
	pngOrangeFill = drawing.Color{R: 255, G: 165, B: 0, A: 51}
	pngBlack      = drawing.ColorFromHex("000000")
	pngBlue       = drawing.ColorFromHex("0000FF")
	pngPurple     = drawing.ColorFromHex("800080")
	pngGrey       = drawing.ColorFromHex("808080")
	pngBandFill   = drawing.Color{R: 128, G: 128, B: 128, A: 26}
	pngGreen      = drawing.ColorFromHex("008000")
	pngRed        = drawing.ColorFromHex("FF0000")
	pngSMA        = []drawing.Color{pngOrange, pngBlack, drawing.ColorFromHex("008080"), drawing.ColorFromHex("A52A2A")}
)

// line is one drawable series of a panel before non-finite points are dropped.
type line struct {
	name   string
	times  []time.Time
	values []float64
	style  gochart.Style
}

func (l line) finite() ([]time.Time, []float64) {
	ts := make([]time.Time, 0, len(l.values))
	vs := make([]float64, 0, len(l.values))
	for i, v := range l.values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		ts = append(ts, l.times[i])
		vs = append(vs, v)
	}
	return ts, vs
}

// panel draws one stacked section. Series with fewer than two finite points are skipped
// and an empty panel renders as a blank canvas.
func (r *Renderer) panel(title, layout string, height int, fixed *gochart.ContinuousRange, lines ...line) (image.Image, error) {
	var series []gochart.Series
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, l := range lines {
		ts, vs := l.finite()
		if len(vs) < 2 {
			continue
		}
		for _, v := range vs {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
		series = append(series, gochart.TimeSeries{Name: l.name, XValues: ts, YValues: vs, Style: l.style})
	}
	if len(series) == 0 {
		return blank(r.width, height), nil
	}
	yr := fixed
	if yr == nil {
		pad := (hi - lo) * 0.05
		if pad == 0 {
			pad = math.Max(math.Abs(hi)*0.01, 1)
		}
		yr = &gochart.ContinuousRange{Min: lo - pad, Max: hi + pad}
	}

	graph := gochart.Chart{
		Title:      title,
		TitleStyle: gochart.Style{FontColor: pngTitle, FontSize: 10},
		Width:      r.width,
		Height:     height,
		Background: gochart.Style{
			FillColor: pngBackground,
			Padding:   gochart.Box{Top: 36, Left: 16, Right: 16, Bottom: 12},
		},
		Canvas: gochart.Style{FillColor: pngBackground},
		XAxis: gochart.XAxis{
			ValueFormatter: gochart.TimeValueFormatterWithFormat(layout),
		},
		YAxis: gochart.YAxis{
			Range:          yr,
			GridMajorStyle: gochart.Style{StrokeColor: pngGrid, StrokeWidth: 1},
		},
		Series: series,
	}
	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render panel %q: %w", title, err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decode panel %q: %w", title, err)
	}
	return img, nil
}

// barPanel draws DBS as one colored column per bar around a zero baseline.
func (r *Renderer) barPanel(values []int, height int) image.Image {
	img := blank(r.width, height).(*image.RGBA)
	n := len(values)
	if n == 0 {
		return img
	}
	const margin = 16
	usable := r.width - 2*margin
	mid := height / 2
	half := height/2 - margin
	step := float64(usable) / float64(n)
	for i, v := range values {
		x0 := margin + int(float64(i)*step)
		x1 := margin + int(float64(i+1)*step)
		if x1-x0 > 1 {
			x1--
		}
		if x1 <= x0 {
			x1 = x0 + 1
		}
		var c color.Color
		var y0, y1 int
		switch {
		case v > 0:
			c, y0, y1 = pngGreen, mid-half, mid
		case v < 0:
			c, y0, y1 = pngRed, mid, mid+half
		default:
			c, y0, y1 = pngGrey, mid-1, mid+1
		}
		draw.Draw(img, image.Rect(x0, y0, x1, y1), &image.Uniform{C: c}, image.Point{}, draw.Src)
	}
	return img
}

func blank(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: pngBackground}, image.Point{}, draw.Src)
	return img
}

// stack places panels top to bottom and encodes the result.
func stack(width int, panels ...image.Image) ([]byte, error) {
	total := 0
	for _, p := range panels {
		total += p.Bounds().Dy()
	}
	out := image.NewRGBA(image.Rect(0, 0, width, total))
	y := 0
	for _, p := range panels {
		b := p.Bounds()
		draw.Draw(out, image.Rect(0, y, width, y+b.Dy()), p, b.Min, draw.Src)
		y += b.Dy()
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) basisPNG(rep *models.BasisReport) ([]byte, error) {
	n := len(rep.Rows)
	times := make([]time.Time, n)
	future := make([]float64, n)
	index := make([]float64, n)
	basis := make([]float64, n)
	ma := make([]float64, n)
	for i, row := range rep.Rows {
		times[i] = row.Time.In(r.loc)
		future[i], index[i], basis[i], ma[i] = row.Future, row.Index, row.Basis, row.BasisMA
	}
	layout := r.axisLayout(rep.Interval)
	heights := panelHeights(r.height, 0.65, 0.35)

	top, err := r.panel(TitlePriceComparison, layout, heights[0], nil,
		line{name: rep.Future, times: times, values: future, style: gochart.Style{StrokeColor: pngFuture, StrokeWidth: 2}},
		line{name: rep.Index, times: times, values: index, style: gochart.Style{StrokeColor: pngIndex, StrokeWidth: 1, StrokeDashArray: []float64{2, 3}}},
	)
	if err != nil {
		return nil, err
	}
	tk := rep.Takeaway
	title := fmt.Sprintf("%s | %s %s | Last updated: %s", TitleBasisAnalysis, tk.Title, tk.Text, r.Stamp(rep.GeneratedAt))
	bottom, err := r.panel(title, layout, heights[1], nil,
		line{name: "Basis", times: times, values: basis, style: gochart.Style{StrokeColor: pngOrange, StrokeWidth: 1.5, FillColor: pngOrangeFill}},
		line{name: "MA", times: times, values: ma, style: gochart.Style{StrokeColor: pngBlack, StrokeWidth: 1.5}},
	)
	if err != nil {
		return nil, err
	}
	return stack(r.width, top, bottom)
}

func (r *Renderer) analysisPNG(rep *models.AnalysisReport) ([]byte, error) {
	n := len(rep.Rows)
	times := make([]time.Time, n)
	closes := make([]float64, n)
	vwap := make([]float64, n)
	rsi := make([]float64, n)
	rsiMA := make([]float64, n)
	upper := make([]float64, n)
	lower := make([]float64, n)
	dbs := make([]int, n)
	for i, row := range rep.Rows {
		times[i] = row.Bar.Time.In(r.loc)
		closes[i] = row.Bar.Close
		vwap[i] = row.VWAP
		rsi[i] = row.RSI
		rsiMA[i] = row.RSIMA
		upper[i] = row.RSIUpper
		lower[i] = row.RSILower
		dbs[i] = row.DBS
	}
	layout := r.axisLayout(rep.Interval)
	heights := panelHeights(r.height, 0.6, 0.2, 0.2)
	last := rep.Last()

	closeColor := pngGreen
	if last.Bar.Close < rep.Rows[0].Bar.Close {
		closeColor = pngRed
	}
	price := []line{{name: rep.Ticker, times: times, values: closes, style: gochart.Style{StrokeColor: closeColor, StrokeWidth: 1.5}}}
	for i, w := range smaWindows(rep) {
		xs := make([]float64, n)
		for j, row := range rep.Rows {
			xs[j] = valueOr(row.SMA, w)
		}
		price = append(price, line{
			name:   fmt.Sprintf("SMA %d", w),
			times:  times,
			values: xs,
			style:  gochart.Style{StrokeColor: pngSMA[i%len(pngSMA)], StrokeWidth: 1.5},
		})
	}
	price = append(price, line{
		name:   "VWAP",
		times:  times,
		values: vwap,
		style:  gochart.Style{StrokeColor: pngBlue, StrokeWidth: 1, StrokeDashArray: []float64{2, 3}},
	})
	title := fmt.Sprintf("TECHNICAL ANALYSIS: %s | Swing: %d | Last updated: %s", rep.Ticker, last.Swing, r.Stamp(rep.GeneratedAt))
	top, err := r.panel(title, layout, heights[0], nil, price...)
	if err != nil {
		return nil, err
	}
	mid, err := r.panel("RSI", layout, heights[1], &gochart.ContinuousRange{Min: 0, Max: 100},
		line{name: "upper", times: times, values: upper, style: gochart.Style{StrokeColor: pngBandFill, StrokeWidth: 1}},
		line{name: "lower", times: times, values: lower, style: gochart.Style{StrokeColor: pngBandFill, StrokeWidth: 1}},
		line{name: "RSI", times: times, values: rsi, style: gochart.Style{StrokeColor: pngPurple, StrokeWidth: 1.5}},
		line{name: "RSI MA", times: times, values: rsiMA, style: gochart.Style{StrokeColor: pngGrey, StrokeWidth: 1, StrokeDashArray: []float64{4, 2}}},
	)
	if err != nil {
		return nil, err
	}
	return stack(r.width, top, mid, r.barPanel(dbs, heights[2]))
}
