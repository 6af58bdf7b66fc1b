package chart

import (
	"bytes"
	"fmt"
	"html/template"
	"math"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"Cephu/internal/domain/models"
)

// missing is how echarts expects a gap in a series.
const missing = "-"

var bannerTmpl = template.Must(template.New("banner").Parse(`<div class="cephu-banner" style="font-family:{{.Font}};background:{{.Background}};padding:12px 24px;">
<div style="color:grey;font-size:12px;">Last updated: {{.Stamp}}</div>
{{if .Headline}}<div style="font-size:16px;margin-top:6px;"><b>Key Takeaway:</b> <span style="color:{{.Color}};font-weight:bold;">{{.Headline}}</span> {{.Text}}</div>
{{end}}</div>
`))

type bannerData struct {
	Font       template.CSS
	Background template.CSS
	Stamp      string
	Headline   string
	Color      template.CSS
	Text       string
}

func (r *Renderer) banner(stamp string, tk *models.Takeaway) ([]byte, error) {
	d := bannerData{Font: FontFamily, Background: ColorBackground, Stamp: stamp}
	if tk != nil {
		d.Headline = tk.Title
		d.Color = template.CSS(tk.Color)
		d.Text = tk.Text
	}
	var buf bytes.Buffer
	if err := bannerTmpl.Execute(&buf, d); err != nil {
		return nil, fmt.Errorf("render banner: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) page(title string) *components.Page {
	page := components.NewPage()
	page.PageTitle = title
	if r.assetsHost != "" {
		page.AssetsHost = r.assetsHost
	}
	page.SetLayout(components.PageCenterLayout)
	return page
}

func (r *Renderer) init(id string, height int) charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{
		ChartID:         id,
		Width:           fmt.Sprintf("%dpx", r.width),
		Height:          fmt.Sprintf("%dpx", height),
		BackgroundColor: ColorBackground,
	})
}

func panelTitle(title, subtitle string) charts.GlobalOpts {
	return charts.WithTitleOpts(opts.Title{
		Title:    title,
		Subtitle: subtitle,
		TitleStyle: &opts.TextStyle{
			Color:      ColorPanelTitle,
			FontSize:   12,
			FontFamily: FontFamily,
		},
	})
}

func axes() []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			AxisTick:  &opts.AxisTick{Show: opts.Bool(false)},
			SplitLine: &opts.SplitLine{Show: opts.Bool(false)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Scale: opts.Bool(true),
			SplitLine: &opts.SplitLine{
				Show:      opts.Bool(true),
				LineStyle: &opts.LineStyle{Color: ColorGrid},
			},
		}),
	}
}

func lineData(xs []float64) []opts.LineData {
	out := make([]opts.LineData, len(xs))
	for i, v := range xs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			out[i] = opts.LineData{Value: missing}
			continue
		}
		out[i] = opts.LineData{Value: v}
	}
	return out
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func lineStyle(color string, width float32, kind string) charts.SeriesOpts {
	return charts.WithLineStyleOpts(opts.LineStyle{Color: color, Width: width, Type: kind})
}

func noSymbol() charts.SeriesOpts {
	return charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)})
}

func (r *Renderer) basisHTML(rep *models.BasisReport) ([]byte, error) {
	n := len(rep.Rows)
	times := make([]string, 0, n)
	future := make([]float64, n)
	index := make([]float64, n)
	basis := make([]float64, n)
	ma := make([]float64, n)
	for i, row := range rep.Rows {
		times = append(times, row.Time.In(r.loc).Format(r.axisLayout(rep.Interval)))
		future[i], index[i], basis[i], ma[i] = row.Future, row.Index, row.Basis, row.BasisMA
	}
	heights := panelHeights(r.height, 0.65, 0.35)

	price := charts.NewLine()
	price.SetGlobalOptions(append(axes(),
		r.init("price", heights[0]),
		panelTitle(TitlePriceComparison, ""),
	)...)
	price.SetXAxis(times).
		AddSeries(rep.Future, lineData(future), lineStyle(ColorFuture, 2, "solid"), noSymbol()).
		AddSeries(rep.Index, lineData(index), lineStyle(ColorIndex, 1, "dotted"), noSymbol())

	spread := charts.NewLine()
	spread.SetGlobalOptions(append(axes(),
		r.init("basis", heights[1]),
		panelTitle(TitleBasisAnalysis, ""),
	)...)
	spread.SetXAxis(times).
		AddSeries("Basis", lineData(basis),
			lineStyle(ColorBasis, 0.5, "solid"),
			charts.WithAreaStyleOpts(opts.AreaStyle{Color: ColorBasisFill}),
			noSymbol()).
		AddSeries(fmt.Sprintf("%d-bar MA", rep.Window), lineData(ma), lineStyle(ColorBasisMA, 1.5, "solid"), noSymbol())

	page := r.page(fmt.Sprintf("%s vs %s basis", rep.Future, rep.Index))
	page.AddCharts(price, spread)

	tk := rep.Takeaway
	return r.finish(page, r.Stamp(rep.GeneratedAt), &tk)
}

func (r *Renderer) analysisHTML(rep *models.AnalysisReport) ([]byte, error) {
	n := len(rep.Rows)
	times := make([]string, 0, n)
	candles := make([]opts.KlineData, n)
	vwap := make([]float64, n)
	rsi := make([]float64, n)
	rsiMA := make([]float64, n)
	lower := make([]float64, n)
	width := make([]float64, n)
	dbs := make([]opts.BarData, n)
	for i, row := range rep.Rows {
		b := row.Bar
		times = append(times, b.Time.In(r.loc).Format(r.axisLayout(rep.Interval)))
		candles[i] = opts.KlineData{Value: [4]float64{b.Open, b.Close, b.Low, b.High}}
		vwap[i] = row.VWAP
		rsi[i] = row.RSI
		rsiMA[i] = row.RSIMA
		lower[i] = row.RSILower
		width[i] = row.RSIUpper - row.RSILower
		dbs[i] = opts.BarData{
			Value:     row.DBS,
			ItemStyle: &opts.ItemStyle{Color: dbsColor(row.DBS)},
		}
	}
	heights := panelHeights(r.height, 0.6, 0.2, 0.2)
	last := rep.Last()

	price := charts.NewKLine()
	price.SetGlobalOptions(append(axes(),
		r.init("price", heights[0]),
		panelTitle(fmt.Sprintf("TECHNICAL ANALYSIS: %s", rep.Ticker), fmt.Sprintf("Swing: %d", last.Swing)),
	)...)
	price.SetXAxis(times).AddSeries(rep.Ticker, candles,
		charts.WithItemStyleOpts(opts.ItemStyle{
			Color:        ColorUp,
			Color0:       ColorDown,
			BorderColor:  ColorUp,
			BorderColor0: ColorDown,
		}))

	overlay := charts.NewLine()
	overlay.SetXAxis(times)
	for i, w := range smaWindows(rep) {
		xs := make([]float64, n)
		for j, row := range rep.Rows {
			xs[j] = valueOr(row.SMA, w)
		}
		overlay.AddSeries(fmt.Sprintf("SMA %d", w), lineData(xs), lineStyle(smaColor(i), 1.5, "solid"), noSymbol())
	}
	overlay.AddSeries("VWAP", lineData(vwap), lineStyle(ColorVWAP, 1, "dotted"), noSymbol())
	price.Overlap(overlay)

	osc := charts.NewLine()
	osc.SetGlobalOptions(append(axes(),
		r.init("rsi", heights[1]),
		panelTitle("RSI", ""),
	)...)
	osc.SetXAxis(times).
		AddSeries("band", lineData(lower),
			lineStyle("rgba(0, 0, 0, 0)", 0, "solid"),
			charts.WithLineChartOpts(opts.LineChart{Stack: "band", ShowSymbol: opts.Bool(false)})).
		AddSeries("band width", lineData(width),
			lineStyle("rgba(0, 0, 0, 0)", 0, "solid"),
			charts.WithAreaStyleOpts(opts.AreaStyle{Color: ColorBand}),
			charts.WithLineChartOpts(opts.LineChart{Stack: "band", ShowSymbol: opts.Bool(false)})).
		AddSeries("RSI", lineData(rsi), lineStyle(ColorRSI, 1.5, "solid"), noSymbol()).
		AddSeries("RSI MA", lineData(rsiMA), lineStyle(ColorRSIMA, 1, "dashed"), noSymbol()).
		AddSeries("70", lineData(constant(n, 70)), lineStyle(ColorNeutral, 0.5, "dashed"), noSymbol()).
		AddSeries("30", lineData(constant(n, 30)), lineStyle(ColorNeutral, 0.5, "dashed"), noSymbol())

	trend := charts.NewBar()
	trend.SetGlobalOptions(append(axes(),
		r.init("dbs", heights[2]),
		panelTitle("DBS", ""),
	)...)
	trend.SetXAxis(times).AddSeries("DBS", dbs)

	page := r.page(fmt.Sprintf("TECHNICAL ANALYSIS: %s", rep.Ticker))
	page.AddCharts(price, osc, trend)
	return r.finish(page, r.Stamp(rep.GeneratedAt), nil)
}

func (r *Renderer) finish(page *components.Page, stamp string, tk *models.Takeaway) ([]byte, error) {
	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	banner, err := r.banner(stamp, tk)
	if err != nil {
		return nil, err
	}
	return InjectBanner(buf.Bytes(), banner), nil
}

// smaWindows returns the configured SMA windows, falling back to the keys present on the rows.
func smaWindows(rep *models.AnalysisReport) []int {
	if len(rep.Params.SMAWindows) > 0 {
		return rep.Params.SMAWindows
	}
	if len(rep.Rows) == 0 {
		return nil
	}
	ws := make([]int, 0, len(rep.Rows[0].SMA))
	for w := range rep.Rows[0].SMA {
		ws = append(ws, w)
	}
	sort.Ints(ws)
	return ws
}

func valueOr(m map[int]float64, k int) float64 {
	if v, ok := m[k]; ok {
		return v
	}
	return math.NaN()
}
