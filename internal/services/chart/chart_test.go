package chart

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Cephu/internal/domain/models"
)

var t0 = time.Date(2025, 3, 10, 13, 30, 0, 0, time.UTC)

func basisReport(n int) *models.BasisReport {
	rep := &models.BasisReport{
		Future:      "ES=F",
		Index:       "^GSPC",
		Period:      "2d",
		Interval:    "1m",
		Window:      3,
		GeneratedAt: t0,
		Takeaway: models.Takeaway{
			Signal: models.SignalBullish,
			Title:  "BULLISH MOMENTUM",
			Text:   "The future is trading 2.50 points above average.",
			Color:  "green",
			Diff:   2.5,
		},
	}
	for i := 0; i < n; i++ {
		ma := math.NaN()
		if i >= 2 {
			ma = 10 + float64(i)*0.1
		}
		rep.Rows = append(rep.Rows, models.BasisRow{
			Time:    t0.Add(time.Duration(i) * time.Minute),
			Future:  5010 + float64(i),
			Index:   5000 + float64(i)*0.5,
			Basis:   10 + float64(i)*0.5,
			BasisMA: ma,
		})
	}
	return rep
}

func analysisReport(n int) *models.AnalysisReport {
	rep := &models.AnalysisReport{
		Ticker:      "NVDA",
		Period:      "1y",
		Interval:    "1d",
		Params:      models.IndicatorParams{SMAWindows: []int{2, 4}},
		GeneratedAt: t0,
	}
	for i := 0; i < n; i++ {
		c := 100 + math.Sin(float64(i))*5
		row := models.IndicatorRow{
			Bar: models.Bar{
				Time: t0.AddDate(0, 0, i),
				Open: c - 1, High: c + 2, Low: c - 2, Close: c, Volume: 1000,
			},
			SMA:      map[int]float64{2: c, 4: math.NaN()},
			VWAP:     c,
			RSI:      math.NaN(),
			RSIMA:    math.NaN(),
			RSIUpper: math.NaN(),
			RSILower: math.NaN(),
			Swing:    i % 3,
			DBS:      i%3 - 1,
		}
		if i > 3 {
			row.SMA[4] = c - 1
			row.RSI = 50 + float64(i%10)
			row.RSIMA = 55
			row.RSIUpper = 65
			row.RSILower = 45
		}
		rep.Rows = append(rep.Rows, row)
	}
	return rep
}

func TestRenderBasis_HTML(t *testing.T) {
	r := NewRenderer(WithSize(1000, 800))
	out, err := r.RenderBasis(context.Background(), basisReport(6), models.FormatHTML)
	require.NoError(t, err)

	page := string(out)
	assert.Contains(t, page, TitlePriceComparison)
	assert.Contains(t, page, TitleBasisAnalysis)
	assert.Contains(t, page, "Last updated: March 10, 2025 | 14:30 CET")
	assert.Contains(t, page, "<b>Key Takeaway:</b>")
	assert.Contains(t, page, "BULLISH MOMENTUM")
	assert.Contains(t, page, "2.50 points above average")
	assert.Contains(t, page, `"-"`, "NaN moving average must render as a gap")
	assert.Contains(t, page, `"lineStyle":{"color":"hsl(2, 39%, 47%)","width":2,"type":"solid"}`)
	assert.Contains(t, page, `"lineStyle":{"color":"hsl(106, 5%, 52%)","width":1,"type":"dotted"}`)
	assert.NotContains(t, page, "NaN")
	assert.Less(t, strings.Index(page, "<body"), strings.Index(page, "cephu-banner"))
}

func TestRenderBasis_PNG(t *testing.T) {
	r := NewRenderer(WithSize(640, 480))
	out, err := r.RenderBasis(context.Background(), basisReport(10), models.FormatPNG)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 640, img.Bounds().Dx())
	assert.Equal(t, 480, img.Bounds().Dy())
}

func TestRenderAnalysis_HTML(t *testing.T) {
	r := NewRenderer()
	out, err := r.RenderAnalysis(context.Background(), analysisReport(12), models.FormatHTML)
	require.NoError(t, err)

	page := string(out)
	assert.Contains(t, page, "TECHNICAL ANALYSIS: NVDA")
	assert.Contains(t, page, "Swing: ")
	assert.Contains(t, page, ColorUp)
	assert.Contains(t, page, ColorDown)
	assert.Contains(t, page, "VWAP")
	assert.Contains(t, page, `"lineStyle":{"color":"blue","width":1,"type":"dotted"}`)
	assert.Contains(t, page, "Last updated: ")
	assert.NotContains(t, page, "Key Takeaway")
	assert.NotContains(t, page, "NaN")
}

func TestRenderAnalysis_PNGWithSparseIndicators(t *testing.T) {
	r := NewRenderer(WithSize(600, 900))
	out, err := r.RenderAnalysis(context.Background(), analysisReport(3), models.FormatPNG)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 900, img.Bounds().Dy())
}

func TestRender_EmptyReport(t *testing.T) {
	r := NewRenderer()
	_, err := r.RenderBasis(context.Background(), &models.BasisReport{}, models.FormatHTML)
	assert.True(t, errors.Is(err, models.ErrNoData))

	_, err = r.RenderAnalysis(context.Background(), &models.AnalysisReport{}, models.FormatPNG)
	assert.True(t, errors.Is(err, models.ErrNoData))
}

func TestRender_UnsupportedFormat(t *testing.T) {
	_, err := NewRenderer().RenderBasis(context.Background(), basisReport(3), models.Format("svg"))
	assert.True(t, errors.Is(err, models.ErrInvalidInput))
}

func TestRender_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRenderer().RenderAnalysis(ctx, analysisReport(5), models.FormatHTML)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPanelHeights(t *testing.T) {
	hs := panelHeights(900, 0.6, 0.2, 0.2)
	assert.Equal(t, []int{540, 180, 180}, hs)
	hs = panelHeights(901, 0.65, 0.35)
	assert.Equal(t, 901, hs[0]+hs[1])
}
