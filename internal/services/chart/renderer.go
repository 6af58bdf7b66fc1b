package chart

import (
	"context"
	"fmt"
	"time"

	"Cephu/internal/domain/models"
	domrepo "Cephu/internal/domain/repository"
	"Cephu/pkg/util"
)

// Option configures Renderer.
type Option func(*Renderer)

// Renderer builds basis and analysis charts as HTML pages or PNG images.
type Renderer struct {
	width      int
	height     int
	loc        *time.Location
	assetsHost string
}

// NewRenderer returns a renderer with a 1200x900 canvas and fixed CET stamps.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		width:  1200,
		height: 900,
		loc:    util.DisplayLocation("CET", time.Hour),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithSize sets the canvas size in pixels.
func WithSize(width, height int) Option {
	return func(r *Renderer) {
		if width > 0 {
			r.width = width
		}
		if height > 0 {
			r.height = height
		}
	}
}

// WithLocation sets the zone of "Last updated" stamps and axis labels.
func WithLocation(loc *time.Location) Option {
	return func(r *Renderer) {
		if loc != nil {
			r.loc = loc
		}
	}
}

// WithAssetsHost overrides the CDN the HTML page loads echarts from.
func WithAssetsHost(host string) Option {
	return func(r *Renderer) { r.assetsHost = host }
}

// RenderBasis renders the two-panel basis chart.
func (r *Renderer) RenderBasis(ctx context.Context, rep *models.BasisReport, f models.Format) ([]byte, error) {
	if len(rep.Rows) == 0 {
		return nil, fmt.Errorf("render basis: %w", models.ErrNoData)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch f {
	case models.FormatPNG:
		return r.basisPNG(rep)
	case models.FormatHTML, "":
		return r.basisHTML(rep)
	default:
		return nil, fmt.Errorf("render basis: unsupported format %q: %w", f, models.ErrInvalidInput)
	}
}

// RenderAnalysis renders the three-panel technical chart.
func (r *Renderer) RenderAnalysis(ctx context.Context, rep *models.AnalysisReport, f models.Format) ([]byte, error) {
	if len(rep.Rows) == 0 {
		return nil, fmt.Errorf("render analysis: %w", models.ErrNoData)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch f {
	case models.FormatPNG:
		return r.analysisPNG(rep)
	case models.FormatHTML, "":
		return r.analysisHTML(rep)
	default:
		return nil, fmt.Errorf("render analysis: unsupported format %q: %w", f, models.ErrInvalidInput)
	}
}

// Stamp formats t for the "Last updated" line.
func (r *Renderer) Stamp(t time.Time) string {
	return util.FormatStamp(t, r.loc)
}

func (r *Renderer) axisLayout(interval string) string {
	if domrepo.Interval(interval).IsIntraday() {
		return "01-02 15:04"
	}
	return "2006-01-02"
}
