package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"Cephu/internal/domain/models"
	drepo "Cephu/internal/domain/repository"
	"Cephu/internal/services/features"
	applogger "Cephu/pkg/logger"
	"Cephu/pkg/tracing"
	"Cephu/pkg/validation"
)

// AnalysisParams selects the ticker and the indicator settings of an analysis run.
type AnalysisParams struct {
	Ticker     string
	Period     string
	Interval   string
	Indicators models.IndicatorParams
}

func (p *AnalysisParams) Validate() error {
	var err error
	if p.Ticker, err = validation.SanitizeSymbol(p.Ticker); err != nil {
		return fmt.Errorf("ticker: %v: %w", err, models.ErrInvalidInput)
	}
	if err := validation.ValidatePeriod(p.Period); err != nil {
		return fmt.Errorf("%v: %w", err, models.ErrInvalidInput)
	}
	iv := drepo.Interval(p.Interval)
	if !drepo.IsValidInterval(iv) {
		return fmt.Errorf("invalid interval %q: %w", p.Interval, models.ErrInvalidInput)
	}
	ip := &p.Indicators
	if len(ip.SMAWindows) == 0 && ip.TrendWindow == 0 && ip.RSIWindow == 0 {
		*ip = models.DefaultIndicatorParams()
	}
	for _, w := range ip.SMAWindows {
		if w < 1 {
			return fmt.Errorf("sma window must be >= 1, got %d: %w", w, models.ErrInvalidInput)
		}
	}
	if ip.TrendWindow < 1 || ip.RSIWindow < 1 || ip.RSIMAWindow < 2 || ip.BandK < 0 {
		return fmt.Errorf("indicator windows out of range: %w", models.ErrInvalidInput)
	}
	return nil
}

// AnalysisReportUseCase builds the indicator table for one ticker.
type AnalysisReportUseCase struct {
	md      drepo.MarketData
	metrics drepo.Metrics
	l       *applogger.Logger
	now     func() time.Time
}

func NewAnalysisReportUseCase(md drepo.MarketData, metrics drepo.Metrics) *AnalysisReportUseCase {
	return &AnalysisReportUseCase{md: md, metrics: metrics, now: time.Now}
}

// SetLogger injects a structured logger.
func (u *AnalysisReportUseCase) SetLogger(l *applogger.Logger) { u.l = l }

func (u *AnalysisReportUseCase) Generate(ctx context.Context, p AnalysisParams) (*models.AnalysisReport, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	ctx, span := tracing.Tracer().Start(ctx, "analysis.generate")
	defer span.End()
	span.SetAttributes(attribute.String("ticker", p.Ticker), attribute.String("interval", p.Interval))

	s, err := u.md.FetchBars(ctx, p.Ticker, p.Period, drepo.Interval(p.Interval))
	if err != nil {
		u.recordError(err)
		return nil, tracing.Fail(span, fmt.Errorf("fetch %s: %w", p.Ticker, err))
	}
	if s.Empty() {
		u.recordError(models.ErrNoData)
		return nil, tracing.Fail(span, fmt.Errorf("fetch %s: %w", p.Ticker, models.ErrNoData))
	}

	rows := features.ComputeTechnicalIndicators(s.Bars, p.Indicators)
	if len(rows) == 0 {
		u.recordError(models.ErrNoData)
		return nil, tracing.Fail(span, fmt.Errorf("%s has no complete bars: %w", p.Ticker, models.ErrNoData))
	}

	rep := &models.AnalysisReport{
		Ticker:      p.Ticker,
		Period:      p.Period,
		Interval:    p.Interval,
		Params:      p.Indicators,
		Rows:        rows,
		GeneratedAt: u.now(),
	}
	last := rep.Last()
	if u.metrics != nil {
		u.metrics.RecordLastValue(string(models.KindAnalysis), p.Ticker, last.Bar.Close)
	}
	if u.l != nil {
		u.l.Info("indicators computed",
			applogger.String("ticker", p.Ticker),
			applogger.Int("rows", len(rows)),
			applogger.Int("swing", last.Swing),
			applogger.Int("dbs", last.DBS),
		)
	}
	return rep, nil
}

func (u *AnalysisReportUseCase) recordError(err error) {
	if u.metrics == nil {
		return
	}
	if errors.Is(err, models.ErrNoData) {
		u.metrics.RecordError("no_data")
		return
	}
	u.metrics.RecordError("fetch")
}
