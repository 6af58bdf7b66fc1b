package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"Cephu/internal/domain/models"
	drepo "Cephu/internal/domain/repository"
	"Cephu/internal/services/features"
	applogger "Cephu/pkg/logger"
	"Cephu/pkg/tracing"
	"Cephu/pkg/validation"
)

// BasisParams selects the pair, range and smoothing of a basis run.
type BasisParams struct {
	Future   string
	Index    string
	Period   string
	Interval string
	Window   int
}

// Validate normalizes symbols and rejects malformed input with ErrInvalidInput.
func (p *BasisParams) Validate() error {
	var err error
	if p.Future, err = validation.SanitizeSymbol(p.Future); err != nil {
		return fmt.Errorf("future: %v: %w", err, models.ErrInvalidInput)
	}
	if p.Index, err = validation.SanitizeSymbol(p.Index); err != nil {
		return fmt.Errorf("index: %v: %w", err, models.ErrInvalidInput)
	}
	if err := validation.ValidatePeriod(p.Period); err != nil {
		return fmt.Errorf("%v: %w", err, models.ErrInvalidInput)
	}
	if !drepo.IsValidInterval(drepo.Interval(p.Interval)) {
		return fmt.Errorf("invalid interval %q: %w", p.Interval, models.ErrInvalidInput)
	}
	if p.Window < 1 {
		return fmt.Errorf("window must be >= 1, got %d: %w", p.Window, models.ErrInvalidInput)
	}
	return nil
}

// BasisReportUseCase builds the future-vs-index table and its takeaway.
type BasisReportUseCase struct {
	md      drepo.MarketData
	metrics drepo.Metrics
	l       *applogger.Logger
	now     func() time.Time
}

func NewBasisReportUseCase(md drepo.MarketData, metrics drepo.Metrics) *BasisReportUseCase {
	return &BasisReportUseCase{md: md, metrics: metrics, now: time.Now}
}

// SetLogger injects a structured logger.
func (u *BasisReportUseCase) SetLogger(l *applogger.Logger) { u.l = l }

// Generate fetches both series concurrently and computes the basis table.
// An empty series or an empty join returns ErrNoData.
func (u *BasisReportUseCase) Generate(ctx context.Context, p BasisParams) (*models.BasisReport, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	ctx, span := tracing.Tracer().Start(ctx, "basis.generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("future", p.Future),
		attribute.String("index", p.Index),
		attribute.String("interval", p.Interval),
	)

	var future, index models.Series
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := u.fetch(gctx, p.Future, p.Period, p.Interval)
		future = s
		return err
	})
	g.Go(func() error {
		s, err := u.fetch(gctx, p.Index, p.Period, p.Interval)
		index = s
		return err
	})
	if err := g.Wait(); err != nil {
		u.recordError(err)
		return nil, tracing.Fail(span, err)
	}

	rows, err := features.ComputeBasis(future, index, p.Window)
	if err != nil {
		return nil, tracing.Fail(span, err)
	}
	if len(rows) == 0 {
		err := fmt.Errorf("%s and %s share no timestamps: %w", p.Future, p.Index, models.ErrNoData)
		u.recordError(err)
		return nil, tracing.Fail(span, err)
	}

	rep := &models.BasisReport{
		Future:      p.Future,
		Index:       p.Index,
		Period:      p.Period,
		Interval:    p.Interval,
		Window:      p.Window,
		Rows:        rows,
		Takeaway:    features.BasisTakeaway(rows, p.Window),
		GeneratedAt: u.now(),
	}
	if u.metrics != nil {
		u.metrics.RecordLastValue(string(models.KindBasis), p.Future, rep.Last().Basis)
	}
	if u.l != nil {
		u.l.Info("basis computed",
			applogger.String("future", p.Future),
			applogger.String("index", p.Index),
			applogger.Int("rows", len(rows)),
			applogger.String("signal", string(rep.Takeaway.Signal)),
		)
	}
	return rep, nil
}

func (u *BasisReportUseCase) fetch(ctx context.Context, symbol, period, interval string) (models.Series, error) {
	s, err := u.md.FetchBars(ctx, symbol, period, drepo.Interval(interval))
	if err != nil {
		return models.Series{}, fmt.Errorf("fetch %s: %w", symbol, err)
	}
	if s.Empty() {
		return models.Series{}, fmt.Errorf("fetch %s: %w", symbol, models.ErrNoData)
	}
	return s, nil
}

func (u *BasisReportUseCase) recordError(err error) {
	if u.metrics == nil {
		return
	}
	if errors.Is(err, models.ErrNoData) {
		u.metrics.RecordError("no_data")
		return
	}
	u.metrics.RecordError("fetch")
}
