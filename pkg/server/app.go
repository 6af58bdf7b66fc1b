package server

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"Cephu/internal/domain/models"
	"Cephu/internal/usecase"
	"Cephu/pkg/config"
	xhttp "Cephu/pkg/http"
	applogger "Cephu/pkg/logger"
	"Cephu/pkg/validation"
)

// Routes registers several handlers on one server.
type Routes []xhttp.Handler

func (r Routes) RegisterRoutes(e *echo.Echo) {
	for _, h := range r {
		if h != nil {
			h.RegisterRoutes(e)
		}
	}
}

// App encapsulates the application lifecycle: one-shot report runs and the HTTP server.
type App struct {
	cfg      *config.Config
	log      *applogger.Logger
	basis    *usecase.BasisReportUseCase
	analysis *usecase.AnalysisReportUseCase
	pub      *usecase.ChartPublisher
	routes   Routes
	closers  []func() error
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	basis *usecase.BasisReportUseCase,
	analysis *usecase.AnalysisReportUseCase,
	pub *usecase.ChartPublisher,
	routes ...xhttp.Handler,
) *App {
	if log == nil {
		log = applogger.Nop()
	}
	return &App{
		cfg:      cfg,
		log:      log,
		basis:    basis,
		analysis: analysis,
		pub:      pub,
		routes:   routes,
	}
}

// OnClose registers fn to run on Close, in reverse order of registration.
func (a *App) OnClose(fn func() error) { a.closers = append(a.closers, fn) }

// Config returns the loaded configuration.
func (a *App) Config() *config.Config { return a.cfg }

// Logger returns the application logger.
func (a *App) Logger() *applogger.Logger { return a.log }

// GenerateBasis runs the basis pipeline and publishes the chart under name.
// Fetch errors stop the run before anything is rendered.
func (a *App) GenerateBasis(ctx context.Context, p usecase.BasisParams, f models.Format, name string) (*models.BasisReport, *usecase.PublishResult, error) {
	rep, err := a.basis.Generate(ctx, p)
	if err != nil {
		return nil, nil, err
	}
	if name == "" {
		name = OutputName(a.cfg.Basis.Output, f)
	}
	res, err := a.pub.PublishBasis(ctx, rep, name, f)
	if err != nil {
		return rep, nil, err
	}
	return rep, res, nil
}

// GenerateAnalysis runs the analysis pipeline and publishes the chart under name.
func (a *App) GenerateAnalysis(ctx context.Context, p usecase.AnalysisParams, f models.Format, name string) (*models.AnalysisReport, *usecase.PublishResult, error) {
	rep, err := a.analysis.Generate(ctx, p)
	if err != nil {
		return nil, nil, err
	}
	if name == "" {
		name = AnalysisOutputName(a.cfg.Analysis.Output, rep.Ticker, f)
	}
	res, err := a.pub.PublishAnalysis(ctx, rep, name, f)
	if err != nil {
		return rep, nil, err
	}
	return rep, res, nil
}

// Serve runs the HTTP server until ctx is cancelled or the listener fails.
func (a *App) Serve(ctx context.Context) error {
	metricsPath := ""
	if a.cfg.Metrics.Enabled {
		metricsPath = a.cfg.Metrics.Path
	}
	srv := xhttp.NewServer(a.routes,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(metricsPath),
		xhttp.WithLogger(a.log.With("http")),
	)

	errCh := srv.Start()
	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		a.log.Info("shutdown signal received")
	}
	return srv.Stop(context.Background())
}

// Close releases infrastructure clients.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("close error", applogger.Error(err))
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// OutputName swaps the extension of name to match f.
func OutputName(name string, f models.Format) string {
	ext := "." + string(f)
	if f == "" {
		ext = ".html"
	}
	if strings.EqualFold(filepath.Ext(name), ext) {
		return name
	}
	return strings.TrimSuffix(name, filepath.Ext(name)) + ext
}

// AnalysisOutputName fills the ticker into pattern, e.g. analysis_%s.html.
func AnalysisOutputName(pattern, ticker string, f models.Format) string {
	return OutputName(fmt.Sprintf(pattern, validation.FileSafe(ticker)), f)
}
