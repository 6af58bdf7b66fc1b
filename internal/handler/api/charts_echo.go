package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"Cephu/internal/domain/models"
	"Cephu/internal/service/metrics"
	"Cephu/internal/usecase"
	pkgcache "Cephu/pkg/cache"
	xhttp "Cephu/pkg/http"
	xlogger "Cephu/pkg/logger"
)

const (
	lockTTL      = 30 * time.Second
	lockPoll     = 100 * time.Millisecond
	renderPrefix = "render"
)

// ChartsEchoHandler serves on-demand charts and their JSON tables.
type ChartsEchoHandler struct {
	logger     *xlogger.Logger
	basis      *usecase.BasisReportUseCase
	analysis   *usecase.AnalysisReportUseCase
	pub        *usecase.ChartPublisher
	cache      pkgcache.Service
	ttl        time.Duration
	indicators models.IndicatorParams
}

func NewChartsEchoHandler(
	logger *xlogger.Logger,
	basis *usecase.BasisReportUseCase,
	analysis *usecase.AnalysisReportUseCase,
	pub *usecase.ChartPublisher,
	cache pkgcache.Service,
	ttl time.Duration,
	indicators models.IndicatorParams,
) *ChartsEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &ChartsEchoHandler{
		logger:     logger,
		basis:      basis,
		analysis:   analysis,
		pub:        pub,
		cache:      cache,
		ttl:        ttl,
		indicators: indicators,
	}
}

func (h *ChartsEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	charts := e.Group("/charts")
	charts.GET("/basis", h.BasisChart)
	charts.GET("/analysis/:ticker", h.AnalysisChart)

	api := e.Group("/api")
	api.GET("/basis", h.BasisReport)
	api.GET("/analysis", h.AnalysisReport)
}

func (h *ChartsEchoHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

func (h *ChartsEchoHandler) BasisChart(c echo.Context) error {
	req := &models.BasisRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	f := models.Format(req.Format)
	key := pkgcache.GenerateKeyWithParams(renderPrefix, models.KindBasis, req.Future, req.Index, req.Period, req.Interval, req.Window, f)

	body, err := h.cached(c.Request().Context(), models.KindBasis, key, func(ctx context.Context) ([]byte, string, error) {
		rep, err := h.basis.Generate(ctx, basisParams(req))
		if err != nil {
			return nil, "", err
		}
		body, err := h.pub.RenderBasis(ctx, rep, f)
		return body, usecase.BasisKey(rep.Future), err
	})
	if err != nil {
		return h.fail(c, "basis chart", err)
	}
	return h.blob(c, f, body)
}

func (h *ChartsEchoHandler) AnalysisChart(c echo.Context) error {
	req := &models.AnalysisRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	f := models.Format(req.Format)
	key := pkgcache.GenerateKeyWithParams(renderPrefix, models.KindAnalysis, req.Ticker, req.Period, req.Interval, f)

	body, err := h.cached(c.Request().Context(), models.KindAnalysis, key, func(ctx context.Context) ([]byte, string, error) {
		rep, err := h.analysis.Generate(ctx, h.analysisParams(req))
		if err != nil {
			return nil, "", err
		}
		body, err := h.pub.RenderAnalysis(ctx, rep, f)
		return body, usecase.AnalysisKey(rep.Ticker), err
	})
	if err != nil {
		return h.fail(c, "analysis chart", err)
	}
	return h.blob(c, f, body)
}

func (h *ChartsEchoHandler) BasisReport(c echo.Context) error {
	req := &models.BasisRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	rep, err := h.basis.Generate(c.Request().Context(), basisParams(req))
	if err != nil {
		return h.fail(c, "basis report", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, NewBasisReportDTO(rep))
}

func (h *ChartsEchoHandler) AnalysisReport(c echo.Context) error {
	req := &models.AnalysisRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	rep, err := h.analysis.Generate(c.Request().Context(), h.analysisParams(req))
	if err != nil {
		return h.fail(c, "analysis report", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, NewAnalysisReportDTO(rep))
}

// cached serves key from the render cache. On a miss one caller renders under a
// lock while the others poll until the result lands or the lock expires. A page
// stored after a miss is announced to live clients under the key render returns.
// Uncached builds are never announced since every reload would trigger another.
func (h *ChartsEchoHandler) cached(ctx context.Context, kind models.ReportKind, key string, render func(context.Context) ([]byte, string, error)) ([]byte, error) {
	k := string(kind)
	var live string
	build := func() ([]byte, error) {
		start := time.Now()
		body, lk, err := render(ctx)
		if err == nil {
			live = lk
			metrics.ObserveBuild(k, time.Since(start).Seconds())
		}
		return body, err
	}
	if h.cache == nil || h.ttl <= 0 {
		metrics.ObserveCache(k, metrics.CacheBypass)
		return build()
	}
	var body []byte
	if err := h.cache.Get(ctx, key, &body); err == nil {
		metrics.ObserveCache(k, metrics.CacheHit)
		return body, nil
	}

	lock := key + ":lock"
	deadline := time.Now().Add(lockTTL)
	for {
		ok, err := h.cache.TryLock(ctx, lock, lockTTL)
		if err != nil {
			h.logger.Warn("render lock unavailable", xlogger.String("key", key), xlogger.Error(err))
			metrics.ObserveCache(k, metrics.CacheBypass)
			return build()
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockPoll):
		}
		if err := h.cache.Get(ctx, key, &body); err == nil {
			metrics.ObserveCache(k, metrics.CacheShared)
			return body, nil
		}
		if time.Now().After(deadline) {
			metrics.ObserveCache(k, metrics.CacheBypass)
			return build()
		}
	}
	defer func() {
		if err := h.cache.Unlock(context.Background(), lock); err != nil {
			h.logger.Warn("render unlock failed", xlogger.String("key", key), xlogger.Error(err))
		}
	}()

	metrics.ObserveCache(k, metrics.CacheMiss)
	body, err := build()
	if err != nil {
		return nil, err
	}
	if err := h.cache.Set(ctx, key, body, h.ttl); err != nil {
		h.logger.Warn("render cache write failed", xlogger.String("key", key), xlogger.Error(err))
		return body, nil
	}
	if live != "" && h.pub != nil {
		h.pub.Announce(live)
	}
	return body, nil
}

func (h *ChartsEchoHandler) blob(c echo.Context, f models.Format, body []byte) error {
	c.Response().Header().Set(echo.HeaderCacheControl, fmt.Sprintf("public, max-age=%d", int(h.ttl.Seconds())))
	return c.Blob(http.StatusOK, f.ContentType(), body)
}

func (h *ChartsEchoHandler) fail(c echo.Context, op string, err error) error {
	appErr := mapError(err)
	if appErr.Status >= http.StatusInternalServerError {
		h.logger.Error(op+" failed", xlogger.Error(err))
	} else {
		h.logger.Debug(op+" rejected", xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

func mapError(err error) *xhttp.AppError {
	switch {
	case errors.Is(err, models.ErrNoData):
		return xhttp.NewAppError(xhttp.CodeNoData, "", err.Error(), http.StatusNotFound).WithError(err)
	case errors.Is(err, models.ErrInvalidInput):
		return xhttp.NewAppError(xhttp.CodeInvalidInput, "", err.Error(), http.StatusBadRequest).WithError(err)
	case errors.Is(err, context.DeadlineExceeded):
		return xhttp.NewAppError(xhttp.CodeTimeout, "", "upstream timed out", http.StatusGatewayTimeout).WithError(err)
	default:
		return xhttp.InternalError("chart generation failed").WithError(err)
	}
}

func basisParams(req *models.BasisRequest) usecase.BasisParams {
	return usecase.BasisParams{
		Future:   req.Future,
		Index:    req.Index,
		Period:   req.Period,
		Interval: req.Interval,
		Window:   req.Window,
	}
}

func (h *ChartsEchoHandler) analysisParams(req *models.AnalysisRequest) usecase.AnalysisParams {
	ip := h.indicators
	ip.SMAWindows = append([]int(nil), h.indicators.SMAWindows...)
	return usecase.AnalysisParams{
		Ticker:     req.Ticker,
		Period:     req.Period,
		Interval:   req.Interval,
		Indicators: ip,
	}
}
