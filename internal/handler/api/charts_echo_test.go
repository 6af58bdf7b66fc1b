package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Cephu/internal/domain/models"
	drepo "Cephu/internal/domain/repository"
	"Cephu/internal/services/chart"
	"Cephu/internal/usecase"
	pkgcache "Cephu/pkg/cache"
)

var t0 = time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)

type fakeMarket struct {
	mu     sync.Mutex
	series map[string][]models.Bar
	calls  int
}

func (f *fakeMarket) FetchBars(_ context.Context, symbol, _ string, iv drepo.Interval) (models.Series, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return models.Series{Symbol: symbol, Interval: string(iv), Bars: f.series[symbol]}, nil
}

func bars(n int, start, step float64) []models.Bar {
	out := make([]models.Bar, n)
	for i := range out {
		c := start + float64(i)*step
		out[i] = models.Bar{Time: t0.Add(time.Duration(i) * time.Minute), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 10}
	}
	return out
}

func newTestServer(t *testing.T) (*echo.Echo, *fakeMarket) {
	t.Helper()
	md := &fakeMarket{series: map[string][]models.Bar{
		"ES=F":  bars(30, 5010, 1),
		"^GSPC": bars(30, 5000, 0.5),
		"NVDA":  bars(40, 100, 0.25),
	}}
	mem := pkgcache.NewMemoryCache()
	t.Cleanup(func() { _ = mem.Close() })

	pub := usecase.NewChartPublisher(chart.NewRenderer(), nil, nil, nil, nil, nil, usecase.WithRefresh(300))
	h := NewChartsEchoHandler(nil,
		usecase.NewBasisReportUseCase(md, nil),
		usecase.NewAnalysisReportUseCase(md, nil),
		pub, mem, time.Minute, models.IndicatorParams{SMAWindows: []int{5, 10}, TrendWindow: 5, RSIWindow: 14, RSIMAWindow: 9, BandK: 1.5},
	)
	e := echo.New()
	h.RegisterRoutes(e)
	return e, md
}

func get(e *echo.Echo, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	e, _ := newTestServer(t)
	rec := get(e, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestBasisChart_RendersAndCaches(t *testing.T) {
	e, md := newTestServer(t)

	rec := get(e, "/charts/basis?window=5")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "public, max-age=60", rec.Header().Get(echo.HeaderCacheControl))
	body := rec.Body.String()
	assert.Contains(t, body, `<meta http-equiv="refresh" content="300">`)
	assert.Contains(t, body, chart.TitleBasisAnalysis)
	assert.Equal(t, 2, md.calls)

	rec = get(e, "/charts/basis?window=5")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, body, rec.Body.String())
	assert.Equal(t, 2, md.calls, "second request is served from the render cache")
}

func TestBasisChart_PNG(t *testing.T) {
	e, _ := newTestServer(t)
	rec := get(e, "/charts/basis?format=png")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "\x89PNG"))
}

func TestAnalysisChart(t *testing.T) {
	e, _ := newTestServer(t)
	rec := get(e, "/charts/analysis/nvda")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "TECHNICAL ANALYSIS: NVDA")
}

func TestCharts_NoDataIs404(t *testing.T) {
	e, _ := newTestServer(t)
	rec := get(e, "/charts/analysis/AAPL")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_NO_DATA")
}

func TestCharts_InvalidInputIs400(t *testing.T) {
	e, md := newTestServer(t)

	rec := get(e, "/charts/basis?interval=7m")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_ONEOF")

	rec = get(e, "/charts/basis?future=ES%20F")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_INVALID_INPUT")
	assert.Equal(t, 0, md.calls)
}

func TestBasisReport_JSONUsesNullForUndefined(t *testing.T) {
	e, _ := newTestServer(t)
	rec := get(e, "/api/basis?window=20")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Status int `json:"status"`
		Data   struct {
			Future   string          `json:"future"`
			Window   int             `json:"window"`
			Takeaway models.Takeaway `json:"takeaway"`
			Rows     []BasisRowDTO   `json:"rows"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ES=F", resp.Data.Future)
	assert.Equal(t, 20, resp.Data.Window)
	require.Len(t, resp.Data.Rows, 30)
	assert.Nil(t, resp.Data.Rows[0].BasisMA)
	require.NotNil(t, resp.Data.Rows[29].BasisMA)
	assert.Equal(t, models.SignalBullish, resp.Data.Takeaway.Signal)
	assert.Contains(t, rec.Body.String(), `"basis_ma":null`)
}

func TestAnalysisReport_JSON(t *testing.T) {
	e, _ := newTestServer(t)
	rec := get(e, "/api/analysis?ticker=NVDA")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"rsi":null`)
	assert.Contains(t, rec.Body.String(), `"ticker":"NVDA"`)
	assert.NotContains(t, rec.Body.String(), "NaN")
}

func TestLiveHub_Announce(t *testing.T) {
	hub := NewLiveHub(nil)
	e := echo.New()
	hub.RegisterRoutes(e)
	srv := httptest.NewServer(e)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/live"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)
	hub.Announce(usecase.BasisKey("ES=F"))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev LiveEvent
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "basis:ES=F", ev.Key)

	require.NoError(t, hub.Close())
	assert.Equal(t, 0, hub.Clients())
}

type recordingAnnouncer struct {
	mu   sync.Mutex
	keys []string
}

func (a *recordingAnnouncer) Announce(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.keys = append(a.keys, key)
}

func (a *recordingAnnouncer) got() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.keys...)
}

func newLiveServer(t *testing.T, ttl time.Duration) (*echo.Echo, *recordingAnnouncer) {
	t.Helper()
	md := &fakeMarket{series: map[string][]models.Bar{
		"ES=F":  bars(30, 5010, 1),
		"^GSPC": bars(30, 5000, 0.5),
		"NVDA":  bars(40, 100, 0.25),
	}}
	mem := pkgcache.NewMemoryCache()
	t.Cleanup(func() { _ = mem.Close() })

	ann := &recordingAnnouncer{}
	pub := usecase.NewChartPublisher(chart.NewRenderer(), nil, nil, nil, nil, nil,
		usecase.WithLiveReload("/ws/live"), usecase.WithAnnouncer(ann))
	h := NewChartsEchoHandler(nil,
		usecase.NewBasisReportUseCase(md, nil),
		usecase.NewAnalysisReportUseCase(md, nil),
		pub, mem, ttl, models.IndicatorParams{SMAWindows: []int{5, 10}, TrendWindow: 5, RSIWindow: 14, RSIMAWindow: 9, BandK: 1.5},
	)
	e := echo.New()
	h.RegisterRoutes(e)
	return e, ann
}

func TestBasisChart_AnnouncesRebuiltPages(t *testing.T) {
	e, ann := newLiveServer(t, 100*time.Millisecond)

	rec := get(e, "/charts/basis?window=5")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"/ws/live"`)
	assert.Equal(t, []string{"basis:ES=F"}, ann.got())

	rec = get(e, "/charts/basis?window=5")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, ann.got(), 1, "cache hits are not announced")

	time.Sleep(150 * time.Millisecond)
	rec = get(e, "/charts/basis?window=5")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"basis:ES=F", "basis:ES=F"}, ann.got())
}

func TestAnalysisChart_AnnouncesRebuiltPage(t *testing.T) {
	e, ann := newLiveServer(t, time.Minute)
	rec := get(e, "/charts/analysis/NVDA")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"analysis:NVDA"}, ann.got())
}

func TestCharts_UncachedBuildsAreNotAnnounced(t *testing.T) {
	e, ann := newLiveServer(t, 0)
	for i := 0; i < 3; i++ {
		rec := get(e, "/charts/basis?window=5")
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Empty(t, ann.got())
}
