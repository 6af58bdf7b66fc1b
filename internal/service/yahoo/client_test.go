package yahoo

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Cephu/internal/domain/models"
	"Cephu/internal/domain/repository"
	"Cephu/internal/service/ratelimit"
)

const chartJSON = `{
  "chart": {
    "result": [{
      "meta": {"currency": "USD", "symbol": "ES=F", "exchangeTimezoneName": "America/New_York", "gmtoffset": -14400},
      "timestamp": [1741613400, 1741613460, 1741613520],
      "indicators": {"quote": [{
        "open":   [5710.25, 5711.0, null],
        "high":   [5712.0, 5713.5, null],
        "low":    [5709.5, 5710.25, null],
        "close":  [5711.0, 5712.75, null],
        "volume": [1200, 980, null]
      }]}
    }],
    "error": null
  }
}`

func newTestServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/ES=F", r.URL.Path)
		assert.Equal(t, "2d", r.URL.Query().Get("range"))
		assert.Equal(t, "1m", r.URL.Query().Get("interval"))
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla/5.0")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchBars(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, chartJSON)
	c := New(WithBaseURL(srv.URL), WithLimiter(ratelimit.New(100, 10)))

	s, err := c.FetchBars(context.Background(), "ES=F", "2d", repository.Interval1m)
	require.NoError(t, err)
	require.Len(t, s.Bars, 3)
	assert.Equal(t, "ES=F", s.Symbol)
	assert.Equal(t, int64(1741613400), s.Bars[0].Time.Unix())
	assert.Equal(t, "America/New_York", s.Bars[0].Time.Location().String())
	assert.Equal(t, 5712.75, s.Bars[1].Close)
	assert.True(t, math.IsNaN(s.Bars[2].Close))
	assert.False(t, s.Bars[2].Complete())
}

func TestFetchBars_EmptyResultIsNoData(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"chart":{"result":[],"error":null}}`)
	_, err := New(WithBaseURL(srv.URL)).FetchBars(context.Background(), "ES=F", "2d", repository.Interval1m)
	assert.True(t, errors.Is(err, models.ErrNoData))
}

func TestFetchBars_NoTimestampsIsNoData(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"chart":{"result":[{"meta":{"symbol":"ES=F"},"indicators":{"quote":[{}]}}],"error":null}}`)
	_, err := New(WithBaseURL(srv.URL)).FetchBars(context.Background(), "ES=F", "2d", repository.Interval1m)
	assert.True(t, errors.Is(err, models.ErrNoData))
}

func TestFetchBars_NotFoundIsNoData(t *testing.T) {
	srv := newTestServer(t, http.StatusNotFound,
		`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`)
	_, err := New(WithBaseURL(srv.URL)).FetchBars(context.Background(), "ES=F", "2d", repository.Interval1m)
	assert.True(t, errors.Is(err, models.ErrNoData))
}

func TestFetchBars_ChartError(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"chart":{"result":null,"error":{"code":"Bad Request","description":"Invalid input"}}}`)
	_, err := New(WithBaseURL(srv.URL)).FetchBars(context.Background(), "ES=F", "2d", repository.Interval1m)
	require.Error(t, err)
	assert.False(t, errors.Is(err, models.ErrNoData))
	assert.Contains(t, err.Error(), "Invalid input")
}

func TestFetchBars_InvalidInput(t *testing.T) {
	c := New(WithBaseURL("http://unused.invalid"), WithTimeout(time.Second))
	ctx := context.Background()

	_, err := c.FetchBars(ctx, "es f", "2d", repository.Interval1m)
	assert.True(t, errors.Is(err, models.ErrInvalidInput))
	_, err = c.FetchBars(ctx, "ES=F", "forever", repository.Interval1m)
	assert.True(t, errors.Is(err, models.ErrInvalidInput))
	_, err = c.FetchBars(ctx, "ES=F", "2d", repository.Interval("7m"))
	assert.True(t, errors.Is(err, models.ErrInvalidInput))
}
