package cache

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Cephu/internal/domain/models"
	"Cephu/internal/domain/repository"
	pkgcache "Cephu/pkg/cache"
)

type countingSource struct {
	calls  int
	series models.Series
	err    error
}

func (s *countingSource) FetchBars(_ context.Context, _, _ string, _ repository.Interval) (models.Series, error) {
	s.calls++
	return s.series, s.err
}

type brokenStore struct{ pkgcache.Service }

func (brokenStore) Get(context.Context, string, interface{}) error { return errors.New("redis down") }
func (brokenStore) Set(context.Context, string, interface{}, time.Duration) error {
	return errors.New("redis down")
}

func TestMarketData_ServesFromCache(t *testing.T) {
	ts := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)
	src := &countingSource{series: models.Series{Symbol: "ES=F", Interval: "1m", Bars: []models.Bar{
		{Time: ts, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10},
		{Time: ts.Add(time.Minute), Open: 1.5, High: 2, Low: 1, Close: math.NaN(), Volume: math.NaN()},
	}}}
	store := pkgcache.NewMemoryCache()
	defer store.Close()
	md := NewMarketData(src, store, time.Minute)

	first, err := md.FetchBars(context.Background(), "ES=F", "2d", repository.Interval1m)
	require.NoError(t, err)
	second, err := md.FetchBars(context.Background(), "ES=F", "2d", repository.Interval1m)
	require.NoError(t, err)

	assert.Equal(t, 1, src.calls)
	require.Len(t, second.Bars, 2)
	assert.Equal(t, first.Bars[0].Close, second.Bars[0].Close)
	assert.True(t, second.Bars[0].Time.Equal(ts))
	assert.True(t, math.IsNaN(second.Bars[1].Close))
}

func TestMarketData_DoesNotCacheErrors(t *testing.T) {
	src := &countingSource{err: models.ErrNoData}
	store := pkgcache.NewMemoryCache()
	defer store.Close()
	md := NewMarketData(src, store, time.Minute)

	for i := 0; i < 2; i++ {
		_, err := md.FetchBars(context.Background(), "ES=F", "2d", repository.Interval1m)
		assert.ErrorIs(t, err, models.ErrNoData)
	}
	assert.Equal(t, 2, src.calls)
}

func TestMarketData_DegradesOnStoreFailure(t *testing.T) {
	src := &countingSource{series: models.Series{Symbol: "NVDA", Bars: []models.Bar{{Close: 1}}}}
	md := NewMarketData(src, brokenStore{}, time.Minute)

	s, err := md.FetchBars(context.Background(), "NVDA", "1y", repository.Interval1d)
	require.NoError(t, err)
	assert.Equal(t, "NVDA", s.Symbol)
}
