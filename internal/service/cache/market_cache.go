package cache

import (
	"context"
	"errors"
	"time"

	"Cephu/internal/domain/models"
	"Cephu/internal/domain/repository"
	pkgcache "Cephu/pkg/cache"
	applogger "Cephu/pkg/logger"
)

// MarketData caches downloaded series for a short TTL so repeated chart
// requests inside one refresh window do not hit the upstream API.
type MarketData struct {
	next  repository.MarketData
	store pkgcache.Service
	ttl   time.Duration
	log   *applogger.Logger
}

// NewMarketData wraps next with store.
func NewMarketData(next repository.MarketData, store pkgcache.Service, ttl time.Duration) *MarketData {
	return &MarketData{next: next, store: store, ttl: ttl}
}

// SetLogger sets an optional logger.
func (m *MarketData) SetLogger(l *applogger.Logger) { m.log = l }

func (m *MarketData) FetchBars(ctx context.Context, symbol, period string, interval repository.Interval) (models.Series, error) {
	key := pkgcache.GenerateKeyWithParams("bars", symbol, period, interval)

	var cached models.Series
	err := m.store.Get(ctx, key, &cached)
	switch {
	case err == nil:
		return cached, nil
	case !errors.Is(err, pkgcache.ErrCacheMiss) && m.log != nil:
		m.log.Warn("bar cache read failed", applogger.String("key", key), applogger.Error(err))
	}

	series, err := m.next.FetchBars(ctx, symbol, period, interval)
	if err != nil {
		return series, err
	}
	if err := m.store.Set(ctx, key, series, m.ttl); err != nil && m.log != nil {
		m.log.Warn("bar cache write failed", applogger.String("key", key), applogger.Error(err))
	}
	return series, nil
}
