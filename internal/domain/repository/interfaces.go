package repository

import (
	"context"

	"Cephu/internal/domain/models"
)

// MarketData downloads OHLCV series for one symbol.
type MarketData interface {
	FetchBars(ctx context.Context, symbol, period string, interval Interval) (models.Series, error)
}

// ArtifactStore persists a rendered chart and returns where it ended up.
type ArtifactStore interface {
	Save(ctx context.Context, a *models.Artifact) (string, error)
}

type SnapshotSink interface {
	Write(ctx context.Context, s *models.Snapshot) error
	Close() error
}

type Notifier interface {
	Notify(ctx context.Context, n *models.Notification) error
}

type Metrics interface {
	RecordFetch(symbol string, seconds float64, bars int)
	RecordError(kind string)
	RecordRender(kind, format string, seconds float64)
	RecordSnapshot(backend string)
	RecordLastValue(kind, symbol string, v float64)
}
