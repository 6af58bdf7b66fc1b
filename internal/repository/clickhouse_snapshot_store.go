package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"Cephu/internal/domain/models"
	domrepo "Cephu/internal/domain/repository"
	pkgch "Cephu/pkg/clickhouse"
	applogger "Cephu/pkg/logger"
)

// SnapshotTable holds one row per generated chart.
const SnapshotTable = "chart_snapshots"

// SnapshotSchema is applied by NewCHSnapshotStore when schema init is enabled.
var SnapshotSchema = []string{
	`CREATE TABLE IF NOT EXISTS ` + SnapshotTable + ` (
        run_id       String,
        kind         LowCardinality(String),
        symbol       LowCardinality(String),
        reference    String,
        bar_interval LowCardinality(String),
        ts           DateTime64(3, 'UTC'),
        row_count    UInt32,
        signal       LowCardinality(String),
        metrics      Map(String, Float64),
        location     String,
        inserted_at  DateTime DEFAULT now()
    ) ENGINE = MergeTree
    ORDER BY (kind, symbol, ts)`,
}

// execQuerier is the subset of *sql.DB the store uses.
type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	PingContext(ctx context.Context) error
}

// CHSnapshotStore writes snapshots to ClickHouse.
type CHSnapshotStore struct {
	db    execQuerier
	table string
	l     *applogger.Logger
}

// NewCHSnapshotStore wraps ch and optionally applies SnapshotSchema.
func NewCHSnapshotStore(ctx context.Context, ch *pkgch.Client, initSchema bool) (*CHSnapshotStore, error) {
	if initSchema {
		if err := ch.InitSchema(ctx, SnapshotSchema); err != nil {
			return nil, err
		}
	}
	return &CHSnapshotStore{db: ch.DB(), table: SnapshotTable}, nil
}

// SetLogger injects a structured logger.
func (s *CHSnapshotStore) SetLogger(l *applogger.Logger) { s.l = l }

var _ domrepo.SnapshotSink = (*CHSnapshotStore)(nil)

func (s *CHSnapshotStore) Write(ctx context.Context, snap *models.Snapshot) error {
	q := fmt.Sprintf("INSERT INTO %s (run_id, kind, symbol, reference, bar_interval, ts, row_count, signal, metrics, location) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", s.table)
	if _, err := s.db.ExecContext(ctx, q, snapshotArgs(snap)...); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse snapshot insert error",
				applogger.String("table", s.table),
				applogger.String("symbol", snap.Symbol),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// Recent returns the latest snapshots of kind for symbol, newest first.
func (s *CHSnapshotStore) Recent(ctx context.Context, kind models.ReportKind, symbol string, limit int) ([]models.Snapshot, error) {
	q := fmt.Sprintf("SELECT run_id, kind, symbol, reference, bar_interval, ts, row_count, signal, metrics, location FROM %s WHERE kind = ? AND symbol = ? ORDER BY ts DESC LIMIT ?", s.table)
	rows, err := s.db.QueryContext(ctx, q, string(kind), symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var out []models.Snapshot
	for rows.Next() {
		var (
			snap     models.Snapshot
			kindStr  string
			rowCount uint32
		)
		if err := rows.Scan(&snap.RunID, &kindStr, &snap.Symbol, &snap.Reference, &snap.Interval,
			&snap.Timestamp, &rowCount, &snap.Signal, &snap.Values, &snap.Location); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snap.Kind = models.ReportKind(kindStr)
		snap.Rows = int(rowCount)
		out = append(out, snap)
	}
	return out, rows.Err()
}

func (s *CHSnapshotStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close is a no-op, the pool is owned by pkg/clickhouse.
func (s *CHSnapshotStore) Close() error { return nil }

func snapshotArgs(snap *models.Snapshot) []any {
	values := snap.Values
	if values == nil {
		values = map[string]float64{}
	}
	return []any{
		snap.RunID,
		string(snap.Kind),
		snap.Symbol,
		snap.Reference,
		snap.Interval,
		snap.Timestamp.UTC().Truncate(time.Millisecond),
		uint32(snap.Rows),
		snap.Signal,
		values,
		snap.Location,
	}
}
