package repository

import (
	"context"
	"fmt"
	"time"

	"Cephu/internal/domain/models"
	domrepo "Cephu/internal/domain/repository"
)

// pointWriter is satisfied by *influx.Client.
type pointWriter interface {
	WritePoint(ctx context.Context, measurement string, tags map[string]string, fields map[string]interface{}, ts time.Time) error
	Close() error
}

// InfluxSnapshotStore writes one point per snapshot. Values become fields.
type InfluxSnapshotStore struct {
	w           pointWriter
	measurement string
}

func NewInfluxSnapshotStore(w pointWriter, measurement string) *InfluxSnapshotStore {
	if measurement == "" {
		measurement = "chart_snapshot"
	}
	return &InfluxSnapshotStore{w: w, measurement: measurement}
}

var _ domrepo.SnapshotSink = (*InfluxSnapshotStore)(nil)

func (s *InfluxSnapshotStore) Write(ctx context.Context, snap *models.Snapshot) error {
	tags := map[string]string{
		"kind":     string(snap.Kind),
		"symbol":   snap.Symbol,
		"interval": snap.Interval,
	}
	if snap.Reference != "" {
		tags["reference"] = snap.Reference
	}
	fields := map[string]interface{}{
		"rows":   snap.Rows,
		"signal": snap.Signal,
		"run_id": snap.RunID,
	}
	for k, v := range snap.Values {
		fields[k] = v
	}
	if err := s.w.WritePoint(ctx, s.measurement, tags, fields, snap.Timestamp); err != nil {
		return fmt.Errorf("write snapshot point: %w", err)
	}
	return nil
}

func (s *InfluxSnapshotStore) Close() error { return s.w.Close() }
