package usecase

import (
	"context"
	"fmt"
	"time"

	"Cephu/internal/domain/models"
	drepo "Cephu/internal/domain/repository"
	applogger "Cephu/pkg/logger"
)

// SnapshotProcessor routes run snapshots to the configured backend.
type SnapshotProcessor struct {
	sink    drepo.SnapshotSink
	metrics drepo.Metrics
	backend string
	l       *applogger.Logger
}

// NewSnapshotProcessor creates a processor. A nil sink or backend "none" disables it.
func NewSnapshotProcessor(sink drepo.SnapshotSink, metrics drepo.Metrics, backend string) *SnapshotProcessor {
	return &SnapshotProcessor{sink: sink, metrics: metrics, backend: backend}
}

// SetLogger injects a structured logger.
func (p *SnapshotProcessor) SetLogger(l *applogger.Logger) { p.l = l }

// Enabled reports whether snapshots leave the process.
func (p *SnapshotProcessor) Enabled() bool {
	return p != nil && p.sink != nil && p.backend != "" && p.backend != "none"
}

// Process writes one snapshot.
func (p *SnapshotProcessor) Process(ctx context.Context, s *models.Snapshot) error {
	if s == nil {
		return fmt.Errorf("snapshot is nil")
	}
	if !p.Enabled() {
		return nil
	}
	start := time.Now()
	if err := p.sink.Write(ctx, s); err != nil {
		if p.metrics != nil {
			p.metrics.RecordError("snapshot")
		}
		return fmt.Errorf("process snapshot: %w", err)
	}
	if p.metrics != nil {
		p.metrics.RecordSnapshot(p.backend)
	}
	if p.l != nil {
		p.l.Debug("snapshot written",
			applogger.String("backend", p.backend),
			applogger.String("run_id", s.RunID),
			applogger.String("symbol", s.Symbol),
			applogger.Duration("took", time.Since(start)),
		)
	}
	return nil
}

// Close flushes and closes the sink.
func (p *SnapshotProcessor) Close() error {
	if p == nil || p.sink == nil {
		return nil
	}
	return p.sink.Close()
}
