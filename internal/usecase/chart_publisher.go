package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"Cephu/internal/domain/models"
	drepo "Cephu/internal/domain/repository"
	domsvc "Cephu/internal/domain/service"
	"Cephu/internal/services/chart"
	pkgcache "Cephu/pkg/cache"
	applogger "Cephu/pkg/logger"
)

// signalTTL bounds how long a remembered signal suppresses repeat notifications.
const signalTTL = 7 * 24 * time.Hour

// Announcer is told when an artifact for key has been replaced.
type Announcer interface {
	Announce(key string)
}

// PublishResult describes one published chart.
type PublishResult struct {
	RunID    string
	Location string
	Bytes    int
	Signal   string
	Notified bool
}

// PublisherOption configures ChartPublisher.
type PublisherOption func(*ChartPublisher)

// WithRefresh adds a meta refresh of seconds to HTML artifacts.
func WithRefresh(seconds int) PublisherOption {
	return func(p *ChartPublisher) { p.refresh = seconds }
}

// WithLiveReload adds the websocket reload script pointing at path.
func WithLiveReload(path string) PublisherOption {
	return func(p *ChartPublisher) { p.livePath = path }
}

func WithAnnouncer(a Announcer) PublisherOption {
	return func(p *ChartPublisher) { p.announcer = a }
}

// ChartPublisher renders reports and pushes them to stores, sinks and notifiers.
type ChartPublisher struct {
	renderer  domsvc.ChartRenderer
	store     drepo.ArtifactStore
	snapshots *SnapshotProcessor
	notifier  drepo.Notifier
	memory    pkgcache.Service
	metrics   drepo.Metrics
	announcer Announcer
	refresh   int
	livePath  string
	l         *applogger.Logger
}

func NewChartPublisher(
	renderer domsvc.ChartRenderer,
	store drepo.ArtifactStore,
	snapshots *SnapshotProcessor,
	notifier drepo.Notifier,
	memory pkgcache.Service,
	metrics drepo.Metrics,
	opts ...PublisherOption,
) *ChartPublisher {
	p := &ChartPublisher{
		renderer:  renderer,
		store:     store,
		snapshots: snapshots,
		notifier:  notifier,
		memory:    memory,
		metrics:   metrics,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SetLogger injects a structured logger.
func (p *ChartPublisher) SetLogger(l *applogger.Logger) { p.l = l }

// BasisKey identifies the basis page for live reload.
func BasisKey(future string) string { return "basis:" + future }

// AnalysisKey identifies an analysis page for live reload.
func AnalysisKey(ticker string) string { return "analysis:" + ticker }

// RenderBasis renders and post-processes the basis chart.
func (p *ChartPublisher) RenderBasis(ctx context.Context, rep *models.BasisReport, f models.Format) ([]byte, error) {
	start := time.Now()
	body, err := p.renderer.RenderBasis(ctx, rep, f)
	if err != nil {
		p.recordError("render")
		return nil, fmt.Errorf("render basis: %w", err)
	}
	p.recordRender(models.KindBasis, f, start)
	return p.postProcess(body, f, BasisKey(rep.Future)), nil
}

// RenderAnalysis renders and post-processes the analysis chart.
func (p *ChartPublisher) RenderAnalysis(ctx context.Context, rep *models.AnalysisReport, f models.Format) ([]byte, error) {
	start := time.Now()
	body, err := p.renderer.RenderAnalysis(ctx, rep, f)
	if err != nil {
		p.recordError("render")
		return nil, fmt.Errorf("render analysis: %w", err)
	}
	p.recordRender(models.KindAnalysis, f, start)
	return p.postProcess(body, f, AnalysisKey(rep.Ticker)), nil
}

// PublishBasis writes the basis chart to name and fans out its snapshot and takeaway.
func (p *ChartPublisher) PublishBasis(ctx context.Context, rep *models.BasisReport, name string, f models.Format) (*PublishResult, error) {
	body, err := p.RenderBasis(ctx, rep, f)
	if err != nil {
		return nil, err
	}
	snap := BasisSnapshot(rep)
	n := &models.Notification{
		Kind:   models.KindBasis,
		Symbol: fmt.Sprintf("%s vs %s", rep.Future, rep.Index),
		Signal: snap.Signal,
		Title:  rep.Takeaway.Title,
		Text:   rep.Takeaway.Text,
		At:     rep.GeneratedAt,
	}
	return p.publish(ctx, name, f, body, snap, n, BasisKey(rep.Future))
}

// PublishAnalysis writes the analysis chart to name and fans out its snapshot.
func (p *ChartPublisher) PublishAnalysis(ctx context.Context, rep *models.AnalysisReport, name string, f models.Format) (*PublishResult, error) {
	body, err := p.RenderAnalysis(ctx, rep, f)
	if err != nil {
		return nil, err
	}
	snap := AnalysisSnapshot(rep)
	last := rep.Last()
	n := &models.Notification{
		Kind:   models.KindAnalysis,
		Symbol: rep.Ticker,
		Signal: snap.Signal,
		Title:  fmt.Sprintf("DBS %+d", last.DBS),
		Text:   fmt.Sprintf("Close %.2f, Swing %d.", last.Bar.Close, last.Swing),
		At:     rep.GeneratedAt,
	}
	return p.publish(ctx, name, f, body, snap, n, AnalysisKey(rep.Ticker))
}

func (p *ChartPublisher) publish(ctx context.Context, name string, f models.Format, body []byte, snap *models.Snapshot, n *models.Notification, key string) (*PublishResult, error) {
	loc, err := p.store.Save(ctx, &models.Artifact{Name: name, ContentType: f.ContentType(), Body: body})
	if err != nil {
		p.recordError("write")
		return nil, fmt.Errorf("write %s: %w", name, err)
	}
	snap.Location = loc
	n.Location = loc

	if p.snapshots != nil {
		if err := p.snapshots.Process(ctx, snap); err != nil && p.l != nil {
			p.l.Warn("snapshot not delivered", applogger.String("run_id", snap.RunID), applogger.Error(err))
		}
	}
	notified := p.notifyOnChange(ctx, snap, n)
	p.Announce(key)
	if p.l != nil {
		p.l.Info("chart published",
			applogger.String("kind", string(snap.Kind)),
			applogger.String("symbol", snap.Symbol),
			applogger.String("location", loc),
			applogger.Int("bytes", len(body)),
			applogger.Bool("notified", notified),
		)
	}
	return &PublishResult{
		RunID:    snap.RunID,
		Location: loc,
		Bytes:    len(body),
		Signal:   snap.Signal,
		Notified: notified,
	}, nil
}

// notifyOnChange sends n when the signal differs from the one remembered for the
// same chart. NO SIGNAL is remembered but never announced. A failed delivery is
// not remembered, so the next run tries again.
func (p *ChartPublisher) notifyOnChange(ctx context.Context, snap *models.Snapshot, n *models.Notification) bool {
	if p.notifier == nil {
		return false
	}
	key := fmt.Sprintf("signal:%s:%s", snap.Kind, snap.Symbol)
	if p.memory != nil {
		prev, err := pkgcache.GetTyped[string](ctx, p.memory, key)
		switch {
		case err == nil && prev == snap.Signal:
			return false
		case err != nil && !errors.Is(err, pkgcache.ErrCacheMiss) && p.l != nil:
			p.l.Warn("signal memory read failed", applogger.String("key", key), applogger.Error(err))
		}
	}
	if snap.Signal == string(models.SignalNoSignal) {
		p.remember(ctx, key, snap.Signal)
		return false
	}
	if err := p.notifier.Notify(ctx, n); err != nil {
		p.recordError("notify")
		if p.l != nil {
			p.l.Warn("notification not delivered", applogger.String("symbol", n.Symbol), applogger.Error(err))
		}
		return false
	}
	p.remember(ctx, key, snap.Signal)
	return true
}

func (p *ChartPublisher) remember(ctx context.Context, key, signal string) {
	if p.memory == nil {
		return
	}
	if err := p.memory.Set(ctx, key, signal, signalTTL); err != nil && p.l != nil {
		p.l.Warn("signal memory write failed", applogger.String("key", key), applogger.Error(err))
	}
}

// Announce tells live pages showing key that a newer artifact exists.
func (p *ChartPublisher) Announce(key string) {
	if p.announcer != nil && p.livePath != "" {
		p.announcer.Announce(key)
	}
}

func (p *ChartPublisher) postProcess(body []byte, f models.Format, key string) []byte {
	if f == models.FormatPNG {
		return body
	}
	body = chart.InjectMetaRefresh(body, p.refresh)
	if p.livePath != "" {
		body = chart.InjectLiveReload(body, p.livePath, key)
	}
	return body
}

func (p *ChartPublisher) recordRender(kind models.ReportKind, f models.Format, start time.Time) {
	if p.metrics != nil {
		p.metrics.RecordRender(string(kind), string(f), time.Since(start).Seconds())
	}
}

func (p *ChartPublisher) recordError(kind string) {
	if p.metrics != nil {
		p.metrics.RecordError(kind)
	}
}
