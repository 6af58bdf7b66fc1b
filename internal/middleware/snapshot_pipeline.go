package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"Cephu/internal/domain/models"
	domrepo "Cephu/internal/domain/repository"
	applogger "Cephu/pkg/logger"
)

const (
	minBackoff   = 50 * time.Millisecond
	maxBackoff   = 2 * time.Second
	drainTimeout = 5 * time.Second
)

// SnapshotPipeline sits between the publisher and a snapshot sink.
// It validates and throttles snapshots, and buffers them while the sink is unavailable.
type SnapshotPipeline struct {
	next     domrepo.SnapshotSink
	metrics  domrepo.Metrics
	minGap   time.Duration
	bufSize  int
	bufCh    chan *models.Snapshot
	stopCh   chan struct{}
	doneCh   chan struct{}
	started  bool
	stopped  bool
	mu       sync.Mutex
	lastSeen map[string]time.Time // per kind/symbol last accepted time
	now      func() time.Time
	after    func(time.Duration) <-chan time.Time
	l        *applogger.Logger
}

type PipelineOption func(*SnapshotPipeline)

// WithMinInterval drops snapshots of one chart that arrive closer together than d.
func WithMinInterval(d time.Duration) PipelineOption {
	return func(p *SnapshotPipeline) {
		if d >= 0 {
			p.minGap = d
		}
	}
}

// WithBufferSize sets how many snapshots are held while the sink is down.
func WithBufferSize(n int) PipelineOption {
	return func(p *SnapshotPipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

func WithLogger(l *applogger.Logger) PipelineOption {
	return func(p *SnapshotPipeline) { p.l = l }
}

// NewSnapshotPipeline wraps next. Call Start to begin retrying buffered snapshots.
func NewSnapshotPipeline(next domrepo.SnapshotSink, metrics domrepo.Metrics, opts ...PipelineOption) *SnapshotPipeline {
	p := &SnapshotPipeline{
		next:     next,
		metrics:  metrics,
		minGap:   time.Second,
		bufSize:  256,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		lastSeen: make(map[string]time.Time),
		now:      time.Now,
		after:    time.After,
		l:        applogger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.bufCh = make(chan *models.Snapshot, p.bufSize)
	return p
}

var _ domrepo.SnapshotSink = (*SnapshotPipeline)(nil)

// Start launches background delivery of buffered snapshots.
func (p *SnapshotPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started || p.stopped {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go p.flush(ctx)
}

func (p *SnapshotPipeline) flush(ctx context.Context) {
	defer close(p.doneCh)
	backoff := minBackoff
	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case s := <-p.bufCh:
			if err := p.next.Write(ctx, s); err != nil {
				p.recordError("pipeline_flush")
				p.requeue(s)
				wait := backoff
				backoff = min(backoff*2, maxBackoff)
				select {
				case <-p.stopCh:
					return
				case <-ctx.Done():
					return
				case <-p.after(wait):
				}
				continue
			}
			backoff = minBackoff
			p.l.Debug("buffered snapshot delivered", applogger.String("run_id", s.RunID))
		}
	}
}

// Write validates, throttles and forwards s. A failed write is buffered for retry
// and still reported to the caller.
func (p *SnapshotPipeline) Write(ctx context.Context, s *models.Snapshot) error {
	if err := validateSnapshot(s); err != nil {
		p.recordError("pipeline_validate")
		return err
	}
	if !p.allow(string(s.Kind)+":"+s.Symbol, p.now()) {
		p.recordError("pipeline_throttle")
		p.l.Debug("snapshot throttled", applogger.String("symbol", s.Symbol))
		return nil
	}

	if err := p.next.Write(ctx, s); err != nil {
		p.recordError("pipeline_process")
		p.requeue(s)
		return fmt.Errorf("snapshot downstream: %w", err)
	}
	return nil
}

// Buffered reports how many snapshots wait for redelivery.
func (p *SnapshotPipeline) Buffered() int { return len(p.bufCh) }

// Close stops the retry loop, makes one last attempt at every buffered snapshot and closes next.
func (p *SnapshotPipeline) Close() error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	started := p.started
	p.mu.Unlock()

	close(p.stopCh)
	if started {
		<-p.doneCh
	}

	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
drain:
	for {
		select {
		case s := <-p.bufCh:
			if err := p.next.Write(ctx, s); err != nil {
				p.recordError("pipeline_buffer_drop")
				p.l.Warn("snapshot dropped", applogger.String("run_id", s.RunID), applogger.Error(err))
			}
		default:
			break drain
		}
	}
	return p.next.Close()
}

func (p *SnapshotPipeline) requeue(s *models.Snapshot) {
	select {
	case p.bufCh <- s:
	default:
		p.recordError("pipeline_buffer_full")
		p.l.Warn("snapshot buffer full", applogger.String("run_id", s.RunID))
	}
}

func (p *SnapshotPipeline) recordError(kind string) {
	if p.metrics != nil {
		p.metrics.RecordError(kind)
	}
}

func validateSnapshot(s *models.Snapshot) error {
	if s == nil {
		return fmt.Errorf("snapshot nil")
	}
	if s.RunID == "" {
		return fmt.Errorf("snapshot run id empty")
	}
	if s.Symbol == "" {
		return fmt.Errorf("snapshot symbol empty")
	}
	if s.Timestamp.IsZero() {
		return fmt.Errorf("snapshot timestamp missing")
	}
	return nil
}

func (p *SnapshotPipeline) allow(key string, now time.Time) bool {
	if p.minGap <= 0 {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	last, ok := p.lastSeen[key]
	if ok && now.Sub(last) < p.minGap {
		return false
	}
	p.lastSeen[key] = now
	return true
}
