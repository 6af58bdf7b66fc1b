package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Cephu/internal/domain/models"
)

type flakySink struct {
	mu      sync.Mutex
	fail    bool
	written []string
	closed  bool
}

func (s *flakySink) Write(_ context.Context, snap *models.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("sink down")
	}
	s.written = append(s.written, snap.RunID)
	return nil
}

func (s *flakySink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *flakySink) setFail(v bool) {
	s.mu.Lock()
	s.fail = v
	s.mu.Unlock()
}

func (s *flakySink) runs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.written...)
}

func snap(id, symbol string) *models.Snapshot {
	return &models.Snapshot{RunID: id, Kind: models.KindBasis, Symbol: symbol, Timestamp: time.Now()}
}

func TestSnapshotPipeline_ValidatesInput(t *testing.T) {
	p := NewSnapshotPipeline(&flakySink{}, nil)
	assert.Error(t, p.Write(context.Background(), nil))
	assert.Error(t, p.Write(context.Background(), &models.Snapshot{Symbol: "ES=F", Timestamp: time.Now()}))
	assert.Error(t, p.Write(context.Background(), &models.Snapshot{RunID: "r", Timestamp: time.Now()}))
	assert.Error(t, p.Write(context.Background(), &models.Snapshot{RunID: "r", Symbol: "ES=F"}))
}

func TestSnapshotPipeline_ThrottlesPerChart(t *testing.T) {
	sink := &flakySink{}
	p := NewSnapshotPipeline(sink, nil, WithMinInterval(time.Minute))
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }

	require.NoError(t, p.Write(context.Background(), snap("a", "ES=F")))
	require.NoError(t, p.Write(context.Background(), snap("b", "ES=F")))
	require.NoError(t, p.Write(context.Background(), snap("c", "NQ=F")))
	now = now.Add(time.Minute)
	require.NoError(t, p.Write(context.Background(), snap("d", "ES=F")))

	assert.Equal(t, []string{"a", "c", "d"}, sink.runs())
}

func TestSnapshotPipeline_BuffersAndRedelivers(t *testing.T) {
	sink := &flakySink{fail: true}
	p := NewSnapshotPipeline(sink, nil, WithMinInterval(0))

	err := p.Write(context.Background(), snap("a", "ES=F"))
	require.Error(t, err)
	assert.Equal(t, 1, p.Buffered())

	sink.setFail(false)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	assert.Eventually(t, func() bool { return len(sink.runs()) == 1 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, p.Close())
	assert.True(t, sink.closed)
}

func TestSnapshotPipeline_CloseDrainsBuffer(t *testing.T) {
	sink := &flakySink{fail: true}
	p := NewSnapshotPipeline(sink, nil, WithMinInterval(0), WithBufferSize(1))

	assert.Error(t, p.Write(context.Background(), snap("a", "ES=F")))
	assert.Error(t, p.Write(context.Background(), snap("b", "ES=F")))
	assert.Equal(t, 1, p.Buffered())

	sink.setFail(false)
	require.NoError(t, p.Close())
	assert.Equal(t, []string{"a"}, sink.runs())
	assert.NoError(t, p.Close())
}

func TestSnapshotPipeline_RetryBackoff(t *testing.T) {
	sink := &flakySink{fail: true}
	p := NewSnapshotPipeline(sink, nil, WithMinInterval(0))

	var mu sync.Mutex
	var waits []time.Duration
	p.after = func(d time.Duration) <-chan time.Time {
		mu.Lock()
		defer mu.Unlock()
		waits = append(waits, d)
		if len(waits) >= 8 {
			return nil
		}
		ch := make(chan time.Time, 1)
		ch <- time.Time{}
		return ch
	}
	recorded := func() []time.Duration {
		mu.Lock()
		defer mu.Unlock()
		return append([]time.Duration(nil), waits...)
	}

	require.Error(t, p.Write(context.Background(), snap("a", "ES=F")))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	require.Eventually(t, func() bool { return len(recorded()) == 8 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []time.Duration{
		50 * time.Millisecond,
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
		1600 * time.Millisecond,
		2 * time.Second,
		2 * time.Second,
	}, recorded())

	sink.setFail(false)
	require.NoError(t, p.Close())
	assert.Equal(t, []string{"a"}, sink.runs())
}
