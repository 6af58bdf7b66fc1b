package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Cephu/internal/domain/models"
)

var snap = &models.Snapshot{
	RunID:     "run-1",
	Kind:      models.KindBasis,
	Symbol:    "ES=F",
	Reference: "^GSPC",
	Interval:  "1m",
	Timestamp: time.Date(2025, 3, 10, 14, 30, 0, 123456789, time.UTC),
	Rows:      42,
	Signal:    "bullish",
	Values:    map[string]float64{"basis": 12.5, "basis_ma": 10},
}

func TestFileStore_SaveReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(filepath.Join(dir, "out"))
	require.NoError(t, err)

	loc, err := s.Save(context.Background(), &models.Artifact{Name: "index.html", Body: []byte("v1")})
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(loc))

	_, err = s.Save(context.Background(), &models.Artifact{Name: "index.html", Body: []byte("v2")})
	require.NoError(t, err)

	b, err := os.ReadFile(loc)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(b))

	entries, err := os.ReadDir(filepath.Join(dir, "out"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileStore_RejectsPaths(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	for _, name := range []string{"", "../x.html", "a/b.html"} {
		_, err := s.Save(context.Background(), &models.Artifact{Name: name})
		assert.ErrorIs(t, err, models.ErrInvalidInput, name)
	}
}

type fakeUploader struct {
	names []string
	err   error
}

func (f *fakeUploader) Upload(_ context.Context, name, _ string, _ []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.names = append(f.names, name)
	return "gs://bucket/charts/" + name, nil
}

func TestGCSStore_Save(t *testing.T) {
	up := &fakeUploader{}
	loc, err := NewGCSStore(up).Save(context.Background(), &models.Artifact{Name: "index.html"})
	require.NoError(t, err)
	assert.Equal(t, "gs://bucket/charts/index.html", loc)
}

func TestMultiStore_MirrorFailureIsNotFatal(t *testing.T) {
	primary, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ok := &fakeUploader{}
	broken := &fakeUploader{err: errors.New("403")}

	ms := NewMultiStore(primary, NewGCSStore(broken), NewGCSStore(ok))
	loc, err := ms.Save(context.Background(), &models.Artifact{Name: "a.html", Body: []byte("x")})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(loc, "a.html"))
	assert.Equal(t, []string{"a.html"}, ok.names)
}

func TestMultiStore_PrimaryFailureFails(t *testing.T) {
	ms := NewMultiStore(NewGCSStore(&fakeUploader{err: errors.New("down")}))
	_, err := ms.Save(context.Background(), &models.Artifact{Name: "a.html"})
	assert.Error(t, err)
}

type fakeDB struct {
	query string
	args  []any
	err   error
}

func (f *fakeDB) ExecContext(_ context.Context, q string, args ...any) (sql.Result, error) {
	f.query, f.args = q, args
	if f.err != nil {
		return nil, f.err
	}
	return driver.RowsAffected(1), nil
}

func (f *fakeDB) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeDB) PingContext(context.Context) error { return f.err }

func TestCHSnapshotStore_Write(t *testing.T) {
	db := &fakeDB{}
	s := &CHSnapshotStore{db: db, table: SnapshotTable}
	require.NoError(t, s.Write(context.Background(), snap))

	assert.Contains(t, db.query, "INSERT INTO chart_snapshots")
	require.Len(t, db.args, 10)
	assert.Equal(t, "basis", db.args[1])
	assert.Equal(t, time.Date(2025, 3, 10, 14, 30, 0, 123000000, time.UTC), db.args[5])
	assert.Equal(t, uint32(42), db.args[6])
	assert.Equal(t, snap.Values, db.args[8])
}

func TestCHSnapshotStore_WriteError(t *testing.T) {
	s := &CHSnapshotStore{db: &fakeDB{err: errors.New("conn refused")}, table: SnapshotTable}
	err := s.Write(context.Background(), snap)
	assert.ErrorContains(t, err, "insert snapshot")
}

func TestSnapshotArgs_NilValues(t *testing.T) {
	args := snapshotArgs(&models.Snapshot{Kind: models.KindAnalysis})
	assert.Equal(t, map[string]float64{}, args[8])
}

type fakeProducer struct {
	topic  string
	key    []byte
	value  interface{}
	closed bool
}

func (f *fakeProducer) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	f.topic, f.key, f.value = topic, key, value
	return nil
}

func (f *fakeProducer) Close() error { f.closed = true; return nil }

func TestKafkaSnapshotPublisher(t *testing.T) {
	fp := &fakeProducer{}
	p := NewKafkaSnapshotPublisher(fp, "cephu.snapshots")
	require.NoError(t, p.Write(context.Background(), snap))
	assert.Equal(t, "cephu.snapshots", fp.topic)
	assert.Equal(t, []byte("ES=F"), fp.key)
	assert.Same(t, snap, fp.value)

	require.NoError(t, p.Close())
	assert.True(t, fp.closed)
}

type fakePoints struct {
	measurement string
	tags        map[string]string
	fields      map[string]interface{}
	ts          time.Time
}

func (f *fakePoints) WritePoint(_ context.Context, m string, tags map[string]string, fields map[string]interface{}, ts time.Time) error {
	f.measurement, f.tags, f.fields, f.ts = m, tags, fields, ts
	return nil
}

func (f *fakePoints) Close() error { return nil }

func TestInfluxSnapshotStore(t *testing.T) {
	fp := &fakePoints{}
	s := NewInfluxSnapshotStore(fp, "")
	require.NoError(t, s.Write(context.Background(), snap))

	assert.Equal(t, "chart_snapshot", fp.measurement)
	assert.Equal(t, "^GSPC", fp.tags["reference"])
	assert.Equal(t, 12.5, fp.fields["basis"])
	assert.Equal(t, 42, fp.fields["rows"])
	assert.Equal(t, snap.Timestamp, fp.ts)
}

func TestNopSink(t *testing.T) {
	var s NopSink
	assert.NoError(t, s.Write(context.Background(), snap))
	assert.NoError(t, s.Close())
}
