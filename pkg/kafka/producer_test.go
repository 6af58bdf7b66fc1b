package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *recordingWriter) Close() error { return nil }

func TestProducer_PublishEncodesJSON(t *testing.T) {
	w := &recordingWriter{}
	p := NewProducerWithWriter(w, "gzip")

	err := p.Publish(context.Background(), "cephu.snapshots", []byte("ES=F"), map[string]string{"signal": "bullish"})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "cephu.snapshots", w.msgs[0].Topic)
	assert.Equal(t, []byte("ES=F"), w.msgs[0].Key)
	assert.JSONEq(t, `{"signal":"bullish"}`, string(w.msgs[0].Value))
}

func TestProducer_PublishReturnsWriterError(t *testing.T) {
	w := &recordingWriter{err: errors.New("broker down")}
	p := NewProducerWithWriter(w, "gzip")
	assert.EqualError(t, p.Publish(context.Background(), "t", nil, "raw"), "broker down")
}

func TestNewProducerRequiresBrokers(t *testing.T) {
	_, err := NewProducer()
	assert.Error(t, err)
}
