package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	r := NewWithRegistry(prometheus.NewRegistry())

	r.RecordFetch("ES=F", 0.2, 780)
	r.RecordFetch("ES=F", 0.1, 20)
	r.RecordError("fetch")
	r.RecordSnapshot("kafka")
	r.RecordLastValue("basis", "ES=F", 12.5)

	assert.Equal(t, 800.0, testutil.ToFloat64(r.barsFetched.WithLabelValues("ES=F")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("fetch")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.snapshotsSent.WithLabelValues("kafka")))
	assert.Equal(t, 12.5, testutil.ToFloat64(r.lastValue.WithLabelValues("basis", "ES=F")))
}
