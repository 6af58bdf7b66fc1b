package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldsAreWritten(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf).With("basis")
	log.Info("chart written",
		String("path", "index.html"),
		Int("rows", 42),
		Float64("basis", 12.5),
		Duration("took", 1500*time.Millisecond),
		Error(errors.New("boom")),
	)

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "chart written", got["message"])
	assert.Equal(t, "basis", got["component"])
	assert.Equal(t, "index.html", got["path"])
	assert.EqualValues(t, 42, got["rows"])
	assert.EqualValues(t, 12.5, got["basis"])
	assert.EqualValues(t, 1500, got["took"])
	assert.Equal(t, "boom", got["error"])
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud", Output: "stderr"})
	assert.Error(t, err)
}
