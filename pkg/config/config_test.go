package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, "ES=F", c.Basis.Future)
	assert.Equal(t, "^GSPC", c.Basis.Index)
	assert.Equal(t, 20, c.Basis.Window)
	assert.Equal(t, []int{55, 200}, c.Analysis.SMAWindows)
	assert.Equal(t, 1.5, c.Analysis.BandK)
	assert.Equal(t, 300, c.Output.RefreshSeconds)
	assert.Equal(t, time.Hour, c.Output.DisplayOffset)
	assert.Equal(t, "none", c.Backend.Type)
	require.NoError(t, c.Validate())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "index.html", c.Basis.Output)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
basis:
  future: NQ=F
  index: ^NDX
  window: 30
output:
  refresh_seconds: 0
`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "NQ=F", c.Basis.Future)
	assert.Equal(t, "^NDX", c.Basis.Index)
	assert.Equal(t, 30, c.Basis.Window)
	assert.Equal(t, "2d", c.Basis.Period)
	assert.Equal(t, 0, c.Output.RefreshSeconds)
}

func TestLoad_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend:\n  type: postgres\n"), 0o644))
	_, err := Load(path)
	assert.ErrorContains(t, err, "backend.type")
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"CEPHU_BACKEND":    "kafka",
		"KAFKA_BROKERS":    "a:9092,b:9092",
		"TELEGRAM_TOKEN":   "tok",
		"TELEGRAM_CHAT_ID": "42",
		"CEPHU_PORT":       "9090",
	}
	c := Default()
	c.ApplyEnv(func(k string) string { return env[k] })

	assert.Equal(t, "kafka", c.Backend.Type)
	assert.Equal(t, []string{"a:9092", "b:9092"}, c.Kafka.Brokers)
	assert.True(t, c.Notify.Telegram.Enabled)
	assert.Equal(t, int64(42), c.Notify.Telegram.ChatID)
	assert.Equal(t, 9090, c.Server.Port)
	require.NoError(t, c.Validate())
}

func TestValidate_BackendRequirements(t *testing.T) {
	c := Default()
	c.Backend.Type = "clickhouse"
	assert.ErrorContains(t, c.Validate(), "clickhouse.host")

	c = Default()
	c.Output.GCS.Enabled = true
	assert.ErrorContains(t, c.Validate(), "gcs")
}
