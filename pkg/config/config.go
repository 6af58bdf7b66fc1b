package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Log         struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Output string `yaml:"output" default:"stderr"`
	} `yaml:"log"`
	Server struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"60s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		RenderTTL       time.Duration `yaml:"render_ttl" default:"60s"` // how long a rendered chart is served from cache
		LiveReload      bool          `yaml:"live_reload" default:"true"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Tracing struct {
		Exporter    string `yaml:"exporter" default:"none"` // none or stdout
		ServiceName string `yaml:"service_name" default:"cephu"`
	} `yaml:"tracing"`
	Yahoo struct {
		BaseURL   string        `yaml:"base_url" default:"https://query1.finance.yahoo.com"`
		UserAgent string        `yaml:"user_agent" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"`
		Timeout   time.Duration `yaml:"timeout" default:"15s"`
		RateLimit float64       `yaml:"rate_limit" default:"2"` // requests per second
		Burst     int           `yaml:"burst" default:"4"`
	} `yaml:"yahoo"`
	Basis struct {
		Future   string `yaml:"future" default:"ES=F"`
		Index    string `yaml:"index" default:"^GSPC"`
		Period   string `yaml:"period" default:"2d"`
		Interval string `yaml:"interval" default:"1m"`
		Window   int    `yaml:"window" default:"20"`
		Output   string `yaml:"output" default:"index.html"`
	} `yaml:"basis"`
	Analysis struct {
		Ticker      string  `yaml:"ticker" default:"NVDA"`
		Period      string  `yaml:"period" default:"1y"`
		Interval    string  `yaml:"interval" default:"1d"`
		SMAWindows  []int   `yaml:"sma_windows" default:"[55,200]"`
		TrendWindow int     `yaml:"trend_window" default:"55"`
		RSIWindow   int     `yaml:"rsi_window" default:"14"`
		RSIMAWindow int     `yaml:"rsi_ma_window" default:"9"`
		BandK       float64 `yaml:"band_k" default:"1.5"`
		Output      string  `yaml:"output" default:"analysis_%s.html"` // %s is replaced by the ticker
	} `yaml:"analysis"`
	Output struct {
		Dir            string `yaml:"dir" default:"."`
		Format         string `yaml:"format" default:"html"`
		RefreshSeconds int    `yaml:"refresh_seconds" default:"300"`
		Width          int    `yaml:"width" default:"1200"`
		Height         int    `yaml:"height" default:"900"`
		DisplayZone    string `yaml:"display_zone" default:"CET"`

		// DisplayOffset applies when DisplayZone is a bare label such as CET.
		DisplayOffset time.Duration `yaml:"display_offset" default:"1h"`

		GCS struct {
			Enabled         bool   `yaml:"enabled"`
			Bucket          string `yaml:"bucket"`
			Prefix          string `yaml:"prefix"`
			CredentialsFile string `yaml:"credentials_file"`
		} `yaml:"gcs"`
	} `yaml:"output"`
	Cache struct {
		Type  string        `yaml:"type" default:"memory"` // none, memory, redis, layered
		TTL   time.Duration `yaml:"ttl" default:"60s"`
		Redis struct {
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix" default:"cephu"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Backend struct {
		Type string `yaml:"type" default:"none"` // none, kafka, clickhouse, influxdb
	} `yaml:"backend"`
	Kafka struct {
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic" default:"cephu.snapshots"`
		RequiredAcks int           `yaml:"required_acks" default:"-1"`
		Compression  string        `yaml:"compression" default:"gzip"`
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host        string        `yaml:"host"`
		Port        int           `yaml:"port" default:"9000"`
		Database    string        `yaml:"database" default:"cephu"`
		User        string        `yaml:"user" default:"default"`
		Password    string        `yaml:"password"`
		UseHTTP     bool          `yaml:"use_http"`
		AsyncInsert bool          `yaml:"async_insert"`
		DialTimeout time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout time.Duration `yaml:"read_timeout" default:"10s"`
	} `yaml:"clickhouse"`
	InfluxDB struct {
		URL         string `yaml:"url" default:"http://localhost:8086"`
		Token       string `yaml:"token"`
		Org         string `yaml:"org"`
		Bucket      string `yaml:"bucket" default:"cephu"`
		Measurement string `yaml:"measurement" default:"chart_snapshot"`
	} `yaml:"influxdb"`
	Notify struct {
		Telegram struct {
			Enabled bool   `yaml:"enabled"`
			Token   string `yaml:"token"`
			ChatID  int64  `yaml:"chat_id"`
		} `yaml:"telegram"`
		Webhook struct {
			URL     string        `yaml:"url"`
			Timeout time.Duration `yaml:"timeout" default:"5s"`
			Retries int           `yaml:"retries" default:"2"`
		} `yaml:"webhook"`
	} `yaml:"notify"`
}

// Default returns a config with every default applied.
func Default() *Config {
	var c Config
	_ = defaults.Set(&c)
	return &c
}

// Load reads and parses a YAML configuration file on top of the defaults.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	c := Default()
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads .env (if present), the YAML file, and applies
// environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.ApplyEnv(os.Getenv)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// ApplyEnv overrides fields from the environment lookup fn.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("CEPHU_ENV"); v != "" {
		c.Environment = v
	}
	if v := getenv("CEPHU_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := getenv("CEPHU_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Server.Port = n
		}
	}
	if v := getenv("CEPHU_OUTPUT_DIR"); v != "" {
		c.Output.Dir = v
	}
	if v := getenv("CEPHU_BACKEND"); v != "" {
		c.Backend.Type = v
	}
	if v := getenv("CEPHU_CACHE"); v != "" {
		c.Cache.Type = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := getenv("INFLUXDB_TOKEN"); v != "" {
		c.InfluxDB.Token = v
	}
	if v := getenv("GCS_BUCKET"); v != "" {
		c.Output.GCS.Bucket = v
		c.Output.GCS.Enabled = true
	}
	if v := getenv("GOOGLE_APPLICATION_CREDENTIALS"); v != "" && c.Output.GCS.CredentialsFile == "" {
		c.Output.GCS.CredentialsFile = v
	}
	if v := getenv("TELEGRAM_TOKEN"); v != "" {
		c.Notify.Telegram.Token = v
		c.Notify.Telegram.Enabled = true
	}
	if v := getenv("TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Notify.Telegram.ChatID = id
		}
	}
	if v := getenv("WEBHOOK_URL"); v != "" {
		c.Notify.Webhook.URL = v
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Backend.Type {
	case "none", "kafka", "clickhouse", "influxdb":
	default:
		return fmt.Errorf("backend.type must be one of none, kafka, clickhouse, influxdb, got '%s'", c.Backend.Type)
	}
	switch c.Cache.Type {
	case "none", "memory", "redis", "layered":
	default:
		return fmt.Errorf("cache.type must be one of none, memory, redis, layered, got '%s'", c.Cache.Type)
	}
	switch c.Output.Format {
	case "html", "png":
	default:
		return fmt.Errorf("output.format must be html or png, got '%s'", c.Output.Format)
	}
	switch c.Tracing.Exporter {
	case "none", "stdout":
	default:
		return fmt.Errorf("tracing.exporter must be none or stdout, got '%s'", c.Tracing.Exporter)
	}
	if c.Basis.Window < 1 {
		return fmt.Errorf("basis.window must be >= 1")
	}
	if c.Analysis.RSIWindow < 2 || c.Analysis.RSIMAWindow < 2 {
		return fmt.Errorf("analysis.rsi_window and analysis.rsi_ma_window must be >= 2")
	}
	if !strings.Contains(c.Analysis.Output, "%s") {
		return fmt.Errorf("analysis.output must contain %%s for the ticker")
	}
	if c.Backend.Type == "kafka" && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when backend.type is kafka")
	}
	if c.Backend.Type == "clickhouse" && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when backend.type is clickhouse")
	}
	if c.Backend.Type == "influxdb" && (c.InfluxDB.Token == "" || c.InfluxDB.Org == "") {
		return fmt.Errorf("influxdb.token and influxdb.org are required when backend.type is influxdb")
	}
	if c.Output.GCS.Enabled && c.Output.GCS.Bucket == "" {
		return fmt.Errorf("output.gcs.bucket is required when gcs is enabled")
	}
	if c.Notify.Telegram.Enabled && (c.Notify.Telegram.Token == "" || c.Notify.Telegram.ChatID == 0) {
		return fmt.Errorf("notify.telegram needs token and chat_id")
	}
	return nil
}
