package di

import (
	"context"
	"fmt"
	"sync"
	"time"

	"Cephu/internal/domain/models"
	"Cephu/internal/domain/repository"
	domsvc "Cephu/internal/domain/service"
	"Cephu/internal/handler/api"
	"Cephu/internal/middleware"
	"Cephu/internal/notify"
	internalrepo "Cephu/internal/repository"
	icache "Cephu/internal/service/cache"
	chartmetrics "Cephu/internal/service/metrics"
	"Cephu/internal/service/ratelimit"
	"Cephu/internal/service/yahoo"
	"Cephu/internal/services/chart"
	"Cephu/internal/usecase"
	pkgcache "Cephu/pkg/cache"
	pkgch "Cephu/pkg/clickhouse"
	"Cephu/pkg/config"
	"Cephu/pkg/gcs"
	"Cephu/pkg/influx"
	pkgkafka "Cephu/pkg/kafka"
	applogger "Cephu/pkg/logger"
	"Cephu/pkg/metrics"
	"Cephu/pkg/server"
	"Cephu/pkg/util"
)

const (
	initTimeout = 10 * time.Second
	livePath    = "/ws/live"
)

// ProvideLogger builds the root logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// The default registry rejects duplicate collectors, so the recorder is built once per process.
var recorder = sync.OnceValue(metrics.New)

// ProvideMetrics returns the Prometheus recorder, or nil when metrics are disabled.
func ProvideMetrics(cfg *config.Config) repository.Metrics {
	if !cfg.Metrics.Enabled {
		return nil
	}
	return recorder()
}

// ProvideCache creates the shared cache used for bars, rendered charts and signal memory.
func ProvideCache(cfg *config.Config, log *applogger.Logger) (pkgcache.Service, func(), error) {
	var (
		svc pkgcache.Service
		err error
	)
	switch cfg.Cache.Type {
	case "redis", "layered":
		ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
		defer cancel()
		var rc *pkgcache.RedisCache
		rc, err = pkgcache.NewRedisCache(ctx,
			pkgcache.WithRedisAddr(cfg.Cache.Redis.Addr),
			pkgcache.WithRedisPassword(cfg.Cache.Redis.Password),
			pkgcache.WithRedisDB(cfg.Cache.Redis.DB),
			pkgcache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("redis cache: %w", err)
		}
		svc = rc
		if cfg.Cache.Type == "layered" {
			svc = pkgcache.NewLayeredCache(rc, cfg.Cache.TTL)
		}
	default:
		// "none" still needs process memory for render locks and signal state.
		svc = pkgcache.NewMemoryCache()
	}
	log.Info("cache ready", applogger.String("type", cfg.Cache.Type))
	cleanup := func() {
		if err := svc.Close(); err != nil {
			log.Warn("cache close", applogger.Error(err))
		}
	}
	return svc, cleanup, nil
}

// ProvideMarketData creates the Yahoo chart client, fronted by the bar cache unless caching is off.
func ProvideMarketData(cfg *config.Config, cache pkgcache.Service, m repository.Metrics, log *applogger.Logger) repository.MarketData {
	client := yahoo.New(
		yahoo.WithBaseURL(cfg.Yahoo.BaseURL),
		yahoo.WithUserAgent(cfg.Yahoo.UserAgent),
		yahoo.WithTimeout(cfg.Yahoo.Timeout),
		yahoo.WithLimiter(ratelimit.New(cfg.Yahoo.RateLimit, cfg.Yahoo.Burst)),
		yahoo.WithMetrics(m),
	)
	client.SetLogger(log.With("yahoo"))
	if cfg.Cache.Type == "none" || cfg.Cache.TTL <= 0 {
		return client
	}
	md := icache.NewMarketData(client, cache, cfg.Cache.TTL)
	md.SetLogger(log.With("bars_cache"))
	return md
}

// ProvideRenderer creates the chart renderer.
func ProvideRenderer(cfg *config.Config) domsvc.ChartRenderer {
	return chart.NewRenderer(
		chart.WithSize(cfg.Output.Width, cfg.Output.Height),
		chart.WithLocation(util.DisplayLocation(cfg.Output.DisplayZone, cfg.Output.DisplayOffset)),
	)
}

// ProvideArtifactStore writes charts to the output directory and mirrors them to GCS when enabled.
func ProvideArtifactStore(cfg *config.Config, log *applogger.Logger) (repository.ArtifactStore, func(), error) {
	files, err := internalrepo.NewFileStore(cfg.Output.Dir)
	if err != nil {
		return nil, nil, fmt.Errorf("output dir: %w", err)
	}
	if !cfg.Output.GCS.Enabled {
		return files, func() {}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()
	g := cfg.Output.GCS
	client, err := gcs.NewClient(ctx, g.Bucket, g.Prefix, g.CredentialsFile)
	if err != nil {
		return nil, nil, fmt.Errorf("gcs client: %w", err)
	}
	store := internalrepo.NewMultiStore(files, internalrepo.NewGCSStore(client))
	store.SetLogger(log.With("artifacts"))
	cleanup := func() {
		if err := client.Close(); err != nil {
			log.Warn("gcs close", applogger.Error(err))
		}
	}
	return store, cleanup, nil
}

// ProvideSnapshotSink connects the configured snapshot backend.
// Real backends sit behind a buffering pipeline so a short outage does not lose snapshots.
func ProvideSnapshotSink(cfg *config.Config, m repository.Metrics, log *applogger.Logger) (repository.SnapshotSink, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	var (
		sink  repository.SnapshotSink
		extra func() error
	)
	switch cfg.Backend.Type {
	case "kafka":
		producer, err := pkgkafka.NewProducer(
			pkgkafka.WithBrokers(cfg.Kafka.Brokers),
			pkgkafka.WithCompression(cfg.Kafka.Compression),
			pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
			pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
			pkgkafka.WithWriteTimeout(cfg.Kafka.WriteTimeout),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("kafka producer: %w", err)
		}
		sink = internalrepo.NewKafkaSnapshotPublisher(producer, cfg.Kafka.Topic)
	case "clickhouse":
		client, err := pkgch.NewClient(ctx,
			pkgch.WithHost(cfg.ClickHouse.Host),
			pkgch.WithPort(cfg.ClickHouse.Port),
			pkgch.WithDatabase(cfg.ClickHouse.Database),
			pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
			pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
			pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
			pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("clickhouse client: %w", err)
		}
		store, err := internalrepo.NewCHSnapshotStore(ctx, client, true)
		if err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
		}
		store.SetLogger(log.With("clickhouse"))
		sink, extra = store, client.Close
	case "influxdb":
		client, err := influx.NewClient(ctx, cfg.InfluxDB.URL, cfg.InfluxDB.Token, cfg.InfluxDB.Org, cfg.InfluxDB.Bucket)
		if err != nil {
			return nil, nil, fmt.Errorf("influxdb client: %w", err)
		}
		sink = internalrepo.NewInfluxSnapshotStore(client, cfg.InfluxDB.Measurement)
	default:
		sink = internalrepo.NopSink{}
	}
	if cfg.Backend.Type != "none" {
		pipe := middleware.NewSnapshotPipeline(sink, m, middleware.WithLogger(log.With("snapshot_pipeline")))
		pipe.Start(context.Background())
		sink = pipe
	}

	log.Info("snapshot backend ready", applogger.String("backend", cfg.Backend.Type))
	cleanup := func() {
		if err := sink.Close(); err != nil {
			log.Warn("snapshot sink close", applogger.Error(err))
		}
		if extra != nil {
			if err := extra(); err != nil {
				log.Warn("snapshot client close", applogger.Error(err))
			}
		}
	}
	return sink, cleanup, nil
}

// ProvideSnapshotProcessor creates the snapshot use case.
func ProvideSnapshotProcessor(sink repository.SnapshotSink, m repository.Metrics, cfg *config.Config, log *applogger.Logger) *usecase.SnapshotProcessor {
	p := usecase.NewSnapshotProcessor(sink, m, cfg.Backend.Type)
	p.SetLogger(log.With("snapshots"))
	return p
}

// ProvideNotifier combines the configured channels. Nil means notifications are off.
func ProvideNotifier(cfg *config.Config, log *applogger.Logger) (repository.Notifier, error) {
	var channels []repository.Notifier
	if tg := cfg.Notify.Telegram; tg.Enabled {
		t, err := notify.NewTelegram(tg.Token, tg.ChatID)
		if err != nil {
			return nil, fmt.Errorf("telegram: %w", err)
		}
		channels = append(channels, t)
	}
	if wh := cfg.Notify.Webhook; wh.URL != "" {
		channels = append(channels, notify.NewWebhook(wh.URL, wh.Timeout, notify.WithRetries(wh.Retries)))
	}
	if len(channels) == 0 {
		return nil, nil
	}
	m := notify.NewMulti(channels...)
	m.SetLogger(log.With("notify"))
	return m, nil
}

// ProvideLiveHub creates the websocket hub that tells open pages to reload.
func ProvideLiveHub(log *applogger.Logger) (*api.LiveHub, func()) {
	hub := api.NewLiveHub(log.With("live"))
	return hub, func() { _ = hub.Close() }
}

// ProvideBasisUseCase creates the basis report use case.
func ProvideBasisUseCase(md repository.MarketData, m repository.Metrics, log *applogger.Logger) *usecase.BasisReportUseCase {
	uc := usecase.NewBasisReportUseCase(md, m)
	uc.SetLogger(log.With("basis"))
	return uc
}

// ProvideAnalysisUseCase creates the technical analysis use case.
func ProvideAnalysisUseCase(md repository.MarketData, m repository.Metrics, log *applogger.Logger) *usecase.AnalysisReportUseCase {
	uc := usecase.NewAnalysisReportUseCase(md, m)
	uc.SetLogger(log.With("analysis"))
	return uc
}

// ProvideChartPublisher creates the publisher shared by the CLI and the HTTP handlers.
func ProvideChartPublisher(
	cfg *config.Config,
	renderer domsvc.ChartRenderer,
	store repository.ArtifactStore,
	snapshots *usecase.SnapshotProcessor,
	notifier repository.Notifier,
	cache pkgcache.Service,
	m repository.Metrics,
	hub *api.LiveHub,
	log *applogger.Logger,
) *usecase.ChartPublisher {
	opts := []usecase.PublisherOption{usecase.WithRefresh(cfg.Output.RefreshSeconds)}
	if cfg.Server.LiveReload {
		opts = append(opts, usecase.WithLiveReload(livePath), usecase.WithAnnouncer(hub))
	}
	p := usecase.NewChartPublisher(renderer, store, snapshots, notifier, cache, m, opts...)
	p.SetLogger(log.With("publisher"))
	return p
}

// ProvideChartsHandler creates the HTTP chart endpoints.
func ProvideChartsHandler(
	cfg *config.Config,
	basis *usecase.BasisReportUseCase,
	analysis *usecase.AnalysisReportUseCase,
	pub *usecase.ChartPublisher,
	cache pkgcache.Service,
	log *applogger.Logger,
) *api.ChartsEchoHandler {
	if cfg.Metrics.Enabled {
		chartmetrics.Register()
	}
	return api.NewChartsEchoHandler(log.With("charts"), basis, analysis, pub, cache, cfg.Server.RenderTTL, IndicatorParams(cfg))
}

// ProvideApp assembles the application.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	basis *usecase.BasisReportUseCase,
	analysis *usecase.AnalysisReportUseCase,
	pub *usecase.ChartPublisher,
	charts *api.ChartsEchoHandler,
	hub *api.LiveHub,
) *server.App {
	return server.New(cfg, log, basis, analysis, pub, charts, hub)
}

// IndicatorParams maps the analysis section of the config onto indicator settings.
func IndicatorParams(cfg *config.Config) models.IndicatorParams {
	a := cfg.Analysis
	return models.IndicatorParams{
		SMAWindows:  append([]int(nil), a.SMAWindows...),
		TrendWindow: a.TrendWindow,
		RSIWindow:   a.RSIWindow,
		RSIMAWindow: a.RSIMAWindow,
		BandK:       a.BandK,
	}
}
