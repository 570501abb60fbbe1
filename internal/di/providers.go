package di

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"GridCast/internal/artifacts"
	"GridCast/internal/domain/repository"
	domservice "GridCast/internal/domain/service"
	"GridCast/internal/forecast"
	"GridCast/internal/handler/api"
	mid "GridCast/internal/middleware"
	internalrepo "GridCast/internal/repository"
	"GridCast/internal/service/meterstream"
	svcmodels "GridCast/internal/services/models"
	"GridCast/internal/usecase"
	"GridCast/pkg/cache"
	pkgch "GridCast/pkg/clickhouse"
	"GridCast/pkg/config"
	pkgkafka "GridCast/pkg/kafka"
	applogger "GridCast/pkg/logger"
	"GridCast/pkg/metrics"
	"GridCast/pkg/server"
)

// ProvideLogger creates the application logger. Production runs emit
// JSON, everything else gets the console writer.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	format := "console"
	if cfg.Environment == "production" {
		format = "json"
	}
	return applogger.New(&applogger.Config{Level: "info", Format: format, Output: "stdout"})
}

// ProvideClickHouseClient creates a ClickHouse client and prepares the
// readings schema.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := cfg.ClickHouse.Database
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + db,
		"CREATE TABLE IF NOT EXISTS " + db + ".power_readings (" +
			"ts DateTime, meter String, " +
			"phase2_current Float64, phase2_voltage Float64, " +
			"phase3_frequency Float64, phase3_pf Float64, phase3_power Float64, phase3_voltage Float64" +
			") ENGINE=MergeTree ORDER BY (meter, ts)",
	}); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer. Keyed by meter so each
// meter's readings stay ordered within a partition.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideObservationStore creates ClickHouse observation storage.
func ProvideObservationStore(chClient *pkgch.Client, cfg *config.Config) repository.ObservationStore {
	return internalrepo.NewClickHouseObservationStore(
		chClient.DB(),
		cfg.ClickHouse.Database+".power_readings",
		defaultMeter(cfg),
	)
}

// ProvideReadingPublisher creates the Kafka publisher for raw readings.
func ProvideReadingPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.ReadingsTopic)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaReadingsHandler registers the handler for the readings topic.
func ProvideKafkaReadingsHandler(store repository.ObservationStore, metrics repository.Metrics, cfg *config.Config) *usecase.KafkaReadingsHandler {
	return usecase.NewKafkaReadingsHandler(cfg.Kafka.ReadingsTopic, store, metrics)
}

// ProvideMeterStream creates the meter gateway WebSocket stream.
func ProvideMeterStream(cfg *config.Config) repository.MeterStream {
	return meterstream.New(
		cfg.Meter.APIKey,
		cfg.Meter.GatewayURL,
		cfg.Meter.Devices,
		cfg.Meter.ReconnectDelay,
		cfg.Meter.PingInterval,
	)
}

// ProvideReadingProcessor creates the reading processor use case.
func ProvideReadingProcessor(
	pub repository.Publisher,
	store repository.ObservationStore,
	metrics repository.Metrics,
	cfg *config.Config,
) *usecase.ReadingProcessor {
	return usecase.NewReadingProcessor(
		pub,
		store,
		metrics,
		cfg.Backend.Type,
		cfg.Backend.BatchSize,
		cfg.Backend.BatchTimeout,
	)
}

// ProvideReadingCollector creates the reading collector use case.
func ProvideReadingCollector(
	stream repository.MeterStream,
	processor *usecase.ReadingProcessor,
	metrics repository.Metrics,
) *usecase.ReadingCollector {
	// Build middleware pipeline between WebSocket and the backend
	pipe := mid.NewIngestPipeline(processor, metrics,
		mid.WithMaxRPS(20),
		mid.WithBufferSize(1000),
	)
	return usecase.NewReadingCollector(stream, processor, metrics, pipe)
}

// ProvideCache creates the forecast result cache. Returns nil when
// Redis is disabled; the forecast usecase treats a nil cache as a
// compute-every-time setup.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Forecast.Redis.Enabled {
		return nil, nil
	}
	redisCache, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Forecast.Redis.Host),
		cache.WithRedisPort(cfg.Forecast.Redis.Port),
		cache.WithRedisPassword(cfg.Forecast.Redis.Password),
		cache.WithRedisDB(cfg.Forecast.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return cache.NewLayeredCache(redisCache), nil
}

// ProvideEngine builds the forecast engine with the configured model
// backend. "local" loads the full artifact bundle from disk; "http"
// calls out to the model service and only loads the scaler locally.
func ProvideEngine(cfg *config.Config) (*forecast.Engine, error) {
	var (
		tree   domservice.TreePredictor
		seq    domservice.SequencePredictor
		fuser  domservice.Fuser
		scaler domservice.Scaler
	)

	switch cfg.Forecast.Backend {
	case "local":
		bundle, err := artifacts.LoadBundle(cfg.Forecast.ModelDir)
		if err != nil {
			return nil, fmt.Errorf("model bundle: %w", err)
		}
		tree, seq, fuser, scaler = bundle.Tree, bundle.Seq, bundle.Fusion, bundle.Scaler
	case "http":
		sc, err := artifacts.LoadScaler(filepath.Join(cfg.Forecast.ModelDir, artifacts.ScalerFile))
		if err != nil {
			return nil, fmt.Errorf("scaler artifact: %w", err)
		}
		tree = svcmodels.NewHTTPTreePredictor(cfg)
		seq = svcmodels.NewHTTPSequencePredictor(cfg)
		fuser = svcmodels.NewHTTPFuser(cfg)
		scaler = sc
	default:
		return nil, fmt.Errorf("unknown forecast backend: %s", cfg.Forecast.Backend)
	}

	return forecast.NewEngine(tree, seq, fuser, scaler,
		forecast.WithHorizon(cfg.Forecast.Horizon),
	)
}

// ProvideForecastUseCase creates the forecast use case.
func ProvideForecastUseCase(
	store repository.ObservationStore,
	engine *forecast.Engine,
	c cache.Service,
	metrics repository.Metrics,
	logger *applogger.Logger,
	cfg *config.Config,
) *usecase.ForecastUseCase {
	return usecase.NewForecastUseCase(store, engine, c, metrics, logger, cfg.Forecast.CacheTTL)
}

// ProvideAlertsUseCase creates the alerts use case.
func ProvideAlertsUseCase(
	forecasts *usecase.ForecastUseCase,
	producer *pkgkafka.Producer,
	metrics repository.Metrics,
	logger *applogger.Logger,
	cfg *config.Config,
) *usecase.AlertsUseCase {
	return usecase.NewAlertsUseCase(forecasts, producer, cfg.Kafka.AlertsTopic, metrics, logger, cfg.Forecast.CriticalLoad)
}

// ProvideHistoricalUseCase creates the historical data use case.
func ProvideHistoricalUseCase(store repository.ObservationStore) *usecase.HistoricalUseCase {
	return usecase.NewHistoricalUseCase(store)
}

// ProvidePerformanceUseCase creates the model performance use case.
func ProvidePerformanceUseCase() *usecase.PerformanceUseCase {
	return usecase.NewPerformanceUseCase()
}

// ProvideForecastHandler creates the HTTP API handler.
func ProvideForecastHandler(
	logger *applogger.Logger,
	forecasts *usecase.ForecastUseCase,
	alerts *usecase.AlertsUseCase,
	historical *usecase.HistoricalUseCase,
	performance *usecase.PerformanceUseCase,
) *api.ForecastHandler {
	return api.NewForecastHandler(logger, forecasts, alerts, historical, performance)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	logger *applogger.Logger,
	collector *usecase.ReadingCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaReadingsHandler,
	chClient *pkgch.Client,
	producer *pkgkafka.Producer,
	handler *api.ForecastHandler,
	forecasts *usecase.ForecastUseCase,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	app := server.New(cfg, logger, collector, consumer, kh, chClient, producer, handler, forecasts)
	if collector != nil {
		app.ReadingProc = collector.Processor()
	}
	return app
}

func defaultMeter(cfg *config.Config) string {
	if len(cfg.Meter.Devices) > 0 {
		return cfg.Meter.Devices[0]
	}
	return "main"
}
