//go:build wireinject
// +build wireinject

package di

import (
	"GridCast/pkg/config"
	"GridCast/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Logging and metrics
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideCache,

		// Repositories
		ProvideObservationStore,
		ProvideReadingPublisher,
		ProvideMeterStream,

		// Forecast engine
		ProvideEngine,

		// Use cases
		ProvideReadingProcessor,
		ProvideReadingCollector,
		ProvideKafkaReadingsHandler,
		ProvideForecastUseCase,
		ProvideAlertsUseCase,
		ProvideHistoricalUseCase,
		ProvidePerformanceUseCase,

		// HTTP handler
		ProvideForecastHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
