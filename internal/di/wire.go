//go:build wireinject
// +build wireinject

package di

import (
	"Cephu/pkg/config"
	"Cephu/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,
		ProvideCache,

		// Infrastructure clients
		ProvideMarketData,
		ProvideRenderer,
		ProvideArtifactStore,
		ProvideSnapshotSink,
		ProvideNotifier,
		ProvideLiveHub,

		// Use cases
		ProvideSnapshotProcessor,
		ProvideBasisUseCase,
		ProvideAnalysisUseCase,
		ProvideChartPublisher,

		// Application server
		ProvideChartsHandler,
		ProvideApp,
	)
	return nil, nil, nil
}
