//go:build wireinject
// +build wireinject

package di

import (
	"CoinScope/pkg/config"
	"CoinScope/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideRegistry,
		ProvideMetrics,

		// Data
		ProvideSeriesSource,
		ProvideSeriesStore,

		// Use cases
		ProvideAnalyzer,
		ProvideReloader,

		// Presentation
		ProvidePlotter,
		ProvideMenu,
		ProvideCache,
		ProvideAnalysisHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return nil, nil, nil
}
