//go:build wireinject
// +build wireinject

package di

import (
	"nena/internal"
	"nena/internal/controllers"
	"nena/internal/generation"
	"nena/internal/persistence"
	"nena/internal/providers"
	"nena/internal/services"
	"nena/internal/store"
	"nena/internal/structures"
	"nena/internal/transcription"

	wire "github.com/google/wire"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		store.NewRecordStore,
		transcription.NewTranscriber,
		generation.NewGenerator,

		services.NewUserLocks,
		services.NewAnalyticsService,
		services.NewBadgeService,
		services.NewCoachService,
		services.NewCoachingQueue,
		services.NewRecordingService,
		services.NewDashboardService,

		persistence.NewZstdCompressor,
		persistence.NewSnapshotFileManager,
		NewReconciler,
		persistence.NewScheduler,

		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
