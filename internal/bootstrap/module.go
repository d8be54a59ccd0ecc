package bootstrap

import (
	"context"
	"log/slog"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"agrimaint/internal/bootstrap/config"
	"agrimaint/internal/bootstrap/database"
	"agrimaint/internal/bootstrap/logging"
	"agrimaint/internal/infrastructure/modelstore"
	sqliterepo "agrimaint/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "agrimaint/internal/infrastructure/persistence/sqlite/uow"
	"agrimaint/internal/ports"
	"agrimaint/internal/sensorspec"
	"agrimaint/internal/usecase/fleet"
	"agrimaint/internal/usecase/pipeline"
	"agrimaint/internal/usecase/seed"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewFleetRepository,
			fx.As(new(ports.FleetRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(
		fx.Annotate(
			modelstore.NewSQLiteStore,
			fx.As(new(ports.ModelStore)),
		),
	),
	fx.Provide(provideSensorProfile),
	fx.Provide(providePipelineService),
	fx.Provide(fleet.NewService),
	fx.Provide(seed.NewService),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}

// provideSensorProfile loads the channel spec file; a missing file falls
// back to the built-in profile so commands stay usable on a fresh checkout.
func provideSensorProfile(ctx context.Context, cfg config.Config) (sensorspec.Profile, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	profile, err := sensorspec.Load(cfg.Pipeline.SensorSpecFile)
	if err != nil {
		logging.Warn(logCtx, "sensor spec file not usable, using built-in profile",
			slog.String("path", cfg.Pipeline.SensorSpecFile),
			slog.String("error", err.Error()),
		)
		return sensorspec.Default(), nil
	}
	return profile, nil
}

func providePipelineService(repo ports.FleetRepository, uow ports.UnitOfWork, models ports.ModelStore, profile sensorspec.Profile, cfg config.Config) *pipeline.Service {
	return pipeline.NewService(repo, uow, models, profile, pipeline.Params{
		LookbackDays:       cfg.Pipeline.LookbackDays,
		FailureHorizonDays: cfg.Pipeline.FailureHorizonDays,
	})
}
