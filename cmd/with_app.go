package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"agrimaint/internal/bootstrap"
	"agrimaint/internal/bootstrap/logging"
	"agrimaint/internal/errs"
	"agrimaint/internal/ports"
	"agrimaint/internal/usecase/fleet"
	"agrimaint/internal/usecase/pipeline"
	"agrimaint/internal/usecase/seed"
)

// services bundles everything a command may need from the container.
type services struct {
	app      *bootstrap.App
	pipeline *pipeline.Service
	fleet    *fleet.Service
	seed     *seed.Service
	models   ports.ModelStore
}

func withApp(run func(cmd *cobra.Command, svc *services) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := logging.WithAttrs(
			cmd.Context(),
			slog.String("command", cmd.CommandPath()),
			slog.String("config_file", cfgFile),
		)

		svc := &services{}
		fxApp := fx.New(
			bootstrap.Module,
			fx.Provide(func() context.Context { return ctx }),
			fx.Provide(
				fx.Annotate(
					func() string { return cfgFile },
					fx.ResultTags(`name:"configFile"`),
				),
			),
			fx.Populate(&svc.app, &svc.pipeline, &svc.fleet, &svc.seed, &svc.models),
		)

		startCtx, cancelStart := context.WithTimeout(ctx, 10*time.Second)
		defer cancelStart()
		if err := fxApp.Start(startCtx); err != nil {
			logging.Error(ctx, "bootstrap application failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "start fx application")
		}

		defer func() {
			stopCtx, cancelStop := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancelStop()
			if err := fxApp.Stop(stopCtx); err != nil {
				logging.Error(ctx, "fx application stop failed", slog.Any("err", errs.Loggable(err)))
			}
		}()

		if err := run(cmd, svc); err != nil {
			return errs.Wrap(err, "run command")
		}
		return nil
	}
}
