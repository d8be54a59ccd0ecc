/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"agrimaint/internal/bootstrap/logging"
	"agrimaint/internal/errs"
	"agrimaint/internal/usecase/pipeline"
)

var watchCron string

// pipelineWatchCmd represents the pipeline watch command
var pipelineWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the pipeline on a cron schedule",
	RunE: withApp(func(cmd *cobra.Command, svc *services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		// inFlight skips a tick while the previous run is still going.
		var inFlight sync.Mutex

		scheduler := cron.New()
		_, err := scheduler.AddFunc(watchCron, func() {
			if !inFlight.TryLock() {
				logging.Warn(ctx, "previous pipeline run still in flight, skipping tick")
				return
			}
			defer inFlight.Unlock()

			since, until := stageWindow()
			result, err := svc.pipeline.Run(ctx, pipeline.RunInput{Since: since, Until: until})
			if err != nil {
				logging.Error(ctx, "scheduled pipeline run failed", slog.Any("err", errs.Loggable(err)))
				return
			}
			logging.Info(ctx, "scheduled pipeline run finished",
				slog.String("run_id", result.RunID),
				slog.String("status", string(result.Status)),
			)
		})
		if err != nil {
			return errs.Wrap(err, "parse cron expression")
		}

		scheduler.Start()
		fmt.Fprintf(cmd.OutOrStdout(), "watching with schedule %q\n", watchCron)

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-shutdown:
			logging.Info(ctx, "stopping watcher", slog.String("signal", sig.String()))
		case <-ctx.Done():
			logging.Info(ctx, "stopping watcher", slog.String("reason", "context canceled"))
		}

		stopCtx := scheduler.Stop()
		select {
		case <-stopCtx.Done():
		case <-time.After(time.Minute):
			logging.Warn(ctx, "watcher stop timed out with a run in flight")
		}
		return nil
	}),
}

func init() {
	pipelineCmd.AddCommand(pipelineWatchCmd)

	pipelineWatchCmd.Flags().StringVar(&watchCron, "cron", "@hourly", "Cron expression for scheduled runs")
}
