/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"agrimaint/internal/bootstrap/logging"
	"agrimaint/internal/errs"
	"agrimaint/internal/usecase/pipeline"
)

var (
	pipelineWindowDays int
	pipelineRunID      string
)

// pipelineCmd groups the batch stage subcommands
var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Run the batch pipeline or its individual stages",
}

func stageWindow() (since, until time.Time) {
	until = time.Now().UTC()
	since = until.AddDate(0, 0, -pipelineWindowDays)
	return since, until
}

func stageRunID() string {
	if pipelineRunID != "" {
		return pipelineRunID
	}
	return fmt.Sprintf("manual-%d", time.Now().UTC().UnixNano())
}

var pipelineCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean raw sensor readings in the lookback window",
	RunE: withApp(func(cmd *cobra.Command, svc *services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		since, until := stageWindow()
		report, err := svc.pipeline.CleanWindow(ctx, pipeline.CleanWindowInput{
			Since: since,
			Until: until,
			RunID: stageRunID(),
		})
		if err != nil {
			logging.Error(ctx, "clean stage failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "clean window")
		}

		fmt.Fprint(cmd.OutOrStdout(), report.String())
		return nil
	}),
}

var pipelineFeaturesCmd = &cobra.Command{
	Use:   "features",
	Short: "Build the per-equipment feature table",
	RunE: withApp(func(cmd *cobra.Command, svc *services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		result, err := svc.pipeline.BuildFeatures(ctx, pipeline.BuildFeaturesInput{RunID: stageRunID()})
		if err != nil {
			logging.Error(ctx, "features stage failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "build features")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "feature rows: %d (run %s)\n", result.Rows, result.RunID)
		return nil
	}),
}

var pipelinePredictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Score feature rows with the ensemble",
	RunE: withApp(func(cmd *cobra.Command, svc *services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		if pipelineRunID == "" {
			return fmt.Errorf("--run-id is required for predict")
		}
		result, err := svc.pipeline.Predict(ctx, pipeline.PredictInput{RunID: pipelineRunID})
		if err != nil {
			logging.Error(ctx, "predict stage failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "predict")
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "predictions: %d (run %s)\n", result.Predictions, result.RunID)
		if result.Degraded {
			fmt.Fprintf(out, "degraded: %s\n", result.Reason)
		}
		return nil
	}),
}

var pipelineDecideCmd = &cobra.Command{
	Use:   "decide",
	Short: "Turn predictions into recommendations, schedule and KPIs",
	RunE: withApp(func(cmd *cobra.Command, svc *services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		if pipelineRunID == "" {
			return fmt.Errorf("--run-id is required for decide")
		}
		result, err := svc.pipeline.Decide(ctx, pipeline.DecideInput{RunID: pipelineRunID})
		if err != nil {
			logging.Error(ctx, "decide stage failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "decide")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "recommendations: %d, schedule tasks: %d (run %s)\n",
			result.Recommendations, result.ScheduleTasks, result.RunID)
		return nil
	}),
}

var pipelineRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run all stages end to end",
	RunE: withApp(func(cmd *cobra.Command, svc *services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		since, until := stageWindow()
		result, err := svc.pipeline.Run(ctx, pipeline.RunInput{Since: since, Until: until})
		if err != nil {
			logging.Error(ctx, "pipeline run failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "run pipeline")
		}

		fmt.Fprint(cmd.OutOrStdout(), result.Summary())
		return nil
	}),
}

var pipelineReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show the report of the latest finished run",
	RunE: withApp(func(cmd *cobra.Command, svc *services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		result, err := svc.pipeline.LatestReport(ctx)
		if err != nil {
			logging.Error(ctx, "report failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "load latest report")
		}

		fmt.Fprint(cmd.OutOrStdout(), result.Summary())
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(pipelineCmd)
	pipelineCmd.AddCommand(pipelineCleanCmd)
	pipelineCmd.AddCommand(pipelineFeaturesCmd)
	pipelineCmd.AddCommand(pipelinePredictCmd)
	pipelineCmd.AddCommand(pipelineDecideCmd)
	pipelineCmd.AddCommand(pipelineRunCmd)
	pipelineCmd.AddCommand(pipelineReportCmd)

	pipelineCmd.PersistentFlags().IntVar(&pipelineWindowDays, "window-days", 30, "Lookback window in days for clean/run")
	pipelineCmd.PersistentFlags().StringVar(&pipelineRunID, "run-id", "", "Run id to tag or resume; stage commands that read prior output require it")
}
