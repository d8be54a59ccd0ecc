/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"agrimaint/internal/bootstrap/logging"
	"agrimaint/internal/errs"
	"agrimaint/internal/usecase/pipeline"
)

var trainHorizonDays int

// modelsCmd groups the model management subcommands
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Train and inspect the prediction models",
}

var modelsTrainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the ensemble on historical snapshots",
	RunE: withApp(func(cmd *cobra.Command, svc *services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))
		logging.Info(ctx, "start model training")

		result, err := svc.pipeline.TrainModels(ctx, pipeline.TrainModelsInput{HorizonDays: trainHorizonDays})
		if err != nil {
			logging.Error(ctx, "model training failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "train models")
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "train rows:          %d\n", result.TrainRows)
		fmt.Fprintf(out, "holdout rows:        %d\n", result.TestRows)
		fmt.Fprintf(out, "classifier accuracy: %.3f\n", result.ClassifierAccuracy)
		fmt.Fprintf(out, "regressor MAE:       %.1f days\n", result.RegressorMAE)
		return nil
	}),
}

var modelsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show stored model artifacts",
	RunE: withApp(func(cmd *cobra.Command, svc *services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		out := cmd.OutOrStdout()
		for _, name := range []string{"failure_classifier", "rul_regressor", "anomaly_detector"} {
			trainedAt, found, err := svc.models.TrainedAt(ctx, name)
			if err != nil {
				return errs.Wrapf(err, "inspect %s", name)
			}
			if !found {
				fmt.Fprintf(out, "%-20s not trained\n", name)
				continue
			}
			fmt.Fprintf(out, "%-20s trained at %s\n", name, trainedAt)
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.AddCommand(modelsTrainCmd)
	modelsCmd.AddCommand(modelsShowCmd)

	modelsTrainCmd.Flags().IntVar(&trainHorizonDays, "horizon-days", 0, "Label horizon in days (defaults to pipeline.failure_horizon_days)")
}
