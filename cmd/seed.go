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
	"agrimaint/internal/usecase/seed"
)

var (
	seedSeed           int64
	seedFleetSize      int
	seedDays           int
	seedReadingsPerDay int
	seedCSVDir         string
)

// seedCmd represents the seed command
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate a synthetic fleet with dirty sensor data",
	RunE: withApp(func(cmd *cobra.Command, svc *services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))
		logging.Info(ctx, "start seed", slog.Int64("seed", seedSeed))

		result, err := svc.seed.Run(ctx, seed.Input{
			Seed:           seedSeed,
			FleetSize:      seedFleetSize,
			Days:           seedDays,
			ReadingsPerDay: seedReadingsPerDay,
			CSVDir:         seedCSVDir,
		})
		if err != nil {
			logging.Error(ctx, "seed failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "seed fleet")
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "equipment:           %d\n", result.Equipment)
		fmt.Fprintf(out, "maintenance records: %d\n", result.MaintenanceRecords)
		fmt.Fprintf(out, "failure events:      %d\n", result.FailureEvents)
		fmt.Fprintf(out, "raw readings:        %d\n", result.RawReadings)
		for _, file := range result.CSVFiles {
			fmt.Fprintf(out, "csv: %s\n", file)
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().Int64Var(&seedSeed, "seed", 42, "Random seed; same seed yields the same fleet")
	seedCmd.Flags().IntVar(&seedFleetSize, "fleet", 30, "Number of equipment to generate")
	seedCmd.Flags().IntVar(&seedDays, "days", 90, "Days of sensor history")
	seedCmd.Flags().IntVar(&seedReadingsPerDay, "readings-per-day", 8, "Sensor readings per equipment per day")
	seedCmd.Flags().StringVar(&seedCSVDir, "csv-dir", "", "Also export the generated tables as CSV files into this directory")
}
