package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"agrimaint/internal/bootstrap/logging"
	"agrimaint/internal/errs"
	"agrimaint/internal/ports"
)

const (
	oldEquipmentYears  = 3.0
	serviceOverdueDays = 90.0
	highVibrationLevel = 8.0
)

type BuildFeaturesInput struct {
	RunID        string
	AsOf         time.Time
	LookbackDays int
}

type BuildFeaturesResult struct {
	RunID string
	Rows  int
}

// BuildFeatures recomputes the full feature table: one wide row per
// equipment, aggregated from metadata, maintenance/failure history and
// cleaned sensor readings over the lookback window. Missing aggregates stay
// zero-valued.
func (s *Service) BuildFeatures(ctx context.Context, in BuildFeaturesInput) (BuildFeaturesResult, error) {
	if ctx == nil {
		return BuildFeaturesResult{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return BuildFeaturesResult{}, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return BuildFeaturesResult{}, errors.New("fleet repository is required")
	}
	if s.uow == nil {
		return BuildFeaturesResult{}, errors.New("unit of work is required")
	}
	if strings.TrimSpace(in.RunID) == "" {
		return BuildFeaturesResult{}, errors.New("run id is required")
	}
	if in.AsOf.IsZero() {
		in.AsOf = s.now()
	}
	if in.LookbackDays <= 0 {
		in.LookbackDays = s.params.LookbackDays
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "pipeline.features"), slog.String("run_id", in.RunID))

	equipment, err := s.repo.ListEquipment(ctx)
	if err != nil {
		return BuildFeaturesResult{}, errs.Wrap(err, "list equipment")
	}

	rows := make([]ports.FeatureRow, 0, len(equipment))
	for _, item := range equipment {
		row, err := s.buildFeatureRow(ctx, item, in)
		if err != nil {
			return BuildFeaturesResult{}, errs.Wrapf(err, "build features for equipment %d", item.EquipmentID)
		}
		rows = append(rows, row)
	}

	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		return s.repo.ReplaceFeatureRows(txCtx, in.RunID, rows)
	}); err != nil {
		return BuildFeaturesResult{}, errs.Wrap(err, "replace feature rows")
	}

	logging.Info(logCtx, "feature table rebuilt", slog.Int("rows", len(rows)))
	return BuildFeaturesResult{RunID: in.RunID, Rows: len(rows)}, nil
}

func (s *Service) buildFeatureRow(ctx context.Context, equipment ports.Equipment, in BuildFeaturesInput) (ports.FeatureRow, error) {
	row := ports.FeatureRow{
		EquipmentID: equipment.EquipmentID,
		RunID:       in.RunID,
		ComputedAt:  formatTime(in.AsOf),
	}

	if purchased, err := parseTime(equipment.PurchaseDate); err == nil && in.AsOf.After(purchased) {
		row.AgeYears = in.AsOf.Sub(purchased).Hours() / 24 / 365.25
		if row.AgeYears > 0 {
			row.UsageRatio = equipment.OperatingHours / row.AgeYears
		}
	}
	if row.AgeYears > oldEquipmentYears {
		row.IsOld = 1
	}
	if equipment.LastServiceDate != nil {
		if serviced, err := parseTime(*equipment.LastServiceDate); err == nil && in.AsOf.After(serviced) {
			row.DaysSinceService = in.AsOf.Sub(serviced).Hours() / 24
		}
	} else {
		row.DaysSinceService = row.AgeYears * 365.25
	}
	if row.DaysSinceService > serviceOverdueDays {
		row.NeedsMaintenance = 1
	}

	maintenance, err := s.repo.ListMaintenanceRecords(ctx, equipment.EquipmentID)
	if err != nil {
		return ports.FeatureRow{}, errs.Wrap(err, "list maintenance records")
	}
	preventive := 0
	for _, record := range maintenance {
		performedAt, err := parseTime(record.PerformedAt)
		if err != nil || performedAt.After(in.AsOf) {
			continue
		}
		row.MaintenanceCount++
		row.MaintenanceCostSum += record.Cost
		if record.MaintenanceType == "preventive" {
			preventive++
		}
	}
	if row.MaintenanceCount > 0 {
		row.MaintenanceCostMean = row.MaintenanceCostSum / row.MaintenanceCount
		row.PreventiveRatio = float64(preventive) / row.MaintenanceCount
	}

	failures, err := s.repo.ListFailureEvents(ctx, equipment.EquipmentID)
	if err != nil {
		return ports.FeatureRow{}, errs.Wrap(err, "list failure events")
	}
	var first, last time.Time
	for _, event := range failures {
		occurredAt, err := parseTime(event.OccurredAt)
		if err != nil || occurredAt.After(in.AsOf) {
			continue
		}
		row.FailureCount++
		row.DowntimeHoursSum += event.DowntimeHours
		if first.IsZero() || occurredAt.Before(first) {
			first = occurredAt
		}
		if occurredAt.After(last) {
			last = occurredAt
		}
	}
	// Naive MTBF: observed date range over the gap count; zero when there is
	// at most one failure to learn from.
	if row.FailureCount > 1 {
		row.MTBFDays = last.Sub(first).Hours() / 24 / (row.FailureCount - 1)
	}

	since := in.AsOf.AddDate(0, 0, -in.LookbackDays)
	readings, err := s.repo.ListCleanReadings(ctx, equipment.EquipmentID, ports.ReadingWindow{
		Since: formatTime(since),
		Until: formatTime(in.AsOf),
	})
	if err != nil {
		return ports.FeatureRow{}, errs.Wrap(err, "list clean readings")
	}

	row.EngineTemp = sensorStats(readings, func(r ports.CleanReading) float64 { return r.EngineTemp })
	row.OilPressure = sensorStats(readings, func(r ports.CleanReading) float64 { return r.OilPressure })
	row.Vibration = sensorStats(readings, func(r ports.CleanReading) float64 { return r.Vibration })
	row.RPM = sensorStats(readings, func(r ports.CleanReading) float64 { return r.RPM })
	row.FuelRate = sensorStats(readings, func(r ports.CleanReading) float64 { return r.FuelRate })

	if row.RPM.Mean > 0 {
		row.TempPerThousandRPM = row.EngineTemp.Mean / (row.RPM.Mean / 1000.0)
	}
	if row.Vibration.Mean > highVibrationLevel {
		row.HighVibration = 1
	}

	return row, nil
}

// sensorStats aggregates one channel; the trend is sign-only, taken from the
// first-to-last delta over the window.
func sensorStats(readings []ports.CleanReading, pick func(ports.CleanReading) float64) ports.SensorStats {
	if len(readings) == 0 {
		return ports.SensorStats{}
	}

	values := make([]float64, len(readings))
	for i, reading := range readings {
		values[i] = pick(reading)
	}

	stats := ports.SensorStats{
		Min:    values[0],
		Max:    values[0],
		Latest: values[len(values)-1],
	}
	for _, v := range values {
		if v < stats.Min {
			stats.Min = v
		}
		if v > stats.Max {
			stats.Max = v
		}
	}
	stats.Mean = stat.Mean(values, nil)
	if len(values) > 1 {
		stats.Std = stat.StdDev(values, nil)
	}

	delta := values[len(values)-1] - values[0]
	switch {
	case delta > 0:
		stats.Trend = 1
	case delta < 0:
		stats.Trend = -1
	}
	return stats
}
