package pipeline

import "agrimaint/internal/ports"

// featureNames fixes the model input order. Changing this order invalidates
// stored model artifacts.
var featureNames = []string{
	"age_years",
	"usage_ratio",
	"days_since_service",
	"maintenance_count",
	"maintenance_cost_mean",
	"preventive_ratio",
	"failure_count",
	"mtbf_days",
	"downtime_hours_sum",
	"engine_temp_mean",
	"engine_temp_trend",
	"oil_pressure_min",
	"vibration_mean",
	"vibration_max",
	"rpm_std",
	"fuel_rate_mean",
	"temp_per_thousand_rpm",
	"high_vibration",
}

func featureVector(row ports.FeatureRow) []float64 {
	return []float64{
		row.AgeYears,
		row.UsageRatio,
		row.DaysSinceService,
		row.MaintenanceCount,
		row.MaintenanceCostMean,
		row.PreventiveRatio,
		row.FailureCount,
		row.MTBFDays,
		row.DowntimeHoursSum,
		row.EngineTemp.Mean,
		row.EngineTemp.Trend,
		row.OilPressure.Min,
		row.Vibration.Mean,
		row.Vibration.Max,
		row.RPM.Std,
		row.FuelRate.Mean,
		row.TempPerThousandRPM,
		row.HighVibration,
	}
}
