package model

// FeatureRow is the wide per-equipment feature table. Rows are fully
// recomputed each pipeline run; there is no incremental update path.
type FeatureRow struct {
	EquipmentID uint64 `gorm:"column:equipment_id;not null;primaryKey;autoIncrement:false"`
	RunID       string `gorm:"column:run_id;type:text;not null;primaryKey"`

	AgeYears         float64 `gorm:"column:age_years;not null;default:0"`
	UsageRatio       float64 `gorm:"column:usage_ratio;not null;default:0"`
	DaysSinceService float64 `gorm:"column:days_since_service;not null;default:0"`
	IsOld            float64 `gorm:"column:is_old;not null;default:0"`
	NeedsMaintenance float64 `gorm:"column:needs_maintenance;not null;default:0"`

	MaintenanceCount    float64 `gorm:"column:maintenance_count;not null;default:0"`
	MaintenanceCostSum  float64 `gorm:"column:maintenance_cost_sum;not null;default:0"`
	MaintenanceCostMean float64 `gorm:"column:maintenance_cost_mean;not null;default:0"`
	PreventiveRatio     float64 `gorm:"column:preventive_ratio;not null;default:0"`

	FailureCount     float64 `gorm:"column:failure_count;not null;default:0"`
	MTBFDays         float64 `gorm:"column:mtbf_days;not null;default:0"`
	DowntimeHoursSum float64 `gorm:"column:downtime_hours_sum;not null;default:0"`

	EngineTempMean   float64 `gorm:"column:engine_temp_mean;not null;default:0"`
	EngineTempStd    float64 `gorm:"column:engine_temp_std;not null;default:0"`
	EngineTempMin    float64 `gorm:"column:engine_temp_min;not null;default:0"`
	EngineTempMax    float64 `gorm:"column:engine_temp_max;not null;default:0"`
	EngineTempLatest float64 `gorm:"column:engine_temp_latest;not null;default:0"`
	EngineTempTrend  float64 `gorm:"column:engine_temp_trend;not null;default:0"`

	OilPressureMean   float64 `gorm:"column:oil_pressure_mean;not null;default:0"`
	OilPressureStd    float64 `gorm:"column:oil_pressure_std;not null;default:0"`
	OilPressureMin    float64 `gorm:"column:oil_pressure_min;not null;default:0"`
	OilPressureMax    float64 `gorm:"column:oil_pressure_max;not null;default:0"`
	OilPressureLatest float64 `gorm:"column:oil_pressure_latest;not null;default:0"`
	OilPressureTrend  float64 `gorm:"column:oil_pressure_trend;not null;default:0"`

	VibrationMean   float64 `gorm:"column:vibration_mean;not null;default:0"`
	VibrationStd    float64 `gorm:"column:vibration_std;not null;default:0"`
	VibrationMin    float64 `gorm:"column:vibration_min;not null;default:0"`
	VibrationMax    float64 `gorm:"column:vibration_max;not null;default:0"`
	VibrationLatest float64 `gorm:"column:vibration_latest;not null;default:0"`
	VibrationTrend  float64 `gorm:"column:vibration_trend;not null;default:0"`

	RPMMean   float64 `gorm:"column:rpm_mean;not null;default:0"`
	RPMStd    float64 `gorm:"column:rpm_std;not null;default:0"`
	RPMMin    float64 `gorm:"column:rpm_min;not null;default:0"`
	RPMMax    float64 `gorm:"column:rpm_max;not null;default:0"`
	RPMLatest float64 `gorm:"column:rpm_latest;not null;default:0"`
	RPMTrend  float64 `gorm:"column:rpm_trend;not null;default:0"`

	FuelRateMean   float64 `gorm:"column:fuel_rate_mean;not null;default:0"`
	FuelRateStd    float64 `gorm:"column:fuel_rate_std;not null;default:0"`
	FuelRateMin    float64 `gorm:"column:fuel_rate_min;not null;default:0"`
	FuelRateMax    float64 `gorm:"column:fuel_rate_max;not null;default:0"`
	FuelRateLatest float64 `gorm:"column:fuel_rate_latest;not null;default:0"`
	FuelRateTrend  float64 `gorm:"column:fuel_rate_trend;not null;default:0"`

	TempPerThousandRPM float64 `gorm:"column:temp_per_thousand_rpm;not null;default:0"`
	HighVibration      float64 `gorm:"column:high_vibration;not null;default:0"`

	ComputedAt string `gorm:"column:computed_at;type:text;not null"`
}

func (FeatureRow) TableName() string {
	return "feature_rows"
}
