package model

// SensorReadingClean is keyed by (equipment_id, recorded_at) so a re-run of
// the cleaner over the same window upserts instead of duplicating rows.
type SensorReadingClean struct {
	EquipmentID  uint64  `gorm:"column:equipment_id;not null;primaryKey;autoIncrement:false"`
	RecordedAt   string  `gorm:"column:recorded_at;type:text;not null;primaryKey"`
	EngineTemp   float64 `gorm:"column:engine_temp;not null"`
	OilPressure  float64 `gorm:"column:oil_pressure;not null"`
	Vibration    float64 `gorm:"column:vibration;not null"`
	RPM          float64 `gorm:"column:rpm;not null"`
	FuelRate     float64 `gorm:"column:fuel_rate;not null"`
	QualityScore float64 `gorm:"column:quality_score;not null"`
	QualityFlag  string  `gorm:"column:quality_flag;type:text;not null"`
	RunID        string  `gorm:"column:run_id;type:text;not null;index"`
}

func (SensorReadingClean) TableName() string {
	return "sensor_readings_clean"
}
