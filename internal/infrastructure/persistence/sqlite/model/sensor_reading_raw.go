package model

// SensorReadingRaw keeps values as TEXT on purpose: upstream exports contain
// sentinel strings ("ERROR", "N/A"), unit-suffixed numbers ("85.2 C") and
// empty cells. The cleaning stage owns coercion.
type SensorReadingRaw struct {
	ReadingID   uint64 `gorm:"column:reading_id;primaryKey;autoIncrement"`
	EquipmentID uint64 `gorm:"column:equipment_id;not null;index"`
	RecordedAt  string `gorm:"column:recorded_at;type:text;index"`
	EngineTemp  string `gorm:"column:engine_temp;type:text"`
	OilPressure string `gorm:"column:oil_pressure;type:text"`
	Vibration   string `gorm:"column:vibration;type:text"`
	RPM         string `gorm:"column:rpm;type:text"`
	FuelRate    string `gorm:"column:fuel_rate;type:text"`
	IngestedAt  string `gorm:"column:ingested_at;type:text;not null"`
}

func (SensorReadingRaw) TableName() string {
	return "sensor_readings_raw"
}
