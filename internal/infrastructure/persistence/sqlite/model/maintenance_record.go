package model

type MaintenanceRecord struct {
	RecordID        uint64  `gorm:"column:record_id;primaryKey;autoIncrement"`
	EquipmentID     uint64  `gorm:"column:equipment_id;not null;index"`
	MaintenanceType string  `gorm:"column:maintenance_type;type:text;not null"`
	Description     string  `gorm:"column:description;type:text;not null"`
	Cost            float64 `gorm:"column:cost;not null;default:0"`
	PerformedAt     string  `gorm:"column:performed_at;type:text;not null;index"`
}

func (MaintenanceRecord) TableName() string {
	return "maintenance_records"
}
