package model

type FailureEvent struct {
	FailureID     uint64  `gorm:"column:failure_id;primaryKey;autoIncrement"`
	EquipmentID   uint64  `gorm:"column:equipment_id;not null;index"`
	FailureType   string  `gorm:"column:failure_type;type:text;not null"`
	Severity      string  `gorm:"column:severity;type:text;not null"`
	DowntimeHours float64 `gorm:"column:downtime_hours;not null;default:0"`
	RepairCost    float64 `gorm:"column:repair_cost;not null;default:0"`
	OccurredAt    string  `gorm:"column:occurred_at;type:text;not null;index"`
}

func (FailureEvent) TableName() string {
	return "failure_events"
}
