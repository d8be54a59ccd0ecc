package model

type ScheduleTask struct {
	TaskID      uint64 `gorm:"column:task_id;primaryKey;autoIncrement"`
	EquipmentID uint64 `gorm:"column:equipment_id;not null;index"`
	RunID       string `gorm:"column:run_id;type:text;not null;index"`
	Priority    string `gorm:"column:priority;type:text;not null"`
	Action      string `gorm:"column:action;type:text;not null"`
	DueDate     string `gorm:"column:due_date;type:text;not null;index"`
	Status      string `gorm:"column:status;type:text;not null;default:pending"`
	CreatedAt   string `gorm:"column:created_at;type:text;not null"`
}

func (ScheduleTask) TableName() string {
	return "maintenance_schedule"
}
