package model

type Equipment struct {
	EquipmentID     uint64  `gorm:"column:equipment_id;primaryKey;autoIncrement"`
	Serial          string  `gorm:"column:serial;type:text;not null;uniqueIndex"`
	EquipmentType   string  `gorm:"column:equipment_type;type:text;not null;index"`
	Brand           string  `gorm:"column:brand;type:text;not null"`
	Model           string  `gorm:"column:model;type:text;not null"`
	PurchaseDate    string  `gorm:"column:purchase_date;type:text;not null"`
	LastServiceDate *string `gorm:"column:last_service_date;type:text"`
	OperatingHours  float64 `gorm:"column:operating_hours;not null;default:0"`
	CreatedAt       string  `gorm:"column:created_at;type:text;not null"`
	UpdatedAt       string  `gorm:"column:updated_at;type:text;not null"`
}

func (Equipment) TableName() string {
	return "equipment"
}
