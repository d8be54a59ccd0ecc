package model

type Recommendation struct {
	RecommendationID    uint64  `gorm:"column:recommendation_id;primaryKey;autoIncrement"`
	EquipmentID         uint64  `gorm:"column:equipment_id;not null;index"`
	RunID               string  `gorm:"column:run_id;type:text;not null;index"`
	Priority            string  `gorm:"column:priority;type:text;not null"`
	Action              string  `gorm:"column:action;type:text;not null"`
	MaintenanceCost     float64 `gorm:"column:maintenance_cost;not null"`
	ExpectedFailureCost float64 `gorm:"column:expected_failure_cost;not null"`
	NetBenefit          float64 `gorm:"column:net_benefit;not null"`
	ShouldMaintain      bool    `gorm:"column:should_maintain;not null;default:0"`
	CreatedAt           string  `gorm:"column:created_at;type:text;not null"`
}

func (Recommendation) TableName() string {
	return "recommendations"
}
