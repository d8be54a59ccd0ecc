package model

type Prediction struct {
	PredictionID       uint64  `gorm:"column:prediction_id;primaryKey;autoIncrement"`
	EquipmentID        uint64  `gorm:"column:equipment_id;not null;index"`
	RunID              string  `gorm:"column:run_id;type:text;not null;index"`
	FailureProbability float64 `gorm:"column:failure_probability;not null"`
	RULDays            float64 `gorm:"column:rul_days;not null"`
	AnomalyScore       float64 `gorm:"column:anomaly_score;not null"`
	AnomalyRawMin      float64 `gorm:"column:anomaly_raw_min;not null;default:0"`
	AnomalyRawMax      float64 `gorm:"column:anomaly_raw_max;not null;default:0"`
	RiskScore          float64 `gorm:"column:risk_score;not null"`
	Priority           string  `gorm:"column:priority;type:text;not null"`
	ModelName          string  `gorm:"column:model_name;type:text;not null"`
	CreatedAt          string  `gorm:"column:created_at;type:text;not null;index"`
}

func (Prediction) TableName() string {
	return "predictions"
}
