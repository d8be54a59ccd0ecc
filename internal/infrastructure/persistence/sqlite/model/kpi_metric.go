package model

type KPIMetric struct {
	MetricID   uint64  `gorm:"column:metric_id;primaryKey;autoIncrement"`
	RunID      string  `gorm:"column:run_id;type:text;not null;index"`
	Name       string  `gorm:"column:name;type:text;not null;index"`
	Value      float64 `gorm:"column:value;not null"`
	ComputedAt string  `gorm:"column:computed_at;type:text;not null"`
}

func (KPIMetric) TableName() string {
	return "kpi_metrics"
}
