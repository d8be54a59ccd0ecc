package model

type PipelineRun struct {
	RunID      string `gorm:"column:run_id;type:text;primaryKey"`
	StartedAt  string `gorm:"column:started_at;type:text;not null;index"`
	FinishedAt string `gorm:"column:finished_at;type:text;not null;default:''"`
	Status     string `gorm:"column:status;type:text;not null;default:running"`
	ReportJSON string `gorm:"column:report_json;type:text;not null;default:''"`
}

func (PipelineRun) TableName() string {
	return "pipeline_runs"
}
