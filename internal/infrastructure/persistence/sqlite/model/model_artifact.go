package model

type ModelArtifact struct {
	Name       string `gorm:"column:name;type:text;primaryKey"`
	ParamsJSON string `gorm:"column:params_json;type:text;not null"`
	TrainedAt  string `gorm:"column:trained_at;type:text;not null"`
}

func (ModelArtifact) TableName() string {
	return "model_artifacts"
}
