package ports

import (
	"context"
	"errors"
)

var ErrEquipmentNotFound = errors.New("equipment not found")
var ErrPipelineRunNotFound = errors.New("pipeline run not found")

type Equipment struct {
	EquipmentID     uint64
	Serial          string
	EquipmentType   string
	Brand           string
	Model           string
	PurchaseDate    string
	LastServiceDate *string
	OperatingHours  float64
	CreatedAt       string
	UpdatedAt       string
}

type MaintenanceRecord struct {
	RecordID        uint64
	EquipmentID     uint64
	MaintenanceType string
	Description     string
	Cost            float64
	PerformedAt     string
}

type FailureEvent struct {
	FailureID     uint64
	EquipmentID   uint64
	FailureType   string
	Severity      string
	DowntimeHours float64
	RepairCost    float64
	OccurredAt    string
}

// RawReading carries sensor values as raw strings; coercion belongs to the
// cleaning stage.
type RawReading struct {
	ReadingID   uint64
	EquipmentID uint64
	RecordedAt  string
	EngineTemp  string
	OilPressure string
	Vibration   string
	RPM         string
	FuelRate    string
	IngestedAt  string
}

type CleanReading struct {
	EquipmentID  uint64
	RecordedAt   string
	EngineTemp   float64
	OilPressure  float64
	Vibration    float64
	RPM          float64
	FuelRate     float64
	QualityScore float64
	QualityFlag  string
	RunID        string
}

// SensorStats is the per-channel aggregate block of a feature row.
type SensorStats struct {
	Mean   float64
	Std    float64
	Min    float64
	Max    float64
	Latest float64
	Trend  float64
}

type FeatureRow struct {
	EquipmentID uint64
	RunID       string

	AgeYears         float64
	UsageRatio       float64
	DaysSinceService float64
	IsOld            float64
	NeedsMaintenance float64

	MaintenanceCount    float64
	MaintenanceCostSum  float64
	MaintenanceCostMean float64
	PreventiveRatio     float64

	FailureCount     float64
	MTBFDays         float64
	DowntimeHoursSum float64

	EngineTemp  SensorStats
	OilPressure SensorStats
	Vibration   SensorStats
	RPM         SensorStats
	FuelRate    SensorStats

	TempPerThousandRPM float64
	HighVibration      float64

	ComputedAt string
}

type Prediction struct {
	PredictionID       uint64
	EquipmentID        uint64
	RunID              string
	FailureProbability float64
	RULDays            float64
	AnomalyScore       float64
	AnomalyRawMin      float64
	AnomalyRawMax      float64
	RiskScore          float64
	Priority           string
	ModelName          string
	CreatedAt          string
}

type Recommendation struct {
	RecommendationID    uint64
	EquipmentID         uint64
	RunID               string
	Priority            string
	Action              string
	MaintenanceCost     float64
	ExpectedFailureCost float64
	NetBenefit          float64
	ShouldMaintain      bool
	CreatedAt           string
}

type ScheduleTask struct {
	TaskID      uint64
	EquipmentID uint64
	RunID       string
	Priority    string
	Action      string
	DueDate     string
	Status      string
	CreatedAt   string
}

type KPIMetric struct {
	MetricID   uint64
	RunID      string
	Name       string
	Value      float64
	ComputedAt string
}

type PipelineRun struct {
	RunID      string
	StartedAt  string
	FinishedAt string
	Status     string
	ReportJSON string
}

// ReadingWindow bounds a time range; empty strings mean unbounded.
type ReadingWindow struct {
	Since string
	Until string
}

type FleetReadRepository interface {
	ListEquipment(ctx context.Context) ([]Equipment, error)
	GetEquipment(ctx context.Context, equipmentID uint64) (Equipment, error)
	ListMaintenanceRecords(ctx context.Context, equipmentID uint64) ([]MaintenanceRecord, error)
	ListFailureEvents(ctx context.Context, equipmentID uint64) ([]FailureEvent, error)
	ListRawReadings(ctx context.Context, equipmentID uint64, window ReadingWindow) ([]RawReading, error)
	ListCleanReadings(ctx context.Context, equipmentID uint64, window ReadingWindow) ([]CleanReading, error)
	ListFeatureRows(ctx context.Context, runID string) ([]FeatureRow, error)
	ListPredictions(ctx context.Context, equipmentID uint64, limit int) ([]Prediction, error)
	ListPredictionsByRun(ctx context.Context, runID string) ([]Prediction, error)
	ListRecommendationsByRun(ctx context.Context, runID string) ([]Recommendation, error)
	ListScheduleByRun(ctx context.Context, runID string) ([]ScheduleTask, error)
	ListKPIsByRun(ctx context.Context, runID string) ([]KPIMetric, error)
	GetPipelineRun(ctx context.Context, runID string) (PipelineRun, error)
	ListPipelineRuns(ctx context.Context, limit int) ([]PipelineRun, error)
	LatestFinishedRunID(ctx context.Context) (string, error)
}

type FleetRepository interface {
	FleetReadRepository
	CreateEquipment(ctx context.Context, equipment Equipment) (Equipment, error)
	UpdateEquipment(ctx context.Context, equipment Equipment) error
	DeleteEquipment(ctx context.Context, equipmentID uint64) error
	AppendMaintenanceRecord(ctx context.Context, record MaintenanceRecord) error
	AppendFailureEvent(ctx context.Context, event FailureEvent) error
	AppendRawReadings(ctx context.Context, readings []RawReading) error
	UpsertCleanReadings(ctx context.Context, readings []CleanReading) error
	ReplaceFeatureRows(ctx context.Context, runID string, rows []FeatureRow) error
	AppendPredictions(ctx context.Context, predictions []Prediction) error
	AppendRecommendations(ctx context.Context, recommendations []Recommendation) error
	AppendScheduleTasks(ctx context.Context, tasks []ScheduleTask) error
	AppendKPIMetrics(ctx context.Context, metrics []KPIMetric) error
	CreatePipelineRun(ctx context.Context, run PipelineRun) error
	FinishPipelineRun(ctx context.Context, runID string, status string, finishedAt string, reportJSON string) error
}
