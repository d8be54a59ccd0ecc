package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"agrimaint/internal/errs"
	"agrimaint/internal/infrastructure/persistence/sqlite/model"
	"agrimaint/internal/ports"
)

type FleetRepository struct {
	db *gorm.DB
}

func NewFleetRepository(db *gorm.DB) *FleetRepository {
	return &FleetRepository{db: db}
}

func (r *FleetRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return r.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

func (r *FleetRepository) ListEquipment(ctx context.Context) ([]ports.Equipment, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.Equipment
	if err := db.Order("equipment_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query equipment")
	}

	items := make([]ports.Equipment, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapEquipment(row))
	}
	return items, nil
}

func (r *FleetRepository) GetEquipment(ctx context.Context, equipmentID uint64) (ports.Equipment, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Equipment{}, err
	}

	var row model.Equipment
	if err := db.Where("equipment_id = ?", equipmentID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Equipment{}, ports.ErrEquipmentNotFound
		}
		return ports.Equipment{}, errs.Wrap(err, "query equipment by id")
	}
	return mapEquipment(row), nil
}

func (r *FleetRepository) CreateEquipment(ctx context.Context, equipment ports.Equipment) (ports.Equipment, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Equipment{}, err
	}

	row := model.Equipment{
		Serial:          equipment.Serial,
		EquipmentType:   equipment.EquipmentType,
		Brand:           equipment.Brand,
		Model:           equipment.Model,
		PurchaseDate:    equipment.PurchaseDate,
		LastServiceDate: equipment.LastServiceDate,
		OperatingHours:  equipment.OperatingHours,
		CreatedAt:       equipment.CreatedAt,
		UpdatedAt:       equipment.UpdatedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.Equipment{}, errs.Wrap(err, "insert equipment")
	}
	return mapEquipment(row), nil
}

func (r *FleetRepository) UpdateEquipment(ctx context.Context, equipment ports.Equipment) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&model.Equipment{}).
		Where("equipment_id = ?", equipment.EquipmentID).
		Updates(map[string]any{
			"equipment_type":    equipment.EquipmentType,
			"brand":             equipment.Brand,
			"model":             equipment.Model,
			"purchase_date":     equipment.PurchaseDate,
			"last_service_date": equipment.LastServiceDate,
			"operating_hours":   equipment.OperatingHours,
			"updated_at":        equipment.UpdatedAt,
		})
	if result.Error != nil {
		return errs.Wrap(result.Error, "update equipment")
	}
	if result.RowsAffected == 0 {
		return ports.ErrEquipmentNotFound
	}
	return nil
}

func (r *FleetRepository) DeleteEquipment(ctx context.Context, equipmentID uint64) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Where("equipment_id = ?", equipmentID).Delete(&model.Equipment{})
	if result.Error != nil {
		return errs.Wrap(result.Error, "delete equipment")
	}
	if result.RowsAffected == 0 {
		return ports.ErrEquipmentNotFound
	}
	return nil
}

func (r *FleetRepository) ListMaintenanceRecords(ctx context.Context, equipmentID uint64) ([]ports.MaintenanceRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.MaintenanceRecord
	if err := db.Where("equipment_id = ?", equipmentID).Order("performed_at asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query maintenance records")
	}

	items := make([]ports.MaintenanceRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.MaintenanceRecord{
			RecordID:        row.RecordID,
			EquipmentID:     row.EquipmentID,
			MaintenanceType: row.MaintenanceType,
			Description:     row.Description,
			Cost:            row.Cost,
			PerformedAt:     row.PerformedAt,
		})
	}
	return items, nil
}

func (r *FleetRepository) AppendMaintenanceRecord(ctx context.Context, record ports.MaintenanceRecord) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.MaintenanceRecord{
		EquipmentID:     record.EquipmentID,
		MaintenanceType: record.MaintenanceType,
		Description:     record.Description,
		Cost:            record.Cost,
		PerformedAt:     record.PerformedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return errs.Wrap(err, "insert maintenance record")
	}
	return nil
}

func (r *FleetRepository) ListFailureEvents(ctx context.Context, equipmentID uint64) ([]ports.FailureEvent, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.FailureEvent
	if err := db.Where("equipment_id = ?", equipmentID).Order("occurred_at asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query failure events")
	}

	items := make([]ports.FailureEvent, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.FailureEvent{
			FailureID:     row.FailureID,
			EquipmentID:   row.EquipmentID,
			FailureType:   row.FailureType,
			Severity:      row.Severity,
			DowntimeHours: row.DowntimeHours,
			RepairCost:    row.RepairCost,
			OccurredAt:    row.OccurredAt,
		})
	}
	return items, nil
}

func (r *FleetRepository) AppendFailureEvent(ctx context.Context, event ports.FailureEvent) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.FailureEvent{
		EquipmentID:   event.EquipmentID,
		FailureType:   event.FailureType,
		Severity:      event.Severity,
		DowntimeHours: event.DowntimeHours,
		RepairCost:    event.RepairCost,
		OccurredAt:    event.OccurredAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return errs.Wrap(err, "insert failure event")
	}
	return nil
}

func applyWindow(query *gorm.DB, column string, window ports.ReadingWindow) *gorm.DB {
	if window.Since != "" {
		query = query.Where(column+" >= ?", window.Since)
	}
	if window.Until != "" {
		query = query.Where(column+" < ?", window.Until)
	}
	return query
}

func (r *FleetRepository) ListRawReadings(ctx context.Context, equipmentID uint64, window ports.ReadingWindow) ([]ports.RawReading, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.SensorReadingRaw{})
	if equipmentID != 0 {
		query = query.Where("equipment_id = ?", equipmentID)
	}
	query = applyWindow(query, "recorded_at", window)

	var rows []model.SensorReadingRaw
	if err := query.Order("equipment_id asc, recorded_at asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query raw readings")
	}

	items := make([]ports.RawReading, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.RawReading{
			ReadingID:   row.ReadingID,
			EquipmentID: row.EquipmentID,
			RecordedAt:  row.RecordedAt,
			EngineTemp:  row.EngineTemp,
			OilPressure: row.OilPressure,
			Vibration:   row.Vibration,
			RPM:         row.RPM,
			FuelRate:    row.FuelRate,
			IngestedAt:  row.IngestedAt,
		})
	}
	return items, nil
}

func (r *FleetRepository) AppendRawReadings(ctx context.Context, readings []ports.RawReading) error {
	if len(readings) == 0 {
		return nil
	}

	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	rows := make([]model.SensorReadingRaw, 0, len(readings))
	for _, reading := range readings {
		rows = append(rows, model.SensorReadingRaw{
			EquipmentID: reading.EquipmentID,
			RecordedAt:  reading.RecordedAt,
			EngineTemp:  reading.EngineTemp,
			OilPressure: reading.OilPressure,
			Vibration:   reading.Vibration,
			RPM:         reading.RPM,
			FuelRate:    reading.FuelRate,
			IngestedAt:  reading.IngestedAt,
		})
	}
	if err := db.CreateInBatches(rows, 500).Error; err != nil {
		return errs.Wrap(err, "insert raw readings")
	}
	return nil
}

func (r *FleetRepository) ListCleanReadings(ctx context.Context, equipmentID uint64, window ports.ReadingWindow) ([]ports.CleanReading, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.SensorReadingClean{})
	if equipmentID != 0 {
		query = query.Where("equipment_id = ?", equipmentID)
	}
	query = applyWindow(query, "recorded_at", window)

	var rows []model.SensorReadingClean
	if err := query.Order("equipment_id asc, recorded_at asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query clean readings")
	}

	items := make([]ports.CleanReading, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.CleanReading{
			EquipmentID:  row.EquipmentID,
			RecordedAt:   row.RecordedAt,
			EngineTemp:   row.EngineTemp,
			OilPressure:  row.OilPressure,
			Vibration:    row.Vibration,
			RPM:          row.RPM,
			FuelRate:     row.FuelRate,
			QualityScore: row.QualityScore,
			QualityFlag:  row.QualityFlag,
			RunID:        row.RunID,
		})
	}
	return items, nil
}

func (r *FleetRepository) UpsertCleanReadings(ctx context.Context, readings []ports.CleanReading) error {
	if len(readings) == 0 {
		return nil
	}

	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	rows := make([]model.SensorReadingClean, 0, len(readings))
	for _, reading := range readings {
		rows = append(rows, model.SensorReadingClean{
			EquipmentID:  reading.EquipmentID,
			RecordedAt:   reading.RecordedAt,
			EngineTemp:   reading.EngineTemp,
			OilPressure:  reading.OilPressure,
			Vibration:    reading.Vibration,
			RPM:          reading.RPM,
			FuelRate:     reading.FuelRate,
			QualityScore: reading.QualityScore,
			QualityFlag:  reading.QualityFlag,
			RunID:        reading.RunID,
		})
	}

	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "equipment_id"}, {Name: "recorded_at"}},
		UpdateAll: true,
	}).CreateInBatches(rows, 500).Error; err != nil {
		return errs.Wrap(err, "upsert clean readings")
	}
	return nil
}

func (r *FleetRepository) ListFeatureRows(ctx context.Context, runID string) ([]ports.FeatureRow, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.FeatureRow
	if err := db.Where("run_id = ?", runID).Order("equipment_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query feature rows")
	}

	items := make([]ports.FeatureRow, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapFeatureRow(row))
	}
	return items, nil
}

func (r *FleetRepository) ReplaceFeatureRows(ctx context.Context, runID string, rows []ports.FeatureRow) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	if err := db.Where("run_id = ?", runID).Delete(&model.FeatureRow{}).Error; err != nil {
		return errs.Wrap(err, "delete feature rows for run")
	}
	if len(rows) == 0 {
		return nil
	}

	records := make([]model.FeatureRow, 0, len(rows))
	for _, row := range rows {
		records = append(records, mapFeatureRowModel(row))
	}
	if err := db.CreateInBatches(records, 200).Error; err != nil {
		return errs.Wrap(err, "insert feature rows")
	}
	return nil
}

func (r *FleetRepository) ListPredictions(ctx context.Context, equipmentID uint64, limit int) ([]ports.Prediction, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}

	var rows []model.Prediction
	if err := db.Where("equipment_id = ?", equipmentID).
		Order("created_at desc").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query predictions by equipment")
	}
	return mapPredictions(rows), nil
}

func (r *FleetRepository) ListPredictionsByRun(ctx context.Context, runID string) ([]ports.Prediction, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.Prediction
	if err := db.Where("run_id = ?", runID).Order("equipment_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query predictions by run")
	}
	return mapPredictions(rows), nil
}

func (r *FleetRepository) AppendPredictions(ctx context.Context, predictions []ports.Prediction) error {
	if len(predictions) == 0 {
		return nil
	}

	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	rows := make([]model.Prediction, 0, len(predictions))
	for _, p := range predictions {
		rows = append(rows, model.Prediction{
			EquipmentID:        p.EquipmentID,
			RunID:              p.RunID,
			FailureProbability: p.FailureProbability,
			RULDays:            p.RULDays,
			AnomalyScore:       p.AnomalyScore,
			AnomalyRawMin:      p.AnomalyRawMin,
			AnomalyRawMax:      p.AnomalyRawMax,
			RiskScore:          p.RiskScore,
			Priority:           p.Priority,
			ModelName:          p.ModelName,
			CreatedAt:          p.CreatedAt,
		})
	}
	if err := db.CreateInBatches(rows, 200).Error; err != nil {
		return errs.Wrap(err, "insert predictions")
	}
	return nil
}

func (r *FleetRepository) ListRecommendationsByRun(ctx context.Context, runID string) ([]ports.Recommendation, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.Recommendation
	if err := db.Where("run_id = ?", runID).Order("equipment_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query recommendations by run")
	}

	items := make([]ports.Recommendation, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.Recommendation{
			RecommendationID:    row.RecommendationID,
			EquipmentID:         row.EquipmentID,
			RunID:               row.RunID,
			Priority:            row.Priority,
			Action:              row.Action,
			MaintenanceCost:     row.MaintenanceCost,
			ExpectedFailureCost: row.ExpectedFailureCost,
			NetBenefit:          row.NetBenefit,
			ShouldMaintain:      row.ShouldMaintain,
			CreatedAt:           row.CreatedAt,
		})
	}
	return items, nil
}

func (r *FleetRepository) AppendRecommendations(ctx context.Context, recommendations []ports.Recommendation) error {
	if len(recommendations) == 0 {
		return nil
	}

	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	rows := make([]model.Recommendation, 0, len(recommendations))
	for _, rec := range recommendations {
		rows = append(rows, model.Recommendation{
			EquipmentID:         rec.EquipmentID,
			RunID:               rec.RunID,
			Priority:            rec.Priority,
			Action:              rec.Action,
			MaintenanceCost:     rec.MaintenanceCost,
			ExpectedFailureCost: rec.ExpectedFailureCost,
			NetBenefit:          rec.NetBenefit,
			ShouldMaintain:      rec.ShouldMaintain,
			CreatedAt:           rec.CreatedAt,
		})
	}
	if err := db.CreateInBatches(rows, 200).Error; err != nil {
		return errs.Wrap(err, "insert recommendations")
	}
	return nil
}

func (r *FleetRepository) ListScheduleByRun(ctx context.Context, runID string) ([]ports.ScheduleTask, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.ScheduleTask
	if err := db.Where("run_id = ?", runID).Order("due_date asc, equipment_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query schedule by run")
	}

	items := make([]ports.ScheduleTask, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.ScheduleTask{
			TaskID:      row.TaskID,
			EquipmentID: row.EquipmentID,
			RunID:       row.RunID,
			Priority:    row.Priority,
			Action:      row.Action,
			DueDate:     row.DueDate,
			Status:      row.Status,
			CreatedAt:   row.CreatedAt,
		})
	}
	return items, nil
}

func (r *FleetRepository) AppendScheduleTasks(ctx context.Context, tasks []ports.ScheduleTask) error {
	if len(tasks) == 0 {
		return nil
	}

	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	rows := make([]model.ScheduleTask, 0, len(tasks))
	for _, task := range tasks {
		rows = append(rows, model.ScheduleTask{
			EquipmentID: task.EquipmentID,
			RunID:       task.RunID,
			Priority:    task.Priority,
			Action:      task.Action,
			DueDate:     task.DueDate,
			Status:      task.Status,
			CreatedAt:   task.CreatedAt,
		})
	}
	if err := db.CreateInBatches(rows, 200).Error; err != nil {
		return errs.Wrap(err, "insert schedule tasks")
	}
	return nil
}

func (r *FleetRepository) ListKPIsByRun(ctx context.Context, runID string) ([]ports.KPIMetric, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.KPIMetric
	if err := db.Where("run_id = ?", runID).Order("name asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query kpi metrics by run")
	}

	items := make([]ports.KPIMetric, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.KPIMetric{
			MetricID:   row.MetricID,
			RunID:      row.RunID,
			Name:       row.Name,
			Value:      row.Value,
			ComputedAt: row.ComputedAt,
		})
	}
	return items, nil
}

func (r *FleetRepository) AppendKPIMetrics(ctx context.Context, metrics []ports.KPIMetric) error {
	if len(metrics) == 0 {
		return nil
	}

	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	rows := make([]model.KPIMetric, 0, len(metrics))
	for _, metric := range metrics {
		rows = append(rows, model.KPIMetric{
			RunID:      metric.RunID,
			Name:       metric.Name,
			Value:      metric.Value,
			ComputedAt: metric.ComputedAt,
		})
	}
	if err := db.CreateInBatches(rows, 200).Error; err != nil {
		return errs.Wrap(err, "insert kpi metrics")
	}
	return nil
}

func (r *FleetRepository) GetPipelineRun(ctx context.Context, runID string) (ports.PipelineRun, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.PipelineRun{}, err
	}

	var row model.PipelineRun
	if err := db.Where("run_id = ?", runID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.PipelineRun{}, ports.ErrPipelineRunNotFound
		}
		return ports.PipelineRun{}, errs.Wrap(err, "query pipeline run")
	}
	return mapPipelineRun(row), nil
}

func (r *FleetRepository) ListPipelineRuns(ctx context.Context, limit int) ([]ports.PipelineRun, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}

	var rows []model.PipelineRun
	if err := db.Order("started_at desc").Limit(limit).Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query pipeline runs")
	}

	items := make([]ports.PipelineRun, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapPipelineRun(row))
	}
	return items, nil
}

func (r *FleetRepository) LatestFinishedRunID(ctx context.Context) (string, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return "", err
	}

	var row model.PipelineRun
	if err := db.Where("finished_at <> ''").Order("finished_at desc").Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ports.ErrPipelineRunNotFound
		}
		return "", errs.Wrap(err, "query latest finished run")
	}
	return row.RunID, nil
}

func (r *FleetRepository) CreatePipelineRun(ctx context.Context, run ports.PipelineRun) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.PipelineRun{
		RunID:      run.RunID,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
		Status:     run.Status,
		ReportJSON: run.ReportJSON,
	}
	if err := db.Create(&row).Error; err != nil {
		return errs.Wrap(err, "insert pipeline run")
	}
	return nil
}

func (r *FleetRepository) FinishPipelineRun(ctx context.Context, runID string, status string, finishedAt string, reportJSON string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&model.PipelineRun{}).
		Where("run_id = ?", runID).
		Updates(map[string]any{
			"status":      status,
			"finished_at": finishedAt,
			"report_json": reportJSON,
		})
	if result.Error != nil {
		return errs.Wrap(result.Error, "finish pipeline run")
	}
	if result.RowsAffected == 0 {
		return ports.ErrPipelineRunNotFound
	}
	return nil
}

func mapEquipment(row model.Equipment) ports.Equipment {
	return ports.Equipment{
		EquipmentID:     row.EquipmentID,
		Serial:          row.Serial,
		EquipmentType:   row.EquipmentType,
		Brand:           row.Brand,
		Model:           row.Model,
		PurchaseDate:    row.PurchaseDate,
		LastServiceDate: row.LastServiceDate,
		OperatingHours:  row.OperatingHours,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}

func mapPredictions(rows []model.Prediction) []ports.Prediction {
	items := make([]ports.Prediction, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.Prediction{
			PredictionID:       row.PredictionID,
			EquipmentID:        row.EquipmentID,
			RunID:              row.RunID,
			FailureProbability: row.FailureProbability,
			RULDays:            row.RULDays,
			AnomalyScore:       row.AnomalyScore,
			AnomalyRawMin:      row.AnomalyRawMin,
			AnomalyRawMax:      row.AnomalyRawMax,
			RiskScore:          row.RiskScore,
			Priority:           row.Priority,
			ModelName:          row.ModelName,
			CreatedAt:          row.CreatedAt,
		})
	}
	return items
}

func mapPipelineRun(row model.PipelineRun) ports.PipelineRun {
	return ports.PipelineRun{
		RunID:      row.RunID,
		StartedAt:  row.StartedAt,
		FinishedAt: row.FinishedAt,
		Status:     row.Status,
		ReportJSON: row.ReportJSON,
	}
}

func mapFeatureRow(row model.FeatureRow) ports.FeatureRow {
	return ports.FeatureRow{
		EquipmentID:         row.EquipmentID,
		RunID:               row.RunID,
		AgeYears:            row.AgeYears,
		UsageRatio:          row.UsageRatio,
		DaysSinceService:    row.DaysSinceService,
		IsOld:               row.IsOld,
		NeedsMaintenance:    row.NeedsMaintenance,
		MaintenanceCount:    row.MaintenanceCount,
		MaintenanceCostSum:  row.MaintenanceCostSum,
		MaintenanceCostMean: row.MaintenanceCostMean,
		PreventiveRatio:     row.PreventiveRatio,
		FailureCount:        row.FailureCount,
		MTBFDays:            row.MTBFDays,
		DowntimeHoursSum:    row.DowntimeHoursSum,
		EngineTemp: ports.SensorStats{
			Mean: row.EngineTempMean, Std: row.EngineTempStd, Min: row.EngineTempMin,
			Max: row.EngineTempMax, Latest: row.EngineTempLatest, Trend: row.EngineTempTrend,
		},
		OilPressure: ports.SensorStats{
			Mean: row.OilPressureMean, Std: row.OilPressureStd, Min: row.OilPressureMin,
			Max: row.OilPressureMax, Latest: row.OilPressureLatest, Trend: row.OilPressureTrend,
		},
		Vibration: ports.SensorStats{
			Mean: row.VibrationMean, Std: row.VibrationStd, Min: row.VibrationMin,
			Max: row.VibrationMax, Latest: row.VibrationLatest, Trend: row.VibrationTrend,
		},
		RPM: ports.SensorStats{
			Mean: row.RPMMean, Std: row.RPMStd, Min: row.RPMMin,
			Max: row.RPMMax, Latest: row.RPMLatest, Trend: row.RPMTrend,
		},
		FuelRate: ports.SensorStats{
			Mean: row.FuelRateMean, Std: row.FuelRateStd, Min: row.FuelRateMin,
			Max: row.FuelRateMax, Latest: row.FuelRateLatest, Trend: row.FuelRateTrend,
		},
		TempPerThousandRPM: row.TempPerThousandRPM,
		HighVibration:      row.HighVibration,
		ComputedAt:         row.ComputedAt,
	}
}

func mapFeatureRowModel(row ports.FeatureRow) model.FeatureRow {
	return model.FeatureRow{
		EquipmentID:         row.EquipmentID,
		RunID:               row.RunID,
		AgeYears:            row.AgeYears,
		UsageRatio:          row.UsageRatio,
		DaysSinceService:    row.DaysSinceService,
		IsOld:               row.IsOld,
		NeedsMaintenance:    row.NeedsMaintenance,
		MaintenanceCount:    row.MaintenanceCount,
		MaintenanceCostSum:  row.MaintenanceCostSum,
		MaintenanceCostMean: row.MaintenanceCostMean,
		PreventiveRatio:     row.PreventiveRatio,
		FailureCount:        row.FailureCount,
		MTBFDays:            row.MTBFDays,
		DowntimeHoursSum:    row.DowntimeHoursSum,
		EngineTempMean:      row.EngineTemp.Mean,
		EngineTempStd:       row.EngineTemp.Std,
		EngineTempMin:       row.EngineTemp.Min,
		EngineTempMax:       row.EngineTemp.Max,
		EngineTempLatest:    row.EngineTemp.Latest,
		EngineTempTrend:     row.EngineTemp.Trend,
		OilPressureMean:     row.OilPressure.Mean,
		OilPressureStd:      row.OilPressure.Std,
		OilPressureMin:      row.OilPressure.Min,
		OilPressureMax:      row.OilPressure.Max,
		OilPressureLatest:   row.OilPressure.Latest,
		OilPressureTrend:    row.OilPressure.Trend,
		VibrationMean:       row.Vibration.Mean,
		VibrationStd:        row.Vibration.Std,
		VibrationMin:        row.Vibration.Min,
		VibrationMax:        row.Vibration.Max,
		VibrationLatest:     row.Vibration.Latest,
		VibrationTrend:      row.Vibration.Trend,
		RPMMean:             row.RPM.Mean,
		RPMStd:              row.RPM.Std,
		RPMMin:              row.RPM.Min,
		RPMMax:              row.RPM.Max,
		RPMLatest:           row.RPM.Latest,
		RPMTrend:            row.RPM.Trend,
		FuelRateMean:        row.FuelRate.Mean,
		FuelRateStd:         row.FuelRate.Std,
		FuelRateMin:         row.FuelRate.Min,
		FuelRateMax:         row.FuelRate.Max,
		FuelRateLatest:      row.FuelRate.Latest,
		FuelRateTrend:       row.FuelRate.Trend,
		TempPerThousandRPM:  row.TempPerThousandRPM,
		HighVibration:       row.HighVibration,
		ComputedAt:          row.ComputedAt,
	}
}
