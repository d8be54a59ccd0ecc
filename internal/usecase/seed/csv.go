package seed

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"agrimaint/internal/errs"
	"agrimaint/internal/ports"
)

// exportCSV mirrors the seeded tables as CSV files for offline inspection.
func exportCSV(dir string, fleet []ports.Equipment, records []ports.MaintenanceRecord, events []ports.FailureEvent, readings []ports.RawReading) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errs.Wrap(err, "create csv directory")
	}

	files := make([]string, 0, 4)

	equipmentRows := [][]string{{"equipment_id", "serial", "equipment_type", "brand", "model", "purchase_date", "last_service_date", "operating_hours"}}
	for _, item := range fleet {
		lastService := ""
		if item.LastServiceDate != nil {
			lastService = *item.LastServiceDate
		}
		equipmentRows = append(equipmentRows, []string{
			strconv.FormatUint(item.EquipmentID, 10), item.Serial, item.EquipmentType, item.Brand, item.Model,
			item.PurchaseDate, lastService, formatFloat(item.OperatingHours),
		})
	}
	path, err := writeCSV(dir, "equipment.csv", equipmentRows)
	if err != nil {
		return nil, err
	}
	files = append(files, path)

	maintenanceRows := [][]string{{"equipment_id", "maintenance_type", "description", "cost", "performed_at"}}
	for _, record := range records {
		maintenanceRows = append(maintenanceRows, []string{
			strconv.FormatUint(record.EquipmentID, 10), record.MaintenanceType, record.Description,
			formatFloat(record.Cost), record.PerformedAt,
		})
	}
	path, err = writeCSV(dir, "maintenance.csv", maintenanceRows)
	if err != nil {
		return nil, err
	}
	files = append(files, path)

	failureRows := [][]string{{"equipment_id", "failure_type", "severity", "downtime_hours", "repair_cost", "occurred_at"}}
	for _, event := range events {
		failureRows = append(failureRows, []string{
			strconv.FormatUint(event.EquipmentID, 10), event.FailureType, event.Severity,
			formatFloat(event.DowntimeHours), formatFloat(event.RepairCost), event.OccurredAt,
		})
	}
	path, err = writeCSV(dir, "failures.csv", failureRows)
	if err != nil {
		return nil, err
	}
	files = append(files, path)

	readingRows := [][]string{{"equipment_id", "recorded_at", "engine_temp", "oil_pressure", "vibration", "rpm", "fuel_rate"}}
	for _, reading := range readings {
		readingRows = append(readingRows, []string{
			strconv.FormatUint(reading.EquipmentID, 10), reading.RecordedAt,
			reading.EngineTemp, reading.OilPressure, reading.Vibration, reading.RPM, reading.FuelRate,
		})
	}
	path, err = writeCSV(dir, "sensor_readings.csv", readingRows)
	if err != nil {
		return nil, err
	}
	files = append(files, path)

	return files, nil
}

func writeCSV(dir, name string, rows [][]string) (string, error) {
	path := filepath.Join(dir, name)
	file, err := os.Create(path)
	if err != nil {
		return "", errs.Wrapf(err, "create %s", name)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.WriteAll(rows); err != nil {
		return "", errs.Wrapf(err, "write %s", name)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", errs.Wrapf(err, "flush %s", name)
	}
	return path, nil
}

func formatFloat(value float64) string {
	return fmt.Sprintf("%.2f", value)
}
