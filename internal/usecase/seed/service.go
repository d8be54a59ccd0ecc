package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"
	"time"

	"agrimaint/internal/bootstrap/logging"
	"agrimaint/internal/errs"
	"agrimaint/internal/ports"
)

// Dirt injection rates for the synthetic sensor stream. The cleaner is
// expected to handle every one of these.
const (
	sentinelRate   = 0.02
	unitSuffixRate = 0.02
	missingRate    = 0.02
	outlierRate    = 0.01
	duplicateRate  = 0.01
	driftShare     = 0.15 // share of equipment with a drifting engine_temp channel
)

var equipmentTypes = []string{"tractor", "harvester", "irrigation", "sprayer", "seeder"}

var brandsByType = map[string][]string{
	"tractor":    {"John Deere", "Case IH", "New Holland", "Kubota"},
	"harvester":  {"John Deere", "Claas", "Case IH"},
	"irrigation": {"Valley", "Lindsay", "Reinke"},
	"sprayer":    {"Hardi", "Amazone", "John Deere"},
	"seeder":     {"Vaderstad", "Horsch", "Amazone"},
}

var maintenanceTypes = []string{"preventive", "corrective", "inspection"}

var failureTypes = []string{"engine", "hydraulic", "electrical", "transmission", "cooling"}

var sentinelPool = []string{"ERROR", "N/A", "NaN", "null", "-999"}

// channel baselines for a healthy machine: mean and jitter per channel in
// engine_temp, oil_pressure, vibration, rpm, fuel_rate order.
var channelBaseline = [5][2]float64{
	{85, 5},
	{45, 5},
	{3, 1},
	{1800, 150},
	{12, 2},
}

var channelUnits = [5]string{" C", " psi", " mm/s", " rpm", " L/h"}

type Input struct {
	Seed           int64
	FleetSize      int
	Days           int
	ReadingsPerDay int
	CSVDir         string
}

type Result struct {
	Equipment          int
	MaintenanceRecords int
	FailureEvents      int
	RawReadings        int
	CSVFiles           []string
}

// Service generates a deterministic synthetic fleet with dirty sensor data.
// The same seed always yields the same rows.
type Service struct {
	repo ports.FleetRepository
	uow  ports.UnitOfWork
	now  func() time.Time
}

func NewService(repo ports.FleetRepository, uow ports.UnitOfWork) *Service {
	return &Service{repo: repo, uow: uow, now: time.Now}
}

func (s *Service) Run(ctx context.Context, in Input) (Result, error) {
	if ctx == nil {
		return Result{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Result{}, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return Result{}, errors.New("fleet repository is required")
	}
	if s.uow == nil {
		return Result{}, errors.New("unit of work is required")
	}
	if in.FleetSize <= 0 {
		in.FleetSize = 30
	}
	if in.Days <= 0 {
		in.Days = 90
	}
	if in.ReadingsPerDay <= 0 {
		in.ReadingsPerDay = 8
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "seed"), slog.Int64("seed", in.Seed))

	rng := rand.New(rand.NewSource(in.Seed))
	now := s.now().UTC().Truncate(time.Hour)
	nowText := now.Format(time.RFC3339Nano)

	var result Result
	var fleet []ports.Equipment
	var records []ports.MaintenanceRecord
	var events []ports.FailureEvent
	var readings []ports.RawReading

	err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		for i := 0; i < in.FleetSize; i++ {
			machine := s.randomEquipment(rng, i, now, nowText)

			created, err := s.repo.CreateEquipment(txCtx, machine)
			if err != nil {
				return errs.Wrap(err, "create equipment")
			}
			fleet = append(fleet, created)

			machineRecords := randomMaintenance(rng, created, now)
			for _, record := range machineRecords {
				if err := s.repo.AppendMaintenanceRecord(txCtx, record); err != nil {
					return errs.Wrap(err, "append maintenance record")
				}
			}
			records = append(records, machineRecords...)

			machineEvents := randomFailures(rng, created, now)
			for _, event := range machineEvents {
				if err := s.repo.AppendFailureEvent(txCtx, event); err != nil {
					return errs.Wrap(err, "append failure event")
				}
			}
			events = append(events, machineEvents...)

			machineReadings := randomReadings(rng, created, machineEvents, now, in.Days, in.ReadingsPerDay)
			if err := s.repo.AppendRawReadings(txCtx, machineReadings); err != nil {
				return errs.Wrap(err, "append raw readings")
			}
			readings = append(readings, machineReadings...)
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	result.Equipment = len(fleet)
	result.MaintenanceRecords = len(records)
	result.FailureEvents = len(events)
	result.RawReadings = len(readings)

	if in.CSVDir != "" {
		files, err := exportCSV(in.CSVDir, fleet, records, events, readings)
		if err != nil {
			return Result{}, err
		}
		result.CSVFiles = files
	}

	logging.Info(logCtx, "seed completed",
		slog.Int("equipment", result.Equipment),
		slog.Int("maintenance_records", result.MaintenanceRecords),
		slog.Int("failure_events", result.FailureEvents),
		slog.Int("raw_readings", result.RawReadings),
	)
	return result, nil
}

func (s *Service) randomEquipment(rng *rand.Rand, index int, now time.Time, nowText string) ports.Equipment {
	equipmentType := equipmentTypes[rng.Intn(len(equipmentTypes))]
	brands := brandsByType[equipmentType]

	ageDays := 180 + rng.Intn(8*365)
	purchased := now.AddDate(0, 0, -ageDays)

	machine := ports.Equipment{
		Serial:         fmt.Sprintf("AG-%04d", index+1),
		EquipmentType:  equipmentType,
		Brand:          brands[rng.Intn(len(brands))],
		Model:          fmt.Sprintf("M%d", 100+rng.Intn(900)),
		PurchaseDate:   purchased.Format(time.RFC3339Nano),
		OperatingHours: float64(ageDays) * (2 + rng.Float64()*8),
		CreatedAt:      nowText,
		UpdatedAt:      nowText,
	}

	if rng.Float64() < 0.9 {
		serviced := now.AddDate(0, 0, -rng.Intn(200)).Format(time.RFC3339Nano)
		machine.LastServiceDate = &serviced
	}
	return machine
}

func randomMaintenance(rng *rand.Rand, machine ports.Equipment, now time.Time) []ports.MaintenanceRecord {
	count := rng.Intn(8)
	records := make([]ports.MaintenanceRecord, 0, count)
	for i := 0; i < count; i++ {
		maintenanceType := maintenanceTypes[rng.Intn(len(maintenanceTypes))]
		records = append(records, ports.MaintenanceRecord{
			EquipmentID:     machine.EquipmentID,
			MaintenanceType: maintenanceType,
			Description:     maintenanceType + " service",
			Cost:            100 + rng.Float64()*1900,
			PerformedAt:     now.AddDate(0, 0, -rng.Intn(720)).Format(time.RFC3339Nano),
		})
	}
	return records
}

func randomFailures(rng *rand.Rand, machine ports.Equipment, now time.Time) []ports.FailureEvent {
	count := rng.Intn(4)
	events := make([]ports.FailureEvent, 0, count)
	for i := 0; i < count; i++ {
		events = append(events, ports.FailureEvent{
			EquipmentID:   machine.EquipmentID,
			FailureType:   failureTypes[rng.Intn(len(failureTypes))],
			Severity:      randomSeverity(rng),
			DowntimeHours: 1 + rng.Float64()*48,
			RepairCost:    200 + rng.Float64()*5000,
			OccurredAt:    now.AddDate(0, 0, -rng.Intn(365)).Format(time.RFC3339Nano),
		})
	}
	return events
}

// randomSeverity draws a failure severity: mostly minor, some major, the
// occasional critical.
func randomSeverity(rng *rand.Rand) string {
	roll := rng.Float64()
	switch {
	case roll < 0.08:
		return "critical"
	case roll < 0.35:
		return "major"
	default:
		return "minor"
	}
}

// randomReadings emits a dirty sensor stream. Machines that failed recently
// run hotter and vibrate more; a fixed share of machines carries a slow
// engine_temp drift.
func randomReadings(rng *rand.Rand, machine ports.Equipment, events []ports.FailureEvent, now time.Time, days, perDay int) []ports.RawReading {
	drifting := rng.Float64() < driftShare
	wear := 1.0 + 0.15*float64(len(events))

	step := 24 * time.Hour / time.Duration(perDay)
	start := now.AddDate(0, 0, -days)
	ingested := now.Format(time.RFC3339Nano)

	total := days * perDay
	readings := make([]ports.RawReading, 0, total+total/50)
	for i := 0; i < total; i++ {
		recordedAt := start.Add(time.Duration(i) * step)

		var values [5]float64
		for c := range values {
			base, jitter := channelBaseline[c][0], channelBaseline[c][1]
			values[c] = base + rng.NormFloat64()*jitter
		}
		// Wear pushes temperature and vibration up, oil pressure down.
		values[0] *= wear
		values[2] *= wear
		values[1] /= wear

		if drifting {
			values[0] += 20 * float64(i) / float64(total)
		}
		if rng.Float64() < outlierRate {
			spiked := rng.Intn(5)
			values[spiked] *= 4
		}

		reading := ports.RawReading{
			EquipmentID: machine.EquipmentID,
			RecordedAt:  recordedAt.Format(time.RFC3339Nano),
			IngestedAt:  ingested,
		}
		fields := []*string{&reading.EngineTemp, &reading.OilPressure, &reading.Vibration, &reading.RPM, &reading.FuelRate}
		for c, field := range fields {
			*field = dirtyValue(rng, values[c], c)
		}
		readings = append(readings, reading)

		if rng.Float64() < duplicateRate {
			readings = append(readings, reading)
		}
	}
	return readings
}

// dirtyValue renders one sensor value as the raw TEXT column, occasionally
// injecting a sentinel, a unit suffix or a missing value.
func dirtyValue(rng *rand.Rand, value float64, channel int) string {
	roll := rng.Float64()
	switch {
	case roll < sentinelRate:
		return sentinelPool[rng.Intn(len(sentinelPool))]
	case roll < sentinelRate+missingRate:
		return ""
	case roll < sentinelRate+missingRate+unitSuffixRate:
		return strconv.FormatFloat(value, 'f', 2, 64) + channelUnits[channel]
	default:
		return strconv.FormatFloat(value, 'f', 2, 64)
	}
}
