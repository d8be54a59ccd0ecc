package seed

import (
	"context"
	"encoding/csv"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"agrimaint/internal/infrastructure/persistence/sqlite/model"
	"agrimaint/internal/infrastructure/persistence/sqlite/repository"
	"agrimaint/internal/infrastructure/persistence/sqlite/uow"
	"agrimaint/internal/ports"
)

var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func setupService(t *testing.T) (*Service, *repository.FleetRepository) {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "fleet.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := db.AutoMigrate(
		&model.Equipment{},
		&model.MaintenanceRecord{},
		&model.FailureEvent{},
		&model.SensorReadingRaw{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	repo := repository.NewFleetRepository(db)
	svc := NewService(repo, uow.NewUnitOfWork(db))
	svc.now = func() time.Time { return testNow }
	return svc, repo
}

func TestRunIsDeterministicPerSeed(t *testing.T) {
	ctx := context.Background()

	svcA, repoA := setupService(t)
	svcB, repoB := setupService(t)

	in := Input{Seed: 42, FleetSize: 5, Days: 10, ReadingsPerDay: 4}
	resultA, err := svcA.Run(ctx, in)
	if err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	resultB, err := svcB.Run(ctx, in)
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}

	if resultA.Equipment != resultB.Equipment ||
		resultA.MaintenanceRecords != resultB.MaintenanceRecords ||
		resultA.FailureEvents != resultB.FailureEvents ||
		resultA.RawReadings != resultB.RawReadings {
		t.Fatalf("same seed produced different counts: %+v vs %+v", resultA, resultB)
	}
	if resultA.Equipment != 5 {
		t.Fatalf("Equipment = %d, want 5", resultA.Equipment)
	}
	if resultA.RawReadings < 5*10*4 {
		t.Fatalf("RawReadings = %d, want at least %d", resultA.RawReadings, 5*10*4)
	}

	fleetA, err := repoA.ListEquipment(ctx)
	if err != nil {
		t.Fatalf("list equipment: %v", err)
	}
	fleetB, err := repoB.ListEquipment(ctx)
	if err != nil {
		t.Fatalf("list equipment: %v", err)
	}
	for i := range fleetA {
		if !equalEquipment(fleetA[i], fleetB[i]) {
			t.Fatalf("equipment %d differs across seeded databases", i)
		}
	}
}

// equalEquipment compares by value, dereferencing the optional service date.
func equalEquipment(a, b ports.Equipment) bool {
	if (a.LastServiceDate == nil) != (b.LastServiceDate == nil) {
		return false
	}
	if a.LastServiceDate != nil && *a.LastServiceDate != *b.LastServiceDate {
		return false
	}
	a.LastServiceDate, b.LastServiceDate = nil, nil
	return a == b
}

func TestRunProducesDirtyReadings(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	if _, err := svc.Run(ctx, Input{Seed: 7, FleetSize: 3, Days: 30, ReadingsPerDay: 8}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	fleet, err := repo.ListEquipment(ctx)
	if err != nil {
		t.Fatalf("list equipment: %v", err)
	}

	sentinels := map[string]bool{"ERROR": true, "N/A": true, "NaN": true, "null": true, "-999": true}
	sawSentinel, sawMissing, sawUnit := false, false, false
	for _, machine := range fleet {
		readings, err := repo.ListRawReadings(ctx, machine.EquipmentID, ports.ReadingWindow{})
		if err != nil {
			t.Fatalf("list raw readings: %v", err)
		}
		for _, r := range readings {
			for _, v := range []string{r.EngineTemp, r.OilPressure, r.Vibration, r.RPM, r.FuelRate} {
				switch {
				case v == "":
					sawMissing = true
				case sentinels[v]:
					sawSentinel = true
				case strings.Contains(v, " "):
					sawUnit = true
				}
			}
		}
	}
	// 720 readings per machine at 2% rates each: all three kinds show up.
	if !sawSentinel || !sawMissing || !sawUnit {
		t.Fatalf("dirt missing from stream: sentinel=%v missing=%v unit=%v", sawSentinel, sawMissing, sawUnit)
	}
}

func TestRunExportsCSV(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	dir := t.TempDir()

	result, err := svc.Run(ctx, Input{Seed: 1, FleetSize: 2, Days: 5, ReadingsPerDay: 2, CSVDir: dir})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(result.CSVFiles) != 4 {
		t.Fatalf("CSVFiles = %d, want 4", len(result.CSVFiles))
	}

	for _, name := range []string{"equipment.csv", "maintenance.csv", "failures.csv", "sensor_readings.csv"} {
		path := filepath.Join(dir, name)
		f, err := os.Open(path)
		if err != nil {
			t.Fatalf("open %s: %v", name, err)
		}
		rows, err := csv.NewReader(f).ReadAll()
		_ = f.Close()
		if err != nil {
			t.Fatalf("parse %s: %v", name, err)
		}
		if len(rows) < 1 {
			t.Fatalf("%s has no header row", name)
		}
	}
}

func TestRandomSeverityCoversAllTiers(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	seen := map[string]int{}
	for i := 0; i < 1000; i++ {
		severity := randomSeverity(rng)
		switch severity {
		case "minor", "major", "critical":
			seen[severity]++
		default:
			t.Fatalf("randomSeverity() = %q, want minor, major or critical", severity)
		}
	}
	for _, severity := range []string{"minor", "major", "critical"} {
		if seen[severity] == 0 {
			t.Fatalf("severity %q never drawn in 1000 samples", severity)
		}
	}
	if seen["minor"] <= seen["critical"] {
		t.Fatalf("severity skew inverted: minor %d, critical %d", seen["minor"], seen["critical"])
	}
}

func TestRunDefaults(t *testing.T) {
	svc, _ := setupService(t)

	result, err := svc.Run(context.Background(), Input{Seed: 3, Days: 1, ReadingsPerDay: 1})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Equipment != 30 {
		t.Fatalf("Equipment = %d, want default fleet of 30", result.Equipment)
	}
}
