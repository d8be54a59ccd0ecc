package pipeline

import (
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"agrimaint/internal/infrastructure/modelstore"
	"agrimaint/internal/infrastructure/persistence/sqlite/model"
	"agrimaint/internal/infrastructure/persistence/sqlite/repository"
	"agrimaint/internal/infrastructure/persistence/sqlite/uow"
	"agrimaint/internal/sensorspec"
)

// testNow is the fixed wall clock all pipeline tests run against.
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
		&model.SensorReadingClean{},
		&model.FeatureRow{},
		&model.Prediction{},
		&model.Recommendation{},
		&model.ScheduleTask{},
		&model.KPIMetric{},
		&model.ModelArtifact{},
		&model.PipelineRun{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	repo := repository.NewFleetRepository(db)
	svc := NewService(repo, uow.NewUnitOfWork(db), modelstore.NewSQLiteStore(db), sensorspec.Default(), Params{})
	svc.now = func() time.Time { return testNow }
	return svc, repo
}

func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
