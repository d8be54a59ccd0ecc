package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"agrimaint/internal/infrastructure/persistence/sqlite/model"
	"agrimaint/internal/infrastructure/persistence/sqlite/uow"
	"agrimaint/internal/ports"
)

var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func setupRepository(t *testing.T) (*FleetRepository, *uow.UnitOfWork) {
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
		&model.SensorReadingClean{},
		&model.FeatureRow{},
		&model.PipelineRun{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return NewFleetRepository(db), uow.NewUnitOfWork(db)
}

func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func TestUpsertCleanReadingsKeyedByEquipmentAndTime(t *testing.T) {
	repo, _ := setupRepository(t)
	ctx := context.Background()

	reading := ports.CleanReading{
		EquipmentID:  1,
		RecordedAt:   ts(testNow),
		EngineTemp:   85,
		QualityScore: 100,
		QualityFlag:  "ok",
		RunID:        "run-1",
	}
	if err := repo.UpsertCleanReadings(ctx, []ports.CleanReading{reading}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	reading.EngineTemp = 90
	reading.RunID = "run-2"
	if err := repo.UpsertCleanReadings(ctx, []ports.CleanReading{reading}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	rows, err := repo.ListCleanReadings(ctx, 1, ports.ReadingWindow{})
	if err != nil {
		t.Fatalf("list clean readings: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1 after upsert of the same key", len(rows))
	}
	if rows[0].EngineTemp != 90 || rows[0].RunID != "run-2" {
		t.Fatalf("row = %+v, want the updated values", rows[0])
	}
}

func TestReplaceFeatureRowsDropsPreviousRun(t *testing.T) {
	repo, _ := setupRepository(t)
	ctx := context.Background()

	first := []ports.FeatureRow{
		{EquipmentID: 1, RunID: "run-1", AgeYears: 2, ComputedAt: ts(testNow)},
		{EquipmentID: 2, RunID: "run-1", AgeYears: 3, ComputedAt: ts(testNow)},
	}
	if err := repo.ReplaceFeatureRows(ctx, "run-1", first); err != nil {
		t.Fatalf("first replace: %v", err)
	}

	second := []ports.FeatureRow{{EquipmentID: 1, RunID: "run-1", AgeYears: 5, ComputedAt: ts(testNow)}}
	if err := repo.ReplaceFeatureRows(ctx, "run-1", second); err != nil {
		t.Fatalf("second replace: %v", err)
	}

	rows, err := repo.ListFeatureRows(ctx, "run-1")
	if err != nil {
		t.Fatalf("list feature rows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1 after replace", len(rows))
	}
	if rows[0].AgeYears != 5 {
		t.Fatalf("AgeYears = %v, want the replacement value 5", rows[0].AgeYears)
	}
}

func TestLatestFinishedRunIDSkipsRunningRuns(t *testing.T) {
	repo, _ := setupRepository(t)
	ctx := context.Background()

	runs := []ports.PipelineRun{
		{RunID: "run-old", StartedAt: ts(testNow.Add(-2 * time.Hour)), Status: "running"},
		{RunID: "run-new", StartedAt: ts(testNow.Add(-time.Hour)), Status: "running"},
		{RunID: "run-live", StartedAt: ts(testNow), Status: "running"},
	}
	for _, run := range runs {
		if err := repo.CreatePipelineRun(ctx, run); err != nil {
			t.Fatalf("create pipeline run: %v", err)
		}
	}

	if _, err := repo.LatestFinishedRunID(ctx); !errors.Is(err, ports.ErrPipelineRunNotFound) {
		t.Fatalf("LatestFinishedRunID with only running runs = %v, want ErrPipelineRunNotFound", err)
	}

	if err := repo.FinishPipelineRun(ctx, "run-old", "ok", ts(testNow.Add(-90*time.Minute)), "{}"); err != nil {
		t.Fatalf("finish run-old: %v", err)
	}
	if err := repo.FinishPipelineRun(ctx, "run-new", "degraded", ts(testNow.Add(-30*time.Minute)), "{}"); err != nil {
		t.Fatalf("finish run-new: %v", err)
	}

	runID, err := repo.LatestFinishedRunID(ctx)
	if err != nil {
		t.Fatalf("LatestFinishedRunID() error = %v", err)
	}
	if runID != "run-new" {
		t.Fatalf("LatestFinishedRunID() = %q, want run-new", runID)
	}
}

func TestFinishPipelineRunUnknownID(t *testing.T) {
	repo, _ := setupRepository(t)

	err := repo.FinishPipelineRun(context.Background(), "run-missing", "ok", ts(testNow), "{}")
	if !errors.Is(err, ports.ErrPipelineRunNotFound) {
		t.Fatalf("FinishPipelineRun(unknown) = %v, want ErrPipelineRunNotFound", err)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	repo, unit := setupRepository(t)
	ctx := context.Background()

	sentinel := errors.New("abort")
	err := unit.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := repo.CreateEquipment(txCtx, ports.Equipment{
			Serial:        "AG-TX-1",
			EquipmentType: "tractor",
			CreatedAt:     ts(testNow),
			UpdatedAt:     ts(testNow),
		}); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("WithTx() error = %v, want the callback error", err)
	}

	fleet, err := repo.ListEquipment(ctx)
	if err != nil {
		t.Fatalf("list equipment: %v", err)
	}
	if len(fleet) != 0 {
		t.Fatalf("equipment = %d rows after rollback, want 0", len(fleet))
	}
}
