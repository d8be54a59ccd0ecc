package fleet

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"agrimaint/internal/infrastructure/persistence/sqlite/model"
	"agrimaint/internal/infrastructure/persistence/sqlite/repository"
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
		&model.Prediction{},
		&model.Recommendation{},
		&model.ScheduleTask{},
		&model.KPIMetric{},
		&model.PipelineRun{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	repo := repository.NewFleetRepository(db)
	svc := NewService(repo)
	svc.now = func() time.Time { return testNow }
	return svc, repo
}

func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func TestCreateEquipmentDefaults(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	created, err := svc.CreateEquipment(ctx, CreateEquipmentInput{
		EquipmentType: "  Tractor ",
		Brand:         "Fendt",
		Model:         "724",
	})
	if err != nil {
		t.Fatalf("CreateEquipment() error = %v", err)
	}
	if created.EquipmentID == 0 {
		t.Fatal("EquipmentID = 0, want assigned id")
	}
	if created.EquipmentType != "tractor" {
		t.Fatalf("EquipmentType = %q, want normalized to tractor", created.EquipmentType)
	}
	if !strings.HasPrefix(created.Serial, "EQ-") {
		t.Fatalf("Serial = %q, want generated EQ- prefix", created.Serial)
	}
	if created.CreatedAt != ts(testNow) || created.UpdatedAt != ts(testNow) {
		t.Fatalf("timestamps = %q/%q, want %q", created.CreatedAt, created.UpdatedAt, ts(testNow))
	}
}

func TestCreateEquipmentRejectsBadInput(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	if _, err := svc.CreateEquipment(ctx, CreateEquipmentInput{}); err == nil {
		t.Fatal("CreateEquipment() without a type succeeded, want error")
	}
	if _, err := svc.CreateEquipment(ctx, CreateEquipmentInput{EquipmentType: "tractor", PurchaseDate: "last tuesday"}); err == nil {
		t.Fatal("CreateEquipment() with malformed purchase date succeeded, want error")
	}
	if _, err := svc.CreateEquipment(ctx, CreateEquipmentInput{EquipmentType: "tractor", OperatingHours: -1}); err == nil {
		t.Fatal("CreateEquipment() with negative hours succeeded, want error")
	}
}

func TestUpdateEquipmentPartial(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	created, err := svc.CreateEquipment(ctx, CreateEquipmentInput{
		Serial:        "AG-9001",
		EquipmentType: "harvester",
		Brand:         "Claas",
		Model:         "Lexion",
	})
	if err != nil {
		t.Fatalf("CreateEquipment() error = %v", err)
	}

	hours := 1234.5
	updated, err := svc.UpdateEquipment(ctx, UpdateEquipmentInput{
		EquipmentID:    created.EquipmentID,
		OperatingHours: &hours,
	})
	if err != nil {
		t.Fatalf("UpdateEquipment() error = %v", err)
	}
	if updated.OperatingHours != hours {
		t.Fatalf("OperatingHours = %v, want %v", updated.OperatingHours, hours)
	}
	if updated.Brand != "Claas" || updated.Model != "Lexion" {
		t.Fatalf("untouched fields changed: %q/%q", updated.Brand, updated.Model)
	}

	fetched, err := svc.GetEquipment(ctx, created.EquipmentID)
	if err != nil {
		t.Fatalf("GetEquipment() error = %v", err)
	}
	if fetched.OperatingHours != hours {
		t.Fatalf("persisted OperatingHours = %v, want %v", fetched.OperatingHours, hours)
	}
}

func TestEquipmentNotFoundPropagates(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	if _, err := svc.GetEquipment(ctx, 999); !errors.Is(err, ports.ErrEquipmentNotFound) {
		t.Fatalf("GetEquipment(999) error = %v, want ErrEquipmentNotFound", err)
	}
	if _, err := svc.EquipmentPredictions(ctx, 999, 10); !errors.Is(err, ports.ErrEquipmentNotFound) {
		t.Fatalf("EquipmentPredictions(999) error = %v, want ErrEquipmentNotFound", err)
	}
	brand := "x"
	if _, err := svc.UpdateEquipment(ctx, UpdateEquipmentInput{EquipmentID: 999, Brand: &brand}); !errors.Is(err, ports.ErrEquipmentNotFound) {
		t.Fatalf("UpdateEquipment(999) error = %v, want ErrEquipmentNotFound", err)
	}
}

func TestDeleteEquipment(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	created, err := svc.CreateEquipment(ctx, CreateEquipmentInput{EquipmentType: "sprayer"})
	if err != nil {
		t.Fatalf("CreateEquipment() error = %v", err)
	}
	if err := svc.DeleteEquipment(ctx, created.EquipmentID); err != nil {
		t.Fatalf("DeleteEquipment() error = %v", err)
	}
	if _, err := svc.GetEquipment(ctx, created.EquipmentID); !errors.Is(err, ports.ErrEquipmentNotFound) {
		t.Fatalf("GetEquipment after delete error = %v, want ErrEquipmentNotFound", err)
	}
}

// seedFinishedRun stores a finished run with predictions and
// recommendations for two machines, one of them high risk.
func seedFinishedRun(t *testing.T, svc *Service, repo *repository.FleetRepository, runID string) (ports.Equipment, ports.Equipment) {
	t.Helper()
	ctx := context.Background()

	safe, err := svc.CreateEquipment(ctx, CreateEquipmentInput{Serial: "AG-8001", EquipmentType: "tractor"})
	if err != nil {
		t.Fatalf("create equipment: %v", err)
	}
	risky, err := svc.CreateEquipment(ctx, CreateEquipmentInput{Serial: "AG-8002", EquipmentType: "harvester"})
	if err != nil {
		t.Fatalf("create equipment: %v", err)
	}

	if err := repo.CreatePipelineRun(ctx, ports.PipelineRun{RunID: runID, StartedAt: ts(testNow), Status: "running"}); err != nil {
		t.Fatalf("create pipeline run: %v", err)
	}
	if err := repo.FinishPipelineRun(ctx, runID, "ok", ts(testNow), "{}"); err != nil {
		t.Fatalf("finish pipeline run: %v", err)
	}

	if err := repo.AppendPredictions(ctx, []ports.Prediction{
		{EquipmentID: safe.EquipmentID, RunID: runID, FailureProbability: 0.05, RULDays: 300, RiskScore: 10, Priority: "NORMAL", ModelName: "ensemble-v1", CreatedAt: ts(testNow)},
		{EquipmentID: risky.EquipmentID, RunID: runID, FailureProbability: 0.9, RULDays: 2, RiskScore: 90, Priority: "CRITICAL", ModelName: "ensemble-v1", CreatedAt: ts(testNow)},
	}); err != nil {
		t.Fatalf("append predictions: %v", err)
	}

	if err := repo.AppendRecommendations(ctx, []ports.Recommendation{
		{EquipmentID: safe.EquipmentID, RunID: runID, NetBenefit: -100, CreatedAt: ts(testNow)},
		{EquipmentID: risky.EquipmentID, RunID: runID, NetBenefit: 9000, ShouldMaintain: true, CreatedAt: ts(testNow)},
	}); err != nil {
		t.Fatalf("append recommendations: %v", err)
	}

	return safe, risky
}

func TestAnalyticsSummarizesLatestRun(t *testing.T) {
	svc, repo := setupService(t)
	_, risky := seedFinishedRun(t, svc, repo, "run-analytics")

	summary, err := svc.Analytics(context.Background())
	if err != nil {
		t.Fatalf("Analytics() error = %v", err)
	}

	if summary.RunID != "run-analytics" {
		t.Fatalf("RunID = %q, want run-analytics", summary.RunID)
	}
	if summary.FleetSize != 2 {
		t.Fatalf("FleetSize = %d, want 2", summary.FleetSize)
	}
	if summary.TierCounts["CRITICAL"] != 1 || summary.TierCounts["NORMAL"] != 1 {
		t.Fatalf("TierCounts = %v, want one CRITICAL and one NORMAL", summary.TierCounts)
	}
	if summary.MeanRiskScore != 50 {
		t.Fatalf("MeanRiskScore = %v, want 50", summary.MeanRiskScore)
	}
	// Only positive net benefit counts toward the total.
	if summary.TotalNetBenefit != 9000 {
		t.Fatalf("TotalNetBenefit = %v, want 9000", summary.TotalNetBenefit)
	}
	if len(summary.EquipmentAtRisk) != 1 {
		t.Fatalf("EquipmentAtRisk = %d entries, want 1", len(summary.EquipmentAtRisk))
	}
	if summary.EquipmentAtRisk[0].EquipmentID != risky.EquipmentID || summary.EquipmentAtRisk[0].Serial != "AG-8002" {
		t.Fatalf("EquipmentAtRisk[0] = %+v, want the CRITICAL machine", summary.EquipmentAtRisk[0])
	}
}

func TestLatestViewsRequireFinishedRun(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	if _, err := svc.LatestPredictions(ctx); !errors.Is(err, ports.ErrPipelineRunNotFound) {
		t.Fatalf("LatestPredictions() error = %v, want ErrPipelineRunNotFound", err)
	}
	if _, err := svc.Analytics(ctx); !errors.Is(err, ports.ErrPipelineRunNotFound) {
		t.Fatalf("Analytics() error = %v, want ErrPipelineRunNotFound", err)
	}
}
