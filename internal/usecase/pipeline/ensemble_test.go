package pipeline

import (
	"context"
	"strings"
	"testing"

	"agrimaint/internal/ports"
)

func seedFeatureRows(t *testing.T, repo ports.FleetRepository, runID string, count int) {
	t.Helper()

	rows := make([]ports.FeatureRow, 0, count)
	for i := 0; i < count; i++ {
		rows = append(rows, ports.FeatureRow{
			EquipmentID:      uint64(i + 1),
			RunID:            runID,
			AgeYears:         2 + float64(i),
			UsageRatio:       1000 + 100*float64(i),
			DaysSinceService: 30 * float64(i),
			FailureCount:     float64(i % 3),
			EngineTemp:       ports.SensorStats{Mean: 85 + float64(i), Min: 80, Max: 95},
			OilPressure:      ports.SensorStats{Mean: 45, Min: 40 - float64(i), Max: 50},
			Vibration:        ports.SensorStats{Mean: 3 + 0.5*float64(i), Max: 6},
			RPM:              ports.SensorStats{Mean: 1800, Std: 100 + 10*float64(i)},
			FuelRate:         ports.SensorStats{Mean: 12},
			ComputedAt:       ts(testNow),
		})
	}
	if err := repo.ReplaceFeatureRows(context.Background(), runID, rows); err != nil {
		t.Fatalf("replace feature rows: %v", err)
	}
}

func TestPredictDegradesWithoutTrainedModels(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()
	seedFeatureRows(t, repo, "run-degraded", 4)

	result, err := svc.Predict(ctx, PredictInput{RunID: "run-degraded"})
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}

	if !result.Degraded {
		t.Fatal("Degraded = false, want true without trained artifacts")
	}
	if !strings.Contains(result.Reason, "missing trained artifacts") {
		t.Fatalf("Reason = %q, want missing-artifacts reason", result.Reason)
	}
	if result.Predictions != 4 {
		t.Fatalf("Predictions = %d, want 4", result.Predictions)
	}

	predictions, err := repo.ListPredictionsByRun(ctx, "run-degraded")
	if err != nil {
		t.Fatalf("list predictions: %v", err)
	}
	for _, p := range predictions {
		if p.ModelName != "heuristic-fallback" {
			t.Fatalf("ModelName = %q, want heuristic-fallback", p.ModelName)
		}
		if p.FailureProbability < 0 || p.FailureProbability > 1 {
			t.Fatalf("FailureProbability = %v, want in [0,1]", p.FailureProbability)
		}
		if p.RULDays < 0 || p.RULDays > 365 {
			t.Fatalf("RULDays = %v, want in [0,365]", p.RULDays)
		}
		if p.AnomalyScore < 0 || p.AnomalyScore > 100 {
			t.Fatalf("AnomalyScore = %v, want in [0,100]", p.AnomalyScore)
		}
		if p.Priority == "" {
			t.Fatal("Priority is empty")
		}
	}
}

func TestPredictStoresBatchAnomalyBounds(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()
	seedFeatureRows(t, repo, "run-bounds", 5)

	if _, err := svc.Predict(ctx, PredictInput{RunID: "run-bounds"}); err != nil {
		t.Fatalf("Predict() error = %v", err)
	}

	predictions, err := repo.ListPredictionsByRun(ctx, "run-bounds")
	if err != nil {
		t.Fatalf("list predictions: %v", err)
	}

	first := predictions[0]
	if first.AnomalyRawMax < first.AnomalyRawMin {
		t.Fatalf("raw bounds inverted: min %v max %v", first.AnomalyRawMin, first.AnomalyRawMax)
	}
	for _, p := range predictions[1:] {
		// Every prediction of the batch carries the same raw bounds.
		if p.AnomalyRawMin != first.AnomalyRawMin || p.AnomalyRawMax != first.AnomalyRawMax {
			t.Fatalf("raw bounds differ within batch: %v/%v vs %v/%v",
				p.AnomalyRawMin, p.AnomalyRawMax, first.AnomalyRawMin, first.AnomalyRawMax)
		}
	}
}

func TestPredictEmptyRunWritesNothing(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	result, err := svc.Predict(ctx, PredictInput{RunID: "run-empty"})
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if result.Predictions != 0 || result.Degraded {
		t.Fatalf("Predict() on empty run = %+v, want zero and not degraded", result)
	}

	predictions, err := repo.ListPredictionsByRun(ctx, "run-empty")
	if err != nil {
		t.Fatalf("list predictions: %v", err)
	}
	if len(predictions) != 0 {
		t.Fatalf("predictions = %d, want 0", len(predictions))
	}
}

func TestHeuristicScoresBounded(t *testing.T) {
	worst := ports.FeatureRow{
		FailureCount:     20,
		NeedsMaintenance: 1,
		IsOld:            1,
		HighVibration:    1,
	}
	prob, rul := heuristicScores(worst)
	if prob != 1 {
		t.Fatalf("heuristic prob = %v, want clamped to 1", prob)
	}
	if rul != 0 {
		t.Fatalf("heuristic rul = %v, want 0 at max probability", rul)
	}

	healthy := ports.FeatureRow{}
	prob, rul = heuristicScores(healthy)
	if prob != 0.05 {
		t.Fatalf("heuristic base prob = %v, want 0.05", prob)
	}
	if rul <= 0 || rul > 365 {
		t.Fatalf("heuristic rul = %v, want in (0,365]", rul)
	}
}
