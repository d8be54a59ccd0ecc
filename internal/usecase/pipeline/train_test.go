package pipeline

import (
	"context"
	"math"
	"testing"

	"agrimaint/internal/ports"
)

func TestIsHoldoutDeterministic(t *testing.T) {
	sawTrain, sawTest := false, false
	for id := uint64(1); id <= 100; id++ {
		first := isHoldout(id)
		if second := isHoldout(id); second != first {
			t.Fatalf("isHoldout(%d) flapped between calls", id)
		}
		if first {
			sawTest = true
		} else {
			sawTrain = true
		}
	}
	if !sawTrain || !sawTest {
		t.Fatalf("split over ids 1..100 landed in one bucket: train=%v test=%v", sawTrain, sawTest)
	}
}

func TestHasBothClasses(t *testing.T) {
	cases := []struct {
		labels []float64
		want   bool
	}{
		{nil, false},
		{[]float64{0, 0, 0}, false},
		{[]float64{1, 1}, false},
		{[]float64{0, 1, 0}, true},
	}
	for _, tc := range cases {
		if got := hasBothClasses(tc.labels); got != tc.want {
			t.Fatalf("hasBothClasses(%v) = %v, want %v", tc.labels, got, tc.want)
		}
	}
}

func TestLabelEquipmentFromFailureHistory(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()
	machine := createTestEquipment(t, repo, "AG-0301")

	asOf := testNow.AddDate(0, 0, -30)
	for _, event := range []ports.FailureEvent{
		// Before the snapshot: must not count.
		{EquipmentID: machine.EquipmentID, FailureType: "engine", Severity: "minor", OccurredAt: ts(asOf.AddDate(0, 0, -5))},
		// Ten days into the horizon: sets both the label and the RUL target.
		{EquipmentID: machine.EquipmentID, FailureType: "hydraulic", Severity: "major", OccurredAt: ts(asOf.AddDate(0, 0, 10))},
	} {
		if err := repo.AppendFailureEvent(ctx, event); err != nil {
			t.Fatalf("append failure event: %v", err)
		}
	}

	label, rulTarget, err := svc.labelEquipment(ctx, machine.EquipmentID, asOf, testNow)
	if err != nil {
		t.Fatalf("labelEquipment() error = %v", err)
	}
	if label != 1 {
		t.Fatalf("label = %v, want 1 for a failure inside the horizon", label)
	}
	if math.Abs(rulTarget-10) > 1e-9 {
		t.Fatalf("rulTarget = %v, want 10", rulTarget)
	}
}

func TestLabelEquipmentHealthy(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()
	machine := createTestEquipment(t, repo, "AG-0302")

	asOf := testNow.AddDate(0, 0, -30)
	label, rulTarget, err := svc.labelEquipment(ctx, machine.EquipmentID, asOf, testNow)
	if err != nil {
		t.Fatalf("labelEquipment() error = %v", err)
	}
	if label != 0 {
		t.Fatalf("label = %v, want 0 without failures", label)
	}
	if rulTarget != 365 {
		t.Fatalf("rulTarget = %v, want clipped ceiling of 365", rulTarget)
	}
}

func TestTrainModelsRequiresEquipment(t *testing.T) {
	svc, _ := setupService(t)

	if _, err := svc.TrainModels(context.Background(), TrainModelsInput{HorizonDays: 30}); err == nil {
		t.Fatal("TrainModels() on an empty fleet succeeded, want error")
	}
}
