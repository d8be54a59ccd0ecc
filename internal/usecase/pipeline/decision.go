package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"agrimaint/internal/bootstrap/logging"
	"agrimaint/internal/errs"
	"agrimaint/internal/ports"
)

// Priority tiers, most severe first.
const (
	PriorityCritical = "CRITICAL"
	PriorityHigh     = "HIGH"
	PriorityMedium   = "MEDIUM"
	PriorityLow      = "LOW"
	PriorityNormal   = "NORMAL"
)

// Risk score weights: failure probability dominates, RUL criticality next,
// anomaly score last.
const (
	weightFailureProb    = 0.5
	weightRULCriticality = 0.3
	weightAnomaly        = 0.2
)

type tierPolicy struct {
	action          string
	maintenanceCost float64
	failureCost     float64
	dueDays         int
}

var tierPolicies = map[string]tierPolicy{
	PriorityCritical: {"Stop equipment and service immediately", 2000, 12000, 1},
	PriorityHigh:     {"Schedule maintenance within 3 days", 1500, 8000, 3},
	PriorityMedium:   {"Schedule maintenance within 2 weeks", 800, 4000, 14},
	PriorityLow:      {"Inspect at next routine service", 400, 1500, 30},
	PriorityNormal:   {"No action needed, continue monitoring", 200, 500, 90},
}

var equipmentTypeMultipliers = map[string]float64{
	"tractor":    1.2,
	"harvester":  1.5,
	"irrigation": 0.8,
	"sprayer":    0.9,
	"seeder":     1.0,
}

// riskScore combines the three ensemble outputs into [0,100].
func riskScore(failureProb, rulDays, anomalyScore float64) float64 {
	return weightFailureProb*(failureProb*100) +
		weightRULCriticality*rulCriticality(rulDays) +
		weightAnomaly*anomalyScore
}

// rulCriticality is a step function: the shorter the remaining life, the
// higher the urgency.
func rulCriticality(rulDays float64) float64 {
	switch {
	case rulDays < 3:
		return 100
	case rulDays < 7:
		return 80
	case rulDays < 14:
		return 60
	case rulDays < 30:
		return 40
	case rulDays < 90:
		return 20
	default:
		return 0
	}
}

// priorityFor assigns a tier from failure probability and RUL jointly.
// For a fixed RUL the tier is monotone in probability: raising the
// probability never lowers the severity.
func priorityFor(failureProb, rulDays float64) string {
	switch {
	case failureProb > 0.80 && rulDays < 3:
		return PriorityCritical
	case failureProb > 0.60 || rulDays < 7:
		return PriorityHigh
	case failureProb > 0.40 || rulDays < 14:
		return PriorityMedium
	case failureProb > 0.20 || rulDays < 30:
		return PriorityLow
	default:
		return PriorityNormal
	}
}

func typeMultiplier(equipmentType string) float64 {
	if m, ok := equipmentTypeMultipliers[strings.ToLower(strings.TrimSpace(equipmentType))]; ok {
		return m
	}
	return 1.0
}

type DecideInput struct {
	RunID string
}

type DecideResult struct {
	RunID           string
	Recommendations int
	ScheduleTasks   int
}

// Decide turns the run's predictions into recommendations, schedule tasks
// and fleet KPIs. Pure rule evaluation; no state is carried between rows.
func (s *Service) Decide(ctx context.Context, in DecideInput) (DecideResult, error) {
	if ctx == nil {
		return DecideResult{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return DecideResult{}, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return DecideResult{}, errors.New("fleet repository is required")
	}
	if s.uow == nil {
		return DecideResult{}, errors.New("unit of work is required")
	}
	if strings.TrimSpace(in.RunID) == "" {
		return DecideResult{}, errors.New("run id is required")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "pipeline.decision"), slog.String("run_id", in.RunID))

	predictions, err := s.repo.ListPredictionsByRun(ctx, in.RunID)
	if err != nil {
		return DecideResult{}, errs.Wrap(err, "list predictions for run")
	}

	equipment, err := s.repo.ListEquipment(ctx)
	if err != nil {
		return DecideResult{}, errs.Wrap(err, "list equipment")
	}
	typesByID := make(map[uint64]string, len(equipment))
	for _, item := range equipment {
		typesByID[item.EquipmentID] = item.EquipmentType
	}

	now := s.now()
	nowText := formatTime(now)

	recommendations := make([]ports.Recommendation, 0, len(predictions))
	tasks := make([]ports.ScheduleTask, 0, len(predictions))
	tierCounts := map[string]float64{}
	totalRisk := 0.0
	totalNetBenefit := 0.0

	for _, prediction := range predictions {
		policy := tierPolicies[prediction.Priority]
		multiplier := typeMultiplier(typesByID[prediction.EquipmentID])

		maintenanceCost := policy.maintenanceCost * multiplier
		expectedFailureCost := policy.failureCost * multiplier * prediction.FailureProbability
		netBenefit := expectedFailureCost - maintenanceCost

		recommendations = append(recommendations, ports.Recommendation{
			EquipmentID:         prediction.EquipmentID,
			RunID:               in.RunID,
			Priority:            prediction.Priority,
			Action:              policy.action,
			MaintenanceCost:     maintenanceCost,
			ExpectedFailureCost: expectedFailureCost,
			NetBenefit:          netBenefit,
			ShouldMaintain:      netBenefit > 0,
			CreatedAt:           nowText,
		})

		tasks = append(tasks, ports.ScheduleTask{
			EquipmentID: prediction.EquipmentID,
			RunID:       in.RunID,
			Priority:    prediction.Priority,
			Action:      policy.action,
			DueDate:     formatTime(now.AddDate(0, 0, policy.dueDays)),
			Status:      "pending",
			CreatedAt:   nowText,
		})

		tierCounts[prediction.Priority]++
		totalRisk += prediction.RiskScore
		if netBenefit > 0 {
			totalNetBenefit += netBenefit
		}
	}

	kpis := []ports.KPIMetric{
		{RunID: in.RunID, Name: "fleet_size", Value: float64(len(predictions)), ComputedAt: nowText},
		{RunID: in.RunID, Name: "total_predicted_savings", Value: totalNetBenefit, ComputedAt: nowText},
	}
	if len(predictions) > 0 {
		kpis = append(kpis, ports.KPIMetric{
			RunID: in.RunID, Name: "mean_risk_score", Value: totalRisk / float64(len(predictions)), ComputedAt: nowText,
		})
	}
	for _, tier := range []string{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow, PriorityNormal} {
		kpis = append(kpis, ports.KPIMetric{
			RunID: in.RunID, Name: "tier_" + strings.ToLower(tier), Value: tierCounts[tier], ComputedAt: nowText,
		})
	}

	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.AppendRecommendations(txCtx, recommendations); err != nil {
			return err
		}
		if err := s.repo.AppendScheduleTasks(txCtx, tasks); err != nil {
			return err
		}
		return s.repo.AppendKPIMetrics(txCtx, kpis)
	}); err != nil {
		return DecideResult{}, errs.Wrap(err, "persist decisions")
	}

	logging.Info(logCtx, "decisions persisted",
		slog.Int("recommendations", len(recommendations)),
		slog.Int("schedule_tasks", len(tasks)),
	)
	return DecideResult{RunID: in.RunID, Recommendations: len(recommendations), ScheduleTasks: len(tasks)}, nil
}
