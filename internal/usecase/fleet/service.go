package fleet

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"agrimaint/internal/bootstrap/logging"
	"agrimaint/internal/errs"
	"agrimaint/internal/ports"
)

// Service is the read/write surface behind the REST API. All pipeline
// outputs are exposed per latest finished run; equipment is plain CRUD.
type Service struct {
	repo ports.FleetRepository
	now  func() time.Time
}

func NewService(repo ports.FleetRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

type CreateEquipmentInput struct {
	Serial          string
	EquipmentType   string
	Brand           string
	Model           string
	PurchaseDate    string
	LastServiceDate *string
	OperatingHours  float64
}

func (s *Service) CreateEquipment(ctx context.Context, in CreateEquipmentInput) (ports.Equipment, error) {
	if ctx == nil {
		return ports.Equipment{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return ports.Equipment{}, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return ports.Equipment{}, errors.New("fleet repository is required")
	}
	if strings.TrimSpace(in.EquipmentType) == "" {
		return ports.Equipment{}, errors.New("equipment type is required")
	}
	if strings.TrimSpace(in.PurchaseDate) != "" {
		if _, err := time.Parse(time.RFC3339Nano, in.PurchaseDate); err != nil {
			return ports.Equipment{}, errs.Wrap(err, "parse purchase date")
		}
	}
	if in.OperatingHours < 0 {
		return ports.Equipment{}, errors.New("operating hours must not be negative")
	}

	serial := strings.TrimSpace(in.Serial)
	if serial == "" {
		serial = "EQ-" + uuid.NewString()
	}

	nowText := s.now().UTC().Format(time.RFC3339Nano)
	created, err := s.repo.CreateEquipment(ctx, ports.Equipment{
		Serial:          serial,
		EquipmentType:   strings.ToLower(strings.TrimSpace(in.EquipmentType)),
		Brand:           in.Brand,
		Model:           in.Model,
		PurchaseDate:    in.PurchaseDate,
		LastServiceDate: in.LastServiceDate,
		OperatingHours:  in.OperatingHours,
		CreatedAt:       nowText,
		UpdatedAt:       nowText,
	})
	if err != nil {
		return ports.Equipment{}, errs.Wrap(err, "create equipment")
	}

	logging.Info(logging.WithAttrs(ctx, slog.String("component", "fleet")),
		"equipment created", slog.Uint64("equipment_id", created.EquipmentID), slog.String("serial", created.Serial))
	return created, nil
}

func (s *Service) GetEquipment(ctx context.Context, equipmentID uint64) (ports.Equipment, error) {
	if ctx == nil {
		return ports.Equipment{}, errors.New("context is required")
	}
	if s.repo == nil {
		return ports.Equipment{}, errors.New("fleet repository is required")
	}
	return s.repo.GetEquipment(ctx, equipmentID)
}

func (s *Service) ListEquipment(ctx context.Context) ([]ports.Equipment, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if s.repo == nil {
		return nil, errors.New("fleet repository is required")
	}
	return s.repo.ListEquipment(ctx)
}

type UpdateEquipmentInput struct {
	EquipmentID     uint64
	Brand           *string
	Model           *string
	LastServiceDate *string
	OperatingHours  *float64
}

// UpdateEquipment applies a partial update; nil fields are left untouched.
func (s *Service) UpdateEquipment(ctx context.Context, in UpdateEquipmentInput) (ports.Equipment, error) {
	if ctx == nil {
		return ports.Equipment{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return ports.Equipment{}, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return ports.Equipment{}, errors.New("fleet repository is required")
	}

	current, err := s.repo.GetEquipment(ctx, in.EquipmentID)
	if err != nil {
		return ports.Equipment{}, err
	}

	if in.Brand != nil {
		current.Brand = *in.Brand
	}
	if in.Model != nil {
		current.Model = *in.Model
	}
	if in.LastServiceDate != nil {
		if _, err := time.Parse(time.RFC3339Nano, *in.LastServiceDate); err != nil {
			return ports.Equipment{}, errs.Wrap(err, "parse last service date")
		}
		current.LastServiceDate = in.LastServiceDate
	}
	if in.OperatingHours != nil {
		if *in.OperatingHours < 0 {
			return ports.Equipment{}, errors.New("operating hours must not be negative")
		}
		current.OperatingHours = *in.OperatingHours
	}
	current.UpdatedAt = s.now().UTC().Format(time.RFC3339Nano)

	if err := s.repo.UpdateEquipment(ctx, current); err != nil {
		return ports.Equipment{}, errs.Wrap(err, "update equipment")
	}
	return current, nil
}

func (s *Service) DeleteEquipment(ctx context.Context, equipmentID uint64) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if s.repo == nil {
		return errors.New("fleet repository is required")
	}
	if err := s.repo.DeleteEquipment(ctx, equipmentID); err != nil {
		return err
	}
	logging.Info(logging.WithAttrs(ctx, slog.String("component", "fleet")),
		"equipment deleted", slog.Uint64("equipment_id", equipmentID))
	return nil
}

// EquipmentPredictions returns the prediction history for one equipment,
// latest first.
func (s *Service) EquipmentPredictions(ctx context.Context, equipmentID uint64, limit int) ([]ports.Prediction, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if s.repo == nil {
		return nil, errors.New("fleet repository is required")
	}
	if _, err := s.repo.GetEquipment(ctx, equipmentID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListPredictions(ctx, equipmentID, limit)
}

// latestRunID resolves the most recent finished pipeline run.
func (s *Service) latestRunID(ctx context.Context) (string, error) {
	runID, err := s.repo.LatestFinishedRunID(ctx)
	if err != nil {
		return "", errs.Wrap(err, "find latest run")
	}
	return runID, nil
}

func (s *Service) LatestPredictions(ctx context.Context) ([]ports.Prediction, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if s.repo == nil {
		return nil, errors.New("fleet repository is required")
	}
	runID, err := s.latestRunID(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListPredictionsByRun(ctx, runID)
}

func (s *Service) LatestRecommendations(ctx context.Context) ([]ports.Recommendation, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if s.repo == nil {
		return nil, errors.New("fleet repository is required")
	}
	runID, err := s.latestRunID(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListRecommendationsByRun(ctx, runID)
}

func (s *Service) LatestSchedule(ctx context.Context) ([]ports.ScheduleTask, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if s.repo == nil {
		return nil, errors.New("fleet repository is required")
	}
	runID, err := s.latestRunID(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListScheduleByRun(ctx, runID)
}

func (s *Service) LatestKPIs(ctx context.Context) ([]ports.KPIMetric, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if s.repo == nil {
		return nil, errors.New("fleet repository is required")
	}
	runID, err := s.latestRunID(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListKPIsByRun(ctx, runID)
}

type AnalyticsSummary struct {
	RunID           string            `json:"run_id"`
	FleetSize       int               `json:"fleet_size"`
	TierCounts      map[string]int    `json:"tier_counts"`
	MeanRiskScore   float64           `json:"mean_risk_score"`
	TotalNetBenefit float64           `json:"total_net_benefit"`
	EquipmentAtRisk []EquipmentAtRisk `json:"equipment_at_risk"`
}

type EquipmentAtRisk struct {
	EquipmentID uint64  `json:"equipment_id"`
	Serial      string  `json:"serial"`
	Priority    string  `json:"priority"`
	RiskScore   float64 `json:"risk_score"`
}

// Analytics aggregates the latest run into a fleet-level summary.
func (s *Service) Analytics(ctx context.Context) (AnalyticsSummary, error) {
	if ctx == nil {
		return AnalyticsSummary{}, errors.New("context is required")
	}
	if s.repo == nil {
		return AnalyticsSummary{}, errors.New("fleet repository is required")
	}

	runID, err := s.latestRunID(ctx)
	if err != nil {
		return AnalyticsSummary{}, err
	}

	predictions, err := s.repo.ListPredictionsByRun(ctx, runID)
	if err != nil {
		return AnalyticsSummary{}, errs.Wrap(err, "list predictions for run")
	}
	recommendations, err := s.repo.ListRecommendationsByRun(ctx, runID)
	if err != nil {
		return AnalyticsSummary{}, errs.Wrap(err, "list recommendations for run")
	}
	equipment, err := s.repo.ListEquipment(ctx)
	if err != nil {
		return AnalyticsSummary{}, errs.Wrap(err, "list equipment")
	}
	serialsByID := make(map[uint64]string, len(equipment))
	for _, item := range equipment {
		serialsByID[item.EquipmentID] = item.Serial
	}

	summary := AnalyticsSummary{
		RunID:      runID,
		FleetSize:  len(predictions),
		TierCounts: map[string]int{},
	}

	totalRisk := 0.0
	for _, prediction := range predictions {
		summary.TierCounts[prediction.Priority]++
		totalRisk += prediction.RiskScore
		if prediction.Priority == "CRITICAL" || prediction.Priority == "HIGH" {
			summary.EquipmentAtRisk = append(summary.EquipmentAtRisk, EquipmentAtRisk{
				EquipmentID: prediction.EquipmentID,
				Serial:      serialsByID[prediction.EquipmentID],
				Priority:    prediction.Priority,
				RiskScore:   prediction.RiskScore,
			})
		}
	}
	if len(predictions) > 0 {
		summary.MeanRiskScore = totalRisk / float64(len(predictions))
	}

	for _, recommendation := range recommendations {
		if recommendation.NetBenefit > 0 {
			summary.TotalNetBenefit += recommendation.NetBenefit
		}
	}

	return summary, nil
}
