package pipeline

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"agrimaint/internal/bootstrap/logging"
	"agrimaint/internal/errs"
	"agrimaint/internal/ml"
	"agrimaint/internal/ports"
)

const holdoutBuckets = 5 // one bucket in five is held out, a fixed 80/20 split

type TrainModelsInput struct {
	HorizonDays int
}

type TrainModelsResult struct {
	TrainRows          int
	TestRows           int
	ClassifierAccuracy float64
	RegressorMAE       float64
}

// TrainModels fits the ensemble on historical snapshots: features as of
// (now - horizon), labels from the failures that actually happened inside
// the horizon. The holdout split is deterministic by equipment id, and
// evaluation only ever touches held-out rows.
func (s *Service) TrainModels(ctx context.Context, in TrainModelsInput) (TrainModelsResult, error) {
	if ctx == nil {
		return TrainModelsResult{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return TrainModelsResult{}, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return TrainModelsResult{}, errors.New("fleet repository is required")
	}
	if s.models == nil {
		return TrainModelsResult{}, errors.New("model store is required")
	}
	if in.HorizonDays <= 0 {
		in.HorizonDays = s.params.FailureHorizonDays
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "pipeline.train"))

	equipment, err := s.repo.ListEquipment(ctx)
	if err != nil {
		return TrainModelsResult{}, errs.Wrap(err, "list equipment")
	}
	if len(equipment) == 0 {
		return TrainModelsResult{}, errors.New("no equipment to train on")
	}

	now := s.now()
	asOf := now.AddDate(0, 0, -in.HorizonDays)
	snapshotInput := BuildFeaturesInput{RunID: "train-snapshot", AsOf: asOf, LookbackDays: s.params.LookbackDays}

	var trainX, testX [][]float64
	var trainLabels, testLabels []float64
	var trainRUL, testRUL []float64

	for _, item := range equipment {
		row, err := s.buildFeatureRow(ctx, item, snapshotInput)
		if err != nil {
			return TrainModelsResult{}, errs.Wrapf(err, "snapshot features for equipment %d", item.EquipmentID)
		}

		label, rulTarget, err := s.labelEquipment(ctx, item.EquipmentID, asOf, now)
		if err != nil {
			return TrainModelsResult{}, err
		}

		vector := featureVector(row)
		if isHoldout(item.EquipmentID) {
			testX = append(testX, vector)
			testLabels = append(testLabels, label)
			testRUL = append(testRUL, rulTarget)
		} else {
			trainX = append(trainX, vector)
			trainLabels = append(trainLabels, label)
			trainRUL = append(trainRUL, rulTarget)
		}
	}

	if len(trainX) == 0 || len(testX) == 0 {
		return TrainModelsResult{}, errors.New("not enough equipment for a train/holdout split")
	}
	if !hasBothClasses(trainLabels) {
		return TrainModelsResult{}, errors.New("training labels contain a single class; need both failed and healthy equipment")
	}

	classifier, err := ml.TrainFailureClassifier(trainX, trainLabels, 0, 0)
	if err != nil {
		return TrainModelsResult{}, errs.Wrap(err, "train failure classifier")
	}

	regressor, err := ml.TrainRULRegressor(trainX, trainRUL)
	if err != nil {
		return TrainModelsResult{}, errs.Wrap(err, "train rul regressor")
	}

	detector, err := ml.FitAnomalyDetector(trainX)
	if err != nil {
		return TrainModelsResult{}, errs.Wrap(err, "fit anomaly detector")
	}

	result := TrainModelsResult{
		TrainRows:          len(trainX),
		TestRows:           len(testX),
		ClassifierAccuracy: classifier.Accuracy(testX, testLabels),
		RegressorMAE:       regressor.MAE(testX, testRUL),
	}

	if err := s.storeModel(ctx, modelNameClassifier, classifier); err != nil {
		return TrainModelsResult{}, err
	}
	if err := s.storeModel(ctx, modelNameRegressor, regressor); err != nil {
		return TrainModelsResult{}, err
	}
	if err := s.storeModel(ctx, modelNameAnomaly, detector); err != nil {
		return TrainModelsResult{}, err
	}

	trainRunID := "train-" + uuid.NewString()
	nowText := formatTime(now)
	if err := s.repo.AppendKPIMetrics(ctx, []ports.KPIMetric{
		{RunID: trainRunID, Name: "model_classifier_accuracy", Value: result.ClassifierAccuracy, ComputedAt: nowText},
		{RunID: trainRunID, Name: "model_regressor_mae", Value: result.RegressorMAE, ComputedAt: nowText},
		{RunID: trainRunID, Name: "model_train_rows", Value: float64(result.TrainRows), ComputedAt: nowText},
		{RunID: trainRunID, Name: "model_test_rows", Value: float64(result.TestRows), ComputedAt: nowText},
	}); err != nil {
		return TrainModelsResult{}, errs.Wrap(err, "record training metrics")
	}

	logging.Info(logCtx, "models trained",
		slog.Int("train_rows", result.TrainRows),
		slog.Int("test_rows", result.TestRows),
		slog.Float64("holdout_accuracy", result.ClassifierAccuracy),
		slog.Float64("holdout_mae", result.RegressorMAE),
	)
	return result, nil
}

// labelEquipment derives the classifier label and RUL target from failures
// after the snapshot point.
func (s *Service) labelEquipment(ctx context.Context, equipmentID uint64, asOf, now time.Time) (label float64, rulTarget float64, err error) {
	failures, err := s.repo.ListFailureEvents(ctx, equipmentID)
	if err != nil {
		return 0, 0, errs.Wrapf(err, "list failure events for equipment %d", equipmentID)
	}

	rulTarget = ml.RULDaysMax
	for _, event := range failures {
		occurredAt, parseErr := parseTime(event.OccurredAt)
		if parseErr != nil || !occurredAt.After(asOf) {
			continue
		}
		days := occurredAt.Sub(asOf).Hours() / 24
		if days < rulTarget {
			rulTarget = days
		}
		if !occurredAt.After(now) {
			label = 1
		}
	}
	return label, ml.ClipRUL(rulTarget), nil
}

func isHoldout(equipmentID uint64) bool {
	h := fnv.New32a()
	fmt.Fprintf(h, "%d", equipmentID)
	return h.Sum32()%holdoutBuckets == 0
}

func hasBothClasses(labels []float64) bool {
	sawZero, sawOne := false, false
	for _, label := range labels {
		if label == 0 {
			sawZero = true
		} else {
			sawOne = true
		}
	}
	return sawZero && sawOne
}

func (s *Service) storeModel(ctx context.Context, name string, model any) error {
	paramsJSON, err := ml.EncodeParams(model)
	if err != nil {
		return err
	}
	if err := s.models.Put(ctx, name, paramsJSON); err != nil {
		return errs.Wrapf(err, "store %s", name)
	}
	return nil
}
