package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"agrimaint/internal/bootstrap/logging"
	"agrimaint/internal/errs"
	"agrimaint/internal/metrics"
	"agrimaint/internal/ml"
	"agrimaint/internal/ports"
)

const (
	modelNameClassifier = "failure_classifier"
	modelNameRegressor  = "rul_regressor"
	modelNameAnomaly    = "anomaly_detector"
)

type PredictInput struct {
	RunID string
}

type PredictResult struct {
	RunID       string
	Predictions int
	Degraded    bool
	Reason      string
}

// Predict scores every feature row with the three-model ensemble and writes
// one prediction per equipment. Missing trained artifacts degrade the stage
// to heuristic scoring; the degradation is reported, never silent.
func (s *Service) Predict(ctx context.Context, in PredictInput) (PredictResult, error) {
	if ctx == nil {
		return PredictResult{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return PredictResult{}, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return PredictResult{}, errors.New("fleet repository is required")
	}
	if s.models == nil {
		return PredictResult{}, errors.New("model store is required")
	}
	if strings.TrimSpace(in.RunID) == "" {
		return PredictResult{}, errors.New("run id is required")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "pipeline.ensemble"), slog.String("run_id", in.RunID))

	rows, err := s.repo.ListFeatureRows(ctx, in.RunID)
	if err != nil {
		return PredictResult{}, errs.Wrap(err, "list feature rows")
	}
	if len(rows) == 0 {
		return PredictResult{RunID: in.RunID}, nil
	}

	classifier, regressor, detector, degradedReason, err := s.loadModels(ctx)
	if err != nil {
		return PredictResult{}, err
	}

	samples := make([][]float64, len(rows))
	for i, row := range rows {
		samples[i] = featureVector(row)
	}

	if detector == nil {
		// No stored detector: fit on the current batch so the anomaly
		// channel still contributes.
		detector, err = ml.FitAnomalyDetector(samples)
		if err != nil {
			return PredictResult{}, errs.Wrap(err, "fit batch anomaly detector")
		}
	}

	rawScores := make([]float64, len(rows))
	for i, sample := range samples {
		rawScores[i] = detector.RawScore(sample)
	}
	anomalyScores, rawMin, rawMax := ml.NormalizeBatch(rawScores)

	// The normalized anomaly scale is min-maxed over this batch only, so it
	// is not comparable across runs; the raw bounds are stored with each
	// prediction to make that explicit.
	logging.Warn(logCtx, "anomaly scores are batch-relative",
		slog.Float64("raw_min", rawMin),
		slog.Float64("raw_max", rawMax),
	)

	modelName := "ensemble-v1"
	if degradedReason != "" {
		modelName = "heuristic-fallback"
	}

	nowText := formatTime(s.now())
	predictions := make([]ports.Prediction, 0, len(rows))
	for i, row := range rows {
		var failureProb, rulDays float64
		if classifier != nil && regressor != nil {
			failureProb = classifier.PredictProba(samples[i])
			rulDays = regressor.Predict(samples[i])
		} else {
			failureProb, rulDays = heuristicScores(row)
		}

		risk := riskScore(failureProb, rulDays, anomalyScores[i])
		predictions = append(predictions, ports.Prediction{
			EquipmentID:        row.EquipmentID,
			RunID:              in.RunID,
			FailureProbability: failureProb,
			RULDays:            rulDays,
			AnomalyScore:       anomalyScores[i],
			AnomalyRawMin:      rawMin,
			AnomalyRawMax:      rawMax,
			RiskScore:          risk,
			Priority:           priorityFor(failureProb, rulDays),
			ModelName:          modelName,
			CreatedAt:          nowText,
		})
	}

	if err := s.repo.AppendPredictions(ctx, predictions); err != nil {
		return PredictResult{}, errs.Wrap(err, "append predictions")
	}
	metrics.PredictionsWritten.Add(float64(len(predictions)))

	result := PredictResult{RunID: in.RunID, Predictions: len(predictions)}
	if degradedReason != "" {
		result.Degraded = true
		result.Reason = degradedReason
		logging.Warn(logCtx, "prediction stage degraded", slog.String("reason", degradedReason))
	}

	logging.Info(logCtx, "predictions written", slog.Int("count", len(predictions)), slog.String("model", modelName))
	return result, nil
}

// loadModels restores stored artifacts. A missing classifier or regressor
// yields a degradation reason instead of an error.
func (s *Service) loadModels(ctx context.Context) (*ml.FailureClassifier, *ml.RULRegressor, *ml.AnomalyDetector, string, error) {
	var classifier *ml.FailureClassifier
	var regressor *ml.RULRegressor
	var detector *ml.AnomalyDetector

	missing := make([]string, 0, 2)

	classifierJSON, found, err := s.models.Get(ctx, modelNameClassifier)
	if err != nil {
		return nil, nil, nil, "", errs.Wrap(err, "load failure classifier")
	}
	if found {
		classifier = &ml.FailureClassifier{}
		if err := ml.DecodeParams(classifierJSON, classifier); err != nil {
			return nil, nil, nil, "", err
		}
	} else {
		missing = append(missing, modelNameClassifier)
	}

	regressorJSON, found, err := s.models.Get(ctx, modelNameRegressor)
	if err != nil {
		return nil, nil, nil, "", errs.Wrap(err, "load rul regressor")
	}
	if found {
		regressor = &ml.RULRegressor{}
		if err := ml.DecodeParams(regressorJSON, regressor); err != nil {
			return nil, nil, nil, "", err
		}
	} else {
		missing = append(missing, modelNameRegressor)
	}

	detectorJSON, found, err := s.models.Get(ctx, modelNameAnomaly)
	if err != nil {
		return nil, nil, nil, "", errs.Wrap(err, "load anomaly detector")
	}
	if found {
		detector = &ml.AnomalyDetector{}
		if err := ml.DecodeParams(detectorJSON, detector); err != nil {
			return nil, nil, nil, "", err
		}
	}

	reason := ""
	if len(missing) > 0 {
		// Heuristics need both halves, so one missing artifact disables both.
		classifier = nil
		regressor = nil
		reason = "missing trained artifacts: " + strings.Join(missing, ", ")
	}
	return classifier, regressor, detector, reason, nil
}

// heuristicScores approximates the ensemble from rule-of-thumb wear signals
// when no trained artifacts exist.
func heuristicScores(row ports.FeatureRow) (failureProb float64, rulDays float64) {
	failureProb = 0.05 +
		0.10*row.FailureCount +
		0.20*row.NeedsMaintenance +
		0.10*row.IsOld +
		0.05*row.HighVibration
	if failureProb > 1 {
		failureProb = 1
	}

	rulDays = ml.ClipRUL(ml.RULDaysMax * (1 - failureProb))
	return failureProb, rulDays
}
