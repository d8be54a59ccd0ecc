package ml

import (
	"errors"
	"math"
)

// AnomalyDetector scores how far a feature vector sits from the fleet's
// robust center. The raw score is the mean absolute robust z-score.
type AnomalyDetector struct {
	Scaler *RobustScaler `json:"scaler"`
}

// FitAnomalyDetector fits the robust scaler over the training batch.
func FitAnomalyDetector(samples [][]float64) (*AnomalyDetector, error) {
	if len(samples) == 0 {
		return nil, errors.New("training samples are required")
	}

	scaler, err := FitRobustScaler(samples)
	if err != nil {
		return nil, err
	}
	return &AnomalyDetector{Scaler: scaler}, nil
}

// RawScore is the mean |z| across features; unbounded above.
func (d *AnomalyDetector) RawScore(features []float64) float64 {
	if d == nil || d.Scaler == nil || len(features) != len(d.Scaler.Center) {
		return 0
	}

	z := d.Scaler.Transform(features)
	total := 0.0
	for _, v := range z {
		total += math.Abs(v)
	}
	return total / float64(len(z))
}

// NormalizeBatch rescales raw scores to [0,100] via min-max over the batch
// and returns the batch bounds. The scale is batch-relative: two scores from
// different runs are only comparable through the returned bounds.
func NormalizeBatch(raw []float64) (scores []float64, min float64, max float64) {
	if len(raw) == 0 {
		return nil, 0, 0
	}

	min, max = raw[0], raw[0]
	for _, v := range raw[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	scores = make([]float64, len(raw))
	if max == min {
		return scores, min, max
	}
	for i, v := range raw {
		scores[i] = (v - min) / (max - min) * 100.0
	}
	return scores, min, max
}
