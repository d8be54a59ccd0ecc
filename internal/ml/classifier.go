package ml

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
)

// FailureClassifier is a logistic regression over robust-scaled features.
// It predicts the probability of a failure within the training horizon.
type FailureClassifier struct {
	Weights []float64     `json:"weights"`
	Bias    float64       `json:"bias"`
	Scaler  *RobustScaler `json:"scaler"`
}

// TrainFailureClassifier fits by full-batch gradient descent. Labels must be
// 0 or 1.
func TrainFailureClassifier(samples [][]float64, labels []float64, epochs int, learningRate float64) (*FailureClassifier, error) {
	if len(samples) == 0 {
		return nil, errors.New("training samples are required")
	}
	if len(samples) != len(labels) {
		return nil, errors.New("samples and labels must have equal length")
	}
	if epochs <= 0 {
		epochs = 500
	}
	if learningRate <= 0 {
		learningRate = 0.1
	}

	scaler, err := FitRobustScaler(samples)
	if err != nil {
		return nil, err
	}

	scaled := make([][]float64, len(samples))
	for i, sample := range samples {
		scaled[i] = scaler.Transform(sample)
	}

	dims := len(scaled[0])
	weights := make([]float64, dims)
	bias := 0.0
	grad := make([]float64, dims)
	n := float64(len(scaled))

	for epoch := 0; epoch < epochs; epoch++ {
		for i := range grad {
			grad[i] = 0
		}
		biasGrad := 0.0

		for i, x := range scaled {
			p := sigmoid(floats.Dot(weights, x) + bias)
			diff := p - labels[i]
			floats.AddScaled(grad, diff, x)
			biasGrad += diff
		}

		floats.AddScaled(weights, -learningRate/n, grad)
		bias -= learningRate / n * biasGrad
	}

	return &FailureClassifier{Weights: weights, Bias: bias, Scaler: scaler}, nil
}

// PredictProba returns a probability in [0,1].
func (c *FailureClassifier) PredictProba(features []float64) float64 {
	if c == nil || len(features) != len(c.Weights) {
		return 0
	}
	x := c.Scaler.Transform(features)
	return sigmoid(floats.Dot(c.Weights, x) + c.Bias)
}

// Accuracy scores the classifier against held-out samples at the 0.5 cut.
func (c *FailureClassifier) Accuracy(samples [][]float64, labels []float64) float64 {
	if len(samples) == 0 || len(samples) != len(labels) {
		return 0
	}

	correct := 0
	for i, sample := range samples {
		predicted := 0.0
		if c.PredictProba(sample) >= 0.5 {
			predicted = 1.0
		}
		if predicted == labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(samples))
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}
