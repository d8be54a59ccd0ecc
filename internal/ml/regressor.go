package ml

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// RULDaysMax caps remaining-useful-life predictions to one year.
const RULDaysMax = 365.0

// RULRegressor is an ordinary-least-squares regression predicting days until
// the next failure from robust-scaled features.
type RULRegressor struct {
	Coef      []float64     `json:"coef"`
	Intercept float64       `json:"intercept"`
	Scaler    *RobustScaler `json:"scaler"`
}

// TrainRULRegressor solves the least-squares problem via QR factorization.
// Needs more samples than features plus one; callers should fall back to
// heuristics below that.
func TrainRULRegressor(samples [][]float64, targets []float64) (*RULRegressor, error) {
	if len(samples) == 0 {
		return nil, errors.New("training samples are required")
	}
	if len(samples) != len(targets) {
		return nil, errors.New("samples and targets must have equal length")
	}

	dims := len(samples[0])
	if len(samples) <= dims+1 {
		return nil, errors.New("not enough samples for least squares fit")
	}

	scaler, err := FitRobustScaler(samples)
	if err != nil {
		return nil, err
	}

	// Design matrix with a leading intercept column.
	a := mat.NewDense(len(samples), dims+1, nil)
	b := mat.NewDense(len(samples), 1, nil)
	for i, sample := range samples {
		scaled := scaler.Transform(sample)
		a.Set(i, 0, 1)
		for j, v := range scaled {
			a.Set(i, j+1, v)
		}
		b.Set(i, 0, targets[i])
	}

	var qr mat.QR
	qr.Factorize(a)

	var beta mat.Dense
	if err := qr.SolveTo(&beta, false, b); err != nil {
		return nil, err
	}

	coef := make([]float64, dims)
	for j := 0; j < dims; j++ {
		coef[j] = beta.At(j+1, 0)
	}

	return &RULRegressor{
		Coef:      coef,
		Intercept: beta.At(0, 0),
		Scaler:    scaler,
	}, nil
}

// Predict returns remaining useful life in days, clipped to [0, RULDaysMax].
func (r *RULRegressor) Predict(features []float64) float64 {
	if r == nil || len(features) != len(r.Coef) {
		return RULDaysMax
	}
	x := r.Scaler.Transform(features)
	return ClipRUL(r.Intercept + floats.Dot(r.Coef, x))
}

// MAE computes mean absolute error on held-out samples.
func (r *RULRegressor) MAE(samples [][]float64, targets []float64) float64 {
	if len(samples) == 0 || len(samples) != len(targets) {
		return 0
	}

	total := 0.0
	for i, sample := range samples {
		total += math.Abs(r.Predict(sample) - targets[i])
	}
	return total / float64(len(samples))
}

// ClipRUL bounds a remaining-useful-life value to [0, RULDaysMax].
func ClipRUL(days float64) float64 {
	if math.IsNaN(days) || days < 0 {
		return 0
	}
	if days > RULDaysMax {
		return RULDaysMax
	}
	return days
}
