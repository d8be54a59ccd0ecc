package ml

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// RobustScaler centers by the per-feature median and scales by the IQR, so a
// handful of extreme sensor values cannot dominate the scale.
type RobustScaler struct {
	Center []float64 `json:"center"`
	Scale  []float64 `json:"scale"`
}

// FitRobustScaler computes medians and IQRs column-wise over samples.
func FitRobustScaler(samples [][]float64) (*RobustScaler, error) {
	if len(samples) == 0 {
		return nil, errors.New("at least one sample is required")
	}

	dims := len(samples[0])
	if dims == 0 {
		return nil, errors.New("samples must have at least one feature")
	}

	center := make([]float64, dims)
	scale := make([]float64, dims)
	column := make([]float64, len(samples))

	for d := 0; d < dims; d++ {
		for i, sample := range samples {
			if len(sample) != dims {
				return nil, fmt.Errorf("sample %d has %d features, want %d", i, len(sample), dims)
			}
			column[i] = sample[d]
		}
		sort.Float64s(column)
		center[d] = stat.Quantile(0.5, stat.Empirical, column, nil)
		scale[d] = stat.Quantile(0.75, stat.Empirical, column, nil) - stat.Quantile(0.25, stat.Empirical, column, nil)
	}

	return &RobustScaler{Center: center, Scale: scale}, nil
}

// Transform scales one feature vector. A zero IQR degrades to centering only.
func (s *RobustScaler) Transform(features []float64) []float64 {
	if s == nil || len(features) != len(s.Center) {
		return features
	}

	scaled := make([]float64, len(features))
	for i, val := range features {
		if s.Scale[i] != 0 {
			scaled[i] = (val - s.Center[i]) / s.Scale[i]
		} else {
			scaled[i] = val - s.Center[i]
		}
	}
	return scaled
}
