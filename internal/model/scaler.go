package model

import (
	"fmt"
	"math"
)

// StandardScaler centres each column on its fitted mean and divides by its
// fitted scale. A zero scale is treated as 1. Non-finite inputs are rejected
// with ErrNonFinite.
type StandardScaler struct {
	Mean         []float64 `json:"mean"`
	Scale        []float64 `json:"scale"`
	FeatureNames []string  `json:"feature_names,omitempty"`
}

var _ Scaler = (*StandardScaler)(nil)

// Validate checks that the fitted parameters are consistent.
func (s *StandardScaler) Validate() error {
	if len(s.Mean) == 0 {
		return fmt.Errorf("scaler has no fitted columns")
	}
	if len(s.Mean) != len(s.Scale) {
		return fmt.Errorf("%w: scaler has %d means and %d scales", ErrShapeMismatch, len(s.Mean), len(s.Scale))
	}
	if len(s.FeatureNames) > 0 && len(s.FeatureNames) != len(s.Mean) {
		return fmt.Errorf("%w: scaler has %d feature names and %d columns", ErrShapeMismatch, len(s.FeatureNames), len(s.Mean))
	}
	return nil
}

// Transform returns a new matrix; x is left untouched.
func (s *StandardScaler) Transform(x [][]float64) ([][]float64, error) {
	if err := checkWidth(x, len(s.Mean)); err != nil {
		return nil, err
	}

	out := make([][]float64, len(x))
	for i, row := range x {
		scaled := make([]float64, len(row))
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: row %d column %d", ErrNonFinite, i, j)
			}
			scale := s.Scale[j]
			if scale == 0 {
				scale = 1
			}
			scaled[j] = (v - s.Mean[j]) / scale
		}
		out[i] = scaled
	}
	return out, nil
}
