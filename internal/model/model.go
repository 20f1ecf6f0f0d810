// Package model holds the pre-trained feature scaler and binary classifier
// used to label traders. Both are read-only once loaded.
package model

import (
	"errors"
	"fmt"
)

var (
	// ErrShapeMismatch is returned when an input matrix does not have the
	// width an artifact was fitted on.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrFeatureOrder is returned when an artifact was fitted on a feature
	// list that differs from the one the aggregator produces.
	ErrFeatureOrder = errors.New("feature order mismatch")

	// ErrNonFinite is returned when a scaler input holds NaN or ±Inf.
	ErrNonFinite = errors.New("input contains NaN or infinity")
)

// Scaler maps a feature matrix to a scaled matrix of the same shape.
type Scaler interface {
	Transform(x [][]float64) ([][]float64, error)
}

// Classifier maps a scaled matrix to one label per row.
type Classifier interface {
	Predict(x [][]float64) ([]int, error)
}

// Handle bundles a loaded scaler and classifier.
type Handle struct {
	Scaler     Scaler
	Classifier Classifier
}

func checkWidth(x [][]float64, width int) error {
	for i, row := range x {
		if len(row) != width {
			return fmt.Errorf("%w: row %d has %d columns, expected %d", ErrShapeMismatch, i, len(row), width)
		}
	}
	return nil
}
