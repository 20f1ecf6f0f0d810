package model

import (
	"fmt"
	"math"
)

// DefaultThreshold is the decision threshold used when an artifact sets none.
const DefaultThreshold = 0.5

// LogisticClassifier is a fitted binary logistic regression.
// A row is labelled 1 when sigmoid(coef·x + intercept) >= Threshold.
type LogisticClassifier struct {
	Coef         []float64 `json:"coef"`
	Intercept    float64   `json:"intercept"`
	Threshold    float64   `json:"threshold,omitempty"`
	FeatureNames []string  `json:"feature_names,omitempty"`
}

var _ Classifier = (*LogisticClassifier)(nil)

// Validate checks that the fitted parameters are consistent.
func (c *LogisticClassifier) Validate() error {
	if len(c.Coef) == 0 {
		return fmt.Errorf("classifier has no coefficients")
	}
	if len(c.FeatureNames) > 0 && len(c.FeatureNames) != len(c.Coef) {
		return fmt.Errorf("%w: classifier has %d feature names and %d coefficients", ErrShapeMismatch, len(c.FeatureNames), len(c.Coef))
	}
	if c.Threshold < 0 || c.Threshold >= 1 {
		return fmt.Errorf("classifier threshold %v out of range [0, 1)", c.Threshold)
	}
	return nil
}

// Probabilities returns the positive-class probability of every row.
func (c *LogisticClassifier) Probabilities(x [][]float64) ([]float64, error) {
	if err := checkWidth(x, len(c.Coef)); err != nil {
		return nil, err
	}

	probs := make([]float64, len(x))
	for i, row := range x {
		z := c.Intercept
		for j, v := range row {
			z += c.Coef[j] * v
		}
		probs[i] = sigmoid(z)
	}
	return probs, nil
}

// Predict labels every row 0 or 1.
func (c *LogisticClassifier) Predict(x [][]float64) ([]int, error) {
	probs, err := c.Probabilities(x)
	if err != nil {
		return nil, err
	}

	threshold := c.Threshold
	if threshold == 0 {
		threshold = DefaultThreshold
	}

	labels := make([]int, len(probs))
	for i, p := range probs {
		if p >= threshold {
			labels[i] = 1
		}
	}
	return labels, nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
