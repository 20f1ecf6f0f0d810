package model

import (
	"fmt"
	"os"
	"slices"

	"github.com/goccy/go-json"

	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/domain"
)

// Load reads the classifier and scaler artifacts and checks that both were
// fitted on domain.FeatureNames.
func Load(modelPath, scalerPath string) (*Handle, error) {
	classifier, err := LoadClassifier(modelPath)
	if err != nil {
		return nil, err
	}
	scaler, err := LoadScaler(scalerPath)
	if err != nil {
		return nil, err
	}

	if len(scaler.Mean) != len(classifier.Coef) {
		return nil, fmt.Errorf("%w: scaler has %d columns, classifier has %d", ErrShapeMismatch, len(scaler.Mean), len(classifier.Coef))
	}

	return &Handle{Scaler: scaler, Classifier: classifier}, nil
}

// LoadScaler reads a StandardScaler artifact.
func LoadScaler(path string) (*StandardScaler, error) {
	var s StandardScaler
	if err := readArtifact(path, &s); err != nil {
		return nil, fmt.Errorf("load scaler: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("load scaler %s: %w", path, err)
	}
	if err := checkFeatureOrder(s.FeatureNames, len(s.Mean)); err != nil {
		return nil, fmt.Errorf("load scaler %s: %w", path, err)
	}
	return &s, nil
}

// LoadClassifier reads a LogisticClassifier artifact.
func LoadClassifier(path string) (*LogisticClassifier, error) {
	var c LogisticClassifier
	if err := readArtifact(path, &c); err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("load model %s: %w", path, err)
	}
	if err := checkFeatureOrder(c.FeatureNames, len(c.Coef)); err != nil {
		return nil, fmt.Errorf("load model %s: %w", path, err)
	}
	return &c, nil
}

// SaveArtifact writes v as indented JSON.
func SaveArtifact(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write artifact %s: %w", path, err)
	}
	return nil
}

func readArtifact(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// checkFeatureOrder accepts artifacts without names as long as their width
// matches the feature list.
func checkFeatureOrder(names []string, width int) error {
	if len(names) == 0 {
		if width != len(domain.FeatureNames) {
			return fmt.Errorf("%w: fitted on %d features, expected %d", ErrShapeMismatch, width, len(domain.FeatureNames))
		}
		return nil
	}
	if !slices.Equal(names, domain.FeatureNames) {
		return fmt.Errorf("%w: got %v", ErrFeatureOrder, names)
	}
	return nil
}
