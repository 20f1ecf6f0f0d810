package model

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/domain"
)

func TestStandardScaler_Transform(t *testing.T) {
	s := &StandardScaler{Mean: []float64{1, 10}, Scale: []float64{2, 0}}

	x := [][]float64{{3, 12}, {1, 10}}
	out, err := s.Transform(x)
	require.NoError(t, err)

	assert.Equal(t, [][]float64{{1, 2}, {0, 0}}, out)
	// input untouched
	assert.Equal(t, [][]float64{{3, 12}, {1, 10}}, x)
}

func TestStandardScaler_ShapeMismatch(t *testing.T) {
	s := &StandardScaler{Mean: []float64{1, 10}, Scale: []float64{2, 1}}

	_, err := s.Transform([][]float64{{1, 2, 3}})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestStandardScaler_RejectsInfinity(t *testing.T) {
	s := &StandardScaler{Mean: []float64{0}, Scale: []float64{1}}

	_, err := s.Transform([][]float64{{math.Inf(1)}})
	assert.ErrorIs(t, err, ErrNonFinite)
}

func TestLogisticClassifier_Predict(t *testing.T) {
	c := &LogisticClassifier{Coef: []float64{1, -1}, Intercept: 0}

	labels, err := c.Predict([][]float64{{2, 0}, {0, 2}, {1, 1}})
	require.NoError(t, err)

	// sigmoid(0) = 0.5 sits on the default threshold and is labelled 1
	assert.Equal(t, []int{1, 0, 1}, labels)
}

func TestLogisticClassifier_CustomThreshold(t *testing.T) {
	c := &LogisticClassifier{Coef: []float64{1}, Threshold: 0.9}

	labels, err := c.Predict([][]float64{{1}, {3}})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, labels)
}

func TestLogisticClassifier_ShapeMismatch(t *testing.T) {
	c := &LogisticClassifier{Coef: []float64{1, 2}}

	_, err := c.Predict([][]float64{{1}})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestLogisticClassifier_Validate(t *testing.T) {
	assert.Error(t, (&LogisticClassifier{}).Validate())
	assert.Error(t, (&LogisticClassifier{Coef: []float64{1}, Threshold: 1.5}).Validate())
	assert.NoError(t, (&LogisticClassifier{Coef: []float64{1}}).Validate())
}

func width(n float64) []float64 {
	out := make([]float64, len(domain.FeatureNames))
	for i := range out {
		out[i] = n
	}
	return out
}

func TestLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	modelPath := filepath.Join(dir, "model.json")
	scalerPath := filepath.Join(dir, "scaler.json")

	require.NoError(t, SaveArtifact(modelPath, &LogisticClassifier{
		Coef:         width(0.1),
		Intercept:    -0.2,
		FeatureNames: domain.FeatureNames,
	}))
	require.NoError(t, SaveArtifact(scalerPath, &StandardScaler{
		Mean:  width(0),
		Scale: width(1),
	}))

	handle, err := Load(modelPath, scalerPath)
	require.NoError(t, err)
	require.NotNil(t, handle.Scaler)
	require.NotNil(t, handle.Classifier)

	scaled, err := handle.Scaler.Transform([][]float64{width(1)})
	require.NoError(t, err)
	labels, err := handle.Classifier.Predict(scaled)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, labels)
}

func TestLoad_FeatureOrderMismatch(t *testing.T) {
	dir := t.TempDir()
	modelPath := filepath.Join(dir, "model.json")
	scalerPath := filepath.Join(dir, "scaler.json")

	names := append([]string{}, domain.FeatureNames...)
	names[0], names[1] = names[1], names[0]

	require.NoError(t, SaveArtifact(modelPath, &LogisticClassifier{Coef: width(1), FeatureNames: names}))
	require.NoError(t, SaveArtifact(scalerPath, &StandardScaler{Mean: width(0), Scale: width(1)}))

	_, err := Load(modelPath, scalerPath)
	assert.True(t, errors.Is(err, ErrFeatureOrder))
}

func TestLoad_WrongWidth(t *testing.T) {
	dir := t.TempDir()
	scalerPath := filepath.Join(dir, "scaler.json")
	require.NoError(t, SaveArtifact(scalerPath, &StandardScaler{Mean: []float64{0}, Scale: []float64{1}}))

	_, err := LoadScaler(scalerPath)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := LoadClassifier(filepath.Join(t.TempDir(), "absent.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_BundledArtifacts(t *testing.T) {
	handle, err := Load(filepath.Join("..", "..", "models", "model.json"), filepath.Join("..", "..", "models", "scaler.json"))
	require.NoError(t, err)

	labels, err := handle.Classifier.Predict([][]float64{width(0)})
	require.NoError(t, err)
	assert.Len(t, labels, 1)
}
