// Package pipeline runs raw trade batches through feature aggregation,
// scaling and classification, and records the outcome of each run.
package pipeline

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/domain"
	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/features"
	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/model"
)

// Result holds one prediction per user, in the order users first appear in
// the input, together with the feature table they were computed from.
type Result struct {
	Predictions []domain.Prediction
	Features    *domain.FeatureTable
}

// Labels returns the predicted label keyed by user id.
func (r *Result) Labels() map[string]int {
	labels := make(map[string]int, len(r.Predictions))
	for _, p := range r.Predictions {
		labels[p.UserID] = p.Label
	}
	return labels
}

// UserIDs returns user ids in prediction order.
func (r *Result) UserIDs() []string {
	ids := make([]string, len(r.Predictions))
	for i, p := range r.Predictions {
		ids[i] = p.UserID
	}
	return ids
}

// Predictor labels traders with a pre-trained scaler and classifier.
// It holds no mutable state of its own.
type Predictor struct {
	aggregator *features.Aggregator
	scaler     model.Scaler
	classifier model.Classifier
	logger     *zap.Logger
}

// NewPredictor creates a predictor from a loaded scaler and classifier.
func NewPredictor(scaler model.Scaler, classifier model.Classifier, logger *zap.Logger) *Predictor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Predictor{
		aggregator: features.NewAggregator(logger),
		scaler:     scaler,
		classifier: classifier,
		logger:     logger.Named("pipeline"),
	}
}

// NewPredictorFromHandle creates a predictor from a loaded model handle.
func NewPredictorFromHandle(h *model.Handle, logger *zap.Logger) *Predictor {
	return NewPredictor(h.Scaler, h.Classifier, logger)
}

// Predict aggregates raw trades and labels every user.
// A *features.SchemaError is returned as is. Scaler and classifier failures
// are returned as *ExternalComponentError. No partial result is produced.
func (p *Predictor) Predict(raw []domain.RawTrade) (*Result, error) {
	// the aggregator logs its own schema rejections
	table, err := p.aggregator.Aggregate(raw)
	if err != nil {
		return nil, err
	}
	return p.PredictTable(table)
}

// PredictTrades labels every user of an already decoded trade list.
func (p *Predictor) PredictTrades(trades []*domain.TradeRecord) (*Result, error) {
	return p.PredictTable(features.Aggregate(trades))
}

// PredictTable labels every row of a feature table.
func (p *Predictor) PredictTable(table *domain.FeatureTable) (*Result, error) {
	n := table.Len()
	if n == 0 {
		p.logger.Info("no users to score")
		return &Result{Features: table}, nil
	}

	matrix, err := table.Matrix(domain.FeatureNames)
	if err != nil {
		p.logger.Error("feature projection failed", zap.String("stage", StageAggregate), zap.Error(err))
		return nil, err
	}

	p.logger.Info("scaling features", zap.Int("users", n), zap.Int("features", len(domain.FeatureNames)))
	scaled, err := p.scaler.Transform(matrix)
	if err == nil {
		err = checkMatrixShape(scaled, n, len(domain.FeatureNames))
	}
	if err != nil {
		return nil, p.componentError(StageScale, n, err)
	}

	p.logger.Info("making predictions", zap.Int("users", n))
	labels, err := p.classifier.Predict(scaled)
	if err == nil && len(labels) != n {
		err = fmt.Errorf("%w: classifier returned %d labels for %d rows", model.ErrShapeMismatch, len(labels), n)
	}
	if err != nil {
		return nil, p.componentError(StageClassify, n, err)
	}

	predictions := make([]domain.Prediction, n)
	for i, row := range table.Rows {
		predictions[i] = domain.NewPrediction(row.UserID, labels[i])
		predictions[i].Position = i
	}

	p.logger.Info("predictions done", zap.Int("users", n))
	return &Result{Predictions: predictions, Features: table}, nil
}

func (p *Predictor) componentError(stage string, users int, err error) error {
	p.logger.Error("model component failed", zap.String("stage", stage), zap.Int("users", users), zap.Error(err))
	return &ExternalComponentError{Stage: stage, Err: err}
}

func checkMatrixShape(x [][]float64, rows, cols int) error {
	if len(x) != rows {
		return fmt.Errorf("%w: scaler returned %d rows for %d", model.ErrShapeMismatch, len(x), rows)
	}
	for i, row := range x {
		if len(row) != cols {
			return fmt.Errorf("%w: scaler row %d has %d columns, expected %d", model.ErrShapeMismatch, i, len(row), cols)
		}
	}
	return nil
}

// FailedStage returns the stage an error returned by Predict originated in.
func FailedStage(err error) string {
	var compErr *ExternalComponentError
	if errors.As(err, &compErr) {
		return compErr.Stage
	}
	var schemaErr *features.SchemaError
	if errors.As(err, &schemaErr) {
		return StageAggregate
	}
	return "unknown"
}
