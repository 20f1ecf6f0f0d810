package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/config"
	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/model"
	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/observability"
	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/pipeline"
)

// NewRunner loads the model artifacts named in cfg and builds a runner that
// persists into stores and records on metrics.
func NewRunner(cfg *config.Config, stores *Stores, metrics *observability.Metrics, logger *zap.Logger) (*pipeline.Runner, error) {
	handle, err := model.Load(cfg.Model.ModelPath, cfg.Model.ScalerPath)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	logger.Info("model loaded",
		zap.String("model_path", cfg.Model.ModelPath),
		zap.String("scaler_path", cfg.Model.ScalerPath),
	)

	predictor := pipeline.NewPredictorFromHandle(handle, logger)
	return pipeline.NewRunner(predictor, logger).
		WithFeatureStore(stores.Features).
		WithPredictionStore(stores.Predictions).
		WithMetrics(metrics), nil
}
