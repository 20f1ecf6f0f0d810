// Package features turns per-trade records into fixed-width per-user feature vectors.
package features

import (
	"go.uber.org/zap"

	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/domain"
)

// Aggregator computes feature tables from raw trade batches.
type Aggregator struct {
	logger *zap.Logger
}

// NewAggregator creates a new feature aggregator.
func NewAggregator(logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{logger: logger.Named("features")}
}

// Aggregate validates the batch schema and computes one feature vector per user.
// Returns *SchemaError if required fields are missing; no partial result is produced.
func (a *Aggregator) Aggregate(raw []domain.RawTrade) (*domain.FeatureTable, error) {
	a.logger.Info("starting raw data preprocessing", zap.Int("trades", len(raw)))

	trades, err := Decode(raw)
	if err != nil {
		a.logger.Error("raw trade batch rejected", zap.Error(err))
		return nil, err
	}

	table := Aggregate(trades)
	a.logger.Info("feature aggregation complete", zap.Int("users", table.Len()))
	return table, nil
}

// AggregateRaw is Decode followed by Aggregate.
func AggregateRaw(raw []domain.RawTrade) (*domain.FeatureTable, error) {
	trades, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	return Aggregate(trades), nil
}

// Aggregate groups trades by user and computes every feature.
// Users appear in the order of their first trade, and each user's trades keep
// their relative input order. The returned table has exactly one row per
// distinct user id.
func Aggregate(trades []*domain.TradeRecord) *domain.FeatureTable {
	var order []string
	groups := make(map[string][]*domain.TradeRecord)

	for _, t := range trades {
		if _, seen := groups[t.UserID]; !seen {
			order = append(order, t.UserID)
		}
		groups[t.UserID] = append(groups[t.UserID], t)
	}

	table := &domain.FeatureTable{Rows: make([]*domain.FeatureVector, 0, len(order))}
	for _, userID := range order {
		table.Rows = append(table.Rows, computeFromTrades(userID, groups[userID]))
	}
	return table
}
