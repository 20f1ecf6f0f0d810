// Package storage defines the persistence contracts for trade history,
// feature snapshots and predictions.
package storage

import (
	"context"

	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/domain"
)

// TradeRecordStore provides access to trade_records storage.
type TradeRecordStore interface {
	// Insert adds a new trade. Returns ErrDuplicateKey if trade_id exists.
	Insert(ctx context.Context, t *domain.TradeRecord) error

	// InsertBulk adds multiple trades atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, trades []*domain.TradeRecord) error

	// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, tradeID string) (*domain.TradeRecord, error)

	// GetByUserID retrieves all trades of a user, ordered by seq ASC.
	GetByUserID(ctx context.Context, userID string) ([]*domain.TradeRecord, error)

	// GetAll retrieves all trades, ordered by seq ASC.
	GetAll(ctx context.Context) ([]*domain.TradeRecord, error)

	// MaxSeq returns the highest stored seq, or 0 for an empty store.
	MaxSeq(ctx context.Context) (int64, error)
}

// FeatureVectorStore provides access to feature_vectors storage.
type FeatureVectorStore interface {
	// InsertBulk adds multiple snapshots atomically.
	// Fails entire batch on duplicate (run_id, user_id).
	InsertBulk(ctx context.Context, snapshots []*domain.FeatureSnapshot) error

	// GetByRunID retrieves all snapshots of a run, ordered by position ASC.
	GetByRunID(ctx context.Context, runID string) ([]*domain.FeatureSnapshot, error)

	// GetByUserID retrieves all snapshots of a user, ordered by computed_at ASC.
	GetByUserID(ctx context.Context, userID string) ([]*domain.FeatureSnapshot, error)
}

// PredictionStore provides access to predictions storage.
type PredictionStore interface {
	// InsertBulk adds multiple predictions atomically.
	// Fails entire batch on duplicate (run_id, user_id).
	InsertBulk(ctx context.Context, predictions []domain.Prediction) error

	// GetByRunID retrieves all predictions of a run, ordered by position ASC.
	GetByRunID(ctx context.Context, runID string) ([]domain.Prediction, error)

	// GetLatestByUserID retrieves the most recent prediction for a user.
	// Returns ErrNotFound if the user was never scored.
	GetLatestByUserID(ctx context.Context, userID string) (*domain.Prediction, error)
}
