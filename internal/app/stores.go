// Package app wires configuration into stores, model and runner for the
// command binaries.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/config"
	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/domain"
	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/storage"
	chstore "github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/storage/clickhouse"
	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/storage/memory"
	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/storage/migrations"
	pgstore "github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/storage/postgres"
	redisstore "github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/storage/redis"
)

// Stores holds the storage implementations selected by configuration.
type Stores struct {
	Trades      storage.TradeRecordStore
	Features    storage.FeatureVectorStore
	Predictions storage.PredictionStore
}

// OpenStores connects every configured backend and runs its migrations.
// Backends without a DSN fall back to in-memory stores. The returned cleanup
// closes all connections.
func OpenStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Stores, func(), error) {
	stores := &Stores{
		Trades:      memory.NewTradeRecordStore(),
		Features:    memory.NewFeatureVectorStore(),
		Predictions: memory.NewPredictionStore(),
	}
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	// PostgreSQL (trade history + predictions)
	if cfg.Postgres.DSN != "" {
		pool, err := pgstore.NewPool(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, pool.Close)

		if _, err := migrations.RunPostgresMigrations(ctx, pool, logger); err != nil {
			cleanup()
			return nil, nil, err
		}
		stores.Trades = pgstore.NewTradeRecordStore(pool)
		stores.Predictions = pgstore.NewPredictionStore(pool)
		logger.Info("postgres stores enabled")
	}

	// ClickHouse (feature snapshots)
	if cfg.ClickHouse.DSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickHouse.DSN, logger)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, func() { _ = conn.Close() })
		stores.Features = chstore.NewFeatureVectorStore(conn)
		logger.Info("clickhouse feature store enabled")
	}

	// Redis (latest prediction per user)
	if cfg.Redis.Addr != "" {
		rdb, err := redisstore.NewClient(ctx, redisstore.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, func() { _ = rdb.Close() })
		stores.Predictions = NewCachedPredictionStore(stores.Predictions, redisstore.NewPredictionStore(rdb, cfg.Redis.TTL), logger)
		logger.Info("redis prediction cache enabled", zap.Duration("ttl", cfg.Redis.TTL))
	}

	return stores, cleanup, nil
}

// CachedPredictionStore writes predictions to a primary store and a cache.
// Reads of the latest prediction go to the cache first.
type CachedPredictionStore struct {
	primary storage.PredictionStore
	cache   storage.PredictionStore
	logger  *zap.Logger
}

// Compile-time interface check.
var _ storage.PredictionStore = (*CachedPredictionStore)(nil)

// NewCachedPredictionStore combines primary and cache.
func NewCachedPredictionStore(primary, cache storage.PredictionStore, logger *zap.Logger) *CachedPredictionStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedPredictionStore{primary: primary, cache: cache, logger: logger.Named("prediction_cache")}
}

// InsertBulk writes to the primary store, then to the cache. A cache write
// failure is logged and does not fail the call.
func (s *CachedPredictionStore) InsertBulk(ctx context.Context, predictions []domain.Prediction) error {
	if err := s.primary.InsertBulk(ctx, predictions); err != nil {
		return err
	}
	if err := s.cache.InsertBulk(ctx, predictions); err != nil {
		s.logger.Warn("cache write failed", zap.Int("predictions", len(predictions)), zap.Error(err))
	}
	return nil
}

// GetByRunID reads from the primary store.
func (s *CachedPredictionStore) GetByRunID(ctx context.Context, runID string) ([]domain.Prediction, error) {
	return s.primary.GetByRunID(ctx, runID)
}

// GetLatestByUserID reads from the cache and falls back to the primary store.
func (s *CachedPredictionStore) GetLatestByUserID(ctx context.Context, userID string) (*domain.Prediction, error) {
	p, err := s.cache.GetLatestByUserID(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		s.logger.Warn("cache read failed", zap.String("user_id", userID), zap.Error(err))
	}

	p, err = s.primary.GetLatestByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("latest prediction of %s: %w", userID, err)
	}
	return p, nil
}
