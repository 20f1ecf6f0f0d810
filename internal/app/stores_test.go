package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/config"
	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/domain"
	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/observability"
	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/storage"
	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/storage/memory"
)

func prediction(runID, userID string, label int, createdAt int64) domain.Prediction {
	p := domain.NewPrediction(userID, label)
	p.RunID = runID
	p.CreatedAt = createdAt
	return p
}

func TestOpenStores_MemoryFallback(t *testing.T) {
	stores, cleanup, err := OpenStores(context.Background(), config.Default(), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer cleanup()

	assert.IsType(t, &memory.TradeRecordStore{}, stores.Trades)
	assert.IsType(t, &memory.FeatureVectorStore{}, stores.Features)
	assert.IsType(t, &memory.PredictionStore{}, stores.Predictions)
}

func TestOpenStores_RedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Default()
	cfg.Redis.Addr = mr.Addr()
	cfg.Redis.TTL = time.Minute

	stores, cleanup, err := OpenStores(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer cleanup()

	require.IsType(t, &CachedPredictionStore{}, stores.Predictions)

	ctx := context.Background()
	require.NoError(t, stores.Predictions.InsertBulk(ctx, []domain.Prediction{prediction("run-1", "u1", 1, 1000)}))

	// latest prediction lands in redis
	keys := mr.Keys()
	assert.Contains(t, keys, "trader-classifier:prediction:user:u1")
}

func TestOpenStores_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := config.Default()
	cfg.Redis.Addr = addr

	_, _, err := OpenStores(context.Background(), cfg, zaptest.NewLogger(t))
	assert.Error(t, err)
}

// failingStore fails every call.
type failingStore struct{}

var errStoreDown = errors.New("store down")

func (failingStore) InsertBulk(context.Context, []domain.Prediction) error { return errStoreDown }
func (failingStore) GetByRunID(context.Context, string) ([]domain.Prediction, error) {
	return nil, errStoreDown
}
func (failingStore) GetLatestByUserID(context.Context, string) (*domain.Prediction, error) {
	return nil, errStoreDown
}

func TestCachedPredictionStore_ReadThrough(t *testing.T) {
	ctx := context.Background()
	primary := memory.NewPredictionStore()
	cache := memory.NewPredictionStore()
	store := NewCachedPredictionStore(primary, cache, zaptest.NewLogger(t))

	// only in primary, e.g. after cache expiry
	require.NoError(t, primary.InsertBulk(ctx, []domain.Prediction{prediction("run-0", "u1", 0, 500)}))

	got, err := store.GetLatestByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "run-0", got.RunID)

	require.NoError(t, store.InsertBulk(ctx, []domain.Prediction{prediction("run-1", "u1", 1, 1000)}))

	got, err = cache.GetLatestByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", got.RunID)

	_, err = store.GetLatestByUserID(ctx, "nobody")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	runs, err := store.GetByRunID(ctx, "run-1")
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestCachedPredictionStore_CacheFailuresDoNotFailWrites(t *testing.T) {
	ctx := context.Background()
	primary := memory.NewPredictionStore()
	store := NewCachedPredictionStore(primary, failingStore{}, nil)

	require.NoError(t, store.InsertBulk(ctx, []domain.Prediction{prediction("run-1", "u1", 1, 1000)}))

	got, err := store.GetLatestByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", got.RunID)
}

func TestCachedPredictionStore_PrimaryFailureFailsWrite(t *testing.T) {
	store := NewCachedPredictionStore(failingStore{}, memory.NewPredictionStore(), nil)

	err := store.InsertBulk(context.Background(), []domain.Prediction{prediction("run-1", "u1", 1, 1000)})
	assert.ErrorIs(t, err, errStoreDown)
}

func TestNewRunner_BundledModel(t *testing.T) {
	cfg := config.Default()
	cfg.Model.ModelPath = "../../models/model.json"
	cfg.Model.ScalerPath = "../../models/scaler.json"

	stores, cleanup, err := OpenStores(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer cleanup()

	metrics := observability.NewMetricsWith("test", prometheus.NewRegistry())
	runner, err := NewRunner(cfg, stores, metrics, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.NotNil(t, runner)

	cfg.Model.ModelPath = "missing.json"
	_, err = NewRunner(cfg, stores, metrics, zaptest.NewLogger(t))
	assert.Error(t, err)
}
