// Package redis implements the prediction store on Redis for low-latency
// lookups of a user's latest label. Entries expire after a configurable TTL.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/domain"
	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/storage"
)

const (
	// KeyPrefix namespaces every key written by the store.
	KeyPrefix = "trader-classifier:prediction:"
	// DefaultTTL is used when the store is created with a zero TTL.
	DefaultTTL = 24 * time.Hour
)

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// PredictionStore implements storage.PredictionStore using Redis.
//
// Layout:
//
//	<prefix>run:<run_id>    list of predictions in position order
//	<prefix>user:<user_id>  latest prediction of the user
type PredictionStore struct {
	rdb *goredis.Client
	ttl time.Duration
}

// Compile-time interface check.
var _ storage.PredictionStore = (*PredictionStore)(nil)

// NewClient opens and pings a Redis client.
func NewClient(ctx context.Context, opts Options) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// NewPredictionStore creates a store on an existing client.
func NewPredictionStore(rdb *goredis.Client, ttl time.Duration) *PredictionStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &PredictionStore{rdb: rdb, ttl: ttl}
}

func runKey(runID string) string   { return KeyPrefix + "run:" + runID }
func userKey(userID string) string { return KeyPrefix + "user:" + userID }

// InsertBulk stores the predictions of one or more runs. A run that already
// has predictions is rejected with ErrDuplicateKey.
func (s *PredictionStore) InsertBulk(ctx context.Context, predictions []domain.Prediction) error {
	if len(predictions) == 0 {
		return nil
	}

	type key struct{ runID, userID string }
	seen := make(map[key]struct{}, len(predictions))
	byRun := make(map[string][]any)
	var runOrder []string

	for _, p := range predictions {
		if p.RunID == "" || p.UserID == "" {
			return storage.ErrInvalidInput
		}
		k := key{p.RunID, p.UserID}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}

		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("marshal prediction: %w", err)
		}
		if _, ok := byRun[p.RunID]; !ok {
			runOrder = append(runOrder, p.RunID)
		}
		byRun[p.RunID] = append(byRun[p.RunID], data)
	}

	for _, runID := range runOrder {
		n, err := s.rdb.Exists(ctx, runKey(runID)).Result()
		if err != nil {
			return fmt.Errorf("redis exists: %w", err)
		}
		if n > 0 {
			return storage.ErrDuplicateKey
		}
	}

	_, err := s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		for _, runID := range runOrder {
			pipe.RPush(ctx, runKey(runID), byRun[runID]...)
			pipe.Expire(ctx, runKey(runID), s.ttl)
		}
		for _, p := range predictions {
			data, _ := json.Marshal(p)
			pipe.Set(ctx, userKey(p.UserID), data, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis write predictions: %w", err)
	}
	return nil
}

// GetByRunID retrieves all predictions of a run, ordered by position ASC.
// Expired runs return an empty slice.
func (s *PredictionStore) GetByRunID(ctx context.Context, runID string) ([]domain.Prediction, error) {
	items, err := s.rdb.LRange(ctx, runKey(runID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lrange: %w", err)
	}

	result := make([]domain.Prediction, 0, len(items))
	for _, item := range items {
		var p domain.Prediction
		if err := json.Unmarshal([]byte(item), &p); err != nil {
			return nil, fmt.Errorf("unmarshal prediction: %w", err)
		}
		result = append(result, p)
	}
	return result, nil
}

// GetLatestByUserID retrieves the most recent prediction for a user.
func (s *PredictionStore) GetLatestByUserID(ctx context.Context, userID string) (*domain.Prediction, error) {
	data, err := s.rdb.Get(ctx, userKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var p domain.Prediction
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshal prediction: %w", err)
	}
	return &p, nil
}
