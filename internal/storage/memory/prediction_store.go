package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/domain"
	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/storage"
)

// PredictionStore is an in-memory implementation of storage.PredictionStore.
type PredictionStore struct {
	mu   sync.RWMutex
	data map[string]domain.Prediction // keyed by (run_id, user_id)
}

// NewPredictionStore creates a new in-memory prediction store.
func NewPredictionStore() *PredictionStore {
	return &PredictionStore{
		data: make(map[string]domain.Prediction),
	}
}

// InsertBulk adds multiple predictions atomically. Fails entire batch on any duplicate.
func (s *PredictionStore) InsertBulk(_ context.Context, predictions []domain.Prediction) error {
	if len(predictions) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(predictions))
	for _, p := range predictions {
		if p.RunID == "" {
			return storage.ErrInvalidInput
		}
		key := runUserKey(p.RunID, p.UserID)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, p := range predictions {
		s.data[runUserKey(p.RunID, p.UserID)] = p
	}
	return nil
}

// GetByRunID retrieves all predictions of a run, ordered by position ASC.
func (s *PredictionStore) GetByRunID(_ context.Context, runID string) ([]domain.Prediction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.Prediction
	for _, p := range s.data {
		if p.RunID == runID {
			result = append(result, p)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Position < result[j].Position
	})

	return result, nil
}

// GetLatestByUserID retrieves the most recent prediction for a user.
// Ties on created_at are broken by run_id.
func (s *PredictionStore) GetLatestByUserID(_ context.Context, userID string) (*domain.Prediction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *domain.Prediction
	for _, p := range s.data {
		if p.UserID != userID {
			continue
		}
		if latest == nil || p.CreatedAt > latest.CreatedAt ||
			(p.CreatedAt == latest.CreatedAt && p.RunID > latest.RunID) {
			copy := p
			latest = &copy
		}
	}

	if latest == nil {
		return nil, storage.ErrNotFound
	}
	return latest, nil
}

var _ storage.PredictionStore = (*PredictionStore)(nil)
