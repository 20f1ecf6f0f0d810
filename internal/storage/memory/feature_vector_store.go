package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/domain"
	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/storage"
)

// FeatureVectorStore is an in-memory implementation of storage.FeatureVectorStore.
type FeatureVectorStore struct {
	mu   sync.RWMutex
	data map[string]*domain.FeatureSnapshot // keyed by (run_id, user_id)
}

// NewFeatureVectorStore creates a new in-memory feature vector store.
func NewFeatureVectorStore() *FeatureVectorStore {
	return &FeatureVectorStore{
		data: make(map[string]*domain.FeatureSnapshot),
	}
}

// runUserKey generates a unique key for a per-run, per-user record.
func runUserKey(runID, userID string) string {
	return fmt.Sprintf("%s|%s", runID, userID)
}

// InsertBulk adds multiple snapshots. Fails entire batch on duplicate.
func (s *FeatureVectorStore) InsertBulk(_ context.Context, snapshots []*domain.FeatureSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[string]struct{}, len(snapshots))

	for _, snap := range snapshots {
		if snap == nil || snap.RunID == "" {
			return storage.ErrInvalidInput
		}
		key := runUserKey(snap.RunID, snap.Features.UserID)

		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, snap := range snapshots {
		copy := *snap
		s.data[runUserKey(snap.RunID, snap.Features.UserID)] = &copy
	}

	return nil
}

// GetByRunID retrieves all snapshots of a run, ordered by position ASC.
func (s *FeatureVectorStore) GetByRunID(_ context.Context, runID string) ([]*domain.FeatureSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.FeatureSnapshot
	for _, snap := range s.data {
		if snap.RunID == runID {
			copy := *snap
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Position < result[j].Position
	})

	return result, nil
}

// GetByUserID retrieves all snapshots of a user, ordered by computed_at ASC.
func (s *FeatureVectorStore) GetByUserID(_ context.Context, userID string) ([]*domain.FeatureSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.FeatureSnapshot
	for _, snap := range s.data {
		if snap.Features.UserID == userID {
			copy := *snap
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].ComputedAt != result[j].ComputedAt {
			return result[i].ComputedAt < result[j].ComputedAt
		}
		return result[i].RunID < result[j].RunID
	})

	return result, nil
}

var _ storage.FeatureVectorStore = (*FeatureVectorStore)(nil)
