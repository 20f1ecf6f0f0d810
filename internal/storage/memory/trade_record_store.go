// Package memory holds map-backed stores for tests and runs without a database.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/domain"
	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/storage"
)

// TradeRecordStore keeps trade history in memory with a per-user index.
type TradeRecordStore struct {
	mu     sync.RWMutex
	byID   map[string]domain.TradeRecord
	byUser map[string][]string // trade ids
	maxSeq int64
}

// NewTradeRecordStore returns an empty store.
func NewTradeRecordStore() *TradeRecordStore {
	return &TradeRecordStore{
		byID:   make(map[string]domain.TradeRecord),
		byUser: make(map[string][]string),
	}
}

var _ storage.TradeRecordStore = (*TradeRecordStore)(nil)

// Insert stores one trade.
func (s *TradeRecordStore) Insert(ctx context.Context, t *domain.TradeRecord) error {
	return s.InsertBulk(ctx, []*domain.TradeRecord{t})
}

// InsertBulk stores every trade or none of them.
func (s *TradeRecordStore) InsertBulk(_ context.Context, trades []*domain.TradeRecord) error {
	if len(trades) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pending := make(map[string]struct{}, len(trades))
	for _, t := range trades {
		if t == nil || t.TradeID == "" || t.UserID == "" {
			return storage.ErrInvalidInput
		}
		if _, ok := s.byID[t.TradeID]; ok {
			return storage.ErrDuplicateKey
		}
		if _, ok := pending[t.TradeID]; ok {
			return storage.ErrDuplicateKey
		}
		pending[t.TradeID] = struct{}{}
	}

	for _, t := range trades {
		s.byID[t.TradeID] = *t
		s.byUser[t.UserID] = append(s.byUser[t.UserID], t.TradeID)
		s.maxSeq = max(s.maxSeq, t.Seq)
	}
	return nil
}

// GetByID returns storage.ErrNotFound for an unknown trade id.
func (s *TradeRecordStore) GetByID(_ context.Context, tradeID string) (*domain.TradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.byID[tradeID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &t, nil
}

// GetByUserID returns the user's trades in arrival order.
func (s *TradeRecordStore) GetByUserID(_ context.Context, userID string) ([]*domain.TradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sorted(s.byUser[userID]), nil
}

// GetAll returns every trade in arrival order.
func (s *TradeRecordStore) GetAll(_ context.Context) ([]*domain.TradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.byID))
	for id := range s.byID {
		ids = append(ids, id)
	}
	return s.sorted(ids), nil
}

// MaxSeq returns 0 for an empty store.
func (s *TradeRecordStore) MaxSeq(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.maxSeq, nil
}

// sorted copies the trades named by ids ordered by seq, then trade id.
// Callers hold the read lock.
func (s *TradeRecordStore) sorted(ids []string) []*domain.TradeRecord {
	out := make([]*domain.TradeRecord, 0, len(ids))
	for _, id := range ids {
		t := s.byID[id]
		out = append(out, &t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Seq != out[j].Seq {
			return out[i].Seq < out[j].Seq
		}
		return out[i].TradeID < out[j].TradeID
	})
	return out
}
