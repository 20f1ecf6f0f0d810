package memory

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/domain"
	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/storage"
)

func snapshot(runID, userID string, position int, computedAt int64) *domain.FeatureSnapshot {
	return &domain.FeatureSnapshot{
		RunID:      runID,
		Position:   position,
		ComputedAt: computedAt,
		Features: domain.FeatureVector{
			UserID:       userID,
			NumTrades:    3,
			ProfitFactor: math.Inf(1),
		},
	}
}

func TestFeatureVectorStore_InsertBulkAndGetByRunID(t *testing.T) {
	store := NewFeatureVectorStore()
	ctx := context.Background()

	snaps := []*domain.FeatureSnapshot{
		snapshot("run1", "carol", 1, 1000),
		snapshot("run1", "alice", 0, 1000),
		snapshot("run2", "alice", 0, 2000),
	}
	if err := store.InsertBulk(ctx, snaps); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetByRunID(ctx, "run1")
	if err != nil {
		t.Fatalf("GetByRunID failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 snapshots, got %d", len(got))
	}
	if got[0].Features.UserID != "alice" || got[1].Features.UserID != "carol" {
		t.Errorf("Expected position order alice,carol, got %s,%s", got[0].Features.UserID, got[1].Features.UserID)
	}
	if !math.IsInf(got[0].Features.ProfitFactor, 1) {
		t.Errorf("Expected +Inf profit factor to survive, got %f", got[0].Features.ProfitFactor)
	}
}

func TestFeatureVectorStore_GetByUserID(t *testing.T) {
	store := NewFeatureVectorStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, []*domain.FeatureSnapshot{
		snapshot("run2", "alice", 0, 2000),
		snapshot("run1", "alice", 0, 1000),
		snapshot("run1", "bob", 1, 1000),
	}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetByUserID(ctx, "alice")
	if err != nil {
		t.Fatalf("GetByUserID failed: %v", err)
	}
	if len(got) != 2 || got[0].RunID != "run1" || got[1].RunID != "run2" {
		t.Errorf("Expected run1,run2 in computed_at order, got %+v", got)
	}
}

func TestFeatureVectorStore_DuplicateKey(t *testing.T) {
	store := NewFeatureVectorStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, []*domain.FeatureSnapshot{snapshot("run1", "alice", 0, 1000)}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	err := store.InsertBulk(ctx, []*domain.FeatureSnapshot{
		snapshot("run1", "bob", 1, 1000),
		snapshot("run1", "alice", 0, 1000),
	})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	got, _ := store.GetByRunID(ctx, "run1")
	if len(got) != 1 {
		t.Errorf("Expected failed batch to insert nothing, got %d rows", len(got))
	}
}

func TestFeatureVectorStore_InvalidInput(t *testing.T) {
	store := NewFeatureVectorStore()

	err := store.InsertBulk(context.Background(), []*domain.FeatureSnapshot{snapshot("", "alice", 0, 1000)})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}
