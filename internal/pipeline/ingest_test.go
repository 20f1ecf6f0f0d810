package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/domain"
	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/storage/memory"
)

func TestIngest_AssignsIDsAndSequence(t *testing.T) {
	ctx := context.Background()
	store := memory.NewTradeRecordStore()

	first := sampleTrades()
	batchID, err := Ingest(ctx, store, first)
	require.NoError(t, err)
	assert.Len(t, batchID, 64)
	assert.Equal(t, int64(1), first[0].Seq)
	assert.Equal(t, int64(6), first[5].Seq)
	assert.NotEmpty(t, first[0].TradeID)

	second := []*domain.TradeRecord{tradeRecord("alice", -7)}
	_, err = Ingest(ctx, store, second)
	require.NoError(t, err)
	assert.Equal(t, int64(7), second[0].Seq)

	alice, err := store.GetByUserID(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, alice, 4)
	assert.Equal(t, []float64{5, -1, 2, -7}, []float64{alice[0].Profit, alice[1].Profit, alice[2].Profit, alice[3].Profit})
}

func TestIngest_SameBatchTwice(t *testing.T) {
	ctx := context.Background()
	store := memory.NewTradeRecordStore()

	batchID, err := Ingest(ctx, store, sampleTrades())
	require.NoError(t, err)

	again, err := Ingest(ctx, store, sampleTrades())
	assert.ErrorIs(t, err, ErrBatchExists)
	assert.Equal(t, batchID, again)

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 6)
}

func TestIngest_Empty(t *testing.T) {
	_, err := Ingest(context.Background(), memory.NewTradeRecordStore(), nil)
	assert.NoError(t, err)
}

func TestIngest_OverlappingBatchStoredInFull(t *testing.T) {
	ctx := context.Background()
	store := memory.NewTradeRecordStore()

	_, err := Ingest(ctx, store, []*domain.TradeRecord{tradeRecord("alice", 5), tradeRecord("alice", -1)})
	require.NoError(t, err)

	// ids are per batch, so repeated trades in a longer batch are not recognized
	_, err = Ingest(ctx, store, []*domain.TradeRecord{tradeRecord("alice", 5), tradeRecord("alice", -1), tradeRecord("alice", 2)})
	require.NoError(t, err)

	alice, err := store.GetByUserID(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, alice, 5)
}
