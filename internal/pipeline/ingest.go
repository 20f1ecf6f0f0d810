package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/domain"
	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/idhash"
	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/storage"
)

// ErrBatchExists is returned by Ingest when the same batch was stored before.
var ErrBatchExists = errors.New("trade batch already ingested")

// Ingest stores a decoded trade batch in arrival order after the trades
// already in store. Trade ids are derived from the batch content, so a batch
// ingested twice fails with ErrBatchExists and leaves the store unchanged.
// Trades are not fingerprinted one by one: a later batch that repeats
// earlier trades alongside new ones has different ids and is stored in full.
// Returns the batch id.
func Ingest(ctx context.Context, store storage.TradeRecordStore, trades []*domain.TradeRecord) (string, error) {
	batchID := idhash.AssignTradeIDs(trades)
	if len(trades) == 0 {
		return batchID, nil
	}

	maxSeq, err := store.MaxSeq(ctx)
	if err != nil {
		return "", fmt.Errorf("read max seq: %w", err)
	}
	domain.Sequence(trades, maxSeq+1)

	if err := store.InsertBulk(ctx, trades); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return batchID, ErrBatchExists
		}
		return "", fmt.Errorf("insert trades: %w", err)
	}
	return batchID, nil
}
