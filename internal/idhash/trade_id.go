package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/domain"
)

// ComputeBatchID computes a deterministic fingerprint of a trade batch.
// Formula: SHA256 over user_id|profit|profit_rate|commission|lot_size|duration_hr
// of every trade, in batch order. Returns hex-encoded hash (64 characters).
func ComputeBatchID(trades []*domain.TradeRecord) string {
	h := sha256.New()
	for _, t := range trades {
		fmt.Fprintf(h, "%s|%s|%s|%s|%s|%s\n",
			t.UserID,
			formatFloat(t.Profit),
			formatFloat(t.ProfitRate),
			formatFloat(t.Commission),
			formatFloat(t.LotSize),
			formatFloat(t.DurationHr),
		)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ComputeTradeID computes a deterministic trade_id using SHA256.
// Formula: SHA256(batch_id|index)
// Returns hex-encoded hash (64 characters).
func ComputeTradeID(batchID string, index int) string {
	data := fmt.Sprintf("%s|%d", batchID, index)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// AssignTradeIDs sets TradeID on every trade of a batch and returns the batch id.
// Ingesting the same batch twice yields the same ids.
func AssignTradeIDs(trades []*domain.TradeRecord) string {
	batchID := ComputeBatchID(trades)
	for i, t := range trades {
		t.TradeID = ComputeTradeID(batchID, i)
	}
	return batchID
}

// ShortID returns the first 12 characters of a hex id.
func ShortID(id string) string {
	if len(id) < 12 {
		return id
	}
	return id[:12]
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
