package domain

// RawTrade is one trade object as it arrives in the input payload.
// Keys other than the required trade fields are ignored.
type RawTrade map[string]any

// Required trade field names, in canonical order.
const (
	FieldUserID     = "user_id"
	FieldProfit     = "profit"
	FieldProfitRate = "profit_rate"
	FieldCommission = "commission"
	FieldLotSize    = "lot_size"
	FieldDurationHr = "duration_hr"
)

// RequiredTradeFields lists every field a trade batch must carry.
var RequiredTradeFields = []string{
	FieldUserID,
	FieldProfit,
	FieldProfitRate,
	FieldCommission,
	FieldLotSize,
	FieldDurationHr,
}

// TradeRecord represents a single executed trade attributed to a user.
// Corresponds to trade_records table.
type TradeRecord struct {
	TradeID    string  // SHA256(batch_id|index), stored trades only
	UserID     string  // normalized textual user identifier
	Seq        int64   // global arrival ordinal, stored trades only
	Profit     float64 // signed realized profit
	ProfitRate float64 // profit relative to position value
	Commission float64 // fees paid
	LotSize    float64 // traded volume, >= 0
	DurationHr float64 // holding time in hours, >= 0
}

// IsWin reports whether the trade counts toward the win streak.
// A trade with zero profit is a loss.
func (t *TradeRecord) IsWin() bool {
	return t.Profit > 0
}

// Sequence assigns consecutive arrival ordinals starting at start, in slice order.
func Sequence(trades []*TradeRecord, start int64) {
	for i, t := range trades {
		t.Seq = start + int64(i)
	}
}
