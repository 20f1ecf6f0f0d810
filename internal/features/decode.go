package features

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/domain"
)

// Decode converts raw payload records into trade records.
//
// The schema check runs on the whole batch before any record is converted:
// a required field absent from every record is reported in SchemaError.Missing.
// An empty batch carries no fields at all and is rejected the same way.
// Records that lack a field the rest of the batch carries, hold an empty
// user_id, or hold a value that is not a finite number are reported in
// SchemaError.Invalid. This per-record check is stricter than a column-level
// one: a single incomplete record rejects the whole batch instead of being
// carried with a missing value.
func Decode(raw []domain.RawTrade) ([]*domain.TradeRecord, error) {
	if missing := missingFields(raw); len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}

	trades := make([]*domain.TradeRecord, len(raw))
	invalid := make(map[string][]int)

	for i, r := range raw {
		t, bad := decodeRecord(r)
		for _, field := range bad {
			invalid[field] = append(invalid[field], i)
		}
		trades[i] = t
	}

	if len(invalid) > 0 {
		return nil, &SchemaError{Invalid: invalid}
	}
	return trades, nil
}

// missingFields returns required fields that no record in the batch carries.
func missingFields(raw []domain.RawTrade) []string {
	var missing []string
	for _, field := range domain.RequiredTradeFields {
		present := false
		for _, r := range raw {
			if _, ok := r[field]; ok {
				present = true
				break
			}
		}
		if !present {
			missing = append(missing, field)
		}
	}
	return missing
}

// decodeRecord converts one record, returning the names of fields it could not read.
func decodeRecord(r domain.RawTrade) (*domain.TradeRecord, []string) {
	var bad []string
	t := &domain.TradeRecord{}

	userID, ok := parseUserID(r[domain.FieldUserID])
	if !ok {
		bad = append(bad, domain.FieldUserID)
	}
	t.UserID = userID

	numeric := []struct {
		field string
		dst   *float64
	}{
		{domain.FieldProfit, &t.Profit},
		{domain.FieldProfitRate, &t.ProfitRate},
		{domain.FieldCommission, &t.Commission},
		{domain.FieldLotSize, &t.LotSize},
		{domain.FieldDurationHr, &t.DurationHr},
	}
	for _, n := range numeric {
		v, ok := parseNumber(r[n.field])
		if !ok {
			bad = append(bad, n.field)
			continue
		}
		*n.dst = v
	}

	return t, bad
}

// parseUserID normalizes string and numeric identifiers to text.
func parseUserID(v any) (string, bool) {
	switch id := v.(type) {
	case string:
		return id, strings.TrimSpace(id) != ""
	case int:
		return strconv.Itoa(id), true
	case int64:
		return strconv.FormatInt(id, 10), true
	case float64:
		if math.IsNaN(id) || math.IsInf(id, 0) {
			return "", false
		}
		return strconv.FormatFloat(id, 'f', -1, 64), true
	case fmt.Stringer:
		// json.Number from a decoder running with UseNumber
		s := id.String()
		return s, s != ""
	default:
		return "", false
	}
}

// parseNumber accepts JSON numbers and numeric strings holding finite values.
func parseNumber(v any) (float64, bool) {
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		return parseDecimal(n)
	case fmt.Stringer:
		return parseDecimal(n.String())
	default:
		return 0, false
	}
}

func parseDecimal(s string) (float64, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return d.InexactFloat64(), true
}
