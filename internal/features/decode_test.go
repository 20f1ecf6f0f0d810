package features

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/domain"
)

func TestDecode_MissingColumnsListedInCanonicalOrder(t *testing.T) {
	raw := []domain.RawTrade{
		{"user_id": "u1", "profit": 1.0, "extra": "ignored"},
	}

	_, err := Decode(raw)

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, []string{"profit_rate", "commission", "lot_size", "duration_hr"}, schemaErr.Missing)
	assert.Equal(t, "missing columns: [profit_rate, commission, lot_size, duration_hr]", err.Error())
}

func TestDecode_EmptyBatchHasNoColumns(t *testing.T) {
	_, err := Decode(nil)

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, domain.RequiredTradeFields, schemaErr.Missing)
}

func TestDecode_FieldMissingOnSomeRecords(t *testing.T) {
	raw := []domain.RawTrade{
		rawTrade("u1", 1, 0.1, 0.2, 1, 1),
		{"user_id": "u2", "profit": 1.0, "profit_rate": 0.1, "lot_size": 1.0, "duration_hr": 1.0},
		{"user_id": "u3", "profit": 1.0, "profit_rate": 0.1, "commission": nil, "lot_size": 1.0, "duration_hr": 1.0},
	}

	_, err := Decode(raw)

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Empty(t, schemaErr.Missing)
	assert.Equal(t, []int{1, 2}, schemaErr.Invalid["commission"])
	assert.Equal(t, []string{"commission"}, schemaErr.Fields())
}

func TestDecode_NonNumericValue(t *testing.T) {
	raw := []domain.RawTrade{
		{"user_id": "u1", "profit": "abc", "profit_rate": 0.1, "commission": 0.0, "lot_size": 1.0, "duration_hr": true},
	}

	_, err := Decode(raw)

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, []string{"duration_hr", "profit"}, schemaErr.InvalidFields())
}

func TestDecode_AcceptsNumbersStringsAndJSONNumbers(t *testing.T) {
	raw := []domain.RawTrade{
		{
			"user_id":     json.Number("1001"),
			"profit":      "12.50",
			"profit_rate": json.Number("0.125"),
			"commission":  1,
			"lot_size":    int64(2),
			"duration_hr": float32(1.5),
		},
		{
			"user_id":     7.0,
			"profit":      -3.0,
			"profit_rate": " -0.03 ",
			"commission":  0.2,
			"lot_size":    1.0,
			"duration_hr": 0.5,
		},
	}

	trades, err := Decode(raw)
	require.NoError(t, err)
	require.Len(t, trades, 2)

	assert.Equal(t, "1001", trades[0].UserID)
	assert.InDelta(t, 12.5, trades[0].Profit, 1e-12)
	assert.InDelta(t, 0.125, trades[0].ProfitRate, 1e-12)
	assert.Equal(t, 1.0, trades[0].Commission)
	assert.Equal(t, 2.0, trades[0].LotSize)
	assert.Equal(t, 1.5, trades[0].DurationHr)

	assert.Equal(t, "7", trades[1].UserID)
	assert.InDelta(t, -0.03, trades[1].ProfitRate, 1e-12)
}

func TestDecode_PreservesInputOrder(t *testing.T) {
	raw := []domain.RawTrade{
		rawTrade("b", 1, 0, 0, 1, 1),
		rawTrade("a", 2, 0, 0, 1, 1),
		rawTrade("b", 3, 0, 0, 1, 1),
	}

	trades, err := Decode(raw)
	require.NoError(t, err)

	assert.Equal(t, 1.0, trades[0].Profit)
	assert.Equal(t, 2.0, trades[1].Profit)
	assert.Equal(t, 3.0, trades[2].Profit)
}

func TestDecode_OutOfRangeNumbersAreInvalid(t *testing.T) {
	raw := []domain.RawTrade{
		{"user_id": "u1", "profit": json.Number("1e999"), "profit_rate": "-1e999", "commission": 0.1, "lot_size": 1.0, "duration_hr": 1.0},
		{"user_id": "u1", "profit": 1.0, "profit_rate": 0.1, "commission": math.Inf(1), "lot_size": 1.0, "duration_hr": 1.0},
	}

	_, err := Decode(raw)

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, []string{"commission", "profit", "profit_rate"}, schemaErr.InvalidFields())
	assert.Equal(t, []int{0}, schemaErr.Invalid["profit"])
	assert.Equal(t, []int{1}, schemaErr.Invalid["commission"])
}

func TestAggregateRaw_OutOfRangeNeverYieldsNaN(t *testing.T) {
	table, err := AggregateRaw([]domain.RawTrade{
		rawTrade("u1", 1, 0.1, 0.1, 1, 1),
		{"user_id": "u1", "profit": json.Number("-1e999"), "profit_rate": 0.1, "commission": 0.1, "lot_size": 1.0, "duration_hr": 1.0},
	})

	assert.Nil(t, table)
	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, []int{1}, schemaErr.Invalid["profit"])
}

func TestDecode_EmptyUserIDIsInvalid(t *testing.T) {
	raw := []domain.RawTrade{
		rawTrade("u1", 1, 0.1, 0.1, 1, 1),
		rawTrade("", 1, 0.1, 0.1, 1, 1),
		rawTrade("  ", 1, 0.1, 0.1, 1, 1),
	}

	_, err := Decode(raw)

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, []string{"user_id"}, schemaErr.Fields())
	assert.Equal(t, []int{1, 2}, schemaErr.Invalid["user_id"])
}
