package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureNames_WireOrder(t *testing.T) {
	expected := []string{
		"num_trades", "total_profit_x", "win_rate",
		"avg_profit_rate", "std_profit_rate", "total_commission",
		"total_lot_size", "avg_lot_size", "avg_duration_hr", "profit_factor",
		"max_win_streak", "max_loss_streak", "risk_reward_ratio", "inv_max_loss_streak",
	}
	assert.Equal(t, expected, FeatureNames)
}

func TestFeatureVector_ValuesFollowRequestedOrder(t *testing.T) {
	f := &FeatureVector{
		UserID:           "u1",
		NumTrades:        3,
		TotalProfit:      12.5,
		MaxLossStreak:    2,
		InvMaxLossStreak: -2,
		ProfitFactor:     math.Inf(1),
	}

	row, err := f.Values([]string{FeatureInvMaxLossStreak, FeatureNumTrades, FeatureProfitFactor, FeatureTotalProfit})
	require.NoError(t, err)

	assert.Equal(t, -2.0, row[0])
	assert.Equal(t, 3.0, row[1])
	assert.True(t, math.IsInf(row[2], 1))
	assert.Equal(t, 12.5, row[3])
}

func TestFeatureVector_UnknownFeature(t *testing.T) {
	f := &FeatureVector{UserID: "u1"}
	_, err := f.Values([]string{"sharpe_ratio"})
	assert.Error(t, err)
}

func TestFeatureTable_MatrixRowsMatchUsers(t *testing.T) {
	table := &FeatureTable{Rows: []*FeatureVector{
		{UserID: "b", NumTrades: 7},
		{UserID: "a", NumTrades: 2},
	}}

	m, err := table.Matrix(FeatureNames)
	require.NoError(t, err)
	require.Len(t, m, 2)

	assert.Equal(t, []string{"b", "a"}, table.UserIDs())
	assert.Equal(t, 7.0, m[0][0])
	assert.Equal(t, 2.0, m[1][0])
	assert.Len(t, m[0], len(FeatureNames))
	assert.Equal(t, 2, table.Get("a").NumTrades)
	assert.Nil(t, table.Get("zzz"))
}

func TestClassName(t *testing.T) {
	assert.Equal(t, "higher performer", ClassName(1))
	assert.Equal(t, "lower performer", ClassName(0))
	assert.Equal(t, "lower performer", ClassName(2))
	assert.Equal(t, "lower performer", ClassName(-1))

	p := NewPrediction("u9", 1)
	assert.Equal(t, "u9", p.UserID)
	assert.Equal(t, ClassHigherPerformer, p.ClassName)
}
