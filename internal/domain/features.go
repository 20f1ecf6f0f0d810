package domain

import "fmt"

// Feature column names.
const (
	FeatureNumTrades        = "num_trades"
	FeatureTotalProfit      = "total_profit_x"
	FeatureWinRate          = "win_rate"
	FeatureAvgProfitRate    = "avg_profit_rate"
	FeatureStdProfitRate    = "std_profit_rate"
	FeatureTotalCommission  = "total_commission"
	FeatureTotalLotSize     = "total_lot_size"
	FeatureAvgLotSize       = "avg_lot_size"
	FeatureAvgDurationHr    = "avg_duration_hr"
	FeatureProfitFactor     = "profit_factor"
	FeatureMaxWinStreak     = "max_win_streak"
	FeatureMaxLossStreak    = "max_loss_streak"
	FeatureRiskRewardRatio  = "risk_reward_ratio"
	FeatureInvMaxLossStreak = "inv_max_loss_streak"
)

// FeatureNames is the column order the trained scaler and classifier expect.
// Changing it requires retraining the model.
var FeatureNames = []string{
	FeatureNumTrades,
	FeatureTotalProfit,
	FeatureWinRate,
	FeatureAvgProfitRate,
	FeatureStdProfitRate,
	FeatureTotalCommission,
	FeatureTotalLotSize,
	FeatureAvgLotSize,
	FeatureAvgDurationHr,
	FeatureProfitFactor,
	FeatureMaxWinStreak,
	FeatureMaxLossStreak,
	FeatureRiskRewardRatio,
	FeatureInvMaxLossStreak,
}

// FeatureVector holds the per-user aggregates fed to the classifier.
// Corresponds to feature_vectors table in ClickHouse.
type FeatureVector struct {
	UserID string

	// Counts and sums
	NumTrades       int
	TotalProfit     float64
	TotalCommission float64
	TotalLotSize    float64

	// Rates and means
	WinRate       float64 // trades with profit > 0 / num_trades
	AvgProfitRate float64
	StdProfitRate float64 // sample stddev, 0 for a single trade
	AvgLotSize    float64
	AvgDurationHr float64

	// Order-dependent (arrival order)
	MaxWinStreak     int
	MaxLossStreak    int
	InvMaxLossStreak int // -MaxLossStreak

	// Ratios
	ProfitFactor    float64 // +Inf when there are profits and no losses
	RiskRewardRatio float64
}

// Value returns the feature named name as a float64.
func (f *FeatureVector) Value(name string) (float64, error) {
	switch name {
	case FeatureNumTrades:
		return float64(f.NumTrades), nil
	case FeatureTotalProfit:
		return f.TotalProfit, nil
	case FeatureWinRate:
		return f.WinRate, nil
	case FeatureAvgProfitRate:
		return f.AvgProfitRate, nil
	case FeatureStdProfitRate:
		return f.StdProfitRate, nil
	case FeatureTotalCommission:
		return f.TotalCommission, nil
	case FeatureTotalLotSize:
		return f.TotalLotSize, nil
	case FeatureAvgLotSize:
		return f.AvgLotSize, nil
	case FeatureAvgDurationHr:
		return f.AvgDurationHr, nil
	case FeatureProfitFactor:
		return f.ProfitFactor, nil
	case FeatureMaxWinStreak:
		return float64(f.MaxWinStreak), nil
	case FeatureMaxLossStreak:
		return float64(f.MaxLossStreak), nil
	case FeatureRiskRewardRatio:
		return f.RiskRewardRatio, nil
	case FeatureInvMaxLossStreak:
		return float64(f.InvMaxLossStreak), nil
	default:
		return 0, fmt.Errorf("unknown feature %q", name)
	}
}

// Values projects the vector onto names, in that order.
func (f *FeatureVector) Values(names []string) ([]float64, error) {
	row := make([]float64, len(names))
	for i, name := range names {
		v, err := f.Value(name)
		if err != nil {
			return nil, err
		}
		row[i] = v
	}
	return row, nil
}

// FeatureTable is the aggregator output: one vector per user, in the order
// users first appear in the input.
type FeatureTable struct {
	Rows []*FeatureVector
}

// Len returns the number of users in the table.
func (t *FeatureTable) Len() int {
	return len(t.Rows)
}

// UserIDs returns user ids in row order.
func (t *FeatureTable) UserIDs() []string {
	ids := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		ids[i] = r.UserID
	}
	return ids
}

// Get returns the vector for userID, or nil if the user is absent.
func (t *FeatureTable) Get(userID string) *FeatureVector {
	for _, r := range t.Rows {
		if r.UserID == userID {
			return r
		}
	}
	return nil
}

// Matrix projects every row onto names. Row i of the result belongs to Rows[i].
func (t *FeatureTable) Matrix(names []string) ([][]float64, error) {
	matrix := make([][]float64, len(t.Rows))
	for i, r := range t.Rows {
		row, err := r.Values(names)
		if err != nil {
			return nil, fmt.Errorf("project user %s: %w", r.UserID, err)
		}
		matrix[i] = row
	}
	return matrix, nil
}

// FeatureSnapshot is a feature vector persisted as part of a classification run.
// Corresponds to feature_vectors table.
type FeatureSnapshot struct {
	RunID      string
	Position   int   // row index of the user within its run
	ComputedAt int64 // Unix timestamp in milliseconds
	Features   FeatureVector
}

// Snapshots wraps every row of the table for persistence under runID.
func (t *FeatureTable) Snapshots(runID string, computedAt int64) []*FeatureSnapshot {
	out := make([]*FeatureSnapshot, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = &FeatureSnapshot{
			RunID:      runID,
			Position:   i,
			ComputedAt: computedAt,
			Features:   *row,
		}
	}
	return out
}
