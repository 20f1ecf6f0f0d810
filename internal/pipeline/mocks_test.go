package pipeline

import (
	"github.com/stretchr/testify/mock"

	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/domain"
)

type mockScaler struct {
	mock.Mock
}

func (m *mockScaler) Transform(x [][]float64) ([][]float64, error) {
	args := m.Called(x)
	out, _ := args.Get(0).([][]float64)
	return out, args.Error(1)
}

type mockClassifier struct {
	mock.Mock
}

func (m *mockClassifier) Predict(x [][]float64) ([]int, error) {
	args := m.Called(x)
	out, _ := args.Get(0).([]int)
	return out, args.Error(1)
}

// identityScaler returns its input unchanged.
type identityScaler struct{}

func (identityScaler) Transform(x [][]float64) ([][]float64, error) { return x, nil }

// winRateClassifier labels a row 1 when its win_rate column is at least 0.5.
type winRateClassifier struct{}

func (winRateClassifier) Predict(x [][]float64) ([]int, error) {
	col := -1
	for i, name := range domain.FeatureNames {
		if name == domain.FeatureWinRate {
			col = i
		}
	}
	labels := make([]int, len(x))
	for i, row := range x {
		if row[col] >= 0.5 {
			labels[i] = 1
		}
	}
	return labels, nil
}

func rawTrade(userID string, profit float64) domain.RawTrade {
	return domain.RawTrade{
		"user_id":     userID,
		"profit":      profit,
		"profit_rate": profit / 100,
		"commission":  0.1,
		"lot_size":    1.0,
		"duration_hr": 2.0,
	}
}

func tradeRecord(userID string, profit float64) *domain.TradeRecord {
	return &domain.TradeRecord{
		UserID:     userID,
		Profit:     profit,
		ProfitRate: profit / 100,
		Commission: 0.1,
		LotSize:    1.0,
		DurationHr: 2.0,
	}
}
