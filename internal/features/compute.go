package features

import (
	"math"

	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/domain"
)

// computeFromTrades calculates the feature vector of one user.
// Trades must be in arrival order; they are never re-sorted because the
// streak features depend on that order.
func computeFromTrades(userID string, trades []*domain.TradeRecord) *domain.FeatureVector {
	n := len(trades)
	if n == 0 {
		return &domain.FeatureVector{UserID: userID}
	}

	profits := make([]float64, n)
	profitRates := make([]float64, n)
	commissions := make([]float64, n)
	lotSizes := make([]float64, n)
	durations := make([]float64, n)
	wins := 0

	for i, t := range trades {
		profits[i] = t.Profit
		profitRates[i] = t.ProfitRate
		commissions[i] = t.Commission
		lotSizes[i] = t.LotSize
		durations[i] = t.DurationHr
		if t.IsWin() {
			wins++
		}
	}

	avgProfitRate := computeMean(profitRates)
	totalLotSize := computeSum(lotSizes)

	maxWinStreak := computeMaxStreak(trades, isWin)
	maxLossStreak := computeMaxStreak(trades, isLoss)

	return &domain.FeatureVector{
		UserID: userID,

		NumTrades:       n,
		TotalProfit:     computeSum(profits),
		TotalCommission: computeSum(commissions),
		TotalLotSize:    totalLotSize,

		WinRate:       computeWinRate(wins, n),
		AvgProfitRate: avgProfitRate,
		StdProfitRate: computeStddev(profitRates, avgProfitRate),
		AvgLotSize:    totalLotSize / float64(n),
		AvgDurationHr: computeMean(durations),

		MaxWinStreak:     maxWinStreak,
		MaxLossStreak:    maxLossStreak,
		InvMaxLossStreak: -maxLossStreak,

		ProfitFactor:    computeProfitFactor(profits),
		RiskRewardRatio: computeRiskRewardRatio(profits),
	}
}

func isWin(t *domain.TradeRecord) bool  { return t.IsWin() }
func isLoss(t *domain.TradeRecord) bool { return !t.IsWin() }

// computeWinRate calculates win rate as wins / total.
func computeWinRate(wins, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(wins) / float64(total)
}

func computeSum(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum
}

// computeMean calculates the arithmetic mean, 0 for no values.
func computeMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return computeSum(values) / float64(len(values))
}

// computeStddev calculates sample standard deviation (n-1 denominator).
// A single observation has no sample deviation and yields 0.
func computeStddev(values []float64, mean float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	sumSq := 0.0
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// computeMaxStreak finds the longest run of consecutive trades matching pred.
// Trades must be in arrival order.
func computeMaxStreak(trades []*domain.TradeRecord, pred func(*domain.TradeRecord) bool) int {
	maxStreak := 0
	currentStreak := 0

	for _, t := range trades {
		if pred(t) {
			currentStreak++
			if currentStreak > maxStreak {
				maxStreak = currentStreak
			}
		} else {
			currentStreak = 0
		}
	}
	return maxStreak
}

// computeProfitFactor divides gross profit by gross loss.
// With no losing amount the factor is +Inf if anything was won, else 0.
func computeProfitFactor(profits []float64) float64 {
	grossProfit := 0.0
	grossLoss := 0.0
	for _, p := range profits {
		switch {
		case p > 0:
			grossProfit += p
		case p < 0:
			grossLoss += p
		}
	}
	grossLoss = math.Abs(grossLoss)

	if grossLoss == 0 {
		if grossProfit > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return grossProfit / grossLoss
}

// computeRiskRewardRatio divides the mean winning profit by the absolute mean
// losing profit. Zero-profit trades belong to neither side. Returns 0 when
// either side has no trades.
func computeRiskRewardRatio(profits []float64) float64 {
	var gains, losses []float64
	for _, p := range profits {
		switch {
		case p > 0:
			gains = append(gains, p)
		case p < 0:
			losses = append(losses, p)
		}
	}
	if len(gains) == 0 || len(losses) == 0 {
		return 0
	}

	avgLoss := math.Abs(computeMean(losses))
	if avgLoss == 0 {
		return 0
	}
	return computeMean(gains) / avgLoss
}
