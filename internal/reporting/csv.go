package reporting

import (
	"fmt"
	"strings"

	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/domain"
)

// RenderFeaturesCSV renders feature vectors as CSV, one row per user.
// Columns: user_id followed by the model feature columns in model order.
func RenderFeaturesCSV(vectors []*domain.FeatureVector) string {
	var sb strings.Builder

	// Header
	sb.WriteString("user_id,")
	sb.WriteString(strings.Join(domain.FeatureNames, ","))
	sb.WriteString("\n")

	// Rows
	for _, v := range vectors {
		sb.WriteString(csvField(v.UserID))
		for _, name := range domain.FeatureNames {
			x, _ := v.Value(name)
			sb.WriteString(",")
			sb.WriteString(formatValue(name, x))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// RenderPredictionsCSV renders predictions as CSV in run order.
func RenderPredictionsCSV(predictions []domain.Prediction) string {
	var sb strings.Builder

	sb.WriteString("position,user_id,predicted_label,predicted_performance_class\n")
	for _, p := range predictions {
		sb.WriteString(fmt.Sprintf("%d,%s,%d,%s\n",
			p.Position,
			csvField(p.UserID),
			p.Label,
			csvField(p.ClassName),
		))
	}

	return sb.String()
}

// formatValue prints count features as integers and the rest with 6 decimals.
func formatValue(name string, x float64) string {
	switch name {
	case domain.FeatureNumTrades, domain.FeatureMaxWinStreak, domain.FeatureMaxLossStreak, domain.FeatureInvMaxLossStreak:
		return fmt.Sprintf("%d", int64(x))
	default:
		return fmt.Sprintf("%.6f", x)
	}
}

// csvField quotes s when it contains a separator, quote or newline.
func csvField(s string) string {
	if !strings.ContainsAny(s, ",\"\r\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
