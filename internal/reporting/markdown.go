package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Trader Performance Prediction Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Run: %s\n\n", r.RunID))
	if r.DataVersion != "" {
		sb.WriteString(fmt.Sprintf("Data version: %s\n\n", r.DataVersion))
	}

	// Data Summary
	sb.WriteString("## Data Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Trades | %d |\n", r.DataSummary.TotalTrades))
	sb.WriteString(fmt.Sprintf("| Users Scored | %d |\n", r.DataSummary.TotalUsers))
	sb.WriteString("\n")

	// Classes
	sb.WriteString("## Class Breakdown\n\n")
	sb.WriteString("| Class | Label | Users | Share |\n")
	sb.WriteString("|-------|-------|-------|-------|\n")
	for _, c := range r.Classes {
		sb.WriteString(fmt.Sprintf("| %s | %d | %d | %.2f%% |\n", c.ClassName, c.Label, c.Users, c.Share*100))
	}
	sb.WriteString("\n")

	// Feature distribution
	sb.WriteString("## Feature Distribution\n\n")
	if r.DataSummary.TotalUsers > 0 {
		sb.WriteString("| Feature | Mean | Min | Max | Non-finite |\n")
		sb.WriteString("|---------|------|-----|-----|------------|\n")
		for _, s := range r.FeatureStats {
			sb.WriteString(fmt.Sprintf("| %s | %.4f | %.4f | %.4f | %d |\n",
				s.Name, s.Mean, s.Min, s.Max, s.NonFinite))
		}
	} else {
		sb.WriteString("No users scored.\n")
	}
	sb.WriteString("\n")

	// Predictions
	sb.WriteString("## Predictions\n\n")
	if len(r.Predictions) > 0 {
		sb.WriteString("| # | User | Trades | WinRate | Label | Class |\n")
		sb.WriteString("|---|------|--------|---------|-------|-------|\n")
		for _, p := range r.Predictions {
			sb.WriteString(fmt.Sprintf("| %d | %s | %d | %.4f | %d | %s |\n",
				p.Position, p.UserID, p.NumTrades, p.WinRate, p.Label, p.ClassName))
		}
	} else {
		sb.WriteString("No predictions available.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}
