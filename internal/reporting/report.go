package reporting

import "time"

// Report summarizes one classification run.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	RunID       string
	DataVersion string // short hash of the input batch, empty when unknown

	// Data Summary
	DataSummary DataSummary

	// Class breakdown, higher performers first
	Classes []ClassRow

	// Per-feature distribution over users, in model column order
	FeatureStats []FeatureStatRow

	// Predictions in run order
	Predictions []PredictionRow
}

// DataSummary describes the scored batch.
type DataSummary struct {
	TotalTrades int // 0 when the run was rebuilt from stored snapshots
	TotalUsers  int
}

// ClassRow counts users per predicted class.
type ClassRow struct {
	ClassName string
	Label     int
	Users     int
	Share     float64 // users / total users, 0 for an empty run
}

// FeatureStatRow describes one feature column across users.
// Non-finite values (profit_factor without losses) are counted separately and
// excluded from mean, min and max.
type FeatureStatRow struct {
	Name      string
	Mean      float64
	Min       float64
	Max       float64
	NonFinite int
}

// PredictionRow is one line of the prediction table.
type PredictionRow struct {
	Position  int
	UserID    string
	Label     int
	ClassName string
	NumTrades int
	WinRate   float64
}
