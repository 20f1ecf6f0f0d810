// Package reporting renders classification runs as CSV and Markdown.
package reporting

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/domain"
	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/storage"
)

// Generator produces reports from run output or from stored runs.
type Generator struct {
	featureStore    storage.FeatureVectorStore
	predictionStore storage.PredictionStore
	now             func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator. Stores may be nil when only
// Build is used.
func NewGenerator(featureStore storage.FeatureVectorStore, predictionStore storage.PredictionStore) *Generator {
	return &Generator{
		featureStore:    featureStore,
		predictionStore: predictionStore,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Input is the in-memory output of a run.
type Input struct {
	RunID       string
	DataVersion string
	TotalTrades int
	Features    []*domain.FeatureVector // one per user, in run order
	Predictions []domain.Prediction     // aligned with Features
}

// Build assembles a report from run output.
func (g *Generator) Build(in Input) (*Report, error) {
	if len(in.Features) != len(in.Predictions) {
		return nil, fmt.Errorf("report: %d feature rows for %d predictions", len(in.Features), len(in.Predictions))
	}

	rows := make([]PredictionRow, len(in.Predictions))
	for i, p := range in.Predictions {
		f := in.Features[i]
		if f.UserID != p.UserID {
			return nil, fmt.Errorf("report: row %d user mismatch: features %q, prediction %q", i, f.UserID, p.UserID)
		}
		rows[i] = PredictionRow{
			Position:  p.Position,
			UserID:    p.UserID,
			Label:     p.Label,
			ClassName: p.ClassName,
			NumTrades: f.NumTrades,
			WinRate:   f.WinRate,
		}
	}

	return &Report{
		GeneratedAt: g.now(),
		RunID:       in.RunID,
		DataVersion: in.DataVersion,
		DataSummary: DataSummary{
			TotalTrades: in.TotalTrades,
			TotalUsers:  len(in.Predictions),
		},
		Classes:      generateClasses(in.Predictions),
		FeatureStats: generateFeatureStats(in.Features),
		Predictions:  rows,
	}, nil
}

// Generate rebuilds the report of a stored run.
func (g *Generator) Generate(ctx context.Context, runID string) (*Report, error) {
	if g.featureStore == nil || g.predictionStore == nil {
		return nil, fmt.Errorf("report: stores not configured")
	}

	predictions, err := g.predictionStore.GetByRunID(ctx, runID)
	if err != nil {
		return nil, err
	}
	if len(predictions) == 0 {
		return nil, storage.ErrNotFound
	}

	snapshots, err := g.featureStore.GetByRunID(ctx, runID)
	if err != nil {
		return nil, err
	}

	vectors := make([]*domain.FeatureVector, len(snapshots))
	for i, s := range snapshots {
		v := s.Features
		vectors[i] = &v
	}

	return g.Build(Input{
		RunID:       runID,
		Features:    vectors,
		Predictions: predictions,
	})
}

// generateClasses counts users per class. Both classes are always listed.
func generateClasses(predictions []domain.Prediction) []ClassRow {
	counts := make(map[int]int)
	for _, p := range predictions {
		if p.Label == domain.LabelHigherPerformer {
			counts[domain.LabelHigherPerformer]++
		} else {
			counts[domain.LabelLowerPerformer]++
		}
	}

	total := len(predictions)
	rows := make([]ClassRow, 0, 2)
	for _, label := range []int{domain.LabelHigherPerformer, domain.LabelLowerPerformer} {
		share := 0.0
		if total > 0 {
			share = float64(counts[label]) / float64(total)
		}
		rows = append(rows, ClassRow{
			ClassName: domain.ClassName(label),
			Label:     label,
			Users:     counts[label],
			Share:     share,
		})
	}
	return rows
}

// generateFeatureStats computes mean/min/max of every feature over users.
func generateFeatureStats(vectors []*domain.FeatureVector) []FeatureStatRow {
	stats := make([]FeatureStatRow, len(domain.FeatureNames))
	for i, name := range domain.FeatureNames {
		row := FeatureStatRow{Name: name}
		sum := 0.0
		finite := 0
		for _, v := range vectors {
			x, err := v.Value(name)
			if err != nil {
				continue
			}
			if math.IsInf(x, 0) || math.IsNaN(x) {
				row.NonFinite++
				continue
			}
			if finite == 0 || x < row.Min {
				row.Min = x
			}
			if finite == 0 || x > row.Max {
				row.Max = x
			}
			sum += x
			finite++
		}
		if finite > 0 {
			row.Mean = sum / float64(finite)
		}
		stats[i] = row
	}
	return stats
}
