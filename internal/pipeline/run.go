package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/domain"
	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/idhash"
	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/observability"
	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/reporting"
	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/storage"
)

// Output file names written by a run with an output directory.
const (
	FeaturesFile    = "features.csv"
	PredictionsFile = "predictions.csv"
	ReportFile      = "PREDICTION_REPORT.md"
)

// Run statuses recorded in metrics.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// RunResult is the outcome of one classification run.
type RunResult struct {
	*Result

	RunID       string
	DataVersion string // short hash of the input batch
	TradeCount  int
	StartedAt   time.Time
	FinishedAt  time.Time
	Report      *reporting.Report // nil unless an output dir is set
	Files       []string          // paths written, in write order
}

// Runner executes classification runs: predict, persist, report.
type Runner struct {
	predictor       *Predictor
	featureStore    storage.FeatureVectorStore // optional
	predictionStore storage.PredictionStore    // optional
	metrics         *observability.Metrics     // optional
	outputDir       string
	clock           func() time.Time
	newID           func() string
	logger          *zap.Logger
}

// NewRunner creates a runner around a predictor.
func NewRunner(predictor *Predictor, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		predictor: predictor,
		clock:     func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
		logger:    logger.Named("runner"),
	}
}

// WithFeatureStore persists feature snapshots of every run.
func (r *Runner) WithFeatureStore(s storage.FeatureVectorStore) *Runner {
	r.featureStore = s
	return r
}

// WithPredictionStore persists predictions of every run.
func (r *Runner) WithPredictionStore(s storage.PredictionStore) *Runner {
	r.predictionStore = s
	return r
}

// WithMetrics records run metrics on m.
func (r *Runner) WithMetrics(m *observability.Metrics) *Runner {
	r.metrics = m
	return r
}

// WithOutputDir writes CSV and Markdown reports of every run into dir.
func (r *Runner) WithOutputDir(dir string) *Runner {
	r.outputDir = dir
	return r
}

// WithClock sets a custom clock function for deterministic output.
func (r *Runner) WithClock(clock func() time.Time) *Runner {
	r.clock = clock
	return r
}

// WithIDGenerator replaces the uuid run id generator.
func (r *Runner) WithIDGenerator(newID func() string) *Runner {
	r.newID = newID
	return r
}

// Run classifies every user of trades. Trades must be in arrival order.
// Stores reject a run whose predictions already exist with storage.ErrDuplicateKey,
// wrapped in *ExternalComponentError.
func (r *Runner) Run(ctx context.Context, trades []*domain.TradeRecord) (*RunResult, error) {
	started := r.clock()
	out := &RunResult{
		RunID:       r.newID(),
		DataVersion: idhash.ShortID(idhash.ComputeBatchID(trades)),
		TradeCount:  len(trades),
		StartedAt:   started,
	}
	logger := r.logger.With(zap.String("run_id", out.RunID), zap.String("data_version", out.DataVersion))
	logger.Info("run started", zap.Int("trades", len(trades)))

	result, err := r.predictor.PredictTrades(trades)
	if err != nil {
		return nil, r.fail(logger, started, err)
	}

	createdAt := started.UnixMilli()
	for i := range result.Predictions {
		result.Predictions[i].RunID = out.RunID
		result.Predictions[i].CreatedAt = createdAt
	}
	out.Result = result

	if err := r.persist(ctx, out.RunID, createdAt, result); err != nil {
		return nil, r.fail(logger, started, &ExternalComponentError{Stage: StagePersist, Err: err})
	}

	if r.outputDir != "" {
		if err := r.writeReports(out); err != nil {
			return nil, r.fail(logger, started, &ExternalComponentError{Stage: StageReport, Err: err})
		}
	}

	out.FinishedAt = r.clock()
	r.recordSuccess(out)
	logger.Info("run complete",
		zap.Int("users", len(result.Predictions)),
		zap.Duration("elapsed", out.FinishedAt.Sub(started)),
	)
	return out, nil
}

// RunFromStore loads trade history from store and runs it. With no userIDs
// every stored trade is used in sequence order; otherwise users are loaded in
// the given order, each in sequence order.
func (r *Runner) RunFromStore(ctx context.Context, store storage.TradeRecordStore, userIDs []string) (*RunResult, error) {
	var trades []*domain.TradeRecord
	if len(userIDs) == 0 {
		all, err := store.GetAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("load trades: %w", err)
		}
		trades = all
	} else {
		for _, userID := range userIDs {
			userTrades, err := store.GetByUserID(ctx, userID)
			if err != nil {
				return nil, fmt.Errorf("load trades of %s: %w", userID, err)
			}
			trades = append(trades, userTrades...)
		}
	}
	return r.Run(ctx, trades)
}

func (r *Runner) persist(ctx context.Context, runID string, createdAt int64, result *Result) error {
	if r.featureStore != nil {
		start := time.Now()
		err := r.featureStore.InsertBulk(ctx, result.Features.Snapshots(runID, createdAt))
		r.recordDB("feature_vectors", "insert_bulk", start, err)
		if err != nil {
			return fmt.Errorf("store feature snapshots: %w", err)
		}
	}
	if r.predictionStore != nil {
		start := time.Now()
		err := r.predictionStore.InsertBulk(ctx, result.Predictions)
		r.recordDB("predictions", "insert_bulk", start, err)
		if err != nil {
			return fmt.Errorf("store predictions: %w", err)
		}
	}
	return nil
}

func (r *Runner) writeReports(out *RunResult) error {
	if err := os.MkdirAll(r.outputDir, 0755); err != nil {
		return err
	}

	report, err := reporting.NewGenerator(nil, nil).WithClock(r.clock).Build(reporting.Input{
		RunID:       out.RunID,
		DataVersion: out.DataVersion,
		TotalTrades: out.TradeCount,
		Features:    out.Features.Rows,
		Predictions: out.Predictions,
	})
	if err != nil {
		return err
	}
	out.Report = report

	files := []struct {
		name    string
		content string
	}{
		{FeaturesFile, reporting.RenderFeaturesCSV(out.Features.Rows)},
		{PredictionsFile, reporting.RenderPredictionsCSV(out.Predictions)},
		{ReportFile, reporting.RenderMarkdown(report)},
	}
	for _, f := range files {
		path := filepath.Join(r.outputDir, f.name)
		if err := os.WriteFile(path, []byte(f.content), 0644); err != nil {
			return err
		}
		out.Files = append(out.Files, path)
	}
	return nil
}

func (r *Runner) fail(logger *zap.Logger, started time.Time, err error) error {
	stage := FailedStage(err)
	logger.Error("run failed", zap.String("stage", stage), zap.Error(err))
	if r.metrics != nil {
		r.metrics.RecordPipelineFailure(stage)
		r.metrics.RecordPipelineRun(StatusFailure, r.clock().Sub(started).Seconds())
	}
	return err
}

func (r *Runner) recordSuccess(out *RunResult) {
	if r.metrics == nil {
		return
	}
	classes := make([]string, len(out.Predictions))
	for i, p := range out.Predictions {
		classes[i] = p.ClassName
	}
	r.metrics.RecordPredictions(out.TradeCount, classes)
	r.metrics.RecordPipelineRun(StatusSuccess, out.FinishedAt.Sub(out.StartedAt).Seconds())
	r.metrics.LastSuccessfulRun.Set(float64(out.FinishedAt.Unix()))
}

func (r *Runner) recordDB(store, operation string, start time.Time, err error) {
	if r.metrics != nil {
		r.metrics.RecordDBQuery(store, operation, time.Since(start).Seconds(), err)
	}
}
