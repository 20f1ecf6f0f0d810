// Package main is the batch entry point: it reads a raw trade payload,
// labels every trader and prints the predictions.
//
// Usage:
//
//	go run ./cmd/predict --config config/config.yaml --input data/sample_raw_trades.json
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/app"
	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/config"
	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/features"
	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/logger"
	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/observability"
	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/payload"
	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/pipeline"
)

func main() {
	// Load .env file if exists
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to YAML config (defaults and TPC_* env vars when empty)")
	inputPath := flag.String("input", "", "Raw trade payload, overrides input.path")
	outputDir := flag.String("output-dir", "", "Report directory, overrides output.dir")
	predictionsPath := flag.String("predictions", "", "Write predictions JSON here instead of stdout")
	fromStore := flag.Bool("from-store", false, "Score stored trade history instead of the input payload")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *inputPath != "" {
		cfg.Input.Path = *inputPath
	}
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}
	if *predictionsPath != "" {
		cfg.Output.PredictionsPath = *predictionsPath
	}

	lg, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Dir: cfg.Log.Dir})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, *fromStore, lg.Logger)
	stop()

	if err != nil {
		lg.Error("prediction failed", zap.String("stage", pipeline.FailedStage(err)), zap.Error(err))
		_ = lg.Close()
		os.Exit(1)
	}
	_ = lg.Close()
}

func run(ctx context.Context, cfg *config.Config, fromStore bool, log *zap.Logger) error {
	stores, cleanup, err := app.OpenStores(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open stores: %w", err)
	}
	defer cleanup()

	runner, err := app.NewRunner(cfg, stores, observability.DefaultMetrics, log)
	if err != nil {
		return err
	}
	runner.WithOutputDir(cfg.Output.Dir)

	var out *pipeline.RunResult
	if fromStore {
		out, err = runner.RunFromStore(ctx, stores.Trades, flag.Args())
	} else {
		out, err = runFromPayload(ctx, runner, stores, cfg.Input.Path, log)
	}
	if err != nil {
		return err
	}

	log.Info("model prediction",
		zap.String("run_id", out.RunID),
		zap.Int("users", len(out.Predictions)),
		zap.Strings("files", out.Files),
	)

	if cfg.Output.PredictionsPath != "" {
		return payload.WritePredictionsFile(cfg.Output.PredictionsPath, out.Predictions)
	}
	return payload.WritePredictions(os.Stdout, out.Predictions)
}

func runFromPayload(ctx context.Context, runner *pipeline.Runner, stores *app.Stores, path string, log *zap.Logger) (*pipeline.RunResult, error) {
	raw, err := payload.ReadTradesFile(path)
	if err != nil {
		return nil, err
	}
	log.Info("trades loaded", zap.String("path", path), zap.Int("trades", len(raw)))

	trades, err := features.Decode(raw)
	if err != nil {
		return nil, err
	}

	batchID, err := pipeline.Ingest(ctx, stores.Trades, trades)
	switch {
	case errors.Is(err, pipeline.ErrBatchExists):
		log.Info("batch already stored", zap.String("batch_id", batchID))
	case err != nil:
		return nil, err
	}

	return runner.Run(ctx, trades)
}
