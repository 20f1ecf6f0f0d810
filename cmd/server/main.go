// Package main runs the prediction HTTP service:
//   - POST /v1/predict                 score a raw trade payload
//   - GET  /v1/predictions/{user_id}   latest prediction of a user
//   - GET  /v1/runs/{run_id}/report    Markdown report of a stored run
//   - GET  /health, /metrics
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/app"
	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/config"
	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/logger"
	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/observability"
	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/server"
)

func main() {
	// Load .env file if exists
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to YAML config (defaults and TPC_* env vars when empty)")
	addr := flag.String("addr", "", "Listen address, overrides server.addr")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	lg, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Dir: cfg.Log.Dir})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, lg.Logger); err != nil {
		lg.Error("server stopped", zap.Error(err))
		lg.Close()
		os.Exit(1)
	}
	lg.Info("shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
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

	srv := server.New(runner, stores.Trades, stores.Features, stores.Predictions, observability.DefaultMetrics, log)
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", cfg.Server.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
