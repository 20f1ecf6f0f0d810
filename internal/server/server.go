// Package server exposes the classification runner over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/domain"
	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/features"
	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/observability"
	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/payload"
	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/pipeline"
	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/reporting"
	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/storage"
)

// RunIDHeader carries the run id of a prediction response.
const RunIDHeader = "X-Run-ID"

// MaxBodyBytes limits the size of a prediction request.
const MaxBodyBytes = 32 << 20

// Server handles prediction requests. Runs are serialized because the
// loaded model handle is shared.
type Server struct {
	runner      *pipeline.Runner
	trades      storage.TradeRecordStore // optional, ingested before each run
	predictions storage.PredictionStore
	reports     *reporting.Generator
	metrics     *observability.Metrics
	logger      *zap.Logger
	started     time.Time

	mu   sync.Mutex
	runs int
}

// New creates a server. trades may be nil to skip trade ingestion.
func New(
	runner *pipeline.Runner,
	trades storage.TradeRecordStore,
	featureStore storage.FeatureVectorStore,
	predictionStore storage.PredictionStore,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		runner:      runner,
		trades:      trades,
		predictions: predictionStore,
		reports:     reporting.NewGenerator(featureStore, predictionStore),
		metrics:     metrics,
		logger:      logger.Named("server"),
		started:     time.Now().UTC(),
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.instrument("/health", s.handleHealth))
	mux.HandleFunc("POST /v1/predict", s.instrument("/v1/predict", s.handlePredict))
	mux.HandleFunc("GET /v1/predictions/{user_id}", s.instrument("/v1/predictions", s.handleLatestPrediction))
	mux.HandleFunc("GET /v1/runs/{run_id}/report", s.instrument("/v1/runs/report", s.handleRunReport))
	mux.Handle("GET /metrics", observability.Handler())
	return mux
}

type errorResponse struct {
	Error  string   `json:"error"`
	Stage  string   `json:"stage,omitempty"`
	Fields []string `json:"fields,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	runs := s.runs
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(s.started).Seconds()),
		"runs":           runs,
	})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	raw, err := payload.ReadTrades(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	trades, err := features.Decode(raw)
	if err != nil {
		s.logger.Warn("trade batch rejected",
			zap.String("stage", pipeline.StageAggregate),
			zap.String("remote_addr", r.RemoteAddr),
			zap.Int("trades", len(raw)),
			zap.Error(err),
		)
		s.writeRunError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := r.Context()
	if s.trades != nil && len(trades) > 0 {
		if _, err := pipeline.Ingest(ctx, s.trades, trades); err != nil && !errors.Is(err, pipeline.ErrBatchExists) {
			s.writeRunError(w, &pipeline.ExternalComponentError{Stage: pipeline.StagePersist, Err: err})
			return
		}
	}

	out, err := s.runner.Run(ctx, trades)
	if err != nil {
		s.writeRunError(w, err)
		return
	}
	s.runs++

	w.Header().Set(RunIDHeader, out.RunID)
	writeJSON(w, http.StatusOK, payload.ToOutput(out.Predictions))
}

func (s *Server) handleLatestPrediction(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")

	p, err := s.predictions.GetLatestByUserID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "no prediction for user " + userID})
			return
		}
		s.logger.Error("prediction lookup failed", zap.String("user_id", userID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	w.Header().Set(RunIDHeader, p.RunID)
	writeJSON(w, http.StatusOK, payload.ToOutput([]domain.Prediction{*p})[0])
}

func (s *Server) handleRunReport(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("run_id")

	report, err := s.reports.Generate(r.Context(), runID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown run " + runID})
			return
		}
		s.logger.Error("report generation failed", zap.String("run_id", runID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(reporting.RenderMarkdown(report)))
}

// writeRunError maps schema errors to 422 and everything else to 5xx.
func (s *Server) writeRunError(w http.ResponseWriter, err error) {
	var schemaErr *features.SchemaError
	if errors.As(err, &schemaErr) {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:  err.Error(),
			Stage:  pipeline.StageAggregate,
			Fields: schemaErr.Fields(),
		})
		return
	}

	status := http.StatusInternalServerError
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Stage: pipeline.FailedStage(err)})
}

func (s *Server) instrument(path string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r)
		if s.metrics != nil {
			s.metrics.RecordHTTPRequest(path, strconv.Itoa(rec.status), time.Since(start).Seconds())
		}
		s.logger.Debug("request served",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
