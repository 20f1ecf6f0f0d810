// Package payload reads raw trade batches and writes prediction lists as JSON.
package payload

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"

	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/domain"
)

// PredictionOutput is the wire form of one user's prediction.
type PredictionOutput struct {
	UserID                    string `json:"user_id"`
	PredictedPerformanceClass string `json:"predicted_performance_class"`
	PredictedLabel            int    `json:"predicted_label"`
}

// ReadTrades decodes a JSON array of trade objects. Numbers are kept as
// json.Number so that large user ids survive unchanged.
func ReadTrades(r io.Reader) ([]domain.RawTrade, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw []domain.RawTrade
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode trades: %w", err)
	}
	return raw, nil
}

// ReadTradesFile reads a trade batch from path.
func ReadTradesFile(path string) ([]domain.RawTrade, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read trades: %w", err)
	}
	return ReadTrades(bytes.NewReader(data))
}

// ToOutput converts predictions to their wire form, keeping their order.
func ToOutput(predictions []domain.Prediction) []PredictionOutput {
	out := make([]PredictionOutput, len(predictions))
	for i, p := range predictions {
		out[i] = PredictionOutput{
			UserID:                    p.UserID,
			PredictedPerformanceClass: p.ClassName,
			PredictedLabel:            p.Label,
		}
	}
	return out
}

// WritePredictions encodes predictions as an indented JSON array.
func WritePredictions(w io.Writer, predictions []domain.Prediction) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ToOutput(predictions)); err != nil {
		return fmt.Errorf("encode predictions: %w", err)
	}
	return nil
}

// WritePredictionsFile writes predictions to path.
func WritePredictionsFile(path string, predictions []domain.Prediction) error {
	var buf bytes.Buffer
	if err := WritePredictions(&buf, predictions); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write predictions: %w", err)
	}
	return nil
}
