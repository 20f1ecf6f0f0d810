package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/domain"
	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/storage"
)

// PredictionStore implements storage.PredictionStore using PostgreSQL.
type PredictionStore struct {
	pool *Pool
}

// NewPredictionStore creates a new PredictionStore.
func NewPredictionStore(pool *Pool) *PredictionStore {
	return &PredictionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PredictionStore = (*PredictionStore)(nil)

// InsertBulk adds multiple predictions atomically. Fails entire batch on any duplicate.
// Rows are written with COPY inside a transaction.
func (s *PredictionStore) InsertBulk(ctx context.Context, predictions []domain.Prediction) error {
	if len(predictions) == 0 {
		return nil
	}

	rows := make([][]any, len(predictions))
	for i, p := range predictions {
		if p.RunID == "" || p.UserID == "" {
			return storage.ErrInvalidInput
		}
		rows[i] = []any{p.RunID, p.UserID, int32(p.Position), int32(p.Label), p.ClassName, p.CreatedAt}
	}

	return s.pool.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"predictions"},
			[]string{"run_id", "user_id", "position", "label", "class_name", "created_at"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("copy predictions: %w", err)
		}
		return nil
	})
}

// GetByRunID retrieves all predictions of a run, ordered by position ASC.
func (s *PredictionStore) GetByRunID(ctx context.Context, runID string) ([]domain.Prediction, error) {
	query := `
		SELECT run_id, position, user_id, label, class_name, created_at
		FROM predictions
		WHERE run_id = $1
		ORDER BY position ASC
	`

	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("get predictions by run id: %w", err)
	}
	defer rows.Close()

	var result []domain.Prediction
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan prediction row: %w", err)
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prediction rows: %w", err)
	}
	return result, nil
}

// GetLatestByUserID retrieves the most recent prediction for a user.
func (s *PredictionStore) GetLatestByUserID(ctx context.Context, userID string) (*domain.Prediction, error) {
	query := `
		SELECT run_id, position, user_id, label, class_name, created_at
		FROM predictions
		WHERE user_id = $1
		ORDER BY created_at DESC, run_id DESC
		LIMIT 1
	`

	p, err := scanPrediction(s.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get latest prediction: %w", err)
	}
	return p, nil
}

func scanPrediction(row pgx.Row) (*domain.Prediction, error) {
	var p domain.Prediction
	var position, label int32

	if err := row.Scan(&p.RunID, &position, &p.UserID, &label, &p.ClassName, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.Position = int(position)
	p.Label = int(label)
	return &p, nil
}
