package clickhouse

import (
	"context"
	"fmt"

	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/domain"
	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/storage"
)

// FeatureVectorStore implements storage.FeatureVectorStore using ClickHouse.
type FeatureVectorStore struct {
	conn *Conn
}

// NewFeatureVectorStore creates a new FeatureVectorStore.
func NewFeatureVectorStore(conn *Conn) *FeatureVectorStore {
	return &FeatureVectorStore{conn: conn}
}

// Compile-time interface check.
var _ storage.FeatureVectorStore = (*FeatureVectorStore)(nil)

const selectFeatureVectorColumns = `
	SELECT
		run_id, position, computed_at, user_id,
		num_trades, total_profit_x, win_rate, avg_profit_rate, std_profit_rate,
		total_commission, total_lot_size, avg_lot_size, avg_duration_hr,
		profit_factor, max_win_streak, max_loss_streak, risk_reward_ratio, inv_max_loss_streak
	FROM feature_vectors
`

// InsertBulk adds multiple snapshots. Fails entire batch on duplicate (run_id, user_id).
// MergeTree does not enforce uniqueness, so duplicates are checked before insert.
func (s *FeatureVectorStore) InsertBulk(ctx context.Context, snapshots []*domain.FeatureSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	type key struct {
		runID  string
		userID string
	}
	seen := make(map[key]struct{}, len(snapshots))
	runIDs := make(map[string]struct{})
	for _, snap := range snapshots {
		if snap == nil || snap.RunID == "" {
			return storage.ErrInvalidInput
		}
		k := key{snap.RunID, snap.Features.UserID}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
		runIDs[snap.RunID] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	for runID := range runIDs {
		existing, err := s.userIDsForRun(ctx, runID)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		for _, userID := range existing {
			if _, clash := seen[key{runID, userID}]; clash {
				return storage.ErrDuplicateKey
			}
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO feature_vectors (
			run_id, position, computed_at, user_id,
			num_trades, total_profit_x, win_rate, avg_profit_rate, std_profit_rate,
			total_commission, total_lot_size, avg_lot_size, avg_duration_hr,
			profit_factor, max_win_streak, max_loss_streak, risk_reward_ratio, inv_max_loss_streak
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, snap := range snapshots {
		f := snap.Features
		err = batch.Append(
			snap.RunID, uint32(snap.Position), snap.ComputedAt, f.UserID,
			uint32(f.NumTrades), f.TotalProfit, f.WinRate, f.AvgProfitRate, f.StdProfitRate,
			f.TotalCommission, f.TotalLotSize, f.AvgLotSize, f.AvgDurationHr,
			f.ProfitFactor, uint32(f.MaxWinStreak), uint32(f.MaxLossStreak), f.RiskRewardRatio, int32(f.InvMaxLossStreak),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByRunID retrieves all snapshots of a run, ordered by position ASC.
func (s *FeatureVectorStore) GetByRunID(ctx context.Context, runID string) ([]*domain.FeatureSnapshot, error) {
	query := selectFeatureVectorColumns + `
		WHERE run_id = ?
		ORDER BY position ASC
	`

	rows, err := s.conn.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query by run id: %w", err)
	}
	defer rows.Close()

	return scanFeatureVectors(rows)
}

// GetByUserID retrieves all snapshots of a user, ordered by computed_at ASC.
func (s *FeatureVectorStore) GetByUserID(ctx context.Context, userID string) ([]*domain.FeatureSnapshot, error) {
	query := selectFeatureVectorColumns + `
		WHERE user_id = ?
		ORDER BY computed_at ASC, run_id ASC
	`

	rows, err := s.conn.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query by user id: %w", err)
	}
	defer rows.Close()

	return scanFeatureVectors(rows)
}

// userIDsForRun returns the users already stored under runID.
func (s *FeatureVectorStore) userIDsForRun(ctx context.Context, runID string) ([]string, error) {
	rows, err := s.conn.Query(ctx, `SELECT user_id FROM feature_vectors WHERE run_id = ?`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// scanFeatureVectors scans multiple rows.
func scanFeatureVectors(rows chRows) ([]*domain.FeatureSnapshot, error) {
	var snapshots []*domain.FeatureSnapshot

	for rows.Next() {
		var snap domain.FeatureSnapshot
		var position, numTrades, maxWin, maxLoss uint32
		var invMaxLoss int32
		f := &snap.Features

		err := rows.Scan(
			&snap.RunID, &position, &snap.ComputedAt, &f.UserID,
			&numTrades, &f.TotalProfit, &f.WinRate, &f.AvgProfitRate, &f.StdProfitRate,
			&f.TotalCommission, &f.TotalLotSize, &f.AvgLotSize, &f.AvgDurationHr,
			&f.ProfitFactor, &maxWin, &maxLoss, &f.RiskRewardRatio, &invMaxLoss,
		)
		if err != nil {
			return nil, fmt.Errorf("scan feature vector row: %w", err)
		}

		snap.Position = int(position)
		f.NumTrades = int(numTrades)
		f.MaxWinStreak = int(maxWin)
		f.MaxLossStreak = int(maxLoss)
		f.InvMaxLossStreak = int(invMaxLoss)

		snapshots = append(snapshots, &snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feature vector rows: %w", err)
	}

	return snapshots, nil
}
