package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/domain"
	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/storage"
)

// TradeRecordStore implements storage.TradeRecordStore using PostgreSQL.
type TradeRecordStore struct {
	pool *Pool
}

// NewTradeRecordStore creates a new TradeRecordStore.
func NewTradeRecordStore(pool *Pool) *TradeRecordStore {
	return &TradeRecordStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeRecordStore = (*TradeRecordStore)(nil)

const insertTradeRecordQuery = `
	INSERT INTO trade_records (
		trade_id, user_id, seq,
		profit, profit_rate, commission, lot_size, duration_hr
	) VALUES (
		$1, $2, $3,
		$4, $5, $6, $7, $8
	)
`

const selectTradeRecordColumns = `
	SELECT
		trade_id, user_id, seq,
		profit, profit_rate, commission, lot_size, duration_hr
	FROM trade_records
`

// Insert adds a new trade. Returns ErrDuplicateKey if trade_id exists.
func (s *TradeRecordStore) Insert(ctx context.Context, t *domain.TradeRecord) error {
	if t == nil || t.TradeID == "" || t.UserID == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, insertTradeRecordQuery,
		t.TradeID, t.UserID, t.Seq,
		t.Profit, t.ProfitRate, t.Commission, t.LotSize, t.DurationHr,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert trade record: %w", err)
	}
	return nil
}

// InsertBulk adds multiple trades atomically. Fails entire batch on any duplicate.
func (s *TradeRecordStore) InsertBulk(ctx context.Context, trades []*domain.TradeRecord) error {
	if len(trades) == 0 {
		return nil
	}
	for _, t := range trades {
		if t == nil || t.TradeID == "" || t.UserID == "" {
			return storage.ErrInvalidInput
		}
	}

	batch := &pgx.Batch{}
	for _, t := range trades {
		batch.Queue(insertTradeRecordQuery,
			t.TradeID, t.UserID, t.Seq,
			t.Profit, t.ProfitRate, t.Commission, t.LotSize, t.DurationHr,
		)
	}

	return s.pool.withTx(ctx, func(tx pgx.Tx) error {
		results := tx.SendBatch(ctx, batch)
		defer results.Close()

		for range trades {
			if _, err := results.Exec(); err != nil {
				if isDuplicateKeyError(err) {
					return storage.ErrDuplicateKey
				}
				return fmt.Errorf("insert trade record in bulk: %w", err)
			}
		}
		if err := results.Close(); err != nil {
			return fmt.Errorf("close batch: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
func (s *TradeRecordStore) GetByID(ctx context.Context, tradeID string) (*domain.TradeRecord, error) {
	query := selectTradeRecordColumns + `WHERE trade_id = $1`

	row := s.pool.QueryRow(ctx, query, tradeID)
	t, err := scanTradeRecord(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get trade record by id: %w", err)
	}
	return t, nil
}

// GetByUserID retrieves all trades of a user, ordered by seq ASC.
func (s *TradeRecordStore) GetByUserID(ctx context.Context, userID string) ([]*domain.TradeRecord, error) {
	query := selectTradeRecordColumns + `
		WHERE user_id = $1
		ORDER BY seq ASC, trade_id ASC
	`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get trade records by user id: %w", err)
	}
	defer rows.Close()

	return scanTradeRecords(rows)
}

// GetAll retrieves all trades, ordered by seq ASC.
func (s *TradeRecordStore) GetAll(ctx context.Context) ([]*domain.TradeRecord, error) {
	query := selectTradeRecordColumns + `ORDER BY seq ASC, trade_id ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all trade records: %w", err)
	}
	defer rows.Close()

	return scanTradeRecords(rows)
}

// MaxSeq returns the highest stored seq, or 0 for an empty store.
func (s *TradeRecordStore) MaxSeq(ctx context.Context) (int64, error) {
	var maxSeq int64
	err := s.pool.QueryRow(ctx, `SELECT COALESCE(MAX(seq), 0) FROM trade_records`).Scan(&maxSeq)
	if err != nil {
		return 0, fmt.Errorf("get max trade seq: %w", err)
	}
	return maxSeq, nil
}

// scanTradeRecord scans a single row into a TradeRecord.
func scanTradeRecord(row pgx.Row) (*domain.TradeRecord, error) {
	var t domain.TradeRecord

	err := row.Scan(
		&t.TradeID, &t.UserID, &t.Seq,
		&t.Profit, &t.ProfitRate, &t.Commission, &t.LotSize, &t.DurationHr,
	)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// scanTradeRecords scans multiple rows into a slice of TradeRecord.
func scanTradeRecords(rows pgx.Rows) ([]*domain.TradeRecord, error) {
	var trades []*domain.TradeRecord

	for rows.Next() {
		t, err := scanTradeRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trade record row: %w", err)
		}
		trades = append(trades, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade record rows: %w", err)
	}

	return trades, nil
}
