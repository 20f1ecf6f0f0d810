package storage

import "errors"

// Errors returned by every store implementation. Stores are append-only:
// trades, feature snapshots and predictions are never updated in place.
var (
	// ErrNotFound is returned when a trade or prediction does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when a trade_id or a (run_id, user_id)
	// pair is already stored, or appears twice in one batch.
	ErrDuplicateKey = errors.New("duplicate key: record already stored")

	// ErrInvalidInput is returned when a record lacks its key fields.
	ErrInvalidInput = errors.New("invalid input: missing key field")
)
