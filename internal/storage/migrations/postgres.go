package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	"go.uber.org/zap"

	"github.com/Muhammed-Fais/Muhammed-Fais-quant-trader-performance-analysis-muhammed-fais/internal/storage/postgres"
)

// RunPostgresMigrations applies all embedded SQL files in lexical order and
// returns the names of the files applied. Migrations are idempotent.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool, logger *zap.Logger) ([]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	files, err := sqlFiles(PostgresFS, "postgres")
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, file := range files {
		data, err := fs.ReadFile(PostgresFS, file)
		if err != nil {
			return applied, fmt.Errorf("read migration %s: %w", file, err)
		}
		if strings.TrimSpace(string(data)) == "" {
			continue
		}
		// Postgres accepts multiple statements in one simple-protocol Exec.
		if _, err := pool.Exec(ctx, string(data)); err != nil {
			return applied, fmt.Errorf("apply migration %s: %w", file, err)
		}
		logger.Debug("applied migration", zap.String("database", "postgres"), zap.String("file", file))
		applied = append(applied, file)
	}

	return applied, nil
}
