package postgres

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// setupTestDB starts PostgreSQL with the repository migrations as init scripts.
// Skipped in -short mode.
func setupTestDB(t *testing.T) (*Pool, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("trades"),
		postgres.WithUsername("classifier"),
		postgres.WithPassword("classifier"),
		postgres.WithInitScripts(migrationFiles(t)...),
		postgres.BasicWaitStrategies(),
	)
	require.NoError(t, err, "start postgres container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := NewPool(ctx, dsn)
	require.NoError(t, err)

	return pool, func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	}
}

// migrationFiles lists internal/storage/migrations/postgres/*.sql in apply order.
// Importing the migrations package here would be an import cycle.
func migrationFiles(t *testing.T) []string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)

	// tests run in internal/storage/postgres
	dir := filepath.Join(wd, "..", "migrations", "postgres")
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, files, "no migrations in %s", dir)

	sort.Strings(files)
	return files
}
