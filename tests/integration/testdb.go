// Package integration runs the store against a real PostgreSQL database
// started with testcontainers and migrated with the shipped schema.
package integration

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/erp/store/internal/infrastructure/config"
	"github.com/erp/store/internal/infrastructure/migration"
	"github.com/erp/store/internal/infrastructure/persistence"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

var (
	// Shared container for all tests in the package
	sharedContainer    testcontainers.Container
	sharedContainerMu  sync.Mutex
	sharedContainerURL string
)

// TestDB is a migrated store connection backed by a PostgreSQL container
type TestDB struct {
	*persistence.Database
	URL string
	t   *testing.T
}

// skipUnlessIntegration skips in -short mode and when no container
// provider is reachable
func skipUnlessIntegration(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
}

func startPostgres(ctx context.Context, database string) (testcontainers.Container, string, error) {
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase(database),
		tcpostgres.WithUsername("erp"),
		tcpostgres.WithPassword("erp"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		return nil, "", err
	}

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, "", err
	}
	return container, url, nil
}

// NewTestDB starts a dedicated PostgreSQL container, applies the embedded
// migrations and opens the store on it. The container is terminated when
// the test ends.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	skipUnlessIntegration(t)

	ctx := context.Background()
	container, url, err := startPostgres(ctx, "erp_test")
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: Failed to terminate container: %v", err)
		}
	})

	runMigrations(t, url)
	return openTestDB(t, url)
}

// NewSharedTestDB returns a store on a container shared by the whole
// package. Tests using it should scope their writes with
// testutil.WithRollback.
func NewSharedTestDB(t *testing.T) *TestDB {
	t.Helper()
	skipUnlessIntegration(t)

	sharedContainerMu.Lock()
	defer sharedContainerMu.Unlock()

	if sharedContainer == nil {
		container, url, err := startPostgres(context.Background(), "erp_shared_test")
		require.NoError(t, err, "Failed to start shared PostgreSQL container")
		sharedContainer = container
		sharedContainerURL = url
		runMigrations(t, url)
	}

	return openTestDB(t, sharedContainerURL)
}

func openTestDB(t *testing.T, url string) *TestDB {
	t.Helper()

	log := zap.NewNop()
	sqlLevel := "silent"
	if os.Getenv("TEST_DB_DEBUG") != "" {
		log = zaptest.NewLogger(t)
		sqlLevel = "info"
	}

	db, err := persistence.Open(context.Background(), config.DatabaseConfig{
		URL:          url,
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}, persistence.Options{Logger: log, SQLLogLevel: sqlLevel})
	require.NoError(t, err, "Failed to connect to database")
	t.Cleanup(func() { _ = db.Close() })

	return &TestDB{Database: db, URL: url, t: t}
}

// runMigrations applies the embedded schema through the migration package
func runMigrations(t *testing.T, url string) {
	t.Helper()

	sqlDB, err := sql.Open("postgres", url)
	require.NoError(t, err, "Failed to open migration connection")
	defer sqlDB.Close()

	m, err := migration.NewEmbedded(sqlDB, zap.NewNop())
	require.NoError(t, err, "Failed to create migrator")
	require.NoError(t, m.Up(), "Failed to run migrations")
}

// CleanTables truncates every application table
func (tdb *TestDB) CleanTables() {
	tdb.t.Helper()

	var tables []string
	err := tdb.DB.Raw(`
		SELECT tablename FROM pg_tables
		WHERE schemaname = 'public'
		AND tablename != 'schema_migrations'
	`).Scan(&tables).Error
	require.NoError(tdb.t, err, "Failed to get table names")

	for _, table := range tables {
		if err := tdb.DB.Exec("TRUNCATE TABLE " + table + " RESTART IDENTITY CASCADE").Error; err != nil {
			tdb.t.Logf("Warning: Failed to truncate table %s: %v", table, err)
		}
	}
}

// CleanupSharedContainer terminates the shared container. Call it from
// TestMain after m.Run.
func CleanupSharedContainer() {
	sharedContainerMu.Lock()
	defer sharedContainerMu.Unlock()

	if sharedContainer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = sharedContainer.Terminate(ctx)
		sharedContainer = nil
		sharedContainerURL = ""
	}
}
