// Package testutil provides common test utilities for the ERP store.
// It contains helpers for opening throwaway databases, mocking the driver
// with sqlmock and scoping a test case to a rolled-back transaction.
package testutil

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/store/internal/infrastructure/config"
	"github.com/erp/store/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// MockDB wraps a store connection whose driver is replaced by sqlmock.
type MockDB struct {
	*persistence.Database
	Mock  sqlmock.Sqlmock
	SqlDB *sql.DB
}

// NewMockDB creates a postgres-dialect store backed by sqlmock. The
// connection is closed when the test ends.
func NewMockDB(t *testing.T) *MockDB {
	t.Helper()

	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err, "Failed to create sqlmock")

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	mock.ExpectPing()
	db, err := persistence.OpenWithDialector(context.Background(), dialector, persistence.DialectPostgres,
		config.DatabaseConfig{MaxOpenConns: 1, MaxIdleConns: 1}, persistence.Options{Logger: zap.NewNop()})
	require.NoError(t, err, "Failed to open store over sqlmock")

	t.Cleanup(func() { _ = mockDB.Close() })

	return &MockDB{
		Database: db,
		Mock:     mock,
		SqlDB:    mockDB,
	}
}

// ExpectationsWereMet verifies that all expectations were met.
func (m *MockDB) ExpectationsWereMet(t *testing.T) {
	t.Helper()
	require.NoError(t, m.Mock.ExpectationsWereMet(), "Unmet database expectations")
}

// Option adjusts the options of a test database
type Option func(*persistence.Options)

// WithClock stamps created/updated columns from clock instead of the wall clock
func WithClock(clock *FakeClock) Option {
	return func(o *persistence.Options) { o.NowFunc = clock.Now }
}

// WithPlugins registers GORM plugins on the test database
func WithPlugins(plugins ...gorm.Plugin) Option {
	return func(o *persistence.Options) { o.Plugins = append(o.Plugins, plugins...) }
}

// NewSQLiteDB opens an in-memory sqlite store with foreign keys enforced and
// every table created. It is closed when the test ends.
func NewSQLiteDB(t *testing.T, opts ...Option) *persistence.Database {
	t.Helper()

	options := persistence.Options{Logger: zaptest.NewLogger(t, zaptest.Level(zap.WarnLevel))}
	for _, opt := range opts {
		opt(&options)
	}

	db, err := persistence.Open(context.Background(), config.DatabaseConfig{URL: "sqlite::memory:"}, options)
	require.NoError(t, err, "Failed to open sqlite store")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, persistence.AutoMigrate(context.Background(), db.DB), "Failed to create tables")
	return db
}

// WithRollback begins a transaction and returns a context carrying it.
// The transaction is rolled back unconditionally when the test ends, so
// repositories used with the returned context never leak rows between
// cases. On a single-connection database every query made while the
// transaction is open must use this context.
func WithRollback(t *testing.T, db *persistence.Database) context.Context {
	t.Helper()

	tx := db.DB.Begin()
	require.NoError(t, tx.Error, "Failed to begin transaction")
	t.Cleanup(func() { tx.Rollback() })

	return persistence.WithTx(context.Background(), tx)
}

// FakeClock is a manually advanced clock safe for concurrent use.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock returns a clock stopped at start, converted to UTC
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start.UTC()}
}

// Now returns the current fake time
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// NewTestUUID generates a deterministic UUID for testing.
// Uses the provided seed string to create a reproducible UUID.
func NewTestUUID(seed string) uuid.UUID {
	namespace := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	return uuid.NewSHA1(namespace, []byte(seed))
}

// PublicID returns a reproducible public identifier such as "INV-<uuid>"
// for the given prefix and seed
func PublicID(prefix, seed string) string {
	return prefix + "-" + NewTestUUID(prefix+"/"+seed).String()
}
