package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/store/internal/domain/partner"
	"github.com/erp/store/internal/domain/shared"
	"github.com/erp/store/internal/infrastructure/config"
	"github.com/erp/store/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockDatabase creates a Database instance with a mocked SQL connection
func newMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	mock.ExpectPing()
	db, err := OpenWithDialector(context.Background(), mockDialector(mockDB), DialectPostgres,
		config.DatabaseConfig{MaxOpenConns: 5, MaxIdleConns: 2}, Options{})
	require.NoError(t, err)

	return db, mock, mockDB
}

func mockDialector(mockDB *sql.DB) gorm.Dialector {
	return postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
}

func TestOpenWithDialector(t *testing.T) {
	t.Run("ping failure is a connection error", func(t *testing.T) {
		mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer mockDB.Close()

		mock.ExpectPing().WillReturnError(errors.New("dial tcp 10.0.0.1:5432: connect: connection refused"))

		db, err := OpenWithDialector(context.Background(), mockDialector(mockDB), DialectPostgres,
			config.DatabaseConfig{}, Options{})
		assert.Nil(t, db)
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrConnection)
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("applies pool settings", func(t *testing.T) {
		db, _, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		stats, err := db.Stats()
		require.NoError(t, err)
		assert.Equal(t, 5, stats.MaxOpenConnections)
		assert.Equal(t, DialectPostgres, db.Dialect)
	})

	t.Run("zero pool settings keep the idle connection", func(t *testing.T) {
		mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer mockDB.Close()
		mock.ExpectPing()
		mock.ExpectPing()

		db, err := OpenWithDialector(context.Background(), mockDialector(mockDB), DialectPostgres,
			config.DatabaseConfig{}, Options{})
		require.NoError(t, err)

		require.NoError(t, db.Ping(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("timestamps are stamped in UTC", func(t *testing.T) {
		mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer mockDB.Close()
		mock.ExpectPing()

		local := time.FixedZone("UTC+2", 2*60*60)
		db, err := OpenWithDialector(context.Background(), mockDialector(mockDB), DialectPostgres,
			config.DatabaseConfig{}, Options{NowFunc: func() time.Time {
				return time.Date(2024, 1, 1, 12, 0, 0, 123456789, local)
			}})
		require.NoError(t, err)

		now := db.DB.NowFunc()
		assert.Equal(t, time.UTC, now.Location())
		assert.Equal(t, 10, now.Hour())
		assert.Equal(t, 123456000, now.Nanosecond())
	})
}

func TestOpen(t *testing.T) {
	t.Run("rejects unknown schemes", func(t *testing.T) {
		_, err := Open(context.Background(), config.DatabaseConfig{URL: "oracle://db/erp"}, Options{})
		require.Error(t, err)
		assert.NotErrorIs(t, err, shared.ErrConnection)
	})

	t.Run("opens in-memory sqlite on a single connection", func(t *testing.T) {
		core, logs := observer.New(zap.InfoLevel)
		db, err := Open(context.Background(),
			config.DatabaseConfig{URL: "sqlite::memory:", MaxOpenConns: 25},
			Options{Logger: zap.New(core)})
		require.NoError(t, err)

		stats, err := db.Stats()
		require.NoError(t, err)
		assert.Equal(t, 1, stats.MaxOpenConnections)
		assert.Equal(t, DialectSQLite, db.Dialect)
		require.NoError(t, db.Ping(context.Background()))

		require.NoError(t, db.Close())
		assert.Equal(t, 1, logs.FilterMessage("Database connection opened").Len())
		assert.Equal(t, 1, logs.FilterMessage("Database connection closed").Len())
	})
}

func TestOpen_LogsRejectedStatements(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	db, err := Open(context.Background(), config.DatabaseConfig{URL: "sqlite::memory:"},
		Options{Logger: zap.New(core), SQLLogLevel: "warn"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, AutoMigrate(context.Background(), db.DB))

	repo := NewGormCustomerRepository(db.DB)
	for i := 0; i < 2; i++ {
		customer, err := partner.NewCustomer("CUST-1", "Acme", "1 Main Street")
		require.NoError(t, err)
		err = repo.Create(context.Background(), customer)
		if i == 0 {
			require.NoError(t, err)
		} else {
			require.ErrorIs(t, err, shared.ErrConstraintViolation)
		}
	}

	rejected := logs.FilterMessage("Statement rejected").All()
	require.Len(t, rejected, 1)
	assert.Equal(t, "CONSTRAINT_VIOLATION", rejected[0].ContextMap()["error_kind"])
	assert.Equal(t, "INSERT", rejected[0].ContextMap()["statement"])
	assert.Zero(t, logs.FilterMessage("Statement failed").Len())
}

func TestAutoMigrate(t *testing.T) {
	db := newTestDatabase(t, nil)

	for _, table := range models.TableNames() {
		assert.True(t, db.DB.Migrator().HasTable(table), table)
	}
	assert.True(t, db.DB.Migrator().HasIndex(&models.PaymentModel{}, "idx_payments_payment_reference"))
	assert.True(t, db.DB.Migrator().HasConstraint(&models.CustomerModel{}, "Invoices"))
	assert.True(t, db.DB.Migrator().HasConstraint(&models.InvoiceModel{}, "Items"))
}

func TestDatabase_Ping(t *testing.T) {
	t.Run("successful ping", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectPing()

		require.NoError(t, db.Ping(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed ping is a connection error", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectPing().WillReturnError(errors.New("server closed the connection unexpectedly"))

		err := db.Ping(context.Background())
		assert.ErrorIs(t, err, shared.ErrConnection)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDatabase_Close(t *testing.T) {
	db, mock, _ := newMockDatabase(t)

	mock.ExpectClose()

	require.NoError(t, db.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabase_Transaction(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "payments" WHERE id = \$1`).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := db.Transaction(context.Background(), func(ctx context.Context) error {
		return NewGormPaymentRepository(db.DB).Delete(ctx, 9)
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
