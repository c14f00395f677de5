package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/erp/store/internal/domain/partner"
	"github.com/erp/store/internal/infrastructure/config"
	"github.com/erp/store/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

// setupTracerWithRecorder creates a tracer provider with a span recorder for testing
func setupTracerWithRecorder(t *testing.T) (*trace.TracerProvider, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := trace.NewTracerProvider(trace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return tp, recorder
}

// openTracedDatabase opens a migrated in-memory sqlite store with the tracing plugin
func openTracedDatabase(t *testing.T, cfg DBTracingConfig) *persistence.Database {
	t.Helper()

	plugin := NewDBTracingPlugin(cfg, zap.NewNop())
	db, err := persistence.Open(context.Background(),
		config.DatabaseConfig{URL: "sqlite::memory:"},
		persistence.Options{Plugins: []gorm.Plugin{plugin}},
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, persistence.AutoMigrate(context.Background(), db.DB))
	return db
}

func attrValue(attrs []attribute.KeyValue, key attribute.Key) (attribute.Value, bool) {
	for _, attr := range attrs {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return attribute.Value{}, false
}

// spansForTable returns ended spans annotated with the given table
func spansForTable(recorder *tracetest.SpanRecorder, table string) []trace.ReadOnlySpan {
	var out []trace.ReadOnlySpan
	for _, span := range recorder.Ended() {
		if v, ok := attrValue(span.Attributes(), "db.sql.table"); ok && v.AsString() == table {
			out = append(out, span)
		}
	}
	return out
}

func TestDefaultDBTracingConfig(t *testing.T) {
	cfg := DefaultDBTracingConfig()

	assert.False(t, cfg.Enabled)
	assert.False(t, cfg.LogFullSQL)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThresh)
	assert.Equal(t, "postgresql", cfg.DBSystem)
	assert.True(t, cfg.WithoutVariables)
	assert.Nil(t, cfg.TracerProvider)
}

func TestDBTracingConfigFrom(t *testing.T) {
	t.Run("maps telemetry settings", func(t *testing.T) {
		cfg := DBTracingConfigFrom(config.TelemetryConfig{
			DBTraceEnabled:    true,
			DBLogFullSQL:      true,
			DBSlowQueryThresh: time.Second,
		}, persistence.DialectMySQL)

		assert.True(t, cfg.Enabled)
		assert.True(t, cfg.LogFullSQL)
		assert.False(t, cfg.WithoutVariables)
		assert.Equal(t, time.Second, cfg.SlowQueryThresh)
		assert.Equal(t, "mysql", cfg.DBSystem)
	})

	t.Run("keeps default threshold when unset", func(t *testing.T) {
		cfg := DBTracingConfigFrom(config.TelemetryConfig{}, persistence.DialectSQLite)

		assert.False(t, cfg.Enabled)
		assert.True(t, cfg.WithoutVariables)
		assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThresh)
		assert.Equal(t, "sqlite", cfg.DBSystem)
	})

	t.Run("postgres is the default system", func(t *testing.T) {
		cfg := DBTracingConfigFrom(config.TelemetryConfig{}, persistence.DialectPostgres)
		assert.Equal(t, "postgresql", cfg.DBSystem)
	})
}

func TestNewDBTracingPlugin(t *testing.T) {
	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true

	plugin := NewDBTracingPlugin(cfg, nil)

	require.NotNil(t, plugin)
	assert.Equal(t, cfg, plugin.config)
	assert.NotNil(t, plugin.logger)
	assert.Equal(t, "erp:db_tracing", plugin.Name())
}

func TestDBTracingPlugin_Disabled(t *testing.T) {
	tp, recorder := setupTracerWithRecorder(t)

	core, logs := observer.New(zap.DebugLevel)
	cfg := DefaultDBTracingConfig()
	cfg.TracerProvider = tp
	plugin := NewDBTracingPlugin(cfg, zap.New(core))

	db, err := persistence.Open(context.Background(),
		config.DatabaseConfig{URL: "sqlite::memory:"},
		persistence.Options{Plugins: []gorm.Plugin{plugin}},
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, persistence.AutoMigrate(context.Background(), db.DB))

	customer, err := partner.NewCustomer("CUST-1", "Acme", "1 Main Street")
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormCustomerRepository(db.DB).Create(context.Background(), customer))

	assert.Empty(t, recorder.Ended())
	assert.Equal(t, 1, logs.FilterMessage("Database tracing disabled, skipping otelgorm registration").Len())
}

func TestDBTracingPlugin_RecordsInsert(t *testing.T) {
	tp, recorder := setupTracerWithRecorder(t)

	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true
	cfg.DBSystem = "sqlite"
	cfg.TracerProvider = tp
	db := openTracedDatabase(t, cfg)

	customer, err := partner.NewCustomer("CUST-1", "Acme", "1 Main Street")
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormCustomerRepository(db.DB).Create(context.Background(), customer))

	spans := spansForTable(recorder, "customers")
	require.NotEmpty(t, spans)

	span := spans[len(spans)-1]
	rows, ok := attrValue(span.Attributes(), "db.rows_affected")
	require.True(t, ok)
	assert.Equal(t, int64(1), rows.AsInt64())
	assert.NotEqual(t, codes.Error, span.Status().Code)
	_, hasKind := attrValue(span.Attributes(), "db.error_kind")
	assert.False(t, hasKind)
}

func TestDBTracingPlugin_RecordsConstraintViolation(t *testing.T) {
	tp, recorder := setupTracerWithRecorder(t)

	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true
	cfg.TracerProvider = tp
	db := openTracedDatabase(t, cfg)
	repo := persistence.NewGormCustomerRepository(db.DB)

	first, err := partner.NewCustomer("CUST-1", "Acme", "1 Main Street")
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), first))

	dup, err := partner.NewCustomer("CUST-1", "Other", "2 Main Street")
	require.NoError(t, err)
	require.Error(t, repo.Create(context.Background(), dup))

	var failed trace.ReadOnlySpan
	for _, span := range spansForTable(recorder, "customers") {
		if span.Status().Code == codes.Error {
			failed = span
		}
	}
	require.NotNil(t, failed)

	kind, ok := attrValue(failed.Attributes(), "db.error_kind")
	require.True(t, ok)
	assert.Equal(t, "CONSTRAINT_VIOLATION", kind.AsString())
}

func TestDBTracingPlugin_NotFoundIsNotAnError(t *testing.T) {
	tp, recorder := setupTracerWithRecorder(t)

	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true
	cfg.TracerProvider = tp
	db := openTracedDatabase(t, cfg)

	_, err := persistence.NewGormCustomerRepository(db.DB).FindByID(context.Background(), 99999)
	require.Error(t, err)

	spans := spansForTable(recorder, "customers")
	require.NotEmpty(t, spans)
	span := spans[len(spans)-1]
	_, hasKind := attrValue(span.Attributes(), "db.error_kind")
	assert.False(t, hasKind)
}

func TestDBTracingPlugin_SlowQuery(t *testing.T) {
	tp, recorder := setupTracerWithRecorder(t)

	core, logs := observer.New(zap.WarnLevel)
	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true
	cfg.TracerProvider = tp
	// Any elapsed time exceeds a negative threshold
	cfg.SlowQueryThresh = -time.Nanosecond

	plugin := NewDBTracingPlugin(cfg, zap.New(core))
	db, err := persistence.Open(context.Background(),
		config.DatabaseConfig{URL: "sqlite::memory:"},
		persistence.Options{Plugins: []gorm.Plugin{plugin}},
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, persistence.AutoMigrate(context.Background(), db.DB))

	customer, err := partner.NewCustomer("CUST-1", "Acme", "1 Main Street")
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormCustomerRepository(db.DB).Create(context.Background(), customer))

	spans := spansForTable(recorder, "customers")
	require.NotEmpty(t, spans)
	span := spans[len(spans)-1]

	slow, ok := attrValue(span.Attributes(), "db.slow_query")
	require.True(t, ok)
	assert.True(t, slow.AsBool())

	var sawEvent bool
	for _, event := range span.Events() {
		if event.Name == "slow_query_warning" {
			sawEvent = true
		}
	}
	assert.True(t, sawEvent)
	assert.Positive(t, logs.FilterMessage("Slow query").Len())
}

func TestDBTracingPlugin_DoubleRegistration(t *testing.T) {
	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true
	db := openTracedDatabase(t, cfg)

	err := db.DB.Use(NewDBTracingPlugin(cfg, zap.NewNop()))
	assert.ErrorIs(t, err, gorm.ErrRegistered)
}

func TestAfterQuery_NonRecordingSpan(t *testing.T) {
	plugin := NewDBTracingPlugin(DefaultDBTracingConfig(), zap.NewNop())

	db := &gorm.DB{Config: &gorm.Config{}, Statement: &gorm.Statement{Context: context.Background()}}
	assert.NotPanics(t, func() { plugin.afterQuery(db) })

	db.Statement.Context = nil
	assert.NotPanics(t, func() { plugin.afterQuery(db) })
}

func TestWithQueryStartTime(t *testing.T) {
	ctx := WithQueryStartTime(context.Background())

	startTime, ok := ctx.Value(queryStartTimeKey).(time.Time)
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now(), startTime, time.Second)
}

func TestPersistenceOptions(t *testing.T) {
	newConfig := func(traceEnabled bool) *config.Config {
		return &config.Config{
			Database: config.DatabaseConfig{URL: "sqlite::memory:"},
			Log:      config.LogConfig{SQLLevel: "warn"},
			Telemetry: config.TelemetryConfig{
				DBTraceEnabled:    traceEnabled,
				DBSlowQueryThresh: 500 * time.Millisecond,
			},
		}
	}

	openWith := func(t *testing.T, opts persistence.Options) *persistence.Database {
		t.Helper()
		db, err := persistence.Open(context.Background(), config.DatabaseConfig{URL: "sqlite::memory:"}, opts)
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })
		require.NoError(t, persistence.AutoMigrate(context.Background(), db.DB))
		return db
	}

	createCustomer := func(t *testing.T, db *persistence.Database) {
		t.Helper()
		customer, err := partner.NewCustomer("CUST-1", "Acme", "1 Main Street")
		require.NoError(t, err)
		require.NoError(t, persistence.NewGormCustomerRepository(db.DB).Create(context.Background(), customer))
	}

	t.Run("tracing enabled registers the plugin", func(t *testing.T) {
		tp, recorder := setupTracerWithRecorder(t)

		opts, err := PersistenceOptions(newConfig(true), zap.NewNop(), tp)
		require.NoError(t, err)
		assert.Equal(t, "warn", opts.SQLLogLevel)
		assert.Equal(t, 500*time.Millisecond, opts.SlowThreshold)
		require.Len(t, opts.Plugins, 1)

		plugin, ok := opts.Plugins[0].(*DBTracingPlugin)
		require.True(t, ok)
		assert.Equal(t, "sqlite", plugin.config.DBSystem)
		assert.Equal(t, 500*time.Millisecond, plugin.config.SlowQueryThresh)

		db := openWith(t, opts)
		createCustomer(t, db)

		assert.NotEmpty(t, spansForTable(recorder, "customers"))
	})

	t.Run("tracing disabled adds no plugin", func(t *testing.T) {
		tp, recorder := setupTracerWithRecorder(t)

		opts, err := PersistenceOptions(newConfig(false), zap.NewNop(), tp)
		require.NoError(t, err)
		assert.Empty(t, opts.Plugins)

		db := openWith(t, opts)
		createCustomer(t, db)

		assert.Empty(t, recorder.Ended())
	})

	t.Run("invalid database url", func(t *testing.T) {
		cfg := newConfig(true)
		cfg.Database.URL = "oracle://db"

		_, err := PersistenceOptions(cfg, zap.NewNop(), nil)
		assert.Error(t, err)
	})
}
