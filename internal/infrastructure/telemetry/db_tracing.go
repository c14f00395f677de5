// Package telemetry provides OpenTelemetry tracing for the store's GORM connection.
package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/erp/store/internal/infrastructure/config"
	"github.com/erp/store/internal/infrastructure/persistence"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled          bool          // Register otelgorm and the timing callbacks
	LogFullSQL       bool          // Include query variables in span statements (dev only)
	SlowQueryThresh  time.Duration // Threshold for marking queries as slow (default: 200ms)
	DBSystem         string        // Database system name reported on spans
	WithoutVariables bool          // Exclude query variables from SQL statement
	TracerProvider   trace.TracerProvider
}

// DefaultDBTracingConfig returns default configuration for database tracing.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		Enabled:          false,
		LogFullSQL:       false,
		SlowQueryThresh:  200 * time.Millisecond,
		DBSystem:         "postgresql",
		WithoutVariables: true,
	}
}

// DBTracingConfigFrom builds the tracing configuration for a connection of the
// given dialect from the telemetry settings.
func DBTracingConfigFrom(cfg config.TelemetryConfig, dialect persistence.Dialect) DBTracingConfig {
	out := DefaultDBTracingConfig()
	out.Enabled = cfg.DBTraceEnabled
	out.LogFullSQL = cfg.DBLogFullSQL
	out.WithoutVariables = !cfg.DBLogFullSQL
	if cfg.DBSlowQueryThresh > 0 {
		out.SlowQueryThresh = cfg.DBSlowQueryThresh
	}
	out.DBSystem = dbSystem(dialect)
	return out
}

// PersistenceOptions turns the application configuration into the options
// used to open the store: the SQL log level and slow threshold, and the
// tracing plugin when telemetry.db_trace_enabled is set. The dialect is taken
// from database.url.
func PersistenceOptions(cfg *config.Config, logger *zap.Logger, tp trace.TracerProvider) (persistence.Options, error) {
	target, err := persistence.ParseURL(cfg.Database.URL)
	if err != nil {
		return persistence.Options{}, err
	}

	opts := persistence.Options{
		Logger:        logger,
		SQLLogLevel:   cfg.Log.SQLLevel,
		SlowThreshold: cfg.Telemetry.DBSlowQueryThresh,
	}
	if cfg.Telemetry.DBTraceEnabled {
		tracing := DBTracingConfigFrom(cfg.Telemetry, target.Dialect)
		tracing.TracerProvider = tp
		opts.Plugins = append(opts.Plugins, NewDBTracingPlugin(tracing, logger))
	}
	return opts, nil
}

func dbSystem(dialect persistence.Dialect) string {
	switch dialect {
	case persistence.DialectMySQL:
		return "mysql"
	case persistence.DialectSQLite:
		return "sqlite"
	default:
		return "postgresql"
	}
}

// DBTracingPlugin wraps the otelgorm plugin with slow query detection and
// store error classification. It is a gorm.Plugin and can be passed to
// persistence.Options.Plugins.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

var _ gorm.Plugin = (*DBTracingPlugin)(nil)

// NewDBTracingPlugin creates a new database tracing plugin with the given configuration.
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DBTracingPlugin{
		config: cfg,
		logger: logger,
	}
}

// Name implements gorm.Plugin.
func (p *DBTracingPlugin) Name() string {
	return "erp:db_tracing"
}

// Initialize implements gorm.Plugin. The timing callbacks are registered
// ahead of otelgorm so that they run while the otelgorm span is still open.
func (p *DBTracingPlugin) Initialize(db *gorm.DB) error {
	if !p.config.Enabled {
		p.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	if err := p.registerBeforeCallbacks(db); err != nil {
		return err
	}
	if err := p.registerAfterCallbacks(db); err != nil {
		return err
	}

	opts := []otelgorm.Option{
		otelgorm.WithDBName(p.config.DBSystem),
	}
	if p.config.TracerProvider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(p.config.TracerProvider))
	}
	if p.config.WithoutVariables || !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
		zap.String("db_system", p.config.DBSystem),
	)
	return nil
}

func (p *DBTracingPlugin) registerBeforeCallbacks(db *gorm.DB) error {
	cb := db.Callback()
	if err := cb.Create().Before("gorm:create").Register("erp_timing:before_create", markQueryStart); err != nil {
		return err
	}
	if err := cb.Query().Before("gorm:query").Register("erp_timing:before_query", markQueryStart); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("erp_timing:before_update", markQueryStart); err != nil {
		return err
	}
	if err := cb.Delete().Before("gorm:delete").Register("erp_timing:before_delete", markQueryStart); err != nil {
		return err
	}
	if err := cb.Row().Before("gorm:row").Register("erp_timing:before_row", markQueryStart); err != nil {
		return err
	}
	return cb.Raw().Before("gorm:raw").Register("erp_timing:before_raw", markQueryStart)
}

func (p *DBTracingPlugin) registerAfterCallbacks(db *gorm.DB) error {
	cb := db.Callback()
	if err := cb.Create().After("gorm:create").Register("erp_timing:after_create", p.afterQuery); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("erp_timing:after_query", p.afterQuery); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("erp_timing:after_update", p.afterQuery); err != nil {
		return err
	}
	if err := cb.Delete().After("gorm:delete").Register("erp_timing:after_delete", p.afterQuery); err != nil {
		return err
	}
	if err := cb.Row().After("gorm:row").Register("erp_timing:after_row", p.afterQuery); err != nil {
		return err
	}
	return cb.Raw().After("gorm:raw").Register("erp_timing:after_raw", p.afterQuery)
}

func markQueryStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = WithQueryStartTime(db.Statement.Context)
	}
}

// afterQuery annotates the span in the statement context with the row count,
// table, error kind and slow query marker.
func (p *DBTracingPlugin) afterQuery(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}

	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}

	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
		if kind := persistence.ErrorKind(db.Error); kind != "" {
			span.SetAttributes(attribute.String("db.error_kind", kind))
		}
	}

	startTime, ok := ctx.Value(queryStartTimeKey).(time.Time)
	if !ok {
		return
	}
	elapsed := time.Since(startTime)
	if elapsed > p.config.SlowQueryThresh {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
		span.AddEvent("slow_query_warning", trace.WithAttributes(
			attribute.Int64("duration_ms", elapsed.Milliseconds()),
			attribute.Int64("threshold_ms", p.config.SlowQueryThresh.Milliseconds()),
		))
		p.logger.Warn("Slow query",
			zap.String("table", db.Statement.Table),
			zap.Duration("elapsed", elapsed),
		)
	}
}

type contextKey string

const queryStartTimeKey contextKey = "erp_query_start_time"

// WithQueryStartTime returns a context with the query start time set.
func WithQueryStartTime(ctx context.Context) context.Context {
	return context.WithValue(ctx, queryStartTimeKey, time.Now())
}
