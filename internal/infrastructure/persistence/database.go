package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/store/internal/infrastructure/config"
	"github.com/erp/store/internal/infrastructure/logger"
	"github.com/erp/store/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Database holds the database connection and provides methods for database operations
type Database struct {
	DB      *gorm.DB
	Dialect Dialect
	log     *zap.Logger
}

// Options tunes how a connection is opened. The zero value is usable.
type Options struct {
	// Logger receives lifecycle events and, through the GORM logger, SQL
	// statements. Defaults to a no-op logger.
	Logger *zap.Logger
	// SQLLogLevel is one of silent, error, warn, info
	SQLLogLevel string
	// SlowThreshold marks statements as slow in the SQL log
	SlowThreshold time.Duration
	// NowFunc stamps created/updated columns. Results are always converted
	// to UTC and truncated to microseconds.
	NowFunc func() time.Time
	// Plugins are registered on the connection after it opens
	Plugins []gorm.Plugin
}

// Open parses the connection string, opens the matching dialect and
// verifies the engine is reachable. A failure to reach the engine is
// reported as shared.ErrConnection.
func Open(ctx context.Context, cfg config.DatabaseConfig, opts Options) (*Database, error) {
	target, err := ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	if target.InMemory {
		// every connection to :memory: is a separate database
		cfg.MaxOpenConns = 1
		cfg.MaxIdleConns = 1
		cfg.ConnMaxLifetime = 0
		cfg.ConnMaxIdleTime = 0
	}

	db, err := OpenWithDialector(ctx, target.Dialector(), target.Dialect, cfg, opts)
	if err != nil {
		return nil, err
	}
	db.log.Info("Database connection opened",
		zap.String("dialect", string(target.Dialect)),
		zap.String("url", cfg.Redacted()),
		zap.Int("max_open_conns", cfg.MaxOpenConns),
	)
	return db, nil
}

// OpenWithDialector opens a connection through an already constructed
// dialector. Pool settings from cfg are applied and zero values keep the
// database/sql defaults; cfg.URL is ignored.
func OpenWithDialector(ctx context.Context, dialector gorm.Dialector, dialect Dialect, cfg config.DatabaseConfig, opts Options) (*Database, error) {
	zl := opts.Logger
	if zl == nil {
		zl = zap.NewNop()
	}

	gormOpts := []logger.GormLoggerOption{logger.WithErrorClassifier(ErrorKind)}
	if opts.SlowThreshold > 0 {
		gormOpts = append(gormOpts, logger.WithSlowThreshold(opts.SlowThreshold))
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.NewGormLogger(zl, logger.MapGormLogLevel(opts.SQLLogLevel), gormOpts...),
		NowFunc:                utcNow(opts.NowFunc),
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
	})
	if err != nil {
		return nil, connectionError("open database", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTimeDuration())
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, connectionError("ping database", err)
	}

	for _, plugin := range opts.Plugins {
		if err := db.Use(plugin); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("register plugin %s: %w", plugin.Name(), err)
		}
	}

	return &Database{DB: db, Dialect: dialect, log: zl}, nil
}

func utcNow(now func() time.Time) func() time.Time {
	if now == nil {
		now = time.Now
	}
	return func() time.Time {
		return now().UTC().Truncate(time.Microsecond)
	}
}

// AutoMigrate creates or updates every table from the GORM models,
// including foreign keys and their ON DELETE rules. Used for sqlite and
// mysql; postgres deployments apply the versioned SQL migrations instead.
func AutoMigrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return translate("auto migrate", err)
	}
	return nil
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return err
	}
	d.logger().Info("Database connection closed", zap.String("dialect", string(d.Dialect)))
	return nil
}

// Ping checks if the database connection is alive
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return connectionError("ping database", err)
	}
	return nil
}

// Stats returns database connection pool statistics and an error if unable to retrieve
func (d *Database) Stats() (ConnectionStats, error) {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return ConnectionStats{}, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	stats := sqlDB.Stats()
	return ConnectionStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration,
		MaxIdleClosed:      stats.MaxIdleClosed,
		MaxIdleTimeClosed:  stats.MaxIdleTimeClosed,
		MaxLifetimeClosed:  stats.MaxLifetimeClosed,
	}, nil
}

// ConnectionStats holds database connection pool statistics
type ConnectionStats struct {
	MaxOpenConnections int
	OpenConnections    int
	InUse              int
	Idle               int
	WaitCount          int64
	WaitDuration       time.Duration
	MaxIdleClosed      int64
	MaxIdleTimeClosed  int64
	MaxLifetimeClosed  int64
}

// Transaction executes fn as one unit of work. See TransactionScope.
func (d *Database) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return NewTransactionScope(d.DB).Execute(ctx, fn)
}

func (d *Database) logger() *zap.Logger {
	if d.log == nil {
		return zap.NewNop()
	}
	return d.log
}
