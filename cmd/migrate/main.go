package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/erp/store/internal/infrastructure/config"
	"github.com/erp/store/internal/infrastructure/logger"
	"github.com/erp/store/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const defaultMigrationsPath = "migrations"

var errUsage = errors.New("usage")

func main() {
	var (
		migrationsPath string
		configPath     string
		logLevel       string
		embedded       bool
	)

	flag.StringVar(&migrationsPath, "path", "", "Path to migrations directory (default: ./migrations)")
	flag.StringVar(&configPath, "config", "", "Path to config.toml (default: search . and /app)")
	flag.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error; default: log.level)")
	flag.BoolVar(&embedded, "embedded", false, "Use the schema compiled into the binary instead of -path")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage(os.Stdout)
		os.Exit(1)
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := newLogger(cfg.Log, logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	migrationsPath, err = resolveMigrationsPath(migrationsPath)
	if err != nil {
		log.Fatal("Failed to resolve migrations path", zap.Error(err))
	}

	log.Info("Migration CLI started",
		zap.String("command", args[0]),
		zap.String("migrations_path", migrationsPath),
		zap.Bool("embedded", embedded),
	)

	// create and list work on files only
	if handled, err := runOffline(log, os.Stdout, migrationsPath, args); handled {
		if err != nil {
			exitWith(log, err)
		}
		return
	}

	if err := migration.CheckURL(cfg.Database.URL); err != nil {
		log.Fatal("Database URL cannot be migrated", zap.Error(err), zap.String("url", cfg.Database.Redacted()))
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database", zap.Error(err), zap.String("url", cfg.Database.Redacted()))
	}

	var m *migration.Migrator
	if embedded {
		m, err = migration.NewEmbedded(db, log)
	} else {
		m, err = migration.New(db, migrationsPath, log)
	}
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer m.Close()

	if err := runOnline(log, m, args); err != nil {
		exitWith(log, err)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// newLogger builds the CLI logger from the log settings; a non-empty level
// from the command line wins over log.level
func newLogger(cfg config.LogConfig, level string) (*zap.Logger, error) {
	lc := logger.FromAppConfig(cfg)
	if level != "" {
		lc.Level = level
	}
	lc.TimeFormat = "2006-01-02 15:04:05"
	return logger.New(lc)
}

// resolveMigrationsPath returns an absolute migrations directory, looking in
// the working directory and then next to the executable when path is empty
func resolveMigrationsPath(path string) (string, error) {
	if path == "" {
		if _, err := os.Stat(defaultMigrationsPath); err == nil {
			path = defaultMigrationsPath
		} else if execPath, err := os.Executable(); err == nil {
			candidate := filepath.Join(filepath.Dir(execPath), "..", "..", defaultMigrationsPath)
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
			}
		}
		if path == "" {
			path = defaultMigrationsPath
		}
	}
	return filepath.Abs(path)
}

// runOffline handles the commands that need no database connection.
// It reports whether the command was one of them.
func runOffline(log *zap.Logger, out io.Writer, migrationsPath string, args []string) (bool, error) {
	switch args[0] {
	case "create":
		if len(args) < 2 {
			return true, fmt.Errorf("%w: migrate create <name> [description]", errUsage)
		}
		description := ""
		if len(args) > 2 {
			description = args[2]
		}
		mf, err := migration.CreateMigration(migrationsPath, args[1], description)
		if err != nil {
			return true, fmt.Errorf("failed to create migration: %w", err)
		}
		log.Info("Migration created successfully",
			zap.String("version", mf.Version),
			zap.String("up_file", mf.UpPath),
			zap.String("down_file", mf.DownPath),
		)
		return true, nil

	case "list":
		migrations, err := migration.ListMigrations(migrationsPath)
		if err != nil {
			return true, fmt.Errorf("failed to list migrations: %w", err)
		}
		if len(migrations) == 0 {
			log.Info("No migrations found")
			return true, nil
		}
		log.Info("Available migrations", zap.Int("count", len(migrations)))
		for _, m := range migrations {
			fmt.Fprintln(out, "  -", m)
		}
		return true, nil
	}
	return false, nil
}

// migrator is the subset of *migration.Migrator the online commands use
type migrator interface {
	Up() error
	Down() error
	Steps(n int) error
	GoTo(version uint) error
	Version() (uint, bool, error)
	Force(version int) error
	Drop() error
}

func runOnline(log *zap.Logger, m migrator, args []string) error {
	switch args[0] {
	case "up":
		return m.Up()

	case "down":
		return m.Down()

	case "step":
		if len(args) < 2 {
			return fmt.Errorf("%w: migrate step <n>", errUsage)
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid step count %q", args[1])
		}
		return m.Steps(n)

	case "goto":
		if len(args) < 2 {
			return fmt.Errorf("%w: migrate goto <version>", errUsage)
		}
		version, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid version number %q", args[1])
		}
		return m.GoTo(uint(version))

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		if version == 0 {
			log.Info("No migrations applied")
			return nil
		}
		log.Info("Current migration version",
			zap.Uint("version", version),
			zap.Bool("dirty", dirty),
		)
		return nil

	case "force":
		if len(args) < 2 {
			return fmt.Errorf("%w: migrate force <version>", errUsage)
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version number %q", args[1])
		}
		log.Warn("Forcing migration version - use with caution!")
		return m.Force(version)

	case "drop":
		if !hasConfirm(args[1:]) {
			return fmt.Errorf("%w: drop cancelled, use 'migrate drop -confirm'", errUsage)
		}
		return m.Drop()
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
}

func hasConfirm(args []string) bool {
	for _, arg := range args {
		if arg == "-confirm" || arg == "--confirm" {
			return true
		}
	}
	return false
}

func exitWith(log *zap.Logger, err error) {
	if errors.Is(err, errUsage) {
		log.Error("Invalid command", zap.Error(err))
		printUsage(os.Stdout)
		os.Exit(1)
	}
	log.Fatal("Migration command failed", zap.Error(err))
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `ERP Store Migration Tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  step <n>              Apply n migrations (positive=up, negative=down)
  goto <version>        Migrate to a specific version
  version               Show current migration version
  force <version>       Force set migration version (use with caution)
  drop -confirm         Drop all database objects (DANGEROUS)
  create <name> [desc]  Create the next migration file pair
  list                  List available migrations

Flags:
  -path string          Path to migrations directory (default: ./migrations)
  -config string        Path to config.toml
  -embedded             Use the schema compiled into the binary
  -log-level string     Log level: debug, info, warn, error (default: log.level)

Environment Variables:
  DATABASE_URL          Connection string (postgres://...), overrides database.url
  ERP_DATABASE_URL      Used when DATABASE_URL is unset

Examples:
  migrate up
  migrate step -1
  migrate create add_payment_notes "Add notes column to payments"
  migrate version`)
}
