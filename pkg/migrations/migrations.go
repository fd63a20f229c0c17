// Package migrations applies the waitlist schema with golang-migrate. The SQL
// files are embedded; a directory can replace them at run time.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

const defaultMigrationsTable = "schema_migrations"

//go:embed sql/*.sql
var embeddedSQL embed.FS

// Source identifies where migration files come from: a file:// URL or an in-process driver.
type Source struct {
	URL    string
	Driver source.Driver
}

func (s Source) String() string {
	if s.Driver != nil {
		return "embedded"
	}
	return s.URL
}

type migrator interface {
	Up() error
	Close() (sourceErr error, databaseErr error)
}

// Swapped in tests.
var (
	driverFactory = func(db *sql.DB, cfg Config) (database.Driver, error) {
		return postgres.WithInstance(db, &postgres.Config{MigrationsTable: cfg.MigrationsTable})
	}
	migratorFactory = func(src Source, driver database.Driver) (migrator, error) {
		if src.Driver != nil {
			return migrate.NewWithInstance("iofs", src.Driver, "postgres", driver)
		}
		return migrate.NewWithDatabaseInstance(src.URL, "postgres", driver)
	}
)

// EmbeddedSource returns the migrations compiled into the binary.
func EmbeddedSource() (Source, error) {
	d, err := iofs.New(embeddedSQL, "sql")
	if err != nil {
		return Source{}, fmt.Errorf("migrations: embedded source: %w", err)
	}
	return Source{Driver: d}, nil
}

// FileSource returns a file:// source for dir, resolved to an absolute path.
func FileSource(dir string) (Source, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return Source{}, fmt.Errorf("migrations: resolve dir: %w", err)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(absDir)}
	return Source{URL: u.String()}, nil
}

type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...any) {}
func (nopLogger) Warn(string, ...any) {}

// Config controls a migration run. An empty Dir uses the embedded migrations.
type Config struct {
	Dir             string
	MigrationsTable string
	Logger          Logger
}

func (cfg Config) withDefaults() Config {
	if strings.TrimSpace(cfg.MigrationsTable) == "" {
		cfg.MigrationsTable = defaultMigrationsTable
	}
	if cfg.Logger == nil {
		cfg.Logger = nopLogger{}
	}
	return cfg
}

func (cfg Config) source() (Source, error) {
	if strings.TrimSpace(cfg.Dir) == "" {
		return EmbeddedSource()
	}
	return FileSource(cfg.Dir)
}

// Up applies every pending migration. An up-to-date schema is not an error.
// Closing the migrator also closes db.
func Up(ctx context.Context, db *sql.DB, cfg Config) error {
	if db == nil {
		return errors.New("migrations: db is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	cfg = cfg.withDefaults()

	src, err := cfg.source()
	if err != nil {
		return err
	}

	driver, err := driverFactory(db, cfg)
	if err != nil {
		return fmt.Errorf("migrations: postgres driver: %w", err)
	}

	m, err := migratorFactory(src, driver)
	if err != nil {
		return fmt.Errorf("migrations: init: %w", err)
	}

	var closeOnce sync.Once
	closeMigrator := func() {
		closeOnce.Do(func() {
			if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
				cfg.Logger.Warn("Migrator close error", "source_error", srcErr, "database_error", dbErr)
			}
		})
	}
	defer closeMigrator()

	cfg.Logger.Info("Running SQL migrations", "source", src.String(), "table", cfg.MigrationsTable)

	// migrate has no context support; closing the migrator interrupts a running Up.
	done := make(chan error, 1)
	go func() { done <- m.Up() }()

	select {
	case <-ctx.Done():
		closeMigrator()
		return ctx.Err()
	case err := <-done:
		switch {
		case errors.Is(err, migrate.ErrNoChange):
			cfg.Logger.Info("Schema is up to date")
			return nil
		case err != nil:
			return fmt.Errorf("migrations: up: %w", err)
		}
	}

	cfg.Logger.Info("Migrations applied")
	return nil
}
