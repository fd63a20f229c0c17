package config

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/stackos/landing/internal/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type DBConfig struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	// SSLMode applies when POSTGRES_SSLMODE is unset.
	SSLMode string
}

// DefaultDBConfig suits short-lived tools such as the CLI.
func DefaultDBConfig() *DBConfig {
	return &DBConfig{
		MaxIdleConns:    2,
		MaxOpenConns:    5,
		ConnMaxLifetime: time.Minute,
		SSLMode:         "require",
	}
}

// NewDatabase opens the Postgres pool and pings it once. Driver errors are
// translated into gorm sentinels such as ErrDuplicatedKey.
func NewDatabase(logger *log.Logger, cfg *DBConfig) (*gorm.DB, error) {
	if cfg == nil {
		cfg = DefaultDBConfig()
	}

	dsn, err := DatabaseDSN(cfg.SSLMode)
	if err != nil {
		return nil, err
	}

	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	logger.Info("Database connection established",
		"max_open_conns", cfg.MaxOpenConns,
		"max_idle_conns", cfg.MaxIdleConns,
	)
	return gdb, nil
}

// DatabaseDSN prefers APP_DATABASE_URL and otherwise assembles a key/value DSN
// from the POSTGRES_* variables.
func DatabaseDSN(defaultSSLMode string) (string, error) {
	if url := sanitizeEnv(GetValueFromEnvironmentVariable("APP_DATABASE_URL", "")); url != "" {
		return url, nil
	}

	env := func(key string) string {
		return sanitizeEnv(GetValueFromEnvironmentVariable(key, ""))
	}

	params := []struct{ key, env string }{
		{"host", "POSTGRES_HOST"},
		{"port", "POSTGRES_PORT"},
		{"user", "POSTGRES_USER"},
		{"dbname", "POSTGRES_DB_NAME"},
	}

	var missing []string
	parts := make([]string, 0, len(params)+2)
	for _, p := range params {
		value := env(p.env)
		if value == "" {
			missing = append(missing, p.env)
			continue
		}
		parts = append(parts, p.key+"="+quoteDSNValue(value))
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("missing required database env vars: %s (or set APP_DATABASE_URL)", strings.Join(missing, ", "))
	}

	if port := env("POSTGRES_PORT"); port != "" {
		if _, err := strconv.Atoi(port); err != nil {
			return "", fmt.Errorf("invalid POSTGRES_PORT %q: %w", port, err)
		}
	}

	if pass := env("POSTGRES_PASSWORD"); pass != "" {
		parts = append(parts, "password="+quoteDSNValue(pass))
	}

	ssl := env("POSTGRES_SSLMODE")
	if ssl == "" {
		ssl = defaultSSLMode
	}
	if ssl != "" {
		parts = append(parts, "sslmode="+ssl)
	}

	return strings.Join(parts, " "), nil
}

// quoteDSNValue quotes values containing spaces or quotes, as libpq expects.
func quoteDSNValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// sanitizeEnv trims whitespace and one pair of surrounding quotes, which
// hosting dashboards sometimes keep in pasted values.
func sanitizeEnv(v string) string {
	s := strings.TrimSpace(v)
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		s = s[1 : len(s)-1]
	}
	return s
}

// AutoMigrate is the development shortcut behind --auto-migrate.
func AutoMigrate(logger *log.Logger, db *gorm.DB, models ...any) error {
	if db == nil {
		return fmt.Errorf("cannot migrate: db is nil")
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migrate failed: %w", err)
	}

	logger.Info("Auto-migration completed", "models", len(models))
	return nil
}

func CloseDatabase(db *gorm.DB, logger *log.Logger) {
	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("Failed to get SQL DB instance", "error", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		logger.Error("Failed to close database", "error", err)
		return
	}
	logger.Info("Database closed")
}
