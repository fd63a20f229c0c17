package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/stackos/landing/internal/log"
	"github.com/stackos/landing/pkg/utils"
)

const AppEnvKey = "APP_ENV"

var autoMigrateEnvs = []string{"", "dev", "development", "local", "test", "testing"}

// InitializeEnvFile loads .env from the working directory unless SKIP_DOTENV=true.
// Variables already set in the process environment win.
func InitializeEnvFile(logger *log.Logger) {
	if strings.EqualFold(utils.GetEnvTrimmed("SKIP_DOTENV"), "true") {
		logger.Info("Skipping .env file load (SKIP_DOTENV=true)")
		return
	}

	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file loaded", "error", err.Error())
		return
	}
	logger.Info("Environment variables loaded from .env")
}

func GetValueFromEnvironmentVariable(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func GetAppEnv() string {
	return strings.ToLower(utils.GetEnvTrimmed(AppEnvKey))
}

// IsProductionEnv reports whether appEnv names a production deployment.
func IsProductionEnv(appEnv string) bool {
	env := strings.ToLower(strings.TrimSpace(appEnv))
	return env == "production" || env == "prod"
}

// ValidateAutoMigrateAllowed keeps gorm AutoMigrate out of shared environments,
// where `cli migrate` owns the schema.
func ValidateAutoMigrateAllowed(appEnv string) error {
	env := strings.ToLower(strings.TrimSpace(appEnv))
	if slices.Contains(autoMigrateEnvs, env) {
		return nil
	}
	return fmt.Errorf("--auto-migrate is not allowed when %s=%q; run `cli migrate` instead", AppEnvKey, env)
}
