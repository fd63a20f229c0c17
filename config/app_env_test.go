package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAutoMigrateAllowed(t *testing.T) {
	for _, env := range []string{"", "dev", "development", "local", "test", "testing", "DEV", "  Local  "} {
		t.Run("allows "+env, func(t *testing.T) {
			assert.NoError(t, ValidateAutoMigrateAllowed(env))
		})
	}

	for _, env := range []string{"prod", "production", "staging", " Production ", "qa"} {
		t.Run("rejects "+env, func(t *testing.T) {
			err := ValidateAutoMigrateAllowed(env)
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), "cli migrate")
			}
		})
	}
}

func TestIsProductionEnv(t *testing.T) {
	assert.True(t, IsProductionEnv("production"))
	assert.True(t, IsProductionEnv(" PROD "))
	assert.False(t, IsProductionEnv("staging"))
	assert.False(t, IsProductionEnv(""))
}

func TestGetValueFromEnvironmentVariable(t *testing.T) {
	t.Setenv("LANDING_TEST_SET", "")

	assert.Equal(t, "", GetValueFromEnvironmentVariable("LANDING_TEST_SET", "fallback"))
	assert.Equal(t, "fallback", GetValueFromEnvironmentVariable("LANDING_TEST_UNSET_KEY", "fallback"))
}
