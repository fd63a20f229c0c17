package utils

import (
	"os"
	"strconv"
	"strings"
)

// GetEnvTrimmed returns the variable without surrounding whitespace.
func GetEnvTrimmed(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func GetEnvTrimmedOrDefault(key, defaultValue string) string {
	if v := GetEnvTrimmed(key); v != "" {
		return v
	}
	return defaultValue
}

// GetEnvBool parses the variable with strconv.ParseBool. Unset or unparsable
// values yield fallback.
func GetEnvBool(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(GetEnvTrimmed(key)); err == nil {
		return b
	}
	return fallback
}
