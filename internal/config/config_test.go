package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("PUSH_TIMEOUT", "")
	t.Setenv("EXPO_BASE_URL", "")

	cfg := Load()
	assert.Equal(t, "dynamo", cfg.StorageDriver)
	assert.Equal(t, 10*time.Second, cfg.Push.Timeout)
	assert.Equal(t, "https://exp.host", cfg.Push.ExpoBaseURL)
	assert.Equal(t, "notifications", cfg.DynamoTables.Notifications)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "Memory")
	t.Setenv("PUSH_TIMEOUT", "3")
	t.Setenv("EXPO_BASE_URL", "http://localhost:9000/")
	t.Setenv("ALLOWED_ORIGINS", "https://a.edu,https://b.edu")

	cfg := Load()
	assert.Equal(t, "memory", cfg.StorageDriver)
	assert.Equal(t, 3*time.Second, cfg.Push.Timeout)
	assert.Equal(t, "http://localhost:9000", cfg.Push.ExpoBaseURL)
	assert.Equal(t, []string{"https://a.edu", "https://b.edu"}, cfg.AllowedOrigins)
}

func TestGetEnvDuration_Invalid(t *testing.T) {
	t.Setenv("SOME_TIMEOUT", "soon")
	assert.Equal(t, time.Minute, getEnvDuration("SOME_TIMEOUT", time.Minute))
}
