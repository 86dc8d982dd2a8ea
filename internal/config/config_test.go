package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"PORT", "MONGO_URI", "MONGO_DB", "JWT_SECRET", "JWT_EXPIRY",
	"REDIS_ADDR", "REDIS_PASSWORD", "ANALYTICS_CACHE_TTL",
	"MQTT_BROKER", "MQTT_CLIENT_ID", "MQTT_TOPIC", "ALERT_INTERVAL",
	"RATE_LIMIT_PER_MINUTE", "LOG_LEVEL", "LOG_FORMAT",
}

func clearEnv(t *testing.T) {
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "fleet", cfg.MongoDB)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 10*time.Minute, cfg.AnalyticsCacheTTL)
	assert.Equal(t, time.Hour, cfg.AlertInterval)
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
	assert.Equal(t, "fleet/alerts", cfg.MQTTTopic)
	assert.Empty(t, cfg.RedisAddr)
	assert.Empty(t, cfg.MQTTBroker)
	assert.True(t, cfg.UsesDefaultSecret())
}

func TestLoad_FromEnvFile(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides variables that are already set, even to ""
	for _, k := range []string{"PORT", "REDIS_ADDR", "ALERT_INTERVAL", "JWT_SECRET"} {
		require.NoError(t, os.Unsetenv(k))
	}
	t.Cleanup(func() {
		for _, k := range []string{"PORT", "REDIS_ADDR", "ALERT_INTERVAL", "JWT_SECRET"} {
			os.Unsetenv(k)
		}
	})

	path := filepath.Join(t.TempDir(), ".env")
	content := "PORT=9090\nREDIS_ADDR=localhost:6379\nALERT_INTERVAL=15m\nJWT_SECRET=s3cret\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 15*time.Minute, cfg.AlertInterval)
	assert.False(t, cfg.UsesDefaultSecret())
}

func TestLoad_InvalidValues(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.env")

	clearEnv(t)
	t.Setenv("JWT_EXPIRY", "tomorrow")
	_, err := Load(missing)
	assert.ErrorContains(t, err, "JWT_EXPIRY")

	clearEnv(t)
	t.Setenv("RATE_LIMIT_PER_MINUTE", "lots")
	_, err = Load(missing)
	assert.ErrorContains(t, err, "RATE_LIMIT_PER_MINUTE")
}

func TestLoad_RejectsNonPositiveDurations(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.env")

	for _, key := range []string{"ALERT_INTERVAL", "ANALYTICS_CACHE_TTL", "JWT_EXPIRY"} {
		for _, value := range []string{"0s", "-5m"} {
			clearEnv(t)
			t.Setenv(key, value)
			cfg, err := Load(missing)
			assert.Nil(t, cfg, "%s=%s", key, value)
			assert.ErrorContains(t, err, key, "%s=%s", key, value)
		}
	}
}

func TestConfigureLogging(t *testing.T) {
	defer log.SetLevel(log.InfoLevel)
	defer log.SetFormatter(&log.TextFormatter{})

	cfg := &Config{LogLevel: "debug", LogFormat: "json"}
	require.NoError(t, cfg.ConfigureLogging())
	assert.Equal(t, log.DebugLevel, log.GetLevel())
	assert.IsType(t, &log.JSONFormatter{}, log.StandardLogger().Formatter)

	cfg = &Config{LogLevel: "loud"}
	assert.Error(t, cfg.ConfigureLogging())

	cfg = &Config{LogLevel: "info", LogFormat: "xml"}
	assert.Error(t, cfg.ConfigureLogging())
}
