package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/garage-platform/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("", "")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, config.StoreMongo, cfg.Store.Driver)
	assert.Equal(t, config.EventsNone, cfg.Events.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "dev-secret", cfg.Auth.JWTSecret)
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "config.yaml")
	yamlBody := []byte("app:\n  port: \"9000\"\nstore:\n  driver: memory\nauth:\n  jwt_secret: from-yaml\n")
	require.NoError(t, os.WriteFile(yamlPath, yamlBody, 0o600))

	t.Setenv("APP_PORT", "9100")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("EVENTS_DRIVER", "kafka")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("ADMIN_EMAILS", "boss@garage.test")

	cfg, err := config.Load(yamlPath, "")
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.App.Port)
	assert.Equal(t, config.StoreMemory, cfg.Store.Driver)
	assert.Equal(t, "from-yaml", cfg.Auth.JWTSecret)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Events.KafkaBrokers)
	assert.Equal(t, 30*time.Second, cfg.Redis.TTL)
	assert.Equal(t, []string{"boss@garage.test"}, cfg.Auth.AdminEmails)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("STORE_DRIVER=postgres\nDB_NAME=garage_test\n"), 0o600))

	// godotenv does not override variables that are already set.
	t.Setenv("STORE_DRIVER", "")
	os.Unsetenv("STORE_DRIVER")
	t.Setenv("DB_NAME", "")
	os.Unsetenv("DB_NAME")

	cfg, err := config.Load("", envPath)
	require.NoError(t, err)

	assert.Equal(t, config.StorePostgres, cfg.Store.Driver)
	assert.Equal(t, "garage_test", cfg.Postgres.DBName)
	assert.Contains(t, cfg.Postgres.DSN(), "dbname=garage_test")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown_store", env: map[string]string{"STORE_DRIVER": "sqlite"}},
		{name: "unknown_events", env: map[string]string{"EVENTS_DRIVER": "nats"}},
		{name: "kafka_without_brokers", env: map[string]string{"EVENTS_DRIVER": "kafka"}},
		{name: "rabbitmq_without_url", env: map[string]string{"EVENTS_DRIVER": "rabbitmq"}},
		{name: "production_without_secret", env: map[string]string{"APP_ENV": "production"}},
		{name: "bad_duration", env: map[string]string{"JWT_TTL": "forever"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.Load("", "")
			assert.Error(t, err)
		})
	}
}
