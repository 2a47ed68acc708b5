package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_HOST", "localhost")
	t.Setenv("DATABASE_USER", "postgres")
	t.Setenv("DATABASE_DBNAME", "lessons")
	t.Setenv("ADMIN_USERNAME", "admin")
	t.Setenv("ADMIN_PASSWORD_HASH", "$2a$10$abcdefghijklmnopqrstuv")
	t.Setenv("ADMIN_JWT_SECRET", "test-secret")
}

func TestLoad_FromEnvWithDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("REDIS_ADDRS", "redis-1:6379, redis-2:6379")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "migrations", cfg.Database.MigrationsPath)
	assert.Equal(t, StorageDriverLocal, cfg.Storage.Driver)
	assert.Equal(t, "/uploads", cfg.Storage.PublicPrefix)
	assert.Equal(t, 30*time.Second, cfg.Ingestion.Timeout())
	assert.Equal(t, int64(20<<20), cfg.Ingestion.MaxUploadBytes)
	assert.Equal(t, []string{"redis-1:6379", "redis-2:6379"}, cfg.Redis.Addrs)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL())
	assert.Contains(t, cfg.Database.PostgresConnectionString(), "dbname=lessons")
}

func TestLoad_FileValuesAndEnvOverride(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_PORT", "9999")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("server:\n  port: \"7000\"\ningestion:\n  timeout_sec: 5\nstorage:\n  driver: local\n  local_dir: /tmp/assets\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Server.Port, "env must override the file")
	assert.Equal(t, 5*time.Second, cfg.Ingestion.Timeout())
	assert.Equal(t, "/tmp/assets", cfg.Storage.LocalDir)
}

func TestLoad_MissingRequired(t *testing.T) {
	tests := []struct {
		name    string
		unset   string
		wantErr string
	}{
		{"database host", "DATABASE_HOST", "database configuration"},
		{"admin hash", "ADMIN_PASSWORD_HASH", "admin credentials"},
		{"jwt secret", "ADMIN_JWT_SECRET", "JWT secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.unset, "")

			cfg, err := Load("")
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_GCSRequiresBucket(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("STORAGE_DRIVER", "gcs")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gcs_bucket")
}
