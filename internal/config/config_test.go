package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("STORAGE_BACKEND", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 30*time.Minute, cfg.AutomationInterval)
	assert.Equal(t, StorageFile, cfg.StorageBackend)
	assert.Equal(t, "surprising historical facts", cfg.DefaultTopic)
	assert.Equal(t, "gemini-2.5-flash", cfg.ContentModel)
}

func TestLoad_FileThenEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "port: \"9090\"\nautomation_interval: 10m\nstorage_backend: redis\nredis_addr: cache:6379\nkafka_brokers: [\"k1:9092\"]\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7070")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, 10*time.Minute, cfg.AutomationInterval)
	assert.Equal(t, StorageRedis, cfg.StorageBackend)
	assert.Equal(t, "cache:6379", cfg.RedisAddr)
	assert.Equal(t, []string{"k1:9092"}, cfg.KafkaBrokers)
}

func TestConfig_validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{name: "unknown backend", mutate: func(c *Config) { c.StorageBackend = "ftp" }, wantErr: true},
		{name: "azure without account", mutate: func(c *Config) { c.StorageBackend = StorageAzure }, wantErr: true},
		{name: "s3 without bucket", mutate: func(c *Config) { c.StorageBackend = StorageS3 }, wantErr: true},
		{name: "mongo without uri", mutate: func(c *Config) { c.StorageBackend = StorageMongo }, wantErr: true},
		{name: "zero interval", mutate: func(c *Config) { c.AutomationInterval = 0 }, wantErr: true},
		{name: "email without smtp", mutate: func(c *Config) { c.NotificationEmail = "ops@example.com" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetSliceEnv_TrimsEmpty(t *testing.T) {
	t.Setenv("TEST_SLICE", " a, ,b ")
	assert.Equal(t, []string{"a", "b"}, getSliceEnv("TEST_SLICE", nil))
}
