package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Storage.Mode)
	assert.Equal(t, "/media", cfg.Media.URL)
	assert.True(t, cfg.Media.WriteSidecar)
	assert.Equal(t, "memory", cfg.Cache.Mode)
	assert.Equal(t, "fra+eng", cfg.Extraction.OCRLanguages)
	assert.False(t, cfg.Jobs.MatchRefreshEnabled)
	assert.Equal(t, 30*time.Minute, cfg.Jobs.MatchRefreshTimeoutDuration())
	assert.Equal(t, "DENY", cfg.Security.FrameOptions)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("MEDIA_ROOT", "/srv/media")
	t.Setenv("ADMIN_API_KEY", "from-env")
	t.Setenv("CACHE_MODE", "redis")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/srv/media", cfg.Media.Root)
	assert.Equal(t, "from-env", cfg.ApiKey.Value)
	assert.Equal(t, "redis", cfg.Cache.Mode)
	assert.ErrorContains(t, cfg.Validate(), "redisUrl")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Storage: StorageConfig{Mode: "local"},
			Cache:   CacheConfig{Mode: "memory"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"minio storage", func(c *Config) { c.Storage.Mode = "minio" }, ""},
		{"unknown storage", func(c *Config) { c.Storage.Mode = "ftp" }, "storage mode"},
		{"unknown cache", func(c *Config) { c.Cache.Mode = "memcached" }, "cache mode"},
		{"redis with url", func(c *Config) { c.Cache.Mode, c.Cache.RedisURL = "redis", "redis://localhost:6379/0" }, ""},
		{"events without url", func(c *Config) { c.Events.Enabled = true }, "amqpUrl"},
		{"negative page chars", func(c *Config) { c.Extraction.MinPageChars = -1 }, "minPageChars"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

type mapSecrets map[string]string

func (m mapSecrets) GetSecretOrEnv(_ context.Context, secretName, _ string) (string, error) {
	if v, ok := m[secretName]; ok {
		return v, nil
	}
	return "", errors.New("secret not found")
}

func TestApplySecrets_KeepsExistingValuesForMissingSecrets(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{Host: "localhost", Password: "file-password"},
		ApiKey:   ApiKeyConfig{Value: "file-key"},
	}

	err := applySecrets(context.Background(), cfg, mapSecrets{
		"POSTGRES-MAIN-HOST": "db.internal",
		"admin-api-key":      "vault-key",
		"redis-url":          "",
	})
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "file-password", cfg.Database.Password)
	assert.Equal(t, "vault-key", cfg.ApiKey.Value)
	assert.Empty(t, cfg.Cache.RedisURL)
}
