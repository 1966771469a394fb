package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"LISTEN_ADDR", "BASE_URL", "STORAGE_DRIVER", "STORAGE_KEY", "STORAGE_PATH",
		"DATABASE_URL", "S3_BUCKET", "AWS_REGION", "S3_PREFIX", "IMAGE_FETCH_TIMEOUT",
		"DEVELOPMENT_MODE",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, DriverFile, cfg.Storage.Driver)
	assert.Equal(t, "flashcards", cfg.Storage.Key)
	assert.False(t, cfg.DevelopmentMode)

	d, err := cfg.FetchTimeout()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, d)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "card-crafter.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen_addr: ":9000"
base_url: "https://cards.example.org"
storage:
  driver: postgres
  database_url: "postgres://localhost/cards"
images:
  fetch_timeout: "3s"
`), 0o600))

	t.Setenv("LISTEN_ADDR", ":9100")
	t.Setenv("DEVELOPMENT_MODE", "yes")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9100", cfg.ListenAddr)
	assert.Equal(t, "https://cards.example.org", cfg.BaseURL)
	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, "postgres://localhost/cards", cfg.Storage.DatabaseURL)
	assert.Equal(t, "flashcards", cfg.Storage.Key, "keys not in the file keep their default")
	assert.True(t, cfg.DevelopmentMode)

	d, err := cfg.FetchTimeout()
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, d)
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestLoadBadDevelopmentMode(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEVELOPMENT_MODE", "maybe")
	_, err := Load("")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "memory", mutate: func(c *Config) { c.Storage.Driver = DriverMemory; c.Storage.Path = "" }},
		{name: "unknown driver", mutate: func(c *Config) { c.Storage.Driver = "redis" }, wantErr: "unknown storage driver"},
		{name: "file without path", mutate: func(c *Config) { c.Storage.Path = "" }, wantErr: "storage.path"},
		{name: "postgres without url", mutate: func(c *Config) { c.Storage.Driver = DriverPostgres }, wantErr: "database_url"},
		{name: "s3 without bucket", mutate: func(c *Config) { c.Storage.Driver = DriverS3 }, wantErr: "s3_bucket"},
		{
			name: "s3 without region",
			mutate: func(c *Config) {
				c.Storage.Driver = DriverS3
				c.Storage.S3Bucket = "cards"
			},
			wantErr: "s3_region",
		},
		{name: "empty key", mutate: func(c *Config) { c.Storage.Key = "" }, wantErr: "storage.key"},
		{name: "bad timeout", mutate: func(c *Config) { c.Images.FetchTimeout = "soon" }, wantErr: "fetch_timeout"},
		{name: "negative timeout", mutate: func(c *Config) { c.Images.FetchTimeout = "-1s" }, wantErr: "positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
