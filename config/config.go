// Package config loads server settings from an optional YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverS3       = "s3"
)

// StorageSection selects and configures the durable key-value backend.
type StorageSection struct {
	Driver      string `yaml:"driver"`
	Key         string `yaml:"key"`
	Path        string `yaml:"path"`
	DatabaseURL string `yaml:"database_url"`
	S3Bucket    string `yaml:"s3_bucket"`
	S3Region    string `yaml:"s3_region"`
	S3Prefix    string `yaml:"s3_prefix"`
}

type ImagesSection struct {
	// FetchTimeout bounds each remote image download, in Go duration format ("10s").
	FetchTimeout string `yaml:"fetch_timeout"`
}

type Config struct {
	ListenAddr      string         `yaml:"listen_addr"`
	BaseURL         string         `yaml:"base_url"`
	DevelopmentMode bool           `yaml:"development_mode"`
	Storage         StorageSection `yaml:"storage"`
	Images          ImagesSection  `yaml:"images"`
}

func Default() Config {
	return Config{
		ListenAddr: ":8080",
		Storage: StorageSection{
			Driver: DriverFile,
			Key:    "flashcards",
			Path:   "./data",
		},
		Images: ImagesSection{FetchTimeout: "10s"},
	}
}

// Load starts from Default, applies the YAML file at path when it exists and
// then the environment. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return cfg, fmt.Errorf("config file %s not found", path)
		case err != nil:
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	setString("LISTEN_ADDR", &cfg.ListenAddr)
	setString("BASE_URL", &cfg.BaseURL)
	setString("STORAGE_DRIVER", &cfg.Storage.Driver)
	setString("STORAGE_KEY", &cfg.Storage.Key)
	setString("STORAGE_PATH", &cfg.Storage.Path)
	setString("DATABASE_URL", &cfg.Storage.DatabaseURL)
	setString("S3_BUCKET", &cfg.Storage.S3Bucket)
	setString("AWS_REGION", &cfg.Storage.S3Region)
	setString("S3_PREFIX", &cfg.Storage.S3Prefix)
	setString("IMAGE_FETCH_TIMEOUT", &cfg.Images.FetchTimeout)

	if v, ok := os.LookupEnv("DEVELOPMENT_MODE"); ok && v != "" {
		dev, err := parseBool(v)
		if err != nil {
			return fmt.Errorf("DEVELOPMENT_MODE: %w", err)
		}
		cfg.DevelopmentMode = dev
	}
	return nil
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true, nil
	case "0", "false", "no":
		return false, nil
	}
	return strconv.ParseBool(v)
}

// Validate rejects unknown drivers and missing driver settings.
func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr must not be empty")
	}
	if c.Storage.Key == "" {
		return fmt.Errorf("storage.key must not be empty")
	}
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverFile:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the file driver")
		}
	case DriverPostgres:
		if c.Storage.DatabaseURL == "" {
			return fmt.Errorf("storage.database_url is required for the postgres driver")
		}
	case DriverS3:
		if c.Storage.S3Bucket == "" {
			return fmt.Errorf("storage.s3_bucket is required for the s3 driver")
		}
		if c.Storage.S3Region == "" {
			return fmt.Errorf("storage.s3_region is required for the s3 driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if _, err := c.FetchTimeout(); err != nil {
		return err
	}
	return nil
}

func (c Config) FetchTimeout() (time.Duration, error) {
	if c.Images.FetchTimeout == "" {
		return 10 * time.Second, nil
	}
	d, err := time.ParseDuration(c.Images.FetchTimeout)
	if err != nil {
		return 0, fmt.Errorf("images.fetch_timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("images.fetch_timeout must be positive")
	}
	return d, nil
}
