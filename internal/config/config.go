// Package config loads application configuration from a YAML file with
// environment variable overrides for deployment-sensitive values.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the full application configuration.
type Config struct {
	// LogLevel controls logging verbosity: "debug", "info", "warn", "error".
	LogLevel string `yaml:"log_level"`

	// HTTPPort is the port the API server listens on.
	HTTPPort int `yaml:"http_port"`

	Storage   StorageConfig   `yaml:"storage"`
	Queue     QueueConfig     `yaml:"queue"`
	Warehouse WarehouseConfig `yaml:"warehouse"`
}

// StorageConfig selects and configures the log store backend.
type StorageConfig struct {
	// Backend is either "local" or "gcs".
	Backend string `yaml:"backend"`

	// DataDir is the root directory for the local backend.
	DataDir string `yaml:"data_dir"`

	// Bucket is the GCS bucket name for the gcs backend.
	Bucket string `yaml:"bucket"`
}

// QueueConfig configures the in-memory job queue.
type QueueConfig struct {
	Workers    int `yaml:"workers"`
	BufferSize int `yaml:"buffer_size"`
	MaxRetries int `yaml:"max_retries"`
}

// WarehouseConfig configures the optional BigQuery sink.
type WarehouseConfig struct {
	Enabled   bool   `yaml:"enabled"`
	ProjectID string `yaml:"project_id"`
	Dataset   string `yaml:"dataset"`
	Table     string `yaml:"table"`
}

// Load reads configuration from path. A missing file is not an error;
// defaults and environment overrides still apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.HTTPPort == 0 {
		cfg.HTTPPort = 8080
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "local"
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = "./data"
	}
	if cfg.Queue.Workers == 0 {
		cfg.Queue.Workers = 4
	}
	if cfg.Queue.BufferSize == 0 {
		cfg.Queue.BufferSize = 100
	}
	if cfg.Queue.MaxRetries == 0 {
		cfg.Queue.MaxRetries = 3
	}
	if cfg.Warehouse.Dataset == "" {
		cfg.Warehouse.Dataset = "txlogs"
	}
	if cfg.Warehouse.Table == "" {
		cfg.Warehouse.Table = "transactions"
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TXLOGS_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.HTTPPort = port
		}
	}
	if v := os.Getenv("TXLOGS_STORAGE_BACKEND"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv("TXLOGS_DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("TXLOGS_GCS_BUCKET"); v != "" {
		cfg.Storage.Bucket = v
	}
	if v := os.Getenv("GOOGLE_CLOUD_PROJECT"); v != "" {
		cfg.Warehouse.ProjectID = v
	}
}

func validate(cfg *Config) error {
	switch cfg.Storage.Backend {
	case "local":
		// data dir is created lazily by the store
	case "gcs":
		if cfg.Storage.Bucket == "" {
			return fmt.Errorf("storage backend gcs requires a bucket name")
		}
	default:
		return fmt.Errorf("unknown storage backend: %q", cfg.Storage.Backend)
	}

	if cfg.Warehouse.Enabled && cfg.Warehouse.ProjectID == "" {
		return fmt.Errorf("warehouse sink requires a project id")
	}

	return nil
}
