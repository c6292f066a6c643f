// Package config loads and validates the application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/stratec/assetsearch/internal/errors"
	"github.com/stratec/assetsearch/internal/logging"
)

// Config is the full application configuration.
type Config struct {
	Index   IndexConfig    `yaml:"index"`
	Queue   QueueConfig    `yaml:"queue"`
	Reindex ReindexConfig  `yaml:"reindex"`
	Server  ServerConfig   `yaml:"server"`
	Data    DataConfig     `yaml:"data"`
	Logging logging.Config `yaml:"logging"`
}

// IndexConfig controls the document index store.
type IndexConfig struct {
	// Dir is the index root directory.
	Dir string `yaml:"dir"`
	// Backend selects the index implementation: "bleve" or "sqlite".
	Backend string `yaml:"backend"`
}

// QueueConfig controls the indexing dispatcher.
type QueueConfig struct {
	// Size is the bounded job buffer; producers block when it fills.
	Size int `yaml:"size"`
}

// ReindexConfig controls scheduled full rebuilds.
type ReindexConfig struct {
	// Interval between scheduled runs. Zero disables the schedule.
	Interval time.Duration `yaml:"interval"`
}

// ServerConfig controls the admin HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DataConfig points at the relational system-of-record.
type DataConfig struct {
	// SQLitePath is the entity database file.
	SQLitePath string `yaml:"sqlite_path"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	root := filepath.Join(home, ".assetsearch")

	return &Config{
		Index: IndexConfig{
			Dir:     filepath.Join(root, "index"),
			Backend: "bleve",
		},
		Queue: QueueConfig{
			Size: 1024,
		},
		Reindex: ReindexConfig{
			Interval: 0,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8700",
		},
		Data: DataConfig{
			SQLitePath: filepath.Join(root, "entities.db"),
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load reads the configuration at path, layered over the defaults. A
// missing file with an explicit path is an error; an empty path quietly
// yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.New(apperrors.ErrCodeConfigNotFound,
				fmt.Sprintf("config file not found: %s", path), err)
		}
		return nil, apperrors.Wrap(apperrors.ErrCodeConfigInvalid, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, apperrors.New(apperrors.ErrCodeConfigInvalid,
			fmt.Sprintf("invalid config file: %s", path), err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the process cannot run with.
func (c *Config) Validate() error {
	if c.Index.Dir == "" {
		return apperrors.ConfigError("index.dir must not be empty", nil)
	}
	switch c.Index.Backend {
	case "", "bleve", "sqlite":
	default:
		return apperrors.ConfigError(fmt.Sprintf("unknown index.backend %q", c.Index.Backend), nil)
	}
	if c.Queue.Size <= 0 {
		return apperrors.ConfigError("queue.size must be positive", nil)
	}
	if c.Reindex.Interval < 0 {
		return apperrors.ConfigError("reindex.interval must not be negative", nil)
	}
	if c.Server.Addr == "" {
		return apperrors.ConfigError("server.addr must not be empty", nil)
	}
	return nil
}
