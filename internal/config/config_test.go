package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/stratec/assetsearch/internal/errors"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "bleve", cfg.Index.Backend)
	assert.Equal(t, 1024, cfg.Queue.Size)
	assert.NotEmpty(t, cfg.Index.Dir)
	assert.NotEmpty(t, cfg.Server.Addr)
}

func TestLoad_EmptyPathYieldsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Server.Addr, cfg.Server.Addr)
}

func TestLoad_MissingFileIsAnError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeConfigNotFound, apperrors.CodeOf(err))
}

func TestLoad_LayersOverDefaults(t *testing.T) {
	// Given: a file overriding only a few keys
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
index:
  dir: /var/lib/assetsearch/index
  backend: sqlite
queue:
  size: 64
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	// Then: overridden keys apply, the rest keep their defaults
	assert.Equal(t, "/var/lib/assetsearch/index", cfg.Index.Dir)
	assert.Equal(t, "sqlite", cfg.Index.Backend)
	assert.Equal(t, 64, cfg.Queue.Size)
	assert.Equal(t, Default().Server.Addr, cfg.Server.Addr)
	assert.Equal(t, time.Duration(0), cfg.Reindex.Interval)
}

func TestLoad_MalformedYAMLRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("index: [unclosed"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeConfigInvalid, apperrors.CodeOf(err))
}

func TestValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty index dir", func(c *Config) { c.Index.Dir = "" }},
		{"unknown backend", func(c *Config) { c.Index.Backend = "elastic" }},
		{"non-positive queue", func(c *Config) { c.Queue.Size = 0 }},
		{"negative interval", func(c *Config) { c.Reindex.Interval = -time.Second }},
		{"empty server addr", func(c *Config) { c.Server.Addr = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
