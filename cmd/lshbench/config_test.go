package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/probelsh"
	"github.com/hupe1980/probelsh/distance"
	"github.com/hupe1980/probelsh/lsh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lshbench.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
		assert.Equal(t, 1<<16, cfg.Bench.Vectors)
		assert.Equal(t, 30, cfg.Bench.Dim)
		assert.Equal(t, 16, cfg.Index.Tables)
		assert.Equal(t, 32, cfg.Index.Bits)
		assert.Equal(t, "none", cfg.Index.Transform)
	})

	t.Run("Overlay", func(t *testing.T) {
		path := writeConfig(t, `
index:
  tables: 4
  strategy: hamming
  transform: simple
  partitions: 4
bench:
  dim: 12
  qps: 50
remote:
  minio_endpoint: localhost:9000
log:
  format: json
`)
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 4, cfg.Index.Tables)
		assert.Equal(t, 32, cfg.Index.Bits)
		assert.Equal(t, "hamming", cfg.Index.Strategy)
		assert.Equal(t, "simple", cfg.Index.Transform)
		assert.Equal(t, 4, cfg.Index.Partitions)
		assert.Equal(t, 12, cfg.Bench.Dim)
		assert.Equal(t, 50.0, cfg.Bench.QPS)
		assert.Equal(t, "localhost:9000", cfg.RemoteOptions().MinioEndpoint)
		assert.Equal(t, "json", cfg.Log.Format)
	})

	t.Run("Empty", func(t *testing.T) {
		cfg, err := LoadConfig(writeConfig(t, ""))
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("UnknownKey", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "index:\n  tabels: 4\n"))
		assert.Error(t, err)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"Metric", func(c *Config) { c.Index.Metric = "manhattan" }},
		{"Strategy", func(c *Config) { c.Index.Strategy = "random" }},
		{"Transform", func(c *Config) { c.Index.Transform = "cubic" }},
		{"Partitions", func(c *Config) { c.Index.Partitions = -1 }},
		{"MaxProbes", func(c *Config) { c.Bench.MaxProbes = 0 }},
		{"QPS", func(c *Config) { c.Bench.QPS = -1 }},
	}

	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestConfigIndexOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Index.Metric = "cosine"
	cfg.Index.Strategy = "hamming"
	cfg.Index.MinCandidates = 7
	cfg.Index.Transform = "simple"
	cfg.Index.Partitions = 4

	rc := cfg.Resources()
	optFn, err := cfg.IndexOptions(rc, probelsh.NoopLogger(), nil)
	require.NoError(t, err)

	opts := probelsh.DefaultOptions
	optFn(&opts)
	assert.Equal(t, 16, opts.NumTables)
	assert.Equal(t, 32, opts.Bits)
	assert.Equal(t, distance.MetricCosine, opts.Metric)
	assert.Equal(t, lsh.StrategyHamming, opts.Strategy)
	assert.Equal(t, 7, opts.MinCandidates)
	assert.Equal(t, lsh.TransformSimple, opts.Transform)
	assert.Equal(t, 4, opts.Partitions)
	assert.Same(t, rc, opts.Resources)
	require.NoError(t, opts.Validate())
}

func TestConfigNewLogger(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Log.Format = "json"
	cfg.Log.Level = "debug"

	var buf bytes.Buffer
	logger, err := cfg.NewLogger(&buf)
	require.NoError(t, err)
	logger.Debug("hello", "k", 3)
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	cfg.Log.Format = "xml"
	_, err = cfg.NewLogger(&buf)
	assert.Error(t, err)

	cfg.Log.Format = "text"
	cfg.Log.Level = "loud"
	_, err = cfg.NewLogger(&buf)
	assert.Error(t, err)
}
