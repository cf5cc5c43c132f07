package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/hupe1980/probelsh"
	"github.com/hupe1980/probelsh/dataset"
	"github.com/hupe1980/probelsh/distance"
	"github.com/hupe1980/probelsh/lsh"
	"github.com/hupe1980/probelsh/resource"
	"gopkg.in/yaml.v3"
)

// Config is the lshbench configuration file.
type Config struct {
	Index  IndexConfig  `yaml:"index"`
	Bench  BenchConfig  `yaml:"bench"`
	Remote RemoteConfig `yaml:"remote"`
	Log    LogConfig    `yaml:"log"`
}

// IndexConfig mirrors probelsh.Options.
type IndexConfig struct {
	Tables         int    `yaml:"tables"`
	Bits           int    `yaml:"bits"`
	Seed           uint64 `yaml:"seed"`
	Metric         string `yaml:"metric"`
	Strategy       string `yaml:"strategy"`
	Transform      string `yaml:"transform"`
	Partitions     int    `yaml:"partitions"`
	ProbesPerTable int    `yaml:"probes_per_table"`
	MinCandidates  int    `yaml:"min_candidates"`
	Workers        int    `yaml:"workers"`
	MemoryLimit    int64  `yaml:"memory_limit_bytes"`
}

// BenchConfig sizes a benchmark run.
type BenchConfig struct {
	Vectors   int     `yaml:"vectors"`
	Dim       int     `yaml:"dim"`
	Queries   int     `yaml:"queries"`
	KMax      int     `yaml:"k_max"`
	K         int     `yaml:"k"`
	MaxProbes int     `yaml:"max_probes"`
	QPS       float64 `yaml:"qps"`
	IOLimit   int64   `yaml:"io_limit_bytes_per_sec"`
}

// RemoteConfig holds object store settings for dataset locations.
type RemoteConfig struct {
	AWSRegion      string `yaml:"aws_region"`
	MinioEndpoint  string `yaml:"minio_endpoint"`
	MinioAccessKey string `yaml:"minio_access_key"`
	MinioSecretKey string `yaml:"minio_secret_key"`
	MinioSecure    bool   `yaml:"minio_secure"`
}

// LogConfig selects the log handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig reproduces the synthetic k-probe experiment: 2^16 Gaussian
// vectors of dimension 30, 200 unit queries, 16 tables of 32 bits, k up to 20
// and 20 probes per query.
func DefaultConfig() Config {
	return Config{
		Index: IndexConfig{
			Tables:   16,
			Bits:     32,
			Seed:     42,
			Metric:   "dot",
			Strategy:  "margin",
			Transform: "none",
		},
		Bench: BenchConfig{
			Vectors:   1 << 16,
			Dim:       30,
			Queries:   200,
			KMax:      20,
			K:         10,
			MaxProbes: 20,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig reads a YAML file over DefaultConfig. An empty path returns the
// defaults. Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the fields every command needs.
func (c *Config) Validate() error {
	if _, err := distance.ParseMetric(c.Index.Metric); err != nil {
		return err
	}
	if _, err := lsh.ParseStrategy(c.Index.Strategy); err != nil {
		return err
	}
	if _, err := lsh.ParseTransform(c.Index.Transform); err != nil {
		return err
	}
	if c.Index.Partitions < 0 {
		return fmt.Errorf("partitions must not be negative, got %d", c.Index.Partitions)
	}
	if c.Bench.MaxProbes < 1 {
		return fmt.Errorf("max_probes must be at least 1, got %d", c.Bench.MaxProbes)
	}
	if c.Bench.QPS < 0 {
		return fmt.Errorf("qps must not be negative, got %v", c.Bench.QPS)
	}
	return nil
}

// Resources builds the controller for query pacing, dataset IO and memory.
func (c *Config) Resources() *resource.Controller {
	return resource.NewController(resource.Config{
		MaxWorkers:         int64(c.Index.Workers),
		MemoryLimitBytes:   c.Index.MemoryLimit,
		QueriesPerSec:      c.Bench.QPS,
		IOLimitBytesPerSec: c.Bench.IOLimit,
	})
}

// IndexOptions returns the probelsh option function for this configuration.
func (c *Config) IndexOptions(rc *resource.Controller, logger *probelsh.Logger, mc probelsh.MetricsCollector) (func(o *probelsh.Options), error) {
	metric, err := distance.ParseMetric(c.Index.Metric)
	if err != nil {
		return nil, err
	}
	strategy, err := lsh.ParseStrategy(c.Index.Strategy)
	if err != nil {
		return nil, err
	}
	transform, err := lsh.ParseTransform(c.Index.Transform)
	if err != nil {
		return nil, err
	}

	return func(o *probelsh.Options) {
		o.NumTables = c.Index.Tables
		o.Bits = c.Index.Bits
		o.ExpectedSize = c.Bench.Vectors
		o.Seed = c.Index.Seed
		o.Metric = metric
		o.Strategy = strategy
		o.Transform = transform
		o.Partitions = c.Index.Partitions
		o.ProbesPerTable = c.Index.ProbesPerTable
		o.MinCandidates = c.Index.MinCandidates
		o.Workers = c.Index.Workers
		o.Resources = rc
		o.Logger = logger
		o.MetricsCollector = mc
	}, nil
}

// RemoteOptions converts the remote section for dataset.Resolve.
func (c *Config) RemoteOptions() dataset.RemoteConfig {
	return dataset.RemoteConfig{
		AWSRegion:      c.Remote.AWSRegion,
		MinioEndpoint:  c.Remote.MinioEndpoint,
		MinioAccessKey: c.Remote.MinioAccessKey,
		MinioSecretKey: c.Remote.MinioSecretKey,
		MinioSecure:    c.Remote.MinioSecure,
	}
}

// NewLogger builds the logger described by the log section, writing to w.
func (c *Config) NewLogger(w io.Writer) (*probelsh.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(c.Log.Format) {
	case "json":
		return probelsh.NewLogger(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return probelsh.NewLogger(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", c.Log.Format)
	}
}
