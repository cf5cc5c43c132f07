package main

import (
	"github.com/hupe1980/probelsh"
	"github.com/spf13/cobra"
)

// app carries the resolved configuration into subcommands.
type app struct {
	configPath string
	cfg        Config
	logger     *probelsh.Logger
}

func newRootCmd(a *app) *cobra.Command {
	def := DefaultConfig()

	cmd := &cobra.Command{
		Use:           "lshbench",
		Short:         "Benchmark multi-probe LSH recall",
		Long:          `lshbench builds probelsh indexes and reports recall against exact search.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.resolve(cmd)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "YAML config file")
	pf.Int("tables", def.Index.Tables, "number of hash tables (0 derives from the corpus size)")
	pf.Int("bits", def.Index.Bits, "signature bits per table (0 derives from the corpus size)")
	pf.Uint64("seed", def.Index.Seed, "seed for projections and synthetic data")
	pf.String("metric", def.Index.Metric, "similarity: dot, cosine or l2")
	pf.String("strategy", def.Index.Strategy, "probe order: margin or hamming")
	pf.String("transform", def.Index.Transform, "hash space: none or simple (norm-ranged SimpleLSH)")
	pf.Int("partitions", def.Index.Partitions, "norm ranges for --transform simple (0 means 1)")
	pf.Int("max-probes", def.Bench.MaxProbes, "probe budget per query")
	pf.Int("min-candidates", def.Index.MinCandidates, "stop probing after this many candidates (0 disables)")
	pf.Int("workers", def.Index.Workers, "build and scoring workers (0 uses GOMAXPROCS)")
	pf.String("log-level", def.Log.Level, "log level: debug, info, warn or error")
	pf.String("log-format", def.Log.Format, "log format: text or json")

	cmd.AddCommand(newSynthCmd(a), newDatasetCmd(a), newGenCmd(a))
	return cmd
}

// resolve loads the config file and applies explicitly set flags on top.
func (a *app) resolve(cmd *cobra.Command) error {
	cfg, err := LoadConfig(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	set := func(name string, apply func()) {
		if flags.Lookup(name) != nil && flags.Changed(name) {
			apply()
		}
	}

	set("tables", func() { cfg.Index.Tables, _ = flags.GetInt("tables") })
	set("bits", func() { cfg.Index.Bits, _ = flags.GetInt("bits") })
	set("seed", func() { cfg.Index.Seed, _ = flags.GetUint64("seed") })
	set("metric", func() { cfg.Index.Metric, _ = flags.GetString("metric") })
	set("strategy", func() { cfg.Index.Strategy, _ = flags.GetString("strategy") })
	set("transform", func() { cfg.Index.Transform, _ = flags.GetString("transform") })
	set("partitions", func() { cfg.Index.Partitions, _ = flags.GetInt("partitions") })
	set("max-probes", func() { cfg.Bench.MaxProbes, _ = flags.GetInt("max-probes") })
	set("min-candidates", func() { cfg.Index.MinCandidates, _ = flags.GetInt("min-candidates") })
	set("workers", func() { cfg.Index.Workers, _ = flags.GetInt("workers") })
	set("log-level", func() { cfg.Log.Level, _ = flags.GetString("log-level") })
	set("log-format", func() { cfg.Log.Format, _ = flags.GetString("log-format") })

	set("vectors", func() { cfg.Bench.Vectors, _ = flags.GetInt("vectors") })
	set("dim", func() { cfg.Bench.Dim, _ = flags.GetInt("dim") })
	set("queries", func() { cfg.Bench.Queries, _ = flags.GetInt("queries") })
	set("k-max", func() { cfg.Bench.KMax, _ = flags.GetInt("k-max") })
	set("k", func() { cfg.Bench.K, _ = flags.GetInt("k") })
	set("qps", func() { cfg.Bench.QPS, _ = flags.GetFloat64("qps") })
	set("io-limit", func() { cfg.Bench.IOLimit, _ = flags.GetInt64("io-limit") })

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := cfg.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}
