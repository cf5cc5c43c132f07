package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/hupe1980/probelsh"
	"github.com/hupe1980/probelsh/dataset"
	"github.com/hupe1980/probelsh/distance"
	"github.com/hupe1980/probelsh/prommetrics"
	"github.com/hupe1980/probelsh/resource"
	"github.com/hupe1980/probelsh/stats"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

type datasetFlags struct {
	base        string
	queries     string
	truth       string
	metricsAddr string
}

func newDatasetCmd(a *app) *cobra.Command {
	def := DefaultConfig()
	var df datasetFlags

	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Measure recall on an fvecs dataset from disk, S3 or MinIO",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDataset(cmd.Context(), a, cmd.OutOrStdout(), df)
		},
	}

	f := cmd.Flags()
	f.StringVar(&df.base, "base", "", "corpus location (path, s3://bucket/key or minio://bucket/key)")
	f.StringVar(&df.queries, "queries", "", "query vectors location")
	f.StringVar(&df.truth, "truth", "", "optional .ivecs ground truth location; computed exactly if empty")
	f.StringVar(&df.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")
	f.Int("k", def.Bench.K, "neighbors per query")
	f.Float64("qps", def.Bench.QPS, "query rate limit (0 disables)")
	f.Int64("io-limit", def.Bench.IOLimit, "dataset read limit in bytes per second (0 disables)")
	_ = cmd.MarkFlagRequired("base")
	_ = cmd.MarkFlagRequired("queries")
	return cmd
}

func runDataset(ctx context.Context, a *app, out io.Writer, df datasetFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := a.cfg
	if cfg.Bench.K < 1 {
		return fmt.Errorf("k must be positive, got %d", cfg.Bench.K)
	}

	rc := cfg.Resources()

	base, err := load(ctx, df.base, cfg.RemoteOptions(), rc)
	if err != nil {
		return fmt.Errorf("base: %w", err)
	}
	queries, err := load(ctx, df.queries, cfg.RemoteOptions(), rc)
	if err != nil {
		return fmt.Errorf("queries: %w", err)
	}
	if len(base) == 0 || len(queries) == 0 {
		return errors.New("base and queries must not be empty")
	}
	dim := len(base[0])

	var truth [][]uint32
	if df.truth != "" {
		src, name, err := dataset.Resolve(ctx, df.truth, cfg.RemoteOptions())
		if err != nil {
			return err
		}
		if truth, err = dataset.LoadNeighbors(ctx, src, name, rc); err != nil {
			return fmt.Errorf("truth: %w", err)
		}
		if len(truth) < len(queries) {
			return fmt.Errorf("truth has %d rows for %d queries", len(truth), len(queries))
		}
	}

	var mc probelsh.MetricsCollector
	if df.metricsAddr != "" {
		reg := prometheus.NewRegistry()
		pc, err := prommetrics.New(reg)
		if err != nil {
			return err
		}
		mc = pc

		stop, err := serveMetrics(df.metricsAddr, reg, a.logger)
		if err != nil {
			return err
		}
		defer stop()
	}

	cfg.Bench.Vectors = len(base)
	optFn, err := cfg.IndexOptions(rc, a.logger, mc)
	if err != nil {
		return err
	}
	idx, err := probelsh.New(dim, optFn)
	if err != nil {
		return err
	}
	if err := idx.Fill(ctx, base, false); err != nil {
		return err
	}

	sim, err := distance.Provider(mustMetric(cfg.Index.Metric))
	if err != nil {
		return err
	}

	tracker := stats.NewTracker()
	recalls := make([]float64, 0, len(queries))
	start := time.Now()

	for i, q := range queries {
		if err := rc.WaitQuery(ctx); err != nil {
			return err
		}

		res, err := idx.KProbe(ctx, cfg.Bench.K, q, cfg.Bench.MaxProbes)
		if err != nil {
			return fmt.Errorf("query %d: %w", i, err)
		}
		tracker.Observe(res.Stats.Probes, res.Stats.Candidates, res.IDs()...)

		var want []uint32
		if truth != nil {
			want = truth[i][:min(cfg.Bench.K, len(truth[i]))]
		} else {
			want = exactTopK(base, q, cfg.Bench.K, sim)
		}
		recall, err := stats.RecallIDs(want, res.IDs())
		if err != nil {
			return fmt.Errorf("query %d: %w", i, err)
		}
		recalls = append(recalls, recall)
	}

	elapsed := time.Since(start)
	meanRecall, err := stats.Mean(recalls)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "vectors=%d dim=%d tables=%d bits=%d k=%d max_probes=%d\n",
		len(base), dim, idx.NumTables(), idx.Bits(), cfg.Bench.K, cfg.Bench.MaxProbes)
	fmt.Fprintf(out, "recall@%d=%.4f qps=%.1f\n", cfg.Bench.K, meanRecall, float64(len(queries))/elapsed.Seconds())
	return printSummary(out, tracker)
}

func load(ctx context.Context, loc string, remote dataset.RemoteConfig, rc *resource.Controller) ([][]float32, error) {
	src, name, err := dataset.Resolve(ctx, loc, remote)
	if err != nil {
		return nil, err
	}
	return dataset.LoadVectors(ctx, src, name, rc)
}

// serveMetrics exposes reg on addr until the returned stop function runs.
func serveMetrics(addr string, reg *prometheus.Registry, logger *probelsh.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", ln.Addr().String())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
