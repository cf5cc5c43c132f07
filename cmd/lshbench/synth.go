package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"text/tabwriter"
	"time"

	"github.com/hupe1980/probelsh"
	"github.com/hupe1980/probelsh/dataset"
	"github.com/hupe1980/probelsh/distance"
	"github.com/hupe1980/probelsh/lsh"
	"github.com/hupe1980/probelsh/stats"
	"github.com/spf13/cobra"
)

func newSynthCmd(a *app) *cobra.Command {
	def := DefaultConfig()
	var quiet bool

	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Measure recall on Gaussian synthetic data for k = 1..k-max",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSynth(cmd.Context(), a, cmd.OutOrStdout(), quiet)
		},
	}

	f := cmd.Flags()
	f.Int("vectors", def.Bench.Vectors, "corpus size")
	f.Int("dim", def.Bench.Dim, "vector dimension")
	f.Int("queries", def.Bench.Queries, "number of unit-norm queries")
	f.Int("k-max", def.Bench.KMax, "largest k to evaluate")
	f.BoolVarP(&quiet, "quiet", "q", false, "print only the per-k summary")
	return cmd
}

func runSynth(ctx context.Context, a *app, out io.Writer, quiet bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := a.cfg
	if cfg.Bench.Vectors < 1 || cfg.Bench.Dim < 1 || cfg.Bench.Queries < 1 || cfg.Bench.KMax < 1 {
		return errors.New("vectors, dim, queries and k-max must be positive")
	}

	corpus := dataset.Synthetic(cfg.Bench.Vectors, cfg.Bench.Dim, cfg.Index.Seed)
	queries := dataset.SyntheticQueries(cfg.Bench.Queries, cfg.Bench.Dim, cfg.Index.Seed)

	optFn, err := cfg.IndexOptions(cfg.Resources(), a.logger, nil)
	if err != nil {
		return err
	}
	idx, err := probelsh.New(cfg.Bench.Dim, optFn)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := idx.Fill(ctx, corpus, false); err != nil {
		return err
	}
	a.logger.InfoContext(ctx, "index built",
		"vectors", len(corpus),
		"tables", idx.NumTables(),
		"bits", idx.Bits(),
		"elapsed", time.Since(start),
	)

	sim, err := distance.Provider(mustMetric(cfg.Index.Metric))
	if err != nil {
		return err
	}

	truth := make([][]uint32, len(queries))
	for i, q := range queries {
		truth[i] = exactTopK(corpus, q, cfg.Bench.KMax, sim)
	}

	tracker := stats.NewTracker()
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "k\tmean_recall\tmean_candidates")

	for k := 1; k <= cfg.Bench.KMax; k++ {
		recalls := make([]float64, 0, len(queries))
		candidates := make([]int, 0, len(queries))

		for i, q := range queries {
			res, err := idx.KProbe(ctx, k, q, cfg.Bench.MaxProbes)
			if err != nil {
				return err
			}

			want := truth[i][:min(k, len(truth[i]))]
			recall, err := stats.Recall(vectorsOf(corpus, want), res.Vectors())
			if err != nil {
				return err
			}
			recalls = append(recalls, recall)
			candidates = append(candidates, res.Stats.Candidates)
			tracker.Observe(res.Stats.Probes, res.Stats.Candidates, res.IDs()...)

			if !quiet {
				scores := make([]float32, len(res.Neighbors))
				for j, n := range res.Neighbors {
					scores[j] = n.Score
				}
				fmt.Fprintf(out, "k=%d query=%d scores=%v recall=%.3f\n", k, i, scores, recall)
			}
		}

		meanRecall, err := stats.Mean(recalls)
		if err != nil {
			return err
		}
		meanCandidates, err := stats.Mean(candidates)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%d\t%.4f\t%.1f\n", k, meanRecall, meanCandidates)
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	bit, anyTable, err := collisionEstimate(cfg, corpus, queries, truth, idx.NumTables(), idx.Bits())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "top1 collision: per_bit=%.4f any_table=%.4f\n", bit, anyTable)

	return printSummary(out, tracker)
}

// collisionEstimate averages, over queries, the chance that the exact top-1
// shares one hyperplane bit with the query and the chance that it shares a
// whole signature in at least one table. Angles are taken in hash space, so
// the lifted vectors are used under --transform simple.
func collisionEstimate(cfg Config, corpus, queries [][]float32, truth [][]uint32, tables, bits int) (float64, float64, error) {
	transform, err := lsh.ParseTransform(cfg.Index.Transform)
	if err != nil {
		return 0, 0, err
	}

	var lift *lsh.SimpleLSH
	if transform == lsh.TransformSimple {
		if lift, err = lsh.FitNormRanging(cfg.Bench.Dim, corpus, max(cfg.Index.Partitions, 1)); err != nil {
			return 0, 0, err
		}
	}

	perBit := make([]float64, 0, len(queries))
	anyTable := make([]float64, 0, len(queries))
	for i, q := range queries {
		if len(truth[i]) == 0 {
			continue
		}
		x := corpus[truth[i][0]]
		if lift != nil {
			if x, err = lift.Vector(x); err != nil {
				return 0, 0, err
			}
			if q, err = lift.Query(q); err != nil {
				return 0, 0, err
			}
		}

		p := lsh.CollisionProbability(float64(distance.Cosine(q, x)))
		perBit = append(perBit, p)
		anyTable = append(anyTable, 1-math.Pow(1-math.Pow(p, float64(bits)), float64(tables)))
	}

	bit, err := stats.Mean(perBit)
	if err != nil {
		return 0, 0, err
	}
	all, err := stats.Mean(anyTable)
	if err != nil {
		return 0, 0, err
	}
	return bit, all, nil
}

func printSummary(out io.Writer, tracker *stats.Tracker) error {
	s, err := tracker.Summary()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "queries=%d probes=%.2f±%.2f candidates(mean=%.1f median=%.1f max=%d) touched=%d\n",
		s.Queries, s.MeanProbes, s.StdevProbes, s.MeanCandidates, s.MedianCandidates, s.MaxCandidates, s.Touched)
	return nil
}

// mustMetric parses a metric already checked by Config.Validate.
func mustMetric(name string) distance.Metric {
	m, err := distance.ParseMetric(name)
	if err != nil {
		panic(err)
	}
	return m
}
