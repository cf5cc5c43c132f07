package probelsh

import (
	"fmt"

	"github.com/hupe1980/probelsh/distance"
	"github.com/hupe1980/probelsh/lsh"
	"github.com/hupe1980/probelsh/normal"
	"github.com/hupe1980/probelsh/resource"
)

// Options contains configuration options for an Index.
type Options struct {
	// NumTables is the number of independent hash tables.
	// If 0, it is derived from ExpectedSize with lsh.SizesFromProbs.
	NumTables int

	// Bits is the signature width of every table, 1..64.
	// If 0, it is derived from ExpectedSize with lsh.SizesFromProbs.
	Bits int

	// ExpectedSize is the anticipated corpus size. It is required when
	// NumTables or Bits is 0.
	ExpectedSize int

	// NearCollision and FarCollision are the per-bit collision probabilities
	// of a near and a far pair used to derive NumTables and Bits.
	NearCollision float64
	FarCollision  float64

	// ProbesPerTable caps the probe sequence of each table.
	// If 0, a table may be probed until its 2^Bits patterns are exhausted;
	// maxProbes still bounds the whole query.
	ProbesPerTable int

	// Seed drives the projection banks. Table t draws its hyperplanes from
	// PCG stream t of Seed.
	Seed uint64

	// Projection is the normal distribution of hyperplane components.
	Projection normal.Config

	// Banks replaces the random projection banks with fixed ones.
	// NumTables and Bits are taken from it.
	Banks []*lsh.ProjectionBank

	// Metric selects the exact similarity used to rank candidates.
	Metric distance.Metric

	// Similarity ranks candidates with a caller-supplied comparison. Higher
	// scores rank first. If non-nil, it overrides Metric.
	Similarity distance.Similarity

	// Transform maps vectors before hashing. lsh.TransformSimple hashes
	// SimpleLSH-lifted vectors for maximum inner product search; banks then
	// have one dimension more than the index. Candidates are still ranked on
	// the original vectors.
	Transform lsh.Transform

	// Partitions is the number of norm ranges used by lsh.TransformSimple.
	// If 0, defaults to 1 (plain SimpleLSH).
	Partitions int

	// Strategy selects the multi-probe order.
	Strategy lsh.Strategy

	// MinCandidates stops probing once this many distinct candidates are
	// collected. If 0, probing runs until maxProbes or exhaustion.
	MinCandidates int

	// Workers bounds build and scoring parallelism. If 0, defaults to GOMAXPROCS.
	Workers int

	// ParallelScoreThreshold is the candidate count from which scoring is
	// split across workers.
	ParallelScoreThreshold int

	// Resources optionally shares worker slots and memory limits between indexes.
	Resources *resource.Controller

	// Logger receives fill and probe logs. If nil, logging is disabled.
	Logger *Logger

	// MetricsCollector receives fill and probe metrics. If nil, metrics are disabled.
	MetricsCollector MetricsCollector
}

// DefaultOptions contains the default configuration options for an Index.
var DefaultOptions = Options{
	NumTables:              8,
	Bits:                   16,
	NearCollision:          0.9,
	FarCollision:           0.5,
	Projection:             normal.DefaultConfig,
	Metric:                 distance.MetricDot,
	Strategy:               lsh.StrategyMargin,
	ParallelScoreThreshold: 4096,
}

// Validate reports the first invalid option.
func (o *Options) Validate() error {
	switch {
	case o.NumTables < 0:
		return invalidArgument("num tables %d", o.NumTables)
	case o.Bits < 0 || o.Bits > lsh.MaxBits:
		return invalidArgument("bits %d outside [1, %d]", o.Bits, lsh.MaxBits)
	case o.ExpectedSize < 0:
		return invalidArgument("expected size %d", o.ExpectedSize)
	case (o.NumTables == 0 || o.Bits == 0) && len(o.Banks) == 0 && o.ExpectedSize < 1:
		return invalidArgument("expected size required to derive tables and bits")
	case o.ProbesPerTable < 0:
		return invalidArgument("probes per table %d", o.ProbesPerTable)
	case o.MinCandidates < 0:
		return invalidArgument("min candidates %d", o.MinCandidates)
	case o.Workers < 0:
		return invalidArgument("workers %d", o.Workers)
	case o.Transform != lsh.TransformNone && o.Transform != lsh.TransformSimple:
		return invalidArgument("transform %v", o.Transform)
	case o.Partitions < 0:
		return invalidArgument("partitions %d", o.Partitions)
	case o.ParallelScoreThreshold < 0:
		return invalidArgument("parallel score threshold %d", o.ParallelScoreThreshold)
	case o.Projection.StdDev < 0:
		return invalidArgument("projection stddev %v", o.Projection.StdDev)
	}

	for i, b := range o.Banks {
		if b == nil {
			return invalidArgument("bank %d is nil", i)
		}
	}

	if o.Similarity != nil {
		return nil
	}
	if _, err := distance.Provider(o.Metric); err != nil {
		return translateError(fmt.Errorf("%w: %w", ErrInvalidArgument, err))
	}
	return nil
}
