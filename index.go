package probelsh

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/probelsh/distance"
	"github.com/hupe1980/probelsh/internal/conv"
	"github.com/hupe1980/probelsh/internal/queue"
	"github.com/hupe1980/probelsh/lsh"
	"github.com/hupe1980/probelsh/normal"
	"github.com/hupe1980/probelsh/stats"
	"golang.org/x/sync/errgroup"
)

// State is the lifecycle state of an Index.
type State int32

const (
	// StateEmpty is the state before the first Fill.
	StateEmpty State = iota
	// StateBuilding is the state while Fill runs.
	StateBuilding
	// StateReady is the state once tables are queryable.
	StateReady
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateBuilding:
		return "building"
	case StateReady:
		return "ready"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// snapshot is the immutable queryable state published by Fill.
type snapshot struct {
	corpus   [][]float32
	tables   []*lsh.Table
	lift     *lsh.SimpleLSH // nil without a transform
	memBytes int64
}

// Index is a multi-table LSH index with multi-probe queries.
// It uses a copy-on-write snapshot for lock-free concurrent queries.
type Index struct {
	dim     int
	opts    Options
	banks   []*lsh.ProjectionBank
	sim     distance.Similarity
	logger  *Logger
	metrics MetricsCollector

	writeMu sync.Mutex // Serializes Fill only
	state   atomic.Int32
	snap    atomic.Pointer[snapshot]
}

// New creates an empty index for dim-dimensional vectors. The projection
// banks are drawn here and kept across rebuilds.
func New(dim int, optFns ...func(o *Options)) (*Index, error) {
	opts := DefaultOptions

	for _, fn := range optFns {
		fn(&opts)
	}

	if dim < 1 {
		return nil, invalidArgument("dimension %d", dim)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if opts.Workers == 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Logger == nil {
		opts.Logger = NoopLogger()
	}
	if opts.MetricsCollector == nil {
		opts.MetricsCollector = NoopMetricsCollector{}
	}

	if opts.Partitions == 0 {
		opts.Partitions = 1
	}

	hashDim := dim
	if opts.Transform == lsh.TransformSimple {
		hashDim = dim + 1
	}

	banks, err := newBanks(hashDim, &opts)
	if err != nil {
		return nil, translateError(err)
	}

	sim := opts.Similarity
	if sim == nil {
		if sim, err = distance.Provider(opts.Metric); err != nil {
			return nil, invalidArgument("%v", err)
		}
	}

	idx := &Index{
		dim:     dim,
		opts:    opts,
		banks:   banks,
		sim:     sim,
		logger:  opts.Logger.WithDimension(dim),
		metrics: opts.MetricsCollector,
	}
	idx.state.Store(int32(StateEmpty))

	return idx, nil
}

// newBanks returns the fixed banks or draws NumTables random ones of dimension
// dim, deriving missing sizes from ExpectedSize. It fills in opts.NumTables
// and opts.Bits.
func newBanks(dim int, opts *Options) ([]*lsh.ProjectionBank, error) {
	if len(opts.Banks) > 0 {
		for _, b := range opts.Banks {
			if b.Dimension() != dim {
				return nil, &lsh.ErrDimensionMismatch{Expected: dim, Actual: b.Dimension()}
			}
		}
		opts.NumTables = len(opts.Banks)
		opts.Bits = opts.Banks[0].Bits()
		return slices.Clone(opts.Banks), nil
	}

	if opts.NumTables == 0 || opts.Bits == 0 {
		bits, tables, err := lsh.SizesFromProbs(opts.ExpectedSize, opts.NearCollision, opts.FarCollision)
		if err != nil {
			return nil, err
		}
		if opts.NumTables == 0 {
			opts.NumTables = tables
		}
		if opts.Bits == 0 {
			opts.Bits = bits
		}
	}

	banks := make([]*lsh.ProjectionBank, opts.NumTables)
	for t := range banks {
		f := normal.New(opts.Projection, opts.Seed, uint64(t))
		b, err := lsh.NewProjectionBank(opts.Bits, dim, f)
		if err != nil {
			return nil, err
		}
		banks[t] = b
	}
	return banks, nil
}

// Dimension returns the vector dimension.
func (idx *Index) Dimension() int { return idx.dim }

// NumTables returns the number of hash tables.
func (idx *Index) NumTables() int { return len(idx.banks) }

// Bits returns the signature width of the first table.
func (idx *Index) Bits() int { return idx.banks[0].Bits() }

// State returns the current lifecycle state.
func (idx *Index) State() State { return State(idx.state.Load()) }

// Len returns the number of indexed vectors, 0 before the first Fill.
func (idx *Index) Len() int {
	if s := idx.snap.Load(); s != nil {
		return len(s.corpus)
	}
	return 0
}

// Fill indexes corpus into every table. On a filled index it fails with
// ErrAlreadyBuilt unless rebuild is set, in which case the tables are rebuilt
// with the same projection banks and swapped in atomically.
//
// The index keeps a reference to every corpus vector; callers must not modify
// them afterwards. A vector's ID is its position in corpus.
func (idx *Index) Fill(ctx context.Context, corpus [][]float32, rebuild bool) error {
	start := time.Now()
	err := translateError(idx.fill(ctx, corpus, rebuild))
	duration := time.Since(start)

	idx.metrics.RecordFill(len(corpus), duration, err)
	idx.logger.LogFill(ctx, len(corpus), len(idx.banks), duration, err)
	return err
}

func (idx *Index) fill(ctx context.Context, corpus [][]float32, rebuild bool) error {
	idx.writeMu.Lock()
	defer idx.writeMu.Unlock()

	old := idx.snap.Load()
	if old != nil && !rebuild {
		return ErrAlreadyBuilt
	}

	for _, v := range corpus {
		if len(v) != idx.dim {
			return &ErrDimensionMismatch{Expected: idx.dim, Actual: len(v)}
		}
	}
	if _, err := conv.ToUint32(len(corpus)); err != nil {
		return fmt.Errorf("%w: corpus size: %w", ErrInvalidArgument, err)
	}

	// Bucket entries plus one signature per vector and table.
	memBytes := int64(len(idx.banks)) * int64(len(corpus)) * (4 + 8)
	if err := idx.opts.Resources.AcquireMemory(memBytes); err != nil {
		return fmt.Errorf("reserve %d bytes: %w", memBytes, err)
	}

	prev := idx.State()
	idx.state.Store(int32(StateBuilding))

	lift, tables, err := idx.build(ctx, corpus)
	if err != nil {
		idx.opts.Resources.ReleaseMemory(memBytes)
		idx.state.Store(int32(prev))
		return err
	}

	idx.snap.Store(&snapshot{
		corpus:   slices.Clone(corpus),
		tables:   tables,
		lift:     lift,
		memBytes: memBytes,
	})
	if old != nil {
		idx.opts.Resources.ReleaseMemory(old.memBytes)
	}
	idx.state.Store(int32(StateReady))
	return nil
}

// build hashes corpus, lifting it first when a transform is configured.
func (idx *Index) build(ctx context.Context, corpus [][]float32) (*lsh.SimpleLSH, []*lsh.Table, error) {
	if idx.opts.Transform != lsh.TransformSimple {
		tables, err := idx.buildTables(ctx, corpus)
		return nil, tables, err
	}

	lift, err := lsh.FitNormRanging(idx.dim, corpus, idx.opts.Partitions)
	if err != nil {
		return nil, nil, err
	}
	lifted, err := lift.Corpus(corpus)
	if err != nil {
		return nil, nil, err
	}
	tables, err := idx.buildTables(ctx, lifted)
	if err != nil {
		return nil, nil, err
	}
	return lift, tables, nil
}

func (idx *Index) buildTables(ctx context.Context, corpus [][]float32) ([]*lsh.Table, error) {
	bo := lsh.BuildOptions{Workers: idx.opts.Workers}
	if idx.opts.Resources != nil {
		bo.Slots = idx.opts.Resources
	}

	tables := make([]*lsh.Table, len(idx.banks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(idx.opts.Workers)

	for t, bank := range idx.banks {
		g.Go(func() error {
			table, err := lsh.BuildTable(ctx, bank, corpus, bo)
			if err != nil {
				return fmt.Errorf("table %d: %w", t, err)
			}
			tables[t] = table
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}

// KProbe returns up to k corpus vectors most similar to query among those
// found in at most maxProbes bucket lookups.
//
// Tables are probed round-robin, one probe per table per round, each table
// following its own multi-probe sequence. Candidates are deduplicated and
// ranked by the exact similarity; equal scores rank the lower ID first.
// A query that collects no candidates returns a result with Found() == false.
//
// KProbe never modifies the index and is safe for concurrent use.
func (idx *Index) KProbe(ctx context.Context, k int, query []float32, maxProbes int) (*ProbeResult, error) {
	start := time.Now()
	res, err := idx.kprobe(ctx, k, query, maxProbes)
	err = translateError(err)
	duration := time.Since(start)

	var st ProbeStats
	found := 0
	if res != nil {
		st = res.Stats
		found = len(res.Neighbors)
	}
	idx.metrics.RecordProbe(k, st, duration, err)
	idx.logger.LogProbe(ctx, k, st, found, err)

	if err != nil {
		return nil, err
	}
	return res, nil
}

func (idx *Index) kprobe(ctx context.Context, k int, query []float32, maxProbes int) (*ProbeResult, error) {
	if k < 1 {
		return nil, invalidArgument("k must be positive, got %d", k)
	}
	if maxProbes < 1 {
		return nil, invalidArgument("maxProbes must be positive, got %d", maxProbes)
	}
	if len(query) != idx.dim {
		return nil, &ErrDimensionMismatch{Expected: idx.dim, Actual: len(query)}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap := idx.snap.Load()
	if idx.State() != StateReady || snap == nil {
		return nil, ErrNotReady
	}

	cands, st, err := idx.collect(ctx, snap, query, maxProbes)
	if err != nil {
		return nil, err
	}

	res := &ProbeResult{Stats: st}
	if cands.IsEmpty() {
		return res, nil
	}

	top, err := idx.score(ctx, snap.corpus, query, cands.ToArray(), k)
	if err != nil {
		return nil, err
	}

	res.Neighbors = make([]Neighbor, len(top))
	for i, it := range top {
		res.Neighbors[i] = Neighbor{ID: it.ID, Score: it.Score, Vector: snap.corpus[it.ID]}
	}
	return res, nil
}

// collect runs the round-robin probe loop and returns the distinct candidates.
func (idx *Index) collect(ctx context.Context, snap *snapshot, query []float32, maxProbes int) (*roaring.Bitmap, ProbeStats, error) {
	if snap.lift != nil {
		lifted, err := snap.lift.Query(query)
		if err != nil {
			return nil, ProbeStats{}, err
		}
		query = lifted
	}

	seqs := make([]lsh.Sequencer, len(snap.tables))
	for t, table := range snap.tables {
		sig, margins, err := table.Bank().SignatureOf(query)
		if err != nil {
			return nil, ProbeStats{}, err
		}
		seqs[t] = lsh.NewSequencer(idx.opts.Strategy, sig, margins, idx.opts.ProbesPerTable)
	}

	cands := roaring.New()
	st := ProbeStats{PerTable: make([]int, len(seqs)), Stop: StopExhausted}
	live := len(seqs)
	minCands := uint64(idx.opts.MinCandidates)

	for live > 0 {
		if err := ctx.Err(); err != nil {
			return nil, ProbeStats{}, err
		}
		for t, seq := range seqs {
			if seq == nil {
				continue
			}
			if st.Probes >= maxProbes {
				st.Stop = StopBudget
				return cands, st.withCandidates(cands), nil
			}

			p, ok := seq.Next()
			if !ok {
				seqs[t] = nil
				live--
				continue
			}

			st.Probes++
			st.PerTable[t]++
			if bucket := snap.tables[t].Lookup(p.Signature); len(bucket) > 0 {
				st.NonEmptyBuckets++
				cands.AddMany(bucket)
				if minCands > 0 && cands.GetCardinality() >= minCands {
					st.Stop = StopMinCandidates
					return cands, st.withCandidates(cands), nil
				}
			}
		}
	}

	return cands, st.withCandidates(cands), nil
}

func (s ProbeStats) withCandidates(c *roaring.Bitmap) ProbeStats {
	s.Candidates = int(c.GetCardinality())
	return s
}

// score ranks ids against query. Large candidate sets are split into one
// chunk per worker, each scored into its own bounded heap; a chunk runs
// inline when no worker slot is free.
func (idx *Index) score(ctx context.Context, corpus [][]float32, query []float32, ids []uint32, k int) ([]queue.Item, error) {
	workers := idx.opts.Workers
	if workers <= 1 || len(ids) < idx.opts.ParallelScoreThreshold {
		q := queue.NewTopK(k)
		idx.scoreInto(q, corpus, query, ids)
		return q.Drain(), nil
	}

	chunk := (len(ids) + workers - 1) / workers
	heaps := make([]*queue.TopK, 0, workers)

	var g errgroup.Group
	for start := 0; start < len(ids); start += chunk {
		part := ids[start:min(start+chunk, len(ids))]
		q := queue.NewTopK(k)
		heaps = append(heaps, q)

		if !idx.opts.Resources.TryAcquireWorker() {
			idx.scoreInto(q, corpus, query, part)
			continue
		}
		g.Go(func() error {
			defer idx.opts.Resources.ReleaseWorker()
			if err := ctx.Err(); err != nil {
				return err
			}
			idx.scoreInto(q, corpus, query, part)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := heaps[0]
	for _, h := range heaps[1:] {
		merged.Merge(h)
	}
	return merged.Drain(), nil
}

func (idx *Index) scoreInto(q *queue.TopK, corpus [][]float32, query []float32, ids []uint32) {
	for _, id := range ids {
		q.Push(queue.Item{ID: id, Score: idx.sim(query, corpus[id])})
	}
}

// TableStats describes the bucket distribution of one table.
type TableStats struct {
	Buckets      int
	MeanBucket   float64
	MedianBucket float64
	MaxBucket    int
}

// TableStats returns the bucket distribution of every table.
func (idx *Index) TableStats() ([]TableStats, error) {
	snap := idx.snap.Load()
	if idx.State() != StateReady || snap == nil {
		return nil, ErrNotReady
	}

	out := make([]TableStats, len(snap.tables))
	for t, table := range snap.tables {
		sizes := table.BucketSizes()
		ts := TableStats{Buckets: len(sizes)}
		if len(sizes) > 0 {
			// Non-empty input cannot fail.
			ts.MeanBucket, _ = stats.Mean(sizes)
			ts.MedianBucket, _ = stats.Median(sizes)
			ts.MaxBucket = slices.Max(sizes)
		}
		out[t] = ts
	}
	return out, nil
}
