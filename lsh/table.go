package lsh

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Bucket is the ascending list of corpus indices that share one signature.
type Bucket []uint32

// WorkerSlots bounds build parallelism across callers.
// resource.Controller satisfies it.
type WorkerSlots interface {
	AcquireWorker(ctx context.Context) error
	ReleaseWorker()
}

// BuildOptions tunes BuildTable.
type BuildOptions struct {
	// Workers is the maximum number of goroutines hashing the corpus.
	// If 0, defaults to GOMAXPROCS.
	Workers int

	// ChunkSize is the number of vectors hashed per task.
	// If 0, defaults to 4096.
	ChunkSize int

	// Slots optionally gates every task on a shared worker slot.
	Slots WorkerSlots
}

const defaultChunkSize = 4096

func (o BuildOptions) withDefaults() BuildOptions {
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = defaultChunkSize
	}
	return o
}

// Table maps signatures to buckets for one ProjectionBank.
// It is immutable once built and safe for concurrent reads.
type Table struct {
	bank    *ProjectionBank
	buckets map[Signature]Bucket
	size    int
}

// BuildTable hashes every corpus vector under bank and groups indices by signature.
//
// Signatures are computed in parallel; buckets are assembled single-threaded so
// that every bucket lists its indices in ascending order.
func BuildTable(ctx context.Context, bank *ProjectionBank, corpus [][]float32, opts BuildOptions) (*Table, error) {
	for _, v := range corpus {
		if len(v) != bank.dim {
			return nil, &ErrDimensionMismatch{Expected: bank.dim, Actual: len(v)}
		}
	}

	sigs, err := hashCorpus(ctx, bank, corpus, opts.withDefaults())
	if err != nil {
		return nil, err
	}

	return &Table{
		bank:    bank,
		buckets: groupBySignature(sigs),
		size:    len(corpus),
	}, nil
}

func hashCorpus(ctx context.Context, bank *ProjectionBank, corpus [][]float32, opts BuildOptions) ([]Signature, error) {
	sigs := make([]Signature, len(corpus))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	for start := 0; start < len(corpus); start += opts.ChunkSize {
		end := min(start+opts.ChunkSize, len(corpus))
		g.Go(func() error {
			if opts.Slots != nil {
				if err := opts.Slots.AcquireWorker(ctx); err != nil {
					return err
				}
				defer opts.Slots.ReleaseWorker()
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			// Each task writes a disjoint range of sigs.
			for i := start; i < end; i++ {
				sigs[i] = bank.signatureInto(corpus[i], nil)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sigs, nil
}

// groupBySignature carves every bucket out of a single backing array.
func groupBySignature(sigs []Signature) map[Signature]Bucket {
	counts := make(map[Signature]int)
	for _, s := range sigs {
		counts[s]++
	}

	backing := make([]uint32, len(sigs))
	buckets := make(map[Signature]Bucket, len(counts))
	off := 0
	for s, n := range counts {
		buckets[s] = backing[off : off : off+n]
		off += n
	}
	for i, s := range sigs {
		buckets[s] = append(buckets[s], uint32(i))
	}
	return buckets
}

// Lookup returns the bucket for an exact signature, or nil if none exists.
// The returned bucket must not be modified.
func (t *Table) Lookup(sig Signature) Bucket {
	return t.buckets[sig]
}

// Bank returns the projection bank of the table.
func (t *Table) Bank() *ProjectionBank { return t.bank }

// NumBuckets returns the number of distinct signatures in the table.
func (t *Table) NumBuckets() int { return len(t.buckets) }

// Len returns the number of indexed vectors.
func (t *Table) Len() int { return t.size }

// BucketSizes returns the size of every bucket, in no particular order.
func (t *Table) BucketSizes() []int {
	sizes := make([]int, 0, len(t.buckets))
	for _, b := range t.buckets {
		sizes = append(sizes, len(b))
	}
	return sizes
}
