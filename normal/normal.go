// Package normal fills vectors and matrices with independent normally
// distributed values. It supplies the random hyperplanes of each hash table.
//
// Randomness is explicit: a Filler owns its generator, and two fillers built
// from the same seed and stream produce identical values.
package normal

import (
	"math/rand/v2"
	"sync"

	"gonum.org/v1/gonum/stat/distuv"
)

// Config describes the distribution to sample from.
type Config struct {
	// Mean of the distribution.
	Mean float64

	// StdDev is the spread of the distribution. Must be > 0.
	StdDev float64
}

// DefaultConfig is the standard normal distribution.
var DefaultConfig = Config{Mean: 0, StdDev: 1}

// Filler draws values from a normal distribution.
// It is safe for concurrent use.
type Filler struct {
	mu   sync.Mutex
	dist distuv.Normal
}

// New creates a Filler drawing from cfg with a PCG generator seeded by (seed, stream).
// Different streams with the same seed yield independent sequences.
func New(cfg Config, seed, stream uint64) *Filler {
	return NewWithSource(cfg, rand.NewPCG(seed, stream))
}

// NewWithSource creates a Filler over an existing random source.
func NewWithSource(cfg Config, src rand.Source) *Filler {
	if cfg.StdDev <= 0 {
		cfg.StdDev = DefaultConfig.StdDev
	}
	return &Filler{
		dist: distuv.Normal{
			Mu:    cfg.Mean,
			Sigma: cfg.StdDev,
			Src:   src,
		},
	}
}

// Float32 draws a single value.
func (f *Filler) Float32() float32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return float32(f.dist.Rand())
}

// FillVector overwrites every element of dst.
func (f *Filler) FillVector(dst []float32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range dst {
		dst[i] = float32(f.dist.Rand())
	}
}

// FillMatrix overwrites every element of every row of m.
// Rows are filled in order, so the result is reproducible for a given seed.
func (f *Filler) FillMatrix(m [][]float32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range m {
		for i := range row {
			row[i] = float32(f.dist.Rand())
		}
	}
}

// Matrix allocates a rows×cols matrix backed by one contiguous slice and fills it.
func (f *Filler) Matrix(rows, cols int) [][]float32 {
	data := make([]float32, rows*cols)
	m := make([][]float32, rows)
	for i := range rows {
		m[i] = data[i*cols : (i+1)*cols : (i+1)*cols]
	}
	f.FillMatrix(m)
	return m
}
