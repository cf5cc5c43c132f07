package lsh

import (
	"fmt"
	"math"
	"slices"

	"github.com/viterin/vek/vek32"
)

// Transform selects how vectors are mapped before they are hashed.
type Transform int

const (
	// TransformNone hashes vectors as they are (angular search).
	TransformNone Transform = iota
	// TransformSimple hashes vectors lifted by SimpleLSH, optionally with
	// norm ranging (maximum inner product search).
	TransformSimple
)

func (t Transform) String() string {
	switch t {
	case TransformNone:
		return "none"
	case TransformSimple:
		return "simple"
	default:
		return "unknown"
	}
}

// ParseTransform maps "none" or "simple" to a Transform.
func ParseTransform(s string) (Transform, error) {
	switch s {
	case "none", "":
		return TransformNone, nil
	case "simple":
		return TransformSimple, nil
	default:
		return 0, fmt.Errorf("lsh: unknown transform %q", s)
	}
}

// SimpleLSH reduces maximum inner product search to angular search.
//
// Corpus vectors are scaled by an upper bound M of their norm and lifted by
// one coordinate, x -> (x/M, sqrt(1 - |x/M|^2)), so that all of them lie on
// the unit sphere. Queries are normalized and lifted with 0, q -> (q/|q|, 0).
// The cosine between a lifted query and a lifted vector is then q.x/(|q| M).
//
// With norm ranging the corpus is split by norm into ranges of equal size and
// every vector is scaled by the largest norm of its own range, which keeps
// small vectors from collapsing onto the lifted axis.
type SimpleLSH struct {
	dim    int
	bounds []float64 // ascending largest norm per range
}

// FitSimpleLSH measures the largest norm of corpus.
func FitSimpleLSH(dim int, corpus [][]float32) (*SimpleLSH, error) {
	return FitNormRanging(dim, corpus, 1)
}

// FitNormRanging splits corpus by norm into at most partitions ranges of
// equal size and records the largest norm of each. Ranges sharing a bound
// are merged.
func FitNormRanging(dim int, corpus [][]float32, partitions int) (*SimpleLSH, error) {
	if dim < 1 {
		return nil, ErrInvalidDimension
	}
	if partitions < 1 {
		return nil, ErrInvalidPartitions
	}

	norms := make([]float64, len(corpus))
	for i, v := range corpus {
		if len(v) != dim {
			return nil, &ErrDimensionMismatch{Expected: dim, Actual: len(v)}
		}
		norms[i] = norm64(v)
	}
	slices.Sort(norms)

	s := &SimpleLSH{dim: dim}
	n := len(norms)
	for p := range partitions {
		end := (p + 1) * n / partitions
		if end == 0 {
			continue
		}
		b := norms[end-1]
		if k := len(s.bounds); k > 0 && b <= s.bounds[k-1] {
			continue
		}
		s.bounds = append(s.bounds, b)
	}
	return s, nil
}

// Dimension returns the input dimension. Transformed vectors have one more.
func (s *SimpleLSH) Dimension() int { return s.dim }

// Partitions returns the number of norm ranges, 0 for an empty corpus.
func (s *SimpleLSH) Partitions() int { return len(s.bounds) }

// Bounds returns the largest norm of every range, ascending.
func (s *SimpleLSH) Bounds() []float64 { return slices.Clone(s.bounds) }

// Vector lifts a corpus vector.
func (s *SimpleLSH) Vector(v []float32) ([]float32, error) {
	if len(v) != s.dim {
		return nil, &ErrDimensionMismatch{Expected: s.dim, Actual: len(v)}
	}
	out := make([]float32, s.dim+1)
	s.liftInto(out, v)
	return out, nil
}

// Corpus lifts every vector of corpus into one contiguous allocation.
func (s *SimpleLSH) Corpus(corpus [][]float32) ([][]float32, error) {
	width := s.dim + 1
	data := make([]float32, len(corpus)*width)
	out := make([][]float32, len(corpus))
	for i, v := range corpus {
		if len(v) != s.dim {
			return nil, &ErrDimensionMismatch{Expected: s.dim, Actual: len(v)}
		}
		out[i] = data[i*width : (i+1)*width : (i+1)*width]
		s.liftInto(out[i], v)
	}
	return out, nil
}

// scale returns 1/M for a vector of the given norm. A norm above every bound
// uses the largest bound; its lifted coordinate is then clamped to 0.
func (s *SimpleLSH) scale(norm float64) float64 {
	if len(s.bounds) == 0 {
		return 1
	}
	i, _ := slices.BinarySearch(s.bounds, norm)
	i = min(i, len(s.bounds)-1)
	if s.bounds[i] == 0 {
		return 1
	}
	return 1 / s.bounds[i]
}

func (s *SimpleLSH) liftInto(dst, v []float32) {
	scale := s.scale(norm64(v))
	var norm2 float64
	for i, x := range v {
		y := float32(float64(x) * scale)
		dst[i] = y
		norm2 += float64(y) * float64(y)
	}
	dst[s.dim] = float32(math.Sqrt(math.Max(0, 1-norm2)))
}

// Query normalizes q and lifts it with a zero coordinate.
// A zero query stays zero.
func (s *SimpleLSH) Query(q []float32) ([]float32, error) {
	if len(q) != s.dim {
		return nil, &ErrDimensionMismatch{Expected: s.dim, Actual: len(q)}
	}
	out := make([]float32, s.dim+1)
	copy(out, q)
	if norm := norm64(q); norm > 0 {
		vek32.MulNumber_Inplace(out[:s.dim], float32(1/norm))
	}
	return out, nil
}

func norm64(v []float32) float64 {
	if len(v) == 0 {
		return 0
	}
	return math.Sqrt(float64(vek32.Dot(v, v)))
}
