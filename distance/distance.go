// Package distance provides the similarity functions used to rank probe candidates.
// Dot products are computed with vek32, which dispatches to SIMD kernels
// when the CPU supports them.
package distance

import (
	"fmt"
	"math"
	"slices"

	"github.com/viterin/vek/vek32"
)

// Dot calculates the dot product of two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Dot(a, b []float32) float32 {
	if len(a) == 0 {
		return 0
	}
	return vek32.Dot(a, b)
}

// SquaredL2 calculates the squared L2 (Euclidean) distance between two vectors.
// Assumes vectors are the same length (caller's responsibility).
func SquaredL2(a, b []float32) float32 {
	if len(a) == 0 {
		return 0
	}
	d := vek32.Distance(a, b)
	return d * d
}

// NegSquaredL2 is SquaredL2 negated, so that closer vectors score higher.
func NegSquaredL2(a, b []float32) float32 {
	return -SquaredL2(a, b)
}

// Cosine calculates the cosine similarity of two vectors.
// Returns 0 if either vector has zero norm.
func Cosine(a, b []float32) float32 {
	if len(a) == 0 {
		return 0
	}
	na := vek32.Dot(a, a)
	nb := vek32.Dot(b, b)
	if na == 0 || nb == 0 {
		return 0
	}
	return vek32.Dot(a, b) / (sqrt32(na) * sqrt32(nb))
}

// Norm returns the L2 norm of v.
func Norm(v []float32) float32 {
	if len(v) == 0 {
		return 0
	}
	return sqrt32(vek32.Dot(v, v))
}

// NormalizeL2InPlace L2-normalizes v in place.
// Returns false if v has zero L2 norm.
func NormalizeL2InPlace(v []float32) bool {
	n := Norm(v)
	if n == 0 {
		return false
	}
	vek32.MulNumber_Inplace(v, 1/n)
	return true
}

// NormalizeL2Copy returns a normalized copy of src.
// Returns false if src has zero L2 norm.
func NormalizeL2Copy(src []float32) ([]float32, bool) {
	dst := slices.Clone(src)
	if !NormalizeL2InPlace(dst) {
		return nil, false
	}
	return dst, true
}

// Metric names a built-in similarity.
type Metric int

const (
	MetricDot Metric = iota
	MetricCosine
	MetricL2
)

func (m Metric) String() string {
	switch m {
	case MetricDot:
		return "Dot"
	case MetricCosine:
		return "Cosine"
	case MetricL2:
		return "L2"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// ParseMetric maps a metric name (as printed by String) to a Metric.
func ParseMetric(s string) (Metric, error) {
	switch s {
	case "Dot", "dot":
		return MetricDot, nil
	case "Cosine", "cosine":
		return MetricCosine, nil
	case "L2", "l2":
		return MetricL2, nil
	default:
		return 0, fmt.Errorf("unknown metric %q", s)
	}
}

// Similarity scores how alike two vectors are. Higher is more similar.
type Similarity func(a, b []float32) float32

// Provider returns the similarity function for the given metric.
func Provider(m Metric) (Similarity, error) {
	switch m {
	case MetricDot:
		return Dot, nil
	case MetricCosine:
		return Cosine, nil
	case MetricL2:
		return NegSquaredL2, nil
	default:
		return nil, fmt.Errorf("unsupported metric: %v", m)
	}
}

func sqrt32(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}
