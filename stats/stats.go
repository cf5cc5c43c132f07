package stats

import (
	"errors"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrEmpty is returned when a statistic is undefined for empty input.
	ErrEmpty = errors.New("stats: empty input")

	// ErrNegative is returned by Histogram and Mode for negative values.
	ErrNegative = errors.New("stats: negative value")

	// ErrTooLarge is returned by Histogram and Mode for values above
	// MaxHistogramValue.
	ErrTooLarge = errors.New("stats: value too large for histogram")
)

// MaxHistogramValue is the largest value Histogram accepts. The histogram has
// one bin per value in [0, max(xs)].
const MaxHistogramValue = 1 << 24

// Number is the set of element types the descriptive statistics accept.
type Number interface {
	~int | ~int32 | ~int64 | ~uint32 | ~uint64 | ~float32 | ~float64
}

// Integer is the set of element types Histogram and Mode accept.
type Integer interface {
	~int | ~int32 | ~int64 | ~uint32 | ~uint64
}

func toFloat64[T Number](xs []T) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = float64(x)
	}
	return out
}

// Mean returns the arithmetic mean of xs.
func Mean[T Number](xs []T) (float64, error) {
	if len(xs) == 0 {
		return 0, ErrEmpty
	}
	return stat.Mean(toFloat64(xs), nil), nil
}

// Variance returns the population variance of xs.
func Variance[T Number](xs []T) (float64, error) {
	if len(xs) == 0 {
		return 0, ErrEmpty
	}
	_, v := stat.PopMeanVariance(toFloat64(xs), nil)
	return v, nil
}

// Stdev returns the population standard deviation of xs.
func Stdev[T Number](xs []T) (float64, error) {
	v, err := Variance(xs)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(v), nil
}

// Median sorts a copy of xs and returns its median.
// An even count averages the two middle elements.
func Median[T Number](xs []T) (float64, error) {
	if len(xs) == 0 {
		return 0, ErrEmpty
	}
	sorted := toFloat64(xs)
	slices.Sort(sorted)
	return middle(sorted), nil
}

// SortedMedian is Median for input already in ascending order.
func SortedMedian[T Number](xs []T) (float64, error) {
	if len(xs) == 0 {
		return 0, ErrEmpty
	}
	n := len(xs)
	if n%2 == 0 {
		return (float64(xs[n/2-1]) + float64(xs[n/2])) / 2, nil
	}
	return float64(xs[n/2]), nil
}

func middle(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 0 {
		return floats.Sum(sorted[n/2-1:n/2+1]) / 2
	}
	return sorted[n/2]
}

// Histogram counts the occurrences of every value in [0, max(xs)].
func Histogram[T Integer](xs []T) ([]int64, error) {
	if len(xs) == 0 {
		return nil, ErrEmpty
	}
	for _, x := range xs {
		if x < 0 {
			return nil, ErrNegative
		}
	}
	hi := slices.Max(xs)
	if uint64(hi) > MaxHistogramValue {
		return nil, ErrTooLarge
	}
	hist := make([]int64, int(hi)+1)
	for _, x := range xs {
		hist[x]++
	}
	return hist, nil
}

// Mode returns the most frequent value of xs; ties go to the smallest value.
func Mode[T Integer](xs []T) (T, error) {
	hist, err := Histogram(xs)
	if err != nil {
		return 0, err
	}
	best := 0
	for v, n := range hist {
		if n > hist[best] {
			best = v
		}
	}
	return T(best), nil
}

// Nonzero returns the nonzero elements of xs in order.
func Nonzero[T Number](xs []T) []T {
	out := make([]T, 0, len(xs))
	for _, x := range xs {
		if x != 0 {
			out = append(out, x)
		}
	}
	return out
}

// Unique returns the distinct elements of xs in first-occurrence order.
func Unique[T comparable](xs []T) []T {
	seen := make(map[T]struct{}, len(xs))
	out := make([]T, 0, len(xs))
	for _, x := range xs {
		if _, ok := seen[x]; ok {
			continue
		}
		seen[x] = struct{}{}
		out = append(out, x)
	}
	return out
}
