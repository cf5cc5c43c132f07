package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeanVarianceStdev(t *testing.T) {
	xs := []int{2, 4, 4, 4, 5, 5, 7, 9}

	m, err := Mean(xs)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, m, 1e-12)

	v, err := Variance(xs)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, v, 1e-12)

	s, err := Stdev(xs)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, s, 1e-12)

	f, err := Mean([]float32{0.5, 1.5})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, f, 1e-12)
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name string
		xs   []float64
		want float64
	}{
		{"Odd", []float64{3, 1, 2}, 2},
		{"Even", []float64{4, 1, 3, 2}, 2.5},
		{"Single", []float64{7}, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := append([]float64(nil), tt.xs...)
			got, err := Median(tt.xs)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, in, tt.xs, "input must not be reordered")
		})
	}

	got, err := SortedMedian([]int{1, 2, 3, 10})
	require.NoError(t, err)
	assert.Equal(t, 2.5, got)

	got, err = SortedMedian([]int{1, 2, 10})
	require.NoError(t, err)
	assert.Equal(t, 2.0, got)
}

func TestEmpty(t *testing.T) {
	_, err := Mean([]int{})
	assert.ErrorIs(t, err, ErrEmpty)
	_, err = Variance([]float64(nil))
	assert.ErrorIs(t, err, ErrEmpty)
	_, err = Stdev([]float64(nil))
	assert.ErrorIs(t, err, ErrEmpty)
	_, err = Median([]int(nil))
	assert.ErrorIs(t, err, ErrEmpty)
	_, err = SortedMedian([]int(nil))
	assert.ErrorIs(t, err, ErrEmpty)
	_, err = Histogram([]int(nil))
	assert.ErrorIs(t, err, ErrEmpty)
	_, err = Mode([]int(nil))
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestHistogramMode(t *testing.T) {
	hist, err := Histogram([]int{0, 2, 2, 3, 0, 2})
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 0, 3, 1}, hist)

	mode, err := Mode([]int{0, 2, 2, 3, 0, 2})
	require.NoError(t, err)
	assert.Equal(t, 2, mode)

	mode32, err := Mode([]uint32{5, 1, 5, 1})
	require.NoError(t, err)
	assert.Equal(t, uint32(1), mode32)

	_, err = Histogram([]int{1, -1})
	assert.ErrorIs(t, err, ErrNegative)
	_, err = Mode([]int64{-3})
	assert.ErrorIs(t, err, ErrNegative)
}

func TestHistogramTooLarge(t *testing.T) {
	_, err := Histogram([]uint64{1 << 63})
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = Histogram([]int64{3, MaxHistogramValue + 1})
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = Mode([]uint64{math.MaxUint64})
	assert.ErrorIs(t, err, ErrTooLarge)

	hist, err := Histogram([]uint32{MaxHistogramValue})
	require.NoError(t, err)
	assert.Len(t, hist, MaxHistogramValue+1)
	assert.Equal(t, int64(1), hist[MaxHistogramValue])
}

func TestNonzeroUnique(t *testing.T) {
	assert.Equal(t, []float32{1.5, -2}, Nonzero([]float32{0, 1.5, 0, -2}))
	assert.Empty(t, Nonzero([]int{0, 0}))

	assert.Equal(t, []int{3, 1, 2}, Unique([]int{3, 1, 3, 2, 1}))
	assert.Equal(t, []string{"a", "b"}, Unique([]string{"a", "b", "a"}))
}

func TestStdevMatchesDefinition(t *testing.T) {
	xs := []float64{1, 2, 3, 4}
	s, err := Stdev(xs)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(1.25), s, 1e-12)
}
