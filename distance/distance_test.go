package distance

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDot(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float32
	}{
		{"Simple", []float32{1, 2, 3}, []float32{4, 5, 6}, 32},
		{"Zero", []float32{0, 0, 0}, []float32{0, 0, 0}, 0},
		{"Mixed", []float32{1, -1, 2}, []float32{1, 1, -2}, -4},
		{"Empty", []float32{}, []float32{}, 0},
		{"Single", []float32{2}, []float32{3}, 6},
		{"Large", make([]float32, 1024), make([]float32, 1024), 0},
	}

	for i := range tests[5].a {
		tests[5].a[i] = 1
		tests[5].b[i] = 1
	}
	tests[5].expected = 1024

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Dot(tt.a, tt.b)
			assert.InDelta(t, tt.expected, got, 1e-4)
		})
	}
}

func TestSquaredL2(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float32
	}{
		{"Simple", []float32{1, 2, 3}, []float32{4, 5, 6}, 27},
		{"Identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 0},
		{"Mixed", []float32{1, -1}, []float32{-1, 1}, 8},
		{"Empty", []float32{}, []float32{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, SquaredL2(tt.a, tt.b), 1e-5)
			assert.InDelta(t, -tt.expected, NegSquaredL2(tt.a, tt.b), 1e-5)
		})
	}
}

func TestSquaredL2MatchesScalar(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))

	for _, dim := range []int{1, 7, 16, 37, 128} {
		a := make([]float32, dim)
		b := make([]float32, dim)
		var want float64
		for i := range a {
			a[i] = float32(rng.NormFloat64())
			b[i] = float32(rng.NormFloat64())
			d := float64(a[i]) - float64(b[i])
			want += d * d
		}
		assert.InEpsilon(t, want, float64(SquaredL2(a, b)), 1e-4, "dim %d", dim)
	}
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, float32(1), Cosine([]float32{1, 0}, []float32{2, 0}), 1e-6)
	assert.InDelta(t, float32(0), Cosine([]float32{1, 0}, []float32{0, 3}), 1e-6)
	assert.InDelta(t, float32(-1), Cosine([]float32{1, 1}, []float32{-1, -1}), 1e-6)
	assert.Equal(t, float32(0), Cosine([]float32{0, 0}, []float32{1, 1}))
	assert.Equal(t, float32(0), Cosine(nil, nil))
}

func TestNormalizeL2(t *testing.T) {
	t.Run("InPlace", func(t *testing.T) {
		v := []float32{3, 4}
		ok := NormalizeL2InPlace(v)
		assert.True(t, ok)
		assert.InDelta(t, float32(0.6), v[0], 1e-5)
		assert.InDelta(t, float32(0.8), v[1], 1e-5)
		assert.InDelta(t, 1.0, math.Sqrt(float64(v[0]*v[0]+v[1]*v[1])), 1e-5)

		assert.False(t, NormalizeL2InPlace([]float32{0, 0}))
		assert.False(t, NormalizeL2InPlace([]float32{}))
	})

	t.Run("Copy", func(t *testing.T) {
		v := []float32{1, 0}
		dst, ok := NormalizeL2Copy(v)
		assert.True(t, ok)
		assert.Equal(t, float32(1), dst[0])
		assert.NotSame(t, &v[0], &dst[0])

		dst, ok = NormalizeL2Copy([]float32{0, 0})
		assert.False(t, ok)
		assert.Nil(t, dst)
	})
}

func TestMetric(t *testing.T) {
	t.Run("String", func(t *testing.T) {
		assert.Equal(t, "Dot", MetricDot.String())
		assert.Equal(t, "Cosine", MetricCosine.String())
		assert.Equal(t, "L2", MetricL2.String())
		assert.Equal(t, "Unknown(99)", Metric(99).String())
	})

	t.Run("Parse", func(t *testing.T) {
		for _, m := range []Metric{MetricDot, MetricCosine, MetricL2} {
			got, err := ParseMetric(m.String())
			require.NoError(t, err)
			assert.Equal(t, m, got)
		}
		_, err := ParseMetric("manhattan")
		assert.Error(t, err)
	})

	t.Run("Provider", func(t *testing.T) {
		f, err := Provider(MetricL2)
		require.NoError(t, err)
		assert.InDelta(t, float32(-27), f([]float32{1, 2, 3}, []float32{4, 5, 6}), 1e-5)

		f, err = Provider(MetricDot)
		require.NoError(t, err)
		assert.InDelta(t, float32(32), f([]float32{1, 2, 3}, []float32{4, 5, 6}), 1e-5)

		f, err = Provider(MetricCosine)
		require.NoError(t, err)
		assert.NotNil(t, f)

		_, err = Provider(Metric(99))
		assert.Error(t, err)
	})
}
