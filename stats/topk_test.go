package stats

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func intLess(a, b int) bool    { return a < b }
func intGreater(a, b int) bool { return a > b }

func TestTopK(t *testing.T) {
	got, ok := TopK(3, []int{5, 1, 9, 3, 7, 2}, intLess, intGreater)
	assert.True(t, ok)
	assert.Equal(t, []int{9, 7, 5}, got)

	got, ok = TopK(10, []int{2, 8}, intLess, intGreater)
	assert.False(t, ok)
	assert.Equal(t, []int{8, 2}, got)

	got, ok = TopK(0, []int{1}, intLess, intGreater)
	assert.True(t, ok)
	assert.Empty(t, got)
}

func TestTopK_Random(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	xs := make([]int, 1000)
	for i := range xs {
		xs[i] = r.Intn(10000)
	}

	got, ok := TopK(25, xs, intLess, intGreater)
	assert.True(t, ok)

	want := slices.Clone(xs)
	slices.Sort(want)
	slices.Reverse(want)
	assert.Equal(t, want[:25], got)
}

func TestTopK_Vectors(t *testing.T) {
	q := []float32{1, 0}
	corpus := [][]float32{{0.1, 1}, {3, 0}, {2, 5}, {-1, 0}}

	dot := func(v []float32) float32 { return q[0]*v[0] + q[1]*v[1] }
	got, ok := TopK(2, corpus,
		func(a, b []float32) bool { return dot(a) < dot(b) },
		func(a, b []float32) bool { return dot(a) > dot(b) },
	)
	assert.True(t, ok)
	assert.Equal(t, [][]float32{{3, 0}, {2, 5}}, got)
}

func TestRecall(t *testing.T) {
	truth := [][]float32{{1, 0}, {0, 1}}

	r, err := Recall(truth, [][]float32{{0, 1}, {5, 5}})
	assert.NoError(t, err)
	assert.Equal(t, 0.5, r)

	r, err = Recall(truth, [][]float32{{0, 1}, {1, 0}})
	assert.NoError(t, err)
	assert.Equal(t, 1.0, r)

	r, err = Recall(truth, nil)
	assert.NoError(t, err)
	assert.Equal(t, 0.0, r)

	_, err = Recall(nil, truth)
	assert.ErrorIs(t, err, ErrEmpty)

	r, err = RecallIDs([]uint32{1, 2, 3, 4}, []uint32{4, 9})
	assert.NoError(t, err)
	assert.Equal(t, 0.25, r)

	_, err = RecallIDs(nil, nil)
	assert.ErrorIs(t, err, ErrEmpty)
}
