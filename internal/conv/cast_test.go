package conv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToUint32(t *testing.T) {
	t.Run("zero", func(t *testing.T) {
		got, err := ToUint32(0)
		require.NoError(t, err)
		assert.Equal(t, uint32(0), got)
	})

	t.Run("max int32", func(t *testing.T) {
		got, err := ToUint32(int32(math.MaxInt32))
		require.NoError(t, err)
		assert.Equal(t, uint32(math.MaxInt32), got)
	})

	t.Run("max uint32", func(t *testing.T) {
		got, err := ToUint32(int64(math.MaxUint32))
		require.NoError(t, err)
		assert.Equal(t, uint32(math.MaxUint32), got)
	})

	t.Run("negative", func(t *testing.T) {
		_, err := ToUint32(int8(-1))
		assert.ErrorIs(t, err, ErrOverflow)
	})

	t.Run("too large", func(t *testing.T) {
		_, err := ToUint32(int64(math.MaxUint32) + 1)
		assert.ErrorIs(t, err, ErrOverflow)
	})
}

func TestToUint32Slice(t *testing.T) {
	got, err := ToUint32Slice([]int32{3, 0, 7})
	require.NoError(t, err)
	assert.Equal(t, []uint32{3, 0, 7}, got)

	_, err = ToUint32Slice([]int32{1, -2})
	assert.ErrorIs(t, err, ErrOverflow)
	assert.ErrorContains(t, err, "index 1")
}
