package probelsh

import (
	"errors"
	"fmt"
	"testing"

	"github.com/hupe1980/probelsh/lsh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))

	t.Run("DimensionMismatch", func(t *testing.T) {
		inner := fmt.Errorf("table 2: %w", &lsh.ErrDimensionMismatch{Expected: 4, Actual: 3})

		err := translateError(inner)
		var dm *ErrDimensionMismatch
		require.ErrorAs(t, err, &dm)
		assert.Equal(t, 4, dm.Expected)
		assert.Equal(t, 3, dm.Actual)
		assert.Equal(t, "dimension mismatch: expected 4, got 3", dm.Error())

		var ldm *lsh.ErrDimensionMismatch
		assert.ErrorAs(t, err, &ldm, "cause stays reachable")

		// Already translated errors pass through.
		assert.Same(t, dm, translateError(dm))
	})

	t.Run("InvalidArgument", func(t *testing.T) {
		for _, inner := range []error{lsh.ErrInvalidBits, lsh.ErrInvalidDimension, lsh.ErrInvalidPartitions, lsh.ErrInvalidProbability} {
			err := translateError(inner)
			assert.ErrorIs(t, err, ErrInvalidArgument)
			assert.ErrorIs(t, err, inner)
		}
	})

	t.Run("PassThrough", func(t *testing.T) {
		other := errors.New("boom")
		assert.Equal(t, other, translateError(other))
	})
}

func TestInvalidArgument(t *testing.T) {
	err := invalidArgument("k must be positive, got %d", 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, "invalid argument: k must be positive, got 0", err.Error())
}
