package lsh

import (
	"testing"

	"github.com/hupe1980/probelsh/normal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func axisBank(t *testing.T) *ProjectionBank {
	t.Helper()
	bank, err := NewProjectionBankFromPlanes([][]float32{{1, 0}, {0, 1}})
	require.NoError(t, err)
	return bank
}

func TestSignatureOf(t *testing.T) {
	bank := axisBank(t)

	tests := []struct {
		name    string
		v       []float32
		sig     Signature
		margins Margins
	}{
		{"Positive", []float32{0.9, 0.1}, 0b11, Margins{0.9, 0.1}},
		{"FirstNegative", []float32{-1, 0}, 0b10, Margins{1, 0}},
		{"SecondNegative", []float32{0, -1}, 0b01, Margins{0, 1}},
		{"ZeroIsPositive", []float32{0, 0}, 0b11, Margins{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, margins, err := bank.SignatureOf(tt.v)
			require.NoError(t, err)
			assert.Equal(t, tt.sig, sig)
			assert.InDeltaSlice(t, tt.margins, margins, 1e-6)

			h, err := bank.Hash(tt.v)
			require.NoError(t, err)
			assert.Equal(t, sig, h)
		})
	}
}

func TestSignatureOf_DimensionMismatch(t *testing.T) {
	bank := axisBank(t)

	_, _, err := bank.SignatureOf([]float32{1, 2, 3})
	var dm *ErrDimensionMismatch
	require.ErrorAs(t, err, &dm)
	assert.Equal(t, 2, dm.Expected)
	assert.Equal(t, 3, dm.Actual)

	_, err = bank.Hash(nil)
	require.ErrorAs(t, err, &dm)
}

func TestNewProjectionBank(t *testing.T) {
	t.Run("Deterministic", func(t *testing.T) {
		a, err := NewProjectionBank(16, 8, normal.New(normal.DefaultConfig, 9, 0))
		require.NoError(t, err)
		b, err := NewProjectionBank(16, 8, normal.New(normal.DefaultConfig, 9, 0))
		require.NoError(t, err)

		assert.Equal(t, 16, a.Bits())
		assert.Equal(t, 8, a.Dimension())
		for i := range a.Bits() {
			assert.Equal(t, a.Plane(i), b.Plane(i))
		}
	})

	t.Run("InvalidShape", func(t *testing.T) {
		f := normal.New(normal.DefaultConfig, 1, 0)
		_, err := NewProjectionBank(0, 8, f)
		assert.ErrorIs(t, err, ErrInvalidBits)
		_, err = NewProjectionBank(65, 8, f)
		assert.ErrorIs(t, err, ErrInvalidBits)
		_, err = NewProjectionBank(8, 0, f)
		assert.ErrorIs(t, err, ErrInvalidDimension)
	})

	t.Run("RaggedPlanes", func(t *testing.T) {
		_, err := NewProjectionBankFromPlanes([][]float32{{1, 0}, {1}})
		var dm *ErrDimensionMismatch
		assert.ErrorAs(t, err, &dm)

		_, err = NewProjectionBankFromPlanes(nil)
		assert.ErrorIs(t, err, ErrInvalidBits)
	})

	t.Run("PlanesAreCopied", func(t *testing.T) {
		planes := [][]float32{{1, 0}, {0, 1}}
		bank, err := NewProjectionBankFromPlanes(planes)
		require.NoError(t, err)
		planes[0][0] = -1
		assert.Equal(t, []float32{1, 0}, bank.Plane(0))
	})
}

func TestSignature(t *testing.T) {
	s := Signature(0b1010)
	assert.True(t, s.Bit(1))
	assert.False(t, s.Bit(0))
	assert.Equal(t, Signature(0b1001), s.Flip(0b0011))
	assert.Equal(t, 2, s.Distance(0b1001))
}
