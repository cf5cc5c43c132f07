package lsh

import (
	"math"
	"math/bits"

	"github.com/hupe1980/probelsh/normal"
	"github.com/viterin/vek/vek32"
)

// MaxBits is the largest signature width a bank supports.
const MaxBits = 64

// Signature is the packed sign pattern of a vector under one bank.
// Bit i is set iff the projection onto hyperplane i is >= 0.
type Signature uint64

// Bit reports whether bit i is set.
func (s Signature) Bit(i int) bool {
	return s&(1<<uint(i)) != 0
}

// Flip returns s with every bit in mask inverted.
func (s Signature) Flip(mask Signature) Signature {
	return s ^ mask
}

// Distance returns the Hamming distance between two signatures.
func (s Signature) Distance(o Signature) int {
	return bits.OnesCount64(uint64(s ^ o))
}

// Margins holds |dot(v, plane_i)| for each bit of a signature.
// Small values mark bits that are close to their hyperplane.
type Margins []float32

// ProjectionBank is an immutable set of hyperplane normals.
type ProjectionBank struct {
	bits   int
	dim    int
	planes []float32 // bits*dim, row-major
}

// NewProjectionBank draws bits hyperplanes of dimension dim from f.
// Hyperplanes are not normalized; only signs and relative margins matter.
func NewProjectionBank(bits, dim int, f *normal.Filler) (*ProjectionBank, error) {
	if err := validateShape(bits, dim); err != nil {
		return nil, err
	}
	planes := make([]float32, bits*dim)
	f.FillVector(planes)
	return &ProjectionBank{bits: bits, dim: dim, planes: planes}, nil
}

// NewProjectionBankFromPlanes builds a bank from explicit hyperplanes.
// All planes must share the same length. The input is copied.
func NewProjectionBankFromPlanes(planes [][]float32) (*ProjectionBank, error) {
	if len(planes) == 0 {
		return nil, ErrInvalidBits
	}
	dim := len(planes[0])
	if err := validateShape(len(planes), dim); err != nil {
		return nil, err
	}
	flat := make([]float32, 0, len(planes)*dim)
	for _, p := range planes {
		if len(p) != dim {
			return nil, &ErrDimensionMismatch{Expected: dim, Actual: len(p)}
		}
		flat = append(flat, p...)
	}
	return &ProjectionBank{bits: len(planes), dim: dim, planes: flat}, nil
}

func validateShape(bits, dim int) error {
	if bits < 1 || bits > MaxBits {
		return ErrInvalidBits
	}
	if dim < 1 {
		return ErrInvalidDimension
	}
	return nil
}

// Bits returns the signature width.
func (b *ProjectionBank) Bits() int { return b.bits }

// Dimension returns the expected vector length.
func (b *ProjectionBank) Dimension() int { return b.dim }

// Plane returns hyperplane i. The returned slice must not be modified.
func (b *ProjectionBank) Plane(i int) []float32 {
	return b.planes[i*b.dim : (i+1)*b.dim : (i+1)*b.dim]
}

// SignatureOf hashes v and reports the margin of every bit.
func (b *ProjectionBank) SignatureOf(v []float32) (Signature, Margins, error) {
	if len(v) != b.dim {
		return 0, nil, &ErrDimensionMismatch{Expected: b.dim, Actual: len(v)}
	}
	margins := make(Margins, b.bits)
	return b.signatureInto(v, margins), margins, nil
}

// Hash returns only the signature of v.
func (b *ProjectionBank) Hash(v []float32) (Signature, error) {
	if len(v) != b.dim {
		return 0, &ErrDimensionMismatch{Expected: b.dim, Actual: len(v)}
	}
	return b.signatureInto(v, nil), nil
}

// signatureInto assumes len(v) == b.dim. margins may be nil.
func (b *ProjectionBank) signatureInto(v []float32, margins Margins) Signature {
	var sig Signature
	for i := range b.bits {
		p := vek32.Dot(v, b.planes[i*b.dim:(i+1)*b.dim])
		if p >= 0 {
			sig |= 1 << uint(i)
		}
		if margins != nil {
			margins[i] = float32(math.Abs(float64(p)))
		}
	}
	return sig
}
