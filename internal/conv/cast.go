package conv

import (
	"errors"
	"fmt"
	"math"
)

// ErrOverflow is returned when a value does not fit the target type.
var ErrOverflow = errors.New("integer overflow")

// Signed is any signed integer type.
type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// ToUint32 converts a signed integer to a vector id.
func ToUint32[T Signed](v T) (uint32, error) {
	if v < 0 {
		return 0, fmt.Errorf("%w: %d is negative", ErrOverflow, v)
	}
	if uint64(v) > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d exceeds uint32", ErrOverflow, v)
	}
	return uint32(v), nil
}

// ToUint32Slice converts every element of vs with ToUint32 and reports the
// position of the first failure.
func ToUint32Slice[T Signed](vs []T) ([]uint32, error) {
	out := make([]uint32, len(vs))
	for i, v := range vs {
		u, err := ToUint32(v)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		out[i] = u
	}
	return out, nil
}
