package lsh

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidBits is returned when a bank is configured with bits outside [1, MaxBits].
	ErrInvalidBits = errors.New("lsh: bits must be in [1, 64]")

	// ErrInvalidDimension is returned when a bank is configured with dim < 1.
	ErrInvalidDimension = errors.New("lsh: dimension must be positive")

	// ErrInvalidPartitions is returned when norm ranging is asked for fewer than one range.
	ErrInvalidPartitions = errors.New("lsh: partitions must be positive")
)

// ErrDimensionMismatch reports a vector whose length differs from the bank dimension.
type ErrDimensionMismatch struct {
	Expected int // Bank dimension
	Actual   int // Vector length
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("lsh: dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}
