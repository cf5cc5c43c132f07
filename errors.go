package probelsh

import (
	"errors"
	"fmt"

	"github.com/hupe1980/probelsh/lsh"
	"github.com/hupe1980/probelsh/resource"
)

var (
	// ErrInvalidArgument is returned for k < 1, maxProbes < 1 and invalid options.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotReady is returned by KProbe before the first Fill completes and
	// while a rebuild is in progress.
	ErrNotReady = errors.New("index not ready")

	// ErrAlreadyBuilt is returned by Fill on a filled index unless rebuild is set.
	ErrAlreadyBuilt = errors.New("index already built")

	// ErrMemoryLimitExceeded is returned by Fill when the configured
	// resource controller cannot reserve the memory for the new tables.
	ErrMemoryLimitExceeded = resource.ErrMemoryLimitExceeded
)

// ErrDimensionMismatch indicates a vector/query dimensionality mismatch.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var pdm *ErrDimensionMismatch
	if errors.As(err, &pdm) {
		return err
	}
	var dm *lsh.ErrDimensionMismatch
	if errors.As(err, &dm) {
		return &ErrDimensionMismatch{Expected: dm.Expected, Actual: dm.Actual, cause: err}
	}

	if errors.Is(err, lsh.ErrInvalidBits) ||
		errors.Is(err, lsh.ErrInvalidDimension) ||
		errors.Is(err, lsh.ErrInvalidPartitions) ||
		errors.Is(err, lsh.ErrInvalidProbability) {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	return err
}
