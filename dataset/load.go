package dataset

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/hupe1980/probelsh/distance"
	"github.com/hupe1980/probelsh/internal/conv"
	"github.com/hupe1980/probelsh/normal"
	"github.com/hupe1980/probelsh/resource"
)

// open opens name from src, applies the controller's IO limit to the raw
// bytes and decompresses by suffix.
func open(ctx context.Context, src Source, name string, rc *resource.Controller) (io.ReadCloser, string, error) {
	raw, err := src.Open(ctx, name)
	if err != nil {
		return nil, "", err
	}

	var r io.ReadCloser = raw
	if rc != nil {
		r = resource.NewRateLimitedReader(ctx, raw, rc)
	}

	dec, err := Decompress(name, r)
	if err != nil {
		_ = raw.Close()
		return nil, "", err
	}

	base, _ := SplitCompression(name)
	return dec, path.Ext(base), nil
}

// LoadVectors reads an .fvecs dataset, optionally compressed.
// rc may be nil.
func LoadVectors(ctx context.Context, src Source, name string, rc *resource.Controller) ([][]float32, error) {
	r, ext, err := open(ctx, src, name, rc)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	if ext != ".fvecs" {
		return nil, fmt.Errorf("dataset: %s: unsupported vector format %q", name, ext)
	}
	vectors, err := ReadFvecs(r)
	if err != nil {
		return nil, fmt.Errorf("dataset: %s: %w", name, err)
	}
	return vectors, nil
}

// LoadNeighbors reads an .ivecs ground truth file, optionally compressed.
// rc may be nil.
func LoadNeighbors(ctx context.Context, src Source, name string, rc *resource.Controller) ([][]uint32, error) {
	r, ext, err := open(ctx, src, name, rc)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	if ext != ".ivecs" {
		return nil, fmt.Errorf("dataset: %s: unsupported neighbor format %q", name, ext)
	}
	rows, err := ReadIvecs(r)
	if err != nil {
		return nil, fmt.Errorf("dataset: %s: %w", name, err)
	}

	out := make([][]uint32, len(rows))
	for i, row := range rows {
		if out[i], err = conv.ToUint32Slice(row); err != nil {
			return nil, fmt.Errorf("dataset: %s: row %d: negative id: %w", name, i, err)
		}
	}
	return out, nil
}

// Synthetic generates n vectors of dimension dim with independent N(0, 1)
// components from the given seed.
func Synthetic(n, dim int, seed uint64) [][]float32 {
	return normal.New(normal.DefaultConfig, seed, 0).Matrix(n, dim)
}

// SyntheticQueries generates n unit-norm query vectors from the given seed,
// independent of Synthetic with the same seed.
func SyntheticQueries(n, dim int, seed uint64) [][]float32 {
	qs := normal.New(normal.DefaultConfig, seed, 1).Matrix(n, dim)
	for _, q := range qs {
		distance.NormalizeL2InPlace(q)
	}
	return qs
}
