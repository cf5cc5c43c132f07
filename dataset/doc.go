// Package dataset loads vector corpora for indexing and evaluation.
//
// Corpora are stored in the SIFT .fvecs format, ground truth in .ivecs, and
// either may carry a .zst, .gz or .lz4 suffix. They are read from a local
// directory, an S3 bucket or a MinIO bucket:
//
//	src, name, err := dataset.Resolve(ctx, "s3://bench/sift/base.fvecs.zst", dataset.RemoteConfig{})
//	vectors, err := dataset.LoadVectors(ctx, src, name, nil)
//
// Synthetic Gaussian corpora are generated with Synthetic.
package dataset
