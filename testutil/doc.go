// Package testutil provides testing utilities for probelsh.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random vectors, computing exact
// nearest neighbors, and verifying probe recall.
//
// # Random Vector Generation
//
//	rng := testutil.NewRNG(seed)
//	corpus := rng.GaussianVectors(1000, 32)
//	queries := rng.UnitVectors(10, 32)
//
// # Exact Search (Ground Truth)
//
//	truth := testutil.ExactTopK(query, corpus, k, distance.Dot)
//
// # Recall Verification
//
//	recall := testutil.ComputeRecall(truth, ids)
package testutil
