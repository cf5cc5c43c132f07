// Package probelsh is an approximate nearest-neighbor index built on
// random-hyperplane locality-sensitive hashing with multi-probe queries.
//
// An Index owns several hash tables. Each table hashes every corpus vector to a
// signature, one bit per random hyperplane. A query hashes itself the same way
// and then probes its own bucket plus nearby buckets, chosen by flipping the
// bits whose hyperplanes it lies closest to. Candidates from all tables are
// deduplicated and ranked by their exact similarity to the query.
//
// # Quick Start
//
//	idx, err := probelsh.New(128, func(o *probelsh.Options) {
//	    o.NumTables = 16
//	    o.Bits = 32
//	    o.Seed = 42
//	})
//	if err != nil {
//	    return err
//	}
//	if err := idx.Fill(ctx, corpus, false); err != nil {
//	    return err
//	}
//	res, err := idx.KProbe(ctx, 10, query, 64)
//	if err != nil {
//	    return err
//	}
//	if !res.Found() {
//	    // no bucket within the probe budget held a vector
//	}
//
// # Probe Order
//
// With lsh.StrategyMargin (default) every table yields its exact bucket first
// and then perturbed signatures by ascending sum of the flipped bits' margins.
// lsh.StrategyHamming ignores margins and walks Hamming radius by radius.
// maxProbes bounds the total number of bucket lookups across all tables;
// Options.MinCandidates optionally stops earlier.
//
// # Concurrency
//
// Fill is serialized and publishes an immutable snapshot. KProbe reads the
// snapshot without locks and may run from any number of goroutines.
//
// # Errors
//
// Argument errors wrap ErrInvalidArgument; dimension errors are
// *ErrDimensionMismatch. A query that finds no candidate is not an error.
package probelsh
