// Package lsh implements random-hyperplane locality-sensitive hashing with
// multi-probe query sequencing.
//
// # Components
//
//   - ProjectionBank: a fixed set of random hyperplanes. SignatureOf projects a
//     vector onto every hyperplane and returns a bit Signature plus the
//     per-bit Margins (distance from each hyperplane).
//   - Table: maps each Signature to the Bucket of corpus indices that hashed
//     to it. Built once with BuildTable, then read-only.
//   - Sequencer: a cursor over perturbed signatures, cheapest first. Margin
//     ordering (NewMarginSequencer) ranks bit flips by how close the query
//     lies to the flipped hyperplanes; Hamming ordering (NewHammingSequencer)
//     ranks them purely by the number of flipped bits.
//
// # Usage
//
//	bank, _ := lsh.NewProjectionBank(32, dim, normal.New(normal.DefaultConfig, seed, 0))
//	table, _ := lsh.BuildTable(ctx, bank, corpus, lsh.BuildOptions{})
//
//	sig, margins, _ := bank.SignatureOf(query)
//	seq := lsh.NewMarginSequencer(sig, margins, 8)
//	for p, ok := seq.Next(); ok; p, ok = seq.Next() {
//	    for _, id := range table.Lookup(p.Signature) {
//	        // candidate id
//	    }
//	}
package lsh
