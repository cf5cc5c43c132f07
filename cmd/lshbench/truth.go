package main

import (
	"github.com/hupe1980/probelsh/distance"
	"github.com/hupe1980/probelsh/stats"
)

type scored struct {
	id    uint32
	score float32
}

func worse(a, b scored) bool {
	if a.score != b.score {
		return a.score < b.score
	}
	return a.id > b.id
}

func better(a, b scored) bool { return worse(b, a) }

// exactTopK ranks the whole corpus against query and returns the ids of the
// k best, best first.
func exactTopK(corpus [][]float32, query []float32, k int, sim distance.Similarity) []uint32 {
	all := make([]scored, len(corpus))
	for i, v := range corpus {
		all[i] = scored{id: uint32(i), score: sim(query, v)}
	}

	top, _ := stats.TopK(k, all, worse, better)
	ids := make([]uint32, len(top))
	for i, s := range top {
		ids[i] = s.id
	}
	return ids
}

func vectorsOf(corpus [][]float32, ids []uint32) [][]float32 {
	out := make([][]float32, len(ids))
	for i, id := range ids {
		out[i] = corpus[id]
	}
	return out
}
