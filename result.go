package probelsh

import "fmt"

// StopReason tells why a query stopped probing.
type StopReason int

const (
	// StopBudget means maxProbes probes were issued.
	StopBudget StopReason = iota
	// StopExhausted means every table's probe sequence ran out.
	StopExhausted
	// StopMinCandidates means Options.MinCandidates distinct candidates were collected.
	StopMinCandidates
)

func (r StopReason) String() string {
	switch r {
	case StopBudget:
		return "budget"
	case StopExhausted:
		return "exhausted"
	case StopMinCandidates:
		return "min_candidates"
	default:
		return fmt.Sprintf("StopReason(%d)", int(r))
	}
}

// ProbeStats records the work of one KProbe call.
type ProbeStats struct {
	// Probes is the total number of bucket lookups issued.
	Probes int
	// Candidates is the number of distinct corpus indices scored.
	Candidates int
	// PerTable is the number of probes issued per table.
	PerTable []int
	// NonEmptyBuckets is the number of probes that hit an existing bucket.
	NonEmptyBuckets int
	// Stop is why probing ended.
	Stop StopReason
}

// Neighbor is one ranked result.
type Neighbor struct {
	// ID is the index of the vector in the filled corpus.
	ID uint32
	// Score is the exact similarity to the query; larger is better.
	Score float32
	// Vector is the corpus vector. It must not be modified.
	Vector []float32
}

// ProbeResult is the outcome of KProbe. Neighbors is ordered best first.
type ProbeResult struct {
	Neighbors []Neighbor
	Stats     ProbeStats
}

// Found reports whether any candidate was collected.
func (r *ProbeResult) Found() bool {
	return r != nil && len(r.Neighbors) > 0
}

// IDs returns the neighbor corpus indices, best first.
func (r *ProbeResult) IDs() []uint32 {
	ids := make([]uint32, len(r.Neighbors))
	for i, n := range r.Neighbors {
		ids[i] = n.ID
	}
	return ids
}

// Vectors returns the neighbor vectors, best first.
func (r *ProbeResult) Vectors() [][]float32 {
	vs := make([][]float32, len(r.Neighbors))
	for i, n := range r.Neighbors {
		vs[i] = n.Vector
	}
	return vs
}
