package stats

import (
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
)

// Summary aggregates the queries recorded by a Tracker.
type Summary struct {
	Queries          int
	MeanProbes       float64
	StdevProbes      float64
	MeanCandidates   float64
	MedianCandidates float64
	MaxCandidates    int
	// ProbeHistogram counts queries by number of probes issued.
	ProbeHistogram []int64
	// Touched is the number of distinct corpus indices returned by any query.
	Touched uint64
}

// Tracker accumulates per-query probe statistics. It is safe for concurrent use.
type Tracker struct {
	mu         sync.Mutex
	probes     []int
	candidates []int
	touched    *roaring.Bitmap
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{touched: roaring.New()}
}

// Observe records one query: the probes it issued, the distinct candidates it
// scored and the corpus indices it returned.
func (t *Tracker) Observe(probes, candidates int, ids ...uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.probes = append(t.probes, probes)
	t.candidates = append(t.candidates, candidates)
	t.touched.AddMany(ids)
}

// Len returns the number of recorded queries.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.probes)
}

// Reset forgets all recorded queries.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.probes = t.probes[:0]
	t.candidates = t.candidates[:0]
	t.touched.Clear()
}

// Summary computes the aggregate view. It returns ErrEmpty before the first
// Observe.
func (t *Tracker) Summary() (Summary, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.probes) == 0 {
		return Summary{}, ErrEmpty
	}

	s := Summary{
		Queries: len(t.probes),
		Touched: t.touched.GetCardinality(),
	}
	// Counts are never empty or negative here.
	s.MeanProbes, _ = Mean(t.probes)
	s.StdevProbes, _ = Stdev(t.probes)
	s.MeanCandidates, _ = Mean(t.candidates)
	s.MedianCandidates, _ = Median(t.candidates)
	s.ProbeHistogram, _ = Histogram(t.probes)
	for _, c := range t.candidates {
		s.MaxCandidates = max(s.MaxCandidates, c)
	}
	return s, nil
}
