package lsh

import (
	"cmp"
	"fmt"
	"iter"
	"math/bits"
	"slices"
)

// Probe is one bucket to inspect during a multi-probe query.
type Probe struct {
	// Signature is the (possibly perturbed) signature to look up.
	Signature Signature
	// Flips holds the bits inverted relative to the query signature.
	Flips Signature
	// Cost is the estimated cost of the perturbation; lower is likelier.
	Cost float64
}

// Sequencer is a cursor over probes in ascending cost.
//
// The unperturbed signature is always the first probe. Once Next reports
// false the sequencer stays exhausted; create a new one to start over.
// A Sequencer is not safe for concurrent use.
type Sequencer interface {
	Next() (Probe, bool)
}

// All adapts a Sequencer to a range-over-func iterator.
func All(s Sequencer) iter.Seq[Probe] {
	return func(yield func(Probe) bool) {
		for p, ok := s.Next(); ok; p, ok = s.Next() {
			if !yield(p) {
				return
			}
		}
	}
}

// Strategy selects how perturbations are ranked.
type Strategy int

const (
	// StrategyMargin ranks perturbations by the summed margin of the flipped bits.
	StrategyMargin Strategy = iota
	// StrategyHamming ranks perturbations by the number of flipped bits only.
	StrategyHamming
)

func (s Strategy) String() string {
	switch s {
	case StrategyMargin:
		return "margin"
	case StrategyHamming:
		return "hamming"
	default:
		return "unknown"
	}
}

// ParseStrategy maps "margin" or "hamming" to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "margin", "":
		return StrategyMargin, nil
	case "hamming":
		return StrategyHamming, nil
	default:
		return 0, fmt.Errorf("lsh: unknown probe strategy %q", s)
	}
}

// NewSequencer returns the sequencer for strategy. budget caps the number of
// probes yielded, the unperturbed one included; budget <= 0 means no cap
// beyond the 2^bits distinct signatures.
func NewSequencer(strategy Strategy, sig Signature, margins Margins, budget int) Sequencer {
	if strategy == StrategyHamming {
		return NewHammingSequencer(sig, len(margins), budget)
	}
	return NewMarginSequencer(sig, margins, budget)
}

// perturbation is a set of flipped bits, addressed by rank in margin order.
type perturbation struct {
	ranks uint64    // bit r set => the r-th cheapest bit is flipped
	last  int       // highest rank in ranks
	flips Signature // ranks mapped back to signature bit positions
	cost  float64
}

func (p perturbation) less(o perturbation) bool {
	if p.cost != o.cost {
		return p.cost < o.cost
	}
	return p.flips < o.flips
}

// MarginSequencer yields perturbations of a signature in ascending summed margin.
//
// Bits are ranked by margin. Starting from the cheapest single flip, every
// popped set spawns two successors: "shift" replaces its highest rank r with
// r+1 and "expand" adds r+1. Each subset of bits is reached through exactly
// one chain of shifts and expands, and successors never cost less than their
// parent, so a min-heap pops subsets in nondecreasing cost without ever
// enumerating all 2^bits of them. Equal costs pop the lower flip pattern first.
type MarginSequencer struct {
	base    Signature
	order   []int     // signature bit positions, cheapest first
	costs   []float64 // margin of order[r]
	heap    []perturbation
	budget  int
	emitted int
	started bool
	done    bool
}

var _ Sequencer = (*MarginSequencer)(nil)

// NewMarginSequencer creates a margin-ordered sequencer for sig.
// len(margins) determines the signature width.
func NewMarginSequencer(sig Signature, margins Margins, budget int) *MarginSequencer {
	order := make([]int, len(margins))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(margins[a], margins[b])
	})

	costs := make([]float64, len(order))
	for r, bit := range order {
		costs[r] = float64(margins[bit])
	}

	return &MarginSequencer{
		base:   sig,
		order:  order,
		costs:  costs,
		heap:   make([]perturbation, 0, 16),
		budget: budget,
	}
}

// Next returns the next cheapest probe.
func (s *MarginSequencer) Next() (Probe, bool) {
	if s.done {
		return Probe{}, false
	}
	if s.budget > 0 && s.emitted >= s.budget {
		s.done = true
		return Probe{}, false
	}

	if !s.started {
		s.started = true
		if len(s.order) > 0 {
			s.push(s.single(0))
		}
		s.emitted++
		return Probe{Signature: s.base}, true
	}

	p, ok := s.pop()
	if !ok {
		s.done = true
		return Probe{}, false
	}

	if next := p.last + 1; next < len(s.order) {
		shifted := p.ranks&^(1<<uint(p.last)) | 1<<uint(next)
		s.push(s.perturbation(shifted, next))
		s.push(s.perturbation(p.ranks|1<<uint(next), next))
	}

	s.emitted++
	return Probe{Signature: s.base.Flip(p.flips), Flips: p.flips, Cost: p.cost}, true
}

func (s *MarginSequencer) single(rank int) perturbation {
	return s.perturbation(1<<uint(rank), rank)
}

// perturbation sums costs in rank order so that a subset always gets the
// same cost, whichever chain produced it.
func (s *MarginSequencer) perturbation(ranks uint64, last int) perturbation {
	p := perturbation{ranks: ranks, last: last}
	for rest := ranks; rest != 0; rest &= rest - 1 {
		r := bits.TrailingZeros64(rest)
		p.cost += s.costs[r]
		p.flips |= 1 << uint(s.order[r])
	}
	return p
}

func (s *MarginSequencer) push(p perturbation) {
	s.heap = append(s.heap, p)
	i := len(s.heap) - 1
	for i > 0 {
		parent := (i - 1) / 2
		if !s.heap[i].less(s.heap[parent]) {
			break
		}
		s.heap[i], s.heap[parent] = s.heap[parent], s.heap[i]
		i = parent
	}
}

func (s *MarginSequencer) pop() (perturbation, bool) {
	n := len(s.heap)
	if n == 0 {
		return perturbation{}, false
	}
	top := s.heap[0]
	s.heap[0] = s.heap[n-1]
	s.heap = s.heap[:n-1]
	n--

	i := 0
	for {
		l := 2*i + 1
		if l >= n {
			break
		}
		best := l
		if r := l + 1; r < n && s.heap[r].less(s.heap[l]) {
			best = r
		}
		if !s.heap[best].less(s.heap[i]) {
			break
		}
		s.heap[i], s.heap[best] = s.heap[best], s.heap[i]
		i = best
	}
	return top, true
}

// HammingSequencer yields perturbations by increasing Hamming radius.
// Within a radius, flip patterns come in ascending numeric order.
// Margins play no part; Cost is the number of bits that differ from the
// unperturbed signature.
type HammingSequencer struct {
	base    Signature
	width   int
	radius  int
	mask    uint64
	budget  int
	emitted int
	done    bool
}

var _ Sequencer = (*HammingSequencer)(nil)

// NewHammingSequencer creates a radius-ordered sequencer over a width-bit signature.
func NewHammingSequencer(sig Signature, width, budget int) *HammingSequencer {
	return &HammingSequencer{
		base:   sig,
		width:  width,
		budget: budget,
	}
}

// Next returns the next probe.
func (s *HammingSequencer) Next() (Probe, bool) {
	if s.done {
		return Probe{}, false
	}
	if s.budget > 0 && s.emitted >= s.budget {
		s.done = true
		return Probe{}, false
	}

	sig := s.base.Flip(Signature(s.mask))
	p := Probe{
		Signature: sig,
		Flips:     Signature(s.mask),
		Cost:      float64(s.width - SameBits(s.base, sig, s.width)),
	}
	s.emitted++
	s.advance()
	return p, true
}

// advance moves mask to the next pattern with the same popcount
// (Gosper's hack), or to the first pattern of the next radius.
func (s *HammingSequencer) advance() {
	if s.radius > 0 && s.radius < s.width {
		x := s.mask
		c := x & -x
		r := x + c
		next := (((r ^ x) >> 2) / c) | r
		if next > x && (s.width == 64 || next>>uint(s.width) == 0) {
			s.mask = next
			return
		}
	}

	s.radius++
	if s.radius > s.width {
		s.done = true
		return
	}
	if s.radius == 64 {
		s.mask = ^uint64(0)
		return
	}
	s.mask = 1<<uint(s.radius) - 1
}

// SameBits counts the positions among the low width bits where a and b agree.
func SameBits(a, b Signature, width int) int {
	if width <= 0 {
		return 0
	}
	diff := uint64(a ^ b)
	if width < 64 {
		diff &= 1<<uint(width) - 1
	} else {
		width = 64
	}
	return width - bits.OnesCount64(diff)
}
