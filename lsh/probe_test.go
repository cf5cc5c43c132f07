package lsh

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(s Sequencer) []Probe {
	var out []Probe
	for p := range All(s) {
		out = append(out, p)
	}
	return out
}

func randomMargins(seed uint64, n int) Margins {
	r := rand.New(rand.NewPCG(seed, 0))
	m := make(Margins, n)
	for i := range m {
		m[i] = r.Float32()
	}
	return m
}

func TestMarginSequencer_Exhaustive(t *testing.T) {
	const width = 8
	margins := randomMargins(1, width)
	base := Signature(0b10110010)

	probes := drain(NewMarginSequencer(base, margins, 0))
	require.Len(t, probes, 1<<width)

	assert.Equal(t, base, probes[0].Signature)
	assert.Equal(t, Signature(0), probes[0].Flips)
	assert.Zero(t, probes[0].Cost)

	seen := make(map[Signature]bool, len(probes))
	for i, p := range probes {
		assert.False(t, seen[p.Signature], "duplicate probe %08b", p.Signature)
		seen[p.Signature] = true

		assert.Equal(t, base^p.Flips, p.Signature)

		var cost float64
		for b := range width {
			if p.Flips.Bit(b) {
				cost += float64(margins[b])
			}
		}
		assert.InDelta(t, cost, p.Cost, 1e-6)

		if i > 0 {
			assert.GreaterOrEqual(t, p.Cost, probes[i-1].Cost, "probe %d out of order", i)
		}
	}
}

func TestMarginSequencer_SingleFlipsByMargin(t *testing.T) {
	margins := Margins{0.5, 0.1, 0.9, 0.3}

	probes := drain(NewMarginSequencer(0, margins, 0))

	var singles []Signature
	for _, p := range probes {
		if p.Flips != 0 && p.Flips&(p.Flips-1) == 0 {
			singles = append(singles, p.Flips)
		}
	}
	assert.Equal(t, []Signature{0b0010, 0b1000, 0b0001, 0b0100}, singles)

	// Flipping the two cheapest bits (0.1+0.3) is cheaper than the third single flip (0.5).
	assert.Equal(t, Signature(0b1010), probes[3].Flips)
}

func TestMarginSequencer_TieBreak(t *testing.T) {
	margins := Margins{0.2, 0.2, 0.2}

	probes := drain(NewMarginSequencer(0, margins, 4))
	require.Len(t, probes, 4)

	assert.Equal(t, Signature(0), probes[0].Flips)
	assert.Equal(t, Signature(0b001), probes[1].Flips)
	assert.Equal(t, Signature(0b010), probes[2].Flips)
	assert.Equal(t, Signature(0b100), probes[3].Flips)
}

func TestMarginSequencer_Reproducible(t *testing.T) {
	margins := randomMargins(7, 20)

	a := drain(NewMarginSequencer(0xABCDE, margins, 300))
	b := drain(NewMarginSequencer(0xABCDE, margins, 300))
	assert.Equal(t, a, b)
}

func TestMarginSequencer_Budget(t *testing.T) {
	seq := NewMarginSequencer(0, randomMargins(3, 32), 5)

	probes := drain(seq)
	assert.Len(t, probes, 5)

	_, ok := seq.Next()
	assert.False(t, ok, "exhausted sequencer must stay exhausted")
}

func TestMarginSequencer_WideSignature(t *testing.T) {
	margins := randomMargins(11, 64)

	probes := drain(NewMarginSequencer(^Signature(0), margins, 1000))
	require.Len(t, probes, 1000)

	seen := make(map[Signature]bool, len(probes))
	for _, p := range probes {
		assert.False(t, seen[p.Signature])
		seen[p.Signature] = true
	}
}

func TestMarginSequencer_ZeroWidth(t *testing.T) {
	probes := drain(NewMarginSequencer(0, nil, 0))
	require.Len(t, probes, 1)
	assert.Equal(t, Signature(0), probes[0].Signature)
}

func TestHammingSequencer(t *testing.T) {
	t.Run("Exhaustive", func(t *testing.T) {
		const width = 5
		base := Signature(0b10101)

		probes := drain(NewHammingSequencer(base, width, 0))
		require.Len(t, probes, 1<<width)

		seen := make(map[Signature]bool)
		for i, p := range probes {
			assert.False(t, seen[p.Signature])
			seen[p.Signature] = true
			assert.Equal(t, float64(popcountSig(p.Flips)), p.Cost)
			assert.Equal(t, float64(width-SameBits(base, p.Signature, width)), p.Cost)
			if i > 0 {
				prev := probes[i-1]
				if p.Cost == prev.Cost {
					assert.Greater(t, p.Flips, prev.Flips)
				} else {
					assert.Equal(t, prev.Cost+1, p.Cost)
				}
			}
		}
	})

	t.Run("Order", func(t *testing.T) {
		probes := drain(NewHammingSequencer(0, 3, 0))
		var flips []Signature
		for _, p := range probes {
			flips = append(flips, p.Flips)
		}
		assert.Equal(t, []Signature{0, 0b001, 0b010, 0b100, 0b011, 0b101, 0b110, 0b111}, flips)
	})

	t.Run("FullWidth", func(t *testing.T) {
		probes := drain(NewHammingSequencer(0, 64, 66))
		require.Len(t, probes, 66)
		assert.Equal(t, Signature(1)<<63, probes[64].Flips)
		assert.Equal(t, Signature(0b11), probes[65].Flips)
	})

	t.Run("Budget", func(t *testing.T) {
		seq := NewHammingSequencer(0, 16, 3)
		assert.Len(t, drain(seq), 3)
		_, ok := seq.Next()
		assert.False(t, ok)
	})
}

func TestNewSequencer(t *testing.T) {
	margins := Margins{0.9, 0.1}

	m := drain(NewSequencer(StrategyMargin, 0, margins, 0))
	h := drain(NewSequencer(StrategyHamming, 0, margins, 0))

	assert.Equal(t, Signature(0b10), m[1].Flips)
	assert.Equal(t, Signature(0b01), h[1].Flips)
}

func TestParseStrategy(t *testing.T) {
	for _, s := range []Strategy{StrategyMargin, StrategyHamming} {
		got, err := ParseStrategy(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseStrategy("random")
	assert.Error(t, err)
}

func TestSameBits(t *testing.T) {
	assert.Equal(t, 4, SameBits(0b1010, 0b1010, 4))
	assert.Equal(t, 2, SameBits(0b1010, 0b1001, 4))
	assert.Equal(t, 3, SameBits(0b1_0000, 0b0_0001, 4))
	assert.Equal(t, 64, SameBits(^Signature(0), ^Signature(0), 64))
	assert.Equal(t, 0, SameBits(1, 1, 0))
}

func popcountSig(s Signature) int {
	n := 0
	for ; s != 0; s &= s - 1 {
		n++
	}
	return n
}
