package lsh

import (
	"errors"
	"math"
)

// ErrInvalidProbability is returned by SizesFromProbs for probabilities
// outside 0 < p2 < p1 < 1.
var ErrInvalidProbability = errors.New("lsh: probabilities must satisfy 0 < p2 < p1 < 1")

// SizesFromProbs picks a signature width and table count for n vectors.
//
// p1 is the per-bit collision probability of a near pair and p2 that of a far
// pair. The width makes a far pair collide in a table with probability ~1/n;
// the table count is n^rho with rho = ln(1/p1)/ln(1/p2). The width is capped
// at MaxBits.
func SizesFromProbs(n int, p1, p2 float64) (bits, tables int, err error) {
	if !(0 < p2 && p2 < p1 && p1 < 1) {
		return 0, 0, ErrInvalidProbability
	}
	if n < 2 {
		return 1, 1, nil
	}

	logN := math.Log(float64(n))
	rho := math.Log(1/p1) / math.Log(1/p2)

	bits = int(math.Ceil(logN / math.Log(1/p2)))
	bits = min(max(bits, 1), MaxBits)
	tables = max(int(math.Ceil(math.Pow(float64(n), rho))), 1)
	return bits, tables, nil
}

// CollisionProbability is the chance that one random hyperplane gives two
// vectors with cosine similarity cos the same sign: 1 - arccos(cos)/pi.
func CollisionProbability(cos float64) float64 {
	cos = math.Max(-1, math.Min(1, cos))
	return 1 - math.Acos(cos)/math.Pi
}
