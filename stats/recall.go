package stats

import "slices"

// Recall returns the fraction of truth vectors that appear in predicted.
// Vectors are compared element-wise.
func Recall(truth, predicted [][]float32) (float64, error) {
	if len(truth) == 0 {
		return 0, ErrEmpty
	}
	hits := 0
	for _, t := range truth {
		if slices.ContainsFunc(predicted, func(p []float32) bool { return slices.Equal(t, p) }) {
			hits++
		}
	}
	return float64(hits) / float64(len(truth)), nil
}

// RecallIDs is Recall over corpus indices.
func RecallIDs(truth, predicted []uint32) (float64, error) {
	if len(truth) == 0 {
		return 0, ErrEmpty
	}
	hits := 0
	for _, id := range truth {
		if slices.Contains(predicted, id) {
			hits++
		}
	}
	return float64(hits) / float64(len(truth)), nil
}
