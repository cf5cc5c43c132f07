// Package stats provides the descriptive statistics, top-k selection and
// recall measurement used to evaluate probe quality.
//
// Functions return ErrEmpty for empty input instead of panicking.
//
//	truth, _ := stats.TopK(k, corpus, byDot(q), byDotDesc(q))
//	recall, err := stats.Recall(truth, predicted)
package stats
