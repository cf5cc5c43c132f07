// Package distance provides similarity functions for ranking candidates.
//
// Every function returns a score where higher means more similar, so that
// callers can plug any of them into a top-k selection without flipping the
// comparison.
//
// # Supported Metrics
//
//   - MetricDot: inner product (default)
//   - MetricCosine: cosine similarity
//   - MetricL2: negated squared Euclidean distance
//
// # Usage
//
//	sim, _ := distance.Provider(distance.MetricCosine)
//	score := sim(a, b)
package distance
