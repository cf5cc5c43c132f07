package probelsh

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; the
// prommetrics package provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordFill is called after each Fill.
	// vectors is the corpus size, err is nil if successful.
	RecordFill(vectors int, duration time.Duration, err error)

	// RecordProbe is called after each KProbe.
	// stats is the zero value when the query was rejected before probing.
	RecordProbe(k int, stats ProbeStats, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordFill(int, time.Duration, error)              {}
func (NoopMetricsCollector) RecordProbe(int, ProbeStats, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	FillCount       atomic.Int64
	FillErrors      atomic.Int64
	FillVectors     atomic.Int64
	FillTotalNanos  atomic.Int64
	ProbeCount      atomic.Int64
	ProbeErrors     atomic.Int64
	ProbeTotalNanos atomic.Int64
	ProbesIssued    atomic.Int64
	Candidates      atomic.Int64
	EmptyResults    atomic.Int64
}

// RecordFill implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFill(vectors int, duration time.Duration, err error) {
	b.FillCount.Add(1)
	b.FillTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.FillErrors.Add(1)
		return
	}
	b.FillVectors.Add(int64(vectors))
}

// RecordProbe implements MetricsCollector.
func (b *BasicMetricsCollector) RecordProbe(k int, stats ProbeStats, duration time.Duration, err error) {
	b.ProbeCount.Add(1)
	b.ProbeTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ProbeErrors.Add(1)
		return
	}
	b.ProbesIssued.Add(int64(stats.Probes))
	b.Candidates.Add(int64(stats.Candidates))
	if stats.Candidates == 0 {
		b.EmptyResults.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		FillCount:     b.FillCount.Load(),
		FillErrors:    b.FillErrors.Load(),
		FillVectors:   b.FillVectors.Load(),
		FillAvgNanos:  avg(b.FillTotalNanos.Load(), b.FillCount.Load()),
		ProbeCount:    b.ProbeCount.Load(),
		ProbeErrors:   b.ProbeErrors.Load(),
		ProbeAvgNanos: avg(b.ProbeTotalNanos.Load(), b.ProbeCount.Load()),
		ProbesIssued:  b.ProbesIssued.Load(),
		Candidates:    b.Candidates.Load(),
		EmptyResults:  b.EmptyResults.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	FillCount     int64
	FillErrors    int64
	FillVectors   int64
	FillAvgNanos  int64
	ProbeCount    int64
	ProbeErrors   int64
	ProbeAvgNanos int64
	ProbesIssued  int64
	Candidates    int64
	EmptyResults  int64
}
