package probelsh

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hupe1980/probelsh/lsh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicMetricsCollector(t *testing.T) {
	var m BasicMetricsCollector

	m.RecordFill(100, 2*time.Millisecond, nil)
	m.RecordFill(50, 4*time.Millisecond, errors.New("boom"))
	m.RecordProbe(5, ProbeStats{Probes: 10, Candidates: 40}, time.Millisecond, nil)
	m.RecordProbe(5, ProbeStats{Probes: 4}, 3*time.Millisecond, nil)
	m.RecordProbe(5, ProbeStats{}, time.Millisecond, errors.New("bad"))

	s := m.GetStats()
	assert.Equal(t, int64(2), s.FillCount)
	assert.Equal(t, int64(1), s.FillErrors)
	assert.Equal(t, int64(100), s.FillVectors)
	assert.Equal(t, (3 * time.Millisecond).Nanoseconds(), s.FillAvgNanos)
	assert.Equal(t, int64(3), s.ProbeCount)
	assert.Equal(t, int64(1), s.ProbeErrors)
	assert.Equal(t, int64(14), s.ProbesIssued)
	assert.Equal(t, int64(40), s.Candidates)
	assert.Equal(t, int64(1), s.EmptyResults)
	assert.Equal(t, (5 * time.Millisecond / 3).Nanoseconds(), s.ProbeAvgNanos)
}

func TestBasicMetricsCollector_Empty(t *testing.T) {
	var m BasicMetricsCollector
	assert.Equal(t, BasicMetricsStats{}, m.GetStats())
}

func TestMetrics_Index(t *testing.T) {
	m := &BasicMetricsCollector{}

	idx, err := New(2, func(o *Options) {
		o.Banks = []*lsh.ProjectionBank{axisBank(t)}
		o.MetricsCollector = m
	})
	require.NoError(t, err)

	require.NoError(t, idx.Fill(context.Background(), axisCorpus, false))
	_, err = idx.KProbe(context.Background(), 2, []float32{0.9, 0.1}, 2)
	require.NoError(t, err)
	_, err = idx.KProbe(context.Background(), 0, []float32{0.9, 0.1}, 2)
	require.Error(t, err)

	s := m.GetStats()
	assert.Equal(t, int64(1), s.FillCount)
	assert.Equal(t, int64(4), s.FillVectors)
	assert.Equal(t, int64(2), s.ProbeCount)
	assert.Equal(t, int64(1), s.ProbeErrors)
	assert.Equal(t, int64(2), s.ProbesIssued)
	assert.Equal(t, int64(3), s.Candidates)
}

func TestNoopMetricsCollector(t *testing.T) {
	var m MetricsCollector = NoopMetricsCollector{}
	m.RecordFill(1, 0, nil)
	m.RecordProbe(1, ProbeStats{}, 0, nil)
}
