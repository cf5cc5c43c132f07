// Package prommetrics exports probelsh index metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	mc, err := prommetrics.New(reg)
//	idx, err := probelsh.New(dim, func(o *probelsh.Options) {
//	    o.MetricsCollector = mc
//	})
package prommetrics

import (
	"time"

	"github.com/hupe1980/probelsh"
	"github.com/prometheus/client_golang/prometheus"
)

// Compile time check to ensure Collector satisfies the metrics interface.
var _ probelsh.MetricsCollector = (*Collector)(nil)

// Collector records fill and probe metrics as Prometheus series.
type Collector struct {
	opLatency   *prometheus.HistogramVec
	fillVectors prometheus.Counter
	probes      prometheus.Histogram
	candidates  prometheus.Histogram
	stops       *prometheus.CounterVec
	empty       prometheus.Counter
}

// New creates a Collector and registers its series with reg.
// If reg is nil, prometheus.DefaultRegisterer is used.
func New(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "probelsh_operation_latency_seconds",
			Help:    "Latency of index operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"op", "status"}),
		fillVectors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "probelsh_fill_vectors_total",
			Help: "Total vectors indexed by successful fills",
		}),
		probes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "probelsh_probes_per_query",
			Help:    "Bucket lookups issued per query",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		candidates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "probelsh_candidates_per_query",
			Help:    "Distinct candidates scored per query",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		}),
		stops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "probelsh_probe_stops_total",
			Help: "Queries by the reason probing stopped",
		}, []string{"reason"}),
		empty: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "probelsh_empty_results_total",
			Help: "Queries that found no candidate",
		}),
	}

	for _, col := range []prometheus.Collector{c.opLatency, c.fillVectors, c.probes, c.candidates, c.stops, c.empty} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordFill implements probelsh.MetricsCollector.
func (c *Collector) RecordFill(vectors int, d time.Duration, err error) {
	c.opLatency.WithLabelValues("fill", status(err)).Observe(d.Seconds())
	if err == nil {
		c.fillVectors.Add(float64(vectors))
	}
}

// RecordProbe implements probelsh.MetricsCollector.
func (c *Collector) RecordProbe(_ int, st probelsh.ProbeStats, d time.Duration, err error) {
	c.opLatency.WithLabelValues("probe", status(err)).Observe(d.Seconds())
	if err != nil {
		return
	}
	c.probes.Observe(float64(st.Probes))
	c.candidates.Observe(float64(st.Candidates))
	c.stops.WithLabelValues(st.Stop.String()).Inc()
	if st.Candidates == 0 {
		c.empty.Inc()
	}
}
