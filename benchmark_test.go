package probelsh

import (
	"context"
	"fmt"
	"testing"

	"github.com/hupe1980/probelsh/testutil"
)

func BenchmarkFill(b *testing.B) {
	rng := testutil.NewRNG(1)
	corpus := rng.GaussianVectors(1<<14, 32)

	for _, tables := range []int{4, 16} {
		b.Run(fmt.Sprintf("tables=%d", tables), func(b *testing.B) {
			for b.Loop() {
				idx, err := New(32, func(o *Options) {
					o.NumTables = tables
					o.Bits = 24
				})
				if err != nil {
					b.Fatal(err)
				}
				if err := idx.Fill(context.Background(), corpus, false); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkKProbe(b *testing.B) {
	rng := testutil.NewRNG(2)
	corpus := rng.GaussianVectors(1<<15, 32)
	queries := rng.UnitVectors(256, 32)

	idx, err := New(32, func(o *Options) {
		o.NumTables = 16
		o.Bits = 20
	})
	if err != nil {
		b.Fatal(err)
	}
	if err := idx.Fill(context.Background(), corpus, false); err != nil {
		b.Fatal(err)
	}

	for _, probes := range []int{16, 64, 256} {
		b.Run(fmt.Sprintf("probes=%d", probes), func(b *testing.B) {
			i := 0
			for b.Loop() {
				if _, err := idx.KProbe(context.Background(), 10, queries[i%len(queries)], probes); err != nil {
					b.Fatal(err)
				}
				i++
			}
		})
	}
}
