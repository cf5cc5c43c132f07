package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hupe1980/probelsh/dataset"
	"github.com/spf13/cobra"
)

func newGenCmd(a *app) *cobra.Command {
	def := DefaultConfig()
	var (
		outPath string
		unit    bool
	)

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Write Gaussian synthetic vectors as fvecs",
		Long: `gen writes synthetic vectors in fvecs format. A .zst, .gz or .lz4
suffix on --out compresses the file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGen(a, cmd.OutOrStdout(), outPath, unit)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&outPath, "out", "o", "", "output file")
	f.Int("vectors", def.Bench.Vectors, "number of vectors")
	f.Int("dim", def.Bench.Dim, "vector dimension")
	f.BoolVar(&unit, "unit", false, "normalize vectors to unit length (query style)")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func runGen(a *app, out io.Writer, path string, unit bool) (err error) {
	cfg := a.cfg
	if cfg.Bench.Vectors < 1 || cfg.Bench.Dim < 1 {
		return errors.New("vectors and dim must be positive")
	}

	var vectors [][]float32
	if unit {
		vectors = dataset.SyntheticQueries(cfg.Bench.Vectors, cfg.Bench.Dim, cfg.Index.Seed)
	} else {
		vectors = dataset.Synthetic(cfg.Bench.Vectors, cfg.Bench.Dim, cfg.Index.Seed)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w, err := dataset.Compress(path, f)
	if err != nil {
		return err
	}
	if err := dataset.WriteFvecs(w, vectors); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	fmt.Fprintf(out, "wrote %d vectors of dimension %d to %s\n", len(vectors), cfg.Bench.Dim, path)
	return nil
}
