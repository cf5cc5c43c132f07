// Command lshbench measures recall and probe cost of probelsh indexes on
// synthetic or SIFT-style datasets.
//
//	lshbench synth --k-max 20 --max-probes 20
//	lshbench gen --out base.fvecs.zst --vectors 100000 --dim 128
//	lshbench dataset --base s3://bucket/sift/base.fvecs --queries s3://bucket/sift/query.fvecs
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(&app{}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
