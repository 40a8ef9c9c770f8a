package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qmatter/hofstadter/pkg/pipeline"
)

// modelFlags binds the model flags shared by bands, butterfly and paths.
// Flags left unset keep the value from the config file.
type modelFlags struct {
	lattice string
	t       []float64
	a0      float64
	nphi    []int
	workers int
	formats string
	outDir  string
	refresh bool
}

// register adds the flags to cmd. withFlux adds --nphi, which butterflies
// replace with -q.
func (f *modelFlags) register(cmd *cobra.Command, withFlux bool) {
	flags := cmd.Flags()
	flags.StringVarP(&f.lattice, "lattice", "l", "", "lattice: square, triangular, bravais, honeycomb, kagome")
	flags.Float64SliceVarP(&f.t, "t", "t", nil, "hopping amplitudes in order of ascending neighbor shell (e.g. 1,0.25)")
	flags.Float64Var(&f.a0, "a0", 0, "lattice constant")
	if withFlux {
		flags.IntSliceVar(&f.nphi, "nphi", nil, "flux density p,q (e.g. 1,4)")
	}
	flags.IntVar(&f.workers, "workers", 0, "parallel workers (default: number of CPUs)")
	flags.StringVarP(&f.formats, "format", "f", "", "output format(s), comma-separated")
	flags.StringVarP(&f.outDir, "output", "o", "", "output directory")
	flags.BoolVar(&f.refresh, "refresh", false, "recompute even if the result is cached")
}

// apply overrides opts with every flag set on the command line.
func (f *modelFlags) apply(cmd *cobra.Command, opts *pipeline.Options) error {
	flags := cmd.Flags()
	if flags.Changed("lattice") {
		opts.Lattice = f.lattice
	}
	if flags.Changed("t") {
		opts.T = f.t
	}
	if flags.Changed("a0") {
		opts.A0 = f.a0
	}
	if flags.Changed("nphi") {
		if len(f.nphi) != 2 {
			return fmt.Errorf("--nphi takes two integers p,q, got %v", f.nphi)
		}
		opts.P, opts.Q = f.nphi[0], f.nphi[1]
	}
	if flags.Changed("workers") {
		opts.Workers = f.workers
	}
	if flags.Changed("format") {
		opts.Formats = parseFormats(f.formats)
	}
	if flags.Changed("output") {
		opts.OutDir = f.outDir
	}
	opts.Refresh = f.refresh
	return nil
}

// stringFlag overrides *dst with the named string flag when it was set.
func stringFlag(cmd *cobra.Command, name string, value string, dst *string) {
	if cmd.Flags().Changed(name) {
		*dst = value
	}
}
