package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qmatter/hofstadter/pkg/pipeline"
)

// bandsCommand creates the bands command.
func (c *CLI) bandsCommand() *cobra.Command {
	var (
		mf         modelFlags
		samples    int
		pathPoints int
		bgt        float64
		display    string
		palette    string
		wilson     bool
	)

	cmd := &cobra.Command{
		Use:   "bands",
		Short: "Compute the band structure and topological invariants at flux p/q",
		Long: `Compute the band structure of a lattice at flux density n_phi = p/q.

The Bloch Hamiltonian is diagonalized on a samples x samples grid of the
magnetic Brillouin zone and along the path Γ-Y-S-X-Γ. Bands separated by
direct gaps larger than --bgt form isolated sets; each set gets its Chern
number and Berry curvature, and with --wilson its hybrid Wannier centers.

The run is saved as a JSON bundle next to its figures and recorded in the
run catalog.`,
		Example: `  hofstadter bands --nphi 1,3
  hofstadter bands -l triangular --nphi 1,5 -t 1,0.25 --wilson -f svg,png
  hofstadter bands --nphi 2,7 --samples 51 --display 2D --palette bluered`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.Config.BandsOptions()
			if err := mf.apply(cmd, &opts); err != nil {
				return err
			}
			if cmd.Flags().Changed("samples") {
				opts.Samples = samples
			}
			if cmd.Flags().Changed("path-points") {
				opts.PathPoints = pathPoints
			}
			if cmd.Flags().Changed("bgt") {
				opts.GapThreshold = bgt
			}
			if cmd.Flags().Changed("wilson") {
				opts.Wilson = wilson
			}
			stringFlag(cmd, "display", display, &opts.Display)
			stringFlag(cmd, "palette", palette, &opts.Palette)
			return c.runBands(cmd.Context(), opts)
		},
	}

	mf.register(cmd, true)
	cmd.Flags().IntVarP(&samples, "samples", "s", pipeline.DefaultSamples, "grid points per reciprocal direction")
	cmd.Flags().IntVar(&pathPoints, "path-points", pipeline.DefaultPathPoints, "points per leg of the band path")
	cmd.Flags().Float64Var(&bgt, "bgt", pipeline.DefaultGapThreshold, "band gap threshold")
	cmd.Flags().StringVar(&display, "display", "", "band map display: 3D (contours), 2D (heat map)")
	cmd.Flags().StringVar(&palette, "palette", "", "color palette: heat, rainbow, bluered")
	cmd.Flags().BoolVar(&wilson, "wilson", false, "compute hybrid Wannier centers from Wilson loops")

	return cmd
}

// runBands computes, renders and saves a band structure.
func (c *CLI) runBands(ctx context.Context, opts pipeline.Options) error {
	if err := opts.ValidateForBands(); err != nil {
		return err
	}
	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	title := fmt.Sprintf("Diagonalizing %s lattice at n_phi = %d/%d", opts.Lattice, opts.P, opts.Q)
	var res *pipeline.Result
	err = runWithProgress(ctx, loggerFromContext(ctx), title, func(ctx context.Context, sink *progressSink) error {
		o := opts
		o.Progress = sink.report
		o.Logger = sink.logger
		r, err := runner.Bands(ctx, o)
		res = r
		return err
	})
	if err != nil {
		return err
	}

	printSuccess("Band structure: %s lattice, n_phi = %d/%d", opts.Lattice, opts.P, opts.Q)
	printStats(res.CacheInfo.ComputeHit,
		fmt.Sprintf("%d bands", res.Bundle.Data.Field.Bands),
		fmt.Sprintf("%d isolated sets", len(res.Bundle.Data.Sets)),
		fmt.Sprintf("%d samples", opts.Samples))
	printChernTable(res.Bundle.Data.Sets)
	printSaved(res)
	return nil
}
