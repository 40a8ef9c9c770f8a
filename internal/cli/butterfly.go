package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qmatter/hofstadter/pkg/pipeline"
)

// butterflyCommand creates the butterfly command.
func (c *CLI) butterflyCommand() *cobra.Command {
	var (
		mf      modelFlags
		q       int
		bgt     float64
		color   string
		palette string
	)

	cmd := &cobra.Command{
		Use:   "butterfly",
		Short: "Sweep the flux p/q at fixed q and draw the Hofstadter butterfly",
		Long: `Sweep the flux density n_phi = p/q over every p coprime to q and plot
the energies at k = 0 against n_phi.

Colorings:
  none   black points
  point  points colored by flux
  avron  gaps colored by their Hall conductance t, from the Diophantine
         equation r = q s + p t with |t| <= q/2`,
		Example: `  hofstadter butterfly -q 97
  hofstadter butterfly -l triangular -q 61 --color avron --palette rainbow -f png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.Config.ButterflyOptions()
			if err := mf.apply(cmd, &opts); err != nil {
				return err
			}
			if cmd.Flags().Changed("q") {
				opts.Q = q
			}
			if cmd.Flags().Changed("bgt") {
				opts.GapThreshold = bgt
			}
			stringFlag(cmd, "color", color, &opts.Color)
			stringFlag(cmd, "palette", palette, &opts.Palette)
			return c.runButterfly(cmd.Context(), opts)
		},
	}

	mf.register(cmd, false)
	cmd.Flags().IntVarP(&q, "q", "q", 0, "flux denominator")
	cmd.Flags().Float64Var(&bgt, "bgt", pipeline.DefaultGapThreshold, "smallest gap that gets a Hall label")
	cmd.Flags().StringVar(&color, "color", "", "coloring: none, point, avron")
	cmd.Flags().StringVar(&palette, "palette", "", "color palette: heat, rainbow, bluered")

	return cmd
}

// runButterfly sweeps, renders and saves a butterfly.
func (c *CLI) runButterfly(ctx context.Context, opts pipeline.Options) error {
	if err := opts.ValidateForButterfly(); err != nil {
		return err
	}
	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	title := fmt.Sprintf("Sweeping %s lattice at q = %d", opts.Lattice, opts.Q)
	var res *pipeline.Result
	err = runWithProgress(ctx, loggerFromContext(ctx), title, func(ctx context.Context, sink *progressSink) error {
		o := opts
		o.Progress = sink.report
		o.Logger = sink.logger
		r, err := runner.Butterfly(ctx, o)
		res = r
		return err
	})
	if err != nil {
		return err
	}

	bf := res.Bundle.Data.Butterfly
	printSuccess("Butterfly: %s lattice, q = %d", opts.Lattice, opts.Q)
	printStats(res.CacheInfo.ComputeHit,
		fmt.Sprintf("%d fluxes", len(bf.Columns)),
		fmt.Sprintf("%d Hall values", len(bf.HallValues())),
		fmt.Sprintf("%s coloring", opts.Color))
	printSaved(res)
	return nil
}
