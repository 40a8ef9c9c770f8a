package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qmatter/hofstadter/pkg/pipeline"
)

// pathsCommand creates the paths command for hopping-path diagrams.
func (c *CLI) pathsCommand() *cobra.Command {
	var (
		mf       modelFlags
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "paths",
		Short: "Draw the hopping paths of a lattice as a node-link diagram",
		Long: `Draw the hopping paths that enter the Hamiltonian of a lattice.

Nodes are lattice sites labeled by their (m, n) coordinates in the
primitive basis, edges are hoppings colored by the net they belong to.
With --detailed every edge is labeled with its neighbor shell and net.

Formats: svg (default), png, dot.`,
		Example: `  hofstadter paths -l triangular -t 1,0.5
  hofstadter paths -l honeycomb --detailed -f dot`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.Config.BandsOptions()
			opts.Formats = []string{pipeline.FormatSVG}
			if err := mf.apply(cmd, &opts); err != nil {
				return err
			}
			opts.Detailed = detailed
			return c.runPaths(cmd.Context(), opts)
		},
	}

	mf.register(cmd, true)
	cmd.Flags().BoolVar(&detailed, "detailed", false, "label edges with shell and net")

	return cmd
}

func (c *CLI) runPaths(ctx context.Context, opts pipeline.Options) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = loggerFromContext(ctx)

	prog := newProgress(opts.Logger)
	spinner := newSpinnerWithContext(ctx, "Laying out hopping paths...")
	spinner.Start()
	artifacts, err := runner.Paths(ctx, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()
	prog.done("Laid out hopping paths")

	formats := make([]string, 0, len(artifacts))
	for name := range artifacts {
		formats = append(formats, name)
	}
	sort.Strings(formats)
	printSuccess("Hopping paths: %s lattice, t = %v", opts.Lattice, opts.T)
	printDetail("%s", strings.Join(formats, ", "))
	if opts.OutDir != "" {
		printDetail("Written to %s", opts.OutDir)
	}
	return nil
}
