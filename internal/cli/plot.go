package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	hio "github.com/qmatter/hofstadter/pkg/io"
	"github.com/qmatter/hofstadter/pkg/pipeline"
)

// plotCommand creates the plot command for redrawing a saved run.
func (c *CLI) plotCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "plot [bundle.json]",
		Short: "Redraw the figures of a saved run",
		Long: `Redraw the figures of a saved run from its JSON bundle.

Nothing is recomputed: the bundle holds the spectrum, the invariants and
the butterfly. Display, coloring and palette default to the ones the run
was saved with, so plot can restyle a run without repeating it.`,
		Example: `  hofstadter plot band_structure_square_nphi_1_3_t_1.json -f png
  hofstadter plot butterfly_square_q_97_t_1_col_none_heat.json --color avron`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runPlot(cmd.Context(), args[0], opts, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output directory (default: next to the bundle)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, eps (comma-separated)")
	cmd.Flags().StringVar(&opts.Display, "display", "", "band map display: 3D, 2D")
	cmd.Flags().StringVar(&opts.Color, "color", "", "butterfly coloring: none, point, avron")
	cmd.Flags().StringVar(&opts.Palette, "palette", "", "color palette: heat, rainbow, bluered")

	return cmd
}

// runPlot loads a bundle and renders it.
func (c *CLI) runPlot(ctx context.Context, input string, opts pipeline.Options, output string) error {
	logger := loggerFromContext(ctx)
	if _, err := hio.ParseFileName(input); err != nil {
		logger.Debug("bundle has no conventional name", "path", input)
	}
	b, err := hio.ImportJSON(input)
	if err != nil {
		return fmt.Errorf("load bundle %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = logger

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Drawing %s...", b.Args.Program))
	spinner.Start()

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, b, opts)
	if err != nil {
		spinner.StopWithError("Drawing failed")
		return fmt.Errorf("plot: %w", err)
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Drew %d figures", len(artifacts)))

	dir := outputDir(output, input)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	printSuccess("Drew %d figures", len(artifacts))
	printStats(cacheHit, string(b.Args.Program), b.Meta.ID.String())
	for artifact, data := range artifacts {
		path := filepath.Join(dir, pipeline.ArtifactFileName(b, artifact))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	for _, name := range artifactFiles(b, artifacts) {
		printFile(filepath.Join(dir, name))
	}
	return nil
}

// outputDir returns the directory figures are written to: output when
// given, otherwise the bundle's directory.
func outputDir(output, input string) string {
	if output != "" {
		return output
	}
	return filepath.Dir(input)
}
