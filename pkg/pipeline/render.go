package pipeline

import (
	"fmt"
	"strings"

	"gonum.org/v1/plot"

	"github.com/qmatter/hofstadter/pkg/butterfly"
	"github.com/qmatter/hofstadter/pkg/errors"
	hio "github.com/qmatter/hofstadter/pkg/io"
	"github.com/qmatter/hofstadter/pkg/lattice"
	"github.com/qmatter/hofstadter/pkg/render/chart"
	"github.com/qmatter/hofstadter/pkg/render/nodelink"
)

// Figure kinds.
const (
	KindPath      = "path"
	KindBands     = "bands"
	KindCurvature = "curvature" // suffixed with the band set index
	KindWannier   = "wannier"
	KindButterfly = "butterfly"
	KindPaths     = "paths"
)

// figure is a named plot built on demand, so the cache can be consulted
// before anything is drawn.
type figure struct {
	kind  string
	build func() (*plot.Plot, error)
}

// figures lists the figures of a bundle.
func figures(b *hio.Bundle, opts Options) ([]figure, error) {
	switch b.Args.Program {
	case hio.ProgramBands:
		return bandFigures(b, opts), nil
	case hio.ProgramButterfly:
		if b.Data.Butterfly == nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "butterfly bundle has no data")
		}
		return []figure{{
			kind: KindButterfly,
			build: func() (*plot.Plot, error) {
				return chart.ButterflyChart(b.Data.Butterfly, butterfly.Coloring(opts.Color), opts.Palette)
			},
		}}, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown program %q", b.Args.Program)
}

func bandFigures(b *hio.Bundle, opts Options) []figure {
	d := b.Data
	var out []figure
	if d.Path != nil {
		title := fmt.Sprintf("%s, n_phi = %d/%d", b.Model.Lattice, b.Model.P, b.Model.Q)
		out = append(out, figure{KindPath, func() (*plot.Plot, error) { return chart.PathChart(d.Path, title) }})
	}
	if d.Field != nil {
		out = append(out, figure{KindBands, func() (*plot.Plot, error) {
			return chart.BandMap(d.Field, 0, chart.Display(opts.Display), opts.Palette)
		}})
	}

	var (
		centers [][]float64
		labels  []string
	)
	for i, set := range d.Sets {
		label := setLabel(set)
		if len(set.Curvature) > 0 {
			curv := set.Curvature
			title := fmt.Sprintf("%s, C = %.0f", label, set.Chern)
			out = append(out, figure{fmt.Sprintf("%s_%d", KindCurvature, i), func() (*plot.Plot, error) {
				return chart.CurvatureMap(curv, title, opts.Palette)
			}})
		}
		if len(set.Wannier) > 0 {
			centers = append(centers, set.Wannier)
			labels = append(labels, label)
		}
	}
	if len(centers) > 0 {
		out = append(out, figure{KindWannier, func() (*plot.Plot, error) { return chart.WannierChart(centers, labels) }})
	}
	return out
}

func setLabel(s hio.BandSet) string {
	if s.Size == 1 {
		return fmt.Sprintf("band %d", s.Lowest)
	}
	return fmt.Sprintf("bands %d-%d", s.Lowest, s.Lowest+s.Size-1)
}

// Render draws every figure of a bundle in every requested format. Render
// options left empty fall back to the arguments the bundle was saved with.
func Render(b *hio.Bundle, opts Options) (map[string][]byte, error) {
	opts.applyArgs(b.Args)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, err
	}
	figs, err := figures(b, opts)
	if err != nil {
		return nil, err
	}
	artifacts := make(map[string][]byte, len(figs)*len(opts.Formats))
	for _, f := range figs {
		if err := renderFigure(f, opts.Formats, artifacts); err != nil {
			return nil, err
		}
	}
	return artifacts, nil
}

func renderFigure(f figure, formats []string, into map[string][]byte) error {
	p, err := f.build()
	if err != nil {
		return fmt.Errorf("%s figure: %w", f.kind, err)
	}
	for _, format := range formats {
		data, err := chart.Render(p, format)
		if err != nil {
			return fmt.Errorf("render %s %s: %w", f.kind, format, err)
		}
		into[artifactName(f.kind, format)] = data
	}
	return nil
}

// RenderPaths draws the hopping-path diagram of a path set.
func RenderPaths(set lattice.PathSet, opts Options) (map[string][]byte, error) {
	dot := nodelink.ToDOT(set, nodelink.Options{Detailed: opts.Detailed})

	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		var (
			data []byte
			err  error
		)
		switch format {
		case FormatSVG:
			data, err = nodelink.RenderSVG(dot)
		case FormatPNG:
			data, err = nodelink.RenderPNG(dot)
		case FormatDOT:
			data = []byte(dot)
		default:
			return nil, ValidatePathFormat(format)
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[artifactName(KindPaths, format)] = data
	}
	return artifacts, nil
}

// ArtifactFileName names an artifact after its bundle:
// <bundle name>_<kind>.<format>. The butterfly figure takes the bundle
// name unchanged.
func ArtifactFileName(b *hio.Bundle, artifact string) string {
	kind, format, _ := strings.Cut(artifact, ".")
	base := hio.FileName(b, "")
	if b.Args.Program == hio.ProgramButterfly && kind == KindButterfly {
		return base + "." + format
	}
	return base + "_" + kind + "." + format
}
