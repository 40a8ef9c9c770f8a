package chart

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/qmatter/hofstadter/pkg/errors"
	"github.com/qmatter/hofstadter/pkg/spectrum"
)

// Display selects how a band over the Brillouin zone is drawn.
type Display string

const (
	// Display3D draws the band as a contour landscape.
	Display3D Display = "3D"
	// Display2D draws the band as a heat map.
	Display2D Display = "2D"
)

// ParseDisplay accepts "3D" or "2D" in any case.
func ParseDisplay(s string) (Display, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "3D":
		return Display3D, nil
	case "2D":
		return Display2D, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown display %q (want 3D or 2D)", s)
}

// contourLevels is the number of contour lines in the 3D display.
const contourLevels = 12

// grid adapts a [ix][iy] array to plotter.GridXYZ on the unit square of
// fractional momenta.
type grid [][]float64

func (g grid) Dims() (c, r int)   { return len(g), len(g[0]) }
func (g grid) Z(c, r int) float64 { return g[c][r] }
func (g grid) X(c int) float64    { return frac(c, len(g)) }
func (g grid) Y(r int) float64    { return frac(r, len(g[0])) }

func frac(i, n int) float64 {
	if n < 2 {
		return 0
	}
	return float64(i) / float64(n-1)
}

func (g grid) extent() (lo, hi float64) {
	lo, hi = g[0][0], g[0][0]
	for _, col := range g {
		lo = min(lo, floats.Min(col))
		hi = max(hi, floats.Max(col))
	}
	return lo, hi
}

// PathChart plots every band along the high-symmetry path, with the
// symmetry points as x ticks.
func PathChart(ps *spectrum.PathSpectrum, title string) (*plot.Plot, error) {
	if ps == nil || len(ps.Distance) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "empty band path")
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "k"
	p.Y.Label.Text = "E / t"
	p.X.Min = 0
	p.X.Max = ps.Distance[len(ps.Distance)-1]
	p.Add(plotter.NewGrid())

	for band, energies := range ps.Energies {
		xys := make(plotter.XYs, len(energies))
		for i, e := range energies {
			xys[i] = plotter.XY{X: ps.Distance[i], Y: e}
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("band %d: %w", band, err)
		}
		line.Color = plotutil.Color(band)
		line.Width = vg.Points(1.2)
		p.Add(line)
	}

	ticks := make([]plot.Tick, len(ps.Ticks))
	for i, t := range ps.Ticks {
		ticks[i] = plot.Tick{Value: t.Position, Label: t.Label}
	}
	p.X.Tick.Marker = plot.ConstantTicks(ticks)
	return p, nil
}

// BandMap draws one band over the Brillouin zone.
func BandMap(f *spectrum.EigenField, band int, display Display, pal string) (*plot.Plot, error) {
	if f == nil || f.Samples < 2 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "band map needs a field with at least 2 samples")
	}
	if band < 0 || band >= f.Bands {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "band %d out of range [0, %d)", band, f.Bands)
	}
	p, err := mapPlot(grid(f.Band(band)), display, pal)
	if err != nil {
		return nil, err
	}
	p.Title.Text = fmt.Sprintf("band %d", band)
	return p, nil
}

// CurvatureMap draws a Berry curvature field as a heat map.
func CurvatureMap(values [][]float64, title, pal string) (*plot.Plot, error) {
	if len(values) == 0 || len(values[0]) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "empty curvature field")
	}
	p, err := mapPlot(grid(values), Display2D, pal)
	if err != nil {
		return nil, err
	}
	p.Title.Text = title
	return p, nil
}

func mapPlot(g grid, display Display, pal string) (*plot.Plot, error) {
	p := plot.New()
	p.X.Label.Text = "k1 / b1"
	p.Y.Label.Text = "k2 / b2"

	lo, hi := g.extent()
	switch display {
	case Display2D:
		colors, err := NewPalette(pal, 255)
		if err != nil {
			return nil, err
		}
		hm := plotter.NewHeatMap(g, colors)
		if lo == hi {
			hm.Min, hm.Max = lo-0.5, hi+0.5
		}
		p.Add(hm)
	case Display3D:
		levels := []float64{lo}
		if hi > lo {
			levels = make([]float64, contourLevels)
			for i := range levels {
				levels[i] = lo + (hi-lo)*(float64(i)+0.5)/contourLevels
			}
		}
		colors, err := NewPalette(pal, len(levels))
		if err != nil {
			return nil, err
		}
		p.Add(plotter.NewContour(g, levels, colors))
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown display %q", display)
	}
	return p, nil
}

// WannierChart plots hybrid Wannier centers against k1, one series per
// band set.
func WannierChart(centers [][]float64, labels []string) (*plot.Plot, error) {
	if len(labels) != len(centers) {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "%d labels for %d series", len(labels), len(centers))
	}
	p := plot.New()
	p.Title.Text = "Wannier centers"
	p.X.Label.Text = "k1 / b1"
	p.Y.Label.Text = "x2 / a2"
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = -0.5, 0.5
	p.Legend.Top = true

	for i, series := range centers {
		xys := make(plotter.XYs, len(series))
		for ix, c := range series {
			xys[ix] = plotter.XY{X: frac(ix, len(series)), Y: c}
		}
		s, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", labels[i], err)
		}
		s.GlyphStyle.Color = plotutil.Color(i)
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		s.GlyphStyle.Radius = vg.Points(1.5)
		p.Add(s)
		p.Legend.Add(labels[i], s)
	}
	return p, nil
}
