package chart

import (
	"fmt"
	"image/color"
	"slices"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/qmatter/hofstadter/pkg/butterfly"
	"github.com/qmatter/hofstadter/pkg/errors"
)

// ButterflyChart plots the energies of a sweep against the flux.
//
// With ColorNone every point is black. ColorPoint shades points by flux.
// ColorAvron keeps the points black and fills every labeled gap with a
// vertical segment colored by its Hall value t.
func ButterflyChart(b *butterfly.Butterfly, coloring butterfly.Coloring, pal string) (*plot.Plot, error) {
	if b == nil || len(b.Columns) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "empty butterfly")
	}
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s lattice, q = %d", b.Lattice, b.Q)
	p.X.Label.Text = "n_phi"
	p.Y.Label.Text = "E / t"
	p.X.Min, p.X.Max = 0, 1

	var (
		xys    plotter.XYs
		column []int
	)
	for i, col := range b.Columns {
		for _, e := range col.Energies {
			xys = append(xys, plotter.XY{X: col.Flux, Y: e})
			column = append(column, i)
		}
	}
	points, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, fmt.Errorf("butterfly points: %w", err)
	}
	points.GlyphStyle.Color = color.Black
	points.GlyphStyle.Shape = draw.CircleGlyph{}
	points.GlyphStyle.Radius = vg.Points(0.6)

	switch coloring {
	case butterfly.ColorNone, "":
	case butterfly.ColorPoint:
		colors, err := Colors(pal, len(b.Columns))
		if err != nil {
			return nil, err
		}
		base := points.GlyphStyle
		points.GlyphStyleFunc = func(i int) draw.GlyphStyle {
			gs := base
			gs.Color = colors[column[i]]
			return gs
		}
	case butterfly.ColorAvron:
		segs, err := newGapSegments(b, pal)
		if err != nil {
			return nil, err
		}
		p.Add(segs)
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown coloring %q", coloring)
	}
	p.Add(points)
	return p, nil
}

type segment struct {
	x, lo, hi float64
	color     color.Color
}

// gapSegments draws one vertical segment per labeled gap.
type gapSegments struct {
	segs  []segment
	width vg.Length
}

func newGapSegments(b *butterfly.Butterfly, pal string) (*gapSegments, error) {
	hall := b.HallValues()
	colors, err := Colors(pal, len(hall))
	if err != nil {
		return nil, err
	}
	g := &gapSegments{width: vg.Points(1)}
	for _, col := range b.Columns {
		for _, gap := range col.Gaps {
			i, _ := slices.BinarySearch(hall, gap.T)
			g.segs = append(g.segs, segment{x: col.Flux, lo: gap.Lower, hi: gap.Upper, color: colors[i]})
		}
	}
	return g, nil
}

// Plot implements plot.Plotter.
func (g *gapSegments) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	for _, s := range g.segs {
		ls := draw.LineStyle{Color: s.color, Width: g.width}
		c.StrokeLine2(ls, trX(s.x), trY(s.lo), trX(s.x), trY(s.hi))
	}
}

// DataRange implements plot.DataRanger.
func (g *gapSegments) DataRange() (xmin, xmax, ymin, ymax float64) {
	if len(g.segs) == 0 {
		return 0, 0, 0, 0
	}
	xmin, xmax = g.segs[0].x, g.segs[0].x
	ymin, ymax = g.segs[0].lo, g.segs[0].hi
	for _, s := range g.segs[1:] {
		xmin, xmax = min(xmin, s.x), max(xmax, s.x)
		ymin, ymax = min(ymin, s.lo), max(ymax, s.hi)
	}
	return xmin, xmax, ymin, ymax
}
