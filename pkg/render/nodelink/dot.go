package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/qmatter/hofstadter/pkg/lattice"
)

// Options configures hopping-path diagram rendering.
type Options struct {
	// Detailed labels every edge with its neighbor order and net index.
	Detailed bool
	// Scale is the distance in inches between neighboring cells (default 1).
	Scale float64
}

// netColors cycles through net translation groups.
var netColors = []string{"#1f77b4", "#d62728", "#2ca02c", "#9467bd", "#ff7f0e", "#8c564b", "#e377c2", "#17becf"}

type edge struct {
	from, to lattice.Cell
	net      int
	shell    int
}

func cellID(c lattice.Cell) string { return fmt.Sprintf("c_%d_%d", c.M, c.N) }

// ToDOT converts a path set to Graphviz DOT. Cells are pinned at their
// (m, n) grid coordinates; every hop is an arrow from its reference cell to
// its endpoint, colored by the net translation index of its path.
func ToDOT(set lattice.PathSet, opts Options) string {
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}

	var (
		cells []lattice.Cell
		edges []edge
		seen  = map[edge]bool{}
	)
	addCell := func(c lattice.Cell) {
		if !slices.Contains(cells, c) {
			cells = append(cells, c)
		}
	}
	addCell(lattice.Cell{})
	for _, g := range set.Groups {
		for _, p := range g.Paths {
			for _, leg := range p.Legs() {
				e := edge{from: leg.Ref, to: leg.Endpoint(), net: g.Net, shell: leg.Shell}
				addCell(e.from)
				addCell(e.to)
				if !seen[e] {
					seen[e] = true
					edges = append(edges, e)
				}
			}
		}
	}

	var buf bytes.Buffer
	buf.WriteString("digraph paths {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=10, width=0.45, fixedsize=true];\n")
	buf.WriteString("  edge [arrowsize=0.6];\n")
	buf.WriteString("\n")

	for _, c := range cells {
		attrs := []string{
			fmt.Sprintf("label=%q", fmt.Sprintf("%d,%d", c.M, c.N)),
			fmt.Sprintf("pos=\"%s,%s!\"", ftoa(float64(c.M)*scale), ftoa(float64(c.N)*scale)),
		}
		if c == (lattice.Cell{}) {
			attrs = append(attrs, "fillcolor=black", "fontcolor=white")
		}
		fmt.Fprintf(&buf, "  %s [%s];\n", cellID(c), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range edges {
		attrs := []string{fmt.Sprintf("color=%q", netColor(set, e.net))}
		if opts.Detailed {
			attrs = append(attrs, fmt.Sprintf("label=%q", fmt.Sprintf("t%d net %d", e.shell, e.net)), "fontsize=8")
		}
		fmt.Fprintf(&buf, "  %s -> %s [%s];\n", cellID(e.from), cellID(e.to), strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func netColor(set lattice.PathSet, net int) string {
	i := slices.Index(set.Nets(), net)
	if i < 0 {
		i = 0
	}
	return netColors[i%len(netColors)]
}

func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// RenderSVG renders DOT to SVG with the neato engine, which honors the
// pinned cell positions.
func RenderSVG(dot string) ([]byte, error) {
	out, err := render(dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders DOT to PNG.
func RenderPNG(dot string) ([]byte, error) {
	return render(dot, graphviz.PNG)
}

func render(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with a plain
// viewBox so the diagram scales when embedded.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
