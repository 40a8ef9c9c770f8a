// Package render groups the figure renderers.
//
// # Overview
//
// Nothing lives in this package itself; the renderers are split by the
// library they build on:
//
//   - Charts of band structures, invariants and butterflies (in [chart],
//     on gonum/plot) in SVG, PNG, PDF or EPS
//   - Hopping-path diagrams (in [nodelink], on Graphviz) in SVG or PNG
//
// # Charts
//
//	p, err := chart.ButterflyChart(b, butterfly.ColorAvron, chart.PaletteHeat)
//	svg, err := chart.Render(p, chart.FormatSVG)
//
// # Hopping-Path Diagrams
//
//	dot := nodelink.ToDOT(h.Paths(), nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(dot)
//
// [chart]: github.com/qmatter/hofstadter/pkg/render/chart
// [nodelink]: github.com/qmatter/hofstadter/pkg/render/nodelink
package render
