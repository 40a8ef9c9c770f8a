// Package chart draws band structures, invariants and butterflies with
// gonum/plot.
//
// Every constructor returns a *plot.Plot that callers can restyle before
// encoding it with [Write] or [Render]:
//
//	p, err := chart.PathChart(path, "square, n_phi = 1/3")
//	svg, err := chart.Render(p, chart.FormatSVG)
//
// # Figures
//
//   - [PathChart]: energies along the Γ-Y-S-X-Γ path
//   - [BandMap]: one band over the zone, as contours ([Display3D]) or a
//     heat map ([Display2D])
//   - [CurvatureMap]: Berry curvature heat map
//   - [WannierChart]: hybrid Wannier centers per k1 column
//   - [ButterflyChart]: Hofstadter butterfly with "none", "point" or
//     "avron" coloring
//
// Colors come from the "heat", "rainbow" and "bluered" palettes (see
// [NewPalette]). gonum/plot has no surface plots, so the 3D display is a
// filled set of contour lines.
package chart
