// Package nodelink draws the hopping paths of a lattice model as a
// node-link diagram.
//
// # Overview
//
// Every cell touched by a path becomes a node pinned at its (m, n) grid
// position; the origin cell is filled black. Each hop is an arrow from its
// reference cell to its endpoint, colored by the net translation index of
// the path it belongs to, so the groups that feed each Hamiltonian
// off-diagonal are easy to tell apart. Doubled (two-leg) paths show up as
// chains through the intermediate cell.
//
// # Usage
//
//	dot := nodelink.ToDOT(h.Paths(), nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(dot)
//
// # Dependencies
//
// Rendering uses [github.com/goccy/go-graphviz] in process with the neato
// engine; no Graphviz installation is needed.
package nodelink
