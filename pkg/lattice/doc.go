// Package lattice enumerates neighbor displacements on a two-dimensional
// Bravais lattice and groups them into independent hopping paths.
//
// # Overview
//
// A tight-binding model threaded by a rational flux p/q is described by a
// magnetic unit cell of q sites. Before the Hamiltonian can be assembled,
// every hop a particle may take has to be known together with the
// magnetic sub-cell translation it induces. This package produces that
// table in two steps:
//
//  1. [Enumerate] walks a square window of lattice translations, adds each
//     sublattice offset, and labels every resulting displacement with its
//     neighbor order (shell). Only the orders whose hopping amplitude is
//     nonzero are kept.
//  2. [GroupPaths] removes backtracking displacements, decides whether the
//     lattice needs single or doubled (two-leg) paths, and buckets the
//     paths by their net translation index.
//
// # Geometry
//
// A [Geometry] carries three pieces of information:
//
//   - Vectors: the primitive translation vectors used to generate sites
//   - Cartesian: the unit steps that define integer (m, n) coordinates
//   - Basis: the sublattice offsets inside one primitive cell
//
// The integer coordinates are what the Peierls phase sees, so Cartesian
// must be fine enough that every site lands on an integer (m, n). For the
// triangular lattice the x step is half a lattice constant.
//
// # Paths
//
// Single-site lattices produce [SingleHopPath] values. Multi-site lattices
// (honeycomb) produce [DoubledHopPath] values: a hop from the origin to a
// site of the other sublattice followed by a continuation hop from there.
// Both implement [HoppingPath] and evaluate their own contribution to a
// Hamiltonian band through [HoppingPath.Amplitude].
//
// # Usage
//
//	geom := lattice.Square(1)
//	table, err := lattice.Table(geom, []float64{1})
//	if err != nil {
//	    return err
//	}
//	paths, err := lattice.GroupPaths(table)
package lattice
