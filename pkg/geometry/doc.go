// Package geometry extracts geometric and topological band invariants from
// an eigenvector field sampled on a momentum grid.
//
// # Link variables
//
// For a selection of bands (one band, or a group of touching bands) the
// link variable between grid points a and b is the normalized determinant
// of the overlap matrix <u_i(a)|u_j(b)>. Links are gauge covariant, and
// products around a closed loop are gauge invariant.
//
// # Berry curvature
//
// Two discretizations are available:
//
//   - [Fukui] (default): minus the imaginary part of the principal log of
//     the four-link product around a plaquette. Works for band groups and
//     sums to exactly 2 pi C over a closed zone.
//   - [QuantumMetric]: -2 Im of the off-diagonal quantum geometric tensor
//     entry. Single bands only; converges more slowly with the grid.
//
// # Invariants
//
// [Chern] sums the Fukui curvature. [WannierCenters] closes a Wilson loop
// along k2 for every k1 column; the winding of the centers across k1 is the
// Chern number as well.
//
// All functions read the field and never modify it, so they may run
// concurrently once the field is complete.
package geometry
